package server

import (
	"encoding/json"
	"io"
	"net/http"

	"reelbase/internal/app"
	"reelbase/pkg/domain"
)

type signupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	DeviceToken string `json:"deviceToken"`
}

type loginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DeviceToken string `json:"deviceToken"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if !s.allowRate(w, r, s.signupLimiter, "too many signup attempts") {
		s.audit(r, "api.signup", "rate_limited")
		return
	}
	var req signupRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		s.audit(r, "api.signup", "fail", "reason", "invalid_json")
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, token, err := s.app.SignUp(req.Email, req.Password, req.DisplayName, req.DeviceToken)
	if err != nil {
		s.audit(r, "api.signup", "fail", "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "api.signup", "success", "user_id", user.ID)
	writeData(w, http.StatusCreated, "User created", authResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !s.allowRate(w, r, s.loginLimiter, "too many login attempts") {
		s.audit(r, "api.login", "rate_limited")
		return
	}
	var req loginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		s.audit(r, "api.login", "fail", "reason", "invalid_json")
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, token, err := s.app.Login(req.Email, req.Password, req.DeviceToken)
	if err != nil {
		s.audit(r, "api.login", "fail", "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "api.login", "success", "user_id", user.ID)
	writeData(w, http.StatusOK, "Logged in", authResponse{Token: token, User: user})
}

// handleLogout acknowledges; signed tokens stay valid until expiry, the
// client discards its copy.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, user domain.User) {
	s.audit(r, "api.logout", "success", "user_id", user.ID)
	writeJSON(w, http.StatusOK, envelope{Message: "Logged out"})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, _ *http.Request, user domain.User) {
	writeData(w, http.StatusOK, "Profile", user)
}

type profileRequest struct {
	Email       *string `json:"email"`
	DisplayName *string `json:"displayName"`
	DeviceToken *string `json:"deviceToken"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, user domain.User) {
	var req profileRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	updated, err := s.app.UpdateProfile(user.ID, app.ProfileUpdate{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		DeviceToken: req.DeviceToken,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Profile updated", updated)
}

func (s *Server) handleTestAuth(w http.ResponseWriter, _ *http.Request, user domain.User) {
	writeData(w, http.StatusOK, "Authenticated", map[string]string{"uid": user.ID})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request, admin domain.User) {
	uid := r.PathValue("uid")
	if err := s.app.DeleteUser(uid); err != nil {
		writeAppError(w, err)
		return
	}
	s.audit(r, "api.admin.delete_user", "success", "admin_id", admin.ID, "user_id", uid)
	writeJSON(w, http.StatusOK, envelope{Message: "User deleted"})
}

func (s *Server) handleDeleteSelf(w http.ResponseWriter, r *http.Request, user domain.User) {
	if err := s.app.DeleteUser(user.ID); err != nil {
		writeAppError(w, err)
		return
	}
	s.audit(r, "api.delete_self", "success", "user_id", user.ID)
	writeJSON(w, http.StatusOK, envelope{Message: "Account deleted"})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	if !s.allowRate(w, r, s.loginLimiter, "too many password reset attempts") {
		s.audit(r, "api.forgot_password", "rate_limited")
		return
	}
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	token, err := s.app.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		s.audit(r, "api.forgot_password", "fail", "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "api.forgot_password", "success")
	writeData(w, http.StatusOK, "Password reset token issued", map[string]string{"resetToken": token})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.app.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		s.audit(r, "api.reset_password", "fail", "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "api.reset_password", "success")
	writeJSON(w, http.StatusOK, envelope{Message: "Password reset"})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request, user domain.User) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.app.ChangePassword(user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		s.audit(r, "api.change_password", "fail", "user_id", user.ID, "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "api.change_password", "success", "user_id", user.ID)
	writeJSON(w, http.StatusOK, envelope{Message: "Password changed"})
}

func (s *Server) handleListUsers(w http.ResponseWriter, _ *http.Request, _ domain.User) {
	users, err := s.app.ListUsers()
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Users", users)
}

func (s *Server) handleAssignAdmin(w http.ResponseWriter, r *http.Request, caller domain.User) {
	var req struct {
		UID string `json:"uid"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UID == "" {
		req.UID = caller.ID
	}
	user, err := s.app.AssignAdmin(req.UID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	s.audit(r, "api.assign_admin", "success", "caller_id", caller.ID, "user_id", user.ID)
	writeData(w, http.StatusOK, "Admin claim assigned", user)
}

func (s *Server) handleAssignRole(w http.ResponseWriter, r *http.Request, admin domain.User) {
	var req struct {
		UID    string         `json:"uid"`
		Claims map[string]any `json:"claims"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, err := s.app.AssignClaims(req.UID, req.Claims)
	if err != nil {
		writeAppError(w, err)
		return
	}
	s.audit(r, "api.assign_role", "success", "admin_id", admin.ID, "user_id", user.ID)
	writeData(w, http.StatusOK, "Claims assigned", user)
}
