package app

import (
	"context"
	"errors"
	"testing"
)

func TestSignUpAndLogin(t *testing.T) {
	env := newTestEnv(t)

	user, token, err := env.app.SignUp("Viewer@Example.com", "hunter2secret", "Viewer", "")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if token == "" {
		t.Fatal("signup must issue a token")
	}
	if user.Email != "viewer@example.com" {
		t.Fatalf("email = %q, want lowercased", user.Email)
	}

	if _, _, err := env.app.SignUp("viewer@example.com", "other", "Dup", ""); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("duplicate signup err = %v, want ErrEmailAlreadyExists", err)
	}

	loggedIn, token, err := env.app.Login("viewer@example.com", "hunter2secret", "device-42")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatal("login must issue a token")
	}
	if loggedIn.LastLoginAt.IsZero() {
		t.Fatal("login must stamp lastLoginAt")
	}
	stored, err := env.app.GetUser(user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if stored.DeviceToken != "device-42" {
		t.Fatalf("device token = %q, want merged registration", stored.DeviceToken)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	if _, _, err := env.app.SignUp("viewer@example.com", "hunter2secret", "Viewer", ""); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if _, _, err := env.app.Login("viewer@example.com", "wrong", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("bad password err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := env.app.Login("nobody@example.com", "hunter2secret", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email err = %v, want ErrInvalidCredentials", err)
	}
}

func TestSignUpRejectsShortPassword(t *testing.T) {
	env := newTestEnv(t)
	if _, _, err := env.app.SignUp("viewer@example.com", "short", "Viewer", ""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestUserFromToken(t *testing.T) {
	env := newTestEnv(t)
	user, token, err := env.app.SignUp("viewer@example.com", "hunter2secret", "Viewer", "")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	resolved, ok := env.app.UserFromToken(token)
	if !ok || resolved.ID != user.ID {
		t.Fatalf("resolve = (%+v, %v), want signed-up user", resolved, ok)
	}
	if _, ok := env.app.UserFromToken("garbage"); ok {
		t.Fatal("garbage token must not resolve")
	}
}

func TestAssignAdminAuthorizesFromStoredClaims(t *testing.T) {
	env := newTestEnv(t)
	user, token, err := env.app.SignUp("admin@example.com", "hunter2secret", "Admin", "")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.Admin() {
		t.Fatal("fresh user must not be admin")
	}

	promoted, err := env.app.AssignAdmin(user.ID)
	if err != nil {
		t.Fatalf("assign admin: %v", err)
	}
	if !promoted.Admin() {
		t.Fatalf("claims = %v, want admin flag", promoted.Claims)
	}

	// the pre-promotion token now resolves to an admin because authorization
	// reads the persisted claims
	resolved, ok := env.app.UserFromToken(token)
	if !ok || !resolved.Admin() {
		t.Fatalf("resolved admin = %v, want true", resolved.Admin())
	}
}

func TestAssignClaimsMerges(t *testing.T) {
	env := newTestEnv(t)
	user, _, err := env.app.SignUp("viewer@example.com", "hunter2secret", "Viewer", "")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := env.app.AssignAdmin(user.ID); err != nil {
		t.Fatalf("assign admin: %v", err)
	}

	updated, err := env.app.AssignClaims(user.ID, map[string]any{"role": "moderator"})
	if err != nil {
		t.Fatalf("assign claims: %v", err)
	}
	if updated.Claims["role"] != "moderator" {
		t.Fatalf("claims = %v, want merged role", updated.Claims)
	}
	if !updated.Admin() {
		t.Fatal("merge must not drop the admin flag")
	}
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	if _, _, err := env.app.SignUp("viewer@example.com", "hunter2secret", "Viewer", ""); err != nil {
		t.Fatalf("signup: %v", err)
	}

	token, err := env.app.ForgotPassword(context.Background(), "viewer@example.com")
	if err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	if err := env.app.ResetPassword(context.Background(), token, "brandnewsecret"); err != nil {
		t.Fatalf("reset password: %v", err)
	}
	// token is single use
	if err := env.app.ResetPassword(context.Background(), token, "again"); !errors.Is(err, ErrResetTokenInvalid) {
		t.Fatalf("reuse err = %v, want ErrResetTokenInvalid", err)
	}

	if _, _, err := env.app.Login("viewer@example.com", "hunter2secret", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("old password must stop working")
	}
	if _, _, err := env.app.Login("viewer@example.com", "brandnewsecret", ""); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	user, _, err := env.app.SignUp("viewer@example.com", "hunter2secret", "Viewer", "")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	if err := env.app.DeleteUser(user.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if err := env.app.DeleteUser(user.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}
