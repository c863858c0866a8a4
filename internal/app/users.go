package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"reelbase/internal/identity"
	"reelbase/internal/util"
	"reelbase/pkg/domain"
)

// SignUp registers a new user and issues a signed token carrying the user's
// custom claims.
func (a *App) SignUp(email, password, displayName, deviceToken string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return domain.User{}, "", fmt.Errorf("%w", ErrEmailAndPasswordRequired)
	}
	_, exists, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.User{}, "", ErrEmailAlreadyExists
	}
	if err := identity.ValidatePassword(password); err != nil {
		return domain.User{}, "", fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	passwordHash, err := identity.HashPassword(password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	user := domain.User{
		ID:           util.NewID(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		DeviceToken:  deviceToken,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, "", fmt.Errorf("save user: %w", err)
	}
	token, err := a.identity.CreateCustomToken(user.ID, user.Claims)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// Login validates credentials and issues a signed token. A device token sent
// with the login replaces the stored push registration.
func (a *App) Login(email, password, deviceToken string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.User{}, "", ErrInvalidCredentials
	}
	if strings.TrimSpace(user.PasswordHash) != "" && !identity.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	user.LastLoginAt = time.Now().UTC()
	user.UpdatedAt = user.LastLoginAt
	if deviceToken != "" {
		user.DeviceToken = deviceToken
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, "", fmt.Errorf("update user: %w", err)
	}
	token, err := a.identity.CreateCustomToken(user.ID, user.Claims)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// UserFromToken resolves the bearer of a signed token to a stored user.
// Authorization decisions read the persisted claims, not the token's, so a
// revoked admin loses access without waiting for token expiry.
func (a *App) UserFromToken(token string) (domain.User, bool) {
	claims, err := a.identity.VerifyToken(token)
	if err != nil {
		return domain.User{}, false
	}
	user, ok, err := a.store.GetUser(claims.UID)
	if err != nil || !ok {
		return domain.User{}, false
	}
	return user, true
}

// GetUser retrieves one user profile.
func (a *App) GetUser(uid string) (domain.User, error) {
	user, ok, err := a.store.GetUser(uid)
	if err != nil {
		return domain.User{}, fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.User{}, fmt.Errorf("%w: user %s", ErrNotFound, uid)
	}
	return user, nil
}

// ProfileUpdate carries the optional profile fields; nil means unchanged.
type ProfileUpdate struct {
	Email       *string
	DisplayName *string
	DeviceToken *string
}

// UpdateProfile applies a partial profile update.
func (a *App) UpdateProfile(uid string, update ProfileUpdate) (domain.User, error) {
	user, err := a.GetUser(uid)
	if err != nil {
		return domain.User{}, err
	}
	if update.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*update.Email))
		if email == "" {
			return domain.User{}, ErrEmailRequired
		}
		if email != user.Email {
			existing, ok, err := a.store.GetUserByEmail(email)
			if err != nil {
				return domain.User{}, fmt.Errorf("check email: %w", err)
			}
			if ok && existing.ID != user.ID {
				return domain.User{}, ErrEmailAlreadyExists
			}
			user.Email = email
		}
	}
	if update.DisplayName != nil {
		user.DisplayName = *update.DisplayName
	}
	if update.DeviceToken != nil {
		user.DeviceToken = *update.DeviceToken
	}
	user.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// DeleteUser removes an account.
func (a *App) DeleteUser(uid string) error {
	if _, err := a.GetUser(uid); err != nil {
		return err
	}
	return a.store.DeleteUser(uid)
}

// ListUsers returns all accounts (admin use only).
func (a *App) ListUsers() ([]domain.User, error) {
	return a.store.ListUsers()
}

// AssignAdmin persists the admin flag in the user's custom claims. Tokens
// issued afterwards carry the flag; requests are authorized against the
// stored claims either way.
func (a *App) AssignAdmin(uid string) (domain.User, error) {
	return a.mergeClaims(uid, map[string]any{"admin": true})
}

// AssignClaims merges arbitrary custom claims into the user's claim map.
func (a *App) AssignClaims(uid string, claims map[string]any) (domain.User, error) {
	if len(claims) == 0 {
		return domain.User{}, fmt.Errorf("%w: claims required", ErrInvalidArgument)
	}
	return a.mergeClaims(uid, claims)
}

func (a *App) mergeClaims(uid string, claims map[string]any) (domain.User, error) {
	user, err := a.GetUser(uid)
	if err != nil {
		return domain.User{}, err
	}
	if user.Claims == nil {
		user.Claims = map[string]any{}
	}
	for k, v := range claims {
		user.Claims[k] = v
	}
	user.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, fmt.Errorf("update claims: %w", err)
	}
	return user, nil
}

// ForgotPassword issues a single-use reset token for the account's email.
// The token is returned to the transport layer for delivery.
func (a *App) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return "", ErrEmailRequired
	}
	if a.resetTokens == nil {
		return "", fmt.Errorf("password reset not configured")
	}
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("%w: no account for %s", ErrNotFound, email)
	}
	token, err := a.resetTokens.Issue(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("issue reset token: %w", err)
	}
	return token, nil
}

// ResetPassword consumes a reset token and stores the new password hash.
func (a *App) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := identity.ValidatePassword(newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if a.resetTokens == nil {
		return fmt.Errorf("password reset not configured")
	}
	uid, err := a.resetTokens.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, identity.ErrResetTokenInvalid) {
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("consume reset token: %w", err)
	}
	user, err := a.GetUser(uid)
	if err != nil {
		return err
	}
	passwordHash, err := identity.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveUser(user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// ChangePassword updates the password after verifying the current one.
func (a *App) ChangePassword(uid, currentPassword, newPassword string) error {
	if err := identity.ValidatePassword(newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	user, err := a.GetUser(uid)
	if err != nil {
		return err
	}
	if strings.TrimSpace(user.PasswordHash) != "" && !identity.CheckPassword(currentPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	passwordHash, err := identity.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveUser(user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
