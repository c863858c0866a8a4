package app

import "errors"

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument is returned for malformed or missing input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUpstream is returned when the metadata provider fails for a reason
	// other than a missing title.
	ErrUpstream = errors.New("metadata provider unavailable")

	// ErrInvalidCredentials is returned when the supplied credentials do not match.
	// This message is intended to be shown to end users and should not enable account enumeration.
	ErrInvalidCredentials = errors.New("Incorrect email address or password")

	ErrEmailAndPasswordRequired = errors.New("email and password required")
	ErrEmailAlreadyExists       = errors.New("email already exists")
	ErrEmailRequired            = errors.New("email required")
	ErrResetTokenInvalid        = errors.New("invalid or expired reset token")
	ErrPreferencesRequired      = errors.New("preferences not set for user")
)
