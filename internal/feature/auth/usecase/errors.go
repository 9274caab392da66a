// Package usecase implements the business logic for the auth feature.
package usecase

import "coin_backend/internal/shared/apperr"

var (
	// ErrUserNotFound is returned when a user cannot be found by email or ID.
	ErrUserNotFound = apperr.New(apperr.ErrNotFound, "user not found")

	// ErrEmailAlreadyExists is returned when attempting to create a user with an email that already exists.
	ErrEmailAlreadyExists = apperr.New(apperr.ErrConflict, "email already exists")

	// ErrUsernameAlreadyExists is returned when the username is taken.
	ErrUsernameAlreadyExists = apperr.New(apperr.ErrConflict, "username already exists")

	// ErrInvalidCredentials is returned by Login for an unknown email or a wrong password.
	ErrInvalidCredentials = apperr.New(apperr.ErrUnauthorized, "invalid email or password")

	// ErrSessionNotFound is returned when a session cannot be found by ID.
	ErrSessionNotFound = apperr.New(apperr.ErrUnauthorized, "session not found")

	// ErrSessionRevoked is returned when attempting to use a revoked session.
	ErrSessionRevoked = apperr.New(apperr.ErrUnauthorized, "session has been revoked")

	// ErrSessionExpired is returned when attempting to use an expired session.
	ErrSessionExpired = apperr.New(apperr.ErrUnauthorized, "session has expired")

	// ErrInvalidRefreshToken is returned when a refresh token is invalid or malformed.
	ErrInvalidRefreshToken = apperr.New(apperr.ErrUnauthorized, "invalid refresh token")

	// ErrInvalidResetToken is returned when a password reset token is invalid, expired or already used.
	ErrInvalidResetToken = apperr.New(apperr.ErrValidation, "invalid or expired reset token")
)
