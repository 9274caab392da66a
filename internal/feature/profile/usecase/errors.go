// Package usecase はプロフィールのビジネスロジックを実装します。
package usecase

import "coin_backend/internal/shared/apperr"

var (
	// ErrProfileNotFound is returned when the user has no profile or the id belongs to someone else.
	ErrProfileNotFound = apperr.New(apperr.ErrNotFound, "profile not found")

	// ErrProfileExists is returned when the user already has a profile.
	ErrProfileExists = apperr.New(apperr.ErrConflict, "profile already exists")

	// ErrDisplayNameTaken is returned when another profile uses the display name.
	ErrDisplayNameTaken = apperr.New(apperr.ErrConflict, "display name already taken")
)
