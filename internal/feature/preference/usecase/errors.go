// Package usecase はユーザー設定のビジネスロジックを実装します。
package usecase

import "coin_backend/internal/shared/apperr"

var (
	// ErrPreferenceNotFound is returned when the user has no preference record.
	ErrPreferenceNotFound = apperr.New(apperr.ErrNotFound, "preference not found")

	// ErrPreferenceExists is returned when the user already has a preference record.
	ErrPreferenceExists = apperr.New(apperr.ErrConflict, "preference already exists")

	// ErrCoinRequired is returned for an empty favorite coin symbol.
	ErrCoinRequired = apperr.New(apperr.ErrValidation, "coin is required")

	// ErrInvalidThreshold is returned for a threshold outside 0..999.99.
	ErrInvalidThreshold = apperr.New(apperr.ErrValidation, "notify_threshold must be between 0 and 999.99")
)
