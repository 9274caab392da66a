// Package usecase はコイン比較のビジネスロジックを実装します。
package usecase

import "coin_backend/internal/shared/apperr"

var (
	// ErrComparisonNotFound is returned when the comparison does not exist or belongs to another user.
	ErrComparisonNotFound = apperr.New(apperr.ErrNotFound, "coin comparison not found")

	// ErrCoinsRequired is returned when coin1 or coin2 is missing.
	ErrCoinsRequired = apperr.New(apperr.ErrValidation, "coin1 and coin2 are required")

	// ErrSameCoin is returned when both sides name the same coin.
	ErrSameCoin = apperr.New(apperr.ErrValidation, "coin1 and coin2 must be different")

	// ErrNegativePrice is returned for a price below zero.
	ErrNegativePrice = apperr.New(apperr.ErrValidation, "prices must be greater than or equal to 0")
)
