// Package usecase は価格ログのビジネスロジックを実装します。
package usecase

import "coin_backend/internal/shared/apperr"

var (
	// ErrPriceLogNotFound is returned when the entry does not exist or belongs to another user.
	ErrPriceLogNotFound = apperr.New(apperr.ErrNotFound, "price log not found")

	// ErrCoinRequired is returned when the coin symbol is missing.
	ErrCoinRequired = apperr.New(apperr.ErrValidation, "coin is required")

	// ErrNegativePrice is returned for a price below zero.
	ErrNegativePrice = apperr.New(apperr.ErrValidation, "price must be greater than or equal to 0")
)
