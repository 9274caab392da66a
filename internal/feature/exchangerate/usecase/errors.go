// Package usecase は為替レートスナップショットのビジネスロジックを実装します。
package usecase

import "coin_backend/internal/shared/apperr"

var (
	// ErrRateNotFound is returned when the snapshot does not exist.
	ErrRateNotFound = apperr.New(apperr.ErrNotFound, "exchange rate not found")

	// ErrPairRequired is returned when base or target is missing.
	ErrPairRequired = apperr.New(apperr.ErrValidation, "base and target currencies are required")

	// ErrSameCurrency is returned when base and target are the same currency.
	ErrSameCurrency = apperr.New(apperr.ErrValidation, "base and target currencies must differ")

	// ErrNonPositiveRate is returned for a rate of zero or below.
	ErrNonPositiveRate = apperr.New(apperr.ErrValidation, "rate must be greater than 0")
)
