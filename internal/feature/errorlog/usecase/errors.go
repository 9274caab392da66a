// Package usecase はエラーログのビジネスロジックを実装します。
package usecase

import "coin_backend/internal/shared/apperr"

var (
	// ErrErrorLogNotFound is returned when the entry does not exist or is not visible to the caller.
	ErrErrorLogNotFound = apperr.New(apperr.ErrNotFound, "error log not found")

	// ErrSourceRequired is returned when the source label is empty.
	ErrSourceRequired = apperr.New(apperr.ErrValidation, "source is required")

	// ErrMessageRequired is returned when the message is empty.
	ErrMessageRequired = apperr.New(apperr.ErrValidation, "message is required")
)
