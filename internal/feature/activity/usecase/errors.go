// Package usecase はユーザー操作履歴のビジネスロジックを実装します。
package usecase

import "coin_backend/internal/shared/apperr"

var (
	// ErrActionRequired is returned when the action label is blank.
	ErrActionRequired = apperr.New(apperr.ErrValidation, "action is required")

	// ErrActionTooLong is returned when the action label exceeds MaxActionLength.
	ErrActionTooLong = apperr.New(apperr.ErrValidation, "action must be at most 255 characters")
)
