// Package usecase はスクレイプスケジュールと定期実行のビジネスロジックを実装します。
package usecase

import "coin_backend/internal/shared/apperr"

var (
	// ErrScheduleNotFound is returned when the schedule does not exist or belongs to another user.
	ErrScheduleNotFound = apperr.New(apperr.ErrNotFound, "scheduled scrape not found")

	// ErrCoinRequired is returned when the coin symbol is missing.
	ErrCoinRequired = apperr.New(apperr.ErrValidation, "coin is required")

	// ErrInvalidInterval is returned for an interval below one minute.
	ErrInvalidInterval = apperr.New(apperr.ErrValidation, "interval_minutes must be at least 1")

	// ErrRunInPast is returned when marking a run earlier than the last recorded run.
	ErrRunInPast = apperr.New(apperr.ErrValidation, "run time is earlier than the last run")
)
