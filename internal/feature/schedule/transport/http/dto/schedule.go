// Package dto はスケジュールAPIのリクエスト/レスポンス形式を定義します。
package dto

import (
	"time"

	"coin_backend/internal/feature/schedule/domain/entity"
)

// ScheduleReq はスケジュールの作成・更新リクエストです。
type ScheduleReq struct {
	Coin            string `json:"coin" binding:"required,coinsymbol"`
	Currency        string `json:"currency" binding:"omitempty,currency"`
	IntervalMinutes *int   `json:"interval_minutes" binding:"omitempty,min=1"`
	IsActive        *bool  `json:"is_active"`
}

// ScheduleRes はスケジュールのレスポンスです。state と next_run は現在時刻から算出します。
type ScheduleRes struct {
	ID              uint         `json:"id"`
	Coin            string       `json:"coin"`
	Currency        string       `json:"currency"`
	IntervalMinutes int          `json:"interval_minutes"`
	IsActive        bool         `json:"is_active"`
	LastRun         *time.Time   `json:"last_run"`
	State           entity.State `json:"state"`
	NextRun         *time.Time   `json:"next_run"`
}

// NewScheduleRes はエンティティをレスポンスに変換します。
func NewScheduleRes(s *entity.ScheduledScrape, now time.Time) ScheduleRes {
	return ScheduleRes{
		ID:              s.ID,
		Coin:            s.Coin,
		Currency:        s.Currency,
		IntervalMinutes: s.IntervalMinutes,
		IsActive:        s.IsActive,
		LastRun:         s.LastRun,
		State:           s.State(now),
		NextRun:         s.NextRun(now),
	}
}

// NewScheduleList はスライスをレスポンスに変換します。
func NewScheduleList(rows []entity.ScheduledScrape, now time.Time) []ScheduleRes {
	out := make([]ScheduleRes, 0, len(rows))
	for i := range rows {
		out = append(out, NewScheduleRes(&rows[i], now))
	}
	return out
}
