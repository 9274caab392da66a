package adapters

import (
	"time"

	"gorm.io/gorm"

	"coin_backend/internal/feature/auth/domain/entity"
)

// SessionModel は Redis を使わない構成でのリフレッシュトークン保存先です。
type SessionModel struct {
	ID        string     `gorm:"primaryKey;size:64"`
	UserID    uint       `gorm:"index:idx_sessions_user_created,priority:1;not null"`
	UserAgent string     `gorm:"size:512"`
	IPAddress string     `gorm:"size:45"` // IPv6 max length
	CreatedAt time.Time  `gorm:"index:idx_sessions_user_created,priority:2;not null"`
	ExpiresAt time.Time  `gorm:"index;not null"`
	RevokedAt *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM.
func (SessionModel) TableName() string {
	return "sessions"
}

func (m *SessionModel) toEntity() *entity.Session {
	return &entity.Session{
		ID:        m.ID,
		UserID:    m.UserID,
		UserAgent: m.UserAgent,
		IPAddress: m.IPAddress,
		CreatedAt: m.CreatedAt.UTC(),
		ExpiresAt: m.ExpiresAt.UTC(),
		RevokedAt: m.RevokedAt,
	}
}

func sessionModelOf(s *entity.Session) *SessionModel {
	return &SessionModel{
		ID:        s.ID,
		UserID:    s.UserID,
		UserAgent: s.UserAgent,
		IPAddress: s.IPAddress,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
		RevokedAt: s.RevokedAt,
	}
}

// activeAt は時刻 t にリフレッシュ可能なセッションに絞り込みます。
// entity.Session.ActiveAt と同じ条件です。
func activeAt(t time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("revoked_at IS NULL AND expires_at >= ?", t)
	}
}

// prunableAt は時刻 t に削除してよいセッションに絞り込みます。
// entity.Session.PrunableAt と同じ条件です。
func prunableAt(t time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("expires_at < ? OR revoked_at < ?", t, t.Add(-entity.RevokedRetention))
	}
}
