package entity

import "time"

// RevokedRetention は失効済みセッションを監査用に保持する期間です。
// これを過ぎた失効済みセッションと期限切れセッションは保持期間ジョブで削除されます。
const RevokedRetention = 24 * time.Hour

// Session represents a refresh-token session.
type Session struct {
	ID        string     `json:"id"` // Refresh token value (64-character hex string)
	UserID    uint       `json:"user_id"`
	UserAgent string     `json:"user_agent"`
	IPAddress string     `json:"ip_address"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"` // nil if active
}

// ExpiredAt reports whether the session has passed its expiration time at t.
func (s *Session) ExpiredAt(t time.Time) bool {
	return t.After(s.ExpiresAt)
}

// ActiveAt reports whether the session can still be refreshed at t.
func (s *Session) ActiveAt(t time.Time) bool {
	return !s.ExpiredAt(t) && !s.IsRevoked()
}

// PrunableAt reports whether the session may be deleted at t: it has expired,
// or it was revoked more than RevokedRetention before t.
func (s *Session) PrunableAt(t time.Time) bool {
	if s.ExpiredAt(t) {
		return true
	}
	return s.RevokedAt != nil && s.RevokedAt.Before(t.Add(-RevokedRetention))
}

// IsExpired returns true if the session has passed its expiration time.
func (s *Session) IsExpired() bool { return s.ExpiredAt(time.Now()) }

// IsRevoked returns true if the session has been revoked.
func (s *Session) IsRevoked() bool { return s.RevokedAt != nil }

// IsValid returns true if the session is neither expired nor revoked.
func (s *Session) IsValid() bool { return s.ActiveAt(time.Now()) }
