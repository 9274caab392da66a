// Package session stores refresh-token sessions in Redis.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"coin_backend/internal/feature/auth/domain/entity"
	"coin_backend/internal/feature/auth/usecase"
)

// SessionRedis implements usecase.SessionRepository using Redis.
//
// Each session is a JSON string under "<prefix>:<id>" with a TTL equal to its
// remaining lifetime. Every user has a sorted set "<prefix>:user:<id>" of
// session ids scored by creation time, so the oldest session is the first
// member.
//
// Revoked sessions are rewritten with a TTL of entity.RevokedRetention, so
// Redis itself prunes them; DeleteExpired only cleans the user index.
type SessionRedis struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

var _ usecase.SessionRepository = (*SessionRedis)(nil)

// NewSessionRedis creates a new SessionRedis instance.
func NewSessionRedis(client *redis.Client, prefix string) *SessionRedis {
	if prefix == "" {
		prefix = "session"
	}
	return &SessionRedis{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

func (r *SessionRedis) sessionKey(id string) string {
	return fmt.Sprintf("%s:%s", r.prefix, id)
}

func (r *SessionRedis) userSessionsKey(userID uint) string {
	return fmt.Sprintf("%s:user:%d", r.prefix, userID)
}

// Create persists a new session to Redis.
func (r *SessionRedis) Create(ctx context.Context, session *entity.Session) error {
	ttl := session.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return errors.New("session already expired")
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, r.sessionKey(session.ID), data, ttl)
		p.ZAdd(ctx, r.userSessionsKey(session.UserID), redis.Z{
			Score:  float64(session.CreatedAt.UnixNano()),
			Member: session.ID,
		})
		return nil
	})
	return err
}

// FindByID retrieves a session by its ID.
func (r *SessionRedis) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	data, err := r.client.Get(ctx, r.sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, usecase.ErrSessionNotFound
		}
		return nil, err
	}
	return decode(data)
}

// FindByUserID retrieves all active sessions for a user, oldest first.
// Ids whose session key has expired are pruned from the user's set.
func (r *SessionRedis) FindByUserID(ctx context.Context, userID uint) ([]*entity.Session, error) {
	setKey := r.userSessionsKey(userID)
	ids, err := r.client.ZRange(ctx, setKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.sessionKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	var (
		sessions []*entity.Session
		stale    []interface{}
	)
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		s, err := decode([]byte(raw))
		if err != nil {
			return nil, err
		}
		if s.ActiveAt(r.now()) {
			sessions = append(sessions, s)
		}
	}
	if len(stale) > 0 {
		_ = r.client.ZRem(ctx, setKey, stale...).Err()
	}
	return sessions, nil
}

// Revoke marks a session as revoked and keeps it for entity.RevokedRetention
// for auditing. Revoking twice keeps the first revocation time.
func (r *SessionRedis) Revoke(ctx context.Context, id string) error {
	session, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if session.IsRevoked() {
		return nil
	}

	now := r.now()
	session.RevokedAt = &now
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return r.client.Set(ctx, r.sessionKey(id), data, entity.RevokedRetention).Err()
}

// RevokeAllByUserID revokes all sessions for a user.
func (r *SessionRedis) RevokeAllByUserID(ctx context.Context, userID uint) error {
	ids, err := r.client.ZRange(ctx, r.userSessionsKey(userID), 0, -1).Result()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := r.Revoke(ctx, id); err != nil && !errors.Is(err, usecase.ErrSessionNotFound) {
			return err
		}
	}
	return nil
}

// DeleteExpired removes ids whose session key has expired from every user
// index and returns how many were removed. Empty indexes disappear with
// their last member.
func (r *SessionRedis) DeleteExpired(ctx context.Context) (int64, error) {
	var removed int64
	iter := r.client.Scan(ctx, 0, r.prefix+":user:*", 200).Iterator()
	for iter.Next(ctx) {
		n, err := r.pruneIndex(ctx, iter.Val())
		removed += n
		if err != nil {
			return removed, err
		}
	}
	return removed, iter.Err()
}

// pruneIndex checks every id of one user index in a single round trip.
func (r *SessionRedis) pruneIndex(ctx context.Context, setKey string) (int64, error) {
	ids, err := r.client.ZRange(ctx, setKey, 0, -1).Result()
	if err != nil || len(ids) == 0 {
		return 0, err
	}

	exists := make([]*redis.IntCmd, len(ids))
	if _, err := r.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, id := range ids {
			exists[i] = p.Exists(ctx, r.sessionKey(id))
		}
		return nil
	}); err != nil {
		return 0, err
	}

	var stale []interface{}
	for i, cmd := range exists {
		if cmd.Val() == 0 {
			stale = append(stale, ids[i])
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}
	return r.client.ZRem(ctx, setKey, stale...).Result()
}

// CountByUserID returns the number of active sessions for a user.
func (r *SessionRedis) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	sessions, err := r.FindByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return int64(len(sessions)), nil
}

// DeleteOldestByUserID deletes the oldest active session for a user.
func (r *SessionRedis) DeleteOldestByUserID(ctx context.Context, userID uint) error {
	sessions, err := r.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		return nil
	}

	// ZRange の順序は作成日時の昇順
	oldest := sessions[0]
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, r.sessionKey(oldest.ID))
		p.ZRem(ctx, r.userSessionsKey(userID), oldest.ID)
		return nil
	})
	return err
}

func decode(data []byte) (*entity.Session, error) {
	var session entity.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}
