package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"coin_backend/internal/feature/auth/domain/entity"
)

func TestSessionPruner_Prune(t *testing.T) {
	now := time.Now()
	revokedLongAgo := now.Add(-entity.RevokedRetention - time.Hour)
	revokedRecently := now.Add(-time.Hour)

	sessions := newMemSessions()
	for _, s := range []*entity.Session{
		{ID: "active", UserID: 1, ExpiresAt: now.Add(time.Hour)},
		{ID: "expired", UserID: 1, ExpiresAt: now.Add(-time.Minute)},
		{ID: "revoked-old", UserID: 1, ExpiresAt: now.Add(time.Hour), RevokedAt: &revokedLongAgo},
		{ID: "revoked-new", UserID: 2, ExpiresAt: now.Add(time.Hour), RevokedAt: &revokedRecently},
	} {
		sessions.items[s.ID] = s
	}

	core, logs := observer.New(zap.InfoLevel)
	removed, err := NewSessionPruner(sessions, zap.New(core)).Prune(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
	assert.Contains(t, sessions.items, "active")
	assert.Contains(t, sessions.items, "revoked-new")

	entries := logs.FilterMessage("Pruned sessions").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(2), entries[0].ContextMap()["removed"])
}

func TestSessionPruner_Prune_Error(t *testing.T) {
	sessions := newMemSessions()
	sessions.pruneErr = errors.New("db down")

	_, err := NewSessionPruner(sessions, zap.NewNop()).Prune(context.Background())
	assert.ErrorIs(t, err, sessions.pruneErr)
}
