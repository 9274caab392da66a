package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// SessionPruner は期限切れと保持期間を過ぎた失効済みのセッションを削除します。
type SessionPruner struct {
	sessions SessionRepository
	logger   *zap.Logger
}

func NewSessionPruner(sessions SessionRepository, logger *zap.Logger) *SessionPruner {
	return &SessionPruner{sessions: sessions, logger: logger}
}

// Prune は削除した件数を返します。
func (p *SessionPruner) Prune(ctx context.Context) (int64, error) {
	removed, err := p.sessions.DeleteExpired(ctx)
	if err != nil {
		return removed, fmt.Errorf("failed to prune sessions: %w", err)
	}
	p.logger.Info("Pruned sessions", zap.Int64("removed", removed))
	return removed, nil
}
