package usecase

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"coin_backend/internal/feature/activity/domain/entity"
	"coin_backend/internal/feature/reporting"
)

const (
	// RecentWindow は「最近の操作」とみなす期間です。
	RecentWindow = 24 * time.Hour
	// DefaultSummaryDays は集計のデフォルト日数です。
	DefaultSummaryDays = 7
	// MaxActionLength は操作ラベルの最大文字数です。
	MaxActionLength = 255
)

// Filter は操作履歴検索の条件です。
type Filter struct {
	UserID uint
	Since  time.Time
	Limit  int
	Offset int
}

// ActivityRepository は操作履歴の永続化層を抽象化します。追記専用です。
type ActivityRepository interface {
	Create(ctx context.Context, e *entity.ActivityEntry) error
	List(ctx context.Context, f Filter) ([]entity.ActivityEntry, error)
}

type activityUsecase struct {
	repo ActivityRepository
	now  func() time.Time
}

// NewActivityUsecase はactivityUsecaseの新しいインスタンスを生成します。
func NewActivityUsecase(repo ActivityRepository, now func() time.Time) *activityUsecase {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &activityUsecase{repo: repo, now: now}
}

func (u *activityUsecase) List(ctx context.Context, userID uint, limit, offset int) ([]entity.ActivityEntry, error) {
	return u.repo.List(ctx, Filter{UserID: userID, Limit: limit, Offset: offset})
}

// Create は操作を記録します。記録時刻はサーバー時刻です。
func (u *activityUsecase) Create(ctx context.Context, userID uint, action string) (*entity.ActivityEntry, error) {
	action = strings.TrimSpace(action)
	if action == "" {
		return nil, ErrActionRequired
	}
	if utf8.RuneCountInString(action) > MaxActionLength {
		return nil, ErrActionTooLong
	}
	e := &entity.ActivityEntry{UserID: userID, Action: action, Timestamp: u.now()}
	if err := u.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Record は Create の結果を捨てる版で、他のフィーチャーから呼ばれます。
func (u *activityUsecase) Record(ctx context.Context, userID uint, action string) error {
	_, err := u.Create(ctx, userID, action)
	return err
}

// Recent は直近24時間の操作を新しい順に返します。
func (u *activityUsecase) Recent(ctx context.Context, userID uint) ([]entity.ActivityEntry, error) {
	return u.repo.List(ctx, Filter{UserID: userID, Since: u.now().Add(-RecentWindow)})
}

// Summary は直近 days 日間の操作を action ごとに集計します。
func (u *activityUsecase) Summary(ctx context.Context, userID uint, days int) ([]reporting.Count, error) {
	if days <= 0 {
		days = DefaultSummaryDays
	}
	rows, err := u.repo.List(ctx, Filter{UserID: userID, Since: u.now().AddDate(0, 0, -days)})
	if err != nil {
		return nil, err
	}
	return reporting.CountBy(rows, func(e entity.ActivityEntry) string { return e.Action }), nil
}
