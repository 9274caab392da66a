package usecase

import (
	"context"
	"strings"
	"time"

	"coin_backend/internal/feature/errorlog/domain/entity"
	"coin_backend/internal/feature/reporting"
)

const (
	// RecentWindow は Recent が返す期間です。
	RecentWindow = 24 * time.Hour
	// DefaultSummaryDays は Summary のデフォルト日数です。
	DefaultSummaryDays = 7
)

// Viewer はエラーログを閲覧するユーザーです。スタッフは全ユーザーのログを閲覧できます。
type Viewer struct {
	UserID uint
	Staff  bool
}

// Filter はエラーログ検索の条件です。UserID が nil の場合は全件が対象です。
type Filter struct {
	UserID *uint
	Since  time.Time
	Limit  int
	Offset int
}

// ErrorLogRepository はエラーログの永続化層を抽象化します。
type ErrorLogRepository interface {
	// Append は e.Timestamp を保存済みの最新記録時刻以上に補正してから保存します。
	// 補正と挿入は同じトランザクションで行われるため、サーバーとワーカーが
	// 同じデータベースに書き込んでも記録時刻は減少しません。
	Append(ctx context.Context, e *entity.ErrorLogEntry) error
	FindByID(ctx context.Context, id uint) (*entity.ErrorLogEntry, error)
	List(ctx context.Context, f Filter) ([]entity.ErrorLogEntry, error)
}

// errorLogUsecase はエラーログのユースケースを実装します。
// 記録時刻は max(最新の記録時刻, 現在時刻) で、単調非減少です。
type errorLogUsecase struct {
	repo ErrorLogRepository
	now  func() time.Time
}

// NewErrorLogUsecase はerrorLogUsecaseの新しいインスタンスを生成します。
func NewErrorLogUsecase(repo ErrorLogRepository, now func() time.Time) *errorLogUsecase {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &errorLogUsecase{repo: repo, now: now}
}

// Record はエラーログを記録します。userID が nil の場合はシステムエラーです。
func (u *errorLogUsecase) Record(ctx context.Context, userID *uint, source, message string) error {
	_, err := u.Create(ctx, userID, source, message)
	return err
}

// Create はエラーログを記録して返します。
func (u *errorLogUsecase) Create(ctx context.Context, userID *uint, source, message string) (*entity.ErrorLogEntry, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, ErrSourceRequired
	}
	if strings.TrimSpace(message) == "" {
		return nil, ErrMessageRequired
	}

	e := &entity.ErrorLogEntry{UserID: userID, Source: source, Message: message, Timestamp: u.now()}
	if err := u.repo.Append(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// List はエラーログを新しい順に返します。
func (u *errorLogUsecase) List(ctx context.Context, v Viewer, limit, offset int) ([]entity.ErrorLogEntry, error) {
	return u.repo.List(ctx, Filter{UserID: scope(v), Limit: limit, Offset: offset})
}

// Get はエラーログを1件返します。閲覧できないログはNotFoundになります。
func (u *errorLogUsecase) Get(ctx context.Context, v Viewer, id uint) (*entity.ErrorLogEntry, error) {
	e, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !v.Staff && (e.UserID == nil || *e.UserID != v.UserID) {
		return nil, ErrErrorLogNotFound
	}
	return e, nil
}

// Recent は直近24時間のエラーログを新しい順に返します。
func (u *errorLogUsecase) Recent(ctx context.Context, v Viewer) ([]entity.ErrorLogEntry, error) {
	return u.repo.List(ctx, Filter{UserID: scope(v), Since: u.now().Add(-RecentWindow)})
}

// Summary は直近 days 日間のエラーログを source ごとに集計します。
func (u *errorLogUsecase) Summary(ctx context.Context, v Viewer, days int) ([]reporting.Count, error) {
	if days <= 0 {
		days = DefaultSummaryDays
	}
	rows, err := u.repo.List(ctx, Filter{UserID: scope(v), Since: u.now().AddDate(0, 0, -days)})
	if err != nil {
		return nil, err
	}
	return reporting.CountBy(rows, func(e entity.ErrorLogEntry) string { return e.Source }), nil
}

func scope(v Viewer) *uint {
	if v.Staff {
		return nil
	}
	id := v.UserID
	return &id
}
