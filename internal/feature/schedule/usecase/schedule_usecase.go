package usecase

import (
	"context"
	"errors"
	"time"

	"coin_backend/internal/feature/schedule/domain/entity"
	"coin_backend/internal/shared/validation"
)

// Filter はスケジュール検索の条件です。UserID が0の場合は全ユーザーが対象です。
type Filter struct {
	UserID     uint
	ActiveOnly bool
	Limit      int
	Offset     int
}

// ScheduleRepository はスケジュールの永続化層を抽象化します。
type ScheduleRepository interface {
	Create(ctx context.Context, s *entity.ScheduledScrape) error
	FindOwned(ctx context.Context, id, userID uint) (*entity.ScheduledScrape, error)
	Update(ctx context.Context, s *entity.ScheduledScrape) error
	Delete(ctx context.Context, id, userID uint) error
	List(ctx context.Context, f Filter) ([]entity.ScheduledScrape, error)
}

// Input はスケジュールの作成・更新の入力です。nil の項目はデフォルト値（更新時は現在値）です。
type Input struct {
	Coin            string
	Currency        string
	IntervalMinutes *int
	IsActive        *bool
}

// scheduleUsecase はスケジュールのユースケースを実装します。
type scheduleUsecase struct {
	repo ScheduleRepository
	now  func() time.Time
}

// NewScheduleUsecase はscheduleUsecaseの新しいインスタンスを生成します。
func NewScheduleUsecase(repo ScheduleRepository, now func() time.Time) *scheduleUsecase {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &scheduleUsecase{repo: repo, now: now}
}

func (u *scheduleUsecase) List(ctx context.Context, userID uint, limit, offset int) ([]entity.ScheduledScrape, error) {
	return u.repo.List(ctx, Filter{UserID: userID, Limit: limit, Offset: offset})
}

func (u *scheduleUsecase) Get(ctx context.Context, userID, id uint) (*entity.ScheduledScrape, error) {
	return u.repo.FindOwned(ctx, id, userID)
}

// Create はスケジュールを作成します。is_active 未指定時は有効、interval 未指定時は60分です。
func (u *scheduleUsecase) Create(ctx context.Context, userID uint, in Input) (*entity.ScheduledScrape, error) {
	s := &entity.ScheduledScrape{
		UserID:          userID,
		Currency:        entity.DefaultCurrency,
		IntervalMinutes: entity.DefaultIntervalMinutes,
		IsActive:        true,
	}
	if err := apply(s, in); err != nil {
		return nil, err
	}
	if err := u.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Update はスケジュールを書き換えます。last_run は変更しません。
func (u *scheduleUsecase) Update(ctx context.Context, userID, id uint, in Input) (*entity.ScheduledScrape, error) {
	s, err := u.repo.FindOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := apply(s, in); err != nil {
		return nil, err
	}
	if err := u.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (u *scheduleUsecase) Delete(ctx context.Context, userID, id uint) error {
	return u.repo.Delete(ctx, id, userID)
}

// Toggle は有効/無効を反転します。
func (u *scheduleUsecase) Toggle(ctx context.Context, userID, id uint) (*entity.ScheduledScrape, error) {
	s, err := u.repo.FindOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	s.Toggle()
	if err := u.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// MarkRun は last_run をサーバー時刻で更新します。
func (u *scheduleUsecase) MarkRun(ctx context.Context, userID, id uint) (*entity.ScheduledScrape, error) {
	s, err := u.repo.FindOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := markRun(s, u.now()); err != nil {
		return nil, err
	}
	if err := u.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Due はユーザーの実行期限を迎えたスケジュールを返します。
func (u *scheduleUsecase) Due(ctx context.Context, userID uint) ([]entity.ScheduledScrape, error) {
	rows, err := u.repo.List(ctx, Filter{UserID: userID, ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	return dueAt(rows, u.now()), nil
}

func dueAt(rows []entity.ScheduledScrape, now time.Time) []entity.ScheduledScrape {
	out := make([]entity.ScheduledScrape, 0, len(rows))
	for i := range rows {
		if rows[i].IsDue(now) {
			out = append(out, rows[i])
		}
	}
	return out
}

func markRun(s *entity.ScheduledScrape, now time.Time) error {
	if err := s.MarkRun(now); err != nil {
		if errors.Is(err, entity.ErrRunBeforeLastRun) {
			return ErrRunInPast
		}
		return err
	}
	return nil
}

func apply(s *entity.ScheduledScrape, in Input) error {
	coin := validation.NormalizeSymbol(in.Coin)
	if coin == "" {
		return ErrCoinRequired
	}
	s.Coin = coin
	if cur := validation.NormalizeSymbol(in.Currency); cur != "" {
		s.Currency = cur
	}
	if in.IntervalMinutes != nil {
		if *in.IntervalMinutes < 1 {
			return ErrInvalidInterval
		}
		s.IntervalMinutes = *in.IntervalMinutes
	}
	if in.IsActive != nil {
		s.IsActive = *in.IsActive
	}
	return nil
}
