package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"coin_backend/internal/feature/exchangerate/domain/entity"
	"coin_backend/internal/shared/validation"
)

// DefaultHistoryDays は為替履歴のデフォルト日数です。
const DefaultHistoryDays = 30

// Filter は為替レート検索の条件です。ゼロ値の項目は条件に含めません。
type Filter struct {
	Base      string
	Target    string
	Since     time.Time
	Ascending bool
	Limit     int
	Offset    int
}

// ExchangeRateRepository は為替レートの永続化層を抽象化します。
type ExchangeRateRepository interface {
	Create(ctx context.Context, s *entity.ExchangeRateSnapshot) error
	FindByID(ctx context.Context, id uint) (*entity.ExchangeRateSnapshot, error)
	List(ctx context.Context, f Filter) ([]entity.ExchangeRateSnapshot, error)
	// Latest returns the newest snapshot of every pair, sorted by base then target.
	Latest(ctx context.Context) ([]entity.ExchangeRateSnapshot, error)
}

// Input は為替レートの記録入力です。
type Input struct {
	Base   string
	Target string
	Rate   decimal.Decimal
}

type exchangeRateUsecase struct {
	repo ExchangeRateRepository
	now  func() time.Time
}

// NewExchangeRateUsecase はexchangeRateUsecaseの新しいインスタンスを生成します。
func NewExchangeRateUsecase(repo ExchangeRateRepository, now func() time.Time) *exchangeRateUsecase {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &exchangeRateUsecase{repo: repo, now: now}
}

// List はスナップショットを新しい順に返します。
func (u *exchangeRateUsecase) List(ctx context.Context, limit, offset int) ([]entity.ExchangeRateSnapshot, error) {
	return u.repo.List(ctx, Filter{Limit: limit, Offset: offset})
}

func (u *exchangeRateUsecase) Get(ctx context.Context, id uint) (*entity.ExchangeRateSnapshot, error) {
	return u.repo.FindByID(ctx, id)
}

// Create はスナップショットを記録します。記録時刻はサーバー時刻です。
func (u *exchangeRateUsecase) Create(ctx context.Context, in Input) (*entity.ExchangeRateSnapshot, error) {
	base, target, err := pair(in.Base, in.Target)
	if err != nil {
		return nil, err
	}
	if !in.Rate.IsPositive() {
		return nil, ErrNonPositiveRate
	}
	s := &entity.ExchangeRateSnapshot{
		BaseCurrency:   base,
		TargetCurrency: target,
		Rate:           in.Rate,
		Timestamp:      u.now(),
	}
	if err := u.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Latest は通貨ペアごとの最新スナップショットを返します。
func (u *exchangeRateUsecase) Latest(ctx context.Context) ([]entity.ExchangeRateSnapshot, error) {
	return u.repo.Latest(ctx)
}

// History は直近 days 日間の通貨ペアのスナップショットを古い順に返します。
func (u *exchangeRateUsecase) History(ctx context.Context, base, target string, days int) ([]entity.ExchangeRateSnapshot, error) {
	base, target, err := pair(base, target)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = DefaultHistoryDays
	}
	return u.repo.List(ctx, Filter{
		Base:      base,
		Target:    target,
		Since:     u.now().AddDate(0, 0, -days),
		Ascending: true,
	})
}

func pair(base, target string) (string, string, error) {
	base = validation.NormalizeSymbol(base)
	target = validation.NormalizeSymbol(target)
	if base == "" || target == "" {
		return "", "", ErrPairRequired
	}
	if !validation.IsCurrency(base) || !validation.IsCurrency(target) {
		return "", "", validation.ErrInvalidCurrency
	}
	if base == target {
		return "", "", ErrSameCurrency
	}
	return base, target, nil
}
