package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"coin_backend/internal/feature/comparison/domain/entity"
	"coin_backend/internal/shared/validation"
)

// RecentWindow は「最近の比較」とみなす期間です。
const RecentWindow = 7 * 24 * time.Hour

// Filter はコイン比較検索の条件です。Coin1/Coin2 を指定した場合は順不同で一致させます。
type Filter struct {
	UserID uint
	Coin1  string
	Coin2  string
	Since  time.Time
	Limit  int
	Offset int
}

// ComparisonRepository はコイン比較の永続化層を抽象化します。
type ComparisonRepository interface {
	Create(ctx context.Context, c *entity.CoinComparison) error
	FindOwned(ctx context.Context, id, userID uint) (*entity.CoinComparison, error)
	Update(ctx context.Context, c *entity.CoinComparison) error
	Delete(ctx context.Context, id, userID uint) error
	List(ctx context.Context, f Filter) ([]entity.CoinComparison, error)
}

// Input はコイン比較の作成・更新の入力です。
type Input struct {
	Coin1  string
	Coin2  string
	Price1 decimal.Decimal
	Price2 decimal.Decimal
}

type comparisonUsecase struct {
	repo ComparisonRepository
	now  func() time.Time
}

// NewComparisonUsecase はcomparisonUsecaseの新しいインスタンスを生成します。
func NewComparisonUsecase(repo ComparisonRepository, now func() time.Time) *comparisonUsecase {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &comparisonUsecase{repo: repo, now: now}
}

func (u *comparisonUsecase) List(ctx context.Context, userID uint, limit, offset int) ([]entity.CoinComparison, error) {
	return u.repo.List(ctx, Filter{UserID: userID, Limit: limit, Offset: offset})
}

func (u *comparisonUsecase) Get(ctx context.Context, userID, id uint) (*entity.CoinComparison, error) {
	return u.repo.FindOwned(ctx, id, userID)
}

// Create は比較を記録します。比較日時はサーバー時刻です。
func (u *comparisonUsecase) Create(ctx context.Context, userID uint, in Input) (*entity.CoinComparison, error) {
	c := &entity.CoinComparison{UserID: userID, Timestamp: u.now()}
	if err := apply(c, in); err != nil {
		return nil, err
	}
	if err := u.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update は比較内容を書き換えます。比較日時は変更しません。
func (u *comparisonUsecase) Update(ctx context.Context, userID, id uint, in Input) (*entity.CoinComparison, error) {
	c, err := u.repo.FindOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := apply(c, in); err != nil {
		return nil, err
	}
	if err := u.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (u *comparisonUsecase) Delete(ctx context.Context, userID, id uint) error {
	return u.repo.Delete(ctx, id, userID)
}

// ByPair は coin1/coin2 の組み合わせ（順不同）の比較を新しい順に返します。
func (u *comparisonUsecase) ByPair(ctx context.Context, userID uint, coin1, coin2 string) ([]entity.CoinComparison, error) {
	coin1 = validation.NormalizeSymbol(coin1)
	coin2 = validation.NormalizeSymbol(coin2)
	if coin1 == "" || coin2 == "" {
		return nil, ErrCoinsRequired
	}
	return u.repo.List(ctx, Filter{UserID: userID, Coin1: coin1, Coin2: coin2})
}

// Recent は直近7日間の比較を新しい順に返します。
func (u *comparisonUsecase) Recent(ctx context.Context, userID uint) ([]entity.CoinComparison, error) {
	return u.repo.List(ctx, Filter{UserID: userID, Since: u.now().Add(-RecentWindow)})
}

func apply(c *entity.CoinComparison, in Input) error {
	coin1 := validation.NormalizeSymbol(in.Coin1)
	coin2 := validation.NormalizeSymbol(in.Coin2)
	if coin1 == "" || coin2 == "" {
		return ErrCoinsRequired
	}
	if entity.SameCoin(coin1, coin2) {
		return ErrSameCoin
	}
	if in.Price1.IsNegative() || in.Price2.IsNegative() {
		return ErrNegativePrice
	}
	c.Coin1 = coin1
	c.Coin2 = coin2
	c.Price1 = in.Price1
	c.Price2 = in.Price2
	return nil
}
