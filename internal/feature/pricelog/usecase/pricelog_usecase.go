package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"coin_backend/internal/feature/pricelog/domain/entity"
	"coin_backend/internal/feature/reporting"
	"coin_backend/internal/shared/validation"
)

const (
	// DefaultHistoryDays は価格履歴のデフォルト日数です。
	DefaultHistoryDays = 30
)

// Filter は価格ログ検索の条件です。ゼロ値の項目は条件に含めません。
type Filter struct {
	UserID    uint
	Coin      string
	Currency  string
	Since     time.Time
	Ascending bool
	Limit     int
	Offset    int
}

// PriceLogRepository は価格ログの永続化層を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type PriceLogRepository interface {
	Create(ctx context.Context, e *entity.PriceLogEntry) error
	FindOwned(ctx context.Context, id, userID uint) (*entity.PriceLogEntry, error)
	Update(ctx context.Context, e *entity.PriceLogEntry) error
	Delete(ctx context.Context, id, userID uint) error
	List(ctx context.Context, f Filter) ([]entity.PriceLogEntry, error)
}

// Input は価格ログの作成・更新の入力です。
type Input struct {
	Coin     string
	Price    decimal.Decimal
	Currency string
	Date     *time.Time
}

// priceLogUsecase は価格ログのユースケースを実装します。
type priceLogUsecase struct {
	repo PriceLogRepository
	now  func() time.Time
}

// NewPriceLogUsecase はpriceLogUsecaseの新しいインスタンスを生成します。
func NewPriceLogUsecase(repo PriceLogRepository, now func() time.Time) *priceLogUsecase {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &priceLogUsecase{repo: repo, now: now}
}

// List はユーザーの価格ログを新しい順に返します。
func (u *priceLogUsecase) List(ctx context.Context, userID uint, limit, offset int) ([]entity.PriceLogEntry, error) {
	return u.repo.List(ctx, Filter{UserID: userID, Limit: limit, Offset: offset})
}

// Get はユーザーの価格ログを1件返します。
func (u *priceLogUsecase) Get(ctx context.Context, userID, id uint) (*entity.PriceLogEntry, error) {
	return u.repo.FindOwned(ctx, id, userID)
}

// Create は価格ログを記録します。日時が未指定の場合は現在時刻を使用します。
func (u *priceLogUsecase) Create(ctx context.Context, userID uint, in Input) (*entity.PriceLogEntry, error) {
	e := &entity.PriceLogEntry{UserID: userID}
	if err := u.apply(e, in); err != nil {
		return nil, err
	}
	if err := u.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Update は価格ログを書き換えます。
func (u *priceLogUsecase) Update(ctx context.Context, userID, id uint, in Input) (*entity.PriceLogEntry, error) {
	e, err := u.repo.FindOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := u.apply(e, in); err != nil {
		return nil, err
	}
	if err := u.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Delete は価格ログを削除します。
func (u *priceLogUsecase) Delete(ctx context.Context, userID, id uint) error {
	return u.repo.Delete(ctx, id, userID)
}

// ByCoin は指定コインの価格ログを新しい順に返します。
func (u *priceLogUsecase) ByCoin(ctx context.Context, userID uint, coin string) ([]entity.PriceLogEntry, error) {
	coin = validation.NormalizeSymbol(coin)
	if coin == "" {
		return nil, ErrCoinRequired
	}
	return u.repo.List(ctx, Filter{UserID: userID, Coin: coin})
}

// PriceHistory は直近 days 日間の指定コインの価格ログを古い順に返します。
func (u *priceLogUsecase) PriceHistory(ctx context.Context, userID uint, coin string, days int) ([]entity.PriceLogEntry, error) {
	coin = validation.NormalizeSymbol(coin)
	if coin == "" {
		return nil, ErrCoinRequired
	}
	if days <= 0 {
		days = DefaultHistoryDays
	}
	now := u.now()
	rows, err := u.repo.List(ctx, Filter{
		UserID:    userID,
		Coin:      coin,
		Since:     now.AddDate(0, 0, -days),
		Ascending: true,
	})
	if err != nil {
		return nil, err
	}
	return reporting.PriceHistory(rows, coin, days, now), nil
}

// LastPrice はユーザーが最後に記録した coin/currency の価格を返します。
// 記録がない場合 ok は false です。
func (u *priceLogUsecase) LastPrice(ctx context.Context, userID uint, coin, currency string) (decimal.Decimal, bool, error) {
	rows, err := u.repo.List(ctx, Filter{
		UserID:   userID,
		Coin:     validation.NormalizeSymbol(coin),
		Currency: validation.NormalizeSymbol(currency),
		Limit:    1,
	})
	if err != nil || len(rows) == 0 {
		return decimal.Zero, false, err
	}
	return rows[0].Price, true, nil
}

// Record は価格ログを記録します（スケジュール実行から呼ばれます）。
func (u *priceLogUsecase) Record(ctx context.Context, userID uint, coin, currency string, price decimal.Decimal) error {
	_, err := u.Create(ctx, userID, Input{Coin: coin, Currency: currency, Price: price})
	return err
}

func (u *priceLogUsecase) apply(e *entity.PriceLogEntry, in Input) error {
	coin := validation.NormalizeSymbol(in.Coin)
	if coin == "" {
		return ErrCoinRequired
	}
	if in.Price.IsNegative() {
		return ErrNegativePrice
	}
	currency := validation.NormalizeSymbol(in.Currency)
	if currency == "" {
		currency = entity.DefaultCurrency
	}
	date := u.now()
	if in.Date != nil {
		date = in.Date.UTC()
	}
	e.Coin = coin
	e.Price = in.Price
	e.Currency = currency
	e.Date = date
	return nil
}
