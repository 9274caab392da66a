package usecase

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"coin_backend/internal/feature/preference/domain/entity"
	"coin_backend/internal/shared/validation"
)

var maxThreshold = decimal.RequireFromString("999.99")

// PreferenceRepository はユーザー設定の永続化層を抽象化します。
type PreferenceRepository interface {
	Create(ctx context.Context, p *entity.UserPreference) error
	FindOwned(ctx context.Context, id, userID uint) (*entity.UserPreference, error)
	FindByUserID(ctx context.Context, userID uint) (*entity.UserPreference, error)
	Update(ctx context.Context, p *entity.UserPreference) error
	Delete(ctx context.Context, id, userID uint) error
}

// Input はユーザー設定の作成・更新の入力です。nil の項目は現在値（新規作成時はデフォルト値）のままです。
type Input struct {
	PreferredCurrency   *string
	FavoriteCoins       []string
	NotifyOnPriceChange *bool
	NotifyThreshold     *decimal.Decimal
}

// preferenceUsecase はユーザー設定のユースケースを実装します。
type preferenceUsecase struct {
	repo PreferenceRepository
}

// NewPreferenceUsecase はpreferenceUsecaseの新しいインスタンスを生成します。
func NewPreferenceUsecase(repo PreferenceRepository) *preferenceUsecase {
	return &preferenceUsecase{repo: repo}
}

// List はユーザー自身の設定を0件または1件のスライスで返します。
func (u *preferenceUsecase) List(ctx context.Context, userID uint) ([]entity.UserPreference, error) {
	p, err := u.repo.FindByUserID(ctx, userID)
	if errors.Is(err, ErrPreferenceNotFound) {
		return []entity.UserPreference{}, nil
	}
	if err != nil {
		return nil, err
	}
	return []entity.UserPreference{*p}, nil
}

// Get はユーザー設定を1件返します。
func (u *preferenceUsecase) Get(ctx context.Context, userID, id uint) (*entity.UserPreference, error) {
	return u.repo.FindOwned(ctx, id, userID)
}

// Create はユーザー設定を作成します。1ユーザーにつき1件までです。
func (u *preferenceUsecase) Create(ctx context.Context, userID uint, in Input) (*entity.UserPreference, error) {
	p := entity.NewDefault(userID)
	if err := apply(p, in); err != nil {
		return nil, err
	}
	if err := u.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update はユーザー設定を書き換えます。
func (u *preferenceUsecase) Update(ctx context.Context, userID, id uint, in Input) (*entity.UserPreference, error) {
	p, err := u.repo.FindOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := apply(p, in); err != nil {
		return nil, err
	}
	if err := u.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete はユーザー設定を削除します。
func (u *preferenceUsecase) Delete(ctx context.Context, userID, id uint) error {
	return u.repo.Delete(ctx, id, userID)
}

// AddFavorite はお気に入りコインを追加します。設定がなければデフォルト値で作成します。
func (u *preferenceUsecase) AddFavorite(ctx context.Context, userID uint, coin string) (*entity.UserPreference, error) {
	if entity.NormalizeCoin(coin) == "" {
		return nil, ErrCoinRequired
	}
	p, err := u.repo.FindByUserID(ctx, userID)
	switch {
	case errors.Is(err, ErrPreferenceNotFound):
		p = entity.NewDefault(userID)
		p.FavoriteCoins.Add(coin)
		if err := u.repo.Create(ctx, p); err != nil {
			return nil, err
		}
		return p, nil
	case err != nil:
		return nil, err
	}
	if !p.FavoriteCoins.Add(coin) {
		return p, nil
	}
	if err := u.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// RemoveFavorite はお気に入りコインを削除します。含まれていなければ何もしません。
func (u *preferenceUsecase) RemoveFavorite(ctx context.Context, userID uint, coin string) (*entity.UserPreference, error) {
	if entity.NormalizeCoin(coin) == "" {
		return nil, ErrCoinRequired
	}
	p, err := u.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !p.FavoriteCoins.Remove(coin) {
		return p, nil
	}
	if err := u.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ShouldNotify はユーザーの通知設定で価格変動を評価します。
// 設定がないユーザーにはデフォルト設定（通知オン、5%）を適用します。
func (u *preferenceUsecase) ShouldNotify(ctx context.Context, userID uint, previous, next decimal.Decimal) (bool, error) {
	p, err := u.repo.FindByUserID(ctx, userID)
	if errors.Is(err, ErrPreferenceNotFound) {
		p = entity.NewDefault(userID)
	} else if err != nil {
		return false, err
	}
	return p.ShouldNotify(previous, next), nil
}

func apply(p *entity.UserPreference, in Input) error {
	if in.PreferredCurrency != nil {
		cur := validation.NormalizeSymbol(*in.PreferredCurrency)
		if !validation.IsCurrency(cur) {
			return validation.ErrInvalidCurrency
		}
		p.PreferredCurrency = cur
	}
	if in.NotifyThreshold != nil {
		if in.NotifyThreshold.IsNegative() || in.NotifyThreshold.GreaterThan(maxThreshold) {
			return ErrInvalidThreshold
		}
		p.NotifyThreshold = in.NotifyThreshold.Round(2)
	}
	if in.NotifyOnPriceChange != nil {
		p.NotifyOnPriceChange = *in.NotifyOnPriceChange
	}
	if in.FavoriteCoins != nil {
		coins := entity.FavoriteCoins{}
		for _, c := range in.FavoriteCoins {
			if entity.NormalizeCoin(c) == "" {
				return ErrCoinRequired
			}
			coins.Add(c)
		}
		p.FavoriteCoins = coins
	}
	return nil
}
