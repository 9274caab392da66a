package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin_backend/internal/feature/preference/domain/entity"
	"coin_backend/internal/shared/apperr"
)

// memPreferences は1ユーザー1件を保持するインメモリのPreferenceRepositoryです。
type memPreferences struct {
	byUser  map[uint]*entity.UserPreference
	nextID  uint
	updates int
	findErr error
}

func newMemPreferences() *memPreferences {
	return &memPreferences{byUser: map[uint]*entity.UserPreference{}}
}

func (m *memPreferences) Create(_ context.Context, p *entity.UserPreference) error {
	if _, ok := m.byUser[p.UserID]; ok {
		return ErrPreferenceExists
	}
	m.nextID++
	p.ID = m.nextID
	m.byUser[p.UserID] = p
	return nil
}

func (m *memPreferences) FindOwned(_ context.Context, id, userID uint) (*entity.UserPreference, error) {
	if p, ok := m.byUser[userID]; ok && p.ID == id {
		return p, nil
	}
	return nil, ErrPreferenceNotFound
}

func (m *memPreferences) FindByUserID(_ context.Context, userID uint) (*entity.UserPreference, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if p, ok := m.byUser[userID]; ok {
		return p, nil
	}
	return nil, ErrPreferenceNotFound
}

func (m *memPreferences) Update(_ context.Context, p *entity.UserPreference) error {
	m.updates++
	m.byUser[p.UserID] = p
	return nil
}

func (m *memPreferences) Delete(_ context.Context, id, userID uint) error {
	if p, ok := m.byUser[userID]; ok && p.ID == id {
		delete(m.byUser, userID)
		return nil
	}
	return ErrPreferenceNotFound
}

func ptr[T any](v T) *T { return &v }

func TestPreferenceUsecase_Create(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      Input
		wantErr error
		check   func(t *testing.T, p *entity.UserPreference)
	}{
		{
			name: "defaults",
			in:   Input{},
			check: func(t *testing.T, p *entity.UserPreference) {
				assert.Equal(t, "USD", p.PreferredCurrency)
				assert.True(t, p.NotifyOnPriceChange)
				assert.True(t, decimal.NewFromInt(5).Equal(p.NotifyThreshold))
			},
		},
		{
			name: "explicit values",
			in: Input{
				PreferredCurrency:   ptr("eur"),
				FavoriteCoins:       []string{"btc", "BTC", "eth"},
				NotifyOnPriceChange: ptr(false),
				NotifyThreshold:     ptr(decimal.RequireFromString("2.5")),
			},
			check: func(t *testing.T, p *entity.UserPreference) {
				assert.Equal(t, "EUR", p.PreferredCurrency)
				assert.Equal(t, entity.FavoriteCoins{"BTC", "ETH"}, p.FavoriteCoins)
				assert.False(t, p.NotifyOnPriceChange)
				assert.Equal(t, "2.5", p.NotifyThreshold.String())
			},
		},
		{
			name:    "negative threshold",
			in:      Input{NotifyThreshold: ptr(decimal.NewFromInt(-1))},
			wantErr: ErrInvalidThreshold,
		},
		{
			name:    "threshold too large",
			in:      Input{NotifyThreshold: ptr(decimal.NewFromInt(1000))},
			wantErr: ErrInvalidThreshold,
		},
		{
			name:    "bad currency",
			in:      Input{PreferredCurrency: ptr("dollars")},
			wantErr: apperr.ErrValidation,
		},
		{
			name:    "empty favorite",
			in:      Input{FavoriteCoins: []string{"btc", " "}},
			wantErr: ErrCoinRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			uc := NewPreferenceUsecase(newMemPreferences())
			p, err := uc.Create(context.Background(), 1, tt.in)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, p)
		})
	}
}

func TestPreferenceUsecase_CreateTwice(t *testing.T) {
	t.Parallel()

	uc := NewPreferenceUsecase(newMemPreferences())
	_, err := uc.Create(context.Background(), 1, Input{})
	require.NoError(t, err)
	_, err = uc.Create(context.Background(), 1, Input{})
	assert.ErrorIs(t, err, ErrPreferenceExists)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestPreferenceUsecase_AddFavorite(t *testing.T) {
	t.Parallel()

	repo := newMemPreferences()
	uc := NewPreferenceUsecase(repo)

	// 設定がなければ作成される
	p, err := uc.AddFavorite(context.Background(), 1, "btc")
	require.NoError(t, err)
	assert.Equal(t, entity.FavoriteCoins{"BTC"}, p.FavoriteCoins)

	// 2回目は変更なし（保存もしない）
	p, err = uc.AddFavorite(context.Background(), 1, "btc")
	require.NoError(t, err)
	assert.Equal(t, entity.FavoriteCoins{"BTC"}, p.FavoriteCoins)
	assert.Equal(t, 0, repo.updates)

	p, err = uc.AddFavorite(context.Background(), 1, "eth")
	require.NoError(t, err)
	assert.Equal(t, entity.FavoriteCoins{"BTC", "ETH"}, p.FavoriteCoins)
	assert.Equal(t, 1, repo.updates)

	_, err = uc.AddFavorite(context.Background(), 1, " ")
	assert.ErrorIs(t, err, ErrCoinRequired)
}

func TestPreferenceUsecase_RemoveFavorite(t *testing.T) {
	t.Parallel()

	repo := newMemPreferences()
	uc := NewPreferenceUsecase(repo)

	_, err := uc.RemoveFavorite(context.Background(), 1, "btc")
	assert.ErrorIs(t, err, ErrPreferenceNotFound)

	_, err = uc.Create(context.Background(), 1, Input{FavoriteCoins: []string{"btc", "eth"}})
	require.NoError(t, err)

	p, err := uc.RemoveFavorite(context.Background(), 1, "doge")
	require.NoError(t, err)
	assert.Equal(t, entity.FavoriteCoins{"BTC", "ETH"}, p.FavoriteCoins)
	assert.Equal(t, 0, repo.updates)

	p, err = uc.RemoveFavorite(context.Background(), 1, "Btc")
	require.NoError(t, err)
	assert.Equal(t, entity.FavoriteCoins{"ETH"}, p.FavoriteCoins)
}

func TestPreferenceUsecase_ShouldNotify(t *testing.T) {
	t.Parallel()

	repo := newMemPreferences()
	uc := NewPreferenceUsecase(repo)
	hundred, drop := decimal.NewFromInt(100), decimal.NewFromInt(94)

	// 設定なし: デフォルト（通知オン、5%）
	ok, err := uc.ShouldNotify(context.Background(), 1, hundred, drop)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = uc.Create(context.Background(), 1, Input{NotifyThreshold: ptr(decimal.NewFromInt(10))})
	require.NoError(t, err)
	ok, err = uc.ShouldNotify(context.Background(), 1, hundred, drop)
	require.NoError(t, err)
	assert.False(t, ok)

	repo.findErr = errors.New("db down")
	_, err = uc.ShouldNotify(context.Background(), 1, hundred, drop)
	assert.Error(t, err)
}

func TestPreferenceUsecase_UpdateAndList(t *testing.T) {
	t.Parallel()

	uc := NewPreferenceUsecase(newMemPreferences())

	list, err := uc.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, list)

	p, err := uc.Create(context.Background(), 1, Input{})
	require.NoError(t, err)

	_, err = uc.Update(context.Background(), 2, p.ID, Input{})
	assert.ErrorIs(t, err, ErrPreferenceNotFound)

	updated, err := uc.Update(context.Background(), 1, p.ID, Input{NotifyOnPriceChange: ptr(false)})
	require.NoError(t, err)
	assert.False(t, updated.NotifyOnPriceChange)
	assert.Equal(t, "USD", updated.PreferredCurrency, "omitted fields keep their value")

	list, err = uc.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, uc.Delete(context.Background(), 1, p.ID))
}
