package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"coin_backend/internal/feature/exchangerate/domain/entity"
	"coin_backend/internal/feature/exchangerate/usecase"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to initialize test database")
	require.NoError(t, db.AutoMigrate(&entity.ExchangeRateSnapshot{}), "failed to migrate table")
	return db
}

var base = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

func seed(t *testing.T, repo *exchangeRateGorm, b, tg, rate string, at time.Time) entity.ExchangeRateSnapshot {
	t.Helper()
	s := entity.ExchangeRateSnapshot{
		BaseCurrency:   b,
		TargetCurrency: tg,
		Rate:           decimal.RequireFromString(rate),
		Timestamp:      at,
	}
	require.NoError(t, repo.Create(context.Background(), &s))
	return s
}

func TestExchangeRateGorm_FindByID(t *testing.T) {
	t.Parallel()

	repo := NewExchangeRateRepository(setupTestDB(t))
	s := seed(t, repo, "USD", "EUR", "0.92", base)

	got, err := repo.FindByID(context.Background(), s.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.92").Equal(got.Rate))
	assert.True(t, base.Equal(got.Timestamp))

	_, err = repo.FindByID(context.Background(), 999)
	assert.ErrorIs(t, err, usecase.ErrRateNotFound)
}

func TestExchangeRateGorm_List(t *testing.T) {
	t.Parallel()

	repo := NewExchangeRateRepository(setupTestDB(t))
	a := seed(t, repo, "USD", "EUR", "0.90", base.AddDate(0, 0, -40))
	b := seed(t, repo, "USD", "EUR", "0.91", base.AddDate(0, 0, -2))
	c := seed(t, repo, "USD", "JPY", "150", base.AddDate(0, 0, -1))
	d := seed(t, repo, "EUR", "USD", "1.09", base)

	tests := []struct {
		name    string
		filter  usecase.Filter
		wantIDs []uint
	}{
		{name: "all, newest first", filter: usecase.Filter{}, wantIDs: []uint{d.ID, c.ID, b.ID, a.ID}},
		{name: "pair history ascending", filter: usecase.Filter{Base: "USD", Target: "EUR", Ascending: true}, wantIDs: []uint{a.ID, b.ID}},
		{name: "pair since", filter: usecase.Filter{Base: "USD", Target: "EUR", Since: base.AddDate(0, 0, -30)}, wantIDs: []uint{b.ID}},
		{name: "paging", filter: usecase.Filter{Limit: 2, Offset: 1}, wantIDs: []uint{c.ID, b.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := repo.List(context.Background(), tt.filter)
			require.NoError(t, err)
			got := make([]uint, len(rows))
			for i, r := range rows {
				got[i] = r.ID
			}
			assert.Equal(t, tt.wantIDs, got)
		})
	}
}

// TestExchangeRateGorm_Latest はペアごとに最新の1件だけを返すことを確認します。
func TestExchangeRateGorm_Latest(t *testing.T) {
	t.Parallel()

	repo := NewExchangeRateRepository(setupTestDB(t))
	seed(t, repo, "USD", "EUR", "0.90", base.Add(-time.Hour))
	first := seed(t, repo, "USD", "EUR", "0.91", base)
	seed(t, repo, "USD", "EUR", "0.99", base) // 同時刻は先に記録された方
	jpy := seed(t, repo, "USD", "JPY", "150", base.Add(-24*time.Hour))
	eur := seed(t, repo, "EUR", "USD", "1.09", base.Add(-time.Minute))

	rows, err := repo.Latest(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []uint{eur.ID, first.ID, jpy.ID}, []uint{rows[0].ID, rows[1].ID, rows[2].ID})
}

// TestExchangeRateGorm_Latest_ReadsOnlyNewestRows は履歴が多くても
// ペアごとの最新行だけがデータベースから読み出されることを確認します。
func TestExchangeRateGorm_Latest_ReadsOnlyNewestRows(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	repo := NewExchangeRateRepository(db)
	for i := 0; i < 50; i++ {
		seed(t, repo, "USD", "EUR", "0.90", base.Add(-time.Duration(i+1)*time.Hour))
		seed(t, repo, "BTC", "USD", "60000", base.Add(-time.Duration(i+1)*time.Minute))
	}
	usdEur := seed(t, repo, "USD", "EUR", "0.93", base)
	btcUsd := seed(t, repo, "BTC", "USD", "61000", base)
	seed(t, repo, "BTC", "USD", "61500", base) // 同時刻の重複

	var scanned int64
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:rows", func(tx *gorm.DB) {
		scanned = tx.Statement.RowsAffected
	}))

	rows, err := repo.Latest(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, btcUsd.ID, rows[0].ID)
	assert.Equal(t, usdEur.ID, rows[1].ID)
	assert.True(t, decimal.RequireFromString("0.93").Equal(rows[1].Rate))
	assert.Equal(t, int64(3), scanned, "only the newest rows per pair should be read")
}

func TestExchangeRateGorm_Latest_Empty(t *testing.T) {
	repo := NewExchangeRateRepository(setupTestDB(t))
	rows, err := repo.Latest(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}
