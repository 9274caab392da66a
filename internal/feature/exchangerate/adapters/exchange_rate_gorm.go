// Package adapters は為替レートのGORMリポジトリを提供します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"coin_backend/internal/feature/exchangerate/domain/entity"
	"coin_backend/internal/feature/exchangerate/usecase"
	"coin_backend/internal/feature/reporting"
)

type exchangeRateGorm struct {
	db *gorm.DB
}

var _ usecase.ExchangeRateRepository = (*exchangeRateGorm)(nil)

// NewExchangeRateRepository はexchangeRateGormの新しいインスタンスを生成します。
func NewExchangeRateRepository(db *gorm.DB) *exchangeRateGorm {
	return &exchangeRateGorm{db: db}
}

func (r *exchangeRateGorm) Create(ctx context.Context, s *entity.ExchangeRateSnapshot) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *exchangeRateGorm) FindByID(ctx context.Context, id uint) (*entity.ExchangeRateSnapshot, error) {
	var s entity.ExchangeRateSnapshot
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrRateNotFound
		}
		return nil, err
	}
	s.Timestamp = s.Timestamp.UTC()
	return &s, nil
}

func (r *exchangeRateGorm) List(ctx context.Context, f usecase.Filter) ([]entity.ExchangeRateSnapshot, error) {
	q := r.db.WithContext(ctx)
	if f.Base != "" {
		q = q.Where("base_currency = ?", f.Base)
	}
	if f.Target != "" {
		q = q.Where("target_currency = ?", f.Target)
	}
	if !f.Since.IsZero() {
		q = q.Where("timestamp >= ?", f.Since)
	}
	if f.Ascending {
		q = q.Order("timestamp ASC").Order("id ASC")
	} else {
		q = q.Order("timestamp DESC").Order("id DESC")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var rows []entity.ExchangeRateSnapshot
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Timestamp = rows[i].Timestamp.UTC()
	}
	return rows, nil
}

// Latest はペアごとの最新スナップショットを返します。
// SQL ではペアごとの MAX(timestamp) に一致する行だけを読み、
// 同時刻の重複は id の小さい方を残して reporting.LatestRates で解消します。
func (r *exchangeRateGorm) Latest(ctx context.Context) ([]entity.ExchangeRateSnapshot, error) {
	latest := r.db.Model(&entity.ExchangeRateSnapshot{}).
		Select("base_currency, target_currency, MAX(timestamp) AS max_ts").
		Group("base_currency, target_currency")

	var rows []entity.ExchangeRateSnapshot
	err := r.db.WithContext(ctx).
		Select("s.*").
		Table("exchange_rate_snapshots AS s").
		Joins("JOIN (?) AS latest ON latest.base_currency = s.base_currency"+
			" AND latest.target_currency = s.target_currency"+
			" AND latest.max_ts = s.timestamp", latest).
		Order("s.id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Timestamp = rows[i].Timestamp.UTC()
	}
	return reporting.LatestRates(rows), nil
}
