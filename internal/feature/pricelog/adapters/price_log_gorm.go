// Package adapters は価格ログのGORMリポジトリを提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"coin_backend/internal/feature/pricelog/domain/entity"
	"coin_backend/internal/feature/pricelog/usecase"
	"coin_backend/internal/platform/db"
)

// PriceLogModel is the GORM model for the price_logs table.
type PriceLogModel struct {
	ID       uint            `gorm:"primaryKey"`
	UserID   uint            `gorm:"not null;index:price_log_user_coin_date,priority:1"`
	Coin     string          `gorm:"size:20;not null;index:price_log_user_coin_date,priority:2"`
	Price    decimal.Decimal `gorm:"type:decimal(20,6);not null"`
	Currency string          `gorm:"size:10;not null;default:USD"`
	Date     time.Time       `gorm:"not null;index:price_log_user_coin_date,priority:3"`
}

// TableName returns the table name for GORM.
func (PriceLogModel) TableName() string {
	return "price_logs"
}

func toModel(e *entity.PriceLogEntry) *PriceLogModel {
	return &PriceLogModel{
		ID:       e.ID,
		UserID:   e.UserID,
		Coin:     e.Coin,
		Price:    e.Price,
		Currency: e.Currency,
		Date:     e.Date,
	}
}

func (m *PriceLogModel) toEntity() entity.PriceLogEntry {
	return entity.PriceLogEntry{
		ID:       m.ID,
		UserID:   m.UserID,
		Coin:     m.Coin,
		Price:    m.Price,
		Currency: m.Currency,
		Date:     m.Date.UTC(),
	}
}

type priceLogGorm struct {
	db *gorm.DB
}

var _ usecase.PriceLogRepository = (*priceLogGorm)(nil)

// NewPriceLogRepository はpriceLogGormの新しいインスタンスを生成します。
func NewPriceLogRepository(db *gorm.DB) *priceLogGorm {
	return &priceLogGorm{db: db}
}

func (r *priceLogGorm) Create(ctx context.Context, e *entity.PriceLogEntry) error {
	m := toModel(e)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	e.ID = m.ID
	return nil
}

func (r *priceLogGorm) FindOwned(ctx context.Context, id, userID uint) (*entity.PriceLogEntry, error) {
	m, err := db.FindOwned[PriceLogModel](ctx, r.db, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrPriceLogNotFound
		}
		return nil, err
	}
	e := m.toEntity()
	return &e, nil
}

func (r *priceLogGorm) Update(ctx context.Context, e *entity.PriceLogEntry) error {
	return r.db.WithContext(ctx).Save(toModel(e)).Error
}

func (r *priceLogGorm) Delete(ctx context.Context, id, userID uint) error {
	err := db.DeleteOwned[PriceLogModel](ctx, r.db, id, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return usecase.ErrPriceLogNotFound
	}
	return err
}

func (r *priceLogGorm) List(ctx context.Context, f usecase.Filter) ([]entity.PriceLogEntry, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", f.UserID)
	if f.Coin != "" {
		q = q.Where("coin = ?", f.Coin)
	}
	if f.Currency != "" {
		q = q.Where("currency = ?", f.Currency)
	}
	if !f.Since.IsZero() {
		q = q.Where("date >= ?", f.Since)
	}
	if f.Ascending {
		q = q.Order("date ASC").Order("id ASC")
	} else {
		q = q.Order("date DESC").Order("id DESC")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var rows []PriceLogModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.PriceLogEntry, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toEntity())
	}
	return out, nil
}
