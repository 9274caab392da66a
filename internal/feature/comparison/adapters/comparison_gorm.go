// Package adapters はコイン比較のGORMリポジトリを提供します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"coin_backend/internal/feature/comparison/domain/entity"
	"coin_backend/internal/feature/comparison/usecase"
	"coin_backend/internal/platform/db"
)

type comparisonGorm struct {
	db *gorm.DB
}

var _ usecase.ComparisonRepository = (*comparisonGorm)(nil)

// NewComparisonRepository はcomparisonGormの新しいインスタンスを生成します。
func NewComparisonRepository(db *gorm.DB) *comparisonGorm {
	return &comparisonGorm{db: db}
}

func (r *comparisonGorm) Create(ctx context.Context, c *entity.CoinComparison) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *comparisonGorm) FindOwned(ctx context.Context, id, userID uint) (*entity.CoinComparison, error) {
	c, err := db.FindOwned[entity.CoinComparison](ctx, r.db, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrComparisonNotFound
		}
		return nil, err
	}
	c.Timestamp = c.Timestamp.UTC()
	return c, nil
}

func (r *comparisonGorm) Update(ctx context.Context, c *entity.CoinComparison) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *comparisonGorm) Delete(ctx context.Context, id, userID uint) error {
	err := db.DeleteOwned[entity.CoinComparison](ctx, r.db, id, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return usecase.ErrComparisonNotFound
	}
	return err
}

func (r *comparisonGorm) List(ctx context.Context, f usecase.Filter) ([]entity.CoinComparison, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", f.UserID)
	if f.Coin1 != "" && f.Coin2 != "" {
		q = q.Where("(coin1 = ? AND coin2 = ?) OR (coin1 = ? AND coin2 = ?)", f.Coin1, f.Coin2, f.Coin2, f.Coin1)
	}
	if !f.Since.IsZero() {
		q = q.Where("comparison_date >= ?", f.Since)
	}
	q = q.Order("comparison_date DESC").Order("id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var rows []entity.CoinComparison
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Timestamp = rows[i].Timestamp.UTC()
	}
	return rows, nil
}
