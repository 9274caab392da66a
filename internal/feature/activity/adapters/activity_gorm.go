// Package adapters は操作履歴のGORMリポジトリを提供します。
package adapters

import (
	"context"

	"gorm.io/gorm"

	"coin_backend/internal/feature/activity/domain/entity"
	"coin_backend/internal/feature/activity/usecase"
)

type activityGorm struct {
	db *gorm.DB
}

var _ usecase.ActivityRepository = (*activityGorm)(nil)

// NewActivityRepository はactivityGormの新しいインスタンスを生成します。
func NewActivityRepository(db *gorm.DB) *activityGorm {
	return &activityGorm{db: db}
}

func (r *activityGorm) Create(ctx context.Context, e *entity.ActivityEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *activityGorm) List(ctx context.Context, f usecase.Filter) ([]entity.ActivityEntry, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", f.UserID)
	if !f.Since.IsZero() {
		q = q.Where("timestamp >= ?", f.Since)
	}
	q = q.Order("timestamp DESC").Order("id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var rows []entity.ActivityEntry
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Timestamp = rows[i].Timestamp.UTC()
	}
	return rows, nil
}
