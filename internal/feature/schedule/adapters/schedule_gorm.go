// Package adapters はスケジュールのGORMリポジトリを提供します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"coin_backend/internal/feature/schedule/domain/entity"
	"coin_backend/internal/feature/schedule/usecase"
	"coin_backend/internal/platform/db"
)

type scheduleGorm struct {
	db *gorm.DB
}

var _ usecase.ScheduleRepository = (*scheduleGorm)(nil)

// NewScheduleRepository はscheduleGormの新しいインスタンスを生成します。
func NewScheduleRepository(db *gorm.DB) *scheduleGorm {
	return &scheduleGorm{db: db}
}

func (r *scheduleGorm) Create(ctx context.Context, s *entity.ScheduledScrape) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *scheduleGorm) FindOwned(ctx context.Context, id, userID uint) (*entity.ScheduledScrape, error) {
	s, err := db.FindOwned[entity.ScheduledScrape](ctx, r.db, id, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, usecase.ErrScheduleNotFound
	}
	return s, err
}

func (r *scheduleGorm) Update(ctx context.Context, s *entity.ScheduledScrape) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *scheduleGorm) Delete(ctx context.Context, id, userID uint) error {
	err := db.DeleteOwned[entity.ScheduledScrape](ctx, r.db, id, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return usecase.ErrScheduleNotFound
	}
	return err
}

func (r *scheduleGorm) List(ctx context.Context, f usecase.Filter) ([]entity.ScheduledScrape, error) {
	q := r.db.WithContext(ctx).Order("id ASC")
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var rows []entity.ScheduledScrape
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
