// Package adapters はエラーログのGORMリポジトリを提供します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"coin_backend/internal/feature/errorlog/domain/entity"
	"coin_backend/internal/feature/errorlog/usecase"
)

type errorLogGorm struct {
	db *gorm.DB
}

var _ usecase.ErrorLogRepository = (*errorLogGorm)(nil)

// NewErrorLogRepository はerrorLogGormの新しいインスタンスを生成します。
func NewErrorLogRepository(db *gorm.DB) *errorLogGorm {
	return &errorLogGorm{db: db}
}

// Append は最新行を読んで記録時刻を補正し、同じトランザクションで挿入します。
// mysql/postgres では最新行を FOR UPDATE でロックして書き込みを直列化します。
// sqlite は書き込みがデータベース単位で直列化されるためロック句を付けません。
func (r *errorLogGorm) Append(ctx context.Context, e *entity.ErrorLogEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Order("timestamp DESC").Order("id DESC").Limit(1)
		if tx.Dialector.Name() != "sqlite" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var latest entity.ErrorLogEntry
		if err := q.Find(&latest).Error; err != nil {
			return err
		}
		if latest.ID != 0 && e.Timestamp.Before(latest.Timestamp) {
			e.Timestamp = latest.Timestamp
		}
		return tx.Create(e).Error
	})
}

func (r *errorLogGorm) FindByID(ctx context.Context, id uint) (*entity.ErrorLogEntry, error) {
	var e entity.ErrorLogEntry
	err := r.db.WithContext(ctx).First(&e, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, usecase.ErrErrorLogNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *errorLogGorm) List(ctx context.Context, f usecase.Filter) ([]entity.ErrorLogEntry, error) {
	q := r.db.WithContext(ctx).Order("timestamp DESC").Order("id DESC")
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if !f.Since.IsZero() {
		q = q.Where("timestamp >= ?", f.Since)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var rows []entity.ErrorLogEntry
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
