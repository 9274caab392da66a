// Package adapters はユーザー設定のGORMリポジトリを提供します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"coin_backend/internal/feature/preference/domain/entity"
	"coin_backend/internal/feature/preference/usecase"
	"coin_backend/internal/platform/db"
)

type preferenceGorm struct {
	db *gorm.DB
}

var _ usecase.PreferenceRepository = (*preferenceGorm)(nil)

// NewPreferenceRepository はpreferenceGormの新しいインスタンスを生成します。
func NewPreferenceRepository(db *gorm.DB) *preferenceGorm {
	return &preferenceGorm{db: db}
}

func (r *preferenceGorm) Create(ctx context.Context, p *entity.UserPreference) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if db.IsUniqueViolation(err) {
		return usecase.ErrPreferenceExists
	}
	return err
}

func (r *preferenceGorm) FindOwned(ctx context.Context, id, userID uint) (*entity.UserPreference, error) {
	p, err := db.FindOwned[entity.UserPreference](ctx, r.db, id, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, usecase.ErrPreferenceNotFound
	}
	return p, err
}

func (r *preferenceGorm) FindByUserID(ctx context.Context, userID uint) (*entity.UserPreference, error) {
	var p entity.UserPreference
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, usecase.ErrPreferenceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update は全カラムを保存します。false や空のお気に入りもそのまま書き込まれます。
func (r *preferenceGorm) Update(ctx context.Context, p *entity.UserPreference) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *preferenceGorm) Delete(ctx context.Context, id, userID uint) error {
	err := db.DeleteOwned[entity.UserPreference](ctx, r.db, id, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return usecase.ErrPreferenceNotFound
	}
	return err
}
