// Package adapters はプロフィールのGORMリポジトリを提供します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"coin_backend/internal/feature/profile/domain/entity"
	"coin_backend/internal/feature/profile/usecase"
	"coin_backend/internal/platform/db"
)

type profileGorm struct {
	db *gorm.DB
}

var _ usecase.ProfileRepository = (*profileGorm)(nil)

// NewProfileRepository はprofileGormの新しいインスタンスを生成します。
func NewProfileRepository(db *gorm.DB) *profileGorm {
	return &profileGorm{db: db}
}

func (r *profileGorm) Create(ctx context.Context, p *entity.Profile) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if db.IsUniqueViolation(err) {
		return r.conflict(ctx, p)
	}
	return err
}

func (r *profileGorm) FindOwned(ctx context.Context, id, userID uint) (*entity.Profile, error) {
	p, err := db.FindOwned[entity.Profile](ctx, r.db, id, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, usecase.ErrProfileNotFound
	}
	return p, err
}

func (r *profileGorm) FindByUserID(ctx context.Context, userID uint) (*entity.Profile, error) {
	var p entity.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, usecase.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileGorm) Update(ctx context.Context, p *entity.Profile) error {
	err := r.db.WithContext(ctx).Save(p).Error
	if db.IsUniqueViolation(err) {
		return usecase.ErrDisplayNameTaken
	}
	return err
}

func (r *profileGorm) Delete(ctx context.Context, id, userID uint) error {
	err := db.DeleteOwned[entity.Profile](ctx, r.db, id, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return usecase.ErrProfileNotFound
	}
	return err
}

// conflict はユニーク制約違反の原因がuser_idかdisplay_nameかを判定します。
func (r *profileGorm) conflict(ctx context.Context, p *entity.Profile) error {
	var n int64
	if err := r.db.WithContext(ctx).Model(&entity.Profile{}).Where("user_id = ?", p.UserID).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return usecase.ErrProfileExists
	}
	return usecase.ErrDisplayNameTaken
}
