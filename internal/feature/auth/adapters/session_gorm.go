package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"coin_backend/internal/feature/auth/domain/entity"
	"coin_backend/internal/feature/auth/usecase"
)

// sessionGorm は SessionRepository のGORM実装です。Redis が無効な構成で使われます。
type sessionGorm struct {
	db  *gorm.DB
	now func() time.Time
}

var _ usecase.SessionRepository = (*sessionGorm)(nil)

// NewSessionGorm はsessionGormの新しいインスタンスを生成します。
func NewSessionGorm(db *gorm.DB) *sessionGorm {
	return &sessionGorm{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *sessionGorm) Create(ctx context.Context, session *entity.Session) error {
	return r.db.WithContext(ctx).Create(sessionModelOf(session)).Error
}

// FindByID は失効・期限切れも含めてセッションを返します。判定は呼び出し側で行います。
func (r *sessionGorm) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	var m SessionModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, usecase.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return m.toEntity(), nil
}

// FindByUserID は有効なセッションを作成日時の昇順で返します。
func (r *sessionGorm) FindByUserID(ctx context.Context, userID uint) ([]*entity.Session, error) {
	var rows []SessionModel
	err := r.db.WithContext(ctx).
		Scopes(activeAt(r.now())).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	sessions := make([]*entity.Session, 0, len(rows))
	for i := range rows {
		sessions = append(sessions, rows[i].toEntity())
	}
	return sessions, nil
}

// Revoke はセッションを失効させます。既に失効済みの場合は最初の失効時刻を保持します。
func (r *sessionGorm) Revoke(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&SessionModel{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", r.now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var n int64
	if err := r.db.WithContext(ctx).Model(&SessionModel{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return usecase.ErrSessionNotFound
	}
	return nil
}

// RevokeAllByUserID はユーザーの有効なセッションをすべて失効させます。
func (r *sessionGorm) RevokeAllByUserID(ctx context.Context, userID uint) error {
	now := r.now()
	return r.db.WithContext(ctx).
		Model(&SessionModel{}).
		Scopes(activeAt(now)).
		Where("user_id = ?", userID).
		Update("revoked_at", now).Error
}

// DeleteExpired は期限切れのセッションと、RevokedRetention より前に失効したセッションを削除します。
func (r *sessionGorm) DeleteExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Scopes(prunableAt(r.now())).
		Delete(&SessionModel{})
	return res.RowsAffected, res.Error
}

func (r *sessionGorm) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&SessionModel{}).
		Scopes(activeAt(r.now())).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}

// DeleteOldestByUserID は最も古い有効なセッションを削除します。
// MySQL は削除対象テーブルのサブクエリを許さないため、id を先に読みます。
func (r *sessionGorm) DeleteOldestByUserID(ctx context.Context, userID uint) error {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&SessionModel{}).
		Scopes(activeAt(r.now())).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil || len(ids) == 0 {
		return err
	}
	return r.db.WithContext(ctx).Delete(&SessionModel{}, "id = ?", ids[0]).Error
}
