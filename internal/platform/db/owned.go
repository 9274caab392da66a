package db

import (
	"context"

	"gorm.io/gorm"
)

// FindOwned loads the record with id that belongs to ownerID.
// 他ユーザーのレコードは gorm.ErrRecordNotFound として扱います。
func FindOwned[T any](ctx context.Context, db *gorm.DB, id, ownerID uint) (*T, error) {
	var rec T
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteOwned deletes the record with id that belongs to ownerID.
func DeleteOwned[T any](ctx context.Context, db *gorm.DB, id, ownerID uint) error {
	var rec T
	res := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
