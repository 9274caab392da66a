package usecase

import (
	"context"
	"errors"
	"strings"

	"coin_backend/internal/feature/profile/domain/entity"
)

// ProfileRepository はプロフィールの永続化層を抽象化します。
type ProfileRepository interface {
	Create(ctx context.Context, p *entity.Profile) error
	FindOwned(ctx context.Context, id, userID uint) (*entity.Profile, error)
	FindByUserID(ctx context.Context, userID uint) (*entity.Profile, error)
	Update(ctx context.Context, p *entity.Profile) error
	Delete(ctx context.Context, id, userID uint) error
}

// Input はプロフィールの作成・更新の入力です。空の表示名は未設定として扱います。
type Input struct {
	DisplayName string
	Bio         string
	Phone       string
}

// profileUsecase はプロフィールのユースケースを実装します。
type profileUsecase struct {
	repo ProfileRepository
}

// NewProfileUsecase はprofileUsecaseの新しいインスタンスを生成します。
func NewProfileUsecase(repo ProfileRepository) *profileUsecase {
	return &profileUsecase{repo: repo}
}

// List はユーザー自身のプロフィールを0件または1件のスライスで返します。
func (u *profileUsecase) List(ctx context.Context, userID uint) ([]entity.Profile, error) {
	p, err := u.repo.FindByUserID(ctx, userID)
	if errors.Is(err, ErrProfileNotFound) {
		return []entity.Profile{}, nil
	}
	if err != nil {
		return nil, err
	}
	return []entity.Profile{*p}, nil
}

// Mine はユーザー自身のプロフィールを返します。
func (u *profileUsecase) Mine(ctx context.Context, userID uint) (*entity.Profile, error) {
	return u.repo.FindByUserID(ctx, userID)
}

// Get はプロフィールを1件返します。他人のプロフィールはNotFoundになります。
func (u *profileUsecase) Get(ctx context.Context, userID, id uint) (*entity.Profile, error) {
	return u.repo.FindOwned(ctx, id, userID)
}

// Create はプロフィールを作成します。既に存在する場合はErrProfileExistsを返します。
func (u *profileUsecase) Create(ctx context.Context, userID uint, in Input) (*entity.Profile, error) {
	p := &entity.Profile{UserID: userID}
	apply(p, in)
	if err := u.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update はプロフィールを書き換えます。
func (u *profileUsecase) Update(ctx context.Context, userID, id uint, in Input) (*entity.Profile, error) {
	p, err := u.repo.FindOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	apply(p, in)
	if err := u.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete はプロフィールを削除します。
func (u *profileUsecase) Delete(ctx context.Context, userID, id uint) error {
	return u.repo.Delete(ctx, id, userID)
}

// EnsureForUser はユーザーのプロフィールを取得し、なければ空のプロフィールを作成します。
// ユーザー作成直後のフックから呼ばれます。
func (u *profileUsecase) EnsureForUser(ctx context.Context, userID uint) (*entity.Profile, error) {
	p, err := u.repo.FindByUserID(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}
	p = &entity.Profile{UserID: userID}
	if err := u.repo.Create(ctx, p); err != nil {
		// 同時作成された場合は既存のものを返す
		if errors.Is(err, ErrProfileExists) {
			return u.repo.FindByUserID(ctx, userID)
		}
		return nil, err
	}
	return p, nil
}

func apply(p *entity.Profile, in Input) {
	p.DisplayName = nil
	if name := strings.TrimSpace(in.DisplayName); name != "" {
		p.DisplayName = &name
	}
	p.Bio = in.Bio
	p.Phone = strings.TrimSpace(in.Phone)
}
