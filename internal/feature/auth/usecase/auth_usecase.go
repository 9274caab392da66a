// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"coin_backend/internal/feature/auth/domain/entity"
)

const (
	// MaxSessionsPerUser はユーザーごとに保持できる有効セッション数の上限です。
	MaxSessionsPerUser = 5

	// refreshTokenBytes はリフレッシュトークンのバイト長です（hex で64文字）。
	refreshTokenBytes = 32

	// dummyHash はユーザーが存在しない場合にもbcrypt比較を行うためのダミーハッシュです。
	dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// メールアドレスまたはユーザー名が重複する場合、ErrEmailAlreadyExists / ErrUsernameAlreadyExists を返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID は指定されたIDに一致するユーザーを取得します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// UpdatePassword はパスワードハッシュを更新します。
	UpdatePassword(ctx context.Context, id uint, hash string) error
}

// JWTGenerator はアクセストークン生成のインターフェースを定義します。
type JWTGenerator interface {
	GenerateToken(userID uint, email string, staff bool) (string, error)
	ExpiresIn() int64
}

// ResetTokenIssuer はパスワードリセットトークンの発行と検証を行います。
type ResetTokenIssuer interface {
	Issue(userID uint, fingerprint string) (string, error)
	Parse(token string) (userID uint, fingerprint string, err error)
}

// AccountMailer はアカウント関連メールの送信を非同期に依頼します。
type AccountMailer interface {
	SendPasswordReset(ctx context.Context, email, username, token string) error
}

// PostCreateHook はユーザー作成直後に同期的に呼び出されるフックです。
type PostCreateHook func(ctx context.Context, user *entity.User) error

// SignupInput は新規登録の入力です。
type SignupInput struct {
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
}

// ClientMeta はセッションに記録するクライアント情報です。
type ClientMeta struct {
	UserAgent string
	IPAddress string
}

// TokenPair はログイン・リフレッシュの結果です。
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users      UserRepository
	sessions   SessionRepository
	jwt        JWTGenerator
	reset      ResetTokenIssuer
	mailer     AccountMailer
	hooks      []PostCreateHook
	refreshTTL time.Duration
	logger     *zap.Logger
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(
	users UserRepository,
	sessions SessionRepository,
	jwt JWTGenerator,
	reset ResetTokenIssuer,
	mailer AccountMailer,
	refreshTTL time.Duration,
	logger *zap.Logger,
	hooks ...PostCreateHook,
) *authUsecase {
	return &authUsecase{
		users:      users,
		sessions:   sessions,
		jwt:        jwt,
		reset:      reset,
		mailer:     mailer,
		hooks:      hooks,
		refreshTTL: refreshTTL,
		logger:     logger,
	}
}

// Signup はハッシュ化されたパスワードで新規ユーザーを登録し、作成後フックを実行します。
// フックの失敗はログに記録し、登録自体は成功として扱います。
func (u *authUsecase) Signup(ctx context.Context, in SignupInput) (*entity.User, error) {
	if err := ValidateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &entity.User{
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Username:  strings.TrimSpace(in.Username),
		Password:  string(hashed),
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}

	for _, hook := range u.hooks {
		if err := hook(ctx, user); err != nil {
			u.logger.Error("post-create hook failed", zap.Uint("user_id", user.ID), zap.Error(err))
		}
	}
	return user, nil
}

// Login はユーザーを認証し、アクセストークンとリフレッシュトークンを返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *authUsecase) Login(ctx context.Context, email, password string, meta ClientMeta) (*TokenPair, error) {
	user, err := u.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))

	passwordHash := dummyHash
	if err == nil {
		passwordHash = user.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	if err != nil || compareErr != nil {
		return nil, ErrInvalidCredentials
	}

	return u.issue(ctx, user, meta)
}

// Refresh はリフレッシュトークンをローテーションし、新しいトークンペアを返します。
func (u *authUsecase) Refresh(ctx context.Context, refreshToken string, meta ClientMeta) (*TokenPair, error) {
	if len(refreshToken) != refreshTokenBytes*2 {
		return nil, ErrInvalidRefreshToken
	}
	session, err := u.sessions.FindByID(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if session.IsRevoked() {
		return nil, ErrSessionRevoked
	}
	if session.IsExpired() {
		return nil, ErrSessionExpired
	}

	user, err := u.users.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if err := u.sessions.Revoke(ctx, session.ID); err != nil {
		return nil, fmt.Errorf("failed to revoke session: %w", err)
	}
	return u.issue(ctx, user, meta)
}

// Logout はリフレッシュトークンを失効させます。既に存在しないトークンは成功扱いです。
func (u *authUsecase) Logout(ctx context.Context, refreshToken string) error {
	err := u.sessions.Revoke(ctx, refreshToken)
	if errors.Is(err, ErrSessionNotFound) {
		return nil
	}
	return err
}

// RequestPasswordReset はリセットメールの送信を依頼します。
// ユーザー列挙を防ぐため、未登録のメールアドレスでもエラーを返しません。
func (u *authUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := u.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, ErrUserNotFound) {
		u.logger.Info("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	token, err := u.reset.Issue(user.ID, fingerprint(user.Password))
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}
	// 送信失敗も登録済みアドレスの判別材料になるため、ログに残して成功を返す
	if err := u.mailer.SendPasswordReset(ctx, user.Email, user.Username, token); err != nil {
		u.logger.Error("failed to queue password reset email", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	return nil
}

// ConfirmPasswordReset はリセットトークンを検証して新しいパスワードを設定し、全セッションを失効させます。
// トークンは発行時のパスワードハッシュに紐づくため、一度使うと無効になります。
func (u *authUsecase) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	userID, fp, err := u.reset.Parse(token)
	if err != nil {
		return ErrInvalidResetToken
	}
	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return err
	}
	if fp != fingerprint(user.Password) {
		return ErrInvalidResetToken
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := u.users.UpdatePassword(ctx, user.ID, string(hashed)); err != nil {
		return err
	}
	return u.sessions.RevokeAllByUserID(ctx, user.ID)
}

// issue はアクセストークンを生成し、新しいセッションを作成します。
// 上限を超える場合は最も古いセッションを削除します。
func (u *authUsecase) issue(ctx context.Context, user *entity.User, meta ClientMeta) (*TokenPair, error) {
	access, err := u.jwt.GenerateToken(user.ID, user.Email, user.IsStaff)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	count, err := u.sessions.CountByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	for ; count >= MaxSessionsPerUser; count-- {
		if err := u.sessions.DeleteOldestByUserID(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	refresh, err := newRefreshToken()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	session := &entity.Session{
		ID:        refresh,
		UserID:    user.ID,
		UserAgent: meta.UserAgent,
		IPAddress: meta.IPAddress,
		CreatedAt: now,
		ExpiresAt: now.Add(u.refreshTTL),
	}
	if err := u.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    u.jwt.ExpiresIn(),
	}, nil
}

func newRefreshToken() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// fingerprint はパスワードハッシュから短い識別子を作ります。
func fingerprint(passwordHash string) string {
	sum := sha256.Sum256([]byte(passwordHash))
	return hex.EncodeToString(sum[:8])
}
