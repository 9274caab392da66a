package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"coin_backend/internal/feature/auth/domain/entity"
	"coin_backend/internal/shared/apperr"
)

// mockUserRepository はUserRepositoryのモック実装です。
type mockUserRepository struct {
	CreateFunc         func(user *entity.User) error
	FindByEmailFunc    func(email string) (*entity.User, error)
	FindByIDFunc       func(id uint) (*entity.User, error)
	UpdatePasswordFunc func(id uint, hash string) error
}

func (m *mockUserRepository) Create(_ context.Context, user *entity.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(user)
	}
	user.ID = 1
	return nil
}

func (m *mockUserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(email)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) FindByID(_ context.Context, id uint) (*entity.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(id)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) UpdatePassword(_ context.Context, id uint, hash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(id, hash)
	}
	return nil
}

// memSessions はテスト用のインメモリSessionRepositoryです。
type memSessions struct {
	items      map[string]*entity.Session
	deletedOld int
	revokedAll []uint
	createErr  error
	pruneErr   error
}

func newMemSessions() *memSessions {
	return &memSessions{items: map[string]*entity.Session{}}
}

func (m *memSessions) Create(_ context.Context, s *entity.Session) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.items[s.ID] = s
	return nil
}

func (m *memSessions) FindByID(_ context.Context, id string) (*entity.Session, error) {
	s, ok := m.items[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *memSessions) FindByUserID(_ context.Context, userID uint) ([]*entity.Session, error) {
	var out []*entity.Session
	for _, s := range m.items {
		if s.UserID == userID && s.IsValid() {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSessions) Revoke(_ context.Context, id string) error {
	s, ok := m.items[id]
	if !ok {
		return ErrSessionNotFound
	}
	now := time.Now()
	s.RevokedAt = &now
	return nil
}

func (m *memSessions) RevokeAllByUserID(_ context.Context, userID uint) error {
	m.revokedAll = append(m.revokedAll, userID)
	return nil
}

func (m *memSessions) DeleteExpired(context.Context) (int64, error) {
	if m.pruneErr != nil {
		return 0, m.pruneErr
	}
	var removed int64
	for id, s := range m.items {
		if s.PrunableAt(time.Now()) {
			delete(m.items, id)
			removed++
		}
	}
	return removed, nil
}

func (m *memSessions) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	s, _ := m.FindByUserID(ctx, userID)
	return int64(len(s)), nil
}

func (m *memSessions) DeleteOldestByUserID(_ context.Context, userID uint) error {
	var oldest *entity.Session
	for _, s := range m.items {
		if s.UserID == userID && s.IsValid() && (oldest == nil || s.CreatedAt.Before(oldest.CreatedAt)) {
			oldest = s
		}
	}
	if oldest != nil {
		delete(m.items, oldest.ID)
		m.deletedOld++
	}
	return nil
}

// mockJWTGenerator はJWTGeneratorのモック実装です。
type mockJWTGenerator struct {
	GenerateTokenFunc func(userID uint, email string, staff bool) (string, error)
}

func (m *mockJWTGenerator) GenerateToken(userID uint, email string, staff bool) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(userID, email, staff)
	}
	return "mock-jwt-token", nil
}

func (m *mockJWTGenerator) ExpiresIn() int64 { return 3600 }

// mockResetTokens はResetTokenIssuerのモック実装です。
type mockResetTokens struct {
	ParseFunc func(token string) (uint, string, error)
	issued    []string
}

func (m *mockResetTokens) Issue(userID uint, fp string) (string, error) {
	m.issued = append(m.issued, fp)
	return "reset-token", nil
}

func (m *mockResetTokens) Parse(token string) (uint, string, error) {
	if m.ParseFunc != nil {
		return m.ParseFunc(token)
	}
	return 0, "", errors.New("invalid")
}

// mockMailer はAccountMailerのモック実装です。
type mockMailer struct {
	resets []string
	err    error
}

func (m *mockMailer) SendPasswordReset(_ context.Context, email, _, token string) error {
	if m.err != nil {
		return m.err
	}
	m.resets = append(m.resets, email+":"+token)
	return nil
}

const strongPassword = "Str0ng!Pass"

func newTestUsecase(users UserRepository, sessions SessionRepository, hooks ...PostCreateHook) (*authUsecase, *mockResetTokens, *mockMailer) {
	rt := &mockResetTokens{}
	ml := &mockMailer{}
	uc := NewAuthUsecase(users, sessions, &mockJWTGenerator{}, rt, ml, 24*time.Hour, zap.NewNop(), hooks...)
	return uc, rt, ml
}

func hashed(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{"valid", strongPassword, ""},
		{"too short", "S0!a", "at least 8"},
		{"no uppercase", "str0ng!pass", "uppercase"},
		{"no digit", "Strong!Pass", "digit"},
		{"no special", "Str0ngPass", "special"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidatePassword(tt.password)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.ErrValidation)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAuthUsecase_Signup(t *testing.T) {
	t.Run("successful signup runs hooks", func(t *testing.T) {
		var created *entity.User
		repo := &mockUserRepository{
			CreateFunc: func(user *entity.User) error {
				// パスワードがハッシュ化されていることを確認
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(strongPassword)))
				user.ID = 10
				created = user
				return nil
			},
		}
		var hooked []uint
		hook := func(_ context.Context, u *entity.User) error {
			hooked = append(hooked, u.ID)
			return nil
		}
		failing := func(context.Context, *entity.User) error { return errors.New("smtp down") }

		uc, _, _ := newTestUsecase(repo, newMemSessions(), hook, failing)
		user, err := uc.Signup(context.Background(), SignupInput{
			Email:    " Test@Example.com ",
			Username: "coiner",
			Password: strongPassword,
		})

		require.NoError(t, err)
		assert.Same(t, created, user)
		assert.Equal(t, "test@example.com", user.Email)
		assert.Equal(t, []uint{10}, hooked)
	})

	t.Run("short username", func(t *testing.T) {
		uc, _, _ := newTestUsecase(&mockUserRepository{}, newMemSessions())
		_, err := uc.Signup(context.Background(), SignupInput{Email: "a@b.c", Username: "abc", Password: strongPassword})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("weak password", func(t *testing.T) {
		uc, _, _ := newTestUsecase(&mockUserRepository{}, newMemSessions())
		_, err := uc.Signup(context.Background(), SignupInput{Email: "a@b.c", Username: "abcd", Password: "password"})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("repository create failure", func(t *testing.T) {
		repo := &mockUserRepository{
			CreateFunc: func(*entity.User) error { return ErrEmailAlreadyExists },
		}
		uc, _, _ := newTestUsecase(repo, newMemSessions())
		_, err := uc.Signup(context.Background(), SignupInput{Email: "a@b.c", Username: "abcd", Password: strongPassword})
		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})
}

func TestAuthUsecase_Login(t *testing.T) {
	testUser := &entity.User{ID: 1, Email: "test@example.com", Password: hashed(t, strongPassword), IsStaff: true}
	repo := &mockUserRepository{
		FindByEmailFunc: func(email string) (*entity.User, error) {
			if email == testUser.Email {
				return testUser, nil
			}
			return nil, ErrUserNotFound
		},
	}

	t.Run("successful login creates session", func(t *testing.T) {
		sessions := newMemSessions()
		uc, _, _ := newTestUsecase(repo, sessions)
		uc.jwt = &mockJWTGenerator{
			GenerateTokenFunc: func(userID uint, email string, staff bool) (string, error) {
				assert.Equal(t, testUser.ID, userID)
				assert.True(t, staff)
				return "access", nil
			},
		}

		pair, err := uc.Login(context.Background(), "TEST@example.com", strongPassword, ClientMeta{UserAgent: "ua", IPAddress: "1.2.3.4"})

		require.NoError(t, err)
		assert.Equal(t, "access", pair.AccessToken)
		assert.Len(t, pair.RefreshToken, 64)
		assert.Equal(t, int64(3600), pair.ExpiresIn)
		require.Contains(t, sessions.items, pair.RefreshToken)
		assert.Equal(t, "ua", sessions.items[pair.RefreshToken].UserAgent)
	})

	t.Run("user not found", func(t *testing.T) {
		uc, _, _ := newTestUsecase(repo, newMemSessions())
		_, err := uc.Login(context.Background(), "wrong@example.com", strongPassword, ClientMeta{})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, "invalid email or password", err.Error())
	})

	t.Run("incorrect password", func(t *testing.T) {
		uc, _, _ := newTestUsecase(repo, newMemSessions())
		_, err := uc.Login(context.Background(), testUser.Email, "Wrong!Pass1", ClientMeta{})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("repository failure is not masked", func(t *testing.T) {
		dbErr := errors.New("db down")
		failing := &mockUserRepository{FindByEmailFunc: func(string) (*entity.User, error) { return nil, dbErr }}
		uc, _, _ := newTestUsecase(failing, newMemSessions())
		_, err := uc.Login(context.Background(), testUser.Email, strongPassword, ClientMeta{})
		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("evicts oldest session at limit", func(t *testing.T) {
		sessions := newMemSessions()
		for i := 0; i < MaxSessionsPerUser; i++ {
			id := strings.Repeat(string(rune('a'+i)), 64)
			sessions.items[id] = &entity.Session{
				ID: id, UserID: 1,
				CreatedAt: time.Now().Add(-time.Duration(MaxSessionsPerUser-i) * time.Hour),
				ExpiresAt: time.Now().Add(time.Hour),
			}
		}
		uc, _, _ := newTestUsecase(repo, sessions)

		_, err := uc.Login(context.Background(), testUser.Email, strongPassword, ClientMeta{})

		require.NoError(t, err)
		assert.Equal(t, 1, sessions.deletedOld)
		assert.NotContains(t, sessions.items, strings.Repeat("a", 64))
		n, _ := sessions.CountByUserID(context.Background(), 1)
		assert.Equal(t, int64(MaxSessionsPerUser), n)
	})

	t.Run("JWT generation failure", func(t *testing.T) {
		uc, _, _ := newTestUsecase(repo, newMemSessions())
		uc.jwt = &mockJWTGenerator{
			GenerateTokenFunc: func(uint, string, bool) (string, error) { return "", errors.New("sign failed") },
		}
		_, err := uc.Login(context.Background(), testUser.Email, strongPassword, ClientMeta{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to generate token")
	})
}

func TestAuthUsecase_Refresh(t *testing.T) {
	user := &entity.User{ID: 1, Email: "test@example.com"}
	repo := &mockUserRepository{FindByIDFunc: func(uint) (*entity.User, error) { return user, nil }}
	valid := strings.Repeat("f", 64)

	tests := []struct {
		name    string
		token   string
		session *entity.Session
		wantErr error
	}{
		{"malformed token", "short", nil, ErrInvalidRefreshToken},
		{"unknown token", valid, nil, ErrSessionNotFound},
		{"revoked", valid, &entity.Session{ID: valid, UserID: 1, ExpiresAt: time.Now().Add(time.Hour), RevokedAt: ptrTime(time.Now())}, ErrSessionRevoked},
		{"expired", valid, &entity.Session{ID: valid, UserID: 1, ExpiresAt: time.Now().Add(-time.Minute)}, ErrSessionExpired},
		{"rotates", valid, &entity.Session{ID: valid, UserID: 1, ExpiresAt: time.Now().Add(time.Hour)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := newMemSessions()
			if tt.session != nil {
				sessions.items[tt.session.ID] = tt.session
			}
			uc, _, _ := newTestUsecase(repo, sessions)

			pair, err := uc.Refresh(context.Background(), tt.token, ClientMeta{})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, apperr.ErrUnauthorized)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, valid, pair.RefreshToken)
			assert.True(t, sessions.items[valid].IsRevoked(), "old session must be revoked")
			assert.True(t, sessions.items[pair.RefreshToken].IsValid())
		})
	}
}

func TestAuthUsecase_Logout(t *testing.T) {
	sessions := newMemSessions()
	id := strings.Repeat("e", 64)
	sessions.items[id] = &entity.Session{ID: id, UserID: 1, ExpiresAt: time.Now().Add(time.Hour)}
	uc, _, _ := newTestUsecase(&mockUserRepository{}, sessions)

	require.NoError(t, uc.Logout(context.Background(), id))
	assert.True(t, sessions.items[id].IsRevoked())

	// 存在しないトークンも成功扱い
	assert.NoError(t, uc.Logout(context.Background(), "missing"))
}

func TestAuthUsecase_RequestPasswordReset(t *testing.T) {
	user := &entity.User{ID: 3, Email: "r@example.com", Username: "resetter", Password: hashed(t, strongPassword)}
	repo := &mockUserRepository{
		FindByEmailFunc: func(email string) (*entity.User, error) {
			if email == user.Email {
				return user, nil
			}
			return nil, ErrUserNotFound
		},
	}

	t.Run("known email sends mail", func(t *testing.T) {
		uc, rt, ml := newTestUsecase(repo, newMemSessions())
		require.NoError(t, uc.RequestPasswordReset(context.Background(), "R@example.com"))
		assert.Equal(t, []string{"r@example.com:reset-token"}, ml.resets)
		assert.Equal(t, []string{fingerprint(user.Password)}, rt.issued)
	})

	t.Run("unknown email is silent", func(t *testing.T) {
		uc, _, ml := newTestUsecase(repo, newMemSessions())
		require.NoError(t, uc.RequestPasswordReset(context.Background(), "nobody@example.com"))
		assert.Empty(t, ml.resets)
	})

	// キューが満杯でも未登録アドレスと同じ応答になる
	t.Run("queue failure looks like unknown email", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		rt := &mockResetTokens{}
		ml := &mockMailer{err: errors.New("queue is full")}
		uc := NewAuthUsecase(repo, newMemSessions(), &mockJWTGenerator{}, rt, ml, 24*time.Hour, zap.New(core))

		known := uc.RequestPasswordReset(context.Background(), user.Email)
		unknown := uc.RequestPasswordReset(context.Background(), "nobody@example.com")
		assert.NoError(t, known)
		assert.Equal(t, unknown, known)
		require.Equal(t, 1, logs.FilterMessage("failed to queue password reset email").Len())
	})
}

func TestAuthUsecase_ConfirmPasswordReset(t *testing.T) {
	oldHash := hashed(t, strongPassword)
	newUser := func() *entity.User { return &entity.User{ID: 3, Email: "r@example.com", Password: oldHash} }

	tests := []struct {
		name     string
		parse    func(string) (uint, string, error)
		password string
		wantErr  error
	}{
		{
			name:     "invalid token",
			parse:    func(string) (uint, string, error) { return 0, "", errors.New("bad") },
			password: "N3w!Password",
			wantErr:  ErrInvalidResetToken,
		},
		{
			name:     "fingerprint mismatch (already used)",
			parse:    func(string) (uint, string, error) { return 3, "stale", nil },
			password: "N3w!Password",
			wantErr:  ErrInvalidResetToken,
		},
		{
			name:     "weak new password",
			parse:    func(string) (uint, string, error) { return 3, fingerprint(oldHash), nil },
			password: "weak",
			wantErr:  apperr.ErrValidation,
		},
		{
			name:     "success",
			parse:    func(string) (uint, string, error) { return 3, fingerprint(oldHash), nil },
			password: "N3w!Password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var updated string
			repo := &mockUserRepository{
				FindByIDFunc:       func(uint) (*entity.User, error) { return newUser(), nil },
				UpdatePasswordFunc: func(_ uint, hash string) error { updated = hash; return nil },
			}
			sessions := newMemSessions()
			uc, rt, _ := newTestUsecase(repo, sessions)
			rt.ParseFunc = tt.parse

			err := uc.ConfirmPasswordReset(context.Background(), "token", tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, updated)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated), []byte(tt.password)))
			assert.Equal(t, []uint{3}, sessions.revokedAll)
		})
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
