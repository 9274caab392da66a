package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"coin_backend/internal/feature/auth/domain/entity"
	"coin_backend/internal/feature/auth/usecase"
	"coin_backend/internal/shared/apperr"
)

// mockAuthUsecase はAuthUsecaseインターフェースのモック実装です。
type mockAuthUsecase struct {
	SignupFunc  func(ctx context.Context, in usecase.SignupInput) (*entity.User, error)
	LoginFunc   func(ctx context.Context, email, password string) (*usecase.TokenPair, error)
	RefreshFunc func(ctx context.Context, token string) (*usecase.TokenPair, error)
	LogoutFunc  func(ctx context.Context, token string) error
	ResetFunc   func(ctx context.Context, email string) error
	ConfirmFunc func(ctx context.Context, token, password string) error
}

func (m *mockAuthUsecase) Signup(ctx context.Context, in usecase.SignupInput) (*entity.User, error) {
	if m.SignupFunc != nil {
		return m.SignupFunc(ctx, in)
	}
	return &entity.User{ID: 1, Email: in.Email, Username: in.Username}, nil
}

func (m *mockAuthUsecase) Login(ctx context.Context, email, password string, _ usecase.ClientMeta) (*usecase.TokenPair, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, usecase.ErrInvalidCredentials
}

func (m *mockAuthUsecase) Refresh(ctx context.Context, token string, _ usecase.ClientMeta) (*usecase.TokenPair, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, token)
	}
	return nil, usecase.ErrSessionNotFound
}

func (m *mockAuthUsecase) Logout(ctx context.Context, token string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, token)
	}
	return nil
}

func (m *mockAuthUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, email)
	}
	return nil
}

func (m *mockAuthUsecase) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	if m.ConfirmFunc != nil {
		return m.ConfirmFunc(ctx, token, password)
	}
	return nil
}

func newRouter(h *AuthHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/signup", h.Signup)
	r.POST("/login", h.Login)
	r.POST("/refresh", h.Refresh)
	r.POST("/logout", h.Logout)
	r.POST("/password-reset", h.RequestPasswordReset)
	r.POST("/password-reset/confirm", h.ConfirmPasswordReset)
	return r
}

func do(r http.Handler, path string, body gin.H) (*httptest.ResponseRecorder, gin.H) {
	b, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBuffer(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp gin.H
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestAuthHandler_Signup(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    gin.H
		mockSignupFunc func(ctx context.Context, in usecase.SignupInput) (*entity.User, error)
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "success: user registration",
			requestBody:    gin.H{"email": "test@example.com", "username": "tester", "password": "Str0ng!Pass"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "failure: invalid email address",
			requestBody:    gin.H{"email": "invalid-email", "username": "tester", "password": "Str0ng!Pass"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Key: 'SignupReq.Email' Error:Field validation for 'Email' failed on the 'email' tag",
		},
		{
			name:           "failure: short username",
			requestBody:    gin.H{"email": "test@example.com", "username": "abc", "password": "Str0ng!Pass"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Key: 'SignupReq.Username' Error:Field validation for 'Username' failed on the 'min' tag",
		},
		{
			name:        "failure: weak password (usecase error)",
			requestBody: gin.H{"email": "test@example.com", "username": "tester", "password": "password1"},
			mockSignupFunc: func(context.Context, usecase.SignupInput) (*entity.User, error) {
				return nil, apperr.Validation("password must contain at least one uppercase letter")
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "password must contain at least one uppercase letter",
		},
		{
			name:        "failure: duplicate email (usecase error)",
			requestBody: gin.H{"email": "existing@example.com", "username": "tester", "password": "Str0ng!Pass"},
			mockSignupFunc: func(context.Context, usecase.SignupInput) (*entity.User, error) {
				return nil, usecase.ErrEmailAlreadyExists
			},
			expectedStatus: http.StatusConflict,
			expectedError:  "email already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&mockAuthUsecase{SignupFunc: tt.mockSignupFunc}, zap.NewNop())
			w, resp := do(newRouter(h), "/signup", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assert.Contains(t, resp["error"], tt.expectedError)
				return
			}
			assert.Equal(t, "test@example.com", resp["email"])
			assert.NotContains(t, resp, "password")
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    gin.H
		mockLoginFunc  func(ctx context.Context, email, password string) (*usecase.TokenPair, error)
		expectedStatus int
		expectedBody   gin.H
	}{
		{
			name:        "success: user login",
			requestBody: gin.H{"email": "test@example.com", "password": "Str0ng!Pass"},
			mockLoginFunc: func(context.Context, string, string) (*usecase.TokenPair, error) {
				return &usecase.TokenPair{AccessToken: "dummy-jwt-token", RefreshToken: "r", ExpiresIn: 60}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   gin.H{"token": "dummy-jwt-token", "refresh_token": "r", "expires_in": float64(60)},
		},
		{
			name:           "failure: missing password",
			requestBody:    gin.H{"email": "test@example.com"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "failure: invalid credentials (usecase error)",
			requestBody:    gin.H{"email": "wrong@example.com", "password": "wrong-password"},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   gin.H{"error": "invalid email or password"},
		},
		{
			name:        "failure: internal error is not masked as 401",
			requestBody: gin.H{"email": "test@example.com", "password": "Str0ng!Pass"},
			mockLoginFunc: func(context.Context, string, string) (*usecase.TokenPair, error) {
				return nil, errors.New("db down")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   gin.H{"error": "internal server error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&mockAuthUsecase{LoginFunc: tt.mockLoginFunc}, zap.NewNop())
			w, resp := do(newRouter(h), "/login", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != nil {
				assert.Equal(t, tt.expectedBody, resp)
			}
		})
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	h := NewAuthHandler(&mockAuthUsecase{
		RefreshFunc: func(_ context.Context, token string) (*usecase.TokenPair, error) {
			if token == "good" {
				return &usecase.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, nil
			}
			return nil, usecase.ErrSessionRevoked
		},
	}, zap.NewNop())
	r := newRouter(h)

	w, resp := do(r, "/refresh", gin.H{"refresh_token": "good"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a2", resp["token"])

	w, resp = do(r, "/refresh", gin.H{"refresh_token": "bad"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "session has been revoked", resp["error"])

	w, _ = do(r, "/refresh", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	var revoked string
	h := NewAuthHandler(&mockAuthUsecase{
		LogoutFunc: func(_ context.Context, token string) error { revoked = token; return nil },
	}, zap.NewNop())

	w, _ := do(newRouter(h), "/logout", gin.H{"refresh_token": "tok"})

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "tok", revoked)
}

func TestAuthHandler_PasswordReset(t *testing.T) {
	h := NewAuthHandler(&mockAuthUsecase{
		ConfirmFunc: func(_ context.Context, token, _ string) error {
			if token == "expired" {
				return usecase.ErrInvalidResetToken
			}
			return nil
		},
	}, zap.NewNop())
	r := newRouter(h)

	w, _ := do(r, "/password-reset", gin.H{"email": "who@example.com"})
	assert.Equal(t, http.StatusAccepted, w.Code)

	w, _ = do(r, "/password-reset", gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(r, "/password-reset/confirm", gin.H{"token": "ok", "new_password": "N3w!Password"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp := do(r, "/password-reset/confirm", gin.H{"token": "expired", "new_password": "N3w!Password"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid or expired reset token", resp["error"])
}
