package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestStatus はエラー分類ごとに正しいHTTPステータスが返されることを検証します。
func TestStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", Validation("coin is required"), http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("profile %w", ErrNotFound), http.StatusNotFound},
		{"conflict", fmt.Errorf("email %w", ErrConflict), http.StatusConflict},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

// TestMessage は内部エラーの詳細がクライアントに漏れないことを検証します。
func TestMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "coin is required", Message(Validation("coin is required")))
	assert.Equal(t, "internal server error", Message(errors.New("dial tcp: connection refused")))
}

// TestNew は独自メッセージを持つエラーが分類に一致することを検証します。
func TestNew(t *testing.T) {
	t.Parallel()

	errProfile := New(ErrNotFound, "profile not found")
	wrapped := fmt.Errorf("load: %w", errProfile)

	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.ErrorIs(t, wrapped, errProfile)
	assert.NotErrorIs(t, wrapped, ErrConflict)
	assert.Equal(t, "profile not found", Message(errProfile))
	assert.Equal(t, http.StatusNotFound, Status(wrapped))
}
