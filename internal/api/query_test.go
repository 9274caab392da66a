package api

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin_backend/internal/shared/apperr"
)

func newContext(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c
}

func TestParseDays(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		target  string
		want    int
		wantErr bool
	}{
		{name: "default when absent", target: "/", want: 30},
		{name: "explicit", target: "/?days=7", want: 7},
		{name: "upper bound", target: "/?days=" + strconv.Itoa(MaxDays), want: MaxDays},
		{name: "above upper bound", target: "/?days=" + strconv.Itoa(MaxDays+1), wantErr: true},
		{name: "huge", target: "/?days=9223372036854775807", wantErr: true},
		{name: "zero", target: "/?days=0", wantErr: true},
		{name: "negative", target: "/?days=-3", wantErr: true},
		{name: "not a number", target: "/?days=week", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			days, err := ParseDays(newContext(tt.target), "days", 30)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperr.ErrValidation)
				assert.Equal(t, http.StatusBadRequest, apperr.Status(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, days)
		})
	}
}

func TestParsePage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Page{Limit: DefaultLimit}, ParsePage(newContext("/")))
	assert.Equal(t, Page{Limit: 20, Offset: 40}, ParsePage(newContext("/?limit=20&offset=40")))
	assert.Equal(t, Page{Limit: DefaultLimit}, ParsePage(newContext("/?limit=100000&offset=-1")))
}
