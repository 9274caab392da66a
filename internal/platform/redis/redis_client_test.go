package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"coin_backend/internal/platform/config"
)

// TestNewRedisClient_Success はminiredisへの接続が成功することを検証します。
func TestNewRedisClient_Success(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	cfg := config.RedisConfig{Host: mr.Host(), Port: mr.Port()}

	rdb, err := NewRedisClient(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer rdb.Close()

	assert.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	assert.NoError(t, err)
	assert.Equal(t, "v", got)
}

// TestNewRedisClient_Unreachable は接続できない場合にエラーを返すことを検証します。
func TestNewRedisClient_Unreachable(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	cfg := config.RedisConfig{Host: mr.Host(), Port: mr.Port()}
	mr.Close()

	rdb, err := NewRedisClient(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
	assert.Nil(t, rdb)
}
