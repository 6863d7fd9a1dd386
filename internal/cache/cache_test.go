package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/elskow/registry-auth/internal/config"
)

func TestManager_Ping(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	m := NewManager(&config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	t.Cleanup(func() { _ = m.Close() })

	require.NoError(t, m.Ping(context.Background()))
	require.NoError(t, m.Client().Set(context.Background(), "k", "v", 0).Err())
	assert.True(t, mr.Exists("k"))

	mr.Close()
	assert.Error(t, m.Ping(context.Background()))
}
