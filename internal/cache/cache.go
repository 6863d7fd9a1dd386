// Package cache owns the shared Redis client.
package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/elskow/registry-auth/internal/config"
)

type Manager struct {
	client *redis.Client
	logger *zap.Logger
}

func NewManager(cfg *config.RedisConfig, log *zap.Logger) *Manager {
	return &Manager{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		logger: log,
	}
}

// Client returns the pooled client. It is safe for concurrent use.
func (m *Manager) Client() *redis.Client {
	return m.client
}

func (m *Manager) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (m *Manager) Close() error {
	return m.client.Close()
}
