package cache

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/registry-auth/internal/config"
)

func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(config *config.AppConfig, logger *zap.Logger) *Manager {
					return NewManager(&config.Redis, logger)
				},
			),
		),
		fx.Invoke(registerHooks),
	)
}

func registerHooks(
	lifecycle fx.Lifecycle,
	manager *Manager,
	logger *zap.Logger,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := manager.Ping(ctx); err != nil {
				logger.Warn("Redis is not reachable yet", zap.Error(err))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing redis connections")
			return manager.Close()
		},
	})
}
