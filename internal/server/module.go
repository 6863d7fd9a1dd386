package server

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/registry-auth/internal/cache"
	"github.com/elskow/registry-auth/internal/database"
)

func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(db *database.Manager, redis *cache.Manager, log *zap.Logger) *HealthChecker {
					return NewHealthChecker(map[string]Pinger{
						"postgres": db,
						"redis":    redis,
					}, log.Named("health"))
				},
			),
			NewRouter,
			NewServer,
		),
		fx.Invoke(registerHooks),
	)
}

func registerHooks(
	lifecycle fx.Lifecycle,
	srv *Server,
	log *zap.Logger,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return srv.Start()
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server...")
			return srv.Stop(ctx)
		},
	})
}
