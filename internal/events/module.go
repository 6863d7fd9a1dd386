package events

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/registry-auth/internal/config"
)

func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(lifecycle fx.Lifecycle, cfg *config.AppConfig, log *zap.Logger) (Publisher, error) {
					publisher, closeFn, err := NewPublisher(&cfg.Events, log)
					if err != nil {
						return nil, err
					}
					lifecycle.Append(fx.Hook{
						OnStop: func(ctx context.Context) error {
							closeFn()
							return nil
						},
					})
					return publisher, nil
				},
			),
		),
	)
}
