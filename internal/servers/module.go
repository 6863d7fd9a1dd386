package servers

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/registry-auth/internal/events"
	"github.com/elskow/registry-auth/internal/reqctx"
)

// NewModule returns the servers module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			NewRepository,
			fx.Annotate(
				func(log *zap.Logger, repo Repository, publisher events.Publisher) *Service {
					return NewService(log.Named("servers"), repo, publisher)
				},
			),
			fx.Annotate(
				func(svc *Service, contexts reqctx.Provider, log *zap.Logger) *Handler {
					return NewHandler(svc, contexts, log.Named("servers"))
				},
			),
		),
	)
}
