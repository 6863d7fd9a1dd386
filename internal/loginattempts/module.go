package loginattempts

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/registry-auth/internal/reqctx"
	"github.com/elskow/registry-auth/internal/validation"
)

func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			NewRepository,
			fx.Annotate(
				func(log *zap.Logger, identifiers *validation.IdentifierValidator, repo Repository) *Service {
					return NewService(log.Named("login_attempts"), identifiers, repo)
				},
			),
			fx.Annotate(
				func(svc *Service, contexts reqctx.Provider, log *zap.Logger) *Handler {
					return NewHandler(svc, contexts, log.Named("login_attempts"))
				},
			),
		),
	)
}
