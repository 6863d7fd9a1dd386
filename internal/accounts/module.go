package accounts

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/registry-auth/internal/credentials"
	"github.com/elskow/registry-auth/internal/events"
	"github.com/elskow/registry-auth/internal/reqctx"
	"github.com/elskow/registry-auth/internal/security"
	"github.com/elskow/registry-auth/internal/validation"
)

// NewModule returns the accounts module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			NewRepository,
			fx.Annotate(
				func(
					log *zap.Logger,
					identifiers *validation.IdentifierValidator,
					hasher security.PasswordHasher,
					repo Repository,
					credentialRepo credentials.Repository,
					publisher events.Publisher,
				) *Service {
					return NewService(log.Named("accounts"), identifiers, hasher, repo, credentialRepo, publisher)
				},
			),
			fx.Annotate(
				func(svc *Service, contexts reqctx.Provider, log *zap.Logger) *Handler {
					return NewHandler(svc, contexts, log.Named("accounts"))
				},
			),
		),
	)
}
