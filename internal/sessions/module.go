package sessions

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/registry-auth/internal/config"
	"github.com/elskow/registry-auth/internal/credentials"
	"github.com/elskow/registry-auth/internal/events"
	"github.com/elskow/registry-auth/internal/loginattempts"
	"github.com/elskow/registry-auth/internal/reqctx"
	"github.com/elskow/registry-auth/internal/security"
	"github.com/elskow/registry-auth/internal/validation"
)

type serviceParams struct {
	fx.In

	Log         *zap.Logger
	Identifiers *validation.IdentifierValidator
	Hasher      security.PasswordHasher
	Tokens      *security.TokenIssuer
	Repository  Repository
	Credentials credentials.Repository
	Attempts    *loginattempts.Service
	Events      events.Publisher
}

// NewModule returns the sessions module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(cfg *config.AppConfig, log *zap.Logger) Repository {
					return NewRepository(&cfg.Session, log.Named("sessions"))
				},
			),
			fx.Annotate(
				func(p serviceParams) *Service {
					return NewService(Params{
						Log:         p.Log.Named("sessions"),
						Identifiers: p.Identifiers,
						Hasher:      p.Hasher,
						Tokens:      p.Tokens,
						Repository:  p.Repository,
						Credentials: p.Credentials,
						Attempts:    p.Attempts,
						Events:      p.Events,
					})
				},
			),
			fx.Annotate(
				func(svc *Service, contexts reqctx.Provider, log *zap.Logger) *Handler {
					return NewHandler(svc, contexts, log.Named("sessions"))
				},
			),
			fx.Annotate(
				func(svc *Service, tokens *security.TokenIssuer, contexts reqctx.Provider, log *zap.Logger) *AuthMiddleware {
					return NewAuthMiddleware(svc, tokens, contexts, log.Named("auth"))
				},
			),
		),
	)
}
