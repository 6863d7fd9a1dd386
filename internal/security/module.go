package security

import (
	"go.uber.org/fx"

	"github.com/elskow/registry-auth/internal/config"
)

func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				func(cfg *config.AppConfig) (PasswordHasher, error) {
					return NewPasswordHasher(&cfg.Password)
				},
			),
			fx.Annotate(
				func(cfg *config.AppConfig) *TokenIssuer {
					return NewTokenIssuer(&cfg.Auth, cfg.Session.TTL)
				},
			),
		),
	)
}
