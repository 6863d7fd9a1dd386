package validation

import (
	"go.uber.org/fx"

	"github.com/elskow/registry-auth/internal/config"
)

// NewModule returns the validation module options
func NewModule() fx.Option {
	return fx.Options(
		fx.Provide(
			func(cfg *config.AppConfig) *IdentifierValidator {
				return NewIdentifierValidator(&cfg.Auth)
			},
		),
	)
}
