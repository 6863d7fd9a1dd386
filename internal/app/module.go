package app

import (
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/registry-auth/internal/accounts"
	"github.com/elskow/registry-auth/internal/cache"
	"github.com/elskow/registry-auth/internal/credentials"
	"github.com/elskow/registry-auth/internal/database"
	"github.com/elskow/registry-auth/internal/events"
	"github.com/elskow/registry-auth/internal/loginattempts"
	"github.com/elskow/registry-auth/internal/migration"
	"github.com/elskow/registry-auth/internal/reqctx"
	"github.com/elskow/registry-auth/internal/security"
	"github.com/elskow/registry-auth/internal/server"
	"github.com/elskow/registry-auth/internal/servers"
	"github.com/elskow/registry-auth/internal/sessions"
	"github.com/elskow/registry-auth/internal/validation"
)

// Module combines all application modules
func Module() fx.Option {
	return fx.Options(
		// Logger
		fx.Provide(newLogger),

		// Configuration
		fx.Provide(server.LoadConfig),

		// Storage
		database.Module(),
		migration.Module(),
		cache.Module(),
		fx.Provide(newContextProvider),

		// Shared services
		security.NewModule(),
		validation.NewModule(),
		events.NewModule(),

		// Resources
		credentials.NewModule(),
		accounts.NewModule(),
		loginattempts.NewModule(),
		sessions.NewModule(),
		servers.NewModule(),

		// HTTP and gRPC
		server.Module(),
	)
}

func newLogger() (*zap.Logger, error) {
	env := os.Getenv("APP_ENV")
	return server.NewLogger(env)
}

func newContextProvider(db *database.Manager, redis *cache.Manager) reqctx.Provider {
	return reqctx.NewPool(db.DB(), db.ReadDB(), redis.Client())
}
