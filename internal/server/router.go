package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/elskow/registry-auth/internal/accounts"
	"github.com/elskow/registry-auth/internal/api"
	"github.com/elskow/registry-auth/internal/config"
	"github.com/elskow/registry-auth/internal/loginattempts"
	"github.com/elskow/registry-auth/internal/servers"
	"github.com/elskow/registry-auth/internal/sessions"
)

// RouteRegistrar mounts a resource's endpoints.
type RouteRegistrar interface {
	Routes(r chi.Router)
}

type RouterParams struct {
	fx.In

	Config         *config.AppConfig
	Logger         *zap.Logger
	Health         *HealthChecker
	AuthMiddleware *sessions.AuthMiddleware
	Accounts       *accounts.Handler
	Sessions       *sessions.Handler
	LoginAttempts  *loginattempts.Handler
	Servers        *servers.Handler
}

func NewRouter(p RouterParams) http.Handler {
	return newRouter(
		p.Config,
		p.Logger.Named("http"),
		p.Health,
		p.AuthMiddleware.Handler,
		p.Accounts,
		p.Sessions,
		p.LoginAttempts,
		p.Servers,
	)
}

func newRouter(
	cfg *config.AppConfig,
	log *zap.Logger,
	health http.Handler,
	auth func(http.Handler) http.Handler,
	resources ...RouteRegistrar,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	if cfg.Server.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	}
	r.Use(auth)

	r.Method(http.MethodGet, api.HealthPath, health)
	for _, resource := range resources {
		resource.Routes(r)
	}

	return r
}
