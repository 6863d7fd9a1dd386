package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/elskow/registry-auth/internal/config"
)

// Server runs the REST API and the operational gRPC endpoint side by side.
type Server struct {
	config     *config.AppConfig
	log        *zap.Logger
	httpServer *http.Server
	grpcServer *grpc.Server
}

type Params struct {
	fx.In

	Config *config.AppConfig
	Logger *zap.Logger
	Router http.Handler
	Health *HealthChecker
}

func NewServer(p Params) *Server {
	grpcServer := grpc.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, p.Health)
	if p.Config.GRPC.EnableReflection {
		reflection.Register(grpcServer)
	}

	return &Server{
		config: p.Config,
		log:    p.Logger,
		httpServer: &http.Server{
			Addr:              net.JoinHostPort(p.Config.Server.Host, p.Config.Server.Port),
			Handler:           p.Router,
			ReadHeaderTimeout: p.Config.Server.RequestTimeout,
		},
		grpcServer: grpcServer,
	}
}

// Start binds both listeners and serves until Stop. Bind errors are returned
// synchronously.
func (s *Server) Start() error {
	httpLis, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	grpcAddr := net.JoinHostPort(s.config.Server.Host, s.config.GRPC.Port)
	grpcLis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		_ = httpLis.Close()
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.log.Info("Starting servers",
		zap.String("http_address", s.httpServer.Addr),
		zap.String("grpc_address", grpcAddr),
		zap.Object("config", serverConfigToField(s.config)),
	)

	go func() {
		if err := s.httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("http server stopped", zap.Error(err))
		}
	}()
	go func() {
		if err := s.grpcServer.Serve(grpcLis); err != nil {
			s.log.Error("grpc server stopped", zap.Error(err))
		}
	}()

	return nil
}

func serverConfigToField(config *config.AppConfig) zapcore.ObjectMarshaler {
	return zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
		enc.AddString("environment", os.Getenv("APP_ENV"))
		enc.AddBool("reflection_enabled", config.GRPC.EnableReflection)
		enc.AddDuration("request_timeout", config.Server.RequestTimeout)
		enc.AddString("identifier_kind", string(config.Auth.IdentifierKind))
		enc.AddBool("enforce_sessions", config.Auth.EnforceSessions)
		return nil
	})
}

func (s *Server) Stop(ctx context.Context) error {
	if s.config.Server.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()
	}

	s.log.Info("shutting down servers")
	s.grpcServer.GracefulStop()
	return s.httpServer.Shutdown(ctx)
}
