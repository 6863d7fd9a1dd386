package server

import (
	"context"
	"net/http"
	"sort"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/elskow/registry-auth/internal/api"
)

// Pinger is anything whose liveness can be probed on demand.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker pings every dependency on each check; nothing is cached.
type HealthChecker struct {
	grpc_health_v1.UnimplementedHealthServer

	deps map[string]Pinger
	log  *zap.Logger
}

func NewHealthChecker(deps map[string]Pinger, log *zap.Logger) *HealthChecker {
	return &HealthChecker{deps: deps, log: log}
}

// Failing returns the names of unreachable dependencies in sorted order.
func (h *HealthChecker) Failing(ctx context.Context) []string {
	failing := []string{}
	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			h.log.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
			failing = append(failing, name)
		}
	}
	sort.Strings(failing)
	return failing
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	failing := h.Failing(r.Context())
	if len(failing) > 0 {
		api.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":  "error",
			"error":   "health.unavailable",
			"failing": failing,
		})
		return
	}
	api.WriteSuccess(w, http.StatusOK, map[string]string{"state": "ok"})
}

// Check implements grpc.health.v1.Health. Only the overall service ("") is
// known.
func (h *HealthChecker) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	if req.GetService() != "" {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", req.GetService())
	}
	if len(h.Failing(ctx)) > 0 {
		return &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_NOT_SERVING}, nil
	}
	return &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_SERVING}, nil
}
