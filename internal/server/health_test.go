package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

var (
	healthy   = pingerFunc(func(context.Context) error { return nil })
	unhealthy = pingerFunc(func(context.Context) error { return errors.New("connection refused") })
)

func TestHealthChecker(t *testing.T) {
	tests := []struct {
		name        string
		deps        map[string]Pinger
		wantFailing []string
		wantHTTP    int
		wantGRPC    grpc_health_v1.HealthCheckResponse_ServingStatus
	}{
		{
			name:        "all reachable",
			deps:        map[string]Pinger{"postgres": healthy, "redis": healthy},
			wantFailing: []string{},
			wantHTTP:    http.StatusOK,
			wantGRPC:    grpc_health_v1.HealthCheckResponse_SERVING,
		},
		{
			name:        "redis down",
			deps:        map[string]Pinger{"postgres": healthy, "redis": unhealthy},
			wantFailing: []string{"redis"},
			wantHTTP:    http.StatusServiceUnavailable,
			wantGRPC:    grpc_health_v1.HealthCheckResponse_NOT_SERVING,
		},
		{
			name:        "everything down",
			deps:        map[string]Pinger{"redis": unhealthy, "postgres": unhealthy},
			wantFailing: []string{"postgres", "redis"},
			wantHTTP:    http.StatusServiceUnavailable,
			wantGRPC:    grpc_health_v1.HealthCheckResponse_NOT_SERVING,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthChecker(tt.deps, zap.NewNop())

			assert.Equal(t, tt.wantFailing, h.Failing(context.Background()))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			assert.Equal(t, tt.wantHTTP, rec.Code)

			resp, err := h.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{})
			require.NoError(t, err)
			assert.Equal(t, tt.wantGRPC, resp.GetStatus())
		})
	}
}

func TestHealthChecker_UnknownService(t *testing.T) {
	h := NewHealthChecker(map[string]Pinger{}, zap.NewNop())

	_, err := h.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: "billing"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestHealthChecker_ServeHTTPBody(t *testing.T) {
	h := NewHealthChecker(map[string]Pinger{"redis": unhealthy}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "health.unavailable", body["error"])
	assert.Equal(t, []any{"redis"}, body["failing"])
}
