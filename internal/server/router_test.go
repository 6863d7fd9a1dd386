package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/elskow/registry-auth/internal/config"
)

type panicResource struct{}

func (panicResource) Routes(r chi.Router) {
	r.Get("/v1/panic", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	r.Get("/v1/ok", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func denyAll(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func passThrough(next http.Handler) http.Handler { return next }

func TestRouter(t *testing.T) {
	cfg := &config.AppConfig{Server: config.ServerConfig{RequestTimeout: time.Second}}
	health := NewHealthChecker(map[string]Pinger{"postgres": healthy}, zap.NewNop())

	tests := []struct {
		name       string
		auth       func(http.Handler) http.Handler
		method     string
		path       string
		wantStatus int
	}{
		{name: "health", auth: passThrough, method: http.MethodGet, path: "/healthz", wantStatus: http.StatusOK},
		{name: "mounted resource", auth: passThrough, method: http.MethodGet, path: "/v1/ok", wantStatus: http.StatusOK},
		{name: "panic is recovered", auth: passThrough, method: http.MethodGet, path: "/v1/panic", wantStatus: http.StatusInternalServerError},
		{name: "unknown route", auth: passThrough, method: http.MethodGet, path: "/v1/nope", wantStatus: http.StatusNotFound},
		{name: "auth runs before routing", auth: denyAll, method: http.MethodGet, path: "/v1/ok", wantStatus: http.StatusUnauthorized},
		{name: "health skips auth", auth: denyAll, method: http.MethodGet, path: "/healthz", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(cfg, zap.NewNop(), health, tt.auth, panicResource{})

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
