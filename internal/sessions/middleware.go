package sessions

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/elskow/registry-auth/internal/api"
	"github.com/elskow/registry-auth/internal/apperror"
	"github.com/elskow/registry-auth/internal/reqctx"
	"github.com/elskow/registry-auth/internal/security"
)

type contextKey string

// SessionContextKey holds the authenticated *Session.
const SessionContextKey contextKey = "session"

type AuthMiddleware struct {
	service  *Service
	tokens   *security.TokenIssuer
	contexts reqctx.Provider
	log      *zap.Logger
}

func NewAuthMiddleware(service *Service, tokens *security.TokenIssuer, contexts reqctx.Provider, log *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		service:  service,
		tokens:   tokens,
		contexts: contexts,
		log:      log,
	}
}

// Handler requires a bearer token bound to a live session on every
// non-public route. It is a pass-through when tokens are disabled.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.tokens.Enabled() || api.IsPublic(r.Method, r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			api.WriteError(w, m.log, apperror.SessionsUnauthorized)
			return
		}

		session, err := m.service.Authenticate(m.contexts.New(r.Context()), token)
		if err != nil {
			if errors.Is(err, apperror.SessionsUnauthorized) {
				m.log.Warn("authentication failed",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path))
			}
			api.WriteError(w, m.log, err)
			return
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionFromContext returns the session attached by AuthMiddleware.
func GetSessionFromContext(ctx context.Context) (*Session, error) {
	session, ok := ctx.Value(SessionContextKey).(*Session)
	if !ok {
		return nil, errors.New("session not found in context")
	}
	return session, nil
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
