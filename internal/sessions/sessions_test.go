package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/elskow/registry-auth/internal/accounts"
	"github.com/elskow/registry-auth/internal/config"
	"github.com/elskow/registry-auth/internal/credentials"
	"github.com/elskow/registry-auth/internal/events"
	"github.com/elskow/registry-auth/internal/loginattempts"
	"github.com/elskow/registry-auth/internal/reqctx/reqctxtest"
	"github.com/elskow/registry-auth/internal/security"
	"github.com/elskow/registry-auth/internal/validation"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

func newTestSessionConfig() *config.SessionConfig {
	return &config.SessionConfig{
		TTL:       time.Hour,
		KeyPrefix: "users:sessions",
		ScanCount: 2,
	}
}

type testEnv struct {
	mr          *miniredis.Miniredis
	ctx         *reqctxtest.Context
	provider    *reqctxtest.Provider
	sessions    *Service
	accounts    *accounts.Service
	repository  Repository
	attempts    *loginattempts.MockRepository
	credentials *credentials.MockRepository
	events      *events.Recorder
	tokens      *security.TokenIssuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mr, rdb := newTestRedis(t)

	hasher, err := security.NewPasswordHasher(&config.PasswordConfig{
		Algorithm:         security.AlgorithmArgon2id,
		Argon2Memory:      1024,
		Argon2Time:        1,
		Argon2Parallelism: 1,
		Argon2SaltLength:  16,
		Argon2KeyLength:   32,
	})
	require.NoError(t, err)

	log := zap.NewNop()
	identifiers := validation.NewIdentifierValidator(&config.AuthConfig{IdentifierKind: config.IdentifierPhone})
	tokens := security.NewTokenIssuer(&config.AuthConfig{JWTSecret: "test-secret-key", EnforceSessions: true}, time.Hour)
	recorder := &events.Recorder{}

	accountRepo := accounts.NewMockRepository()
	credentialRepo := credentials.NewMockRepository()
	attemptRepo := loginattempts.NewMockRepository()
	sessionRepo := NewRepository(newTestSessionConfig(), log)

	accountSvc := accounts.NewService(log, identifiers, hasher, accountRepo, credentialRepo, recorder)
	sessionSvc := NewService(Params{
		Log:         log,
		Identifiers: identifiers,
		Hasher:      hasher,
		Tokens:      tokens,
		Repository:  sessionRepo,
		Credentials: credentialRepo,
		Attempts:    loginattempts.NewService(log, identifiers, attemptRepo),
		Events:      recorder,
	})

	return &testEnv{
		mr:          mr,
		ctx:         reqctxtest.New(context.Background(), rdb, accountRepo, credentialRepo, attemptRepo),
		provider:    reqctxtest.NewProvider(rdb, accountRepo, credentialRepo, attemptRepo),
		sessions:    sessionSvc,
		accounts:    accountSvc,
		repository:  sessionRepo,
		attempts:    attemptRepo,
		credentials: credentialRepo,
		events:      recorder,
		tokens:      tokens,
	}
}

func accountsRequest(identifier string) accounts.CreateRequest {
	return accounts.CreateRequest{
		Identifier: identifier,
		Password:   "homeHome123$",
		FirstName:  "John",
		LastName:   "Doe",
	}
}

func (env *testEnv) signup(t *testing.T, identifier string) *accounts.Account {
	t.Helper()
	account, err := env.accounts.Create(env.ctx, accountsRequest(identifier))
	require.NoError(t, err)
	return account
}
