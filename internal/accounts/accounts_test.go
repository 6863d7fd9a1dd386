package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/elskow/registry-auth/internal/config"
	"github.com/elskow/registry-auth/internal/credentials"
	"github.com/elskow/registry-auth/internal/events"
	"github.com/elskow/registry-auth/internal/reqctx/reqctxtest"
	"github.com/elskow/registry-auth/internal/security"
	"github.com/elskow/registry-auth/internal/validation"
)

type testEnv struct {
	svc         *Service
	ctx         *reqctxtest.Context
	accounts    *MockRepository
	credentials *credentials.MockRepository
	events      *events.Recorder
	hasher      security.PasswordHasher
}

func newTestHasher(t *testing.T) security.PasswordHasher {
	hasher, err := security.NewPasswordHasher(&config.PasswordConfig{
		Algorithm:         security.AlgorithmArgon2id,
		Argon2Memory:      1024,
		Argon2Time:        1,
		Argon2Parallelism: 1,
		Argon2SaltLength:  16,
		Argon2KeyLength:   32,
	})
	require.NoError(t, err)
	return hasher
}

func newTestEnv(t *testing.T) *testEnv {
	accountRepo := NewMockRepository()
	credentialRepo := credentials.NewMockRepository()
	recorder := &events.Recorder{}
	hasher := newTestHasher(t)

	svc := NewService(
		zap.NewNop(),
		validation.NewIdentifierValidator(&config.AuthConfig{IdentifierKind: config.IdentifierPhone}),
		hasher,
		accountRepo,
		credentialRepo,
		recorder,
	)

	return &testEnv{
		svc:         svc,
		ctx:         reqctxtest.New(context.Background(), nil, accountRepo, credentialRepo),
		accounts:    accountRepo,
		credentials: credentialRepo,
		events:      recorder,
		hasher:      hasher,
	}
}

func validRequest() CreateRequest {
	return CreateRequest{
		Identifier: "+15555555555",
		Password:   "homeHome123$",
		FirstName:  "John",
		LastName:   "Doe",
	}
}
