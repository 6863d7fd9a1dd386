package servers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/elskow/registry-auth/internal/apperror"
	"github.com/elskow/registry-auth/internal/common"
	"github.com/elskow/registry-auth/internal/events"
	"github.com/elskow/registry-auth/internal/reqctx/reqctxtest"
)

type testEnv struct {
	svc     *Service
	ctx     *reqctxtest.Context
	servers *MockRepository
	events  *events.Recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := NewMockRepository()
	recorder := &events.Recorder{}
	return &testEnv{
		svc:     NewService(zap.NewNop(), repo, recorder),
		ctx:     reqctxtest.New(context.Background(), nil, repo),
		servers: repo,
		events:  recorder,
	}
}

func TestService_Create(t *testing.T) {
	tests := []struct {
		name    string
		server  string
		limit   int
		wantErr error
	}{
		{name: "valid server", server: "Akatsuki", limit: 100},
		{name: "name is trimmed", server: "  Akatsuki  ", limit: 100},
		{name: "blank name", server: "   ", limit: 100, wantErr: apperror.ServersNameInvalid},
		{name: "zero limit", server: "Akatsuki", limit: 0, wantErr: apperror.ServersRequestLimitInvalid},
		{name: "negative limit", server: "Akatsuki", limit: -5, wantErr: apperror.ServersRequestLimitInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			created, err := env.svc.Create(env.ctx, tt.server, tt.limit)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Akatsuki", created.Name)
			assert.Equal(t, tt.limit, created.HourlyRequestLimit)
			assert.Equal(t, int64(1), created.Version)
			assert.Len(t, created.SecretKey, 64)
			assert.Equal(t, []string{events.ServerCreated}, env.events.Types())
		})
	}
}

func TestService_Create_NameExists(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Create(env.ctx, "Akatsuki", 100)
	require.NoError(t, err)

	_, err = env.svc.Create(env.ctx, "Akatsuki", 200)
	assert.ErrorIs(t, err, apperror.ServersNameExists)
}

func TestService_Create_Failure(t *testing.T) {
	env := newTestEnv(t)
	env.servers.FailCreate = true

	_, err := env.svc.Create(env.ctx, "Akatsuki", 100)
	assert.ErrorIs(t, err, apperror.ServersCreationFailed)
	assert.Empty(t, env.events.Types())
}

func TestService_FetchOne(t *testing.T) {
	env := newTestEnv(t)
	created, err := env.svc.Create(env.ctx, "Akatsuki", 100)
	require.NoError(t, err)

	got, err := env.svc.FetchOne(env.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Akatsuki", got.Name)

	_, err = env.svc.FetchOne(env.ctx, uuid.New())
	assert.ErrorIs(t, err, apperror.ServersNotFound)
}

func TestService_FetchMany(t *testing.T) {
	env := newTestEnv(t)
	for _, name := range []string{"A", "B", "C"} {
		_, err := env.svc.Create(env.ctx, name, 100)
		require.NoError(t, err)
	}

	page, err := env.svc.FetchMany(env.ctx, common.NewPagination(2, 2))
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "C", page[0].Name)

	all, err := env.svc.FetchMany(env.ctx, common.Pagination{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestService_PartialUpdate(t *testing.T) {
	tests := []struct {
		name    string
		version *int64
		changes Changes
		wantErr error
	}{
		{
			name:    "current version",
			version: common.Ptr(int64(1)),
			changes: Changes{HourlyRequestLimit: common.Ptr(200)},
		},
		{
			name:    "missing precondition",
			changes: Changes{HourlyRequestLimit: common.Ptr(200)},
			wantErr: apperror.ServersPreconditionRequired,
		},
		{
			name:    "stale version",
			version: common.Ptr(int64(7)),
			changes: Changes{HourlyRequestLimit: common.Ptr(200)},
			wantErr: apperror.ServersAlreadyUpdated,
		},
		{
			name:    "invalid limit",
			version: common.Ptr(int64(1)),
			changes: Changes{HourlyRequestLimit: common.Ptr(0)},
			wantErr: apperror.ServersRequestLimitInvalid,
		},
		{
			name:    "invalid name",
			version: common.Ptr(int64(1)),
			changes: Changes{Name: common.Ptr("")},
			wantErr: apperror.ServersNameInvalid,
		},
		{
			name:    "name taken",
			version: common.Ptr(int64(1)),
			changes: Changes{Name: common.Ptr("Bancho")},
			wantErr: apperror.ServersNameExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			created, err := env.svc.Create(env.ctx, "Akatsuki", 100)
			require.NoError(t, err)
			_, err = env.svc.Create(env.ctx, "Bancho", 100)
			require.NoError(t, err)

			got, err := env.svc.PartialUpdate(env.ctx, created.ID, tt.version, tt.changes)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Akatsuki", got.Name)
			assert.Equal(t, 200, got.HourlyRequestLimit)
			assert.Equal(t, int64(2), got.Version)
		})
	}
}

func TestService_PartialUpdate_LostUpdate(t *testing.T) {
	env := newTestEnv(t)
	created, err := env.svc.Create(env.ctx, "Akatsuki", 100)
	require.NoError(t, err)

	seen := created.Version
	_, err = env.svc.PartialUpdate(env.ctx, created.ID, &seen, Changes{HourlyRequestLimit: common.Ptr(200)})
	require.NoError(t, err)

	// A second writer holding the same ETag must not overwrite the first.
	_, err = env.svc.PartialUpdate(env.ctx, created.ID, &seen, Changes{HourlyRequestLimit: common.Ptr(300)})
	assert.ErrorIs(t, err, apperror.ServersAlreadyUpdated)

	got, err := env.svc.FetchOne(env.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 200, got.HourlyRequestLimit)
}

func TestService_PartialUpdate_NoChanges(t *testing.T) {
	env := newTestEnv(t)
	created, err := env.svc.Create(env.ctx, "Akatsuki", 100)
	require.NoError(t, err)

	got, err := env.svc.PartialUpdate(env.ctx, created.ID, common.Ptr(int64(1)), Changes{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)
}

func TestService_Delete(t *testing.T) {
	env := newTestEnv(t)
	created, err := env.svc.Create(env.ctx, "Akatsuki", 100)
	require.NoError(t, err)

	deleted, err := env.svc.Delete(env.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, common.StatusDeleted, deleted.Status)

	_, err = env.svc.Delete(env.ctx, created.ID)
	assert.ErrorIs(t, err, apperror.ServersNotFound)

	_, err = env.svc.FetchOne(env.ctx, created.ID)
	assert.ErrorIs(t, err, apperror.ServersNotFound)

	// The name is free again once the holder is deleted.
	_, err = env.svc.Create(env.ctx, "Akatsuki", 100)
	assert.NoError(t, err)

	assert.Equal(t, []string{events.ServerCreated, events.ServerDeleted, events.ServerCreated}, env.events.Types())
}
