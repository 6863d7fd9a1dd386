package servers

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/elskow/registry-auth/internal/common"
	"github.com/elskow/registry-auth/internal/reqctx"
)

var ErrInjected = errors.New("injected failure")

type MockRepository struct {
	mu       sync.RWMutex
	servers  map[uuid.UUID]*Server
	order    []uuid.UUID
	lastTime time.Time

	FailCreate bool
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		servers: make(map[uuid.UUID]*Server),
	}
}

func (r *MockRepository) Snapshot() func() {
	r.mu.RLock()
	saved := make(map[uuid.UUID]Server, len(r.servers))
	for id, s := range r.servers {
		saved[id] = *s
	}
	order := append([]uuid.UUID(nil), r.order...)
	r.mu.RUnlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.servers = make(map[uuid.UUID]*Server, len(saved))
		for id, s := range saved {
			s := s
			r.servers[id] = &s
		}
		r.order = order
	}
}

func (r *MockRepository) now() time.Time {
	now := time.Now()
	if !now.After(r.lastTime) {
		now = r.lastTime.Add(time.Microsecond)
	}
	r.lastTime = now
	return now
}

func (r *MockRepository) nameTaken(name string, except uuid.UUID) bool {
	for id, s := range r.servers {
		if id != except && s.Status == common.StatusActive && s.Name == name {
			return true
		}
	}
	return false
}

func (r *MockRepository) Create(_ reqctx.Context, server *Server) (*Server, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailCreate {
		return nil, ErrInjected
	}
	if r.nameTaken(server.Name, uuid.Nil) {
		return nil, ErrServerExists
	}

	row := *server
	row.Status = common.StatusActive
	row.Version = 1
	row.CreatedAt = r.now()
	row.UpdatedAt = row.CreatedAt
	r.servers[row.ID] = &row
	r.order = append(r.order, row.ID)

	clone := row
	return &clone, nil
}

func (r *MockRepository) FetchByID(_ reqctx.Context, id uuid.UUID, status common.Status) (*Server, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.servers[id]
	if !ok || s.Status != status {
		return nil, ErrServerNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *MockRepository) FetchByName(_ reqctx.Context, name string, status common.Status) (*Server, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		s := r.servers[id]
		if s.Name == name && s.Status == status {
			clone := *s
			return &clone, nil
		}
	}
	return nil, ErrServerNotFound
}

func (r *MockRepository) FetchMany(_ reqctx.Context, filter Filter, page common.Pagination) ([]Server, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []Server{}
	for _, id := range r.order {
		if s := r.servers[id]; s.Status == filter.Status {
			matched = append(matched, *s)
		}
	}
	return common.Window(matched, page), nil
}

func (r *MockRepository) Update(_ reqctx.Context, id uuid.UUID, version int64, changes Changes) (*Server, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.servers[id]
	if !ok || s.Status != common.StatusActive || s.Version != version {
		return nil, ErrServerNotFound
	}
	if changes.Name != nil {
		if r.nameTaken(*changes.Name, id) {
			return nil, ErrServerExists
		}
		s.Name = *changes.Name
	}
	if changes.HourlyRequestLimit != nil {
		s.HourlyRequestLimit = *changes.HourlyRequestLimit
	}
	s.Version++
	s.UpdatedAt = r.now()

	clone := *s
	return &clone, nil
}

func (r *MockRepository) Delete(_ reqctx.Context, id uuid.UUID) (*Server, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.servers[id]
	if !ok || s.Status != common.StatusActive {
		return nil, ErrServerNotFound
	}
	s.Status = common.StatusDeleted
	s.Version++
	s.UpdatedAt = r.now()

	clone := *s
	return &clone, nil
}
