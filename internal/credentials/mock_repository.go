package credentials

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/elskow/registry-auth/internal/common"
	"github.com/elskow/registry-auth/internal/reqctx"
)

var ErrInjected = errors.New("injected failure")

// MockRepository is an in-memory Repository for service tests.
type MockRepository struct {
	mu          sync.RWMutex
	credentials map[uuid.UUID]*Credential
	lastTime    time.Time

	// Fail* fields force the matching call to error.
	FailCreate bool
	FailUpdate bool
	FailDelete bool
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		credentials: make(map[uuid.UUID]*Credential),
	}
}

func (r *MockRepository) Snapshot() func() {
	r.mu.RLock()
	saved := make(map[uuid.UUID]Credential, len(r.credentials))
	for id, c := range r.credentials {
		saved[id] = *c
	}
	r.mu.RUnlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.credentials = make(map[uuid.UUID]*Credential, len(saved))
		for id, c := range saved {
			c := c
			r.credentials[id] = &c
		}
	}
}

// now is strictly increasing so created_at ordering matches insertion order.
func (r *MockRepository) now() time.Time {
	now := time.Now()
	if !now.After(r.lastTime) {
		now = r.lastTime.Add(time.Microsecond)
	}
	r.lastTime = now
	return now
}

func (r *MockRepository) Create(_ reqctx.Context, accountID uuid.UUID, identifier, secret string) (*Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailCreate {
		return nil, ErrInjected
	}
	for _, c := range r.credentials {
		if c.Status == common.StatusActive && c.Identifier == identifier {
			return nil, ErrCredentialExists
		}
	}

	now := r.now()
	credential := &Credential{
		ID:         uuid.New(),
		AccountID:  accountID,
		Identifier: identifier,
		Secret:     secret,
		Status:     common.StatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.credentials[credential.ID] = credential

	clone := *credential
	return &clone, nil
}

func (r *MockRepository) FetchByID(_ reqctx.Context, id uuid.UUID, status common.Status) (*Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.credentials[id]
	if !ok || c.Status != status {
		return nil, ErrCredentialNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *MockRepository) FetchByIdentifier(_ reqctx.Context, identifier string, status common.Status) (*Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.credentials {
		if c.Identifier == identifier && c.Status == status {
			clone := *c
			return &clone, nil
		}
	}
	return nil, ErrCredentialNotFound
}

func (r *MockRepository) FetchMany(_ reqctx.Context, filter Filter, page common.Pagination) ([]Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []Credential{}
	for _, c := range r.credentials {
		if c.Status != filter.Status {
			continue
		}
		if filter.AccountID != nil && c.AccountID != *filter.AccountID {
			continue
		}
		matched = append(matched, *c)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID.String() < matched[j].ID.String()
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	return common.Window(matched, page), nil
}

func (r *MockRepository) Update(_ reqctx.Context, id uuid.UUID, identifier, secret *string) (*Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailUpdate {
		return nil, ErrInjected
	}
	c, ok := r.credentials[id]
	if !ok || c.Status != common.StatusActive {
		return nil, ErrCredentialNotFound
	}
	if identifier != nil {
		c.Identifier = *identifier
	}
	if secret != nil {
		c.Secret = *secret
	}
	c.UpdatedAt = r.now()

	clone := *c
	return &clone, nil
}

func (r *MockRepository) Delete(_ reqctx.Context, id uuid.UUID) (*Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailDelete {
		return nil, ErrInjected
	}
	c, ok := r.credentials[id]
	if !ok || c.Status != common.StatusActive {
		return nil, ErrCredentialNotFound
	}
	c.Status = common.StatusDeleted
	c.UpdatedAt = r.now()

	clone := *c
	return &clone, nil
}
