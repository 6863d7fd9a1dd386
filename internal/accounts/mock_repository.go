package accounts

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/elskow/registry-auth/internal/common"
	"github.com/elskow/registry-auth/internal/reqctx"
)

var ErrInjected = errors.New("injected failure")

// MockRepository is an in-memory Repository that keeps insertion order.
type MockRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*Account
	order    []uuid.UUID
	lastTime time.Time

	FailCreate bool
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		accounts: make(map[uuid.UUID]*Account),
	}
}

func (r *MockRepository) Snapshot() func() {
	r.mu.RLock()
	saved := make(map[uuid.UUID]Account, len(r.accounts))
	for id, a := range r.accounts {
		saved[id] = *a
	}
	order := append([]uuid.UUID(nil), r.order...)
	r.mu.RUnlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.accounts = make(map[uuid.UUID]*Account, len(saved))
		for id, a := range saved {
			a := a
			r.accounts[id] = &a
		}
		r.order = order
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

func (r *MockRepository) Create(_ reqctx.Context, account *Account) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailCreate {
		return nil, ErrInjected
	}
	for _, a := range r.accounts {
		if a.Status == common.StatusActive && a.Identifier == account.Identifier {
			return nil, ErrAccountExists
		}
	}

	row := *account
	row.Status = common.StatusActive
	row.CreatedAt = r.now()
	row.UpdatedAt = row.CreatedAt
	r.accounts[row.ID] = &row
	r.order = append(r.order, row.ID)

	clone := row
	return &clone, nil
}

func (r *MockRepository) FetchByID(_ reqctx.Context, id uuid.UUID, status common.Status) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[id]
	if !ok || a.Status != status {
		return nil, ErrAccountNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *MockRepository) FetchByIdentifier(_ reqctx.Context, identifier string, status common.Status) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		a := r.accounts[id]
		if a.Identifier == identifier && a.Status == status {
			clone := *a
			return &clone, nil
		}
	}
	return nil, ErrAccountNotFound
}

func (r *MockRepository) FetchMany(_ reqctx.Context, filter Filter, page common.Pagination) ([]Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []Account{}
	for _, id := range r.order {
		if a := r.accounts[id]; a.Status == filter.Status {
			matched = append(matched, *a)
		}
	}
	return common.Window(matched, page), nil
}

func (r *MockRepository) Update(_ reqctx.Context, id uuid.UUID, changes Changes) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok || a.Status != common.StatusActive {
		return nil, ErrAccountNotFound
	}
	if changes.Identifier != nil {
		for otherID, other := range r.accounts {
			if otherID != id && other.Status == common.StatusActive && other.Identifier == *changes.Identifier {
				return nil, ErrAccountExists
			}
		}
		a.Identifier = *changes.Identifier
	}
	if changes.FirstName != nil {
		a.FirstName = *changes.FirstName
	}
	if changes.LastName != nil {
		a.LastName = *changes.LastName
	}
	a.UpdatedAt = r.now()

	clone := *a
	return &clone, nil
}

func (r *MockRepository) Delete(_ reqctx.Context, id uuid.UUID) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok || a.Status != common.StatusActive {
		return nil, ErrAccountNotFound
	}
	a.Status = common.StatusDeleted
	a.UpdatedAt = r.now()

	clone := *a
	return &clone, nil
}
