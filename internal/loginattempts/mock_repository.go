package loginattempts

import (
	"errors"
	"slices"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/elskow/registry-auth/internal/common"
	"github.com/elskow/registry-auth/internal/reqctx"
)

var (
	ErrInjected     = errors.New("injected failure")
	ErrValueTooLong = errors.New("value too long for column")
)

type MockRepository struct {
	mu       sync.RWMutex
	attempts []LoginAttempt

	FailCreate bool
}

func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

func (r *MockRepository) Snapshot() func() {
	r.mu.RLock()
	saved := slices.Clone(r.attempts)
	r.mu.RUnlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.attempts = saved
	}
}

func (r *MockRepository) Create(_ reqctx.Context, identifier, ipAddress, userAgent string) (*LoginAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailCreate {
		return nil, ErrInjected
	}
	// Mirror the VARCHAR limits Postgres enforces on insert.
	if utf8.RuneCountInString(identifier) > MaxIdentifierLength || utf8.RuneCountInString(ipAddress) > MaxIPAddressLength {
		return nil, ErrValueTooLong
	}
	attempt := LoginAttempt{
		ID:         uuid.New(),
		Identifier: identifier,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		CreatedAt:  time.Now(),
	}
	r.attempts = append(r.attempts, attempt)
	return &attempt, nil
}

func (r *MockRepository) FetchByID(_ reqctx.Context, id uuid.UUID) (*LoginAttempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.attempts {
		if a.ID == id {
			clone := a
			return &clone, nil
		}
	}
	return nil, ErrLoginAttemptNotFound
}

func (r *MockRepository) FetchMany(_ reqctx.Context, filter Filter, page common.Pagination) ([]LoginAttempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []LoginAttempt{}
	for _, a := range r.attempts {
		if len(filter.Identifiers) > 0 && !slices.Contains(filter.Identifiers, a.Identifier) {
			continue
		}
		if filter.IPAddress != nil && a.IPAddress != *filter.IPAddress {
			continue
		}
		matched = append(matched, a)
	}
	return common.Window(matched, page), nil
}

// All returns every recorded attempt in insertion order.
func (r *MockRepository) All() []LoginAttempt {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.attempts)
}
