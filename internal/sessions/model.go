package sessions

import (
	"time"

	"github.com/google/uuid"
)

// Session is stored as JSON under a TTL-bound key. AccountID is a weak
// reference: deleting the account does not delete its sessions.
type Session struct {
	ID        uuid.UUID `json:"session_id"`
	AccountID uuid.UUID `json:"account_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
