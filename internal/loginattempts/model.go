package loginattempts

import (
	"time"

	"github.com/google/uuid"
)

// Column widths of login_attempts; see migrations/00003_create_login_attempts.sql.
const (
	MaxIdentifierLength = 255
	MaxIPAddressLength  = 64
)

// LoginAttempt is an append-only audit record of one login call.
type LoginAttempt struct {
	ID         uuid.UUID `gorm:"column:login_attempt_id;type:uuid;primaryKey" json:"login_attempt_id"`
	Identifier string    `gorm:"column:identifier;not null" json:"identifier"`
	IPAddress  string    `gorm:"column:ip_address;not null" json:"ip_address"`
	UserAgent  string    `gorm:"column:user_agent;not null" json:"user_agent"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

func (LoginAttempt) TableName() string {
	return "login_attempts"
}

// Filter narrows FetchMany. Empty fields match everything; set fields combine
// with AND. Identifiers matches any of the listed spellings.
type Filter struct {
	Identifiers []string
	IPAddress   *string
}
