package credentials

import (
	"time"

	"github.com/google/uuid"

	"github.com/elskow/registry-auth/internal/common"
)

// Credential is the (identifier, secret hash) pair used to authenticate into
// an account.
type Credential struct {
	ID         uuid.UUID     `gorm:"column:credentials_id;type:uuid;primaryKey" json:"credentials_id"`
	AccountID  uuid.UUID     `gorm:"column:account_id;type:uuid;not null" json:"account_id"`
	Identifier string        `gorm:"column:identifier;not null" json:"identifier"`
	Secret     string        `gorm:"column:secret;not null" json:"-"`
	Status     common.Status `gorm:"column:status;not null" json:"status"`
	CreatedAt  time.Time     `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time     `gorm:"column:updated_at" json:"updated_at"`
}

func (Credential) TableName() string {
	return "credentials"
}

// Filter narrows FetchMany. Nil fields match everything.
type Filter struct {
	AccountID *uuid.UUID
	Status    common.Status
}
