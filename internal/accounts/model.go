package accounts

import (
	"time"

	"github.com/google/uuid"

	"github.com/elskow/registry-auth/internal/common"
)

type Account struct {
	ID         uuid.UUID     `gorm:"column:account_id;type:uuid;primaryKey" json:"account_id"`
	Identifier string        `gorm:"column:identifier;not null" json:"identifier"`
	FirstName  string        `gorm:"column:first_name;not null" json:"first_name"`
	LastName   string        `gorm:"column:last_name;not null" json:"last_name"`
	Status     common.Status `gorm:"column:status;not null" json:"status"`
	CreatedAt  time.Time     `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time     `gorm:"column:updated_at" json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}

type Filter struct {
	Status common.Status
}

// Changes holds a partial update. Nil fields keep their stored value.
type Changes struct {
	Identifier *string
	FirstName  *string
	LastName   *string
}

// Empty reports whether no field is set.
func (c Changes) Empty() bool {
	return c.Identifier == nil && c.FirstName == nil && c.LastName == nil
}
