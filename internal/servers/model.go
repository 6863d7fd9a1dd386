package servers

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/elskow/registry-auth/internal/common"
)

// Server is a tenant of the registry. SecretKey is never serialized; it is
// handed out once at creation through Created.
type Server struct {
	ID                 uuid.UUID     `gorm:"column:server_id;type:uuid;primaryKey" json:"server_id"`
	Name               string        `gorm:"column:server_name;not null" json:"server_name"`
	HourlyRequestLimit int           `gorm:"column:hourly_request_limit;not null" json:"hourly_request_limit"`
	SecretKey          string        `gorm:"column:secret_key;not null" json:"-"`
	Version            int64         `gorm:"column:version;not null" json:"version"`
	Status             common.Status `gorm:"column:status;not null" json:"status"`
	CreatedAt          time.Time     `gorm:"column:created_at" json:"created_at"`
	UpdatedAt          time.Time     `gorm:"column:updated_at" json:"updated_at"`
}

func (Server) TableName() string {
	return "servers"
}

// ETag renders the version as a strong entity tag.
func (s Server) ETag() string {
	return strconv.Quote(strconv.FormatInt(s.Version, 10))
}

// Created is the create response, the only place the secret key appears.
type Created struct {
	Server
	SecretKey string `json:"secret_key"`
}

type Filter struct {
	Status common.Status
}

// Changes holds a partial update. Nil fields keep their stored value.
type Changes struct {
	Name               *string
	HourlyRequestLimit *int
}

func (c Changes) Empty() bool {
	return c.Name == nil && c.HourlyRequestLimit == nil
}
