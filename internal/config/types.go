package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type GRPCConfig struct {
	Port             string `mapstructure:"port"`
	EnableReflection bool   `mapstructure:"enable_reflection"`
}

// ConnectionConfig addresses a single Postgres endpoint.
type ConnectionConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (c ConnectionConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.Host,
		c.User,
		c.Password,
		c.Name,
		c.Port,
		c.SSLMode,
	)
}

type DatabaseConfig struct {
	Write           ConnectionConfig `mapstructure:"write"`
	Read            ConnectionConfig `mapstructure:"read"`
	MinPoolSize     int              `mapstructure:"min_pool_size"`
	MaxPoolSize     int              `mapstructure:"max_pool_size"`
	ConnMaxLifetime time.Duration    `mapstructure:"conn_max_lifetime"`
	LogLevel        string           `mapstructure:"log_level"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SessionConfig struct {
	TTL       time.Duration `mapstructure:"ttl"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	ScanCount int64         `mapstructure:"scan_count"`
}

// IdentifierKind selects which login identifier a deployment accepts.
type IdentifierKind string

const (
	IdentifierPhone    IdentifierKind = "phone"
	IdentifierUsername IdentifierKind = "username"
)

type AuthConfig struct {
	IdentifierKind  IdentifierKind `mapstructure:"identifier_kind"`
	DefaultRegion   string         `mapstructure:"default_region"`
	JWTSecret       string         `mapstructure:"jwt_secret"`
	EnforceSessions bool           `mapstructure:"enforce_sessions"`
}

type PasswordConfig struct {
	Algorithm         string `mapstructure:"algorithm"`
	Argon2Memory      uint32 `mapstructure:"argon2_memory"`
	Argon2Time        uint32 `mapstructure:"argon2_time"`
	Argon2Parallelism uint8  `mapstructure:"argon2_parallelism"`
	Argon2SaltLength  uint32 `mapstructure:"argon2_salt_length"`
	Argon2KeyLength   uint32 `mapstructure:"argon2_key_length"`
	BcryptCost        int    `mapstructure:"bcrypt_cost"`
}

type EventsConfig struct {
	NatsURL       string `mapstructure:"nats_url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

type AppConfig struct {
	Server   ServerConfig   `mapstructure:"server"`
	GRPC     GRPCConfig     `mapstructure:"grpc"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Session  SessionConfig  `mapstructure:"session"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Password PasswordConfig `mapstructure:"password"`
	Events   EventsConfig   `mapstructure:"events"`
}
