package server

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/elskow/registry-auth/internal/config"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

func LoadConfig() (*config.AppConfig, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = EnvDevelopment
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath("./config/server")

	setDefaults(v)

	// APP_DATABASE_WRITE_HOST overrides database.write.host, and so on.
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg config.AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Load environment-specific configurations
	if envSettings := v.GetStringMap(fmt.Sprintf("auth.%s", env)); len(envSettings) > 0 {
		if err := v.UnmarshalKey(fmt.Sprintf("auth.%s", env), &cfg.Auth); err != nil {
			return nil, fmt.Errorf("error unmarshaling env config: %w", err)
		}
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.request_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("grpc.port", "9090")

	v.SetDefault("database.min_pool_size", 2)
	v.SetDefault("database.max_pool_size", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("redis.addr", "localhost:6379")

	v.SetDefault("session.ttl", time.Hour)
	v.SetDefault("session.key_prefix", "users:sessions")
	v.SetDefault("session.scan_count", 100)

	v.SetDefault("auth.identifier_kind", string(config.IdentifierPhone))
	v.SetDefault("auth.default_region", "")
	v.SetDefault("auth.enforce_sessions", true)

	v.SetDefault("password.algorithm", "argon2id")
	v.SetDefault("password.argon2_memory", 64*1024)
	v.SetDefault("password.argon2_time", 1)
	v.SetDefault("password.argon2_parallelism", 2)
	v.SetDefault("password.argon2_salt_length", 16)
	v.SetDefault("password.argon2_key_length", 32)
	v.SetDefault("password.bcrypt_cost", 12)

	v.SetDefault("events.subject_prefix", "registry")
}

func validateConfig(cfg *config.AppConfig) error {
	switch cfg.Auth.IdentifierKind {
	case config.IdentifierPhone, config.IdentifierUsername:
	default:
		return fmt.Errorf("unsupported auth.identifier_kind %q", cfg.Auth.IdentifierKind)
	}
	if cfg.Auth.EnforceSessions && cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required when auth.enforce_sessions is enabled")
	}
	if cfg.Database.MinPoolSize > cfg.Database.MaxPoolSize {
		return fmt.Errorf("database.min_pool_size (%d) exceeds database.max_pool_size (%d)",
			cfg.Database.MinPoolSize, cfg.Database.MaxPoolSize)
	}
	if cfg.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	// An empty read endpoint means reads go to the primary.
	if cfg.Database.Read.Host == "" {
		cfg.Database.Read = cfg.Database.Write
	}
	return nil
}
