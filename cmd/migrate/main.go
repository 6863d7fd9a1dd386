package main

import (
	"flag"
	"os"

	"go.uber.org/zap"

	"github.com/elskow/registry-auth/internal/migration"
	"github.com/elskow/registry-auth/internal/server"
)

func main() {
	command := flag.String("command", "up", "migration command (up/down/status/version/reset)")
	flag.Parse()

	if os.Getenv("APP_ENV") == "" {
		os.Setenv("APP_ENV", "development")
	}

	logger, err := server.NewLogger(os.Getenv("APP_ENV"))
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := server.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	migrator, err := migration.NewMigrator(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer migrator.Close()

	switch *command {
	case "up":
		if err := migrator.Up(); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		logger.Info("Successfully ran migrations")

	case "down":
		if err := migrator.Down(); err != nil {
			logger.Fatal("Failed to rollback migrations", zap.Error(err))
		}
		logger.Info("Successfully rolled back migrations")

	case "status":
		if err := migrator.Status(); err != nil {
			logger.Fatal("Failed to get migration status", zap.Error(err))
		}

	case "version":
		version, err := migrator.Version()
		if err != nil {
			logger.Fatal("Failed to get migration version", zap.Error(err))
		}
		logger.Info("Current migration version", zap.Int64("version", version))

	case "reset":
		if err := migrator.Reset(); err != nil {
			logger.Fatal("Failed to reset migrations", zap.Error(err))
		}
		logger.Info("Successfully reset migrations")

	default:
		logger.Fatal("Unknown command", zap.String("command", *command))
	}
}
