// Package database opens the Postgres write and read pools.
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/elskow/registry-auth/internal/config"
)

type Manager struct {
	write  *gorm.DB
	read   *gorm.DB
	config *config.DatabaseConfig
	logger *zap.Logger
}

func NewManager(cfg *config.DatabaseConfig, log *zap.Logger) (*Manager, error) {
	write, err := open(cfg.Write, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open write pool: %w", err)
	}

	read := write
	if cfg.Read != cfg.Write {
		read, err = open(cfg.Read, cfg, log)
		if err != nil {
			closeDB(write)
			return nil, fmt.Errorf("failed to open read pool: %w", err)
		}
	}

	return &Manager{
		write:  write,
		read:   read,
		config: cfg,
		logger: log,
	}, nil
}

// DB returns the write pool.
func (m *Manager) DB() *gorm.DB {
	return m.write
}

// ReadDB returns the read pool, which is the write pool when no replica is
// configured.
func (m *Manager) ReadDB() *gorm.DB {
	return m.read
}

func (m *Manager) Ping(ctx context.Context) error {
	sqlDB, err := m.write.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (m *Manager) Close() error {
	if m.read != m.write {
		if err := closeDB(m.read); err != nil {
			return err
		}
	}
	return closeDB(m.write)
}

func open(conn config.ConnectionConfig, cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(conn.DSN()), &gorm.Config{
		Logger: logger.New(
			zap.NewStdLog(log.Named("gorm")),
			logger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  logLevel(cfg.LogLevel),
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MinPoolSize)
	sqlDB.SetMaxOpenConns(cfg.MaxPoolSize)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func logLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
