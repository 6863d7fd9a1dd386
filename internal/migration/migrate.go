// Package migration applies the SQL files under migrations/ with goose.
package migration

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/elskow/registry-auth/internal/config"
)

type Migrator struct {
	db  *sql.DB
	dir string
}

// NewMigrator connects to the write endpoint; migrations never run against a
// replica.
func NewMigrator(cfg *config.DatabaseConfig) (*Migrator, error) {
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("failed to set dialect: %w", err)
	}

	dir, err := migrationsDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get migrations directory: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Write.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Migrator{db: db, dir: dir}, nil
}

func (m *Migrator) Up() error {
	if err := goose.Up(m.db, m.dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (m *Migrator) Down() error {
	if err := goose.Down(m.db, m.dir); err != nil {
		return fmt.Errorf("failed to rollback migrations: %w", err)
	}
	return nil
}

// DownTo rolls back until the schema is at version.
func (m *Migrator) DownTo(version int64) error {
	if err := goose.DownTo(m.db, m.dir, version); err != nil {
		return fmt.Errorf("failed to migrate down to version %d: %w", version, err)
	}
	return nil
}

func (m *Migrator) Reset() error {
	if err := goose.Reset(m.db, m.dir); err != nil {
		return fmt.Errorf("failed to reset migrations: %w", err)
	}
	return m.Up()
}

func (m *Migrator) Status() error {
	if err := goose.Status(m.db, m.dir); err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}
	return nil
}

// Version returns the version currently applied to the database.
func (m *Migrator) Version() (int64, error) {
	return goose.GetDBVersion(m.db)
}

// LatestVersion returns the newest version present on disk.
func (m *Migrator) LatestVersion() (int64, error) {
	migrations, err := goose.CollectMigrations(m.dir, 0, goose.MaxVersion)
	if err != nil {
		return 0, err
	}
	if len(migrations) == 0 {
		return 0, nil
	}
	return migrations[len(migrations)-1].Version, nil
}

func (m *Migrator) Close() error {
	return m.db.Close()
}
