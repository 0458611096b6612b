package postgres

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrator applies schema migrations over an open sql.DB.  It shares the
// caller's pool, so it is never closed on its own.
type Migrator struct {
	m      *migrate.Migrate
	logger logging.Logger
}

// NewMigrator reads migrations from path, or from the set compiled into the
// binary when path is empty.
func NewMigrator(db *sql.DB, path string, log logging.Logger) (*Migrator, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	var m *migrate.Migrate
	if path == "" {
		src, err := iofs.New(migrationFS, "migrations")
		if err != nil {
			return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", src, "postgres", driver)
		if err != nil {
			return nil, fmt.Errorf("failed to create migrate instance: %w", err)
		}
	} else {
		m, err = migrate.NewWithDatabaseInstance("file://"+path, "postgres", driver)
		if err != nil {
			return nil, fmt.Errorf("failed to create migrate instance: %w", err)
		}
	}
	return &Migrator{m: m, logger: log}, nil
}

// Up applies every pending migration.  No pending migration is not an error.
func (m *Migrator) Up() error {
	if err := m.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		version, _, _ := m.m.Version()
		return fmt.Errorf("failed to run migrations (current version: %d): %w", version, err)
	}
	version, dirty, err := m.Status()
	if err != nil {
		m.logger.Warn("Failed to get migration version", logging.Err(err))
	}
	m.logger.Info("Database migrations completed",
		logging.Int64("version", int64(version)),
		logging.Bool("dirty", dirty),
	)
	return nil
}

// Down rolls back steps migrations.
func (m *Migrator) Down(steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be greater than 0, got %d", steps)
	}
	if err := m.m.Steps(-steps); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("no migrations to roll back")
		}
		return fmt.Errorf("failed to rollback %d step(s): %w", steps, err)
	}
	return nil
}

// Status reports the applied version.  A database without migrations is
// version 0.
func (m *Migrator) Status() (version uint, dirty bool, err error) {
	version, dirty, err = m.m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// Force marks version as applied without running it, to recover from a dirty
// state.
func (m *Migrator) Force(version int) error {
	if err := m.m.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

//Personal.AI order the ending
