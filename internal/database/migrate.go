package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/iliyamo/raffle-reservation/internal/database/migrations"
)

// Migrator applies the embedded goose migrations to a SQL store.
type Migrator struct {
	db      *sql.DB
	dialect goose.Dialect
	logger  *zap.Logger
}

// NewMigrator prepares a migrator for driver ("mysql" or "sqlite").
func NewMigrator(db *sql.DB, driver string, logger *zap.Logger) (*Migrator, error) {
	var dialect goose.Dialect
	switch driver {
	case "mysql":
		dialect = goose.DialectMySQL
	case "sqlite":
		dialect = goose.DialectSQLite3
	default:
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{db: db, dialect: dialect, logger: logger}, nil
}

// Run applies all pending migrations.
func (m *Migrator) Run(ctx context.Context) error {
	provider, err := goose.NewProvider(m.dialect, m.db, migrations.FS)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		m.logger.Info("migration applied",
			zap.Int64("version", r.Source.Version),
			zap.Duration("took", r.Duration))
	}
	return nil
}

// Version reports the current schema version.
func (m *Migrator) Version(ctx context.Context) (int64, error) {
	provider, err := goose.NewProvider(m.dialect, m.db, migrations.FS)
	if err != nil {
		return 0, fmt.Errorf("goose provider: %w", err)
	}
	v, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("get version: %w", err)
	}
	return v, nil
}
