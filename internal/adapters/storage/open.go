// Package storage elige el adapter de persistencia según DB_DRIVER.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"shelter-operations/internal/adapters/storage/memory"
	"shelter-operations/internal/adapters/storage/postgres"
	"shelter-operations/internal/adapters/storage/sqlite"
	"shelter-operations/internal/domain/animals"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Options struct {
	Driver     string
	DSN        string // postgres
	SQLitePath string
}

// Store es el repo elegido más su cierre.
type Store struct {
	Animals animals.Repository
	db      *sql.DB
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Open no aplica migraciones en Postgres (eso es `migrate`); SQLite aplica
// el schema al abrir.
func Open(ctx context.Context, opts Options) (*Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", DriverMemory:
		return &Store{Animals: memory.NewAnimalsRepo()}, nil

	case DriverPostgres:
		if strings.TrimSpace(opts.DSN) == "" {
			return nil, fmt.Errorf("storage: DB_DSN is required for driver %q", DriverPostgres)
		}
		db, err := postgres.Open(ctx, opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("storage: postgres: %w", err)
		}
		return &Store{Animals: postgres.NewAnimalsRepo(db), db: db}, nil

	case DriverSQLite:
		if strings.TrimSpace(opts.SQLitePath) == "" {
			return nil, fmt.Errorf("storage: SQLITE_PATH is required for driver %q", DriverSQLite)
		}
		db, err := sqlite.Open(ctx, opts.SQLitePath, sqlite.DefaultConfig())
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		return &Store{Animals: sqlite.NewAnimalsRepo(db), db: db}, nil

	default:
		return nil, fmt.Errorf("storage: unknown driver %q", opts.Driver)
	}
}

// Migrate aplica el schema del driver SQL elegido.
func Migrate(ctx context.Context, opts Options) error {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case DriverPostgres:
		db, err := postgres.Open(ctx, opts.DSN)
		if err != nil {
			return fmt.Errorf("storage: postgres: %w", err)
		}
		defer db.Close()
		return postgres.Migrate(ctx, db)
	case DriverSQLite:
		// Open ya migra.
		db, err := sqlite.Open(ctx, opts.SQLitePath, sqlite.DefaultConfig())
		if err != nil {
			return fmt.Errorf("storage: %w", err)
		}
		return db.Close()
	default:
		return fmt.Errorf("storage: driver %q has no schema", opts.Driver)
	}
}
