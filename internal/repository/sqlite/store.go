// Package sqlite backs the directory with a SQLite database. It serves local
// development and end-to-end tests; production deployments use postgres.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"github.com/SimpnicServerTeam/scs-user-federation/internal/repository"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaDDL string

type Store struct {
	db *sql.DB
}

var _ repository.Querier = (*Store)(nil)

// Open opens the database at dsn with the go-sqlite3 driver.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed opening sqlite database: %w", err)
	}
	return NewStore(db), nil
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the handle for seeding.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Bootstrap creates the users and user_attributes tables if missing.
func (s *Store) Bootstrap(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed creating schema resources: %w", err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, query string, args ...any) (repository.Rows, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, repository.StorageError("sqlite query", err)
	}
	return sqlRows{rows}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return repository.StorageError("sqlite ping", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// sqlRows adapts *sql.Rows to repository.Rows.
type sqlRows struct {
	*sql.Rows
}

func (r sqlRows) Close() {
	_ = r.Rows.Close()
}
