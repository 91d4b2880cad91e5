package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// SQLStore keeps client state in a single client_state table. The same
// statements run on SQLite and PostgreSQL.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLStore opens the database, pings it and applies pending migrations.
func NewSQLStore(ctx context.Context, dialect Dialect, dsn string) (*SQLStore, error) {
	if dialect == DialectSQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(dialect, dsn); err != nil {
		_ = db.Close()
		return nil, err
	}

	if dialect == DialectPostgres {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(2)
	}

	return &SQLStore{db: db, dialect: dialect}, nil
}

// runMigrations uses its own connection because closing a migrate instance
// also closes the database handle it was given.
func runMigrations(dialect Dialect, dsn string) error {
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}

	var driver database.Driver
	switch dialect {
	case DialectSQLite:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	case DialectPostgres:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		err = fmt.Errorf("unsupported dialect %q", dialect)
	}
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations/"+string(dialect))
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("could not open migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, string(dialect), driver)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM client_state WHERE name = $1`, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query state: %w", err)
	}
	return value, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO client_state (name, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert state: %w", err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM client_state WHERE name = $1`, key); err != nil {
		return fmt.Errorf("failed to delete state: %w", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// sqliteDSN adds a busy timeout so the CLI and the gateway can share one file.
func sqliteDSN(path string) string {
	if strings.Contains(path, "_pragma=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(5000)"
}
