package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestSQLite(t *testing.T) (*SQLStore, string) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := NewSQLStore(context.Background(), DialectSQLite, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestSQLStore_SQLiteContract(t *testing.T) {
	store, _ := setupTestSQLite(t)
	exerciseStore(t, store)
}

func TestSQLStore_SQLiteSurvivesReopen(t *testing.T) {
	store, path := setupTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "cart", []byte(`[{"product_id":1,"quantity":2}]`)))
	require.NoError(t, store.Close())

	// migrations are idempotent on an existing database
	reopened, err := NewSQLStore(ctx, DialectSQLite, path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "cart")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"product_id":1,"quantity":2}]`, string(got))
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "/tmp/a.db?_pragma=busy_timeout(5000)", sqliteDSN("/tmp/a.db"))
	assert.Equal(t, "/tmp/a.db?mode=rwc&_pragma=busy_timeout(5000)", sqliteDSN("/tmp/a.db?mode=rwc"))
	assert.Equal(t, "/tmp/a.db?_pragma=foreign_keys(1)", sqliteDSN("/tmp/a.db?_pragma=foreign_keys(1)"))
}

func TestSQLStore_PostgresContract(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	store, err := NewSQLStore(ctx, DialectPostgres, dsn)
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}
