// Package testutil holds the fixtures shared by integration and handler
// tests. Postgres helpers skip the calling test when TEST_DATABASE_URL is
// unset, so `go test ./...` passes on a machine without a database.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/zanehill01/CIDM6325-Django-Module-3-Blog/migrations"
)

// DSNVar names the environment variable that points integration tests at a
// throwaway Postgres database.
const DSNVar = "TEST_DATABASE_URL"

// NewPool connects to the test database, closing the pool with the test.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	pool, err := pgxpool.New(context.Background(), dsn(t))
	if err != nil {
		t.Fatalf("testutil.NewPool: %v", err)
	}
	t.Cleanup(pool.Close)
	if err := pool.Ping(context.Background()); err != nil {
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}
	return pool
}

// NewTx begins a transaction that is rolled back when the test ends, so
// every test sees an untouched schema. Nested Begin calls on the returned
// tx open savepoints.
func NewTx(t *testing.T) pgx.Tx {
	t.Helper()
	tx, err := NewPool(t).Begin(context.Background())
	if err != nil {
		t.Fatalf("testutil.NewTx: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })
	return tx
}

// NewSQLDB returns a database/sql view of the test database for goose.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()
	db := stdlib.OpenDBFromPool(NewPool(t))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Migrate brings the database at dsn up to date. It is meant for TestMain,
// where no *testing.T exists yet.
func Migrate(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("testutil.Migrate: %w", err)
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	if _, err := migrations.Up(ctx, db); err != nil {
		return fmt.Errorf("testutil.Migrate: %w", err)
	}
	return nil
}

func dsn(t *testing.T) string {
	t.Helper()
	v := os.Getenv(DSNVar)
	if v == "" {
		t.Skip(DSNVar + " not set; skipping integration test")
	}
	return v
}
