// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"treepress/internal/database"
	"treepress/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "treepress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "treepress")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testPool connects to the test database and runs migrations. If the
// database is unavailable, the test is skipped.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pool, err := database.Connect(context.Background(), testDSN())
	if err != nil {
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}
	if err := database.Migrate(pool); err != nil {
		pool.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// load inserts ds and registers a cleanup that removes every inserted row.
func load(t *testing.T, pool *pgxpool.Pool, ds models.Dataset) {
	t.Helper()
	ctx := context.Background()

	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		return database.Load(ctx, tx, ds)
	})
	if err != nil {
		t.Fatalf("load dataset: %v", err)
	}

	t.Cleanup(func() {
		for _, c := range ds.Categories {
			pool.Exec(ctx, "DELETE FROM categories WHERE id = $1", c.ID)
		}
		for _, p := range ds.Posts {
			pool.Exec(ctx, "DELETE FROM posts WHERE id = $1", p.ID)
		}
		for _, s := range ds.Snapshots {
			pool.Exec(ctx, "DELETE FROM snapshots WHERE id = $1", s.ID)
		}
		for _, c := range ds.Counters {
			pool.Exec(ctx, "DELETE FROM counters WHERE subject_id = $1", c.SubjectID)
		}
	})
}

func ptr[T any](v T) *T { return &v }
