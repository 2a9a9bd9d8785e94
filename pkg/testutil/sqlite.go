package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"civic/internal/platform/database"
	"civic/migrations"
)

// NewSQLitePool opens a private in-memory SQLite database with migrations applied.
// The pool is closed when the test ends.
func NewSQLitePool(t testing.TB) *database.Pool {
	t.Helper()

	cfg := database.DefaultConfig()
	cfg.URL = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())

	pool, err := database.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = pool.Close() })

	if _, err := pool.Migrate(context.Background(), migrations.FS); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return pool
}
