//go:build integration

// Package containers starts throwaway database servers for integration tests.
// One PostgreSQL container serves every suite in a test binary.
package containers

import (
	"context"
	"sync"
	"testing"
)

var (
	sharedOnce     sync.Once
	sharedPostgres *PostgresContainer
	sharedErr      error
)

// SharedPostgres returns the binary-wide PostgreSQL container with migrations
// applied, starting it on first use. If the start failed, every caller fails.
func SharedPostgres(t testing.TB) *PostgresContainer {
	t.Helper()

	sharedOnce.Do(func() {
		sharedPostgres, sharedErr = startPostgres(context.Background())
	})
	if sharedErr != nil {
		t.Fatalf("postgres container unavailable: %v", sharedErr)
	}
	return sharedPostgres
}
