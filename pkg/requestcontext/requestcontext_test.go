package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	assert.Empty(t, RequestID(context.Background()))
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestID(ctx))
}

func TestClientIP(t *testing.T) {
	assert.Empty(t, ClientIP(context.Background()))
	ctx := WithClientIP(context.Background(), "10.0.0.7")
	assert.Equal(t, "10.0.0.7", ClientIP(ctx))
}

func TestNow(t *testing.T) {
	t.Run("returns pinned time", func(t *testing.T) {
		pinned := time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC)
		ctx := WithTime(context.Background(), pinned)
		assert.True(t, pinned.Equal(Now(ctx)))
		assert.True(t, pinned.Equal(Now(ctx)), "repeated reads return the same instant")
	})

	t.Run("falls back to wall clock", func(t *testing.T) {
		before := time.Now()
		got := Now(context.Background())
		assert.False(t, got.Before(before))
	})
}
