package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.Register(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestLiveness(t *testing.T) {
	w := serve(New("test"), "/health/live")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"alive"}`, w.Body.String())
}

func TestReadiness(t *testing.T) {
	t.Run("all checks up", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("database", func(ctx context.Context) error {
			_, ok := ctx.Deadline()
			assert.True(t, ok, "checks run with a deadline")
			return nil
		})

		w := serve(h, "/health/ready")

		assert.Equal(t, http.StatusOK, w.Code)
		var body ReadinessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "ready", body.Status)
		assert.Equal(t, "up", body.Checks["database"].Status)
		assert.Empty(t, body.Checks["database"].Error)
	})

	t.Run("one check down", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("database", func(context.Context) error { return errors.New("connection refused") })
		h.RegisterCheck("migrations", func(context.Context) error { return nil })

		w := serve(h, "/health/ready")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var body ReadinessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "not_ready", body.Status)
		assert.Equal(t, "down", body.Checks["database"].Status)
		assert.Equal(t, "connection refused", body.Checks["database"].Error)
		assert.Equal(t, "up", body.Checks["migrations"].Status)
	})

	t.Run("no checks registered", func(t *testing.T) {
		w := serve(New("test"), "/health/ready")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ready"}`, w.Body.String())
	})
}

func TestStatus(t *testing.T) {
	t.Run("reports stats", func(t *testing.T) {
		h := New("staging")
		h.RegisterStat("residents", func(context.Context) (int64, error) { return 28, nil })

		w := serve(h, "/health")

		assert.Equal(t, http.StatusOK, w.Code)
		var body StatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body.Status)
		assert.Equal(t, "staging", body.Environment)
		assert.Equal(t, Version, body.Version)
		assert.Equal(t, map[string]int64{"residents": 28}, body.Stats)
		assert.Empty(t, body.Unavailable)
	})

	t.Run("failing stat degrades status", func(t *testing.T) {
		h := New("staging")
		h.RegisterStat("residents", func(context.Context) (int64, error) { return 0, errors.New("no such table") })

		w := serve(h, "/health")

		assert.Equal(t, http.StatusOK, w.Code)
		var body StatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "degraded", body.Status)
		assert.Nil(t, body.Stats)
		assert.Equal(t, []string{"residents"}, body.Unavailable)
	})
}
