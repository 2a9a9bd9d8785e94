// Package health serves the liveness, readiness and status probes of the records service.
package health

import (
	"context"
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"civic/pkg/platform/httputil"
)

// Version is set at build time via ldflags.
var Version = "dev"

// CheckFunc probes a dependency and returns nil when it is usable.
type CheckFunc func(ctx context.Context) error

// StatFunc reports a figure shown on the status endpoint, such as the number
// of stored residents.
type StatFunc func(ctx context.Context) (int64, error)

// probeTimeout bounds each check and stat.
const probeTimeout = 2 * time.Second

// Handler serves the probe endpoints.
type Handler struct {
	startTime   time.Time
	environment string

	mu     sync.RWMutex
	checks map[string]CheckFunc
	stats  map[string]StatFunc
}

// New creates a health handler for the given deployment environment.
func New(environment string) *Handler {
	return &Handler{
		startTime:   time.Now(),
		environment: environment,
		checks:      make(map[string]CheckFunc),
		stats:       make(map[string]StatFunc),
	}
}

// RegisterCheck adds a named dependency check to the readiness probe.
func (h *Handler) RegisterCheck(name string, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// RegisterStat adds a named figure to the status endpoint.
func (h *Handler) RegisterStat(name string, stat StatFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stats[name] = stat
}

// Register mounts the probe routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleStatus)
	r.Get("/health/live", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
}

// LivenessResponse is the body of /health/live.
type LivenessResponse struct {
	Status string `json:"status"`
}

// HandleLiveness answers 200 while the process is serving.
func (h *Handler) HandleLiveness(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, LivenessResponse{Status: "alive"})
}

// CheckResult is the outcome of one readiness check.
type CheckResult struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// ReadinessResponse is the body of /health/ready.
type ReadinessResponse struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

// HandleReadiness runs every registered check concurrently and answers 503 if
// any of them fails.
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	checks := maps.Clone(h.checks)
	h.mu.RUnlock()

	response := ReadinessResponse{
		Status: "ready",
		Checks: make(map[string]CheckResult, len(checks)),
	}

	var (
		wg      sync.WaitGroup
		resMu   sync.Mutex
		healthy = true
	)
	for name, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := runCheck(r.Context(), check)

			resMu.Lock()
			defer resMu.Unlock()
			response.Checks[name] = result
			if result.Status != "up" {
				healthy = false
			}
		}()
	}
	wg.Wait()

	if !healthy {
		response.Status = "not_ready"
		httputil.WriteJSON(w, http.StatusServiceUnavailable, response)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, response)
}

func runCheck(ctx context.Context, check CheckFunc) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	start := time.Now()
	err := check(ctx)
	result := CheckResult{Status: "up", LatencyMS: time.Since(start).Milliseconds()}
	if err != nil {
		result.Status = "down"
		result.Error = err.Error()
	}
	return result
}

// StatusResponse is the body of /health.
type StatusResponse struct {
	Status        string           `json:"status"`
	Version       string           `json:"version"`
	Environment   string           `json:"environment"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Timestamp     string           `json:"timestamp"`
	Stats         map[string]int64 `json:"stats,omitempty"`
	Unavailable   []string         `json:"unavailable_stats,omitempty"`
}

// HandleStatus reports version, uptime and the registered stats. A stat that
// cannot be read marks the service degraded but still answers 200.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	stats := maps.Clone(h.stats)
	h.mu.RUnlock()

	response := StatusResponse{
		Status:        "healthy",
		Version:       Version,
		Environment:   h.environment,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}

	for _, name := range slices.Sorted(maps.Keys(stats)) {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		n, err := stats[name](ctx)
		cancel()
		if err != nil {
			response.Unavailable = append(response.Unavailable, name)
			continue
		}
		if response.Stats == nil {
			response.Stats = make(map[string]int64, len(stats))
		}
		response.Stats[name] = n
	}
	if len(response.Unavailable) > 0 {
		response.Status = "degraded"
	}

	httputil.WriteJSON(w, http.StatusOK, response)
}
