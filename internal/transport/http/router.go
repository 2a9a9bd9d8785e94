package httptransport

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"civic/internal/platform/health"
	"civic/pkg/platform/middleware/clientip"
	"civic/pkg/platform/middleware/request"
	"civic/pkg/platform/middleware/requesttime"
)

// Registrar mounts a module's routes.
type Registrar interface {
	Register(r chi.Router)
}

// Options configures the shared middleware stack.
type Options struct {
	Logger         *slog.Logger
	Gatherer       prometheus.Gatherer
	Metrics        *request.Metrics
	Location       *time.Location
	TrustedProxies []netip.Prefix
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

// NewRouter wires health, metrics and module routes behind the middleware stack.
func NewRouter(opts Options, healthHandler *health.Handler, modules ...Registrar) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(opts.Logger))
	r.Use(request.RequestID)
	r.Use(clientip.New(opts.TrustedProxies).Handler)
	r.Use(requesttime.Middleware(opts.Location))
	r.Use(request.Logger(opts.Logger))
	r.Use(request.LatencyMiddleware(opts.Metrics))
	if opts.RequestTimeout > 0 {
		r.Use(request.Timeout(opts.RequestTimeout))
	}
	if opts.MaxBodyBytes > 0 {
		r.Use(request.BodyLimit(opts.MaxBodyBytes))
	}

	healthHandler.Register(r)
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	for _, m := range modules {
		m.Register(r)
	}

	return r
}
