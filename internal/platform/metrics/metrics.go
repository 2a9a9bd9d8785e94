package metrics

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// NewRegistry creates the process registry with Go runtime, process and
// connection pool collectors. db may be nil.
func NewRegistry(db *sql.DB, dbName string) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if db != nil {
		reg.MustRegister(collectors.NewDBStatsCollector(db, dbName))
	}
	return reg
}

// RegisterBuildInfo publishes a constant civic_build_info gauge.
func RegisterBuildInfo(reg prometheus.Registerer, version, environment string) {
	promauto.With(reg).NewGauge(prometheus.GaugeOpts{
		Name:        "civic_build_info",
		Help:        "Build and environment information",
		ConstLabels: prometheus.Labels{"version": version, "environment": environment},
	}).Set(1)
}
