package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds Prometheus collectors for resident queries.
type Metrics struct {
	QueryLatency    *prometheus.HistogramVec
	QueriesTotal    *prometheus.CounterVec
	RowsReturned    *prometheus.HistogramVec
	CriteriaApplied *prometheus.CounterVec
	ResidentsLoaded *prometheus.CounterVec
}

// New registers resident metrics on reg. Passing nil uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		QueryLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "civic_residents_query_latency_seconds",
			Help:    "Latency of resident store queries in seconds, labeled by operation",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"operation"}),
		QueriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "civic_residents_queries_total",
			Help: "Total number of resident queries, labeled by operation and outcome",
		}, []string{"operation", "outcome"}),
		RowsReturned: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "civic_residents_rows_returned",
			Help:    "Distribution of rows returned per resident query",
			Buckets: []float64{0, 1, 10, 100, 1000, 10000, 100000},
		}, []string{"operation"}),
		CriteriaApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "civic_residents_criteria_applied_total",
			Help: "Total number of filter criteria applied, labeled by criterion",
		}, []string{"criterion"}),
		ResidentsLoaded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "civic_residents_loaded_total",
			Help: "Total number of residents processed by imports, labeled by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) ObserveQuery(operation string, d time.Duration, rows int, err error) {
	m.QueryLatency.WithLabelValues(operation).Observe(d.Seconds())
	if err != nil {
		m.QueriesTotal.WithLabelValues(operation, OutcomeError).Inc()
		return
	}
	m.QueriesTotal.WithLabelValues(operation, OutcomeOK).Inc()
	m.RowsReturned.WithLabelValues(operation).Observe(float64(rows))
}

func (m *Metrics) IncrementCriterion(criterion string) {
	m.CriteriaApplied.WithLabelValues(criterion).Inc()
}

func (m *Metrics) AddLoaded(result string, n int) {
	m.ResidentsLoaded.WithLabelValues(result).Add(float64(n))
}
