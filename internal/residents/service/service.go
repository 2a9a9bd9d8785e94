package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"civic/internal/platform/tracer"
	"civic/internal/residents/metrics"
	"civic/internal/residents/models"
	dErrors "civic/pkg/domain-errors"
	"civic/pkg/requestcontext"
)

// Store reads residents.
// Error Contract:
// - Find and Breakdown return wrapped driver errors on failure
// - Breakdown returns store.ErrUnknownGroupColumn for columns it cannot group by
type Store interface {
	Find(ctx context.Context, f models.Filter) ([]models.Record, error)
	Breakdown(ctx context.Context, f models.Filter, col models.GroupColumn) ([]models.Group, error)
}

type Option func(*Service)

// Service answers filtered resident queries.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracer.Tracer
}

func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:  store,
		logger: logger,
		tracer: tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

// WithMetrics sets the metrics instance for the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracer sets the tracer used for query spans.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// Query returns every resident matching the AND of the present criteria.
// Ages are evaluated against the request clock.
func (s *Service) Query(ctx context.Context, c models.Criteria) (records []models.Record, err error) {
	f := c.Resolve(requestcontext.Now(ctx))
	s.countCriteria(f)

	ctx, span := s.tracer.Start(ctx, tracer.SpanResidentsQuery,
		tracer.Int(tracer.AttrCriteriaCount, criteriaCount(f)),
		tracer.Bool(tracer.AttrAgeFilter, f.Age != nil),
	)
	defer func() { span.End(err) }()

	start := time.Now()
	records, err = s.store.Find(ctx, f)
	s.observe("query", start, len(records), err)
	if err != nil {
		return nil, s.storeError(ctx, "failed to query residents", err)
	}
	span.SetAttributes(
		tracer.Int(tracer.AttrRows, len(records)),
		tracer.Duration(tracer.AttrStoreLatency, time.Since(start)),
	)
	return records, nil
}

// Breakdown counts matching residents per value of groupBy.
func (s *Service) Breakdown(ctx context.Context, c models.Criteria, groupBy string) (groups []models.Group, err error) {
	if groupBy == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "by is required")
	}
	col, ok := models.ParseGroupColumn(groupBy)
	if !ok {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("by must be one of [%s]", groupColumnList()))
	}

	f := c.Resolve(requestcontext.Now(ctx))
	s.countCriteria(f)

	ctx, span := s.tracer.Start(ctx, tracer.SpanResidentsBreakdown,
		tracer.String(tracer.AttrGroupBy, string(col)),
		tracer.Int(tracer.AttrCriteriaCount, criteriaCount(f)),
	)
	defer func() { span.End(err) }()

	start := time.Now()
	groups, err = s.store.Breakdown(ctx, f, col)
	s.observe("breakdown", start, len(groups), err)
	if err != nil {
		return nil, s.storeError(ctx, "failed to compute resident breakdown", err)
	}
	span.SetAttributes(
		tracer.Int(tracer.AttrRows, len(groups)),
		tracer.Duration(tracer.AttrStoreLatency, time.Since(start)),
	)
	return groups, nil
}

// Brackets lists the age bracket tokens accepted by the age criterion.
func (s *Service) Brackets() []models.BracketInfo {
	return models.Brackets()
}

// storeError logs the driver error and returns a client-safe domain error.
func (s *Service) storeError(ctx context.Context, msg string, err error) error {
	code := dErrors.CodeInternal
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		code = dErrors.CodeTimeout
	case errors.Is(err, context.Canceled):
		code = dErrors.CodeUnavailable
	}
	s.logger.ErrorContext(ctx, msg,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	return dErrors.Wrap(code, msg, err)
}

func (s *Service) observe(operation string, start time.Time, rows int, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveQuery(operation, time.Since(start), rows, err)
}

func (s *Service) countCriteria(f models.Filter) {
	if s.metrics == nil {
		return
	}
	if f.Sector != "" {
		s.metrics.IncrementCriterion("sector")
	}
	if f.Ethnicity != "" {
		s.metrics.IncrementCriterion("ethnicity")
	}
	if f.EmploymentStatus != "" {
		s.metrics.IncrementCriterion("employment_status")
	}
	if f.Age != nil {
		s.metrics.IncrementCriterion("age")
	}
}

func criteriaCount(f models.Filter) int {
	n := 0
	for _, v := range []string{f.Sector, f.Ethnicity, f.EmploymentStatus} {
		if v != "" {
			n++
		}
	}
	if f.Age != nil {
		n++
	}
	return n
}

func groupColumnList() string {
	cols := models.GroupColumns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = string(c)
	}
	return strings.Join(names, " ")
}
