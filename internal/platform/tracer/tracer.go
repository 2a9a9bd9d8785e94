// Package tracer provides a small tracing abstraction over OpenTelemetry.
//
// Services depend on the Tracer interface rather than on OpenTelemetry APIs.
// Implementations:
//   - NoopTracer: for tests and when tracing is disabled
//   - OTelTracer: OpenTelemetry adapter using the global provider
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks the span as failed.
	// End must be called exactly once, typically via defer.
	End(err error)

	// SetAttributes adds key-value pairs to the span.
	SetAttributes(attrs ...Attribute)

	// AddEvent records a timestamped event within the span.
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span with the given name and attributes. The returned
	// context carries the span and should be passed to child operations.
	//
	//   ctx, span := t.Start(ctx, tracer.SpanResidentsQuery,
	//       tracer.Bool(tracer.AttrAgeFilter, true),
	//   )
	//   defer span.End(err)
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: int64(value)}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates an attribute holding d in whole milliseconds.
func Duration(key string, d time.Duration) Attribute {
	return Attribute{Key: key, Value: d.Milliseconds()}
}

// Span names.
const (
	SpanResidentsQuery     = "residents.query"
	SpanResidentsBreakdown = "residents.breakdown"
	SpanResidentsImport    = "residents.import"
)

// Attribute keys.
const (
	AttrCriteriaCount = "criteria.count"
	AttrAgeFilter     = "criteria.age"
	AttrGroupBy       = "breakdown.by"
	AttrRows          = "result.rows"
	AttrSkipped       = "import.skipped"
	AttrSkipLine      = "import.line"
	AttrSkipReason    = "import.reason"
	AttrStoreLatency  = "store.latency_ms"
	AttrDBSystem      = "db.system"
)

// Event names.
const (
	EventRowSkipped = "import.row_skipped"
)
