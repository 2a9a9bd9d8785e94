// Package importer loads residents from CSV exports of the records system.
//
// Cleaning rules:
//   - header names are matched after snake-casing ("sectorCode" and "Sector Code" both
//     address sector_code)
//   - rows missing gender, birthdate, civil_status, employment_status or
//     avg_monthly_income are skipped
//   - rows whose birthdate does not parse are skipped
//   - missing occupation, educational_attainment, relation_to_head, sector_code and
//     ethnicity become "Unknown"
//   - unparseable avg_monthly_income and household_num become 0
//
// Accepted rows are inserted in one transaction.
package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"

	"civic/internal/platform/tracer"
	"civic/internal/residents/metrics"
	"civic/internal/residents/models"
	s "civic/pkg/string"
	"civic/pkg/validation"
)

// Unknown replaces missing categorical values.
const Unknown = "Unknown"

// ErrMissingColumns is returned when the header lacks a required column.
var ErrMissingColumns = errors.New("csv header is missing required columns")

var essentialColumns = []string{"gender", "birthdate", "civil_status", "employment_status", "avg_monthly_income"}

var birthdateLayouts = []string{
	time.DateOnly,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	time.RFC3339,
	time.DateTime,
}

// Store persists imported residents.
type Store interface {
	InsertBatch(ctx context.Context, residents []models.Resident) error
}

// Skip describes a rejected row. Line is the 1-based CSV line including the header.
type Skip struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Summary reports the outcome of an import.
type Summary struct {
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Skips    []Skip `json:"skips,omitempty"`
}

type Option func(*Importer)

// Importer validates CSV rows and writes them through Store.
type Importer struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracer.Tracer
	dryRun  bool
}

func New(store Store, logger *slog.Logger, opts ...Option) *Importer {
	imp := &Importer{
		store:  store,
		logger: logger,
		tracer: tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(imp)
	}
	if imp.logger == nil {
		imp.logger = slog.Default()
	}
	return imp
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(i *Importer) {
		i.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(i *Importer) {
		if t != nil {
			i.tracer = t
		}
	}
}

// WithDryRun validates and reports without writing.
func WithDryRun(dryRun bool) Option {
	return func(i *Importer) {
		i.dryRun = dryRun
	}
}

// Import reads a CSV document from r. Input that is not valid UTF-8 is decoded
// as ISO-8859-1.
func (i *Importer) Import(ctx context.Context, r io.Reader) (summary Summary, err error) {
	ctx, span := i.tracer.Start(ctx, tracer.SpanResidentsImport)
	defer func() {
		span.SetAttributes(tracer.Int(tracer.AttrRows, summary.Imported), tracer.Int(tracer.AttrSkipped, summary.Skipped))
		span.End(err)
	}()

	data, err := io.ReadAll(r)
	if err != nil {
		return Summary{}, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	if !utf8.Valid(data) {
		if data, err = charmap.ISO8859_1.NewDecoder().Bytes(data); err != nil {
			return Summary{}, fmt.Errorf("decode latin-1 csv: %w", err)
		}
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return Summary{}, fmt.Errorf("read csv header: %w", err)
	}
	cols := indexHeader(header)
	if missing := cols.missing(essentialColumns); len(missing) > 0 {
		return Summary{}, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	skip := func(line int, reason string) {
		summary.skip(line, reason)
		span.AddEvent(tracer.EventRowSkipped, tracer.Int(tracer.AttrSkipLine, line), tracer.String(tracer.AttrSkipReason, reason))
	}

	var residents []models.Resident
	seen := make(map[string]bool)
	for {
		row, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			var parseErr *csv.ParseError
			line := 0
			if errors.As(readErr, &parseErr) {
				line = parseErr.StartLine
			}
			skip(line, "malformed row: "+readErr.Error())
			continue
		}
		line, _ := reader.FieldPos(0)

		resident, reason := cols.resident(row)
		if reason == "" {
			if err := validation.Validate(&resident); err != nil {
				reason = err.Error()
			}
		}
		if reason == "" && seen[resident.ID] {
			reason = "duplicate id " + resident.ID
		}
		if reason != "" {
			skip(line, reason)
			continue
		}
		seen[resident.ID] = true
		residents = append(residents, resident)
	}

	if !i.dryRun {
		if err := i.store.InsertBatch(ctx, residents); err != nil {
			i.logger.ErrorContext(ctx, "resident import failed", "rows", len(residents), "error", err)
			return Summary{}, fmt.Errorf("insert residents: %w", err)
		}
	}
	summary.Imported = len(residents)

	if i.metrics != nil {
		i.metrics.AddLoaded("imported", summary.Imported)
		i.metrics.AddLoaded("skipped", summary.Skipped)
	}
	i.logger.InfoContext(ctx, "resident import finished",
		"imported", summary.Imported,
		"skipped", summary.Skipped,
		"dry_run", i.dryRun,
	)
	return summary, nil
}

func (sum *Summary) skip(line int, reason string) {
	sum.Skipped++
	sum.Skips = append(sum.Skips, Skip{Line: line, Reason: reason})
}

// columns maps snake_case column names to row positions.
type columns map[string]int

func indexHeader(header []string) columns {
	cols := make(columns, len(header))
	for i, h := range header {
		key := s.ToSnakeCase(h)
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	return cols
}

func (c columns) missing(required []string) []string {
	var out []string
	for _, name := range required {
		if _, ok := c[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

func (c columns) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// resident builds a Resident from row, or returns the reason it must be skipped.
func (c columns) resident(row []string) (models.Resident, string) {
	for _, name := range essentialColumns {
		if c.get(row, name) == "" {
			return models.Resident{}, name + " is missing"
		}
	}

	birthdate, ok := parseBirthdate(c.get(row, "birthdate"))
	if !ok {
		return models.Resident{}, "birthdate is not a date"
	}

	id := c.get(row, "id")
	if id == "" {
		id = uuid.NewString()
	}

	return models.Resident{
		ID:                    id,
		FirstName:             c.get(row, "first_name"),
		LastName:              c.get(row, "last_name"),
		Gender:                c.get(row, "gender"),
		Birthdate:             birthdate,
		CivilStatus:           c.get(row, "civil_status"),
		SectorCode:            orUnknown(c.get(row, "sector_code")),
		Ethnicity:             orUnknown(c.get(row, "ethnicity")),
		EmploymentStatus:      c.get(row, "employment_status"),
		Occupation:            orUnknown(c.get(row, "occupation")),
		EducationalAttainment: orUnknown(c.get(row, "educational_attainment")),
		RelationToHead:        orUnknown(c.get(row, "relation_to_head")),
		AvgMonthlyIncome:      parseFloat(c.get(row, "avg_monthly_income")),
		HouseholdNum:          parseInt(c.get(row, "household_num")),
	}, ""
}

func parseBirthdate(v string) (string, bool) {
	for _, layout := range birthdateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(time.DateOnly), true
		}
	}
	return "", false
}

func orUnknown(v string) string {
	if v == "" {
		return Unknown
	}
	return v
}

func parseFloat(v string) float64 {
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func parseInt(v string) int {
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && f == float64(int(f)) {
		return int(f)
	}
	return 0
}
