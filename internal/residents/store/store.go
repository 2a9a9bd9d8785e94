package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"civic/internal/residents/models"
)

// ErrUnknownGroupColumn is returned when a breakdown column has no store mapping.
var ErrUnknownGroupColumn = errors.New("unknown group column")

// SQLStore reads and writes residents through database/sql. The same code serves
// PostgreSQL (pgx) and SQLite; the Dialect only changes placeholder syntax.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQL constructs a residents store over an open pool.
func NewSQL(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// Find returns every resident matching f in database order.
// Rows are fully materialised before returning; a failure part-way yields no records.
func (s *SQLStore) Find(ctx context.Context, f models.Filter) ([]models.Record, error) {
	query, args := applyFilter(selectResidents(), f).build(s.dialect)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query residents: %w", err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("resident column types: %w", err)
	}

	records := make([]models.Record, 0)
	values := make([]any, len(types))
	dest := make([]any, len(types))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan resident: %w", err)
		}
		record := make(models.Record, len(types))
		for i, ct := range types {
			record[ct.Name()] = normalizeValue(values[i], ct.DatabaseTypeName())
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate residents: %w", err)
	}
	return records, nil
}

// Breakdown counts residents matching f grouped by col, largest groups first.
func (s *SQLStore) Breakdown(ctx context.Context, f models.Filter, col models.GroupColumn) ([]models.Group, error) {
	column, ok := groupColumn(col)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroupColumn, col)
	}
	query, args := applyFilter(countResidentsBy(column), f).build(s.dialect)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query resident breakdown: %w", err)
	}
	defer rows.Close()

	groups := make([]models.Group, 0)
	for rows.Next() {
		var value sql.NullString
		var g models.Group
		if err := rows.Scan(&value, &g.Population); err != nil {
			return nil, fmt.Errorf("scan resident group: %w", err)
		}
		g.Value = value.String
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resident groups: %w", err)
	}
	return groups, nil
}

// Count returns the number of stored residents.
func (s *SQLStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+residentsTable).Scan(&n); err != nil {
		return 0, fmt.Errorf("count residents: %w", err)
	}
	return n, nil
}

// InsertBatch writes residents in a single transaction; either all rows land or none.
func (s *SQLStore) InsertBatch(ctx context.Context, residents []models.Resident) error {
	if len(residents) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin resident insert: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, s.insertStatement())
	if err != nil {
		return fmt.Errorf("prepare resident insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range residents {
		if _, err := stmt.ExecContext(ctx,
			r.ID,
			r.FirstName,
			r.LastName,
			r.Gender,
			r.Birthdate,
			r.CivilStatus,
			r.SectorCode,
			r.Ethnicity,
			r.EmploymentStatus,
			r.Occupation,
			r.EducationalAttainment,
			r.RelationToHead,
			r.AvgMonthlyIncome,
			r.HouseholdNum,
		); err != nil {
			return fmt.Errorf("insert resident %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit resident insert: %w", err)
	}
	return nil
}

func (s *SQLStore) insertStatement() string {
	cols := make([]string, len(residentColumns))
	marks := make([]string, len(residentColumns))
	for i, c := range residentColumns {
		cols[i] = string(c)
		marks[i] = s.dialect.placeholder(i + 1)
	}
	return "INSERT INTO " + residentsTable + " (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"
}

// normalizeValue converts driver values into JSON-friendly scalars.
func normalizeValue(v any, dbType string) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		if isDateType(dbType) {
			return val.Format(time.DateOnly)
		}
		return val.UTC().Format(time.RFC3339)
	default:
		return val
	}
}

func isDateType(dbType string) bool {
	t := strings.ToUpper(dbType)
	return t == "DATE"
}
