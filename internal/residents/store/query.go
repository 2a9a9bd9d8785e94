package store

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect selects placeholder syntax for the target database.
type Dialect int

const (
	DialectPostgres Dialect = iota
	DialectSQLite
)

// DialectFor maps a database/sql driver name to its Dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "pgx", "postgres":
		return DialectPostgres, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return 0, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func (d Dialect) placeholder(n int) string {
	if d == DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (d Dialect) String() string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

// Column names a residents column. Only the constants below are ever rendered into
// query text; values always travel as bound arguments.
type Column string

const (
	ColID                    Column = "id"
	ColFirstName             Column = "first_name"
	ColLastName              Column = "last_name"
	ColGender                Column = "gender"
	ColBirthdate             Column = "birthdate"
	ColCivilStatus           Column = "civil_status"
	ColSectorCode            Column = "sector_code"
	ColEthnicity             Column = "ethnicity"
	ColEmploymentStatus      Column = "employment_status"
	ColOccupation            Column = "occupation"
	ColEducationalAttainment Column = "educational_attainment"
	ColRelationToHead        Column = "relation_to_head"
	ColAvgMonthlyIncome      Column = "avg_monthly_income"
	ColHouseholdNum          Column = "household_num"
)

const residentsTable = "residents"

// residentColumns is the projection for record queries, in table order.
var residentColumns = []Column{
	ColID, ColFirstName, ColLastName, ColGender, ColBirthdate, ColCivilStatus,
	ColSectorCode, ColEthnicity, ColEmploymentStatus, ColOccupation,
	ColEducationalAttainment, ColRelationToHead, ColAvgMonthlyIncome, ColHouseholdNum,
}

type operator string

const (
	opEq  operator = "="
	opLTE operator = "<="
	opGT  operator = ">"
)

type condition struct {
	column Column
	op     operator
	arg    any
}

// predicate is one AND-ed term of the WHERE clause. Several conditions inside a
// predicate are themselves AND-ed and parenthesised. A predicate with never set
// renders as a constant false.
type predicate struct {
	conds []condition
	never bool
}

// selectQuery accumulates predicates and renders them with placeholders at the end.
type selectQuery struct {
	table      string
	projection []string
	predicates []predicate
	groupBy    Column
	orderBy    []string
}

func selectResidents() *selectQuery {
	cols := make([]string, len(residentColumns))
	for i, c := range residentColumns {
		cols[i] = string(c)
	}
	return &selectQuery{table: residentsTable, projection: cols}
}

func countResidentsBy(col Column) *selectQuery {
	return &selectQuery{
		table:      residentsTable,
		projection: []string{string(col) + " AS value", "COUNT(*) AS population"},
		groupBy:    col,
		orderBy:    []string{"population DESC", "value ASC"},
	}
}

// where appends a single-condition predicate.
func (q *selectQuery) where(col Column, op operator, arg any) *selectQuery {
	q.predicates = append(q.predicates, predicate{conds: []condition{{column: col, op: op, arg: arg}}})
	return q
}

// whereAll appends one predicate made of several conditions.
func (q *selectQuery) whereAll(conds ...condition) *selectQuery {
	q.predicates = append(q.predicates, predicate{conds: conds})
	return q
}

// whereNever appends a predicate no row satisfies.
func (q *selectQuery) whereNever() *selectQuery {
	q.predicates = append(q.predicates, predicate{never: true})
	return q
}

// build renders SQL text and the positional arguments for d.
func (q *selectQuery) build(d Dialect) (string, []any) {
	var b strings.Builder
	var args []any

	b.WriteString("SELECT ")
	b.WriteString(strings.Join(q.projection, ", "))
	b.WriteString(" FROM ")
	b.WriteString(q.table)

	for i, p := range q.predicates {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		if p.never {
			b.WriteString("1 = 0")
			continue
		}
		if len(p.conds) > 1 {
			b.WriteByte('(')
		}
		for j, c := range p.conds {
			if j > 0 {
				b.WriteString(" AND ")
			}
			args = append(args, c.arg)
			b.WriteString(string(c.column))
			b.WriteByte(' ')
			b.WriteString(string(c.op))
			b.WriteByte(' ')
			b.WriteString(d.placeholder(len(args)))
		}
		if len(p.conds) > 1 {
			b.WriteByte(')')
		}
	}

	if q.groupBy != "" {
		b.WriteString(" GROUP BY ")
		b.WriteString(string(q.groupBy))
	}
	if len(q.orderBy) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(q.orderBy, ", "))
	}
	return b.String(), args
}
