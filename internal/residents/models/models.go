package models

import (
	"net/url"
	"time"
)

// Record is one resident row as a flat column-name to value mapping.
type Record map[string]any

// Criteria are the raw, optional filter values supplied with a request.
// Empty strings mean "not supplied".
type Criteria struct {
	Sector           string
	Ethnicity        string
	EmploymentStatus string
	Age              string
}

// CriteriaFromForm reads criteria from parsed form values.
// Values are used verbatim; whitespace is significant for exact matches.
func CriteriaFromForm(form url.Values) Criteria {
	return Criteria{
		Sector:           form.Get("sector"),
		Ethnicity:        form.Get("ethnicity"),
		EmploymentStatus: form.Get("employment_status"),
		Age:              form.Get("age"),
	}
}

// Filter is the resolved form of Criteria, ready for the store.
type Filter struct {
	Sector           string
	Ethnicity        string
	EmploymentStatus string
	Age              *AgeRange
	// AsOf is the reference date for age arithmetic.
	AsOf time.Time
}

// Resolve turns criteria into a Filter evaluated at asOf. Unusable age values are dropped.
func (c Criteria) Resolve(asOf time.Time) Filter {
	f := Filter{
		Sector:           c.Sector,
		Ethnicity:        c.Ethnicity,
		EmploymentStatus: c.EmploymentStatus,
		AsOf:             asOf,
	}
	if rng, ok := ResolveAge(c.Age); ok {
		f.Age = &rng
	}
	return f
}

// Group is one row of a population breakdown.
type Group struct {
	Value      string `json:"value"`
	Population int64  `json:"population"`
}

// GroupColumn is a resident column that breakdowns may group by.
type GroupColumn string

const (
	GroupSectorCode            GroupColumn = "sector_code"
	GroupEthnicity             GroupColumn = "ethnicity"
	GroupEmploymentStatus      GroupColumn = "employment_status"
	GroupGender                GroupColumn = "gender"
	GroupCivilStatus           GroupColumn = "civil_status"
	GroupEducationalAttainment GroupColumn = "educational_attainment"
	GroupOccupation            GroupColumn = "occupation"
	GroupRelationToHead        GroupColumn = "relation_to_head"
)

var groupColumns = []GroupColumn{
	GroupSectorCode,
	GroupEthnicity,
	GroupEmploymentStatus,
	GroupGender,
	GroupCivilStatus,
	GroupEducationalAttainment,
	GroupOccupation,
	GroupRelationToHead,
}

// ParseGroupColumn accepts only the fixed set of groupable columns.
func ParseGroupColumn(v string) (GroupColumn, bool) {
	for _, c := range groupColumns {
		if string(c) == v {
			return c, true
		}
	}
	return "", false
}

// GroupColumns lists the groupable columns.
func GroupColumns() []GroupColumn {
	out := make([]GroupColumn, len(groupColumns))
	copy(out, groupColumns)
	return out
}

// Resident is the typed form of a row, used when writing residents.
type Resident struct {
	ID                    string  `validate:"required,max=64"`
	FirstName             string  `validate:"max=100"`
	LastName              string  `validate:"max=100"`
	Gender                string  `validate:"notblank,max=32"`
	Birthdate             string  `validate:"required,datetime=2006-01-02"`
	CivilStatus           string  `validate:"notblank,max=32"`
	SectorCode            string  `validate:"notblank,max=32"`
	Ethnicity             string  `validate:"notblank,max=64"`
	EmploymentStatus      string  `validate:"notblank,max=32"`
	Occupation            string  `validate:"max=100"`
	EducationalAttainment string  `validate:"max=100"`
	RelationToHead        string  `validate:"max=32"`
	AvgMonthlyIncome      float64 `validate:"gte=0"`
	HouseholdNum          int     `validate:"gte=0"`
}
