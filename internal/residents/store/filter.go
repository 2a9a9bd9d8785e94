package store

import (
	"time"

	"civic/internal/residents/models"
)

// applyFilter appends one predicate per present criterion, in the fixed order
// sector, ethnicity, employment status, age.
func applyFilter(q *selectQuery, f models.Filter) *selectQuery {
	if f.Sector != "" {
		q.where(ColSectorCode, opEq, f.Sector)
	}
	if f.Ethnicity != "" {
		q.where(ColEthnicity, opEq, f.Ethnicity)
	}
	if f.EmploymentStatus != "" {
		q.where(ColEmploymentStatus, opEq, f.EmploymentStatus)
	}
	if f.Age != nil {
		applyAge(q, *f.Age, f.AsOf)
	}
	return q
}

// applyAge expresses an age range as birthdate bounds so the comparison is the
// same on every dialect and can use the birthdate index.
func applyAge(q *selectQuery, rng models.AgeRange, asOf time.Time) {
	if rng.Empty {
		q.whereNever()
		return
	}
	notAfter, after, open := rng.BirthdateBounds(asOf)
	upper := condition{column: ColBirthdate, op: opLTE, arg: notAfter.Format(time.DateOnly)}
	if open {
		q.whereAll(upper)
		return
	}
	q.whereAll(upper, condition{column: ColBirthdate, op: opGT, arg: after.Format(time.DateOnly)})
}

// groupColumn maps a validated breakdown column onto the store's column set.
func groupColumn(c models.GroupColumn) (Column, bool) {
	switch c {
	case models.GroupSectorCode:
		return ColSectorCode, true
	case models.GroupEthnicity:
		return ColEthnicity, true
	case models.GroupEmploymentStatus:
		return ColEmploymentStatus, true
	case models.GroupGender:
		return ColGender, true
	case models.GroupCivilStatus:
		return ColCivilStatus, true
	case models.GroupEducationalAttainment:
		return ColEducationalAttainment, true
	case models.GroupOccupation:
		return ColOccupation, true
	case models.GroupRelationToHead:
		return ColRelationToHead, true
	default:
		return "", false
	}
}
