package models

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// AgeBracket is a named age range token accepted by the age criterion.
type AgeBracket string

const (
	BracketInfantsToddlers AgeBracket = "infants_toddlers"
	BracketChildren        AgeBracket = "children"
	BracketTeens           AgeBracket = "teens"
	BracketYouth           AgeBracket = "youth"
	BracketMiddleAge       AgeBracket = "middle_age"
	BracketAdults          AgeBracket = "adults"
	BracketSeniors         AgeBracket = "seniors"
)

// decimalNumber is plain decimal notation with an optional exponent. Hex,
// underscore separators and named values such as NaN are not ages.
var decimalNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// maxPlausibleAge bounds numeric exact-age criteria; larger values match nobody.
const maxPlausibleAge = 150

// AgeRange is an inclusive range of whole-year ages. Open ranges have no upper bound.
// An Empty range matches no one.
type AgeRange struct {
	Min   int
	Max   int
	Open  bool
	Empty bool
}

// Contains reports whether age falls inside the range.
func (r AgeRange) Contains(age int) bool {
	if r.Empty || age < r.Min {
		return false
	}
	return r.Open || age <= r.Max
}

// BirthdateBounds converts the range into birthdate limits relative to ref.
// A resident is in range when notAfter >= birthdate > after. When open is true
// there is no lower birthdate limit and after is the zero time.
func (r AgeRange) BirthdateBounds(ref time.Time) (notAfter, after time.Time, open bool) {
	notAfter = yearsBefore(ref, r.Min)
	if r.Open {
		return notAfter, time.Time{}, true
	}
	return notAfter, yearsBefore(ref, r.Max+1), false
}

// yearsBefore returns the latest birthdate whose n-th birthday falls on or before ref.
// Feb 29 clamps to Feb 28 in non-leap years instead of rolling into March.
func yearsBefore(ref time.Time, n int) time.Time {
	y, m, d := ref.Date()
	y -= n
	if last := daysIn(y, m); d > last {
		d = last
	}
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// bracketTable is consulted in order; the first matching token wins.
// teens and youth share age 18.
var bracketTable = []struct {
	bracket AgeBracket
	rng     AgeRange
}{
	{BracketInfantsToddlers, AgeRange{Min: 0, Max: 3}},
	{BracketChildren, AgeRange{Min: 4, Max: 12}},
	{BracketTeens, AgeRange{Min: 13, Max: 18}},
	{BracketYouth, AgeRange{Min: 18, Max: 30}},
	{BracketMiddleAge, AgeRange{Min: 31, Max: 45}},
	{BracketAdults, AgeRange{Min: 46, Max: 59}},
	{BracketSeniors, AgeRange{Min: 60, Open: true}},
}

// BracketInfo describes a bracket for clients building filter forms.
type BracketInfo struct {
	Token AgeBracket `json:"token"`
	Min   int        `json:"min"`
	Max   *int       `json:"max,omitempty"`
}

// Brackets lists the bracket tokens in resolution order.
func Brackets() []BracketInfo {
	out := make([]BracketInfo, 0, len(bracketTable))
	for _, b := range bracketTable {
		info := BracketInfo{Token: b.bracket, Min: b.rng.Min}
		if !b.rng.Open {
			maxAge := b.rng.Max
			info.Max = &maxAge
		}
		out = append(out, info)
	}
	return out
}

// ResolveAge maps an age criterion to a range. Bracket tokens are tried first, then
// a numeric exact age. ok is false when the value is neither, in which case the
// criterion must be ignored.
func ResolveAge(value string) (rng AgeRange, ok bool) {
	if value == "" {
		return AgeRange{}, false
	}
	for _, b := range bracketTable {
		if string(b.bracket) == value {
			return b.rng, true
		}
	}

	trimmed := strings.TrimSpace(value)
	if !decimalNumber.MatchString(trimmed) {
		return AgeRange{}, false
	}
	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsInf(n, 0) {
		return AgeRange{}, false
	}
	if n != math.Trunc(n) || n < 0 || n > maxPlausibleAge {
		return AgeRange{Empty: true}, true
	}
	age := int(n)
	return AgeRange{Min: age, Max: age}, true
}

// AgeOn returns the number of whole years between birthdate and ref.
// Birthdays are counted with calendar arithmetic, so a person born on
// Feb 29 turns a year older on Mar 1 in non-leap years.
func AgeOn(birthdate, ref time.Time) int {
	birthdate, ref = dateOf(birthdate), dateOf(ref)
	if ref.Before(birthdate) {
		return -1
	}
	years := ref.Year() - birthdate.Year()
	if birthdate.AddDate(years, 0, 0).After(ref) {
		years--
	}
	return years
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
