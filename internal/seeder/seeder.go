package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"civic/internal/residents/models"
)

// ResidentStore defines methods for seeding residents.
type ResidentStore interface {
	Count(ctx context.Context) (int64, error)
	InsertBatch(ctx context.Context, residents []models.Resident) error
}

// demoNamespace keys the deterministic demo resident IDs.
var demoNamespace = uuid.MustParse("5b0a8f5e-7d1c-4d3e-9a51-2f6c0e1b7a10")

// Seeder populates an empty residents table with demo data.
type Seeder struct {
	residents ResidentStore
	logger    *slog.Logger
}

// New creates a new seeder
func New(residents ResidentStore, logger *slog.Logger) *Seeder {
	return &Seeder{
		residents: residents,
		logger:    logger,
	}
}

// SeedAll inserts the demo households unless residents already exist.
// Birthdates are derived from asOf so bracket filters stay meaningful over time.
func (s *Seeder) SeedAll(ctx context.Context, asOf time.Time) (int, error) {
	existing, err := s.residents.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count residents: %w", err)
	}
	if existing > 0 {
		s.logger.InfoContext(ctx, "residents present, skipping demo seed", "residents", existing)
		return 0, nil
	}

	s.logger.InfoContext(ctx, "seeding demo data...")

	residents := DemoResidents(asOf)
	if err := s.residents.InsertBatch(ctx, residents); err != nil {
		return 0, fmt.Errorf("failed to seed residents: %w", err)
	}

	s.logger.InfoContext(ctx, "demo data seeded successfully", "residents", len(residents))
	return len(residents), nil
}

type demoMember struct {
	first      string
	gender     string
	age        int
	civil      string
	relation   string
	employment string
	occupation string
	education  string
	income     float64
}

type demoHousehold struct {
	last      string
	sector    string
	ethnicity string
	members   []demoMember
}

var demoHouseholds = []demoHousehold{
	{"Dela Cruz", "S1", "Tagalog", []demoMember{
		{"Juan", "male", 44, "married", "head", "employed", "Farmer", "High School", 12000},
		{"Maria", "female", 41, "married", "spouse", "self_employed", "Vendor", "High School", 8000},
		{"Jose", "male", 18, "single", "son", "student", "", "Senior High", 0},
		{"Ana", "female", 9, "single", "daughter", "not_applicable", "", "Elementary", 0},
		{"Lito", "male", 2, "single", "son", "not_applicable", "", "None", 0},
	}},
	{"Bautista", "S1", "Ilocano", []demoMember{
		{"Ramon", "male", 67, "widowed", "head", "retired", "", "Elementary", 3000},
		{"Rosa", "female", 35, "single", "daughter", "employed", "Nurse", "College", 25000},
		{"Miguel", "male", 13, "single", "grandson", "student", "", "Junior High", 0},
	}},
	{"Santos", "S2", "Cebuano", []demoMember{
		{"Carlos", "male", 52, "married", "head", "employed", "Fisherman", "Elementary", 9000},
		{"Elena", "female", 49, "married", "spouse", "unemployed", "", "High School", 0},
		{"Paolo", "male", 24, "single", "son", "employed", "Driver", "Vocational", 11000},
		{"Liza", "female", 17, "single", "daughter", "student", "", "Senior High", 0},
	}},
	{"Reyes", "S2", "Tagalog", []demoMember{
		{"Teresa", "female", 60, "widowed", "head", "retired", "", "College", 15000},
		{"Mark", "male", 31, "married", "son", "employed", "Teacher", "College", 22000},
		{"Joy", "female", 30, "married", "daughter_in_law", "self_employed", "Seamstress", "College", 7000},
		{"Nico", "male", 4, "single", "grandson", "not_applicable", "", "None", 0},
	}},
	{"Aquino", "S3", "Manobo", []demoMember{
		{"Datu", "male", 58, "married", "head", "employed", "Farmer", "None", 6000},
		{"Lina", "female", 55, "married", "spouse", "employed", "Weaver", "Elementary", 4000},
		{"Rey", "male", 28, "single", "son", "unemployed", "", "High School", 0},
		{"Mae", "female", 12, "single", "daughter", "student", "", "Elementary", 0},
	}},
	{"Garcia", "S3", "Ilocano", []demoMember{
		{"Antonio", "male", 81, "married", "head", "retired", "", "Elementary", 2000},
		{"Luz", "female", 78, "married", "spouse", "retired", "", "Elementary", 2000},
	}},
	{"Mendoza", "S4", "Cebuano", []demoMember{
		{"Ramil", "male", 38, "married", "head", "employed", "Carpenter", "Vocational", 14000},
		{"Grace", "female", 36, "married", "spouse", "employed", "Clerk", "College", 16000},
		{"Kyla", "female", 6, "single", "daughter", "not_applicable", "", "Elementary", 0},
		{"Ben", "male", 0, "single", "son", "not_applicable", "", "None", 0},
	}},
	{"Villanueva", "S4", "Tagalog", []demoMember{
		{"Ernesto", "male", 46, "separated", "head", "self_employed", "Mechanic", "High School", 13000},
		{"Patrick", "male", 19, "single", "son", "employed", "Cashier", "Senior High", 9000},
	}},
}

// DemoResidents returns the demo households with ages measured on asOf.
func DemoResidents(asOf time.Time) []models.Resident {
	var residents []models.Resident
	for h, household := range demoHouseholds {
		for _, m := range household.members {
			residents = append(residents, models.Resident{
				ID:                    uuid.NewSHA1(demoNamespace, []byte(household.last+"/"+m.first)).String(),
				FirstName:             m.first,
				LastName:              household.last,
				Gender:                m.gender,
				Birthdate:             birthdate(asOf, m.age, len(residents)),
				CivilStatus:           m.civil,
				SectorCode:            household.sector,
				Ethnicity:             household.ethnicity,
				EmploymentStatus:      m.employment,
				Occupation:            m.occupation,
				EducationalAttainment: m.education,
				RelationToHead:        m.relation,
				AvgMonthlyIncome:      m.income,
				HouseholdNum:          h + 1,
			})
		}
	}
	return residents
}

// birthdate spreads birthdays across the year while keeping the exact age on asOf.
func birthdate(asOf time.Time, age, n int) string {
	offset := (n * 37) % 360
	base := time.Date(asOf.Year()-age, asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	if base.Month() != asOf.Month() {
		// Feb 29 in a non-leap year
		base = base.AddDate(0, 0, -base.Day())
	}
	return base.AddDate(0, 0, -offset).Format(time.DateOnly)
}
