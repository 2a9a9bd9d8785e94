package testutil

import (
	"time"

	"github.com/google/uuid"

	"civic/internal/residents/models"
)

// FixtureDate is the reference "today" used by resident fixtures. Tests pin the
// request clock to it with requestcontext.WithTime.
var FixtureDate = time.Date(2026, time.October, 19, 9, 30, 0, 0, time.UTC)

// BirthdateForAge returns the birthdate of someone who turns age on ref.
func BirthdateForAge(ref time.Time, age int) string {
	return ref.AddDate(-age, 0, 0).Format(time.DateOnly)
}

// ResidentBuilder provides a fluent interface for building test residents.
type ResidentBuilder struct {
	r models.Resident
}

// NewResidentBuilder creates a builder with valid defaults: a 35 year old employed
// resident of sector S1.
func NewResidentBuilder() *ResidentBuilder {
	return &ResidentBuilder{r: models.Resident{
		ID:                    uuid.NewString(),
		FirstName:             "Juan",
		LastName:              "Dela Cruz",
		Gender:                "male",
		Birthdate:             BirthdateForAge(FixtureDate, 35),
		CivilStatus:           "single",
		SectorCode:            "S1",
		Ethnicity:             "Tagalog",
		EmploymentStatus:      "employed",
		Occupation:            "Teacher",
		EducationalAttainment: "College",
		RelationToHead:        "head",
		AvgMonthlyIncome:      18000,
		HouseholdNum:          1,
	}}
}

func (b *ResidentBuilder) WithID(id string) *ResidentBuilder {
	b.r.ID = id
	return b
}

func (b *ResidentBuilder) WithName(first, last string) *ResidentBuilder {
	b.r.FirstName, b.r.LastName = first, last
	return b
}

func (b *ResidentBuilder) WithSector(code string) *ResidentBuilder {
	b.r.SectorCode = code
	return b
}

func (b *ResidentBuilder) WithEthnicity(ethnicity string) *ResidentBuilder {
	b.r.Ethnicity = ethnicity
	return b
}

func (b *ResidentBuilder) WithEmploymentStatus(status string) *ResidentBuilder {
	b.r.EmploymentStatus = status
	return b
}

func (b *ResidentBuilder) WithGender(gender string) *ResidentBuilder {
	b.r.Gender = gender
	return b
}

// WithAge sets the birthdate so the resident is exactly age on FixtureDate.
func (b *ResidentBuilder) WithAge(age int) *ResidentBuilder {
	b.r.Birthdate = BirthdateForAge(FixtureDate, age)
	return b
}

func (b *ResidentBuilder) WithBirthdate(date string) *ResidentBuilder {
	b.r.Birthdate = date
	return b
}

func (b *ResidentBuilder) Build() models.Resident {
	return b.r
}

// Fixture IDs let tests assert on exact result sets.
const (
	FixtureToddlerS1     = "00000000-0000-0000-0000-000000000001"
	FixtureTeen17S2      = "00000000-0000-0000-0000-000000000002"
	FixtureEighteenS1    = "00000000-0000-0000-0000-000000000003"
	FixtureYouthS1Unemp  = "00000000-0000-0000-0000-000000000004"
	FixtureAdult59S2     = "00000000-0000-0000-0000-000000000005"
	FixtureSenior60S1    = "00000000-0000-0000-0000-000000000006"
	FixtureSenior80S3    = "00000000-0000-0000-0000-000000000007"
	FixtureQuoteSector   = "00000000-0000-0000-0000-000000000008"
	FixtureMiddleS1Emp   = "00000000-0000-0000-0000-000000000009"
	FixtureChildS2       = "00000000-0000-0000-0000-00000000000a"
	FixtureTurns60Tmrw   = "00000000-0000-0000-0000-00000000000b"
	FixtureSeventeenS1   = "00000000-0000-0000-0000-00000000000c"
	FixtureInjectionText = "' OR 1=1 --"
)

// Residents returns the seeded fixture collection, ages measured on FixtureDate.
func Residents() []models.Resident {
	dayAfter60 := FixtureDate.AddDate(-60, 0, 1).Format(time.DateOnly)
	return []models.Resident{
		NewResidentBuilder().WithID(FixtureToddlerS1).WithAge(2).WithEmploymentStatus("not_applicable").Build(),
		NewResidentBuilder().WithID(FixtureTeen17S2).WithAge(17).WithSector("S2").WithEthnicity("Ilocano").WithEmploymentStatus("student").Build(),
		NewResidentBuilder().WithID(FixtureEighteenS1).WithAge(18).WithEmploymentStatus("student").Build(),
		NewResidentBuilder().WithID(FixtureYouthS1Unemp).WithAge(25).WithEmploymentStatus("unemployed").WithGender("female").Build(),
		NewResidentBuilder().WithID(FixtureAdult59S2).WithAge(59).WithSector("S2").WithEthnicity("Ilocano").Build(),
		NewResidentBuilder().WithID(FixtureSenior60S1).WithAge(60).WithEmploymentStatus("retired").Build(),
		NewResidentBuilder().WithID(FixtureSenior80S3).WithAge(80).WithSector("S3").WithEthnicity("Cebuano").WithEmploymentStatus("retired").WithGender("female").Build(),
		NewResidentBuilder().WithID(FixtureQuoteSector).WithAge(40).WithSector(FixtureInjectionText).Build(),
		NewResidentBuilder().WithID(FixtureMiddleS1Emp).WithAge(35).Build(),
		NewResidentBuilder().WithID(FixtureChildS2).WithAge(8).WithSector("S2").WithEmploymentStatus("not_applicable").Build(),
		NewResidentBuilder().WithID(FixtureTurns60Tmrw).WithBirthdate(dayAfter60).WithSector("S3").Build(),
		NewResidentBuilder().WithID(FixtureSeventeenS1).WithAge(17).WithEmploymentStatus("employed").Build(),
	}
}
