package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "civic/pkg/domain-errors"
)

type sample struct {
	SectorCode string `validate:"notblank,max=8"`
	Birthdate  string `validate:"required,datetime=2006-01-02"`
	Driver     string `validate:"oneof=pgx sqlite"`
	Household  int    `validate:"gte=0"`
}

func valid() sample {
	return sample{SectorCode: "S1", Birthdate: "1990-05-01", Driver: "pgx"}
}

func TestValidate(t *testing.T) {
	t.Run("passes", func(t *testing.T) {
		assert.NoError(t, Validate(valid()))
	})

	tests := []struct {
		name   string
		mutate func(*sample)
		want   string
	}{
		{"blank sector", func(s *sample) { s.SectorCode = "   " }, "sector_code must not be blank"},
		{"long sector", func(s *sample) { s.SectorCode = "TOO-LONG-CODE" }, "sector_code must be at most 8"},
		{"missing birthdate", func(s *sample) { s.Birthdate = "" }, "birthdate is required"},
		{"bad birthdate", func(s *sample) { s.Birthdate = "05/01/1990" }, "birthdate must match layout 2006-01-02"},
		{"bad driver", func(s *sample) { s.Driver = "mysql" }, "driver must be one of [pgx sqlite]"},
		{"negative household", func(s *sample) { s.Household = -1 }, "household must be at least 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)
			err := Validate(in)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestErrorMessage_NonValidatorError(t *testing.T) {
	assert.Equal(t, "invalid input", ErrorMessage(errors.New("boom")))
}
