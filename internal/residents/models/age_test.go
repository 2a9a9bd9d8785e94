package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveAge_Brackets(t *testing.T) {
	tests := []struct {
		token string
		want  AgeRange
	}{
		{"infants_toddlers", AgeRange{Min: 0, Max: 3}},
		{"children", AgeRange{Min: 4, Max: 12}},
		{"teens", AgeRange{Min: 13, Max: 18}},
		{"youth", AgeRange{Min: 18, Max: 30}},
		{"middle_age", AgeRange{Min: 31, Max: 45}},
		{"adults", AgeRange{Min: 46, Max: 59}},
		{"seniors", AgeRange{Min: 60, Open: true}},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := ResolveAge(tt.token)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveAge_TeensYouthOverlap(t *testing.T) {
	teens, _ := ResolveAge("teens")
	youth, _ := ResolveAge("youth")
	assert.True(t, teens.Contains(18))
	assert.True(t, youth.Contains(18))
}

func TestResolveAge_Numeric(t *testing.T) {
	tests := []struct {
		in   string
		want AgeRange
	}{
		{"17", AgeRange{Min: 17, Max: 17}},
		{" 17 ", AgeRange{Min: 17, Max: 17}},
		{"17.0", AgeRange{Min: 17, Max: 17}},
		{"0", AgeRange{Min: 0, Max: 0}},
		{"17.5", AgeRange{Empty: true}},
		{"-3", AgeRange{Empty: true}},
		{"1e6", AgeRange{Empty: true}},
		{"+17", AgeRange{Min: 17, Max: 17}},
		{"1.7e1", AgeRange{Min: 17, Max: 17}},
		{".5", AgeRange{Empty: true}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ResolveAge(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveAge_Ignored(t *testing.T) {
	for _, in := range []string{"", "not_a_token", "Seniors", "NaN", "Inf", "17 years", "' OR 1=1", "1_7", "0x11p0", "0x1p4", "0b10001", "+"} {
		t.Run(in, func(t *testing.T) {
			_, ok := ResolveAge(in)
			assert.False(t, ok)
		})
	}
}

func TestAgeOn(t *testing.T) {
	ref := date(2026, time.October, 19)
	tests := []struct {
		name      string
		birthdate time.Time
		want      int
	}{
		{"birthday today", date(1966, time.October, 19), 60},
		{"birthday tomorrow", date(1966, time.October, 20), 59},
		{"born today", ref, 0},
		{"future", date(2027, time.January, 1), -1},
		{"leap day before mar 1", date(2008, time.February, 29), 18},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AgeOn(tt.birthdate, ref))
		})
	}

	t.Run("leap day birthday counts on mar 1", func(t *testing.T) {
		b := date(2008, time.February, 29)
		assert.Equal(t, 17, AgeOn(b, date(2026, time.February, 28)))
		assert.Equal(t, 18, AgeOn(b, date(2026, time.March, 1)))
	})

	t.Run("ignores clock time", func(t *testing.T) {
		late := time.Date(2026, time.October, 18, 23, 59, 0, 0, time.UTC)
		assert.Equal(t, 59, AgeOn(date(1966, time.October, 19), late))
	})
}

// Bounds must agree with AgeOn for every birthdate around the edges.
func TestBirthdateBounds_AgreeWithAgeOn(t *testing.T) {
	refs := []time.Time{
		date(2026, time.October, 19),
		date(2028, time.February, 29),
		date(2026, time.March, 1),
		date(2026, time.January, 1),
	}
	ranges := []AgeRange{
		{Min: 0, Max: 3},
		{Min: 13, Max: 18},
		{Min: 17, Max: 17},
		{Min: 60, Open: true},
	}
	for _, ref := range refs {
		for _, rng := range ranges {
			notAfter, after, open := rng.BirthdateBounds(ref)
			for b := ref.AddDate(-70, 0, -3); !b.After(ref); b = b.AddDate(0, 0, 1) {
				inBounds := !b.After(notAfter) && (open || b.After(after))
				assert.Equal(t, rng.Contains(AgeOn(b, ref)), inBounds,
					"ref=%s range=%+v birthdate=%s", ref.Format(time.DateOnly), rng, b.Format(time.DateOnly))
			}
		}
	}
}

func TestBrackets(t *testing.T) {
	got := Brackets()
	require.Len(t, got, 7)
	assert.Equal(t, BracketInfantsToddlers, got[0].Token)
	require.NotNil(t, got[0].Max)
	assert.Equal(t, 3, *got[0].Max)
	assert.Equal(t, BracketSeniors, got[6].Token)
	assert.Nil(t, got[6].Max)
	assert.Equal(t, 60, got[6].Min)
}
