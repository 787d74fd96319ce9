package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centuriocontact-dev/matching-interim-api/internal/dto"
)

func TestValidateRejectsInvalidBesoinInput(t *testing.T) {
	v := New()

	err := v.Validate(dto.CreateBesoinInput{
		PosteRecherche: strings.Repeat("a", 500),
		Priorite:       "bogus",
		Departement:    "XXX",
	})
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	// field keys carry the json names, not the Go names
	assert.Contains(t, vErr.Errors, "poste_recherche")
	assert.Contains(t, vErr.Errors, "priorite")
	assert.Contains(t, vErr.Errors, "departement")
}

func TestValidateAcceptsValidBesoinInput(t *testing.T) {
	v := New()

	seuil := 60
	err := v.Validate(dto.CreateBesoinInput{
		PosteRecherche: "Cariste",
		Departement:    "2A",
		DateDebut:      "2026-09-01",
		Priorite:       "haute",
		SeuilScoreMin:  &seuil,
	})
	assert.NoError(t, err)
}

func TestValidateRejectsInvalidCandidatInput(t *testing.T) {
	v := New()

	mobilite := 5000
	err := v.Validate(dto.CreateCandidatInput{
		Nom:         "Durand",
		Prenom:      "Claire",
		Email:       "not-an-email",
		Departement: "7X",
		MobiliteKm:  &mobilite,
	})
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Errors, "email")
	assert.Contains(t, vErr.Errors, "departement")
	assert.Contains(t, vErr.Errors, "mobilite_km")
}

func TestDepartementRule(t *testing.T) {
	v := New()

	type payload struct {
		Departement string `json:"departement" validate:"omitempty,is-departement"`
	}

	cases := []struct {
		value string
		valid bool
	}{
		{"", true},
		{"01", true},
		{"75", true},
		{"2A", true},
		{"2B", true},
		{"971", true},
		{"7", false},
		{"2C", false},
		{"7A", false},
		{"1234", false},
		{"XXX", false},
	}
	for _, tc := range cases {
		err := v.Validate(payload{Departement: tc.value})
		if tc.valid {
			assert.NoError(t, err, "departement %q", tc.value)
		} else {
			assert.Error(t, err, "departement %q", tc.value)
		}
	}
}
