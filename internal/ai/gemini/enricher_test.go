package gemini

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centuriocontact-dev/matching-interim-api/internal/algorithms"
	"github.com/centuriocontact-dev/matching-interim-api/internal/models"
	"github.com/centuriocontact-dev/matching-interim-api/pkg/apperrors"
)

type stubGenerator struct {
	response string
	err      error
	prompt   string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
}

func fixtureCandidat() *models.Candidat {
	c := &models.Candidat{}
	c.ID = "c1"
	c.Nom = "Martin"
	c.Prenom = "Jean"
	c.Competences = models.ToJSONList([]string{"CACES3"})
	c.Ville = "Paris"
	return c
}

func fixtureBesoin() *models.Besoin {
	b := &models.Besoin{}
	b.ID = "b1"
	b.ClientID = "cl1"
	b.PosteRecherche = "Cariste"
	b.Ville = "Paris"
	return b
}

func fixtureBreakdown() *algorithms.ScoreBreakdown {
	return &algorithms.ScoreBreakdown{
		CandidatID:  "c1",
		Competences: 100,
		Total:       82.5,
	}
}

func TestEnrichParsesFencedJSON(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{response: "```json\n{\"analyse\": \"Très bon profil.\", \"points_forts\": [\"CACES3\"], \"points_faibles\": []}\n```"}
	enricher := NewEnricher(stub, testLogger())

	enrichment, err := enricher.Enrich(context.Background(), fixtureCandidat(), fixtureBesoin(), fixtureBreakdown())
	require.NoError(t, err)

	assert.Equal(t, "Très bon profil.", enrichment.AnalyseIA)
	assert.Equal(t, []string{"CACES3"}, enrichment.PointsForts)
	assert.Empty(t, enrichment.PointsFaibles)
	assert.True(t, enrichment.UtiliseIA)
}

func TestEnrichPromptCarriesAllPayloads(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{response: `{"analyse": "ok", "points_forts": [], "points_faibles": []}`}
	enricher := NewEnricher(stub, testLogger())

	_, err := enricher.Enrich(context.Background(), fixtureCandidat(), fixtureBesoin(), fixtureBreakdown())
	require.NoError(t, err)

	assert.Contains(t, stub.prompt, "Cariste")
	assert.Contains(t, stub.prompt, "CACES3")
	assert.Contains(t, stub.prompt, "82.5")
	assert.NotContains(t, stub.prompt, "{{CANDIDAT_JSON}}")
	assert.NotContains(t, stub.prompt, "{{BESOIN_JSON}}")
	assert.NotContains(t, stub.prompt, "{{SCORES_JSON}}")
}

func TestEnrichRejectsNonJSONResponse(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{response: "je ne peux pas répondre"}
	enricher := NewEnricher(stub, testLogger())

	_, err := enricher.Enrich(context.Background(), fixtureCandidat(), fixtureBesoin(), fixtureBreakdown())
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeEnrichment, appErr.Code)
}

func TestEnrichPropagatesGeneratorError(t *testing.T) {
	t.Parallel()

	boom := errors.New("quota exhausted")
	enricher := NewEnricher(&stubGenerator{err: boom}, testLogger())

	_, err := enricher.Enrich(context.Background(), fixtureCandidat(), fixtureBesoin(), fixtureBreakdown())
	assert.ErrorIs(t, err, boom)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeEnrichment, appErr.Code)
}

func TestEnrichRequiresInputs(t *testing.T) {
	t.Parallel()

	enricher := NewEnricher(&stubGenerator{}, testLogger())

	_, err := enricher.Enrich(context.Background(), nil, fixtureBesoin(), fixtureBreakdown())
	assert.Error(t, err)
	_, err = enricher.Enrich(context.Background(), fixtureCandidat(), nil, fixtureBreakdown())
	assert.Error(t, err)
	_, err = enricher.Enrich(context.Background(), fixtureCandidat(), fixtureBesoin(), nil)
	assert.Error(t, err)
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"{\"a\":1}":                      `{"a":1}`,
		"```json\n{\"a\":1}\n```":        `{"a":1}`,
		"```\n{\"a\":1}\n```":            `{"a":1}`,
		"  \n```json\n{\"a\":1}\n```\n ": `{"a":1}`,
	}

	for input, want := range cases {
		assert.Equal(t, want, extractJSON(input))
	}
}
