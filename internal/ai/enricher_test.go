package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/centuriocontact-dev/matching-interim-api/internal/algorithms"
)

func TestRuleBasedEnrichment(t *testing.T) {
	t.Parallel()

	e := RuleBasedEnrichment(&algorithms.ScoreBreakdown{
		Competences:   95,
		Localisation:  20,
		Disponibilite: 100,
		Financier:     55,
		Experience:    39.9,
	})

	assert.Len(t, e.PointsForts, 2, "competences and disponibilite are strengths")
	assert.Len(t, e.PointsFaibles, 2, "localisation and experience are weaknesses")
	assert.False(t, e.UtiliseIA)
	assert.Empty(t, e.AnalyseIA)
}

func TestRuleBasedEnrichmentMiddleBand(t *testing.T) {
	t.Parallel()

	// every dimension in [40, 80) produces neither strengths nor weaknesses
	e := RuleBasedEnrichment(&algorithms.ScoreBreakdown{
		Competences:   50,
		Localisation:  79.99,
		Disponibilite: 40,
		Financier:     60,
		Experience:    70,
	})

	assert.Empty(t, e.PointsForts)
	assert.Empty(t, e.PointsFaibles)
}

func TestRuleBasedEnrichmentNilBreakdown(t *testing.T) {
	t.Parallel()

	e := RuleBasedEnrichment(nil)
	assert.NotNil(t, e.PointsForts)
	assert.NotNil(t, e.PointsFaibles)
	assert.Empty(t, e.PointsForts)
	assert.Empty(t, e.PointsFaibles)
}
