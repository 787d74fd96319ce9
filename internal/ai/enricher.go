// Package ai defines the enrichment contract for retained matchings and
// the rule-based fallback used when no generative backend is available.
package ai

import (
	"context"

	"github.com/centuriocontact-dev/matching-interim-api/internal/algorithms"
	"github.com/centuriocontact-dev/matching-interim-api/internal/models"
)

// Enrichment is the qualitative layer added to a retained matching. It
// never alters scores or ranks.
type Enrichment struct {
	AnalyseIA     string   `json:"analyse_ia,omitempty"`
	PointsForts   []string `json:"points_forts"`
	PointsFaibles []string `json:"points_faibles"`
	UtiliseIA     bool     `json:"utilise_ia"`
}

// Enricher produces the qualitative annotation for one retained pair.
type Enricher interface {
	Enrich(ctx context.Context, candidat *models.Candidat, besoin *models.Besoin, breakdown *algorithms.ScoreBreakdown) (*Enrichment, error)
}

const (
	strengthThreshold = 80.0
	weaknessThreshold = 40.0
)

type dimension struct {
	value    float64
	strength string
	weakness string
}

// RuleBasedEnrichment derives strengths and weaknesses from the
// sub-scores alone. It is the fallback whenever the generative backend
// is disabled, times out or fails, so a run can always complete.
func RuleBasedEnrichment(breakdown *algorithms.ScoreBreakdown) *Enrichment {
	e := &Enrichment{
		PointsForts:   []string{},
		PointsFaibles: []string{},
	}
	if breakdown == nil {
		return e
	}

	dims := []dimension{
		{breakdown.Competences, "Compétences alignées avec le besoin", "Compétences insuffisantes pour le poste"},
		{breakdown.Localisation, "Localisation idéale", "Localisation éloignée du lieu de mission"},
		{breakdown.Disponibilite, "Disponibilité immédiate ou compatible", "Disponibilité incompatible avec le démarrage"},
		{breakdown.Financier, "Prétentions salariales dans le budget", "Prétentions salariales au-dessus du budget"},
		{breakdown.Experience, "Expérience solide sur ce type de poste", "Expérience limitée pour ce poste"},
	}

	for _, d := range dims {
		switch {
		case d.value >= strengthThreshold:
			e.PointsForts = append(e.PointsForts, d.strength)
		case d.value < weaknessThreshold:
			e.PointsFaibles = append(e.PointsFaibles, d.weakness)
		}
	}
	return e
}
