package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/centuriocontact-dev/matching-interim-api/internal/ai"
	"github.com/centuriocontact-dev/matching-interim-api/internal/algorithms"
	"github.com/centuriocontact-dev/matching-interim-api/internal/models"
	"github.com/centuriocontact-dev/matching-interim-api/pkg/apperrors"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Enricher asks Gemini for a qualitative read on a retained pair. The
// scores it receives are context only; the response never feeds back
// into scoring or ranking.
type Enricher struct {
	generator contentGenerator
	logger    *slog.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

func NewEnricher(generator contentGenerator, logger *slog.Logger) *Enricher {
	return &Enricher{
		generator: generator,
		logger:    logger,
		maxLogLen: defaultMaxLogLength,
	}
}

func (e *Enricher) Enrich(ctx context.Context, candidat *models.Candidat, besoin *models.Besoin, breakdown *algorithms.ScoreBreakdown) (*ai.Enrichment, error) {
	if candidat == nil {
		return nil, fmt.Errorf("candidat is required")
	}
	if besoin == nil {
		return nil, fmt.Errorf("besoin is required")
	}
	if breakdown == nil {
		return nil, fmt.Errorf("score breakdown is required")
	}

	candidatPayload := map[string]any{
		"nom":               candidat.Nom,
		"prenom":            candidat.Prenom,
		"competences":       candidat.GetCompetences(),
		"certifications":    candidat.GetCertifications(),
		"ville":             candidat.Ville,
		"departement":       candidat.Departement,
		"mobilite_km":       candidat.MobiliteKm,
		"disponibilite":     candidat.Disponibilite,
		"experience_annees": candidat.ExperienceAnnees,
		"taux_horaire_min":  candidat.TauxHoraireMin,
	}

	besoinPayload := map[string]any{
		"poste_recherche":          besoin.PosteRecherche,
		"description":              besoin.Description,
		"ville":                    besoin.Ville,
		"departement":              besoin.Departement,
		"date_debut":               besoin.DateDebut,
		"competences_requises":     besoin.GetCompetencesRequises(),
		"competences_obligatoires": besoin.GetCompetencesObligatoires(),
		"certifications_requises":  besoin.GetCertificationsRequises(),
		"taux_horaire_min":         besoin.TauxHoraireMin,
		"taux_horaire_max":         besoin.TauxHoraireMax,
		"experience_requise_min":   besoin.ExperienceRequiseMin,
	}

	candidatJSON, err := json.MarshalIndent(candidatPayload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal candidat payload: %w", err)
	}
	besoinJSON, err := json.MarshalIndent(besoinPayload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal besoin payload: %w", err)
	}
	scoresJSON, err := json.MarshalIndent(breakdown, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal scores payload: %w", err)
	}

	prompt := buildPrompt(string(candidatJSON), string(besoinJSON), string(scoresJSON))

	e.logger.Debug("gemini enrichment request",
		"besoin_id", besoin.ID,
		"candidat_id", candidat.ID,
		"prompt_length", utf8.RuneCountInString(prompt),
	)

	raw, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, apperrors.ErrEnrichment(err)
	}

	e.logger.Debug("gemini enrichment response",
		"besoin_id", besoin.ID,
		"candidat_id", candidat.ID,
		"response_length", utf8.RuneCountInString(raw),
		"response_preview", truncateForLog(raw, e.maxLogLen),
	)

	enrichment, err := parseResponse(raw)
	if err != nil {
		return nil, apperrors.ErrEnrichment(err)
	}

	enrichment.UtiliseIA = true
	return enrichment, nil
}

func buildPrompt(candidatJSON, besoinJSON, scoresJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Besoin:\n{{BESOIN_JSON}}\n\nCandidat:\n{{CANDIDAT_JSON}}\n\nScores:\n{{SCORES_JSON}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{CANDIDAT_JSON}}", candidatJSON)
	prompt = strings.ReplaceAll(prompt, "{{BESOIN_JSON}}", besoinJSON)
	prompt = strings.ReplaceAll(prompt, "{{SCORES_JSON}}", scoresJSON)
	return prompt
}

func parseResponse(raw string) (*ai.Enrichment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	return &ai.Enrichment{
		AnalyseIA:     coerceString(data["analyse"]),
		PointsForts:   coerceStringList(data["points_forts"]),
		PointsFaibles: coerceStringList(data["points_faibles"]),
	}, nil
}

// extractJSON strips the markdown code fences Gemini tends to wrap its
// JSON answers in.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func coerceStringList(v any) []string {
	out := []string{}
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, s := range val {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case string:
		if s := strings.TrimSpace(val); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func truncateForLog(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen]) + "…"
}
