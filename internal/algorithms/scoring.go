package algorithms

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/centuriocontact-dev/matching-interim-api/internal/models"
)

// Weights combines the five sub-scores into the total. Must sum to 1.0
// (validated at config load).
type Weights struct {
	Competences   float64 `json:"competences"`
	Localisation  float64 `json:"localisation"`
	Disponibilite float64 `json:"disponibilite"`
	Financier     float64 `json:"financier"`
	Experience    float64 `json:"experience"`
}

// DefaultWeights returns the documented default weighting.
func DefaultWeights() Weights {
	return Weights{
		Competences:   0.35,
		Localisation:  0.20,
		Disponibilite: 0.15,
		Financier:     0.15,
		Experience:    0.15,
	}
}

// ScoreBreakdown is the ephemeral result of scoring one (besoin,
// candidat) pair. Every field lies in [0,100].
type ScoreBreakdown struct {
	CandidatID    string  `json:"candidat_id"`
	Competences   float64 `json:"competences"`
	Localisation  float64 `json:"localisation"`
	Disponibilite float64 `json:"disponibilite"`
	Financier     float64 `json:"financier"`
	Experience    float64 `json:"experience"`
	Total         float64 `json:"total"`

	// Disqualifie is set when a mandatory competence or required
	// certification is missing. Disqualified candidates never reach
	// the retained set, whatever their weighted total.
	Disqualifie bool `json:"-"`
}

const (
	// neutralScore is used when a dimension has no data on either
	// side, so incomplete profiles are not systematically punished.
	neutralScore = 50.0

	// distance estimates (km) in the absence of geocoding
	distSameDepartement = 25.0
	distAutreRegion     = 80.0
	// fallback radius when the candidate declared none
	defaultMobiliteKm = 100.0

	// availability decays linearly to 0 at this many days past the
	// besoin start date
	maxJoursRetard = 60.0

	// experience stops improving the score past this multiple of the
	// requirement
	experiencePlafond = 2.0
)

var (
	ErrCandidatInvalide = errors.New("candidat record is incomplete")
	ErrBesoinInvalide   = errors.New("besoin record is incomplete")
)

// Score computes the five sub-scores and the weighted total for one
// pair. Pure and deterministic: no I/O, no clock reads, no mutation of
// its inputs.
func Score(candidat *models.Candidat, besoin *models.Besoin, w Weights) (*ScoreBreakdown, error) {
	if candidat == nil || candidat.ID == "" {
		return nil, ErrCandidatInvalide
	}
	if besoin == nil || besoin.ID == "" || besoin.ClientID == "" {
		return nil, ErrBesoinInvalide
	}

	competences, disqualifie := scoreCompetences(candidat, besoin)
	b := &ScoreBreakdown{
		CandidatID:    candidat.ID,
		Competences:   competences,
		Localisation:  scoreLocalisation(candidat, besoin),
		Disponibilite: scoreDisponibilite(candidat, besoin),
		Financier:     scoreFinancier(candidat, besoin),
		Experience:    scoreExperience(candidat, besoin),
		Disqualifie:   disqualifie,
	}

	total := b.Competences*w.Competences +
		b.Localisation*w.Localisation +
		b.Disponibilite*w.Disponibilite +
		b.Financier*w.Financier +
		b.Experience*w.Experience
	b.Total = round2(clamp(total))

	return b, nil
}

// scoreCompetences measures skill overlap. A missing mandatory
// competence or required certification forces the sub-score to 0 and
// flags the pair as disqualified: a candidate who cannot legally hold
// the post must never be compensated by the other dimensions.
func scoreCompetences(c *models.Candidat, b *models.Besoin) (float64, bool) {
	have := normalizeSet(c.GetCompetences())
	certs := normalizeSet(c.GetCertifications())

	for _, skill := range b.GetCompetencesObligatoires() {
		key := normalizeSkill(skill)
		// a mandatory competence may be held as a certification (CACES
		// and similar permits are recorded either way)
		if key != "" && !have[key] && !certs[key] {
			return 0, true
		}
	}
	for _, cert := range b.GetCertificationsRequises() {
		key := normalizeSkill(cert)
		if key != "" && !certs[key] && !have[key] {
			return 0, true
		}
	}

	required := unionNormalized(b.GetCompetencesRequises(), b.GetCompetencesObligatoires())
	if len(required) == 0 {
		if len(b.GetCertificationsRequises()) > 0 {
			// only certifications were required and all are present
			return 100, false
		}
		return neutralScore, false
	}

	matched := 0
	for key := range required {
		if have[key] || certs[key] {
			matched++
		}
	}
	return round2(100 * float64(matched) / float64(len(required))), false
}

// scoreLocalisation decays linearly with the estimated distance over
// the candidate's mobility radius. Without geocoding, distance is
// estimated from ville and departement.
func scoreLocalisation(c *models.Candidat, b *models.Besoin) float64 {
	if b.Ville == "" && b.Departement == "" {
		return neutralScore
	}
	if c.Ville == "" && c.Departement == "" {
		return neutralScore
	}

	d := estimateDistanceKm(c, b)
	radius := float64(c.MobiliteKm)
	if radius <= 0 {
		radius = defaultMobiliteKm
	}
	if d >= radius {
		return 0
	}
	return round2(100 * (1 - d/radius))
}

func estimateDistanceKm(c *models.Candidat, b *models.Besoin) float64 {
	if c.Ville != "" && b.Ville != "" && normalizeSkill(c.Ville) == normalizeSkill(b.Ville) {
		return 0
	}
	if c.Departement != "" && b.Departement != "" && c.Departement == b.Departement {
		return distSameDepartement
	}
	return distAutreRegion
}

// scoreDisponibilite compares when the candidate can start against the
// besoin start date. An unacceptable working format zeroes the score.
func scoreDisponibilite(c *models.Candidat, b *models.Besoin) float64 {
	if b.FormatTravail != "" {
		formats := c.GetFormatsAcceptes()
		if len(formats) > 0 && !containsNormalized(formats, b.FormatTravail) {
			return 0
		}
	}

	if b.DateDebut == nil {
		return neutralScore
	}

	var availableFrom *time.Time
	switch c.Disponibilite {
	case models.DisponibiliteImmediate:
		return 100
	case models.DisponibiliteDate, models.DisponibiliteEnMission:
		availableFrom = c.DateDisponibilite
	default:
		return neutralScore
	}

	if availableFrom == nil {
		if c.Disponibilite == models.DisponibiliteEnMission {
			// on assignment with no known end date
			return 0
		}
		return neutralScore
	}

	late := availableFrom.Sub(*b.DateDebut).Hours() / 24
	if late <= 0 {
		return 100
	}
	if late >= maxJoursRetard {
		return 0
	}
	return round2(100 * (1 - late/maxJoursRetard))
}

// scoreFinancier compares the candidate's rate expectation with the
// besoin band. Inside the band scores full; under the floor degrades
// gently; over the ceiling drops to near 0 quickly.
func scoreFinancier(c *models.Candidat, b *models.Besoin) float64 {
	rate := c.TauxHoraireMin
	if rate == nil {
		rate = c.TauxHoraireSouhaite
	}
	if rate == nil || b.TauxHoraireMax == nil || *b.TauxHoraireMax <= 0 {
		return neutralScore
	}

	floor := 0.0
	if b.TauxHoraireMin != nil {
		floor = *b.TauxHoraireMin
	}
	ceiling := *b.TauxHoraireMax

	switch {
	case *rate > ceiling:
		over := (*rate - ceiling) / ceiling
		return round2(clamp(30 - 150*over))
	case *rate < floor && floor > 0:
		under := (floor - *rate) / floor
		return round2(100 - 40*math.Min(1, 2*under))
	default:
		return 100
	}
}

// scoreExperience saturates at experiencePlafond times the required
// years: surplus beyond that yields no further benefit.
func scoreExperience(c *models.Candidat, b *models.Besoin) float64 {
	if c.ExperienceAnnees == nil {
		return neutralScore
	}
	if b.ExperienceRequiseMin == nil {
		return neutralScore
	}
	required := *b.ExperienceRequiseMin
	if required <= 0 {
		return 100
	}

	ratio := *c.ExperienceAnnees / required
	switch {
	case ratio >= experiencePlafond:
		return 100
	case ratio >= 1:
		return round2(70 + 30*(ratio-1)/(experiencePlafond-1))
	default:
		return round2(70 * ratio)
	}
}

// --- normalization helpers ---

func normalizeSkill(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

func normalizeSet(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, item := range list {
		if key := normalizeSkill(item); key != "" {
			set[key] = true
		}
	}
	return set
}

func unionNormalized(lists ...[]string) map[string]bool {
	set := make(map[string]bool)
	for _, list := range lists {
		for _, item := range list {
			if key := normalizeSkill(item); key != "" {
				set[key] = true
			}
		}
	}
	return set
}

func containsNormalized(list []string, target string) bool {
	key := normalizeSkill(target)
	for _, item := range list {
		if normalizeSkill(item) == key {
			return true
		}
	}
	return false
}

func clamp(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
