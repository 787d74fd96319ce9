package dto

import "time"

// RunRequest triggers a matching run. BesoinID empty means batch mode
// over every open besoin of the caller's client.
type RunRequest struct {
	BesoinID     string `json:"besoin_id,omitempty"`
	UseAI        bool   `json:"use_ai"`
	ForceRefresh bool   `json:"force_refresh"`

	// Optional per-run overrides; besoin-level configuration applies
	// when nil.
	ScoreMin    *float64 `json:"score_min,omitempty" binding:"omitempty,min=0,max=100" validate:"omitempty,min=0,max=100"`
	NbCandidats *int     `json:"nb_candidats,omitempty" binding:"omitempty,min=1,max=100" validate:"omitempty,min=1,max=100"`
}

// RunFailure records one besoin the run could not complete. Failures
// never abort the batch.
type RunFailure struct {
	BesoinID string `json:"besoin_id"`
	Reason   string `json:"reason"`
}

// RunSummary is the synchronous result of a matching run.
type RunSummary struct {
	BesoinsTraites    int          `json:"besoins_traites"`
	BesoinsIgnores    int          `json:"besoins_ignores"`
	MatchingsCrees    int          `json:"matchings_crees"`
	MatchingsMisAJour int          `json:"matchings_mis_a_jour"`
	DureeMs           int64        `json:"duree_ms"`
	Echecs            []RunFailure `json:"echecs"`
}

type RunState string

const (
	RunStateIdle      RunState = "idle"
	RunStateRunning   RunState = "running"
	RunStateCompleted RunState = "completed"
	RunStateFailed    RunState = "failed"
)

// RunProgress is the live snapshot exposed while a run executes.
type RunProgress struct {
	State          RunState   `json:"state"`
	BesoinsTotal   int        `json:"besoins_total"`
	BesoinsTraites int        `json:"besoins_traites"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	DernierBesoin  string     `json:"dernier_besoin,omitempty"`
}

// MatchingResponse is the read-path projection of a persisted matching.
type MatchingResponse struct {
	ID         string `json:"id"`
	BesoinID   string `json:"besoin_id"`
	CandidatID string `json:"candidat_id"`

	ScoreTotal         float64  `json:"score_total"`
	ScoreCompetences   *float64 `json:"score_competences,omitempty"`
	ScoreLocalisation  *float64 `json:"score_localisation,omitempty"`
	ScoreDisponibilite *float64 `json:"score_disponibilite,omitempty"`
	ScoreFinancier     *float64 `json:"score_financier,omitempty"`
	ScoreExperience    *float64 `json:"score_experience,omitempty"`

	Rang          int      `json:"rang"`
	PointsForts   []string `json:"points_forts"`
	PointsFaibles []string `json:"points_faibles"`
	AnalyseIA     string   `json:"analyse_ia,omitempty"`
	UtiliseIA     bool     `json:"utilise_ia"`

	Vue     bool       `json:"vue"`
	DateVue *time.Time `json:"date_vue,omitempty"`

	Candidat *CandidatSummary `json:"candidat,omitempty"`
}

// CandidatSummary is the candidate card embedded in matching listings.
type CandidatSummary struct {
	ID            string   `json:"id"`
	Nom           string   `json:"nom"`
	Prenom        string   `json:"prenom"`
	Ville         string   `json:"ville,omitempty"`
	Disponibilite string   `json:"disponibilite"`
	Competences   []string `json:"competences"`
}
