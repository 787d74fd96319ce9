package models

import (
	"time"

	"gorm.io/datatypes"
)

// Matching is the persisted outcome of a retained (besoin, candidat)
// pair. The unique index on (besoin_id, candidat_id) backs the upsert
// invariant: re-scoring a pair updates the existing row.
// ClientID always equals the besoin's client, the tenant anchor.
type Matching struct {
	BaseModel
	BesoinID   string `gorm:"type:uuid;not null;uniqueIndex:idx_matchings_besoin_candidat;index" json:"besoin_id"`
	CandidatID string `gorm:"type:uuid;not null;uniqueIndex:idx_matchings_besoin_candidat" json:"candidat_id"`
	ClientID   string `gorm:"type:uuid;not null;index" json:"client_id"`

	ScoreTotal         float64  `gorm:"not null" json:"score_total"`
	ScoreCompetences   *float64 `json:"score_competences,omitempty"`
	ScoreLocalisation  *float64 `json:"score_localisation,omitempty"`
	ScoreDisponibilite *float64 `json:"score_disponibilite,omitempty"`
	ScoreFinancier     *float64 `json:"score_financier,omitempty"`
	ScoreExperience    *float64 `json:"score_experience,omitempty"`

	// Rang is dense, 1-based and unique per besoin; fully recomputed
	// on every run.
	Rang int `gorm:"not null" json:"rang"`

	PointsForts   datatypes.JSON `gorm:"type:jsonb" json:"points_forts"`
	PointsFaibles datatypes.JSON `gorm:"type:jsonb" json:"points_faibles"`
	AnalyseIA     string         `gorm:"type:text" json:"analyse_ia,omitempty"`
	UtiliseIA     bool           `gorm:"default:false" json:"utilise_ia"`

	Vue     bool       `gorm:"default:false" json:"vue"`
	DateVue *time.Time `json:"date_vue,omitempty"`

	Besoin   *Besoin   `gorm:"foreignKey:BesoinID;constraint:OnDelete:CASCADE" json:"-"`
	Candidat *Candidat `gorm:"foreignKey:CandidatID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Matching) TableName() string { return "matchings" }

func (m *Matching) GetPointsForts() []string {
	return StringList(m.PointsForts)
}

func (m *Matching) GetPointsFaibles() []string {
	return StringList(m.PointsFaibles)
}
