package models

import (
	"time"

	"gorm.io/datatypes"
)

// Besoin is a job requisition posted by a client organisation.
// MeilleurScore, DerniereAnalyse and NbMatchings are a projection
// derived from the matching engine output; they are written only by
// the orchestrator, never by the requisition workflow.
type Besoin struct {
	BaseModel
	ClientID  string `gorm:"type:uuid;not null;index" json:"client_id"`
	IDExterne string `gorm:"size:50" json:"id_externe,omitempty"`

	PosteRecherche string `gorm:"size:200;not null" json:"poste_recherche"`
	Description    string `gorm:"type:text" json:"description,omitempty"`

	Ville         string `gorm:"size:100" json:"ville,omitempty"`
	CodePostal    string `gorm:"size:10" json:"code_postal,omitempty"`
	Departement   string `gorm:"size:5" json:"departement,omitempty"`
	FormatTravail string `gorm:"size:50" json:"format_travail,omitempty"`

	DateDebut  *time.Time `gorm:"type:date" json:"date_debut,omitempty"`
	DateFin    *time.Time `gorm:"type:date" json:"date_fin,omitempty"`
	DureeJours *int       `json:"duree_jours,omitempty"`

	ExperienceRequiseMin *float64 `json:"experience_requise_min,omitempty"`

	// CompetencesObligatoires is the mandatory subset of
	// CompetencesRequises: a candidate missing any of them is
	// disqualified outright, whatever the other dimensions say.
	CompetencesRequises     datatypes.JSON `gorm:"type:jsonb" json:"competences_requises"`
	CompetencesObligatoires datatypes.JSON `gorm:"type:jsonb" json:"competences_obligatoires"`
	CertificationsRequises  datatypes.JSON `gorm:"type:jsonb" json:"certifications_requises"`

	TauxHoraireMin *float64 `json:"taux_horaire_min,omitempty"`
	TauxHoraireMax *float64 `json:"taux_horaire_max,omitempty"`

	SeuilScoreMin        int `gorm:"default:40" json:"seuil_score_min"`
	NbCandidatsSouhaites int `gorm:"default:5" json:"nb_candidats_souhaites"`

	Statut   BesoinStatut `gorm:"size:30;default:ouvert;index" json:"statut"`
	Priorite string       `gorm:"size:20;default:normale" json:"priorite"`

	NbMatchings     int        `gorm:"default:0" json:"nb_matchings"`
	MeilleurScore   *float64   `json:"meilleur_score,omitempty"`
	DerniereAnalyse *time.Time `json:"derniere_analyse,omitempty"`
}

func (Besoin) TableName() string { return "besoins" }

func (b *Besoin) GetCompetencesRequises() []string {
	return StringList(b.CompetencesRequises)
}

func (b *Besoin) GetCompetencesObligatoires() []string {
	return StringList(b.CompetencesObligatoires)
}

func (b *Besoin) GetCertificationsRequises() []string {
	return StringList(b.CertificationsRequises)
}
