package models

import (
	"time"

	"gorm.io/datatypes"
)

// Candidat is a worker profile. Candidates form a shared pool: they do
// not belong to a client, but every Matching produced from one carries
// the client of its Besoin.
type Candidat struct {
	BaseModel
	IDExterne string `gorm:"size:50" json:"id_externe,omitempty"`
	Nom       string `gorm:"size:100;not null" json:"nom"`
	Prenom    string `gorm:"size:100;not null" json:"prenom"`
	Email     string `gorm:"size:255" json:"email,omitempty"`
	Telephone string `gorm:"size:20" json:"telephone,omitempty"`

	CodePostal  string `gorm:"size:10" json:"code_postal,omitempty"`
	Ville       string `gorm:"size:100" json:"ville,omitempty"`
	Departement string `gorm:"size:5" json:"departement,omitempty"`
	MobiliteKm  int    `gorm:"default:30" json:"mobilite_km"`

	MetierPrincipal  string         `gorm:"size:100" json:"metier_principal,omitempty"`
	ExperienceAnnees *float64       `json:"experience_annees,omitempty"`
	Competences      datatypes.JSON `gorm:"type:jsonb" json:"competences"`
	Certifications   datatypes.JSON `gorm:"type:jsonb" json:"certifications"`

	Disponibilite     Disponibilite  `gorm:"size:50;default:immediate" json:"disponibilite"`
	DateDisponibilite *time.Time     `gorm:"type:date" json:"date_disponibilite,omitempty"`
	FormatsAcceptes   datatypes.JSON `gorm:"type:jsonb" json:"formats_acceptes"`

	TauxHoraireMin      *float64 `json:"taux_horaire_min,omitempty"`
	TauxHoraireSouhaite *float64 `json:"taux_horaire_souhaite,omitempty"`

	Actif           bool   `gorm:"default:true" json:"actif"`
	Blackliste      bool   `gorm:"default:false" json:"blackliste"`
	RaisonBlacklist string `gorm:"type:text" json:"raison_blacklist,omitempty"`
}

func (Candidat) TableName() string { return "candidats" }

func (c *Candidat) GetCompetences() []string {
	return StringList(c.Competences)
}

func (c *Candidat) GetCertifications() []string {
	return StringList(c.Certifications)
}

func (c *Candidat) GetFormatsAcceptes() []string {
	return StringList(c.FormatsAcceptes)
}

// Eligible reports whether the candidate may enter a matching run at
// all. Blacklisted or inactive profiles are never scored.
func (c *Candidat) Eligible() bool {
	return c.Actif && !c.Blackliste
}
