package dto

// CreateCandidatInput is the candidate intake payload.
type CreateCandidatInput struct {
	IDExterne string `json:"id_externe"`
	Nom       string `json:"nom" binding:"required,max=100" validate:"required,max=100"`
	Prenom    string `json:"prenom" binding:"required,max=100" validate:"required,max=100"`
	Email     string `json:"email" binding:"omitempty,email" validate:"omitempty,email"`
	Telephone string `json:"telephone"`

	Ville       string `json:"ville"`
	CodePostal  string `json:"code_postal"`
	Departement string `json:"departement" validate:"omitempty,is-departement"`
	MobiliteKm  *int   `json:"mobilite_km" binding:"omitempty,min=0,max=1000" validate:"omitempty,min=0,max=1000"`

	MetierPrincipal string `json:"metier_principal"`

	Competences    []string `json:"competences"`
	Certifications []string `json:"certifications"`

	ExperienceAnnees *float64 `json:"experience_annees" binding:"omitempty,min=0" validate:"omitempty,min=0"`

	Disponibilite     string   `json:"disponibilite" binding:"omitempty,oneof=immediate date en_mission" validate:"omitempty,oneof=immediate date en_mission"`
	DateDisponibilite string   `json:"date_disponibilite" binding:"omitempty,datetime=2006-01-02" validate:"omitempty,datetime=2006-01-02"`
	FormatsAcceptes   []string `json:"formats_acceptes"`

	TauxHoraireMin      *float64 `json:"taux_horaire_min" binding:"omitempty,min=0" validate:"omitempty,min=0"`
	TauxHoraireSouhaite *float64 `json:"taux_horaire_souhaite" binding:"omitempty,min=0" validate:"omitempty,min=0"`
}
