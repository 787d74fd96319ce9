package dto

// CreateBesoinInput is the requisition intake payload. Scoring
// configuration defaults apply when the optional fields are omitted.
type CreateBesoinInput struct {
	IDExterne      string `json:"id_externe"`
	PosteRecherche string `json:"poste_recherche" binding:"required,max=200" validate:"required,max=200"`
	Description    string `json:"description"`

	Ville         string `json:"ville"`
	CodePostal    string `json:"code_postal"`
	Departement   string `json:"departement" validate:"omitempty,is-departement"`
	FormatTravail string `json:"format_travail"`

	DateDebut  string `json:"date_debut" binding:"omitempty,datetime=2006-01-02" validate:"omitempty,datetime=2006-01-02"`
	DateFin    string `json:"date_fin" binding:"omitempty,datetime=2006-01-02" validate:"omitempty,datetime=2006-01-02"`
	DureeJours *int   `json:"duree_jours"`

	CompetencesRequises     []string `json:"competences_requises"`
	CompetencesObligatoires []string `json:"competences_obligatoires"`
	CertificationsRequises  []string `json:"certifications_requises"`

	ExperienceRequiseMin *float64 `json:"experience_requise_min" binding:"omitempty,min=0" validate:"omitempty,min=0"`
	TauxHoraireMin       *float64 `json:"taux_horaire_min" binding:"omitempty,min=0" validate:"omitempty,min=0"`
	TauxHoraireMax       *float64 `json:"taux_horaire_max" binding:"omitempty,min=0" validate:"omitempty,min=0"`

	SeuilScoreMin        *int   `json:"seuil_score_min" binding:"omitempty,min=0,max=100" validate:"omitempty,min=0,max=100"`
	NbCandidatsSouhaites *int   `json:"nb_candidats_souhaites" binding:"omitempty,min=1,max=100" validate:"omitempty,min=1,max=100"`
	Priorite             string `json:"priorite" binding:"omitempty,oneof=basse normale haute urgente" validate:"omitempty,oneof=basse normale haute urgente"`
}

type UpdateBesoinStatutInput struct {
	Statut string `json:"statut" binding:"required,oneof=ouvert en_cours pourvu annule" validate:"required,oneof=ouvert en_cours pourvu annule"`
}
