package models

type BesoinStatut string
type Disponibilite string
type UserRole string

const (
	BesoinStatutOuvert  BesoinStatut = "ouvert"
	BesoinStatutEnCours BesoinStatut = "en_cours"
	BesoinStatutPourvu  BesoinStatut = "pourvu"
	BesoinStatutAnnule  BesoinStatut = "annule"

	// DisponibiliteImmediate means the candidate can start right away;
	// DisponibiliteDate means from candidat.DateDisponibilite onwards.
	DisponibiliteImmediate Disponibilite = "immediate"
	DisponibiliteDate      Disponibilite = "date"
	DisponibiliteEnMission Disponibilite = "en_mission"

	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)
