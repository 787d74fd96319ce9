package helpers

import (
	"testing"

	"gorm.io/gorm"

	"github.com/centuriocontact-dev/matching-interim-api/internal/auth"
	"github.com/centuriocontact-dev/matching-interim-api/internal/models"
)

// Token mints a JWT for the given tenant, the way the gateway that
// fronts this API would.
func Token(t *testing.T, userID, clientID string) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, clientID, models.UserRoleUser)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return token
}

// CreateCandidat inserts an eligible candidate with the given skills.
func CreateCandidat(t *testing.T, db *gorm.DB, nom string, competences []string, mutate ...func(*models.Candidat)) *models.Candidat {
	t.Helper()

	c := &models.Candidat{
		Nom:           nom,
		Prenom:        "Test",
		Competences:   models.ToJSONList(competences),
		Disponibilite: models.DisponibiliteImmediate,
		MobiliteKm:    30,
		Actif:         true,
	}
	for _, fn := range mutate {
		fn(c)
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("failed to create candidat: %v", err)
	}
	return c
}

// CreateBesoin inserts an open besoin for the given tenant.
func CreateBesoin(t *testing.T, db *gorm.DB, clientID, poste string, competences []string, mutate ...func(*models.Besoin)) *models.Besoin {
	t.Helper()

	b := &models.Besoin{
		ClientID:             clientID,
		PosteRecherche:       poste,
		CompetencesRequises:  models.ToJSONList(competences),
		SeuilScoreMin:        40,
		NbCandidatsSouhaites: 5,
		Statut:               models.BesoinStatutOuvert,
		Priorite:             "normale",
	}
	for _, fn := range mutate {
		fn(b)
	}
	if err := db.Create(b).Error; err != nil {
		t.Fatalf("failed to create besoin: %v", err)
	}
	return b
}
