package services

import (
	"context"
	"errors"
	"time"

	"github.com/centuriocontact-dev/matching-interim-api/internal/dto"
	"github.com/centuriocontact-dev/matching-interim-api/internal/models"
	"github.com/centuriocontact-dev/matching-interim-api/internal/repositories"
	"github.com/centuriocontact-dev/matching-interim-api/pkg/apperrors"
)

type BesoinService interface {
	Create(ctx context.Context, clientID string, input dto.CreateBesoinInput) (*models.Besoin, error)
	Get(ctx context.Context, clientID, id string) (*models.Besoin, error)
	List(ctx context.Context, clientID string, limit, offset int) ([]models.Besoin, int64, error)
	UpdateStatut(ctx context.Context, clientID, id string, statut models.BesoinStatut) error
}

type besoinService struct {
	besoinRepo repositories.BesoinRepository
}

func NewBesoinService(besoinRepo repositories.BesoinRepository) BesoinService {
	return &besoinService{besoinRepo: besoinRepo}
}

func (s *besoinService) Create(ctx context.Context, clientID string, input dto.CreateBesoinInput) (*models.Besoin, error) {
	besoin := &models.Besoin{
		ClientID:       clientID,
		IDExterne:      input.IDExterne,
		PosteRecherche: input.PosteRecherche,
		Description:    input.Description,
		Ville:          input.Ville,
		CodePostal:     input.CodePostal,
		Departement:    input.Departement,
		FormatTravail:  input.FormatTravail,
		DureeJours:     input.DureeJours,

		CompetencesRequises:     models.ToJSONList(input.CompetencesRequises),
		CompetencesObligatoires: models.ToJSONList(input.CompetencesObligatoires),
		CertificationsRequises:  models.ToJSONList(input.CertificationsRequises),

		ExperienceRequiseMin: input.ExperienceRequiseMin,
		TauxHoraireMin:       input.TauxHoraireMin,
		TauxHoraireMax:       input.TauxHoraireMax,

		Statut: models.BesoinStatutOuvert,
	}

	if input.SeuilScoreMin != nil {
		besoin.SeuilScoreMin = *input.SeuilScoreMin
	} else {
		besoin.SeuilScoreMin = 40
	}
	if input.NbCandidatsSouhaites != nil {
		besoin.NbCandidatsSouhaites = *input.NbCandidatsSouhaites
	} else {
		besoin.NbCandidatsSouhaites = 5
	}
	if input.Priorite != "" {
		besoin.Priorite = input.Priorite
	} else {
		besoin.Priorite = "normale"
	}

	var err error
	if besoin.DateDebut, err = parseDate(input.DateDebut); err != nil {
		return nil, apperrors.ValidationError("date_debut must be YYYY-MM-DD")
	}
	if besoin.DateFin, err = parseDate(input.DateFin); err != nil {
		return nil, apperrors.ValidationError("date_fin must be YYYY-MM-DD")
	}

	if err := s.besoinRepo.Create(ctx, besoin); err != nil {
		return nil, apperrors.ErrPersistence(err, "")
	}
	return besoin, nil
}

func (s *besoinService) Get(ctx context.Context, clientID, id string) (*models.Besoin, error) {
	besoin, err := s.besoinRepo.FindByID(ctx, clientID, id)
	if err != nil {
		if errors.Is(err, repositories.ErrBesoinNotFound) {
			return nil, apperrors.ErrBesoinNotFound
		}
		return nil, apperrors.ErrPersistence(err, id)
	}
	return besoin, nil
}

func (s *besoinService) List(ctx context.Context, clientID string, limit, offset int) ([]models.Besoin, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	besoins, total, err := s.besoinRepo.List(ctx, clientID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.ErrPersistence(err, "")
	}
	return besoins, total, nil
}

func (s *besoinService) UpdateStatut(ctx context.Context, clientID, id string, statut models.BesoinStatut) error {
	if err := s.besoinRepo.UpdateStatut(ctx, clientID, id, statut); err != nil {
		if errors.Is(err, repositories.ErrBesoinNotFound) {
			return apperrors.ErrBesoinNotFound
		}
		return apperrors.ErrPersistence(err, id)
	}
	return nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
