package services

import (
	"context"
	"errors"

	"github.com/centuriocontact-dev/matching-interim-api/internal/dto"
	"github.com/centuriocontact-dev/matching-interim-api/internal/models"
	"github.com/centuriocontact-dev/matching-interim-api/internal/repositories"
	"github.com/centuriocontact-dev/matching-interim-api/pkg/apperrors"
)

type CandidatService interface {
	Create(ctx context.Context, input dto.CreateCandidatInput) (*models.Candidat, error)
	Get(ctx context.Context, id string) (*models.Candidat, error)
	List(ctx context.Context, limit, offset int) ([]models.Candidat, int64, error)
}

type candidatService struct {
	candidatRepo repositories.CandidatRepository
}

func NewCandidatService(candidatRepo repositories.CandidatRepository) CandidatService {
	return &candidatService{candidatRepo: candidatRepo}
}

func (s *candidatService) Create(ctx context.Context, input dto.CreateCandidatInput) (*models.Candidat, error) {
	candidat := &models.Candidat{
		IDExterne:       input.IDExterne,
		Nom:             input.Nom,
		Prenom:          input.Prenom,
		Email:           input.Email,
		Telephone:       input.Telephone,
		Ville:           input.Ville,
		CodePostal:      input.CodePostal,
		Departement:     input.Departement,
		MetierPrincipal: input.MetierPrincipal,

		Competences:    models.ToJSONList(input.Competences),
		Certifications: models.ToJSONList(input.Certifications),

		ExperienceAnnees: input.ExperienceAnnees,

		FormatsAcceptes: models.ToJSONList(input.FormatsAcceptes),

		TauxHoraireMin:      input.TauxHoraireMin,
		TauxHoraireSouhaite: input.TauxHoraireSouhaite,

		Actif: true,
	}

	if input.MobiliteKm != nil {
		candidat.MobiliteKm = *input.MobiliteKm
	} else {
		candidat.MobiliteKm = 30
	}
	if input.Disponibilite != "" {
		candidat.Disponibilite = models.Disponibilite(input.Disponibilite)
	} else {
		candidat.Disponibilite = models.DisponibiliteImmediate
	}

	var err error
	if candidat.DateDisponibilite, err = parseDate(input.DateDisponibilite); err != nil {
		return nil, apperrors.ValidationError("date_disponibilite must be YYYY-MM-DD")
	}

	if err := s.candidatRepo.Create(ctx, candidat); err != nil {
		return nil, apperrors.ErrPersistence(err, "")
	}
	return candidat, nil
}

func (s *candidatService) Get(ctx context.Context, id string) (*models.Candidat, error) {
	candidat, err := s.candidatRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCandidatNotFound) {
			return nil, apperrors.ErrCandidatNotFound
		}
		return nil, apperrors.ErrPersistence(err, id)
	}
	return candidat, nil
}

func (s *candidatService) List(ctx context.Context, limit, offset int) ([]models.Candidat, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	candidats, total, err := s.candidatRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.ErrPersistence(err, "")
	}
	return candidats, total, nil
}
