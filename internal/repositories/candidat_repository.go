package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/centuriocontact-dev/matching-interim-api/internal/models"
)

var ErrCandidatNotFound = errors.New("candidat not found")

type CandidatRepository interface {
	FindByID(ctx context.Context, id string) (*models.Candidat, error)
	ListEligible(ctx context.Context) ([]models.Candidat, error)
	LatestChange(ctx context.Context) (*time.Time, error)
	Create(ctx context.Context, candidat *models.Candidat) error
	Update(ctx context.Context, candidat *models.Candidat) error
	List(ctx context.Context, limit, offset int) ([]models.Candidat, int64, error)
}

type CandidatRepositoryImpl struct {
	db *gorm.DB
}

func NewCandidatRepository(db *gorm.DB) CandidatRepository {
	return &CandidatRepositoryImpl{db: db}
}

func (r *CandidatRepositoryImpl) FindByID(ctx context.Context, id string) (*models.Candidat, error) {
	var candidat models.Candidat
	err := r.db.WithContext(ctx).First(&candidat, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCandidatNotFound
		}
		return nil, err
	}
	return &candidat, nil
}

// ListEligible returns the scoring population: active, not blacklisted.
func (r *CandidatRepositoryImpl) ListEligible(ctx context.Context) ([]models.Candidat, error) {
	var candidats []models.Candidat
	err := r.db.WithContext(ctx).
		Where("actif = ? AND blackliste = ?", true, false).
		Order("id").
		Find(&candidats).Error
	return candidats, err
}

// LatestChange returns the most recent updated_at over the whole pool,
// used by the incremental skip rule. Nil when the pool is empty.
func (r *CandidatRepositoryImpl) LatestChange(ctx context.Context) (*time.Time, error) {
	var latest *time.Time
	err := r.db.WithContext(ctx).
		Model(&models.Candidat{}).
		Select("MAX(updated_at)").
		Scan(&latest).Error
	if err != nil {
		return nil, err
	}
	return latest, nil
}

func (r *CandidatRepositoryImpl) Create(ctx context.Context, candidat *models.Candidat) error {
	return r.db.WithContext(ctx).Create(candidat).Error
}

func (r *CandidatRepositoryImpl) Update(ctx context.Context, candidat *models.Candidat) error {
	result := r.db.WithContext(ctx).Model(candidat).Updates(candidat)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCandidatNotFound
	}
	return nil
}

func (r *CandidatRepositoryImpl) List(ctx context.Context, limit, offset int) ([]models.Candidat, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Candidat{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var candidats []models.Candidat
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&candidats).Error
	return candidats, total, err
}
