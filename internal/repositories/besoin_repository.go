package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/centuriocontact-dev/matching-interim-api/internal/models"
)

var ErrBesoinNotFound = errors.New("besoin not found")

type BesoinRepository interface {
	// FindByID is tenant-scoped: a besoin belonging to another client
	// is reported as not found, never as forbidden.
	FindByID(ctx context.Context, clientID, id string) (*models.Besoin, error)
	ListOpen(ctx context.Context, clientID string) ([]models.Besoin, error)
	Create(ctx context.Context, besoin *models.Besoin) error
	Update(ctx context.Context, besoin *models.Besoin) error
	UpdateStatut(ctx context.Context, clientID, id string, statut models.BesoinStatut) error
	List(ctx context.Context, clientID string, limit, offset int) ([]models.Besoin, int64, error)
}

type BesoinRepositoryImpl struct {
	db *gorm.DB
}

func NewBesoinRepository(db *gorm.DB) BesoinRepository {
	return &BesoinRepositoryImpl{db: db}
}

func (r *BesoinRepositoryImpl) FindByID(ctx context.Context, clientID, id string) (*models.Besoin, error) {
	var besoin models.Besoin
	err := r.db.WithContext(ctx).
		First(&besoin, "id = ? AND client_id = ?", id, clientID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBesoinNotFound
		}
		return nil, err
	}
	return &besoin, nil
}

// ListOpen returns the batch-run scope for one client, ordered for a
// deterministic processing sequence.
func (r *BesoinRepositoryImpl) ListOpen(ctx context.Context, clientID string) ([]models.Besoin, error) {
	var besoins []models.Besoin
	err := r.db.WithContext(ctx).
		Where("client_id = ? AND statut = ?", clientID, models.BesoinStatutOuvert).
		Order("created_at, id").
		Find(&besoins).Error
	return besoins, err
}

func (r *BesoinRepositoryImpl) Create(ctx context.Context, besoin *models.Besoin) error {
	return r.db.WithContext(ctx).Create(besoin).Error
}

func (r *BesoinRepositoryImpl) Update(ctx context.Context, besoin *models.Besoin) error {
	result := r.db.WithContext(ctx).
		Model(&models.Besoin{}).
		Where("id = ? AND client_id = ?", besoin.ID, besoin.ClientID).
		Updates(besoin)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBesoinNotFound
	}
	return nil
}

func (r *BesoinRepositoryImpl) UpdateStatut(ctx context.Context, clientID, id string, statut models.BesoinStatut) error {
	result := r.db.WithContext(ctx).
		Model(&models.Besoin{}).
		Where("id = ? AND client_id = ?", id, clientID).
		Updates(map[string]interface{}{
			"statut":     statut,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBesoinNotFound
	}
	return nil
}

func (r *BesoinRepositoryImpl) List(ctx context.Context, clientID string, limit, offset int) ([]models.Besoin, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Besoin{}).
		Where("client_id = ?", clientID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var besoins []models.Besoin
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&besoins).Error
	return besoins, total, err
}
