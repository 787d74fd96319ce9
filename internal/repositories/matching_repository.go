package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/centuriocontact-dev/matching-interim-api/internal/models"
)

var ErrMatchingNotFound = errors.New("matching not found")

// MatchingQuery narrows the read path of a besoin's matchings.
type MatchingQuery struct {
	Limit    int
	MinScore *float64
}

// BesoinProjection is the derived matching summary written on the
// besoin row alongside its replaced result set.
type BesoinProjection struct {
	NbMatchings     int
	MeilleurScore   *float64
	DerniereAnalyse time.Time
}

type MatchingRepository interface {
	// ReplaceForBesoin atomically swaps the retained set of one besoin:
	// stale rows are deleted, surviving pairs are upserted in place and
	// the besoin projection columns are refreshed, all in one
	// transaction. Readers never observe a partial set or a projection
	// out of step with the rows. Returns how many rows were created and
	// how many updated.
	ReplaceForBesoin(ctx context.Context, besoinID string, matchings []models.Matching, projection BesoinProjection) (created, updated int, err error)
	ListByBesoin(ctx context.Context, clientID, besoinID string, q MatchingQuery) ([]models.Matching, error)
	MarkViewed(ctx context.Context, clientID, matchingID string) error
}

type MatchingRepositoryImpl struct {
	db *gorm.DB
}

func NewMatchingRepository(db *gorm.DB) MatchingRepository {
	return &MatchingRepositoryImpl{db: db}
}

func (r *MatchingRepositoryImpl) ReplaceForBesoin(ctx context.Context, besoinID string, matchings []models.Matching, projection BesoinProjection) (int, int, error) {
	var created, updated int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existingIDs []string
		if err := tx.Model(&models.Matching{}).
			Where("besoin_id = ?", besoinID).
			Pluck("candidat_id", &existingIDs).Error; err != nil {
			return err
		}
		existing := make(map[string]bool, len(existingIDs))
		for _, id := range existingIDs {
			existing[id] = true
		}

		retained := make([]string, 0, len(matchings))
		for _, m := range matchings {
			retained = append(retained, m.CandidatID)
			if existing[m.CandidatID] {
				updated++
			} else {
				created++
			}
		}

		// drop pairs that fell out of the retained set
		stale := tx.Where("besoin_id = ?", besoinID)
		if len(retained) > 0 {
			stale = stale.Where("candidat_id NOT IN ?", retained)
		}
		if err := stale.Delete(&models.Matching{}).Error; err != nil {
			return err
		}

		if len(matchings) > 0 {
			// the unique index on (besoin_id, candidat_id) drives the upsert
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "besoin_id"}, {Name: "candidat_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"score_total",
					"score_competences",
					"score_localisation",
					"score_disponibilite",
					"score_financier",
					"score_experience",
					"rang",
					"points_forts",
					"points_faibles",
					"analyse_ia",
					"utilise_ia",
					"updated_at",
				}),
			}).Create(&matchings).Error; err != nil {
				return err
			}
		}

		return tx.Model(&models.Besoin{}).
			Where("id = ?", besoinID).
			Updates(map[string]interface{}{
				"nb_matchings":     projection.NbMatchings,
				"meilleur_score":   projection.MeilleurScore,
				"derniere_analyse": projection.DerniereAnalyse,
			}).Error
	})
	if err != nil {
		return 0, 0, err
	}
	return created, updated, nil
}

func (r *MatchingRepositoryImpl) ListByBesoin(ctx context.Context, clientID, besoinID string, q MatchingQuery) ([]models.Matching, error) {
	query := r.db.WithContext(ctx).
		Preload("Candidat").
		Where("besoin_id = ? AND client_id = ?", besoinID, clientID)

	if q.MinScore != nil {
		query = query.Where("score_total >= ?", *q.MinScore)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	var matchings []models.Matching
	err := query.Order("rang").Find(&matchings).Error
	return matchings, err
}

func (r *MatchingRepositoryImpl) MarkViewed(ctx context.Context, clientID, matchingID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Matching{}).
		Where("id = ? AND client_id = ?", matchingID, clientID).
		Updates(map[string]interface{}{
			"vue":      true,
			"date_vue": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMatchingNotFound
	}
	return nil
}
