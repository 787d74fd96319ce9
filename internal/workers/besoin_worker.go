package workers

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/centuriocontact-dev/matching-interim-api/internal/logger"
)

// BesoinWorker runs the requisition housekeeping loop: besoins whose
// end date has passed are closed so batch runs stop rescoring them.
type BesoinWorker struct {
	db       *gorm.DB
	interval time.Duration
}

func NewBesoinWorker(db *gorm.DB) *BesoinWorker {
	return &BesoinWorker{db: db, interval: time.Hour}
}

func (w *BesoinWorker) Start(ctx context.Context) {
	go w.autoCloseExpired(ctx)
}

func (w *BesoinWorker) autoCloseExpired(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Besoin worker stopped")
			return
		case <-ticker.C:
			result := w.db.WithContext(ctx).Exec(`
				UPDATE besoins
				SET statut = 'annule', updated_at = NOW()
				WHERE statut IN ('ouvert', 'en_cours')
				AND date_fin IS NOT NULL
				AND date_fin < NOW()
			`)
			if result.Error != nil {
				logger.Error("Failed to auto-close expired besoins", "error", result.Error)
			} else if result.RowsAffected > 0 {
				logger.Info("Auto-closed expired besoins", "count", result.RowsAffected)
			}
		}
	}
}
