// Package database owns the GORM connection and schema migration.
package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/centuriocontact-dev/matching-interim-api/internal/config"
	"github.com/centuriocontact-dev/matching-interim-api/internal/models"
)

var gormDB *gorm.DB

// ConnectGorm opens (once) the GORM connection from the configured DSN.
func ConnectGorm() (*gorm.DB, error) {
	if gormDB != nil {
		return gormDB, nil
	}

	cfg := config.GetConfig()
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to GORM: %w", err)
	}

	gormDB = db
	return db, nil
}

// AutoMigrate creates or updates the schema for every model. The
// uuid-ossp extension backs the uuid_generate_v4 column defaults.
func AutoMigrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to create uuid-ossp extension: %w", err)
	}

	return db.AutoMigrate(
		&models.Candidat{},
		&models.Besoin{},
		&models.Matching{},
	)
}
