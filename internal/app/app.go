// Package app wires configuration, database, services and HTTP routing
// into a runnable server.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/centuriocontact-dev/matching-interim-api/database"
	"github.com/centuriocontact-dev/matching-interim-api/internal/ai"
	"github.com/centuriocontact-dev/matching-interim-api/internal/ai/gemini"
	"github.com/centuriocontact-dev/matching-interim-api/internal/algorithms"
	"github.com/centuriocontact-dev/matching-interim-api/internal/config"
	"github.com/centuriocontact-dev/matching-interim-api/internal/handlers"
	"github.com/centuriocontact-dev/matching-interim-api/internal/logger"
	"github.com/centuriocontact-dev/matching-interim-api/internal/middleware"
	"github.com/centuriocontact-dev/matching-interim-api/internal/repositories"
	"github.com/centuriocontact-dev/matching-interim-api/internal/routes"
	"github.com/centuriocontact-dev/matching-interim-api/internal/services"
	"github.com/centuriocontact-dev/matching-interim-api/internal/validator"
	"github.com/centuriocontact-dev/matching-interim-api/internal/workers"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig

	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	gormDB, err := database.ConnectGorm()
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err := sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Schema migration failed", "error", err)
	}
	logger.Info("Schema migrated")

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	workers.NewBesoinWorker(gormDB).Start(workerCtx)

	router := SetupRouter(cfg, gormDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "address", address)
	if err := router.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// SetupRouter builds the full dependency graph and returns the gin
// engine, so tests can mount the API without the process lifecycle.
func SetupRouter(cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	besoinRepo := repositories.NewBesoinRepository(gormDB)
	candidatRepo := repositories.NewCandidatRepository(gormDB)
	matchingRepo := repositories.NewMatchingRepository(gormDB)
	lockRepo := repositories.NewRunLockRepository(gormDB)

	enricher := buildEnricher(cfg)

	weights := algorithms.Weights{
		Competences:   cfg.Matching.Poids.Competences,
		Localisation:  cfg.Matching.Poids.Localisation,
		Disponibilite: cfg.Matching.Poids.Disponibilite,
		Financier:     cfg.Matching.Poids.Financier,
		Experience:    cfg.Matching.Poids.Experience,
	}

	matchingService := services.NewMatchingService(
		besoinRepo,
		candidatRepo,
		matchingRepo,
		lockRepo,
		enricher,
		weights,
		cfg.Matching.ScoringConcurrency,
		time.Duration(cfg.Matching.EnrichTimeoutSec)*time.Second,
		logger.GetLogger(),
	)
	besoinService := services.NewBesoinService(besoinRepo)
	candidatService := services.NewCandidatService(candidatRepo)

	v := validator.New()
	base := handlers.NewBaseHandler(v)
	appHandlers := &routes.AppHandlers{
		MatchingHandler: handlers.NewMatchingHandler(base, matchingService),
		BesoinHandler:   handlers.NewBesoinHandler(base, besoinService),
		CandidatHandler: handlers.NewCandidatHandler(base, candidatService),
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())

	routes.RegisterRoutes(router, appHandlers)
	return router
}

// buildEnricher returns nil when no Gemini key is configured; runs then
// rely on the rule-derived annotations.
func buildEnricher(cfg *config.Config) ai.Enricher {
	if cfg.Gemini.APIKey == "" {
		logger.Warn("GEMINI_API_KEY not set, narrative enrichment disabled")
		return nil
	}

	generator, err := gemini.NewGenerator(context.Background(), cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		logger.Warn("Failed to initialize Gemini client, narrative enrichment disabled", "error", err)
		return nil
	}
	logger.Info("Gemini enrichment enabled", "model", generator.Model())
	return gemini.NewEnricher(generator, logger.GetLogger())
}
