package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/centuriocontact-dev/matching-interim-api/internal/ai"
	"github.com/centuriocontact-dev/matching-interim-api/internal/algorithms"
	"github.com/centuriocontact-dev/matching-interim-api/internal/dto"
	"github.com/centuriocontact-dev/matching-interim-api/internal/models"
	"github.com/centuriocontact-dev/matching-interim-api/internal/repositories"
	"github.com/centuriocontact-dev/matching-interim-api/pkg/apperrors"
)

type MatchingService interface {
	// RunMatching executes a run synchronously and returns its summary.
	// Per-besoin failures are recorded in the summary; only scope
	// resolution errors and context cancellation abort the run.
	RunMatching(ctx context.Context, clientID string, req dto.RunRequest) (*dto.RunSummary, error)
	ListMatchings(ctx context.Context, clientID, besoinID string, query repositories.MatchingQuery) ([]dto.MatchingResponse, error)
	MarkViewed(ctx context.Context, clientID, matchingID string) error
	Progress() dto.RunProgress
}

type matchingService struct {
	besoinRepo   repositories.BesoinRepository
	candidatRepo repositories.CandidatRepository
	matchingRepo repositories.MatchingRepository
	lockRepo     repositories.RunLockRepository

	// enricher may be nil: runs then always use the rule-derived
	// annotations.
	enricher      ai.Enricher
	weights       algorithms.Weights
	concurrency   int
	enrichTimeout time.Duration

	logger  *slog.Logger
	tracker *runTracker
}

func NewMatchingService(
	besoinRepo repositories.BesoinRepository,
	candidatRepo repositories.CandidatRepository,
	matchingRepo repositories.MatchingRepository,
	lockRepo repositories.RunLockRepository,
	enricher ai.Enricher,
	weights algorithms.Weights,
	concurrency int,
	enrichTimeout time.Duration,
	logger *slog.Logger,
) MatchingService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &matchingService{
		besoinRepo:    besoinRepo,
		candidatRepo:  candidatRepo,
		matchingRepo:  matchingRepo,
		lockRepo:      lockRepo,
		enricher:      enricher,
		weights:       weights,
		concurrency:   concurrency,
		enrichTimeout: enrichTimeout,
		logger:        logger,
		tracker:       newRunTracker(),
	}
}

func (s *matchingService) RunMatching(ctx context.Context, clientID string, req dto.RunRequest) (*dto.RunSummary, error) {
	started := time.Now()

	besoins, err := s.resolveScope(ctx, clientID, req)
	if err != nil {
		return nil, err
	}

	candidats, err := s.candidatRepo.ListEligible(ctx)
	if err != nil {
		return nil, apperrors.ErrPersistence(err, req.BesoinID)
	}
	latestChange, err := s.candidatRepo.LatestChange(ctx)
	if err != nil {
		return nil, apperrors.ErrPersistence(err, req.BesoinID)
	}

	s.tracker.start(len(besoins))
	summary := &dto.RunSummary{Echecs: []dto.RunFailure{}}

	for i := range besoins {
		besoin := &besoins[i]

		// besoins are independent; a cancelled context stops between
		// them, never mid-besoin.
		if err := ctx.Err(); err != nil {
			s.tracker.finish(true)
			return nil, apperrors.InternalError(err)
		}

		if !req.ForceRefresh && s.canSkip(besoin, latestChange) {
			summary.BesoinsIgnores++
			s.tracker.advance(besoin.ID)
			continue
		}

		acquired, lockErr := s.lockRepo.TryAcquire(ctx, besoin.ID)
		if lockErr != nil {
			summary.Echecs = append(summary.Echecs, dto.RunFailure{BesoinID: besoin.ID, Reason: lockErr.Error()})
			s.tracker.advance(besoin.ID)
			continue
		}
		if !acquired {
			if req.BesoinID != "" {
				s.tracker.finish(true)
				return nil, apperrors.ErrConcurrentRun(besoin.ID)
			}
			summary.Echecs = append(summary.Echecs, dto.RunFailure{BesoinID: besoin.ID, Reason: "matching run already in progress"})
			s.tracker.advance(besoin.ID)
			continue
		}

		created, updated, runErr := s.processBesoin(ctx, besoin, candidats, req)
		if relErr := s.lockRepo.Release(ctx, besoin.ID); relErr != nil {
			s.logger.Warn("failed to release run lock", "besoin_id", besoin.ID, "error", relErr)
		}

		if runErr != nil {
			s.logger.Error("besoin processing failed", "besoin_id", besoin.ID, "error", runErr)
			summary.Echecs = append(summary.Echecs, dto.RunFailure{BesoinID: besoin.ID, Reason: runErr.Error()})
		} else {
			summary.BesoinsTraites++
			summary.MatchingsCrees += created
			summary.MatchingsMisAJour += updated
		}
		s.tracker.advance(besoin.ID)
	}

	summary.DureeMs = time.Since(started).Milliseconds()
	s.tracker.finish(false)

	s.logger.Info("matching run completed",
		"client_id", clientID,
		"besoins_traites", summary.BesoinsTraites,
		"besoins_ignores", summary.BesoinsIgnores,
		"matchings_crees", summary.MatchingsCrees,
		"matchings_mis_a_jour", summary.MatchingsMisAJour,
		"echecs", len(summary.Echecs),
		"duree_ms", summary.DureeMs,
	)
	return summary, nil
}

// resolveScope loads the besoins the run covers: one targeted besoin or
// every open besoin of the client.
func (s *matchingService) resolveScope(ctx context.Context, clientID string, req dto.RunRequest) ([]models.Besoin, error) {
	if req.BesoinID == "" {
		besoins, err := s.besoinRepo.ListOpen(ctx, clientID)
		if err != nil {
			return nil, apperrors.ErrPersistence(err, "")
		}
		return besoins, nil
	}

	besoin, err := s.besoinRepo.FindByID(ctx, clientID, req.BesoinID)
	if err != nil {
		if errors.Is(err, repositories.ErrBesoinNotFound) {
			return nil, apperrors.ErrBesoinNotFound
		}
		return nil, apperrors.ErrPersistence(err, req.BesoinID)
	}
	if besoin.Statut == models.BesoinStatutPourvu || besoin.Statut == models.BesoinStatutAnnule {
		return nil, apperrors.ErrBesoinClosed
	}
	return []models.Besoin{*besoin}, nil
}

// canSkip implements the incremental rule: a besoin whose last analysis
// postdates both its own changes and the latest candidate change has
// nothing new to score.
func (s *matchingService) canSkip(besoin *models.Besoin, latestCandidatChange *time.Time) bool {
	if besoin.DerniereAnalyse == nil {
		return false
	}
	analyse := *besoin.DerniereAnalyse
	if besoin.UpdatedAt.After(analyse) {
		return false
	}
	if latestCandidatChange != nil && latestCandidatChange.After(analyse) {
		return false
	}
	return true
}

// processBesoin runs the full pipeline for one besoin: parallel pair
// scoring, filter and rank, enrichment, then one transaction replacing
// the result set and refreshing the besoin projection.
func (s *matchingService) processBesoin(ctx context.Context, besoin *models.Besoin, candidats []models.Candidat, req dto.RunRequest) (int, int, error) {
	breakdowns := make([]*algorithms.ScoreBreakdown, len(candidats))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range candidats {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, err := algorithms.Score(&candidats[i], besoin, s.weights)
			if err != nil {
				// malformed profiles are skipped, not fatal
				s.logger.Warn("skipping candidat",
					"candidat_id", candidats[i].ID,
					"besoin_id", besoin.ID,
					"error", err,
				)
				return nil
			}
			breakdowns[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, 0, err
	}

	seuil := float64(besoin.SeuilScoreMin)
	if req.ScoreMin != nil {
		seuil = *req.ScoreMin
	}
	limit := besoin.NbCandidatsSouhaites
	if req.NbCandidats != nil {
		limit = *req.NbCandidats
	}

	ranked := algorithms.FilterAndRank(breakdowns, seuil, limit)

	byID := make(map[string]*models.Candidat, len(candidats))
	for i := range candidats {
		byID[candidats[i].ID] = &candidats[i]
	}

	now := time.Now()
	matchings := make([]models.Matching, 0, len(ranked))
	for i := range ranked {
		r := &ranked[i]
		enrichment := s.enrich(ctx, byID[r.CandidatID], besoin, &r.ScoreBreakdown, req.UseAI)

		matchings = append(matchings, models.Matching{
			BesoinID:           besoin.ID,
			CandidatID:         r.CandidatID,
			ClientID:           besoin.ClientID,
			ScoreTotal:         r.Total,
			ScoreCompetences:   ptr(r.Competences),
			ScoreLocalisation:  ptr(r.Localisation),
			ScoreDisponibilite: ptr(r.Disponibilite),
			ScoreFinancier:     ptr(r.Financier),
			ScoreExperience:    ptr(r.Experience),
			Rang:               r.Rang,
			PointsForts:        models.ToJSONList(enrichment.PointsForts),
			PointsFaibles:      models.ToJSONList(enrichment.PointsFaibles),
			AnalyseIA:          enrichment.AnalyseIA,
			UtiliseIA:          enrichment.UtiliseIA,
		})
	}

	var meilleur *float64
	if len(ranked) > 0 {
		meilleur = ptr(ranked[0].Total)
	}
	projection := repositories.BesoinProjection{
		NbMatchings:     len(ranked),
		MeilleurScore:   meilleur,
		DerniereAnalyse: now,
	}

	created, updated, err := s.matchingRepo.ReplaceForBesoin(ctx, besoin.ID, matchings, projection)
	if err != nil {
		return 0, 0, apperrors.ErrPersistence(err, besoin.ID)
	}

	return created, updated, nil
}

// enrich never fails a run: any backend error falls back to the
// rule-derived annotation.
func (s *matchingService) enrich(ctx context.Context, candidat *models.Candidat, besoin *models.Besoin, breakdown *algorithms.ScoreBreakdown, useAI bool) *ai.Enrichment {
	fallback := ai.RuleBasedEnrichment(breakdown)
	if !useAI || s.enricher == nil || candidat == nil {
		return fallback
	}

	enrichCtx := ctx
	if s.enrichTimeout > 0 {
		var cancel context.CancelFunc
		enrichCtx, cancel = context.WithTimeout(ctx, s.enrichTimeout)
		defer cancel()
	}

	enrichment, err := s.enricher.Enrich(enrichCtx, candidat, besoin, breakdown)
	if err != nil {
		s.logger.Warn("enrichment failed, using rule-derived annotations",
			"besoin_id", besoin.ID,
			"candidat_id", candidat.ID,
			"error", err,
		)
		return fallback
	}
	return enrichment
}

func (s *matchingService) ListMatchings(ctx context.Context, clientID, besoinID string, query repositories.MatchingQuery) ([]dto.MatchingResponse, error) {
	// tenant check first so a foreign besoin reads as 404, not as an
	// empty list
	if _, err := s.besoinRepo.FindByID(ctx, clientID, besoinID); err != nil {
		if errors.Is(err, repositories.ErrBesoinNotFound) {
			return nil, apperrors.ErrBesoinNotFound
		}
		return nil, apperrors.ErrPersistence(err, besoinID)
	}

	matchings, err := s.matchingRepo.ListByBesoin(ctx, clientID, besoinID, query)
	if err != nil {
		return nil, apperrors.ErrPersistence(err, besoinID)
	}

	responses := make([]dto.MatchingResponse, 0, len(matchings))
	for i := range matchings {
		responses = append(responses, toMatchingResponse(&matchings[i]))
	}
	return responses, nil
}

// MarkViewed flags one matching as consulted by the client. Tenant
// scoping rides on the repository filter: a foreign matching reads as
// not found.
func (s *matchingService) MarkViewed(ctx context.Context, clientID, matchingID string) error {
	if err := s.matchingRepo.MarkViewed(ctx, clientID, matchingID); err != nil {
		if errors.Is(err, repositories.ErrMatchingNotFound) {
			return apperrors.ErrNotFound(err, "matching")
		}
		return apperrors.ErrPersistence(err, "")
	}
	return nil
}

func (s *matchingService) Progress() dto.RunProgress {
	return s.tracker.snapshot()
}

func toMatchingResponse(m *models.Matching) dto.MatchingResponse {
	resp := dto.MatchingResponse{
		ID:                 m.ID,
		BesoinID:           m.BesoinID,
		CandidatID:         m.CandidatID,
		ScoreTotal:         m.ScoreTotal,
		ScoreCompetences:   m.ScoreCompetences,
		ScoreLocalisation:  m.ScoreLocalisation,
		ScoreDisponibilite: m.ScoreDisponibilite,
		ScoreFinancier:     m.ScoreFinancier,
		ScoreExperience:    m.ScoreExperience,
		Rang:               m.Rang,
		PointsForts:        m.GetPointsForts(),
		PointsFaibles:      m.GetPointsFaibles(),
		AnalyseIA:          m.AnalyseIA,
		UtiliseIA:          m.UtiliseIA,
		Vue:                m.Vue,
		DateVue:            m.DateVue,
	}
	if m.Candidat != nil {
		resp.Candidat = &dto.CandidatSummary{
			ID:            m.Candidat.ID,
			Nom:           m.Candidat.Nom,
			Prenom:        m.Candidat.Prenom,
			Ville:         m.Candidat.Ville,
			Disponibilite: string(m.Candidat.Disponibilite),
			Competences:   m.Candidat.GetCompetences(),
		}
	}
	return resp
}

func ptr[T any](v T) *T { return &v }
