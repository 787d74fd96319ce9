package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centuriocontact-dev/matching-interim-api/internal/ai"
	"github.com/centuriocontact-dev/matching-interim-api/internal/algorithms"
	"github.com/centuriocontact-dev/matching-interim-api/internal/dto"
	"github.com/centuriocontact-dev/matching-interim-api/internal/models"
	"github.com/centuriocontact-dev/matching-interim-api/internal/repositories"
	"github.com/centuriocontact-dev/matching-interim-api/pkg/apperrors"
)

const (
	clientA = "aaaaaaaa-0000-0000-0000-000000000001"
	clientB = "bbbbbbbb-0000-0000-0000-000000000002"
)

// --- fakes ---

type fakeBesoinRepo struct {
	besoins     map[string]*models.Besoin
	projections map[string]int
}

func newFakeBesoinRepo(besoins ...*models.Besoin) *fakeBesoinRepo {
	r := &fakeBesoinRepo{
		besoins:     make(map[string]*models.Besoin),
		projections: make(map[string]int),
	}
	for _, b := range besoins {
		r.besoins[b.ID] = b
	}
	return r
}

func (r *fakeBesoinRepo) FindByID(_ context.Context, clientID, id string) (*models.Besoin, error) {
	b, ok := r.besoins[id]
	if !ok || b.ClientID != clientID {
		return nil, repositories.ErrBesoinNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBesoinRepo) ListOpen(_ context.Context, clientID string) ([]models.Besoin, error) {
	var out []models.Besoin
	for _, b := range r.besoins {
		if b.ClientID == clientID && b.Statut == models.BesoinStatutOuvert {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBesoinRepo) Create(_ context.Context, b *models.Besoin) error {
	r.besoins[b.ID] = b
	return nil
}

func (r *fakeBesoinRepo) Update(_ context.Context, b *models.Besoin) error { return nil }

func (r *fakeBesoinRepo) UpdateStatut(_ context.Context, clientID, id string, statut models.BesoinStatut) error {
	b, ok := r.besoins[id]
	if !ok || b.ClientID != clientID {
		return repositories.ErrBesoinNotFound
	}
	b.Statut = statut
	return nil
}

func (r *fakeBesoinRepo) List(_ context.Context, clientID string, limit, offset int) ([]models.Besoin, int64, error) {
	return nil, 0, nil
}

func (r *fakeBesoinRepo) applyProjection(id string, p repositories.BesoinProjection) {
	r.projections[id]++
	if b, ok := r.besoins[id]; ok {
		b.NbMatchings = p.NbMatchings
		b.MeilleurScore = p.MeilleurScore
		analyse := p.DerniereAnalyse
		b.DerniereAnalyse = &analyse
	}
}

type fakeCandidatRepo struct {
	candidats []models.Candidat
	latest    *time.Time
}

func (r *fakeCandidatRepo) FindByID(_ context.Context, id string) (*models.Candidat, error) {
	for i := range r.candidats {
		if r.candidats[i].ID == id {
			return &r.candidats[i], nil
		}
	}
	return nil, repositories.ErrCandidatNotFound
}

func (r *fakeCandidatRepo) ListEligible(_ context.Context) ([]models.Candidat, error) {
	var out []models.Candidat
	for _, c := range r.candidats {
		if c.Eligible() {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCandidatRepo) LatestChange(_ context.Context) (*time.Time, error) {
	return r.latest, nil
}

func (r *fakeCandidatRepo) Create(_ context.Context, c *models.Candidat) error { return nil }
func (r *fakeCandidatRepo) Update(_ context.Context, c *models.Candidat) error { return nil }
func (r *fakeCandidatRepo) List(_ context.Context, limit, offset int) ([]models.Candidat, int64, error) {
	return nil, 0, nil
}

type fakeMatchingRepo struct {
	store   map[string][]models.Matching
	failFor map[string]error
	besoins *fakeBesoinRepo
}

func newFakeMatchingRepo(besoins *fakeBesoinRepo) *fakeMatchingRepo {
	return &fakeMatchingRepo{
		store:   make(map[string][]models.Matching),
		failFor: make(map[string]error),
		besoins: besoins,
	}
}

func (r *fakeMatchingRepo) ReplaceForBesoin(_ context.Context, besoinID string, matchings []models.Matching, projection repositories.BesoinProjection) (int, int, error) {
	// a failed replace writes nothing, rows and projection alike
	if err := r.failFor[besoinID]; err != nil {
		return 0, 0, err
	}
	existing := make(map[string]bool)
	for _, m := range r.store[besoinID] {
		existing[m.CandidatID] = true
	}
	created, updated := 0, 0
	for _, m := range matchings {
		if existing[m.CandidatID] {
			updated++
		} else {
			created++
		}
	}
	r.store[besoinID] = matchings
	r.besoins.applyProjection(besoinID, projection)
	return created, updated, nil
}

func (r *fakeMatchingRepo) ListByBesoin(_ context.Context, clientID, besoinID string, q repositories.MatchingQuery) ([]models.Matching, error) {
	var out []models.Matching
	for _, m := range r.store[besoinID] {
		if m.ClientID != clientID {
			continue
		}
		if q.MinScore != nil && m.ScoreTotal < *q.MinScore {
			continue
		}
		out = append(out, m)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (r *fakeMatchingRepo) MarkViewed(_ context.Context, clientID, matchingID string) error {
	for besoinID := range r.store {
		for i := range r.store[besoinID] {
			m := &r.store[besoinID][i]
			if m.ID == matchingID && m.ClientID == clientID {
				now := time.Now()
				m.Vue = true
				m.DateVue = &now
				return nil
			}
		}
	}
	return repositories.ErrMatchingNotFound
}

type fakeLockRepo struct {
	denied   map[string]bool
	released []string
}

func newFakeLockRepo() *fakeLockRepo {
	return &fakeLockRepo{denied: make(map[string]bool)}
}

func (r *fakeLockRepo) TryAcquire(_ context.Context, besoinID string) (bool, error) {
	return !r.denied[besoinID], nil
}

func (r *fakeLockRepo) Release(_ context.Context, besoinID string) error {
	r.released = append(r.released, besoinID)
	return nil
}

type fakeEnricher struct {
	enrichment *ai.Enrichment
	err        error
	calls      int
}

func (e *fakeEnricher) Enrich(_ context.Context, _ *models.Candidat, _ *models.Besoin, _ *algorithms.ScoreBreakdown) (*ai.Enrichment, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return e.enrichment, nil
}

// --- fixtures ---

func serviceLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&strings.Builder{}, nil))
}

func openBesoin(id, clientID string) *models.Besoin {
	b := &models.Besoin{}
	b.ID = id
	b.ClientID = clientID
	b.PosteRecherche = "Cariste"
	b.CompetencesRequises = models.ToJSONList([]string{"CACES3"})
	b.SeuilScoreMin = 40
	b.NbCandidatsSouhaites = 5
	b.Statut = models.BesoinStatutOuvert
	return b
}

func eligibleCandidat(id string, competences ...string) models.Candidat {
	c := models.Candidat{}
	c.ID = id
	c.Nom = "Durand"
	c.Prenom = "Claire"
	c.Actif = true
	c.Disponibilite = models.DisponibiliteImmediate
	c.Competences = models.ToJSONList(competences)
	return c
}

type fixture struct {
	besoinRepo   *fakeBesoinRepo
	candidatRepo *fakeCandidatRepo
	matchingRepo *fakeMatchingRepo
	lockRepo     *fakeLockRepo
	enricher     *fakeEnricher
	service      MatchingService
}

func newFixture(besoins []*models.Besoin, candidats []models.Candidat, enricher *fakeEnricher) *fixture {
	besoinRepo := newFakeBesoinRepo(besoins...)
	f := &fixture{
		besoinRepo:   besoinRepo,
		candidatRepo: &fakeCandidatRepo{candidats: candidats},
		matchingRepo: newFakeMatchingRepo(besoinRepo),
		lockRepo:     newFakeLockRepo(),
		enricher:     enricher,
	}
	var e ai.Enricher
	if enricher != nil {
		e = enricher
	}
	f.service = NewMatchingService(
		f.besoinRepo, f.candidatRepo, f.matchingRepo, f.lockRepo,
		e, algorithms.DefaultWeights(), 4, time.Second, serviceLogger(),
	)
	return f
}

// --- tests ---

func TestRunMatchingSingleBesoin(t *testing.T) {
	f := newFixture(
		[]*models.Besoin{openBesoin("b1", clientA)},
		[]models.Candidat{
			eligibleCandidat("c1", "CACES3"),
			eligibleCandidat("c2", "CACES3", "Manutention"),
		},
		nil,
	)

	summary, err := f.service.RunMatching(context.Background(), clientA, dto.RunRequest{BesoinID: "b1"})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.BesoinsTraites)
	assert.Equal(t, 2, summary.MatchingsCrees)
	assert.Equal(t, 0, summary.MatchingsMisAJour)
	assert.Empty(t, summary.Echecs)

	stored := f.matchingRepo.store["b1"]
	require.Len(t, stored, 2)
	for i, m := range stored {
		assert.Equal(t, i+1, m.Rang)
		assert.Equal(t, clientA, m.ClientID)
		assert.GreaterOrEqual(t, m.ScoreTotal, 40.0)
	}

	assert.Equal(t, 1, f.besoinRepo.projections["b1"])
	assert.Equal(t, 2, f.besoinRepo.besoins["b1"].NbMatchings)
	require.NotNil(t, f.besoinRepo.besoins["b1"].MeilleurScore)
	assert.Equal(t, stored[0].ScoreTotal, *f.besoinRepo.besoins["b1"].MeilleurScore)
	assert.Equal(t, []string{"b1"}, f.lockRepo.released)
}

func TestRunMatchingRerunUpdatesInPlace(t *testing.T) {
	f := newFixture(
		[]*models.Besoin{openBesoin("b1", clientA)},
		[]models.Candidat{eligibleCandidat("c1", "CACES3")},
		nil,
	)

	_, err := f.service.RunMatching(context.Background(), clientA, dto.RunRequest{BesoinID: "b1"})
	require.NoError(t, err)

	summary, err := f.service.RunMatching(context.Background(), clientA, dto.RunRequest{BesoinID: "b1", ForceRefresh: true})
	require.NoError(t, err)

	assert.Equal(t, 0, summary.MatchingsCrees)
	assert.Equal(t, 1, summary.MatchingsMisAJour)
	assert.Len(t, f.matchingRepo.store["b1"], 1)
}

func TestRunMatchingBesoinNotFound(t *testing.T) {
	f := newFixture(nil, nil, nil)

	_, err := f.service.RunMatching(context.Background(), clientA, dto.RunRequest{BesoinID: "missing"})
	assert.ErrorIs(t, err, apperrors.ErrBesoinNotFound)
}

func TestRunMatchingForeignBesoinReadsAsNotFound(t *testing.T) {
	f := newFixture([]*models.Besoin{openBesoin("b1", clientB)}, nil, nil)

	_, err := f.service.RunMatching(context.Background(), clientA, dto.RunRequest{BesoinID: "b1"})
	assert.ErrorIs(t, err, apperrors.ErrBesoinNotFound)
}

func TestRunMatchingClosedBesoinRejected(t *testing.T) {
	closed := openBesoin("b1", clientA)
	closed.Statut = models.BesoinStatutPourvu
	f := newFixture([]*models.Besoin{closed}, nil, nil)

	_, err := f.service.RunMatching(context.Background(), clientA, dto.RunRequest{BesoinID: "b1"})
	assert.ErrorIs(t, err, apperrors.ErrBesoinClosed)
}

func TestRunMatchingConcurrentRunRejected(t *testing.T) {
	f := newFixture(
		[]*models.Besoin{openBesoin("b1", clientA)},
		[]models.Candidat{eligibleCandidat("c1", "CACES3")},
		nil,
	)
	f.lockRepo.denied["b1"] = true

	_, err := f.service.RunMatching(context.Background(), clientA, dto.RunRequest{BesoinID: "b1"})
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeConcurrentRun, appErr.Code)
}

func TestRunMatchingBatchContinuesPastLockedBesoin(t *testing.T) {
	f := newFixture(
		[]*models.Besoin{openBesoin("b1", clientA), openBesoin("b2", clientA)},
		[]models.Candidat{eligibleCandidat("c1", "CACES3")},
		nil,
	)
	f.lockRepo.denied["b1"] = true

	summary, err := f.service.RunMatching(context.Background(), clientA, dto.RunRequest{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.BesoinsTraites)
	require.Len(t, summary.Echecs, 1)
	assert.Equal(t, "b1", summary.Echecs[0].BesoinID)
	assert.Len(t, f.matchingRepo.store["b2"], 1)
}

func TestRunMatchingBatchFailureIsolation(t *testing.T) {
	f := newFixture(
		[]*models.Besoin{openBesoin("b1", clientA), openBesoin("b2", clientA)},
		[]models.Candidat{eligibleCandidat("c1", "CACES3")},
		nil,
	)
	f.matchingRepo.failFor["b1"] = errors.New("disk full")

	summary, err := f.service.RunMatching(context.Background(), clientA, dto.RunRequest{})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.BesoinsTraites)
	require.Len(t, summary.Echecs, 1)
	assert.Equal(t, "b1", summary.Echecs[0].BesoinID)
	// the failed besoin still released its lock
	assert.Contains(t, f.lockRepo.released, "b1")
	assert.Len(t, f.matchingRepo.store["b2"], 1)
}

func TestRunMatchingFailedReplaceLeavesProjectionStale(t *testing.T) {
	f := newFixture(
		[]*models.Besoin{openBesoin("b1", clientA)},
		[]models.Candidat{eligibleCandidat("c1", "CACES3")},
		nil,
	)
	f.matchingRepo.failFor["b1"] = errors.New("disk full")

	summary, err := f.service.RunMatching(context.Background(), clientA, dto.RunRequest{BesoinID: "b1"})
	require.NoError(t, err)
	require.Len(t, summary.Echecs, 1)

	// rows and projection move together or not at all
	assert.Zero(t, f.besoinRepo.projections["b1"])
	assert.Nil(t, f.besoinRepo.besoins["b1"].DerniereAnalyse)
}

func TestRunMatchingSkipsUpToDateBesoin(t *testing.T) {
	analysed := time.Now().Add(-time.Hour)
	older := analysed.Add(-time.Hour)

	b := openBesoin("b1", clientA)
	b.DerniereAnalyse = &analysed
	b.UpdatedAt = older

	f := newFixture(
		[]*models.Besoin{b},
		[]models.Candidat{eligibleCandidat("c1", "CACES3")},
		nil,
	)
	f.candidatRepo.latest = &older

	summary, err := f.service.RunMatching(context.Background(), clientA, dto.RunRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.BesoinsIgnores)
	assert.Equal(t, 0, summary.BesoinsTraites)
	assert.Empty(t, f.matchingRepo.store["b1"])

	// force_refresh overrides the skip rule
	summary, err = f.service.RunMatching(context.Background(), clientA, dto.RunRequest{ForceRefresh: true})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.BesoinsIgnores)
	assert.Equal(t, 1, summary.BesoinsTraites)
}

func TestRunMatchingCandidateChangeDefeatsSkip(t *testing.T) {
	analysed := time.Now().Add(-time.Hour)
	recent := time.Now()

	b := openBesoin("b1", clientA)
	b.DerniereAnalyse = &analysed
	b.UpdatedAt = analysed.Add(-time.Hour)

	f := newFixture(
		[]*models.Besoin{b},
		[]models.Candidat{eligibleCandidat("c1", "CACES3")},
		nil,
	)
	f.candidatRepo.latest = &recent

	summary, err := f.service.RunMatching(context.Background(), clientA, dto.RunRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.BesoinsTraites)
}

func TestRunMatchingExcludesIneligibleCandidates(t *testing.T) {
	blacklisted := eligibleCandidat("c2", "CACES3")
	blacklisted.Blackliste = true
	inactive := eligibleCandidat("c3", "CACES3")
	inactive.Actif = false

	f := newFixture(
		[]*models.Besoin{openBesoin("b1", clientA)},
		[]models.Candidat{eligibleCandidat("c1", "CACES3"), blacklisted, inactive},
		nil,
	)

	_, err := f.service.RunMatching(context.Background(), clientA, dto.RunRequest{BesoinID: "b1"})
	require.NoError(t, err)

	stored := f.matchingRepo.store["b1"]
	require.Len(t, stored, 1)
	assert.Equal(t, "c1", stored[0].CandidatID)
}

func TestRunMatchingMandatoryGateEndToEnd(t *testing.T) {
	b := openBesoin("b1", clientA)
	b.CompetencesObligatoires = models.ToJSONList([]string{"CACES3"})

	f := newFixture(
		[]*models.Besoin{b},
		[]models.Candidat{
			eligibleCandidat("c1", "CACES3"),
			eligibleCandidat("c2", "Manutention", "Soudure"),
		},
		nil,
	)

	_, err := f.service.RunMatching(context.Background(), clientA, dto.RunRequest{BesoinID: "b1"})
	require.NoError(t, err)

	stored := f.matchingRepo.store["b1"]
	require.Len(t, stored, 1)
	assert.Equal(t, "c1", stored[0].CandidatID)
}

func TestRunMatchingUsesEnricher(t *testing.T) {
	enricher := &fakeEnricher{enrichment: &ai.Enrichment{
		AnalyseIA:     "Très bon profil pour cette mission.",
		PointsForts:   []string{"CACES3 à jour"},
		PointsFaibles: []string{},
		UtiliseIA:     true,
	}}

	f := newFixture(
		[]*models.Besoin{openBesoin("b1", clientA)},
		[]models.Candidat{eligibleCandidat("c1", "CACES3")},
		enricher,
	)

	_, err := f.service.RunMatching(context.Background(), clientA, dto.RunRequest{BesoinID: "b1", UseAI: true})
	require.NoError(t, err)

	assert.Equal(t, 1, enricher.calls)
	stored := f.matchingRepo.store["b1"]
	require.Len(t, stored, 1)
	assert.True(t, stored[0].UtiliseIA)
	assert.Equal(t, "Très bon profil pour cette mission.", stored[0].AnalyseIA)
	assert.Equal(t, []string{"CACES3 à jour"}, stored[0].GetPointsForts())
}

func TestRunMatchingEnrichmentFallback(t *testing.T) {
	enricher := &fakeEnricher{err: errors.New("backend down")}

	f := newFixture(
		[]*models.Besoin{openBesoin("b1", clientA)},
		[]models.Candidat{eligibleCandidat("c1", "CACES3")},
		enricher,
	)

	summary, err := f.service.RunMatching(context.Background(), clientA, dto.RunRequest{BesoinID: "b1", UseAI: true})
	require.NoError(t, err)
	assert.Empty(t, summary.Echecs, "enrichment failure must not fail the besoin")

	stored := f.matchingRepo.store["b1"]
	require.Len(t, stored, 1)
	assert.False(t, stored[0].UtiliseIA)
	// rule-derived strengths: competences and disponibilite both at 100
	assert.NotEmpty(t, stored[0].GetPointsForts())
}

func TestRunMatchingEnricherNotCalledWithoutUseAI(t *testing.T) {
	enricher := &fakeEnricher{enrichment: &ai.Enrichment{UtiliseIA: true}}

	f := newFixture(
		[]*models.Besoin{openBesoin("b1", clientA)},
		[]models.Candidat{eligibleCandidat("c1", "CACES3")},
		enricher,
	)

	_, err := f.service.RunMatching(context.Background(), clientA, dto.RunRequest{BesoinID: "b1"})
	require.NoError(t, err)
	assert.Zero(t, enricher.calls)
}

func TestRunMatchingOverrides(t *testing.T) {
	f := newFixture(
		[]*models.Besoin{openBesoin("b1", clientA)},
		[]models.Candidat{
			eligibleCandidat("c1", "CACES3"),
			eligibleCandidat("c2", "CACES3"),
			eligibleCandidat("c3", "CACES3"),
		},
		nil,
	)

	one := 1
	_, err := f.service.RunMatching(context.Background(), clientA, dto.RunRequest{
		BesoinID:    "b1",
		NbCandidats: &one,
	})
	require.NoError(t, err)
	assert.Len(t, f.matchingRepo.store["b1"], 1)

	high := 99.0
	_, err = f.service.RunMatching(context.Background(), clientA, dto.RunRequest{
		BesoinID:     "b1",
		ForceRefresh: true,
		ScoreMin:     &high,
	})
	require.NoError(t, err)
	assert.Empty(t, f.matchingRepo.store["b1"], "score_min override above every total empties the retained set")
}

func TestListMatchingsTenantIsolation(t *testing.T) {
	f := newFixture(
		[]*models.Besoin{openBesoin("b1", clientA)},
		[]models.Candidat{eligibleCandidat("c1", "CACES3")},
		nil,
	)
	_, err := f.service.RunMatching(context.Background(), clientA, dto.RunRequest{BesoinID: "b1"})
	require.NoError(t, err)

	results, err := f.service.ListMatchings(context.Background(), clientA, "b1", repositories.MatchingQuery{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Rang)

	_, err = f.service.ListMatchings(context.Background(), clientB, "b1", repositories.MatchingQuery{})
	assert.ErrorIs(t, err, apperrors.ErrBesoinNotFound)
}

func TestMarkViewed(t *testing.T) {
	f := newFixture([]*models.Besoin{openBesoin("b1", clientA)}, nil, nil)

	m := models.Matching{BesoinID: "b1", CandidatID: "c1", ClientID: clientA, ScoreTotal: 80, Rang: 1}
	m.ID = "m1"
	f.matchingRepo.store["b1"] = []models.Matching{m}

	require.NoError(t, f.service.MarkViewed(context.Background(), clientA, "m1"))
	stored := f.matchingRepo.store["b1"][0]
	assert.True(t, stored.Vue)
	assert.NotNil(t, stored.DateVue)
}

func TestMarkViewedTenantScoped(t *testing.T) {
	f := newFixture([]*models.Besoin{openBesoin("b1", clientA)}, nil, nil)

	m := models.Matching{BesoinID: "b1", CandidatID: "c1", ClientID: clientA, ScoreTotal: 80, Rang: 1}
	m.ID = "m1"
	f.matchingRepo.store["b1"] = []models.Matching{m}

	var appErr *apperrors.AppError

	// a foreign tenant reads the matching as missing
	err := f.service.MarkViewed(context.Background(), clientB, "m1")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
	assert.False(t, f.matchingRepo.store["b1"][0].Vue)

	err = f.service.MarkViewed(context.Background(), clientA, "missing")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}

func TestProgressLifecycle(t *testing.T) {
	f := newFixture(
		[]*models.Besoin{openBesoin("b1", clientA)},
		[]models.Candidat{eligibleCandidat("c1", "CACES3")},
		nil,
	)

	assert.Equal(t, dto.RunStateIdle, f.service.Progress().State)

	_, err := f.service.RunMatching(context.Background(), clientA, dto.RunRequest{BesoinID: "b1"})
	require.NoError(t, err)

	progress := f.service.Progress()
	assert.Equal(t, dto.RunStateCompleted, progress.State)
	assert.Equal(t, 1, progress.BesoinsTotal)
	assert.Equal(t, 1, progress.BesoinsTraites)
	assert.NotNil(t, progress.StartedAt)
	assert.NotNil(t, progress.FinishedAt)
}
