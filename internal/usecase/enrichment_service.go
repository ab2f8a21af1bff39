package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/scoutline/scoutline/internal/domain/enrichment"
	"github.com/scoutline/scoutline/internal/domain/identity"
	"github.com/scoutline/scoutline/internal/domain/player"
	"github.com/scoutline/scoutline/internal/domain/rawdata"
	"github.com/scoutline/scoutline/internal/platform/logging"
	"github.com/scoutline/scoutline/internal/platform/normalize"
	"github.com/scoutline/scoutline/internal/platform/pacing"
)

type EnrichmentConfig struct {
	// BudgetPerSource caps external calls per source per run.
	BudgetPerSource int
	// BatchSize is how many players are selected per page; run state is
	// persisted after each batch.
	BatchSize int
	// MinRequestInterval and MaxRequestJitter feed the per-run pacer.
	MinRequestInterval time.Duration
	MaxRequestJitter   time.Duration
	// Matching thresholds shared with the resolver.
	Resolver ResolverConfig
}

func DefaultEnrichmentConfig() EnrichmentConfig {
	return EnrichmentConfig{
		BudgetPerSource:    150,
		BatchSize:          20,
		MinRequestInterval: 1200 * time.Millisecond,
		MaxRequestJitter:   400 * time.Millisecond,
		Resolver:           DefaultResolverConfig(),
	}
}

// IDGenerator mints run ids.
type IDGenerator interface {
	NewID() (string, error)
}

// JobPublisher schedules a follow-up invocation of an internal job route.
type JobPublisher interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type EnrichmentService struct {
	playerRepo   player.Repository
	identityRepo identity.Repository
	reviewRepo   identity.ReviewRepository
	runRepo      enrichment.Repository
	rawRepo      rawdata.Repository
	merger       *MergeService
	providers    map[string]ProviderClient
	idGen        IDGenerator
	publisher    JobPublisher
	cfg          EnrichmentConfig
	logger       *logging.Logger
	now          func() time.Time
}

// SetPublisher attaches an optional continuation publisher. Without one,
// budget-exhausted runs simply wait for the next scheduled trigger.
func (s *EnrichmentService) SetPublisher(publisher JobPublisher) {
	s.publisher = publisher
}

func NewEnrichmentService(
	playerRepo player.Repository,
	identityRepo identity.Repository,
	reviewRepo identity.ReviewRepository,
	runRepo enrichment.Repository,
	rawRepo rawdata.Repository,
	merger *MergeService,
	providers []ProviderClient,
	idGen IDGenerator,
	cfg EnrichmentConfig,
	logger *logging.Logger,
) *EnrichmentService {
	defaults := DefaultEnrichmentConfig()
	if cfg.BudgetPerSource <= 0 {
		cfg.BudgetPerSource = defaults.BudgetPerSource
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaults.BatchSize
	}
	if cfg.MinRequestInterval <= 0 {
		cfg.MinRequestInterval = defaults.MinRequestInterval
	}
	if cfg.MaxRequestJitter < 0 {
		cfg.MaxRequestJitter = defaults.MaxRequestJitter
	}
	if cfg.Resolver.ConfidenceThreshold <= 0 {
		cfg.Resolver = defaults.Resolver
	}
	if logger == nil {
		logger = logging.Default()
	}

	byName := make(map[string]ProviderClient, len(providers))
	for _, client := range providers {
		if client != nil {
			byName[client.Source()] = client
		}
	}

	return &EnrichmentService{
		playerRepo:   playerRepo,
		identityRepo: identityRepo,
		reviewRepo:   reviewRepo,
		runRepo:      runRepo,
		rawRepo:      rawRepo,
		merger:       merger,
		providers:    byName,
		idGen:        idGen,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// Sources lists the registered provider names, sorted.
func (s *EnrichmentService) Sources() []string {
	out := make([]string, 0, len(s.providers))
	for name := range s.providers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// RunAll enriches every registered source, one pool worker per source. Each
// source stays strictly sequential internally so per-source budgets and
// pacing hold; only distinct sources proceed in parallel.
func (s *EnrichmentService) RunAll(ctx context.Context) ([]enrichment.Run, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EnrichmentService.RunAll")
	defer span.End()

	sources := s.Sources()
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no providers registered", ErrDependencyUnavailable)
	}

	pool, err := ants.NewPool(len(sources))
	if err != nil {
		return nil, fmt.Errorf("create enrichment worker pool: %w", err)
	}
	defer pool.Release()

	var mu sync.Mutex
	var wg sync.WaitGroup
	runs := make([]enrichment.Run, 0, len(sources))
	var firstErr error

	for _, source := range sources {
		source := source
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			run, runErr := s.RunSource(ctx, source)
			mu.Lock()
			defer mu.Unlock()
			if runErr != nil && firstErr == nil {
				firstErr = runErr
			}
			if run.ID != "" {
				runs = append(runs, run)
			}
		}); err != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = fmt.Errorf("submit enrichment worker source=%s: %w", source, err)
			}
			mu.Unlock()
		}
	}
	wg.Wait()

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Source < runs[j].Source })
	return runs, firstErr
}

// RunSource executes one budgeted enrichment pass for one source, resuming
// from the previous run's cursor when that run did not finish the sweep.
func (s *EnrichmentService) RunSource(ctx context.Context, source string) (enrichment.Run, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EnrichmentService.RunSource")
	defer span.End()

	source = strings.TrimSpace(source)
	client, ok := s.providers[source]
	if !ok {
		return enrichment.Run{}, fmt.Errorf("%w: unknown source=%s", ErrInvalidInput, source)
	}

	cursor, err := s.resumeCursor(ctx, source)
	if err != nil {
		return enrichment.Run{}, err
	}

	runID, err := s.idGen.NewID()
	if err != nil {
		return enrichment.Run{}, fmt.Errorf("generate run id: %w", err)
	}
	run := enrichment.Run{
		ID:           runID,
		Source:       source,
		Status:       enrichment.StatusRunning,
		LastPlayerID: cursor,
		StartedAt:    s.now().UTC(),
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		return enrichment.Run{}, fmt.Errorf("create enrichment run source=%s: %w", source, err)
	}

	budget := enrichment.NewBudget(s.cfg.BudgetPerSource)
	pacer := pacing.New(s.cfg.MinRequestInterval, s.cfg.MaxRequestJitter)

	if err := s.sweep(ctx, &run, client, budget, pacer); err != nil {
		// Failures outside the per-item boundary abort the run but preserve
		// the partial summary.
		run.Status = enrichment.StatusFailed
		run.ErrorMessage = err.Error()
		s.finishRun(ctx, &run, budget)
		return run, err
	}

	if run.BudgetExhausted {
		run.Status = enrichment.StatusBudgetExhausted
	} else {
		run.Status = enrichment.StatusCompleted
	}
	s.finishRun(ctx, &run, budget)

	s.logger.InfoContext(ctx, "enrichment run finished",
		"run_id", run.ID,
		"source", source,
		"status", string(run.Status),
		"processed", run.Counters.Processed,
		"matched", run.Counters.Matched,
		"queued_for_review", run.Counters.QueuedForReview,
		"errors", run.Counters.Errors,
		"requests_used", run.Counters.RequestsUsed,
	)

	if run.BudgetExhausted {
		s.scheduleContinuation(ctx, run)
	}

	return run, nil
}

// scheduleContinuation enqueues the next budgeted pass for a source whose
// sweep stopped on budget. The deduplication id pins the cursor so a
// re-published run never fans out into duplicates.
func (s *EnrichmentService) scheduleContinuation(ctx context.Context, run enrichment.Run) {
	if s.publisher == nil {
		return
	}

	payload := map[string]string{"source": run.Source}
	dedupID := "enrich:" + run.Source + ":" + run.LastPlayerID
	if err := s.publisher.Enqueue(ctx, "/v1/internal/jobs/enrich", payload, time.Minute, dedupID); err != nil {
		s.logger.WarnContext(ctx, "schedule enrichment continuation failed",
			"source", run.Source,
			"run_id", run.ID,
			"error", err,
		)
		return
	}

	s.logger.InfoContext(ctx, "enrichment continuation scheduled",
		"source", run.Source,
		"run_id", run.ID,
		"cursor", run.LastPlayerID,
	)
}

func (s *EnrichmentService) resumeCursor(ctx context.Context, source string) (string, error) {
	latest, exists, err := s.runRepo.GetLatestBySource(ctx, source)
	if err != nil {
		return "", fmt.Errorf("load latest run source=%s: %w", source, err)
	}
	// A completed sweep starts over from the top; anything else resumes.
	if !exists || latest.Status == enrichment.StatusCompleted {
		return "", nil
	}
	return latest.LastPlayerID, nil
}

func (s *EnrichmentService) sweep(ctx context.Context, run *enrichment.Run, client ProviderClient, budget *enrichment.Budget, pacer *pacing.Pacer) error {
	for {
		if run.BudgetExhausted {
			return nil
		}

		batch, err := s.playerRepo.ListMissingIdentity(ctx, run.Source, run.LastPlayerID, s.cfg.BatchSize)
		if err != nil {
			return fmt.Errorf("list players missing identity source=%s: %w", run.Source, err)
		}
		if len(batch) == 0 {
			return nil
		}

		for _, item := range batch {
			if err := s.enrichOne(ctx, run, client, budget, pacer, item); err != nil {
				if errors.Is(err, ErrBudgetExhausted) {
					run.BudgetExhausted = true
					break
				}
				// Per-item failures never escape the batch loop.
				run.Counters.Errors++
				s.logger.WarnContext(ctx, "enrichment item failed",
					"run_id", run.ID,
					"source", run.Source,
					"player_id", item.ID,
					"error", err,
				)
			}
			run.Counters.Processed++
			run.LastPlayerID = item.ID
		}

		// Persist resumability state after every batch.
		run.Counters.RequestsUsed = budget.Used()
		if err := s.runRepo.Update(ctx, *run); err != nil {
			return fmt.Errorf("persist run state run=%s: %w", run.ID, err)
		}
	}
}

// enrichOne runs the search, resolution, profile merge, and stats fetch for
// a single player. The budget is checked before every external call so a
// multi-call sequence can never overrun it.
func (s *EnrichmentService) enrichOne(ctx context.Context, run *enrichment.Run, client ProviderClient, budget *enrichment.Budget, pacer *pacing.Pacer, item player.Player) error {
	if !budget.TrySpend() {
		return ErrBudgetExhausted
	}
	if err := pacer.Wait(ctx, run.Source); err != nil {
		return err
	}
	results, payloads, err := client.SearchPlayers(ctx, item.Name)
	if err != nil {
		return fmt.Errorf("provider search: %w", err)
	}
	s.storePayloads(ctx, run, payloads)

	best, score, decided := s.pickProviderCandidate(item, results)
	if !decided {
		run.Counters.QueuedForReview++
		return s.enqueueReview(ctx, run.Source, item, results)
	}

	if !budget.TrySpend() {
		return ErrBudgetExhausted
	}
	if err := pacer.Wait(ctx, run.Source); err != nil {
		return err
	}
	fetched, payloads, err := client.FetchProfile(ctx, best.SourceID)
	if err != nil {
		return fmt.Errorf("provider profile fetch source_id=%s: %w", best.SourceID, err)
	}
	s.storePayloads(ctx, run, payloads)

	if err := s.identityRepo.Upsert(ctx, identity.ExternalIdentity{
		PlayerID:   item.ID,
		Source:     run.Source,
		SourceID:   best.SourceID,
		Confidence: score,
	}); err != nil {
		return fmt.Errorf("upsert external identity: %w", err)
	}
	run.Counters.Matched++

	if _, err := s.merger.MergeProfile(ctx, item.ID, run.Source, best.SourceID, fetched.Fields, fetched.Raw); err != nil {
		return fmt.Errorf("merge provider profile: %w", err)
	}
	run.Counters.Merged++

	if !budget.TrySpend() {
		return ErrBudgetExhausted
	}
	if err := pacer.Wait(ctx, run.Source); err != nil {
		return err
	}
	_, payloads, err = client.FetchSeasonStats(ctx, best.SourceID)
	if err != nil {
		return fmt.Errorf("provider season stats fetch source_id=%s: %w", best.SourceID, err)
	}
	s.storePayloads(ctx, run, payloads)

	return nil
}

// Corroboration weights for provider search hits, applied on top of name
// similarity. A position mismatch outweighs an agreement bonus so that two
// same-named hits separate on role.
const (
	providerTeamMatchBonus        = 0.04
	providerPositionMatchBonus    = 0.02
	providerPositionMismatchMalus = 0.05
)

// pickProviderCandidate scores provider search results against the canonical
// player with the same threshold and ambiguity rules the resolver applies.
// Team and position agreement corroborate the name signal when both sides
// report them.
func (s *EnrichmentService) pickProviderCandidate(item player.Player, results []ProviderSearchResult) (ProviderSearchResult, float64, bool) {
	type scored struct {
		result ProviderSearchResult
		score  float64
	}
	cfg := s.cfg.Resolver

	ranked := make([]scored, 0, len(results))
	for _, result := range results {
		score := normalize.Similarity(item.Name, result.Name)
		if normalize.Name(result.Name) == item.NameNormalized {
			score = 1.0
		}
		if item.TeamName != "" && result.TeamName != "" &&
			normalize.Similarity(item.TeamName, result.TeamName) >= cfg.TeamFuzzyCutoff {
			score += providerTeamMatchBonus
		}
		if item.Position != "" && result.Position != "" {
			if item.Position == result.Position {
				score += providerPositionMatchBonus
			} else {
				score -= providerPositionMismatchMalus
			}
		}
		if score > 1 {
			score = 1
		}
		if score < cfg.MinCandidateScore {
			continue
		}
		ranked = append(ranked, scored{result: result, score: score})
	}
	if len(ranked) == 0 {
		return ProviderSearchResult{}, 0, false
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	top := ranked[0]
	if top.score < cfg.ConfidenceThreshold {
		return ProviderSearchResult{}, 0, false
	}
	if len(ranked) > 1 && top.score-ranked[1].score <= cfg.AmbiguityMargin {
		return ProviderSearchResult{}, 0, false
	}
	return top.result, top.score, true
}

func (s *EnrichmentService) enqueueReview(ctx context.Context, source string, item player.Player, results []ProviderSearchResult) error {
	reason := "no provider results"
	sourceID := item.ID
	var bestScore float64
	if len(results) > 0 {
		sourceID = results[0].SourceID
		ids := make([]string, 0, len(results))
		for _, result := range results {
			ids = append(ids, result.SourceID)
			if score := normalize.Similarity(item.Name, result.Name); score > bestScore {
				bestScore = score
			}
		}
		reason = fmt.Sprintf("provider results below confidence threshold or ambiguous: %s", strings.Join(ids, ","))
	}
	candidates := []identity.ReviewCandidate{{PlayerID: item.ID, Score: bestScore}}

	queued := identity.ReviewItem{
		Source:     source,
		SourceID:   sourceID,
		Name:       item.Name,
		TeamID:     item.TeamID,
		Reason:     reason,
		Candidates: candidates,
		Status:     identity.ReviewStatusPending,
	}
	if err := s.reviewRepo.Enqueue(ctx, queued); err != nil {
		return fmt.Errorf("enqueue review item player=%s: %w", item.ID, err)
	}
	return nil
}

func (s *EnrichmentService) storePayloads(ctx context.Context, run *enrichment.Run, payloads []rawdata.Payload) {
	if len(payloads) == 0 {
		return
	}
	if err := s.rawRepo.UpsertMany(ctx, payloads); err != nil {
		// Raw payload capture is best-effort audit data, not pipeline state.
		s.logger.WarnContext(ctx, "store raw payloads failed", "run_id", run.ID, "error", err)
	}
}

func (s *EnrichmentService) finishRun(ctx context.Context, run *enrichment.Run, budget *enrichment.Budget) {
	finished := s.now().UTC()
	run.FinishedAt = &finished
	run.Counters.RequestsUsed = budget.Used()
	if err := s.runRepo.Update(ctx, *run); err != nil {
		s.logger.ErrorContext(ctx, "persist finished run failed", "run_id", run.ID, "error", err)
	}
}

// GetRun fetches one run record for the operator surface.
func (s *EnrichmentService) GetRun(ctx context.Context, runID string) (enrichment.Run, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EnrichmentService.GetRun")
	defer span.End()

	runID = strings.TrimSpace(runID)
	if runID == "" {
		return enrichment.Run{}, fmt.Errorf("%w: run id is required", ErrInvalidInput)
	}
	run, exists, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return enrichment.Run{}, fmt.Errorf("get run: %w", err)
	}
	if !exists {
		return enrichment.Run{}, fmt.Errorf("%w: run=%s", ErrNotFound, runID)
	}
	return run, nil
}
