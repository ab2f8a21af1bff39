package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/scoutline/scoutline/internal/domain/appearance"
	"github.com/scoutline/scoutline/internal/domain/competition"
	"github.com/scoutline/scoutline/internal/platform/logging"
)

type RecomputeConfig struct {
	// MaxParallelCompetitions bounds the fan-out; ratings for one
	// competition are always computed sequentially within its worker.
	MaxParallelCompetitions int
}

func DefaultRecomputeConfig() RecomputeConfig {
	return RecomputeConfig{MaxParallelCompetitions: 4}
}

// RecomputeResult summarizes one recompute pass per competition.
type RecomputeResult struct {
	CompetitionID string `json:"competition_id"`
	Players       int    `json:"players"`
	Strength      int    `json:"strength"`
	Status        string `json:"status"`
	Message       string `json:"message,omitempty"`
	DurationMs    int64  `json:"duration_ms"`
}

type RecomputeService struct {
	competitionRepo competition.Repository
	appearanceRepo  appearance.Repository
	statsSvc        *StatsService
	ratingSvc       *RatingService
	cfg             RecomputeConfig
	logger          *logging.Logger
}

func NewRecomputeService(
	competitionRepo competition.Repository,
	appearanceRepo appearance.Repository,
	statsSvc *StatsService,
	ratingSvc *RatingService,
	cfg RecomputeConfig,
	logger *logging.Logger,
) *RecomputeService {
	if cfg.MaxParallelCompetitions <= 0 {
		cfg.MaxParallelCompetitions = DefaultRecomputeConfig().MaxParallelCompetitions
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RecomputeService{
		competitionRepo: competitionRepo,
		appearanceRepo:  appearanceRepo,
		statsSvc:        statsSvc,
		ratingSvc:       ratingSvc,
		cfg:             cfg,
		logger:          logger,
	}
}

// RecomputeAll rebuilds rolling stats, ratings, and strength for every
// competition. Competitions fan out on a bounded pool; all work inside one
// competition is sequential, and a failing competition does not stop the
// others.
func (s *RecomputeService) RecomputeAll(ctx context.Context) ([]RecomputeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecomputeService.RecomputeAll")
	defer span.End()

	competitions, err := s.competitionRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list competitions: %w", err)
	}

	var mu sync.Mutex
	results := make([]RecomputeResult, 0, len(competitions))

	workers := pool.New().WithMaxGoroutines(s.cfg.MaxParallelCompetitions)
	for _, comp := range competitions {
		comp := comp
		workers.Go(func() {
			row := s.recomputeCompetition(ctx, comp.ID)
			mu.Lock()
			results = append(results, row)
			mu.Unlock()
		})
	}
	workers.Wait()

	sort.SliceStable(results, func(i, j int) bool { return results[i].CompetitionID < results[j].CompetitionID })
	return results, nil
}

// RecomputeCompetition rebuilds one competition on demand.
func (s *RecomputeService) RecomputeCompetition(ctx context.Context, competitionID string) (RecomputeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecomputeService.RecomputeCompetition")
	defer span.End()

	competitionID = strings.TrimSpace(competitionID)
	if competitionID == "" {
		return RecomputeResult{}, fmt.Errorf("%w: competition id is required", ErrInvalidInput)
	}
	row := s.recomputeCompetition(ctx, competitionID)
	if row.Status == "failed" {
		return row, fmt.Errorf("recompute competition=%s: %s", competitionID, row.Message)
	}
	return row, nil
}

func (s *RecomputeService) recomputeCompetition(ctx context.Context, competitionID string) RecomputeResult {
	start := time.Now()
	row := RecomputeResult{CompetitionID: competitionID, Status: "success"}

	playerIDs, err := s.appearanceRepo.ListPlayerIDsByCompetition(ctx, competitionID)
	if err != nil {
		row.Status = "failed"
		row.Message = fmt.Sprintf("list players: %v", err)
		row.DurationMs = time.Since(start).Milliseconds()
		return row
	}

	for _, playerID := range playerIDs {
		if _, err := s.statsSvc.ComputeRolling(ctx, playerID, competitionID); err != nil {
			row.Status = "failed"
			row.Message = fmt.Sprintf("rolling stats player=%s: %v", playerID, err)
			row.DurationMs = time.Since(start).Milliseconds()
			return row
		}
	}
	row.Players = len(playerIDs)

	compRating, err := s.ratingSvc.RecomputeCompetition(ctx, competitionID)
	if err != nil {
		row.Status = "failed"
		row.Message = fmt.Sprintf("ratings: %v", err)
		row.DurationMs = time.Since(start).Milliseconds()
		return row
	}
	row.Strength = compRating.Strength

	row.DurationMs = time.Since(start).Milliseconds()
	s.logger.InfoContext(ctx, "competition recompute finished",
		"competition_id", competitionID,
		"players", row.Players,
		"strength", row.Strength,
		"duration_ms", row.DurationMs,
	)
	return row
}
