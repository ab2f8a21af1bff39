package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/scoutline/scoutline/internal/domain/competition"
	"github.com/scoutline/scoutline/internal/domain/player"
	"github.com/scoutline/scoutline/internal/domain/rating"
	"github.com/scoutline/scoutline/internal/domain/rollingstats"
	"github.com/scoutline/scoutline/internal/platform/logging"
)

type RatingConfig struct {
	// PowerExponent shapes the raw score to rating curve; must stay below 1.
	PowerExponent float64
	// StrengthTopN is how many top level scores feed a competition strength.
	StrengthTopN int
	// WriteChunkSize bounds each persistence write batch.
	WriteChunkSize int
}

func DefaultRatingConfig() RatingConfig {
	return RatingConfig{
		PowerExponent:  0.9,
		StrengthTopN:   25,
		WriteChunkSize: 100,
	}
}

type RatingService struct {
	rollingRepo     rollingstats.Repository
	ratingRepo      rating.Repository
	playerRepo      player.Repository
	competitionRepo competition.Repository
	cfg             RatingConfig
	logger          *logging.Logger
	now             func() time.Time
}

func NewRatingService(
	rollingRepo rollingstats.Repository,
	ratingRepo rating.Repository,
	playerRepo player.Repository,
	competitionRepo competition.Repository,
	cfg RatingConfig,
	logger *logging.Logger,
) *RatingService {
	defaults := DefaultRatingConfig()
	if cfg.PowerExponent <= 0 || cfg.PowerExponent >= 1 {
		cfg.PowerExponent = defaults.PowerExponent
	}
	if cfg.StrengthTopN <= 0 {
		cfg.StrengthTopN = defaults.StrengthTopN
	}
	if cfg.WriteChunkSize <= 0 {
		cfg.WriteChunkSize = defaults.WriteChunkSize
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &RatingService{
		rollingRepo:     rollingRepo,
		ratingRepo:      ratingRepo,
		playerRepo:      playerRepo,
		competitionRepo: competitionRepo,
		cfg:             cfg,
		logger:          logger,
		now:             time.Now,
	}
}

// RecomputeCompetition rebuilds every player rating in one competition, one
// position group at a time, then refreshes the competition strength. Cohorts
// never cross position groups: a goalkeeper's distributions are meaningless
// next to a striker's.
func (s *RatingService) RecomputeCompetition(ctx context.Context, competitionID string) (rating.CompetitionRating, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RatingService.RecomputeCompetition")
	defer span.End()

	competitionID = strings.TrimSpace(competitionID)
	if competitionID == "" {
		return rating.CompetitionRating{}, fmt.Errorf("%w: competition id is required", ErrInvalidInput)
	}

	comp, exists, err := s.competitionRepo.GetByID(ctx, competitionID)
	if err != nil {
		return rating.CompetitionRating{}, fmt.Errorf("get competition: %w", err)
	}
	if !exists {
		return rating.CompetitionRating{}, fmt.Errorf("%w: competition=%s", ErrNotFound, competitionID)
	}

	statsRows, err := s.rollingRepo.ListByCompetition(ctx, competitionID)
	if err != nil {
		return rating.CompetitionRating{}, fmt.Errorf("list rolling stats competition=%s: %w", competitionID, err)
	}

	cohorts, err := s.groupCohorts(ctx, statsRows)
	if err != nil {
		return rating.CompetitionRating{}, err
	}

	computedAt := s.now().UTC()
	tier := rating.Tier(comp.Tier)
	ratings := make([]rating.PlayerRating, 0, len(statsRows))
	for group, cohort := range cohorts {
		profile, err := s.profileForGroup(ctx, group)
		if err != nil {
			return rating.CompetitionRating{}, err
		}

		rolling := make(map[string]rollingstats.FeatureVector, len(cohort))
		shortForm := make(map[string]rollingstats.FeatureVector, len(cohort))
		for _, row := range cohort {
			rolling[row.PlayerID] = row.Rolling.Features
			shortForm[row.PlayerID] = row.Last5.Features
		}

		rating365 := s.scoreCohort(profile, rolling)
		ratingLast5 := s.scoreCohort(profile, shortForm)

		for _, row := range cohort {
			r365 := rating365[row.PlayerID]
			level := clampRating(int(math.Round(float64(r365) * rating.FactorForTier(tier))))
			ratings = append(ratings, rating.PlayerRating{
				PlayerID:      row.PlayerID,
				CompetitionID: competitionID,
				PositionGroup: group,
				Rating365:     r365,
				RatingLast5:   ratingLast5[row.PlayerID],
				LevelScore:    level,
				Tier:          tier,
				ComputedAt:    computedAt,
			})
		}
	}

	for start := 0; start < len(ratings); start += s.cfg.WriteChunkSize {
		end := start + s.cfg.WriteChunkSize
		if end > len(ratings) {
			end = len(ratings)
		}
		if err := s.ratingRepo.UpsertPlayerRatings(ctx, ratings[start:end]); err != nil {
			return rating.CompetitionRating{}, fmt.Errorf("upsert player ratings competition=%s: %w", competitionID, err)
		}
	}

	levelScores := make([]int, 0, len(ratings))
	for _, item := range ratings {
		levelScores = append(levelScores, item.LevelScore)
	}
	compRating := rating.CompetitionRating{
		CompetitionID: competitionID,
		Strength:      CompetitionStrength(levelScores, s.cfg.StrengthTopN),
		RatedPlayers:  len(ratings),
		ComputedAt:    computedAt,
	}
	compRating.Tier = TierForStrength(compRating.Strength)
	if err := s.ratingRepo.UpsertCompetitionRating(ctx, compRating); err != nil {
		return rating.CompetitionRating{}, fmt.Errorf("upsert competition rating competition=%s: %w", competitionID, err)
	}

	s.logger.InfoContext(ctx, "competition ratings recomputed",
		"competition_id", competitionID,
		"rated_players", len(ratings),
		"strength", compRating.Strength,
	)

	return compRating, nil
}

// ListRatingsByPlayer returns one player's rating rows across competitions.
func (s *RatingService) ListRatingsByPlayer(ctx context.Context, playerID string) ([]rating.PlayerRating, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RatingService.ListRatingsByPlayer")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	_, exists, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
	}

	items, err := s.ratingRepo.ListRatingsByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("list ratings player=%s: %w", playerID, err)
	}
	return items, nil
}

// CompetitionBoard couples the competition aggregate with its rated players.
type CompetitionBoard struct {
	Competition rating.CompetitionRating
	Players     []rating.PlayerRating
}

// GetCompetitionBoard returns the latest computed strength and player ratings
// for one competition. A competition that was never recomputed is not found.
func (s *RatingService) GetCompetitionBoard(ctx context.Context, competitionID string) (CompetitionBoard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RatingService.GetCompetitionBoard")
	defer span.End()

	competitionID = strings.TrimSpace(competitionID)
	if competitionID == "" {
		return CompetitionBoard{}, fmt.Errorf("%w: competition id is required", ErrInvalidInput)
	}

	compRating, exists, err := s.ratingRepo.GetCompetitionRating(ctx, competitionID)
	if err != nil {
		return CompetitionBoard{}, fmt.Errorf("get competition rating: %w", err)
	}
	if !exists {
		return CompetitionBoard{}, fmt.Errorf("%w: competition rating competition=%s", ErrNotFound, competitionID)
	}

	players, err := s.ratingRepo.ListPlayerRatings(ctx, competitionID)
	if err != nil {
		return CompetitionBoard{}, fmt.Errorf("list player ratings competition=%s: %w", competitionID, err)
	}

	return CompetitionBoard{Competition: compRating, Players: players}, nil
}

func (s *RatingService) groupCohorts(ctx context.Context, rows []rollingstats.RollingStats) (map[player.Group][]rollingstats.RollingStats, error) {
	out := make(map[player.Group][]rollingstats.RollingStats, len(player.AllGroups))
	for _, row := range rows {
		item, exists, err := s.playerRepo.GetByID(ctx, row.PlayerID)
		if err != nil {
			return nil, fmt.Errorf("get player for cohort grouping player=%s: %w", row.PlayerID, err)
		}
		if !exists {
			continue
		}
		out[item.PositionGroup] = append(out[item.PositionGroup], row)
	}
	return out, nil
}

func (s *RatingService) profileForGroup(ctx context.Context, group player.Group) (rating.Profile, error) {
	stored, exists, err := s.ratingRepo.GetProfile(ctx, group)
	if err != nil {
		return rating.Profile{}, fmt.Errorf("get rating profile group=%s: %w", group, err)
	}
	if exists {
		return stored, nil
	}
	return rating.DefaultProfiles()[group], nil
}

// scoreCohort computes the 0-100 rating for every player in one position
// group cohort.
func (s *RatingService) scoreCohort(profile rating.Profile, cohort map[string]rollingstats.FeatureVector) map[string]int {
	distributions := BuildDistributions(cohort)
	out := make(map[string]int, len(cohort))
	for playerID, vector := range cohort {
		raw := RawScore(profile, vector, distributions)
		out[playerID] = s.ratingFromRaw(raw)
	}
	return out
}

func (s *RatingService) ratingFromRaw(raw float64) int {
	return clampRating(int(math.Round(100 * math.Pow(raw, s.cfg.PowerExponent))))
}

func clampRating(value int) int {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

// BuildDistributions collects, per metric, the sorted values present in the
// cohort. Missing values never enter a distribution.
func BuildDistributions(cohort map[string]rollingstats.FeatureVector) map[rollingstats.Metric][]float64 {
	out := make(map[rollingstats.Metric][]float64)
	for _, vector := range cohort {
		for metric, value := range vector {
			out[metric] = append(out[metric], value)
		}
	}
	for metric := range out {
		sort.Float64s(out[metric])
	}
	return out
}

// PercentileRank is the mid-rank percentile of value within a sorted
// distribution: (strictly below + half of equals) / size. Ties and edge
// values land at their rank midpoint instead of being biased to 0 or 1.
func PercentileRank(sorted []float64, value float64) float64 {
	if len(sorted) == 0 {
		return 0.5
	}
	below := sort.SearchFloat64s(sorted, value)
	upper := sort.SearchFloat64s(sorted, math.Nextafter(value, math.MaxFloat64))
	equal := upper - below
	return (float64(below) + 0.5*float64(equal)) / float64(len(sorted))
}

// RawScore is the weight-normalized sum of per-feature percentiles over the
// intersection of profile weights and the player's vector. Invert-flagged
// metrics reflect their percentile. No usable features defaults to the
// cohort midpoint so missing data is not punished.
func RawScore(profile rating.Profile, vector rollingstats.FeatureVector, distributions map[rollingstats.Metric][]float64) float64 {
	var weighted, totalWeight float64
	for metric, weight := range profile.Weights {
		if weight <= 0 {
			continue
		}
		value, present := vector[metric]
		if !present {
			continue
		}
		p := PercentileRank(distributions[metric], value)
		if profile.Invert[metric] {
			p = 1 - p
		}
		weighted += weight * p
		totalWeight += weight
	}

	if totalWeight == 0 {
		return 0.5
	}
	return weighted / totalWeight
}

// CompetitionStrength averages the top n level scores, rounded. Fewer than n
// players averages what exists; an empty cohort scores 0.
func CompetitionStrength(levelScores []int, n int) int {
	if len(levelScores) == 0 {
		return 0
	}
	sorted := make([]int, len(levelScores))
	copy(sorted, levelScores)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	var sum int
	for _, score := range sorted {
		sum += score
	}
	return int(math.Round(float64(sum) / float64(len(sorted))))
}

// TierForStrength brackets a strength score into the 1..6 tier scale.
func TierForStrength(strength int) rating.Tier {
	switch {
	case strength >= 85:
		return rating.TierElite
	case strength >= 75:
		return rating.TierStrong
	case strength >= 65:
		return rating.TierSolid
	case strength >= 55:
		return rating.TierAverage
	case strength >= 45:
		return rating.TierModest
	default:
		return rating.TierDevelope
	}
}
