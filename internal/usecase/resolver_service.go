package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/scoutline/scoutline/internal/domain/identity"
	"github.com/scoutline/scoutline/internal/domain/player"
	"github.com/scoutline/scoutline/internal/platform/normalize"
)

// ResolverConfig carries the matching heuristics. The defaults reproduce the
// tuned production values; change them deliberately, not casually.
type ResolverConfig struct {
	// ConfidenceThreshold is the minimum score an accepted candidate must reach.
	ConfidenceThreshold float64
	// AmbiguityMargin is the lead the top candidate must hold over the
	// runner-up; a smaller lead routes the record to review.
	AmbiguityMargin float64
	// MinCandidateScore discards candidates outright below this score.
	MinCandidateScore float64
	// TeamFuzzyCutoff / CompetitionFuzzyCutoff gate name similarity for the
	// scoped fuzzy stages.
	TeamFuzzyCutoff        float64
	CompetitionFuzzyCutoff float64
}

func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		ConfidenceThreshold:    0.92,
		AmbiguityMargin:        0.1,
		MinCandidateScore:      0.5,
		TeamFuzzyCutoff:        0.8,
		CompetitionFuzzyCutoff: 0.85,
	}
}

const (
	birthDateMatchBonus    = 0.05
	birthDateMismatchMalus = 0.20
	nationalityMatchBonus  = 0.02
)

// ExternalRecord is the provider-sourced view of one athlete handed to the
// resolver.
type ExternalRecord struct {
	Source      string
	SourceID    string
	Name        string
	TeamName    string
	BirthDate   *time.Time
	Nationality string
	Position    player.Position
}

// ResolveHints scope the candidate search. Empty hints skip the scoped stages.
type ResolveHints struct {
	TeamID        string
	CompetitionID string
}

type ResolveDecision string

const (
	DecisionMatched   ResolveDecision = "matched"
	DecisionNew       ResolveDecision = "new"
	DecisionAmbiguous ResolveDecision = "ambiguous"
)

// Candidate is one scored canonical player considered for the record.
type Candidate struct {
	Player player.Player
	Score  float64
}

// Resolution is the read-only outcome; persisting it is the caller's job.
type Resolution struct {
	Decision   ResolveDecision
	PlayerID   string
	Confidence float64
	Candidates []Candidate
}

// matcherStrategy returns scored candidates for one search stage. Stages run
// in order; the first stage returning any candidate wins.
type matcherStrategy struct {
	name string
	find func(ctx context.Context, record ExternalRecord, hints ResolveHints) ([]Candidate, error)
}

type ResolverService struct {
	playerRepo   player.Repository
	identityRepo identity.Repository
	cfg          ResolverConfig
}

func NewResolverService(playerRepo player.Repository, identityRepo identity.Repository, cfg ResolverConfig) *ResolverService {
	defaults := DefaultResolverConfig()
	if cfg.ConfidenceThreshold <= 0 || cfg.ConfidenceThreshold > 1 {
		cfg.ConfidenceThreshold = defaults.ConfidenceThreshold
	}
	if cfg.AmbiguityMargin <= 0 {
		cfg.AmbiguityMargin = defaults.AmbiguityMargin
	}
	if cfg.MinCandidateScore <= 0 {
		cfg.MinCandidateScore = defaults.MinCandidateScore
	}
	if cfg.TeamFuzzyCutoff <= 0 {
		cfg.TeamFuzzyCutoff = defaults.TeamFuzzyCutoff
	}
	if cfg.CompetitionFuzzyCutoff <= 0 {
		cfg.CompetitionFuzzyCutoff = defaults.CompetitionFuzzyCutoff
	}

	return &ResolverService{
		playerRepo:   playerRepo,
		identityRepo: identityRepo,
		cfg:          cfg,
	}
}

// Resolve maps an external record to a canonical player id, a scored set of
// candidates, or a new-entity decision. It never writes; the caller persists
// whatever the decision implies.
func (s *ResolverService) Resolve(ctx context.Context, record ExternalRecord, hints ResolveHints) (Resolution, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResolverService.Resolve")
	defer span.End()

	record.Source = strings.TrimSpace(record.Source)
	record.SourceID = strings.TrimSpace(record.SourceID)
	if record.Source == "" || record.SourceID == "" {
		return Resolution{}, fmt.Errorf("%w: source and source id are required", ErrInvalidInput)
	}
	if strings.TrimSpace(record.Name) == "" {
		return Resolution{}, fmt.Errorf("%w: record name is required", ErrInvalidInput)
	}

	// A known (source, source id) pair resolves identically every time.
	mapped, exists, err := s.identityRepo.GetBySourceID(ctx, record.Source, record.SourceID)
	if err != nil {
		return Resolution{}, fmt.Errorf("get external identity source=%s source_id=%s: %w", record.Source, record.SourceID, err)
	}
	if exists {
		return Resolution{Decision: DecisionMatched, PlayerID: mapped.PlayerID, Confidence: 1.0}, nil
	}

	candidates, err := s.findCandidates(ctx, record, hints)
	if err != nil {
		return Resolution{}, err
	}
	if len(candidates) == 0 {
		return Resolution{Decision: DecisionNew}, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Score > candidates[j].Score })

	top := candidates[0]
	if top.Score < s.cfg.ConfidenceThreshold {
		return Resolution{Decision: DecisionAmbiguous, Candidates: candidates}, nil
	}
	if len(candidates) > 1 {
		runnerUp := candidates[1]
		if top.Score-runnerUp.Score <= s.cfg.AmbiguityMargin {
			return Resolution{Decision: DecisionAmbiguous, Candidates: candidates}, nil
		}
	}

	return Resolution{
		Decision:   DecisionMatched,
		PlayerID:   top.Player.ID,
		Confidence: top.Score,
		Candidates: candidates,
	}, nil
}

func (s *ResolverService) findCandidates(ctx context.Context, record ExternalRecord, hints ResolveHints) ([]Candidate, error) {
	strategies := []matcherStrategy{
		{name: "exact-name", find: s.findByExactName},
		{name: "team-fuzzy", find: s.findByTeamFuzzy},
		{name: "competition-fuzzy", find: s.findByCompetitionFuzzy},
	}

	for _, strategy := range strategies {
		found, err := strategy.find(ctx, record, hints)
		if err != nil {
			return nil, fmt.Errorf("candidate search stage=%s: %w", strategy.name, err)
		}
		if len(found) > 0 {
			return found, nil
		}
	}

	return nil, nil
}

func (s *ResolverService) findByExactName(ctx context.Context, record ExternalRecord, _ ResolveHints) ([]Candidate, error) {
	matches, err := s.playerRepo.FindByNormalizedName(ctx, normalize.Name(record.Name))
	if err != nil {
		return nil, fmt.Errorf("find by normalized name: %w", err)
	}
	return s.scoreCandidates(record, matches, 0), nil
}

func (s *ResolverService) findByTeamFuzzy(ctx context.Context, record ExternalRecord, hints ResolveHints) ([]Candidate, error) {
	if strings.TrimSpace(hints.TeamID) == "" {
		return nil, nil
	}
	pool, err := s.playerRepo.ListByTeam(ctx, hints.TeamID)
	if err != nil {
		return nil, fmt.Errorf("list players by team: %w", err)
	}
	return s.scoreCandidates(record, pool, s.cfg.TeamFuzzyCutoff), nil
}

func (s *ResolverService) findByCompetitionFuzzy(ctx context.Context, record ExternalRecord, hints ResolveHints) ([]Candidate, error) {
	if strings.TrimSpace(hints.CompetitionID) == "" {
		return nil, nil
	}
	pool, err := s.playerRepo.ListByCompetition(ctx, hints.CompetitionID)
	if err != nil {
		return nil, fmt.Errorf("list players by competition: %w", err)
	}
	return s.scoreCandidates(record, pool, s.cfg.CompetitionFuzzyCutoff), nil
}

// scoreCandidates applies the shared scoring rule. fuzzyCutoff == 0 means the
// pool is already an exact-name match set.
func (s *ResolverService) scoreCandidates(record ExternalRecord, pool []player.Player, fuzzyCutoff float64) []Candidate {
	out := make([]Candidate, 0, len(pool))
	recordNorm := normalize.Name(record.Name)

	for _, item := range pool {
		var base float64
		if item.NameNormalized == recordNorm {
			base = 1.0
		} else {
			if fuzzyCutoff <= 0 {
				continue
			}
			similarity := normalize.Similarity(record.Name, item.Name)
			if similarity < fuzzyCutoff {
				continue
			}
			base = similarity
		}

		score := base
		if record.BirthDate != nil && item.BirthDate != nil {
			if player.BirthDatesEqual(record.BirthDate, item.BirthDate) {
				score += birthDateMatchBonus
			} else {
				// A different birth date is strong negative evidence, but
				// providers get dates wrong often enough that it must not
				// disqualify on its own.
				score -= birthDateMismatchMalus
			}
		}
		if record.Nationality != "" && item.Nationality != "" &&
			strings.EqualFold(strings.TrimSpace(record.Nationality), strings.TrimSpace(item.Nationality)) {
			score += nationalityMatchBonus
		}

		if score > 1 {
			score = 1
		}
		if score < s.cfg.MinCandidateScore {
			continue
		}
		out = append(out, Candidate{Player: item, Score: score})
	}

	return out
}
