package rating

import (
	"fmt"
	"time"

	"github.com/scoutline/scoutline/internal/domain/player"
	"github.com/scoutline/scoutline/internal/domain/rollingstats"
)

// Tier is a competition-strength bracket, 1 (elite) through 6.
type Tier int

const (
	TierElite    Tier = 1
	TierStrong   Tier = 2
	TierSolid    Tier = 3
	TierAverage  Tier = 4
	TierModest   Tier = 5
	TierDevelope Tier = 6
)

// tierFactors scale a within-cohort rating into a cross-league level score.
// Factors decrease monotonically from 1.0.
var tierFactors = map[Tier]float64{
	TierElite:    1.00,
	TierStrong:   0.92,
	TierSolid:    0.84,
	TierAverage:  0.75,
	TierModest:   0.66,
	TierDevelope: 0.55,
}

// FactorForTier returns the level-score multiplier; out-of-range tiers use
// the bottom bracket.
func FactorForTier(tier Tier) float64 {
	if factor, ok := tierFactors[tier]; ok {
		return factor
	}
	return tierFactors[TierDevelope]
}

// Profile is the per-position-group scoring definition: a weight per metric
// plus the set of metrics where a lower raw value is better. Swapping a
// profile changes scoring without a code change.
type Profile struct {
	PositionGroup player.Group
	Weights       map[rollingstats.Metric]float64
	Invert        map[rollingstats.Metric]bool
}

func (p Profile) Validate() error {
	if _, ok := player.AllGroups[p.PositionGroup]; !ok {
		return fmt.Errorf("invalid rating profile position group: %s", p.PositionGroup)
	}
	for metric, weight := range p.Weights {
		if !rollingstats.IsKnownMetric(metric) {
			return fmt.Errorf("unknown rating profile metric: %s", metric)
		}
		if weight < 0 {
			return fmt.Errorf("rating profile weight cannot be negative: %s", metric)
		}
	}
	for metric := range p.Invert {
		if !rollingstats.IsKnownMetric(metric) {
			return fmt.Errorf("unknown rating profile invert metric: %s", metric)
		}
	}
	return nil
}

// PlayerRating is the computed output per (player, competition).
type PlayerRating struct {
	PlayerID      string
	CompetitionID string
	PositionGroup player.Group
	Rating365     int
	RatingLast5   int
	LevelScore    int
	Tier          Tier
	ComputedAt    time.Time
}

// CompetitionRating is the league-strength output per competition.
type CompetitionRating struct {
	CompetitionID string
	Strength      int
	Tier          Tier
	RatedPlayers  int
	ComputedAt    time.Time
}
