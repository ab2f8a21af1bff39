package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/scoutline/scoutline/internal/domain/competition"
	"github.com/scoutline/scoutline/internal/domain/player"
	"github.com/scoutline/scoutline/internal/domain/rating"
	"github.com/scoutline/scoutline/internal/domain/rollingstats"
	"github.com/scoutline/scoutline/internal/infrastructure/repository/memory"
)

func TestPercentileRank(t *testing.T) {
	t.Parallel()

	t.Run("mid-rank over distinct values", func(t *testing.T) {
		sorted := []float64{1, 2, 3, 4}

		// 2 has one value below and itself equal: (1 + 0.5) / 4.
		if got := PercentileRank(sorted, 2); !almostEqual(got, 0.375) {
			t.Fatalf("unexpected percentile: got=%f want=0.375", got)
		}
		if got := PercentileRank(sorted, 4); !almostEqual(got, 0.875) {
			t.Fatalf("unexpected percentile: got=%f want=0.875", got)
		}
	})

	t.Run("ties share the rank midpoint", func(t *testing.T) {
		sorted := []float64{1, 2, 2, 2, 5}

		// 1 below, 3 equal: (1 + 1.5) / 5.
		if got := PercentileRank(sorted, 2); !almostEqual(got, 0.5) {
			t.Fatalf("unexpected tie percentile: got=%f want=0.5", got)
		}
	})

	t.Run("single-value distribution centers", func(t *testing.T) {
		if got := PercentileRank([]float64{7}, 7); !almostEqual(got, 0.5) {
			t.Fatalf("unexpected percentile: got=%f want=0.5", got)
		}
	})

	t.Run("empty distribution centers", func(t *testing.T) {
		if got := PercentileRank(nil, 3); !almostEqual(got, 0.5) {
			t.Fatalf("unexpected percentile: got=%f want=0.5", got)
		}
	})

	t.Run("monotonic and bounded", func(t *testing.T) {
		sorted := []float64{0.1, 0.4, 0.4, 0.9, 1.3, 2.2}
		prev := -1.0
		for _, v := range []float64{0, 0.1, 0.4, 0.9, 2.2, 5} {
			got := PercentileRank(sorted, v)
			if got < 0 || got > 1 {
				t.Fatalf("percentile out of bounds: %f", got)
			}
			if got < prev {
				t.Fatalf("percentile not monotonic at value=%f", v)
			}
			prev = got
		}
	})
}

func TestRawScore(t *testing.T) {
	t.Parallel()

	distributions := map[rollingstats.Metric][]float64{
		rollingstats.MetricGoalsPer90:         {0.1, 0.5, 0.9},
		rollingstats.MetricGoalsConcededPer90: {0.5, 1.0, 2.0},
	}

	t.Run("invert reflects the percentile", func(t *testing.T) {
		profile := rating.Profile{
			PositionGroup: player.GroupGoalkeeper,
			Weights:       map[rollingstats.Metric]float64{rollingstats.MetricGoalsConcededPer90: 1},
			Invert:        map[rollingstats.Metric]bool{rollingstats.MetricGoalsConcededPer90: true},
		}
		vector := rollingstats.FeatureVector{rollingstats.MetricGoalsConcededPer90: 2.0}

		// Worst concession rate percentile 5/6 reflects to 1/6.
		got := RawScore(profile, vector, distributions)
		if !almostEqual(got, 1.0/6.0) {
			t.Fatalf("unexpected inverted score: got=%f want=%f", got, 1.0/6.0)
		}
	})

	t.Run("missing features are skipped, not punished", func(t *testing.T) {
		profile := rating.Profile{
			PositionGroup: player.GroupAttacker,
			Weights: map[rollingstats.Metric]float64{
				rollingstats.MetricGoalsPer90: 2,
				rollingstats.MetricShotsPer90: 3,
			},
		}
		vector := rollingstats.FeatureVector{rollingstats.MetricGoalsPer90: 0.9}

		// Only goals contributes: percentile 5/6 at full effective weight.
		got := RawScore(profile, vector, distributions)
		if !almostEqual(got, 5.0/6.0) {
			t.Fatalf("unexpected score: got=%f want=%f", got, 5.0/6.0)
		}
	})

	t.Run("no usable features defaults to midpoint", func(t *testing.T) {
		profile := rating.Profile{
			PositionGroup: player.GroupAttacker,
			Weights:       map[rollingstats.Metric]float64{rollingstats.MetricShotsPer90: 1},
		}

		got := RawScore(profile, rollingstats.FeatureVector{}, distributions)
		if !almostEqual(got, 0.5) {
			t.Fatalf("unexpected default score: got=%f want=0.5", got)
		}
	})
}

func TestCompetitionStrength(t *testing.T) {
	t.Parallel()

	t.Run("averages only the top n", func(t *testing.T) {
		scores := []int{90, 80, 70, 10, 5}

		if got := CompetitionStrength(scores, 3); got != 80 {
			t.Fatalf("unexpected strength: got=%d want=80", got)
		}
	})

	t.Run("fewer players than n averages what exists", func(t *testing.T) {
		if got := CompetitionStrength([]int{60, 70}, 25); got != 65 {
			t.Fatalf("unexpected strength: got=%d want=65", got)
		}
	})

	t.Run("weak tail cannot drag the score once n is filled", func(t *testing.T) {
		base := []int{90, 88, 86}
		padded := append(append([]int{}, base...), 1, 2, 3)

		if CompetitionStrength(base, 3) != CompetitionStrength(padded, 3) {
			t.Fatal("scores outside the top n must not affect strength")
		}
	})

	t.Run("empty cohort scores zero", func(t *testing.T) {
		if got := CompetitionStrength(nil, 25); got != 0 {
			t.Fatalf("unexpected strength: got=%d want=0", got)
		}
	})
}

func TestTierForStrength(t *testing.T) {
	t.Parallel()

	cases := []struct {
		strength int
		want     rating.Tier
	}{
		{100, rating.TierElite},
		{85, rating.TierElite},
		{84, rating.TierStrong},
		{75, rating.TierStrong},
		{65, rating.TierSolid},
		{55, rating.TierAverage},
		{45, rating.TierModest},
		{44, rating.TierDevelope},
		{0, rating.TierDevelope},
	}
	for _, tc := range cases {
		if got := TierForStrength(tc.strength); got != tc.want {
			t.Fatalf("strength=%d: got=%d want=%d", tc.strength, got, tc.want)
		}
	}
}

func TestFactorForTier_Monotonic(t *testing.T) {
	t.Parallel()

	prev := 1.1
	for tier := rating.TierElite; tier <= rating.TierDevelope; tier++ {
		factor := rating.FactorForTier(tier)
		if factor >= prev {
			t.Fatalf("tier factors must decrease: tier=%d factor=%f", tier, factor)
		}
		prev = factor
	}
	if rating.FactorForTier(rating.Tier(99)) != rating.FactorForTier(rating.TierDevelope) {
		t.Fatal("out-of-range tier must use the bottom bracket")
	}
}

func TestRatingService_RecomputeCompetition(t *testing.T) {
	t.Parallel()

	identities := memory.NewIdentityRepository()
	striker := newTestPlayer("pl-striker", "Ace Striker", "team-1")
	poacher := newTestPlayer("pl-poacher", "Box Poacher", "team-2")
	keeper := newTestPlayer("pl-keeper", "Safe Hands", "team-1")
	keeper.Position = player.PositionGoalkeeper
	keeper.PositionGroup = player.GroupGoalkeeper
	players := memory.NewPlayerRepository([]player.Player{striker, poacher, keeper}, identities)

	competitions := memory.NewCompetitionRepository([]competition.Competition{
		{ID: "comp-1", Name: "Premier Division", Country: "NL", Tier: 2},
	})

	rolling := memory.NewRollingStatsRepository()
	seed := func(playerID string, goals float64) rollingstats.RollingStats {
		features := rollingstats.FeatureVector{rollingstats.MetricGoalsPer90: goals}
		return rollingstats.RollingStats{
			PlayerID:      playerID,
			CompetitionID: "comp-1",
			Rolling:       rollingstats.Window{Features: features},
			Last5:         rollingstats.Window{Features: features},
		}
	}
	if err := rolling.Upsert(context.Background(), []rollingstats.RollingStats{
		seed("pl-striker", 0.9),
		seed("pl-poacher", 0.2),
		seed("pl-keeper", 0),
	}); err != nil {
		t.Fatalf("seed rolling stats: %v", err)
	}

	ratings := memory.NewRatingRepository()
	svc := NewRatingService(rolling, ratings, players, competitions, DefaultRatingConfig(), nil)
	svc.now = func() time.Time { return time.Date(2026, time.August, 21, 0, 0, 0, 0, time.UTC) }

	got, err := svc.RecomputeCompetition(context.Background(), "comp-1")
	if err != nil {
		t.Fatalf("RecomputeCompetition error: %v", err)
	}

	if got.RatedPlayers != 3 {
		t.Fatalf("unexpected rated players: got=%d want=3", got.RatedPlayers)
	}

	strikerRating, found, err := ratings.GetPlayerRating(context.Background(), "pl-striker", "comp-1")
	if err != nil || !found {
		t.Fatalf("striker rating missing: found=%v err=%v", found, err)
	}
	poacherRating, _, _ := ratings.GetPlayerRating(context.Background(), "pl-poacher", "comp-1")
	if strikerRating.Rating365 <= poacherRating.Rating365 {
		t.Fatalf("cohort ordering broken: striker=%d poacher=%d", strikerRating.Rating365, poacherRating.Rating365)
	}
	if strikerRating.Rating365 < 0 || strikerRating.Rating365 > 100 {
		t.Fatalf("rating out of bounds: %d", strikerRating.Rating365)
	}
	if strikerRating.Tier != rating.TierStrong {
		t.Fatalf("unexpected tier: got=%d want=%d", strikerRating.Tier, rating.TierStrong)
	}
	// Tier 2 factor scales the level score below the within-cohort rating.
	if strikerRating.LevelScore >= strikerRating.Rating365 {
		t.Fatalf("level score must shrink under tier 2: level=%d rating=%d", strikerRating.LevelScore, strikerRating.Rating365)
	}

	// The keeper scores against the goalkeeper cohort of one, never against
	// the attackers.
	keeperRating, found, _ := ratings.GetPlayerRating(context.Background(), "pl-keeper", "comp-1")
	if !found {
		t.Fatal("keeper rating missing")
	}
	if keeperRating.PositionGroup != player.GroupGoalkeeper {
		t.Fatalf("unexpected keeper cohort: %s", keeperRating.PositionGroup)
	}

	stored, found, _ := ratings.GetCompetitionRating(context.Background(), "comp-1")
	if !found {
		t.Fatal("competition rating missing")
	}
	if stored.Strength != got.Strength {
		t.Fatalf("persisted strength mismatch: stored=%d returned=%d", stored.Strength, got.Strength)
	}
}

func TestRatingService_RecomputeCompetition_UnknownCompetition(t *testing.T) {
	t.Parallel()

	identities := memory.NewIdentityRepository()
	svc := NewRatingService(
		memory.NewRollingStatsRepository(),
		memory.NewRatingRepository(),
		memory.NewPlayerRepository(nil, identities),
		memory.NewCompetitionRepository(nil),
		DefaultRatingConfig(),
		nil,
	)

	if _, err := svc.RecomputeCompetition(context.Background(), "comp-missing"); err == nil {
		t.Fatal("expected not-found error")
	}
}
