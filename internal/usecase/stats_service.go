package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/scoutline/scoutline/internal/domain/appearance"
	"github.com/scoutline/scoutline/internal/domain/rollingstats"
)

const (
	// RollingWindowDays is the long trailing window for rolling aggregates.
	RollingWindowDays = 365
	// ShortFormMatches is the "last N" short-form window size.
	ShortFormMatches = 5
)

type StatsService struct {
	appearanceRepo appearance.Repository
	rollingRepo    rollingstats.Repository
	now            func() time.Time
}

func NewStatsService(appearanceRepo appearance.Repository, rollingRepo rollingstats.Repository) *StatsService {
	return &StatsService{
		appearanceRepo: appearanceRepo,
		rollingRepo:    rollingRepo,
		now:            time.Now,
	}
}

// ComputeRolling rebuilds the (player, competition) aggregate from scratch:
// a 365-day window plus the last-5 short form. Nothing is patched
// incrementally.
func (s *StatsService) ComputeRolling(ctx context.Context, playerID, competitionID string) (rollingstats.RollingStats, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsService.ComputeRolling")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	competitionID = strings.TrimSpace(competitionID)
	if playerID == "" || competitionID == "" {
		return rollingstats.RollingStats{}, fmt.Errorf("%w: player id and competition id are required", ErrInvalidInput)
	}

	to := s.now().UTC()
	from := to.AddDate(0, 0, -RollingWindowDays)

	windowed, err := s.appearanceRepo.ListByPlayerAndRange(ctx, playerID, competitionID, from, to)
	if err != nil {
		return rollingstats.RollingStats{}, fmt.Errorf("list appearances player=%s competition=%s: %w", playerID, competitionID, err)
	}
	all, err := s.appearanceRepo.ListByPlayer(ctx, playerID, competitionID)
	if err != nil {
		return rollingstats.RollingStats{}, fmt.Errorf("list career appearances player=%s competition=%s: %w", playerID, competitionID, err)
	}

	item := rollingstats.RollingStats{
		PlayerID:      playerID,
		CompetitionID: competitionID,
		Rolling:       BuildWindow(windowed, from, to),
		Last5:         LastNWindow(all, ShortFormMatches),
		ComputedAt:    to,
	}

	if err := s.rollingRepo.Upsert(ctx, []rollingstats.RollingStats{item}); err != nil {
		return rollingstats.RollingStats{}, fmt.Errorf("upsert rolling stats player=%s competition=%s: %w", playerID, competitionID, err)
	}

	return item, nil
}

// BuildWindow aggregates every appearance (assumed pre-filtered to the range)
// into totals plus per-90 and ratio features.
func BuildWindow(items []appearance.Appearance, from, to time.Time) rollingstats.Window {
	totals := SumTotals(items)
	return rollingstats.Window{
		From:     from,
		To:       to,
		Totals:   totals,
		Features: Features(totals),
	}
}

// LastNWindow sorts descending by match date, keeps the first n appearances
// with nonzero minutes, and reports the span of the selected set.
func LastNWindow(items []appearance.Appearance, n int) rollingstats.Window {
	sorted := make([]appearance.Appearance, 0, len(items))
	for _, item := range items {
		if item.Minutes > 0 {
			sorted = append(sorted, item)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MatchDate.After(sorted[j].MatchDate) })
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	window := rollingstats.Window{}
	if len(sorted) > 0 {
		window.To = sorted[0].MatchDate
		window.From = sorted[len(sorted)-1].MatchDate
	}
	window.Totals = SumTotals(sorted)
	window.Features = Features(window.Totals)
	return window
}

// SumTotals reduces appearances to raw totals. The clean-sheet counter
// increments once per qualifying appearance.
func SumTotals(items []appearance.Appearance) rollingstats.Totals {
	var t rollingstats.Totals
	for _, item := range items {
		t.Appearances++
		t.Minutes += item.Minutes
		t.Goals += item.Stats.Goals
		t.Assists += item.Stats.Assists
		t.Shots += item.Stats.Shots
		t.ShotsOnTarget += item.Stats.ShotsOnTarget
		t.Passes += item.Stats.Passes
		t.PassesCompleted += item.Stats.PassesCompleted
		t.KeyPasses += item.Stats.KeyPasses
		t.Tackles += item.Stats.Tackles
		t.Interceptions += item.Stats.Interceptions
		t.Clearances += item.Stats.Clearances
		t.Duels += item.Stats.Duels
		t.DuelsWon += item.Stats.DuelsWon
		t.Aerials += item.Stats.Aerials
		t.AerialsWon += item.Stats.AerialsWon
		t.Dribbles += item.Stats.Dribbles
		t.DribblesCompleted += item.Stats.DribblesCompleted
		t.FoulsCommitted += item.Stats.FoulsCommitted
		t.FoulsDrawn += item.Stats.FoulsDrawn
		t.YellowCards += item.Stats.YellowCards
		t.RedCards += item.Stats.RedCards
		t.Saves += item.Stats.Saves
		t.GoalsConceded += item.Stats.GoalsConceded
		if item.CleanSheet && item.Minutes > 0 {
			t.CleanSheets++
		}
	}
	return t
}

// Features derives per-90 rates and guarded ratio features from totals.
// Zero minutes yields no per-90 entries; every ratio with a zero denominator
// is omitted rather than emitted as NaN or Inf.
func Features(t rollingstats.Totals) rollingstats.FeatureVector {
	out := make(rollingstats.FeatureVector, len(rollingstats.AllMetrics))

	if t.Minutes > 0 {
		per90 := func(total int) float64 { return float64(total) * 90 / float64(t.Minutes) }
		out[rollingstats.MetricGoalsPer90] = per90(t.Goals)
		out[rollingstats.MetricAssistsPer90] = per90(t.Assists)
		out[rollingstats.MetricShotsPer90] = per90(t.Shots)
		out[rollingstats.MetricKeyPassesPer90] = per90(t.KeyPasses)
		out[rollingstats.MetricPassesPer90] = per90(t.Passes)
		out[rollingstats.MetricTacklesPer90] = per90(t.Tackles)
		out[rollingstats.MetricInterceptionsPer90] = per90(t.Interceptions)
		out[rollingstats.MetricClearancesPer90] = per90(t.Clearances)
		out[rollingstats.MetricDribblesPer90] = per90(t.Dribbles)
		out[rollingstats.MetricFoulsPer90] = per90(t.FoulsCommitted)
		out[rollingstats.MetricSavesPer90] = per90(t.Saves)
		out[rollingstats.MetricCardsPer90] = per90(t.YellowCards + t.RedCards)
		out[rollingstats.MetricGoalsConcededPer90] = per90(t.GoalsConceded)
	}

	ratio := func(metric rollingstats.Metric, num, den int) {
		if den > 0 {
			out[metric] = float64(num) / float64(den)
		}
	}
	ratio(rollingstats.MetricPassCompletion, t.PassesCompleted, t.Passes)
	ratio(rollingstats.MetricDuelWinRate, t.DuelsWon, t.Duels)
	ratio(rollingstats.MetricAerialWinRate, t.AerialsWon, t.Aerials)
	ratio(rollingstats.MetricDribbleSuccess, t.DribblesCompleted, t.Dribbles)
	ratio(rollingstats.MetricShotAccuracy, t.ShotsOnTarget, t.Shots)
	ratio(rollingstats.MetricCleanSheetRate, t.CleanSheets, t.Appearances)
	ratio(rollingstats.MetricSaveRate, t.Saves, t.Saves+t.GoalsConceded)

	return out
}
