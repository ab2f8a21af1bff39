package rollingstats

import (
	"fmt"
	"time"
)

// Metric is the closed set of feature keys produced by aggregation and
// consumed by rating profiles. Weight tables are data, keys are not.
type Metric string

const (
	MetricGoalsPer90         Metric = "goals_per90"
	MetricAssistsPer90       Metric = "assists_per90"
	MetricShotsPer90         Metric = "shots_per90"
	MetricKeyPassesPer90     Metric = "key_passes_per90"
	MetricPassesPer90        Metric = "passes_per90"
	MetricTacklesPer90       Metric = "tackles_per90"
	MetricInterceptionsPer90 Metric = "interceptions_per90"
	MetricClearancesPer90    Metric = "clearances_per90"
	MetricDribblesPer90      Metric = "dribbles_per90"
	MetricFoulsPer90         Metric = "fouls_per90"
	MetricSavesPer90         Metric = "saves_per90"
	MetricCardsPer90         Metric = "cards_per90"
	MetricPassCompletion     Metric = "pass_completion"
	MetricDuelWinRate        Metric = "duel_win_rate"
	MetricAerialWinRate      Metric = "aerial_win_rate"
	MetricDribbleSuccess     Metric = "dribble_success"
	MetricShotAccuracy       Metric = "shot_accuracy"
	MetricCleanSheetRate     Metric = "clean_sheet_rate"
	MetricSaveRate           Metric = "save_rate"
	MetricGoalsConcededPer90 Metric = "goals_conceded_per90"
)

// AllMetrics enumerates every known feature key.
var AllMetrics = []Metric{
	MetricGoalsPer90,
	MetricAssistsPer90,
	MetricShotsPer90,
	MetricKeyPassesPer90,
	MetricPassesPer90,
	MetricTacklesPer90,
	MetricInterceptionsPer90,
	MetricClearancesPer90,
	MetricDribblesPer90,
	MetricFoulsPer90,
	MetricSavesPer90,
	MetricCardsPer90,
	MetricPassCompletion,
	MetricDuelWinRate,
	MetricAerialWinRate,
	MetricDribbleSuccess,
	MetricShotAccuracy,
	MetricCleanSheetRate,
	MetricSaveRate,
	MetricGoalsConcededPer90,
}

func IsKnownMetric(m Metric) bool {
	for _, known := range AllMetrics {
		if m == known {
			return true
		}
	}
	return false
}

// FeatureVector holds only features that could actually be computed; a
// missing key means "no data", never zero.
type FeatureVector map[Metric]float64

// Totals are raw sums over the filtered appearance set.
type Totals struct {
	Appearances       int
	Minutes           int
	Goals             int
	Assists           int
	Shots             int
	ShotsOnTarget     int
	Passes            int
	PassesCompleted   int
	KeyPasses         int
	Tackles           int
	Interceptions     int
	Clearances        int
	Duels             int
	DuelsWon          int
	Aerials           int
	AerialsWon        int
	Dribbles          int
	DribblesCompleted int
	FoulsCommitted    int
	FoulsDrawn        int
	YellowCards       int
	RedCards          int
	Saves             int
	GoalsConceded     int
	CleanSheets       int
}

// Window is an aggregate over one trailing date range.
type Window struct {
	From     time.Time
	To       time.Time
	Totals   Totals
	Features FeatureVector
}

// RollingStats is the derived aggregate per (player, competition): a long
// rolling window plus a short-form last-5 window. Recomputed wholesale.
type RollingStats struct {
	PlayerID      string
	CompetitionID string
	Rolling       Window
	Last5         Window
	ComputedAt    time.Time
}

func (r RollingStats) Validate() error {
	if r.PlayerID == "" {
		return fmt.Errorf("rolling stats player id is required")
	}
	if r.CompetitionID == "" {
		return fmt.Errorf("rolling stats competition id is required")
	}
	return nil
}
