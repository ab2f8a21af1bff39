package rating

import (
	"github.com/scoutline/scoutline/internal/domain/player"
	"github.com/scoutline/scoutline/internal/domain/rollingstats"
)

// DefaultProfiles returns the built-in weight tables per position group.
// Stored profiles override these; the shapes here are the shipped baseline.
func DefaultProfiles() map[player.Group]Profile {
	return map[player.Group]Profile{
		player.GroupGoalkeeper: {
			PositionGroup: player.GroupGoalkeeper,
			Weights: map[rollingstats.Metric]float64{
				rollingstats.MetricSaveRate:           3.0,
				rollingstats.MetricSavesPer90:         2.0,
				rollingstats.MetricCleanSheetRate:     2.5,
				rollingstats.MetricGoalsConcededPer90: 2.0,
				rollingstats.MetricPassCompletion:     1.0,
			},
			Invert: map[rollingstats.Metric]bool{
				rollingstats.MetricGoalsConcededPer90: true,
			},
		},
		player.GroupDefender: {
			PositionGroup: player.GroupDefender,
			Weights: map[rollingstats.Metric]float64{
				rollingstats.MetricTacklesPer90:       2.0,
				rollingstats.MetricInterceptionsPer90: 2.0,
				rollingstats.MetricClearancesPer90:    1.5,
				rollingstats.MetricDuelWinRate:        2.0,
				rollingstats.MetricAerialWinRate:      2.0,
				rollingstats.MetricCleanSheetRate:     1.5,
				rollingstats.MetricPassCompletion:     1.0,
				rollingstats.MetricCardsPer90:         1.0,
				rollingstats.MetricFoulsPer90:         0.5,
			},
			Invert: map[rollingstats.Metric]bool{
				rollingstats.MetricCardsPer90: true,
				rollingstats.MetricFoulsPer90: true,
			},
		},
		player.GroupMidfielder: {
			PositionGroup: player.GroupMidfielder,
			Weights: map[rollingstats.Metric]float64{
				rollingstats.MetricPassesPer90:        1.5,
				rollingstats.MetricPassCompletion:     2.0,
				rollingstats.MetricKeyPassesPer90:     2.5,
				rollingstats.MetricAssistsPer90:       2.0,
				rollingstats.MetricGoalsPer90:         1.5,
				rollingstats.MetricTacklesPer90:       1.0,
				rollingstats.MetricInterceptionsPer90: 1.0,
				rollingstats.MetricDuelWinRate:        1.0,
				rollingstats.MetricDribbleSuccess:     1.0,
			},
		},
		player.GroupAttacker: {
			PositionGroup: player.GroupAttacker,
			Weights: map[rollingstats.Metric]float64{
				rollingstats.MetricGoalsPer90:     3.0,
				rollingstats.MetricAssistsPer90:   2.0,
				rollingstats.MetricShotsPer90:     1.0,
				rollingstats.MetricShotAccuracy:   1.5,
				rollingstats.MetricKeyPassesPer90: 1.5,
				rollingstats.MetricDribbleSuccess: 1.5,
				rollingstats.MetricDribblesPer90:  1.0,
				rollingstats.MetricAerialWinRate:  0.5,
			},
		},
	}
}
