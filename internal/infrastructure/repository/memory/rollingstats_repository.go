package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/scoutline/scoutline/internal/domain/rollingstats"
)

type rollingKey struct {
	playerID      string
	competitionID string
}

type RollingStatsRepository struct {
	mu    sync.RWMutex
	items map[rollingKey]rollingstats.RollingStats
}

func NewRollingStatsRepository() *RollingStatsRepository {
	return &RollingStatsRepository{items: make(map[rollingKey]rollingstats.RollingStats)}
}

func (r *RollingStatsRepository) Get(_ context.Context, playerID, competitionID string) (rollingstats.RollingStats, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[rollingKey{playerID: playerID, competitionID: competitionID}]
	if !ok {
		return rollingstats.RollingStats{}, false, nil
	}

	return cloneRollingStats(item), true, nil
}

func (r *RollingStatsRepository) Upsert(_ context.Context, items []rollingstats.RollingStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		r.items[rollingKey{playerID: item.PlayerID, competitionID: item.CompetitionID}] = cloneRollingStats(item)
	}

	return nil
}

func (r *RollingStatsRepository) ListByCompetition(_ context.Context, competitionID string) ([]rollingstats.RollingStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []rollingstats.RollingStats
	for key, item := range r.items {
		if key.competitionID == competitionID {
			out = append(out, cloneRollingStats(item))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })

	return out, nil
}

func cloneRollingStats(item rollingstats.RollingStats) rollingstats.RollingStats {
	out := item
	out.Rolling.Features = cloneFeatures(item.Rolling.Features)
	out.Last5.Features = cloneFeatures(item.Last5.Features)

	return out
}

func cloneFeatures(features rollingstats.FeatureVector) rollingstats.FeatureVector {
	if features == nil {
		return nil
	}
	out := make(rollingstats.FeatureVector, len(features))
	for metric, value := range features {
		out[metric] = value
	}

	return out
}
