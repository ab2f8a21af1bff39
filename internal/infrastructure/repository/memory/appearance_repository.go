package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/scoutline/scoutline/internal/domain/appearance"
)

type appearanceKey struct {
	playerID string
	matchID  string
}

type AppearanceRepository struct {
	mu    sync.RWMutex
	items map[appearanceKey]appearance.Appearance
}

func NewAppearanceRepository(items []appearance.Appearance) *AppearanceRepository {
	repo := &AppearanceRepository{items: make(map[appearanceKey]appearance.Appearance, len(items))}
	for _, item := range items {
		repo.items[appearanceKey{playerID: item.PlayerID, matchID: item.MatchID}] = item
	}

	return repo
}

func (r *AppearanceRepository) Upsert(_ context.Context, items []appearance.Appearance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		r.items[appearanceKey{playerID: item.PlayerID, matchID: item.MatchID}] = item
	}

	return nil
}

func (r *AppearanceRepository) ListByPlayerAndRange(_ context.Context, playerID, competitionID string, from, to time.Time) ([]appearance.Appearance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []appearance.Appearance
	for _, item := range r.items {
		if item.PlayerID != playerID || item.CompetitionID != competitionID {
			continue
		}
		if item.MatchDate.Before(from) || item.MatchDate.After(to) {
			continue
		}
		out = append(out, item)
	}
	sortAppearances(out)

	return out, nil
}

func (r *AppearanceRepository) ListByPlayer(_ context.Context, playerID, competitionID string) ([]appearance.Appearance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []appearance.Appearance
	for _, item := range r.items {
		if item.PlayerID == playerID && item.CompetitionID == competitionID {
			out = append(out, item)
		}
	}
	sortAppearances(out)

	return out, nil
}

func (r *AppearanceRepository) ListPlayerIDsByCompetition(_ context.Context, competitionID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, item := range r.items {
		if item.CompetitionID == competitionID {
			seen[item.PlayerID] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)

	return out, nil
}

func sortAppearances(items []appearance.Appearance) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].MatchDate.Equal(items[j].MatchDate) {
			return items[i].MatchID < items[j].MatchID
		}
		return items[i].MatchDate.Before(items[j].MatchDate)
	})
}
