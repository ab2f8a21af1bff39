package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/scoutline/scoutline/internal/domain/player"
	"github.com/scoutline/scoutline/internal/domain/profile"
)

type snapshotKey struct {
	playerID string
	source   string
}

type conflictKey struct {
	playerID string
	field    player.Field
	source   string
}

type ProfileRepository struct {
	mu        sync.RWMutex
	snapshots map[snapshotKey]profile.Snapshot
	conflicts map[conflictKey]profile.FieldConflict
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{
		snapshots: make(map[snapshotKey]profile.Snapshot),
		conflicts: make(map[conflictKey]profile.FieldConflict),
	}
}

func (r *ProfileRepository) GetSnapshot(_ context.Context, playerID, source string) (profile.Snapshot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.snapshots[snapshotKey{playerID: playerID, source: source}]
	if !ok {
		return profile.Snapshot{}, false, nil
	}

	return cloneSnapshot(item), true, nil
}

func (r *ProfileRepository) ReplaceSnapshot(_ context.Context, item profile.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshots[snapshotKey{playerID: item.PlayerID, source: item.Source}] = cloneSnapshot(item)

	return nil
}

func (r *ProfileRepository) UpsertConflict(_ context.Context, item profile.FieldConflict) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	key := conflictKey{playerID: item.PlayerID, field: item.Field, source: item.Source}
	if existing, ok := r.conflicts[key]; ok {
		item.CreatedAt = existing.CreatedAt
		// A re-observed disagreement never reopens what an operator settled.
		item.Resolved = existing.Resolved
	} else {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	r.conflicts[key] = item

	return nil
}

func (r *ProfileRepository) ListConflicts(_ context.Context, playerID string, onlyUnresolved bool) ([]profile.FieldConflict, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []profile.FieldConflict
	for _, item := range r.conflicts {
		if item.PlayerID != playerID {
			continue
		}
		if onlyUnresolved && item.Resolved {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Field == out[j].Field {
			return out[i].Source < out[j].Source
		}
		return out[i].Field < out[j].Field
	})

	return out, nil
}

func (r *ProfileRepository) ResolveConflict(_ context.Context, playerID string, field player.Field, source string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := conflictKey{playerID: playerID, field: field, source: source}
	item, ok := r.conflicts[key]
	if !ok {
		return nil
	}
	item.Resolved = true
	item.UpdatedAt = time.Now().UTC()
	r.conflicts[key] = item

	return nil
}

func cloneSnapshot(item profile.Snapshot) profile.Snapshot {
	out := item
	out.Raw = append([]byte(nil), item.Raw...)
	if item.Fields.BirthDate != nil {
		birthDate := *item.Fields.BirthDate
		out.Fields.BirthDate = &birthDate
	}

	return out
}
