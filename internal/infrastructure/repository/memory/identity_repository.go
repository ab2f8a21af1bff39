package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/scoutline/scoutline/internal/domain/identity"
)

type identityKey struct {
	source   string
	sourceID string
}

type IdentityRepository struct {
	mu       sync.RWMutex
	bySource map[identityKey]identity.ExternalIdentity
	byPlayer map[string]map[string]identity.ExternalIdentity
}

func NewIdentityRepository() *IdentityRepository {
	return &IdentityRepository{
		bySource: make(map[identityKey]identity.ExternalIdentity),
		byPlayer: make(map[string]map[string]identity.ExternalIdentity),
	}
}

func (r *IdentityRepository) GetBySourceID(_ context.Context, source, sourceID string) (identity.ExternalIdentity, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.bySource[identityKey{source: source, sourceID: sourceID}]
	if !ok {
		return identity.ExternalIdentity{}, false, nil
	}

	return item, true, nil
}

func (r *IdentityRepository) GetByPlayer(_ context.Context, source, playerID string) (identity.ExternalIdentity, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byPlayer[source][playerID]
	if !ok {
		return identity.ExternalIdentity{}, false, nil
	}

	return item, true, nil
}

func (r *IdentityRepository) Upsert(_ context.Context, item identity.ExternalIdentity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	key := identityKey{source: item.Source, sourceID: item.SourceID}
	if existing, ok := r.bySource[key]; ok {
		item.CreatedAt = existing.CreatedAt
	} else {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	r.bySource[key] = item
	if _, ok := r.byPlayer[item.Source]; !ok {
		r.byPlayer[item.Source] = make(map[string]identity.ExternalIdentity)
	}
	r.byPlayer[item.Source][item.PlayerID] = item

	return nil
}

type ReviewRepository struct {
	mu    sync.RWMutex
	items map[identityKey]identity.ReviewItem
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{items: make(map[identityKey]identity.ReviewItem)}
}

func (r *ReviewRepository) Get(_ context.Context, source, sourceID string) (identity.ReviewItem, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[identityKey{source: source, sourceID: sourceID}]
	if !ok {
		return identity.ReviewItem{}, false, nil
	}

	return cloneReviewItem(item), true, nil
}

func (r *ReviewRepository) Enqueue(_ context.Context, item identity.ReviewItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	key := identityKey{source: item.Source, sourceID: item.SourceID}
	if existing, ok := r.items[key]; ok {
		item.CreatedAt = existing.CreatedAt
	} else {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	r.items[key] = cloneReviewItem(item)

	return nil
}

func (r *ReviewRepository) ListPending(_ context.Context, limit int) ([]identity.ReviewItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []identity.ReviewItem
	for _, item := range r.items {
		if item.Status == identity.ReviewStatusPending {
			out = append(out, cloneReviewItem(item))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].SourceID < out[j].SourceID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (r *ReviewRepository) UpdateStatus(_ context.Context, source, sourceID string, status identity.ReviewStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := identityKey{source: source, sourceID: sourceID}
	item, ok := r.items[key]
	if !ok {
		return nil
	}
	item.Status = status
	item.UpdatedAt = time.Now().UTC()
	r.items[key] = item

	return nil
}

func cloneReviewItem(item identity.ReviewItem) identity.ReviewItem {
	out := item
	out.Candidates = append([]identity.ReviewCandidate(nil), item.Candidates...)

	return out
}
