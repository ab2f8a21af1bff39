package memory

import (
	"context"
	"sync"

	"github.com/scoutline/scoutline/internal/domain/enrichment"
)

type EnrichmentRunRepository struct {
	mu             sync.RWMutex
	items          map[string]enrichment.Run
	latestBySource map[string]string
}

func NewEnrichmentRunRepository() *EnrichmentRunRepository {
	return &EnrichmentRunRepository{
		items:          make(map[string]enrichment.Run),
		latestBySource: make(map[string]string),
	}
}

func (r *EnrichmentRunRepository) Create(_ context.Context, item enrichment.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = item
	r.latestBySource[item.Source] = item.ID

	return nil
}

func (r *EnrichmentRunRepository) Update(_ context.Context, item enrichment.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = item

	return nil
}

func (r *EnrichmentRunRepository) GetByID(_ context.Context, runID string) (enrichment.Run, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[runID]
	if !ok {
		return enrichment.Run{}, false, nil
	}

	return item, true, nil
}

func (r *EnrichmentRunRepository) GetLatestBySource(_ context.Context, source string) (enrichment.Run, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runID, ok := r.latestBySource[source]
	if !ok {
		return enrichment.Run{}, false, nil
	}
	item, ok := r.items[runID]
	if !ok {
		return enrichment.Run{}, false, nil
	}

	return item, true, nil
}
