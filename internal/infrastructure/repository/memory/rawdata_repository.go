package memory

import (
	"context"
	"sync"

	"github.com/scoutline/scoutline/internal/domain/rawdata"
)

type rawDataKey struct {
	source     string
	entityType string
	entityKey  string
}

type RawDataRepository struct {
	mu    sync.RWMutex
	items map[rawDataKey]rawdata.Payload
}

func NewRawDataRepository() *RawDataRepository {
	return &RawDataRepository{items: make(map[rawDataKey]rawdata.Payload)}
}

func (r *RawDataRepository) UpsertMany(_ context.Context, items []rawdata.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		key := rawDataKey{source: item.Source, entityType: item.EntityType, entityKey: item.EntityKey}
		r.items[key] = item
	}

	return nil
}

// Count reports stored payloads, used by tests to assert audit capture.
func (r *RawDataRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}
