package enrichment

import "context"

// Repository describes run-record persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, item Run) error
	Update(ctx context.Context, item Run) error
	GetByID(ctx context.Context, runID string) (Run, bool, error)
	// GetLatestBySource returns the most recently started run for a source,
	// used to resume from its cursor.
	GetLatestBySource(ctx context.Context, source string) (Run, bool, error)
}
