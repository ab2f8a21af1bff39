package rollingstats

import "context"

// Repository describes rolling stats persistence needs from use cases.
type Repository interface {
	Get(ctx context.Context, playerID, competitionID string) (RollingStats, bool, error)
	Upsert(ctx context.Context, items []RollingStats) error
	ListByCompetition(ctx context.Context, competitionID string) ([]RollingStats, error)
}
