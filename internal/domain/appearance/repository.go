package appearance

import (
	"context"
	"time"
)

// Repository describes appearance persistence needs from use cases.
type Repository interface {
	Upsert(ctx context.Context, items []Appearance) error
	// ListByPlayerAndRange returns appearances for one player in one
	// competition with match date in [from, to], any order.
	ListByPlayerAndRange(ctx context.Context, playerID, competitionID string, from, to time.Time) ([]Appearance, error)
	ListByPlayer(ctx context.Context, playerID, competitionID string) ([]Appearance, error)
	ListPlayerIDsByCompetition(ctx context.Context, competitionID string) ([]string, error)
}
