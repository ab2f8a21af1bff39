package profile

import (
	"context"

	"github.com/scoutline/scoutline/internal/domain/player"
)

// Repository describes provider profile persistence needs from use cases.
type Repository interface {
	GetSnapshot(ctx context.Context, playerID, source string) (Snapshot, bool, error)
	ReplaceSnapshot(ctx context.Context, item Snapshot) error
	// UpsertConflict is idempotent on (player, field, source); a repeated
	// disagreement refreshes the stored values without resurrecting the
	// resolved flag.
	UpsertConflict(ctx context.Context, item FieldConflict) error
	ListConflicts(ctx context.Context, playerID string, onlyUnresolved bool) ([]FieldConflict, error)
	ResolveConflict(ctx context.Context, playerID string, field player.Field, source string) error
}
