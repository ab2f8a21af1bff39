package player

import (
	"context"
	"time"
)

// Repository describes canonical player persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, playerID string) (Player, bool, error)
	// FindByNormalizedName returns every player whose normalized name matches exactly.
	FindByNormalizedName(ctx context.Context, nameNormalized string) ([]Player, error)
	// ListByTeam and ListByCompetition scope fuzzy candidate searches.
	ListByTeam(ctx context.Context, teamID string) ([]Player, error)
	ListByCompetition(ctx context.Context, competitionID string) ([]Player, error)
	Upsert(ctx context.Context, item Player) error
	// ListMissingIdentity pages players without an external identity for the
	// given source, ordered by id, starting strictly after afterID.
	ListMissingIdentity(ctx context.Context, source string, afterID string, limit int) ([]Player, error)
}

// BirthDatesEqual compares two optional birth dates on the calendar day only.
func BirthDatesEqual(left, right *time.Time) bool {
	if left == nil || right == nil {
		return false
	}
	ly, lm, ld := left.UTC().Date()
	ry, rm, rd := right.UTC().Date()
	return ly == ry && lm == rm && ld == rd
}
