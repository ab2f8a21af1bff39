package rating

import (
	"context"

	"github.com/scoutline/scoutline/internal/domain/player"
)

// Repository describes rating persistence needs from use cases.
type Repository interface {
	GetProfile(ctx context.Context, group player.Group) (Profile, bool, error)
	UpsertProfile(ctx context.Context, item Profile) error
	UpsertPlayerRatings(ctx context.Context, items []PlayerRating) error
	ListPlayerRatings(ctx context.Context, competitionID string) ([]PlayerRating, error)
	GetPlayerRating(ctx context.Context, playerID, competitionID string) (PlayerRating, bool, error)
	ListRatingsByPlayer(ctx context.Context, playerID string) ([]PlayerRating, error)
	UpsertCompetitionRating(ctx context.Context, item CompetitionRating) error
	GetCompetitionRating(ctx context.Context, competitionID string) (CompetitionRating, bool, error)
}
