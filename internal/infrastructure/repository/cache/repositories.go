// Package cache wraps repositories with a read-through TTL cache. Only the
// operator read paths are cached; enrichment and recompute writes invalidate
// the affected keys so dashboards never serve ratings older than one TTL.
package cache

import (
	"context"

	"github.com/scoutline/scoutline/internal/domain/competition"
	"github.com/scoutline/scoutline/internal/domain/player"
	"github.com/scoutline/scoutline/internal/domain/rating"
	basecache "github.com/scoutline/scoutline/internal/platform/cache"
)

type RatingRepository struct {
	next  rating.Repository
	cache *basecache.Store
}

func NewRatingRepository(next rating.Repository, cache *basecache.Store) *RatingRepository {
	return &RatingRepository{next: next, cache: cache}
}

func (r *RatingRepository) GetProfile(ctx context.Context, group player.Group) (rating.Profile, bool, error) {
	key := "rating:profile:" + string(group)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetProfile(ctx, group)
		if err != nil {
			return nil, err
		}
		return cachedProfile{value: item, exists: exists}, nil
	})
	if err != nil {
		return rating.Profile{}, false, err
	}

	cached, _ := v.(cachedProfile)
	return cached.value, cached.exists, nil
}

func (r *RatingRepository) UpsertProfile(ctx context.Context, item rating.Profile) error {
	if err := r.next.UpsertProfile(ctx, item); err != nil {
		return err
	}
	r.cache.Delete(ctx, "rating:profile:"+string(item.PositionGroup))
	return nil
}

func (r *RatingRepository) UpsertPlayerRatings(ctx context.Context, items []rating.PlayerRating) error {
	if err := r.next.UpsertPlayerRatings(ctx, items); err != nil {
		return err
	}
	// A recompute batch touches many players across one competition; dropping
	// the whole player-rating keyspace is cheaper than per-key invalidation.
	r.cache.DeletePrefix(ctx, "rating:player:")
	r.cache.DeletePrefix(ctx, "rating:board:")
	return nil
}

func (r *RatingRepository) ListPlayerRatings(ctx context.Context, competitionID string) ([]rating.PlayerRating, error) {
	key := "rating:board:" + competitionID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListPlayerRatings(ctx, competitionID)
		if err != nil {
			return nil, err
		}
		return append([]rating.PlayerRating(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]rating.PlayerRating)
	return append([]rating.PlayerRating(nil), items...), nil
}

func (r *RatingRepository) GetPlayerRating(ctx context.Context, playerID, competitionID string) (rating.PlayerRating, bool, error) {
	key := "rating:player:" + playerID + ":" + competitionID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetPlayerRating(ctx, playerID, competitionID)
		if err != nil {
			return nil, err
		}
		return cachedPlayerRating{value: item, exists: exists}, nil
	})
	if err != nil {
		return rating.PlayerRating{}, false, err
	}

	cached, _ := v.(cachedPlayerRating)
	return cached.value, cached.exists, nil
}

func (r *RatingRepository) ListRatingsByPlayer(ctx context.Context, playerID string) ([]rating.PlayerRating, error) {
	key := "rating:player:" + playerID + ":all"
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListRatingsByPlayer(ctx, playerID)
		if err != nil {
			return nil, err
		}
		return append([]rating.PlayerRating(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]rating.PlayerRating)
	return append([]rating.PlayerRating(nil), items...), nil
}

func (r *RatingRepository) UpsertCompetitionRating(ctx context.Context, item rating.CompetitionRating) error {
	if err := r.next.UpsertCompetitionRating(ctx, item); err != nil {
		return err
	}
	r.cache.Delete(ctx, "rating:competition:"+item.CompetitionID)
	return nil
}

func (r *RatingRepository) GetCompetitionRating(ctx context.Context, competitionID string) (rating.CompetitionRating, bool, error) {
	key := "rating:competition:" + competitionID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetCompetitionRating(ctx, competitionID)
		if err != nil {
			return nil, err
		}
		return cachedCompetitionRating{value: item, exists: exists}, nil
	})
	if err != nil {
		return rating.CompetitionRating{}, false, err
	}

	cached, _ := v.(cachedCompetitionRating)
	return cached.value, cached.exists, nil
}

type cachedProfile struct {
	value  rating.Profile
	exists bool
}

type cachedPlayerRating struct {
	value  rating.PlayerRating
	exists bool
}

type cachedCompetitionRating struct {
	value  rating.CompetitionRating
	exists bool
}

type CompetitionRepository struct {
	next  competition.Repository
	cache *basecache.Store
}

func NewCompetitionRepository(next competition.Repository, cache *basecache.Store) *CompetitionRepository {
	return &CompetitionRepository{next: next, cache: cache}
}

func (r *CompetitionRepository) GetByID(ctx context.Context, competitionID string) (competition.Competition, bool, error) {
	key := "competition:id:" + competitionID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, competitionID)
		if err != nil {
			return nil, err
		}
		return cachedCompetition{value: item, exists: exists}, nil
	})
	if err != nil {
		return competition.Competition{}, false, err
	}

	cached, _ := v.(cachedCompetition)
	return cached.value, cached.exists, nil
}

func (r *CompetitionRepository) List(ctx context.Context) ([]competition.Competition, error) {
	v, err := r.cache.GetOrLoad(ctx, "competition:list", func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]competition.Competition(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]competition.Competition)
	return append([]competition.Competition(nil), items...), nil
}

func (r *CompetitionRepository) Upsert(ctx context.Context, item competition.Competition) error {
	if err := r.next.Upsert(ctx, item); err != nil {
		return err
	}
	r.cache.Delete(ctx, "competition:id:"+item.ID)
	r.cache.Delete(ctx, "competition:list")
	return nil
}

type cachedCompetition struct {
	value  competition.Competition
	exists bool
}
