package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/scoutline/scoutline/internal/domain/player"
	"github.com/scoutline/scoutline/internal/domain/rating"
	"github.com/scoutline/scoutline/internal/domain/rollingstats"
)

type playerRatingKey struct {
	playerID      string
	competitionID string
}

type RatingRepository struct {
	mu            sync.RWMutex
	profiles      map[player.Group]rating.Profile
	playerRatings map[playerRatingKey]rating.PlayerRating
	competitions  map[string]rating.CompetitionRating
}

func NewRatingRepository() *RatingRepository {
	return &RatingRepository{
		profiles:      make(map[player.Group]rating.Profile),
		playerRatings: make(map[playerRatingKey]rating.PlayerRating),
		competitions:  make(map[string]rating.CompetitionRating),
	}
}

func (r *RatingRepository) GetProfile(_ context.Context, group player.Group) (rating.Profile, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.profiles[group]
	if !ok {
		return rating.Profile{}, false, nil
	}

	return cloneRatingProfile(item), true, nil
}

func (r *RatingRepository) UpsertProfile(_ context.Context, item rating.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.profiles[item.PositionGroup] = cloneRatingProfile(item)

	return nil
}

func (r *RatingRepository) UpsertPlayerRatings(_ context.Context, items []rating.PlayerRating) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		r.playerRatings[playerRatingKey{playerID: item.PlayerID, competitionID: item.CompetitionID}] = item
	}

	return nil
}

func (r *RatingRepository) ListPlayerRatings(_ context.Context, competitionID string) ([]rating.PlayerRating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []rating.PlayerRating
	for key, item := range r.playerRatings {
		if key.competitionID == competitionID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })

	return out, nil
}

func (r *RatingRepository) GetPlayerRating(_ context.Context, playerID, competitionID string) (rating.PlayerRating, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.playerRatings[playerRatingKey{playerID: playerID, competitionID: competitionID}]
	if !ok {
		return rating.PlayerRating{}, false, nil
	}

	return item, true, nil
}

func (r *RatingRepository) ListRatingsByPlayer(_ context.Context, playerID string) ([]rating.PlayerRating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []rating.PlayerRating
	for key, item := range r.playerRatings {
		if key.playerID == playerID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompetitionID < out[j].CompetitionID })

	return out, nil
}

func (r *RatingRepository) UpsertCompetitionRating(_ context.Context, item rating.CompetitionRating) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.competitions[item.CompetitionID] = item

	return nil
}

func (r *RatingRepository) GetCompetitionRating(_ context.Context, competitionID string) (rating.CompetitionRating, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.competitions[competitionID]
	if !ok {
		return rating.CompetitionRating{}, false, nil
	}

	return item, true, nil
}

func cloneRatingProfile(item rating.Profile) rating.Profile {
	out := item
	if item.Weights != nil {
		out.Weights = make(map[rollingstats.Metric]float64, len(item.Weights))
		for metric, weight := range item.Weights {
			out.Weights[metric] = weight
		}
	}
	if item.Invert != nil {
		out.Invert = make(map[rollingstats.Metric]bool, len(item.Invert))
		for metric, inverted := range item.Invert {
			out.Invert[metric] = inverted
		}
	}

	return out
}
