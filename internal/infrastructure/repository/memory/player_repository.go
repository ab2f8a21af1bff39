package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/scoutline/scoutline/internal/domain/player"
)

// PlayerRepository keeps canonical players in memory. Competition membership
// is tracked explicitly via AssignCompetition, and identity coverage for
// ListMissingIdentity is answered by the linked IdentityRepository.
type PlayerRepository struct {
	mu                   sync.RWMutex
	items                map[string]player.Player
	competitionsByPlayer map[string]map[string]struct{}
	identities           *IdentityRepository
}

func NewPlayerRepository(players []player.Player, identities *IdentityRepository) *PlayerRepository {
	items := make(map[string]player.Player, len(players))
	for _, p := range players {
		items[p.ID] = clonePlayer(p)
	}

	return &PlayerRepository{
		items:                items,
		competitionsByPlayer: make(map[string]map[string]struct{}),
		identities:           identities,
	}
}

func (r *PlayerRepository) GetByID(_ context.Context, playerID string) (player.Player, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[playerID]
	if !ok {
		return player.Player{}, false, nil
	}

	return clonePlayer(p), true, nil
}

func (r *PlayerRepository) FindByNormalizedName(_ context.Context, nameNormalized string) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []player.Player
	for _, p := range r.items {
		if p.NameNormalized == nameNormalized {
			out = append(out, clonePlayer(p))
		}
	}
	sortPlayers(out)

	return out, nil
}

func (r *PlayerRepository) ListByTeam(_ context.Context, teamID string) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []player.Player
	for _, p := range r.items {
		if p.TeamID == teamID {
			out = append(out, clonePlayer(p))
		}
	}
	sortPlayers(out)

	return out, nil
}

func (r *PlayerRepository) ListByCompetition(_ context.Context, competitionID string) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []player.Player
	for id, competitions := range r.competitionsByPlayer {
		if _, ok := competitions[competitionID]; !ok {
			continue
		}
		if p, ok := r.items[id]; ok {
			out = append(out, clonePlayer(p))
		}
	}
	sortPlayers(out)

	return out, nil
}

func (r *PlayerRepository) Upsert(_ context.Context, item player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = clonePlayer(item)

	return nil
}

func (r *PlayerRepository) ListMissingIdentity(ctx context.Context, source string, afterID string, limit int) ([]player.Player, error) {
	r.mu.RLock()
	ids := make([]string, 0, len(r.items))
	for id := range r.items {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)

	out := make([]player.Player, 0, limit)
	for _, id := range ids {
		if id <= afterID {
			continue
		}
		if r.identities != nil {
			_, found, err := r.identities.GetByPlayer(ctx, source, id)
			if err != nil {
				return nil, err
			}
			if found {
				continue
			}
		}

		r.mu.RLock()
		p := r.items[id]
		r.mu.RUnlock()
		out = append(out, clonePlayer(p))
		if limit > 0 && len(out) >= limit {
			break
		}
	}

	return out, nil
}

// AssignCompetition marks a player as appearing in a competition so
// ListByCompetition can scope candidate searches.
func (r *PlayerRepository) AssignCompetition(playerID, competitionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.competitionsByPlayer[playerID]; !ok {
		r.competitionsByPlayer[playerID] = make(map[string]struct{})
	}
	r.competitionsByPlayer[playerID][competitionID] = struct{}{}
}

func clonePlayer(p player.Player) player.Player {
	out := p
	if p.BirthDate != nil {
		birthDate := *p.BirthDate
		out.BirthDate = &birthDate
	}
	if p.FieldSources != nil {
		out.FieldSources = make(map[player.Field]string, len(p.FieldSources))
		for field, source := range p.FieldSources {
			out.FieldSources[field] = source
		}
	}

	return out
}

func sortPlayers(players []player.Player) {
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })
}
