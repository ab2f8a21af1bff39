package usecase

import (
	"context"

	"github.com/scoutline/scoutline/internal/domain/player"
	"github.com/scoutline/scoutline/internal/domain/profile"
	"github.com/scoutline/scoutline/internal/domain/rawdata"
)

// ProviderSearchResult is one provider-native hit for a name search.
type ProviderSearchResult struct {
	SourceID string
	Name     string
	TeamName string
	Position player.Position
}

// ProviderProfile carries the raw payload plus the normalized field subset
// for one provider-native id.
type ProviderProfile struct {
	Raw    []byte
	Fields profile.FieldSet
}

// ProviderSeasonStat is one season-scoped totals row from a provider's
// career statistics endpoint.
type ProviderSeasonStat struct {
	Season          string
	CompetitionName string
	Appearances     int
	Minutes         int
	Goals           int
	Assists         int
}

// ProviderClient is the enrichment view of one external source. Concrete
// transports live outside the core; every call costs one budget unit.
type ProviderClient interface {
	Source() string
	SearchPlayers(ctx context.Context, name string) ([]ProviderSearchResult, []rawdata.Payload, error)
	FetchProfile(ctx context.Context, sourceID string) (ProviderProfile, []rawdata.Payload, error)
	FetchSeasonStats(ctx context.Context, sourceID string) ([]ProviderSeasonStat, []rawdata.Payload, error)
}
