package statshub

import (
	"strconv"
	"strings"
	"time"

	"github.com/scoutline/scoutline/internal/domain/player"
	"github.com/scoutline/scoutline/internal/domain/profile"
	"github.com/scoutline/scoutline/internal/usecase"
)

type searchEnvelope struct {
	Data []searchHit `json:"data"`
}

type searchHit struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	TeamName string `json:"team_name"`
	Position string `json:"position"`
}

type profileEnvelope struct {
	Data profilePayload `json:"data"`
}

type profilePayload struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	DateOfBirth   string `json:"date_of_birth"`
	Nationality   string `json:"nationality"`
	HeightCm      int    `json:"height_cm"`
	WeightKg      int    `json:"weight_kg"`
	PreferredFoot string `json:"preferred_foot"`
	Position      string `json:"position"`
}

type seasonStatsEnvelope struct {
	Data []seasonStatRow `json:"data"`
}

type seasonStatRow struct {
	Season          string `json:"season"`
	CompetitionName string `json:"competition_name"`
	Appearances     int    `json:"appearances"`
	Minutes         int    `json:"minutes"`
	Goals           int    `json:"goals"`
	Assists         int    `json:"assists"`
}

func mapSearchHit(hit searchHit) usecase.ProviderSearchResult {
	return usecase.ProviderSearchResult{
		SourceID: strconv.FormatInt(hit.ID, 10),
		Name:     strings.TrimSpace(hit.Name),
		TeamName: strings.TrimSpace(hit.TeamName),
		Position: parsePosition(hit.Position),
	}
}

func mapProfileFields(payload profilePayload) profile.FieldSet {
	return profile.FieldSet{
		Name:          strings.TrimSpace(payload.Name),
		BirthDate:     parseProviderDate(payload.DateOfBirth),
		Nationality:   strings.TrimSpace(payload.Nationality),
		HeightCm:      maxInt(payload.HeightCm, 0),
		WeightKg:      maxInt(payload.WeightKg, 0),
		PreferredFoot: parseFoot(payload.PreferredFoot),
		Position:      parsePosition(payload.Position),
	}
}

func mapSeasonStat(row seasonStatRow) usecase.ProviderSeasonStat {
	return usecase.ProviderSeasonStat{
		Season:          strings.TrimSpace(row.Season),
		CompetitionName: strings.TrimSpace(row.CompetitionName),
		Appearances:     maxInt(row.Appearances, 0),
		Minutes:         maxInt(row.Minutes, 0),
		Goals:           maxInt(row.Goals, 0),
		Assists:         maxInt(row.Assists, 0),
	}
}

func parsePosition(raw string) player.Position {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gk", "goalkeeper", "keeper":
		return player.PositionGoalkeeper
	case "cb", "centre-back", "center-back", "central defender":
		return player.PositionCentreBack
	case "fb", "lb", "rb", "full-back", "wing-back":
		return player.PositionFullBack
	case "dm", "defensive midfielder", "holding midfielder":
		return player.PositionDefMid
	case "cm", "central midfielder", "midfielder":
		return player.PositionCentreMid
	case "am", "attacking midfielder", "playmaker":
		return player.PositionAttMid
	case "w", "lw", "rw", "winger", "wide midfielder":
		return player.PositionWinger
	case "st", "cf", "striker", "forward", "centre forward":
		return player.PositionStriker
	default:
		return ""
	}
}

func parseFoot(raw string) player.Foot {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "left", "l":
		return player.FootLeft
	case "right", "r":
		return player.FootRight
	case "both", "either":
		return player.FootBoth
	default:
		return ""
	}
}

func parseProviderDate(raw string) *time.Time {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}

	layouts := []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		time.RFC3339,
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			v := parsed.UTC()
			return &v
		}
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
