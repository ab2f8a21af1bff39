package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/scoutline/scoutline/internal/domain/appearance"
	"github.com/scoutline/scoutline/internal/domain/player"
	"github.com/scoutline/scoutline/internal/domain/profile"
	"github.com/scoutline/scoutline/internal/usecase"
)

type ingestPlayerRequest struct {
	Source        string          `json:"source" validate:"required,max=64"`
	SourceID      string          `json:"source_id" validate:"required,max=64"`
	Name          string          `json:"name" validate:"required,max=128"`
	TeamID        string          `json:"team_id" validate:"omitempty,max=64"`
	TeamName      string          `json:"team_name" validate:"omitempty,max=128"`
	CompetitionID string          `json:"competition_id" validate:"omitempty,max=64"`
	BirthDate     string          `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Nationality   string          `json:"nationality" validate:"omitempty,max=64"`
	HeightCm      int             `json:"height_cm" validate:"omitempty,min=0,max=260"`
	WeightKg      int             `json:"weight_kg" validate:"omitempty,min=0,max=200"`
	PreferredFoot string          `json:"preferred_foot" validate:"omitempty,oneof=left right both"`
	Position      string          `json:"position" validate:"omitempty,oneof=GK CB FB DM CM AM W ST"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

type ingestAppearanceStatsDTO struct {
	Goals             int `json:"goals"`
	Assists           int `json:"assists"`
	Shots             int `json:"shots"`
	ShotsOnTarget     int `json:"shots_on_target"`
	Passes            int `json:"passes"`
	PassesCompleted   int `json:"passes_completed"`
	KeyPasses         int `json:"key_passes"`
	Tackles           int `json:"tackles"`
	Interceptions     int `json:"interceptions"`
	Clearances        int `json:"clearances"`
	Duels             int `json:"duels"`
	DuelsWon          int `json:"duels_won"`
	Aerials           int `json:"aerials"`
	AerialsWon        int `json:"aerials_won"`
	Dribbles          int `json:"dribbles"`
	DribblesCompleted int `json:"dribbles_completed"`
	FoulsCommitted    int `json:"fouls_committed"`
	FoulsDrawn        int `json:"fouls_drawn"`
	YellowCards       int `json:"yellow_cards"`
	RedCards          int `json:"red_cards"`
	Saves             int `json:"saves"`
	GoalsConceded     int `json:"goals_conceded"`
}

type ingestAppearanceDTO struct {
	PlayerID      string                   `json:"player_id" validate:"required,max=64"`
	MatchID       string                   `json:"match_id" validate:"required,max=64"`
	CompetitionID string                   `json:"competition_id" validate:"required,max=64"`
	MatchDate     string                   `json:"match_date" validate:"required,datetime=2006-01-02"`
	Minutes       int                      `json:"minutes" validate:"min=0,max=150"`
	CleanSheet    bool                     `json:"clean_sheet"`
	Stats         ingestAppearanceStatsDTO `json:"stats"`
}

type ingestAppearancesRequest struct {
	Appearances []ingestAppearanceDTO `json:"appearances" validate:"required,min=1,max=500,dive"`
}

// IngestPlayer accepts one provider player record from the primary feed,
// resolves it against the canonical store and reports the decision taken.
func (h *Handler) IngestPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestPlayer")
	defer span.End()

	var req ingestPlayerRequest
	if err := h.decodeRequest(r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	birthDate, err := parseIngestDate(req.BirthDate)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	record := usecase.ExternalRecord{
		Source:      strings.TrimSpace(req.Source),
		SourceID:    strings.TrimSpace(req.SourceID),
		Name:        strings.TrimSpace(req.Name),
		TeamName:    strings.TrimSpace(req.TeamName),
		BirthDate:   birthDate,
		Nationality: strings.TrimSpace(req.Nationality),
		Position:    player.Position(req.Position),
	}
	hints := usecase.ResolveHints{
		TeamID:        strings.TrimSpace(req.TeamID),
		CompetitionID: strings.TrimSpace(req.CompetitionID),
	}
	fields := profile.FieldSet{
		Name:          record.Name,
		BirthDate:     birthDate,
		Nationality:   record.Nationality,
		HeightCm:      req.HeightCm,
		WeightKg:      req.WeightKg,
		PreferredFoot: player.Foot(req.PreferredFoot),
		Position:      player.Position(req.Position),
	}

	outcome, err := h.ingestionService.IngestPlayerRecord(ctx, record, hints, fields, req.Payload)
	if err != nil {
		h.logger.WarnContext(ctx, "ingest player record failed",
			"source", record.Source,
			"source_id", record.SourceID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, outcome)
}

// IngestAppearances stores a batch of per-match stat lines from the primary
// feed. The batch is all-or-nothing on validation.
func (h *Handler) IngestAppearances(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestAppearances")
	defer span.End()

	var req ingestAppearancesRequest
	if err := h.decodeRequest(r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	items := make([]appearance.Appearance, 0, len(req.Appearances))
	for i, item := range req.Appearances {
		matchDate, err := parseIngestDate(item.MatchDate)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: appearance[%d]: %v", usecase.ErrInvalidInput, i, err))
			return
		}
		items = append(items, appearance.Appearance{
			PlayerID:      strings.TrimSpace(item.PlayerID),
			MatchID:       strings.TrimSpace(item.MatchID),
			CompetitionID: strings.TrimSpace(item.CompetitionID),
			MatchDate:     *matchDate,
			Minutes:       item.Minutes,
			CleanSheet:    item.CleanSheet,
			Stats:         statsFromDTO(item.Stats),
		})
	}

	if err := h.ingestionService.UpsertAppearances(ctx, items); err != nil {
		h.logger.WarnContext(ctx, "ingest appearances failed", "count", len(items), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int{"upserted": len(items)})
}

func parseIngestDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", usecase.ErrInvalidInput, raw)
	}
	parsed = parsed.UTC()
	return &parsed, nil
}

func statsFromDTO(dto ingestAppearanceStatsDTO) appearance.StatLine {
	return appearance.StatLine{
		Goals:             dto.Goals,
		Assists:           dto.Assists,
		Shots:             dto.Shots,
		ShotsOnTarget:     dto.ShotsOnTarget,
		Passes:            dto.Passes,
		PassesCompleted:   dto.PassesCompleted,
		KeyPasses:         dto.KeyPasses,
		Tackles:           dto.Tackles,
		Interceptions:     dto.Interceptions,
		Clearances:        dto.Clearances,
		Duels:             dto.Duels,
		DuelsWon:          dto.DuelsWon,
		Aerials:           dto.Aerials,
		AerialsWon:        dto.AerialsWon,
		Dribbles:          dto.Dribbles,
		DribblesCompleted: dto.DribblesCompleted,
		FoulsCommitted:    dto.FoulsCommitted,
		FoulsDrawn:        dto.FoulsDrawn,
		YellowCards:       dto.YellowCards,
		RedCards:          dto.RedCards,
		Saves:             dto.Saves,
		GoalsConceded:     dto.GoalsConceded,
	}
}
