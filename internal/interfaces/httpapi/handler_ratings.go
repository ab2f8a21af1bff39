package httpapi

import (
	"net/http"
	"time"

	"github.com/scoutline/scoutline/internal/domain/rating"
)

type playerRatingDTO struct {
	PlayerID      string `json:"playerId"`
	CompetitionID string `json:"competitionId"`
	PositionGroup string `json:"positionGroup"`
	Rating365     int    `json:"rating365"`
	RatingLast5   int    `json:"ratingLast5"`
	LevelScore    int    `json:"levelScore"`
	Tier          int    `json:"tier"`
	ComputedAt    string `json:"computedAt"`
}

type competitionRatingDTO struct {
	CompetitionID string `json:"competitionId"`
	Strength      int    `json:"strength"`
	Tier          int    `json:"tier"`
	RatedPlayers  int    `json:"ratedPlayers"`
	ComputedAt    string `json:"computedAt"`
}

type competitionBoardDTO struct {
	Competition competitionRatingDTO `json:"competition"`
	Players     []playerRatingDTO    `json:"players"`
}

func (h *Handler) ListPlayerRatings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayerRatings")
	defer span.End()

	playerID := r.PathValue("playerID")
	items, err := h.ratingService.ListRatingsByPlayer(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "list player ratings failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]playerRatingDTO, 0, len(items))
	for _, item := range items {
		out = append(out, playerRatingToDTO(item))
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetCompetitionRatings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCompetitionRatings")
	defer span.End()

	competitionID := r.PathValue("competitionID")
	board, err := h.ratingService.GetCompetitionBoard(ctx, competitionID)
	if err != nil {
		h.logger.WarnContext(ctx, "get competition ratings failed", "competition_id", competitionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	players := make([]playerRatingDTO, 0, len(board.Players))
	for _, item := range board.Players {
		players = append(players, playerRatingToDTO(item))
	}

	writeSuccess(ctx, w, http.StatusOK, competitionBoardDTO{
		Competition: competitionRatingDTO{
			CompetitionID: board.Competition.CompetitionID,
			Strength:      board.Competition.Strength,
			Tier:          int(board.Competition.Tier),
			RatedPlayers:  board.Competition.RatedPlayers,
			ComputedAt:    board.Competition.ComputedAt.UTC().Format(time.RFC3339),
		},
		Players: players,
	})
}

func playerRatingToDTO(item rating.PlayerRating) playerRatingDTO {
	return playerRatingDTO{
		PlayerID:      item.PlayerID,
		CompetitionID: item.CompetitionID,
		PositionGroup: string(item.PositionGroup),
		Rating365:     item.Rating365,
		RatingLast5:   item.RatingLast5,
		LevelScore:    item.LevelScore,
		Tier:          int(item.Tier),
		ComputedAt:    item.ComputedAt.UTC().Format(time.RFC3339),
	}
}
