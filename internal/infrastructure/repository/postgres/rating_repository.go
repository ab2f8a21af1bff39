package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/scoutline/scoutline/internal/domain/player"
	"github.com/scoutline/scoutline/internal/domain/rating"
	"github.com/scoutline/scoutline/internal/domain/rollingstats"
	qb "github.com/scoutline/scoutline/internal/platform/querybuilder"
)

type RatingRepository struct {
	db *sqlx.DB
}

type ratingProfileTableModel struct {
	PositionGroup string  `db:"position_group"`
	Weights       *string `db:"weights"`
	Invert        *string `db:"invert"`
}

type ratingProfileInsertModel struct {
	PositionGroup string  `db:"position_group"`
	Weights       *string `db:"weights"`
	Invert        *string `db:"invert"`
}

type playerRatingTableModel struct {
	PlayerID      string    `db:"player_id"`
	CompetitionID string    `db:"competition_id"`
	PositionGroup string    `db:"position_group"`
	Rating365     int       `db:"rating_365"`
	RatingLast5   int       `db:"rating_last5"`
	LevelScore    int       `db:"level_score"`
	Tier          int       `db:"tier"`
	ComputedAt    time.Time `db:"computed_at"`
}

type competitionRatingTableModel struct {
	CompetitionID string    `db:"competition_id"`
	Strength      int       `db:"strength"`
	Tier          int       `db:"tier"`
	RatedPlayers  int       `db:"rated_players"`
	ComputedAt    time.Time `db:"computed_at"`
}

var playerRatingSelectColumns = []string{
	"player_id",
	"competition_id",
	"position_group",
	"rating_365",
	"rating_last5",
	"level_score",
	"tier",
	"computed_at",
}

func NewRatingRepository(db *sqlx.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

func (r *RatingRepository) GetProfile(ctx context.Context, group player.Group) (rating.Profile, bool, error) {
	query, args, err := qb.Select("position_group", "weights", "invert").From("rating_profiles").
		Where(qb.Eq("position_group", string(group))).
		ToSQL()
	if err != nil {
		return rating.Profile{}, false, fmt.Errorf("build select rating profile query: %w", err)
	}

	var row ratingProfileTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return rating.Profile{}, false, nil
		}
		return rating.Profile{}, false, fmt.Errorf("select rating profile: %w", err)
	}

	weights, err := fromJSONText[map[rollingstats.Metric]float64](row.Weights)
	if err != nil {
		return rating.Profile{}, false, err
	}
	invert, err := fromJSONText[map[rollingstats.Metric]bool](row.Invert)
	if err != nil {
		return rating.Profile{}, false, err
	}
	return rating.Profile{
		PositionGroup: player.Group(row.PositionGroup),
		Weights:       weights,
		Invert:        invert,
	}, true, nil
}

func (r *RatingRepository) UpsertProfile(ctx context.Context, item rating.Profile) error {
	weights, err := jsonText(item.Weights)
	if err != nil {
		return err
	}
	invert, err := jsonText(item.Invert)
	if err != nil {
		return err
	}
	insertModel := ratingProfileInsertModel{
		PositionGroup: string(item.PositionGroup),
		Weights:       weights,
		Invert:        invert,
	}

	query, args, err := qb.InsertModel("rating_profiles", insertModel, `ON CONFLICT (position_group)
DO UPDATE SET
    weights = EXCLUDED.weights,
    invert = EXCLUDED.invert,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert rating profile query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert rating profile group=%s: %w", item.PositionGroup, err)
	}

	return nil
}

func (r *RatingRepository) UpsertPlayerRatings(ctx context.Context, items []rating.PlayerRating) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert player ratings: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		insertModel := playerRatingTableModel{
			PlayerID:      item.PlayerID,
			CompetitionID: item.CompetitionID,
			PositionGroup: string(item.PositionGroup),
			Rating365:     item.Rating365,
			RatingLast5:   item.RatingLast5,
			LevelScore:    item.LevelScore,
			Tier:          int(item.Tier),
			ComputedAt:    item.ComputedAt,
		}

		query, args, err := qb.InsertModel("player_ratings", insertModel, `ON CONFLICT (player_id, competition_id)
DO UPDATE SET
    position_group = EXCLUDED.position_group,
    rating_365 = EXCLUDED.rating_365,
    rating_last5 = EXCLUDED.rating_last5,
    level_score = EXCLUDED.level_score,
    tier = EXCLUDED.tier,
    computed_at = EXCLUDED.computed_at`)
		if err != nil {
			return fmt.Errorf("build upsert player rating query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert player rating player=%s competition=%s: %w", item.PlayerID, item.CompetitionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert player ratings tx: %w", err)
	}

	return nil
}

func (r *RatingRepository) ListPlayerRatings(ctx context.Context, competitionID string) ([]rating.PlayerRating, error) {
	query, args, err := qb.Select(playerRatingSelectColumns...).From("player_ratings").
		Where(qb.Eq("competition_id", competitionID)).
		OrderBy("level_score DESC", "player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list player ratings query: %w", err)
	}

	return r.selectPlayerRatings(ctx, query, args)
}

func (r *RatingRepository) GetPlayerRating(ctx context.Context, playerID, competitionID string) (rating.PlayerRating, bool, error) {
	query, args, err := qb.Select(playerRatingSelectColumns...).From("player_ratings").
		Where(
			qb.Eq("player_id", playerID),
			qb.Eq("competition_id", competitionID),
		).
		ToSQL()
	if err != nil {
		return rating.PlayerRating{}, false, fmt.Errorf("build select player rating query: %w", err)
	}

	var row playerRatingTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return rating.PlayerRating{}, false, nil
		}
		return rating.PlayerRating{}, false, fmt.Errorf("select player rating: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *RatingRepository) ListRatingsByPlayer(ctx context.Context, playerID string) ([]rating.PlayerRating, error) {
	query, args, err := qb.Select(playerRatingSelectColumns...).From("player_ratings").
		Where(qb.Eq("player_id", playerID)).
		OrderBy("competition_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list ratings by player query: %w", err)
	}

	return r.selectPlayerRatings(ctx, query, args)
}

func (r *RatingRepository) UpsertCompetitionRating(ctx context.Context, item rating.CompetitionRating) error {
	insertModel := competitionRatingTableModel{
		CompetitionID: item.CompetitionID,
		Strength:      item.Strength,
		Tier:          int(item.Tier),
		RatedPlayers:  item.RatedPlayers,
		ComputedAt:    item.ComputedAt,
	}

	query, args, err := qb.InsertModel("competition_ratings", insertModel, `ON CONFLICT (competition_id)
DO UPDATE SET
    strength = EXCLUDED.strength,
    tier = EXCLUDED.tier,
    rated_players = EXCLUDED.rated_players,
    computed_at = EXCLUDED.computed_at`)
	if err != nil {
		return fmt.Errorf("build upsert competition rating query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert competition rating competition=%s: %w", item.CompetitionID, err)
	}

	return nil
}

func (r *RatingRepository) GetCompetitionRating(ctx context.Context, competitionID string) (rating.CompetitionRating, bool, error) {
	query, args, err := qb.Select("competition_id", "strength", "tier", "rated_players", "computed_at").
		From("competition_ratings").
		Where(qb.Eq("competition_id", competitionID)).
		ToSQL()
	if err != nil {
		return rating.CompetitionRating{}, false, fmt.Errorf("build select competition rating query: %w", err)
	}

	var row competitionRatingTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return rating.CompetitionRating{}, false, nil
		}
		return rating.CompetitionRating{}, false, fmt.Errorf("select competition rating: %w", err)
	}

	return rating.CompetitionRating{
		CompetitionID: row.CompetitionID,
		Strength:      row.Strength,
		Tier:          rating.Tier(row.Tier),
		RatedPlayers:  row.RatedPlayers,
		ComputedAt:    row.ComputedAt,
	}, true, nil
}

func (r *RatingRepository) selectPlayerRatings(ctx context.Context, query string, args []any) ([]rating.PlayerRating, error) {
	var rows []playerRatingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select player ratings: %w", err)
	}

	out := make([]rating.PlayerRating, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (row playerRatingTableModel) toDomain() rating.PlayerRating {
	return rating.PlayerRating{
		PlayerID:      row.PlayerID,
		CompetitionID: row.CompetitionID,
		PositionGroup: player.Group(row.PositionGroup),
		Rating365:     row.Rating365,
		RatingLast5:   row.RatingLast5,
		LevelScore:    row.LevelScore,
		Tier:          rating.Tier(row.Tier),
		ComputedAt:    row.ComputedAt,
	}
}
