package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/scoutline/scoutline/internal/domain/appearance"
	qb "github.com/scoutline/scoutline/internal/platform/querybuilder"
)

type AppearanceRepository struct {
	db *sqlx.DB
}

type appearanceTableModel struct {
	PlayerID      string    `db:"player_id"`
	MatchID       string    `db:"match_id"`
	CompetitionID string    `db:"competition_id"`
	MatchDate     time.Time `db:"match_date"`
	Minutes       int       `db:"minutes"`
	CleanSheet    bool      `db:"clean_sheet"`
	Stats         *string   `db:"stats"`
}

type appearanceInsertModel struct {
	PlayerID      string    `db:"player_id"`
	MatchID       string    `db:"match_id"`
	CompetitionID string    `db:"competition_id"`
	MatchDate     time.Time `db:"match_date"`
	Minutes       int       `db:"minutes"`
	CleanSheet    bool      `db:"clean_sheet"`
	Stats         *string   `db:"stats"`
}

var appearanceSelectColumns = []string{
	"player_id",
	"match_id",
	"competition_id",
	"match_date",
	"minutes",
	"clean_sheet",
	"stats",
}

func NewAppearanceRepository(db *sqlx.DB) *AppearanceRepository {
	return &AppearanceRepository{db: db}
}

func (r *AppearanceRepository) Upsert(ctx context.Context, items []appearance.Appearance) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert appearances: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		stats, err := jsonText(item.Stats)
		if err != nil {
			return err
		}
		insertModel := appearanceInsertModel{
			PlayerID:      item.PlayerID,
			MatchID:       item.MatchID,
			CompetitionID: item.CompetitionID,
			MatchDate:     item.MatchDate,
			Minutes:       item.Minutes,
			CleanSheet:    item.CleanSheet,
			Stats:         stats,
		}

		query, args, err := qb.InsertModel("appearances", insertModel, `ON CONFLICT (player_id, match_id)
DO UPDATE SET
    competition_id = EXCLUDED.competition_id,
    match_date = EXCLUDED.match_date,
    minutes = EXCLUDED.minutes,
    clean_sheet = EXCLUDED.clean_sheet,
    stats = EXCLUDED.stats`)
		if err != nil {
			return fmt.Errorf("build upsert appearance query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert appearance player=%s match=%s: %w", item.PlayerID, item.MatchID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert appearances tx: %w", err)
	}

	return nil
}

func (r *AppearanceRepository) ListByPlayerAndRange(ctx context.Context, playerID, competitionID string, from, to time.Time) ([]appearance.Appearance, error) {
	query, args, err := qb.Select(appearanceSelectColumns...).From("appearances").
		Where(
			qb.Eq("player_id", playerID),
			qb.Eq("competition_id", competitionID),
			qb.Expr("match_date >= ?", from),
			qb.Expr("match_date <= ?", to),
		).
		OrderBy("match_date", "match_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list appearances by range query: %w", err)
	}

	return r.selectAppearances(ctx, query, args)
}

func (r *AppearanceRepository) ListByPlayer(ctx context.Context, playerID, competitionID string) ([]appearance.Appearance, error) {
	query, args, err := qb.Select(appearanceSelectColumns...).From("appearances").
		Where(
			qb.Eq("player_id", playerID),
			qb.Eq("competition_id", competitionID),
		).
		OrderBy("match_date", "match_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list appearances query: %w", err)
	}

	return r.selectAppearances(ctx, query, args)
}

func (r *AppearanceRepository) ListPlayerIDsByCompetition(ctx context.Context, competitionID string) ([]string, error) {
	query, args, err := qb.Select("player_id").From("appearances").
		Where(qb.Eq("competition_id", competitionID)).
		GroupBy("player_id").
		OrderBy("player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list competition players query: %w", err)
	}

	var out []string
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list competition players: %w", err)
	}

	return out, nil
}

func (r *AppearanceRepository) selectAppearances(ctx context.Context, query string, args []any) ([]appearance.Appearance, error) {
	var rows []appearanceTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select appearances: %w", err)
	}

	out := make([]appearance.Appearance, 0, len(rows))
	for _, row := range rows {
		stats, err := fromJSONText[appearance.StatLine](row.Stats)
		if err != nil {
			return nil, err
		}
		out = append(out, appearance.Appearance{
			PlayerID:      row.PlayerID,
			MatchID:       row.MatchID,
			CompetitionID: row.CompetitionID,
			MatchDate:     row.MatchDate,
			Minutes:       row.Minutes,
			CleanSheet:    row.CleanSheet,
			Stats:         stats,
		})
	}

	return out, nil
}
