package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/scoutline/scoutline/internal/domain/rollingstats"
	qb "github.com/scoutline/scoutline/internal/platform/querybuilder"
)

type RollingStatsRepository struct {
	db *sqlx.DB
}

type rollingStatsTableModel struct {
	PlayerID      string    `db:"player_id"`
	CompetitionID string    `db:"competition_id"`
	Rolling       *string   `db:"rolling_window"`
	Last5         *string   `db:"last5_window"`
	ComputedAt    time.Time `db:"computed_at"`
}

type rollingStatsInsertModel struct {
	PlayerID      string    `db:"player_id"`
	CompetitionID string    `db:"competition_id"`
	Rolling       *string   `db:"rolling_window"`
	Last5         *string   `db:"last5_window"`
	ComputedAt    time.Time `db:"computed_at"`
}

var rollingStatsSelectColumns = []string{
	"player_id",
	"competition_id",
	"rolling_window",
	"last5_window",
	"computed_at",
}

func NewRollingStatsRepository(db *sqlx.DB) *RollingStatsRepository {
	return &RollingStatsRepository{db: db}
}

func (r *RollingStatsRepository) Get(ctx context.Context, playerID, competitionID string) (rollingstats.RollingStats, bool, error) {
	query, args, err := qb.Select(rollingStatsSelectColumns...).From("rolling_stats").
		Where(
			qb.Eq("player_id", playerID),
			qb.Eq("competition_id", competitionID),
		).
		ToSQL()
	if err != nil {
		return rollingstats.RollingStats{}, false, fmt.Errorf("build select rolling stats query: %w", err)
	}

	var row rollingStatsTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return rollingstats.RollingStats{}, false, nil
		}
		return rollingstats.RollingStats{}, false, fmt.Errorf("select rolling stats: %w", err)
	}

	item, err := row.toDomain()
	if err != nil {
		return rollingstats.RollingStats{}, false, err
	}
	return item, true, nil
}

func (r *RollingStatsRepository) Upsert(ctx context.Context, items []rollingstats.RollingStats) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert rolling stats: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		rolling, err := jsonText(item.Rolling)
		if err != nil {
			return err
		}
		last5, err := jsonText(item.Last5)
		if err != nil {
			return err
		}
		insertModel := rollingStatsInsertModel{
			PlayerID:      item.PlayerID,
			CompetitionID: item.CompetitionID,
			Rolling:       rolling,
			Last5:         last5,
			ComputedAt:    item.ComputedAt,
		}

		query, args, err := qb.InsertModel("rolling_stats", insertModel, `ON CONFLICT (player_id, competition_id)
DO UPDATE SET
    rolling_window = EXCLUDED.rolling_window,
    last5_window = EXCLUDED.last5_window,
    computed_at = EXCLUDED.computed_at`)
		if err != nil {
			return fmt.Errorf("build upsert rolling stats query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert rolling stats player=%s competition=%s: %w", item.PlayerID, item.CompetitionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert rolling stats tx: %w", err)
	}

	return nil
}

func (r *RollingStatsRepository) ListByCompetition(ctx context.Context, competitionID string) ([]rollingstats.RollingStats, error) {
	query, args, err := qb.Select(rollingStatsSelectColumns...).From("rolling_stats").
		Where(qb.Eq("competition_id", competitionID)).
		OrderBy("player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list rolling stats query: %w", err)
	}

	var rows []rollingStatsTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list rolling stats: %w", err)
	}

	out := make([]rollingstats.RollingStats, 0, len(rows))
	for _, row := range rows {
		item, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}

	return out, nil
}

func (row rollingStatsTableModel) toDomain() (rollingstats.RollingStats, error) {
	rolling, err := fromJSONText[rollingstats.Window](row.Rolling)
	if err != nil {
		return rollingstats.RollingStats{}, err
	}
	last5, err := fromJSONText[rollingstats.Window](row.Last5)
	if err != nil {
		return rollingstats.RollingStats{}, err
	}
	return rollingstats.RollingStats{
		PlayerID:      row.PlayerID,
		CompetitionID: row.CompetitionID,
		Rolling:       rolling,
		Last5:         last5,
		ComputedAt:    row.ComputedAt,
	}, nil
}
