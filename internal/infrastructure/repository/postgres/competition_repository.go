package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/scoutline/scoutline/internal/domain/competition"
	qb "github.com/scoutline/scoutline/internal/platform/querybuilder"
)

type CompetitionRepository struct {
	db *sqlx.DB
}

type competitionTableModel struct {
	ID      string `db:"id"`
	Name    string `db:"name"`
	Country string `db:"country"`
	Tier    int    `db:"tier"`
}

func NewCompetitionRepository(db *sqlx.DB) *CompetitionRepository {
	return &CompetitionRepository{db: db}
}

func (r *CompetitionRepository) GetByID(ctx context.Context, competitionID string) (competition.Competition, bool, error) {
	query, args, err := qb.Select("id", "name", "country", "tier").From("competitions").
		Where(qb.Eq("id", competitionID)).
		ToSQL()
	if err != nil {
		return competition.Competition{}, false, fmt.Errorf("build select competition query: %w", err)
	}

	var row competitionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return competition.Competition{}, false, nil
		}
		return competition.Competition{}, false, fmt.Errorf("select competition: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *CompetitionRepository) List(ctx context.Context) ([]competition.Competition, error) {
	query, args, err := qb.Select("id", "name", "country", "tier").From("competitions").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list competitions query: %w", err)
	}

	var rows []competitionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select competitions: %w", err)
	}

	out := make([]competition.Competition, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *CompetitionRepository) Upsert(ctx context.Context, item competition.Competition) error {
	insertModel := competitionTableModel{
		ID:      item.ID,
		Name:    item.Name,
		Country: item.Country,
		Tier:    item.Tier,
	}

	query, args, err := qb.InsertModel("competitions", insertModel, `ON CONFLICT (id)
DO UPDATE SET
    name = EXCLUDED.name,
    country = EXCLUDED.country,
    tier = EXCLUDED.tier,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert competition query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert competition id=%s: %w", item.ID, err)
	}

	return nil
}

func (row competitionTableModel) toDomain() competition.Competition {
	return competition.Competition{
		ID:      row.ID,
		Name:    row.Name,
		Country: row.Country,
		Tier:    row.Tier,
	}
}
