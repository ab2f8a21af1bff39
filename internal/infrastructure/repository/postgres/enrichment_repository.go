package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/scoutline/scoutline/internal/domain/enrichment"
	qb "github.com/scoutline/scoutline/internal/platform/querybuilder"
)

type EnrichmentRepository struct {
	db *sqlx.DB
}

type enrichmentRunTableModel struct {
	ID              string       `db:"id"`
	Source          string       `db:"source"`
	Status          string       `db:"status"`
	Counters        *string      `db:"counters"`
	BudgetExhausted bool         `db:"budget_exhausted"`
	LastPlayerID    string       `db:"last_player_id"`
	ErrorMessage    string       `db:"error_message"`
	StartedAt       time.Time    `db:"started_at"`
	FinishedAt      sql.NullTime `db:"finished_at"`
}

var enrichmentRunSelectColumns = []string{
	"id",
	"source",
	"status",
	"counters",
	"budget_exhausted",
	"last_player_id",
	"error_message",
	"started_at",
	"finished_at",
}

func NewEnrichmentRepository(db *sqlx.DB) *EnrichmentRepository {
	return &EnrichmentRepository{db: db}
}

func (r *EnrichmentRepository) Create(ctx context.Context, item enrichment.Run) error {
	insertModel, err := runToTableModel(item)
	if err != nil {
		return err
	}

	query, args, err := qb.InsertModel("enrichment_runs", insertModel, "")
	if err != nil {
		return fmt.Errorf("build insert enrichment run query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert enrichment run id=%s: %w", item.ID, err)
	}

	return nil
}

func (r *EnrichmentRepository) Update(ctx context.Context, item enrichment.Run) error {
	counters, err := jsonText(item.Counters)
	if err != nil {
		return err
	}

	query, args, err := qb.Update("enrichment_runs").
		Set("status", string(item.Status)).
		Set("counters", counters).
		Set("budget_exhausted", item.BudgetExhausted).
		Set("last_player_id", item.LastPlayerID).
		Set("error_message", item.ErrorMessage).
		Set("finished_at", timePtrToNullTime(item.FinishedAt)).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", item.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update enrichment run query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update enrichment run id=%s: %w", item.ID, err)
	}

	return nil
}

func (r *EnrichmentRepository) GetByID(ctx context.Context, runID string) (enrichment.Run, bool, error) {
	query, args, err := qb.Select(enrichmentRunSelectColumns...).From("enrichment_runs").
		Where(qb.Eq("id", runID)).
		ToSQL()
	if err != nil {
		return enrichment.Run{}, false, fmt.Errorf("build select enrichment run query: %w", err)
	}

	return r.getOne(ctx, query, args)
}

func (r *EnrichmentRepository) GetLatestBySource(ctx context.Context, source string) (enrichment.Run, bool, error) {
	query, args, err := qb.Select(enrichmentRunSelectColumns...).From("enrichment_runs").
		Where(qb.Eq("source", source)).
		OrderBy("started_at DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return enrichment.Run{}, false, fmt.Errorf("build select latest enrichment run query: %w", err)
	}

	return r.getOne(ctx, query, args)
}

func (r *EnrichmentRepository) getOne(ctx context.Context, query string, args []any) (enrichment.Run, bool, error) {
	var row enrichmentRunTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return enrichment.Run{}, false, nil
		}
		return enrichment.Run{}, false, fmt.Errorf("select enrichment run: %w", err)
	}

	item, err := row.toDomain()
	if err != nil {
		return enrichment.Run{}, false, err
	}

	return item, true, nil
}

func runToTableModel(item enrichment.Run) (enrichmentRunTableModel, error) {
	counters, err := jsonText(item.Counters)
	if err != nil {
		return enrichmentRunTableModel{}, err
	}

	return enrichmentRunTableModel{
		ID:              item.ID,
		Source:          item.Source,
		Status:          string(item.Status),
		Counters:        counters,
		BudgetExhausted: item.BudgetExhausted,
		LastPlayerID:    item.LastPlayerID,
		ErrorMessage:    item.ErrorMessage,
		StartedAt:       item.StartedAt,
		FinishedAt:      timePtrToNullTime(item.FinishedAt),
	}, nil
}

func (row enrichmentRunTableModel) toDomain() (enrichment.Run, error) {
	counters, err := fromJSONText[enrichment.Counters](row.Counters)
	if err != nil {
		return enrichment.Run{}, err
	}

	return enrichment.Run{
		ID:              row.ID,
		Source:          row.Source,
		Status:          enrichment.RunStatus(row.Status),
		Counters:        counters,
		BudgetExhausted: row.BudgetExhausted,
		LastPlayerID:    row.LastPlayerID,
		ErrorMessage:    row.ErrorMessage,
		StartedAt:       row.StartedAt,
		FinishedAt:      nullTimeToTimePtr(row.FinishedAt),
	}, nil
}
