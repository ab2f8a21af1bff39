package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/scoutline/scoutline/internal/domain/identity"
	qb "github.com/scoutline/scoutline/internal/platform/querybuilder"
)

type IdentityRepository struct {
	db *sqlx.DB
}

type identityTableModel struct {
	PlayerID   string    `db:"player_id"`
	Source     string    `db:"source"`
	SourceID   string    `db:"source_id"`
	Confidence float64   `db:"confidence"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type identityInsertModel struct {
	PlayerID   string  `db:"player_id"`
	Source     string  `db:"source"`
	SourceID   string  `db:"source_id"`
	Confidence float64 `db:"confidence"`
}

var identitySelectColumns = []string{
	"player_id",
	"source",
	"source_id",
	"confidence",
	"created_at",
	"updated_at",
}

func NewIdentityRepository(db *sqlx.DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

func (r *IdentityRepository) GetBySourceID(ctx context.Context, source, sourceID string) (identity.ExternalIdentity, bool, error) {
	query, args, err := qb.Select(identitySelectColumns...).From("external_identities").
		Where(
			qb.Eq("source", source),
			qb.Eq("source_id", sourceID),
		).
		ToSQL()
	if err != nil {
		return identity.ExternalIdentity{}, false, fmt.Errorf("build select identity by source id query: %w", err)
	}

	return r.getOne(ctx, query, args)
}

func (r *IdentityRepository) GetByPlayer(ctx context.Context, source, playerID string) (identity.ExternalIdentity, bool, error) {
	query, args, err := qb.Select(identitySelectColumns...).From("external_identities").
		Where(
			qb.Eq("source", source),
			qb.Eq("player_id", playerID),
		).
		ToSQL()
	if err != nil {
		return identity.ExternalIdentity{}, false, fmt.Errorf("build select identity by player query: %w", err)
	}

	return r.getOne(ctx, query, args)
}

func (r *IdentityRepository) Upsert(ctx context.Context, item identity.ExternalIdentity) error {
	insertModel := identityInsertModel{
		PlayerID:   item.PlayerID,
		Source:     item.Source,
		SourceID:   item.SourceID,
		Confidence: item.Confidence,
	}

	query, args, err := qb.InsertModel("external_identities", insertModel, `ON CONFLICT (source, source_id)
DO UPDATE SET
    player_id = EXCLUDED.player_id,
    confidence = EXCLUDED.confidence,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert identity query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert identity source=%s source_id=%s: %w", item.Source, item.SourceID, err)
	}

	return nil
}

func (r *IdentityRepository) getOne(ctx context.Context, query string, args []any) (identity.ExternalIdentity, bool, error) {
	var row identityTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return identity.ExternalIdentity{}, false, nil
		}
		return identity.ExternalIdentity{}, false, fmt.Errorf("select external identity: %w", err)
	}

	return identity.ExternalIdentity{
		PlayerID:   row.PlayerID,
		Source:     row.Source,
		SourceID:   row.SourceID,
		Confidence: row.Confidence,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}, true, nil
}

type ReviewRepository struct {
	db *sqlx.DB
}

type reviewTableModel struct {
	Source     string    `db:"source"`
	SourceID   string    `db:"source_id"`
	Name       string    `db:"name"`
	TeamID     string    `db:"team_id"`
	Reason     string    `db:"reason"`
	Candidates *string   `db:"candidates"`
	Status     string    `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type reviewInsertModel struct {
	Source     string  `db:"source"`
	SourceID   string  `db:"source_id"`
	Name       string  `db:"name"`
	TeamID     string  `db:"team_id"`
	Reason     string  `db:"reason"`
	Candidates *string `db:"candidates"`
	Status     string  `db:"status"`
}

var reviewSelectColumns = []string{
	"source",
	"source_id",
	"name",
	"team_id",
	"reason",
	"candidates",
	"status",
	"created_at",
	"updated_at",
}

func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Get(ctx context.Context, source, sourceID string) (identity.ReviewItem, bool, error) {
	query, args, err := qb.Select(reviewSelectColumns...).From("review_items").
		Where(
			qb.Eq("source", source),
			qb.Eq("source_id", sourceID),
		).
		ToSQL()
	if err != nil {
		return identity.ReviewItem{}, false, fmt.Errorf("build select review item query: %w", err)
	}

	var row reviewTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return identity.ReviewItem{}, false, nil
		}
		return identity.ReviewItem{}, false, fmt.Errorf("select review item: %w", err)
	}

	item, err := row.toDomain()
	if err != nil {
		return identity.ReviewItem{}, false, err
	}
	return item, true, nil
}

func (r *ReviewRepository) Enqueue(ctx context.Context, item identity.ReviewItem) error {
	candidates, err := jsonText(item.Candidates)
	if err != nil {
		return err
	}
	insertModel := reviewInsertModel{
		Source:     item.Source,
		SourceID:   item.SourceID,
		Name:       item.Name,
		TeamID:     item.TeamID,
		Reason:     item.Reason,
		Candidates: candidates,
		Status:     string(item.Status),
	}

	query, args, err := qb.InsertModel("review_items", insertModel, `ON CONFLICT (source, source_id)
DO UPDATE SET
    name = EXCLUDED.name,
    team_id = EXCLUDED.team_id,
    reason = EXCLUDED.reason,
    candidates = EXCLUDED.candidates,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build enqueue review item query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("enqueue review item source=%s source_id=%s: %w", item.Source, item.SourceID, err)
	}

	return nil
}

func (r *ReviewRepository) ListPending(ctx context.Context, limit int) ([]identity.ReviewItem, error) {
	query, args, err := qb.Select(reviewSelectColumns...).From("review_items").
		Where(qb.Eq("status", string(identity.ReviewStatusPending))).
		OrderBy("created_at", "source_id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list pending review items query: %w", err)
	}

	var rows []reviewTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list pending review items: %w", err)
	}

	out := make([]identity.ReviewItem, 0, len(rows))
	for _, row := range rows {
		item, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}

	return out, nil
}

func (r *ReviewRepository) UpdateStatus(ctx context.Context, source, sourceID string, status identity.ReviewStatus) error {
	query, args, err := qb.Update("review_items").
		Set("status", string(status)).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("source", source),
			qb.Eq("source_id", sourceID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update review item status query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update review item status source=%s source_id=%s: %w", source, sourceID, err)
	}

	return nil
}

func (row reviewTableModel) toDomain() (identity.ReviewItem, error) {
	candidates, err := fromJSONText[[]identity.ReviewCandidate](row.Candidates)
	if err != nil {
		return identity.ReviewItem{}, err
	}
	return identity.ReviewItem{
		Source:     row.Source,
		SourceID:   row.SourceID,
		Name:       row.Name,
		TeamID:     row.TeamID,
		Reason:     row.Reason,
		Candidates: candidates,
		Status:     identity.ReviewStatus(row.Status),
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}, nil
}
