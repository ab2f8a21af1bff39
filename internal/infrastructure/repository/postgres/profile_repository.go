package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/scoutline/scoutline/internal/domain/player"
	"github.com/scoutline/scoutline/internal/domain/profile"
	qb "github.com/scoutline/scoutline/internal/platform/querybuilder"
)

type ProfileRepository struct {
	db *sqlx.DB
}

type profileSnapshotTableModel struct {
	PlayerID  string    `db:"player_id"`
	Source    string    `db:"source"`
	SourceID  string    `db:"source_id"`
	Raw       []byte    `db:"raw_payload"`
	Fields    *string   `db:"fields"`
	FetchedAt time.Time `db:"fetched_at"`
}

type profileSnapshotInsertModel struct {
	PlayerID  string    `db:"player_id"`
	Source    string    `db:"source"`
	SourceID  string    `db:"source_id"`
	Raw       []byte    `db:"raw_payload"`
	Fields    *string   `db:"fields"`
	FetchedAt time.Time `db:"fetched_at"`
}

type fieldConflictTableModel struct {
	PlayerID       string    `db:"player_id"`
	Field          string    `db:"field"`
	Source         string    `db:"source"`
	CanonicalValue string    `db:"canonical_value"`
	SourceValue    string    `db:"source_value"`
	Overwritten    bool      `db:"overwritten"`
	Resolved       bool      `db:"resolved"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type fieldConflictInsertModel struct {
	PlayerID       string `db:"player_id"`
	Field          string `db:"field"`
	Source         string `db:"source"`
	CanonicalValue string `db:"canonical_value"`
	SourceValue    string `db:"source_value"`
	Overwritten    bool   `db:"overwritten"`
	Resolved       bool   `db:"resolved"`
}

func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetSnapshot(ctx context.Context, playerID, source string) (profile.Snapshot, bool, error) {
	query, args, err := qb.Select("player_id", "source", "source_id", "raw_payload", "fields", "fetched_at").
		From("profile_snapshots").
		Where(
			qb.Eq("player_id", playerID),
			qb.Eq("source", source),
		).
		ToSQL()
	if err != nil {
		return profile.Snapshot{}, false, fmt.Errorf("build select profile snapshot query: %w", err)
	}

	var row profileSnapshotTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return profile.Snapshot{}, false, nil
		}
		return profile.Snapshot{}, false, fmt.Errorf("select profile snapshot: %w", err)
	}

	fields, err := fromJSONText[profile.FieldSet](row.Fields)
	if err != nil {
		return profile.Snapshot{}, false, err
	}
	return profile.Snapshot{
		PlayerID:  row.PlayerID,
		Source:    row.Source,
		SourceID:  row.SourceID,
		Raw:       row.Raw,
		Fields:    fields,
		FetchedAt: row.FetchedAt,
	}, true, nil
}

func (r *ProfileRepository) ReplaceSnapshot(ctx context.Context, item profile.Snapshot) error {
	fields, err := jsonText(item.Fields)
	if err != nil {
		return err
	}
	insertModel := profileSnapshotInsertModel{
		PlayerID:  item.PlayerID,
		Source:    item.Source,
		SourceID:  item.SourceID,
		Raw:       item.Raw,
		Fields:    fields,
		FetchedAt: item.FetchedAt,
	}

	query, args, err := qb.InsertModel("profile_snapshots", insertModel, `ON CONFLICT (player_id, source)
DO UPDATE SET
    source_id = EXCLUDED.source_id,
    raw_payload = EXCLUDED.raw_payload,
    fields = EXCLUDED.fields,
    fetched_at = EXCLUDED.fetched_at`)
	if err != nil {
		return fmt.Errorf("build replace profile snapshot query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("replace profile snapshot player=%s source=%s: %w", item.PlayerID, item.Source, err)
	}

	return nil
}

func (r *ProfileRepository) UpsertConflict(ctx context.Context, item profile.FieldConflict) error {
	insertModel := fieldConflictInsertModel{
		PlayerID:       item.PlayerID,
		Field:          string(item.Field),
		Source:         item.Source,
		CanonicalValue: item.CanonicalValue,
		SourceValue:    item.SourceValue,
		Overwritten:    item.Overwritten,
		Resolved:       item.Resolved,
	}

	// The resolved flag survives re-observed disagreements.
	query, args, err := qb.InsertModel("field_conflicts", insertModel, `ON CONFLICT (player_id, field, source)
DO UPDATE SET
    canonical_value = EXCLUDED.canonical_value,
    source_value = EXCLUDED.source_value,
    overwritten = EXCLUDED.overwritten,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert field conflict query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert field conflict player=%s field=%s: %w", item.PlayerID, item.Field, err)
	}

	return nil
}

func (r *ProfileRepository) ListConflicts(ctx context.Context, playerID string, onlyUnresolved bool) ([]profile.FieldConflict, error) {
	conditions := []qb.Condition{qb.Eq("player_id", playerID)}
	if onlyUnresolved {
		conditions = append(conditions, qb.Eq("resolved", false))
	}

	query, args, err := qb.Select("player_id", "field", "source", "canonical_value", "source_value", "overwritten", "resolved", "created_at", "updated_at").
		From("field_conflicts").
		Where(conditions...).
		OrderBy("field", "source").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list field conflicts query: %w", err)
	}

	var rows []fieldConflictTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list field conflicts: %w", err)
	}

	out := make([]profile.FieldConflict, 0, len(rows))
	for _, row := range rows {
		out = append(out, profile.FieldConflict{
			PlayerID:       row.PlayerID,
			Field:          player.Field(row.Field),
			Source:         row.Source,
			CanonicalValue: row.CanonicalValue,
			SourceValue:    row.SourceValue,
			Overwritten:    row.Overwritten,
			Resolved:       row.Resolved,
			CreatedAt:      row.CreatedAt,
			UpdatedAt:      row.UpdatedAt,
		})
	}

	return out, nil
}

func (r *ProfileRepository) ResolveConflict(ctx context.Context, playerID string, field player.Field, source string) error {
	query, args, err := qb.Update("field_conflicts").
		Set("resolved", true).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("player_id", playerID),
			qb.Eq("field", string(field)),
			qb.Eq("source", source),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build resolve field conflict query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("resolve field conflict player=%s field=%s: %w", playerID, field, err)
	}

	return nil
}
