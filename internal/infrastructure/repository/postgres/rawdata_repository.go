package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/scoutline/scoutline/internal/domain/rawdata"
	qb "github.com/scoutline/scoutline/internal/platform/querybuilder"
)

type RawDataRepository struct {
	db *sqlx.DB
}

type rawDataInsertModel struct {
	Source         string    `db:"source"`
	EntityType     string    `db:"entity_type"`
	EntityKey      string    `db:"entity_key"`
	PlayerPublicID *string   `db:"player_public_id"`
	PayloadJSON    string    `db:"payload_json"`
	PayloadHash    string    `db:"payload_hash"`
	FetchedAt      time.Time `db:"fetched_at"`
}

func NewRawDataRepository(db *sqlx.DB) *RawDataRepository {
	return &RawDataRepository{db: db}
}

// UpsertMany writes one batch of provider payloads in a single transaction.
// Re-fetching the same entity replaces the stored payload.
func (r *RawDataRepository) UpsertMany(ctx context.Context, items []rawdata.Payload) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert raw data: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		insertModel := rawDataInsertModel{
			Source:         item.Source,
			EntityType:     item.EntityType,
			EntityKey:      item.EntityKey,
			PlayerPublicID: nullableString(item.PlayerPublicID),
			PayloadJSON:    item.PayloadJSON,
			PayloadHash:    item.PayloadHash,
			FetchedAt:      item.FetchedAt,
		}

		query, args, err := qb.InsertModel("raw_data_payloads", insertModel, `ON CONFLICT (source, entity_type, entity_key)
DO UPDATE SET
    player_public_id = EXCLUDED.player_public_id,
    payload_json = EXCLUDED.payload_json,
    payload_hash = EXCLUDED.payload_hash,
    fetched_at = EXCLUDED.fetched_at`)
		if err != nil {
			return fmt.Errorf("build upsert raw data query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert raw data source=%s key=%s: %w", item.Source, item.EntityKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert raw data tx: %w", err)
	}

	return nil
}
