package rawdata

import "context"

// Repository persists provider payloads verbatim for replay and audits.
type Repository interface {
	UpsertMany(ctx context.Context, items []Payload) error
}
