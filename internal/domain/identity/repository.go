package identity

import "context"

// Repository describes external identity persistence needs from use cases.
type Repository interface {
	GetBySourceID(ctx context.Context, source, sourceID string) (ExternalIdentity, bool, error)
	GetByPlayer(ctx context.Context, source, playerID string) (ExternalIdentity, bool, error)
	Upsert(ctx context.Context, item ExternalIdentity) error
}

// ReviewRepository holds the manual adjudication queue.
type ReviewRepository interface {
	Get(ctx context.Context, source, sourceID string) (ReviewItem, bool, error)
	Enqueue(ctx context.Context, item ReviewItem) error
	ListPending(ctx context.Context, limit int) ([]ReviewItem, error)
	UpdateStatus(ctx context.Context, source, sourceID string, status ReviewStatus) error
}
