package rawdata

import "time"

// Payload is one raw provider response kept for replay and audit.
type Payload struct {
	Source         string
	EntityType     string
	EntityKey      string
	PlayerPublicID string
	PayloadJSON    string
	PayloadHash    string
	FetchedAt      time.Time
}
