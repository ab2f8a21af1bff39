package identity

import (
	"fmt"
	"time"
)

// ExternalIdentity binds one provider-native id to one canonical player.
// A player carries at most one identity per source.
type ExternalIdentity struct {
	PlayerID   string
	Source     string
	SourceID   string
	Confidence float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (e ExternalIdentity) Validate() error {
	if e.PlayerID == "" {
		return fmt.Errorf("identity player id is required")
	}
	if e.Source == "" {
		return fmt.Errorf("identity source is required")
	}
	if e.SourceID == "" {
		return fmt.Errorf("identity source id is required")
	}
	if e.Confidence < 0 || e.Confidence > 1 {
		return fmt.Errorf("identity confidence must be within [0,1], got %f", e.Confidence)
	}
	return nil
}

type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusResolved ReviewStatus = "resolved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

// ReviewCandidate is one canonical player the resolver considered plausible.
type ReviewCandidate struct {
	PlayerID string
	Score    float64
}

// ReviewItem queues an external record the resolver could not place with
// enough confidence. Keyed by (source, source id); leaves pending only
// through explicit resolution or rejection.
type ReviewItem struct {
	Source     string
	SourceID   string
	Name       string
	TeamID     string
	Reason     string
	Candidates []ReviewCandidate
	Status     ReviewStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (r ReviewItem) Validate() error {
	if r.Source == "" {
		return fmt.Errorf("review item source is required")
	}
	if r.SourceID == "" {
		return fmt.Errorf("review item source id is required")
	}
	switch r.Status {
	case ReviewStatusPending, ReviewStatusResolved, ReviewStatusRejected:
	default:
		return fmt.Errorf("invalid review item status: %s", r.Status)
	}
	return nil
}
