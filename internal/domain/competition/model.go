package competition

import (
	"context"
	"fmt"
)

// Competition is a league or cup whose appearances feed rating cohorts.
// Tier is maintained by the competition strength aggregator.
type Competition struct {
	ID      string
	Name    string
	Country string
	Tier    int
}

func (c Competition) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("competition id is required")
	}
	if c.Name == "" {
		return fmt.Errorf("competition name is required")
	}
	if c.Tier < 1 || c.Tier > 6 {
		return fmt.Errorf("competition tier must be within 1..6, got %d", c.Tier)
	}
	return nil
}

// Repository describes competition persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, competitionID string) (Competition, bool, error)
	List(ctx context.Context) ([]Competition, error)
	Upsert(ctx context.Context, item Competition) error
}
