package profile

import (
	"fmt"
	"time"

	"github.com/scoutline/scoutline/internal/domain/player"
)

// FieldSet is the normalized subset of a provider profile payload. Pointer
// fields distinguish "absent from payload" from zero values.
type FieldSet struct {
	Name          string
	BirthDate     *time.Time
	Nationality   string
	HeightCm      int
	WeightKg      int
	PreferredFoot player.Foot
	Position      player.Position
}

// Snapshot is the latest raw plus normalized profile fetched from one source
// for one player. Replaced wholesale on every merge.
type Snapshot struct {
	PlayerID  string
	Source    string
	SourceID  string
	Raw       []byte
	Fields    FieldSet
	FetchedAt time.Time
}

func (s Snapshot) Validate() error {
	if s.PlayerID == "" {
		return fmt.Errorf("snapshot player id is required")
	}
	if s.Source == "" {
		return fmt.Errorf("snapshot source is required")
	}
	return nil
}

// FieldConflict records a disagreement between the canonical value and a
// source value, whether or not the merge applied the new value. Retired only
// through explicit resolution.
type FieldConflict struct {
	PlayerID       string
	Field          player.Field
	Source         string
	CanonicalValue string
	SourceValue    string
	Overwritten    bool
	Resolved       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (c FieldConflict) Validate() error {
	if c.PlayerID == "" {
		return fmt.Errorf("conflict player id is required")
	}
	if c.Field == "" {
		return fmt.Errorf("conflict field is required")
	}
	if c.Source == "" {
		return fmt.Errorf("conflict source is required")
	}
	return nil
}
