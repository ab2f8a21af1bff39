package appearance

import (
	"fmt"
	"time"
)

// StatLine is the fixed per-match statistic schema. Every counter is a raw
// event total for the one appearance.
type StatLine struct {
	Goals             int
	Assists           int
	Shots             int
	ShotsOnTarget     int
	Passes            int
	PassesCompleted   int
	KeyPasses         int
	Tackles           int
	Interceptions     int
	Clearances        int
	Duels             int
	DuelsWon          int
	Aerials           int
	AerialsWon        int
	Dribbles          int
	DribblesCompleted int
	FoulsCommitted    int
	FoulsDrawn        int
	YellowCards       int
	RedCards          int
	Saves             int
	GoalsConceded     int
}

// Appearance is one player's participation in one match. Immutable once the
// match is final; upserted for idempotency under ingestion retries.
type Appearance struct {
	PlayerID      string
	MatchID       string
	CompetitionID string
	MatchDate     time.Time
	Minutes       int
	CleanSheet    bool
	Stats         StatLine
}

func (a Appearance) Validate() error {
	if a.PlayerID == "" {
		return fmt.Errorf("appearance player id is required")
	}
	if a.MatchID == "" {
		return fmt.Errorf("appearance match id is required")
	}
	if a.CompetitionID == "" {
		return fmt.Errorf("appearance competition id is required")
	}
	if a.Minutes < 0 {
		return fmt.Errorf("appearance minutes cannot be negative")
	}
	if a.MatchDate.IsZero() {
		return fmt.Errorf("appearance match date is required")
	}
	return nil
}
