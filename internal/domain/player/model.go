package player

import (
	"fmt"
	"time"
)

// Position is the fine-grained role reported by providers.
type Position string

const (
	PositionGoalkeeper Position = "GK"
	PositionCentreBack Position = "CB"
	PositionFullBack   Position = "FB"
	PositionDefMid     Position = "DM"
	PositionCentreMid  Position = "CM"
	PositionAttMid     Position = "AM"
	PositionWinger     Position = "W"
	PositionStriker    Position = "ST"
)

// Group is the coarse role bucket used to scope comparable rating cohorts.
type Group string

const (
	GroupGoalkeeper Group = "GK"
	GroupDefender   Group = "DEF"
	GroupMidfielder Group = "MID"
	GroupAttacker   Group = "ATT"
)

var AllGroups = map[Group]struct{}{
	GroupGoalkeeper: {},
	GroupDefender:   {},
	GroupMidfielder: {},
	GroupAttacker:   {},
}

var groupByPosition = map[Position]Group{
	PositionGoalkeeper: GroupGoalkeeper,
	PositionCentreBack: GroupDefender,
	PositionFullBack:   GroupDefender,
	PositionDefMid:     GroupMidfielder,
	PositionCentreMid:  GroupMidfielder,
	PositionAttMid:     GroupMidfielder,
	PositionWinger:     GroupAttacker,
	PositionStriker:    GroupAttacker,
}

// GroupForPosition buckets a position; unknown positions fall back to midfielder,
// the least cohort-distorting default.
func GroupForPosition(pos Position) Group {
	if group, ok := groupByPosition[pos]; ok {
		return group
	}
	return GroupMidfielder
}

type Foot string

const (
	FootLeft  Foot = "left"
	FootRight Foot = "right"
	FootBoth  Foot = "both"
)

// Field names a canonical attribute subject to source-precedence merging.
type Field string

const (
	FieldName          Field = "name"
	FieldBirthDate     Field = "birthDate"
	FieldNationality   Field = "nationality"
	FieldHeightCm      Field = "heightCm"
	FieldWeightKg      Field = "weightKg"
	FieldPreferredFoot Field = "preferredFoot"
	FieldPosition      Field = "position"
)

var AllFields = []Field{
	FieldName,
	FieldBirthDate,
	FieldNationality,
	FieldHeightCm,
	FieldWeightKg,
	FieldPreferredFoot,
	FieldPosition,
}

// Player is the single reconciled identity record for one real athlete.
// NameNormalized is written on every create/update, never backfilled.
type Player struct {
	ID             string
	Name           string
	NameNormalized string
	BirthDate      *time.Time
	Nationality    string
	HeightCm       int
	WeightKg       int
	PreferredFoot  Foot
	Position       Position
	PositionGroup  Group
	TeamID         string
	// TeamName is the display club name last reported by the primary feed.
	// Providers search by name, so it corroborates provider hits where the
	// opaque TeamID cannot.
	TeamName string
	// FieldSources records which source last supplied each canonical field,
	// so the merger can compare precedence against the incumbent value.
	FieldSources map[Field]string
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}
	if p.NameNormalized == "" {
		return fmt.Errorf("player normalized name is required")
	}
	if _, ok := AllGroups[p.PositionGroup]; !ok {
		return fmt.Errorf("invalid player position group: %s", p.PositionGroup)
	}
	return nil
}
