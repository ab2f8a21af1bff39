package postgres

import (
	"database/sql"
	"time"

	"github.com/scoutline/scoutline/internal/domain/player"
)

type playerTableModel struct {
	ID             string       `db:"id"`
	Name           string       `db:"name"`
	NameNormalized string       `db:"name_normalized"`
	BirthDate      sql.NullTime `db:"birth_date"`
	Nationality    string       `db:"nationality"`
	HeightCm       int          `db:"height_cm"`
	WeightKg       int          `db:"weight_kg"`
	PreferredFoot  string       `db:"preferred_foot"`
	Position       string       `db:"position"`
	PositionGroup  string       `db:"position_group"`
	TeamID         string       `db:"team_id"`
	TeamName       string       `db:"team_name"`
	FieldSources   *string      `db:"field_sources"`
	CreatedAt      time.Time    `db:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at"`
}

type playerInsertModel struct {
	ID             string       `db:"id"`
	Name           string       `db:"name"`
	NameNormalized string       `db:"name_normalized"`
	BirthDate      sql.NullTime `db:"birth_date"`
	Nationality    string       `db:"nationality"`
	HeightCm       int          `db:"height_cm"`
	WeightKg       int          `db:"weight_kg"`
	PreferredFoot  string       `db:"preferred_foot"`
	Position       string       `db:"position"`
	PositionGroup  string       `db:"position_group"`
	TeamID         string       `db:"team_id"`
	TeamName       string       `db:"team_name"`
	FieldSources   *string      `db:"field_sources"`
}

func (row playerTableModel) toDomain() (player.Player, error) {
	sources, err := fromJSONText[map[player.Field]string](row.FieldSources)
	if err != nil {
		return player.Player{}, err
	}
	return player.Player{
		ID:             row.ID,
		Name:           row.Name,
		NameNormalized: row.NameNormalized,
		BirthDate:      nullTimeToTimePtr(row.BirthDate),
		Nationality:    row.Nationality,
		HeightCm:       row.HeightCm,
		WeightKg:       row.WeightKg,
		PreferredFoot:  player.Foot(row.PreferredFoot),
		Position:       player.Position(row.Position),
		PositionGroup:  player.Group(row.PositionGroup),
		TeamID:         row.TeamID,
		TeamName:       row.TeamName,
		FieldSources:   sources,
	}, nil
}

func playerToInsertModel(item player.Player) (playerInsertModel, error) {
	sources, err := jsonText(item.FieldSources)
	if err != nil {
		return playerInsertModel{}, err
	}
	return playerInsertModel{
		ID:             item.ID,
		Name:           item.Name,
		NameNormalized: item.NameNormalized,
		BirthDate:      timePtrToNullTime(item.BirthDate),
		Nationality:    item.Nationality,
		HeightCm:       item.HeightCm,
		WeightKg:       item.WeightKg,
		PreferredFoot:  string(item.PreferredFoot),
		Position:       string(item.Position),
		PositionGroup:  string(item.PositionGroup),
		TeamID:         item.TeamID,
		TeamName:       item.TeamName,
		FieldSources:   sources,
	}, nil
}
