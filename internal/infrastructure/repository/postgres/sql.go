package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

func isNotFound(err error) bool {
	return err == sql.ErrNoRows
}

func nullableString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func nullTimeToTimePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	t := value.Time
	return &t
}

func timePtrToNullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}

// jsonText serializes structured column values; empty structures store as
// SQL NULL via the pointer.
func jsonText(value any) (*string, error) {
	raw, err := sonic.MarshalString(value)
	if err != nil {
		return nil, fmt.Errorf("marshal json column: %w", err)
	}
	if raw == "null" || raw == "{}" || raw == "[]" {
		return nil, nil
	}
	return &raw, nil
}

func fromJSONText[T any](raw *string) (T, error) {
	var out T
	if raw == nil || *raw == "" {
		return out, nil
	}
	if err := sonic.UnmarshalString(*raw, &out); err != nil {
		return out, fmt.Errorf("unmarshal json column: %w", err)
	}
	return out, nil
}
