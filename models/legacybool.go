package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// LegacyBool is a bool that also accepts the string-typed booleans the
// legacy store persisted ("true", "false", "1", "0"). Normalization happens
// exactly once here, at the boundary where raw store data becomes a typed
// model - no string-typed boolean ever reaches business logic.
type LegacyBool bool

func (b LegacyBool) Bool() bool {
	return bool(b)
}

func (b *LegacyBool) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal legacy bool: %w", err)
	}
	parsed, err := parseLegacyBool(raw)
	if err != nil {
		return err
	}
	*b = LegacyBool(parsed)
	return nil
}

func (b LegacyBool) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(b))
}

// Scan implements sql.Scanner so legacy text columns scan cleanly.
func (b *LegacyBool) Scan(src any) error {
	if src == nil {
		*b = false
		return nil
	}
	parsed, err := parseLegacyBool(src)
	if err != nil {
		return err
	}
	*b = LegacyBool(parsed)
	return nil
}

func (b LegacyBool) Value() (driver.Value, error) {
	return bool(b), nil
}

func parseLegacyBool(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		return parseLegacyBoolString(v)
	case []byte:
		return parseLegacyBoolString(string(v))
	case float64:
		return v != 0, nil
	case int64:
		return v != 0, nil
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("cannot normalize %T as a boolean", raw)
	}
}

func parseLegacyBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1":
		return true, nil
	case "false", "f", "0", "":
		return false, nil
	default:
		return false, fmt.Errorf("cannot normalize %q as a boolean", s)
	}
}
