package models

import (
	"encoding/json"
	"strings"
)

// rawString renders a JSON scalar as a string: strings are unquoted, numbers
// and booleans keep their literal text, null and absent values become "".
func rawString(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	if strings.HasPrefix(s, `"`) {
		var out string
		if err := json.Unmarshal(raw, &out); err == nil {
			return out
		}
	}
	return s
}

// rawPercent decodes a numeric (or numeric string) JSON value. ok is false
// when the value is absent or not a number.
func rawPercent(raw json.RawMessage) (v float64, ok bool) {
	s := rawString(raw)
	if s == "" {
		return 0, false
	}
	n := json.Number(strings.TrimSuffix(s, "%"))
	f, err := n.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}
