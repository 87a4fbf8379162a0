package jsonutil

import (
	"encoding/json"
	"strconv"
	"strings"
)

// CoerceString converts a value to string when it is already a string.
func CoerceString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	default:
		return ""
	}
}

// CoerceFloat converts common numeric-like values to float64.
func CoerceFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
	}
	return 0
}

// CoerceInt converts common numeric-like values to int.
func CoerceInt(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case int64:
		return int(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i)
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return i
		}
	}
	return 0
}

// RequireFloat reads a required numeric field. ok is false when the field is
// absent or not numeric; a zero value with ok=true is a legitimate reading.
func RequireFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f, true
		}
	}
	return 0, false
}

// ParseObject parses bytes into a generic JSON object.
func ParseObject(b []byte, what string) (map[string]any, error) {
	var obj any
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, &NotObjectError{What: what, Err: err}
	}
	root, _ := obj.(map[string]any)
	if root == nil {
		return nil, &NotObjectError{What: what}
	}
	return root, nil
}

// NotObjectError reports bytes that did not parse into a JSON object.
type NotObjectError struct {
	What string
	Err  error
}

func (e *NotObjectError) Error() string {
	if e.Err != nil {
		return "parse " + e.What + " json: " + e.Err.Error()
	}
	return e.What + " json is not an object"
}

func (e *NotObjectError) Unwrap() error { return e.Err }
