// Package numeric holds the number handling shared by derivation, coercion
// and validation.
package numeric

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Float converts a decoded JSON number (or any Go numeric) to float64.
// Strings are not numbers here; see Parse.
func Float(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}

// IsNumeric reports whether v is a Go or JSON number.
func IsNumeric(v any) bool {
	f, ok := Float(v)
	return ok && !math.IsNaN(f) && !math.IsInf(f, 0)
}

// IsInteger reports whether v is a number with no fractional part.
func IsInteger(v any) bool {
	f, ok := Float(v)
	return ok && !math.IsInf(f, 0) && math.Trunc(f) == f
}

// Parse reads user text as a number. Surrounding blanks are ignored; an
// empty string is not a number.
func Parse(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseArray decodes text as a JSON array. Non-array JSON reports false.
func ParseArray(s string) ([]any, bool) {
	b := bytes.TrimSpace([]byte(s))
	if len(b) == 0 || b[0] != '[' {
		return nil, false
	}
	var out []any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, false
	}
	return out, true
}

// Sequence reads v as a list of numbers. It accepts a decoded array or the
// text of a JSON array.
func Sequence(v any) ([]float64, bool) {
	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case []float64:
		return append([]float64(nil), t...), true
	case string:
		arr, ok := ParseArray(t)
		if !ok {
			return nil, false
		}
		items = arr
	default:
		return nil, false
	}
	out := make([]float64, len(items))
	for i, it := range items {
		f, ok := Float(it)
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

// MatchesType reports whether a decoded value fits a JSON-Schema primitive
// type name. Unknown names match everything.
func MatchesType(v any, want string) bool {
	switch want {
	case "string":
		_, ok := v.(string)
		return ok
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "number":
		return IsNumeric(v)
	case "integer":
		return IsInteger(v)
	case "object":
		_, ok := v.(map[string]any)
		return ok
	case "array":
		_, ok := v.([]any)
		return ok
	case "null":
		return v == nil
	}
	return true
}
