package store

import (
	"strings"

	"github.com/reoring/formskema/internal/numeric"
	"github.com/reoring/formskema/jsonschema"
)

// Outcome tells how raw input was turned into a stored value.
type Outcome int

const (
	// Parsed means the input converted to the field's type.
	Parsed Outcome = iota
	// Cleared means the user emptied a numeric or boolean field; the empty
	// sentinel (nil) is stored.
	Cleared
	// ParseFailed means the input did not convert. Array fields keep their
	// prior value; numeric fields store the empty sentinel.
	ParseFailed
)

func (o Outcome) String() string {
	switch o {
	case Parsed:
		return "parsed"
	case Cleared:
		return "cleared"
	case ParseFailed:
		return "parse_failed"
	}
	return "unknown"
}

// Coerce converts raw input according to the field schema s (already
// dereferenced). Text is the usual input; decoded JSON values pass through
// when they already have the right shape.
func Coerce(raw any, s *jsonschema.Schema) (any, Outcome) {
	if s == nil {
		return raw, Parsed
	}
	text, isText := raw.(string)
	blank := isText && strings.TrimSpace(text) == ""

	switch s.Kind() {
	case jsonschema.KindArray:
		switch t := raw.(type) {
		case []any:
			return t, Parsed
		case string:
			if arr, ok := numeric.ParseArray(t); ok {
				return arr, Parsed
			}
		}
		return nil, ParseFailed
	case jsonschema.KindNumber, jsonschema.KindInteger:
		if raw == nil || blank {
			return nil, Cleared
		}
		if isText {
			if f, ok := numeric.Parse(text); ok {
				return f, Parsed
			}
			return nil, ParseFailed
		}
		if f, ok := numeric.Float(raw); ok && numeric.IsNumeric(raw) {
			return f, Parsed
		}
		return nil, ParseFailed
	case jsonschema.KindBoolean:
		if raw == nil || blank {
			return nil, Cleared
		}
		switch t := raw.(type) {
		case bool:
			return t, Parsed
		case string:
			switch strings.TrimSpace(t) {
			case "true":
				return true, Parsed
			case "false":
				return false, Parsed
			}
		}
		return nil, ParseFailed
	}
	return raw, Parsed
}
