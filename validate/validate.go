// Package validate checks one field value against its schema node.
//
// Rules run in a fixed order and the first failing rule wins:
//
//   - required and empty
//   - arrays: JSON array shape, then minItems/maxItems, then each element
//   - booleans: true or false
//   - numbers and integers: numeric (integers also whole)
//   - enum / const membership
//   - numeric range (minimum, maximum, exclusiveMinimum, exclusiveMaximum)
package validate

import (
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/fieldpath"
	"github.com/reoring/formskema/i18n"
	"github.com/reoring/formskema/internal/numeric"
	"github.com/reoring/formskema/jsonschema"
)

// Verdict is the outcome for one field. The zero Verdict is valid.
type Verdict struct {
	issue *formskema.Issue
}

// Valid reports whether no rule failed.
func (v Verdict) Valid() bool { return v.issue == nil }

// Issue returns the violation, or nil when valid.
func (v Verdict) Issue() *formskema.Issue {
	if v.issue == nil {
		return nil
	}
	it := *v.issue
	return &it
}

// Validator validates fields of one document.
type Validator struct {
	doc *jsonschema.Document
	tr  i18n.Translator
}

// New returns a Validator resolving item references in doc. A nil translator
// means English messages.
func New(doc *jsonschema.Document, tr i18n.Translator) *Validator {
	return &Validator{doc: doc, tr: tr}
}

func (v *Validator) translator() i18n.Translator { return i18n.Or(v.tr) }

// Field validates value at p against s. A nil schema accepts everything.
// An empty value (absent, null or blank text) fails only when required.
func (v *Validator) Field(p fieldpath.Path, value any, s *jsonschema.Schema, required bool) Verdict {
	s = v.deref(s)
	if s == nil {
		return Verdict{}
	}
	if isEmpty(value) {
		if required {
			return v.fail(p, formskema.CodeRequired, "required", nil)
		}
		return Verdict{}
	}

	var num *float64
	switch s.Kind() {
	case jsonschema.KindArray:
		return v.array(p, value, s)
	case jsonschema.KindBoolean:
		if _, ok := asBool(value); !ok {
			return v.fail(p, formskema.CodeInvalidType, "invalid_type", map[string]any{"expected": "true or false"})
		}
	case jsonschema.KindNumber, jsonschema.KindInteger:
		f, ok := asNumber(value)
		if !ok {
			return v.fail(p, formskema.CodeInvalidType, "invalid_type", map[string]any{"expected": expectedOf(s.Kind())})
		}
		if s.Kind() == jsonschema.KindInteger && !numeric.IsInteger(f) {
			return v.fail(p, formskema.CodeInvalidType, "invalid_type", map[string]any{"expected": expectedOf(s.Kind())})
		}
		num = &f
	case jsonschema.KindString:
		if _, ok := value.(string); !ok {
			return v.fail(p, formskema.CodeInvalidType, "invalid_type", map[string]any{"expected": "text"})
		}
	}

	if allowed := allowedOf(s); len(allowed) > 0 && !member(allowed, value) {
		return v.fail(p, formskema.CodeInvalidEnum, "invalid_enum", map[string]any{"allowed": joinLiterals(allowed)})
	}
	if num != nil {
		if vd := v.bounds(p, *num, s); !vd.Valid() {
			return vd
		}
	}
	return Verdict{}
}

func (v *Validator) array(p fieldpath.Path, value any, s *jsonschema.Schema) Verdict {
	var arr []any
	switch t := value.(type) {
	case []any:
		arr = t
	case string:
		parsed, ok := numeric.ParseArray(t)
		if !ok {
			return v.badFormat(p, s)
		}
		arr = parsed
	default:
		return v.badFormat(p, s)
	}
	if s.MinItems != nil && len(arr) < *s.MinItems {
		return v.fail(p, formskema.CodeTooShort, "too_short", map[string]any{"min": *s.MinItems, "actual": len(arr)})
	}
	if s.MaxItems != nil && len(arr) > *s.MaxItems {
		return v.fail(p, formskema.CodeTooLong, "too_long", map[string]any{"max": *s.MaxItems, "actual": len(arr)})
	}
	for i, el := range arr {
		item := v.deref(s.ItemAt(i))
		if item == nil {
			continue
		}
		switch item.Kind() {
		case jsonschema.KindInteger:
			if !numeric.IsInteger(el) {
				return v.fail(p, formskema.CodeInvalidElement, "invalid_element", map[string]any{"index": i, "expected": "an integer"})
			}
		case jsonschema.KindNumber:
			if !numeric.IsNumeric(el) {
				return v.fail(p, formskema.CodeInvalidElement, "invalid_element", map[string]any{"index": i, "expected": "a number"})
			}
		}
		if allowed := allowedOf(item); len(allowed) > 0 && !member(allowed, el) {
			return v.fail(p, formskema.CodeInvalidElement, "invalid_element", map[string]any{"index": i, "expected": "one of " + joinLiterals(allowed)})
		}
	}
	return Verdict{}
}

func (v *Validator) bounds(p fieldpath.Path, f float64, s *jsonschema.Schema) Verdict {
	switch {
	case s.Minimum != nil && f < *s.Minimum:
		return v.fail(p, formskema.CodeTooSmall, "too_small", map[string]any{"op": ">=", "limit": *s.Minimum})
	case s.ExclusiveMinimum != nil && f <= *s.ExclusiveMinimum:
		return v.fail(p, formskema.CodeTooSmall, "too_small", map[string]any{"op": ">", "limit": *s.ExclusiveMinimum})
	case s.Maximum != nil && f > *s.Maximum:
		return v.fail(p, formskema.CodeTooBig, "too_big", map[string]any{"op": "<=", "limit": *s.Maximum})
	case s.ExclusiveMaximum != nil && f >= *s.ExclusiveMaximum:
		return v.fail(p, formskema.CodeTooBig, "too_big", map[string]any{"op": "<", "limit": *s.ExclusiveMaximum})
	}
	return Verdict{}
}

func (v *Validator) deref(s *jsonschema.Schema) *jsonschema.Schema {
	if s == nil {
		return nil
	}
	if v.doc == nil {
		return s
	}
	return v.doc.MustDeref(s)
}

// badFormat reports a value that is not a JSON array, with an example input
// as the hint.
func (v *Validator) badFormat(p fieldpath.Path, s *jsonschema.Schema) Verdict {
	ex := ExampleArray(v.resolvedItems(s))
	vd := v.fail(p, formskema.CodeInvalidFormat, "invalid_format", map[string]any{"example": ex})
	vd.issue.Hint = ex
	return vd
}

func (v *Validator) fail(p fieldpath.Path, code, key string, params map[string]any) Verdict {
	data := make(map[string]string, len(params))
	for k, val := range params {
		data[k] = render(val)
	}
	it := formskema.IssueAt(p, code, v.translator().Message(key, data), params)
	it.Rule = key
	return Verdict{issue: &it}
}

func isEmpty(v any) bool {
	if v == nil || fieldpath.IsAbsent(v) {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// asBool accepts booleans and their exact text forms.
func asBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch t {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

func asNumber(v any) (float64, bool) {
	if s, ok := v.(string); ok {
		return numeric.Parse(s)
	}
	if !numeric.IsNumeric(v) {
		return 0, false
	}
	return numeric.Float(v)
}

func expectedOf(k jsonschema.Kind) string {
	if k == jsonschema.KindInteger {
		return "an integer"
	}
	return "a number"
}

// allowedOf treats const as a one-member enum.
func allowedOf(s *jsonschema.Schema) []any {
	if s.HasConst {
		return []any{s.Const}
	}
	return s.Enum
}

func member(allowed []any, v any) bool {
	for _, a := range allowed {
		if jsonschema.LiteralEqual(a, v) {
			return true
		}
		// text input against numeric or boolean members
		if s, ok := v.(string); ok && render(a) == s {
			return true
		}
	}
	return false
}

func joinLiterals(vs []any) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = render(v)
	}
	return strings.Join(parts, ", ")
}

func render(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
