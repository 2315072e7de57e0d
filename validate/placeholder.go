package validate

import (
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/reoring/formskema/jsonschema"
)

// ExampleArray renders a sample JSON array for an array schema: its default
// when it has a non-empty one, otherwise as many sample items as minItems asks
// for (three when unconstrained), shaped by the item schema.
func ExampleArray(arr *jsonschema.Schema) string {
	if arr == nil {
		return "[1, 2, 3]"
	}
	if d, ok := arr.Default.([]any); ok && arr.HasDefault && len(d) > 0 {
		return joinJSON(d)
	}
	n := 3
	if arr.MinItems != nil && *arr.MinItems > 0 {
		n = *arr.MinItems
	}
	if arr.MaxItems != nil && *arr.MaxItems < n {
		n = *arr.MaxItems
	}
	if n < 1 {
		n = 1
	}
	item := arr.Items
	if item != nil && item.Ref != "" {
		item = nil
	}
	out := make([]any, n)
	for i := range out {
		out[i] = sampleItem(item, i)
	}
	return joinJSON(out)
}

func sampleItem(item *jsonschema.Schema, i int) any {
	if item == nil {
		return i + 1
	}
	if len(item.Enum) > 0 {
		return item.Enum[i%len(item.Enum)]
	}
	switch item.Kind() {
	case jsonschema.KindNumber:
		return float64(i) + 0.5
	case jsonschema.KindBoolean:
		return i%2 == 0
	case jsonschema.KindString:
		return "value" + strconv.Itoa(i+1)
	}
	return i + 1
}

func joinJSON(vs []any) string {
	parts := make([]string, 0, len(vs))
	for _, v := range vs {
		b, err := json.Marshal(v)
		if err != nil {
			continue
		}
		parts = append(parts, string(b))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Placeholder returns hint text for an input bound to s. Renderers show it
// in empty inputs.
func (v *Validator) Placeholder(name string, s *jsonschema.Schema) string {
	s = v.deref(s)
	tr := v.translator()
	if s == nil {
		return tr.Message("ph_field", map[string]string{"field": name})
	}
	switch s.Kind() {
	case jsonschema.KindArray:
		return ExampleArray(v.resolvedItems(s))
	case jsonschema.KindBoolean:
		return tr.Message("ph_boolean", nil)
	case jsonschema.KindNumber:
		return tr.Message("ph_number", nil)
	case jsonschema.KindInteger:
		return tr.Message("ph_integer", nil)
	case jsonschema.KindString:
		if len(s.Enum) > 0 {
			return tr.Message("ph_enum", map[string]string{
				"allowed": joinLiterals(s.Enum),
				"example": render(s.Enum[0]),
			})
		}
		return tr.Message("ph_string", nil)
	}
	return tr.Message("ph_field", map[string]string{"field": strings.TrimSpace(name)})
}

// resolvedItems returns a copy of the array schema s with its item schema
// dereferenced.
func (v *Validator) resolvedItems(s *jsonschema.Schema) *jsonschema.Schema {
	c := *s
	c.Items = v.deref(s.Items)
	return &c
}
