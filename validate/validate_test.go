package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/fieldpath"
	"github.com/reoring/formskema/i18n"
	"github.com/reoring/formskema/jsonschema"
	"github.com/reoring/formskema/validate"
)

const fieldsDoc = `{
  "type": "object",
  "properties": {
    "number_of_cells": {"type": "array", "items": {"type": "integer"}, "minItems": 3, "maxItems": 3},
    "cell_size": {"type": "array", "items": {"$ref": "#/definitions/Positive"}},
    "axes": {"type": "array", "items": {"type": "string", "enum": ["x", "y", "z"]}},
    "upper_bound": {"type": "array", "items": {"type": "number"}, "default": [0.5, 2]},
    "flags": {"type": "array", "items": {"type": "boolean"}, "minItems": 2},
    "enabled": {"type": "boolean"},
    "pulse_init": {"type": "number", "exclusiveMinimum": 0},
    "period": {"type": "integer", "minimum": 1, "maximum": 1000},
    "solver": {"type": "string", "enum": ["Yee", "Lehe"]},
    "kind": {"const": "electron"},
    "order": {"type": "integer", "enum": [1, 2, 4]},
    "name": {"type": "string"}
  },
  "definitions": {"Positive": {"type": "number"}}
}`

type fixture struct {
	doc *jsonschema.Document
	v   *validate.Validator
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	doc, err := jsonschema.Parse([]byte(fieldsDoc))
	require.NoError(t, err)
	return fixture{doc: doc, v: validate.New(doc, i18n.Dictionary("en"))}
}

func (f fixture) check(name string, value any, required bool) validate.Verdict {
	p := fieldpath.MustParse(name)
	return f.v.Field(p, value, f.doc.Locate(nil, p, "type"), required)
}

func code(v validate.Verdict) string {
	if v.Valid() {
		return ""
	}
	return v.Issue().Code
}

func TestField_CardinalityBeforeFormat(t *testing.T) {
	f := newFixture(t)
	v := f.check("number_of_cells", "[1,2]", false)
	require.False(t, v.Valid())
	assert.Equal(t, formskema.CodeTooShort, v.Issue().Code)
	assert.True(t, formskema.IsCardinality(v.Issue().Code))
	assert.Equal(t, "/number_of_cells", v.Issue().Path)
	assert.Equal(t, "Array must have at least 3 items.", v.Issue().Message)

	assert.Equal(t, formskema.CodeTooLong, code(f.check("number_of_cells", []any{1.0, 2.0, 3.0, 4.0}, false)))
}

func TestField_Arrays(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		field string
		value any
		want  string
	}{
		{"number_of_cells", "[192, 2048, 192]", ""},
		{"number_of_cells", []any{192.0, 2048.0, 192.0}, ""},
		{"number_of_cells", "not json", formskema.CodeInvalidFormat},
		{"number_of_cells", `{"a": 1}`, formskema.CodeInvalidFormat},
		{"number_of_cells", 12.0, formskema.CodeInvalidFormat},
		{"number_of_cells", "[1, 2.5, 3]", formskema.CodeInvalidElement},
		{"number_of_cells", "[1, \"2\", 3]", formskema.CodeInvalidElement},
		{"cell_size", "[1e-7, 2.5]", ""},
		{"cell_size", "[1e-7, true]", formskema.CodeInvalidElement},
		{"axes", `["x", "z"]`, ""},
		{"axes", `["x", "w"]`, formskema.CodeInvalidElement},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, code(f.check(tc.field, tc.value, false)), "%s=%v", tc.field, tc.value)
	}
}

func TestField_RequiredAndEmpty(t *testing.T) {
	f := newFixture(t)
	for _, empty := range []any{nil, "", "   ", fieldpath.Absent} {
		assert.Equal(t, formskema.CodeRequired, code(f.check("name", empty, true)))
		assert.True(t, f.check("name", empty, false).Valid(), "optional empty fields are valid")
	}
	assert.True(t, f.check("enabled", false, true).Valid(), "false is a value")
	assert.False(t, f.check("period", 0.0, false).Valid(), "zero is a value and is range-checked")
}

func TestField_Scalars(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		field string
		value any
		want  string
	}{
		{"enabled", true, ""},
		{"enabled", "false", ""},
		{"enabled", "yes", formskema.CodeInvalidType},
		{"enabled", 1.0, formskema.CodeInvalidType},
		{"pulse_init", "15.5", ""},
		{"pulse_init", 15.0, ""},
		{"pulse_init", "abc", formskema.CodeInvalidType},
		{"pulse_init", "0", formskema.CodeTooSmall},
		{"period", "12", ""},
		{"period", "12.5", formskema.CodeInvalidType},
		{"period", 2000.0, formskema.CodeTooBig},
		{"solver", "Yee", ""},
		{"solver", "FDTD", formskema.CodeInvalidEnum},
		{"kind", "electron", ""},
		{"kind", "ion", formskema.CodeInvalidEnum},
		{"order", 2.0, ""},
		{"order", "4", ""},
		{"order", 3.0, formskema.CodeInvalidEnum},
		{"name", 3.0, formskema.CodeInvalidType},
		{"unknown_field", "anything", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, code(f.check(tc.field, tc.value, false)), "%s=%v", tc.field, tc.value)
	}
}

func TestField_FirstFailureWins(t *testing.T) {
	f := newFixture(t)
	// integer type fails before enum and range are looked at
	v := f.check("order", "x", false)
	assert.Equal(t, formskema.CodeInvalidType, code(v))
}

func TestField_Deterministic(t *testing.T) {
	f := newFixture(t)
	inputs := []any{"[1,2]", "[1, 2.5, 3]", "", "abc", 5.0}
	for _, in := range inputs {
		first := f.check("number_of_cells", in, true)
		for i := 0; i < 5; i++ {
			again := f.check("number_of_cells", in, true)
			assert.Equal(t, first.Valid(), again.Valid())
			assert.Equal(t, first.Issue(), again.Issue())
		}
	}
}

func TestField_Localized(t *testing.T) {
	doc, err := jsonschema.Parse([]byte(fieldsDoc))
	require.NoError(t, err)
	v := validate.New(doc, i18n.Dictionary("ja"))
	p := fieldpath.MustParse("name")
	got := v.Field(p, "", doc.Locate(nil, p, ""), true)
	require.False(t, got.Valid())
	assert.Equal(t, "必須項目です。", got.Issue().Message)
}

func TestPlaceholder(t *testing.T) {
	f := newFixture(t)
	at := func(name string) *jsonschema.Schema { return f.doc.Locate(nil, fieldpath.MustParse(name), "") }

	assert.Equal(t, "[1, 2, 3]", f.v.Placeholder("number_of_cells", at("number_of_cells")))
	assert.Equal(t, "[0.5, 1.5, 2.5]", f.v.Placeholder("cell_size", at("cell_size")))
	assert.Equal(t, `["x", "y", "z"]`, f.v.Placeholder("axes", at("axes")))
	assert.Equal(t, "[0.5, 2]", f.v.Placeholder("upper_bound", at("upper_bound")))
	assert.Equal(t, "[true, false]", f.v.Placeholder("flags", at("flags")))
	assert.Equal(t, "Select true or false", f.v.Placeholder("enabled", at("enabled")))
	assert.Equal(t, "Enter an integer. Example: 42", f.v.Placeholder("period", at("period")))
	assert.Equal(t, "Choose one of: Yee, Lehe. Example: Yee", f.v.Placeholder("solver", at("solver")))
	assert.Equal(t, "Enter a value for ghost", f.v.Placeholder("ghost", nil))
}

func TestField_FormatHint(t *testing.T) {
	f := newFixture(t)
	v := f.check("number_of_cells", "1 2 3", false)
	require.False(t, v.Valid())
	it := v.Issue()
	assert.Equal(t, formskema.CodeInvalidFormat, it.Code)
	assert.Equal(t, "[1, 2, 3]", it.Hint)
	assert.Equal(t, "Invalid array format. Use JSON format, e.g., [1, 2, 3].", it.Message)
}
