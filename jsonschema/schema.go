package jsonschema

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// Kind is the tagged-union discriminator of a schema node.
type Kind int

const (
	KindUnknown Kind = iota
	KindObject
	KindArray
	KindString
	KindNumber
	KindInteger
	KindBoolean
	KindNull
	KindReference
	KindOneOf
	KindAllOf
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	case KindNull:
		return "null"
	case KindReference:
		return "reference"
	case KindOneOf:
		return "oneOf"
	case KindAllOf:
		return "allOf"
	default:
		return "unknown"
	}
}

// Schema is one node of a form schema document. Nodes are decoded once and
// never mutated afterwards.
type Schema struct {
	Title       string
	Description string

	// Type is the first non-null entry of the "type" keyword. A type array
	// containing "null" sets Nullable.
	Type     string
	Nullable bool

	Ref    string
	Format string

	Default    any
	HasDefault bool
	Const      any
	HasConst   bool
	Enum       []any
	ReadOnly   bool

	// Object
	Properties *Properties
	Required   []string

	// Array. Tuple-form items ("items": [...]) land in PrefixItems.
	Items       *Schema
	PrefixItems []*Schema
	MinItems    *int
	MaxItems    *int

	// Numeric
	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum *float64
	ExclusiveMaximum *float64

	// Union / conditional
	OneOf []*Schema
	AnyOf []*Schema
	AllOf []*Schema
	If    *Schema
	Then  *Schema
	Else  *Schema

	Discriminator *Discriminator
}

// Discriminator is the OpenAPI-style hint naming the property that selects a
// union candidate. Mapping values are $ref pointers.
type Discriminator struct {
	PropertyName string            `json:"propertyName"`
	Mapping      map[string]string `json:"mapping"`
}

type wireSchema struct {
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Type             json.RawMessage `json:"type"`
	Ref              string          `json:"$ref"`
	Format           string          `json:"format"`
	Default          json.RawMessage `json:"default"`
	Const            json.RawMessage `json:"const"`
	Enum             []any           `json:"enum"`
	ReadOnly         bool            `json:"readOnly"`
	Properties       *Properties     `json:"properties"`
	Required         []string        `json:"required"`
	Items            json.RawMessage `json:"items"`
	PrefixItems      []*Schema       `json:"prefixItems"`
	MinItems         *int            `json:"minItems"`
	MaxItems         *int            `json:"maxItems"`
	Minimum          *float64        `json:"minimum"`
	Maximum          *float64        `json:"maximum"`
	ExclusiveMinimum json.RawMessage `json:"exclusiveMinimum"`
	ExclusiveMaximum json.RawMessage `json:"exclusiveMaximum"`
	OneOf            []*Schema       `json:"oneOf"`
	AnyOf            []*Schema       `json:"anyOf"`
	AllOf            []*Schema       `json:"allOf"`
	If               *Schema         `json:"if"`
	Then             *Schema         `json:"then"`
	Else             *Schema         `json:"else"`
	Discriminator    *Discriminator  `json:"discriminator"`
}

// UnmarshalJSON decodes a schema node, recording keyword presence for
// default/const and accepting both the string and array forms of "type".
func (s *Schema) UnmarshalJSON(b []byte) error {
	var w wireSchema
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*s = Schema{
		Title:       w.Title,
		Description: w.Description,
		Ref:         w.Ref,
		Format:      w.Format,
		Enum:        w.Enum,
		ReadOnly:    w.ReadOnly,
		Properties:  w.Properties,
		Required:    w.Required,
		PrefixItems: w.PrefixItems,
		MinItems:    w.MinItems,
		MaxItems:    w.MaxItems,
		Minimum:     w.Minimum,
		Maximum:     w.Maximum,
		OneOf:       w.OneOf,
		AnyOf:       w.AnyOf,
		AllOf:       w.AllOf,
		If:          w.If,
		Then:        w.Then,
		Else:        w.Else,

		Discriminator: w.Discriminator,
	}
	if err := s.decodeType(w.Type); err != nil {
		return err
	}
	if len(w.Default) > 0 {
		if err := json.Unmarshal(w.Default, &s.Default); err != nil {
			return fmt.Errorf("default: %w", err)
		}
		s.HasDefault = true
	}
	if len(w.Const) > 0 {
		if err := json.Unmarshal(w.Const, &s.Const); err != nil {
			return fmt.Errorf("const: %w", err)
		}
		s.HasConst = true
	}
	if err := s.decodeItems(w.Items); err != nil {
		return err
	}
	// draft-04 booleans are ignored; only the numeric form is a bound.
	s.ExclusiveMinimum = numericBound(w.ExclusiveMinimum)
	s.ExclusiveMaximum = numericBound(w.ExclusiveMaximum)
	return nil
}

func (s *Schema) decodeType(raw json.RawMessage) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	if raw[0] == '[' {
		var types []string
		if err := json.Unmarshal(raw, &types); err != nil {
			return fmt.Errorf("type: %w", err)
		}
		for _, t := range types {
			if t == "null" {
				s.Nullable = true
				continue
			}
			if s.Type == "" {
				s.Type = t
			}
		}
		if s.Type == "" && s.Nullable {
			s.Type = "null"
		}
		return nil
	}
	if err := json.Unmarshal(raw, &s.Type); err != nil {
		return fmt.Errorf("type: %w", err)
	}
	return nil
}

func (s *Schema) decodeItems(raw json.RawMessage) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	switch raw[0] {
	case '[':
		var tuple []*Schema
		if err := json.Unmarshal(raw, &tuple); err != nil {
			return fmt.Errorf("items: %w", err)
		}
		s.PrefixItems = append(tuple, s.PrefixItems...)
	case '{':
		s.Items = &Schema{}
		if err := json.Unmarshal(raw, s.Items); err != nil {
			return fmt.Errorf("items: %w", err)
		}
	}
	return nil
}

func numericBound(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	return &f
}

// Kind classifies the node. A $ref wins over everything else, then unions,
// then the declared type; untyped nodes are inferred from their keywords.
func (s *Schema) Kind() Kind {
	if s == nil {
		return KindUnknown
	}
	if s.Ref != "" {
		return KindReference
	}
	if len(s.OneOf) > 0 || len(s.AnyOf) > 0 {
		return KindOneOf
	}
	if len(s.AllOf) > 0 && s.Type == "" && s.Properties == nil {
		return KindAllOf
	}
	switch s.Type {
	case "object":
		return KindObject
	case "array":
		return KindArray
	case "string":
		return KindString
	case "number":
		return KindNumber
	case "integer":
		return KindInteger
	case "boolean":
		return KindBoolean
	case "null":
		return KindNull
	}
	switch {
	case s.Properties != nil || len(s.AllOf) > 0:
		return KindObject
	case s.Items != nil || len(s.PrefixItems) > 0:
		return KindArray
	case s.HasConst:
		return kindOfLiteral(s.Const)
	case len(s.Enum) > 0:
		return kindOfLiteral(s.Enum[0])
	}
	return KindUnknown
}

func kindOfLiteral(v any) Kind {
	switch t := v.(type) {
	case string:
		return KindString
	case bool:
		return KindBoolean
	case float64:
		if t == float64(int64(t)) {
			return KindInteger
		}
		return KindNumber
	case nil:
		return KindNull
	case map[string]any:
		return KindObject
	case []any:
		return KindArray
	}
	return KindUnknown
}

// Candidates returns the oneOf alternatives, falling back to anyOf.
func (s *Schema) Candidates() []*Schema {
	if s == nil {
		return nil
	}
	if len(s.OneOf) > 0 {
		return s.OneOf
	}
	return s.AnyOf
}

// ItemAt returns the schema governing element i of an array node.
func (s *Schema) ItemAt(i int) *Schema {
	if s == nil {
		return nil
	}
	if i >= 0 && i < len(s.PrefixItems) {
		return s.PrefixItems[i]
	}
	return s.Items
}

// IsRequired reports whether name is listed in the node's required set.
func (s *Schema) IsRequired(name string) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Property returns the named child schema, or nil.
func (s *Schema) Property(name string) *Schema {
	if s == nil || s.Properties == nil {
		return nil
	}
	return s.Properties.Get(name)
}

// ConstOf returns the const literal declared on the named property.
func (s *Schema) ConstOf(name string) (any, bool) {
	p := s.Property(name)
	if p == nil || !p.HasConst {
		return nil, false
	}
	return p.Const, true
}
