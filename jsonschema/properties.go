package jsonschema

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// Property is one named child of an object node.
type Property struct {
	Name   string
	Schema *Schema
}

// Properties keeps object members in document order; defaults and rendering
// follow the order the schema author wrote.
type Properties struct {
	list  []Property
	index map[string]int
}

// Set adds or replaces a property.
func (p *Properties) Set(name string, s *Schema) {
	if p.index == nil {
		p.index = map[string]int{}
	}
	if i, ok := p.index[name]; ok {
		p.list[i].Schema = s
		return
	}
	p.index[name] = len(p.list)
	p.list = append(p.list, Property{Name: name, Schema: s})
}

// Get returns the named schema or nil.
func (p *Properties) Get(name string) *Schema {
	if p == nil {
		return nil
	}
	if i, ok := p.index[name]; ok {
		return p.list[i].Schema
	}
	return nil
}

// Has reports whether the property is declared.
func (p *Properties) Has(name string) bool {
	if p == nil {
		return false
	}
	_, ok := p.index[name]
	return ok
}

// Len returns the number of properties.
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.list)
}

// All returns the properties in declaration order.
func (p *Properties) All() []Property {
	if p == nil {
		return nil
	}
	return append([]Property(nil), p.list...)
}

// Names returns property names in declaration order.
func (p *Properties) Names() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.list))
	for i, pr := range p.list {
		out[i] = pr.Name
	}
	return out
}

// UnmarshalJSON streams the object token by token so member order survives.
func (p *Properties) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("properties: expected object, got %v", tok)
	}
	*p = Properties{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := kt.(string)
		if !ok {
			return fmt.Errorf("properties: expected key, got %v", kt)
		}
		child := &Schema{}
		if err := dec.Decode(child); err != nil {
			return fmt.Errorf("properties.%s: %w", name, err)
		}
		p.Set(name, child)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
