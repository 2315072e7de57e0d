package jsonschema

import (
	"reflect"

	"github.com/reoring/formskema/fieldpath"
)

// Literal returns the value a property pins: its const, or the only member of
// a one-element enum.
func Literal(s *Schema) (any, bool) {
	if s == nil {
		return nil, false
	}
	if s.HasConst {
		return s.Const, true
	}
	if len(s.Enum) == 1 {
		return s.Enum[0], true
	}
	return nil, false
}

// LiteralEqual compares two decoded JSON literals, treating all numeric kinds
// as float64.
func LiteralEqual(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// DiscriminatorOf names the property selecting among s's candidates: the
// schema's own discriminator hint when present, else fallback.
func DiscriminatorOf(s *Schema, fallback string) string {
	if s != nil && s.Discriminator != nil && s.Discriminator.PropertyName != "" {
		return s.Discriminator.PropertyName
	}
	return fallback
}

// CandidateFor returns the dereferenced union candidate whose discriminator
// literal equals value.
func (d *Document) CandidateFor(s *Schema, discriminator string, value any) (*Schema, bool) {
	if s == nil {
		return nil, false
	}
	disc := DiscriminatorOf(s, discriminator)
	if s.Discriminator != nil {
		if key, ok := value.(string); ok {
			if ref, ok := s.Discriminator.Mapping[key]; ok {
				if c, ok := d.Deref(&Schema{Ref: ref}); ok {
					return c, true
				}
			}
		}
	}
	for _, cand := range s.Candidates() {
		c := d.MustDeref(cand)
		if c == nil {
			continue
		}
		lit, ok := Literal(d.MustDeref(c.Property(disc)))
		if ok && LiteralEqual(lit, value) {
			return c, true
		}
	}
	return nil, false
}

// First returns the first resolvable candidate of a union.
func (d *Document) First(s *Schema) *Schema {
	if s == nil {
		return nil
	}
	for _, cand := range s.Candidates() {
		if c := d.MustDeref(cand); c != nil {
			return c
		}
	}
	return nil
}

// Select picks the candidate governing an existing value: the one matching
// the value's discriminator, else the first candidate.
func (d *Document) Select(s *Schema, discriminator string, value any) *Schema {
	if m, ok := value.(map[string]any); ok {
		if v, ok := m[DiscriminatorOf(s, discriminator)]; ok {
			if c, ok := d.CandidateFor(s, discriminator, v); ok {
				return c
			}
		}
	}
	return d.First(s)
}

// Member returns the schema of a named object member. Members declared only
// inside allOf conditionals (then/else branches) are found as well.
func (d *Document) Member(s *Schema, name string) *Schema {
	if s == nil {
		return nil
	}
	if p := s.Property(name); p != nil {
		return p
	}
	branches := []*Schema{s.Then, s.Else}
	for _, sub := range s.AllOf {
		sub = d.MustDeref(sub)
		if sub == nil {
			continue
		}
		if p := sub.Property(name); p != nil {
			return p
		}
		branches = append(branches, sub.Then, sub.Else)
	}
	for _, b := range branches {
		if p := d.MustDeref(b).Property(name); p != nil {
			return p
		}
	}
	return nil
}

// Locate returns the dereferenced schema governing the value at p. Unions on
// the way are narrowed using the discriminator of the value currently in tree.
// It returns nil when p leaves the schema.
func (d *Document) Locate(tree any, p fieldpath.Path, discriminator string) *Schema {
	node := d.Root
	cur := tree
	for _, seg := range p {
		node = d.settle(node, cur, discriminator)
		if node == nil {
			return nil
		}
		if seg.IsIndex {
			node = node.ItemAt(seg.Index)
		} else {
			node = d.Member(node, seg.Name)
		}
		cur = fieldpath.Get(cur, fieldpath.Path{seg})
	}
	return d.settle(node, cur, discriminator)
}

func (d *Document) settle(s *Schema, value any, discriminator string) *Schema {
	s = d.MustDeref(s)
	if s != nil && s.Kind() == KindOneOf {
		return d.Select(s, discriminator, value)
	}
	return s
}
