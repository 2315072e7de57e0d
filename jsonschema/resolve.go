package jsonschema

import (
	"strings"

	json "github.com/goccy/go-json"
)

// Resolve looks up a "#/"-rooted pointer in the document. Each segment is a
// literal object key (~1 and ~0 unescaped); array indexes are not followed.
// A missing segment yields (nil, false), never an error.
func (d *Document) Resolve(ref string) (*Schema, bool) {
	if d == nil {
		return nil, false
	}
	if ref == "#" || ref == "#/" {
		return d.Root, true
	}
	if !strings.HasPrefix(ref, "#/") {
		return nil, false
	}
	cur := json.RawMessage(d.raw)
	for _, seg := range strings.Split(ref[2:], "/") {
		seg = strings.ReplaceAll(strings.ReplaceAll(seg, "~1", "/"), "~0", "~")
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(cur, &obj); err != nil {
			return nil, false
		}
		next, ok := obj[seg]
		if !ok {
			return nil, false
		}
		cur = next
	}
	s := &Schema{}
	if err := json.Unmarshal(cur, s); err != nil {
		return nil, false
	}
	return s, true
}

// Deref follows $ref chains and unwraps single-member allOf wrappers and
// nullable unions (anyOf [X, null]) into the node they stand for. Keywords set
// beside a $ref (title, description, default) override the target's. When a
// reference cannot be resolved, or a cycle is found, the warning lands in
// Diag and ok is false.
func (d *Document) Deref(s *Schema) (*Schema, bool) {
	visited := map[string]bool{}
	for s != nil {
		switch {
		case s.Ref != "":
			if visited[s.Ref] {
				d.diag.warnf("cyclic $ref detected at %s", s.Ref)
				return nil, false
			}
			visited[s.Ref] = true
			target, ok := d.Resolve(s.Ref)
			if !ok {
				d.diag.warnf("$ref %q not found", s.Ref)
				return nil, false
			}
			s = overlay(s, target)
		case isWrapper(s):
			s = overlay(s, s.AllOf[0])
		case nullableMember(s) != nil:
			inner := overlay(s, nullableMember(s))
			inner.Nullable = true
			s = inner
		default:
			return s, true
		}
	}
	return nil, false
}

// MustDeref is Deref for callers that treat an unresolved node as absent.
func (d *Document) MustDeref(s *Schema) *Schema {
	out, _ := d.Deref(s)
	return out
}

func isWrapper(s *Schema) bool {
	return len(s.AllOf) == 1 && s.Type == "" && s.Properties == nil && s.If == nil && s.AllOf[0].If == nil
}

// nullableMember returns X for anyOf/oneOf of exactly [X, {type: null}].
func nullableMember(s *Schema) *Schema {
	cands := s.Candidates()
	if len(cands) != 2 {
		return nil
	}
	var member *Schema
	nulls := 0
	for _, c := range cands {
		if c.Type == "null" && c.Ref == "" {
			nulls++
			continue
		}
		member = c
	}
	if nulls != 1 {
		return nil
	}
	return member
}

// overlay copies target and applies the annotation keywords present on the
// referring node.
func overlay(from, target *Schema) *Schema {
	out := *target
	if from.Title != "" {
		out.Title = from.Title
	}
	if from.Description != "" {
		out.Description = from.Description
	}
	if from.HasDefault {
		out.Default, out.HasDefault = from.Default, true
	}
	if from.ReadOnly {
		out.ReadOnly = true
	}
	if from.Nullable {
		out.Nullable = true
	}
	return &out
}
