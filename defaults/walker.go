// Package defaults builds initial value trees from a schema document.
package defaults

import (
	"errors"
	"fmt"

	"github.com/reoring/formskema/fieldpath"
	"github.com/reoring/formskema/jsonschema"
)

var (
	// ErrUnknownCandidate is returned when no union candidate carries the
	// requested discriminator value.
	ErrUnknownCandidate = errors.New("defaults: unknown candidate")
	// ErrNotCollection is returned when a path does not address an array.
	ErrNotCollection = errors.New("defaults: not a collection")
)

// Options tunes the walker.
type Options struct {
	// Discriminator is the property selecting union candidates when the
	// schema carries no discriminator hint of its own.
	Discriminator string
	// NonEmpty lists array paths seeded with one entry instead of [].
	NonEmpty []fieldpath.Path
}

// Walker produces defaults for a document. It is stateless apart from the
// document's own diagnostics.
type Walker struct {
	doc  *jsonschema.Document
	opts Options
}

func NewWalker(doc *jsonschema.Document, opts Options) *Walker {
	if opts.Discriminator == "" {
		opts.Discriminator = "type"
	}
	return &Walker{doc: doc, opts: opts}
}

// Document returns the document the walker reads.
func (w *Walker) Document() *jsonschema.Document { return w.doc }

// Root returns the default value tree for the whole document.
func (w *Walker) Root() any { return w.build(w.doc.Root, fieldpath.Root(), nil, nil) }

// For returns the defaults of s as if it were placed at p. Conditionals only
// see values inside s itself.
func (w *Walker) For(s *jsonschema.Schema, p fieldpath.Path) any {
	return w.build(s, p, nil, nil)
}

// At returns the defaults of the node governing p in tree. Conditionals are
// evaluated against the values currently held by p's ancestors.
func (w *Walker) At(tree any, p fieldpath.Path) any {
	s := w.doc.Locate(tree, p, w.opts.Discriminator)
	return w.build(s, p, scopeOf(tree, p), nil)
}

// Candidate builds a fresh entry for the collection at p. A nil
// discriminator selects the first candidate (or the fixed item schema).
func (w *Walker) Candidate(tree any, p fieldpath.Path, discriminator any) (any, error) {
	coll := w.doc.Locate(tree, p, w.opts.Discriminator)
	if coll == nil || coll.Kind() != jsonschema.KindArray {
		return nil, fmt.Errorf("%w: %s", ErrNotCollection, p)
	}
	n := 0
	if arr, ok := fieldpath.Get(tree, p).([]any); ok {
		n = len(arr)
	}
	item := w.doc.MustDeref(coll.ItemAt(n))
	if item == nil {
		return nil, fmt.Errorf("%w: %s has no item schema", ErrNotCollection, p)
	}
	entry, err := w.candidateOf(item, discriminator)
	if err != nil {
		return nil, fmt.Errorf("%w: %v at %s", err, discriminator, p)
	}
	return w.build(entry, p.Index(n), scopeOf(tree, p.Index(n)), nil), nil
}

func (w *Walker) candidateOf(item *jsonschema.Schema, discriminator any) (*jsonschema.Schema, error) {
	if item.Kind() != jsonschema.KindOneOf {
		if discriminator != nil {
			lit, ok := jsonschema.Literal(w.doc.MustDeref(item.Property(w.opts.Discriminator)))
			if ok && !jsonschema.LiteralEqual(lit, discriminator) {
				return nil, ErrUnknownCandidate
			}
		}
		return item, nil
	}
	if discriminator == nil {
		if c := w.doc.First(item); c != nil {
			return c, nil
		}
		return nil, ErrUnknownCandidate
	}
	c, ok := w.doc.CandidateFor(item, w.opts.Discriminator, discriminator)
	if !ok {
		return nil, ErrUnknownCandidate
	}
	return c, nil
}

// maxDepth bounds nesting that no $ref repetition explains.
const maxDepth = 64

// build returns the defaults of s at p. A $ref already being expanded
// further out is recursive; it is left nil and reported in the document's
// diagnostics.
func (w *Walker) build(s *jsonschema.Schema, p fieldpath.Path, sc *scope, seed map[string]any) any {
	var ref string
	if s != nil {
		ref = s.Ref
	}
	if ref != "" && sc.expanding(ref) {
		w.doc.Warnf("recursive $ref %s not expanded at %s", ref, p.Pointer())
		return nil
	}
	s, ok := w.doc.Deref(s)
	if !ok || len(p) > maxDepth {
		return nil
	}
	if isObject(s) {
		return w.object(s, ref, p, sc, seed)
	}
	if s.HasDefault {
		return fieldpath.Clone(s.Default)
	}
	if lit, ok := jsonschema.Literal(s); ok {
		return fieldpath.Clone(lit)
	}
	switch s.Kind() {
	case jsonschema.KindArray:
		if w.nonEmpty(p) {
			if entry, err := w.candidateOf(w.doc.MustDeref(s.ItemAt(0)), nil); err == nil && entry != nil {
				return []any{w.build(entry, p.Index(0), sc, nil)}
			}
		}
		return []any{}
	case jsonschema.KindString:
		return ""
	case jsonschema.KindNumber, jsonschema.KindInteger:
		return 0.0
	case jsonschema.KindBoolean:
		return false
	case jsonschema.KindOneOf:
		return w.build(w.doc.First(s), p, sc, seed)
	}
	return nil
}

func isObject(s *jsonschema.Schema) bool {
	k := s.Kind()
	return k == jsonschema.KindObject || k == jsonschema.KindAllOf
}

// object builds the members in declaration order. Members holding
// conditionals are built last so their conditions see every sibling.
func (w *Walker) object(s *jsonschema.Schema, ref string, p fieldpath.Path, sc *scope, seed map[string]any) any {
	out := map[string]any{}
	inner := &scope{values: out, parent: sc, ref: ref}
	member := func(name string, ms *jsonschema.Schema) {
		if _, done := out[name]; done {
			return
		}
		if v, ok := seed[name]; ok {
			out[name] = v
			return
		}
		out[name] = w.build(ms, p.Field(name), inner, nil)
	}

	var deferred []jsonschema.Property
	for _, pr := range s.Properties.All() {
		if w.isConditional(pr.Schema) {
			deferred = append(deferred, pr)
			continue
		}
		member(pr.Name, pr.Schema)
	}
	for _, pr := range deferred {
		member(pr.Name, pr.Schema)
	}

	for _, branch := range w.activeBranches(s, inner) {
		for _, pr := range branch.Properties.All() {
			member(pr.Name, pr.Schema)
		}
	}

	if m, ok := s.Default.(map[string]any); ok && s.HasDefault {
		for k, v := range m {
			if _, seeded := seed[k]; !seeded {
				out[k] = fieldpath.Clone(v)
			}
		}
	}
	return out
}

func (w *Walker) nonEmpty(p fieldpath.Path) bool {
	for _, np := range w.opts.NonEmpty {
		if np.Equal(p) {
			return true
		}
	}
	return false
}
