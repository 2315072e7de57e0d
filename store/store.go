// Package store owns the value tree of one form session.
//
// Every mutation works on a copy of the tree and is committed only once the
// write and the derivations it triggers have succeeded, so readers never see
// a half-applied edit. A Store has a single writer and is not safe for
// concurrent use.
package store

import (
	"errors"

	"github.com/reoring/formskema/defaults"
	"github.com/reoring/formskema/derive"
	"github.com/reoring/formskema/fieldpath"
	"github.com/reoring/formskema/jsonschema"
)

// ErrNotReady is returned by every operation before Initialize.
var ErrNotReady = errors.New("store: not initialized")

// Edit describes a committed field edit.
type Edit struct {
	Path    fieldpath.Path
	Value   any // stored value (the prior value when an array parse failed)
	Outcome Outcome
	Derived []fieldpath.Path // targets recomputed by the derivation engine
}

// Store holds the value tree.
type Store struct {
	doc    *jsonschema.Document
	walker *defaults.Walker
	engine *derive.Engine
	disc   string

	tree  any
	ready bool
}

// New wires a store. engine may be nil when no rules are configured.
func New(walker *defaults.Walker, engine *derive.Engine, discriminator string) *Store {
	return &Store{doc: walker.Document(), walker: walker, engine: engine, disc: discriminator}
}

// Initialize builds the default tree and runs every derivation once.
func (s *Store) Initialize() (any, error) {
	tree := s.walker.Root()
	if s.engine != nil {
		var err error
		if tree, _, err = s.engine.ApplyAll(tree); err != nil {
			return nil, err
		}
	}
	s.tree, s.ready = tree, true
	return fieldpath.Clone(tree), nil
}

// Ready reports whether Initialize has run.
func (s *Store) Ready() bool { return s.ready }

// Snapshot returns a deep copy of the tree.
func (s *Store) Snapshot() any { return fieldpath.Clone(s.tree) }

// Get returns a copy of the value at p, or fieldpath.Absent.
func (s *Store) Get(p fieldpath.Path) any { return fieldpath.Clone(fieldpath.Get(s.tree, p)) }

// SchemaAt returns the dereferenced schema governing p in the current tree.
func (s *Store) SchemaAt(p fieldpath.Path) *jsonschema.Schema {
	return s.doc.Locate(s.tree, p, s.disc)
}

// ApplyEdit coerces raw per sub (or the schema found at p when sub is nil),
// writes it and runs the derivations triggered by p. An array input that
// does not parse leaves the prior value in place and reports ParseFailed.
func (s *Store) ApplyEdit(p fieldpath.Path, raw any, sub *jsonschema.Schema) (Edit, error) {
	if !s.ready {
		return Edit{}, ErrNotReady
	}
	if sub == nil {
		sub = s.SchemaAt(p)
	} else {
		sub = s.doc.MustDeref(sub)
	}
	v, outcome := Coerce(raw, sub)
	if outcome == ParseFailed && sub != nil && sub.Kind() == jsonschema.KindArray {
		return Edit{Path: p, Value: s.Get(p), Outcome: outcome}, nil
	}
	derived, err := s.Mutate(func(tree any) (any, error) {
		return fieldpath.Set(tree, p, v)
	}, p)
	if err != nil {
		return Edit{}, err
	}
	return Edit{Path: p, Value: fieldpath.Clone(v), Outcome: outcome, Derived: derived}, nil
}

// Mutate runs fn on a copy of the tree, then the derivations triggered by
// the touched paths, and commits the result. On error nothing changes.
func (s *Store) Mutate(fn func(tree any) (any, error), touched ...fieldpath.Path) ([]fieldpath.Path, error) {
	if !s.ready {
		return nil, ErrNotReady
	}
	work, err := fn(fieldpath.Clone(s.tree))
	if err != nil {
		return nil, err
	}
	var derived []fieldpath.Path
	if s.engine != nil {
		if work, derived, err = s.engine.Apply(work, touched...); err != nil {
			return nil, err
		}
	}
	s.tree = work
	return derived, nil
}

// Rederive runs every derivation over the current tree.
func (s *Store) Rederive() ([]fieldpath.Path, error) {
	if !s.ready {
		return nil, ErrNotReady
	}
	if s.engine == nil {
		return nil, nil
	}
	work, derived, err := s.engine.ApplyAll(fieldpath.Clone(s.tree))
	if err != nil {
		return nil, err
	}
	s.tree = work
	return derived, nil
}
