package defaults

import (
	"github.com/reoring/formskema/fieldpath"
	"github.com/reoring/formskema/jsonschema"
)

// scope is the chain of objects enclosing the value being built, innermost
// first. Conditions look names up along it.
type scope struct {
	values map[string]any
	parent *scope
	ref    string // $ref the object was reached through, if any
}

// expanding reports whether ref is already being expanded further out.
func (s *scope) expanding(ref string) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.ref == ref {
			return true
		}
	}
	return false
}

func (s *scope) lookup(name string) (any, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.values[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// scopeOf chains the objects on the way from the root to p's parent.
func scopeOf(tree any, p fieldpath.Path) *scope {
	var sc *scope
	for i := 0; i < len(p); i++ {
		if m, ok := fieldpath.Get(tree, p[:i]).(map[string]any); ok {
			sc = &scope{values: m, parent: sc}
		}
	}
	return sc
}

type verdict int

const (
	unknown verdict = iota
	holds
	fails
)

// match evaluates an "if" schema made of literal-pinned properties.
// Anything it cannot decide (a missing name, a non-literal condition) is
// unknown.
func (w *Walker) match(cond *jsonschema.Schema, sc *scope) verdict {
	cond = w.doc.MustDeref(cond)
	if cond == nil || cond.Properties.Len() == 0 {
		return unknown
	}
	for _, pr := range cond.Properties.All() {
		lit, ok := jsonschema.Literal(w.doc.MustDeref(pr.Schema))
		if !ok {
			return unknown
		}
		v, ok := sc.lookup(pr.Name)
		if !ok {
			return unknown
		}
		if !jsonschema.LiteralEqual(lit, v) {
			return fails
		}
	}
	return holds
}

// activeBranches returns the then/else branches selected by s's conditions
// and the plain allOf mixins. A condition that cannot be decided contributes
// nothing.
func (w *Walker) activeBranches(s *jsonschema.Schema, sc *scope) []*jsonschema.Schema {
	var out []*jsonschema.Schema
	pick := func(c *jsonschema.Schema) {
		if c.If == nil {
			out = append(out, c)
			return
		}
		var b *jsonschema.Schema
		switch w.match(c.If, sc) {
		case holds:
			b = c.Then
		case fails:
			b = c.Else
		}
		if b = w.doc.MustDeref(b); b != nil {
			out = append(out, b)
		}
	}
	if s.If != nil {
		pick(s)
	}
	for _, sub := range s.AllOf {
		if sub = w.doc.MustDeref(sub); sub != nil {
			pick(sub)
		}
	}
	return out
}

func (w *Walker) isConditional(s *jsonschema.Schema) bool {
	s = w.doc.MustDeref(s)
	if s == nil {
		return false
	}
	if s.If != nil {
		return true
	}
	for _, sub := range s.AllOf {
		if sub = w.doc.MustDeref(sub); sub != nil && sub.If != nil {
			return true
		}
	}
	return false
}

// Conditional is an object member that exists only while a then/else branch
// declaring it is active. Triggers are the flag paths the branch conditions
// read.
type Conditional struct {
	Target   fieldpath.Path
	Triggers []fieldpath.Path
}

// Conditionals lists the conditional members of every object reachable from
// the root (the root included) through object members. Flags are bound to the
// nearest enclosing object that declares them. A member that is itself one of
// the flags is skipped.
func (w *Walker) Conditionals() []Conditional {
	var out []Conditional
	var visit func(s *jsonschema.Schema, p fieldpath.Path, chain []*jsonschema.Schema, refs []string)
	visit = func(s *jsonschema.Schema, p fieldpath.Path, chain []*jsonschema.Schema, refs []string) {
		if s != nil && s.Ref != "" {
			for _, r := range refs {
				if r == s.Ref {
					return
				}
			}
			refs = append(refs[:len(refs):len(refs)], s.Ref)
		}
		s = w.doc.MustDeref(s)
		if s == nil || !isObject(s) || len(p) > maxDepth {
			return
		}
		chain = append(chain, s)
		var branch []jsonschema.Property
		if w.isConditional(s) {
			branch = w.branchMembers(s)
			if trig := w.triggers(s, p, chain); len(trig) > 0 {
			members:
				for _, pr := range branch {
					target := p.Field(pr.Name)
					for _, t := range trig {
						if t.Overlaps(target) {
							continue members
						}
					}
					out = append(out, Conditional{Target: target, Triggers: trig})
				}
			}
		}
		for _, pr := range s.Properties.All() {
			visit(pr.Schema, p.Field(pr.Name), chain, refs)
		}
		for _, pr := range branch {
			visit(pr.Schema, p.Field(pr.Name), chain, refs)
		}
	}
	visit(w.doc.Root, fieldpath.Root(), nil, nil)
	return out
}

// branchMembers lists the members declared only inside then/else branches of
// s, first declaration wins.
func (w *Walker) branchMembers(s *jsonschema.Schema) []jsonschema.Property {
	var out []jsonschema.Property
	seen := map[string]bool{}
	add := func(b *jsonschema.Schema) {
		if b = w.doc.MustDeref(b); b == nil {
			return
		}
		for _, pr := range b.Properties.All() {
			if seen[pr.Name] || s.Properties.Has(pr.Name) {
				continue
			}
			seen[pr.Name] = true
			out = append(out, pr)
		}
	}
	conds := []*jsonschema.Schema{s}
	for _, sub := range s.AllOf {
		if sub = w.doc.MustDeref(sub); sub != nil {
			conds = append(conds, sub)
		}
	}
	for _, c := range conds {
		if c.If != nil {
			add(c.Then)
			add(c.Else)
		}
	}
	return out
}

// Refresh returns the value the conditional member at p should hold in tree:
// its current value while a branch declaring it is active, its defaults when
// it has just become active, and fieldpath.Absent otherwise.
func (w *Walker) Refresh(tree any, p fieldpath.Path) any {
	last, ok := p.Last()
	if !ok || last.IsIndex {
		return fieldpath.Absent
	}
	owner := p.Parent()
	cur, ok := fieldpath.Get(tree, owner).(map[string]any)
	if !ok {
		return fieldpath.Absent
	}
	s := w.doc.MustDeref(w.doc.Locate(tree, owner, w.opts.Discriminator))
	if s == nil {
		return fieldpath.Absent
	}
	sc := &scope{values: cur, parent: scopeOf(tree, owner)}
	for _, b := range w.activeBranches(s, sc) {
		ms := b.Properties.Get(last.Name)
		if ms == nil {
			continue
		}
		if v, ok := cur[last.Name]; ok {
			return fieldpath.Clone(v)
		}
		return w.build(ms, p, sc, nil)
	}
	return fieldpath.Absent
}

func (w *Walker) triggers(s *jsonschema.Schema, p fieldpath.Path, chain []*jsonschema.Schema) []fieldpath.Path {
	var names []string
	collect := func(c *jsonschema.Schema) {
		if c = w.doc.MustDeref(c); c == nil || c.If == nil {
			return
		}
		if cond := w.doc.MustDeref(c.If); cond != nil {
			names = append(names, cond.Properties.Names()...)
		}
	}
	collect(s)
	for _, sub := range s.AllOf {
		collect(sub)
	}

	var out []fieldpath.Path
	seen := map[string]bool{}
	for _, name := range names {
		// chain[i] is the schema at p[:i]; the target itself is last.
		for i := len(chain) - 1; i >= 0; i-- {
			if w.doc.Member(chain[i], name) == nil {
				continue
			}
			tp := append(fieldpath.Path{}, p[:i]...).Field(name)
			if !seen[tp.String()] {
				seen[tp.String()] = true
				out = append(out, tp)
			}
			break
		}
	}
	return out
}
