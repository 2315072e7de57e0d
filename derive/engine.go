// Package derive recomputes dependent fields of a value tree.
//
// A Rule names the paths it reads (triggers), the path it writes (target)
// and a pure compute function over the whole tree. The Engine runs the rules
// touched by an edit exactly once each, in registration order, after the
// edit has been written.
package derive

import (
	"fmt"
	"reflect"

	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/fieldpath"
)

// Rule recomputes Target from the values at Triggers. Compute must be pure:
// the same tree yields the same value. Returning fieldpath.Absent removes the
// target.
type Rule struct {
	Name     string
	Triggers []fieldpath.Path
	Target   fieldpath.Path
	Compute  func(tree any) any
}

// Engine holds a validated rule set.
type Engine struct {
	rules []Rule
}

// NewEngine validates the rule set. Two rules writing the same target, a
// rule without triggers or compute, a rule writing the root, and a rule that
// triggers on its own target are configuration errors.
func NewEngine(rules ...Rule) (*Engine, error) {
	var problems []string
	owners := map[string]string{}
	for i, r := range rules {
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("rule#%d", i)
		}
		switch {
		case len(r.Target) == 0:
			problems = append(problems, fmt.Sprintf("%s: target is the root", name))
			continue
		case len(r.Triggers) == 0:
			problems = append(problems, fmt.Sprintf("%s: no triggers", name))
		case r.Compute == nil:
			problems = append(problems, fmt.Sprintf("%s: no compute function", name))
		}
		for _, t := range r.Triggers {
			if t.Overlaps(r.Target) {
				problems = append(problems, fmt.Sprintf("%s: trigger %s overlaps its own target", name, t))
			}
		}
		key := r.Target.String()
		if prev, dup := owners[key]; dup {
			problems = append(problems, fmt.Sprintf("%s and %s both write %s", prev, name, key))
			continue
		}
		owners[key] = name
	}
	if len(problems) > 0 {
		return nil, &formskema.ConfigurationError{Problems: problems}
	}
	return &Engine{rules: append([]Rule(nil), rules...)}, nil
}

// Apply runs every rule whose triggers overlap an edited path, or the target
// of a rule that already ran during this call. Each rule runs at most once.
// It returns the new root and the targets that were recomputed.
func (e *Engine) Apply(tree any, edited ...fieldpath.Path) (any, []fieldpath.Path, error) {
	touched := append([]fieldpath.Path(nil), edited...)
	var fired []fieldpath.Path
	for _, r := range e.rules {
		if !triggeredBy(r, touched) {
			continue
		}
		next, err := run(tree, r)
		if err != nil {
			return tree, fired, err
		}
		tree = next
		touched = append(touched, r.Target)
		fired = append(fired, r.Target)
	}
	return tree, fired, nil
}

// ApplyAll runs every rule once in registration order.
func (e *Engine) ApplyAll(tree any) (any, []fieldpath.Path, error) {
	var fired []fieldpath.Path
	for _, r := range e.rules {
		next, err := run(tree, r)
		if err != nil {
			return tree, fired, err
		}
		tree = next
		fired = append(fired, r.Target)
	}
	return tree, fired, nil
}

func triggeredBy(r Rule, touched []fieldpath.Path) bool {
	for _, t := range r.Triggers {
		for _, p := range touched {
			if t.Overlaps(p) {
				return true
			}
		}
	}
	return false
}

// run writes the rule's value at its target. Absent removes the target.
func run(tree any, r Rule) (any, error) {
	v := r.Compute(tree)
	if cur := fieldpath.Get(tree, r.Target); reflect.DeepEqual(cur, v) {
		return tree, nil
	}
	if fieldpath.IsAbsent(v) {
		next, _ := fieldpath.Delete(tree, r.Target)
		return next, nil
	}
	next, err := fieldpath.Set(tree, r.Target, v)
	if err != nil {
		return tree, fmt.Errorf("derive %s: %w", r.Name, err)
	}
	return next, nil
}
