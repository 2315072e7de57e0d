package derive

import (
	"fmt"
	"strings"

	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/fieldpath"
	"github.com/reoring/formskema/internal/numeric"
)

// Product multiplies the factor sequences element-wise. When a factor does
// not read as a numeric sequence, or the lengths differ, the target becomes
// the empty sequence: the derived value is undefined, not an error.
func Product(name string, target fieldpath.Path, factors ...fieldpath.Path) Rule {
	return Rule{
		Name:     name,
		Triggers: factors,
		Target:   target,
		Compute: func(tree any) any {
			var acc []float64
			for i, f := range factors {
				seq, ok := numeric.Sequence(fieldpath.Get(tree, f))
				if !ok || (i > 0 && len(seq) != len(acc)) {
					return []any{}
				}
				if i == 0 {
					acc = seq
					continue
				}
				for j := range acc {
					acc[j] *= seq[j]
				}
			}
			out := make([]any, len(acc))
			for i, v := range acc {
				out[i] = v
			}
			return out
		},
	}
}

// Mirror keeps target equal to source. An absent source leaves the target
// alone.
func Mirror(name string, target, source fieldpath.Path) Rule {
	return Rule{
		Name:     name,
		Triggers: []fieldpath.Path{source},
		Target:   target,
		Compute: func(tree any) any {
			v := fieldpath.Get(tree, source)
			if fieldpath.IsAbsent(v) {
				return fieldpath.Get(tree, target)
			}
			return fieldpath.Clone(v)
		},
	}
}

// Refresher yields the value a conditional member should hold in a tree, or
// fieldpath.Absent while no active branch declares it.
type Refresher interface {
	Refresh(tree any, p fieldpath.Path) any
}

// Conditional keeps a then/else member in step with the flags its branch
// conditions read: the member appears with its defaults when a branch
// declaring it becomes active, keeps its value while it stays active and is
// removed otherwise.
func Conditional(name string, target fieldpath.Path, flags []fieldpath.Path, r Refresher) Rule {
	return Rule{
		Name:     name,
		Triggers: flags,
		Target:   target,
		Compute:  func(tree any) any { return r.Refresh(tree, target) },
	}
}

// Spec is the declarative form of a rule, as written in configuration.
type Spec struct {
	Target string   `yaml:"target" json:"target"`
	Op     string   `yaml:"op" json:"op"`
	Inputs []string `yaml:"inputs" json:"inputs"`
}

const (
	OpProduct = "product"
	OpMirror  = "mirror"
)

// FromSpecs turns configured rules into Rules. Unknown operations, malformed
// paths and wrong input counts are configuration errors.
func FromSpecs(specs []Spec) ([]Rule, error) {
	var (
		rules    []Rule
		problems []string
	)
	for i, s := range specs {
		target, err := fieldpath.Parse(s.Target)
		if err != nil {
			problems = append(problems, fmt.Sprintf("derivations[%d].target: %v", i, err))
			continue
		}
		var inputs []fieldpath.Path
		bad := false
		for j, in := range s.Inputs {
			p, err := fieldpath.Parse(in)
			if err != nil {
				problems = append(problems, fmt.Sprintf("derivations[%d].inputs[%d]: %v", i, j, err))
				bad = true
				continue
			}
			inputs = append(inputs, p)
		}
		if bad {
			continue
		}
		name := s.Target
		switch strings.ToLower(s.Op) {
		case OpProduct:
			if len(inputs) < 2 {
				problems = append(problems, fmt.Sprintf("derivations[%d]: product needs at least two inputs", i))
				continue
			}
			rules = append(rules, Product(name, target, inputs...))
		case OpMirror:
			if len(inputs) != 1 {
				problems = append(problems, fmt.Sprintf("derivations[%d]: mirror needs exactly one input", i))
				continue
			}
			rules = append(rules, Mirror(name, target, inputs[0]))
		default:
			problems = append(problems, fmt.Sprintf("derivations[%d]: unknown op %q", i, s.Op))
		}
	}
	if len(problems) > 0 {
		return nil, &formskema.ConfigurationError{Problems: problems}
	}
	return rules, nil
}
