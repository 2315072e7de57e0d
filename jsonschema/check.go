package jsonschema

import (
	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/fieldpath"
)

// Check reports structural problems that make the document unusable as a form:
// a root without properties, and any of the named discriminated collections
// missing or lacking items.oneOf. The result is a *formskema.ConfigurationError
// or nil. Unresolved references elsewhere are warnings, not problems.
func (d *Document) Check(discriminated ...string) error {
	var problems []string
	root := d.MustDeref(d.Root)
	if root == nil || root.Properties.Len() == 0 {
		problems = append(problems, "schema root has no properties")
	}
	for _, raw := range discriminated {
		p, err := fieldpath.Parse(raw)
		if err != nil {
			problems = append(problems, err.Error())
			continue
		}
		coll := d.Locate(nil, p, "")
		if coll == nil {
			problems = append(problems, "collection "+raw+" is not declared")
			continue
		}
		items := d.MustDeref(coll.Items)
		if coll.Kind() != KindArray || items == nil || len(items.Candidates()) == 0 {
			problems = append(problems, "collection "+raw+" is missing items.oneOf")
		}
	}
	if len(problems) > 0 {
		return &formskema.ConfigurationError{Problems: problems}
	}
	return nil
}
