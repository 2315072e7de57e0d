package collection

import (
	"strconv"

	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/fieldpath"
	"github.com/reoring/formskema/jsonschema"
)

// Rule names recorded on cross-entry issues.
const (
	RuleOneElectron       = "no_electron"
	RuleUndefinedSpecies  = "undefined_species"
	RuleIonizationNeedIon = "ionization_needs_ions"
	RuleIonizationModels  = "ionization_no_models"
)

// Check runs every cross-entry check over tree. It is meant for submission
// time, not for every edit.
func (e *Editor) Check(tree any) formskema.Issues {
	var out formskema.Issues
	out = append(out, e.CheckSpecies(tree)...)
	out = append(out, e.CheckReferences(tree)...)
	out = append(out, e.CheckIonization(tree)...)
	out = append(out, e.CheckCharges(tree)...)
	return out
}

// CheckSpecies requires exactly one electron entry in the species collection.
func (e *Editor) CheckSpecies(tree any) formskema.Issues {
	sp := e.cfg.Species
	if len(sp.Path) == 0 || sp.Electron == nil {
		return nil
	}
	n := len(e.electrons(tree))
	if n == 1 {
		return nil
	}
	return formskema.Issues{e.crossEntry(sp.Path, RuleOneElectron,
		map[string]string{"count": strconv.Itoa(n)}, "count", n)}
}

// CheckReferences requires every reference field to name a defined species.
// Empty references are left to the field validator. Ionization model
// references only count while ionization is enabled.
func (e *Editor) CheckReferences(tree any) formskema.Issues {
	sp := e.cfg.Species
	if len(sp.Path) == 0 || sp.NameField == "" {
		return nil
	}
	names := map[string]bool{}
	species, _ := fieldpath.Get(tree, sp.Path).([]any)
	for _, s := range species {
		if n, ok := member(s, sp.NameField).(string); ok {
			names[n] = true
		}
	}

	var out formskema.Issues
	for _, ref := range e.cfg.References {
		if len(e.cfg.Ions.Models) > 0 && ref.Path.Equal(e.cfg.Ions.Models) && !e.flag(tree, e.cfg.Ions.IonizationFlag) {
			continue
		}
		arr, _ := fieldpath.Get(tree, ref.Path).([]any)
		for i, entry := range arr {
			name, ok := member(entry, ref.Field).(string)
			if !ok || name == "" || names[name] {
				continue
			}
			field := ref.Path.Index(i).Field(ref.Field)
			out = append(out, e.crossEntry(field, RuleUndefinedSpecies,
				map[string]string{"field": field.String(), "species": strconv.Quote(name)},
				"species", name))
		}
	}
	return out
}

// CheckIonization requires ions and at least one ionization model whenever
// ionization is enabled.
func (e *Editor) CheckIonization(tree any) formskema.Issues {
	ions := e.cfg.Ions
	if len(ions.IonizationFlag) == 0 || !e.flag(tree, ions.IonizationFlag) {
		return nil
	}
	var out formskema.Issues
	if len(ions.IonsFlag) > 0 && !e.flag(tree, ions.IonsFlag) {
		out = append(out, e.crossEntry(ions.IonizationFlag, RuleIonizationNeedIon, nil))
	}
	if len(ions.Models) > 0 {
		if models, _ := fieldpath.Get(tree, ions.Models).([]any); len(models) == 0 {
			out = append(out, e.crossEntry(ions.Models, RuleIonizationModels, nil))
		}
	}
	return out
}

// EnsureElectron completes the electron species before serialization: the
// single electron entry gets the candidate defaults for any member it lacks,
// and an electron entry is appended when there is none. Call it only after
// CheckSpecies passed.
func (e *Editor) EnsureElectron() error {
	sp := e.cfg.Species
	if len(sp.Path) == 0 || sp.Electron == nil {
		return nil
	}
	_, err := e.st.Mutate(func(tree any) (any, error) {
		idx := e.electrons(tree)
		if len(idx) == 0 {
			arr, err := entries(tree, sp.Path)
			if err != nil {
				return nil, err
			}
			entry, err := e.candidate(tree, sp.Path, sp.Electron)
			if err != nil {
				return nil, err
			}
			return fieldpath.Set(tree, sp.Path, append(arr, entry))
		}
		at := idx[0]
		arr, _ := fieldpath.Get(tree, sp.Path).([]any)
		prefix, err := fieldpath.Set(fieldpath.Clone(tree), sp.Path, append([]any{}, arr[:at]...))
		if err != nil {
			return nil, err
		}
		fresh, err := e.candidate(prefix, sp.Path, sp.Electron)
		if err != nil {
			return nil, err
		}
		cur, _ := arr[at].(map[string]any)
		defs, _ := fresh.(map[string]any)
		if cur == nil || defs == nil {
			return tree, nil
		}
		for k, v := range defs {
			if _, ok := cur[k]; !ok {
				cur[k] = v
			}
		}
		return tree, nil
	}, sp.Path)
	return err
}

// electrons returns the indexes of the electron entries.
func (e *Editor) electrons(tree any) []int {
	sp := e.cfg.Species
	arr, _ := fieldpath.Get(tree, sp.Path).([]any)
	var out []int
	for i, entry := range arr {
		if e.isElectron(entry) {
			out = append(out, i)
		}
	}
	return out
}

func (e *Editor) isElectron(entry any) bool {
	sp := e.cfg.Species
	v := member(entry, sp.Discriminator)
	return v != nil && sp.Electron != nil && jsonschema.LiteralEqual(v, sp.Electron)
}

func (e *Editor) flag(tree any, p fieldpath.Path) bool {
	b, _ := fieldpath.Get(tree, p).(bool)
	return b
}

func (e *Editor) crossEntry(p fieldpath.Path, rule string, data map[string]string, kv ...any) formskema.Issue {
	detail := e.translator().Message(rule, data)
	it := formskema.IssueKV(p, formskema.CodeCrossEntry,
		e.translator().Message(formskema.CodeCrossEntry, map[string]string{"detail": detail}), kv...)
	it.Rule = rule
	return it
}

func member(entry any, name string) any {
	if m, ok := entry.(map[string]any); ok {
		return m[name]
	}
	return nil
}
