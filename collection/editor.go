// Package collection edits repeated-structure arrays of a form (species,
// diagnostics, ionization models) and checks the constraints that span
// their entries.
//
// Entries are built from schema defaults through the walker and written
// through the store, so every operation is atomic and re-runs the
// derivations that depend on the collection.
package collection

import (
	"errors"
	"fmt"

	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/defaults"
	"github.com/reoring/formskema/fieldpath"
	"github.com/reoring/formskema/i18n"
	"github.com/reoring/formskema/store"
)

// Species describes the species collection.
type Species struct {
	Path          fieldpath.Path
	Discriminator string // entry member selecting the candidate, e.g. "type"
	Electron      any    // discriminator value marking the electron species
	NameField     string // entry member other collections refer to
	// ChargeField and FixedChargeField are the ion charge members whose
	// presence depends on the ion mode. Empty disables the charge rules.
	ChargeField      string
	FixedChargeField string
}

// Reference is a collection whose entries name a species in Field.
type Reference struct {
	Path  fieldpath.Path
	Field string
}

// Ions locates the two ion flags and the ionization model collection.
type Ions struct {
	Models         fieldpath.Path
	IonsFlag       fieldpath.Path
	IonizationFlag fieldpath.Path
}

// Config wires an Editor to the form's conventions.
type Config struct {
	Species    Species
	References []Reference
	Ions       Ions
	// Translator renders cross-entry messages; nil means English.
	Translator i18n.Translator
}

// Editor adds, removes and replaces collection entries.
type Editor struct {
	st     *store.Store
	walker *defaults.Walker
	cfg    Config
}

// New returns an Editor writing through st.
func New(st *store.Store, walker *defaults.Walker, cfg Config) *Editor {
	if cfg.Species.Discriminator == "" {
		cfg.Species.Discriminator = "type"
	}
	return &Editor{st: st, walker: walker, cfg: cfg}
}

func (e *Editor) translator() i18n.Translator { return i18n.Or(e.cfg.Translator) }

// Add appends a freshly defaulted entry to the collection at p and returns
// it. A nil discriminator takes the first candidate. An unknown
// discriminator yields formskema.Issues with code discriminator_unknown and
// leaves the collection untouched.
func (e *Editor) Add(p fieldpath.Path, discriminator any) (any, error) {
	if !e.st.Ready() {
		return nil, store.ErrNotReady
	}
	var entry any
	_, err := e.st.Mutate(func(tree any) (any, error) {
		arr, err := entries(tree, p)
		if err != nil {
			return nil, err
		}
		if entry, err = e.candidate(tree, p, discriminator); err != nil {
			return nil, err
		}
		return fieldpath.Set(tree, p, append(arr, fieldpath.Clone(entry)))
	}, p)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Remove deletes the entry at index i; later entries shift down. An index
// out of range is a no-op and reports false.
func (e *Editor) Remove(p fieldpath.Path, i int) (bool, error) {
	if !e.st.Ready() {
		return false, store.ErrNotReady
	}
	arr, _ := e.st.Get(p).([]any)
	if i < 0 || i >= len(arr) {
		return false, nil
	}
	_, err := e.st.Mutate(func(tree any) (any, error) {
		root, ok := fieldpath.Delete(tree, p.Index(i))
		if !ok {
			return nil, fmt.Errorf("%w: %s", fieldpath.ErrIndexOutOfRange, p.Index(i))
		}
		return root, nil
	}, p)
	return err == nil, err
}

// ChangeDiscriminator replaces the entry at index i with a freshly defaulted
// entry of the candidate selected by value. Nothing of the prior entry is
// kept.
func (e *Editor) ChangeDiscriminator(p fieldpath.Path, i int, value any) (any, error) {
	if !e.st.Ready() {
		return nil, store.ErrNotReady
	}
	var entry any
	_, err := e.st.Mutate(func(tree any) (any, error) {
		arr, err := entries(tree, p)
		if err != nil {
			return nil, err
		}
		if i < 0 || i >= len(arr) {
			return nil, fmt.Errorf("%w: %s", fieldpath.ErrIndexOutOfRange, p.Index(i))
		}
		// Build against the prefix so the entry sees the item schema and
		// scope of position i.
		prefix, err := fieldpath.Set(fieldpath.Clone(tree), p, append([]any{}, arr[:i]...))
		if err != nil {
			return nil, err
		}
		if entry, err = e.candidate(prefix, p, value); err != nil {
			return nil, err
		}
		return fieldpath.Set(tree, p.Index(i), fieldpath.Clone(entry))
	}, p.Index(i))
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Len returns the number of entries in the collection at p.
func (e *Editor) Len(p fieldpath.Path) int {
	arr, _ := e.st.Get(p).([]any)
	return len(arr)
}

func (e *Editor) candidate(tree any, p fieldpath.Path, discriminator any) (any, error) {
	entry, err := e.walker.Candidate(tree, p, discriminator)
	if errors.Is(err, defaults.ErrUnknownCandidate) {
		field := e.cfg.Species.Discriminator
		msg := e.translator().Message(formskema.CodeDiscriminatorUnknown, map[string]string{
			"field": field,
			"value": fmt.Sprint(discriminator),
		})
		return nil, formskema.Issues{formskema.IssueKV(p, formskema.CodeDiscriminatorUnknown, msg,
			"field", field, "value", discriminator)}
	}
	if err == nil && p.Equal(e.cfg.Species.Path) {
		e.settleEntry(entry, e.ModeOf(tree))
	}
	return entry, err
}

// entries returns the array at p; a missing or null collection is empty.
func entries(tree any, p fieldpath.Path) ([]any, error) {
	switch v := fieldpath.Get(tree, p).(type) {
	case []any:
		return v, nil
	case nil:
		return nil, nil
	default:
		if fieldpath.IsAbsent(v) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s holds %T", defaults.ErrNotCollection, p, v)
	}
}
