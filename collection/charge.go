package collection

import (
	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/fieldpath"
)

// Rule names of the species charge checks.
const (
	RuleElectronCharge        = "electron_charge"
	RuleFixedChargeIonization = "fixed_charge_with_ionization"
)

// CheckCharges applies the per-species charge rules of the current ion
// mode. Electron entries must leave both charge members unset; ion entries
// must leave the fixed-charge member unset while ionization is modeled. A
// missing member is never a violation here: CompleteCharges fills it.
func (e *Editor) CheckCharges(tree any) formskema.Issues {
	sp := e.cfg.Species
	if len(sp.Path) == 0 || (sp.ChargeField == "" && sp.FixedChargeField == "") {
		return nil
	}
	mode := e.ModeOf(tree)
	arr, _ := fieldpath.Get(tree, sp.Path).([]any)
	var out formskema.Issues
	for i, entry := range arr {
		at := sp.Path.Index(i)
		if e.isElectron(entry) {
			for _, f := range []string{sp.ChargeField, sp.FixedChargeField} {
				if f != "" && member(entry, f) != nil {
					out = append(out, e.chargeIssue(at.Field(f), RuleElectronCharge))
				}
			}
			continue
		}
		if mode == IonizationModeledIons && sp.FixedChargeField != "" && member(entry, sp.FixedChargeField) != nil {
			out = append(out, e.chargeIssue(at.Field(sp.FixedChargeField), RuleFixedChargeIonization))
		}
	}
	return out
}

// CompleteCharges gives every ion entry the charge members its mode needs:
// charge state 0 under ionization, a fixed charge of true under fixed-charge
// ions. Call it only after CheckCharges passed.
func (e *Editor) CompleteCharges() error {
	sp := e.cfg.Species
	if len(sp.Path) == 0 {
		return nil
	}
	_, err := e.st.Mutate(func(tree any) (any, error) {
		e.settleCharges(tree, e.ModeOf(tree))
		return tree, nil
	}, sp.Path)
	return err
}

// settleCharges rewrites the ion entries of tree in place for mode.
func (e *Editor) settleCharges(tree any, mode IonMode) {
	arr, _ := fieldpath.Get(tree, e.cfg.Species.Path).([]any)
	for _, entry := range arr {
		e.settleEntry(entry, mode)
	}
}

// settleEntry adjusts one species entry for mode. Under ionization the fixed
// charge is dropped and a missing charge state becomes 0; with fixed-charge
// ions a missing fixed charge becomes true. Electrons are left alone.
func (e *Editor) settleEntry(entry any, mode IonMode) {
	sp := e.cfg.Species
	m, ok := entry.(map[string]any)
	if !ok || e.isElectron(entry) {
		return
	}
	switch mode {
	case IonizationModeledIons:
		if sp.FixedChargeField != "" {
			delete(m, sp.FixedChargeField)
		}
		if sp.ChargeField != "" && m[sp.ChargeField] == nil {
			m[sp.ChargeField] = 0.0
		}
	case FixedChargeIons:
		if sp.FixedChargeField != "" && m[sp.FixedChargeField] == nil {
			m[sp.FixedChargeField] = true
		}
	}
}

func (e *Editor) chargeIssue(p fieldpath.Path, rule string) formskema.Issue {
	last, _ := p.Last()
	return e.crossEntry(p, rule, map[string]string{"field": last.Name}, "field", last.Name)
}
