package jsonschema

import "fmt"

// Diag carries non-fatal warnings collected while loading and resolving a
// document.
type Diag interface {
	HasWarnings() bool
	Warnings() []string
}

type simpleDiag struct {
	ws   []string
	seen map[string]bool
}

func (d *simpleDiag) HasWarnings() bool  { return len(d.ws) > 0 }
func (d *simpleDiag) Warnings() []string { return append([]string(nil), d.ws...) }

// warnf records a warning once; resolution runs repeatedly over the same nodes.
func (d *simpleDiag) warnf(f string, a ...any) {
	msg := fmt.Sprintf(f, a...)
	if d.seen == nil {
		d.seen = map[string]bool{}
	}
	if d.seen[msg] {
		return
	}
	d.seen[msg] = true
	d.ws = append(d.ws, msg)
}

// Warnf adds a warning to the document's diagnostics. Repeats are dropped.
func (d *Document) Warnf(format string, a ...any) { d.diag.warnf(format, a...) }
