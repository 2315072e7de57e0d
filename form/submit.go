package form

import (
	json "github.com/goccy/go-json"

	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/fieldpath"
	"github.com/reoring/formskema/jsonschema"
)

// Payload is the completed configuration handed to the submission
// transport.
type Payload struct {
	SessionID string
	Output    string
	Values    map[string]any
}

// MarshalJSON renders the value tree with a session_id member.
func (p *Payload) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Values)+1)
	for k, v := range p.Values {
		out[k] = v
	}
	out["session_id"] = p.SessionID
	return json.Marshal(out)
}

// JSON returns the indented JSON form of the payload.
func (p *Payload) JSON() ([]byte, error) { return json.MarshalIndent(p, "", "  ") }

// Validate re-checks every field of the current tree and rebuilds the error
// map from scratch. It returns the field violations ordered by path.
func (s *Session) Validate() (formskema.Issues, error) {
	if !s.Ready() {
		return nil, ErrNotReady
	}
	s.errs = formskema.ErrorMap{}
	s.touched = map[string]bool{}
	s.sweep(s.st.Snapshot(), fieldpath.Root(), false)
	return s.errs.Issues(), nil
}

// Submit validates the whole form, runs the cross-entry checks and, when
// nothing is outstanding, completes the electron species and the ion
// charges, composes the output location and returns the payload. A blocked
// submission returns formskema.Issues holding every outstanding violation
// and changes nothing.
func (s *Session) Submit(loc Location) (*Payload, error) {
	fieldIssues, err := s.Validate()
	if err != nil {
		return nil, err
	}
	tree := s.st.Snapshot()
	var all formskema.Issues
	all = append(all, fieldIssues...)
	all = append(all, s.editor.Check(tree)...)

	out, ok := loc.Join(s.cfg.separator)
	if !ok {
		it := formskema.IssueAt(s.cfg.output, formskema.CodeRequired, s.tr.Message("required", nil), map[string]any{"input": "name"})
		it.Rule = "output_name"
		all = append(all, it)
	}
	if len(all) > 0 {
		s.logger.Printf("form: submission blocked: %v", all)
		return nil, all
	}

	if err := s.editor.EnsureElectron(); err != nil {
		return nil, err
	}
	if err := s.editor.CompleteCharges(); err != nil {
		return nil, err
	}
	if len(s.cfg.output) > 0 {
		if _, err := s.st.Mutate(func(tree any) (any, error) {
			return fieldpath.Set(tree, s.cfg.output, out)
		}, s.cfg.output); err != nil {
			return nil, err
		}
	}
	if _, err := s.st.Rederive(); err != nil {
		return nil, err
	}
	values, ok := s.st.Snapshot().(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return &Payload{SessionID: s.id.String(), Output: out, Values: values}, nil
}

// sweep validates every field below p.
func (s *Session) sweep(tree any, p fieldpath.Path, required bool) {
	sch := s.doc.Locate(tree, p, s.cfg.discriminator)
	if sch == nil {
		return
	}
	v := fieldpath.Get(tree, p)
	if !isContainer(s.doc, sch) {
		s.check(p, v, sch)
		return
	}
	if fieldpath.IsAbsent(v) || v == nil {
		if required {
			s.check(p, v, &jsonschema.Schema{})
		}
		return
	}
	switch t := v.(type) {
	case map[string]any:
		for _, name := range sortedMembers(t, sch) {
			s.sweep(tree, p.Field(name), sch.IsRequired(name))
		}
	case []any:
		for i := range t {
			s.sweep(tree, p.Index(i), false)
		}
	}
}

// FieldView is what a renderer needs for one input.
type FieldView struct {
	Path        string
	Schema      *jsonschema.Schema // nil when the node is undeclared or unresolved
	Value       any
	Required    bool
	Placeholder string
	State       FieldState
	// Issue is the current violation, or an unresolved_ref issue when the
	// node's $ref cannot be resolved.
	Issue *formskema.Issue
}

// Field describes the input at path.
func (s *Session) Field(path string) (FieldView, error) {
	if !s.Ready() {
		return FieldView{}, ErrNotReady
	}
	p, err := fieldpath.Parse(path)
	if err != nil {
		return FieldView{}, err
	}
	sch := s.st.SchemaAt(p)
	name := p.String()
	if last, ok := p.Last(); ok && !last.IsIndex {
		name = last.Name
	}
	view := FieldView{
		Path:        p.Pointer(),
		Schema:      sch,
		Value:       s.st.Get(p),
		Required:    s.required(p),
		Placeholder: s.validator.Placeholder(name, sch),
	}
	view.State, _ = s.FieldState(path)
	if it, ok := s.errs[view.Path]; ok {
		view.Issue = &it
	}
	if sch == nil {
		view.Issue = s.unresolved(p)
	}
	return view, nil
}

// unresolved returns an unresolved_ref issue when p's own node is a $ref
// that does not resolve.
func (s *Session) unresolved(p fieldpath.Path) *formskema.Issue {
	last, ok := p.Last()
	if !ok {
		return nil
	}
	parent := s.st.SchemaAt(p.Parent())
	if parent == nil {
		return nil
	}
	var raw *jsonschema.Schema
	if last.IsIndex {
		raw = parent.ItemAt(last.Index)
	} else {
		raw = s.doc.Member(parent, last.Name)
	}
	if raw == nil || raw.Ref == "" {
		return nil
	}
	if _, ok := s.doc.Deref(raw); ok {
		return nil
	}
	msg := s.tr.Message(formskema.CodeUnresolvedRef, map[string]string{"ref": raw.Ref})
	it := formskema.IssueKV(p, formskema.CodeUnresolvedRef, msg, "ref", raw.Ref)
	return &it
}
