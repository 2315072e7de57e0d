// Package form ties the schema, the value store, the derivation engine, the
// validator and the collection editor into one editing session.
//
// A Session is inert until Load succeeds; every operation before that
// returns ErrNotReady. Edits never fail because of a field violation: the
// violation lands in the session's ErrorMap and editing continues. Only a
// malformed schema or option set (a *formskema.ConfigurationError) stops a
// session from loading.
package form

import (
	"errors"
	"io"
	"log"
	"sort"

	"github.com/google/uuid"

	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/collection"
	"github.com/reoring/formskema/defaults"
	"github.com/reoring/formskema/derive"
	"github.com/reoring/formskema/fieldpath"
	"github.com/reoring/formskema/i18n"
	"github.com/reoring/formskema/jsonschema"
	"github.com/reoring/formskema/store"
	"github.com/reoring/formskema/validate"
)

// ErrNotReady is returned by every operation before Load.
var ErrNotReady = store.ErrNotReady

// FieldState is the validation state of one field.
type FieldState int

const (
	Untouched FieldState = iota
	Valid
	Invalid
)

func (f FieldState) String() string {
	switch f {
	case Untouched:
		return "untouched"
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	}
	return "unknown"
}

// Session is one form being filled in. It has a single writer and is not
// safe for concurrent use.
type Session struct {
	id     uuid.UUID
	opts   Options
	logger *log.Logger
	tr     i18n.Translator

	cfg       *compiled
	doc       *jsonschema.Document
	walker    *defaults.Walker
	st        *store.Store
	validator *validate.Validator
	editor    *collection.Editor

	errs    formskema.ErrorMap
	touched map[string]bool
}

// New returns an unloaded session.
func New(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Session{
		id:      uuid.New(),
		opts:    opts,
		logger:  logger,
		tr:      i18n.Dictionary(opts.Language),
		errs:    formskema.ErrorMap{},
		touched: map[string]bool{},
	}
}

// ID identifies the session; submissions carry it as session_id.
func (s *Session) ID() uuid.UUID { return s.id }

// Ready reports whether a schema has been loaded.
func (s *Session) Ready() bool { return s.st != nil && s.st.Ready() }

// LoadFile loads a JSON or YAML schema document from path.
func (s *Session) LoadFile(path string) error {
	doc, err := jsonschema.Load(path)
	if err != nil {
		return err
	}
	return s.Load(doc)
}

// Load checks doc and the options, builds the default tree and runs every
// derivation once. On error the session stays unloaded.
func (s *Session) Load(doc *jsonschema.Document) error {
	cfg, err := s.opts.compile()
	if err != nil {
		s.logger.Printf("form: options rejected: %v", err)
		return err
	}
	if err := doc.Check(cfg.discriminated...); err != nil {
		s.logger.Printf("form: schema rejected: %v", err)
		return err
	}

	walker := defaults.NewWalker(doc, defaults.Options{Discriminator: cfg.discriminator, NonEmpty: cfg.nonEmpty})
	var rules []derive.Rule
	for _, c := range walker.Conditionals() {
		rules = append(rules, derive.Conditional("conditional "+c.Target.String(), c.Target, c.Triggers, walker))
	}
	rules = append(rules, cfg.rules...)
	engine, err := derive.NewEngine(rules...)
	if err != nil {
		s.logger.Printf("form: derivations rejected: %v", err)
		return err
	}

	st := store.New(walker, engine, cfg.discriminator)
	if _, err := st.Initialize(); err != nil {
		s.logger.Printf("form: initialize: %v", err)
		return err
	}
	for _, w := range doc.Diag().Warnings() {
		s.logger.Printf("form: schema: %s", w)
	}

	editorCfg := cfg.collection
	editorCfg.Translator = s.tr
	s.cfg, s.doc, s.walker, s.st = cfg, doc, walker, st
	s.validator = validate.New(doc, s.tr)
	s.editor = collection.New(st, walker, editorCfg)
	s.errs = formskema.ErrorMap{}
	s.touched = map[string]bool{}
	return nil
}

// Document returns the loaded schema document, or nil.
func (s *Session) Document() *jsonschema.Document { return s.doc }

// Values returns a copy of the value tree.
func (s *Session) Values() (any, error) {
	if !s.Ready() {
		return nil, ErrNotReady
	}
	return s.st.Snapshot(), nil
}

// Get returns a copy of the value at path, or fieldpath.Absent.
func (s *Session) Get(path string) (any, error) {
	if !s.Ready() {
		return nil, ErrNotReady
	}
	p, err := fieldpath.Parse(path)
	if err != nil {
		return nil, err
	}
	return s.st.Get(p), nil
}

// Edit applies user input to the field at path using the schema found there.
func (s *Session) Edit(path string, raw any) (store.Edit, error) {
	return s.EditWith(path, raw, nil)
}

// EditWith applies raw to the field at path, coerced per sub (nil uses the
// schema found at path). The field and every recomputed field are
// revalidated. A returned error means nothing changed: the path is malformed,
// or the write is impossible for the current tree.
func (s *Session) EditWith(path string, raw any, sub *jsonschema.Schema) (store.Edit, error) {
	if !s.Ready() {
		return store.Edit{}, ErrNotReady
	}
	p, err := fieldpath.Parse(path)
	if err != nil {
		s.logger.Printf("form: rejected edit %q: %v", path, err)
		return store.Edit{}, s.pathError(path, nil, err)
	}
	edit, err := s.st.ApplyEdit(p, raw, sub)
	if err != nil {
		s.logger.Printf("form: rejected edit at %s: %v", p, err)
		return store.Edit{}, s.pathError(path, p, err)
	}

	if sub == nil {
		sub = s.st.SchemaAt(p)
	}
	value := edit.Value
	if edit.Outcome == store.ParseFailed {
		value = raw
	}
	s.check(p, value, sub)
	for _, d := range edit.Derived {
		s.forget(d)
		v := s.st.Get(d)
		if fieldpath.IsAbsent(v) {
			delete(s.errs, d.Pointer())
			delete(s.touched, d.Pointer())
			continue
		}
		if sch := s.st.SchemaAt(d); sch != nil && !isContainer(s.doc, sch) {
			s.check(d, v, sch)
		}
	}
	return edit, nil
}

// Errors returns the current violations keyed by JSON Pointer.
func (s *Session) Errors() formskema.ErrorMap { return s.errs.Clone() }

// FieldState reports whether the field at path was validated and with what
// result.
func (s *Session) FieldState(path string) (FieldState, error) {
	p, err := fieldpath.Parse(path)
	if err != nil {
		return Untouched, err
	}
	key := p.Pointer()
	switch {
	case !s.touched[key]:
		return Untouched, nil
	case s.hasError(key):
		return Invalid, nil
	}
	return Valid, nil
}

func (s *Session) hasError(key string) bool {
	_, ok := s.errs[key]
	return ok
}

// Add appends a defaulted entry to the collection at path.
func (s *Session) Add(path string, discriminator any) (any, error) {
	if !s.Ready() {
		return nil, ErrNotReady
	}
	p, err := fieldpath.Parse(path)
	if err != nil {
		return nil, s.pathError(path, nil, err)
	}
	entry, err := s.editor.Add(p, discriminator)
	if err != nil {
		s.logger.Printf("form: add to %s: %v", p, err)
	}
	return entry, err
}

// Remove deletes entry i of the collection at path. Out of range is a no-op.
func (s *Session) Remove(path string, i int) (bool, error) {
	if !s.Ready() {
		return false, ErrNotReady
	}
	p, err := fieldpath.Parse(path)
	if err != nil {
		return false, s.pathError(path, nil, err)
	}
	ok, err := s.editor.Remove(p, i)
	if ok {
		s.forget(p)
	}
	return ok, err
}

// ChangeDiscriminator replaces entry i of the collection at path with a fresh
// entry of another candidate.
func (s *Session) ChangeDiscriminator(path string, i int, value any) (any, error) {
	if !s.Ready() {
		return nil, ErrNotReady
	}
	p, err := fieldpath.Parse(path)
	if err != nil {
		return nil, s.pathError(path, nil, err)
	}
	entry, err := s.editor.ChangeDiscriminator(p, i, value)
	if err != nil {
		s.logger.Printf("form: change %s[%d] to %v: %v", p, i, value, err)
		return nil, s.pathError(path, p.Index(i), err)
	}
	s.forget(p.Index(i))
	return entry, nil
}

// IonMode returns the current ion mode.
func (s *Session) IonMode() (collection.IonMode, error) {
	if !s.Ready() {
		return collection.NoIons, ErrNotReady
	}
	return s.editor.IonMode(), nil
}

// SetIonMode switches the ion flags and the ionization model collection.
func (s *Session) SetIonMode(m collection.IonMode) error {
	if !s.Ready() {
		return ErrNotReady
	}
	if err := s.editor.SetIonMode(m); err != nil {
		return err
	}
	s.forget(s.cfg.collection.Ions.Models)
	return nil
}

// check validates one field and records the verdict.
func (s *Session) check(p fieldpath.Path, value any, sch *jsonschema.Schema) {
	key := p.Pointer()
	s.touched[key] = true
	s.errs.Put(key, s.validator.Field(p, value, sch, s.required(p)).Issue())
}

// forget drops recorded state below p; indexes there may have shifted.
func (s *Session) forget(p fieldpath.Path) {
	if len(p) == 0 {
		return
	}
	prefix := p.Pointer() + "/"
	for k := range s.errs {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			delete(s.errs, k)
		}
	}
	for k := range s.touched {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			delete(s.touched, k)
		}
	}
}

// required reports whether the member named by p's last segment is listed
// as required by its parent object.
func (s *Session) required(p fieldpath.Path) bool {
	last, ok := p.Last()
	if !ok || last.IsIndex {
		return false
	}
	parent := s.st.SchemaAt(p.Parent())
	return parent != nil && parent.IsRequired(last.Name)
}

// isContainer reports whether sch is edited through its members rather than
// as one field: objects and arrays of objects.
func isContainer(doc *jsonschema.Document, sch *jsonschema.Schema) bool {
	switch sch.Kind() {
	case jsonschema.KindObject, jsonschema.KindAllOf:
		return true
	case jsonschema.KindArray:
		item := doc.MustDeref(sch.ItemAt(0))
		if item == nil {
			return false
		}
		switch item.Kind() {
		case jsonschema.KindObject, jsonschema.KindAllOf, jsonschema.KindOneOf:
			return true
		}
	}
	return false
}

// sortedMembers lists the members present in m plus the required ones that
// are missing.
func sortedMembers(m map[string]any, sch *jsonschema.Schema) []string {
	seen := map[string]bool{}
	var out []string
	for k := range m {
		seen[k] = true
		out = append(out, k)
	}
	for _, r := range sch.Required {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	sort.Strings(out)
	return out
}

// pathError keeps a path failure's sentinel and adds an Issue a renderer can
// show: malformed_path at the root with the raw input as a param, or
// index_out_of_range at p. Other errors are returned as is.
func (s *Session) pathError(raw string, p fieldpath.Path, err error) error {
	var code string
	switch {
	case errors.Is(err, fieldpath.ErrMalformedPath):
		code = formskema.CodeMalformedPath
	case errors.Is(err, fieldpath.ErrIndexOutOfRange):
		code = formskema.CodeIndexOutOfRange
	default:
		return err
	}
	it := formskema.IssueKV(p, code, s.tr.Message(code, nil), "input", raw)
	return errors.Join(err, formskema.Issues{it})
}

var errNotObject = errors.New("form: value tree root is not an object")
