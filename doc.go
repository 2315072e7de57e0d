// Package formskema turns a JSON-Schema-like document into an editable value
// tree for configuration forms.
//
// - A stable error model via Issues (JSON Pointer, code, message) and ErrorMap
// - Path algebra over the value tree under fieldpath/
// - Schema nodes, $ref resolution and loading under jsonschema/
// - Defaults, derivations, validation and collection editing in their own packages
// - A single-writer Session that ties them together under form/
//
// Design policy:
//   - The root package only holds the shared error model.
//   - Every edit runs to completion before the next one; nothing here is
//     goroutine-safe and nothing needs to be.
//
// Typical usage:
//
//	doc, err := jsonschema.Load("picmi.schema.json")
//	s := form.New(form.DefaultOptions())
//	if err := s.Load(doc); err != nil { ... } // *formskema.ConfigurationError
//	s.Edit("number_of_cells", "[10, 10, 10]")
//	payload, err := s.Submit(form.Location{Directory: "runs", Name: "lwfa"})
package formskema
