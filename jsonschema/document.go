package jsonschema

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
)

// Document is a loaded schema: the decoded root node plus the raw bytes that
// $ref pointers are resolved against.
type Document struct {
	Root *Schema
	raw  []byte
	diag *simpleDiag
}

// Parse decodes a JSON schema document.
func Parse(data []byte) (*Document, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("jsonschema: document root must be an object")
	}
	root := &Schema{}
	if err := json.Unmarshal(data, root); err != nil {
		return nil, fmt.Errorf("jsonschema: %w", err)
	}
	doc := &Document{Root: root, raw: append([]byte(nil), data...), diag: &simpleDiag{}}
	if root.Kind() != KindObject && root.Kind() != KindReference {
		doc.diag.warnf("non-object root treated as object-compatible: type=%q", root.Type)
	}
	if dups, err := DuplicateKeys(data); err == nil {
		for _, ptr := range dups {
			doc.diag.warnf("duplicate key at %s; the last value wins", ptr)
		}
	}
	return doc, nil
}

// Load reads a schema from disk. Files ending in .yaml or .yml are decoded as
// YAML, everything else as JSON.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return Parse(data)
	}
}

// Diag returns the warnings gathered so far.
func (d *Document) Diag() Diag { return d.diag }
