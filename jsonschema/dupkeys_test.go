package jsonschema

import (
	"reflect"
	"testing"
)

func TestDuplicateKeys_None(t *testing.T) {
	js := []byte(`{"a":1,"b":{"a":2},"c":[{"a":1},{"a":2}]}`)
	dups, err := DuplicateKeys(js)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(dups) != 0 {
		t.Fatalf("expected no duplicates, got %v", dups)
	}
}

func TestDuplicateKeys_Pointers(t *testing.T) {
	js := []byte(`{
  "properties": {"name": {"type": "string"}, "name": {"type": "integer"}},
  "definitions": {"A": {"enum": [{"x": 1, "x": 2}]}},
  "a/b": 1, "a/b": 2,
  "empty": {}, "list": [[], {}]
}`)
	dups, err := DuplicateKeys(js)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	want := []string{"/properties/name", "/definitions/A/enum/0/x", "/a~1b"}
	if !reflect.DeepEqual(dups, want) {
		t.Fatalf("got %v want %v", dups, want)
	}
}

func TestDuplicateKeys_Malformed(t *testing.T) {
	if _, err := DuplicateKeys([]byte(`{"a": 1,`)); err == nil {
		t.Fatalf("expected error for truncated document")
	}
}

func TestParse_WarnsOnDuplicateKeys(t *testing.T) {
	doc, err := Parse([]byte(`{"type":"object","properties":{"x":{"type":"string"},"x":{"type":"number"}}}`))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	ws := doc.Diag().Warnings()
	if len(ws) != 1 || ws[0] != "duplicate key at /properties/x; the last value wins" {
		t.Fatalf("unexpected warnings: %v", ws)
	}
	if got := doc.Root.Property("x").Type; got != "number" {
		t.Fatalf("expected the last declaration to win, got type %q", got)
	}
}
