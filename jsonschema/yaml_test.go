package jsonschema_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/formskema/jsonschema"
)

const gridYAML = `
type: object
properties:
  number_of_cells:
    type: array
    items: {type: integer}
    default: [192, 2048, 192]
  cell_size:
    type: array
    items: {type: number}
    default: [0.1772e-6, 0.443e-7, 0.1772e-6]
  label:
    type: string
    default: "on"
  base: &base
    type: integer
    default: 3
  copy: *base
`

func TestParseYAML_OrderAndScalars(t *testing.T) {
	doc, err := jsonschema.ParseYAML([]byte(gridYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"number_of_cells", "cell_size", "label", "base", "copy"}, doc.Root.Properties.Names())

	cells := doc.Root.Property("number_of_cells")
	assert.Equal(t, []any{192.0, 2048.0, 192.0}, cells.Default)

	size := doc.Root.Property("cell_size").Default.([]any)
	require.Len(t, size, 3)
	assert.InDelta(t, 0.443e-7, size[1], 1e-20)

	assert.Equal(t, "on", doc.Root.Property("label").Default)
	assert.Equal(t, 3.0, doc.Root.Property("copy").Default)
}

func TestParseYAML_Invalid(t *testing.T) {
	_, err := jsonschema.ParseYAML([]byte("a: [1, 2"))
	assert.Error(t, err)
	_, err = jsonschema.ParseYAML([]byte("- 1\n- 2\n"))
	assert.Error(t, err, "root must be a mapping")
}

func TestLoad_ByExtension(t *testing.T) {
	dir := t.TempDir()
	yml := filepath.Join(dir, "schema.yaml")
	require.NoError(t, os.WriteFile(yml, []byte(gridYAML), 0o600))
	js := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(js, []byte(`{"type":"object","properties":{"x":{"type":"number"}}}`), 0o600))

	doc, err := jsonschema.Load(yml)
	require.NoError(t, err)
	assert.Equal(t, 5, doc.Root.Properties.Len())

	doc, err = jsonschema.Load(js)
	require.NoError(t, err)
	assert.True(t, doc.Root.Properties.Has("x"))

	_, err = jsonschema.Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
