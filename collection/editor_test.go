package collection_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/collection"
	"github.com/reoring/formskema/defaults"
	"github.com/reoring/formskema/fieldpath"
	"github.com/reoring/formskema/i18n"
	"github.com/reoring/formskema/jsonschema"
	"github.com/reoring/formskema/store"
)

const speciesDoc = `{
  "type": "object",
  "properties": {
    "ENABLE_IONS": {"type": "boolean", "default": true},
    "ENABLE_IONIZATION": {"type": "boolean", "default": false},
    "species": {
      "type": "array",
      "items": {"oneOf": [{"$ref": "#/definitions/Electron"}, {"$ref": "#/definitions/Ion"}]}
    },
    "ionization_models": {"type": "array", "items": {"$ref": "#/definitions/Model"}},
    "diagnostics": {
      "type": "array",
      "items": {"type": "object", "properties": {"species_name": {"type": "string", "default": "electron"}}}
    }
  },
  "definitions": {
    "Electron": {"type": "object", "properties": {
      "type": {"const": "electron"},
      "name": {"type": "string", "default": "electron"},
      "layout": {"type": "string", "default": "random"}
    }},
    "Ion": {"type": "object", "properties": {
      "type": {"const": "ion"},
      "name": {"type": "string", "default": "hydrogen"},
      "charge_state": {"type": "integer", "default": 1},
      "element": {"type": "string", "default": "H"}
    }},
    "Model": {"type": "object", "properties": {
      "model_type": {"type": "string", "enum": ["ADK", "BSI"], "default": "ADK"},
      "ion_species": {"type": "string", "default": "hydrogen"}
    }}
  }
}`

var (
	species     = fieldpath.MustParse("species")
	models      = fieldpath.MustParse("ionization_models")
	diagnostics = fieldpath.MustParse("diagnostics")
	ionsFlag    = fieldpath.MustParse("ENABLE_IONS")
	ionization  = fieldpath.MustParse("ENABLE_IONIZATION")
)

func newEditor(t *testing.T) (*collection.Editor, *store.Store) {
	t.Helper()
	doc, err := jsonschema.Parse([]byte(speciesDoc))
	require.NoError(t, err)
	w := defaults.NewWalker(doc, defaults.Options{NonEmpty: []fieldpath.Path{species, diagnostics}})
	st := store.New(w, nil, "type")
	_, err = st.Initialize()
	require.NoError(t, err)
	ed := collection.New(st, w, collection.Config{
		Species: collection.Species{Path: species, Discriminator: "type", Electron: "electron", NameField: "name"},
		References: []collection.Reference{
			{Path: models, Field: "ion_species"},
			{Path: diagnostics, Field: "species_name"},
		},
		Ions:       collection.Ions{Models: models, IonsFlag: ionsFlag, IonizationFlag: ionization},
		Translator: i18n.Dictionary("en"),
	})
	return ed, st
}

func TestChangeDiscriminator_ReplacesEntry(t *testing.T) {
	ed, st := newEditor(t)

	ion, err := ed.Add(species, "ion")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"type": "ion", "name": "hydrogen", "charge_state": 1.0, "element": "H"}, ion)
	require.Equal(t, 2, ed.Len(species))

	_, err = st.ApplyEdit(fieldpath.MustParse("species[1].name"), "proton", nil)
	require.NoError(t, err)

	entry, err := ed.ChangeDiscriminator(species, 1, "electron")
	require.NoError(t, err)
	want := map[string]any{"type": "electron", "name": "electron", "layout": "random"}
	assert.Equal(t, want, entry)
	assert.Equal(t, want, st.Get(fieldpath.MustParse("species[1]")))
}

func TestChangeDiscriminator_Errors(t *testing.T) {
	ed, st := newEditor(t)
	before := st.Snapshot()

	_, err := ed.ChangeDiscriminator(species, 4, "ion")
	assert.ErrorIs(t, err, fieldpath.ErrIndexOutOfRange)

	_, err = ed.ChangeDiscriminator(species, 0, "positron")
	iss, ok := formskema.AsIssues(err)
	require.True(t, ok)
	assert.True(t, iss.HasCode(formskema.CodeDiscriminatorUnknown))
	assert.Equal(t, before, st.Snapshot())
}

func TestAdd_FirstCandidateAndUnknown(t *testing.T) {
	ed, _ := newEditor(t)

	entry, err := ed.Add(species, nil)
	require.NoError(t, err)
	assert.Equal(t, "electron", entry.(map[string]any)["type"])

	_, err = ed.Add(species, "muon")
	iss, ok := formskema.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, formskema.CodeDiscriminatorUnknown, iss[0].Code)
	assert.Equal(t, "/species", iss[0].Path)
	assert.Equal(t, "Unknown type muon.", iss[0].Message)
	assert.Equal(t, 2, ed.Len(species))

	_, err = ed.Add(ionsFlag, nil)
	assert.True(t, errors.Is(err, defaults.ErrNotCollection))
}

func TestAddRemove_AppendOnlyIntegrity(t *testing.T) {
	ed, st := newEditor(t)
	names := func() []string {
		var out []string
		for _, e := range st.Get(diagnostics).([]any) {
			out = append(out, e.(map[string]any)["species_name"].(string))
		}
		return out
	}
	_, err := st.ApplyEdit(fieldpath.MustParse("diagnostics[0].species_name"), "d0", nil)
	require.NoError(t, err)
	want := []string{"d0"}

	adds, removes := 1, 0
	for i := 1; i <= 5; i++ {
		_, err := ed.Add(diagnostics, nil)
		require.NoError(t, err)
		adds++
		name := fmt.Sprintf("d%d", i)
		_, err = st.ApplyEdit(fieldpath.MustParse(fmt.Sprintf("diagnostics[%d].species_name", ed.Len(diagnostics)-1)), name, nil)
		require.NoError(t, err)
		want = append(want, name)
	}
	for _, idx := range []int{2, 0, 9, -1, 3} {
		ok, err := ed.Remove(diagnostics, idx)
		require.NoError(t, err)
		if ok {
			removes++
			want = append(want[:idx], want[idx+1:]...)
		}
	}
	assert.Equal(t, adds-removes, ed.Len(diagnostics))
	assert.Equal(t, []string{"d1", "d3", "d4"}, names())
	assert.Equal(t, want, names())
}

func TestNotReady(t *testing.T) {
	doc, err := jsonschema.Parse([]byte(speciesDoc))
	require.NoError(t, err)
	w := defaults.NewWalker(doc, defaults.Options{})
	ed := collection.New(store.New(w, nil, "type"), w, collection.Config{})

	_, err = ed.Add(species, nil)
	assert.ErrorIs(t, err, store.ErrNotReady)
	_, err = ed.Remove(species, 0)
	assert.ErrorIs(t, err, store.ErrNotReady)
	_, err = ed.ChangeDiscriminator(species, 0, "ion")
	assert.ErrorIs(t, err, store.ErrNotReady)
	assert.ErrorIs(t, ed.SetIonMode(collection.NoIons), store.ErrNotReady)
}
