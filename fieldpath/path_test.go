package fieldpath_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/formskema/fieldpath"
)

func TestParse_Segments(t *testing.T) {
	p, err := fieldpath.Parse("a.b[2].c")
	require.NoError(t, err)
	assert.Equal(t, fieldpath.Path{
		fieldpath.Field("a"), fieldpath.Field("b"), fieldpath.Index(2), fieldpath.Field("c"),
	}, p)
	assert.Equal(t, "a.b[2].c", p.String())
	assert.Equal(t, "/a/b/2/c", p.Pointer())
}

func TestParse_RootAndLeadingIndex(t *testing.T) {
	p, err := fieldpath.Parse("")
	require.NoError(t, err)
	assert.Empty(t, p)
	assert.Equal(t, "/", p.Pointer())

	p, err = fieldpath.Parse("[0][1].x")
	require.NoError(t, err)
	assert.Equal(t, "[0][1].x", p.String())
}

func TestParse_Malformed(t *testing.T) {
	for _, in := range []string{
		"a[",
		"a]",
		"a[x]",
		"a[-1]",
		"a[]",
		"a..b",
		".a",
		"a.",
		"a.[0]",
		"a[0]b",
	} {
		_, err := fieldpath.Parse(in)
		assert.Truef(t, errors.Is(err, fieldpath.ErrMalformedPath), "input %q: got %v", in, err)
	}
}

func TestPointer_Escapes(t *testing.T) {
	p := fieldpath.Root().Field("a/b").Field("c~d")
	assert.Equal(t, "/a~1b/c~0d", p.Pointer())
}

func TestPath_Relations(t *testing.T) {
	base := fieldpath.MustParse("species[0]")
	child := base.Field("name")
	assert.True(t, child.HasPrefix(base))
	assert.False(t, base.HasPrefix(child))
	assert.True(t, base.Overlaps(child))
	assert.True(t, child.Overlaps(base))
	assert.False(t, child.Overlaps(fieldpath.MustParse("species[1]")))
	assert.True(t, child.Parent().Equal(base))

	last, ok := child.Last()
	require.True(t, ok)
	assert.Equal(t, "name", last.Name)

	// Field/Index never alias the receiver's backing array.
	a := base.Field("x")
	b := base.Field("y")
	assert.Equal(t, "species[0].x", a.String())
	assert.Equal(t, "species[0].y", b.String())
}
