package numeric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	f, ok := Parse(" 1.5e-6 ")
	assert.True(t, ok)
	assert.Equal(t, 1.5e-6, f)

	for _, s := range []string{"", "  ", "abc", "1,5", "NaN", "Inf"} {
		_, ok := Parse(s)
		assert.False(t, ok, s)
	}
}

func TestSequence(t *testing.T) {
	got, ok := Sequence("[1, 2.5, 3]")
	assert.True(t, ok)
	assert.Equal(t, []float64{1, 2.5, 3}, got)

	got, ok = Sequence([]any{1.0, 2})
	assert.True(t, ok)
	assert.Equal(t, []float64{1, 2}, got)

	_, ok = Sequence([]any{1.0, "x"})
	assert.False(t, ok)
	_, ok = Sequence("{\"a\": 1}")
	assert.False(t, ok)
	_, ok = Sequence(42.0)
	assert.False(t, ok)
}

func TestMatchesType(t *testing.T) {
	assert.True(t, MatchesType(3.0, "integer"))
	assert.False(t, MatchesType(3.5, "integer"))
	assert.True(t, MatchesType(3.5, "number"))
	assert.False(t, MatchesType("3", "number"))
	assert.True(t, MatchesType(nil, "null"))
	assert.True(t, MatchesType([]any{}, "array"))
	assert.True(t, MatchesType("anything", "custom"))
}
