package fieldpath_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/formskema/fieldpath"
)

func sampleTree() any {
	return map[string]any{
		"grid": map[string]any{
			"number_of_cells": []any{192.0, 2048.0, 192.0},
		},
		"species": []any{
			map[string]any{"type": "electron", "name": "e"},
		},
		"flag": true,
	}
}

func TestGet_AbsentNeverPanics(t *testing.T) {
	tree := sampleTree()
	assert.Equal(t, 2048.0, fieldpath.Get(tree, fieldpath.MustParse("grid.number_of_cells[1]")))
	assert.Equal(t, "e", fieldpath.Get(tree, fieldpath.MustParse("species[0].name")))

	for _, p := range []string{
		"missing",
		"grid.number_of_cells[3]",
		"grid[0]",
		"species.name",
		"flag.deeper",
		"species[0].name.x",
	} {
		assert.Truef(t, fieldpath.IsAbsent(fieldpath.Get(tree, fieldpath.MustParse(p))), "path %s", p)
	}
	_, ok := fieldpath.Lookup(tree, fieldpath.MustParse("missing"))
	assert.False(t, ok)
}

func TestSet_CreatesIntermediateContainers(t *testing.T) {
	tree, err := fieldpath.Set(nil, fieldpath.MustParse("a.b[0].c"), 1.0)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": map[string]any{
			"b": []any{map[string]any{"c": 1.0}},
		},
	}, tree)
}

func TestSet_ArrayAppendAndOverwrite(t *testing.T) {
	tree := sampleTree()
	p := fieldpath.MustParse("species[1]")
	tree, err := fieldpath.Set(tree, p, map[string]any{"type": "ion"})
	require.NoError(t, err)
	assert.Len(t, fieldpath.Get(tree, fieldpath.MustParse("species")), 2)

	tree, err = fieldpath.Set(tree, fieldpath.MustParse("species[0].name"), "electrons")
	require.NoError(t, err)
	assert.Equal(t, "electrons", fieldpath.Get(tree, fieldpath.MustParse("species[0].name")))
}

func TestSet_SparseGrowthRejected(t *testing.T) {
	tree := sampleTree()
	_, err := fieldpath.Set(tree, fieldpath.MustParse("species[5]"), "x")
	assert.True(t, errors.Is(err, fieldpath.ErrIndexOutOfRange), "got %v", err)
	// prior contents untouched
	assert.Len(t, fieldpath.Get(tree, fieldpath.MustParse("species")), 1)
}

func TestSet_TypeMismatch(t *testing.T) {
	tree := sampleTree()
	_, err := fieldpath.Set(tree, fieldpath.MustParse("flag.x"), 1.0)
	assert.True(t, errors.Is(err, fieldpath.ErrTypeMismatch), "got %v", err)
	_, err = fieldpath.Set(tree, fieldpath.MustParse("grid[0]"), 1.0)
	assert.True(t, errors.Is(err, fieldpath.ErrTypeMismatch), "got %v", err)
}

func TestSet_RoundTrip(t *testing.T) {
	values := []any{"s", 1.5, true, nil, []any{1.0, 2.0}, map[string]any{"k": "v"}}
	paths := []string{"x", "grid.number_of_cells[0]", "species[0].name", "species[1]", "n.m[0].o"}
	for _, ps := range paths {
		for _, v := range values {
			p := fieldpath.MustParse(ps)
			tree, err := fieldpath.Set(sampleTree(), p, v)
			require.NoError(t, err, ps)
			assert.Equal(t, v, fieldpath.Get(tree, p), ps)
		}
	}
}

func TestSet_GetIsNoOp(t *testing.T) {
	for _, ps := range []string{"grid", "species[0].name", "missing.child", "flag"} {
		p := fieldpath.MustParse(ps)
		tree := sampleTree()
		out, err := fieldpath.Set(tree, p, fieldpath.Get(tree, p))
		require.NoError(t, err)
		assert.Equal(t, sampleTree(), out, ps)
	}
}

func TestDelete_ShiftsDown(t *testing.T) {
	tree := map[string]any{"list": []any{"a", "b", "c"}}
	out, ok := fieldpath.Delete(tree, fieldpath.MustParse("list[1]"))
	require.True(t, ok)
	assert.Equal(t, []any{"a", "c"}, fieldpath.Get(out, fieldpath.MustParse("list")))

	_, ok = fieldpath.Delete(out, fieldpath.MustParse("list[7]"))
	assert.False(t, ok)

	out, ok = fieldpath.Delete(out, fieldpath.MustParse("list"))
	require.True(t, ok)
	assert.Equal(t, map[string]any{}, out)
}

func TestClone_Deep(t *testing.T) {
	tree := sampleTree()
	cp := fieldpath.Clone(tree)
	_, err := fieldpath.Set(cp, fieldpath.MustParse("species[0].name"), "changed")
	require.NoError(t, err)
	assert.Equal(t, "e", fieldpath.Get(tree, fieldpath.MustParse("species[0].name")))
}
