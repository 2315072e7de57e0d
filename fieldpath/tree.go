package fieldpath

import "fmt"

type absent struct{}

func (absent) String() string { return "<absent>" }

// Absent is returned by Get when the path does not resolve. Callers treat it
// as "use the schema default". Set ignores it.
var Absent any = absent{}

// IsAbsent reports whether v is the Absent sentinel.
func IsAbsent(v any) bool {
	_, ok := v.(absent)
	return ok
}

// Get walks tree along p. It never fails: a missing member, an index past the
// end or a segment applied to the wrong container shape yields Absent.
func Get(tree any, p Path) any {
	cur := tree
	for _, seg := range p {
		switch c := cur.(type) {
		case map[string]any:
			if seg.IsIndex {
				return Absent
			}
			v, ok := c[seg.Name]
			if !ok {
				return Absent
			}
			cur = v
		case []any:
			if !seg.IsIndex || seg.Index < 0 || seg.Index >= len(c) {
				return Absent
			}
			cur = c[seg.Index]
		default:
			return Absent
		}
	}
	return cur
}

// Lookup is Get with a presence flag.
func Lookup(tree any, p Path) (any, bool) {
	v := Get(tree, p)
	if IsAbsent(v) {
		return nil, false
	}
	return v, true
}

// Set assigns v at p and returns the (possibly new) root. Missing or null
// intermediate containers are created: an object when the next segment is a
// name, an array when it is an index. Arrays never grow sparsely; writing at
// an index beyond the current length fails with ErrIndexOutOfRange.
//
// Setting Absent is a no-op, so Set(t, p, Get(t, p)) never changes t.
func Set(tree any, p Path, v any) (any, error) {
	if IsAbsent(v) {
		return tree, nil
	}
	return setIn(tree, p, v, 0)
}

func setIn(cur any, p Path, v any, depth int) (any, error) {
	if depth == len(p) {
		return v, nil
	}
	seg := p[depth]
	if cur == nil {
		if seg.IsIndex {
			cur = []any{}
		} else {
			cur = map[string]any{}
		}
	}
	switch c := cur.(type) {
	case map[string]any:
		if seg.IsIndex {
			return cur, fmt.Errorf("%w: index %d applied to object at %s", ErrTypeMismatch, seg.Index, p[:depth])
		}
		child, err := setIn(c[seg.Name], p, v, depth+1)
		if err != nil {
			return cur, err
		}
		c[seg.Name] = child
		return c, nil
	case []any:
		if !seg.IsIndex {
			return cur, fmt.Errorf("%w: member %q applied to array at %s", ErrTypeMismatch, seg.Name, p[:depth])
		}
		switch {
		case seg.Index < len(c):
			child, err := setIn(c[seg.Index], p, v, depth+1)
			if err != nil {
				return cur, err
			}
			c[seg.Index] = child
			return c, nil
		case seg.Index == len(c):
			child, err := setIn(nil, p, v, depth+1)
			if err != nil {
				return cur, err
			}
			return append(c, child), nil
		default:
			return cur, fmt.Errorf("%w: %d beyond length %d at %s", ErrIndexOutOfRange, seg.Index, len(c), p[:depth+1])
		}
	default:
		return cur, fmt.Errorf("%w: %T at %s", ErrTypeMismatch, cur, p[:depth])
	}
}

// Delete removes the member or array element at p and returns the new root.
// Later array elements shift down. ok is false when p does not resolve.
func Delete(tree any, p Path) (any, bool) {
	if len(p) == 0 {
		return tree, false
	}
	parentPath, last := p.Parent(), p[len(p)-1]
	parent := Get(tree, parentPath)
	switch c := parent.(type) {
	case map[string]any:
		if last.IsIndex {
			return tree, false
		}
		if _, ok := c[last.Name]; !ok {
			return tree, false
		}
		delete(c, last.Name)
		return tree, true
	case []any:
		if !last.IsIndex || last.Index < 0 || last.Index >= len(c) {
			return tree, false
		}
		out := make([]any, 0, len(c)-1)
		out = append(out, c[:last.Index]...)
		out = append(out, c[last.Index+1:]...)
		root, err := Set(tree, parentPath, out)
		if err != nil {
			return tree, false
		}
		return root, true
	default:
		return tree, false
	}
}

// Clone deep-copies objects and arrays; scalars are returned as is.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = Clone(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = Clone(t[i])
		}
		return out
	default:
		return v
	}
}
