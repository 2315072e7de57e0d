// Package fieldpath addresses values inside a JSON-like value tree.
//
// A Path is an ordered list of segments, each either an object member name or
// a non-negative array index. The textual form mixes dots and brackets:
//
//	species[0].name
//	grid.number_of_cells[2]
//
// Paths render as JSON Pointers (Pointer) when attached to Issues.
package fieldpath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrMalformedPath reports unbalanced brackets, empty names or non-numeric indexes.
	ErrMalformedPath = errors.New("fieldpath: malformed path")
	// ErrIndexOutOfRange reports a write beyond the end of an array. Only
	// overwriting an existing index or appending at the current length is legal.
	ErrIndexOutOfRange = errors.New("fieldpath: index out of range")
	// ErrTypeMismatch reports a write through a value that is neither an
	// object nor an array where a container is required.
	ErrTypeMismatch = errors.New("fieldpath: container type mismatch")
)

// Segment is one step of a Path.
type Segment struct {
	Name    string
	Index   int
	IsIndex bool
}

// Field returns a member-name segment.
func Field(name string) Segment { return Segment{Name: name} }

// Index returns an array-index segment.
func Index(i int) Segment { return Segment{Index: i, IsIndex: true} }

func (s Segment) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Name
}

// Path is an address into a value tree. The empty Path is the root.
type Path []Segment

// Root returns the empty path.
func Root() Path { return nil }

// Parse splits a dotted/bracketed path. The empty string is the root.
func Parse(s string) (Path, error) {
	if s == "" {
		return nil, nil
	}
	var p Path
	i := 0
	expectName := true // at start or after '.'
	for i < len(s) {
		switch c := s[i]; c {
		case '.':
			if expectName {
				return nil, fmt.Errorf("%w: empty name at offset %d in %q", ErrMalformedPath, i, s)
			}
			expectName = true
			i++
		case '[':
			if expectName && i > 0 {
				return nil, fmt.Errorf("%w: index after '.' at offset %d in %q", ErrMalformedPath, i, s)
			}
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("%w: unbalanced '[' at offset %d in %q", ErrMalformedPath, i, s)
			}
			digits := s[i+1 : i+end]
			n, err := parseIndex(digits)
			if err != nil {
				return nil, fmt.Errorf("%w: index %q in %q", ErrMalformedPath, digits, s)
			}
			p = append(p, Index(n))
			i += end + 1
			expectName = false
			if i < len(s) && s[i] != '.' && s[i] != '[' {
				return nil, fmt.Errorf("%w: unexpected %q after index in %q", ErrMalformedPath, s[i], s)
			}
		case ']':
			return nil, fmt.Errorf("%w: unbalanced ']' at offset %d in %q", ErrMalformedPath, i, s)
		default:
			if !expectName {
				return nil, fmt.Errorf("%w: unexpected %q at offset %d in %q", ErrMalformedPath, c, i, s)
			}
			j := i
			for j < len(s) && s[j] != '.' && s[j] != '[' && s[j] != ']' {
				j++
			}
			p = append(p, Field(s[i:j]))
			i = j
			expectName = false
		}
	}
	if expectName {
		return nil, fmt.Errorf("%w: trailing '.' in %q", ErrMalformedPath, s)
	}
	return p, nil
}

func parseIndex(digits string) (int, error) {
	if digits == "" {
		return 0, strconv.ErrSyntax
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(digits)
}

// MustParse is Parse for literals known to be well formed.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String renders the dotted/bracketed form accepted by Parse.
func (p Path) String() string {
	b := &strings.Builder{}
	for i, seg := range p {
		if !seg.IsIndex && i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.String())
	}
	return b.String()
}

// Pointer renders the path as an RFC 6901 JSON Pointer ("/" for the root).
func (p Path) Pointer() string {
	if len(p) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, seg := range p {
		b.WriteByte('/')
		if seg.IsIndex {
			b.WriteString(strconv.Itoa(seg.Index))
			continue
		}
		// escape '~' -> '~0', '/' -> '~1'
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(seg.Name, "~", "~0"), "/", "~1"))
	}
	return b.String()
}

// Field returns a copy of p extended with a member name.
func (p Path) Field(name string) Path {
	return append(append(Path{}, p...), Field(name))
}

// Index returns a copy of p extended with an array index.
func (p Path) Index(i int) Path {
	return append(append(Path{}, p...), Index(i))
}

// Equal reports whether both paths have the same segments.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether q is an ancestor of p or equal to it.
func (p Path) HasPrefix(q Path) bool {
	if len(q) > len(p) {
		return false
	}
	return p[:len(q)].Equal(q)
}

// Overlaps reports whether one path is an ancestor of (or equal to) the other.
// An edit at either path changes the value observed at the other.
func (p Path) Overlaps(q Path) bool { return p.HasPrefix(q) || q.HasPrefix(p) }

// Parent returns the path without its last segment.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return append(Path{}, p[:len(p)-1]...)
}

// Last returns the final segment; ok is false for the root.
func (p Path) Last() (Segment, bool) {
	if len(p) == 0 {
		return Segment{}, false
	}
	return p[len(p)-1], true
}
