package jsonschema

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// container is one open object or array while scanning for duplicate keys.
type container struct {
	object  bool
	keys    map[string]bool
	wantKey bool
	key     string // current member name (objects)
	index   int    // current element index (arrays)
	pointer string
}

func (c *container) child() string {
	if c.object {
		return c.pointer + "/" + escapeToken(c.key)
	}
	return c.pointer + "/" + strconv.Itoa(c.index)
}

// valueDone advances past a finished member or element.
func (c *container) valueDone() {
	if c.object {
		c.wantKey = true
		return
	}
	c.index++
}

// DuplicateKeys returns the JSON Pointer of every object member whose key
// repeats an earlier key of the same object. Decoding keeps the last value,
// so these members silently shadow the first ones.
func DuplicateKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var (
		stack []*container
		out   []string
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			if len(stack) > 0 {
				return out, io.ErrUnexpectedEOF
			}
			return out, nil
		}
		if err != nil {
			return out, err
		}
		var top *container
		if n := len(stack); n > 0 {
			top = stack[n-1]
		}

		if top != nil && top.object && top.wantKey {
			if d, ok := tok.(json.Delim); ok && d == '}' {
				stack = stack[:len(stack)-1]
				if n := len(stack); n > 0 {
					stack[n-1].valueDone()
				}
				continue
			}
			k, _ := tok.(string)
			if top.keys[k] {
				out = append(out, top.pointer+"/"+escapeToken(k))
			}
			top.keys[k] = true
			top.key, top.wantKey = k, false
			continue
		}

		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				ptr := ""
				if top != nil {
					ptr = top.child()
				}
				stack = append(stack, &container{object: d == '{', keys: map[string]bool{}, wantKey: d == '{', pointer: ptr})
				continue
			case '}', ']':
				stack = stack[:len(stack)-1]
			}
		}
		if n := len(stack); n > 0 {
			stack[n-1].valueDone()
		}
	}
}

func escapeToken(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
}
