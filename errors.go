package formskema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Issue codes. Field violations are recovered into an ErrorMap; only
// configuration errors are fatal.
const (
	CodeRequired       = "required"        // required field empty or absent
	CodeInvalidFormat  = "invalid_format"  // array input is not a JSON array
	CodeTooShort       = "too_short"       // fewer items than minItems
	CodeTooLong        = "too_long"        // more items than maxItems
	CodeInvalidElement = "invalid_element" // array element violates the items schema
	CodeInvalidType    = "invalid_type"    // boolean/number/integer mismatch
	CodeInvalidEnum    = "invalid_enum"    // value outside enum or const
	CodeTooSmall       = "too_small"       // below minimum / exclusiveMinimum
	CodeTooBig         = "too_big"         // above maximum / exclusiveMaximum
	// Collection and schema passes
	CodeCrossEntry           = "cross_entry"
	CodeUnresolvedRef        = "unresolved_ref"
	CodeDiscriminatorUnknown = "discriminator_unknown"
	CodeMalformedPath        = "malformed_path"
	CodeIndexOutOfRange      = "index_out_of_range"
)

// IsCardinality reports whether code is one of the minItems/maxItems codes.
func IsCardinality(code string) bool { return code == CodeTooShort || code == CodeTooLong }

// Issue represents a single violation.
type Issue struct {
	Path    string // JSON Pointer (for example: /species/0/name).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hint such as an example input.
	// Params carries structured parameters (e.g., {"min":3, "got":2}) for
	// i18n and renderers.
	Params map[string]any
	// Rule optionally records the check that produced this issue.
	Rule string
}

func (it Issue) String() string { return fmt.Sprintf("%s at %s", it.Code, it.Path) }

// Issues is a collection of violations that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		// e.g. invalid_type at /path
		b.WriteString(iss[i].String())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// HasCode reports whether any issue carries code.
func (iss Issues) HasCode(code string) bool {
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// ErrorMap holds the current violation per field, keyed by JSON Pointer.
// A missing key means the field is valid (or was never validated).
type ErrorMap map[string]Issue

// Put records it under its path, or clears the path when it is nil.
func (m ErrorMap) Put(path string, it *Issue) {
	if it == nil {
		delete(m, path)
		return
	}
	m[path] = *it
}

// Issues returns the entries ordered by path for deterministic reporting.
func (m ErrorMap) Issues() Issues {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(Issues, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

// Clone returns an independent copy.
func (m ErrorMap) Clone() ErrorMap {
	out := make(ErrorMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ErrConfiguration is matched by every *ConfigurationError via errors.Is.
var ErrConfiguration = errors.New("formskema: configuration error")

// ConfigurationError reports a malformed derivation rule set or input schema.
// It prevents a form from initializing at all.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	switch len(e.Problems) {
	case 0:
		return ErrConfiguration.Error()
	case 1:
		return ErrConfiguration.Error() + ": " + e.Problems[0]
	default:
		return fmt.Sprintf("%s: %s (and %d more)", ErrConfiguration.Error(), e.Problems[0], len(e.Problems)-1)
	}
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// Configf builds a single-problem ConfigurationError.
func Configf(format string, a ...any) *ConfigurationError {
	return &ConfigurationError{Problems: []string{fmt.Sprintf(format, a...)}}
}
