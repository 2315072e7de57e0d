package formskema_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	formskema "github.com/reoring/formskema"
	"github.com/reoring/formskema/fieldpath"
)

// TestIssues_ErrorSummary checks that Error() lists at most three entries and
// reports the total.
func TestIssues_ErrorSummary(t *testing.T) {
	var iss formskema.Issues
	for i := 0; i < 5; i++ {
		iss = formskema.AppendIssues(iss, formskema.IssueAt(fieldpath.Root().Index(i), formskema.CodeRequired, "missing", nil))
	}
	msg := iss.Error()
	if !strings.HasPrefix(msg, "required at /0; required at /1; required at /2") {
		t.Fatalf("unexpected summary: %q", msg)
	}
	if !strings.HasSuffix(msg, "(total 5)") {
		t.Fatalf("expected total in summary: %q", msg)
	}
}

// TestAsIssues_Wrapped exercises errors.As through a wrapping error.
func TestAsIssues_Wrapped(t *testing.T) {
	base := formskema.Issues{formskema.IssueKV(fieldpath.MustParse("species"), formskema.CodeCrossEntry, "no electron", "count", 0)}
	err := fmt.Errorf("submit: %w", base)
	iss, ok := formskema.AsIssues(err)
	if !ok || len(iss) != 1 {
		t.Fatalf("expected issues, got %v", err)
	}
	if iss[0].Path != "/species" || iss[0].Params["count"] != 0 {
		t.Fatalf("unexpected issue: %#v", iss[0])
	}
	if !iss.HasCode(formskema.CodeCrossEntry) {
		t.Fatalf("expected cross_entry code")
	}
	if _, ok := formskema.AsIssues(nil); ok {
		t.Fatalf("nil error must not yield issues")
	}
}

func TestErrorMap_PutAndOrder(t *testing.T) {
	m := formskema.ErrorMap{}
	m.Put("/b", &formskema.Issue{Path: "/b", Code: formskema.CodeInvalidType})
	m.Put("/a", &formskema.Issue{Path: "/a", Code: formskema.CodeRequired})
	m.Put("/c", nil)
	iss := m.Issues()
	if len(iss) != 2 || iss[0].Path != "/a" || iss[1].Path != "/b" {
		t.Fatalf("unexpected order: %v", iss)
	}
	m.Put("/a", nil)
	if _, ok := m["/a"]; ok {
		t.Fatalf("nil issue must clear the entry")
	}
	cp := m.Clone()
	cp.Put("/z", &formskema.Issue{Path: "/z"})
	if len(m) != 1 {
		t.Fatalf("clone must be independent")
	}
}

func TestConfigurationError_Is(t *testing.T) {
	err := fmt.Errorf("load: %w", formskema.Configf("rule %q conflicts", "upper_bound"))
	if !errors.Is(err, formskema.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	var ce *formskema.ConfigurationError
	if !errors.As(err, &ce) || len(ce.Problems) != 1 {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	multi := &formskema.ConfigurationError{Problems: []string{"a", "b", "c"}}
	if !strings.Contains(multi.Error(), "and 2 more") {
		t.Fatalf("unexpected message: %q", multi.Error())
	}
}

func TestIsCardinality(t *testing.T) {
	if !formskema.IsCardinality(formskema.CodeTooShort) || !formskema.IsCardinality(formskema.CodeTooLong) {
		t.Fatalf("too_short/too_long are cardinality codes")
	}
	if formskema.IsCardinality(formskema.CodeInvalidFormat) {
		t.Fatalf("invalid_format is not a cardinality code")
	}
}
