package i18n

import "testing"

func TestTranslator_EnglishAndJapanese(t *testing.T) {
	if msg := Dictionary("en").Message("invalid_type", map[string]string{"expected": "a number"}); msg != "Value must be a number." {
		t.Fatalf("unexpected english message %q", msg)
	}
	if msg := Dictionary("ja").Message("required", nil); msg != "必須項目です。" {
		t.Fatalf("expected japanese message, got %q", msg)
	}
}

func TestTranslator_Placeholders(t *testing.T) {
	tr := Dictionary("en")
	got := tr.Message("too_short", map[string]string{"min": "3"})
	if got != "Array must have at least 3 items." {
		t.Fatalf("got %q", got)
	}
	got = tr.Message("undefined_species", map[string]string{"field": "ion_species", "species": "Cu"})
	if got != "ion_species refers to undefined species Cu." {
		t.Fatalf("got %q", got)
	}
}

func TestTranslator_UnknownCodeAndLanguage(t *testing.T) {
	if got := Dictionary("fr").Message("required", nil); got != "This field is required." {
		t.Fatalf("unknown language should fall back to en, got %q", got)
	}
	if got := Dictionary("en").Message("no_such_code", nil); got != "no_such_code" {
		t.Fatalf("unknown code should echo the code, got %q", got)
	}
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return "X:" + code }

func TestOr(t *testing.T) {
	if got := Or(upper{}).Message("required", nil); got != "X:required" {
		t.Fatalf("got %q", got)
	}
	if got := Or(nil).Message("required", nil); got != "This field is required." {
		t.Fatalf("nil should give the english dictionary, got %q", got)
	}
}
