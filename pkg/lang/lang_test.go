package lang

import (
	"testing"

	"golang.org/x/text/language"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"en":     "en",
		" de-de": "de-DE",
		"pt_br":  "pt-BR",
		"TR":     "tr",
	}
	for input, want := range cases {
		got, err := Normalize(input)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", input, got, want)
		}
	}

	for _, input := range []string{"", "   ", "not a language!"} {
		if _, err := Normalize(input); err == nil {
			t.Fatalf("expected %q to be rejected", input)
		}
	}
}

func TestTagFallsBackToDefault(t *testing.T) {
	if got := Tag("??"); got != language.English {
		t.Fatalf("expected English fallback, got %v", got)
	}
	if got := Tag("tr"); got != language.Turkish {
		t.Fatalf("expected Turkish, got %v", got)
	}
}
