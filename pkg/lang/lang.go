package lang

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Default represents the fallback language code used when no explicit language
// is configured. The value follows BCP 47 conventions.
const Default = "en"

var errEmptyCode = errors.New("language code cannot be empty")

// Normalize validates a BCP 47 code and returns its canonical form, e.g.
// "de-de" becomes "de-DE". Underscores are accepted as separators.
func Normalize(code string) (string, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "", errEmptyCode
	}

	tag, err := language.Parse(strings.ReplaceAll(trimmed, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("invalid language code %q: %w", code, err)
	}
	return tag.String(), nil
}

// Tag parses code, falling back to Default when it is empty or invalid.
func Tag(code string) language.Tag {
	normalized, err := Normalize(code)
	if err != nil {
		return language.Make(Default)
	}
	return language.Make(normalized)
}
