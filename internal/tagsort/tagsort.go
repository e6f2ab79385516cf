// Package tagsort filters collection items by the tags they carry.
package tagsort

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

type Mode string

const (
	// Exclusive shows items carrying every active tag.
	Exclusive Mode = "exclusive"
	// Inclusive shows items carrying any active tag.
	Inclusive Mode = "inclusive"
	// Single allows one active tag at a time.
	Single Mode = "single"
)

var ErrUnknownMode = errors.New("unknown tagsort mode")

func ParseMode(raw string) (Mode, error) {
	switch mode := Mode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case "":
		return Exclusive, nil
	case Exclusive, Inclusive, Single:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, raw)
	}
}

// Tag is one filter entry. Label keeps the spelling of its first occurrence.
type Tag struct {
	Key   string
	Label string
}

type Filter struct {
	mode   Mode
	lower  cases.Caser
	tags   []Tag
	items  []map[string]struct{}
	active []string
}

type Option func(*Filter)

// WithLanguage lowercases tags with the rules of tag, so that for instance
// Turkish dotted and dotless i stay distinct.
func WithLanguage(tag language.Tag) Option {
	return func(f *Filter) {
		f.lower = cases.Lower(tag)
	}
}

func normalize(caser cases.Caser, tag string) string {
	return caser.String(norm.NFC.String(strings.TrimSpace(tag)))
}

// Key normalises tag for comparison: NFC, trimmed and case folded, or
// lowercased per language when WithLanguage is set.
func (f *Filter) Key(tag string) string {
	return normalize(f.lower, tag)
}

// SplitTags splits a comma separated tag list and drops empty entries.
func SplitTags(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// New builds a filter over items, each given as its raw comma separated tag
// list. Tags are listed in first-seen order.
func New(mode Mode, items []string, opts ...Option) *Filter {
	f := &Filter{mode: mode, lower: cases.Fold()}
	for _, opt := range opts {
		opt(f)
	}
	seen := make(map[string]bool)
	for _, raw := range items {
		keys := make(map[string]struct{})
		for _, tag := range SplitTags(raw) {
			key := f.Key(tag)
			keys[key] = struct{}{}
			if !seen[key] {
				seen[key] = true
				f.tags = append(f.tags, Tag{Key: key, Label: tag})
			}
		}
		f.items = append(f.items, keys)
	}
	return f
}

func (f *Filter) Mode() Mode  { return f.mode }
func (f *Filter) Tags() []Tag { return append([]Tag(nil), f.tags...) }

// Active returns the active tag keys in activation order.
func (f *Filter) Active() []string { return append([]string(nil), f.active...) }

func (f *Filter) IsActive(tag string) bool {
	return f.indexOf(f.Key(tag)) >= 0
}

// Toggle flips tag and returns the resulting item visibility. Unknown tags
// leave the filter unchanged.
func (f *Filter) Toggle(tag string) []bool {
	key := f.Key(tag)
	if !f.known(key) {
		return f.Visible()
	}

	if i := f.indexOf(key); i >= 0 {
		f.active = append(f.active[:i], f.active[i+1:]...)
		return f.Visible()
	}

	if f.mode == Single {
		f.active = f.active[:0]
	}
	f.active = append(f.active, key)
	return f.Visible()
}

// Reset clears every active tag.
func (f *Filter) Reset() []bool {
	f.active = nil
	return f.Visible()
}

// Visible reports per item whether it passes the active tags. With no active
// tag every item is visible.
func (f *Filter) Visible() []bool {
	out := make([]bool, len(f.items))
	for i, keys := range f.items {
		out[i] = f.passes(keys)
	}
	return out
}

func (f *Filter) passes(keys map[string]struct{}) bool {
	if len(f.active) == 0 {
		return true
	}
	if f.mode == Inclusive {
		for _, key := range f.active {
			if _, ok := keys[key]; ok {
				return true
			}
		}
		return false
	}
	for _, key := range f.active {
		if _, ok := keys[key]; !ok {
			return false
		}
	}
	return true
}

func (f *Filter) indexOf(key string) int {
	for i, active := range f.active {
		if active == key {
			return i
		}
	}
	return -1
}

func (f *Filter) known(key string) bool {
	for _, tag := range f.tags {
		if tag.Key == key {
			return true
		}
	}
	return false
}
