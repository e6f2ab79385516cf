package sections

import (
	"fmt"
	"strings"
)

// Anchor attributes declaring a section root.
const (
	AttrSectionID   = "data-section-id"
	AttrSectionType = "data-section-type"
)

// Anchor is the DOM root of a section. Only its two declared attributes are
// read by the registry; factories may type-assert to a richer element.
type Anchor interface {
	Attr(name string) (string, bool)
}

type SignalKind string

const (
	SignalLoad          SignalKind = "section:load"
	SignalUnload        SignalKind = "section:unload"
	SignalSelect        SignalKind = "section:select"
	SignalDeselect      SignalKind = "section:deselect"
	SignalReorder       SignalKind = "section:reorder"
	SignalBlockSelect   SignalKind = "block:select"
	SignalBlockDeselect SignalKind = "block:deselect"
)

// ParseSignalKind accepts both the host event names ("section:select") and
// their short forms ("select", "block_select").
func ParseSignalKind(value string) (SignalKind, error) {
	normalized := strings.TrimSpace(strings.ToLower(value))
	normalized = strings.TrimPrefix(normalized, "shopify:")
	normalized = strings.ReplaceAll(normalized, "_", ":")
	normalized = strings.ReplaceAll(normalized, "-", ":")

	switch normalized {
	case "section:load", "load":
		return SignalLoad, nil
	case "section:unload", "unload":
		return SignalUnload, nil
	case "section:select", "select":
		return SignalSelect, nil
	case "section:deselect", "deselect":
		return SignalDeselect, nil
	case "section:reorder", "reorder":
		return SignalReorder, nil
	case "block:select":
		return SignalBlockSelect, nil
	case "block:deselect":
		return SignalBlockDeselect, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSignal, value)
	}
}

// Signal is one host lifecycle notification.
type Signal struct {
	Kind      SignalKind
	SectionID string
	BlockID   string
	// Anchor is only read for load signals.
	Anchor Anchor
}

func anchorIdentity(anchor Anchor) (id, sectionType string) {
	if anchor == nil {
		return "", ""
	}
	id, _ = anchor.Attr(AttrSectionID)
	sectionType, _ = anchor.Attr(AttrSectionType)
	return strings.TrimSpace(id), normalizeType(sectionType)
}

func normalizeType(sectionType string) string {
	return strings.TrimSpace(strings.ToLower(sectionType))
}
