package variants

// Resolve returns the variant whose positional values match every selected
// option, or nil when none does.
//
// When several variants match, the LAST one in catalog order wins, and an
// empty selection therefore resolves to the last variant. Existing catalog
// orderings depend on this, so it is kept as the defined policy even though
// first-match would be the more obvious reading.
func Resolve(selected []Option, catalog []Variant) *Variant {
	var found *Variant
	for i := range catalog {
		if matches(&catalog[i], selected) {
			found = &catalog[i]
		}
	}
	return found
}

func matches(v *Variant, selected []Option) bool {
	for _, option := range selected {
		value, ok := v.OptionValue(option.Index)
		if !ok || value != option.Value {
			return false
		}
	}
	return true
}
