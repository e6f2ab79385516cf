package sections

// Section is the behaviour object a Factory builds for one section anchor.
// It may implement any subset of the hook interfaces below; the registry
// checks for each hook at dispatch time and skips the ones that are absent.
type Section interface{}

// Unloader releases whatever the section acquired. It runs once, before the
// instance leaves the registry, and must not expect further signals.
type Unloader interface {
	OnUnload(sig Signal) error
}

type Selecter interface {
	OnSelect(sig Signal)
}

type Deselecter interface {
	OnDeselect(sig Signal)
}

type Reorderer interface {
	OnReorder(sig Signal)
}

type BlockSelecter interface {
	OnBlockSelect(sig Signal)
}

type BlockDeselecter interface {
	OnBlockDeselect(sig Signal)
}

// Hooks adapts plain functions to the hook interfaces, for sections that are
// easier to express as a handful of closures. Nil fields are treated as
// absent hooks.
type Hooks struct {
	Unload        func(sig Signal) error
	Select        func(sig Signal)
	Deselect      func(sig Signal)
	Reorder       func(sig Signal)
	BlockSelect   func(sig Signal)
	BlockDeselect func(sig Signal)
}

func (h *Hooks) hook(kind SignalKind) bool {
	if h == nil {
		return false
	}
	switch kind {
	case SignalUnload:
		return h.Unload != nil
	case SignalSelect:
		return h.Select != nil
	case SignalDeselect:
		return h.Deselect != nil
	case SignalReorder:
		return h.Reorder != nil
	case SignalBlockSelect:
		return h.BlockSelect != nil
	case SignalBlockDeselect:
		return h.BlockDeselect != nil
	default:
		return false
	}
}

// invokeHook calls the hook of section matching sig.Kind. It reports whether
// the section implements that hook.
func invokeHook(section Section, sig Signal) (bool, error) {
	if h, ok := section.(*Hooks); ok {
		if !h.hook(sig.Kind) {
			return false, nil
		}
		switch sig.Kind {
		case SignalUnload:
			return true, h.Unload(sig)
		case SignalSelect:
			h.Select(sig)
		case SignalDeselect:
			h.Deselect(sig)
		case SignalReorder:
			h.Reorder(sig)
		case SignalBlockSelect:
			h.BlockSelect(sig)
		case SignalBlockDeselect:
			h.BlockDeselect(sig)
		}
		return true, nil
	}

	switch sig.Kind {
	case SignalUnload:
		if s, ok := section.(Unloader); ok {
			return true, s.OnUnload(sig)
		}
	case SignalSelect:
		if s, ok := section.(Selecter); ok {
			s.OnSelect(sig)
			return true, nil
		}
	case SignalDeselect:
		if s, ok := section.(Deselecter); ok {
			s.OnDeselect(sig)
			return true, nil
		}
	case SignalReorder:
		if s, ok := section.(Reorderer); ok {
			s.OnReorder(sig)
			return true, nil
		}
	case SignalBlockSelect:
		if s, ok := section.(BlockSelecter); ok {
			s.OnBlockSelect(sig)
			return true, nil
		}
	case SignalBlockDeselect:
		if s, ok := section.(BlockDeselecter); ok {
			s.OnBlockDeselect(sig)
			return true, nil
		}
	}
	return false, nil
}
