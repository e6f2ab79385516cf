package sections

import (
	"errors"
	"fmt"
	"sync"

	"storefront-theme/pkg/logger"
)

var (
	ErrEmptyType     = errors.New("section type is empty")
	ErrNilFactory    = errors.New("section factory is nil")
	ErrNilAnchor     = errors.New("load signal has no anchor")
	ErrUnknownSignal = errors.New("unknown lifecycle signal")
)

// Factory builds the behaviour object for a section anchor. Returning an
// error means the section does not initialise and nothing is recorded.
type Factory func(anchor Anchor) (Section, error)

// Scanner lists the anchors already present in the page for a section type.
// Register uses it to instantiate sections that were rendered before their
// type was registered.
type Scanner func(sectionType string) []Anchor

// Instance is a live section tracked by the registry.
type Instance struct {
	ID      string
	Type    string
	Anchor  Anchor
	Section Section
}

// Registry multiplexes host lifecycle signals onto per-type section
// behaviours. The live collection holds at most one instance per id, in load
// order, even when loads for one id race. Hooks are invoked outside the
// registry lock, so a hook may inspect the registry. The order in which
// racing signals take effect is up to the caller (see background.Loop).
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	instances []*Instance
	scanner   Scanner
}

// Option configures a Registry at construction.
type Option func(*Registry)

// WithScanner enables eager instantiation on Register.
func WithScanner(scanner Scanner) Option {
	return func(r *Registry) {
		r.scanner = scanner
	}
}

// NewRegistry returns an empty registry with opts applied.
func NewRegistry(opts ...Option) *Registry {
	initMetrics()

	r := &Registry{factories: make(map[string]Factory)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register stores factory under sectionType, replacing any previous factory,
// then instantiates every matching anchor the scanner reports.
func (r *Registry) Register(sectionType string, factory Factory) error {
	if r == nil {
		return fmt.Errorf("registry is nil")
	}
	sectionType = normalizeType(sectionType)
	if sectionType == "" {
		return ErrEmptyType
	}
	if factory == nil {
		return fmt.Errorf("%w for type %s", ErrNilFactory, sectionType)
	}

	r.mu.Lock()
	r.factories[sectionType] = factory
	scanner := r.scanner
	r.mu.Unlock()

	if scanner == nil {
		return nil
	}
	for _, anchor := range scanner(sectionType) {
		r.load(anchor, factory)
	}
	return nil
}

// HasType reports whether a factory is registered for sectionType.
func (r *Registry) HasType(sectionType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[normalizeType(sectionType)]
	return ok
}

// Load instantiates the section declared by anchor. Unknown types and
// anchors without an id are ignored.
func (r *Registry) Load(anchor Anchor) {
	r.load(anchor, nil)
}

func (r *Registry) load(anchor Anchor, factory Factory) {
	id, sectionType := anchorIdentity(anchor)
	fields := map[string]interface{}{"section_id": id, "section_type": sectionType}

	if factory == nil {
		r.mu.RLock()
		factory = r.factories[sectionType]
		r.mu.RUnlock()
	}
	if factory == nil {
		observeSignal(SignalLoad, outcomeUnknownType)
		logger.Debug("Ignoring section load for unregistered type", fields)
		return
	}
	if id == "" {
		observeSignal(SignalLoad, outcomeFailed)
		logger.Warn("Ignoring section anchor without an id", fields)
		return
	}

	replaced := false
	if _, ok := r.Instance(id); ok {
		r.Unload(id)
		replaced = true
	}

	section, err := buildSection(factory, anchor)
	if err != nil {
		observeSignal(SignalLoad, outcomeFailed)
		factoryFailures.WithLabelValues(sectionType).Inc()
		logger.Error(err, "Section failed to initialise", fields)
		return
	}

	// Another load for the same id may have landed while the factory ran.
	// The id check and the append share one critical section so the live
	// collection never holds two instances with one id.
	instance := &Instance{ID: id, Type: sectionType, Anchor: anchor, Section: section}
	r.mu.Lock()
	stale := r.detachLocked(id)
	r.instances = append(r.instances, instance)
	r.mu.Unlock()
	liveInstances.Inc()

	if stale != nil {
		r.unloadDetached(stale)
		replaced = true
	}
	if replaced {
		observeSignal(SignalLoad, outcomeReplaced)
	} else {
		observeSignal(SignalLoad, outcomeLoaded)
	}
	logger.Debug("Section loaded", fields)
}

func buildSection(factory Factory, anchor Anchor) (section Section, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("section factory panicked: %v", rec)
		}
	}()
	return factory(anchor)
}

// Unload runs the instance's OnUnload hook, if any, and removes the instance
// whatever the hook does.
func (r *Registry) Unload(id string) {
	instance := r.lookup(id)
	if instance == nil {
		observeSignal(SignalUnload, outcomeNoInstance)
		return
	}

	defer func() {
		if r.remove(instance) {
			liveInstances.Dec()
		}
		observeSignal(SignalUnload, outcomeUnloaded)
	}()
	r.runUnloadHook(instance)
}

// unloadDetached runs the unload hook of an instance already taken out of
// the live collection.
func (r *Registry) unloadDetached(instance *Instance) {
	liveInstances.Dec()
	r.runUnloadHook(instance)
	observeSignal(SignalUnload, outcomeUnloaded)
}

func (r *Registry) runUnloadHook(instance *Instance) {
	sig := Signal{Kind: SignalUnload, SectionID: instance.ID, Anchor: instance.Anchor}
	if _, err := r.invoke(instance, sig); err != nil {
		logger.Error(err, "Section unload hook failed", map[string]interface{}{
			"section_id":   instance.ID,
			"section_type": instance.Type,
		})
	}
}

// detachLocked removes and returns the live instance with id. The caller
// holds r.mu.
func (r *Registry) detachLocked(id string) *Instance {
	for i, instance := range r.instances {
		if instance.ID == id {
			r.instances = append(r.instances[:i], r.instances[i+1:]...)
			return instance
		}
	}
	return nil
}

// Select tells the section that the editor selected it.
func (r *Registry) Select(id string) {
	r.dispatch(Signal{Kind: SignalSelect, SectionID: id})
}

// Deselect tells the section that the editor moved away from it.
func (r *Registry) Deselect(id string) {
	r.dispatch(Signal{Kind: SignalDeselect, SectionID: id})
}

// Reorder tells the section that it moved within the page.
func (r *Registry) Reorder(id string) {
	r.dispatch(Signal{Kind: SignalReorder, SectionID: id})
}

// BlockSelect tells the section that one of its blocks was selected.
func (r *Registry) BlockSelect(id, blockID string) {
	r.dispatch(Signal{Kind: SignalBlockSelect, SectionID: id, BlockID: blockID})
}

// BlockDeselect tells the section that one of its blocks was deselected.
func (r *Registry) BlockDeselect(id, blockID string) {
	r.dispatch(Signal{Kind: SignalBlockDeselect, SectionID: id, BlockID: blockID})
}

// Dispatch routes a host signal to the matching operation.
func (r *Registry) Dispatch(sig Signal) error {
	switch sig.Kind {
	case SignalLoad:
		if sig.Anchor == nil {
			return ErrNilAnchor
		}
		r.Load(sig.Anchor)
	case SignalUnload:
		r.Unload(sig.SectionID)
	case SignalSelect, SignalDeselect, SignalReorder, SignalBlockSelect, SignalBlockDeselect:
		r.dispatch(sig)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSignal, sig.Kind)
	}
	return nil
}

func (r *Registry) dispatch(sig Signal) {
	instance := r.lookup(sig.SectionID)
	if instance == nil {
		observeSignal(sig.Kind, outcomeNoInstance)
		return
	}
	if sig.Anchor == nil {
		sig.Anchor = instance.Anchor
	}

	handled, err := r.invoke(instance, sig)
	if err != nil {
		observeSignal(sig.Kind, outcomeFailed)
		logger.Error(err, "Section hook failed", map[string]interface{}{
			"section_id": instance.ID,
			"signal":     string(sig.Kind),
		})
		return
	}
	if !handled {
		observeSignal(sig.Kind, outcomeNoHook)
		return
	}
	observeSignal(sig.Kind, outcomeDispatched)
}

func (r *Registry) invoke(instance *Instance, sig Signal) (handled bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			handled = true
			err = fmt.Errorf("section hook panicked: %v", rec)
		}
	}()
	return invokeHook(instance.Section, sig)
}

// Instance returns a copy of the live instance with the given id.
func (r *Registry) Instance(id string) (Instance, bool) {
	instance := r.lookup(id)
	if instance == nil {
		return Instance{}, false
	}
	return *instance, true
}

// Instances returns a snapshot of the live collection in load order.
func (r *Registry) Instances() []Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Instance, 0, len(r.instances))
	for _, instance := range r.instances {
		out = append(out, *instance)
	}
	return out
}

// Len returns the number of live instances.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instances)
}

// Close unloads every live instance, most recently loaded first. The
// registry keeps its factories and may be reused afterwards.
func (r *Registry) Close() {
	for {
		r.mu.RLock()
		n := len(r.instances)
		var last *Instance
		if n > 0 {
			last = r.instances[n-1]
		}
		r.mu.RUnlock()

		if last == nil {
			return
		}
		r.Unload(last.ID)
	}
}

func (r *Registry) lookup(id string) *Instance {
	if r == nil || id == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, instance := range r.instances {
		if instance.ID == id {
			return instance
		}
	}
	return nil
}

func (r *Registry) remove(target *Instance) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, instance := range r.instances {
		if instance == target {
			r.instances = append(r.instances[:i], r.instances[i+1:]...)
			return true
		}
	}
	return false
}
