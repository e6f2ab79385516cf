// Package events delivers named in-process events to subscribers. A Bus is
// scoped to one section; each subscription carries its own cancel handle so a
// section can release exactly what it acquired when it unloads.
package events

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// Names of the events raised by variant selection.
const (
	VariantChange      = "variantChange"
	VariantImageChange = "variantImageChange"
	VariantPriceChange = "variantPriceChange"
)

var (
	ErrEmptyName  = errors.New("event name is required")
	ErrNilHandler = errors.New("event handler is required")
)

type Event struct {
	Name string
	Data any
}

type Handler func(Event)

// Bus delivers events synchronously, in subscription order.
type Bus struct {
	mu   sync.RWMutex
	subs []*Subscription
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers handler for events called name.
func (b *Bus) Subscribe(name string, handler Handler) (*Subscription, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if handler == nil {
		return nil, ErrNilHandler
	}

	sub := &Subscription{id: uuid.NewString(), name: name, handler: handler, bus: b}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	return sub, nil
}

// Publish delivers ev to the active subscribers of ev.Name and returns how
// many handlers ran. Handlers may cancel subscriptions while running.
func (b *Bus) Publish(ev Event) int {
	b.mu.RLock()
	targets := make([]*Subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.name == ev.Name {
			targets = append(targets, sub)
		}
	}
	b.mu.RUnlock()

	delivered := 0
	for _, sub := range targets {
		if !sub.Active() {
			continue
		}
		sub.handler(ev)
		delivered++
	}
	return delivered
}

// Len reports the number of active subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Bus) remove(target *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub == target {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

type Subscription struct {
	id      string
	name    string
	handler Handler
	bus     *Bus

	mu        sync.Mutex
	cancelled bool
}

func (s *Subscription) ID() string   { return s.id }
func (s *Subscription) Name() string { return s.name }

func (s *Subscription) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.cancelled
}

// Cancel detaches the subscription. Calling it again is a no-op.
func (s *Subscription) Cancel() {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return
	}
	s.cancelled = true
	s.mu.Unlock()

	s.bus.remove(s)
}

// Group collects subscriptions so they can be released together.
type Group struct {
	mu   sync.Mutex
	subs []*Subscription
}

func (g *Group) Add(sub *Subscription) {
	if sub == nil {
		return
	}
	g.mu.Lock()
	g.subs = append(g.subs, sub)
	g.mu.Unlock()
}

// Cancel releases every subscription in the group and empties it.
func (g *Group) Cancel() {
	g.mu.Lock()
	subs := g.subs
	g.subs = nil
	g.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
}

func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.subs)
}
