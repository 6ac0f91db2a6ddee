package event

import (
	"errors"
	"slices"
	"sync"
)

// Sentinel errors for the event bus.
var (
	// ErrStop is returned by a listener to halt dispatch of the current
	// event. It is reported through Outcome.Stopped, never as an error.
	ErrStop = errors.New("event: stop")

	// ErrNilListener is returned when a nil listener is registered.
	ErrNilListener = errors.New("event: listener cannot be nil")
)

// Listener handles one named event for payload p. The returned value is
// collected into the dispatch outcome.
type Listener[P any] func(p P) (any, error)

// Outcome reports what a dispatch produced.
type Outcome struct {
	Results []any
	Stopped bool
}

type subscription[P any] struct {
	fn   Listener[P]
	id   uint64
	once bool
}

// Bus dispatches named events to listeners synchronously, in
// registration order.
type Bus[P any] struct {
	listeners map[string][]*subscription[P]
	mu        sync.RWMutex
	nextID    uint64
}

// NewBus creates an empty bus.
func NewBus[P any]() *Bus[P] {
	return &Bus[P]{listeners: make(map[string][]*subscription[P])}
}

// On registers fn for name. The returned function removes it again.
func (b *Bus[P]) On(name string, fn Listener[P]) (func(), error) {
	return b.add(name, fn, false)
}

// One registers fn for a single dispatch of name.
func (b *Bus[P]) One(name string, fn Listener[P]) (func(), error) {
	return b.add(name, fn, true)
}

// Off removes every listener of name.
func (b *Bus[P]) Off(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.listeners, name)
}

// Has reports whether name has listeners.
func (b *Bus[P]) Has(name string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[name]) > 0
}

func (b *Bus[P]) add(name string, fn Listener[P], once bool) (func(), error) {
	if fn == nil {
		return nil, ErrNilListener
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &subscription[P]{fn: fn, id: b.nextID, once: once}
	b.listeners[name] = append(b.listeners[name], sub)

	return func() { b.remove(name, sub.id) }, nil
}

func (b *Bus[P]) remove(name string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.listeners[name] = slices.DeleteFunc(b.listeners[name], func(s *subscription[P]) bool {
		return s.id == id
	})
	if len(b.listeners[name]) == 0 {
		delete(b.listeners, name)
	}
}

// Dispatch calls the listeners of name in order. A listener returning
// ErrStop halts dispatch and marks the outcome stopped; any other error
// aborts dispatch and is returned.
func (b *Bus[P]) Dispatch(name string, p P) (Outcome, error) {
	b.mu.Lock()
	subs := slices.Clone(b.listeners[name])
	kept := slices.DeleteFunc(slices.Clone(subs), func(s *subscription[P]) bool { return s.once })
	if len(kept) == 0 {
		delete(b.listeners, name)
	} else if len(kept) != len(subs) {
		b.listeners[name] = kept
	}
	b.mu.Unlock()

	var out Outcome
	for _, s := range subs {
		v, err := s.fn(p)
		if errors.Is(err, ErrStop) {
			if v != nil {
				out.Results = append(out.Results, v)
			}
			out.Stopped = true
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out.Results = append(out.Results, v)
	}
	return out, nil
}
