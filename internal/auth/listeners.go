package auth

import (
	"sync"

	"github.com/goliatone/go-estate/pkg/interfaces"
)

// Listeners keeps the OnAuthStateChange registrations of a backend.
type Listeners struct {
	mu     sync.Mutex
	fns    map[uint64]func(interfaces.AuthEvent)
	nextID uint64
}

// NewListeners returns an empty registry.
func NewListeners() *Listeners {
	return &Listeners{fns: make(map[uint64]func(interfaces.AuthEvent))}
}

// Add registers fn and returns an idempotent unsubscribe.
func (l *Listeners) Add(fn func(interfaces.AuthEvent)) func() {
	if fn == nil {
		return func() {}
	}
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.fns[id] = fn
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.fns, id)
			l.mu.Unlock()
		})
	}
}

// Emit calls every registered listener on the caller's goroutine.
func (l *Listeners) Emit(evt interfaces.AuthEvent) {
	l.mu.Lock()
	fns := make([]func(interfaces.AuthEvent), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(evt)
	}
}
