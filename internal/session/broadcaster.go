package session

import (
	"context"
	"sync"

	"github.com/goliatone/go-estate/pkg/interfaces"
)

// Change is delivered to Subscribe watchers after each auth transition.
type Change struct {
	Event      interfaces.AuthEventType
	Privileged bool
}

type changeBroadcaster struct {
	mu       sync.Mutex
	watchers map[uint64]chan Change
	nextID   uint64
	closed   bool
}

func newChangeBroadcaster() *changeBroadcaster {
	return &changeBroadcaster{watchers: make(map[uint64]chan Change)}
}

func (b *changeBroadcaster) subscribe(ctx context.Context) <-chan Change {
	if ctx == nil {
		ctx = context.Background()
	}
	ch := make(chan Change, 8)

	b.mu.Lock()
	if b.closed || ctx.Err() != nil {
		b.mu.Unlock()
		close(ch)
		return ch
	}
	id := b.nextID
	b.nextID++
	b.watchers[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.remove(id)
	}()
	return ch
}

func (b *changeBroadcaster) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.watchers[id]; ok {
		delete(b.watchers, id)
		close(ch)
	}
}

// broadcast drops the change for watchers whose buffer is full.
func (b *changeBroadcaster) broadcast(change Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.watchers {
		select {
		case ch <- change:
		default:
		}
	}
}

func (b *changeBroadcaster) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, ch := range b.watchers {
		delete(b.watchers, id)
		close(ch)
	}
}
