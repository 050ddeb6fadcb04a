package gateway

import (
	"context"
	"sync"

	"github.com/aabid-khan7222/myschool-sub002/internal/ports"
)

// SessionNotifier broadcasts the session-expired signal to every subscribed
// listener, synchronously and in subscription order.
type SessionNotifier struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners []subscription
}

type subscription struct {
	id       uint64
	listener ports.SessionListener
}

func NewSessionNotifier() *SessionNotifier {
	return &SessionNotifier{}
}

// Subscribe registers listener and returns a function that removes it.
func (n *SessionNotifier) Subscribe(listener ports.SessionListener) func() {
	if listener == nil {
		return func() {}
	}

	n.mu.Lock()
	n.nextID++
	id := n.nextID
	n.listeners = append(n.listeners, subscription{id: id, listener: listener})
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { n.unsubscribe(id) })
	}
}

func (n *SessionNotifier) Publish(ctx context.Context) {
	n.mu.RLock()
	listeners := make([]ports.SessionListener, 0, len(n.listeners))
	for _, sub := range n.listeners {
		listeners = append(listeners, sub.listener)
	}
	n.mu.RUnlock()

	for _, listener := range listeners {
		listener.OnSessionExpired(ctx)
	}
}

func (n *SessionNotifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}

func (n *SessionNotifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, sub := range n.listeners {
		if sub.id == id {
			n.listeners = append(n.listeners[:i], n.listeners[i+1:]...)
			return
		}
	}
}
