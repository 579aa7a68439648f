// Package notifier provides a simple broadcast mechanism for SSE updates.
package notifier

import "sync"

// Notifier pings subscribed listeners when panel state changes.
// Each listener is registered under a key (the session id); Notify pings the
// listeners of one key and Broadcast pings everyone. Listeners receive an
// empty struct and should re-read the state they render.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan struct{}]string
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan struct{}]string),
	}
}

// Subscribe returns a channel that receives pings for key.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier) Subscribe(key string) chan struct{} {
	ch := make(chan struct{}, 1)
	n.mu.Lock()
	n.listeners[ch] = key
	n.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener channel and closes it.
func (n *Notifier) Unsubscribe(ch chan struct{}) {
	n.mu.Lock()
	delete(n.listeners, ch)
	n.mu.Unlock()
	close(ch)
}

// Notify pings the listeners subscribed under key.
func (n *Notifier) Notify(key string) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch, k := range n.listeners {
		if k == key {
			ping(ch)
		}
	}
}

// Broadcast sends a ping to all listeners.
func (n *Notifier) Broadcast() {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		ping(ch)
	}
}

// Len returns the number of subscribed listeners.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}

// ping never blocks: a full channel already has a pending update.
func ping(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
