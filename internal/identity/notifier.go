package identity

import "sync"

// Event describes an identity transition. An empty UserID means the
// previous identity signed out.
type Event struct {
	UserID string
}

// Notifier fans identity transitions out to subscribers. Components that
// cache per-user state subscribe and discard that state on every event.
type Notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Event)
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]func(Event))}
}

// Subscribe registers fn and returns its unsubscribe function. fn runs
// synchronously on the notifying goroutine.
func (n *Notifier) Subscribe(fn func(Event)) func() {
	n.mu.Lock()
	id := n.next
	n.next++
	n.subs[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}

func (n *Notifier) Notify(ev Event) {
	n.mu.Lock()
	fns := make([]func(Event), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
