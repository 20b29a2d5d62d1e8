package headmeta

import "sync"

// NavigationEnd signals a completed navigation. URL is the address after
// redirects. Resolved carries the resolution when the publisher already
// computed it; subscribers then apply it instead of fetching again.
type NavigationEnd struct {
	URL      string
	Resolved *Resolution
}

const subscriberBuffer = 16

// Router fans navigation events out to subscribers. A subscriber that falls
// behind loses events instead of blocking Publish.
type Router struct {
	mu     sync.Mutex
	subs   map[int]chan NavigationEnd
	next   int
	closed bool
}

// NewRouter returns an empty Router.
func NewRouter() *Router {
	return &Router{subs: make(map[int]chan NavigationEnd)}
}

// Subscribe registers a subscriber. The returned cancel func removes it and
// closes its channel; it is safe to call more than once.
func (r *Router) Subscribe() (<-chan NavigationEnd, func()) {
	ch := make(chan NavigationEnd, subscriberBuffer)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		close(ch)
		return ch, func() {}
	}
	id := r.next
	r.next++
	r.subs[id] = ch
	return ch, func() { r.remove(id) }
}

func (r *Router) remove(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ch, ok := r.subs[id]; ok {
		delete(r.subs, id)
		close(ch)
	}
}

// Publish delivers ev to every subscriber with room for it.
func (r *Router) Publish(ev NavigationEnd) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ch := range r.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close closes every subscriber channel. Later subscriptions get a closed
// channel.
func (r *Router) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	for id, ch := range r.subs {
		delete(r.subs, id)
		close(ch)
	}
}
