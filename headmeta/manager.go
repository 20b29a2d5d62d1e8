package headmeta

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Manager keeps a Head in sync with navigation. It holds no state of its own
// beyond its collaborators and is meant to be built once at startup.
type Manager struct {
	resolver *Resolver
	router   *Router
	head     Head
	logger   *zap.Logger
	observe  func(Resolution, bool)
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger used for per-navigation debug output.
func WithLogger(logger *zap.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithObserver registers fn to be called after every resolution with the
// result and whether the head was mutated.
func WithObserver(fn func(res Resolution, applied bool)) ManagerOption {
	return func(m *Manager) {
		m.observe = fn
	}
}

// NewManager wires a resolver, a navigation source and the head it drives.
func NewManager(resolver *Resolver, router *Router, head Head, opts ...ManagerOption) *Manager {
	m := &Manager{
		resolver: resolver,
		router:   router,
		head:     head,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Navigate resolves url and applies the result to the manager's head.
func (m *Manager) Navigate(ctx context.Context, url string) Resolution {
	return m.NavigateHead(ctx, m.head, url)
}

// NavigateHead is Navigate against an explicit head, for callers that render
// into a per-request document.
func (m *Manager) NavigateHead(ctx context.Context, head Head, url string) Resolution {
	res := m.resolver.Resolve(ctx, url)
	applied := Apply(head, res)
	m.logger.Debug("navigation resolved",
		zap.String("url", url),
		zap.String("key", res.Key),
		zap.Stringer("status", res.Status),
		zap.Bool("applied", applied),
	)
	if m.observe != nil {
		m.observe(res, applied)
	}
	return res
}

// handle applies one navigation to the manager's head. A pre-resolved event
// is applied as is: it was already fetched and observed by its publisher.
func (m *Manager) handle(ctx context.Context, ev NavigationEnd) {
	if ev.Resolved == nil {
		m.Navigate(ctx, ev.URL)
		return
	}
	applied := Apply(m.head, *ev.Resolved)
	m.logger.Debug("navigation applied",
		zap.String("url", ev.URL),
		zap.String("key", ev.Resolved.Key),
		zap.Stringer("status", ev.Resolved.Status),
		zap.Bool("applied", applied),
	)
}

// Subscription is the long-lived link between a Manager and its Router.
type Subscription struct {
	cancel   func()
	done     chan struct{}
	inflight sync.WaitGroup
	once     sync.Once
}

// Initialize resolves current once, then subscribes to the router and
// handles every later NavigationEnd in its own goroutine. In-flight
// resolutions are never cancelled by newer navigations and results apply in
// completion order. The subscription ends when ctx is done or Close is
// called.
func (m *Manager) Initialize(ctx context.Context, current string) (*Subscription, error) {
	if m.router == nil {
		return nil, errors.New("headmeta: manager has no router")
	}
	if m.head == nil {
		return nil, errors.New("headmeta: manager has no head")
	}
	m.Navigate(ctx, current)

	events, cancel := m.router.Subscribe()
	sub := &Subscription{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(sub.done)
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				sub.inflight.Add(1)
				go func(ev NavigationEnd) {
					defer sub.inflight.Done()
					m.handle(ctx, ev)
				}(ev)
			case <-ctx.Done():
				cancel()
				return
			}
		}
	}()
	return sub, nil
}

// Close unsubscribes, lets already-delivered events start, and waits for
// every in-flight resolution to finish.
func (s *Subscription) Close() {
	s.once.Do(s.cancel)
	<-s.done
	s.inflight.Wait()
}

// Done is closed once the subscription stopped receiving events.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}
