package piebuild

import (
	"fmt"
	"io"

	"piebuild/internal/graph"
)

// Pie is the long-lived engine façade: it owns the dependency store, the
// tracker, and the resource-provider registry across sessions (spec §4.9).
// Only one Session may be open on a Pie at a time.
type Pie struct {
	store     *engineStore
	tracker   Tracker
	providers map[string]Provider
	sessionOpen bool
}

// Option configures a Pie at construction time.
type Option func(*Pie)

// WithTracker installs a non-default Tracker. The default otherwise used is
// a no-op tracker equivalent to tracker.Noop (see package tracker); passing
// nil here is equivalent to omitting the option.
func WithTracker(t Tracker) Option {
	return func(p *Pie) {
		if t != nil {
			p.tracker = t
		}
	}
}

// New constructs a Pie with no registered resource providers and, unless
// WithTracker is given, a no-op tracker.
func New(opts ...Option) *Pie {
	p := &Pie{
		store:     newEngineStore(),
		tracker:   noopTracker{},
		providers: make(map[string]Provider),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RegisterProvider installs the Provider responsible for resources whose
// ResourceKey.Kind equals kind. Providers are looked up lazily the first
// time a resource of that kind is read, written, or checked.
func (p *Pie) RegisterProvider(kind string, provider Provider) {
	p.providers[kind] = provider
}

func (p *Pie) providerFor(key ResourceKey) (Provider, bool) {
	pr, ok := p.providers[key.Kind]
	return pr, ok
}

// Tracker returns the engine's current tracker.
func (p *Pie) Tracker() Tracker { return p.tracker }

// NewSession opens a build transaction. It returns an error if a session is
// already open; call Session.Close to release the borrow. A session that is
// never closed keeps the engine borrowed.
func (p *Pie) NewSession() (*Session, error) {
	if p.sessionOpen {
		return nil, fmt.Errorf("piebuild: a session is already open on this engine")
	}
	p.sessionOpen = true
	s := &Session{
		pie:        p,
		consistent: make(map[graph.NodeID]struct{}),
	}
	s.topDown = &topDownDriver{session: s}
	s.bottomUp = newBottomUpDriver(s)
	return s, nil
}

// Close releases the exclusive session borrow. Closing an already-closed
// session is a no-op.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.pie.sessionOpen = false
}

// Close tears down any provider that implements io.Closer. It does not
// clear the in-memory dependency graph: Pie has no persistence, so
// discarding the value is otherwise sufficient (spec §1 non-goal:
// cross-process persistence).
func (p *Pie) Close() error {
	var first error
	for _, pr := range p.providers {
		if c, ok := pr.(io.Closer); ok {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
