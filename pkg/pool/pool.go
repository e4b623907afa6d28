// Package pool recycles renderer instances by content kind.
//
// A [Renderer] is an opaque handle around whatever host object the caller's
// [Factory] produces for a kind (a cell, a hosting view, a buffer). The pool
// owns pooled renderers; a renderer handed out by Acquire belongs to the widget
// until it is released.
//
// Pool is not safe for concurrent use. It is owned by a single driver running
// on the UI thread.
package pool

import (
	"fmt"

	"github.com/go-drift/sectionlist/pkg/errors"
	"github.com/go-drift/sectionlist/pkg/identity"
)

// Kind tags interchangeable renderer templates, e.g. "row" or "header".
type Kind string

// Common kinds used by the driver when a builder leaves its kind empty.
const (
	KindRow    Kind = "row"
	KindHeader Kind = "header"
	KindFooter Kind = "footer"
)

// State is the lifecycle state of a renderer.
type State int

const (
	// StateInUse means the renderer is bound to a visible position.
	StateInUse State = iota
	// StatePooled means the renderer is detached and available for reuse.
	StatePooled
	// StateDiscarded means the renderer was permanently released.
	StateDiscarded
)

func (s State) String() string {
	switch s {
	case StateInUse:
		return "in-use"
	case StatePooled:
		return "pooled"
	case StateDiscarded:
		return "discarded"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Factory creates the host object for a new renderer of the given kind. It may
// be nil, in which case renderers carry no host.
type Factory func(kind Kind) any

// Renderer is a pooled handle able to display one row, header or footer.
type Renderer struct {
	id      uint64
	kind    Kind
	state   State
	host    any
	key     identity.Key
	content any
	binds   int
}

// ID returns a handle unique within the pool.
func (r *Renderer) ID() uint64 { return r.id }

// Kind returns the content kind the renderer was created for.
func (r *Renderer) Kind() Kind { return r.kind }

// State returns the lifecycle state.
func (r *Renderer) State() State { return r.state }

// Host returns the object created by the pool's factory.
func (r *Renderer) Host() any { return r.host }

// Key returns the identity the renderer is currently bound to.
func (r *Renderer) Key() identity.Key { return r.key }

// Content returns the content last bound.
func (r *Renderer) Content() any { return r.content }

// Binds returns how many times content has been bound to this renderer.
func (r *Renderer) Binds() int { return r.binds }

// Bind attaches content for key.
func (r *Renderer) Bind(key identity.Key, content any) {
	r.key = key
	r.content = content
	r.binds++
}

// Stats summarizes pool activity.
type Stats struct {
	Created   int
	Reused    int
	Released  int
	Discarded int
	InUse     int
	Pooled    int
}

// Pool hands out renderers, reusing pooled ones of the same kind.
type Pool struct {
	factory    Factory
	defaultMax int
	limits     map[Kind]int
	free       map[Kind][]*Renderer
	inUse      map[*Renderer]struct{}
	nextID     uint64
	stats      Stats
}

// Option configures a Pool.
type Option func(*Pool)

// WithMaxPooled caps how many detached renderers are kept per kind. Zero or
// negative means unbounded, which is the default.
func WithMaxPooled(n int) Option {
	return func(p *Pool) { p.defaultMax = n }
}

// WithKindLimit overrides the cap for one kind.
func WithKindLimit(kind Kind, n int) Option {
	return func(p *Pool) { p.limits[kind] = n }
}

// New creates an empty pool.
func New(factory Factory, opts ...Option) *Pool {
	p := &Pool{
		factory: factory,
		limits:  make(map[Kind]int),
		free:    make(map[Kind][]*Renderer),
		inUse:   make(map[*Renderer]struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Acquire returns a pooled renderer of kind, or creates one.
func (p *Pool) Acquire(kind Kind) *Renderer {
	var r *Renderer
	if free := p.free[kind]; len(free) > 0 {
		r = free[len(free)-1]
		free[len(free)-1] = nil
		p.free[kind] = free[:len(free)-1]
		p.stats.Reused++
	} else {
		p.nextID++
		r = &Renderer{id: p.nextID, kind: kind}
		if p.factory != nil {
			r.host = p.factory(kind)
		}
		p.stats.Created++
	}
	r.state = StateInUse
	p.inUse[r] = struct{}{}
	return r
}

// Release returns an in-use renderer to the pool, or discards it when the pool
// for its kind is full. The renderer's binding is cleared.
func (p *Pool) Release(r *Renderer) error {
	if r == nil {
		return nil
	}
	if _, ok := p.inUse[r]; !ok || r.state != StateInUse {
		return &errors.ListError{
			Op:      "pool.Release",
			Kind:    errors.KindConsistency,
			Section: -1,
			Err:     fmt.Errorf("%w: renderer %d is %s", errors.ErrNotInUse, r.id, r.state),
		}
	}
	delete(p.inUse, r)
	r.key = identity.Key{}
	r.content = nil
	if limit := p.limit(r.kind); limit > 0 && len(p.free[r.kind]) >= limit {
		r.state = StateDiscarded
		r.host = nil
		p.stats.Discarded++
		return nil
	}
	r.state = StatePooled
	p.free[r.kind] = append(p.free[r.kind], r)
	p.stats.Released++
	return nil
}

// ReleaseAll returns every in-use renderer to the pool.
func (p *Pool) ReleaseAll() {
	for r := range p.inUse {
		_ = p.Release(r)
	}
}

// DiscardAll permanently releases every renderer the pool knows about, in use
// or pooled. Afterwards the widget must not hold any previously acquired
// renderer.
func (p *Pool) DiscardAll() {
	for r := range p.inUse {
		p.discard(r)
	}
	clear(p.inUse)
	for kind, free := range p.free {
		for _, r := range free {
			p.discard(r)
		}
		delete(p.free, kind)
	}
}

func (p *Pool) discard(r *Renderer) {
	r.state = StateDiscarded
	r.key = identity.Key{}
	r.content = nil
	r.host = nil
	p.stats.Discarded++
}

func (p *Pool) limit(kind Kind) int {
	if n, ok := p.limits[kind]; ok {
		return n
	}
	return p.defaultMax
}

// InUse returns the number of renderers currently handed out.
func (p *Pool) InUse() int {
	return len(p.inUse)
}

// Pooled returns the number of detached renderers held for kind.
func (p *Pool) Pooled(kind Kind) int {
	return len(p.free[kind])
}

// Stats returns a snapshot of pool counters.
func (p *Pool) Stats() Stats {
	s := p.stats
	s.InUse = len(p.inUse)
	for _, free := range p.free {
		s.Pooled += len(free)
	}
	return s
}
