package driver

import (
	"github.com/go-drift/sectionlist/pkg/pool"
	"github.com/go-drift/sectionlist/pkg/reconcile"
)

type settings struct {
	diff    []reconcile.Option
	pool    []pool.Option
	factory pool.Factory
}

// Option configures a Driver.
type Option func(*settings)

// WithDiffOptions passes options to every reconcile.Diff call.
func WithDiffOptions(opts ...reconcile.Option) Option {
	return func(s *settings) { s.diff = append(s.diff, opts...) }
}

// WithPoolOptions configures the driver's renderer pool.
func WithPoolOptions(opts ...pool.Option) Option {
	return func(s *settings) { s.pool = append(s.pool, opts...) }
}

// WithFactory sets the factory that creates renderer hosts.
func WithFactory(f pool.Factory) Option {
	return func(s *settings) { s.factory = f }
}
