// Package resolver turns an item identifier into a lookup result and hands
// that result to a presentation consumer.
//
// The resolver is a stateless pass-through: it never caches, filters or
// substitutes defaults. An Absent result reaches the presenter as-is so the
// presenter decides how "no data" is shown.
package resolver

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/itemview/internal/store"
)

// Presenter receives the outcome of a resolution for display.
type Presenter[R any] interface {
	Present(id string, res store.Result[R]) error
}

// PresenterFunc adapts a function to the Presenter interface.
type PresenterFunc[R any] func(id string, res store.Result[R]) error

// Present calls f(id, res).
func (f PresenterFunc[R]) Present(id string, res store.Result[R]) error {
	return f(id, res)
}

// ItemResolver resolves identifiers against a store.
type ItemResolver[R any] struct {
	store  store.Reader[R]
	logger *slog.Logger
}

// Option configures an ItemResolver.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for debug tracing of resolutions.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New creates a resolver reading from st. It panics if st is nil.
func New[R any](st store.Reader[R], opts ...Option) *ItemResolver[R] {
	if st == nil {
		panic("resolver: nil store")
	}

	o := options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &ItemResolver[R]{store: st, logger: o.logger}
}

// Resolve returns exactly what the store returns for id.
func (r *ItemResolver[R]) Resolve(id string) (store.Result[R], error) {
	res, err := r.store.Get(id)
	if err != nil {
		r.logger.Debug("resolve rejected", "id", id, "error", err)
		return res, err
	}

	r.logger.Debug("resolved", "id", id, "found", res.Found())
	return res, nil
}

// Present resolves id and passes the result to p. Invalid keys are returned
// before p is called.
func (r *ItemResolver[R]) Present(id string, p Presenter[R]) error {
	res, err := r.Resolve(id)
	if err != nil {
		return err
	}

	if err := p.Present(id, res); err != nil {
		return fmt.Errorf("present %q: %w", id, err)
	}
	return nil
}
