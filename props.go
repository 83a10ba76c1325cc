package antenna

import (
	"context"
	"maps"

	"go.inout.gg/antenna/internal/dotpath"
)

var (
	_ Lazy      = (LazyFunc)(nil)
	_ Awaitable = (*Future)(nil)
)

// Props is a set of page props keyed by name.
//
// A value may be any JSON-serializable value, a callable (Lazy, LazyFunc,
// func() any, func() (any, error) or func(context.Context) (any, error)),
// a *LazyProp, an Awaitable, or nested Props (or map[string]any) holding
// any of the above.
type Props map[string]any

// AsMap returns p as a plain map.
func (p Props) AsMap() map[string]any { return p }

// Clone returns a shallow copy of p.
func (p Props) Clone() Props {
	if p == nil {
		return Props{}
	}

	return maps.Clone(p)
}

// Merge returns a shallow merge of p and others. For each top-level key the
// last source wins.
func (p Props) Merge(others ...Props) Props {
	out := p.Clone()
	for _, o := range others {
		maps.Copy(out, o)
	}

	return out
}

// Set returns a copy of p with value stored under key. Dotted keys
// ("user.name") are assigned path-wise into nested maps, creating
// intermediate maps where necessary.
func (p Props) Set(key string, value any) Props {
	return dotpath.Assign(p, key, value)
}

// Get returns the value stored under a possibly dotted key.
func (p Props) Get(key string) (any, bool) {
	return dotpath.Retrieve(p, key)
}

type (
	// Lazy is a value computed on demand.
	Lazy interface {
		// Value computes the value.
		// The returned value must be JSON-serializable or resolvable.
		Value(context.Context) (any, error)
	}

	// LazyFunc is a function adapter that implements the Lazy interface.
	LazyFunc func(context.Context) (any, error)
)

// Value calls fn.
func (fn LazyFunc) Value(ctx context.Context) (any, error) { return fn(ctx) }

// LazyProp marks a prop that is only computed when a partial reload
// explicitly asks for it. It is never part of a full page load.
type LazyProp struct {
	fn Lazy
}

// NewLazy wraps fn into a LazyProp.
func NewLazy(fn Lazy) *LazyProp {
	return &LazyProp{fn: fn}
}

// LazyValue is a shorthand for NewLazy(LazyFunc(fn)).
func LazyValue(fn func(context.Context) (any, error)) *LazyProp {
	return NewLazy(LazyFunc(fn))
}

// Resolve invokes the wrapped callback. The result is not cached.
func (p *LazyProp) Resolve(ctx context.Context) (any, error) {
	return p.fn.Value(ctx) //nolint:wrapcheck
}

// Awaitable is an eventual value.
type Awaitable interface {
	// Await blocks until the value is available or ctx is done.
	Await(context.Context) (any, error)
}

// Future is an Awaitable whose computation runs in its own goroutine.
type Future struct {
	done chan struct{}
	val  any
	err  error
}

// Async starts fn in a new goroutine and returns a Future for its result.
//
// The computation starts immediately and is not bound to the request
// context; fn receives ctx and is expected to honour its cancellation.
func Async(ctx context.Context, fn func(context.Context) (any, error)) *Future {
	f := &Future{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		f.val, f.err = fn(ctx)
	}()

	return f
}

// Await waits for the future to complete.
func (f *Future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		return nil, ctx.Err() //nolint:wrapcheck
	}
}
