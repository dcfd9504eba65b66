package dicontext

import (
	"context"

	"github.com/sectrean/nanoinject"
	"github.com/sectrean/nanoinject/internal/errors"
)

// ErrNoInjector is returned when no [di.Injector] is stored on the [context.Context].
var ErrNoInjector = errors.New("injector not found on context")

type injectorContextKey struct{}

// WithInjector returns a new [context.Context] that carries the provided [di.Injector].
func WithInjector(ctx context.Context, inj *di.Injector) context.Context {
	return context.WithValue(ctx, injectorContextKey{}, inj)
}

// Injector returns the [di.Injector] stored on the [context.Context], if present.
func Injector(ctx context.Context) *di.Injector {
	if inj, ok := ctx.Value(injectorContextKey{}).(*di.Injector); ok {
		return inj
	}
	return nil
}

// Resolve resolves p with the [di.Injector] stored on the [context.Context].
func Resolve[T any](ctx context.Context, p *di.Provider[T]) (T, error) {
	inj := Injector(ctx)
	if inj == nil {
		var zero T
		return zero, errors.Wrapf(ErrNoInjector, "dicontext.Resolve %s", p)
	}

	val, err := di.Resolve(inj, p)
	return val, errors.Wrap(err, "dicontext.Resolve")
}

// MustResolve resolves p with the [di.Injector] stored on the [context.Context]
// and panics on error.
func MustResolve[T any](ctx context.Context, p *di.Provider[T]) T {
	val, err := Resolve(ctx, p)
	if err != nil {
		panic(err)
	}
	return val
}
