package di

import (
	"reflect"

	"github.com/sectrean/nanoinject/internal/errors"
)

// Resolve returns the value bound to p.
//
// The binder is looked up in inj first and then in each ancestor; the closest binder wins.
// While the binder runs, inj is the active injector of its [Stack].
//
// Errors:
//   - [ErrNoBinder] if no injector in the chain binds p.
//   - [ErrCircularDependency] if p is already being resolved by inj.
//   - [ErrNoCreationMethod] if the binder was never configured.
//   - Errors returned by factories are returned unchanged.
func Resolve[T any](inj *Injector, p *Provider[T]) (T, error) {
	b := inj.lookup(p)
	if b == nil {
		var zero T
		return zero, errors.Wrapf(ErrNoBinder, "di.Resolve %s", p)
	}

	return resolveAs[T](inj, p, b)
}

// MustResolve resolves p like [Resolve] and panics on error.
func MustResolve[T any](inj *Injector, p *Provider[T]) T {
	val, err := Resolve(inj, p)
	if err != nil {
		panic(mustPanic{err})
	}
	return val
}

// TryResolve resolves p like [Resolve], but returns def if no injector in the chain binds p.
//
// Other errors are still returned, including [ErrNoBinder] from a dependency of p.
func TryResolve[T any](inj *Injector, p *Provider[T], def T) (T, error) {
	b := inj.lookup(p)
	if b == nil {
		return def, nil
	}

	return resolveAs[T](inj, p, b)
}

func resolveAs[T any](inj *Injector, k Key, b *binding) (T, error) {
	val, err := inj.resolveBinding(k, b)
	if err != nil {
		var zero T
		return zero, err
	}

	return castValue[T](val, "di.Resolve "+providerName(k))
}

func castValue[T any](val any, op string) (T, error) {
	var zero T
	if val == nil {
		return zero, nil
	}

	typed, ok := val.(T)
	if !ok {
		return zero, errors.Wrapf(ErrTypeMismatch, "%s: %T is not assignable to %s",
			op, val, reflect.TypeFor[T]())
	}

	return typed, nil
}

// Invoke activates inj, calls fn, and returns its results.
//
// Dependencies can be resolved inside fn with [Provider.Get] or [Provider.MustGet].
// A panic raised by MustGet inside fn is returned as an error.
//
// Example:
//
//	port, err := di.Invoke(inj, func() (int, error) {
//		return ConfigProvider.MustGet().Port, nil
//	})
func Invoke[R any](inj *Injector, fn func() (R, error)) (res R, err error) {
	err = inj.Call(func() error {
		var fnErr error
		res, fnErr = fn()
		return fnErr
	})
	return res, err
}

// Construct activates inj and calls ctor with inj and args.
//
// Arguments that the caller supplies are passed in args. Everything else is resolved by
// ctor from the injector.
//
// Example:
//
//	user, err := di.Construct(inj, NewUser, "Alice")
//
//	func NewUser(inj *di.Injector, name string) (*User, error) {
//		log, err := di.Resolve(inj, LoggerProvider)
//		if err != nil {
//			return nil, err
//		}
//		return &User{Name: name, Log: log}, nil
//	}
func Construct[T, A any](inj *Injector, ctor func(*Injector, A) (T, error), args A) (T, error) {
	return Invoke(inj, func() (T, error) {
		return ctor(inj, args)
	})
}

// FieldBinding pairs a destination with the provider that fills it.
// Create one with [Field] and pass it to [Injector.InjectInto].
type FieldBinding interface {
	injectInto(inj *Injector) error
}

// Field returns a [FieldBinding] that stores the value of p in *dst.
//
// If p is nil, *dst is left unchanged.
func Field[T any](dst *T, p *Provider[T]) FieldBinding {
	return field[T]{dst: dst, p: p}
}

type field[T any] struct {
	dst *T
	p   *Provider[T]
}

func (f field[T]) injectInto(inj *Injector) error {
	if f.p == nil {
		return nil
	}

	val, err := Resolve(inj, f.p)
	if err != nil {
		return err
	}

	*f.dst = val
	return nil
}

// InjectInto resolves each field's provider and stores the value in the field.
//
// Fields are filled in order. InjectInto stops at the first error and leaves the remaining
// fields unchanged.
//
// Example:
//
//	svc := &Service{Name: "manual"}
//	err := inj.InjectInto(
//		di.Field(&svc.Log, LoggerProvider),
//		di.Field(&svc.Config, ConfigProvider),
//	)
func (inj *Injector) InjectInto(fields ...FieldBinding) error {
	for _, f := range fields {
		if f == nil {
			continue
		}

		if err := f.injectInto(inj); err != nil {
			return err
		}
	}

	return nil
}
