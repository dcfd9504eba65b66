package di

import (
	"sync"

	"github.com/sectrean/nanoinject/internal/errors"
)

// creationMethod is how a binding produces its value.
type creationMethod uint8

const (
	noMethod creationMethod = iota
	valueMethod
	factoryMethod
	constructorMethod
)

func (m creationMethod) String() string {
	switch m {
	case valueMethod:
		return "value"
	case factoryMethod:
		return "factory"
	case constructorMethod:
		return "constructor"
	default:
		return "none"
	}
}

// binding is the untyped state behind a [Binder].
// It is shared by every provider it was bound to and by child injectors resolving through the owner.
type binding struct {
	owner    *Injector
	method   creationMethod
	lifetime Lifetime
	value    any
	create   func(*Injector) (any, error)

	// The singleton cache is guarded because child injectors on different
	// goroutines may resolve the same parent binding.
	mu        sync.Mutex
	cached    any
	hasCached bool
}

func newBinding(owner *Injector) *binding {
	return &binding{owner: owner}
}

func (b *binding) setValue(val any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.method = valueMethod
	b.value = val
	b.create = nil
	b.cached, b.hasCached = nil, false
}

func (b *binding) setCreate(m creationMethod, create func(*Injector) (any, error)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.method = m
	b.value = nil
	b.create = create
	b.cached, b.hasCached = nil, false
}

func (b *binding) setLifetime(l Lifetime) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lifetime = l
	if l != Singleton {
		b.cached, b.hasCached = nil, false
	}
}

func (b *binding) describe() (creationMethod, Lifetime) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.method, b.lifetime
}

// resolve returns the value of the binding, calling create with inj when needed.
func (b *binding) resolve(inj *Injector) (any, error) {
	b.mu.Lock()
	if b.hasCached {
		val := b.cached
		b.mu.Unlock()
		return val, nil
	}
	method, lifetime, val, create := b.method, b.lifetime, b.value, b.create
	b.mu.Unlock()

	switch method {
	case valueMethod:
		return val, nil
	case factoryMethod, constructorMethod:
	default:
		return nil, ErrNoCreationMethod
	}

	// The lock is not held while creating: the creation method may resolve
	// other providers, including through this binding's owner.
	val, err := create(inj)
	if err != nil || lifetime != Singleton {
		return val, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Keep the first value if another resolution finished first.
	if b.hasCached {
		return b.cached, nil
	}
	b.cached, b.hasCached = val, true
	return val, nil
}

// Binder configures how the value for one or more providers is created.
//
// A Binder is returned by [Bind] and configured with one of [Binder.ToValue],
// [Binder.ToFactory], or [Binder.ToConstructor]. Setting a creation method replaces the previous one.
//
// Example:
//
//	di.Bind(inj, ConfigProvider).ToValue(Config{Name: "app"})
//	di.Bind(inj, LoggerProvider).ToFactory(NewLogger).AsSingleton()
type Binder[T any] struct {
	b *binding
}

// NewBinder creates a [Binder] that is not registered with any provider.
//
// Factories receive owner when the binder is resolved. owner may be nil.
func NewBinder[T any](owner *Injector) *Binder[T] {
	return &Binder[T]{b: newBinding(owner)}
}

// ToValue binds a fixed value.
//
// The value is returned as-is on every resolution, regardless of lifetime.
func (b *Binder[T]) ToValue(val T) *Binder[T] {
	b.b.setValue(val)
	return b
}

// ToFactory binds a factory function.
//
// The factory receives the injector that owns the binder. When the binder is resolved through a
// descendant, that injector is bound to the descendant's resolution, so resolving through it
// from a factory on a shared parent is safe. An error returned by the factory
// is returned unchanged from [Resolve] and is never cached.
func (b *Binder[T]) ToFactory(factory func(*Injector) (T, error)) *Binder[T] {
	b.b.setCreate(factoryMethod, func(inj *Injector) (any, error) {
		val, err := factory(inj)
		if err != nil {
			return nil, err
		}
		return val, nil
	})
	return b
}

// ToConstructor binds a constructor that takes no arguments.
//
// Dependencies can be resolved inside the constructor with [Provider.MustGet], which uses
// the injector doing the resolution, on whatever [Stack] it was configured with.
func (b *Binder[T]) ToConstructor(ctor func() T) *Binder[T] {
	b.b.setCreate(constructorMethod, func(*Injector) (any, error) {
		return ctor(), nil
	})
	return b
}

// AsSingleton is shorthand for WithLifetime(Singleton).
func (b *Binder[T]) AsSingleton() *Binder[T] {
	return b.WithLifetime(Singleton)
}

// WithLifetime sets the lifetime of the binder. Changing it to [Transient] drops a cached value.
func (b *Binder[T]) WithLifetime(l Lifetime) *Binder[T] {
	b.b.setLifetime(l)
	return b
}

// Lifetime returns the lifetime of the binder.
func (b *Binder[T]) Lifetime() Lifetime {
	b.b.mu.Lock()
	defer b.b.mu.Unlock()

	return b.b.lifetime
}

// Resolve returns the value of the binder, creating it if needed.
//
// Unlike [Resolve], this does not activate an injector or check for dependency cycles.
func (b *Binder[T]) Resolve() (val T, err error) {
	defer recoverMust(&err)

	anyVal, err := b.b.resolve(b.b.owner)
	if err == ErrNoCreationMethod {
		return val, errors.Wrap(err, "di.Binder.Resolve")
	}
	if err != nil {
		return val, err
	}

	return castValue[T](anyVal, "di.Binder.Resolve")
}
