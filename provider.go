package di

import (
	"sync/atomic"
)

var lastProviderID atomic.Uint64

// Key is the untyped view of a [Provider].
//
// It is used where providers of different types are accepted together, such as the extra
// providers passed to [Bind]. Key can only be implemented by [Provider].
type Key interface {
	// ID returns the unique id of the provider.
	ID() uint64
	// Name returns the name of the provider, or "" if it has none.
	Name() string

	isNil() bool
}

// Provider identifies a dependency of type T.
//
// A Provider never holds a value. It is bound to a creation method with [Bind] and resolved
// with [Resolve], or from the active injector of the calling goroutine with [Provider.Get].
//
// Providers are compared by identity. Two providers created with the same name are different providers.
type Provider[T any] struct {
	id   uint64
	name string
}

// NewProvider creates a new [Provider] for values of type T.
//
// Available options:
//   - [WithName] sets the name used in diagnostics and error messages.
func NewProvider[T any](opts ...ProviderOption) *Provider[T] {
	p := &Provider[T]{
		id: lastProviderID.Add(1) - 1,
	}
	for _, opt := range opts {
		opt.applyProvider(p)
	}

	return p
}

// ProviderOption is used to configure a new [Provider] when calling [NewProvider].
//
// Available options:
//   - [WithName]
type ProviderOption interface {
	applyProvider(namedProvider)
}

type namedProvider interface {
	setName(string)
}

// IsProvider reports whether v is a [Provider] of any type.
func IsProvider(v any) bool {
	_, ok := v.(Key)
	return ok
}

// ID returns the unique id of the provider.
func (p *Provider[T]) ID() uint64 {
	return p.id
}

// Name returns the name of the provider, or "" if it was created without one.
func (p *Provider[T]) Name() string {
	if p == nil {
		return ""
	}
	return p.name
}

func (p *Provider[T]) String() string {
	return providerName(p)
}

func (p *Provider[T]) setName(name string) {
	p.name = name
}

func (p *Provider[T]) isNil() bool {
	return p == nil
}

// Get resolves the provider using the active injector of [CurrentStack].
//
// Inside a factory, a constructor, or a function run with [Injector.Call] this is the injector
// doing the work, whichever [Stack] it was configured with.
//
// It returns [ErrNoActiveInjector] when no injector is active and [ErrNoBinder]
// when the provider is not bound.
func (p *Provider[T]) Get() (T, error) {
	return ResolveActive(CurrentStack(), p)
}

// GetOr resolves the provider like [Provider.Get], but returns def when the provider is not bound.
//
// All other errors, such as a dependency cycle or a failing factory, are still returned.
func (p *Provider[T]) GetOr(def T) (T, error) {
	return TryResolveActive(CurrentStack(), p, def)
}

// MustGet resolves the provider like [Provider.Get] and panics on error.
//
// It is meant to be called from factories, constructors, and functions run by an injector.
// The panic is recovered by the enclosing [Resolve], [Invoke], [Construct], or [Injector.Call]
// and returned from there as the original error.
func (p *Provider[T]) MustGet() T {
	val, err := p.Get()
	if err != nil {
		panic(mustPanic{err})
	}
	return val
}

// MustGetOr resolves the provider like [Provider.GetOr] and panics on error.
func (p *Provider[T]) MustGetOr(def T) T {
	val, err := p.GetOr(def)
	if err != nil {
		panic(mustPanic{err})
	}
	return val
}

func providerName(k Key) string {
	if isNilKey(k) {
		return "<nil>"
	}
	if name := k.Name(); name != "" {
		return name
	}
	return "?"
}

func isNilKey(k Key) bool {
	return k == nil || k.isNil()
}

// WithName sets the name of a [Provider] or an [Injector].
//
// Names are only used for diagnostics: log fields, error messages, and dependency cycle chains.
func WithName(name string) NameOption {
	return nameOption(name)
}

// NameOption is used with [NewProvider] and [NewInjector].
type NameOption interface {
	ProviderOption
	InjectorOption
}

type nameOption string

func (o nameOption) applyProvider(p namedProvider) {
	p.setName(string(o))
}

func (o nameOption) applyInjector(inj *Injector) {
	inj.name = string(o)
}

var _ NameOption = nameOption("")
