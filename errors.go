package di

import (
	"strings"

	"github.com/sectrean/nanoinject/internal/errors"
)

var (
	// ErrNoBinder is returned when no injector in the parent chain has a binder for a provider.
	ErrNoBinder = errors.New("no binder found")
	// ErrCircularDependency is returned when a provider is requested while it is already being
	// resolved by the same injector.
	ErrCircularDependency = errors.New("circular dependency detected")
	// ErrNoCreationMethod is returned when a binder is resolved before a value, factory,
	// or constructor was set.
	ErrNoCreationMethod = errors.New("no creation method specified")
	// ErrNoActiveInjector is returned when a provider is resolved through a [Stack] with no active injector.
	ErrNoActiveInjector = errors.New("no active injector")
	// ErrTypeMismatch is returned when a bound value is not assignable to the provider's type.
	ErrTypeMismatch = errors.New("type mismatch")
)

// CircularDependencyError describes a dependency cycle.
//
// Chain holds provider names in resolution order. The first and last entries are the same
// provider. Unnamed providers are shown as "?".
type CircularDependencyError struct {
	Chain []string
}

func (e *CircularDependencyError) Error() string {
	return ErrCircularDependency.Error() + ": " + strings.Join(e.Chain, "->")
}

// Is reports whether target is [ErrCircularDependency].
func (e *CircularDependencyError) Is(target error) bool {
	return target == ErrCircularDependency
}

// mustPanic carries an error raised by the Must* helpers so it can be recovered
// at the nearest resolution boundary and returned as a plain error again.
type mustPanic struct {
	err error
}

func (p mustPanic) Error() string { return p.err.Error() }
func (p mustPanic) Unwrap() error { return p.err }

// recoverMust converts a mustPanic into an error. Any other panic is re-raised.
func recoverMust(err *error) {
	r := recover()
	if r == nil {
		return
	}

	if mp, ok := r.(mustPanic); ok {
		*err = mp.err
		return
	}

	panic(r)
}
