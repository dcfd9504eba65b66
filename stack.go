package di

import (
	"github.com/sectrean/nanoinject/internal/errors"
)

// Stack tracks the injector that is currently resolving or running a function.
//
// An injector pushes itself onto its Stack while it resolves a binder or runs a function with
// [Injector.Call], [Invoke], or [Construct], and pops itself when done. This lets code running
// inside resolve dependencies with [Provider.Get] or [ResolveActive] without a reference to the injector.
//
// Push and Pop also make the Stack the [CurrentStack] of the calling goroutine until the matching
// Pop, so they must be paired on the same goroutine.
//
// A Stack is not safe for concurrent use. Code running on different goroutines should use
// injectors configured with their own Stack (see [WithStack]).
type Stack struct {
	injectors []*Injector
}

var defaultStack = NewStack()

// NewStack creates an empty [Stack].
func NewStack() *Stack {
	return &Stack{}
}

// DefaultStack returns the process-wide [Stack].
//
// Injectors use it unless configured with [WithStack]. It is the [CurrentStack] of a goroutine
// that has no injector active on another Stack.
func DefaultStack() *Stack {
	return defaultStack
}

// Push makes inj the active injector. The same injector may be pushed more than once.
func (s *Stack) Push(inj *Injector) {
	s.injectors = append(s.injectors, inj)
	enterStack(s)
}

// Pop removes the active injector and returns it.
// The injector that was active before the matching Push becomes active again.
//
// Pop returns nil if the Stack is empty.
func (s *Stack) Pop() *Injector {
	n := len(s.injectors)
	if n == 0 {
		return nil
	}

	inj := s.injectors[n-1]
	s.injectors[n-1] = nil
	s.injectors = s.injectors[:n-1]
	leaveStack(s)
	return inj
}

// Active returns the active injector, or [ErrNoActiveInjector] if the Stack is empty.
func (s *Stack) Active() (*Injector, error) {
	if len(s.injectors) == 0 {
		return nil, ErrNoActiveInjector
	}
	return s.injectors[len(s.injectors)-1], nil
}

// Depth returns the number of injectors on the Stack.
func (s *Stack) Depth() int {
	return len(s.injectors)
}

// Run pushes inj, calls fn, and pops inj again, even if fn panics.
func (s *Stack) Run(inj *Injector, fn func() error) error {
	s.Push(inj)
	defer s.Pop()

	return fn()
}

// ResolveActive resolves p with the active injector of the [Stack].
func ResolveActive[T any](s *Stack, p *Provider[T]) (T, error) {
	inj, err := s.Active()
	if err != nil {
		var zero T
		return zero, errors.Wrapf(err, "di.ResolveActive %s", p)
	}

	return Resolve(inj, p)
}

// TryResolveActive resolves p with the active injector of the [Stack],
// returning def if p is not bound.
//
// [ErrNoActiveInjector] is still returned when the Stack is empty.
func TryResolveActive[T any](s *Stack, p *Provider[T], def T) (T, error) {
	inj, err := s.Active()
	if err != nil {
		var zero T
		return zero, errors.Wrapf(err, "di.TryResolveActive %s", p)
	}

	return TryResolve(inj, p, def)
}
