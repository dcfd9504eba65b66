package di

import (
	"github.com/rs/zerolog"
)

// InjectorOption is used to configure a new [Injector] when calling [NewInjector] or [Injector.NewChild].
//
// Available options:
//   - [WithName]
//   - [WithParent]
//   - [WithLogger]
//   - [WithStack]
type InjectorOption interface {
	applyInjector(*Injector)
}

type injectorOption func(*Injector)

func (o injectorOption) applyInjector(inj *Injector) {
	o(inj)
}

// WithParent sets the parent of a new [Injector].
//
// Providers not bound by the new injector are resolved by the parent.
func WithParent(parent *Injector) InjectorOption {
	return injectorOption(func(inj *Injector) {
		inj.parent = parent
	})
}

// WithLogger sets the logger used for diagnostics.
//
// By default warnings are written to stderr. Use zerolog.Nop() to disable logging.
func WithLogger(log zerolog.Logger) InjectorOption {
	return injectorOption(func(inj *Injector) {
		inj.baseLog = log
		inj.hasLog = true
	})
}

// WithStack sets the [Stack] the injector pushes itself onto while resolving or running functions.
//
// By default a child injector uses its parent's Stack and a root injector uses [DefaultStack].
func WithStack(s *Stack) InjectorOption {
	return injectorOption(func(inj *Injector) {
		inj.stack = s
	})
}
