package testtypes

import (
	"github.com/sectrean/nanoinject"
)

// Counter is a value with a distinct identity per creation.
type Counter struct {
	N int
}

// Factory counts how many values it created.
type Factory struct {
	Calls int
}

func (f *Factory) NewCounter() *Counter {
	f.Calls++
	return &Counter{N: f.Calls}
}

func (f *Factory) Factory(*di.Injector) (*Counter, error) {
	return f.NewCounter(), nil
}

// FlakyFactory fails the first Failures calls and succeeds afterwards.
type FlakyFactory struct {
	Failures int
	Err      error
	Calls    int
}

func (f *FlakyFactory) Factory(*di.Injector) (int, error) {
	f.Calls++
	if f.Calls <= f.Failures {
		return 0, f.Err
	}
	return 42, nil
}
