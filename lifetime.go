package di

import "fmt"

// Lifetime specifies how values are created when a [Binder] is resolved.
//
// Available lifetimes:
//   - [Transient] specifies that the creation method runs on every resolution.
//   - [Singleton] specifies that the value is created once and subsequent resolutions return the same instance.
type Lifetime uint8

const (
	// Transient specifies that the factory or constructor is called for each resolution.
	//
	// This is the default lifetime for binders.
	Transient Lifetime = iota

	// Singleton specifies that the value is created once by the binder and then cached.
	// Injectors that inherit the binder from a parent share the cached value.
	Singleton Lifetime = iota
)

func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "Transient"
	case Singleton:
		return "Singleton"
	default:
		return fmt.Sprintf("Unknown Lifetime %d", l)
	}
}
