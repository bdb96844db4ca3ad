// Package naming provides the shared "has a name" capability used by
// simulators and views throughout the coordinator.
package naming

// Named describes an object that has a stable, human-readable name.
type Named interface {
	Name() string
}

// Base is an embeddable implementation of Named.
type Base struct {
	name string
}

// MakeBase creates a new Base with the given name.
func MakeBase(name string) Base {
	if name == "" {
		panic("naming: name must not be empty")
	}

	return Base{name: name}
}

// Name returns the object's name.
func (b Base) Name() string {
	return b.name
}
