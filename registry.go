package mirror

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// registry holds every descriptor published through Register, with indexes
// by Go type and by name. Descriptors are immutable, so the lock only
// guards the maps.
type registry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]*Info
	byName map[string]*Info
}

// Global registry instance
var defaultRegistry = &registry{
	byType: make(map[reflect.Type]*Info),
	byName: make(map[string]*Info),
}

// Register describes T and publishes the descriptor in the process-wide
// registry. Registering the same type twice, or a second type whose name
// collides with an earlier one, is an error.
func Register[T any](names ...string) (*Type[T], error) {
	d, err := Describe[T](names...)
	if err != nil {
		return nil, err
	}
	if err := defaultRegistry.add(d.info); err != nil {
		return nil, err
	}
	return d, nil
}

// MustRegister is like Register but panics on error. Generated registration
// files call it from package-level declarations so registration happens at
// image load.
func MustRegister[T any](names ...string) *Type[T] {
	d, err := Register[T](names...)
	if err != nil {
		panic(err)
	}
	return d
}

func (r *registry) add(info *Info) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byType[info.goType]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, info.name)
	}
	if other, ok := r.byName[info.name]; ok {
		return fmt.Errorf("%w: %s collides with %s under the name %q",
			ErrAlreadyRegistered, info.goType, other.goType, info.name)
	}

	r.byType[info.goType] = info
	r.byName[info.name] = info
	return nil
}

// Lookup returns the registered descriptor for T.
func Lookup[T any]() (*Type[T], bool) {
	info, ok := LookupType(reflect.TypeFor[T]())
	if !ok {
		return nil, false
	}
	return &Type[T]{info: info}, true
}

// LookupType returns the descriptor registered for the given Go type.
func LookupType(t reflect.Type) (*Info, bool) {
	defaultRegistry.mu.RLock()
	defer defaultRegistry.mu.RUnlock()
	info, ok := defaultRegistry.byType[t]
	return info, ok
}

// LookupName returns the descriptor registered under the given name.
func LookupName(name string) (*Info, bool) {
	defaultRegistry.mu.RLock()
	defer defaultRegistry.mu.RUnlock()
	info, ok := defaultRegistry.byName[name]
	return info, ok
}

// Infos returns every registered descriptor sorted by name.
func Infos() []*Info {
	defaultRegistry.mu.RLock()
	defer defaultRegistry.mu.RUnlock()

	infos := make([]*Info, 0, len(defaultRegistry.byName))
	for _, info := range defaultRegistry.byName {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].name < infos[j].name
	})
	return infos
}

// Len returns the number of registered types.
func Len() int {
	defaultRegistry.mu.RLock()
	defer defaultRegistry.mu.RUnlock()
	return len(defaultRegistry.byType)
}

// Reset clears the registry (used for testing).
func Reset() {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	defaultRegistry.byType = make(map[reflect.Type]*Info)
	defaultRegistry.byName = make(map[string]*Info)
}
