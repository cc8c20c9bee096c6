package mirror

import (
	"reflect"
)

// Type is the typed descriptor for struct type T. It wraps an Info and adds
// compile-time knowledge of the target type, so Set and Get take *T instead
// of any.
type Type[T any] struct {
	info *Info
}

// Describe builds a descriptor for T covering the named fields, in the order
// given. The registration is validated up front: T must be a struct, every
// name must be an exported field declared directly on T, no name may repeat,
// and no field type may contain the matcher wildcard.
func Describe[T any](names ...string) (*Type[T], error) {
	info, err := newInfo(reflect.TypeFor[T](), names)
	if err != nil {
		return nil, err
	}
	return &Type[T]{info: info}, nil
}

// MustDescribe is like Describe but panics on error. Intended for
// package-level variable initialization, where a malformed registration
// should fail at image load.
func MustDescribe[T any](names ...string) *Type[T] {
	d, err := Describe[T](names...)
	if err != nil {
		panic(err)
	}
	return d
}

// Info returns the untyped descriptor.
func (d *Type[T]) Info() *Info {
	return d.info
}

// Name returns the descriptor name, the package-qualified type name.
func (d *Type[T]) Name() string {
	return d.info.name
}

// Fields returns the registered fields in registration order.
func (d *Type[T]) Fields() []Field {
	return d.info.Fields()
}

// FieldTypes returns the declared type of every registered field, indexed
// by registration order.
func (d *Type[T]) FieldTypes() []reflect.Type {
	return d.info.FieldTypes()
}

// FieldByName returns the registered field with the given name.
func (d *Type[T]) FieldByName(name string) (Field, bool) {
	return d.info.FieldByName(name)
}

// Set assigns value to the named field of target. An unknown field name
// returns ErrFieldNotFound and a value of the wrong type returns a
// TypeMismatchError; in both cases target is left untouched.
func (d *Type[T]) Set(target *T, name string, value any) error {
	if target == nil {
		return ErrNilTarget
	}
	return d.info.setValue(reflect.ValueOf(target).Elem(), name, value)
}

// Get returns the current value of the named field of target.
func (d *Type[T]) Get(target *T, name string) (any, error) {
	if target == nil {
		return nil, ErrNilTarget
	}
	return d.info.getValue(reflect.ValueOf(target).Elem(), name)
}
