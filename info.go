package mirror

import (
	"fmt"
	"reflect"

	"github.com/noaland/mirror/typematch"
)

// Field describes one registered struct field.
type Field struct {
	// Name is the field name as declared on the struct.
	Name string `json:"name"`

	// Index is the position of the field in registration order.
	Index int `json:"index"`

	// Offset is the byte offset of the field within the struct.
	Offset uintptr `json:"offset"`

	// Type is the declared field type.
	Type reflect.Type `json:"-"`

	// Tag is the struct tag as declared, carried for mappers that derive
	// column or key names from it.
	Tag reflect.StructTag `json:"tag,omitempty"`
}

// Info is the untyped descriptor for a registered struct type. It is built
// once, validated at construction, and never mutated afterwards, so it is
// safe to share across goroutines without locking.
type Info struct {
	name    string
	goType  reflect.Type
	fields  []Field
	indexes [][]int
	byName  map[string]int
}

// newInfo validates the registration and builds the descriptor. Every
// malformed registration is rejected here rather than surfacing later as a
// misbehaving field access.
func newInfo(t reflect.Type, names []string) (*Info, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: <nil>", ErrNotStruct)
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s", ErrNotStruct, t)
	}

	info := &Info{
		name:    t.String(),
		goType:  t,
		fields:  make([]Field, 0, len(names)),
		indexes: make([][]int, 0, len(names)),
		byName:  make(map[string]int, len(names)),
	}

	for _, name := range names {
		sf, ok := t.FieldByName(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no field %q", ErrFieldNotFound, info.name, name)
		}
		if len(sf.Index) > 1 {
			return nil, fmt.Errorf("%w: %s.%s", ErrFieldPromoted, info.name, name)
		}
		if sf.PkgPath != "" {
			return nil, fmt.Errorf("%w: %s.%s", ErrFieldUnexported, info.name, name)
		}
		if _, dup := info.byName[name]; dup {
			return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateField, info.name, name)
		}
		if typematch.HasWildcard(sf.Type) {
			return nil, fmt.Errorf("%w: %s.%s", ErrWildcardField, info.name, name)
		}

		info.byName[name] = len(info.fields)
		info.fields = append(info.fields, Field{
			Name:   name,
			Index:  len(info.fields),
			Offset: sf.Offset,
			Type:   sf.Type,
			Tag:    sf.Tag,
		})
		info.indexes = append(info.indexes, sf.Index)
	}

	return info, nil
}

// Name returns the descriptor name, the package-qualified type name.
func (in *Info) Name() string {
	return in.name
}

// GoType returns the described struct type.
func (in *Info) GoType() reflect.Type {
	return in.goType
}

// NumFields returns the number of registered fields.
func (in *Info) NumFields() int {
	return len(in.fields)
}

// Fields returns the registered fields in registration order.
// Returns a copy to prevent external mutation.
func (in *Info) Fields() []Field {
	fields := make([]Field, len(in.fields))
	copy(fields, in.fields)
	return fields
}

// FieldTypes returns the declared type of every registered field, indexed by
// registration order. Duplicate types keep their own positions.
func (in *Info) FieldTypes() []reflect.Type {
	types := make([]reflect.Type, len(in.fields))
	for i, f := range in.fields {
		types[i] = f.Type
	}
	return types
}

// FieldByName returns the registered field with the given name.
func (in *Info) FieldByName(name string) (Field, bool) {
	slot, ok := in.byName[name]
	if !ok {
		return Field{}, false
	}
	return in.fields[slot], true
}

// Set assigns value to the named field of target, which must be a non-nil
// pointer to the described struct type. An unknown field name returns
// ErrFieldNotFound and a value of the wrong type returns a
// TypeMismatchError; in both cases target is left untouched.
func (in *Info) Set(target any, name string, value any) error {
	sv, err := in.targetValue(target)
	if err != nil {
		return err
	}
	return in.setValue(sv, name, value)
}

// Get returns the current value of the named field of target, which must be
// a non-nil pointer to the described struct type.
func (in *Info) Get(target any, name string) (any, error) {
	sv, err := in.targetValue(target)
	if err != nil {
		return nil, err
	}
	return in.getValue(sv, name)
}

// targetValue checks the untyped target and returns the addressable struct
// value behind it.
func (in *Info) targetValue(target any) (reflect.Value, error) {
	v := reflect.ValueOf(target)
	if !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrNilTarget, in.name)
	}
	if v.Kind() != reflect.Pointer || v.Elem().Type() != in.goType {
		return reflect.Value{}, fmt.Errorf("%w: want *%s, got %s", ErrWrongTarget, in.name, v.Type())
	}
	return v.Elem(), nil
}

func (in *Info) setValue(sv reflect.Value, name string, value any) error {
	slot, ok := in.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s has no field %q", ErrFieldNotFound, in.name, name)
	}
	field := in.fields[slot]

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		// Untyped nil is assignable only to nilable field types.
		switch field.Type.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
			sv.FieldByIndex(in.indexes[slot]).Set(reflect.Zero(field.Type))
			return nil
		default:
			return &TypeMismatchError{Struct: in.name, Field: name, Want: field.Type}
		}
	}
	if !val.Type().AssignableTo(field.Type) {
		return &TypeMismatchError{Struct: in.name, Field: name, Want: field.Type, Got: val.Type()}
	}

	sv.FieldByIndex(in.indexes[slot]).Set(val)
	return nil
}

func (in *Info) getValue(sv reflect.Value, name string) (any, error) {
	slot, ok := in.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no field %q", ErrFieldNotFound, in.name, name)
	}
	return sv.FieldByIndex(in.indexes[slot]).Interface(), nil
}
