package mirror

import (
	"errors"
	"fmt"
	"reflect"
)

// Common registration and access error types
var (
	// ErrNotStruct is returned when a descriptor is requested for a
	// non-struct type.
	ErrNotStruct = errors.New("type is not a struct")

	// ErrFieldNotFound is returned when a field name does not exist on the
	// described type or was not registered.
	ErrFieldNotFound = errors.New("field not found")

	// ErrFieldUnexported is returned when an unexported field is registered.
	// Unexported fields cannot be written through reflection.
	ErrFieldUnexported = errors.New("field is not exported")

	// ErrFieldPromoted is returned when a field reached through an embedded
	// struct is registered. Only fields declared directly on the type are
	// registrable.
	ErrFieldPromoted = errors.New("field is promoted from an embedded struct")

	// ErrDuplicateField is returned when a field name appears twice in one
	// registration.
	ErrDuplicateField = errors.New("field registered twice")

	// ErrWildcardField is returned when a registered field's type contains
	// the matcher wildcard, which is a marker rather than a payload type.
	ErrWildcardField = errors.New("field type contains typematch.Wildcard")

	// ErrNilTarget is returned when Set or Get is called with a nil target.
	ErrNilTarget = errors.New("target is nil")

	// ErrWrongTarget is returned when an untyped Set or Get receives a
	// target of a different type than the descriptor describes.
	ErrWrongTarget = errors.New("target type does not match descriptor")

	// ErrAlreadyRegistered is returned when a type, or a distinct type with
	// a colliding name, is registered twice.
	ErrAlreadyRegistered = errors.New("type already registered")
)

// TypeMismatchError reports an attempt to assign a value of the wrong type
// to a field. No conversion is attempted; assignability is Go's.
type TypeMismatchError struct {
	Struct string
	Field  string
	Want   reflect.Type
	Got    reflect.Type
}

// Error implements the error interface
func (e *TypeMismatchError) Error() string {
	got := "untyped nil"
	if e.Got != nil {
		got = e.Got.String()
	}
	return fmt.Sprintf("type mismatch on %s.%s: cannot assign %s to %s", e.Struct, e.Field, got, e.Want)
}

// IsFieldNotFound returns true if the error is ErrFieldNotFound
func IsFieldNotFound(err error) bool {
	return errors.Is(err, ErrFieldNotFound)
}

// IsTypeMismatch returns true if the error is a TypeMismatchError
func IsTypeMismatch(err error) bool {
	var tm *TypeMismatchError
	return errors.As(err, &tm)
}
