// Package mirror captures field-level descriptors of Go struct types and
// serves them through a process-wide registry.
//
// # Overview
//
// A descriptor records, for each registered field, its name, its byte
// offset within the struct, and its declared type, in registration order.
// Descriptors are built once, validated at construction, and immutable
// afterwards, so lookups and enumeration need no synchronization. Field
// access goes through checked reflection: writes verify assignability
// before touching the target, and unknown field names are reported rather
// than ignored.
//
// # Describing a Type
//
// Describe builds a typed descriptor covering the named fields:
//
//	type User struct {
//		ID    int64
//		Email string
//		Age   int
//	}
//
//	users, err := mirror.Describe[User]("ID", "Email", "Age")
//	if err != nil {
//		return err
//	}
//
//	for _, f := range users.Fields() {
//		fmt.Printf("%s at offset %d, type %s\n", f.Name, f.Offset, f.Type)
//	}
//
// Construction rejects every malformed registration: non-struct types,
// unknown or unexported or promoted field names, duplicate names, and
// fields whose declared type contains typematch.Wildcard.
//
// # Field Access
//
// Set writes exactly one named field and fails without side effects when
// the name is unknown or the value is not assignable:
//
//	u := User{}
//	if err := users.Set(&u, "Email", "ada@example.com"); err != nil {
//		return err
//	}
//
//	if err := users.Set(&u, "Age", "forty"); err != nil {
//		var tm *mirror.TypeMismatchError
//		if errors.As(err, &tm) {
//			log.Printf("want %s, got %s", tm.Want, tm.Got)
//		}
//	}
//
// No conversions are applied; assignability is Go's. An int never silently
// becomes a float64.
//
// # The Registry
//
// Register publishes a descriptor process-wide, typically from a
// package-level declaration in a generated file:
//
//	var _ = mirror.MustRegister[User]("ID", "Email", "Age")
//
// Registered descriptors are found by type or by name:
//
//	users, ok := mirror.Lookup[User]()
//	info, ok := mirror.LookupName("store.User")
//
// The registry copies nothing on read beyond the field slices because
// descriptors never change after construction. Reset clears it between
// tests.
//
// # Positional Type Catalog
//
// FieldTypes returns the declared type of every slot in registration order.
// Two fields of the same type keep distinct positions, so the catalog is
// index-addressed rather than deduplicated:
//
//	types := users.FieldTypes() // [int64, string, int]
//
// # Offsets
//
// Field.Offset is reflect's byte offset of the field within the struct. It
// is carried as layout metadata for tooling and diagnostics; field writes
// go through reflect, never through raw pointer arithmetic.
package mirror
