// Package typematch implements fuzzy matching over runtime types.
//
// Two types match when they are identical, when either side is the Wildcard
// placeholder, or when both are applications of the same type constructor
// whose corresponding arguments match pairwise. Absorption works at any
// depth: []Wildcard matches [][]int, and Box[Wildcard] matches
// Box[Box[string]]. A mismatch in constructor, arity, or any fixed argument
// position fails the whole comparison.
//
// The relation is reflexive and symmetric but not transitive: Wildcard
// matches both int and string, which do not match each other. Defined types
// are distinct constructors, so a type with underlying []int never matches
// []int itself.
package typematch

import "reflect"

// Wildcard matches any type when it appears on either side of a comparison,
// at the top level or in any nested argument position. It is a marker only
// and carries no data; registries reject struct fields declared with it.
type Wildcard struct{}

var (
	wildcardType = reflect.TypeOf(Wildcard{})

	// Wildcard as it is spelled inside instantiated type names. reflect
	// qualifies type arguments with the full import path; String trims it
	// to the package name.
	wildcardFull  = wildcardType.PkgPath() + "." + wildcardType.Name()
	wildcardShort = wildcardType.String()
)

// IsWildcard reports whether t is the Wildcard type itself.
func IsWildcard(t reflect.Type) bool {
	return t == wildcardType
}

// MatchOf reports whether the types X and Y match.
func MatchOf[X, Y any]() bool {
	return Match(reflect.TypeFor[X](), reflect.TypeFor[Y]())
}

// Match reports whether x and y are similar types. Nil types match nothing.
func Match(x, y reflect.Type) bool {
	if x == nil || y == nil {
		return false
	}
	if x == wildcardType || y == wildcardType {
		return true
	}
	if x == y {
		return true
	}
	if x.Kind() != y.Kind() || x.PkgPath() != y.PkgPath() {
		return false
	}
	if x.Name() != "" || y.Name() != "" {
		// Two distinct defined types never match. The exception is two
		// instantiations of one generic origin, which match when their
		// spelled type arguments match pairwise.
		xBase, xArgs, xInst := splitInstance(x.Name())
		yBase, yArgs, yInst := splitInstance(y.Name())
		if !xInst || !yInst || xBase != yBase {
			return false
		}
		return matchSpelledArgs(xArgs, yArgs)
	}
	switch x.Kind() {
	case reflect.Pointer, reflect.Slice:
		return Match(x.Elem(), y.Elem())
	case reflect.Array:
		return x.Len() == y.Len() && Match(x.Elem(), y.Elem())
	case reflect.Chan:
		return x.ChanDir() == y.ChanDir() && Match(x.Elem(), y.Elem())
	case reflect.Map:
		return Match(x.Key(), y.Key()) && Match(x.Elem(), y.Elem())
	case reflect.Func:
		return matchFunc(x, y)
	case reflect.Struct:
		return matchStruct(x, y)
	default:
		// Unnamed types of the remaining kinds are identical or nothing.
		return false
	}
}

func matchFunc(x, y reflect.Type) bool {
	if x.NumIn() != y.NumIn() || x.NumOut() != y.NumOut() || x.IsVariadic() != y.IsVariadic() {
		return false
	}
	for i := 0; i < x.NumIn(); i++ {
		if !Match(x.In(i), y.In(i)) {
			return false
		}
	}
	for i := 0; i < x.NumOut(); i++ {
		if !Match(x.Out(i), y.Out(i)) {
			return false
		}
	}
	return true
}

func matchStruct(x, y reflect.Type) bool {
	if x.NumField() != y.NumField() {
		return false
	}
	for i := 0; i < x.NumField(); i++ {
		xf, yf := x.Field(i), y.Field(i)
		if xf.Name != yf.Name || xf.PkgPath != yf.PkgPath {
			return false
		}
		if xf.Tag != yf.Tag || xf.Anonymous != yf.Anonymous {
			return false
		}
		if !Match(xf.Type, yf.Type) {
			return false
		}
	}
	return true
}

// HasWildcard reports whether t is or contains the Wildcard type, either in
// its structure or in the spelled arguments of a generic instantiation.
func HasWildcard(t reflect.Type) bool {
	return hasWildcard(t, make(map[reflect.Type]bool))
}

// hasWildcard walks the type graph with a seen set; struct types may reach
// themselves through pointer fields.
func hasWildcard(t reflect.Type, seen map[reflect.Type]bool) bool {
	if t == nil {
		return false
	}
	if t == wildcardType {
		return true
	}
	if seen[t] {
		return false
	}
	seen[t] = true

	if _, args, ok := splitInstance(t.Name()); ok {
		for _, arg := range args {
			if spellingHasWildcard(arg) {
				return true
			}
		}
	}

	switch t.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Array, reflect.Chan:
		return hasWildcard(t.Elem(), seen)
	case reflect.Map:
		return hasWildcard(t.Key(), seen) || hasWildcard(t.Elem(), seen)
	case reflect.Func:
		for i := 0; i < t.NumIn(); i++ {
			if hasWildcard(t.In(i), seen) {
				return true
			}
		}
		for i := 0; i < t.NumOut(); i++ {
			if hasWildcard(t.Out(i), seen) {
				return true
			}
		}
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasWildcard(t.Field(i).Type, seen) {
				return true
			}
		}
	}
	return false
}
