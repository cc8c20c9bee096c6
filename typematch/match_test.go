package typematch

import (
	"reflect"
	"testing"
)

type box[T any] struct{ v T }

type pair[A, B any] struct {
	a A
	b B
}

// chain is self-referential through its type parameter.
type chain[T any] struct {
	v    T
	next *chain[T]
}

// tagged carries its type parameter in the name only.
type tagged[T any] int

type celsius float64

type intList []int

func tt[T any]() reflect.Type { return reflect.TypeFor[T]() }

func TestMatchReflexive(t *testing.T) {
	types := []reflect.Type{
		tt[int](),
		tt[string](),
		tt[float64](),
		tt[[]int](),
		tt[[3]bool](),
		tt[map[string][]int](),
		tt[*int](),
		tt[chan int](),
		tt[func(int, string) error](),
		tt[struct{ A, B int }](),
		tt[celsius](),
		tt[intList](),
		tt[box[int]](),
		tt[pair[int, string]](),
		tt[chain[int]](),
		tt[Wildcard](),
	}
	for _, typ := range types {
		if !Match(typ, typ) {
			t.Errorf("Match(%v, %v) = false, want true", typ, typ)
		}
	}
}

func TestMatchWildcardAbsorbs(t *testing.T) {
	w := tt[Wildcard]()
	types := []reflect.Type{
		tt[int](),
		tt[string](),
		tt[[]int](),
		tt[map[string]int](),
		tt[box[box[int]]](),
		tt[func()](),
		tt[*chain[string]](),
	}
	for _, typ := range types {
		if !Match(w, typ) {
			t.Errorf("Match(Wildcard, %v) = false, want true", typ)
		}
		if !Match(typ, w) {
			t.Errorf("Match(%v, Wildcard) = false, want true", typ)
		}
	}
}

func TestMatchGenericArguments(t *testing.T) {
	tests := []struct {
		name string
		x, y reflect.Type
		want bool
	}{
		{"one wildcard position", tt[pair[int, string]](), tt[pair[Wildcard, string]](), true},
		{"other wildcard position", tt[pair[int, string]](), tt[pair[int, Wildcard]](), true},
		{"both wildcard positions", tt[pair[int, string]](), tt[pair[Wildcard, Wildcard]](), true},
		{"conflict beside wildcard", tt[pair[int, string]](), tt[pair[Wildcard, int]](), false},
		{"different origins", tt[pair[int, int]](), tt[box[int]](), false},
		{"different arguments", tt[box[int]](), tt[box[string]](), false},
		{"nested absorbed whole", tt[box[box[int]]](), tt[box[Wildcard]](), true},
		{"nested absorbed inner", tt[box[box[int]]](), tt[box[box[Wildcard]]](), true},
		{"nested conflict", tt[box[box[int]]](), tt[box[box[string]]](), false},
		{"deep against shallow", tt[box[box[box[Wildcard]]]](), tt[box[Wildcard]](), true},
		{"phantom argument wildcard", tt[tagged[int]](), tt[tagged[Wildcard]](), true},
		{"phantom argument conflict", tt[tagged[int]](), tt[tagged[string]](), false},
		{"slice argument", tt[box[[]int]](), tt[box[[]Wildcard]](), true},
		{"map argument", tt[box[map[string]int]](), tt[box[map[string]Wildcard]](), true},
		{"pointer argument", tt[box[*int]](), tt[box[*Wildcard]](), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Match(tc.x, tc.y); got != tc.want {
				t.Errorf("Match(%v, %v) = %v, want %v", tc.x, tc.y, got, tc.want)
			}
			if got := Match(tc.y, tc.x); got != tc.want {
				t.Errorf("Match(%v, %v) = %v, want %v", tc.y, tc.x, got, tc.want)
			}
		})
	}
}

func TestMatchBuiltinConstructors(t *testing.T) {
	tests := []struct {
		name string
		x, y reflect.Type
		want bool
	}{
		{"slice of slice absorbed", tt[[][]int](), tt[[]Wildcard](), true},
		{"slice of slice inner", tt[[][]int](), tt[[][]Wildcard](), true},
		{"slice conflict", tt[[]int](), tt[[]string](), false},
		{"triple nesting", tt[[][][]Wildcard](), tt[[]Wildcard](), true},
		{"array wildcard", tt[[3]int](), tt[[3]Wildcard](), true},
		{"array length conflict", tt[[3]int](), tt[[4]int](), false},
		{"array is not slice", tt[[3]int](), tt[[]int](), false},
		{"map key wildcard", tt[map[string]int](), tt[map[Wildcard]int](), true},
		{"map value wildcard", tt[map[string]int](), tt[map[string]Wildcard](), true},
		{"map key conflict", tt[map[string]int](), tt[map[int]int](), false},
		{"pointer wildcard", tt[*int](), tt[*Wildcard](), true},
		{"pointer conflict", tt[*int](), tt[*string](), false},
		{"pointer is not value", tt[*int](), tt[int](), false},
		{"chan wildcard", tt[chan int](), tt[chan Wildcard](), true},
		{"chan direction conflict", tt[chan<- int](), tt[<-chan int](), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Match(tc.x, tc.y); got != tc.want {
				t.Errorf("Match(%v, %v) = %v, want %v", tc.x, tc.y, got, tc.want)
			}
		})
	}
}

func TestMatchFuncs(t *testing.T) {
	tests := []struct {
		name string
		x, y reflect.Type
		want bool
	}{
		{"wildcard parameter", tt[func(int, string)](), tt[func(Wildcard, string)](), true},
		{"wildcard result", tt[func() (int, error)](), tt[func() (Wildcard, error)](), true},
		{"wildcard is one position", tt[func(Wildcard)](), tt[func(int, string)](), false},
		{"result conflict", tt[func(int) error](), tt[func(int) string](), false},
		{"variadic mismatch", tt[func(...int)](), tt[func(int)](), false},
		{"variadic wildcard", tt[func(...int)](), tt[func(...Wildcard)](), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Match(tc.x, tc.y); got != tc.want {
				t.Errorf("Match(%v, %v) = %v, want %v", tc.x, tc.y, got, tc.want)
			}
		})
	}
}

func TestMatchDefinedTypes(t *testing.T) {
	if Match(tt[celsius](), tt[float64]()) {
		t.Error("celsius should not match its underlying float64")
	}
	if Match(tt[intList](), tt[[]int]()) {
		t.Error("intList should not match its underlying []int")
	}
	if !Match(tt[[]celsius](), tt[[]Wildcard]()) {
		t.Error("[]celsius should match []Wildcard")
	}
}

func TestMatchUnnamedStructs(t *testing.T) {
	type payload = struct {
		A int
		B string
	}
	tests := []struct {
		name string
		x, y reflect.Type
		want bool
	}{
		{"field wildcard", tt[payload](), tt[struct {
			A Wildcard
			B string
		}](), true},
		{"field name conflict", tt[payload](), tt[struct {
			A int
			C string
		}](), false},
		{"field count conflict", tt[payload](), tt[struct{ A int }](), false},
		{"tag conflict", tt[struct {
			A int `json:"a"`
		}](), tt[struct {
			A int `json:"b"`
		}](), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Match(tc.x, tc.y); got != tc.want {
				t.Errorf("Match(%v, %v) = %v, want %v", tc.x, tc.y, got, tc.want)
			}
		})
	}
}

func TestMatchRecursiveInstantiations(t *testing.T) {
	if !Match(tt[chain[int]](), tt[chain[Wildcard]]()) {
		t.Error("chain[int] should match chain[Wildcard]")
	}
	if Match(tt[chain[int]](), tt[chain[string]]()) {
		t.Error("chain[int] should not match chain[string]")
	}
	if !Match(tt[*chain[int]](), tt[*chain[Wildcard]]()) {
		t.Error("*chain[int] should match *chain[Wildcard]")
	}
}

func TestMatchNil(t *testing.T) {
	if Match(nil, nil) {
		t.Error("Match(nil, nil) = true, want false")
	}
	if Match(nil, tt[int]()) {
		t.Error("Match(nil, int) = true, want false")
	}
	if Match(tt[Wildcard](), nil) {
		t.Error("Match(Wildcard, nil) = true, want false")
	}
}

func TestMatchOf(t *testing.T) {
	if !MatchOf[[][]int, []Wildcard]() {
		t.Error("MatchOf[[][]int, []Wildcard]() = false, want true")
	}
	if MatchOf[int, string]() {
		t.Error("MatchOf[int, string]() = true, want false")
	}
}

func TestIsWildcard(t *testing.T) {
	if !IsWildcard(tt[Wildcard]()) {
		t.Error("IsWildcard(Wildcard) = false, want true")
	}
	if IsWildcard(tt[struct{}]()) {
		t.Error("IsWildcard(struct{}) = true, want false")
	}
}

func TestHasWildcard(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
		want bool
	}{
		{"wildcard itself", tt[Wildcard](), true},
		{"slice of wildcard", tt[[]Wildcard](), true},
		{"map value pointer", tt[map[string]*Wildcard](), true},
		{"struct field", tt[struct{ W Wildcard }](), true},
		{"instantiation argument", tt[box[Wildcard]](), true},
		{"phantom argument", tt[tagged[Wildcard]](), true},
		{"func parameter", tt[func(Wildcard)](), true},
		{"plain int", tt[int](), false},
		{"clean instantiation", tt[box[int]](), false},
		{"recursive clean type", tt[chain[int]](), false},
		{"recursive wildcard type", tt[chain[Wildcard]](), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := HasWildcard(tc.typ); got != tc.want {
				t.Errorf("HasWildcard(%v) = %v, want %v", tc.typ, got, tc.want)
			}
		})
	}
}
