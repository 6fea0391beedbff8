package lumen

import (
	"fmt"
)

// TypeID is a stable token uniquely identifying a registered host type. It is
// the unit dispatch keys (registry.go) are built from.
type TypeID string

// Well-known type identities pre-registered by New().
const (
	TypeInt    TypeID = "Int"
	TypeFloat  TypeID = "Float"
	TypeBool   TypeID = "Bool"
	TypeChar   TypeID = "Char"
	TypeString TypeID = "String"
	TypeUnit   TypeID = "Unit"
	TypeArray  TypeID = "Array"
	TypeModule TypeID = "Module"
)

// cloner duplicates a host payload. Every registered type supplies one so
// that reads from a binding always produce an independent copy (spec §3:
// "reads from a binding always produce an independent copy").
type cloner func(any) any

// typeRegistration records what New()/RegisterType installed for one host
// type: its identity and how to clone its payload.
type typeRegistration struct {
	id    TypeID
	clone cloner
}

// typeTable is the set of host types a given Engine knows how to wrap. It is
// distinct from the function Registry (registry.go): this table answers
// "can I clone and identify this type", the registry answers "what callable
// matches this argument-type tuple".
type typeTable struct {
	byID map[TypeID]*typeRegistration
}

func newTypeTable() *typeTable {
	return &typeTable{byID: make(map[TypeID]*typeRegistration)}
}

func (t *typeTable) register(id TypeID, clone cloner) {
	t.byID[id] = &typeRegistration{id: id, clone: clone}
}

func (t *typeTable) has(id TypeID) bool {
	_, ok := t.byID[id]
	return ok
}

// Value is the dynamic value container (spec §4.A): a type identity plus an
// opaque payload that can be cloned and moved. Strings and arrays are
// ordinary registered types, not privileged primitives.
type Value struct {
	typ     TypeID
	payload any
}

// Type reports this value's stable type identity.
func (v Value) Type() TypeID { return v.typ }

// Clone returns an independent copy of v, using the clone function supplied
// at registration time. It is what the evaluator calls on every read of a
// binding so that host-side mutation of one binding can never leak into another.
func (v Value) Clone(tt *typeTable) (Value, error) {
	reg, ok := tt.byID[v.typ]
	if !ok {
		return Value{}, &TypeMismatchError{Wanted: v.typ, Got: v.typ, Msg: fmt.Sprintf("type %q is not registered with this engine", v.typ)}
	}
	return Value{typ: v.typ, payload: reg.clone(v.payload)}, nil
}

// wrap builds a dynamic value from a host payload for a type the caller
// already knows is registered. It is used internally by the primitive
// constructors below and by builtins; it does not itself verify registration.
func wrap(id TypeID, payload any) Value { return Value{typ: id, payload: payload} }

// --- primitive constructors -------------------------------------------------

// Int wraps a 64-bit signed integer.
func Int(v int64) Value { return wrap(TypeInt, v) }

// Float wraps a 64-bit float.
func Float(v float64) Value { return wrap(TypeFloat, v) }

// Bool wraps a boolean.
func Bool(v bool) Value { return wrap(TypeBool, v) }

// Char wraps a single rune.
func Char(v rune) Value { return wrap(TypeChar, v) }

// Str wraps a string.
func Str(v string) Value { return wrap(TypeString, v) }

// UnitVal returns the single value of the unit type, returned by statements and
// functions whose trailing expression is absent.
func UnitVal() Value { return wrap(TypeUnit, struct{}{}) }

// Arr wraps a slice of dynamic values as an array value. The slice is taken
// by reference; callers that need an isolated copy should Clone() first.
func Arr(items []Value) Value { return wrap(TypeArray, items) }

// --- unwrap helpers ----------------------------------------------------------

// Unwrap extracts a typed Go value from v, failing with TypeMismatchError if
// v's type identity does not match want.
func Unwrap[T any](v Value, want TypeID) (T, error) {
	var zero T
	if v.typ != want {
		return zero, &TypeMismatchError{Wanted: want, Got: v.typ}
	}
	t, ok := v.payload.(T)
	if !ok {
		return zero, &TypeMismatchError{Wanted: want, Got: v.typ, Msg: "payload kind mismatch"}
	}
	return t, nil
}

// MustInt unwraps v as an Int, panicking on mismatch. Intended for use inside
// native callables that already declared Int in their signature, where a
// mismatch would indicate a registry bug rather than a script error.
func (v Value) MustInt() int64 {
	n, err := Unwrap[int64](v, TypeInt)
	if err != nil {
		panic(err)
	}
	return n
}

// MustFloat unwraps v as a Float, panicking on mismatch.
func (v Value) MustFloat() float64 {
	n, err := Unwrap[float64](v, TypeFloat)
	if err != nil {
		panic(err)
	}
	return n
}

// MustBool unwraps v as a Bool, panicking on mismatch.
func (v Value) MustBool() bool {
	b, err := Unwrap[bool](v, TypeBool)
	if err != nil {
		panic(err)
	}
	return b
}

// MustString unwraps v as a String, panicking on mismatch.
func (v Value) MustString() string {
	s, err := Unwrap[string](v, TypeString)
	if err != nil {
		panic(err)
	}
	return s
}

// MustArray unwraps v as an Array, panicking on mismatch.
func (v Value) MustArray() []Value {
	a, err := Unwrap[[]Value](v, TypeArray)
	if err != nil {
		panic(err)
	}
	return a
}

// registerPrimitiveTypes installs the seven pre-registered types described
// in spec §3: Int, Float, Bool, Char, String, Unit, Array.
func registerPrimitiveTypes(tt *typeTable) {
	tt.register(TypeInt, func(a any) any { return a.(int64) })
	tt.register(TypeFloat, func(a any) any { return a.(float64) })
	tt.register(TypeBool, func(a any) any { return a.(bool) })
	tt.register(TypeChar, func(a any) any { return a.(rune) })
	tt.register(TypeString, func(a any) any { return a.(string) })
	tt.register(TypeUnit, func(a any) any { return struct{}{} })
	// An array's clone must be deep, not just a fresh backing slice: spec
	// §3/§9 require every read to be an independent copy, and an element
	// holding a registered pointer-backed host type is exactly the case that
	// breaks if only the slice header is duplicated (SPEC_FULL.md §4.A).
	// Each element is cloned through its own registered type, so this
	// recurses correctly into nested arrays too.
	tt.register(TypeArray, func(a any) any {
		src := a.([]Value)
		dst := make([]Value, len(src))
		for i, v := range src {
			if reg, ok := tt.byID[v.typ]; ok {
				dst[i] = Value{typ: v.typ, payload: reg.clone(v.payload)}
			} else {
				dst[i] = v
			}
		}
		return dst
	})
	// Modules are immutable once loaded (spec §9: "no transitive
	// re-export"); cloning shares the underlying record rather than
	// deep-copying it.
	tt.register(TypeModule, func(a any) any { return a })
}
