// builtins.go: pre-registered operator overloads for the seven primitive
// types (spec §3, §4.F: "All arithmetic, comparison, and shift operators are
// simply registry names with built-in registrations for primitive type
// pairs"). Integer overflow wraps rather than erroring (spec §9 open
// question, resolved here using Go's native int64 wraparound semantics).
package lumen

func registerBuiltinOperators(r *Registry, tt *typeTable) {
	registerIntOps(r)
	registerFloatOps(r)
	registerBoolOps(r)
	registerCharOps(r)
	registerStringOps(r)
	registerArrayOps(r, tt)
}

func registerIntOps(r *Registry) {
	ii := []TypeID{TypeInt, TypeInt}
	r.Register("+", ii, func(a []Value) (Value, error) { return Int(a[0].MustInt() + a[1].MustInt()), nil })
	r.Register("-", ii, func(a []Value) (Value, error) { return Int(a[0].MustInt() - a[1].MustInt()), nil })
	r.Register("*", ii, func(a []Value) (Value, error) { return Int(a[0].MustInt() * a[1].MustInt()), nil })
	r.Register("/", ii, func(a []Value) (Value, error) {
		d := a[1].MustInt()
		if d == 0 {
			return Value{}, &ArithmeticError{Msg: "integer division by zero"}
		}
		return Int(a[0].MustInt() / d), nil
	})
	r.Register("%", ii, func(a []Value) (Value, error) {
		d := a[1].MustInt()
		if d == 0 {
			return Value{}, &ArithmeticError{Msg: "integer modulo by zero"}
		}
		return Int(a[0].MustInt() % d), nil
	})
	r.Register("<<", ii, func(a []Value) (Value, error) { return Int(a[0].MustInt() << uint(a[1].MustInt())), nil })
	r.Register(">>", ii, func(a []Value) (Value, error) { return Int(a[0].MustInt() >> uint(a[1].MustInt())), nil })
	r.Register("==", ii, func(a []Value) (Value, error) { return Bool(a[0].MustInt() == a[1].MustInt()), nil })
	r.Register("!=", ii, func(a []Value) (Value, error) { return Bool(a[0].MustInt() != a[1].MustInt()), nil })
	r.Register("<", ii, func(a []Value) (Value, error) { return Bool(a[0].MustInt() < a[1].MustInt()), nil })
	r.Register("<=", ii, func(a []Value) (Value, error) { return Bool(a[0].MustInt() <= a[1].MustInt()), nil })
	r.Register(">", ii, func(a []Value) (Value, error) { return Bool(a[0].MustInt() > a[1].MustInt()), nil })
	r.Register(">=", ii, func(a []Value) (Value, error) { return Bool(a[0].MustInt() >= a[1].MustInt()), nil })

	r.Register("-", []TypeID{TypeInt}, func(a []Value) (Value, error) { return Int(-a[0].MustInt()), nil })
	r.Register("+", []TypeID{TypeInt}, func(a []Value) (Value, error) { return Int(a[0].MustInt()), nil })
}

func registerFloatOps(r *Registry) {
	ff := []TypeID{TypeFloat, TypeFloat}
	r.Register("+", ff, func(a []Value) (Value, error) { return Float(a[0].MustFloat() + a[1].MustFloat()), nil })
	r.Register("-", ff, func(a []Value) (Value, error) { return Float(a[0].MustFloat() - a[1].MustFloat()), nil })
	r.Register("*", ff, func(a []Value) (Value, error) { return Float(a[0].MustFloat() * a[1].MustFloat()), nil })
	r.Register("/", ff, func(a []Value) (Value, error) {
		d := a[1].MustFloat()
		if d == 0 {
			return Value{}, &ArithmeticError{Msg: "float division by zero"}
		}
		return Float(a[0].MustFloat() / d), nil
	})
	r.Register("==", ff, func(a []Value) (Value, error) { return Bool(a[0].MustFloat() == a[1].MustFloat()), nil })
	r.Register("!=", ff, func(a []Value) (Value, error) { return Bool(a[0].MustFloat() != a[1].MustFloat()), nil })
	r.Register("<", ff, func(a []Value) (Value, error) { return Bool(a[0].MustFloat() < a[1].MustFloat()), nil })
	r.Register("<=", ff, func(a []Value) (Value, error) { return Bool(a[0].MustFloat() <= a[1].MustFloat()), nil })
	r.Register(">", ff, func(a []Value) (Value, error) { return Bool(a[0].MustFloat() > a[1].MustFloat()), nil })
	r.Register(">=", ff, func(a []Value) (Value, error) { return Bool(a[0].MustFloat() >= a[1].MustFloat()), nil })

	r.Register("-", []TypeID{TypeFloat}, func(a []Value) (Value, error) { return Float(-a[0].MustFloat()), nil })
	r.Register("+", []TypeID{TypeFloat}, func(a []Value) (Value, error) { return Float(a[0].MustFloat()), nil })
}

func registerBoolOps(r *Registry) {
	bb := []TypeID{TypeBool, TypeBool}
	r.Register("==", bb, func(a []Value) (Value, error) { return Bool(a[0].MustBool() == a[1].MustBool()), nil })
	r.Register("!=", bb, func(a []Value) (Value, error) { return Bool(a[0].MustBool() != a[1].MustBool()), nil })
	r.Register("!", []TypeID{TypeBool}, func(a []Value) (Value, error) { return Bool(!a[0].MustBool()), nil })
}

func registerCharOps(r *Registry) {
	cc := []TypeID{TypeChar, TypeChar}
	r.Register("==", cc, func(a []Value) (Value, error) {
		x, _ := Unwrap[rune](a[0], TypeChar)
		y, _ := Unwrap[rune](a[1], TypeChar)
		return Bool(x == y), nil
	})
	r.Register("!=", cc, func(a []Value) (Value, error) {
		x, _ := Unwrap[rune](a[0], TypeChar)
		y, _ := Unwrap[rune](a[1], TypeChar)
		return Bool(x != y), nil
	})
}

func registerStringOps(r *Registry) {
	ss := []TypeID{TypeString, TypeString}
	// "abc" + "ABC" -> "abcABC" (spec §8 scenario 7).
	r.Register("+", ss, func(a []Value) (Value, error) { return Str(a[0].MustString() + a[1].MustString()), nil })
	r.Register("==", ss, func(a []Value) (Value, error) { return Bool(a[0].MustString() == a[1].MustString()), nil })
	r.Register("!=", ss, func(a []Value) (Value, error) { return Bool(a[0].MustString() != a[1].MustString()), nil })
	r.Register("<", ss, func(a []Value) (Value, error) { return Bool(a[0].MustString() < a[1].MustString()), nil })
	r.Register("<=", ss, func(a []Value) (Value, error) { return Bool(a[0].MustString() <= a[1].MustString()), nil })
	r.Register(">", ss, func(a []Value) (Value, error) { return Bool(a[0].MustString() > a[1].MustString()), nil })
	r.Register(">=", ss, func(a []Value) (Value, error) { return Bool(a[0].MustString() >= a[1].MustString()), nil })
}

// registerArrayOps wires array indexing (spec §8 scenario 3: `y[1] = 5;
// y[1]`) plus a non-mutating "len" function over arrays. No "push" or other
// mutating array method is registered.
func registerArrayOps(r *Registry, tt *typeTable) {
	r.RegisterIndexOps(TypeArray, TypeInt,
		func(a []Value) (Value, error) {
			arr := a[0].MustArray()
			i := a[1].MustInt()
			if i < 0 || i >= int64(len(arr)) {
				return Value{}, &IndexOutOfBoundsError{Index: i, Len: int64(len(arr))}
			}
			// A read through an index must be as independent a copy as a
			// plain Ident read is (spec §3: "reads from a binding always
			// produce an independent copy") — otherwise a[i] and a later
			// b := a; b[i] would still alias the same pointer-backed payload.
			return arr[i].Clone(tt)
		},
		func(a []Value) (Value, error) {
			arr := a[0].MustArray()
			i := a[1].MustInt()
			if i < 0 || i >= int64(len(arr)) {
				return Value{}, &IndexOutOfBoundsError{Index: i, Len: int64(len(arr))}
			}
			updated := make([]Value, len(arr))
			copy(updated, arr)
			updated[i] = a[2]
			return Arr(updated), nil
		},
	)

	r.Register("len", []TypeID{TypeArray}, func(a []Value) (Value, error) {
		return Int(int64(len(a[0].MustArray()))), nil
	})
}
