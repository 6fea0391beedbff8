package lumen

import "testing"

func TestRegistryExactSignatureDispatch(t *testing.T) {
	r := NewRegistry()
	r.Register("add", []TypeID{TypeInt, TypeInt}, func(args []Value) (Value, error) {
		return Int(args[0].MustInt() + args[1].MustInt()), nil
	})
	r.Register("add", []TypeID{TypeFloat, TypeFloat}, func(args []Value) (Value, error) {
		return Float(args[0].MustFloat() + args[1].MustFloat()), nil
	})

	fn, err := r.Lookup("add", []TypeID{TypeInt, TypeInt})
	if err != nil {
		t.Fatal(err)
	}
	v, err := fn([]Value{Int(2), Int(3)})
	if err != nil || v.MustInt() != 5 {
		t.Fatalf("got %+v, err %v", v, err)
	}

	// No (Int, Float) overload was registered; dispatch must fail rather than
	// coerce.
	if _, err := r.Lookup("add", []TypeID{TypeInt, TypeFloat}); err == nil {
		t.Fatal("expected FunctionNotFoundError for an unregistered signature")
	} else if _, ok := err.(*FunctionNotFoundError); !ok {
		t.Fatalf("expected *FunctionNotFoundError, got %T", err)
	}
}

func TestRegistryReRegisterOverrides(t *testing.T) {
	r := NewRegistry()
	r.Register("f", []TypeID{TypeInt}, func(args []Value) (Value, error) { return Int(1), nil })
	r.Register("f", []TypeID{TypeInt}, func(args []Value) (Value, error) { return Int(2), nil })

	fn, err := r.Lookup("f", []TypeID{TypeInt})
	if err != nil {
		t.Fatal(err)
	}
	v, _ := fn([]Value{Int(0)})
	if v.MustInt() != 2 {
		t.Fatalf("expected override to win, got %v", v.MustInt())
	}
	if len(r.Describe("f")) != 1 {
		t.Fatalf("expected exactly one surviving overload, got %d", len(r.Describe("f")))
	}
}

func TestRegistryDescribeListsOverloads(t *testing.T) {
	r := NewRegistry()
	r.RegisterDoc("greet", []TypeID{TypeString}, func(args []Value) (Value, error) { return UnitVal(), nil }, "greet a name")
	r.RegisterDoc("greet", []TypeID{TypeString, TypeString}, func(args []Value) (Value, error) { return UnitVal(), nil }, "greet with a title")

	sigs := r.Describe("greet")
	if len(sigs) != 2 {
		t.Fatalf("expected 2 overloads, got %d", len(sigs))
	}
}

func TestRegistryGetSetSugar(t *testing.T) {
	r := NewRegistry()
	r.RegisterGetSet("len", TypeString, func(self Value) (Value, error) {
		return Int(int64(len(self.MustString()))), nil
	}, func(self, val Value) (Value, error) {
		return self, nil
	})

	getter, ok := r.lookupGetter("len", TypeString)
	if !ok {
		t.Fatal("expected getter to be registered")
	}
	v, err := getter([]Value{Str("hello")})
	if err != nil || v.MustInt() != 5 {
		t.Fatalf("got %+v, err %v", v, err)
	}

	if _, ok := r.lookupSetter("len", TypeString); !ok {
		t.Fatal("expected setter to be registered")
	}
}

func TestRegistryIndexOps(t *testing.T) {
	r := NewRegistry()
	r.RegisterIndexOps(TypeArray, TypeInt,
		func(args []Value) (Value, error) {
			arr := args[0].MustArray()
			return arr[args[1].MustInt()], nil
		},
		func(args []Value) (Value, error) {
			arr := args[0].MustArray()
			arr[args[1].MustInt()] = args[2]
			return Arr(arr), nil
		},
	)

	get, err := r.Lookup(indexGetName, []TypeID{TypeArray, TypeInt})
	if err != nil {
		t.Fatal(err)
	}
	v, err := get([]Value{Arr([]Value{Int(10), Int(20)}), Int(1)})
	if err != nil || v.MustInt() != 20 {
		t.Fatalf("got %+v, err %v", v, err)
	}

	if _, ok := r.lookupIndexSetter(TypeArray, TypeInt); !ok {
		t.Fatal("expected index setter to be registered")
	}
}

func TestRegistryMutatingFlag(t *testing.T) {
	r := NewRegistry()
	r.RegisterMethod("push", []TypeID{TypeArray, TypeInt}, func(args []Value) (Value, error) {
		arr := args[0].MustArray()
		return Arr(append(arr, args[1])), nil
	})
	if !r.isMutating("push", []TypeID{TypeArray, TypeInt}) {
		t.Fatal("expected RegisterMethod entries to be flagged mutating")
	}
}
