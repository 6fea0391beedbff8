package lumen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- scenario 1: arithmetic -------------------------------------------------

func TestE2EArithmetic(t *testing.T) {
	e := New()
	v, err := Eval[int64](e, "40 + 2")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

// --- scenario 2: a registered native function overload ---------------------

func TestE2ERegisterFnAdd(t *testing.T) {
	e := New()
	e.RegisterFn("add", []TypeID{TypeInt, TypeInt}, func(args []Value) (Value, error) {
		return Int(args[0].MustInt() + args[1].MustInt()), nil
	})
	v, err := Eval[int64](e, "add(19, 23)")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

// --- scenario 3: array index get/set ----------------------------------------

func TestE2EArrayIndexGetSet(t *testing.T) {
	e := New()
	v, err := Eval[int64](e, `
		let y = [1, 2, 3];
		y[1] = 5;
		y[1]
	`)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)
}

// --- scenario 4: while + break ----------------------------------------------

func TestE2EWhileBreak(t *testing.T) {
	e := New()
	v, err := Eval[int64](e, `
		let i = 0;
		while true {
			if i >= 5 { break; }
			i = i + 1;
		}
		i
	`)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)
}

// --- scenario 5: script-defined function definition + call -----------------

func TestE2EScriptFunctionDefAndCall(t *testing.T) {
	e := New()
	v, err := Eval[int64](e, `
		fn square(n) { n * n }
		square(6)
	`)
	require.NoError(t, err)
	assert.Equal(t, int64(36), v)
}

// --- scenario 6: two successive EvalWithScope calls share top-level state --

func TestE2EEvalWithScopePersistsAcrossCalls(t *testing.T) {
	e := New()
	scope := NewScope()
	// Use Unit as a throwaway result type for a statement-only evaluation,
	// then read the persisted binding back out with a second call.
	_, err := EvalWithScope[struct{}](e, scope, "let counter = 1;")
	require.NoError(t, err)
	v, err := EvalWithScope[int64](e, scope, "counter = counter + 41; counter")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

// --- scenario 7: string concatenation ---------------------------------------

func TestE2EStringConcatenation(t *testing.T) {
	e := New()
	v, err := Eval[string](e, `"abc" + "ABC"`)
	require.NoError(t, err)
	assert.Equal(t, "abcABC", v)
}

// --- scenario 8: nested comments are skipped entirely -----------------------

func TestE2ENestedComments(t *testing.T) {
	e := New()
	v, err := Eval[int64](e, `
		/* outer /* inner */ still outer */
		1 + 1
	`)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
}

// --- invariants --------------------------------------------------------------

// Scope balance: a block that declares locals must not leak them past its end.
func TestInvariantScopeBalance(t *testing.T) {
	e := New()
	_, err := Eval[int64](e, `
		if true {
			let local = 99;
		}
		local
	`)
	require.Error(t, err)
	_, ok := err.(*UnboundNameError)
	assert.True(t, ok, "expected UnboundNameError once local's block exits, got %T", err)
}

// Determinism: evaluating the same source twice from a fresh engine yields
// the same result.
func TestInvariantDeterminism(t *testing.T) {
	src := "let a = 3; let b = 4; a * a + b * b"
	e1, e2 := New(), New()
	v1, err1 := Eval[int64](e1, src)
	v2, err2 := Eval[int64](e2, src)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, v1, v2)
}

// Overload exactness: an (Int, Float) call must not silently coerce to an
// (Int, Int) or (Float, Float) overload.
func TestInvariantOverloadExactness(t *testing.T) {
	e := New()
	_, err := Eval[int64](e, "1 + 1.5;")
	require.Error(t, err)
	_, ok := err.(*FunctionNotFoundError)
	assert.True(t, ok, "expected FunctionNotFoundError for a mixed-type call, got %T", err)
}

// Short-circuit: the right-hand side of && must not evaluate when the left
// side is false (observed through a side effect on a registered function).
func TestInvariantShortCircuitAnd(t *testing.T) {
	e := New()
	called := false
	e.RegisterFn("sideEffect", []TypeID{}, func(args []Value) (Value, error) {
		called = true
		return Bool(true), nil
	})
	v, err := Eval[bool](e, "false && sideEffect()")
	require.NoError(t, err)
	assert.False(t, v)
	assert.False(t, called, "expected right-hand side of && to be skipped")
}

// Operator lexing: operators tokenize by greedy longest match, never
// confusing a compound assignment with its prefix operator.
func TestInvariantLexerLongestMatchFeedsParser(t *testing.T) {
	e := New()
	v, err := Eval[int64](e, "let x = 10; x <<= 2; x")
	require.NoError(t, err)
	assert.Equal(t, int64(40), v)
}

// Comment nesting: a block comment's depth counter must track nesting level,
// not just the first closer encountered.
func TestInvariantCommentNestingDepth(t *testing.T) {
	toks, err := NewLexer("/* a /* b /* c */ d */ e */ 1").Tokenize()
	require.NoError(t, err)
	require.Len(t, toks, 2) // "1" and EOF
	assert.Equal(t, "1", toks[0].Text)
}

// --- registered get/set + method mutation sugar -----------------------------

type box struct{ n int64 }

func TestE2ERegisterGetSetAndMutatingMethod(t *testing.T) {
	e := New()
	const TypeBox TypeID = "Box"
	e.RegisterType(TypeBox, func(a any) any {
		b := a.(*box)
		cp := *b
		return &cp
	})
	e.RegisterGetSet("n", TypeBox, func(self Value) (Value, error) {
		b, err := Unwrap[*box](self, TypeBox)
		if err != nil {
			return Value{}, err
		}
		return Int(b.n), nil
	}, func(self, val Value) (Value, error) {
		b, err := Unwrap[*box](self, TypeBox)
		if err != nil {
			return Value{}, err
		}
		b.n = val.MustInt()
		return self, nil
	})
	e.RegisterMethod("increment", []TypeID{TypeBox}, func(args []Value) (Value, error) {
		b, err := Unwrap[*box](args[0], TypeBox)
		if err != nil {
			return Value{}, err
		}
		b.n++
		return wrap(TypeBox, b), nil
	})
	e.RegisterFn("newBox", []TypeID{}, func(args []Value) (Value, error) {
		return wrap(TypeBox, &box{n: 10}), nil
	})

	scope := NewScope()
	_, err := EvalWithScope[struct{}](e, scope, "let b = newBox();")
	require.NoError(t, err)
	_, err = EvalWithScope[struct{}](e, scope, "b.increment();")
	require.NoError(t, err)
	v, err := EvalWithScope[int64](e, scope, "b.n")
	require.NoError(t, err)
	assert.Equal(t, int64(11), v)
}

// --- imported module functions ----------------------------------------------

func TestE2EImportUseCallsModuleFunction(t *testing.T) {
	e := New().WithSourceReader(fakeSourceReader{
		"math.lumen": "fn double(n) { n * 2 }",
	})
	v, err := Eval[int64](e, `
		let m = import "math.lumen";
		use m::double;
		double(21)
	`)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

func TestE2EQualifiedCallToModuleFunction(t *testing.T) {
	e := New().WithSourceReader(fakeSourceReader{
		"math.lumen": "fn triple(n) { n * 3 }",
	})
	v, err := Eval[int64](e, `
		let m = import "math.lumen";
		m::triple(14)
	`)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

// --- array deep clone --------------------------------------------------------

func TestE2EArrayCloneIsolatesPointerBackedElements(t *testing.T) {
	e := New()
	const TypeBox TypeID = "Box"
	e.RegisterType(TypeBox, func(a any) any {
		b := a.(*box)
		cp := *b
		return &cp
	})
	e.RegisterGetSet("n", TypeBox, func(self Value) (Value, error) {
		b, err := Unwrap[*box](self, TypeBox)
		if err != nil {
			return Value{}, err
		}
		return Int(b.n), nil
	}, func(self, val Value) (Value, error) {
		b, err := Unwrap[*box](self, TypeBox)
		if err != nil {
			return Value{}, err
		}
		b.n = val.MustInt()
		return self, nil
	})
	e.RegisterMethod("increment", []TypeID{TypeBox}, func(args []Value) (Value, error) {
		b, err := Unwrap[*box](args[0], TypeBox)
		if err != nil {
			return Value{}, err
		}
		b.n++
		return wrap(TypeBox, b), nil
	})
	e.RegisterFn("newBox", []TypeID{}, func(args []Value) (Value, error) {
		return wrap(TypeBox, &box{n: 10}), nil
	})

	scope := NewScope()
	_, err := EvalWithScope[struct{}](e, scope, "let a = [newBox()]; let b = a;")
	require.NoError(t, err)
	_, err = EvalWithScope[struct{}](e, scope, "b[0].increment();")
	require.NoError(t, err)

	bn, err := EvalWithScope[int64](e, scope, "b[0].n")
	require.NoError(t, err)
	assert.Equal(t, int64(11), bn)

	an, err := EvalWithScope[int64](e, scope, "a[0].n")
	require.NoError(t, err)
	assert.Equal(t, int64(10), an)
}

func TestDescribeListsRegisteredOverloads(t *testing.T) {
	e := New()
	sigs := e.Describe("+")
	assert.NotEmpty(t, sigs, "expected pre-registered '+' overloads to be discoverable")
}
