// engine.go: the embedding API (spec §6). This is the only file a typical
// host needs to read: New/RegisterType/RegisterFn/RegisterGetSet to set up,
// Eval/EvalFile/EvalWithScope to run scripts.
package lumen

import (
	"os"
)

// Engine is the entry point for evaluating Lumen programs. It owns a type
// table (what host types can be wrapped) and a function registry (what
// calls/operators/methods scripts can invoke); it holds no script state of
// its own between calls unless the caller threads a Scope through
// EvalWithScope.
type Engine struct {
	types    *typeTable
	registry *Registry
	reader   SourceReader
}

// osSourceReader reads import paths directly off the local filesystem. It is
// the default SourceReader; hosts that want a virtual filesystem, embedded
// assets, or a sandboxed root can supply their own.
type osSourceReader struct{}

func (osSourceReader) ReadSource(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// New constructs an Engine with the seven primitive types and their
// operator overloads pre-registered (spec §3).
func New() *Engine {
	tt := newTypeTable()
	registerPrimitiveTypes(tt)
	reg := NewRegistry()
	registerBuiltinOperators(reg, tt)
	return &Engine{types: tt, registry: reg, reader: osSourceReader{}}
}

// WithSourceReader overrides how `import` path strings are resolved to
// source text.
func (e *Engine) WithSourceReader(r SourceReader) *Engine {
	e.reader = r
	return e
}

// RegisterType declares a host type usable by scripts, supplying a stable
// type identity and a clone function (spec §4.A, §6 "register_type<T>").
func (e *Engine) RegisterType(id TypeID, clone func(any) any) {
	e.types.register(id, clone)
}

// RegisterFn adds a native function overload under name for the given
// argument-type signature (spec §4.B, §6 "register_fn").
func (e *Engine) RegisterFn(name string, argTypes []TypeID, fn NativeFn) {
	e.registry.Register(name, argTypes, fn)
}

// RegisterMethod adds a mutating method overload: fn's return value is
// treated as the updated receiver and is written back to the call site's
// lvalue (spec §9).
func (e *Engine) RegisterMethod(name string, argTypes []TypeID, fn NativeFn) {
	e.registry.RegisterMethod(name, argTypes, fn)
}

// RegisterGetSet registers a property getter/setter pair for field on
// ownerType (spec §4.B, §6 "register_get_set").
func (e *Engine) RegisterGetSet(field string, ownerType TypeID, getter func(self Value) (Value, error), setter func(self, val Value) (Value, error)) {
	e.registry.RegisterGetSet(field, ownerType, getter, setter)
}

// Describe lists every registered overload for name, for host-side
// introspection (SPEC_FULL §4.B).
func (e *Engine) Describe(name string) []Signature {
	return e.registry.Describe(name)
}

// Eval parses and evaluates source in a fresh scope and unwraps the result
// to T, failing with TypeMismatchError if the final expression's dynamic
// value is not a T (spec §6 "eval<T>").
func Eval[T any](e *Engine, source string) (T, error) {
	var zero T
	v, err := e.evalFresh(source)
	if err != nil {
		return zero, err
	}
	want, err := typeIDFor[T](e)
	if err != nil {
		return zero, err
	}
	return Unwrap[T](v, want)
}

// EvalFile reads path via the engine's SourceReader and evaluates it as if
// by Eval (spec §6 "eval_file<T>").
func EvalFile[T any](e *Engine, path string) (T, error) {
	var zero T
	src, err := e.reader.ReadSource(path)
	if err != nil {
		return zero, wrapf(err, "reading %s", path)
	}
	return Eval[T](e, src)
}

// EvalWithScope evaluates source against a caller-owned Scope that persists
// across calls (spec §6 "eval_with_scope<T>"): `let`/assignment at the top
// level mutate scope directly rather than a throwaway child.
func EvalWithScope[T any](e *Engine, scope *Scope, source string) (T, error) {
	var zero T
	prog, err := ParseSource(source)
	if err != nil {
		return zero, WrapWithSource(err, source)
	}
	loader := NewModuleLoader(e.reader)
	ev := NewEvaluator(e.registry, e.types, scope, loader)
	v, err := ev.Run(prog)
	if err != nil {
		return zero, err
	}
	want, err := typeIDFor[T](e)
	if err != nil {
		return zero, err
	}
	return Unwrap[T](v, want)
}

// EvalValue parses and evaluates source in a fresh scope, returning the
// trailing expression's dynamic value without unwrapping it to any
// particular host type. Hosts that don't know the result type ahead of time
// (an interactive runner printing whatever a script produces) should call
// this once and inspect the Value's Type(), rather than calling Eval[T]
// repeatedly for different T — each Eval[T] call re-parses and re-evaluates
// the source, which would re-run any side effect a registered native
// function performs.
func (e *Engine) EvalValue(source string) (Value, error) {
	return e.evalFresh(source)
}

func (e *Engine) evalFresh(source string) (Value, error) {
	prog, err := ParseSource(source)
	if err != nil {
		return Value{}, WrapWithSource(err, source)
	}
	loader := NewModuleLoader(e.reader)
	ev := NewEvaluator(e.registry, e.types, NewScope(), loader)
	return ev.Run(prog)
}

// typeIDFor maps a Go generic parameter to the TypeID it was registered
// under. Only the primitive Go types (int64, float64, bool, rune, string,
// []Value, struct{}) resolve, to the pre-registered identities; any other T,
// including a host type added with RegisterType, fails with
// TypeMismatchError. A custom host type's result is read with EvalValue
// followed by Unwrap and its TypeID.
func typeIDFor[T any](e *Engine) (TypeID, error) {
	var zero T
	switch any(zero).(type) {
	case int64:
		return TypeInt, nil
	case float64:
		return TypeFloat, nil
	case bool:
		return TypeBool, nil
	case rune:
		return TypeChar, nil
	case string:
		return TypeString, nil
	case []Value:
		return TypeArray, nil
	case struct{}:
		return TypeUnit, nil
	default:
		return "", &TypeMismatchError{Msg: "no registered TypeID maps to this Go type; use Engine.Describe/Unwrap directly for custom host types"}
	}
}
