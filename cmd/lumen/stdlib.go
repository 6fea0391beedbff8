package main

import (
	"math"
	"strings"

	"github.com/lumenscript/lumen"
)

// registerMath wires a handful of numeric natives (Float->Float sqrt/abs and
// an Int->Int abs overload), demonstrating
// RegisterFn for a group the host config can opt in or out of.
func registerMath(e *lumen.Engine) {
	e.RegisterFn("sqrt", []lumen.TypeID{lumen.TypeFloat}, func(args []lumen.Value) (lumen.Value, error) {
		return lumen.Float(math.Sqrt(args[0].MustFloat())), nil
	})
	e.RegisterFn("abs", []lumen.TypeID{lumen.TypeFloat}, func(args []lumen.Value) (lumen.Value, error) {
		return lumen.Float(math.Abs(args[0].MustFloat())), nil
	})
	e.RegisterFn("abs", []lumen.TypeID{lumen.TypeInt}, func(args []lumen.Value) (lumen.Value, error) {
		n := args[0].MustInt()
		if n < 0 {
			n = -n
		}
		return lumen.Int(n), nil
	})
}

// registerStrings wires a couple of String->String natives, grounded on the
// kind of host-side string helpers the teacher exposes in builtin_strings.go.
func registerStrings(e *lumen.Engine) {
	e.RegisterFn("upper", []lumen.TypeID{lumen.TypeString}, func(args []lumen.Value) (lumen.Value, error) {
		return lumen.Str(strings.ToUpper(args[0].MustString())), nil
	})
	e.RegisterFn("lower", []lumen.TypeID{lumen.TypeString}, func(args []lumen.Value) (lumen.Value, error) {
		return lumen.Str(strings.ToLower(args[0].MustString())), nil
	})
	e.RegisterFn("trim", []lumen.TypeID{lumen.TypeString}, func(args []lumen.Value) (lumen.Value, error) {
		return lumen.Str(strings.TrimSpace(args[0].MustString())), nil
	})
}

func registerBuiltinGroup(e *lumen.Engine, name string) {
	switch name {
	case "math":
		registerMath(e)
	case "strings":
		registerStrings(e)
	}
}
