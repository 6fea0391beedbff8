// Package lumen implements an embeddable scripting engine: a host
// application registers native functions and data types, then asks the
// engine to evaluate a textual program that may call those functions,
// manipulate those values, and use a small set of built-in control
// structures.
//
// The engine is a pure library. It has no I/O of its own beyond the
// SourceReader a host supplies for `import`. The three subsystems that
// matter are the lexer+parser (lexer.go, parser.go, ast.go), the dynamic
// value and registry system (value.go, registry.go), and the tree-walking
// evaluator (evaluator.go, scope.go, module.go).
//
// Typical embedding:
//
//	eng := lumen.New()
//	eng.RegisterFn("add", []lumen.TypeID{lumen.TypeInt, lumen.TypeInt}, func(args []lumen.Value) (lumen.Value, error) {
//		return lumen.Int(args[0].MustInt() + args[1].MustInt()), nil
//	})
//	v, err := lumen.Eval[int64](eng, "add(40, 2)")
package lumen
