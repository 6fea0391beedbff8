// evaluator.go: the tree-walking evaluator (spec §4.F). Walks the AST,
// evaluates expressions to dynamic values, executes statements against a
// Scope, and dispatches every call, operator, property access, index, and
// method invocation through the Registry.
//
// Grounded on the teacher's interpreter_exec.go/interpreter_ops.go for the
// overall split between "evaluate an expression" and "execute a statement",
// though the teacher compiles to a small bytecode VM (vm.go) where this
// evaluator walks the AST directly, per spec §1's Non-goals ("No
// just-in-time or bytecode compilation").
package lumen

// ctrl is the per-evaluation control-flow signal (spec §4.F state item iv).
type ctrl int

const (
	ctrlNormal ctrl = iota
	ctrlBreak
	ctrlReturn
)

// Evaluator holds everything one evaluation call needs: the registry, the
// script-function table, the current scope, and a place to stash the value
// carried by an in-flight `return` (spec §4.F "State").
type Evaluator struct {
	registry    *Registry
	types       *typeTable
	funcs       map[string]*FnDecl
	scope       *Scope
	returnValue Value
	loader      *ModuleLoader
}

// NewEvaluator constructs an Evaluator over the given registry, type table,
// and scope. The script-function table starts empty; Run merges in the
// Program's Funcs before executing its statements.
func NewEvaluator(reg *Registry, types *typeTable, scope *Scope, loader *ModuleLoader) *Evaluator {
	return &Evaluator{registry: reg, types: types, funcs: map[string]*FnDecl{}, scope: scope, loader: loader}
}

// Run executes prog's top-level statements in the evaluator's current scope
// and returns the value of its trailing expression, or Unit.
//
// A `return` that escapes all the way to the top level is a
// ControlFlowLeakError: spec §9 treats top-level `return` as unspecified by
// the README and resolves it this way deliberately.
func (ev *Evaluator) Run(prog *Program) (Value, error) {
	for name, fn := range prog.Funcs {
		ev.funcs[name] = fn
	}
	// Unlike execBlock, the top level does not mark/truncate: a caller-owned
	// Scope passed through EvalWithScope must keep `let` bindings made by one
	// call visible to the next (spec §6 "eval_with_scope<T>").
	result := UnitVal()
	for _, stmt := range prog.Stmts {
		v, c, err := ev.execStmt(stmt)
		if err != nil {
			return Value{}, err
		}
		switch c {
		case ctrlReturn:
			return Value{}, &ControlFlowLeakError{Kind: "return"}
		case ctrlBreak:
			return Value{}, &ControlFlowLeakError{Kind: "break"}
		}
		result = v
	}
	return result, nil
}

// execBlock pushes a scope mark, executes each statement in order, and pops
// back to the mark on exit (spec §4.E). The returned Value is the block's
// trailing, semicolon-less expression if present, else Unit.
func (ev *Evaluator) execBlock(b *Block) (Value, ctrl, error) {
	mark := ev.scope.Mark()
	defer ev.scope.Truncate(mark)

	result := UnitVal()
	for _, stmt := range b.Stmts {
		v, c, err := ev.execStmt(stmt)
		if err != nil {
			return Value{}, ctrlNormal, err
		}
		if c != ctrlNormal {
			return v, c, nil
		}
		result = v
	}
	return result, ctrlNormal, nil
}

func (ev *Evaluator) execStmt(s Stmt) (Value, ctrl, error) {
	switch n := s.(type) {
	case *ExprStmt:
		v, err := ev.evalExpr(n.X)
		if err != nil {
			return Value{}, ctrlNormal, err
		}
		if n.Tail {
			return v, ctrlNormal, nil
		}
		return UnitVal(), ctrlNormal, nil

	case *LetStmt:
		v, err := ev.evalExpr(n.Value)
		if err != nil {
			return Value{}, ctrlNormal, err
		}
		ev.scope.Push(n.Name, v)
		return UnitVal(), ctrlNormal, nil

	case *IfStmt:
		cond, err := ev.evalExpr(n.Cond)
		if err != nil {
			return Value{}, ctrlNormal, err
		}
		b, err := Unwrap[bool](cond, TypeBool)
		if err != nil {
			return Value{}, ctrlNormal, err
		}
		if b {
			v, c, err := ev.execBlock(n.Then)
			return v, c, err
		}
		if n.Else != nil {
			v, c, err := ev.execBlock(n.Else)
			return v, c, err
		}
		return UnitVal(), ctrlNormal, nil

	case *WhileStmt:
		for {
			cond, err := ev.evalExpr(n.Cond)
			if err != nil {
				return Value{}, ctrlNormal, err
			}
			b, err := Unwrap[bool](cond, TypeBool)
			if err != nil {
				return Value{}, ctrlNormal, err
			}
			if !b {
				return UnitVal(), ctrlNormal, nil
			}
			_, c, err := ev.execBlock(n.Body)
			if err != nil {
				return Value{}, ctrlNormal, err
			}
			if c == ctrlBreak {
				return UnitVal(), ctrlNormal, nil
			}
			if c == ctrlReturn {
				return Value{}, ctrlReturn, nil
			}
		}

	case *LoopStmt:
		for {
			_, c, err := ev.execBlock(n.Body)
			if err != nil {
				return Value{}, ctrlNormal, err
			}
			if c == ctrlBreak {
				return UnitVal(), ctrlNormal, nil
			}
			if c == ctrlReturn {
				return Value{}, ctrlReturn, nil
			}
		}

	case *BreakStmt:
		return UnitVal(), ctrlBreak, nil

	case *ReturnStmt:
		v := UnitVal()
		if n.Value != nil {
			var err error
			v, err = ev.evalExpr(n.Value)
			if err != nil {
				return Value{}, ctrlNormal, err
			}
		}
		ev.returnValue = v
		return v, ctrlReturn, nil

	case *Block:
		return ev.execBlock(n)

	case *UseStmt:
		modVal, ok := ev.scope.Lookup(n.Module)
		if !ok {
			return Value{}, ctrlNormal, &UnboundNameError{Name: n.Module}
		}
		rec, err := Unwrap[*ModuleRecord](modVal, TypeModule)
		if err != nil {
			return Value{}, ctrlNormal, err
		}
		// A name in a module record is either a variable binding or a
		// script-defined function (spec §3 "Module"); `use` copies whichever
		// one it finds into the current scope/function table.
		if v, ok := rec.Get(n.Name); ok {
			ev.scope.Push(n.Name, v)
			return UnitVal(), ctrlNormal, nil
		}
		if fn, ok := rec.Funcs[n.Name]; ok {
			ev.funcs[n.Name] = fn
			return UnitVal(), ctrlNormal, nil
		}
		return Value{}, ctrlNormal, &ModuleError{Path: n.Module, Msg: "no such binding: " + n.Name}

	case *FnDecl:
		ev.funcs[n.Name] = n
		return UnitVal(), ctrlNormal, nil

	default:
		panic("lumen: unknown statement node")
	}
}

// evalExpr evaluates e to a dynamic value (spec §4.F "Expression
// evaluation").
func (ev *Evaluator) evalExpr(e Expr) (Value, error) {
	switch n := e.(type) {
	case *IntLit:
		return Int(n.Value), nil
	case *FloatLit:
		return Float(n.Value), nil
	case *BoolLit:
		return Bool(n.Value), nil
	case *StringLit:
		return Str(n.Value), nil
	case *CharLit:
		return Char(n.Value), nil

	case *Ident:
		v, ok := ev.scope.Lookup(n.Name)
		if !ok {
			return Value{}, &UnboundNameError{Name: n.Name}
		}
		return v.Clone(ev.types)

	case *ArrayLit:
		items := make([]Value, len(n.Elems))
		for i, el := range n.Elems {
			v, err := ev.evalExpr(el)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return Arr(items), nil

	case *Unary:
		x, err := ev.evalExpr(n.X)
		if err != nil {
			return Value{}, err
		}
		fn, err := ev.registry.Lookup(n.Op, []TypeID{x.Type()})
		if err != nil {
			return Value{}, err
		}
		return fn([]Value{x})

	case *Binary:
		return ev.evalBinary(n)

	case *Assign:
		v, err := ev.evalExpr(n.Value)
		if err != nil {
			return Value{}, err
		}
		if err := ev.assignLvalue(n.Target, v); err != nil {
			return Value{}, err
		}
		return v, nil

	case *Call:
		return ev.evalCall(n)

	case *Index:
		container, err := ev.evalExpr(n.Collection)
		if err != nil {
			return Value{}, err
		}
		idx, err := ev.evalExpr(n.IndexExpr)
		if err != nil {
			return Value{}, err
		}
		fn, err := ev.registry.Lookup(indexGetName, []TypeID{container.Type(), idx.Type()})
		if err != nil {
			return Value{}, err
		}
		return fn([]Value{container, idx})

	case *Property:
		obj, err := ev.evalExpr(n.Object)
		if err != nil {
			return Value{}, err
		}
		getter, ok := ev.registry.lookupGetter(n.Name, obj.Type())
		if !ok {
			return Value{}, &FunctionNotFoundError{Name: getterKey(n.Name), Args: []TypeID{obj.Type()}}
		}
		return getter([]Value{obj})

	case *MethodCall:
		return ev.evalMethodCall(n)

	case *PathLookup:
		modVal, ok := ev.scope.Lookup(n.Module)
		if !ok {
			return Value{}, &UnboundNameError{Name: n.Module}
		}
		rec, err := Unwrap[*ModuleRecord](modVal, TypeModule)
		if err != nil {
			return Value{}, err
		}
		v, ok := rec.Get(n.Name)
		if !ok {
			return Value{}, &ModuleError{Path: n.Module, Msg: "no such binding: " + n.Name}
		}
		return v.Clone(ev.types)

	case *ImportExpr:
		pathVal, err := ev.evalExpr(n.Path)
		if err != nil {
			return Value{}, err
		}
		path, err := Unwrap[string](pathVal, TypeString)
		if err != nil {
			return Value{}, err
		}
		if ev.loader == nil {
			return Value{}, &ModuleError{Path: path, Msg: "no module loader configured"}
		}
		return ev.loader.Load(path, ev.registry, ev.types)

	default:
		panic("lumen: unknown expression node")
	}
}

func (ev *Evaluator) evalBinary(n *Binary) (Value, error) {
	switch n.Op {
	case "&&":
		x, err := ev.evalExpr(n.X)
		if err != nil {
			return Value{}, err
		}
		xb, err := Unwrap[bool](x, TypeBool)
		if err != nil {
			return Value{}, err
		}
		if !xb {
			return Bool(false), nil
		}
		y, err := ev.evalExpr(n.Y)
		if err != nil {
			return Value{}, err
		}
		yb, err := Unwrap[bool](y, TypeBool)
		if err != nil {
			return Value{}, err
		}
		return Bool(yb), nil

	case "||":
		x, err := ev.evalExpr(n.X)
		if err != nil {
			return Value{}, err
		}
		xb, err := Unwrap[bool](x, TypeBool)
		if err != nil {
			return Value{}, err
		}
		if xb {
			return Bool(true), nil
		}
		y, err := ev.evalExpr(n.Y)
		if err != nil {
			return Value{}, err
		}
		yb, err := Unwrap[bool](y, TypeBool)
		if err != nil {
			return Value{}, err
		}
		return Bool(yb), nil

	default:
		x, err := ev.evalExpr(n.X)
		if err != nil {
			return Value{}, err
		}
		y, err := ev.evalExpr(n.Y)
		if err != nil {
			return Value{}, err
		}
		fn, err := ev.registry.Lookup(n.Op, []TypeID{x.Type(), y.Type()})
		if err != nil {
			return Value{}, err
		}
		return fn([]Value{x, y})
	}
}

// evalCall evaluates a named call: a module-qualified call (m::fn(args))
// resolves through that module's function record; otherwise script-defined
// functions are tried first by (name, arity); anything else dispatches
// through the registry by argument type signature (spec §4.F, §4.G).
func (ev *Evaluator) evalCall(n *Call) (Value, error) {
	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		v, err := ev.evalExpr(a)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}

	if n.Module != "" {
		return ev.callModuleFunction(n.Module, n.Fn, args)
	}

	if fn, ok := ev.funcs[n.Fn]; ok && len(fn.Params) == len(args) {
		return ev.callScriptFunction(fn, args)
	}

	types := make([]TypeID, len(args))
	for i, a := range args {
		types[i] = a.Type()
	}
	fn, err := ev.registry.Lookup(n.Fn, types)
	if err != nil {
		return Value{}, err
	}
	return fn(args)
}

// callModuleFunction resolves modName in the current scope to a module
// value, looks fnName up in its function record, and invokes it exactly as
// an unqualified script-function call would (spec §3 "Module": "a mapping
// from name to script-defined functions"; §4.G: `import`/`use` expose it).
func (ev *Evaluator) callModuleFunction(modName, fnName string, args []Value) (Value, error) {
	modVal, ok := ev.scope.Lookup(modName)
	if !ok {
		return Value{}, &UnboundNameError{Name: modName}
	}
	rec, err := Unwrap[*ModuleRecord](modVal, TypeModule)
	if err != nil {
		return Value{}, err
	}
	fn, ok := rec.Funcs[fnName]
	if !ok || len(fn.Params) != len(args) {
		return Value{}, &ModuleError{Path: modName, Msg: "no such function: " + fnName}
	}
	return ev.callScriptFunction(fn, args)
}

// callScriptFunction binds params into a brand-new scope — not a child of
// the caller's scope — and executes the body there. Script functions see
// only their parameters and registry callables (spec §9: "no closures").
func (ev *Evaluator) callScriptFunction(fn *FnDecl, args []Value) (Value, error) {
	callerScope := ev.scope
	ev.scope = NewScope()
	defer func() { ev.scope = callerScope }()

	for i, p := range fn.Params {
		ev.scope.Push(p, args[i])
	}
	v, c, err := ev.execBlock(fn.Body)
	if err != nil {
		return Value{}, err
	}
	switch c {
	case ctrlReturn:
		return ev.returnValue, nil
	case ctrlBreak:
		return Value{}, &ControlFlowLeakError{Kind: "break"}
	default:
		return v, nil
	}
}

func (ev *Evaluator) evalMethodCall(n *MethodCall) (Value, error) {
	obj, err := ev.evalExpr(n.Object)
	if err != nil {
		return Value{}, err
	}
	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		v, err := ev.evalExpr(a)
		if err != nil {
			return Value{}, err
		}
		args[i] = v
	}
	types := make([]TypeID, len(args)+1)
	types[0] = obj.Type()
	for i, a := range args {
		types[i+1] = a.Type()
	}
	fn, err := ev.registry.Lookup(n.Name, types)
	if err != nil {
		return Value{}, err
	}
	callArgs := append([]Value{obj}, args...)
	result, err := fn(callArgs)
	if err != nil {
		return Value{}, err
	}
	if ev.registry.isMutating(n.Name, types) {
		// spec §9: write the mutated first argument back to the lvalue
		// that produced it. If the object expression is not itself an
		// lvalue (e.g. a literal or another call's result), there is no
		// slot to write to and the mutation is simply local to this call.
		if _, lerr := asLvalue(n.Object); lerr == nil {
			if err := ev.assignLvalue(n.Object, result); err != nil {
				return Value{}, err
			}
		}
	}
	return result, nil
}

// assignLvalue writes v into the storage location denoted by e, which must
// be an Ident, Index, or Property (spec §3 "Lvalue"). For Index/Property it
// recursively re-resolves and rewrites the enclosing container, implementing
// the two-phase lvalue walk described in spec §9: read the current
// container, apply the setter/index-set, then replay the write one level up.
func (ev *Evaluator) assignLvalue(e Expr, v Value) error {
	switch n := e.(type) {
	case *Ident:
		if !ev.scope.Assign(n.Name, v) {
			return &UnboundNameError{Name: n.Name}
		}
		return nil

	case *Index:
		container, err := ev.evalExpr(n.Collection)
		if err != nil {
			return err
		}
		idx, err := ev.evalExpr(n.IndexExpr)
		if err != nil {
			return err
		}
		fn, ok := ev.registry.lookupIndexSetter(container.Type(), idx.Type())
		if !ok {
			return &FunctionNotFoundError{Name: indexSetName, Args: []TypeID{container.Type(), idx.Type()}}
		}
		newContainer, err := fn([]Value{container, idx, v})
		if err != nil {
			return err
		}
		return ev.assignLvalue(n.Collection, newContainer)

	case *Property:
		obj, err := ev.evalExpr(n.Object)
		if err != nil {
			return err
		}
		setter, ok := ev.registry.lookupSetter(n.Name, obj.Type())
		if !ok {
			return &FunctionNotFoundError{Name: setterKey(n.Name), Args: []TypeID{obj.Type()}}
		}
		newObj, err := setter([]Value{obj, v})
		if err != nil {
			return err
		}
		return ev.assignLvalue(n.Object, newObj)

	default:
		p := e.exprPos()
		return &ParseError{Line: p.Line, Col: p.Col, Msg: "invalid assignment target"}
	}
}
