// module.go: resolves `import` expressions to a sub-evaluation producing a
// named scope; `use` imports selected bindings (spec §4.G).
package lumen

// SourceReader is the host-supplied "give me a string of source" contract
// spec §1 reserves for the host: the engine never decides what a path
// string means, it only asks the reader for bytes.
type SourceReader interface {
	ReadSource(path string) (string, error)
}

// ModuleRecord is a loaded module's record (spec §3 "Module"): a mapping
// from symbol name to dynamic value, plus the script-defined functions
// collected from the module's top level. `use` copies a single binding out
// of this record; there is no transitive re-export (spec §9).
type ModuleRecord struct {
	Vars  map[string]Value
	Funcs map[string]*FnDecl
}

// Get resolves name to a plain variable binding in m.Vars. Script-defined
// functions are not values (spec §9: no first-class closures), so a call to
// one — `m::fn(args)` or, after `use m::fn;`, a bare `fn(args)` — resolves
// through m.Funcs instead, in evaluator.go's callModuleFunction and the
// UseStmt case of execStmt.
func (m *ModuleRecord) Get(name string) (Value, bool) {
	v, ok := m.Vars[name]
	return v, ok
}

// ModuleLoader loads, parses, evaluates, and caches modules by resolved
// string path (spec §4.G). The cache lives as long as the loader; Engine
// creates a new loader for each Eval/EvalValue/EvalWithScope call, so a
// module is cached within one evaluation, not across evaluations.
type ModuleLoader struct {
	reader  SourceReader
	cache   map[string]Value
	loading map[string]bool // import-cycle guard
}

// NewModuleLoader constructs a loader over the given source reader.
func NewModuleLoader(reader SourceReader) *ModuleLoader {
	return &ModuleLoader{reader: reader, cache: map[string]Value{}, loading: map[string]bool{}}
}

// Load resolves path to a module value, using the cache when possible and
// failing with ModuleError on a circular import.
func (l *ModuleLoader) Load(path string, reg *Registry, types *typeTable) (Value, error) {
	if v, ok := l.cache[path]; ok {
		return v, nil
	}
	if l.loading[path] {
		return Value{}, &ModuleError{Path: path, Msg: "import cycle"}
	}
	l.loading[path] = true
	defer delete(l.loading, path)

	src, err := l.reader.ReadSource(path)
	if err != nil {
		return Value{}, &ModuleError{Path: path, Msg: err.Error()}
	}
	prog, err := ParseSource(src)
	if err != nil {
		return Value{}, &ModuleError{Path: path, Msg: err.Error()}
	}

	childScope := NewScope()
	sub := NewEvaluator(reg, types, childScope, l)
	if _, err := sub.Run(prog); err != nil {
		return Value{}, &ModuleError{Path: path, Msg: err.Error()}
	}

	rec := &ModuleRecord{Vars: map[string]Value{}, Funcs: map[string]*FnDecl{}}
	for i := 0; i < childScope.Len(); i++ {
		b := childScope.bindings[i]
		rec.Vars[b.name] = b.value
	}
	for name, fn := range sub.funcs {
		rec.Funcs[name] = fn
	}

	modVal := wrap(TypeModule, rec)
	l.cache[path] = modVal
	return modVal, nil
}
