// scope.go: an ordered stack of (name, value) bindings with lexical
// push/pop and innermost-wins lookup (spec §4.E).
package lumen

// binding is one (name, value) pair on the scope stack.
type binding struct {
	name  string
	value Value
}

// Scope is a push-down stack of bindings with block marks. Blocks introduce
// a mark; exiting the block truncates the stack back to that mark. This is
// deliberately a flat slice, not a tree of environments: spec §3 defines
// Scope as "An ordered sequence of (name, value) pairs", and lookup as a
// linear scan from innermost to outermost.
type Scope struct {
	bindings []binding
}

// NewScope returns an empty scope.
func NewScope() *Scope { return &Scope{} }

// Mark returns the current stack depth, to be passed to Truncate on block
// exit.
func (s *Scope) Mark() int { return len(s.bindings) }

// Truncate pops bindings back down to mark, releasing all block-local
// values (spec §5 "Resource policy").
func (s *Scope) Truncate(mark int) { s.bindings = s.bindings[:mark] }

// Push appends a new binding at the current depth (spec: "let adds exactly
// one binding at current depth"). Shadowing is allowed.
func (s *Scope) Push(name string, v Value) { s.bindings = append(s.bindings, binding{name, v}) }

// Lookup scans from innermost to outermost and returns the first match.
func (s *Scope) Lookup(name string) (Value, bool) {
	for i := len(s.bindings) - 1; i >= 0; i-- {
		if s.bindings[i].name == name {
			return s.bindings[i].value, true
		}
	}
	return Value{}, false
}

// Assign overwrites the nearest existing binding of name. It never creates a
// new binding — an assignment to an unbound name is a script error the
// evaluator reports as UnboundNameError.
func (s *Scope) Assign(name string, v Value) bool {
	for i := len(s.bindings) - 1; i >= 0; i-- {
		if s.bindings[i].name == name {
			s.bindings[i].value = v
			return true
		}
	}
	return false
}

// Len reports the current stack depth, used by scope-balance tests (spec
// §8 "Scope balance").
func (s *Scope) Len() int { return len(s.bindings) }
