// registry.go: the (name, argument-type-signature) -> invoker map over
// native callables (spec §4.B). This is the engine's central dispatch
// mechanism: a call site's key is the concatenation of each evaluated
// argument's type identity, matched exactly against what was registered —
// no implicit conversions, no overload resolution beyond exact equality.
package lumen

import (
	"strings"
)

// NativeFn is a host callable. It receives already-unwrapped-by-nothing
// dynamic Values in declared order and returns a dynamic Value or an error.
// Methods may mutate args[0] in place and return the mutated copy; the
// evaluator is responsible for writing it back to the originating lvalue
// (evaluator.go).
type NativeFn func(args []Value) (Value, error)

// signature is the dispatch key: a function name plus its ordered argument
// type identities.
type signature struct {
	name string
	args string // args joined by "\x00" — cheap, comparable map key
}

func makeSigKey(name string, types []TypeID) signature {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return signature{name: name, args: strings.Join(parts, "\x00")}
}

// entry is one registered overload.
type entry struct {
	name     string
	types    []TypeID
	fn       NativeFn
	doc      string
	mutating bool
}

// Registry maps (name, signature) to invokers (spec §4.B). Multiple
// callables may share a name provided their signatures differ; this is the
// overload mechanism.
type Registry struct {
	table map[signature]*entry
	// byName supports introspection (spec §4.B "Describe") without scanning
	// the whole table.
	byName map[string][]*entry
	// reserved getter/setter keys, namespaced away from user-visible names
	// so register_get_set sugar cannot collide with a script-callable
	// function of the same field name.
}

// NewRegistry returns an empty function registry.
func NewRegistry() *Registry {
	return &Registry{table: map[signature]*entry{}, byName: map[string][]*entry{}}
}

// Register installs fn under (name, types). Re-registering the same
// (name, types) key is an override — the newest registration wins, mirroring
// how a host re-registering a type's method after tweaking it expects no
// ceremony (spec §9 "Reject ambiguous registrations... unless the intent is
// override" — here override is always the intent since type identities come
// from the host itself, never from script input).
func (r *Registry) Register(name string, types []TypeID, fn NativeFn) {
	r.RegisterDoc(name, types, fn, "")
}

// RegisterDoc is Register plus a doc string, used by introspection.
func (r *Registry) RegisterDoc(name string, types []TypeID, fn NativeFn, doc string) {
	key := makeSigKey(name, types)
	e := &entry{name: name, types: append([]TypeID(nil), types...), fn: fn, doc: doc}
	if old, ok := r.table[key]; ok {
		r.removeFromByName(old)
	}
	r.table[key] = e
	r.byName[name] = append(r.byName[name], e)
}

// RegisterMethod installs a method overload whose return value represents
// the (possibly updated) receiver — the "&mut self"-style contract described
// in spec §9. The evaluator writes this return value back to the lvalue that
// produced the receiver after the call completes (evalMethodCall in
// evaluator.go).
func (r *Registry) RegisterMethod(name string, types []TypeID, fn NativeFn) {
	key := makeSigKey(name, types)
	e := &entry{name: name, types: append([]TypeID(nil), types...), fn: fn, mutating: true}
	if old, ok := r.table[key]; ok {
		r.removeFromByName(old)
	}
	r.table[key] = e
	r.byName[name] = append(r.byName[name], e)
}

func (r *Registry) isMutating(name string, types []TypeID) bool {
	e, ok := r.table[makeSigKey(name, types)]
	return ok && e.mutating
}

func (r *Registry) removeFromByName(old *entry) {
	list := r.byName[old.name]
	for i, e := range list {
		if e == old {
			r.byName[old.name] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// getterKey / setterKey namespace a field name into the reserved registry
// slots register_get_set sugar uses (spec §4.B).
func getterKey(field string) string { return "get#" + field }
func setterKey(field string) string { return "set#" + field }

// RegisterGetSet is sugar that registers a unary getter under the reserved
// getter key for field and a binary setter under the reserved setter key.
func (r *Registry) RegisterGetSet(field string, ownerType TypeID, getter func(self Value) (Value, error), setter func(self, val Value) (Value, error)) {
	r.Register(getterKey(field), []TypeID{ownerType}, func(args []Value) (Value, error) {
		return getter(args[0])
	})
	r.Register(setterKey(field), []TypeID{ownerType, ""}, func(args []Value) (Value, error) {
		return setter(args[0], args[1])
	})
}

// Lookup resolves (name, types) to an invoker, or NotFound.
func (r *Registry) Lookup(name string, types []TypeID) (NativeFn, error) {
	key := makeSigKey(name, types)
	e, ok := r.table[key]
	if !ok {
		return nil, &FunctionNotFoundError{Name: name, Args: types}
	}
	return e.fn, nil
}

// lookupSetter resolves a setter for field on ownerType without
// pinning the value's own type, since RegisterGetSet stores setters keyed
// with a wildcard second slot — the evaluator calls this instead of Lookup
// for property writes.
func (r *Registry) lookupSetter(field string, ownerType TypeID) (NativeFn, bool) {
	for _, e := range r.byName[setterKey(field)] {
		if len(e.types) == 2 && e.types[0] == ownerType {
			return e.fn, true
		}
	}
	return nil, false
}

func (r *Registry) lookupGetter(field string, ownerType TypeID) (NativeFn, bool) {
	for _, e := range r.byName[getterKey(field)] {
		if len(e.types) == 1 && e.types[0] == ownerType {
			return e.fn, true
		}
	}
	return nil, false
}

// Signature describes one registered overload, for host-side introspection
// (SPEC_FULL §4.B).
type Signature struct {
	Name string
	Args []TypeID
	Doc  string
}

// Describe lists every overload registered under name.
func (r *Registry) Describe(name string) []Signature {
	var out []Signature
	for _, e := range r.byName[name] {
		out = append(out, Signature{Name: e.name, Args: append([]TypeID(nil), e.types...), Doc: e.doc})
	}
	return out
}

// indexGetName / indexSetName are the reserved dispatch names for a[i] reads
// and a[i] = v writes (spec §4.F: "dispatch as a binary indexing name").
const (
	indexGetName = "@index_get"
	indexSetName = "@index_set"
)

// RegisterIndexOps installs the two halves of indexable behavior for a
// (containerType, indexType) pair: a binary get and a ternary set (container,
// index, newElement) -> updated container, mirroring RegisterGetSet's
// wildcard-on-the-value-type approach.
func (r *Registry) RegisterIndexOps(containerType, indexType TypeID, get NativeFn, set NativeFn) {
	r.Register(indexGetName, []TypeID{containerType, indexType}, get)
	r.Register(indexSetName, []TypeID{containerType, indexType, ""}, set)
}

func (r *Registry) lookupIndexSetter(containerType, indexType TypeID) (NativeFn, bool) {
	for _, e := range r.byName[indexSetName] {
		if len(e.types) == 3 && e.types[0] == containerType && e.types[1] == indexType {
			return e.fn, true
		}
	}
	return nil, false
}
