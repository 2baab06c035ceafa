// Package externs is the closed registry of built-in operations spec.md
// §4.C enumerates: the "extern-binding lookup for primitive operations"
// collaborator named in spec.md §6. It is consulted by internal/primops,
// which only considers a call for inline-expression rewriting when the
// registry knows its name.
package externs

import "sort"

// Prim is one recognized built-in operation: a name plus the shape of
// representation combinations it is defined over. It carries no
// implementation — that lives in internal/primops, one rewrite function
// per Prim — only enough metadata for lookup and arity checking.
type Prim struct {
	Name    string
	Arity   int
	Comment string
}

// Registry is the closed set of recognized primitive operations.
type Registry struct {
	byName map[string]Prim
}

// NewRegistry returns the registry populated with every primitive
// spec.md §4.C names.
func NewRegistry() *Registry {
	r := &Registry{byName: map[string]Prim{}}
	for _, p := range builtinPrims {
		r.byName[p.Name] = p
	}
	return r
}

func (r *Registry) Lookup(name string) (Prim, bool) {
	p, ok := r.byName[name]
	return p, ok
}

func (r *Registry) IsKnown(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// All returns every registered primitive, sorted by name for deterministic
// iteration (e.g. when documenting the registry).
func (r *Registry) All() []Prim {
	out := make([]Prim, 0, len(r.byName))
	for _, p := range r.byName {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

var builtinPrims = []Prim{
	{Name: "eq", Arity: 2, Comment: "equality on integers/bits"},
	{Name: "neq", Arity: 2, Comment: "inequality on integers/bits"},
	{Name: "lt", Arity: 2, Comment: "ordering on integers/bits"},
	{Name: "lteq", Arity: 2, Comment: "ordering on integers/bits"},
	{Name: "gt", Arity: 2, Comment: "ordering on integers/bits"},
	{Name: "gteq", Arity: 2, Comment: "ordering on integers/bits"},
	{Name: "zero_extend", Arity: 2, Comment: "zero-extend a bit-vector"},
	{Name: "sign_extend", Arity: 2, Comment: "sign-extend a bit-vector"},
	{Name: "add_bits", Arity: 2, Comment: "bitwise add, n <= 63"},
	{Name: "xor_bits", Arity: 2, Comment: "bitwise xor"},
	{Name: "or_bits", Arity: 2, Comment: "bitwise or"},
	{Name: "and_bits", Arity: 2, Comment: "bitwise and"},
	{Name: "not_bits", Arity: 1, Comment: "bitwise not"},
	{Name: "vector_access", Arity: 2, Comment: "single-element index"},
	{Name: "vector_subrange", Arity: 3, Comment: "subrange extraction"},
	{Name: "vector_update_subrange", Arity: 4, Comment: "subrange update"},
	{Name: "append", Arity: 2, Comment: "bit-vector concatenation"},
	{Name: "replicate_bits", Arity: 2, Comment: "bit-vector replication"},
	{Name: "unsigned", Arity: 1, Comment: "bit-vector to unsigned integer"},
	{Name: "signed", Arity: 1, Comment: "bit-vector to signed integer"},
	{Name: "undefined", Arity: 0, Comment: "unconstrained value of a type"},
	{Name: "add_int", Arity: 2, Comment: "integer addition"},
	{Name: "neg_int", Arity: 1, Comment: "integer negation"},
}
