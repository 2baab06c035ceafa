package sourceir

// Env carries the local kind environment and a handle to the registry and
// prover consulted while lowering a single type or expression. It mirrors
// the teacher's ContextRegistry delegation pattern: a small struct holding
// the pieces a pass needs, extended immutably (via Extend) as destructured
// binders come into scope.
type Env struct {
	Registry *Registry
	Prover   Prover

	// kindBounds records, for bound-kind variables currently in scope, a
	// known upper bound (when statically known) so the bundled
	// BoundProver can answer simple goals without a real solver.
	kindBounds map[string]int64

	// locals records local-variable representations introduced by let/
	// match bindings and loop indices, consulted by the Expression
	// Normalizer and IR Compiler when re-deriving a local's type.
	locals map[string]Type
}

// NewEnv creates a root environment.
func NewEnv(registry *Registry, prover Prover) *Env {
	return &Env{
		Registry:   registry,
		Prover:     prover,
		kindBounds: map[string]int64{},
		locals:     map[string]Type{},
	}
}

// Extend returns a child environment with additional bound-kind upper
// bounds and/or local bindings layered on top of the receiver. The parent
// is left untouched, so sibling branches of a case/match never observe
// each other's bindings.
func (e *Env) Extend() *Env {
	child := &Env{
		Registry:   e.Registry,
		Prover:     e.Prover,
		kindBounds: make(map[string]int64, len(e.kindBounds)),
		locals:     make(map[string]Type, len(e.locals)),
	}
	for k, v := range e.kindBounds {
		child.kindBounds[k] = v
	}
	for k, v := range e.locals {
		child.locals[k] = v
	}
	return child
}

// BindKind records a known upper bound for a bound-kind variable
// introduced by a range/vector/existential binder.
func (e *Env) BindKind(name string, upperBound int64) {
	e.kindBounds[name] = upperBound
}

// KindBound looks up a recorded bound-kind upper bound.
func (e *Env) KindBound(name string) (int64, bool) {
	v, ok := e.kindBounds[name]
	return v, ok
}

// BindLocal records a local variable's source type, e.g. from a pattern
// binding or a loop index (which the normalizer assumes fits in FInt(64)).
func (e *Env) BindLocal(name string, t Type) {
	e.locals[name] = t
}

// Local looks up a local variable's recorded source type.
func (e *Env) Local(name string) (Type, bool) {
	t, ok := e.locals[name]
	return t, ok
}
