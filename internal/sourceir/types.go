package sourceir

import (
	"fmt"
	"strings"
)

// Direction is the bit ordering of a bit-vector or vector type.
type Direction int

const (
	Increasing Direction = iota
	Decreasing
)

func (d Direction) String() string {
	if d == Decreasing {
		return "dec"
	}
	return "inc"
}

// Type is a member of the source type algebra described in spec.md §3.
// Every concrete type below corresponds to exactly one production there.
type Type interface {
	sourceType()
	String() string
}

// NamedPrimitive covers the fixed set of primitive identifiers: bit, bool,
// int, nat, unit, string, real.
type NamedPrimitive struct {
	Name string
}

func (NamedPrimitive) sourceType()    {}
func (n NamedPrimitive) String() string { return n.Name }

// AtomBool is atom_bool(_): a single-bit boolean atom distinct from the
// general bool primitive because the checker tags it separately.
type AtomBool struct {
	Arg Type
}

func (AtomBool) sourceType()      {}
func (a AtomBool) String() string { return fmt.Sprintf("atom_bool(%s)", a.Arg) }

// Itself wraps itself(n), which the Type Lowerer treats identically to
// atom(n) per decision rule 3.
type Itself struct {
	N NumExpr
}

func (Itself) sourceType()      {}
func (i Itself) String() string { return fmt.Sprintf("itself(%s)", i.N) }

// BoundKind is a kind-variable bound by a range/atom/implicit/existential
// constructor, extending the local environment while its body is lowered.
type BoundKind struct {
	Name string
}

// RangeKind identifies which of range/atom/implicit produced a numeric type;
// all three destructure into (bound-kids, constraint, lo, hi) per rule 4.
type RangeKind int

const (
	RangeExplicit RangeKind = iota // range(lo, hi)
	RangeAtom                      // atom(n)
	RangeImplicit                  // implicit(n)
)

// Range is range(lo, hi) | atom(n) | implicit(n), destructured into bound
// kinds, an optional constraint, and the (lo, hi) bounds.
type Range struct {
	Kind       RangeKind
	BoundKinds []BoundKind
	Constraint NumExpr // optional side constraint; nil if none
	Lo, Hi     NumExpr
}

func (Range) sourceType() {}
func (r Range) String() string {
	switch r.Kind {
	case RangeAtom:
		return fmt.Sprintf("atom(%s)", r.Hi)
	case RangeImplicit:
		return fmt.Sprintf("implicit(%s)", r.Hi)
	default:
		return fmt.Sprintf("range(%s, %s)", r.Lo, r.Hi)
	}
}

// List is list(T).
type List struct {
	Elem Type
}

func (List) sourceType()      {}
func (l List) String() string { return fmt.Sprintf("list(%s)", l.Elem) }

// Vector is vector(n, ord, T). Elem is nil to denote vector(n, ord, bit),
// the bit-vector case handled specially by decision rule 6.
type Vector struct {
	Len Len
	Dir Direction
	// Elem is the element type. A nil Elem means the bit-vector case
	// (vector(n, ord, bit)).
	Elem Type
}

func (Vector) sourceType() {}
func (v Vector) String() string {
	elem := "bit"
	if v.Elem != nil {
		elem = v.Elem.String()
	}
	return fmt.Sprintf("vector(%s, %s, %s)", v.Len, v.Dir, elem)
}

// Len is the length argument of a vector type: either a literal, a bound
// variable, or an expression the prover may be asked about.
type Len = NumExpr

// Register is register(T).
type Register struct {
	Elem Type
}

func (Register) sourceType()      {}
func (r Register) String() string { return fmt.Sprintf("register(%s)", r.Elem) }

// Named references a record, variant, or enum resolved by environment
// lookup (decision rule 9).
type Named struct {
	Name string
}

func (Named) sourceType()      {}
func (n Named) String() string { return n.Name }

// Tuple is a tuple of component types, lowered componentwise (rule 10).
type Tuple struct {
	Elems []Type
}

func (Tuple) sourceType() {}
func (t Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Existential destructures into bound kinds, a constraint, and a body
// (rule 11). A non-destructurable existential is unreachable per the
// spec and is rejected by the lowerer.
type Existential struct {
	BoundKinds []BoundKind
	Constraint NumExpr
	Body       Type
}

func (Existential) sourceType() {}
func (e Existential) String() string {
	return fmt.Sprintf("exist %v. %s", e.BoundKinds, e.Body)
}

// TypeVar is a type variable (rule 12), lowered to Poly.
type TypeVar struct {
	Name string
}

func (TypeVar) sourceType()      {}
func (t TypeVar) String() string { return t.Name }

// Well-known primitive names recognized by decision rule 1.
const (
	PrimBit    = "bit"
	PrimBool   = "bool"
	PrimInt    = "int"
	PrimNat    = "nat"
	PrimUnit   = "unit"
	PrimString = "string"
	PrimReal   = "real"
)
