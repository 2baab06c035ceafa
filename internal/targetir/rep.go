package targetir

import "fmt"

// Rep is a target representation: the disjoint set from spec.md §3 naming
// how a value lives at runtime. The Type Lowerer (internal/lower) is the
// only component allowed to construct one from a source type; every other
// pass only inspects or combines existing Reps.
type Rep interface {
	repMarker()
	String() string
}

type UnitRep struct{}

func (UnitRep) repMarker()     {}
func (UnitRep) String() string { return "Unit" }

type BitRep struct{}

func (BitRep) repMarker()     {}
func (BitRep) String() string { return "Bit" }

type BoolRep struct{}

func (BoolRep) repMarker()     {}
func (BoolRep) String() string { return "Bool" }

// EnumRep is a named enumeration with an ordered constructor list.
type EnumRep struct {
	Name         string
	Constructors []string
}

func (EnumRep) repMarker()      {}
func (e EnumRep) String() string { return fmt.Sprintf("Enum(%s)", e.Name) }

// FIntRep is a fixed-width signed machine integer, n <= 64.
type FIntRep struct {
	Width int
}

func (FIntRep) repMarker()      {}
func (f FIntRep) String() string { return fmt.Sprintf("FInt(%d)", f.Width) }

// LIntRep is a heap-allocated arbitrary-precision integer.
type LIntRep struct{}

func (LIntRep) repMarker()     {}
func (LIntRep) String() string { return "LInt" }

// FBitsRep is a fixed bit-vector, n <= 64.
type FBitsRep struct {
	Width int
	Dir   Direction
}

func (FBitsRep) repMarker()      {}
func (f FBitsRep) String() string { return fmt.Sprintf("FBits(%d, %s)", f.Width, f.Dir) }

// SBitsRep is a small bit-vector of fixed capacity with a runtime length.
type SBitsRep struct {
	Cap int
	Dir Direction
}

func (SBitsRep) repMarker()      {}
func (s SBitsRep) String() string { return fmt.Sprintf("SBits(%d, %s)", s.Cap, s.Dir) }

// LBitsRep is a heap-allocated arbitrary-length bit-vector.
type LBitsRep struct {
	Dir Direction
}

func (LBitsRep) repMarker()      {}
func (l LBitsRep) String() string { return fmt.Sprintf("LBits(%s)", l.Dir) }

// TupRep is an anonymous tuple of representations.
type TupRep struct {
	Elems []Rep
}

func (TupRep) repMarker() {}
func (t TupRep) String() string {
	s := "Tup("
	for i, e := range t.Elems {
		if i > 0 {
			s += ", "
		}
		s += e.String()
	}
	return s + ")"
}

// StructRep is a named struct with an ordered field list.
type StructRep struct {
	ID     string
	Fields []RepField
}

func (StructRep) repMarker()      {}
func (s StructRep) String() string { return fmt.Sprintf("Struct(%s)", s.ID) }

// RepField is one field of a StructRep/VariantRep constructor.
type RepField struct {
	Name string
	Rep  Rep
}

// VariantRep is a named tagged union with an ordered constructor list.
// After specialization (component F) no VariantRep's constructor
// argument rep contains Poly.
type VariantRep struct {
	ID    string
	Ctors []VariantCtor
}

func (VariantRep) repMarker()      {}
func (v VariantRep) String() string { return fmt.Sprintf("Variant(%s)", v.ID) }

// VariantCtor is one constructor of a VariantRep.
type VariantCtor struct {
	Name string
	Arg  Rep // nil for a nullary constructor
}

// ListRep is a singly-linked list node representation.
type ListRep struct {
	Elem Rep
}

func (ListRep) repMarker()      {}
func (l ListRep) String() string { return fmt.Sprintf("List(%s)", l.Elem) }

// VectorRep is a growable vector representation.
type VectorRep struct {
	Dir  Direction
	Elem Rep
}

func (VectorRep) repMarker()      {}
func (v VectorRep) String() string { return fmt.Sprintf("Vector(%s, %s)", v.Dir, v.Elem) }

// RefRep is a register/reference representation; always stack-representable
// since it is just a pointer.
type RefRep struct {
	Elem Rep
}

func (RefRep) repMarker()      {}
func (r RefRep) String() string { return fmt.Sprintf("Ref(%s)", r.Elem) }

// PolyRep is a deferred, not-yet-monomorphized representation. It must
// never survive past the Variant Specializer (component F); the emitter
// treats encountering one as a polymorphism-leak error.
type PolyRep struct{}

func (PolyRep) repMarker()     {}
func (PolyRep) String() string { return "Poly" }

// Direction mirrors sourceir.Direction without importing it — the target
// IR must not depend on the source IR, only the lowerer bridges them.
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

// IsStackRepresentable implements the recursive predicate from spec.md §3:
// all primitive reps except LInt, LBits, List, Vector are stack-representable;
// tuples/structs only when every field is; variants never are; references
// and Poly always are.
func IsStackRepresentable(r Rep) bool {
	switch v := r.(type) {
	case LIntRep, LBitsRep, ListRep, VectorRep:
		return false
	case VariantRep:
		return false
	case TupRep:
		for _, e := range v.Elems {
			if !IsStackRepresentable(e) {
				return false
			}
		}
		return true
	case StructRep:
		for _, f := range v.Fields {
			if !IsStackRepresentable(f.Rep) {
				return false
			}
		}
		return true
	case RefRep, PolyRep:
		return true
	default:
		// Unit, Bit, Bool, Enum, FInt, FBits, SBits.
		return true
	}
}

// IsHeapRepresentable is the complement predicate used by the Return
// Rewriter and Allocation Hoister to decide which locals need explicit
// create/clear bracketing.
func IsHeapRepresentable(r Rep) bool {
	return !IsStackRepresentable(r)
}

// Supremum computes the least upper bound in the representation lattice:
// FInt -> LInt, FBits/SBits -> LBits, equal-length tuples join
// componentwise, and Poly joins to the other side. Any other mismatch
// falls back to LInt when either side is integer-shaped, to LBits when
// either side is bit-shaped, and to a otherwise, rather than failing,
// since the Variant Specializer must always be able to produce a
// monomorphic instantiation.
func Supremum(a, b Rep) Rep {
	if sameRep(a, b) {
		return a
	}
	switch av := a.(type) {
	case FIntRep:
		if _, ok := b.(FIntRep); ok {
			return LIntRep{}
		}
	case LIntRep:
		if isIntLike(b) {
			return LIntRep{}
		}
	case FBitsRep:
		if bv, ok := b.(FBitsRep); ok {
			return LBitsRep{Dir: joinDir(av.Dir, bv.Dir)}
		}
		if bv, ok := b.(SBitsRep); ok {
			return LBitsRep{Dir: joinDir(av.Dir, bv.Dir)}
		}
		if bv, ok := b.(LBitsRep); ok {
			return LBitsRep{Dir: bv.Dir}
		}
	case SBitsRep:
		if bv, ok := b.(SBitsRep); ok {
			return LBitsRep{Dir: joinDir(av.Dir, bv.Dir)}
		}
		if bv, ok := b.(FBitsRep); ok {
			return LBitsRep{Dir: joinDir(av.Dir, bv.Dir)}
		}
		if bv, ok := b.(LBitsRep); ok {
			return LBitsRep{Dir: bv.Dir}
		}
	case LBitsRep:
		if isBitsLike(b) {
			return LBitsRep{Dir: av.Dir}
		}
	case TupRep:
		if bv, ok := b.(TupRep); ok && len(av.Elems) == len(bv.Elems) {
			elems := make([]Rep, len(av.Elems))
			for i := range av.Elems {
				elems[i] = Supremum(av.Elems[i], bv.Elems[i])
			}
			return TupRep{Elems: elems}
		}
	case PolyRep:
		return b
	}
	if _, ok := b.(PolyRep); ok {
		return a
	}
	// No structural relationship: default to the heap-allocated variant
	// wide enough to hold either, arbitrary-precision integer being the
	// most general fallback for numeric-shaped mismatches and LBits for
	// bit-shaped ones; otherwise keep a as the join of last resort.
	if isIntLike(a) || isIntLike(b) {
		return LIntRep{}
	}
	if isBitsLike(a) || isBitsLike(b) {
		return LBitsRep{}
	}
	return a
}

func sameRep(a, b Rep) bool { return a.String() == b.String() }

func isIntLike(r Rep) bool {
	switch r.(type) {
	case FIntRep, LIntRep:
		return true
	}
	return false
}

func isBitsLike(r Rep) bool {
	switch r.(type) {
	case FBitsRep, SBitsRep, LBitsRep:
		return true
	}
	return false
}

func joinDir(a, b Direction) Direction {
	if a == b {
		return a
	}
	return Decreasing
}
