package emit

import (
	"fmt"

	"archc/internal/targetir"
)

// CTypeName spells r as the emitted systems-language type, following the
// runtime-helper vocabulary spec.md §4.J and §6 name directly
// (sail_int/lbits/sbits/CREATE/KILL/COPY/EQUAL/CONVERT_OF): fixed-width
// reps map to machine integer types, heap-allocated reps map to the
// runtime's opaque struct types, and named/aux reps map to their
// generated struct/typedef name.
func CTypeName(r targetir.Rep) string {
	switch v := r.(type) {
	case targetir.UnitRep:
		return "unit"
	case targetir.BitRep:
		return "bool"
	case targetir.BoolRep:
		return "bool"
	case targetir.EnumRep:
		return "enum " + v.Name
	case targetir.FIntRep:
		return fmt.Sprintf("int%d_t", fixedIntWidth(v.Width))
	case targetir.LIntRep:
		return "sail_int"
	case targetir.FBitsRep:
		return "uint64_t"
	case targetir.SBitsRep:
		return "sbits"
	case targetir.LBitsRep:
		return "lbits"
	case targetir.TupRep:
		return "struct " + auxName(v)
	case targetir.StructRep:
		return "struct " + v.ID
	case targetir.VariantRep:
		return "struct " + v.ID
	case targetir.ListRep:
		return "struct " + auxName(v) + " *"
	case targetir.VectorRep:
		return "struct " + auxName(v)
	case targetir.RefRep:
		return CTypeName(v.Elem) + " *"
	case targetir.PolyRep:
		return "/* POLYMORPHISM LEAK */ void"
	default:
		return "void"
	}
}

// fixedIntWidth rounds a declared FInt width up to the nearest machine
// word size the runtime's int8_t/int16_t/int32_t/int64_t family covers.
func fixedIntWidth(n int) int {
	switch {
	case n <= 8:
		return 8
	case n <= 16:
		return 16
	case n <= 32:
		return 32
	default:
		return 64
	}
}

// IsHeapAllocated reports whether values of representation r require an
// explicit CREATE/KILL pair in the emitted code (mirrors
// targetir.IsHeapRepresentable, restated here so the emitter's choice of
// which helper family to synthesize for a type stays local to this
// package).
func IsHeapAllocated(r targetir.Rep) bool { return targetir.IsHeapRepresentable(r) }
