package emit

import (
	"strings"

	"archc/internal/targetir"
)

// identSafe turns a Rep's canonical String() spelling into a legal
// systems-language identifier fragment: every run of non
// alphanumeric/underscore characters collapses to a single underscore.
func identSafe(spelling string) string {
	var b strings.Builder
	prevUnderscore := false
	for i := 0; i < len(spelling); i++ {
		c := spelling[i]
		alnum := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if alnum {
			b.WriteByte(c)
			prevUnderscore = false
			continue
		}
		if !prevUnderscore {
			b.WriteByte('_')
			prevUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}

// auxName is the generated C identifier for an anonymous tuple, list,
// or vector representation, deduplicated by the canonical spelling of
// the Rep (its String() form) per spec.md §4.J.
func auxName(r targetir.Rep) string {
	switch v := r.(type) {
	case targetir.TupRep:
		return "tuple_" + identSafe(v.String())
	case targetir.ListRep:
		return "list_" + identSafe(v.String())
	case targetir.VectorRep:
		return "vector_" + identSafe(v.String())
	default:
		return identSafe(r.String())
	}
}

// collectAuxTypes walks every representation reachable from prog's
// functions and type definitions and returns the distinct Tup/List/
// Vector representations encountered, in first-seen order, so the
// emitter can print each one's auxiliary struct definition exactly
// once.
func collectAuxTypes(prog *targetir.Program) []targetir.Rep {
	seen := map[string]bool{}
	var out []targetir.Rep

	var walk func(r targetir.Rep)
	walk = func(r targetir.Rep) {
		if r == nil {
			return
		}
		switch v := r.(type) {
		case targetir.TupRep:
			if !seen[r.String()] {
				seen[r.String()] = true
				out = append(out, r)
			}
			for _, e := range v.Elems {
				walk(e)
			}
		case targetir.ListRep:
			if !seen[r.String()] {
				seen[r.String()] = true
				out = append(out, r)
			}
			walk(v.Elem)
		case targetir.VectorRep:
			if !seen[r.String()] {
				seen[r.String()] = true
				out = append(out, r)
			}
			walk(v.Elem)
		case targetir.StructRep:
			for _, f := range v.Fields {
				walk(f.Rep)
			}
		case targetir.VariantRep:
			for _, c := range v.Ctors {
				walk(c.Arg)
			}
		case targetir.RefRep:
			walk(v.Elem)
		}
	}

	for _, td := range prog.TypeDefs {
		walk(td.Rep)
	}
	for _, reg := range prog.Registers {
		walk(reg.Rep)
	}
	for _, fn := range prog.Functions {
		walk(fn.ReturnRep)
		for _, p := range fn.Params {
			walk(p.Rep)
		}
		walkDeclareReps(fn.Body, walk)
		walkDeclareReps(fn.Prologue, walk)
		walkDeclareReps(fn.Epilogue, walk)
	}

	return out
}

func walkDeclareReps(instrs []targetir.Instruction, walk func(targetir.Rep)) {
	for _, instr := range instrs {
		switch v := instr.(type) {
		case targetir.Declare:
			walk(v.Rep)
		case targetir.Block:
			walkDeclareReps(v.Instructions, walk)
		case targetir.TryBlock:
			walkDeclareReps(v.Body, walk)
			walkDeclareReps(v.Handler, walk)
		}
	}
}
