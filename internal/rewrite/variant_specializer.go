package rewrite

import (
	"fmt"
	"sort"

	"archc/internal/sourceir"
	"archc/internal/targetir"
)

// SpecializeVariants implements the Variant Specializer (component F,
// spec.md §4.F): for each tagged-union definition with one or more
// polymorphic constructors, it scans every constructor call-site across
// prog's functions, computes the supremum representation actually
// carried by each polymorphic constructor's argument, synthesizes a
// fresh monomorphic constructor per distinct supremum observed, rewrites
// the call site to the fresh constructor with an inserted conversion
// cast, and replaces the union's constructor list with the monomorphic
// entries actually used plus whatever was already monomorphic.
//
// registry is mutated in place via ReplaceUnion so that later passes
// (and the emitter) see the post-specialization constructor list; prog's
// TypeDefs carrying a VariantRep for the same union are updated to
// match.
func SpecializeVariants(prog *targetir.Program, registry *sourceir.Registry) error {
	unions := registry.Unions()
	sort.Slice(unions, func(i, j int) bool { return unions[i].Name < unions[j].Name })

	for _, union := range unions {
		polyNames := map[string]bool{}
		for _, c := range union.Ctors {
			if c.Poly {
				polyNames[c.Name] = true
			}
		}
		if len(polyNames) == 0 {
			continue
		}

		s := &specializer{polyNames: polyNames, instances: map[string]targetir.Rep{}}
		for _, fn := range prog.Functions {
			localRep := localRepTable(fn)
			fn.Body = s.rewriteAll(fn.Body, localRep)
			fn.Prologue = s.rewriteAll(fn.Prologue, localRep)
			fn.Epilogue = s.rewriteAll(fn.Epilogue, localRep)
		}

		newCtors := make([]sourceir.Ctor, 0, len(union.Ctors)+len(s.instances))
		for _, c := range union.Ctors {
			if !c.Poly {
				newCtors = append(newCtors, c)
			}
		}
		names := make([]string, 0, len(s.instances))
		for name := range s.instances {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			newCtors = append(newCtors, sourceir.Ctor{Name: name, Arg: nil, Poly: false})
		}
		registry.ReplaceUnion(union.Name, newCtors)
		updateTypeDef(prog, union.Name, names, s.instances)
	}
	return nil
}

// specializer accumulates the monomorphic instantiations discovered for
// one union's polymorphic constructors.
type specializer struct {
	polyNames map[string]bool
	// instances maps a synthesized monomorphic constructor name to its
	// argument representation.
	instances map[string]targetir.Rep
}

func (s *specializer) rewriteAll(instrs []targetir.Instruction, localRep map[string]targetir.Rep) []targetir.Instruction {
	out := make([]targetir.Instruction, len(instrs))
	for i, instr := range instrs {
		out[i] = s.rewrite(instr, localRep)
	}
	return out
}

func (s *specializer) rewrite(instr targetir.Instruction, localRep map[string]targetir.Rep) targetir.Instruction {
	switch v := instr.(type) {
	case targetir.Call:
		if !s.polyNames[v.Function] {
			return v
		}
		if len(v.Args) == 0 {
			return v
		}
		argReps := make([]targetir.Rep, len(v.Args))
		for i, a := range v.Args {
			r := rvalueRep(a, localRep)
			if r == nil {
				return v
			}
			argReps[i] = r
		}
		// Promote every constituent of this call site's argument to the
		// supremum of all of them: a multi-occurrence type variable in
		// the constructor's declared argument type (e.g. Pair(a, a))
		// only unifies if every occurrence joins to one representation.
		unifier := argReps[0]
		for _, r := range argReps[1:] {
			unifier = targetir.Supremum(unifier, r)
		}
		monoName := monomorphicName(v.Function, unifier)
		if _, ok := s.instances[monoName]; !ok {
			s.instances[monoName] = unifier
		}
		args := make([]targetir.RValue, len(v.Args))
		for i, a := range v.Args {
			if sameRepSpelling(argReps[i], unifier) {
				args[i] = a
				continue
			}
			args[i] = targetir.RHelperCall{Helper: "CONVERT_OF", Args: []targetir.RValue{a}, Rep: unifier}
		}
		return targetir.Call{Dest: v.Dest, Function: monoName, Args: args}
	case targetir.Block:
		return targetir.Block{Label: v.Label, Instructions: s.rewriteAll(v.Instructions, localRep)}
	case targetir.TryBlock:
		return targetir.TryBlock{Body: s.rewriteAll(v.Body, localRep), Handler: s.rewriteAll(v.Handler, localRep)}
	default:
		return instr
	}
}

// monomorphicName derives a fresh constructor id from the original plus
// an encoding of the unifier, per spec.md §4.F ("original plus an
// encoding of the unifier").
func monomorphicName(original string, rep targetir.Rep) string {
	return fmt.Sprintf("%s_%s", original, repEncoding(rep))
}

// repEncoding spells a Rep as an identifier-safe suffix.
func repEncoding(r targetir.Rep) string {
	switch v := r.(type) {
	case targetir.FIntRep:
		return fmt.Sprintf("fint%d", v.Width)
	case targetir.LIntRep:
		return "lint"
	case targetir.FBitsRep:
		return fmt.Sprintf("fbits%d", v.Width)
	case targetir.SBitsRep:
		return fmt.Sprintf("sbits%d", v.Cap)
	case targetir.LBitsRep:
		return "lbits"
	case targetir.StructRep:
		return "struct_" + v.ID
	case targetir.VariantRep:
		return "variant_" + v.ID
	case targetir.TupRep:
		s := "tup"
		for _, e := range v.Elems {
			s += "_" + repEncoding(e)
		}
		return s
	case targetir.ListRep:
		return "list_" + repEncoding(v.Elem)
	case targetir.VectorRep:
		return "vec_" + repEncoding(v.Elem)
	default:
		return r.String()
	}
}

func sameRepSpelling(a, b targetir.Rep) bool { return a.String() == b.String() }

// localRepTable builds a name->Rep lookup covering a function's
// parameters and every Declare it reaches (including nested
// blocks/try-blocks), sufficient to resolve the representation of any
// RIdent argument to a constructor call within that function.
func localRepTable(fn *targetir.Function) map[string]targetir.Rep {
	out := map[string]targetir.Rep{}
	for _, p := range fn.Params {
		out[p.Name] = p.Rep
	}
	collectDeclares(fn.Prologue, out)
	collectDeclares(fn.Body, out)
	collectDeclares(fn.Epilogue, out)
	return out
}

func collectDeclares(instrs []targetir.Instruction, out map[string]targetir.Rep) {
	for _, instr := range instrs {
		switch v := instr.(type) {
		case targetir.Declare:
			out[v.Name] = v.Rep
		case targetir.Block:
			collectDeclares(v.Instructions, out)
		case targetir.TryBlock:
			collectDeclares(v.Body, out)
			collectDeclares(v.Handler, out)
		}
	}
}

// rvalueRep resolves the representation an already-lowered RValue
// carries, using localRep to resolve bare identifiers. Returns nil when
// the representation cannot be determined (an identifier with no entry in
// localRep, or any field/tuple projection), in which case the caller leaves
// the call site untouched rather than guessing.
func rvalueRep(rv targetir.RValue, localRep map[string]targetir.Rep) targetir.Rep {
	switch v := rv.(type) {
	case targetir.RLit:
		return v.Rep
	case targetir.RRaw:
		return v.Rep
	case targetir.RHelperCall:
		return v.Rep
	case targetir.RUnary:
		return v.Rep
	case targetir.RBinary:
		return v.Rep
	case targetir.RIdent:
		if r, ok := localRep[v.Name]; ok {
			return r
		}
		return nil
	default:
		return nil
	}
}

// updateTypeDef rewrites prog's TypeDef for unionName (if present) to
// carry the post-specialization constructor list, keeping any
// already-monomorphic constructors' Arg reps and filling in the freshly
// synthesized ones from instances.
func updateTypeDef(prog *targetir.Program, unionName string, freshNames []string, instances map[string]targetir.Rep) {
	for i, td := range prog.TypeDefs {
		variant, ok := td.Rep.(targetir.VariantRep)
		if !ok || variant.ID != unionName {
			continue
		}
		newCtors := make([]targetir.VariantCtor, 0, len(variant.Ctors)+len(freshNames))
		for _, c := range variant.Ctors {
			if _, wasPoly := c.Arg.(targetir.PolyRep); wasPoly {
				continue
			}
			newCtors = append(newCtors, c)
		}
		for _, name := range freshNames {
			newCtors = append(newCtors, targetir.VariantCtor{Name: name, Arg: instances[name]})
		}
		prog.TypeDefs[i].Rep = targetir.VariantRep{ID: unionName, Ctors: newCtors}
		return
	}
}
