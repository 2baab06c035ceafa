// Package lower implements the Type Lowerer (spec.md §4.A): mapping a
// source type, under a local constraint environment, to the single most
// efficient target representation. Decision rules are tried in order;
// the first that matches wins. Lowering never re-infers a representation
// once chosen for a given (type, environment) pair — callers that need a
// fresh decision under a different environment call Lower again, which is
// exactly what the Expression Normalizer does at pattern bindings.
package lower

import (
	"archc/internal/errors"
	"archc/internal/sourceir"
	"archc/internal/targetir"
	"fmt"
)

// Error is a fatal TypeLoweringError, carrying the offending type and its
// source position. There is no recovery path (spec.md §4.A "Failure").
type Error struct {
	Compiler errors.CompilerError
}

func (e *Error) Error() string { return e.Compiler.Message }

func fail(t fmt.Stringer, pos sourceir.Position) error {
	return &Error{Compiler: errors.TypeLoweringError(t, pos)}
}

// Lower maps a source type to a target representation under env,
// implementing the first-match-wins rules of spec.md §4.A.
func Lower(t sourceir.Type, env *sourceir.Env) (targetir.Rep, error) {
	return lowerAt(t, env, sourceir.NoPosition)
}

// LowerAt is Lower with an explicit position for diagnostics.
func LowerAt(t sourceir.Type, env *sourceir.Env, pos sourceir.Position) (targetir.Rep, error) {
	return lowerAt(t, env, pos)
}

func lowerAt(t sourceir.Type, env *sourceir.Env, pos sourceir.Position) (targetir.Rep, error) {
	switch v := t.(type) {
	case sourceir.NamedPrimitive:
		// Rule 1: named primitive ids map to their obvious representation;
		// int and nat both become LInt.
		switch v.Name {
		case sourceir.PrimBit:
			return targetir.BitRep{}, nil
		case sourceir.PrimBool:
			return targetir.BoolRep{}, nil
		case sourceir.PrimInt, sourceir.PrimNat:
			return targetir.LIntRep{}, nil
		case sourceir.PrimUnit:
			return targetir.UnitRep{}, nil
		case sourceir.PrimString:
			return targetir.LBitsRep{Dir: targetir.Decreasing}, nil
		case sourceir.PrimReal:
			return targetir.LIntRep{}, nil
		}
		return nil, fail(v, pos)

	case sourceir.AtomBool:
		// Rule 2.
		return targetir.BoolRep{}, nil

	case sourceir.Itself:
		// Rule 3: itself(n) behaves as atom(n).
		return lowerAt(sourceir.Range{Kind: sourceir.RangeAtom, Hi: v.N}, env, pos)

	case sourceir.Range:
		return lowerRange(v, env, pos)

	case sourceir.List:
		elem, err := lowerAt(v.Elem, env, pos)
		if err != nil {
			return nil, err
		}
		return targetir.ListRep{Elem: elem}, nil

	case sourceir.Vector:
		return lowerVector(v, env, pos)

	case sourceir.Register:
		elem, err := lowerAt(v.Elem, env, pos)
		if err != nil {
			return nil, err
		}
		return targetir.RefRep{Elem: elem}, nil

	case sourceir.Named:
		// Rule 9: named records/variants/enums resolved by environment
		// lookup.
		return lowerNamed(v, env, pos)

	case sourceir.Tuple:
		// Rule 10: tuples lowered componentwise.
		elems := make([]targetir.Rep, len(v.Elems))
		for i, e := range v.Elems {
			r, err := lowerAt(e, env, pos)
			if err != nil {
				return nil, err
			}
			elems[i] = r
		}
		return targetir.TupRep{Elems: elems}, nil

	case sourceir.Existential:
		// Rule 11: destructure, extend environment, lower the body.
		child := env.Extend()
		for _, bk := range v.BoundKinds {
			// Without a concrete bound the child environment simply
			// records no bound; the prover will decline rather than
			// guess, matching the "unreachable if non-destructurable"
			// clause for anything that truly needs one.
			_ = bk
		}
		return lowerAt(v.Body, child, pos)

	case sourceir.TypeVar:
		// Rule 12.
		return targetir.PolyRep{}, nil
	}

	// Rule 13: anything else is a fatal lowering error.
	return nil, fail(t, pos)
}

func lowerRange(r sourceir.Range, env *sourceir.Env, pos sourceir.Position) (targetir.Rep, error) {
	child := env.Extend()
	for _, bk := range r.BoundKinds {
		_ = bk
	}

	lo, hi := r.Lo, r.Hi
	if r.Kind == sourceir.RangeAtom || r.Kind == sourceir.RangeImplicit {
		lo, hi = sourceir.NumLit{Value: 0}, r.Hi
	}

	// Rule 4: if both lo and hi are literal constants in
	// [min_int64, max_int64], choose FInt(64); else ask the prover.
	if loV, loOK := sourceir.AsLiteral(lo); loOK {
		if hiV, hiOK := sourceir.AsLiteral(hi); hiOK {
			if sourceir.MinInt64 <= loV && hiV <= sourceir.MaxInt64 {
				return targetir.FIntRep{Width: 64}, nil
			}
			return targetir.LIntRep{}, nil
		}
	}

	if child.Prover != nil && child.Prover.ProveBoundedInt64(child, lo, hi, r.Constraint) {
		return targetir.FIntRep{Width: 64}, nil
	}
	return targetir.LIntRep{}, nil
}

func lowerVector(v sourceir.Vector, env *sourceir.Env, pos sourceir.Position) (targetir.Rep, error) {
	dir := targetir.Increasing
	if v.Dir == sourceir.Decreasing {
		dir = targetir.Decreasing
	}

	if v.Elem == nil {
		// Rule 6: vector(n, ord, bit).
		if n, ok := sourceir.AsLiteral(v.Len); ok && n <= 64 {
			return targetir.FBitsRep{Width: int(n), Dir: dir}, nil
		}
		if env.Prover != nil && env.Prover.ProveLenFits64(env, v.Len, nil) {
			return targetir.SBitsRep{Cap: 64, Dir: dir}, nil
		}
		return targetir.LBitsRep{Dir: dir}, nil
	}

	// Rule 7: vector(n, ord, T) with T != bit.
	elem, err := lowerAt(v.Elem, env, pos)
	if err != nil {
		return nil, err
	}
	return targetir.VectorRep{Dir: dir, Elem: elem}, nil
}

func lowerNamed(n sourceir.Named, env *sourceir.Env, pos sourceir.Position) (targetir.Rep, error) {
	if def, ok := env.Registry.Record(n.Name); ok {
		fields := make([]targetir.RepField, len(def.Fields))
		for i, f := range def.Fields {
			r, err := lowerAt(f.Type, env, pos)
			if err != nil {
				return nil, err
			}
			fields[i] = targetir.RepField{Name: f.Name, Rep: r}
		}
		return targetir.StructRep{ID: n.Name, Fields: fields}, nil
	}
	if def, ok := env.Registry.Union(n.Name); ok {
		ctors := make([]targetir.VariantCtor, len(def.Ctors))
		for i, c := range def.Ctors {
			if c.Poly || c.Arg == nil {
				ctors[i] = targetir.VariantCtor{Name: c.Name, Arg: argRepOrNil(c.Arg)}
				continue
			}
			r, err := lowerAt(c.Arg, env, pos)
			if err != nil {
				return nil, err
			}
			ctors[i] = targetir.VariantCtor{Name: c.Name, Arg: r}
		}
		return targetir.VariantRep{ID: n.Name, Ctors: ctors}, nil
	}
	if def, ok := env.Registry.Enum(n.Name); ok {
		return targetir.EnumRep{Name: def.Name, Constructors: def.Ctors}, nil
	}
	return nil, fail(n, pos)
}

func argRepOrNil(t sourceir.Type) targetir.Rep {
	if t == nil {
		return nil
	}
	return targetir.PolyRep{}
}
