// Package primops implements the Primitive Analyzer (spec.md §4.C): it
// walks a normalized expression tree and, for each recognized built-in
// operation whose operands carry a known target representation,
// rewrites the call-site into an InlineCall fragment carrying its
// result representation. Unrecognized operation/representation
// combinations are left as ordinary calls for internal/compile to lower
// into a real function call. The pass is itself an
// internal/externs.Registry consumer: only names the registry knows are
// ever considered, mirroring the teacher's OptimizationPass/
// OptimizationPipeline shape (one self-contained, independently
// toggleable rewrite per recognized name) from its optimization pass
// list, generalized here from a fixed four-pass pipeline into a
// single dispatch table keyed by extern name.
package primops

import (
	"strconv"

	"archc/internal/externs"
	"archc/internal/sourceir"
	"archc/internal/targetir"
)

// RepOf resolves the already-lowered representation of a normalized
// atom (an Ident bound by a prior let, a function parameter, or a
// literal). The analyzer never invokes the Type Lowerer itself — by the
// time it runs, every atom's representation has already been decided by
// component A and recorded by component B.
type RepOf func(e sourceir.Expr) (targetir.Rep, bool)

// InlineCall is an already-specialized primitive operation: a helper
// name or a machine operator spelled out in Helper (e.g. "+"; empty for
// an identity that passes its single operand through unchanged), its
// operand atoms, and the representation of its result. It is
// produced only by this package and consumed only by internal/compile.
type InlineCall struct {
	Helper   string
	Operands []sourceir.Expr
	Rep      targetir.Rep
	// Mask, when non-zero, reports that the result must be masked to
	// this many low bits after the machine operator is applied (additive
	// operations on fixed bits can overflow the declared width).
	Mask int
	at   sourceir.Position
}

func (InlineCall) sourceExpr()           {}
func (c InlineCall) Pos() sourceir.Position { return c.at }

// Analyze rewrites every recognized Call in e into an InlineCall,
// leaving everything else untouched. When enabled is false the tree is
// returned unchanged, per spec.md §4.C's configuration toggle.
func Analyze(e sourceir.Expr, enabled bool, repOf RepOf, registry *externs.Registry) sourceir.Expr {
	if !enabled {
		return e
	}
	a := &analyzer{repOf: repOf, registry: registry}
	return a.walk(e)
}

type analyzer struct {
	repOf    RepOf
	registry *externs.Registry
}

func (a *analyzer) walk(e sourceir.Expr) sourceir.Expr {
	switch v := e.(type) {
	case sourceir.Call:
		for i, arg := range v.Args {
			v.Args[i] = a.walk(arg)
		}
		if !a.registry.IsKnown(v.Func) {
			return v
		}
		if rewritten, ok := a.rewrite(v); ok {
			return rewritten
		}
		return v

	case sourceir.Undefined:
		if rep, ok := a.repOf(v); ok {
			if lit, ok := canonicalRepresentative(rep); ok {
				return lit
			}
		}
		return v

	case sourceir.If:
		v.Cond = a.walk(v.Cond)
		v.Then = a.walk(v.Then)
		v.Else = a.walk(v.Else)
		return v

	case sourceir.Let:
		v.Init = a.walk(v.Init)
		v.Body = a.walk(v.Body)
		return v

	case sourceir.Block:
		for i, s := range v.Stmts {
			v.Stmts[i] = a.walkStmt(s)
		}
		return v

	case sourceir.EarlyReturn:
		v.Value = a.walk(v.Value)
		return v

	case sourceir.Throw:
		v.Value = a.walk(v.Value)
		return v

	case sourceir.Match:
		v.Scrutinee = a.walk(v.Scrutinee)
		for i, c := range v.Cases {
			c.Body = a.walk(c.Body)
			v.Cases[i] = c
		}
		return v
	}
	return e
}

func (a *analyzer) walkStmt(s sourceir.Stmt) sourceir.Stmt {
	switch v := s.(type) {
	case sourceir.LetStmt:
		v.Init = a.walk(v.Init)
		return v
	case sourceir.AssertStmt:
		v.Cond = a.walk(v.Cond)
		return v
	case sourceir.ExprStmt:
		v.Value = a.walk(v.Value)
		return v
	}
	return s
}

// rewrite dispatches a known-named call to its representation-specific
// specialization. It returns ok=false for any combination not in the
// recognized table, which the Primitive Analyzer treats as a decline,
// not an error (spec.md §7's UnsupportedPrimitiveCombination).
func (a *analyzer) rewrite(c sourceir.Call) (sourceir.Expr, bool) {
	reps := make([]targetir.Rep, len(c.Args))
	for i, arg := range c.Args {
		r, ok := resolveRep(a.repOf, arg)
		if !ok {
			return nil, false
		}
		reps[i] = r
	}

	switch c.Func {
	case "eq", "neq", "lt", "lteq", "gt", "gteq":
		return rewriteComparison(c, reps)
	case "zero_extend":
		return rewriteZeroExtend(c, reps)
	case "sign_extend":
		return rewriteSignExtend(c, reps)
	case "add_bits":
		return rewriteAddBits(c, reps)
	case "xor_bits", "or_bits", "and_bits":
		return rewriteBitwiseBinary(c, reps)
	case "not_bits":
		return rewriteBitwiseUnary(c, reps)
	case "vector_access":
		return rewriteVectorAccess(c, reps)
	case "vector_subrange":
		return rewriteVectorSubrange(c, reps)
	case "vector_update_subrange":
		return rewriteVectorUpdate(c, reps)
	case "append":
		return rewriteAppend(c, reps)
	case "unsigned", "signed":
		return rewriteConversion(c, reps)
	case "replicate_bits":
		return rewriteReplicate(c, reps)
	case "add_int":
		return rewriteAddInt(c, reps)
	case "neg_int":
		return rewriteNegInt(c, reps)
	}
	return nil, false
}

// resolveRep resolves the representation an operand carries, preferring
// repOf (the already-lowered representation component B recorded for a
// bound identifier or sub-expression) and falling back to the canonical
// representation of a bare literal atom. Bound-width and bound-index
// arguments such as zero_extend's target width or vector_access's index
// are IntLits, not Idents, so without this fallback repOf's Ident-only
// oracle would never resolve them and none of the §4.C rewrites that
// take a literal bound (zero/sign-extend, subrange, access, update,
// replicate) could ever fire.
func resolveRep(repOf RepOf, e sourceir.Expr) (targetir.Rep, bool) {
	if r, ok := repOf(e); ok {
		return r, true
	}
	switch v := e.(type) {
	case sourceir.IntLit:
		return targetir.FIntRep{Width: 64}, true
	case sourceir.BoolLit:
		return targetir.BoolRep{}, true
	case sourceir.BitsLit:
		return targetir.FBitsRep{Width: v.Width, Dir: targetir.Direction(v.Dir)}, true
	}
	return nil, false
}

func fixedWidth(r targetir.Rep) (int, bool) {
	switch v := r.(type) {
	case targetir.FIntRep:
		return v.Width, true
	case targetir.FBitsRep:
		return v.Width, true
	}
	return 0, false
}

func smallCap(r targetir.Rep) (int, bool) {
	if v, ok := r.(targetir.SBitsRep); ok {
		return v.Cap, true
	}
	return 0, false
}

func rewriteComparison(c sourceir.Call, reps []targetir.Rep) (sourceir.Expr, bool) {
	if len(reps) != 2 {
		return nil, false
	}
	if w1, ok1 := fixedWidth(reps[0]); ok1 {
		if w2, ok2 := fixedWidth(reps[1]); ok2 && w1 == w2 {
			return InlineCall{Helper: comparisonOperator(c.Func), Operands: c.Args, Rep: targetir.BoolRep{}, at: c.Pos()}, true
		}
	}
	if _, ok1 := smallCap(reps[0]); ok1 {
		if _, ok2 := smallCap(reps[1]); ok2 && (c.Func == "eq" || c.Func == "neq") {
			helper := "eq_sbits"
			if c.Func == "neq" {
				helper = "neq_sbits"
			}
			return InlineCall{Helper: helper, Operands: c.Args, Rep: targetir.BoolRep{}, at: c.Pos()}, true
		}
	}
	return nil, false
}

func comparisonOperator(name string) string {
	switch name {
	case "eq":
		return "=="
	case "neq":
		return "!="
	case "lt":
		return "<"
	case "lteq":
		return "<="
	case "gt":
		return ">"
	case "gteq":
		return ">="
	}
	return ""
}

func rewriteZeroExtend(c sourceir.Call, reps []targetir.Rep) (sourceir.Expr, bool) {
	if len(reps) != 2 {
		return nil, false
	}
	srcW, ok1 := fixedWidthOrSmall(reps[0])
	dstW, ok2 := intLitValue(c.Args[1])
	if !ok1 || !ok2 || dstW > 64 || srcW > dstW {
		return nil, false
	}
	// Zero-extend is identity on the inline fragment: the value itself is
	// unchanged, only its declared representation widens. A bit-vector
	// source stays a bit-vector (S2); only a source already resting in a
	// FInt stays a FInt.
	return InlineCall{Helper: "", Operands: []sourceir.Expr{c.Args[0]}, Rep: widenedRep(reps[0], dstW), at: c.Pos()}, true
}

func rewriteSignExtend(c sourceir.Call, reps []targetir.Rep) (sourceir.Expr, bool) {
	if len(reps) != 2 {
		return nil, false
	}
	srcW, ok1 := fixedWidthOrSmall(reps[0])
	dstW, ok2 := intLitValue(c.Args[1])
	if !ok1 || !ok2 || dstW > 64 {
		return nil, false
	}
	return InlineCall{
		Helper:   "fast_sign_extend2",
		Operands: []sourceir.Expr{c.Args[0], sourceir.IntLit{Text: strconv.Itoa(srcW)}, sourceir.IntLit{Text: strconv.Itoa(dstW)}},
		Rep:      widenedRep(reps[0], dstW),
		at:       c.Pos(),
	}, true
}

// intLitValue extracts the compile-time value of a literal bound
// argument (a destination width, index, or subrange bound). These
// arguments carry the actual extension/slicing geometry; their
// representation (always FInt(64) once resolved via resolveRep) does
// not, so callers that need the real number read it off the literal
// itself.
func intLitValue(e sourceir.Expr) (int, bool) {
	lit, ok := e.(sourceir.IntLit)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(lit.Text)
	if err != nil {
		return 0, false
	}
	return n, true
}

// widenedRep reports the representation of a bit/int source widened to
// width: a FBits or SBits source stays a bit-vector at the new width, a
// FInt source stays FInt.
func widenedRep(src targetir.Rep, width int) targetir.Rep {
	switch v := src.(type) {
	case targetir.FBitsRep:
		return targetir.FBitsRep{Width: width, Dir: v.Dir}
	case targetir.SBitsRep:
		return targetir.FBitsRep{Width: width, Dir: v.Dir}
	default:
		return targetir.FIntRep{Width: width}
	}
}

func fixedWidthOrSmall(r targetir.Rep) (int, bool) {
	if w, ok := fixedWidth(r); ok {
		return w, true
	}
	return smallCap(r)
}

func rewriteAddBits(c sourceir.Call, reps []targetir.Rep) (sourceir.Expr, bool) {
	if len(reps) != 2 {
		return nil, false
	}
	w1, ok1 := fixedWidth(reps[0])
	w2, ok2 := fixedWidth(reps[1])
	if !ok1 || !ok2 || w1 != w2 || w1 > 63 {
		return nil, false
	}
	return InlineCall{Helper: "+", Operands: c.Args, Rep: targetir.FBitsRep{Width: w1}, Mask: w1, at: c.Pos()}, true
}

func rewriteBitwiseBinary(c sourceir.Call, reps []targetir.Rep) (sourceir.Expr, bool) {
	if len(reps) != 2 {
		return nil, false
	}
	w1, ok1 := fixedWidth(reps[0])
	w2, ok2 := fixedWidth(reps[1])
	if !ok1 || !ok2 || w1 != w2 || w1 > 64 {
		return nil, false
	}
	helper := map[string]string{"xor_bits": "^", "or_bits": "|", "and_bits": "&"}[c.Func]
	return InlineCall{Helper: helper, Operands: c.Args, Rep: targetir.FBitsRep{Width: w1}, at: c.Pos()}, true
}

func rewriteBitwiseUnary(c sourceir.Call, reps []targetir.Rep) (sourceir.Expr, bool) {
	if len(reps) != 1 {
		return nil, false
	}
	w, ok := fixedWidth(reps[0])
	if !ok || w > 64 {
		return nil, false
	}
	return InlineCall{Helper: "~", Operands: c.Args, Rep: targetir.FBitsRep{Width: w}, Mask: w, at: c.Pos()}, true
}

func rewriteVectorAccess(c sourceir.Call, reps []targetir.Rep) (sourceir.Expr, bool) {
	if len(reps) != 2 {
		return nil, false
	}
	if _, ok := fixedWidth(reps[0]); !ok {
		return nil, false
	}
	if !isSmallIntLiteral(c.Args[1]) {
		return nil, false
	}
	return InlineCall{Helper: "bit_at", Operands: c.Args, Rep: targetir.BitRep{}, at: c.Pos()}, true
}

func rewriteVectorSubrange(c sourceir.Call, reps []targetir.Rep) (sourceir.Expr, bool) {
	if len(reps) != 3 {
		return nil, false
	}
	w, ok := fixedWidth(reps[0])
	if !ok || !isSmallIntLiteral(c.Args[1]) || !isSmallIntLiteral(c.Args[2]) {
		return nil, false
	}
	if w > 64 {
		return nil, false
	}
	return InlineCall{Helper: "subrange_mask_shift", Operands: c.Args, Rep: targetir.FBitsRep{Width: w}, at: c.Pos()}, true
}

func rewriteVectorUpdate(c sourceir.Call, reps []targetir.Rep) (sourceir.Expr, bool) {
	if len(reps) != 4 {
		return nil, false
	}
	w, ok := fixedWidth(reps[0])
	if !ok || !isSmallIntLiteral(c.Args[1]) || !isSmallIntLiteral(c.Args[2]) {
		return nil, false
	}
	return InlineCall{Helper: "update_subrange_fast", Operands: c.Args, Rep: targetir.FBitsRep{Width: w}, at: c.Pos()}, true
}

func rewriteAppend(c sourceir.Call, reps []targetir.Rep) (sourceir.Expr, bool) {
	if len(reps) != 2 {
		return nil, false
	}
	w1, ok1 := fixedWidth(reps[0])
	w2, ok2 := fixedWidth(reps[1])
	if ok1 && ok2 && w1+w2 <= 64 {
		return InlineCall{Helper: "append_fixed", Operands: c.Args, Rep: targetir.FBitsRep{Width: w1 + w2}, at: c.Pos()}, true
	}
	// combined width exceeds 64, or one side is small/large: route to the
	// small/small, small/fixed, fixed/small helper family. Only handled
	// when at least one side is provably bounded; otherwise decline and
	// let the IR Compiler emit a real append call over LBits.
	if _, smallOK1 := smallCap(reps[0]); smallOK1 {
		return InlineCall{Helper: "append_small", Operands: c.Args, Rep: targetir.SBitsRep{Cap: 64}, at: c.Pos()}, true
	}
	if _, smallOK2 := smallCap(reps[1]); smallOK2 {
		return InlineCall{Helper: "append_small", Operands: c.Args, Rep: targetir.SBitsRep{Cap: 64}, at: c.Pos()}, true
	}
	return nil, false
}

func rewriteConversion(c sourceir.Call, reps []targetir.Rep) (sourceir.Expr, bool) {
	if len(reps) != 1 {
		return nil, false
	}
	w, ok := fixedWidth(reps[0])
	if !ok || w > 64 {
		return nil, false
	}
	return InlineCall{Helper: c.Func, Operands: c.Args, Rep: targetir.FIntRep{Width: 64}, at: c.Pos()}, true
}

func rewriteReplicate(c sourceir.Call, reps []targetir.Rep) (sourceir.Expr, bool) {
	if len(reps) != 2 {
		return nil, false
	}
	w, ok := fixedWidth(reps[0])
	if !ok {
		return nil, false
	}
	return InlineCall{Helper: "replicate_fast", Operands: c.Args, Rep: targetir.FBitsRep{Width: w}, at: c.Pos()}, true
}

func rewriteAddInt(c sourceir.Call, reps []targetir.Rep) (sourceir.Expr, bool) {
	if len(reps) != 2 {
		return nil, false
	}
	w1, ok1 := fixedWidth(reps[0])
	w2, ok2 := fixedWidth(reps[1])
	if !ok1 || !ok2 || w1 != 64 || w2 != 64 {
		return nil, false
	}
	return InlineCall{Helper: "+", Operands: c.Args, Rep: targetir.FIntRep{Width: 64}, at: c.Pos()}, true
}

func rewriteNegInt(c sourceir.Call, reps []targetir.Rep) (sourceir.Expr, bool) {
	if len(reps) != 1 {
		return nil, false
	}
	w, ok := fixedWidth(reps[0])
	if !ok || w != 64 {
		return nil, false
	}
	return InlineCall{Helper: "-", Operands: c.Args, Rep: targetir.FIntRep{Width: 64}, at: c.Pos()}, true
}

func isSmallIntLiteral(e sourceir.Expr) bool {
	_, ok := e.(sourceir.IntLit)
	return ok
}

// canonicalRepresentative picks the zero/false/first-constructor value
// for undefined(T) when T's representation is recognized (spec.md
// §4.C's "undefined values" rule).
func canonicalRepresentative(r targetir.Rep) (sourceir.Expr, bool) {
	switch v := r.(type) {
	case targetir.BitRep:
		return sourceir.BitsLit{Value: 0, Width: 1}, true
	case targetir.BoolRep:
		return sourceir.BoolLit{Value: false}, true
	case targetir.FIntRep, targetir.LIntRep:
		return sourceir.IntLit{Text: "0"}, true
	case targetir.FBitsRep:
		return sourceir.BitsLit{Value: 0, Width: v.Width, Dir: sourceDir(v.Dir)}, true
	case targetir.EnumRep:
		if len(v.Constructors) > 0 {
			return sourceir.Ident{Name: v.Constructors[0]}, true
		}
	}
	return nil, false
}

func sourceDir(d targetir.Direction) sourceir.Direction {
	if d == targetir.Decreasing {
		return sourceir.Decreasing
	}
	return sourceir.Increasing
}
