package lower

import (
	"testing"

	"archc/internal/sourceir"
	"archc/internal/targetir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEnv() *sourceir.Env {
	return sourceir.NewEnv(sourceir.NewRegistry(), sourceir.BoundProver{})
}

func TestLowerNamedPrimitives(t *testing.T) {
	env := newEnv()
	cases := []struct {
		name string
		want targetir.Rep
	}{
		{sourceir.PrimBit, targetir.BitRep{}},
		{sourceir.PrimBool, targetir.BoolRep{}},
		{sourceir.PrimInt, targetir.LIntRep{}},
		{sourceir.PrimNat, targetir.LIntRep{}},
		{sourceir.PrimUnit, targetir.UnitRep{}},
	}
	for _, c := range cases {
		got, err := Lower(sourceir.NamedPrimitive{Name: c.name}, env)
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}
}

// S1: add32(x: bits(32), y: bits(32)) -> bits(32). Both arguments lower to
// FBits(32, dec).
func TestLowerFixedBitVectorS1(t *testing.T) {
	env := newEnv()
	bits32 := sourceir.Vector{Len: sourceir.NumLit{Value: 32}, Dir: sourceir.Decreasing}
	got, err := Lower(bits32, env)
	require.NoError(t, err)
	assert.Equal(t, targetir.FBitsRep{Width: 32, Dir: targetir.Decreasing}, got)
}

// S2: vector(64, dec, bit) lowers to FBits(64, dec).
func TestLowerFixedBitVectorS2(t *testing.T) {
	env := newEnv()
	bits64 := sourceir.Vector{Len: sourceir.NumLit{Value: 64}, Dir: sourceir.Decreasing}
	got, err := Lower(bits64, env)
	require.NoError(t, err)
	assert.Equal(t, targetir.FBitsRep{Width: 64, Dir: targetir.Decreasing}, got)
}

func TestLowerLargeBitVectorFallsBackToLBits(t *testing.T) {
	env := newEnv()
	bits80 := sourceir.Vector{Len: sourceir.NumLit{Value: 80}, Dir: sourceir.Decreasing}
	got, err := Lower(bits80, env)
	require.NoError(t, err)
	assert.Equal(t, targetir.LBitsRep{Dir: targetir.Decreasing}, got)
}

func TestLowerSmallBitsWhenLenUnknownButProvablyBounded(t *testing.T) {
	env := newEnv()
	env.BindKind("n", 64)
	bits := sourceir.Vector{Len: sourceir.NumVar{Name: "n"}, Dir: sourceir.Decreasing}
	got, err := Lower(bits, env)
	require.NoError(t, err)
	assert.Equal(t, targetir.SBitsRep{Cap: 64, Dir: targetir.Decreasing}, got)
}

func TestLowerRangeLiteralWithin64Bits(t *testing.T) {
	env := newEnv()
	r := sourceir.Range{Kind: sourceir.RangeExplicit, Lo: sourceir.NumLit{Value: 0}, Hi: sourceir.NumLit{Value: 100}}
	got, err := Lower(r, env)
	require.NoError(t, err)
	assert.Equal(t, targetir.FIntRep{Width: 64}, got)
}

func TestLowerRangeOutsideInt64FallsBackToLInt(t *testing.T) {
	env := newEnv()
	huge := sourceir.NumLit{Value: sourceir.MaxInt64}
	// Hi is one past the prover-provable bound and the prover cannot show
	// it fits, since it isn't a literal and has no recorded bound.
	r := sourceir.Range{Kind: sourceir.RangeExplicit, Lo: sourceir.NumLit{Value: 0}, Hi: sourceir.NumBinOp{Op: "+", Left: huge, Right: sourceir.NumVar{Name: "unbounded"}}}
	got, err := Lower(r, env)
	require.NoError(t, err)
	assert.Equal(t, targetir.LIntRep{}, got)
}

func TestLowerTupleComponentwise(t *testing.T) {
	env := newEnv()
	tup := sourceir.Tuple{Elems: []sourceir.Type{
		sourceir.NamedPrimitive{Name: sourceir.PrimBool},
		sourceir.Vector{Len: sourceir.NumLit{Value: 8}, Dir: sourceir.Decreasing},
	}}
	got, err := Lower(tup, env)
	require.NoError(t, err)
	assert.Equal(t, targetir.TupRep{Elems: []targetir.Rep{
		targetir.BoolRep{},
		targetir.FBitsRep{Width: 8, Dir: targetir.Decreasing},
	}}, got)
}

func TestLowerTypeVarIsPoly(t *testing.T) {
	env := newEnv()
	got, err := Lower(sourceir.TypeVar{Name: "'a"}, env)
	require.NoError(t, err)
	assert.Equal(t, targetir.PolyRep{}, got)
}

func TestLowerUnrepresentableTypeFails(t *testing.T) {
	env := newEnv()
	_, err := Lower(sourceir.NamedPrimitive{Name: "frobnicate"}, env)
	require.Error(t, err)
	var lowerErr *Error
	require.ErrorAs(t, err, &lowerErr)
	assert.Equal(t, "E1001", lowerErr.Compiler.Code)
}

// S4: union Tree = Leaf(int) | Node(list(Tree)), used once with a
// concrete int argument, resolves via the registry; specialization of the
// polymorphic constructor itself is internal/rewrite's job, but the named
// lookup rule must resolve the union at all.
func TestLowerNamedUnion(t *testing.T) {
	env := newEnv()
	env.Registry.AddUnion(&sourceir.UnionDef{
		Name: "Tree",
		Ctors: []sourceir.Ctor{
			{Name: "Leaf", Arg: sourceir.NamedPrimitive{Name: sourceir.PrimInt}},
			{Name: "Node", Arg: sourceir.List{Elem: sourceir.Named{Name: "Tree"}}, Poly: false},
		},
	})
	got, err := Lower(sourceir.Named{Name: "Tree"}, env)
	require.NoError(t, err)
	variant, ok := got.(targetir.VariantRep)
	require.True(t, ok)
	assert.Equal(t, "Tree", variant.ID)
	assert.Len(t, variant.Ctors, 2)
}

// Property: lowering totality plus representation stability — lowering
// the same type under the same environment twice yields identical reps.
func TestLoweringIsDeterministic(t *testing.T) {
	env := newEnv()
	ty := sourceir.Vector{Len: sourceir.NumLit{Value: 40}, Dir: sourceir.Decreasing}
	a, err1 := Lower(ty, env)
	b, err2 := Lower(ty, env)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, a, b)
}

func TestStackPredicateMatchesHandComputedCases(t *testing.T) {
	assert.True(t, targetir.IsStackRepresentable(targetir.FIntRep{Width: 64}))
	assert.True(t, targetir.IsStackRepresentable(targetir.FBitsRep{Width: 32}))
	assert.False(t, targetir.IsStackRepresentable(targetir.LIntRep{}))
	assert.False(t, targetir.IsStackRepresentable(targetir.LBitsRep{}))
	assert.False(t, targetir.IsStackRepresentable(targetir.ListRep{Elem: targetir.BitRep{}}))
	assert.False(t, targetir.IsStackRepresentable(targetir.VectorRep{Elem: targetir.BitRep{}}))
	assert.False(t, targetir.IsStackRepresentable(targetir.VariantRep{ID: "Tree"}))
	assert.True(t, targetir.IsStackRepresentable(targetir.RefRep{Elem: targetir.LIntRep{}}))
	assert.True(t, targetir.IsStackRepresentable(targetir.TupRep{Elems: []targetir.Rep{targetir.BitRep{}, targetir.FIntRep{Width: 8}}}))
	assert.False(t, targetir.IsStackRepresentable(targetir.TupRep{Elems: []targetir.Rep{targetir.BitRep{}, targetir.LIntRep{}}}))
}
