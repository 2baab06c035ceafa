package rewrite

import (
	"testing"

	"archc/internal/sourceir"
	"archc/internal/targetir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S4 from spec.md §8: union Tree = Leaf(int) | Node(list(Tree)) used once
// with a concrete int argument. Expected: a monomorphic Leaf_<supremum>
// synthesized, and the post-specialization constructor list contains no
// polymorphic entries.
func TestSpecializeVariantsMonomorphizesSingleUse(t *testing.T) {
	registry := sourceir.NewRegistry()
	registry.AddUnion(&sourceir.UnionDef{
		Name: "Tree",
		Ctors: []sourceir.Ctor{
			{Name: "Leaf", Arg: sourceir.TypeVar{Name: "a"}, Poly: true},
			{Name: "Node", Arg: sourceir.Named{Name: "TreeList"}, Poly: false},
		},
	})

	prog := &targetir.Program{
		TypeDefs: []targetir.TypeDef{
			{ID: "Tree", Rep: targetir.VariantRep{Ctors: []targetir.VariantCtor{
				{Name: "Leaf", Arg: targetir.PolyRep{}},
				{Name: "Node", Arg: targetir.ListRep{Elem: targetir.StructRep{ID: "Tree"}}},
			}, ID: "Tree"}},
		},
		Functions: []*targetir.Function{
			{
				Name: "make_leaf",
				Params: []targetir.Param{
					{Name: "n", Rep: targetir.FIntRep{Width: 64}},
				},
				Body: []targetir.Instruction{
					targetir.Call{Dest: targetir.LReturnSlot{}, Function: "Leaf", Args: []targetir.RValue{targetir.RIdent{Name: "n"}}},
				},
			},
		},
	}

	require.NoError(t, SpecializeVariants(prog, registry))

	union, ok := registry.Union("Tree")
	require.True(t, ok)
	for _, c := range union.Ctors {
		assert.False(t, c.Poly, "constructor %q should no longer be polymorphic", c.Name)
	}
	require.Len(t, union.Ctors, 2)
	names := []string{union.Ctors[0].Name, union.Ctors[1].Name}
	assert.Contains(t, names, "Node")
	assert.Contains(t, names, "Leaf_fint64")

	call := prog.Functions[0].Body[0].(targetir.Call)
	assert.Equal(t, "Leaf_fint64", call.Function)
	assert.Equal(t, targetir.RIdent{Name: "n"}, call.Args[0])

	variant := prog.TypeDefs[0].Rep.(targetir.VariantRep)
	for _, c := range variant.Ctors {
		_, isPoly := c.Arg.(targetir.PolyRep)
		assert.False(t, isPoly)
	}
}

// Two call sites with different concrete argument representations
// produce two distinct monomorphic constructors — the join only applies
// within one call site's own constituents, not across separate uses.
func TestSpecializeVariantsDistinctCallSitesGetDistinctCtors(t *testing.T) {
	registry := sourceir.NewRegistry()
	registry.AddUnion(&sourceir.UnionDef{
		Name: "Box",
		Ctors: []sourceir.Ctor{
			{Name: "Wrap", Arg: sourceir.TypeVar{Name: "a"}, Poly: true},
		},
	})

	prog := &targetir.Program{
		TypeDefs: []targetir.TypeDef{
			{ID: "Box", Rep: targetir.VariantRep{ID: "Box", Ctors: []targetir.VariantCtor{
				{Name: "Wrap", Arg: targetir.PolyRep{}},
			}}},
		},
		Functions: []*targetir.Function{
			{
				Name:   "wrap_fixed",
				Params: []targetir.Param{{Name: "x", Rep: targetir.FIntRep{Width: 32}}},
				Body: []targetir.Instruction{
					targetir.Call{Dest: targetir.LReturnSlot{}, Function: "Wrap", Args: []targetir.RValue{targetir.RIdent{Name: "x"}}},
				},
			},
			{
				Name:   "wrap_bits",
				Params: []targetir.Param{{Name: "y", Rep: targetir.FBitsRep{Width: 16}}},
				Body: []targetir.Instruction{
					targetir.Call{Dest: targetir.LReturnSlot{}, Function: "Wrap", Args: []targetir.RValue{targetir.RIdent{Name: "y"}}},
				},
			},
		},
	}

	require.NoError(t, SpecializeVariants(prog, registry))

	union, _ := registry.Union("Box")
	require.Len(t, union.Ctors, 2)
	names := []string{union.Ctors[0].Name, union.Ctors[1].Name}
	assert.Contains(t, names, "Wrap_fint32")
	assert.Contains(t, names, "Wrap_fbits16")

	call0 := prog.Functions[0].Body[0].(targetir.Call)
	assert.Equal(t, "Wrap_fint32", call0.Function)
	assert.Equal(t, targetir.RIdent{Name: "x"}, call0.Args[0])

	call1 := prog.Functions[1].Body[0].(targetir.Call)
	assert.Equal(t, "Wrap_fbits16", call1.Function)
	assert.Equal(t, targetir.RIdent{Name: "y"}, call1.Args[0])
}

// A constructor whose declared argument type repeats the same type
// variable in two positions (Pair(a, a)) must unify both call-site
// constituents to their supremum and cast whichever one does not
// already carry it.
func TestSpecializeVariantsCastsMismatchedConstituents(t *testing.T) {
	registry := sourceir.NewRegistry()
	registry.AddUnion(&sourceir.UnionDef{
		Name: "Pair",
		Ctors: []sourceir.Ctor{
			{Name: "Two", Arg: sourceir.TypeVar{Name: "a"}, Poly: true},
		},
	})

	prog := &targetir.Program{
		TypeDefs: []targetir.TypeDef{
			{ID: "Pair", Rep: targetir.VariantRep{ID: "Pair", Ctors: []targetir.VariantCtor{
				{Name: "Two", Arg: targetir.PolyRep{}},
			}}},
		},
		Functions: []*targetir.Function{
			{
				Name: "make_pair",
				Params: []targetir.Param{
					{Name: "a", Rep: targetir.FIntRep{Width: 32}},
					{Name: "b", Rep: targetir.FIntRep{Width: 64}},
				},
				Body: []targetir.Instruction{
					targetir.Call{Dest: targetir.LReturnSlot{}, Function: "Two", Args: []targetir.RValue{
						targetir.RIdent{Name: "a"}, targetir.RIdent{Name: "b"},
					}},
				},
			},
		},
	}

	require.NoError(t, SpecializeVariants(prog, registry))

	call := prog.Functions[0].Body[0].(targetir.Call)
	assert.Equal(t, "Two_lint", call.Function)
	cast0, ok := call.Args[0].(targetir.RHelperCall)
	require.True(t, ok)
	assert.Equal(t, "CONVERT_OF", cast0.Helper)
	cast1, ok := call.Args[1].(targetir.RHelperCall)
	require.True(t, ok)
	assert.Equal(t, "CONVERT_OF", cast1.Helper)
}
