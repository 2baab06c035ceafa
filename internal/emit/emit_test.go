// SPDX-License-Identifier: Apache-2.0
package emit

import (
	"testing"

	"archc/internal/targetir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZencodeEscapesLiteralZAndPunctuation(t *testing.T) {
	assert.Equal(t, "foo_bar", Zencode("foo_bar"))
	assert.Equal(t, "z7a", Zencode("z"))
	assert.Equal(t, "abcz2etag", Zencode("abc.tag"))
}

func TestCTypeNameCoversPrimitiveReps(t *testing.T) {
	assert.Equal(t, "sail_int", CTypeName(targetir.LIntRep{}))
	assert.Equal(t, "lbits", CTypeName(targetir.LBitsRep{}))
	assert.Equal(t, "int64_t", CTypeName(targetir.FIntRep{Width: 64}))
	assert.Equal(t, "int32_t", CTypeName(targetir.FIntRep{Width: 30}))
}

func TestIsHeapAllocatedMatchesRepresentationLattice(t *testing.T) {
	assert.True(t, IsHeapAllocated(targetir.LIntRep{}))
	assert.False(t, IsHeapAllocated(targetir.FIntRep{Width: 8}))
	assert.True(t, IsHeapAllocated(targetir.VariantRep{ID: "Option"}))
}

func TestCollectAuxTypesDeduplicatesByCanonicalSpelling(t *testing.T) {
	tup := targetir.TupRep{Elems: []targetir.Rep{targetir.FIntRep{Width: 64}, targetir.BoolRep{}}}
	fn := &targetir.Function{
		Name:      "pair",
		ReturnRep: tup,
		Body: []targetir.Instruction{
			targetir.Declare{Name: "p", Rep: tup},
			targetir.Declare{Name: "q", Rep: targetir.TupRep{Elems: []targetir.Rep{targetir.FIntRep{Width: 64}, targetir.BoolRep{}}}},
		},
	}
	prog := &targetir.Program{Functions: []*targetir.Function{fn}}

	aux := collectAuxTypes(prog)
	require.Len(t, aux, 1)
	assert.Equal(t, "Tup(FInt(64), Bool)", aux[0].String())
}

func TestEmitFunctionPrintsHeapReturnSignature(t *testing.T) {
	fn := &targetir.Function{
		Name:       "decode",
		HeapReturn: true,
		ReturnRep:  targetir.LBitsRep{},
		Params:     []targetir.Param{{Name: "opcode", Rep: targetir.FIntRep{Width: 32}}},
		Body: []targetir.Instruction{
			targetir.Return{},
		},
	}
	p := &printer{}
	emitFunction(p, fn, Config{})
	out := p.out.String()

	assert.Contains(t, out, "void decode(lbits *zretval_ptr, int32_t opcode)")
	assert.Contains(t, out, "return;")
}

func TestEmitFunctionHonorsStaticAndPrefix(t *testing.T) {
	fn := &targetir.Function{
		Name:      "reset",
		ReturnRep: targetir.UnitRep{},
		Body:      []targetir.Instruction{targetir.Return{}},
	}
	prog := &targetir.Program{Functions: []*targetir.Function{fn}}

	out, err := Emit(prog, Config{Static: true, Prefix: "gen_", NoRTS: true})
	require.NoError(t, err)
	assert.Contains(t, out, "static unit gen_reset(void)")
}

func TestEmitStructTypeDefProducesHelperFamily(t *testing.T) {
	rep := targetir.StructRep{
		ID: "Point",
		Fields: []targetir.RepField{
			{Name: "x", Rep: targetir.FIntRep{Width: 64}},
			{Name: "y", Rep: targetir.FIntRep{Width: 64}},
		},
	}
	prog := &targetir.Program{
		TypeDefs: []targetir.TypeDef{{ID: "Point", Rep: rep}},
	}

	out, err := Emit(prog, Config{NoRTS: true})
	require.NoError(t, err)
	assert.Contains(t, out, "struct Point {")
	assert.Contains(t, out, "static void CREATE(Point)(struct Point *op)")
	assert.Contains(t, out, "static bool EQUAL(Point)(struct Point op1, struct Point op2)")
	assert.Contains(t, out, "op1.x == op2.x && op1.y == op2.y")
}

func TestEmitVariantTypeDefTagsEachConstructor(t *testing.T) {
	rep := targetir.VariantRep{
		ID: "Option",
		Ctors: []targetir.VariantCtor{
			{Name: "None", Arg: nil},
			{Name: "Some", Arg: targetir.FIntRep{Width: 64}},
		},
	}
	prog := &targetir.Program{
		TypeDefs: []targetir.TypeDef{{ID: "Option", Rep: rep}},
	}

	out, err := Emit(prog, Config{NoRTS: true})
	require.NoError(t, err)
	assert.Contains(t, out, "enum Option_tag {")
	assert.Contains(t, out, "Tag_Option_None,")
	assert.Contains(t, out, "Tag_Option_Some,")
	assert.Contains(t, out, "static void CREATE(Option)(struct Option *op)")
}

func TestEmitScaffoldOmitsMainWhenConfigured(t *testing.T) {
	prog := &targetir.Program{}
	out, err := Emit(prog, Config{NoMain: true})
	require.NoError(t, err)
	assert.Contains(t, out, "int model_main(int argc, char *argv[])")
	assert.NotContains(t, out, "\nint main(int argc, char *argv[])")
}

func TestEmitScaffoldKeepsModelMainWhenNoRTS(t *testing.T) {
	// no_rts scopes to the runtime-helper include and the init/fini
	// scaffold; model_main is still the standalone entry point spec.md
	// §6 names, just without the init/fini calls it would otherwise make.
	prog := &targetir.Program{}
	out, err := Emit(prog, Config{NoRTS: true})
	require.NoError(t, err)
	assert.NotContains(t, out, "#include \"sail.h\"")
	assert.NotContains(t, out, "void model_init(void)")
	assert.NotContains(t, out, "void model_fini(void)")
	assert.Contains(t, out, "int model_main(int argc, char *argv[])")
	assert.NotContains(t, out, "model_init();")
	assert.NotContains(t, out, "model_fini();")
}

func TestRvalueTextRendersConvertOfHelper(t *testing.T) {
	rv := targetir.RHelperCall{
		Helper: "CONVERT_OF",
		Args:   []targetir.RValue{targetir.RIdent{Name: "x"}},
		Rep:    targetir.LIntRep{},
	}
	assert.Equal(t, "CONVERT_OF(sail_int)(x)", rvalueText(rv))
}
