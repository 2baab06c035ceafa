// SPDX-License-Identifier: Apache-2.0
package pipeline

import (
	"testing"

	"archc/internal/sourceir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noTypeOf(sourceir.Expr) sourceir.Type { return nil }

func TestCompileEmitsStackReturnFunction(t *testing.T) {
	prog := &sourceir.Program{
		Registry: sourceir.NewRegistry(),
		Functions: []*sourceir.Function{
			{
				Name:       "flag",
				ReturnType: sourceir.NamedPrimitive{Name: sourceir.PrimBool},
				Body:       sourceir.BoolLit{Value: true},
			},
		},
	}

	out, err := Compile(prog, noTypeOf, Options{})
	require.NoError(t, err)
	assert.Contains(t, out, "flag(void)")
	assert.Contains(t, out, "return __ret;")
	assert.Contains(t, out, "int model_main(int argc, char *argv[])")
	assert.Contains(t, out, "int main(int argc, char *argv[])")
}

func TestCompilePassesThroughParameter(t *testing.T) {
	prog := &sourceir.Program{
		Registry: sourceir.NewRegistry(),
		Functions: []*sourceir.Function{
			{
				Name:       "ident",
				Params:     []sourceir.Param{{Name: "n", Type: sourceir.NamedPrimitive{Name: sourceir.PrimBool}}},
				ReturnType: sourceir.NamedPrimitive{Name: sourceir.PrimBool},
				Body:       sourceir.Ident{Name: "n"},
			},
		},
	}

	out, err := Compile(prog, noTypeOf, Options{})
	require.NoError(t, err)
	assert.Contains(t, out, "ident(bool n)")
	assert.Contains(t, out, "__ret = n;")
}

func TestCompileHonorsPrefixStaticAndNoMain(t *testing.T) {
	prog := &sourceir.Program{
		Registry: sourceir.NewRegistry(),
		Functions: []*sourceir.Function{
			{
				Name:       "flag",
				ReturnType: sourceir.NamedPrimitive{Name: sourceir.PrimBool},
				Body:       sourceir.BoolLit{Value: false},
			},
		},
	}

	out, err := Compile(prog, noTypeOf, Options{Static: true, Prefix: "gen_", NoMain: true})
	require.NoError(t, err)
	assert.Contains(t, out, "static bool gen_flag(void)")
	assert.Contains(t, out, "int model_main(int argc, char *argv[])")
	assert.NotContains(t, out, "\nint main(int argc, char *argv[])")
}

func TestCompileSurfacesTypeLoweringError(t *testing.T) {
	prog := &sourceir.Program{
		Registry: sourceir.NewRegistry(),
		Functions: []*sourceir.Function{
			{
				Name:       "broken",
				ReturnType: sourceir.NamedPrimitive{Name: "nonsense"},
				Body:       sourceir.UnitLit{},
			},
		},
	}

	_, err := Compile(prog, noTypeOf, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestCompileSpecializesZeroExtendThroughRealRepOf(t *testing.T) {
	// Regression test for the repOf closure pipeline.go actually builds
	// (Ident-only, see compileFunction): the literal destination-width
	// argument must still let zero_extend specialize to an identity
	// assignment, not decline and fall through to a bare call to the
	// unresolved extern name.
	prog := &sourceir.Program{
		Registry: sourceir.NewRegistry(),
		Functions: []*sourceir.Function{
			{
				Name:       "widen",
				Params:     []sourceir.Param{{Name: "x", Type: sourceir.Vector{Len: sourceir.NumLit{Value: 16}, Dir: sourceir.Decreasing}}},
				ReturnType: sourceir.Vector{Len: sourceir.NumLit{Value: 32}, Dir: sourceir.Decreasing},
				Body: sourceir.Call{Func: "zero_extend", Args: []sourceir.Expr{
					sourceir.Ident{Name: "x"}, sourceir.IntLit{Text: "32"},
				}},
			},
		},
	}

	out, err := Compile(prog, noTypeOf, Options{OptimizePrimops: true})
	require.NoError(t, err)
	assert.Contains(t, out, "__ret = x;")
	assert.NotContains(t, out, "zero_extend(")
}

func TestCompileSpecializesVectorSubrangeThroughRealRepOf(t *testing.T) {
	// Same regression, for a primitive whose literal bounds (lo, hi) must
	// resolve through the analyzer's fallback for the rewrite to be
	// reached at all.
	prog := &sourceir.Program{
		Registry: sourceir.NewRegistry(),
		Functions: []*sourceir.Function{
			{
				Name:       "low_byte",
				Params:     []sourceir.Param{{Name: "x", Type: sourceir.Vector{Len: sourceir.NumLit{Value: 32}, Dir: sourceir.Decreasing}}},
				ReturnType: sourceir.Vector{Len: sourceir.NumLit{Value: 8}, Dir: sourceir.Decreasing},
				Body: sourceir.Call{Func: "vector_subrange", Args: []sourceir.Expr{
					sourceir.Ident{Name: "x"}, sourceir.IntLit{Text: "7"}, sourceir.IntLit{Text: "0"},
				}},
			},
		},
	}

	out, err := Compile(prog, noTypeOf, Options{OptimizePrimops: true})
	require.NoError(t, err)
	assert.Contains(t, out, "subrange_mask_shift(")
	assert.NotContains(t, out, "vector_subrange(")
}

func TestCompileEmitsRecordTypeDefinitionWithHelpers(t *testing.T) {
	registry := sourceir.NewRegistry()
	registry.AddRecord(&sourceir.RecordDef{
		Name: "Pair",
		Fields: []sourceir.Field{
			{Name: "a", Type: sourceir.NamedPrimitive{Name: sourceir.PrimBool}},
			{Name: "b", Type: sourceir.NamedPrimitive{Name: sourceir.PrimBool}},
		},
	})
	prog := &sourceir.Program{Registry: registry}

	out, err := Compile(prog, noTypeOf, Options{})
	require.NoError(t, err)
	assert.Contains(t, out, "struct Pair {")
	assert.Contains(t, out, "static void CREATE(Pair)(struct Pair *op)")
}
