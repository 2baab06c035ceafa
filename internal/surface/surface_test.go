// SPDX-License-Identifier: Apache-2.0
package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archc/internal/sourceir"
)

func TestParseProgramFunction(t *testing.T) {
	prog, err := ParseProgram("t", `
		fn ident(n: bool) -> bool {
			n
		}
	`)
	require.NoError(t, err)
	require.Len(t, prog.Functions, 1)

	fn := prog.Functions[0]
	assert.Equal(t, "ident", fn.Name)
	assert.Equal(t, sourceir.NamedPrimitive{Name: sourceir.PrimBool}, fn.ReturnType)
	require.Len(t, fn.Params, 1)
	assert.Equal(t, "n", fn.Params[0].Name)
	assert.Equal(t, sourceir.Ident{Name: "n"}, fn.Body)
}

func TestParseProgramRecordAndStructLit(t *testing.T) {
	prog, err := ParseProgram("t", `
		record Pair {
			a: bool,
			b: bool,
		}

		fn swap(p: Pair) -> Pair {
			Pair { a: p.b, b: p.a }
		}
	`)
	require.NoError(t, err)

	def, ok := prog.Registry.Record("Pair")
	require.True(t, ok)
	require.Len(t, def.Fields, 2)
	assert.Equal(t, "a", def.Fields[0].Name)
	assert.Equal(t, sourceir.NamedPrimitive{Name: sourceir.PrimBool}, def.Fields[0].Type)

	fn := prog.Functions[0]
	lit, ok := fn.Body.(sourceir.StructLit)
	require.True(t, ok)
	assert.Equal(t, "Pair", lit.Name)
	require.Len(t, lit.Fields, 2)
	assert.Equal(t, sourceir.FieldAccess{Record: sourceir.Ident{Name: "p"}, Field: "b"}, lit.Fields[0].Value)
}

func TestParseProgramUnionAndMatch(t *testing.T) {
	prog, err := ParseProgram("t", `
		union Maybe {
			Some(bool),
			None,
		}

		fn unwrap(m: Maybe) -> bool {
			match m {
				Some(x) => x,
				None => false,
			}
		}
	`)
	require.NoError(t, err)

	def, ok := prog.Registry.Union("Maybe")
	require.True(t, ok)
	require.Len(t, def.Ctors, 2)
	assert.Equal(t, "Some", def.Ctors[0].Name)
	assert.Equal(t, sourceir.NamedPrimitive{Name: sourceir.PrimBool}, def.Ctors[0].Arg)
	assert.Nil(t, def.Ctors[1].Arg)

	fn := prog.Functions[0]
	m, ok := fn.Body.(sourceir.Match)
	require.True(t, ok)
	assert.Equal(t, sourceir.Ident{Name: "m"}, m.Scrutinee)
	require.Len(t, m.Cases, 2)
	assert.Equal(t, "Some", m.Cases[0].Ctor)
	assert.Equal(t, "x", m.Cases[0].Binder)
	assert.Equal(t, "None", m.Cases[1].Ctor)
	assert.Equal(t, "", m.Cases[1].Binder)
}

func TestParseProgramBlockAndLet(t *testing.T) {
	prog, err := ParseProgram("t", `
		fn pick(flag: bool) -> bool {
			let a = true;
			assert(a, "unreachable");
			if flag {
				a
			} else {
				return false;
			}
		}
	`)
	require.NoError(t, err)

	fn := prog.Functions[0]
	block, ok := fn.Body.(sourceir.Block)
	require.True(t, ok)
	require.Len(t, block.Stmts, 3)

	let, ok := block.Stmts[0].(sourceir.LetStmt)
	require.True(t, ok)
	assert.Equal(t, "a", let.Name)
	assert.Equal(t, sourceir.BoolLit{Value: true}, let.Init)

	assertStmt, ok := block.Stmts[1].(sourceir.AssertStmt)
	require.True(t, ok)
	assert.Equal(t, "unreachable", assertStmt.Message)

	tail, ok := block.Stmts[2].(sourceir.ExprStmt)
	require.True(t, ok)
	ifExpr, ok := tail.Value.(sourceir.If)
	require.True(t, ok)
	assert.Equal(t, sourceir.Ident{Name: "flag"}, ifExpr.Cond)
	elseBlock, ok := ifExpr.Else.(sourceir.Block)
	require.True(t, ok)
	require.Len(t, elseBlock.Stmts, 1)
	ret, ok := elseBlock.Stmts[0].(sourceir.ExprStmt).Value.(sourceir.EarlyReturn)
	require.True(t, ok)
	assert.Equal(t, sourceir.BoolLit{Value: false}, ret.Value)
}

func TestParseProgramVectorOpsAndCall(t *testing.T) {
	prog, err := ParseProgram("t", `
		fn reverse_bits(v: vector(8, dec, bit)) -> vector(8, dec, bit) {
			let hi = v[7:4];
			let lo = v[3:0];
			append(lo, hi)
		}

		fn count_set(v: vector(8, dec, bit)) -> int {
			ext::popcount(v)
		}
	`)
	require.NoError(t, err)

	rev := prog.Functions[0]
	vecType, ok := rev.Params[0].Type.(sourceir.Vector)
	require.True(t, ok)
	assert.Equal(t, sourceir.Decreasing, vecType.Dir)
	assert.Equal(t, sourceir.NumLit{Value: 8}, vecType.Len)
	assert.Nil(t, vecType.Elem)

	block := rev.Body.(sourceir.Block)
	hiLet := block.Stmts[0].(sourceir.LetStmt)
	subrange, ok := hiLet.Init.(sourceir.VectorSubrange)
	require.True(t, ok)
	assert.Equal(t, sourceir.Ident{Name: "v"}, subrange.Vector)

	count := prog.Functions[1]
	call, ok := count.Body.(sourceir.Call)
	require.True(t, ok)
	assert.Equal(t, "ext", call.Module)
	assert.Equal(t, "popcount", call.Func)
}

func TestParseProgramWidthAliasDesugarsToVector(t *testing.T) {
	prog, err := ParseProgram("t", `
		fn identity(v: bits32) -> bits32 {
			v
		}
	`)
	require.NoError(t, err)

	fn := prog.Functions[0]
	want := sourceir.Vector{Len: sourceir.NumLit{Value: 32}, Dir: sourceir.Decreasing}
	assert.Equal(t, want, fn.Params[0].Type)
	assert.Equal(t, want, fn.ReturnType)
}
