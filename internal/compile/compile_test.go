// SPDX-License-Identifier: Apache-2.0
package compile

import (
	"testing"

	"archc/internal/primops"
	"archc/internal/sourceir"
	"archc/internal/targetir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileIdentAtomInitializesDest(t *testing.T) {
	instrs, err := Compile(sourceir.Ident{Name: "x"}, nil, targetir.LReturnSlot{})
	require.NoError(t, err)
	require.Len(t, instrs, 1)
	assert.Equal(t, targetir.Initialize{Target: targetir.LReturnSlot{}, Value: targetir.RIdent{Name: "x"}}, instrs[0])
}

func TestCompileInlineCallBinaryWithMask(t *testing.T) {
	inline := primops.InlineCall{
		Helper:   "+",
		Operands: []sourceir.Expr{sourceir.Ident{Name: "x"}, sourceir.Ident{Name: "y"}},
		Rep:      targetir.FBitsRep{Width: 32},
		Mask:     32,
	}
	instrs, err := Compile(inline, nil, targetir.LReturnSlot{})
	require.NoError(t, err)
	require.Len(t, instrs, 1)
	init, ok := instrs[0].(targetir.Initialize)
	require.True(t, ok)
	raw, ok := init.Value.(targetir.RRaw)
	require.True(t, ok)
	assert.Contains(t, raw.Text, "+")
	assert.Contains(t, raw.Text, "4294967295ULL")
}

func TestCompileLetDeclaresAndClearsHeapLocal(t *testing.T) {
	let := sourceir.Let{
		Name: "xs",
		Type: sourceir.List{Elem: sourceir.NamedPrimitive{Name: sourceir.PrimBit}},
		Init: sourceir.Ident{Name: "src"},
		Body: sourceir.Ident{Name: "xs"},
	}
	reps := map[string]targetir.Rep{"xs": targetir.ListRep{Elem: targetir.BitRep{}}}
	instrs, err := Compile(let, reps, targetir.LReturnSlot{})
	require.NoError(t, err)

	require.IsType(t, targetir.Declare{}, instrs[0])
	assert.Equal(t, "xs", instrs[0].(targetir.Declare).Name)

	last := instrs[len(instrs)-1]
	clear, ok := last.(targetir.Clear)
	require.True(t, ok, "expected a trailing Clear for the heap-represented local, got %T", last)
	assert.Equal(t, "xs", clear.Name)
}

func TestCompileIfBranchesToBothArms(t *testing.T) {
	ifExpr := sourceir.If{
		Cond: sourceir.Ident{Name: "p"},
		Then: sourceir.Ident{Name: "a"},
		Else: sourceir.Ident{Name: "b"},
	}
	instrs, err := Compile(ifExpr, nil, targetir.LReturnSlot{})
	require.NoError(t, err)

	branch, ok := instrs[0].(targetir.Branch)
	require.True(t, ok)
	assert.Equal(t, targetir.RIdent{Name: "p"}, branch.Cond)

	var sawThenInit, sawElseInit bool
	for _, in := range instrs {
		if init, ok := in.(targetir.Initialize); ok {
			if init.Value == (targetir.RIdent{Name: "a"}) {
				sawThenInit = true
			}
			if init.Value == (targetir.RIdent{Name: "b"}) {
				sawElseInit = true
			}
		}
	}
	assert.True(t, sawThenInit)
	assert.True(t, sawElseInit)
}

func TestCompileAssertEmitsMatchFailureGuard(t *testing.T) {
	block := sourceir.Block{Stmts: []sourceir.Stmt{
		sourceir.AssertStmt{Cond: sourceir.Ident{Name: "ok"}, Message: "bounds check"},
		sourceir.ExprStmt{Value: sourceir.Ident{Name: "ok"}},
	}}
	instrs, err := Compile(block, nil, targetir.LReturnSlot{})
	require.NoError(t, err)

	var sawMatchFailure bool
	for _, in := range instrs {
		if _, ok := in.(targetir.MatchFailure); ok {
			sawMatchFailure = true
		}
	}
	assert.True(t, sawMatchFailure)
}

func TestCompileThrowSetsExceptionState(t *testing.T) {
	instrs, err := Compile(sourceir.Throw{Value: sourceir.Ident{Name: "e"}}, nil, targetir.LReturnSlot{})
	require.NoError(t, err)
	assert.Equal(t, targetir.Assign{Target: targetir.LCurrentException{}, Value: targetir.RIdent{Name: "e"}}, instrs[0])
	assert.Equal(t, targetir.Assign{Target: targetir.LExceptionPending{}, Value: targetir.RLit{Text: "true", Rep: targetir.BoolRep{}}}, instrs[1])
	assert.IsType(t, targetir.Return{}, instrs[2])
}

// A non-atomic argument reaching Compile (a nested Call where only an
// Ident/literal is allowed) means an earlier pass failed to normalize the
// tree; Compile must report this rather than silently mis-lowering it.
func TestCompileNonAtomicCallArgumentIsAnError(t *testing.T) {
	call := sourceir.Call{Func: "add32", Args: []sourceir.Expr{
		sourceir.Ident{Name: "x"},
		sourceir.Call{Func: "add32", Args: []sourceir.Expr{sourceir.Ident{Name: "y"}, sourceir.Ident{Name: "z"}}},
	}}
	_, err := Compile(call, nil, targetir.LReturnSlot{})
	require.Error(t, err)
}
