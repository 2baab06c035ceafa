package rewrite

import (
	"testing"

	"archc/internal/targetir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewriteReturnsStackCase(t *testing.T) {
	fn := &targetir.Function{
		Name:      "add32",
		ReturnRep: targetir.FBitsRep{Width: 32},
		Body: []targetir.Instruction{
			targetir.Initialize{Target: targetir.LReturnSlot{}, Value: targetir.RIdent{Name: "sum"}},
		},
	}
	require.NoError(t, RewriteReturns(fn))

	require.Len(t, fn.Prologue, 1)
	assert.Equal(t, targetir.Declare{Name: stackReturnSlot, Rep: targetir.FBitsRep{Width: 32}}, fn.Prologue[0])

	assert.Equal(t, targetir.Initialize{Target: targetir.LLocal{Name: stackReturnSlot}, Value: targetir.RIdent{Name: "sum"}}, fn.Body[0])
	assert.Equal(t, targetir.Goto{Label: exitLabel}, fn.Body[1])
	assert.Equal(t, targetir.Label{Name: exitLabel}, fn.Body[2])
	assert.Equal(t, targetir.Return{Slot: stackReturnSlot}, fn.Body[3])
}

func TestRewriteReturnsHeapCase(t *testing.T) {
	fn := &targetir.Function{
		Name:       "make_list",
		ReturnRep:  targetir.ListRep{Elem: targetir.BitRep{}},
		HeapReturn: true,
		Body: []targetir.Instruction{
			targetir.Call{Dest: targetir.LReturnSlot{}, Function: "make_list_of", Args: []targetir.RValue{targetir.RIdent{Name: "x"}}},
		},
	}
	require.NoError(t, RewriteReturns(fn))
	assert.Empty(t, fn.Prologue)

	want := targetir.LDeref{Base: targetir.LLocal{Name: heapReturnOut}}
	assert.Equal(t, targetir.Call{Dest: want, Function: "make_list_of", Args: []targetir.RValue{targetir.RIdent{Name: "x"}}}, fn.Body[0])
	assert.Equal(t, targetir.Goto{Label: exitLabel}, fn.Body[1])
	assert.Equal(t, targetir.End{Label: exitLabel}, fn.Body[2])
}

// A Throw's bare Return{} (compileThrow's early-exit marker) becomes a
// jump to the shared exit, with no write to the return destination.
func TestRewriteReturnsThrowMarkerBecomesGoto(t *testing.T) {
	fn := &targetir.Function{
		Name:      "may_throw",
		ReturnRep: targetir.BoolRep{},
		Body: []targetir.Instruction{
			targetir.Assign{Target: targetir.LCurrentException{}, Value: targetir.RIdent{Name: "e"}},
			targetir.Assign{Target: targetir.LExceptionPending{}, Value: targetir.RLit{Text: "true", Rep: targetir.BoolRep{}}},
			targetir.Return{},
			targetir.Initialize{Target: targetir.LReturnSlot{}, Value: targetir.RLit{Text: "true", Rep: targetir.BoolRep{}}},
		},
	}
	require.NoError(t, RewriteReturns(fn))

	assert.Equal(t, targetir.Goto{Label: exitLabel}, fn.Body[2])
	assert.Equal(t, targetir.Initialize{Target: targetir.LLocal{Name: stackReturnSlot}, Value: targetir.RLit{Text: "true", Rep: targetir.BoolRep{}}}, fn.Body[3])
}

func TestRewriteReturnsLeavesNonReturnInstructionsAlone(t *testing.T) {
	fn := &targetir.Function{
		Name:      "noop",
		ReturnRep: targetir.UnitRep{},
		Body: []targetir.Instruction{
			targetir.Declare{Name: "x", Rep: targetir.FIntRep{Width: 64}},
			targetir.Initialize{Target: targetir.LLocal{Name: "x"}, Value: targetir.RLit{Text: "0", Rep: targetir.FIntRep{Width: 64}}},
		},
	}
	require.NoError(t, RewriteReturns(fn))
	assert.Equal(t, targetir.Declare{Name: "x", Rep: targetir.FIntRep{Width: 64}}, fn.Body[0])
	assert.Equal(t, targetir.Initialize{Target: targetir.LLocal{Name: "x"}, Value: targetir.RLit{Text: "0", Rep: targetir.FIntRep{Width: 64}}}, fn.Body[1])
}
