package rewrite

import (
	"testing"

	"archc/internal/targetir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S6 from spec.md §8: a non-recursive function with two heap-represented
// locals must produce a prologue with two creates and an epilogue with
// two kills, with every mid-body declare replaced by a reset.
func TestHoistAllocationsProducesPrologueAndEpilogue(t *testing.T) {
	fn := &targetir.Function{
		Name: "build",
		Body: []targetir.Instruction{
			targetir.Declare{Name: "acc", Rep: targetir.LIntRep{}},
			targetir.Initialize{Target: targetir.LLocal{Name: "acc"}, Value: targetir.RLit{Text: "0", Rep: targetir.LIntRep{}}},
			targetir.Declare{Name: "buf", Rep: targetir.LBitsRep{}},
			targetir.Clear{Name: "acc"},
			targetir.Clear{Name: "buf"},
		},
	}

	require.NoError(t, HoistAllocations(fn))

	require.Len(t, fn.Prologue, 2)
	assert.Equal(t, targetir.Declare{Name: "acc", Rep: targetir.LIntRep{}}, fn.Prologue[0])
	assert.Equal(t, targetir.Declare{Name: "buf", Rep: targetir.LBitsRep{}}, fn.Prologue[1])

	require.Len(t, fn.Epilogue, 2)
	assert.Equal(t, targetir.Clear{Name: "acc"}, fn.Epilogue[0])
	assert.Equal(t, targetir.Clear{Name: "buf"}, fn.Epilogue[1])

	assert.Equal(t, targetir.Reset{Name: "acc"}, fn.Body[0])
	assert.Equal(t, targetir.Reset{Name: "buf"}, fn.Body[2])
	for _, instr := range fn.Body {
		_, isDeclare := instr.(targetir.Declare)
		assert.False(t, isDeclare)
		_, isClear := instr.(targetir.Clear)
		assert.False(t, isClear)
	}
}

// Recursive functions must be skipped entirely: hoisting would reuse a
// slot across nested activations.
func TestHoistAllocationsSkipsRecursiveFunctions(t *testing.T) {
	fn := &targetir.Function{
		Name:      "loop",
		Recursive: true,
		Body: []targetir.Instruction{
			targetir.Declare{Name: "acc", Rep: targetir.LIntRep{}},
			targetir.Clear{Name: "acc"},
		},
	}
	require.NoError(t, HoistAllocations(fn))
	assert.Empty(t, fn.Prologue)
	assert.Empty(t, fn.Epilogue)
	assert.Equal(t, targetir.Declare{Name: "acc", Rep: targetir.LIntRep{}}, fn.Body[0])
}

// Duplicate in-body clears of the same hoisted local (an early-exit
// path the IR Compiler clears on more than once) collapse to a single
// epilogue release.
func TestHoistAllocationsCollapsesDuplicateClears(t *testing.T) {
	fn := &targetir.Function{
		Name: "maybe_early",
		Body: []targetir.Instruction{
			targetir.Declare{Name: "acc", Rep: targetir.LIntRep{}},
			targetir.Block{Label: "then", Instructions: []targetir.Instruction{
				targetir.Clear{Name: "acc"},
			}},
			targetir.Clear{Name: "acc"},
		},
	}
	require.NoError(t, HoistAllocations(fn))
	require.Len(t, fn.Epilogue, 1)
	assert.Equal(t, targetir.Clear{Name: "acc"}, fn.Epilogue[0])
}
