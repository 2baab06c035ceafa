package rewrite

import "archc/internal/targetir"

// HoistAllocations implements the Allocation Hoister (component G,
// spec.md §4.G). For a non-recursive function it walks the body and,
// for every heap-representable local's Declare, replaces the declare
// in place with a Reset (re-initializing an already-allocated slot),
// moves the Declare itself to the function's Prologue table, and moves
// every Clear of that local to the Epilogue table — collapsing
// multiple early-exit Clears of the same local (one of the shapes the
// IR Compiler can still produce before this pass runs, per its own
// documented gap) into the single epilogue release the hoisted slot
// now needs, since the slot now lives for the whole activation rather
// than a single textual scope.
//
// Recursive functions are skipped outright: hoisting would reuse one
// slot across nested activations of the same function, corrupting any
// activation still live on the call stack.
//
// Names are already unique within a function by the time this pass
// runs (internal/rewrite's unique-names pass is required to run first,
// per spec.md §5's ordering note), so no renaming is needed to keep a
// moved local distinct from anything already in Prologue/Epilogue.
func HoistAllocations(fn *targetir.Function) error {
	if fn.Recursive {
		return nil
	}

	h := &hoister{}
	fn.Body = h.walk(fn.Body)
	fn.Prologue = append(fn.Prologue, h.prologue...)
	fn.Epilogue = append(h.epilogue, fn.Epilogue...)
	return nil
}

type hoister struct {
	prologue []targetir.Instruction
	epilogue []targetir.Instruction
	hoisted  map[string]bool
}

func (h *hoister) walk(instrs []targetir.Instruction) []targetir.Instruction {
	if h.hoisted == nil {
		h.hoisted = map[string]bool{}
	}
	var out []targetir.Instruction
	for _, instr := range instrs {
		switch v := instr.(type) {
		case targetir.Declare:
			if !targetir.IsHeapRepresentable(v.Rep) {
				out = append(out, v)
				continue
			}
			h.prologue = append(h.prologue, targetir.Declare{Name: v.Name, Rep: v.Rep})
			h.hoisted[v.Name] = true
			out = append(out, targetir.Reset{Name: v.Name, Init: v.Init})
		case targetir.Clear:
			if h.hoisted[v.Name] {
				// Defer the single epilogue release; drop every
				// in-body occurrence, including duplicates left by an
				// early-exit path the IR Compiler clears more than
				// once.
				if !h.epilogueHas(v.Name) {
					h.epilogue = append(h.epilogue, v)
				}
				continue
			}
			out = append(out, v)
		case targetir.Block:
			out = append(out, targetir.Block{Label: v.Label, Instructions: h.walk(v.Instructions)})
		case targetir.TryBlock:
			out = append(out, targetir.TryBlock{Body: h.walk(v.Body), Handler: h.walk(v.Handler)})
		default:
			out = append(out, v)
		}
	}
	return out
}

func (h *hoister) epilogueHas(name string) bool {
	for _, instr := range h.epilogue {
		if c, ok := instr.(targetir.Clear); ok && c.Name == name {
			return true
		}
	}
	return false
}
