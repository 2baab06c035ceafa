package rewrite

import (
	"fmt"

	"archc/internal/errors"
	"archc/internal/targetir"
)

// exitLabel is the single function-exit label every rewritten terminal
// jumps to (spec.md §4.E). It is local to a function's rewritten body, so
// a fixed name is safe: no two functions' instruction lists are ever
// concatenated before the emitter gives each its own textual scope.
const exitLabel = "__exit"

// stackReturnSlot is the named local the stack-return variant introduces
// in place of the abstract LReturnSlot{} placeholder the IR Compiler
// emits.
const stackReturnSlot = "__ret"

// heapReturnOut is the name of the caller-supplied out-pointer parameter
// a heap-return function's terminal copies into; internal/emit declares
// that parameter under the same name.
const heapReturnOut = "zretval_ptr"

// shapeName is a fmt.Stringer wrapper for the %T of an instruction that
// reached one of these passes in an unrecognized shape.
type shapeName string

func (s shapeName) String() string { return string(s) }

// RewriteReturns implements the Return Rewriter (component E): it
// replaces every terminal write to the abstract LReturnSlot{} the IR
// Compiler leaves behind with a write to a concrete destination — a named
// local for a stack-representable return, or a copy through the caller's
// out-pointer for a heap-representable one — followed by a jump to the
// single function-exit label, and appends that label plus the function's
// final Return (or End, for the heap-return form) to the body. The bare
// Return{} the IR Compiler emits for a Throw (compileThrow's simplified
// early-exit marker) is rewritten the same way, minus any value write,
// since the process-wide exception-pending flag governs what the caller
// does next, not the return slot's contents.
func RewriteReturns(fn *targetir.Function) error {
	out, err := rewriteTerminals(fn.Body, fn.HeapReturn)
	if err != nil {
		return err
	}

	if !fn.HeapReturn {
		fn.Prologue = append(fn.Prologue, targetir.Declare{Name: stackReturnSlot, Rep: fn.ReturnRep})
		out = append(out, targetir.Label{Name: exitLabel})
		out = append(out, targetir.Return{Slot: stackReturnSlot})
	} else {
		out = append(out, targetir.End{Label: exitLabel})
	}

	fn.Body = out
	return nil
}

func destSlot(heapReturn bool) targetir.LValue {
	if heapReturn {
		return targetir.LDeref{Base: targetir.LLocal{Name: heapReturnOut}}
	}
	return targetir.LLocal{Name: stackReturnSlot}
}

// rewriteTerminals walks instrs, recursing into nested Block/TryBlock
// regions (none are produced by Compile today, but a future pass may
// introduce them), expanding every terminal write or early-exit marker in
// place.
func rewriteTerminals(instrs []targetir.Instruction, heapReturn bool) ([]targetir.Instruction, error) {
	var out []targetir.Instruction
	for _, instr := range instrs {
		expanded, err := rewriteTerminal(instr, heapReturn)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
	}
	return out, nil
}

func rewriteTerminal(instr targetir.Instruction, heapReturn bool) ([]targetir.Instruction, error) {
	dest := destSlot(heapReturn)
	switch v := instr.(type) {
	case targetir.Initialize:
		if v.Target == (targetir.LReturnSlot{}) {
			return []targetir.Instruction{
				targetir.Initialize{Target: dest, Value: v.Value},
				targetir.Goto{Label: exitLabel},
			}, nil
		}
		return []targetir.Instruction{v}, nil
	case targetir.Assign:
		if v.Target == (targetir.LReturnSlot{}) {
			return []targetir.Instruction{
				targetir.Assign{Target: dest, Value: v.Value},
				targetir.Goto{Label: exitLabel},
			}, nil
		}
		return []targetir.Instruction{v}, nil
	case targetir.Call:
		if v.Dest == (targetir.LReturnSlot{}) {
			return []targetir.Instruction{
				targetir.Call{Dest: dest, Function: v.Function, Args: v.Args},
				targetir.Goto{Label: exitLabel},
			}, nil
		}
		return []targetir.Instruction{v}, nil
	case targetir.Return:
		// compileThrow's simplified early-exit marker: jump to the shared
		// exit without touching the return destination.
		return []targetir.Instruction{targetir.Goto{Label: exitLabel}}, nil
	case targetir.Block:
		inner, err := rewriteTerminals(v.Instructions, heapReturn)
		if err != nil {
			return nil, err
		}
		return []targetir.Instruction{targetir.Block{Label: v.Label, Instructions: inner}}, nil
	case targetir.TryBlock:
		body, err := rewriteTerminals(v.Body, heapReturn)
		if err != nil {
			return nil, err
		}
		handler, err := rewriteTerminals(v.Handler, heapReturn)
		if err != nil {
			return nil, err
		}
		return []targetir.Instruction{targetir.TryBlock{Body: body, Handler: handler}}, nil
	case targetir.Declare, targetir.Branch, targetir.Goto, targetir.JumpIf,
		targetir.Clear, targetir.Reset, targetir.Alias, targetir.MatchFailure,
		targetir.Comment, targetir.RawText, targetir.Label:
		return []targetir.Instruction{v}, nil
	case targetir.End:
		return nil, errors.RewriterInvariantError("return-rewriter", shapeName(fmt.Sprintf("%T", v)))
	default:
		return nil, errors.RewriterInvariantError("return-rewriter", shapeName(fmt.Sprintf("%T", v)))
	}
}
