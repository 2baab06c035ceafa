package rewrite

import (
	"fmt"

	"archc/internal/targetir"
)

// UniqueNames implements the unique-names peephole (component H,
// spec.md §4.H): it assigns a fresh identifier to each Declare whose
// name has already been seen earlier in the same function, renaming
// every subsequent reference until the shadowing Declare's matching
// Clear (for a heap-represented local) restores the outer binding, or,
// for a stack-represented local with no Clear to mark the end of its
// scope, for the remainder of the function — which is always correct
// because the IR Compiler only ever re-uses a name when the earlier
// binding's extent has already closed (a sibling LetStmt in the same
// block, or a nested Let whose body is exactly the remaining
// instructions).
//
// This must run before the Allocation Hoister (component G), per
// spec.md §5, since hoisting moves a Declare out of the scope its name
// was disambiguated against.
func UniqueNames(fn *targetir.Function) {
	u := &uniquer{active: map[string][]string{}, counters: map[string]int{}}
	fn.Body = u.walk(fn.Body)
}

type uniquer struct {
	// active maps an original source name to the stack of names
	// currently standing in for it, innermost last.
	active map[string][]string
	// counters assigns the next suffix for a given original name.
	counters map[string]int
}

func (u *uniquer) top(name string) string {
	stack := u.active[name]
	if len(stack) == 0 {
		return name
	}
	return stack[len(stack)-1]
}

func (u *uniquer) walk(instrs []targetir.Instruction) []targetir.Instruction {
	out := make([]targetir.Instruction, 0, len(instrs))
	for _, instr := range instrs {
		out = append(out, u.rewrite(instr))
	}
	return out
}

func (u *uniquer) rewrite(instr targetir.Instruction) targetir.Instruction {
	switch v := instr.(type) {
	case targetir.Declare:
		renamed := u.renameRValueOrNil(v.Init)
		fresh := v.Name
		if len(u.active[v.Name]) > 0 {
			u.counters[v.Name]++
			fresh = fmt.Sprintf("%s__%d", v.Name, u.counters[v.Name]+1)
		}
		u.active[v.Name] = append(u.active[v.Name], fresh)
		return targetir.Declare{Name: fresh, Rep: v.Rep, Init: renamed}
	case targetir.Clear:
		resolved := u.top(v.Name)
		if stack := u.active[v.Name]; len(stack) > 0 {
			u.active[v.Name] = stack[:len(stack)-1]
		}
		return targetir.Clear{Name: resolved}
	case targetir.Initialize:
		return targetir.Initialize{Target: u.renameLValue(v.Target), Value: u.renameRValue(v.Value)}
	case targetir.Assign:
		return targetir.Assign{Target: u.renameLValue(v.Target), Value: u.renameRValue(v.Value)}
	case targetir.Call:
		var dest targetir.LValue
		if v.Dest != nil {
			dest = u.renameLValue(v.Dest)
		}
		args := make([]targetir.RValue, len(v.Args))
		for i, a := range v.Args {
			args[i] = u.renameRValue(a)
		}
		return targetir.Call{Dest: dest, Function: v.Function, Args: args}
	case targetir.Branch:
		return targetir.Branch{Cond: u.renameRValue(v.Cond), ThenLabel: v.ThenLabel, ElseLabel: v.ElseLabel}
	case targetir.JumpIf:
		return targetir.JumpIf{Cond: u.renameRValue(v.Cond), Label: v.Label}
	case targetir.Reset:
		return targetir.Reset{Name: u.top(v.Name), Init: u.renameRValueOrNil(v.Init)}
	case targetir.Alias:
		return targetir.Alias{Target: u.renameLValue(v.Target), Source: u.renameLValue(v.Source)}
	case targetir.Return:
		if v.Slot == "" {
			return v
		}
		return targetir.Return{Slot: u.top(v.Slot)}
	case targetir.Block:
		return targetir.Block{Label: v.Label, Instructions: u.walk(v.Instructions)}
	case targetir.TryBlock:
		return targetir.TryBlock{Body: u.walk(v.Body), Handler: u.walk(v.Handler)}
	default:
		return instr
	}
}

func (u *uniquer) renameRValueOrNil(rv targetir.RValue) targetir.RValue {
	if rv == nil {
		return nil
	}
	return u.renameRValue(rv)
}

func (u *uniquer) renameLValue(lv targetir.LValue) targetir.LValue {
	switch v := lv.(type) {
	case targetir.LLocal:
		return targetir.LLocal{Name: u.top(v.Name)}
	case targetir.LField:
		return targetir.LField{Base: u.renameLValue(v.Base), Field: v.Field}
	case targetir.LTupleElem:
		return targetir.LTupleElem{Base: u.renameLValue(v.Base), Index: v.Index}
	case targetir.LDeref:
		return targetir.LDeref{Base: u.renameLValue(v.Base)}
	default:
		return lv
	}
}

func (u *uniquer) renameRValue(rv targetir.RValue) targetir.RValue {
	switch v := rv.(type) {
	case targetir.RIdent:
		return targetir.RIdent{Name: u.top(v.Name)}
	case targetir.RField:
		return targetir.RField{Base: u.renameRValue(v.Base), Field: v.Field}
	case targetir.RTupleElem:
		return targetir.RTupleElem{Base: u.renameRValue(v.Base), Index: v.Index}
	case targetir.RUnary:
		return targetir.RUnary{Op: v.Op, Arg: u.renameRValue(v.Arg), Rep: v.Rep}
	case targetir.RBinary:
		return targetir.RBinary{Op: v.Op, Left: u.renameRValue(v.Left), Right: u.renameRValue(v.Right), Rep: v.Rep}
	case targetir.RHelperCall:
		args := make([]targetir.RValue, len(v.Args))
		for i, a := range v.Args {
			args[i] = u.renameRValue(a)
		}
		return targetir.RHelperCall{Helper: v.Helper, Args: args, Rep: v.Rep}
	default:
		return rv
	}
}
