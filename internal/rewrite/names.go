// Package rewrite implements the post-compile rewriting passes E-H
// (spec.md §4.E-§4.H): the Return Rewriter, the Variant Specializer, the
// Allocation Hoister, and the alias/combine/rename peephole family. Each
// pass is its own file. The peephole passes are self-contained structs of
// the same shape as the teacher's OptimizationPass family in
// internal/ir/optimizations.go (a Name, a Description, and an Apply that
// reports whether it changed anything); the Return Rewriter, Variant
// Specializer, Allocation Hoister and unique-names pass are plain
// functions. All of them walk target-IR instruction lists
// instead of the teacher's basic-block CFG, since the lowering pipeline's
// target IR is already flat by the time these passes run.
package rewrite

import "archc/internal/targetir"

// renameLValue rewrites every occurrence of old with new inside lv,
// recursing through field/tuple/deref projections down to the leaf local.
func renameLValue(lv targetir.LValue, old, new string) targetir.LValue {
	switch v := lv.(type) {
	case targetir.LLocal:
		if v.Name == old {
			return targetir.LLocal{Name: new}
		}
		return v
	case targetir.LField:
		return targetir.LField{Base: renameLValue(v.Base, old, new), Field: v.Field}
	case targetir.LTupleElem:
		return targetir.LTupleElem{Base: renameLValue(v.Base, old, new), Index: v.Index}
	case targetir.LDeref:
		return targetir.LDeref{Base: renameLValue(v.Base, old, new)}
	default:
		return lv
	}
}

// renameRValue rewrites every occurrence of old with new inside rv. RRaw
// is left untouched: it is already-rendered text the Primitive Analyzer
// spliced in, not a structured reference these passes can safely rewrite.
func renameRValue(rv targetir.RValue, old, new string) targetir.RValue {
	switch v := rv.(type) {
	case targetir.RIdent:
		if v.Name == old {
			return targetir.RIdent{Name: new}
		}
		return v
	case targetir.RField:
		return targetir.RField{Base: renameRValue(v.Base, old, new), Field: v.Field}
	case targetir.RTupleElem:
		return targetir.RTupleElem{Base: renameRValue(v.Base, old, new), Index: v.Index}
	case targetir.RUnary:
		return targetir.RUnary{Op: v.Op, Arg: renameRValue(v.Arg, old, new), Rep: v.Rep}
	case targetir.RBinary:
		return targetir.RBinary{Op: v.Op, Left: renameRValue(v.Left, old, new), Right: renameRValue(v.Right, old, new), Rep: v.Rep}
	case targetir.RHelperCall:
		args := make([]targetir.RValue, len(v.Args))
		for i, a := range v.Args {
			args[i] = renameRValue(a, old, new)
		}
		return targetir.RHelperCall{Helper: v.Helper, Args: args, Rep: v.Rep}
	default:
		return rv
	}
}

// renameInstr rewrites every local reference named old to new within a
// single instruction, leaving control-flow-only instructions (Branch's
// labels, Goto, Label, MatchFailure, Comment) alone beyond their RValue
// operands.
func renameInstr(instr targetir.Instruction, old, new string) targetir.Instruction {
	switch v := instr.(type) {
	case targetir.Declare:
		name := v.Name
		if name == old {
			name = new
		}
		init := v.Init
		if init != nil {
			init = renameRValue(init, old, new)
		}
		return targetir.Declare{Name: name, Rep: v.Rep, Init: init}
	case targetir.Initialize:
		return targetir.Initialize{Target: renameLValue(v.Target, old, new), Value: renameRValue(v.Value, old, new)}
	case targetir.Assign:
		return targetir.Assign{Target: renameLValue(v.Target, old, new), Value: renameRValue(v.Value, old, new)}
	case targetir.Call:
		var dest targetir.LValue
		if v.Dest != nil {
			dest = renameLValue(v.Dest, old, new)
		}
		args := make([]targetir.RValue, len(v.Args))
		for i, a := range v.Args {
			args[i] = renameRValue(a, old, new)
		}
		return targetir.Call{Dest: dest, Function: v.Function, Args: args}
	case targetir.Branch:
		return targetir.Branch{Cond: renameRValue(v.Cond, old, new), ThenLabel: v.ThenLabel, ElseLabel: v.ElseLabel}
	case targetir.JumpIf:
		return targetir.JumpIf{Cond: renameRValue(v.Cond, old, new), Label: v.Label}
	case targetir.Clear:
		name := v.Name
		if name == old {
			name = new
		}
		return targetir.Clear{Name: name}
	case targetir.Reset:
		name := v.Name
		if name == old {
			name = new
		}
		init := v.Init
		if init != nil {
			init = renameRValue(init, old, new)
		}
		return targetir.Reset{Name: name, Init: init}
	case targetir.Alias:
		return targetir.Alias{Target: renameLValue(v.Target, old, new), Source: renameLValue(v.Source, old, new)}
	case targetir.Return:
		slot := v.Slot
		if slot == old {
			slot = new
		}
		return targetir.Return{Slot: slot}
	case targetir.Block:
		return targetir.Block{Label: v.Label, Instructions: renameAll(v.Instructions, old, new)}
	case targetir.TryBlock:
		return targetir.TryBlock{Body: renameAll(v.Body, old, new), Handler: renameAll(v.Handler, old, new)}
	default:
		return instr
	}
}

func renameAll(instrs []targetir.Instruction, old, new string) []targetir.Instruction {
	out := make([]targetir.Instruction, len(instrs))
	for i, instr := range instrs {
		out[i] = renameInstr(instr, old, new)
	}
	return out
}

// lvalueLocal reports the leaf local name addressed by lv, if any (false
// for a dereferenced pointer or a projection rooted in one).
func lvalueLocal(lv targetir.LValue) (string, bool) {
	switch v := lv.(type) {
	case targetir.LLocal:
		return v.Name, true
	case targetir.LField:
		return lvalueLocal(v.Base)
	case targetir.LTupleElem:
		return lvalueLocal(v.Base)
	default:
		return "", false
	}
}

// rvalueLocal reports the identifier name rv reads, if rv is exactly a bare
// Ident (not a projection or computed expression) — the shape the
// remove-alias/combine-variables patterns require to be sure no
// intervening computation is lost by the rewrite.
func rvalueLocal(rv targetir.RValue) (string, bool) {
	if id, ok := rv.(targetir.RIdent); ok {
		return id.Name, true
	}
	return "", false
}

// referencesLocal reports whether instr reads or writes name anywhere.
func referencesLocal(instr targetir.Instruction, name string) bool {
	names := map[string]bool{}
	collectInstrLocals(instr, names)
	return names[name]
}

func collectLValueLocals(lv targetir.LValue, out map[string]bool) {
	switch v := lv.(type) {
	case targetir.LLocal:
		out[v.Name] = true
	case targetir.LField:
		collectLValueLocals(v.Base, out)
	case targetir.LTupleElem:
		collectLValueLocals(v.Base, out)
	case targetir.LDeref:
		collectLValueLocals(v.Base, out)
	}
}

func collectRValueLocals(rv targetir.RValue, out map[string]bool) {
	switch v := rv.(type) {
	case targetir.RIdent:
		out[v.Name] = true
	case targetir.RField:
		collectRValueLocals(v.Base, out)
	case targetir.RTupleElem:
		collectRValueLocals(v.Base, out)
	case targetir.RUnary:
		collectRValueLocals(v.Arg, out)
	case targetir.RBinary:
		collectRValueLocals(v.Left, out)
		collectRValueLocals(v.Right, out)
	case targetir.RHelperCall:
		for _, a := range v.Args {
			collectRValueLocals(a, out)
		}
	}
}

// collectInstrLocals records every local name instr reads or writes.
func collectInstrLocals(instr targetir.Instruction, out map[string]bool) {
	switch v := instr.(type) {
	case targetir.Declare:
		out[v.Name] = true
		if v.Init != nil {
			collectRValueLocals(v.Init, out)
		}
	case targetir.Initialize:
		collectLValueLocals(v.Target, out)
		collectRValueLocals(v.Value, out)
	case targetir.Assign:
		collectLValueLocals(v.Target, out)
		collectRValueLocals(v.Value, out)
	case targetir.Call:
		if v.Dest != nil {
			collectLValueLocals(v.Dest, out)
		}
		for _, a := range v.Args {
			collectRValueLocals(a, out)
		}
	case targetir.Branch:
		collectRValueLocals(v.Cond, out)
	case targetir.JumpIf:
		collectRValueLocals(v.Cond, out)
	case targetir.Clear:
		out[v.Name] = true
	case targetir.Reset:
		out[v.Name] = true
		if v.Init != nil {
			collectRValueLocals(v.Init, out)
		}
	case targetir.Alias:
		collectLValueLocals(v.Target, out)
		collectLValueLocals(v.Source, out)
	case targetir.Return:
		if v.Slot != "" {
			out[v.Slot] = true
		}
	case targetir.Block:
		for _, i := range v.Instructions {
			collectInstrLocals(i, out)
		}
	case targetir.TryBlock:
		for _, i := range v.Body {
			collectInstrLocals(i, out)
		}
		for _, i := range v.Handler {
			collectInstrLocals(i, out)
		}
	}
}
