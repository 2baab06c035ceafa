package rewrite

import "archc/internal/targetir"

// Pass is the small self-contained-transform shape the peephole family
// shares with the teacher's OptimizationPass (internal/ir/optimizations.go):
// a name, a one-line description, and an Apply that reports whether it
// changed anything so a driver can decide whether another pass over the
// same function is worth attempting.
type Pass interface {
	Name() string
	Description() string
	Apply(fn *targetir.Function) bool
}

// RemoveAliasPass implements the remove-alias peephole (spec.md §4.H):
// `create x; x = y; <mid, y untouched>; y = x; kill x` becomes `x -> y`
// throughout mid, deleting the bracketing create/kill and both copies.
type RemoveAliasPass struct{}

func (RemoveAliasPass) Name() string { return "remove-alias" }
func (RemoveAliasPass) Description() string {
	return "eliminate a create/copy-in/copy-out/kill bracket around an untouched alias"
}

func (p RemoveAliasPass) Apply(fn *targetir.Function) bool {
	out, changed := removeAliasOnce(fn.Body)
	fn.Body = out
	return changed
}

func removeAliasOnce(instrs []targetir.Instruction) ([]targetir.Instruction, bool) {
	for i := 0; i+1 < len(instrs); i++ {
		decl, ok := instrs[i].(targetir.Declare)
		if !ok {
			continue
		}
		assignIn, ok := instrs[i+1].(targetir.Assign)
		if !ok {
			continue
		}
		xName, ok := lvalueLocal(assignIn.Target)
		if !ok || xName != decl.Name {
			continue
		}
		yName, ok := rvalueLocal(assignIn.Value)
		if !ok {
			continue
		}

		for k := i + 3; k < len(instrs); k++ {
			clear, ok := instrs[k].(targetir.Clear)
			if !ok || clear.Name != decl.Name {
				continue
			}
			assignOut, ok := instrs[k-1].(targetir.Assign)
			if !ok {
				break
			}
			outName, ok := lvalueLocal(assignOut.Target)
			if !ok || outName != yName {
				break
			}
			srcName, ok := rvalueLocal(assignOut.Value)
			if !ok || srcName != decl.Name {
				break
			}

			mid := instrs[i+2 : k-1]
			if midReferences(mid, yName) {
				break
			}

			var out []targetir.Instruction
			out = append(out, instrs[:i]...)
			out = append(out, renameAll(mid, decl.Name, yName)...)
			out = append(out, instrs[k+1:]...)
			return out, true
		}
	}
	return instrs, false
}

// CombineVariablesPass implements the combine-variables peephole
// (spec.md §4.H): `create x; create y; <mid, x untouched>; x = y;
// kill y` becomes `y -> x` throughout mid, deleting the second create,
// the merge assign, and the kill.
type CombineVariablesPass struct{}

func (CombineVariablesPass) Name() string { return "combine-variables" }
func (CombineVariablesPass) Description() string {
	return "merge two locals whose live ranges never overlap into one"
}

func (p CombineVariablesPass) Apply(fn *targetir.Function) bool {
	out, changed := combineVariablesOnce(fn.Body)
	fn.Body = out
	return changed
}

func combineVariablesOnce(instrs []targetir.Instruction) ([]targetir.Instruction, bool) {
	for i := 0; i+1 < len(instrs); i++ {
		declX, ok := instrs[i].(targetir.Declare)
		if !ok {
			continue
		}
		declY, ok := instrs[i+1].(targetir.Declare)
		if !ok {
			continue
		}

		for k := i + 2; k+1 < len(instrs); k++ {
			clear, ok := instrs[k+1].(targetir.Clear)
			if !ok || clear.Name != declY.Name {
				continue
			}
			merge, ok := instrs[k].(targetir.Assign)
			if !ok {
				break
			}
			xName, ok := lvalueLocal(merge.Target)
			if !ok || xName != declX.Name {
				break
			}
			srcName, ok := rvalueLocal(merge.Value)
			if !ok || srcName != declY.Name {
				break
			}

			mid := instrs[i+2 : k]
			if midReferences(mid, declX.Name) {
				break
			}

			var out []targetir.Instruction
			out = append(out, instrs[:i]...)
			out = append(out, declX)
			out = append(out, renameAll(mid, declY.Name, declX.Name)...)
			out = append(out, instrs[k+2:]...)
			return out, true
		}
	}
	return instrs, false
}

// HoistAliasPass implements the experimental hoist-alias peephole
// (spec.md §4.H, §9 Open Questions): after a Reset of a local x, if the
// very next instruction is `y = x` and x is not referenced afterward, the
// copy becomes an Alias (no copy). x's representation is not checked: the
// rewrite applies after a Reset of any local, not only a struct-represented
// one. Gated behind optimize_experimental because it is not proven correct
// against every lifetime shape — specifically, it cannot see past a call
// whose arguments might capture x's address, so any call after the
// candidate copy declines the rewrite rather than risk an unproven
// aliasing.
type HoistAliasPass struct{}

func (HoistAliasPass) Name() string { return "hoist-alias" }
func (HoistAliasPass) Description() string {
	return "turn a copy-after-reset into a no-copy alias when the source is proven dead (experimental)"
}

func (p HoistAliasPass) Apply(fn *targetir.Function) bool {
	out, changed := hoistAliasOnce(fn.Body)
	fn.Body = out
	return changed
}

func hoistAliasOnce(instrs []targetir.Instruction) ([]targetir.Instruction, bool) {
	for i := 0; i+1 < len(instrs); i++ {
		reset, ok := instrs[i].(targetir.Reset)
		if !ok {
			continue
		}
		assign, ok := instrs[i+1].(targetir.Assign)
		if !ok {
			continue
		}
		srcName, ok := rvalueLocal(assign.Value)
		if !ok || srcName != reset.Name {
			continue
		}
		if containsCapturingCall(instrs[i+2:]) {
			continue
		}
		if instrsReference(instrs[i+2:], reset.Name) {
			continue
		}

		var out []targetir.Instruction
		out = append(out, instrs[:i+1]...)
		out = append(out, targetir.Alias{Target: assign.Target, Source: targetir.LLocal{Name: reset.Name}})
		out = append(out, instrs[i+2:]...)
		return out, true
	}
	return instrs, false
}

// containsCapturingCall reports whether instrs contains a Call, which
// might stash a pointer to one of its arguments somewhere this pass
// cannot see — the documented liveness gap that keeps hoist-alias
// experimental.
func containsCapturingCall(instrs []targetir.Instruction) bool {
	for _, instr := range instrs {
		switch v := instr.(type) {
		case targetir.Call:
			return true
		case targetir.Block:
			if containsCapturingCall(v.Instructions) {
				return true
			}
		case targetir.TryBlock:
			if containsCapturingCall(v.Body) || containsCapturingCall(v.Handler) {
				return true
			}
		}
	}
	return false
}

func midReferences(mid []targetir.Instruction, name string) bool {
	return instrsReference(mid, name)
}

func instrsReference(instrs []targetir.Instruction, name string) bool {
	for _, instr := range instrs {
		if referencesLocal(instr, name) {
			return true
		}
	}
	return false
}

// RunPeepholes applies the alias/combine/rename family to fn to a
// fixpoint (bounded to avoid an unbounded loop on a pass that keeps
// reporting progress against two adjacent patterns), honoring the
// spec.md §6 configuration toggles: optimize_alias gates unique-names/
// remove-alias/combine-variables, optimize_experimental additionally
// gates hoist-alias.
func RunPeepholes(fn *targetir.Function, optimizeAlias, optimizeExperimental bool) {
	if !optimizeAlias {
		return
	}
	UniqueNames(fn)

	passes := []Pass{RemoveAliasPass{}, CombineVariablesPass{}}
	if optimizeExperimental {
		passes = append(passes, HoistAliasPass{})
	}

	const maxRounds = 64
	for round := 0; round < maxRounds; round++ {
		changed := false
		for _, pass := range passes {
			if pass.Apply(fn) {
				changed = true
			}
		}
		if !changed {
			break
		}
	}
}
