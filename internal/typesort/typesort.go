// Package typesort implements the Type-Definition Topological Sort
// (component I, spec.md §4.I): an iterative depth-first order over the
// directed graph where an edge a -> b means "a is used inside the
// definition of b", so that the Emitter never prints a type definition
// referencing an id it has not already declared. Grounded on the
// teacher's internal/semantic/symbols.go adjacency-map-by-name registry
// pattern, per spec.md §9's design note to use an iterative DFS rather
// than a stack-recursive one.
package typesort

import (
	"sort"

	"archc/internal/errors"
	"archc/internal/targetir"
)

// Sort returns defs reordered so that every type id a given definition
// uses has already appeared earlier in the returned slice. Ties (two
// definitions with no ordering constraint between them) are broken by
// original insertion order. A cycle among the definitions is a fatal
// TypeCycleError.
func Sort(defs []targetir.TypeDef) ([]targetir.TypeDef, error) {
	byID := make(map[string]targetir.TypeDef, len(defs))
	order := make(map[string]int, len(defs))
	for i, d := range defs {
		byID[d.ID] = d
		order[d.ID] = i
	}

	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)
	state := make(map[string]int, len(defs))
	var out []targetir.TypeDef

	// visitOrder fixes the order candidate roots are tried in, so the
	// result is deterministic across runs of the same input.
	ids := make([]string, len(defs))
	for i, d := range defs {
		ids[i] = d.ID
	}
	sort.Slice(ids, func(i, j int) bool { return order[ids[i]] < order[ids[j]] })

	for _, root := range ids {
		if state[root] == visited {
			continue
		}
		if err := visit(root, byID, order, state, &out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// visit runs an iterative (explicit-stack) post-order DFS rooted at
// start, appending each definition to out the first time all of its
// uses have been fully processed. Using an explicit work-list rather
// than native recursion follows spec.md §9's guidance for IR traversals
// of unbounded depth.
func visit(start string, byID map[string]targetir.TypeDef, order map[string]int, state map[string]int, out *[]targetir.TypeDef) error {
	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)

	type frame struct {
		id      string
		usesIdx int
	}

	if state[start] == visited {
		return nil
	}
	stack := []frame{{id: start}}
	state[start] = visiting
	path := []string{start}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		def, known := byID[top.id]
		if !known || top.usesIdx >= len(sortedUses(def, order)) {
			// All uses processed (or this id has no recorded
			// definition, e.g. a built-in referenced by id only):
			// finalize it.
			if known {
				*out = append(*out, def)
			}
			state[top.id] = visited
			stack = stack[:len(stack)-1]
			path = path[:len(path)-1]
			continue
		}

		uses := sortedUses(def, order)
		next := uses[top.usesIdx]
		top.usesIdx++

		switch state[next] {
		case unvisited:
			state[next] = visiting
			stack = append(stack, frame{id: next})
			path = append(path, next)
		case visiting:
			return errors.TypeCycleError(append(append([]string{}, path...), next))
		case visited:
			// already finalized, nothing to do
		}
	}
	return nil
}

// sortedUses returns def.Uses in a deterministic order (by original
// definition-table insertion position, falling back to lexical order
// for ids outside the table) so that tie-breaking is by insertion order
// as spec.md §4.I requires.
func sortedUses(def targetir.TypeDef, order map[string]int) []string {
	uses := append([]string{}, def.Uses...)
	sort.Slice(uses, func(i, j int) bool {
		oi, iok := order[uses[i]]
		oj, jok := order[uses[j]]
		if iok && jok {
			return oi < oj
		}
		if iok != jok {
			return iok
		}
		return uses[i] < uses[j]
	})
	return uses
}
