// Package pipeline orchestrates components A through J over a whole
// checked source-IR program: lower every named type and function
// signature (A), normalize and analyze each function body (B, C),
// compile it to target-IR (D), rewrite its returns (E), specialize
// polymorphic variants program-wide (F), hoist allocations and run the
// peephole passes per function (G, H), sort type definitions (I), and
// emit the result (J). Grounded on the teacher's cmd/kanso-cli pipeline
// function, which strings the same kind of fixed pass sequence together
// over a whole checked module.
package pipeline

import (
	"fmt"
	"sort"

	"archc/internal/compile"
	"archc/internal/emit"
	"archc/internal/externs"
	"archc/internal/lower"
	"archc/internal/normalize"
	"archc/internal/primops"
	"archc/internal/rewrite"
	"archc/internal/sourceir"
	"archc/internal/targetir"
	"archc/internal/typesort"
)

// Options carries the recognized configuration keys from spec.md §6.
type Options struct {
	OptimizePrimops          bool
	OptimizeHoistAllocations bool
	OptimizeAlias            bool
	OptimizeExperimental     bool
	Static                   bool
	NoMain                   bool
	NoRTS                    bool
	Prefix                   string
	ExtraParams              []string
	ExtraArguments           []string
}

func (o Options) emitConfig() emit.Config {
	return emit.Config{
		OptimizePrimops:          o.OptimizePrimops,
		OptimizeHoistAllocations: o.OptimizeHoistAllocations,
		OptimizeAlias:            o.OptimizeAlias,
		OptimizeExperimental:     o.OptimizeExperimental,
		Static:                   o.Static,
		NoMain:                   o.NoMain,
		NoRTS:                    o.NoRTS,
		Prefix:                   o.Prefix,
		ExtraParams:              o.ExtraParams,
		ExtraArguments:           o.ExtraArguments,
	}
}

// TypeOf resolves the source type of a checked expression node; pipeline
// callers hand in the same oracle the external checker used to produce
// prog, re-exported here under the normalize package's name.
type TypeOf = normalize.TypeOf

// Compile runs the full pipeline over prog and returns the emitted
// systems-language text.
func Compile(prog *sourceir.Program, typeOf TypeOf, opts Options) (string, error) {
	env := sourceir.NewEnv(prog.Registry, sourceir.BoundProver{})
	externReg := externs.NewRegistry()

	target := &targetir.Program{HasException: prog.HasException}

	typeDefs, err := lowerTypeDefs(prog.Registry, env)
	if err != nil {
		return "", err
	}
	target.TypeDefs = typeDefs

	for _, fn := range prog.Functions {
		tfn, err := compileFunction(fn, env, externReg, typeOf, opts)
		if err != nil {
			return "", fmt.Errorf("function %q: %w", fn.Name, err)
		}
		if err := rewrite.RewriteReturns(tfn); err != nil {
			return "", fmt.Errorf("function %q: %w", fn.Name, err)
		}
		target.Functions = append(target.Functions, tfn)
	}

	if err := rewrite.SpecializeVariants(target, prog.Registry); err != nil {
		return "", err
	}

	for _, tfn := range target.Functions {
		// Unique-names must run before hoisting regardless of the
		// optimize_alias toggle: the hoister relies on every declare in a
		// function already being uniquely named (spec.md §5's ordering
		// note), and it does no renaming of its own.
		rewrite.UniqueNames(tfn)

		if opts.OptimizeHoistAllocations {
			if err := rewrite.HoistAllocations(tfn); err != nil {
				return "", fmt.Errorf("function %q: %w", tfn.Name, err)
			}
		}

		rewrite.RunPeepholes(tfn, opts.OptimizeAlias, opts.OptimizeExperimental)
	}

	sorted, err := typesort.Sort(target.TypeDefs)
	if err != nil {
		return "", err
	}
	target.TypeDefs = sorted

	return emit.Emit(target, opts.emitConfig())
}

// compileFunction lowers fn's signature and runs the normalizer,
// primitive analyzer, and IR compiler over its body, producing an
// unrewritten target-IR function (the Return Rewriter is applied by the
// caller once HeapReturn is known).
func compileFunction(fn *sourceir.Function, env *sourceir.Env, externReg *externs.Registry, typeOf TypeOf, opts Options) (*targetir.Function, error) {
	returnRep, err := lower.Lower(fn.ReturnType, env)
	if err != nil {
		return nil, err
	}

	fnEnv := env.Extend()
	params := make([]targetir.Param, len(fn.Params))
	reps := map[string]targetir.Rep{}
	for i, p := range fn.Params {
		rep, err := lower.Lower(p.Type, env)
		if err != nil {
			return nil, err
		}
		params[i] = targetir.Param{Name: p.Name, Rep: rep}
		reps[p.Name] = rep
		fnEnv.BindLocal(p.Name, p.Type)
	}

	normalized, err := normalize.Normalize(fn.Body, fnEnv, typeOf)
	if err != nil {
		return nil, err
	}
	for name, rep := range compile.RepsFromAnnotations(normalized.Annotations) {
		reps[name] = rep
	}

	repOf := func(e sourceir.Expr) (targetir.Rep, bool) {
		id, ok := e.(sourceir.Ident)
		if !ok {
			return nil, false
		}
		r, ok := reps[id.Name]
		return r, ok
	}
	analyzed := primops.Analyze(normalized.Body, opts.OptimizePrimops, repOf, externReg)

	body, err := compile.Compile(analyzed, reps, targetir.LReturnSlot{})
	if err != nil {
		return nil, err
	}

	return &targetir.Function{
		Name:       fn.Name,
		Params:     params,
		ReturnRep:  returnRep,
		HeapReturn: targetir.IsHeapRepresentable(returnRep),
		Recursive:  fn.Recursive,
		Body:       body,
	}, nil
}

// lowerTypeDefs lowers every record/union/enum in registry to its target
// representation and records the other type ids each definition
// mentions, for internal/typesort to order later. Iteration is sorted by
// name so that repeated runs over the same registry produce the same
// unsorted-order input to typesort (tie-breaking by insertion order is
// only meaningful when insertion order is itself deterministic).
func lowerTypeDefs(registry *sourceir.Registry, env *sourceir.Env) ([]targetir.TypeDef, error) {
	var names []string
	for _, d := range registry.Records() {
		names = append(names, d.Name)
	}
	for _, d := range registry.Unions() {
		names = append(names, d.Name)
	}
	for _, d := range registry.Enums() {
		names = append(names, d.Name)
	}
	sort.Strings(names)

	defs := make([]targetir.TypeDef, 0, len(names))
	for _, name := range names {
		rep, err := lower.Lower(sourceir.Named{Name: name}, env)
		if err != nil {
			return nil, err
		}
		defs = append(defs, targetir.TypeDef{ID: name, Rep: rep, Uses: usesOf(registry, name)})
	}
	return defs, nil
}

// usesOf lists the other named types directly mentioned by name's
// definition, used as the edge set for the type-definition topological
// sort (spec.md §4.I: "a -> b means a is used inside the definition of
// b").
func usesOf(registry *sourceir.Registry, name string) []string {
	var out []string
	add := func(t sourceir.Type) {
		for _, n := range namedTypesIn(t) {
			out = append(out, n)
		}
	}
	if def, ok := registry.Record(name); ok {
		for _, f := range def.Fields {
			add(f.Type)
		}
	}
	if def, ok := registry.Union(name); ok {
		for _, c := range def.Ctors {
			if c.Arg != nil {
				add(c.Arg)
			}
		}
	}
	return out
}

// namedTypesIn collects every Named type reachable from t, recursing
// through the structural type formers (tuple, list, vector, register)
// that can carry one.
func namedTypesIn(t sourceir.Type) []string {
	switch v := t.(type) {
	case sourceir.Named:
		return []string{v.Name}
	case sourceir.Tuple:
		var out []string
		for _, e := range v.Elems {
			out = append(out, namedTypesIn(e)...)
		}
		return out
	case sourceir.List:
		return namedTypesIn(v.Elem)
	case sourceir.Vector:
		if v.Elem == nil {
			return nil
		}
		return namedTypesIn(v.Elem)
	case sourceir.Register:
		return namedTypesIn(v.Elem)
	default:
		return nil
	}
}
