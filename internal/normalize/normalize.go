// Package normalize implements the Expression Normalizer (spec.md §4.B):
// it rewrites a source-IR expression tree so that every subexpression
// occupying a primitive-call argument, branch condition, or field/vector
// base position is either a literal, an identifier, or an
// already-inline fragment (spec.md's Undefined leaf). Compound
// subexpressions in those positions are lifted into synthetic
// let-bindings threaded immediately above their use, mirroring the
// teacher's SSA-stack bookkeeping in its IR builder: push a temporary,
// use it, pop it once its scope closes.
package normalize

import (
	"archc/internal/lower"
	"archc/internal/sourceir"
	"archc/internal/targetir"
	"fmt"
)

// TypeOf resolves the source type of an already-checked expression node.
// Normalization does not infer types itself — it is handed an oracle
// from whatever produced the checked source IR — but it does propagate
// and record representations for every synthetic binding it introduces.
type TypeOf func(e sourceir.Expr) sourceir.Type

// Annotation pairs a source type with its lowered target representation,
// recorded for every identifier the normalizer introduces so that later
// passes (the IR Compiler, in particular) never need to re-run the Type
// Lowerer over a name it already resolved.
type Annotation struct {
	Type sourceir.Type
	Rep  targetir.Rep
}

// Normalized is a function body after normalization: the rewritten,
// ANF-shaped expression tree plus the annotation table for every
// synthetic temporary the rewrite introduced.
type Normalized struct {
	Body        sourceir.Expr
	Annotations map[string]Annotation
}

// Error reports that normalization could not lower the type of some
// introduced temporary; it always wraps a *lower.Error.
type Error struct {
	Cause error
}

func (e *Error) Error() string { return fmt.Sprintf("normalize: %s", e.Cause) }
func (e *Error) Unwrap() error { return e.Cause }

type normalizer struct {
	typeOf      TypeOf
	annotations map[string]Annotation
	counter     int
}

// Normalize rewrites body into A-normal form under env, using typeOf to
// resolve the source type of any compound expression it lifts into a
// synthetic binding.
func Normalize(body sourceir.Expr, env *sourceir.Env, typeOf TypeOf) (*Normalized, error) {
	n := &normalizer{typeOf: typeOf, annotations: map[string]Annotation{}}
	out, err := n.normalize(body, env)
	if err != nil {
		return nil, err
	}
	return &Normalized{Body: out, Annotations: n.annotations}, nil
}

func (n *normalizer) fresh() string {
	n.counter++
	return fmt.Sprintf("%%t%d", n.counter)
}

type pendingBind struct {
	name string
	typ  sourceir.Type
	init sourceir.Expr
}

func wrapBinds(binds []pendingBind, body sourceir.Expr) sourceir.Expr {
	for i := len(binds) - 1; i >= 0; i-- {
		b := binds[i]
		body = sourceir.Let{Name: b.name, Type: b.typ, Init: b.init, Body: body}
	}
	return body
}

// isAtomic reports whether e is already a valid leaf under the
// normalizer's contract: literal, identifier, or an already-inline
// fragment (Undefined, whose representative value the Primitive Analyzer
// picks later).
func isAtomic(e sourceir.Expr) bool {
	switch e.(type) {
	case sourceir.UnitLit, sourceir.BoolLit, sourceir.IntLit, sourceir.BitsLit, sourceir.StringLit, sourceir.Ident, sourceir.Undefined:
		return true
	}
	return false
}

// atomizeOne normalizes e fully, then — if the result is not already
// atomic — lifts it into a fresh binding and returns the binding's
// identifier in its place.
func (n *normalizer) atomizeOne(e sourceir.Expr, env *sourceir.Env) (sourceir.Expr, *pendingBind, error) {
	ne, err := n.normalize(e, env)
	if err != nil {
		return nil, nil, err
	}
	if isAtomic(ne) {
		return ne, nil, nil
	}
	t := n.typeOf(e)
	rep, err := lower.Lower(t, env)
	if err != nil {
		return nil, nil, &Error{Cause: err}
	}
	name := n.fresh()
	n.annotations[name] = Annotation{Type: t, Rep: rep}
	return sourceir.Ident{Name: name}, &pendingBind{name: name, typ: t, init: ne}, nil
}

// atomizeList is atomizeOne applied, in order, to every element of es.
func (n *normalizer) atomizeList(es []sourceir.Expr, env *sourceir.Env) ([]sourceir.Expr, []pendingBind, error) {
	atoms := make([]sourceir.Expr, len(es))
	var binds []pendingBind
	for i, e := range es {
		a, b, err := n.atomizeOne(e, env)
		if err != nil {
			return nil, nil, err
		}
		atoms[i] = a
		if b != nil {
			binds = append(binds, *b)
		}
	}
	return atoms, binds, nil
}

func (n *normalizer) normalize(e sourceir.Expr, env *sourceir.Env) (sourceir.Expr, error) {
	switch v := e.(type) {
	case sourceir.UnitLit, sourceir.BoolLit, sourceir.IntLit, sourceir.BitsLit, sourceir.StringLit, sourceir.Ident, sourceir.Undefined:
		return v, nil

	case sourceir.Call:
		atoms, binds, err := n.atomizeList(v.Args, env)
		if err != nil {
			return nil, err
		}
		v.Args = atoms
		return wrapBinds(binds, v), nil

	case sourceir.If:
		cond, binds, err := n.atomizeOne(v.Cond, env)
		if err != nil {
			return nil, err
		}
		then, err := n.normalize(v.Then, env)
		if err != nil {
			return nil, err
		}
		els, err := n.normalize(v.Else, env)
		if err != nil {
			return nil, err
		}
		v.Cond, v.Then, v.Else = cond, then, els
		return wrapBinds(binds, v), nil

	case sourceir.Let:
		init, err := n.normalize(v.Init, env)
		if err != nil {
			return nil, err
		}
		child := env.Extend()
		child.BindLocal(v.Name, v.Type)
		rep, err := lower.Lower(v.Type, child)
		if err != nil {
			return nil, &Error{Cause: err}
		}
		n.annotations[v.Name] = Annotation{Type: v.Type, Rep: rep}
		body, err := n.normalize(v.Body, child)
		if err != nil {
			return nil, err
		}
		v.Init, v.Body = init, body
		return v, nil

	case sourceir.Block:
		stmts, err := n.normalizeStmts(v.Stmts, env)
		if err != nil {
			return nil, err
		}
		v.Stmts = stmts
		return v, nil

	case sourceir.EarlyReturn:
		val, binds, err := n.atomizeOne(v.Value, env)
		if err != nil {
			return nil, err
		}
		v.Value = val
		return wrapBinds(binds, v), nil

	case sourceir.Throw:
		val, binds, err := n.atomizeOne(v.Value, env)
		if err != nil {
			return nil, err
		}
		v.Value = val
		return wrapBinds(binds, v), nil

	case sourceir.Match:
		scrut, binds, err := n.atomizeOne(v.Scrutinee, env)
		if err != nil {
			return nil, err
		}
		scrutType := n.typeOf(v.Scrutinee)
		cases := make([]sourceir.MatchCase, len(v.Cases))
		for i, c := range v.Cases {
			child := env.Extend()
			if c.Binder != "" {
				if argT := n.ctorArgType(scrutType, c.Ctor, env); argT != nil {
					child.BindLocal(c.Binder, argT)
					rep, err := lower.Lower(argT, child)
					if err != nil {
						return nil, &Error{Cause: err}
					}
					n.annotations[c.Binder] = Annotation{Type: argT, Rep: rep}
				}
			}
			body, err := n.normalize(c.Body, child)
			if err != nil {
				return nil, err
			}
			cases[i] = sourceir.MatchCase{Ctor: c.Ctor, Binder: c.Binder, Body: body}
		}
		v.Scrutinee, v.Cases = scrut, cases
		return wrapBinds(binds, v), nil

	case sourceir.TupleExpr:
		atoms, binds, err := n.atomizeList(v.Elems, env)
		if err != nil {
			return nil, err
		}
		v.Elems = atoms
		return wrapBinds(binds, v), nil

	case sourceir.TupleProj:
		tup, binds, err := n.atomizeOne(v.Tuple, env)
		if err != nil {
			return nil, err
		}
		v.Tuple = tup
		return wrapBinds(binds, v), nil

	case sourceir.FieldAccess:
		rec, binds, err := n.atomizeOne(v.Record, env)
		if err != nil {
			return nil, err
		}
		v.Record = rec
		return wrapBinds(binds, v), nil

	case sourceir.StructLit:
		vals := make([]sourceir.Expr, len(v.Fields))
		for i, f := range v.Fields {
			vals[i] = f.Value
		}
		atoms, binds, err := n.atomizeList(vals, env)
		if err != nil {
			return nil, err
		}
		fields := make([]sourceir.FieldInit, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = sourceir.FieldInit{Name: f.Name, Value: atoms[i]}
		}
		v.Fields = fields
		return wrapBinds(binds, v), nil

	case sourceir.VectorAccess:
		parts, binds, err := n.atomizeList([]sourceir.Expr{v.Vector, v.Index}, env)
		if err != nil {
			return nil, err
		}
		v.Vector, v.Index = parts[0], parts[1]
		return wrapBinds(binds, v), nil

	case sourceir.VectorSubrange:
		parts, binds, err := n.atomizeList([]sourceir.Expr{v.Vector, v.Lo, v.Hi}, env)
		if err != nil {
			return nil, err
		}
		v.Vector, v.Lo, v.Hi = parts[0], parts[1], parts[2]
		return wrapBinds(binds, v), nil

	case sourceir.VectorUpdate:
		parts, binds, err := n.atomizeList([]sourceir.Expr{v.Vector, v.Lo, v.Hi, v.Value}, env)
		if err != nil {
			return nil, err
		}
		v.Vector, v.Lo, v.Hi, v.Value = parts[0], parts[1], parts[2], parts[3]
		return wrapBinds(binds, v), nil

	case sourceir.Replicate:
		parts, binds, err := n.atomizeList([]sourceir.Expr{v.Vector, v.Times}, env)
		if err != nil {
			return nil, err
		}
		v.Vector, v.Times = parts[0], parts[1]
		return wrapBinds(binds, v), nil

	case sourceir.Append:
		parts, binds, err := n.atomizeList([]sourceir.Expr{v.Left, v.Right}, env)
		if err != nil {
			return nil, err
		}
		v.Left, v.Right = parts[0], parts[1]
		return wrapBinds(binds, v), nil
	}

	return nil, fmt.Errorf("normalize: unrecognized expression node %T", e)
}

func (n *normalizer) normalizeStmts(stmts []sourceir.Stmt, env *sourceir.Env) ([]sourceir.Stmt, error) {
	out := make([]sourceir.Stmt, 0, len(stmts))
	cur := env
	for _, s := range stmts {
		switch v := s.(type) {
		case sourceir.LetStmt:
			init, err := n.normalize(v.Init, cur)
			if err != nil {
				return nil, err
			}
			cur = cur.Extend()
			cur.BindLocal(v.Name, v.Type)
			rep, err := lower.Lower(v.Type, cur)
			if err != nil {
				return nil, &Error{Cause: err}
			}
			n.annotations[v.Name] = Annotation{Type: v.Type, Rep: rep}
			out = append(out, sourceir.LetStmt{Name: v.Name, Type: v.Type, Init: init})

		case sourceir.AssertStmt:
			cond, binds, err := n.atomizeOne(v.Cond, cur)
			if err != nil {
				return nil, err
			}
			for _, b := range binds {
				out = append(out, sourceir.LetStmt{Name: b.name, Type: b.typ, Init: b.init})
			}
			out = append(out, sourceir.AssertStmt{Cond: cond, Message: v.Message})

		case sourceir.ExprStmt:
			val, err := n.normalize(v.Value, cur)
			if err != nil {
				return nil, err
			}
			out = append(out, sourceir.ExprStmt{Value: val})

		default:
			return nil, fmt.Errorf("normalize: unrecognized statement %T", s)
		}
	}
	return out, nil
}

// ctorArgType looks up the declared argument type of a union constructor
// given the scrutinee's (named) source type, returning nil when it
// cannot be resolved (e.g. the scrutinee's type is not itself a Named
// union — normalization simply skips binding a representation then, so
// the binder gets no annotation).
func (n *normalizer) ctorArgType(scrutType sourceir.Type, ctor string, env *sourceir.Env) sourceir.Type {
	named, ok := scrutType.(sourceir.Named)
	if !ok {
		return nil
	}
	def, ok := env.Registry.Union(named.Name)
	if !ok {
		return nil
	}
	for _, c := range def.Ctors {
		if c.Name == ctor {
			return c.Arg
		}
	}
	return nil
}
