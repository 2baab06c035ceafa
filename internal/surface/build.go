package surface

import (
	"fmt"
	"strconv"

	"archc/internal/sourceir"
)

var primitiveNames = map[string]bool{
	sourceir.PrimBit:    true,
	sourceir.PrimBool:   true,
	sourceir.PrimInt:    true,
	sourceir.PrimNat:    true,
	sourceir.PrimUnit:   true,
	sourceir.PrimString: true,
	sourceir.PrimReal:   true,
}

// widthAliases are bitsN shorthands (bits8..bits256, mirroring the
// teacher's U8..U256 builtin-width constants) for the source algebra's
// spelled-out vector(n, dec, bit). Parser sugar only: these names are
// reserved and take priority over any identically-named record/union.
var widthAliases = map[string]int64{
	"bits8": 8, "bits16": 16, "bits32": 32, "bits64": 64,
	"bits128": 128, "bits256": 256,
}

// Build converts a parsed FileNode into a sourceir.Program. Every Named
// reference is taken on faith: Build performs no resolution beyond
// installing the declared records/unions/enums into the registry.
func Build(file *FileNode) (*sourceir.Program, error) {
	registry := sourceir.NewRegistry()
	prog := &sourceir.Program{Registry: registry}

	for _, item := range file.Items {
		switch {
		case item.Record != nil:
			def, err := buildRecord(item.Record)
			if err != nil {
				return nil, err
			}
			registry.AddRecord(def)
		case item.Union != nil:
			def, err := buildUnion(item.Union)
			if err != nil {
				return nil, err
			}
			registry.AddUnion(def)
		case item.Enum != nil:
			registry.AddEnum(&sourceir.EnumDef{Name: item.Enum.Name, Ctors: item.Enum.Ctors})
		case item.Func != nil:
			fn, err := buildFunc(item.Func)
			if err != nil {
				return nil, err
			}
			prog.Functions = append(prog.Functions, fn)
		}
	}
	return prog, nil
}

func buildRecord(n *RecordNode) (*sourceir.RecordDef, error) {
	def := &sourceir.RecordDef{Name: n.Name}
	for _, f := range n.Fields {
		t, err := buildType(f.Type)
		if err != nil {
			return nil, err
		}
		def.Fields = append(def.Fields, sourceir.Field{Name: f.Name, Type: t})
	}
	return def, nil
}

func buildUnion(n *UnionNode) (*sourceir.UnionDef, error) {
	def := &sourceir.UnionDef{Name: n.Name}
	for _, c := range n.Ctors {
		ctor := sourceir.Ctor{Name: c.Name}
		if c.Arg != nil {
			arg, err := buildType(c.Arg)
			if err != nil {
				return nil, err
			}
			ctor.Arg = arg
		}
		def.Ctors = append(def.Ctors, ctor)
	}
	return def, nil
}

func buildFunc(n *FuncNode) (*sourceir.Function, error) {
	fn := &sourceir.Function{Name: n.Name, Recursive: n.Recursive}
	for _, p := range n.Params {
		t, err := buildType(p.Type)
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, sourceir.Param{Name: p.Name, Type: t})
	}
	if n.Return != nil {
		t, err := buildType(n.Return)
		if err != nil {
			return nil, err
		}
		fn.ReturnType = t
	} else {
		fn.ReturnType = sourceir.NamedPrimitive{Name: sourceir.PrimUnit}
	}
	body, err := buildExpr(n.Body)
	if err != nil {
		return nil, err
	}
	fn.Body = body
	return fn, nil
}

func buildType(n *TypeNode) (sourceir.Type, error) {
	switch {
	case len(n.Tuple) == 1:
		return buildType(n.Tuple[0])
	case len(n.Tuple) > 1:
		elems := make([]sourceir.Type, len(n.Tuple))
		for i, t := range n.Tuple {
			b, err := buildType(t)
			if err != nil {
				return nil, err
			}
			elems[i] = b
		}
		return sourceir.Tuple{Elems: elems}, nil
	case n.List != nil:
		elem, err := buildType(n.List)
		if err != nil {
			return nil, err
		}
		return sourceir.List{Elem: elem}, nil
	case n.Vector != nil:
		return buildVector(n.Vector)
	case n.Register != nil:
		elem, err := buildType(n.Register)
		if err != nil {
			return nil, err
		}
		return sourceir.Register{Elem: elem}, nil
	case n.Name != "":
		if width, ok := widthAliases[n.Name]; ok {
			return sourceir.Vector{Len: sourceir.NumLit{Value: width}, Dir: sourceir.Decreasing}, nil
		}
		if primitiveNames[n.Name] {
			return sourceir.NamedPrimitive{Name: n.Name}, nil
		}
		return sourceir.Named{Name: n.Name}, nil
	default:
		return nil, fmt.Errorf("surface: empty type node")
	}
}

func buildVector(n *VectorTypeNode) (sourceir.Type, error) {
	length := buildNumExpr(n.Len)
	dir := sourceir.Increasing
	if n.Dir == "dec" {
		dir = sourceir.Decreasing
	}
	if n.Elem.Name == sourceir.PrimBit {
		return sourceir.Vector{Len: length, Dir: dir}, nil
	}
	elem, err := buildType(n.Elem)
	if err != nil {
		return nil, err
	}
	return sourceir.Vector{Len: length, Dir: dir, Elem: elem}, nil
}

func buildNumExpr(n *NumExprNode) sourceir.NumExpr {
	if n.Lit != nil {
		return sourceir.NumLit{Value: *n.Lit}
	}
	return sourceir.NumVar{Name: *n.Name}
}

func buildExpr(n *ExprNode) (sourceir.Expr, error) {
	switch {
	case n.If != nil:
		return buildIf(n.If)
	case n.Return != nil:
		return buildReturn(n.Return)
	case n.Throw != nil:
		value, err := buildExpr(n.Throw.Value)
		if err != nil {
			return nil, err
		}
		return sourceir.Throw{Value: value}, nil
	case n.Match != nil:
		return buildMatch(n.Match)
	case n.Replicate != nil:
		vec, err := buildExpr(n.Replicate.Vector)
		if err != nil {
			return nil, err
		}
		times, err := buildExpr(n.Replicate.Times)
		if err != nil {
			return nil, err
		}
		return sourceir.Replicate{Vector: vec, Times: times}, nil
	case n.Append != nil:
		left, err := buildExpr(n.Append.Left)
		if err != nil {
			return nil, err
		}
		right, err := buildExpr(n.Append.Right)
		if err != nil {
			return nil, err
		}
		return sourceir.Append{Left: left, Right: right}, nil
	case n.Update != nil:
		return buildUpdate(n.Update)
	case n.Block != nil:
		return buildBlock(n.Block)
	case n.Postfix != nil:
		return buildPostfix(n.Postfix)
	default:
		return nil, fmt.Errorf("surface: empty expr node")
	}
}

func buildIf(n *IfNode) (sourceir.Expr, error) {
	cond, err := buildExpr(n.Cond)
	if err != nil {
		return nil, err
	}
	then, err := buildExpr(n.Then)
	if err != nil {
		return nil, err
	}
	var elseExpr sourceir.Expr = sourceir.UnitLit{}
	if n.Else != nil {
		elseExpr, err = buildExpr(n.Else)
		if err != nil {
			return nil, err
		}
	}
	return sourceir.If{Cond: cond, Then: then, Else: elseExpr}, nil
}

func buildReturn(n *ReturnNode) (sourceir.Expr, error) {
	var value sourceir.Expr = sourceir.UnitLit{}
	if n.Value != nil {
		v, err := buildExpr(n.Value)
		if err != nil {
			return nil, err
		}
		value = v
	}
	return sourceir.EarlyReturn{Value: value}, nil
}

func buildMatch(n *MatchNode) (sourceir.Expr, error) {
	scrutinee, err := buildExpr(n.Scrutinee)
	if err != nil {
		return nil, err
	}
	m := sourceir.Match{Scrutinee: scrutinee}
	for _, c := range n.Cases {
		body, err := buildExpr(c.Body)
		if err != nil {
			return nil, err
		}
		mc := sourceir.MatchCase{Ctor: c.Ctor, Body: body}
		if c.Binder != nil {
			mc.Binder = *c.Binder
		}
		m.Cases = append(m.Cases, mc)
	}
	return m, nil
}

func buildUpdate(n *UpdateNode) (sourceir.Expr, error) {
	vec, err := buildExpr(n.Vector)
	if err != nil {
		return nil, err
	}
	lo, err := buildExpr(n.Lo)
	if err != nil {
		return nil, err
	}
	hi, err := buildExpr(n.Hi)
	if err != nil {
		return nil, err
	}
	value, err := buildExpr(n.Value)
	if err != nil {
		return nil, err
	}
	return sourceir.VectorUpdate{Vector: vec, Lo: lo, Hi: hi, Value: value}, nil
}

func buildBlock(n *BlockNode) (sourceir.Expr, error) {
	b := sourceir.Block{}
	for _, s := range n.Stmts {
		stmt, err := buildStmt(s)
		if err != nil {
			return nil, err
		}
		b.Stmts = append(b.Stmts, stmt)
	}
	if n.Tail != nil {
		value, err := buildExpr(n.Tail)
		if err != nil {
			return nil, err
		}
		b.Stmts = append(b.Stmts, sourceir.ExprStmt{Value: value})
	}
	return b, nil
}

func buildStmt(n *StmtNode) (sourceir.Stmt, error) {
	switch {
	case n.Let != nil:
		init, err := buildExpr(n.Let.Init)
		if err != nil {
			return nil, err
		}
		stmt := sourceir.LetStmt{Name: n.Let.Name, Init: init}
		if n.Let.Type != nil {
			t, err := buildType(n.Let.Type)
			if err != nil {
				return nil, err
			}
			stmt.Type = t
		}
		return stmt, nil
	case n.Assert != nil:
		cond, err := buildExpr(n.Assert.Cond)
		if err != nil {
			return nil, err
		}
		stmt := sourceir.AssertStmt{Cond: cond}
		if n.Assert.Message != nil {
			stmt.Message = unquote(*n.Assert.Message)
		}
		return stmt, nil
	case n.Expr != nil:
		value, err := buildExpr(n.Expr.Value)
		if err != nil {
			return nil, err
		}
		return sourceir.ExprStmt{Value: value}, nil
	default:
		return nil, fmt.Errorf("surface: empty stmt node")
	}
}

func buildPostfix(n *PostfixNode) (sourceir.Expr, error) {
	expr, err := buildPrimary(n.Primary)
	if err != nil {
		return nil, err
	}
	for _, op := range n.Ops {
		switch {
		case op.Field != nil:
			expr = sourceir.FieldAccess{Record: expr, Field: *op.Field}
		case op.Proj != nil:
			expr = sourceir.TupleProj{Tuple: expr, Index: *op.Proj}
		case op.Index != nil:
			lo, err := buildExpr(op.Index.Lo)
			if err != nil {
				return nil, err
			}
			if op.Index.Hi == nil {
				expr = sourceir.VectorAccess{Vector: expr, Index: lo}
				continue
			}
			hi, err := buildExpr(op.Index.Hi)
			if err != nil {
				return nil, err
			}
			expr = sourceir.VectorSubrange{Vector: expr, Lo: lo, Hi: hi}
		}
	}
	return expr, nil
}

func buildPrimary(n *PrimaryNode) (sourceir.Expr, error) {
	switch {
	case n.Unit:
		return sourceir.UnitLit{}, nil
	case n.Bool != nil:
		return sourceir.BoolLit{Value: *n.Bool == "true"}, nil
	case n.Undef != nil:
		t, err := buildType(n.Undef)
		if err != nil {
			return nil, err
		}
		return sourceir.Undefined{Type: t}, nil
	case n.Str != nil:
		return sourceir.StringLit{Value: unquote(*n.Str)}, nil
	case n.Int != nil:
		return sourceir.IntLit{Text: *n.Int}, nil
	case n.Struct != nil:
		return buildStructLit(n.Struct)
	case n.Call != nil:
		return buildCall(n.Call)
	case len(n.Tuple) == 1:
		return buildExpr(n.Tuple[0])
	case len(n.Tuple) > 1:
		elems := make([]sourceir.Expr, len(n.Tuple))
		for i, e := range n.Tuple {
			v, err := buildExpr(e)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return sourceir.TupleExpr{Elems: elems}, nil
	case n.Ident != nil:
		return sourceir.Ident{Name: *n.Ident}, nil
	default:
		return nil, fmt.Errorf("surface: empty primary node")
	}
}

func buildStructLit(n *StructLitNode) (sourceir.Expr, error) {
	lit := sourceir.StructLit{Name: n.Name}
	for _, f := range n.Fields {
		value, err := buildExpr(f.Value)
		if err != nil {
			return nil, err
		}
		lit.Fields = append(lit.Fields, sourceir.FieldInit{Name: f.Name, Value: value})
	}
	return lit, nil
}

func buildCall(n *CallNode) (sourceir.Expr, error) {
	call := sourceir.Call{Func: n.Func}
	if n.Module != nil {
		call.Module = *n.Module
	}
	for _, a := range n.Args {
		v, err := buildExpr(a)
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, v)
	}
	return call, nil
}

// unquote strips the surrounding quotes and resolves the small set of
// backslash escapes the lexer's String token accepts.
func unquote(s string) string {
	if v, err := strconv.Unquote(s); err == nil {
		return v
	}
	return s
}
