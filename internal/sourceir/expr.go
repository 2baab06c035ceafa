package sourceir

// Expr is a node of the already-type-checked, expression-oriented source
// IR the pipeline consumes. Every Expr carries its source type separately
// (passed alongside, not embedded) so that lowering can be re-performed
// under different local environments without mutating the tree — the
// Expression Normalizer's contract in spec.md §4.B.
type Expr interface {
	sourceExpr()
	Pos() Position
}

type base struct {
	Position Position
}

func (b base) Pos() Position { return b.Position }

// UnitLit is the sole value of the unit type.
type UnitLit struct{ base }

func (UnitLit) sourceExpr() {}

// BoolLit is a boolean literal.
type BoolLit struct {
	base
	Value bool
}

func (BoolLit) sourceExpr() {}

// IntLit is an arbitrary-precision integer literal, carried as decimal
// text so it is never silently truncated before lowering decides a
// representation.
type IntLit struct {
	base
	Text string
}

func (IntLit) sourceExpr() {}

// BitsLit is a fixed-width bit-vector literal.
type BitsLit struct {
	base
	Value uint64
	Width int
	Dir   Direction
}

func (BitsLit) sourceExpr() {}

// StringLit is a string literal.
type StringLit struct {
	base
	Value string
}

func (StringLit) sourceExpr() {}

// Ident references a bound local variable, function parameter, or
// let-binding.
type Ident struct {
	base
	Name string
}

func (Ident) sourceExpr() {}

// Call is a call to either a user-defined function, a variant
// constructor, or one of the closed set of built-in operations recognized
// by the Primitive Analyzer. Module is non-empty for qualified extern
// references.
type Call struct {
	base
	Module string
	Func   string
	Args   []Expr
}

func (Call) sourceExpr() {}

// If is a conditional expression.
type If struct {
	base
	Cond, Then, Else Expr
}

func (If) sourceExpr() {}

// Let is a let-binding expression: evaluate Init, bind it to Name with
// type Type for the extent of Body.
type Let struct {
	base
	Name string
	Type Type
	Init Expr
	Body Expr
}

func (Let) sourceExpr() {}

// Block sequences statements, yielding the value of its trailing
// expression (or Unit if the last statement has none).
type Block struct {
	base
	Stmts []Stmt
}

func (Block) sourceExpr() {}

// EarlyReturn marks a return appearing in a non-tail position (inside an
// if/block nested in the function body); the Return Rewriter (component
// E) is responsible for turning every EarlyReturn into a goto to the
// single function-exit label.
type EarlyReturn struct {
	base
	Value Expr
}

func (EarlyReturn) sourceExpr() {}

// Throw raises the process-wide exception; only meaningful when the
// source declared an exception variant (spec.md §6).
type Throw struct {
	base
	Value Expr
}

func (Throw) sourceExpr() {}

// MatchCase is one arm of a Match over a tagged union.
type MatchCase struct {
	Ctor   string
	Binder string // empty if the constructor carries no payload
	Body   Expr
}

// Match scrutinizes a tagged-union value.
type Match struct {
	base
	Scrutinee Expr
	Cases     []MatchCase
}

func (Match) sourceExpr() {}

// TupleExpr constructs a tuple.
type TupleExpr struct {
	base
	Elems []Expr
}

func (TupleExpr) sourceExpr() {}

// TupleProj projects the i-th component of a tuple value.
type TupleProj struct {
	base
	Tuple Expr
	Index int
}

func (TupleProj) sourceExpr() {}

// FieldAccess projects a named field of a record value.
type FieldAccess struct {
	base
	Record Expr
	Field  string
}

func (FieldAccess) sourceExpr() {}

// FieldInit is one field initializer of a StructLit.
type FieldInit struct {
	Name  string
	Value Expr
}

// StructLit constructs a record value.
type StructLit struct {
	base
	Name   string
	Fields []FieldInit
}

func (StructLit) sourceExpr() {}

// VectorAccess indexes a single element out of a vector/bit-vector.
type VectorAccess struct {
	base
	Vector Expr
	Index  Expr
}

func (VectorAccess) sourceExpr() {}

// VectorSubrange extracts bits [Lo, Hi] (inclusive, direction-relative)
// from a bit-vector.
type VectorSubrange struct {
	base
	Vector  Expr
	Lo, Hi  Expr
}

func (VectorSubrange) sourceExpr() {}

// VectorUpdate replaces bits [Lo, Hi] of a bit-vector with Value.
type VectorUpdate struct {
	base
	Vector Expr
	Lo, Hi Expr
	Value  Expr
}

func (VectorUpdate) sourceExpr() {}

// Replicate repeats a bit-vector Times times.
type Replicate struct {
	base
	Vector Expr
	Times  Expr
}

func (Replicate) sourceExpr() {}

// Append concatenates two bit-vectors, Left at the high end.
type Append struct {
	base
	Left, Right Expr
}

func (Append) sourceExpr() {}

// Undefined produces an unconstrained value of the given type; the
// Primitive Analyzer picks a canonical representative when the
// representation is recognized (spec.md §4.C).
type Undefined struct {
	base
	Type Type
}

func (Undefined) sourceExpr() {}
