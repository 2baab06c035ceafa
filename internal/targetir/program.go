package targetir

// Param is one lowered function parameter.
type Param struct {
	Name string
	Rep  Rep
}

// Function is a target-IR function: parameters and return representation
// already lowered, body as a flat instruction list ending in Return (or
// End with no Return for a heap-return function).
type Function struct {
	Name       string
	Params     []Param
	ReturnRep  Rep
	HeapReturn bool // true when ReturnRep is heap-representable; set at compile time, read by the Return Rewriter to pick the heap-return form
	Recursive  bool
	Body       []Instruction

	// Prologue/Epilogue hold declares/clears moved out of Body by the
	// Allocation Hoister (component G); empty for functions the hoister
	// skipped (recursive functions, or before hoisting has run).
	Prologue []Instruction
	Epilogue []Instruction
}

// TypeDef is a named type definition pending topological ordering and
// emission: a struct, variant, or enum alongside its target Rep.
type TypeDef struct {
	ID   string
	Rep  Rep
	// Uses lists the type ids this definition directly mentions, used by
	// internal/typesort to order the emission stream.
	Uses []string
}

// RegisterDef is a lowered register(T) declaration: a process-wide
// named storage cell the emitter declares at file scope. Name is
// already the zencoded form of the source-IR register name (spec.md
// §6: "Register identifiers are the zencoded form of their source-IR
// name").
type RegisterDef struct {
	Name string
	Rep  Rep
}

// Program is the full target-IR artifact the pipeline hands to the
// emitter: the lowered type definitions (not yet sorted), the register
// declarations, and the functions.
type Program struct {
	TypeDefs     []TypeDef
	Registers    []RegisterDef
	Functions    []*Function
	HasException bool
}
