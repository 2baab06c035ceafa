package targetir

import "fmt"

// LValue addresses a storage location that can be assigned to: a local,
// a struct field, a tuple component, a pointer dereference, the current
// function's return slot, the current-exception slot, or the
// exception-pending flag (spec.md §3).
type LValue interface {
	lvalueMarker()
	String() string
}

// LLocal addresses a declared local by name.
type LLocal struct {
	Name string
}

func (LLocal) lvalueMarker()     {}
func (l LLocal) String() string { return l.Name }

// LField addresses a named field of a struct-represented lvalue.
type LField struct {
	Base  LValue
	Field string
}

func (LField) lvalueMarker()     {}
func (l LField) String() string { return fmt.Sprintf("%s.%s", l.Base, l.Field) }

// LTupleElem addresses the i-th component of a tuple-represented lvalue.
type LTupleElem struct {
	Base  LValue
	Index int
}

func (LTupleElem) lvalueMarker()     {}
func (l LTupleElem) String() string { return fmt.Sprintf("%s.%d", l.Base, l.Index) }

// LDeref addresses the pointee of a reference-represented lvalue.
type LDeref struct {
	Base LValue
}

func (LDeref) lvalueMarker()     {}
func (l LDeref) String() string { return fmt.Sprintf("*%s", l.Base) }

// LReturnSlot addresses the current function's return value. Before the
// Return Rewriter runs this may appear directly at a terminal position;
// afterwards it only appears as the single named slot (stack-return) or
// not at all (heap-return, which instead copies into LDeref of the
// caller-provided pointer).
type LReturnSlot struct{}

func (LReturnSlot) lvalueMarker()     {}
func (LReturnSlot) String() string { return "return" }

// LCurrentException addresses the process-wide current-exception slot,
// created at model-init and destroyed at model-fini. Only meaningful when
// the source declared an exception variant.
type LCurrentException struct{}

func (LCurrentException) lvalueMarker()     {}
func (LCurrentException) String() string { return "current_exception" }

// LExceptionPending addresses the process-wide exception-pending flag.
type LExceptionPending struct{}

func (LExceptionPending) lvalueMarker()     {}
func (LExceptionPending) String() string { return "have_exception" }
