package errors

import (
	"archc/internal/sourceir"
	"fmt"
)

// TypeLoweringError reports that the Type Lowerer reached a source type
// with no representation under the decision rules of spec.md §4.A. Fatal,
// no recovery.
func TypeLoweringError(sourceType fmt.Stringer, pos sourceir.Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorTypeLowering,
		Message:  fmt.Sprintf("type %s has no target representation", sourceType),
		Position: pos,
		Length:   1,
	}
}

// ArityMismatchError reports that a function definition's parameter list
// does not match its lowered type.
func ArityMismatchError(function string, want, got int, pos sourceir.Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorArityMismatch,
		Message:  fmt.Sprintf("function %q expects %d parameter(s), got %d", function, want, got),
		Position: pos,
		Length:   1,
	}
}

// PolymorphismLeakError reports that a type remains polymorphic after the
// Variant Specializer has run.
func PolymorphismLeakError(ctor string, pos sourceir.Position) CompilerError {
	return CompilerError{
		Level:    Error,
		Code:     ErrorPolymorphismLeak,
		Message:  fmt.Sprintf("constructor %q is still polymorphic after specialization", ctor),
		Position: pos,
		Length:   1,
	}
}

// TypeCycleError reports a cycle in the type-definition dependency graph.
func TypeCycleError(cycle []string) CompilerError {
	return CompilerError{
		Level:   Error,
		Code:    ErrorTypeCycle,
		Message: fmt.Sprintf("type definitions form a cycle: %v", cycle),
		Length:  1,
	}
}

// RewriterInvariantError reports that a rewriter reached an instruction
// shape it does not recognize. Always treated as a bug in the pipeline.
func RewriterInvariantError(pass string, shape fmt.Stringer) CompilerError {
	return CompilerError{
		Level:   Error,
		Code:    ErrorRewriterInvariant,
		Message: fmt.Sprintf("%s: unrecognized instruction shape %s", pass, shape),
		Length:  1,
	}
}

// AnalyzerDeclinedWarning reports that the Primitive Analyzer declined to
// specialize an operation/representation combination. Non-fatal — the
// analyzer continues with the call unchanged.
func AnalyzerDeclinedWarning(op string, reason string) CompilerError {
	return CompilerError{
		Level:   Warning,
		Code:    WarningAnalyzerDeclined,
		Message: fmt.Sprintf("declined to specialize %q: %s", op, reason),
	}
}
