package errors

// Error codes for the lowering pipeline, one family per error kind in
// spec.md §7. Codes are stable identifiers used in diagnostics and docs,
// not load-bearing for control flow.
//
// E1000-E1099: Type Lowerer errors
// E1100-E1199: IR Compiler / arity errors
// E1200-E1299: Variant Specializer errors
// E1300-E1399: Type-Definition Topological Sort errors
// E1400-E1499: Rewriter invariant violations (treated as compiler bugs)
// W1800-W1899: Primitive Analyzer declines (non-fatal, logged only)
const (
	// E1001: the Type Lowerer reached a source type with no
	// representation under the closed decision rules of spec.md §4.A.
	ErrorTypeLowering = "E1001"

	// E1101: a function definition's parameters do not match its
	// lowered type.
	ErrorArityMismatch = "E1101"

	// E1201: a type remains polymorphic after the Variant Specializer
	// has run.
	ErrorPolymorphismLeak = "E1201"

	// E1301: the type-definition dependency graph contains a cycle.
	ErrorTypeCycle = "E1301"

	// E1401: a rewriter (Return Rewriter, Allocation Hoister, or a
	// peephole pass) reached an instruction shape it does not
	// recognize. This is always a bug in the pipeline, never a
	// reflection of bad input.
	ErrorRewriterInvariant = "E1401"

	// W1801: the Primitive Analyzer declined to specialize a
	// recognized-but-unsupported operand combination and left the
	// call unchanged.
	WarningAnalyzerDeclined = "W1801"
)

// GetErrorDescription returns a human-readable description of the code.
func GetErrorDescription(code string) string {
	switch code {
	case ErrorTypeLowering:
		return "source type is not representable by any target representation"
	case ErrorArityMismatch:
		return "function parameters do not match its lowered type"
	case ErrorPolymorphismLeak:
		return "a type remains polymorphic after variant specialization"
	case ErrorTypeCycle:
		return "type definitions form a dependency cycle"
	case ErrorRewriterInvariant:
		return "a rewriter reached an instruction shape it does not recognize"
	case WarningAnalyzerDeclined:
		return "primitive analyzer declined to specialize this call"
	default:
		return "unknown error code"
	}
}

// IsWarning reports whether code names a non-fatal diagnostic.
func IsWarning(code string) bool {
	return len(code) > 0 && code[0] == 'W'
}
