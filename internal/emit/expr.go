package emit

import (
	"fmt"
	"strings"

	"archc/internal/targetir"
)

// lvalueText renders an LValue as an assignable expression.
func lvalueText(lv targetir.LValue) string {
	switch v := lv.(type) {
	case targetir.LLocal:
		return v.Name
	case targetir.LField:
		return lvalueText(v.Base) + "." + v.Field
	case targetir.LTupleElem:
		return fmt.Sprintf("%s.ztup%d", lvalueText(v.Base), v.Index)
	case targetir.LDeref:
		return "(*" + lvalueText(v.Base) + ")"
	case targetir.LReturnSlot:
		return "zretval"
	case targetir.LCurrentException:
		return "current_exception"
	case targetir.LExceptionPending:
		return "have_exception"
	default:
		return "/* unknown lvalue */"
	}
}

// rvalueText renders an RValue as a systems-language expression. Calls
// to the fixed CONVERT_OF(dst, src) conversion-helper family materialize
// implicit representation changes, as spec.md §4.J requires.
func rvalueText(rv targetir.RValue) string {
	switch v := rv.(type) {
	case targetir.RLit:
		return v.Text
	case targetir.RIdent:
		return v.Name
	case targetir.RField:
		return rvalueText(v.Base) + "." + v.Field
	case targetir.RTupleElem:
		return fmt.Sprintf("%s.ztup%d", rvalueText(v.Base), v.Index)
	case targetir.RRaw:
		return v.Text
	case targetir.RHelperCall:
		if v.Helper == "CONVERT_OF" && len(v.Args) == 1 {
			// Materializes an implicit representation change: the fixed
			// CONVERT_OF(dst, src) helper family spec.md §4.J names.
			return fmt.Sprintf("CONVERT_OF(%s)(%s)", CTypeName(v.Rep), rvalueText(v.Args[0]))
		}
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = rvalueText(a)
		}
		return fmt.Sprintf("%s(%s)", v.Helper, strings.Join(args, ", "))
	case targetir.RUnary:
		return fmt.Sprintf("(%s%s)", v.Op, rvalueText(v.Arg))
	case targetir.RBinary:
		return fmt.Sprintf("(%s %s %s)", rvalueText(v.Left), v.Op, rvalueText(v.Right))
	default:
		return "/* unknown rvalue */"
	}
}
