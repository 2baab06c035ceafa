package emit

import (
	"fmt"
	"strings"

	"archc/internal/targetir"
)

// localRepTable builds a name->Rep lookup covering a function's
// parameters and every Declare it reaches, sufficient for the
// instruction printer to resolve a Clear/Reset's local to its
// representation without threading a separate side table through
// every call site.
func localRepTable(fn *targetir.Function) map[string]targetir.Rep {
	out := map[string]targetir.Rep{}
	for _, p := range fn.Params {
		out[p.Name] = p.Rep
	}
	collectDeclares(fn.Prologue, out)
	collectDeclares(fn.Body, out)
	collectDeclares(fn.Epilogue, out)
	return out
}

func collectDeclares(instrs []targetir.Instruction, out map[string]targetir.Rep) {
	for _, instr := range instrs {
		switch v := instr.(type) {
		case targetir.Declare:
			out[v.Name] = v.Rep
		case targetir.Block:
			collectDeclares(v.Instructions, out)
		case targetir.TryBlock:
			collectDeclares(v.Body, out)
			collectDeclares(v.Handler, out)
		}
	}
}

// emitFunction prints one function's signature, prologue, body, and
// epilogue. A heap-return function takes its return slot as an extra
// first pointer parameter and returns void; a stack-return function
// returns its ReturnRep by value (spec.md §5's two calling conventions,
// as chosen by the Return Rewriter's output form).
func emitFunction(p *printer, fn *targetir.Function, cfg Config) {
	reps := localRepTable(fn)
	fe := &funcEmitter{p: p, localReps: reps}

	params := make([]string, 0, len(fn.Params)+2)
	if fn.HeapReturn {
		params = append(params, fmt.Sprintf("%s *zretval_ptr", CTypeName(fn.ReturnRep)))
	}
	for _, prm := range fn.Params {
		params = append(params, fmt.Sprintf("%s %s", CTypeName(prm.Rep), prm.Name))
	}
	params = append(params, cfg.ExtraParams...)
	if len(params) == 0 {
		params = append(params, "void")
	}

	ret := "void"
	if !fn.HeapReturn {
		ret = CTypeName(fn.ReturnRep)
	}
	static := ""
	if cfg.Static {
		static = "static "
	}
	p.line("%s%s %s(%s)", static, ret, zFuncName(fn.Name), strings.Join(params, ", "))
	p.line("{")
	p.indent++
	fe.emitAll(fn.Prologue)
	fe.emitAll(fn.Body)
	fe.emitAll(fn.Epilogue)
	p.indent--
	p.line("}")
}

func zFuncName(name string) string {
	return Zencode(name)
}
