package emit

import (
	"fmt"
	"strings"

	"archc/internal/targetir"
)

// printer is a thin indent-tracking text accumulator, the same shape as
// the teacher's ir.Printer (indent counter plus strings.Builder,
// writeLine/write helpers).
type printer struct {
	indent int
	out    strings.Builder
}

func (p *printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.out.WriteString("    ")
	}
}

func (p *printer) line(format string, args ...interface{}) {
	p.writeIndent()
	p.out.WriteString(fmt.Sprintf(format, args...))
	p.out.WriteString("\n")
}

// funcEmitter prints one function's prologue/body/epilogue, consulting
// localReps to resolve the representation of a Declare/Clear/Reset's
// local for the CREATE/KILL/RECREATE helper family.
type funcEmitter struct {
	p         *printer
	localReps map[string]targetir.Rep
}

func (fe *funcEmitter) emitAll(instrs []targetir.Instruction) {
	for _, instr := range instrs {
		fe.emit(instr)
	}
}

func (fe *funcEmitter) repOf(name string) targetir.Rep {
	if r, ok := fe.localReps[name]; ok {
		return r
	}
	return nil
}

func (fe *funcEmitter) emit(instr targetir.Instruction) {
	p := fe.p
	switch v := instr.(type) {
	case targetir.Declare:
		ctype := CTypeName(v.Rep)
		if IsHeapAllocated(v.Rep) {
			p.line("%s %s;", ctype, v.Name)
			p.line("CREATE(%s)(&%s);", ctype, v.Name)
			if v.Init != nil {
				p.line("COPY(%s)(&%s, %s);", ctype, v.Name, rvalueText(v.Init))
			}
			return
		}
		if v.Init != nil {
			p.line("%s %s = %s;", ctype, v.Name, rvalueText(v.Init))
			return
		}
		p.line("%s %s;", ctype, v.Name)

	case targetir.Initialize:
		p.line("%s = %s;", lvalueText(v.Target), rvalueText(v.Value))

	case targetir.Assign:
		p.line("%s = %s;", lvalueText(v.Target), rvalueText(v.Value))

	case targetir.Call:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = rvalueText(a)
		}
		call := fmt.Sprintf("%s(%s)", v.Function, strings.Join(args, ", "))
		if v.Dest != nil {
			p.line("%s = %s;", lvalueText(v.Dest), call)
			return
		}
		p.line("%s;", call)

	case targetir.Branch:
		// The IR Compiler always emits Label{ThenLabel} immediately
		// after a Branch, so the then-arm is reached by straight-line
		// fallthrough; only the else-arm needs an explicit jump.
		p.line("if (!(%s)) goto %s;", rvalueText(v.Cond), v.ElseLabel)

	case targetir.Goto:
		p.line("goto %s;", v.Label)

	case targetir.JumpIf:
		p.line("if (%s) goto %s;", rvalueText(v.Cond), v.Label)

	case targetir.Clear:
		ctype := CTypeName(fe.repOf(v.Name))
		p.line("KILL(%s)(&%s);", ctype, v.Name)

	case targetir.Reset:
		ctype := CTypeName(fe.repOf(v.Name))
		p.line("RECREATE(%s)(&%s);", ctype, v.Name)
		if v.Init != nil {
			p.line("COPY(%s)(&%s, %s);", ctype, v.Name, rvalueText(v.Init))
		}

	case targetir.Alias:
		p.line("%s = %s; /* alias, no copy */", lvalueText(v.Target), lvalueText(v.Source))

	case targetir.Return:
		if v.Slot == "" {
			p.line("return;")
			return
		}
		p.line("return %s;", v.Slot)

	case targetir.End:
		p.indent--
		p.line("%s: ;", v.Label)
		p.indent++
		p.line("return;")

	case targetir.MatchFailure:
		p.line("sail_match_failure();")

	case targetir.Comment:
		p.line("/* %s */", v.Text)

	case targetir.RawText:
		text := strings.TrimRight(v.Text, " \t\n")
		if !strings.HasSuffix(text, ";") && !strings.HasSuffix(text, "}") {
			text += ";"
		}
		p.line("%s", text)

	case targetir.Label:
		p.indent--
		p.line("%s: ;", v.Name)
		p.indent++

	case targetir.Block:
		if v.Label != "" {
			p.indent--
			p.line("%s: {", v.Label)
			p.indent++
		} else {
			p.line("{")
			p.indent++
		}
		fe.emitAll(v.Instructions)
		p.indent--
		p.line("}")

	case targetir.TryBlock:
		p.line("{")
		p.indent++
		fe.emitAll(v.Body)
		p.indent--
		p.line("}")
		p.line("if (have_exception) {")
		p.indent++
		fe.emitAll(v.Handler)
		p.indent--
		p.line("}")

	default:
		p.line("/* unrecognized instruction %T */", instr)
	}
}
