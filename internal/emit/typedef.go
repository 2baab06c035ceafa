package emit

import (
	"fmt"

	"archc/internal/targetir"
)

// emitTypeDef prints one user-declared type's definition. Structs and
// variants are followed by their CREATE/RECREATE/KILL/COPY/EQUAL
// helper-function family (spec.md §4.J names this fixed set); structs
// built entirely of stack-representable fields get a trivial helper
// family: RECREATE/KILL are no-ops and COPY/EQUAL reduce to a plain
// assignment/comparison. Enums get their definition only, with no
// helper family.
func emitTypeDef(p *printer, td targetir.TypeDef) {
	switch v := td.Rep.(type) {
	case targetir.StructRep:
		emitStructDef(p, v)
		emitStructHelpers(p, v)
	case targetir.VariantRep:
		emitVariantDef(p, v)
		emitVariantHelpers(p, v)
	case targetir.EnumRep:
		emitEnumDef(p, v)
	default:
		p.line("/* unsupported top-level type definition %s */", td.ID)
	}
}

func emitStructDef(p *printer, s targetir.StructRep) {
	p.line("struct %s {", s.ID)
	p.indent++
	for _, f := range s.Fields {
		p.line("%s %s;", CTypeName(f.Rep), f.Name)
	}
	p.indent--
	p.line("};")
}

func emitStructHelpers(p *printer, s targetir.StructRep) {
	ctype := "struct " + s.ID

	p.line("static void CREATE(%s)(%s *op) {", s.ID, ctype)
	p.indent++
	for _, f := range s.Fields {
		if IsHeapAllocated(f.Rep) {
			p.line("CREATE(%s)(&op->%s);", CTypeName(f.Rep), f.Name)
		}
	}
	p.indent--
	p.line("}")

	p.line("static void RECREATE(%s)(%s *op) {", s.ID, ctype)
	p.indent++
	for _, f := range s.Fields {
		if IsHeapAllocated(f.Rep) {
			p.line("RECREATE(%s)(&op->%s);", CTypeName(f.Rep), f.Name)
		}
	}
	p.indent--
	p.line("}")

	p.line("static void KILL(%s)(%s *op) {", s.ID, ctype)
	p.indent++
	for _, f := range s.Fields {
		if IsHeapAllocated(f.Rep) {
			p.line("KILL(%s)(&op->%s);", CTypeName(f.Rep), f.Name)
		}
	}
	p.indent--
	p.line("}")

	p.line("static void COPY(%s)(%s *rop, %s op) {", s.ID, ctype, ctype)
	p.indent++
	for _, f := range s.Fields {
		if IsHeapAllocated(f.Rep) {
			p.line("COPY(%s)(&rop->%s, op.%s);", CTypeName(f.Rep), f.Name, f.Name)
		} else {
			p.line("rop->%s = op.%s;", f.Name, f.Name)
		}
	}
	p.indent--
	p.line("}")

	p.line("static bool EQUAL(%s)(%s op1, %s op2) {", s.ID, ctype, ctype)
	p.indent++
	if len(s.Fields) == 0 {
		p.line("return true;")
	} else {
		terms := make([]string, len(s.Fields))
		for i, f := range s.Fields {
			if IsHeapAllocated(f.Rep) {
				terms[i] = fmt.Sprintf("EQUAL(%s)(op1.%s, op2.%s)", CTypeName(f.Rep), f.Name, f.Name)
			} else {
				terms[i] = fmt.Sprintf("op1.%s == op2.%s", f.Name, f.Name)
			}
		}
		line := terms[0]
		for _, t := range terms[1:] {
			line += " && " + t
		}
		p.line("return %s;", line)
	}
	p.indent--
	p.line("}")
}

func emitVariantDef(p *printer, v targetir.VariantRep) {
	p.line("enum %s_tag {", v.ID)
	p.indent++
	for _, c := range v.Ctors {
		p.line("Tag_%s_%s,", v.ID, c.Name)
	}
	p.indent--
	p.line("};")

	p.line("struct %s {", v.ID)
	p.indent++
	p.line("enum %s_tag tag;", v.ID)
	p.line("union {")
	p.indent++
	for _, c := range v.Ctors {
		if c.Arg == nil {
			continue
		}
		p.line("%s %s;", CTypeName(c.Arg), c.Name)
	}
	p.indent--
	p.line("} variant;")
	p.indent--
	p.line("};")
}

func emitVariantHelpers(p *printer, v targetir.VariantRep) {
	ctype := "struct " + v.ID

	p.line("static void CREATE(%s)(%s *op) {", v.ID, ctype)
	p.indent++
	p.line("op->tag = Tag_%s_%s;", v.ID, v.Ctors[0].Name)
	p.indent--
	p.line("}")

	p.line("static void RECREATE(%s)(%s *op) {", v.ID, ctype)
	p.indent++
	p.line("KILL(%s)(op);", v.ID)
	p.line("CREATE(%s)(op);", v.ID)
	p.indent--
	p.line("}")

	p.line("static void KILL(%s)(%s *op) {", v.ID, ctype)
	p.indent++
	emitVariantKillSwitch(p, v)
	p.indent--
	p.line("}")

	p.line("static void COPY(%s)(%s *rop, %s op) {", v.ID, ctype, ctype)
	p.indent++
	p.line("rop->tag = op.tag;")
	p.line("switch (op.tag) {")
	p.indent++
	for _, c := range v.Ctors {
		p.line("case Tag_%s_%s:", v.ID, c.Name)
		p.indent++
		if c.Arg != nil {
			if IsHeapAllocated(c.Arg) {
				p.line("CREATE(%s)(&rop->variant.%s);", CTypeName(c.Arg), c.Name)
				p.line("COPY(%s)(&rop->variant.%s, op.variant.%s);", CTypeName(c.Arg), c.Name, c.Name)
			} else {
				p.line("rop->variant.%s = op.variant.%s;", c.Name, c.Name)
			}
		}
		p.line("break;")
		p.indent--
	}
	p.indent--
	p.line("}")
	p.indent--
	p.line("}")

	p.line("static bool EQUAL(%s)(%s op1, %s op2) {", v.ID, ctype, ctype)
	p.indent++
	p.line("if (op1.tag != op2.tag) return false;")
	p.line("switch (op1.tag) {")
	p.indent++
	for _, c := range v.Ctors {
		p.line("case Tag_%s_%s:", v.ID, c.Name)
		p.indent++
		if c.Arg == nil {
			p.line("return true;")
		} else if IsHeapAllocated(c.Arg) {
			p.line("return EQUAL(%s)(op1.variant.%s, op2.variant.%s);", CTypeName(c.Arg), c.Name, c.Name)
		} else {
			p.line("return op1.variant.%s == op2.variant.%s;", c.Name, c.Name)
		}
		p.indent--
	}
	p.indent--
	p.line("}")
	p.line("return false;")
	p.indent--
	p.line("}")
}

// emitVariantKillSwitch emits a switch over op->tag, calling KILL on the
// active constituent's heap-represented argument.
func emitVariantKillSwitch(p *printer, v targetir.VariantRep) {
	p.line("switch (op->tag) {")
	p.indent++
	for _, c := range v.Ctors {
		p.line("case Tag_%s_%s:", v.ID, c.Name)
		p.indent++
		if c.Arg != nil && IsHeapAllocated(c.Arg) {
			p.line("KILL(%s)(&op->variant.%s);", CTypeName(c.Arg), c.Name)
		}
		p.line("break;")
		p.indent--
	}
	p.indent--
	p.line("}")
}

func emitEnumDef(p *printer, e targetir.EnumRep) {
	p.line("enum %s {", e.Name)
	p.indent++
	for _, c := range e.Constructors {
		p.line("%s_%s,", e.Name, c)
	}
	p.indent--
	p.line("};")
}
