// SPDX-License-Identifier: Apache-2.0
package main

import (
	stderrors "errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"

	cerrors "archc/internal/errors"
	"archc/internal/lower"
	"archc/internal/pipeline"
	"archc/internal/sourceir"
	"archc/internal/surface"
)

func main() {
	opts := pipeline.Options{}

	flag.BoolVar(&opts.OptimizePrimops, "optimize-primops", true, "specialize primitive operations by known representation")
	flag.BoolVar(&opts.OptimizeHoistAllocations, "optimize-hoist-allocations", false, "move heap-allocated locals' declare/clear pairs into the function prologue/epilogue (non-recursive functions only)")
	flag.BoolVar(&opts.OptimizeAlias, "optimize-alias", false, "run the remove-alias and combine-variables peepholes")
	flag.BoolVar(&opts.OptimizeExperimental, "optimize-experimental", false, "run the not-yet-proven-safe hoist-alias peephole")
	flag.BoolVar(&opts.Static, "static", false, "mark every emitted function static")
	flag.BoolVar(&opts.NoMain, "no-main", false, "omit the generated main() wrapper")
	flag.BoolVar(&opts.NoRTS, "no-rts", false, "omit the sail.h include and the model_init/model_fini scaffold (model_main is still emitted)")
	flag.StringVar(&opts.Prefix, "prefix", "", "prefix every emitted function name")
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		fmt.Println("Usage: archc [flags] <file.arc>")
		os.Exit(1)
	}

	path := args[0]
	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read file: %s", err)
		os.Exit(1)
	}

	prog, err := surface.ParseProgram(path, string(source))
	if err != nil {
		reportParseError(string(source), err)
		os.Exit(1)
	}

	out, err := pipeline.Compile(prog, noTypeOf, opts)
	if err != nil {
		reportCompileError(string(source), path, err)
		os.Exit(1)
	}

	fmt.Println(out)
	color.Green("✅ Successfully compiled %s", path)
}

// noTypeOf backs the normalizer's TypeOf oracle when compiling from
// surface text, which has no type checker behind it: it answers nil for
// every expression, so a compound expression the normalizer has to lift
// into a synthetic binding has no source type to lower.
func noTypeOf(sourceir.Expr) sourceir.Type { return nil }

// reportCompileError routes a pipeline error through the teacher's
// ErrorReporter when it carries a CompilerError (component A's
// TypeLoweringError has a Position field, which is sourceir.NoPosition for
// surface-built input; the type-cycle and rewriter invariant errors have
// none). Anything
// else falls back to a bare message.
func reportCompileError(src, path string, err error) {
	reporter := cerrors.NewErrorReporter(path, src)

	var lowerErr *lower.Error
	if stderrors.As(err, &lowerErr) {
		fmt.Print(reporter.FormatError(lowerErr.Compiler))
		return
	}

	var ce cerrors.CompilerError
	if stderrors.As(err, &ce) {
		fmt.Print(reporter.FormatError(ce))
		return
	}

	color.Red("compile error: %s", err)
}

// reportParseError prints a friendly caret-style parse error message, the
// same shape as the teacher's cmd/kanso-cli.
func reportParseError(src string, err error) {
	var pe participle.Error
	if !stderrors.As(err, &pe) {
		color.Red("Unexpected error: %s", err)
		return
	}

	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("Syntax error at unknown location: %s", err)
		return
	}

	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", pos.Column-1) + "^"

	color.Red("❌ Syntax error in %s at line %d, column %d:", pos.Filename, pos.Line, pos.Column)
	fmt.Println(line)
	color.HiRed(caret)
	fmt.Printf("→ %s\n", pe.Message())
}
