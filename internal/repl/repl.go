// SPDX-License-Identifier: Apache-2.0

// Package repl is an interactive read-compile-print loop over the surface
// notation: each paragraph (terminated by a blank line) is parsed as a
// whole fixture file and run through the pipeline, so a user can declare a
// record or two and a function and see the emitted text immediately.
// Rebuilt against internal/surface rather than adapted line-for-line from
// the teacher's repl.go, which scanned one line at a time against a
// module path this repository no longer has.
package repl

import (
	"bufio"
	"fmt"
	"io"

	"archc/internal/pipeline"
	"archc/internal/sourceir"
	"archc/internal/surface"
)

const prompt = ">> "

func noTypeOf(sourceir.Expr) sourceir.Type { return nil }

// Start runs the loop, reading paragraphs from in and writing prompts and
// results to out, until in is exhausted.
func Start(in *bufio.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, prompt)
		var src string
		sawLine := false
		for scanner.Scan() {
			sawLine = true
			line := scanner.Text()
			if line == "" {
				break
			}
			src += line + "\n"
		}
		if !sawLine && src == "" {
			return
		}
		if src == "" {
			continue
		}

		prog, err := surface.ParseProgram("<repl>", src)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}

		text, err := pipeline.Compile(prog, noTypeOf, pipeline.Options{OptimizePrimops: true})
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		fmt.Fprintln(out, text)
	}
}
