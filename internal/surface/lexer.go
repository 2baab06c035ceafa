// SPDX-License-Identifier: Apache-2.0

// Package surface is a small textual fixture notation for constructing
// sourceir trees by hand, used by tests, the CLI driver, and the REPL. It
// performs no type inference or checking: every Named reference is taken
// on faith and resolved later, the same way the pipeline expects already-
// checked source IR to arrive.
package surface

import "github.com/alecthomas/participle/v2/lexer"

// Lexer tokenizes the fixture notation. Grounded on the teacher's
// KansoLexer (stateful rule list, comments stripped before identifiers,
// multi-character operators ordered before their single-character
// prefixes so the longer match wins).
var Lexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},
		{"String", `"(\\.|[^"\\])*"`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Integer", `[0-9]+`, nil},
		{"FatArrow", `=>`, nil},
		{"Arrow", `->`, nil},
		{"DoubleColon", `::`, nil},
		{"Punct", `[{}()\[\],:;.=]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
