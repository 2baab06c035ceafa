package surface

import (
	"fmt"

	"github.com/alecthomas/participle/v2"

	"archc/internal/sourceir"
)

var parser = participle.MustBuild[FileNode](
	participle.Lexer(Lexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(4),
)

// ParseString parses src (identified by name for error messages) into a
// FileNode, the same two-step shape as the teacher's grammar.ParseFile:
// build the parse tree first, resolve it into sourceir second.
func ParseString(name, src string) (*FileNode, error) {
	file, err := parser.ParseString(name, src)
	if err != nil {
		return nil, fmt.Errorf("surface: %w", err)
	}
	return file, nil
}

// ParseProgram parses src and immediately builds it into a sourceir.Program.
func ParseProgram(name, src string) (*sourceir.Program, error) {
	file, err := ParseString(name, src)
	if err != nil {
		return nil, err
	}
	return Build(file)
}
