package emit

import "fmt"

// Zencode renders name as a valid systems-language identifier: letters,
// digits, and underscore pass through unchanged; every other byte
// (including a literal 'z', which would otherwise collide with the
// escape character) becomes "z" followed by its two-digit hex value.
// Register identifiers are emitted under this scheme (spec.md §6).
func Zencode(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z' && c != 'z':
			out = append(out, c)
		case c >= 'A' && c <= 'Z':
			out = append(out, c)
		case c >= '0' && c <= '9':
			out = append(out, c)
		case c == '_':
			out = append(out, c)
		default:
			out = append(out, []byte(fmt.Sprintf("z%02x", c))...)
		}
	}
	return string(out)
}
