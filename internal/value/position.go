// Package value implements the compiler's value model: the closed set of
// platform data types, typed literal values, and the append-only heap that
// holds out-of-line strings and arrays.
package value

import "fmt"

// Position tracks a source location for diagnostics and line-instruction
// emission. Every AST node and every literal carries one.
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}
