// Package builtin holds the fixed table of built-in function signatures:
// name, arity, per-parameter allowed types, and purity (§4.E rule 6, §4.G
// "Call"). The checker uses it for arity/type validation; the expression
// optimizer uses only the Pure flag.
package builtin

import "prog8core/internal/value"

// Func describes one built-in's call contract.
type Func struct {
	Name    string
	Params  [][]value.DataType // allowed types per positional argument
	Pure    bool                // foldable when every argument is a literal
	Variadic bool               // last Params entry repeats for extra args
}

var table = map[string]Func{
	"abs":   {Name: "abs", Params: [][]value.DataType{{value.BYTE, value.WORD, value.FLOAT}}, Pure: true},
	"min":   {Name: "min", Params: [][]value.DataType{numeric(), numeric()}, Pure: true},
	"max":   {Name: "max", Params: [][]value.DataType{numeric(), numeric()}, Pure: true},
	"lsb":   {Name: "lsb", Params: [][]value.DataType{{value.UWORD, value.WORD}}, Pure: true},
	"msb":   {Name: "msb", Params: [][]value.DataType{{value.UWORD, value.WORD}}, Pure: true},
	"mkword": {Name: "mkword", Params: [][]value.DataType{{value.UBYTE}, {value.UBYTE}}, Pure: true},
	"sizeof": {Name: "sizeof", Params: [][]value.DataType{numeric()}, Pure: true},
	"sgn":    {Name: "sgn", Params: [][]value.DataType{numeric()}, Pure: true},
	"sqrt16": {Name: "sqrt16", Params: [][]value.DataType{{value.UWORD}}, Pure: false},
	"peek":   {Name: "peek", Params: [][]value.DataType{{value.UWORD}}, Pure: false},
	"poke":   {Name: "poke", Params: [][]value.DataType{{value.UWORD}, {value.UBYTE}}, Pure: false},
	"swap":   {Name: "swap", Params: [][]value.DataType{numeric(), numeric()}, Pure: false},
	"lsl":    {Name: "lsl", Params: [][]value.DataType{numeric()}, Pure: false},
	"lsr":    {Name: "lsr", Params: [][]value.DataType{numeric()}, Pure: false},
	"rol":    {Name: "rol", Params: [][]value.DataType{numeric()}, Pure: false},
	"ror":    {Name: "ror", Params: [][]value.DataType{numeric()}, Pure: false},
	"petscii": {Name: "petscii", Params: [][]value.DataType{{value.STR}}, Pure: true},
}

func numeric() []value.DataType {
	return []value.DataType{value.UBYTE, value.BYTE, value.UWORD, value.WORD, value.FLOAT}
}

// Lookup returns the named built-in's signature, or ok=false if unknown
// (unknown built-ins are non-pure per §4.E rule 6).
func Lookup(name string) (Func, bool) {
	f, ok := table[name]
	return f, ok
}

// IsPure reports whether name is a known, pure built-in.
func IsPure(name string) bool {
	f, ok := table[name]
	return ok && f.Pure
}

// Accepts reports whether argType is permitted at the 0-indexed position for
// a call to name, honoring Variadic by repeating the last declared slot.
func (f Func) Accepts(pos int, argType value.DataType) bool {
	slot := pos
	if slot >= len(f.Params) {
		if !f.Variadic {
			return false
		}
		slot = len(f.Params) - 1
	}
	for _, t := range f.Params[slot] {
		if t == argType {
			return true
		}
	}
	return false
}
