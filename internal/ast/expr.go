package ast

import (
	"fmt"

	"prog8core/internal/value"
)

func (*LiteralExpr) isExpr()          {}
func (*IdentifierExpr) isExpr()       {}
func (*PrefixExpr) isExpr()           {}
func (*BinaryExpr) isExpr()           {}
func (*FunctionCallExpr) isExpr()     {}
func (*ArrayIndexedExpr) isExpr()     {}
func (*AddressOfExpr) isExpr()        {}
func (*TypecastExpr) isExpr()         {}
func (*RangeExpr) isExpr()            {}
func (*RegisterExpr) isExpr()         {}
func (*DirectMemoryReadExpr) isExpr() {}

// LiteralExpr wraps a constant value.Literal in expression position.
type LiteralExpr struct {
	base
	Value value.Literal
}

func (e *LiteralExpr) Pos() value.Position    { return e.Value.Pos }
func (e *LiteralExpr) EndPos() value.Position { return e.Value.Pos }
func (e *LiteralExpr) Kind() NodeKind         { return KLiteralExpr }
func (e *LiteralExpr) String() string         { return e.Value.String() }
func (e *LiteralExpr) Children() []Node       { return nil }

// IdentifierExpr references a name resolved by lexical scope lookup.
type IdentifierExpr struct {
	base
	PosVal value.Position
	Name   string
}

func (e *IdentifierExpr) Pos() value.Position    { return e.PosVal }
func (e *IdentifierExpr) EndPos() value.Position { return e.PosVal }
func (e *IdentifierExpr) Kind() NodeKind         { return KIdentifierExpr }
func (e *IdentifierExpr) String() string         { return e.Name }
func (e *IdentifierExpr) Children() []Node       { return nil }

// PrefixExpr is a unary prefix operation: +, -, ~, not.
type PrefixExpr struct {
	base
	PosVal value.Position
	Op     string
	Inner  Expr
}

func (e *PrefixExpr) Pos() value.Position    { return e.PosVal }
func (e *PrefixExpr) EndPos() value.Position { return e.Inner.EndPos() }
func (e *PrefixExpr) Kind() NodeKind         { return KPrefixExpr }
func (e *PrefixExpr) String() string         { return fmt.Sprintf("%s(%s)", e.Op, e.Inner) }
func (e *PrefixExpr) Children() []Node       { return []Node{e.Inner} }

// BinaryExpr is a binary operation over two expressions.
type BinaryExpr struct {
	base
	Op          string
	Left, Right Expr
}

func (e *BinaryExpr) Pos() value.Position    { return e.Left.Pos() }
func (e *BinaryExpr) EndPos() value.Position { return e.Right.EndPos() }
func (e *BinaryExpr) Kind() NodeKind         { return KBinaryExpr }
func (e *BinaryExpr) String() string         { return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right) }
func (e *BinaryExpr) Children() []Node       { return []Node{e.Left, e.Right} }

// FunctionCallExpr calls a subroutine or built-in in expression position.
type FunctionCallExpr struct {
	base
	PosVal value.Position
	Target string // possibly dotted, e.g. "c64scr.print"
	Args   []Expr
}

func (e *FunctionCallExpr) Pos() value.Position    { return e.PosVal }
func (e *FunctionCallExpr) EndPos() value.Position { return e.PosVal }
func (e *FunctionCallExpr) Kind() NodeKind         { return KFunctionCallExpr }
func (e *FunctionCallExpr) String() string         { return fmt.Sprintf("%s(...)", e.Target) }
func (e *FunctionCallExpr) Children() []Node {
	out := make([]Node, 0, len(e.Args))
	for _, a := range e.Args {
		out = append(out, a)
	}
	return out
}

// ArrayIndexedExpr reads a single element from an array or string variable.
type ArrayIndexedExpr struct {
	base
	PosVal     value.Position
	Identifier string
	Index      Expr
}

func (e *ArrayIndexedExpr) Pos() value.Position    { return e.PosVal }
func (e *ArrayIndexedExpr) EndPos() value.Position { return e.PosVal }
func (e *ArrayIndexedExpr) Kind() NodeKind         { return KArrayIndexedExpr }
func (e *ArrayIndexedExpr) String() string         { return fmt.Sprintf("%s[%s]", e.Identifier, e.Index) }
func (e *ArrayIndexedExpr) Children() []Node        { return []Node{e.Index} }

// AddressOfExpr takes the address of a (possibly scoped) identifier.
// ScopedName is populated by name resolution before IR emission (§3).
type AddressOfExpr struct {
	base
	PosVal     value.Position
	Identifier string
	ScopedName string
}

func (e *AddressOfExpr) Pos() value.Position    { return e.PosVal }
func (e *AddressOfExpr) EndPos() value.Position { return e.PosVal }
func (e *AddressOfExpr) Kind() NodeKind         { return KAddressOfExpr }
func (e *AddressOfExpr) String() string         { return "&" + e.Identifier }
func (e *AddressOfExpr) Children() []Node       { return nil }

// TypecastExpr casts an expression to a new scalar type.
type TypecastExpr struct {
	base
	Target value.DataType
	Value  Expr
}

func (e *TypecastExpr) Pos() value.Position    { return e.Value.Pos() }
func (e *TypecastExpr) EndPos() value.Position { return e.Value.EndPos() }
func (e *TypecastExpr) Kind() NodeKind         { return KTypecastExpr }
func (e *TypecastExpr) String() string         { return fmt.Sprintf("%s(%s)", e.Target, e.Value) }
func (e *TypecastExpr) Children() []Node       { return []Node{e.Value} }

// RangeExpr is `from to to [step step]`, as used in `for` loops. When all
// endpoints are constant it materializes to an array/string literal (§4.D).
type RangeExpr struct {
	base
	PosVal         value.Position
	From, To, Step Expr // Step may be nil (defaults to 1 or -1 by direction)
}

func (e *RangeExpr) Pos() value.Position    { return e.PosVal }
func (e *RangeExpr) EndPos() value.Position { return e.PosVal }
func (e *RangeExpr) Kind() NodeKind         { return KRangeExpr }
func (e *RangeExpr) String() string         { return fmt.Sprintf("%s to %s", e.From, e.To) }
func (e *RangeExpr) Children() []Node {
	out := []Node{e.From, e.To}
	if e.Step != nil {
		out = append(out, e.Step)
	}
	return out
}

// RegisterExpr reads a hardware register's current value.
type RegisterExpr struct {
	base
	PosVal   value.Position
	Register string
}

func (e *RegisterExpr) Pos() value.Position    { return e.PosVal }
func (e *RegisterExpr) EndPos() value.Position { return e.PosVal }
func (e *RegisterExpr) Kind() NodeKind         { return KRegisterExpr }
func (e *RegisterExpr) String() string         { return e.Register }
func (e *RegisterExpr) Children() []Node       { return nil }

// DirectMemoryReadExpr reads a byte/word directly from a memory address.
type DirectMemoryReadExpr struct {
	base
	Address Expr
}

func (e *DirectMemoryReadExpr) Pos() value.Position    { return e.Address.Pos() }
func (e *DirectMemoryReadExpr) EndPos() value.Position { return e.Address.EndPos() }
func (e *DirectMemoryReadExpr) Kind() NodeKind         { return KDirectMemoryReadExpr }
func (e *DirectMemoryReadExpr) String() string         { return fmt.Sprintf("@(%s)", e.Address) }
func (e *DirectMemoryReadExpr) Children() []Node        { return []Node{e.Address} }

// StructurallyEqualExpr is a syntactic equality check used by the
// self-assignment and redundant-store statement-optimizer rules (§4.F). It
// does not evaluate constant subexpressions; run the expression optimizer
// to a fixed point first if semantic equality is wanted.
func StructurallyEqualExpr(a, b Expr) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case *IdentifierExpr:
		return x.Name == b.(*IdentifierExpr).Name
	case *RegisterExpr:
		return x.Register == b.(*RegisterExpr).Register
	case *LiteralExpr:
		y := b.(*LiteralExpr)
		return x.Value.Type == y.Value.Type && x.Value.String() == y.Value.String()
	case *ArrayIndexedExpr:
		y := b.(*ArrayIndexedExpr)
		return x.Identifier == y.Identifier && StructurallyEqualExpr(x.Index, y.Index)
	case *DirectMemoryReadExpr:
		y := b.(*DirectMemoryReadExpr)
		return StructurallyEqualExpr(x.Address, y.Address)
	case *BinaryExpr:
		y := b.(*BinaryExpr)
		return x.Op == y.Op && StructurallyEqualExpr(x.Left, y.Left) && StructurallyEqualExpr(x.Right, y.Right)
	case *PrefixExpr:
		y := b.(*PrefixExpr)
		return x.Op == y.Op && StructurallyEqualExpr(x.Inner, y.Inner)
	default:
		return false
	}
}
