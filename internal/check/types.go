package check

import (
	"prog8core/internal/ast"
	"prog8core/internal/builtin"
	"prog8core/internal/scope"
	"prog8core/internal/value"
)

// typeOf infers an expression's static type from its declared/resolved
// context. Returns value.UNDEFINED_TYPE when the type cannot be determined
// (e.g. an unresolved name, or a call to a subroutine with no/multiple
// return values) — callers treat that as "already reported elsewhere,
// don't cascade a second error".
func (c *Checker) typeOf(sc *scope.Scope, e ast.Expr) value.DataType {
	if e == nil || sc == nil {
		return value.UNDEFINED_TYPE
	}
	switch n := e.(type) {
	case *ast.LiteralExpr:
		return n.Value.Type

	case *ast.IdentifierExpr:
		return c.symbolType(sc, n.Name)

	case *ast.RegisterExpr:
		return value.UBYTE

	case *ast.AddressOfExpr:
		return value.UWORD

	case *ast.DirectMemoryReadExpr:
		return value.UBYTE

	case *ast.ArrayIndexedExpr:
		arr := c.symbolType(sc, n.Identifier)
		if arr.IsArray() {
			return arr.ElementType()
		}
		if arr.IsString() {
			return value.UBYTE
		}
		return value.UNDEFINED_TYPE

	case *ast.TypecastExpr:
		return n.Target

	case *ast.PrefixExpr:
		if n.Op == "not" {
			return value.UBYTE
		}
		return c.typeOf(sc, n.Inner)

	case *ast.BinaryExpr:
		return c.binaryResultType(n.Op, c.typeOf(sc, n.Left), c.typeOf(sc, n.Right))

	case *ast.RangeExpr:
		return c.typeOf(sc, n.From)

	case *ast.FunctionCallExpr:
		return c.callResultType(sc, n)
	}
	return value.UNDEFINED_TYPE
}

// symbolType resolves name within sc and returns its declared type, or
// UNDEFINED_TYPE if name is unbound or bound to something typeless (block,
// label, subroutine).
func (c *Checker) symbolType(sc *scope.Scope, name string) value.DataType {
	sym := sc.Lookup(name)
	if sym == nil {
		return value.UNDEFINED_TYPE
	}
	switch sym.Kind {
	case scope.SymVarDecl:
		if v, ok := sym.Node.(*ast.VarDecl); ok {
			return v.DataType
		}
		if f, ok := sym.Node.(*ast.ForLoop); ok {
			return c.typeOf(c.Table.ScopeOf(f), f.Iterable).ElementType()
		}
	case scope.SymParam:
		if sub, ok := sym.Node.(*ast.Subroutine); ok {
			for _, p := range sub.Params {
				if p.Name == name {
					return p.Type
				}
			}
		}
	}
	return value.UNDEFINED_TYPE
}

// binaryResultType applies the promotion/result-type rule each operator
// category uses (§4.D, §4.G "Binary operator typing"): comparisons and
// logical ops always yield UBYTE (boolean-as-byte); bitwise and shift ops
// yield UWORD when either operand is a word, else UBYTE; arithmetic
// promotes byte+word to word and anything with a float operand to float.
func (c *Checker) binaryResultType(op string, l, r value.DataType) value.DataType {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=", "and", "or", "xor":
		return value.UBYTE
	case "&", "|", "^", "<<", ">>":
		if l.IsWord() || r.IsWord() {
			return value.UWORD
		}
		return value.UBYTE
	}
	if l == value.FLOAT || r == value.FLOAT {
		return value.FLOAT
	}
	if l.IsString() && r.IsString() {
		return value.STR
	}
	if l.IsWord() || r.IsWord() {
		if l.IsSigned() || r.IsSigned() {
			return value.WORD
		}
		return value.UWORD
	}
	return l
}

// callResultType gives a best-effort result type for a handful of built-ins
// whose result type is determined by their argument, and for user
// subroutines with exactly one declared return value; anything else (void
// builtins, multi-return subs, unresolved targets) yields UNDEFINED_TYPE and
// callers skip type-compatibility checks that would otherwise cascade.
func (c *Checker) callResultType(sc *scope.Scope, call *ast.FunctionCallExpr) value.DataType {
	if f, ok := builtin.Lookup(call.Target); ok {
		switch f.Name {
		case "lsb", "msb", "sizeof":
			return value.UBYTE
		case "mkword", "sqrt16":
			return value.UWORD
		case "abs", "sgn", "min", "max":
			if len(call.Args) > 0 {
				return c.typeOf(sc, call.Args[0])
			}
		}
		return value.UNDEFINED_TYPE
	}
	sym := sc.Lookup(call.Target)
	if sym == nil || sym.Kind != scope.SymSubroutine {
		return value.UNDEFINED_TYPE
	}
	sub, ok := sym.Node.(*ast.Subroutine)
	if !ok || len(sub.ReturnTypes) != 1 {
		return value.UNDEFINED_TYPE
	}
	return sub.ReturnTypes[0]
}

// assignable reports whether a value of type src may be stored into a
// target of type dst under the compatibility table in §4.G "Assignment":
// BYTE<-BYTE, UBYTE<-UBYTE, WORD<-{BYTE,UBYTE,WORD}, UWORD<-{UBYTE,UWORD},
// FLOAT<-Numeric, STR<-STR, STR_S<-STR_S. Narrowing word-to-byte requires an
// explicit msb/lsb cast and is never implicitly assignable.
func assignable(dst, src value.DataType) bool {
	if dst == value.UNDEFINED_TYPE || src == value.UNDEFINED_TYPE {
		return true // already reported as a name/resolution error elsewhere
	}
	switch dst {
	case value.BYTE:
		return src == value.BYTE
	case value.UBYTE:
		return src == value.UBYTE
	case value.WORD:
		return src == value.BYTE || src == value.UBYTE || src == value.WORD
	case value.UWORD:
		return src == value.UBYTE || src == value.UWORD
	case value.FLOAT:
		return src.IsNumeric()
	case value.STR:
		return src == value.STR
	case value.STR_S:
		return src == value.STR_S
	default:
		return dst == src
	}
}
