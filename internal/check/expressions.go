package check

import (
	"fmt"

	"prog8core/internal/ast"
	"prog8core/internal/diag"
	"prog8core/internal/scope"
	"prog8core/internal/value"
)

// checkExprTree recursively validates every binary operation, indexing
// expression, typecast, and call nested anywhere within e (§4.G "Binary
// operator typing", "Indexing", "Typecast", "Call"). Call sites that already
// know e is itself a top-level call should call checkCall directly; this
// walker still recurses into call arguments.
func (c *Checker) checkExprTree(e ast.Expr, sc *scope.Scope) {
	if e == nil {
		return
	}
	switch n := e.(type) {
	case *ast.IdentifierExpr:
		c.checkNameReference(n.Name, n.Pos(), sc)
	case *ast.AddressOfExpr:
		c.checkNameReference(n.Identifier, n.Pos(), sc)
	case *ast.BinaryExpr:
		c.checkBinaryExpr(n, sc)
	case *ast.ArrayIndexedExpr:
		c.checkIndexed(n, sc)
	case *ast.TypecastExpr:
		c.checkTypecast(n, sc)
	case *ast.FunctionCallExpr:
		c.checkCall(n, sc)
		return // checkCall already recurses into Args
	}
	for _, ch := range e.Children() {
		if ce, ok := ch.(ast.Expr); ok {
			c.checkExprTree(ce, sc)
		}
	}
}

// checkBinaryExpr enforces §4.G "Binary operator typing".
func (c *Checker) checkBinaryExpr(b *ast.BinaryExpr, sc *scope.Scope) {
	c.checkExprTree(b.Left, sc)
	c.checkExprTree(b.Right, sc)

	lt := c.typeOf(sc, b.Left)
	rt := c.typeOf(sc, b.Right)
	if lt == value.UNDEFINED_TYPE || rt == value.UNDEFINED_TYPE {
		return
	}

	if !lt.IsNumeric() || !rt.IsNumeric() {
		if !(b.Op == "+" && lt.IsString() && rt.IsString()) {
			c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrOperandNotNumeric,
				fmt.Sprintf("operator %q requires numeric operands", b.Op), b.Pos()).Build())
			return
		}
	}

	switch b.Op {
	case "/", "%":
		if lit, ok := b.Right.(*ast.LiteralExpr); ok {
			if n, isInt := lit.Value.AsIntegerValue(); isInt && n == 0 {
				c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrDivisorNotConstant,
					"division by constant zero", b.Pos()).Build())
			}
			if f, isFloat := lit.Value.AsNumericValue(); isFloat && lit.Value.Type == value.FLOAT && f == 0 {
				c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrDivisorNotConstant,
					"division by constant zero", b.Pos()).Build())
			}
		}
		if b.Op == "%" && (lt.IsSigned() || rt.IsSigned()) {
			c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrModuloSignedOperand,
				"%% requires unsigned integer operands", b.Pos()).Build())
		}
	case "**":
		if lt != value.FLOAT && rt != value.FLOAT {
			c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrPowRequiresFloat,
				"** requires at least one FLOAT operand", b.Pos()).Build())
		}
	case "and", "or", "xor":
		if !lt.IsInteger() || !rt.IsInteger() {
			c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrLogicalNotInteger,
				fmt.Sprintf("%q requires integer operands", b.Op), b.Pos()).Build())
		}
		warnNonBoolean(c, b.Left, b.Pos())
		warnNonBoolean(c, b.Right, b.Pos())
	case "&", "|", "^":
		if !lt.IsInteger() || !rt.IsInteger() {
			c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrBitwiseNotInteger,
				fmt.Sprintf("%q requires integer operands", b.Op), b.Pos()).Build())
		}
	}
}

func warnNonBoolean(c *Checker, e ast.Expr, pos value.Position) {
	lit, ok := e.(*ast.LiteralExpr)
	if !ok {
		return
	}
	if n, isInt := lit.Value.AsIntegerValue(); isInt && n != 0 && n != 1 {
		c.Reporter.Add(diag.NewWarning(diag.WarnNonBooleanLiteral,
			fmt.Sprintf("operand literal %d is not 0 or 1", n), pos).Build())
	}
}

// checkNameReference reports an undefined-name error the first time a read
// (bare identifier, array base, or address-of target) resolves to nothing in
// sc, with a Levenshtein-nearest suggestion when one is close enough.
func (c *Checker) checkNameReference(name string, pos value.Position, sc *scope.Scope) {
	if sc == nil || sc.Lookup(name) != nil {
		return
	}
	b := diag.NewError(diag.KindName, diag.ErrUndefinedName,
		fmt.Sprintf("undefined name %q", name), pos)
	if s := suggestName(sc, name); s != "" {
		b = b.WithHelp(fmt.Sprintf("did you mean %q?", s))
	}
	c.Reporter.Add(b.Build())
}

// checkIndexed enforces §4.G "Indexing": target must be iterable, constant
// indices must be in bounds, and the index expression must be byte-typed.
func (c *Checker) checkIndexed(idx *ast.ArrayIndexedExpr, sc *scope.Scope) {
	c.checkExprTree(idx.Index, sc)
	c.checkNameReference(idx.Identifier, idx.Pos(), sc)

	base := c.symbolType(sc, idx.Identifier)
	if base != value.UNDEFINED_TYPE && !base.IsIterable() {
		c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrForIterableType,
			fmt.Sprintf("%q is not indexable", idx.Identifier), idx.Pos()).Build())
		return
	}

	indexType := c.typeOf(sc, idx.Index)
	if indexType != value.UNDEFINED_TYPE && !indexType.IsByte() {
		c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrIndexNotByte,
			"array/string index must be a byte", idx.Pos()).Build())
	}

	if lit, ok := idx.Index.(*ast.LiteralExpr); ok {
		n, isInt := lit.Value.AsIntegerValue()
		if isInt {
			length, known := c.knownLength(sc, idx.Identifier, base)
			if known && (n < 0 || n >= int64(length)) {
				c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrIndexOutOfBounds,
					fmt.Sprintf("index %d out of bounds for %q", n, idx.Identifier), idx.Pos()).Build())
			}
		}
	}
}

// knownLength returns the declared/heap-backed length of an array or string
// variable, when statically known.
func (c *Checker) knownLength(sc *scope.Scope, name string, t value.DataType) (int, bool) {
	sym := sc.Lookup(name)
	if sym == nil {
		return 0, false
	}
	v, ok := sym.Node.(*ast.VarDecl)
	if !ok {
		return 0, false
	}
	if lit, ok := v.ArraySize.(*ast.LiteralExpr); ok {
		if n, isInt := lit.Value.AsIntegerValue(); isInt {
			return int(n), true
		}
	}
	if c.Heap == nil || v.Value == nil {
		return 0, false
	}
	lit, ok := v.Value.(*ast.LiteralExpr)
	if !ok {
		return 0, false
	}
	id, isHeap := lit.Value.HeapID()
	if !isHeap {
		return 0, false
	}
	if t.IsString() {
		if s, ok := c.Heap.String(id); ok {
			return len(s.Value), true
		}
	}
	if a, ok := c.Heap.Array(id); ok {
		return len(a.Values), true
	}
	return 0, false
}

// checkTypecast enforces §4.G "Typecast": the target type must not be
// iterable.
func (c *Checker) checkTypecast(tc *ast.TypecastExpr, sc *scope.Scope) {
	c.checkExprTree(tc.Value, sc)
	if tc.Target.IsIterable() {
		c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrTypecastIterable,
			fmt.Sprintf("cannot typecast to iterable type %s", tc.Target), tc.Pos()).Build())
	}
}
