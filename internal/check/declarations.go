package check

import (
	"fmt"

	"prog8core/internal/ast"
	"prog8core/internal/diag"
	"prog8core/internal/scope"
	"prog8core/internal/value"
)

// checkVarDecl enforces §4.G "Declarations" and injects the checker's one
// permitted tree mutation: a default initializer (numeric zero, or the
// string sentinel) for an uninitialized VAR.
func (c *Checker) checkVarDecl(v *ast.VarDecl, sc *scope.Scope) {
	if v.DeclKind == ast.DeclConst && !v.DataType.IsNumeric() {
		c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrInvalidConstType,
			fmt.Sprintf("CONST %q must have a numeric type", v.Name), v.Pos()).Build())
	}

	if v.DataType == value.FLOAT && !c.floatsEnabled {
		c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrFloatsDisabled,
			fmt.Sprintf("float declaration %q requires '%%option enable_floats'", v.Name), v.Pos()).Build())
	}

	if v.DataType.IsArray() {
		c.checkArrayDecl(v)
	}

	if v.DeclKind == ast.DeclMemory {
		c.checkMemoryAddress(v)
	}

	if v.Value != nil && referencesName(v.Value, v.Name) {
		c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrRecursiveInitializer,
			fmt.Sprintf("initializer of %q references itself", v.Name), v.Pos()).Build())
	}

	if v.ArraySize != nil {
		c.checkExprTree(v.ArraySize, sc)
	}

	if v.Value != nil {
		c.checkExprTree(v.Value, sc)
		vt := c.typeOf(sc, v.Value)
		if vt != value.UNDEFINED_TYPE && !assignable(v.DataType, vt) {
			c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrTypeIncompatible,
				fmt.Sprintf("cannot initialize %s %q with a value of type %s", v.DataType, v.Name, vt), v.Pos()).Build())
		}
	}

	if v.DeclKind == ast.DeclVar && v.Value == nil {
		c.injectDefaultInitializer(v)
	}
}

func (c *Checker) checkArrayDecl(v *ast.VarDecl) {
	if v.ArraySize == nil && v.Value == nil {
		c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrArraySizeRequired,
			fmt.Sprintf("unsized array %q needs an iterable initializer", v.Name), v.Pos()).Build())
		return
	}
	if v.ArraySize == nil && v.DeclKind == ast.DeclMemory {
		c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrArraySizeRequired,
			fmt.Sprintf("memory-mapped array %q must declare a size", v.Name), v.Pos()).Build())
		return
	}
	lit, ok := v.ArraySize.(*ast.LiteralExpr)
	if !ok {
		return
	}
	n, isInt := lit.Value.AsIntegerValue()
	if !isInt {
		return
	}
	min, max, ok := value.ArrayBounds(v.DataType)
	if ok && (n < int64(min) || n > int64(max)) {
		c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrArraySizeOutOfBounds,
			fmt.Sprintf("array %q size %d is out of bounds [%d,%d]", v.Name, n, min, max), v.Pos()).Build())
	}
}

func (c *Checker) checkMemoryAddress(v *ast.VarDecl) {
	lit, ok := v.Value.(*ast.LiteralExpr)
	if !ok {
		return
	}
	addr, isInt := lit.Value.AsIntegerValue()
	if !isInt || addr < 0 || addr > value.MaxUWord {
		c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrMemoryAddressRange,
			fmt.Sprintf("memory address for %q must be in 0..65535", v.Name), v.Pos()).Build())
	}
}

// injectDefaultInitializer gives an uninitialized VAR its default value:
// numeric zero for scalar/array numeric types, the shared empty-string
// sentinel for STR/STR_S (§4.G, §3). This is the one tree mutation the
// checker performs.
func (c *Checker) injectDefaultInitializer(v *ast.VarDecl) {
	switch {
	case v.DataType.IsNumeric():
		var lit value.Literal
		if v.DataType == value.FLOAT {
			lit = value.NewFloat(0, v.Pos())
		} else {
			lit = value.NewInteger(v.DataType, 0, v.Pos())
		}
		v.Value = &ast.LiteralExpr{Value: lit}
	case v.DataType.IsString() && c.Heap != nil:
		id := c.Heap.StringSentinel()
		v.Value = &ast.LiteralExpr{Value: value.NewHeapLiteral(v.DataType, id, v.Pos())}
	}
}

// referencesName reports whether e contains an identifier reference to
// name anywhere in its subtree (§4.G "recursive initializers forbidden").
func referencesName(e ast.Expr, name string) bool {
	if e == nil {
		return false
	}
	if id, ok := e.(*ast.IdentifierExpr); ok && id.Name == name {
		return true
	}
	for _, ch := range e.Children() {
		if ce, ok := ch.(ast.Expr); ok && referencesName(ce, name) {
			return true
		}
	}
	return false
}
