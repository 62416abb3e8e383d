package check

import (
	"fmt"

	"prog8core/internal/ast"
	"prog8core/internal/builtin"
	"prog8core/internal/diag"
	"prog8core/internal/scope"
	"prog8core/internal/value"
)

// checkAssignment enforces §4.G "Assignment": target validity, CONST
// immutability, and the type-compatibility table. Multi-target assignment
// is only valid for a call to an asm subroutine whose return arity/types
// match the targets. By the time this runs, ast.DesugarAugmented has
// already rewritten every `target op= value` into plain `target = target
// op value` form (it must run before the optimize fixed-point loop, not
// here, so the optimizer's strength-reduction rules can see it — see
// ast.DesugarAugmented's doc comment) — AugOp is always "" here.
func (c *Checker) checkAssignment(a *ast.Assignment, sc *scope.Scope) {
	for _, t := range a.Targets {
		c.checkAssignTarget(t, sc)
	}

	if len(a.Targets) > 1 {
		c.checkMultiAssign(a, sc)
		return
	}

	if len(a.Targets) != 1 {
		return
	}
	c.checkExprTree(a.Value, sc)

	dst := c.targetType(a.Targets[0], sc)
	src := c.typeOf(sc, a.Value)
	if dst != value.UNDEFINED_TYPE && src != value.UNDEFINED_TYPE && !assignable(dst, src) {
		c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrTypeIncompatible,
			fmt.Sprintf("cannot assign value of type %s to target of type %s", src, dst), a.Pos()).Build())
	}
}

func (c *Checker) checkAssignTarget(t ast.AssignTarget, sc *scope.Scope) {
	switch x := t.(type) {
	case *ast.IdentifierTarget:
		sym := sc.Lookup(x.Name)
		if sym == nil {
			b := diag.NewError(diag.KindName, diag.ErrUndefinedName,
				fmt.Sprintf("undefined name %q", x.Name), t.Pos())
			if s := suggestName(sc, x.Name); s != "" {
				b = b.WithHelp(fmt.Sprintf("did you mean %q?", s))
			}
			c.Reporter.Add(b.Build())
			return
		}
		if vd, ok := sym.Node.(*ast.VarDecl); ok && vd.DeclKind == ast.DeclConst {
			c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrAssignToConst,
				fmt.Sprintf("cannot assign to CONST %q", x.Name), t.Pos()).Build())
		}
	case *ast.IndexedTarget:
		// indexability, index type and constant-index bounds are checked as for
		// an indexed read; the element type via targetType/assignable in checkAssignment.
		c.checkIndexed(&ast.ArrayIndexedExpr{PosVal: x.PosVal, Identifier: x.Name, Index: x.Index}, sc)
	case *ast.RegisterTarget, *ast.MemoryTarget:
		// register/memory targets are always assignable locations.
	default:
		c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrInvalidAssignTarget,
			"invalid assignment target", t.Pos()).Build())
	}
}

func (c *Checker) targetType(t ast.AssignTarget, sc *scope.Scope) value.DataType {
	switch x := t.(type) {
	case *ast.IdentifierTarget:
		return c.symbolType(sc, x.Name)
	case *ast.RegisterTarget:
		return value.UBYTE
	case *ast.IndexedTarget:
		arr := c.symbolType(sc, x.Name)
		if arr.IsArray() {
			return arr.ElementType()
		}
		if arr.IsString() {
			return value.UBYTE
		}
		return value.UNDEFINED_TYPE
	case *ast.MemoryTarget:
		return value.UBYTE
	default:
		return value.UNDEFINED_TYPE
	}
}

// checkMultiAssign enforces that a multi-target assignment's value is a
// call to an asm subroutine whose declared return arity and types match
// the targets positionally.
func (c *Checker) checkMultiAssign(a *ast.Assignment, sc *scope.Scope) {
	call, ok := a.Value.(*ast.FunctionCallExpr)
	if !ok {
		c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrMultiAssignArity,
			"multi-target assignment requires a call to an asm subroutine", a.Pos()).Build())
		return
	}
	if _, isBuiltin := builtin.Lookup(call.Target); isBuiltin {
		c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrMultiAssignArity,
			"multi-target assignment requires a call to an asm subroutine", a.Pos()).Build())
		return
	}
	sym := sc.Lookup(call.Target)
	if sym == nil || sym.Kind != scope.SymSubroutine {
		return // unresolved name already reported elsewhere
	}
	sub, ok := sym.Node.(*ast.Subroutine)
	if !ok || !sub.IsAsmSubroutine {
		c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrMultiAssignArity,
			"multi-target assignment requires a call to an asm subroutine", a.Pos()).Build())
		return
	}
	if len(sub.ReturnTypes) != len(a.Targets) {
		c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrMultiAssignArity,
			fmt.Sprintf("%q returns %d value(s), assignment has %d target(s)", sub.Name, len(sub.ReturnTypes), len(a.Targets)), a.Pos()).Build())
		return
	}
	for i, target := range a.Targets {
		dst := c.targetType(target, sc)
		if dst != value.UNDEFINED_TYPE && !assignable(dst, sub.ReturnTypes[i]) {
			c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrTypeIncompatible,
				fmt.Sprintf("return value %d of type %s is not assignable to target of type %s", i, sub.ReturnTypes[i], dst), a.Pos()).Build())
		}
	}
	c.checkCall(call, sc)
}
