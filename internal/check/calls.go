package check

import (
	"fmt"

	"prog8core/internal/ast"
	"prog8core/internal/builtin"
	"prog8core/internal/diag"
	"prog8core/internal/scope"
	"prog8core/internal/value"
)

// checkCall enforces §4.G "Call": arity/type match against the target
// (built-in or subroutine), the `swap` special case, and asm-subroutine
// register-class compatibility. It recurses into every argument.
func (c *Checker) checkCall(call *ast.FunctionCallExpr, sc *scope.Scope) {
	for _, a := range call.Args {
		c.checkExprTree(a, sc)
	}

	if f, ok := builtin.Lookup(call.Target); ok {
		c.checkBuiltinCall(call, f, sc)
		return
	}

	sym := sc.Lookup(call.Target)
	if sym == nil {
		b := diag.NewError(diag.KindName, diag.ErrUndefinedName,
			fmt.Sprintf("undefined subroutine %q", call.Target), call.Pos())
		if s := suggestName(sc, call.Target); s != "" {
			b = b.WithHelp(fmt.Sprintf("did you mean %q?", s))
		}
		c.Reporter.Add(b.Build())
		return
	}
	sub, ok := sym.Node.(*ast.Subroutine)
	if !ok {
		c.Reporter.Add(diag.NewError(diag.KindName, diag.ErrUndefinedName,
			fmt.Sprintf("%q is not callable", call.Target), call.Pos()).Build())
		return
	}
	if len(call.Args) != len(sub.Params) {
		c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrCallArity,
			fmt.Sprintf("%q takes %d argument(s), got %d", call.Target, len(sub.Params), len(call.Args)), call.Pos()).Build())
		return
	}
	for i, a := range call.Args {
		argT := c.typeOf(sc, a)
		paramT := sub.Params[i].Type
		if argT == value.UNDEFINED_TYPE {
			continue
		}
		if sub.IsAsmSubroutine {
			if !c.registerCompatible(sub, i, argT) {
				c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrCallArgType,
					fmt.Sprintf("argument %d of %q is not compatible with its register class", i, call.Target), a.Pos()).Build())
			}
			continue
		}
		if !assignable(paramT, argT) {
			c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrCallArgType,
				fmt.Sprintf("argument %d of %q has type %s, expected %s", i, call.Target, argT, paramT), a.Pos()).Build())
		}
	}
}

func (c *Checker) checkBuiltinCall(call *ast.FunctionCallExpr, f builtin.Func, sc *scope.Scope) {
	if call.Target == "swap" {
		c.checkSwap(call, sc)
		return
	}
	if !f.Variadic && len(call.Args) != len(f.Params) {
		c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrCallArity,
			fmt.Sprintf("%q takes %d argument(s), got %d", f.Name, len(f.Params), len(call.Args)), call.Pos()).Build())
		return
	}
	if f.Variadic && len(call.Args) < len(f.Params) {
		c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrCallArity,
			fmt.Sprintf("%q takes at least %d argument(s), got %d", f.Name, len(f.Params), len(call.Args)), call.Pos()).Build())
		return
	}
	for i, a := range call.Args {
		argT := c.typeOf(sc, a)
		if argT == value.UNDEFINED_TYPE {
			continue
		}
		if !f.Accepts(i, argT) {
			c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrCallArgType,
				fmt.Sprintf("argument %d of %q has unsupported type %s", i, f.Name, argT), a.Pos()).Build())
		}
	}
}

// checkSwap enforces "`swap` requires two equal-typed, distinct, non-
// constant numeric arguments".
func (c *Checker) checkSwap(call *ast.FunctionCallExpr, sc *scope.Scope) {
	if len(call.Args) != 2 {
		c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrCallArity,
			"swap takes exactly 2 arguments", call.Pos()).Build())
		return
	}
	a, b := call.Args[0], call.Args[1]
	at, bt := c.typeOf(sc, a), c.typeOf(sc, b)
	if at != value.UNDEFINED_TYPE && bt != value.UNDEFINED_TYPE && at != bt {
		c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrSwapArguments,
			"swap arguments must have the same type", call.Pos()).Build())
	}
	if ast.StructurallyEqualExpr(a, b) {
		c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrSwapArguments,
			"swap arguments must be distinct", call.Pos()).Build())
	}
	if _, aConst := a.(*ast.LiteralExpr); aConst {
		c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrSwapArguments,
			"swap arguments must not be constant", call.Pos()).Build())
	}
	if _, bConst := b.(*ast.LiteralExpr); bConst {
		c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrSwapArguments,
			"swap arguments must not be constant", call.Pos()).Build())
	}
}

// registerCompatible enforces "argument types must be compatible with
// declared register classes (byte for single-register/status-flag; word or
// iterable for register pair)".
func (c *Checker) registerCompatible(sub *ast.Subroutine, pos int, argT value.DataType) bool {
	if pos >= len(sub.AsmParameterRegisters) {
		return true
	}
	reg := sub.AsmParameterRegisters[pos].Name
	// A status flag ("Pc", "Pz", ...) takes a byte like a single register;
	// any other multi-letter name (e.g. "X/Y", "AY") denotes a register pair.
	isFlag := len(reg) == 2 && (reg[0] == 'P' || reg[0] == 'p')
	isPair := len(reg) > 1 && !isFlag
	if isPair {
		return argT.IsWord() || argT.IsIterable()
	}
	return argT.IsByte()
}
