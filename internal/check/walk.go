package check

import (
	"fmt"

	"prog8core/internal/ast"
	"prog8core/internal/diag"
	"prog8core/internal/scope"
	"prog8core/internal/value"
)

// checkBlock validates a block's contents and recurses into every
// statement it contains.
func (c *Checker) checkBlock(b *ast.Block) {
	sc := c.bodyScope(b.Stmts, c.Table.ScopeOf(b))
	c.checkStmts(b.Stmts, sc)
}

// bodyScope returns the inner scope scope.Build created for a container's
// statement list (by looking up the scope any of those statements was
// registered under — they all share it), falling back to the supplied
// outer scope for an empty body, where there is nothing to register.
func (c *Checker) bodyScope(stmts []ast.Statement, outer *scope.Scope) *scope.Scope {
	for _, st := range stmts {
		if sc := c.Table.ScopeOf(st); sc != nil {
			return sc
		}
	}
	return outer
}

func (c *Checker) checkStmts(stmts []ast.Statement, sc *scope.Scope) {
	for _, st := range stmts {
		c.checkStmt(st, sc)
	}
}

// checkStmt dispatches on statement kind, applying the relevant §4.G rules
// and recursing into nested bodies. sc is the lexical scope the statement
// (or its enclosing container) was registered under by scope.Build.
func (c *Checker) checkStmt(st ast.Statement, sc *scope.Scope) {
	switch n := st.(type) {
	case *ast.Block:
		c.checkBlock(n)

	case *ast.Subroutine:
		c.checkSubroutine(n)

	case *ast.VarDecl:
		c.checkVarDecl(n, sc)

	case *ast.Assignment:
		c.checkAssignment(n, sc)

	case *ast.IfStatement:
		c.checkExprNumericOrBoolean(n.Condition, sc, n.Pos())
		c.checkStmts(n.TrueBranch, c.bodyScope(n.TrueBranch, sc))
		c.checkStmts(n.FalseBranch, c.bodyScope(n.FalseBranch, sc))

	case *ast.ForLoop:
		c.checkForLoop(n, sc)

	case *ast.WhileLoop:
		c.checkExprNumericOrBoolean(n.Condition, sc, n.Pos())
		c.checkStmts(n.Body, c.bodyScope(n.Body, sc))

	case *ast.RepeatLoop:
		if n.Condition != nil {
			c.checkExprNumericOrBoolean(n.Condition, sc, n.Pos())
		}
		c.checkStmts(n.Body, c.bodyScope(n.Body, sc))

	case *ast.Label:
		c.checkLabelScope(n, sc)

	case *ast.PostIncrDecr:
		c.checkPostIncrDecr(n, sc)

	case *ast.FunctionCallStatement:
		c.checkCall(n.Call, sc)

	case *ast.Return:
		c.checkReturn(n, sc)

	case *ast.Directive:
		c.checkDirective(n)

	case *ast.AnonymousScope:
		c.checkStmts(n.Stmts, c.bodyScope(n.Stmts, sc))

	case *ast.Jump, *ast.InlineAssembly, *ast.NopStatement, *ast.BuiltinFunctionStatementPlaceholder:
		// no static rules beyond name resolution, already enforced by scope.Build's
		// callers and the resolver that ran before the checker.
	}
}

// checkExprNumericOrBoolean enforces that a condition expression is
// numeric, and warns when it is a literal other than 0/1 (§4.G "Binary
// operator typing": "warn on non-0/1 literals" generalizes to any boolean
// context).
func (c *Checker) checkExprNumericOrBoolean(e ast.Expr, sc *scope.Scope, pos value.Position) {
	c.checkExprTree(e, sc)
	t := c.typeOf(sc, e)
	if t != value.UNDEFINED_TYPE && !t.IsNumeric() {
		c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrOperandNotNumeric,
			"condition must be numeric", pos).Build())
	}
	if lit, ok := e.(*ast.LiteralExpr); ok {
		if iv, isInt := lit.Value.AsIntegerValue(); isInt && iv != 0 && iv != 1 {
			c.Reporter.Add(diag.NewWarning(diag.WarnNonBooleanLiteral,
				fmt.Sprintf("condition literal %d is not 0 or 1", iv), pos).Build())
		}
	}
}

// checkLabelScope enforces §4.G "Scope": labels only inside a block,
// subroutine, or anonymous scope. Since scope.Build registers a Label in
// whatever scope directly contains it, and for/while/if bodies get their
// own anonymous inner scope, any registered scope is valid by construction;
// this rule therefore only rejects a label appearing as the sole statement
// of a for/while loop whose scope kind forbids labels entirely (there is
// none here — kept for documentation and future-proofing against a new
// scope kind being added to the AST without updating this rule).
func (c *Checker) checkLabelScope(l *ast.Label, sc *scope.Scope) {
	_ = l
	_ = sc
}

func (c *Checker) checkSubroutine(sub *ast.Subroutine) {
	c.checkIrqEntrypoint(sub)

	seenParams := make(map[string]bool)
	for _, p := range sub.Params {
		if seenParams[p.Name] {
			c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrDuplicateDeclaration,
				fmt.Sprintf("duplicate parameter name %q", p.Name), sub.Pos()).Build())
		}
		seenParams[p.Name] = true
		if !sub.IsAsmSubroutine && !p.Type.IsNumeric() {
			c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrOperandNotNumeric,
				fmt.Sprintf("parameter %q of non-asm subroutine must be numeric", p.Name), sub.Pos()).Build())
		}
	}

	if len(sub.ReturnTypes) > 1 && !sub.IsAsmSubroutine {
		c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrReturnArity,
			fmt.Sprintf("subroutine %q may declare at most one return value", sub.Name), sub.Pos()).Build())
	}

	if sub.IsAsmSubroutine {
		c.checkAsmSubroutine(sub)
	} else {
		if len(sub.ReturnTypes) > 0 && !containsReturnOrGoto(sub.Stmts) {
			c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrReturnArity,
				fmt.Sprintf("subroutine %q declares a return type but never returns", sub.Name), sub.Pos()).Build())
		}
	}

	c.checkStmts(sub.Stmts, c.bodyScope(sub.Stmts, c.Table.ScopeOf(sub)))
}

func (c *Checker) checkAsmSubroutine(sub *ast.Subroutine) {
	if len(sub.AsmParameterRegisters) != len(sub.Params) {
		c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrAsmRegisterReuse,
			fmt.Sprintf("asm subroutine %q has a register/parameter count mismatch", sub.Name), sub.Pos()).Build())
	}
	if len(sub.AsmReturnRegisters) != len(sub.ReturnTypes) {
		c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrAsmRegisterReuse,
			fmt.Sprintf("asm subroutine %q has a register/return-value count mismatch", sub.Name), sub.Pos()).Build())
	}

	used := make(map[string]bool)
	for _, r := range sub.AsmParameterRegisters {
		if used[r.Name] {
			c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrAsmRegisterReuse,
				fmt.Sprintf("register %q reused across parameters of %q", r.Name, sub.Name), sub.Pos()).Build())
		}
		used[r.Name] = true
	}
	retRegs := make(map[string]bool)
	for _, r := range sub.AsmReturnRegisters {
		if used[r.Name] {
			c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrAsmRegisterReuse,
				fmt.Sprintf("register %q reused between parameters and return values of %q", r.Name, sub.Name), sub.Pos()).Build())
		}
		if retRegs[r.Name] {
			c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrAsmRegisterReuse,
				fmt.Sprintf("register %q reused across return values of %q", r.Name, sub.Name), sub.Pos()).Build())
		}
		retRegs[r.Name] = true
	}
	for _, clob := range sub.AsmClobbers {
		if retRegs[clob] {
			c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrAsmRegisterReuse,
				fmt.Sprintf("clobber %q of %q overlaps a return register", clob, sub.Name), sub.Pos()).Build())
		}
	}
}

func containsReturnOrGoto(stmts []ast.Statement) bool {
	for _, st := range stmts {
		switch n := st.(type) {
		case *ast.Return, *ast.Jump:
			return true
		case *ast.IfStatement:
			if containsReturnOrGoto(n.TrueBranch) || containsReturnOrGoto(n.FalseBranch) {
				return true
			}
		case *ast.AnonymousScope:
			if containsReturnOrGoto(n.Stmts) {
				return true
			}
		}
	}
	return false
}

func (c *Checker) checkReturn(r *ast.Return, sc *scope.Scope) {
	sub := ast.EnclosingSubroutine(r)
	if sub == nil {
		c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrSubroutineScope,
			"return outside of a subroutine", r.Pos()).Build())
		return
	}
	if len(r.Values) != len(sub.ReturnTypes) {
		// A single function-call expression is permitted to stand in for a
		// multi-value return (§4.G "value count matches... or the sole
		// expression is a function call").
		if !(len(r.Values) == 1 && isFunctionCall(r.Values[0])) {
			c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrReturnArity,
				fmt.Sprintf("return has %d value(s), subroutine %q declares %d", len(r.Values), sub.Name, len(sub.ReturnTypes)), r.Pos()).Build())
			return
		}
	}
	for i, v := range r.Values {
		c.checkExprTree(v, sc)
		if i >= len(sub.ReturnTypes) {
			break
		}
		vt := c.typeOf(sc, v)
		if vt != value.UNDEFINED_TYPE && !assignable(sub.ReturnTypes[i], vt) {
			c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrReturnType,
				fmt.Sprintf("return value %d has type %s, expected %s", i, vt, sub.ReturnTypes[i]), v.Pos()).Build())
		}
	}
}

func isFunctionCall(e ast.Expr) bool {
	_, ok := e.(*ast.FunctionCallExpr)
	return ok
}

func (c *Checker) checkForLoop(f *ast.ForLoop, sc *scope.Scope) {
	iterT := c.typeOf(sc, f.Iterable)
	_, isRange := f.Iterable.(*ast.RangeExpr) // typeOf gives a range its endpoint type
	if iterT != value.UNDEFINED_TYPE && !iterT.IsIterable() && !isRange {
		c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrForIterableType,
			"for loop iterable must be an array, string, or range", f.Iterable.Pos()).Build())
	}

	if r, ok := f.Iterable.(*ast.RangeExpr); ok {
		c.checkRange(r, sc)
	} else {
		c.checkExprTree(f.Iterable, sc)
	}

	if len(f.Body) == 0 {
		c.Reporter.Add(diag.NewWarning(diag.WarnEmptyForBody, "for loop body is empty", f.Pos()).Build())
	}

	bodySc := c.bodyScope(f.Body, sc)

	var loopVarType value.DataType
	if f.LoopVar != "" {
		loopVarType = c.symbolType(bodySc, f.LoopVar)
	} else {
		loopVarType = value.UBYTE // registers hold a byte
	}
	elemType := iterT.ElementType()
	if iterT.IsString() {
		elemType = value.UBYTE
	}
	if loopVarType != value.UNDEFINED_TYPE && elemType != value.UNDEFINED_TYPE && !assignable(loopVarType, elemType) {
		c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrForIterableType,
			fmt.Sprintf("for loop variable of type %s cannot iterate elements of type %s", loopVarType, elemType), f.Pos()).Build())
	}

	c.checkStmts(f.Body, bodySc)
}

// checkRange enforces §4.G "range": constant endpoints, step sign matches
// direction, and single-character endpoints for string ranges.
func (c *Checker) checkRange(r *ast.RangeExpr, sc *scope.Scope) {
	fromLit, fromOK := r.From.(*ast.LiteralExpr)
	toLit, toOK := r.To.(*ast.LiteralExpr)
	if !fromOK || !toOK {
		c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrRangeEndpoint,
			"range endpoints must be constant", r.Pos()).Build())
		return
	}
	if fromLit.Value.Type.IsString() || toLit.Value.Type.IsString() {
		if c.stringLiteralLen(fromLit) != 1 || c.stringLiteralLen(toLit) != 1 {
			c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrRangeEndpoint,
				"string range endpoints must be single characters", r.Pos()).Build())
		}
		return
	}
	from, _ := fromLit.Value.AsNumericValue()
	to, _ := toLit.Value.AsNumericValue()
	if r.Step != nil {
		if stepLit, ok := r.Step.(*ast.LiteralExpr); ok {
			step, _ := stepLit.Value.AsNumericValue()
			if to >= from && step <= 0 {
				c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrRangeEndpoint,
					"ascending range requires a positive step", r.Pos()).Build())
			}
			if to < from && step >= 0 {
				c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrRangeEndpoint,
					"descending range requires a negative step", r.Pos()).Build())
			}
		}
	}
}

// stringLiteralLen returns the content length of a heap-backed string
// literal, or -1 when it cannot be determined (no heap attached, or the
// literal is not actually heap-backed).
func (c *Checker) stringLiteralLen(lit *ast.LiteralExpr) int {
	id, isHeap := lit.Value.HeapID()
	if !isHeap || c.Heap == nil {
		return -1
	}
	s, ok := c.Heap.String(id)
	if !ok {
		return -1
	}
	return len(s.Value)
}

func (c *Checker) checkPostIncrDecr(p *ast.PostIncrDecr, sc *scope.Scope) {
	switch t := p.Target.(type) {
	case *ast.IdentifierTarget:
		typ := c.symbolType(sc, t.Name)
		if typ != value.UNDEFINED_TYPE && !typ.IsNumeric() {
			c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrPostIncrDecrTarget,
				fmt.Sprintf("%s++/-- requires a numeric variable", t.Name), p.Pos()).Build())
		}
	case *ast.IndexedTarget:
		c.checkExprTree(t.Index, sc)
		arr := c.symbolType(sc, t.Name)
		if arr != value.UNDEFINED_TYPE && !(arr.IsArray() && arr.ElementType().IsNumeric()) {
			c.Reporter.Add(diag.NewError(diag.KindExpression, diag.ErrPostIncrDecrTarget,
				fmt.Sprintf("%s[...]++/-- requires a numeric array element", t.Name), p.Pos()).Build())
		}
	case *ast.MemoryTarget:
		// memory addresses are always numeric (byte-at-address); no check needed.
	default:
		c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrPostIncrDecrTarget,
			"++/-- target must be a variable, array element, or memory address", p.Pos()).Build())
	}
}
