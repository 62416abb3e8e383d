package optimize

import (
	"fmt"

	"prog8core/internal/ast"
	"prog8core/internal/diag"
	"prog8core/internal/scope"
	"prog8core/internal/value"
)

// StmtOptimizer applies §4.F's statement-level rewrite rules to every
// statement list reachable from a module, driven to a fixed point by the
// caller via the same counter convention as ExprOptimizer.
type StmtOptimizer struct {
	Heap  *value.Heap
	Table *scope.Table

	changes  int
	Warnings []diag.Diagnostic
}

// Run rewrites mod's statement lists in place and returns the number of
// rewrites applied.
func (o *StmtOptimizer) Run(mod *ast.Module) int {
	o.changes = 0
	mod.Stmts = o.optimizeList(mod.Stmts)
	return o.changes
}

// warn records a non-fatal unreachable-code finding discovered while
// constant-folding a branch away, so it survives into the checker's
// diagnostic output instead of being silently dropped with the pruned code
// (§4.G Supplemented: unreachable-branch warnings generalized beyond if).
func (o *StmtOptimizer) warn(pos value.Position, format string, args ...interface{}) {
	o.Warnings = append(o.Warnings, diag.NewWarning(diag.WarnUnreachableBranch,
		fmt.Sprintf(format, args...), pos).Build())
}

// optimizeList rewrites a single statement list, recursing into nested
// bodies first (bottom-up, per §9's traversal convention) and then applying
// the list-level rules.
func (o *StmtOptimizer) optimizeList(stmts []ast.Statement) []ast.Statement {
	for _, st := range stmts {
		o.recurse(st)
	}

	out := make([]ast.Statement, 0, len(stmts))
	for i := 0; i < len(stmts); i++ {
		st := stmts[i]

		next, removed, changed := o.rewriteOne(st, stmts, i)
		if changed {
			o.changes++
		}
		if removed {
			continue
		}
		if next != nil {
			out = append(out, next)
			continue
		}

		// Redundant store: this assignment's target is fully overwritten by
		// the very next, unconditional assignment to the same target
		// (§4.F "Redundant store"); only one statement of lookahead is
		// used, matching the spec's "two consecutive assignments" wording.
		if i+1 < len(stmts) && o.isRedundantStore(st, stmts[i+1]) {
			o.changes++
			continue
		}

		out = append(out, st)
	}
	return out
}

func (o *StmtOptimizer) recurse(st ast.Statement) {
	switch n := st.(type) {
	case *ast.Block:
		n.Stmts = o.optimizeList(n.Stmts)
	case *ast.Subroutine:
		n.Stmts = o.optimizeList(n.Stmts)
	case *ast.IfStatement:
		n.TrueBranch = o.optimizeList(n.TrueBranch)
		n.FalseBranch = o.optimizeList(n.FalseBranch)
	case *ast.ForLoop:
		n.Body = o.optimizeList(n.Body)
	case *ast.WhileLoop:
		n.Body = o.optimizeList(n.Body)
	case *ast.RepeatLoop:
		n.Body = o.optimizeList(n.Body)
	case *ast.AnonymousScope:
		n.Stmts = o.optimizeList(n.Stmts)
	}
}

// rewriteOne applies the single-statement rules (everything except
// redundant-store, which needs the neighbor). removed=true means drop st
// entirely; a non-nil replacement means splice it in place of st; changed
// reports whether anything in this call actually rewrote st (including
// in-place mutation of st itself).
func (o *StmtOptimizer) rewriteOne(st ast.Statement, all []ast.Statement, idx int) (next ast.Statement, removed bool, changed bool) {
	switch n := st.(type) {
	case *ast.Block:
		if len(n.Stmts) == 0 {
			return nil, true, true
		}

	case *ast.Subroutine:
		if len(n.Stmts) == 0 && !n.IsAsmSubroutine {
			return nil, true, true
		}
		if _, ok := soleReturn(n.Stmts); ok && n.AsmAddress == nil {
			return nil, true, true
		}

	case *ast.IfStatement:
		if len(n.TrueBranch) == 0 && len(n.FalseBranch) == 0 {
			return nil, true, true
		}
		if len(n.TrueBranch) == 0 && len(n.FalseBranch) != 0 {
			n.TrueBranch, n.FalseBranch = n.FalseBranch, n.TrueBranch
			n.Condition = &ast.PrefixExpr{PosVal: n.Condition.Pos(), Op: "not", Inner: n.Condition}
			return n, false, true
		}
		if lit, ok := n.Condition.(*ast.LiteralExpr); ok {
			taken := n.TrueBranch
			other := n.FalseBranch
			if !lit.Value.AsBooleanValue() {
				taken, other = n.FalseBranch, n.TrueBranch
			}
			if len(other) > 0 {
				o.warn(n.Pos(), "unreachable branch discarded: condition is always %v", lit.Value.AsBooleanValue())
			}
			if len(taken) == 0 {
				return nil, true, true
			}
			return &ast.AnonymousScope{PosVal: n.PosVal, Stmts: taken}, false, true
		}

	case *ast.WhileLoop:
		if lit, ok := n.Condition.(*ast.LiteralExpr); ok {
			if lit.Value.AsBooleanValue() {
				label := &ast.Label{PosVal: n.PosVal, Name: syntheticLabel(n.PosVal)}
				jump := &ast.Jump{PosVal: n.PosVal, Target: label.Name}
				body := append(append([]ast.Statement{}, n.Body...), jump)
				return &ast.AnonymousScope{PosVal: n.PosVal, Stmts: append([]ast.Statement{label}, body...)}, false, true
			}
			if len(n.Body) > 0 {
				o.warn(n.Pos(), "unreachable loop body discarded: condition is always false")
			}
			return &ast.NopStatement{PosVal: n.PosVal}, false, true
		}

	case *ast.Assignment:
		if rewritten := o.rewriteAssignment(n); rewritten != nil {
			return rewritten, false, true
		}

	case *ast.FunctionCallStatement:
		if rewritten := o.lowerPrintLiteral(n); rewritten != nil {
			return rewritten, false, true
		}
		if o.Table != nil {
			if target, ok := shortcutTarget(o.Table, o.Table.ScopeOf(n), n.Call.Target); ok && target != n.Call.Target {
				n.Call.Target = target
				return n, false, true
			}
		}

	case *ast.Jump:
		if o.Table != nil {
			if target, ok := shortcutTarget(o.Table, o.Table.ScopeOf(n), n.Target); ok && target != n.Target {
				n.Target = target
				return n, false, true
			}
		}
	}
	return nil, false, false
}

// soleReturn reports whether stmts is exactly one Return, per §4.F
// "subroutine with a single return ... removed".
func soleReturn(stmts []ast.Statement) (*ast.Return, bool) {
	if len(stmts) != 1 {
		return nil, false
	}
	ret, ok := stmts[0].(*ast.Return)
	return ret, ok
}

// rewriteAssignment applies self-assignment elision, strength reduction, and
// x=x+x->x=x*2 (§4.F). AugOp has already been desugared by
// ast.DesugarAugmented into `target = target op value` before this pass ever
// runs (see that function's doc comment for why it can't be done here or in
// the checker instead).
func (o *StmtOptimizer) rewriteAssignment(a *ast.Assignment) ast.Statement {
	if len(a.Targets) != 1 {
		return nil
	}
	target := a.Targets[0]

	if id, ok := a.Value.(*ast.IdentifierExpr); ok {
		if it, ok := target.(*ast.IdentifierTarget); ok && it.Name == id.Name {
			return &ast.NopStatement{PosVal: a.PosVal}
		}
	}

	bin, ok := a.Value.(*ast.BinaryExpr)
	if !ok || !exprMatchesTarget(bin.Left, target) {
		return nil
	}

	if bin.Op == "+" && exprMatchesTarget(bin.Right, target) {
		if _, rightIsFloatLit := floatLiteral(bin.Right); !rightIsFloatLit {
			two := &ast.LiteralExpr{Value: value.NewInteger(value.UBYTE, 2, a.PosVal)}
			return &ast.Assignment{PosVal: a.PosVal, Targets: a.Targets, Value: &ast.BinaryExpr{Op: "*", Left: bin.Left, Right: two}}
		}
	}

	lit, isLit := bin.Right.(*ast.LiteralExpr)
	if !isLit || !lit.Value.Type.IsInteger() {
		return nil
	}
	n, _ := lit.Value.AsIntegerValue()

	switch bin.Op {
	case "+", "-", "*", "/", "**", "|", "^", "<<", ">>":
		if isIdentityOp(bin.Op, n) {
			return &ast.NopStatement{PosVal: a.PosVal}
		}
	}

	_, isMemTarget := target.(*ast.MemoryTarget)
	switch bin.Op {
	case "+":
		limit := int64(8)
		if isMemTarget {
			limit = 3
		}
		if n >= 1 && n <= limit {
			return expandIncrDecr(a.PosVal, target, n, true)
		}
	case "-":
		limit := int64(8)
		if isMemTarget {
			limit = 3
		}
		if n >= 1 && n <= limit {
			return expandIncrDecr(a.PosVal, target, n, false)
		}
	case "<<", ">>":
		if n >= int64(o.targetBitWidth(a, target)) {
			zero := &ast.LiteralExpr{Value: value.NewInteger(value.UBYTE, 0, a.PosVal)}
			return &ast.Assignment{PosVal: a.PosVal, Targets: a.Targets, Value: zero}
		}
		name := "lsl"
		if bin.Op == ">>" {
			name = "lsr"
		}
		return expandShiftCalls(a.PosVal, target, name, n)
	}
	return nil
}

// targetBitWidth resolves target's declared storage width (8 or 16) via
// o.Table, for bounding the shift-to-zero rule to the target's own width
// rather than a fixed word size (§4.F: "beyond the word width"). Falls back
// to 16 (the conservative, word-sized choice) when the type can't be
// resolved, so an unresolvable target is never rewritten more aggressively
// than before this rule existed.
func (o *StmtOptimizer) targetBitWidth(a *ast.Assignment, target ast.AssignTarget) int {
	it, ok := target.(*ast.IdentifierTarget)
	if !ok || o.Table == nil {
		return 16
	}
	sc := o.Table.ScopeOf(a)
	if sc == nil {
		return 16
	}
	if w := symbolDataType(sc, it.Name).BitWidth(); w != 0 {
		return w
	}
	return 16
}

// symbolDataType mirrors internal/check's Checker.symbolType, duplicated
// here since internal/optimize cannot import internal/check (no such cycle
// exists, and none should be introduced).
func symbolDataType(sc *scope.Scope, name string) value.DataType {
	sym := sc.Lookup(name)
	if sym == nil {
		return value.UNDEFINED_TYPE
	}
	switch sym.Kind {
	case scope.SymVarDecl:
		if v, ok := sym.Node.(*ast.VarDecl); ok {
			return v.DataType
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

func floatLiteral(e ast.Expr) (value.Literal, bool) {
	lit, ok := e.(*ast.LiteralExpr)
	if !ok || !lit.Value.Type.IsFloat() {
		return value.Literal{}, false
	}
	return lit.Value, true
}

func isIdentityOp(op string, n int64) bool {
	switch op {
	case "+", "-", "|", "^", "<<", ">>":
		return n == 0
	case "*", "/", "**":
		return n == 1
	}
	return false
}

func expandIncrDecr(pos value.Position, target ast.AssignTarget, n int64, incr bool) ast.Statement {
	stmts := make([]ast.Statement, n)
	for i := range stmts {
		stmts[i] = &ast.PostIncrDecr{PosVal: pos, Target: target, Incr: incr}
	}
	return &ast.AnonymousScope{PosVal: pos, Stmts: stmts}
}

func expandShiftCalls(pos value.Position, target ast.AssignTarget, builtinName string, n int64) ast.Statement {
	stmts := make([]ast.Statement, n)
	arg := targetToExpr(target)
	for i := range stmts {
		stmts[i] = &ast.FunctionCallStatement{Call: &ast.FunctionCallExpr{PosVal: pos, Target: builtinName, Args: []ast.Expr{arg}}}
	}
	return &ast.AnonymousScope{PosVal: pos, Stmts: stmts}
}

func targetToExpr(target ast.AssignTarget) ast.Expr {
	switch t := target.(type) {
	case *ast.IdentifierTarget:
		return &ast.IdentifierExpr{PosVal: t.PosVal, Name: t.Name}
	case *ast.RegisterTarget:
		return &ast.RegisterExpr{PosVal: t.PosVal, Register: t.Register}
	case *ast.IndexedTarget:
		return &ast.ArrayIndexedExpr{PosVal: t.PosVal, Identifier: t.Name, Index: t.Index}
	case *ast.MemoryTarget:
		return &ast.DirectMemoryReadExpr{Address: t.Address}
	default:
		return nil
	}
}

func exprMatchesTarget(e ast.Expr, target ast.AssignTarget) bool {
	return ast.StructurallyEqualExpr(e, targetToExpr(target))
}

// isRedundantStore reports whether a is immediately superseded by b: both
// assign the same structurally-equal target and a's target is not
// memory-mapped (§4.F "Redundant store"). A memory-mapped target is either a
// direct-address *ast.MemoryTarget, or an *ast.IdentifierTarget bound to a
// MEMORY-kind VarDecl (a named alias for a hardware location) — eliding
// either would drop a side-effecting write.
func (o *StmtOptimizer) isRedundantStore(a, b ast.Statement) bool {
	aa, ok := a.(*ast.Assignment)
	if !ok {
		return false
	}
	ba, ok := b.(*ast.Assignment)
	if !ok {
		return false
	}
	if len(aa.Targets) != 1 || len(ba.Targets) != 1 {
		return false
	}
	if o.isMemoryMappedTarget(aa, aa.Targets[0]) {
		return false
	}
	return ast.StructurallyEqualTarget(aa.Targets[0], ba.Targets[0])
}

// isMemoryMappedTarget reports whether target refers to a hardware location,
// either directly (*ast.MemoryTarget) or through a named alias (an
// *ast.IdentifierTarget bound to a MEMORY-kind VarDecl).
func (o *StmtOptimizer) isMemoryMappedTarget(stmt ast.Statement, target ast.AssignTarget) bool {
	if _, isMem := target.(*ast.MemoryTarget); isMem {
		return true
	}
	it, ok := target.(*ast.IdentifierTarget)
	if !ok || o.Table == nil {
		return false
	}
	sc := o.Table.ScopeOf(stmt)
	if sc == nil {
		return false
	}
	sym := sc.Lookup(it.Name)
	if sym == nil || sym.Kind != scope.SymVarDecl {
		return false
	}
	vd, ok := sym.Node.(*ast.VarDecl)
	return ok && vd.DeclKind == ast.DeclMemory
}

// lowerPrintLiteral implements the target-specific print-literal lowering
// (§4.F): `c64scr.print("c")` with a one- or two-character string literal
// becomes direct CHROUT calls. Heap-backed string content is needed to read
// the characters, so the caller sets the Heap field before this pass runs;
// with a nil Heap the statement is left as it is.
func (o *StmtOptimizer) lowerPrintLiteral(s *ast.FunctionCallStatement) ast.Statement {
	call := s.Call
	if call.Target != "c64scr.print" || len(call.Args) != 1 || o.Heap == nil {
		return nil
	}
	lit, ok := call.Args[0].(*ast.LiteralExpr)
	if !ok || !lit.Value.Type.IsString() {
		return nil
	}
	id, ok := lit.Value.HeapID()
	if !ok {
		return nil
	}
	entry, ok := o.Heap.String(id)
	if !ok || len(entry.Value) == 0 || len(entry.Value) > 2 {
		return nil
	}

	chrout := func(c byte) ast.Statement {
		arg := &ast.LiteralExpr{Value: value.NewInteger(value.UBYTE, int64(c), call.PosVal)}
		petscii := &ast.FunctionCallExpr{PosVal: call.PosVal, Target: "petscii", Args: []ast.Expr{arg}}
		return &ast.FunctionCallStatement{Call: &ast.FunctionCallExpr{PosVal: call.PosVal, Target: "c64.CHROUT", Args: []ast.Expr{petscii}}}
	}

	if len(entry.Value) == 1 {
		return chrout(entry.Value[0])
	}
	return &ast.AnonymousScope{PosVal: call.PosVal, Stmts: []ast.Statement{chrout(entry.Value[0]), chrout(entry.Value[1])}}
}

func syntheticLabel(pos value.Position) string {
	return fmt.Sprintf("_loop_%d_%d", pos.Line, pos.Column)
}
