// Package optimize implements the expression optimizer (§4.E) and statement
// optimizer (§4.F): bottom-up rewrite passes over the AST, each run to a
// fixed point by its caller via a mutation counter (§9 "fixed point").
package optimize

import (
	"github.com/samber/lo"

	"prog8core/internal/ast"
	"prog8core/internal/builtin"
	"prog8core/internal/fold"
	"prog8core/internal/scope"
	"prog8core/internal/value"
)

// ExprOptimizer applies §4.E's six rewrite rules to every expression
// reachable from a module, bottom-up.
type ExprOptimizer struct {
	Table *scope.Table
	Heap  *value.Heap

	changes int
}

// Run walks mod's whole statement tree once, rewriting expressions in place,
// and returns the number of rewrites applied. Call repeatedly until it
// returns 0 (§4.E: "loops until the counter stays at zero").
func (o *ExprOptimizer) Run(mod *ast.Module) int {
	o.changes = 0
	o.visitStatements(mod.Stmts)
	return o.changes
}

func (o *ExprOptimizer) visitStatements(stmts []ast.Statement) {
	for _, st := range stmts {
		o.visitStatement(st)
	}
}

func (o *ExprOptimizer) visitStatement(st ast.Statement) {
	switch n := st.(type) {
	case *ast.Block:
		o.visitStatements(n.Stmts)
	case *ast.Subroutine:
		o.visitStatements(n.Stmts)
	case *ast.VarDecl:
		n.Value = o.rewrite(n.Value)
		n.ArraySize = o.rewrite(n.ArraySize)
	case *ast.Assignment:
		n.Value = o.rewrite(n.Value)
		for _, t := range n.Targets {
			o.visitTarget(t)
		}
	case *ast.Return:
		for i, v := range n.Values {
			n.Values[i] = o.rewrite(v)
		}
	case *ast.IfStatement:
		n.Condition = o.rewrite(n.Condition)
		o.visitStatements(n.TrueBranch)
		o.visitStatements(n.FalseBranch)
	case *ast.ForLoop:
		n.Iterable = o.rewrite(n.Iterable)
		o.visitStatements(n.Body)
	case *ast.WhileLoop:
		n.Condition = o.rewrite(n.Condition)
		o.visitStatements(n.Body)
	case *ast.RepeatLoop:
		o.visitStatements(n.Body)
		n.Condition = o.rewrite(n.Condition)
	case *ast.PostIncrDecr:
		o.visitTarget(n.Target)
	case *ast.FunctionCallStatement:
		o.rewriteCall(n.Call)
	case *ast.AnonymousScope:
		o.visitStatements(n.Stmts)
	}
}

func (o *ExprOptimizer) visitTarget(t ast.AssignTarget) {
	switch n := t.(type) {
	case *ast.IndexedTarget:
		n.Index = o.rewrite(n.Index)
	case *ast.MemoryTarget:
		n.Address = o.rewrite(n.Address)
	}
}

// rewrite folds e bottom-up and returns its (possibly new) replacement.
func (o *ExprOptimizer) rewrite(e ast.Expr) ast.Expr {
	if e == nil {
		return nil
	}

	switch n := e.(type) {
	case *ast.IdentifierExpr:
		return o.inlineConst(n)

	case *ast.PrefixExpr:
		n.Inner = o.rewrite(n.Inner)
		if lit, ok := n.Inner.(*ast.LiteralExpr); ok {
			if folded, err := fold.EvaluateUnary(n.Op, lit.Value, n.PosVal); err == nil {
				o.changes++
				return &ast.LiteralExpr{Value: folded}
			}
		}
		return n

	case *ast.BinaryExpr:
		n.Left = o.rewrite(n.Left)
		n.Right = o.rewrite(n.Right)
		ll, lok := n.Left.(*ast.LiteralExpr)
		rl, rok := n.Right.(*ast.LiteralExpr)
		if lok && rok {
			if folded, err := fold.Evaluate(ll.Value, n.Op, rl.Value, o.Heap, ll.Value.Pos); err == nil {
				o.changes++
				return &ast.LiteralExpr{Value: folded}
			}
		}
		return n

	case *ast.RangeExpr:
		n.From = o.rewrite(n.From)
		n.To = o.rewrite(n.To)
		if n.Step != nil {
			n.Step = o.rewrite(n.Step)
		}
		if materialized := o.materializeRange(n); materialized != nil {
			o.changes++
			return materialized
		}
		return n

	case *ast.ArrayIndexedExpr:
		n.Index = o.rewrite(n.Index)
		return n

	case *ast.TypecastExpr:
		n.Value = o.rewrite(n.Value)
		return n

	case *ast.DirectMemoryReadExpr:
		n.Address = o.rewrite(n.Address)
		return n

	case *ast.FunctionCallExpr:
		o.rewriteCall(n)
		if o.Table != nil {
			if target, ok := shortcutTarget(o.Table, o.Table.ScopeOf(n), n.Target); ok && target != n.Target {
				n.Target = target
				o.changes++
			}
		}
		if folded := o.foldPureCall(n); folded != nil {
			o.changes++
			return folded
		}
		return n

	default:
		return e
	}
}

func (o *ExprOptimizer) rewriteCall(call *ast.FunctionCallExpr) {
	for i, a := range call.Args {
		call.Args[i] = o.rewrite(a)
	}
}

// inlineConst replaces a reference to a CONST declaration holding a constant
// value with that value (§4.E rule 2).
func (o *ExprOptimizer) inlineConst(id *ast.IdentifierExpr) ast.Expr {
	if o.Table == nil {
		return id
	}
	sc := o.Table.ScopeOf(id)
	if sc == nil {
		return id
	}
	sym := sc.Lookup(id.Name)
	if sym == nil || sym.Kind != scope.SymVarDecl {
		return id
	}
	decl, ok := sym.Node.(*ast.VarDecl)
	if !ok || decl.DeclKind != ast.DeclConst {
		return id
	}
	lit, ok := decl.Value.(*ast.LiteralExpr)
	if !ok {
		return id
	}
	o.changes++
	return &ast.LiteralExpr{Value: lit.Value}
}

// foldPureCall folds a call to a pure built-in whose arguments are all
// literal (§4.E rule 6). Only the built-ins whose result can be computed
// without machine-specific side effects are handled; others return nil and
// are left for the IR emitter.
func (o *ExprOptimizer) foldPureCall(call *ast.FunctionCallExpr) ast.Expr {
	fn, ok := builtin.Lookup(call.Target)
	if !ok || !fn.Pure {
		return nil
	}
	lits := make([]value.Literal, len(call.Args))
	for i, a := range call.Args {
		le, ok := a.(*ast.LiteralExpr)
		if !ok {
			return nil
		}
		lits[i] = le.Value
	}

	switch call.Target {
	case "lsb":
		iv, _ := lits[0].AsIntegerValue()
		return &ast.LiteralExpr{Value: value.NewInteger(value.UBYTE, iv&0xFF, call.PosVal)}
	case "msb":
		iv, _ := lits[0].AsIntegerValue()
		return &ast.LiteralExpr{Value: value.NewInteger(value.UBYTE, (iv>>8)&0xFF, call.PosVal)}
	case "abs":
		f, _ := lits[0].AsNumericValue()
		if f < 0 {
			f = -f
		}
		v, err := value.OptimalNumeric(f, call.PosVal)
		if err != nil {
			return nil
		}
		return &ast.LiteralExpr{Value: v}
	case "sgn":
		f, _ := lits[0].AsNumericValue()
		r := int64(0)
		switch {
		case f > 0:
			r = 1
		case f < 0:
			r = -1
		}
		v, err := value.OptimalInteger(r, call.PosVal)
		if err != nil {
			return nil
		}
		return &ast.LiteralExpr{Value: v}
	case "min", "max":
		return o.foldMinMax(call, lits)
	default:
		return nil
	}
}

func (o *ExprOptimizer) foldMinMax(call *ast.FunctionCallExpr, lits []value.Literal) ast.Expr {
	if len(lits) != 2 {
		return nil
	}
	values := lo.Map(lits, func(l value.Literal, _ int) float64 {
		f, _ := l.AsNumericValue()
		return f
	})
	pick := values[0]
	if call.Target == "min" && values[1] < pick {
		pick = values[1]
	}
	if call.Target == "max" && values[1] > pick {
		pick = values[1]
	}
	v, err := value.OptimalNumeric(pick, call.PosVal)
	if err != nil {
		return nil
	}
	return &ast.LiteralExpr{Value: v}
}

// materializeRange implements §4.D's range-materialization rule: constant
// integer or single-character endpoints become an array or string literal.
func (o *ExprOptimizer) materializeRange(r *ast.RangeExpr) ast.Expr {
	fromLit, fok := r.From.(*ast.LiteralExpr)
	toLit, tok := r.To.(*ast.LiteralExpr)
	if !fok || !tok {
		return nil
	}

	step := int64(1)
	if r.Step != nil {
		stepLit, sok := r.Step.(*ast.LiteralExpr)
		if !sok {
			return nil
		}
		sv, ok := stepLit.Value.AsIntegerValue()
		if !ok || sv == 0 {
			return nil
		}
		step = sv
	}

	if fromLit.Value.Type.IsString() || toLit.Value.Type.IsString() {
		return o.materializeCharRange(r, fromLit, toLit, step)
	}
	if !fromLit.Value.Type.IsInteger() || !toLit.Value.Type.IsInteger() {
		return nil
	}
	from, _ := fromLit.Value.AsIntegerValue()
	to, _ := toLit.Value.AsIntegerValue()
	if (step > 0 && from > to) || (step < 0 && from < to) {
		return nil
	}

	count := (to-from)/step + 1
	if count < 0 || count > value.MaxUWord {
		return nil
	}

	elemType := value.UBYTE
	if from < 0 || to < 0 {
		elemType = value.BYTE
	}
	if from > value.MaxByte || to > value.MaxByte {
		elemType = value.UWORD
		if from < 0 || to < 0 {
			elemType = value.WORD
		}
	}
	arrType, ok := value.ArrayTypeOf(elemType)
	if !ok {
		return nil
	}

	values := make([]int64, 0, count)
	for v := from; (step > 0 && v <= to) || (step < 0 && v >= to); v += step {
		values = append(values, v)
	}
	id := o.Heap.AddArray(arrType, values, make([]bool, len(values)))
	return &ast.LiteralExpr{Value: value.NewHeapLiteral(arrType, id, r.PosVal)}
}

func (o *ExprOptimizer) materializeCharRange(r *ast.RangeExpr, fromLit, toLit *ast.LiteralExpr, step int64) ast.Expr {
	fromID, fok := fromLit.Value.HeapID()
	toID, tok := toLit.Value.HeapID()
	if !fok || !tok {
		return nil
	}
	fromEntry, ok1 := o.Heap.String(fromID)
	toEntry, ok2 := o.Heap.String(toID)
	if !ok1 || !ok2 || len(fromEntry.Value) != 1 || len(toEntry.Value) != 1 {
		return nil
	}
	from := int64(fromEntry.Value[0])
	to := int64(toEntry.Value[0])
	if (step > 0 && from > to) || (step < 0 && from < to) {
		return nil
	}

	var sb []byte
	for v := from; (step > 0 && v <= to) || (step < 0 && v >= to); v += step {
		sb = append(sb, byte(v))
	}
	if len(sb) > value.MaxStringLen {
		return nil
	}
	id := o.Heap.AddString(string(sb), value.STR)
	return &ast.LiteralExpr{Value: value.NewHeapLiteral(value.STR, id, r.PosVal)}
}
