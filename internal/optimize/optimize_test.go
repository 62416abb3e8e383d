package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prog8core/internal/ast"
	"prog8core/internal/diag"
	"prog8core/internal/value"
)

func pos() value.Position { return value.Position{} }

func runPipeline(t *testing.T, mod *ast.Module) {
	t.Helper()
	ast.Relink(mod)
	p := &Pipeline{Heap: value.NewHeap()}
	p.Run(mod)
}

func TestConstantFoldingOfBinaryExpr(t *testing.T) {
	sub := &ast.Subroutine{Name: "start", Stmts: []ast.Statement{
		&ast.Assignment{
			Targets: []ast.AssignTarget{&ast.IdentifierTarget{Name: "x"}},
			Value: &ast.BinaryExpr{
				Op:   "+",
				Left: &ast.LiteralExpr{Value: value.NewInteger(value.UBYTE, 2, pos())},
				Right: &ast.LiteralExpr{Value: value.NewInteger(value.UBYTE, 3, pos())},
			},
		},
	}}
	blk := &ast.Block{Name: "main", Stmts: []ast.Statement{sub}}
	mod := &ast.Module{Name: "prog", Stmts: []ast.Statement{blk}}
	runPipeline(t, mod)

	a := sub.Stmts[0].(*ast.Assignment)
	lit, ok := a.Value.(*ast.LiteralExpr)
	require.True(t, ok)
	iv, _ := lit.Value.AsIntegerValue()
	assert.Equal(t, int64(5), iv)
}

func TestSelfAssignmentBecomesNop(t *testing.T) {
	assign := &ast.Assignment{
		Targets: []ast.AssignTarget{&ast.IdentifierTarget{Name: "x"}},
		Value:   &ast.IdentifierExpr{Name: "x"},
	}
	sub := &ast.Subroutine{Name: "start", Stmts: []ast.Statement{assign, &ast.Return{}}}
	blk := &ast.Block{Name: "main", Stmts: []ast.Statement{sub}}
	mod := &ast.Module{Name: "prog", Stmts: []ast.Statement{blk}}
	runPipeline(t, mod)

	_, isNop := sub.Stmts[0].(*ast.NopStatement)
	assert.True(t, isNop)
}

func TestEmptyIfBothBranchesIsRemoved(t *testing.T) {
	ifs := &ast.IfStatement{Condition: &ast.IdentifierExpr{Name: "flag"}}
	sub := &ast.Subroutine{Name: "start", Stmts: []ast.Statement{ifs, &ast.Return{}}}
	blk := &ast.Block{Name: "main", Stmts: []ast.Statement{sub}}
	mod := &ast.Module{Name: "prog", Stmts: []ast.Statement{blk}}
	runPipeline(t, mod)

	assert.Len(t, sub.Stmts, 1)
	_, isReturn := sub.Stmts[0].(*ast.Return)
	assert.True(t, isReturn)
}

func TestIfWithConstantTrueConditionTakesTrueBranch(t *testing.T) {
	one := &ast.LiteralExpr{Value: value.NewInteger(value.UBYTE, 1, pos())}
	mark := &ast.Assignment{Targets: []ast.AssignTarget{&ast.IdentifierTarget{Name: "y"}}, Value: &ast.LiteralExpr{Value: value.NewInteger(value.UBYTE, 9, pos())}}
	ifs := &ast.IfStatement{Condition: one, TrueBranch: []ast.Statement{mark}, FalseBranch: []ast.Statement{&ast.NopStatement{}}}
	sub := &ast.Subroutine{Name: "start", Stmts: []ast.Statement{ifs, &ast.Return{}}}
	blk := &ast.Block{Name: "main", Stmts: []ast.Statement{sub}}
	mod := &ast.Module{Name: "prog", Stmts: []ast.Statement{blk}}
	runPipeline(t, mod)

	require.GreaterOrEqual(t, len(sub.Stmts), 1)
	anon, ok := sub.Stmts[0].(*ast.AnonymousScope)
	require.True(t, ok)
	require.Len(t, anon.Stmts, 1)
	_, ok = anon.Stmts[0].(*ast.Assignment)
	assert.True(t, ok)
}

func TestIfWithConstantConditionWarnsUnreachableOtherBranch(t *testing.T) {
	zero := &ast.LiteralExpr{Value: value.NewInteger(value.UBYTE, 0, pos())}
	taken := &ast.Assignment{Targets: []ast.AssignTarget{&ast.IdentifierTarget{Name: "y"}}, Value: &ast.LiteralExpr{Value: value.NewInteger(value.UBYTE, 9, pos())}}
	dead := &ast.Assignment{Targets: []ast.AssignTarget{&ast.IdentifierTarget{Name: "z"}}, Value: &ast.LiteralExpr{Value: value.NewInteger(value.UBYTE, 1, pos())}}
	ifs := &ast.IfStatement{Condition: zero, TrueBranch: []ast.Statement{dead}, FalseBranch: []ast.Statement{taken}}
	sub := &ast.Subroutine{Name: "start", Stmts: []ast.Statement{ifs, &ast.Return{}}}
	blk := &ast.Block{Name: "main", Stmts: []ast.Statement{sub}}
	mod := &ast.Module{Name: "prog", Stmts: []ast.Statement{blk}}

	ast.Relink(mod)
	p := &Pipeline{Heap: value.NewHeap()}
	p.Run(mod)

	require.NotEmpty(t, p.Warnings)
	assert.Equal(t, diag.WarnUnreachableBranch, p.Warnings[0].Code)
}

func TestWhileWithConstantFalseConditionWarnsUnreachableBody(t *testing.T) {
	zero := &ast.LiteralExpr{Value: value.NewInteger(value.UBYTE, 0, pos())}
	body := &ast.Assignment{Targets: []ast.AssignTarget{&ast.IdentifierTarget{Name: "y"}}, Value: &ast.LiteralExpr{Value: value.NewInteger(value.UBYTE, 9, pos())}}
	loop := &ast.WhileLoop{Condition: zero, Body: []ast.Statement{body}}
	sub := &ast.Subroutine{Name: "start", Stmts: []ast.Statement{loop, &ast.Return{}}}
	blk := &ast.Block{Name: "main", Stmts: []ast.Statement{sub}}
	mod := &ast.Module{Name: "prog", Stmts: []ast.Statement{blk}}

	ast.Relink(mod)
	p := &Pipeline{Heap: value.NewHeap()}
	p.Run(mod)

	require.NotEmpty(t, p.Warnings)
	assert.Equal(t, diag.WarnUnreachableBranch, p.Warnings[0].Code)
}

func TestRedundantStoreRemovesEarlierAssignment(t *testing.T) {
	first := &ast.Assignment{Targets: []ast.AssignTarget{&ast.IdentifierTarget{Name: "x"}}, Value: &ast.LiteralExpr{Value: value.NewInteger(value.UBYTE, 1, pos())}}
	second := &ast.Assignment{Targets: []ast.AssignTarget{&ast.IdentifierTarget{Name: "x"}}, Value: &ast.LiteralExpr{Value: value.NewInteger(value.UBYTE, 2, pos())}}
	sub := &ast.Subroutine{Name: "start", Stmts: []ast.Statement{first, second, &ast.Return{}}}
	blk := &ast.Block{Name: "main", Stmts: []ast.Statement{sub}}
	mod := &ast.Module{Name: "prog", Stmts: []ast.Statement{blk}}
	runPipeline(t, mod)

	require.Len(t, sub.Stmts, 2)
	assign, ok := sub.Stmts[0].(*ast.Assignment)
	require.True(t, ok)
	lit := assign.Value.(*ast.LiteralExpr)
	iv, _ := lit.Value.AsIntegerValue()
	assert.Equal(t, int64(2), iv)
}

func TestStrengthReductionAddOneExpandsToIncrement(t *testing.T) {
	target := &ast.IdentifierTarget{Name: "x"}
	assign := &ast.Assignment{
		Targets: []ast.AssignTarget{target},
		Value: &ast.BinaryExpr{
			Op:   "+",
			Left: &ast.IdentifierExpr{Name: "x"},
			Right: &ast.LiteralExpr{Value: value.NewInteger(value.UBYTE, 1, pos())},
		},
	}
	sub := &ast.Subroutine{Name: "start", Stmts: []ast.Statement{assign, &ast.Return{}}}
	blk := &ast.Block{Name: "main", Stmts: []ast.Statement{sub}}
	mod := &ast.Module{Name: "prog", Stmts: []ast.Statement{blk}}
	runPipeline(t, mod)

	anon, ok := sub.Stmts[0].(*ast.AnonymousScope)
	require.True(t, ok)
	require.Len(t, anon.Stmts, 1)
	incr, ok := anon.Stmts[0].(*ast.PostIncrDecr)
	require.True(t, ok)
	assert.True(t, incr.Incr)
}

func TestConstIdentifierIsInlined(t *testing.T) {
	decl := &ast.VarDecl{DeclKind: ast.DeclConst, Name: "LIMIT", DataType: value.UBYTE, Value: &ast.LiteralExpr{Value: value.NewInteger(value.UBYTE, 10, pos())}}
	assign := &ast.Assignment{Targets: []ast.AssignTarget{&ast.IdentifierTarget{Name: "x"}}, Value: &ast.IdentifierExpr{Name: "LIMIT"}}
	sub := &ast.Subroutine{Name: "start", Stmts: []ast.Statement{assign, &ast.Return{}}}
	blk := &ast.Block{Name: "main", Stmts: []ast.Statement{decl, sub}}
	mod := &ast.Module{Name: "prog", Stmts: []ast.Statement{blk}}
	runPipeline(t, mod)

	a := sub.Stmts[0].(*ast.Assignment)
	lit, ok := a.Value.(*ast.LiteralExpr)
	require.True(t, ok)
	iv, _ := lit.Value.AsIntegerValue()
	assert.Equal(t, int64(10), iv)
}

func TestTailCallShortcutsThroughSingleJumpSubroutine(t *testing.T) {
	inner := &ast.Subroutine{Name: "redirect", Stmts: []ast.Statement{&ast.Jump{Target: "real_target"}}}
	callStmt := &ast.FunctionCallStatement{Call: &ast.FunctionCallExpr{Target: "redirect"}}
	sub := &ast.Subroutine{Name: "start", Stmts: []ast.Statement{callStmt, &ast.Return{}}}
	blk := &ast.Block{Name: "main", Stmts: []ast.Statement{inner, sub}}
	mod := &ast.Module{Name: "prog", Stmts: []ast.Statement{blk}}
	runPipeline(t, mod)

	call := sub.Stmts[0].(*ast.FunctionCallStatement)
	assert.Equal(t, "real_target", call.Call.Target)
}

func TestRangeMaterializesToArrayLiteral(t *testing.T) {
	r := &ast.RangeExpr{
		From: &ast.LiteralExpr{Value: value.NewInteger(value.UBYTE, 1, pos())},
		To:   &ast.LiteralExpr{Value: value.NewInteger(value.UBYTE, 3, pos())},
	}
	sub := &ast.Subroutine{Name: "start", Stmts: []ast.Statement{&ast.Return{Values: []ast.Expr{r}}}}
	blk := &ast.Block{Name: "main", Stmts: []ast.Statement{sub}}
	mod := &ast.Module{Name: "prog", Stmts: []ast.Statement{blk}}
	runPipeline(t, mod)

	ret := sub.Stmts[0].(*ast.Return)
	lit, ok := ret.Values[0].(*ast.LiteralExpr)
	require.True(t, ok)
	assert.True(t, lit.Value.Type.IsArray())
}
