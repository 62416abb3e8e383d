package optimize

import (
	"prog8core/internal/ast"
	"prog8core/internal/diag"
	"prog8core/internal/scope"
	"prog8core/internal/value"
)

// maxIterations bounds the fixed-point loop as a safety net against a
// rewrite rule that (incorrectly) never stabilizes; the rule set in this
// package is designed to always converge well under this.
const maxIterations = 1000

// Pipeline runs the expression and statement optimizers to a fixed point,
// relinking parents after each round and rebuilding the scope table before
// the next (§4.E: "after stabilization the tree's parents are relinked";
// §9: optimizer rewrites that introduce new names re-register immediately).
// Grounded on the teacher's OptimizationPipeline.Run loop in
// internal/ir/optimizations.go, adapted from a fixed sequence of named
// passes to a two-pass fixed-point loop over the AST rather than the IR.
type Pipeline struct {
	Heap *value.Heap

	Warnings []diag.Diagnostic
}

// Run optimizes mod in place and returns the scope table built from its
// final, stable shape.
func (p *Pipeline) Run(mod *ast.Module) *scope.Table {
	ast.DesugarAugmented(mod)
	ast.Relink(mod)
	table := scope.Build(mod)

	for i := 0; i < maxIterations; i++ {
		exprPass := &ExprOptimizer{Table: table, Heap: p.Heap}
		exprChanges := exprPass.Run(mod)

		stmtPass := &StmtOptimizer{Heap: p.Heap, Table: table}
		stmtChanges := stmtPass.Run(mod)
		p.Warnings = append(p.Warnings, stmtPass.Warnings...)

		if exprChanges == 0 && stmtChanges == 0 {
			break
		}

		ast.Relink(mod)
		table = scope.Build(mod)
	}

	return table
}
