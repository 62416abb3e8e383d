package lsp

import (
	"prog8core/internal/ast"
	"prog8core/internal/check"
	"prog8core/internal/config"
	"prog8core/internal/diag"
	"prog8core/internal/optimize"
	"prog8core/internal/scope"
	"prog8core/internal/value"
)

// runPipeline mirrors cmd/prog8corec's runThroughCheck: name resolution,
// the optional fold/optimize fixed point, then semantic checking, merging
// any optimizer-discovered warnings into the same reporter. Duplicated here
// rather than imported because cmd/prog8corec is package main.
func runPipeline(mod *ast.Module, heap *value.Heap, opts config.Options) *diag.Reporter {
	if opts.RunOptimizer {
		pipeline := &optimize.Pipeline{Heap: heap}
		table := pipeline.Run(mod)
		reporter := check.New(mod, table, heap).Run()
		for _, w := range pipeline.Warnings {
			reporter.Add(w)
		}
		return reporter
	}

	ast.DesugarAugmented(mod)
	ast.Relink(mod)
	table := scope.Build(mod)
	return check.New(mod, table, heap).Run()
}
