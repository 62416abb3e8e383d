package main

import (
	"fmt"
	"os"

	"prog8core/internal/ast"
	"prog8core/internal/check"
	"prog8core/internal/config"
	"prog8core/internal/diag"
	"prog8core/internal/ir"
	"prog8core/internal/optimize"
	"prog8core/internal/scope"
	"prog8core/internal/value"
	"prog8core/internal/zp"
)

func loadProgramFile(path string) (*ast.Module, *value.Heap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	mod, heap, err := ast.DecodeModule(data)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return mod, heap, nil
}

func loadOptions() (config.Options, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

// runThroughCheck takes mod through name resolution, the optional fold/
// optimize fixed point, and semantic checking — the shared prefix every
// subcommand needs (§4's control-flow ordering: "parser -> fixed point
// optimization -> semantic checking -> IR emission").
func runThroughCheck(mod *ast.Module, heap *value.Heap, opts config.Options) (*scope.Table, *diag.Reporter) {
	var table *scope.Table
	var optWarnings []diag.Diagnostic
	if opts.RunOptimizer {
		pipeline := &optimize.Pipeline{Heap: heap}
		table = pipeline.Run(mod)
		optWarnings = pipeline.Warnings
	} else {
		ast.DesugarAugmented(mod)
		ast.Relink(mod)
		table = scope.Build(mod)
	}

	checker := check.New(mod, table, heap)
	reporter := checker.Run()
	for _, w := range optWarnings {
		reporter.Add(w)
	}
	return table, reporter
}

// lowerToIR runs the IR builder, optional peephole pass, and zero-page
// allocation (§4.H). Callers must already have confirmed reporter carries no
// fatal diagnostics before calling this.
func lowerToIR(mod *ast.Module, heap *value.Heap, table *scope.Table, reporter *diag.Reporter, opts config.Options) (*ir.Program, error) {
	prog, err := ir.NewBuilder(table, heap).Build(mod)
	if err != nil {
		return nil, err
	}

	if opts.RunPeephole {
		if err := ir.NewPeepholePass().Run(prog); err != nil {
			return nil, err
		}
	}

	pool := zp.NewPool(opts.ZeroPageProfile, opts.ZpReserved)
	ir.AllocateZeropage(prog, pool, reporter)

	return prog, nil
}
