// Package check implements the semantic checker (component G, §4.G):
// around eighty static rules accumulated into a Reporter, plus the one
// tree mutation the checker is allowed to make — injecting default
// initializers for uninitialized VAR declarations.
package check

import (
	"prog8core/internal/ast"
	"prog8core/internal/diag"
	"prog8core/internal/scope"
	"prog8core/internal/value"
)

// Checker walks a stabilized module (post-optimization) and accumulates
// diagnostics. It does not re-run after the optimizer; callers run it once
// the expression/statement optimizer pipeline has reached a fixed point
// (§4.G: "the checker runs after the tree stabilizes").
type Checker struct {
	Reporter *diag.Reporter
	Table    *scope.Table
	Heap     *value.Heap

	// FileExists resolves a %asminclude/%asmbinary path; nil skips the
	// check entirely (the checker has no filesystem dependency of its own).
	FileExists func(path string) bool

	mod           *ast.Module
	mainBlock     *ast.Block
	floatsEnabled bool
}

// New constructs a Checker for mod, using table for name resolution and
// heap for string/array content lookups.
func New(mod *ast.Module, table *scope.Table, heap *value.Heap) *Checker {
	return &Checker{
		Reporter: diag.NewReporter(mod.Name),
		Table:    table,
		Heap:     heap,
		mod:      mod,
	}
}

// Run performs every check and returns the reporter's accumulated
// diagnostics. The module is mutated in place only to inject default VAR
// initializers.
func (c *Checker) Run() *diag.Reporter {
	c.scanMainBlockAndOptions()
	c.checkModuleStructure()
	for _, st := range c.mod.Stmts {
		c.checkTopLevel(st)
	}
	c.checkUnused()
	return c.Reporter
}

func (c *Checker) scanMainBlockAndOptions() {
	for _, st := range c.mod.Stmts {
		switch n := st.(type) {
		case *ast.Directive:
			if n.Name == "option" {
				for _, a := range n.Args {
					if a == "enable_floats" {
						c.floatsEnabled = true
					}
				}
			}
		case *ast.Block:
			if n.Name == "main" {
				c.mainBlock = n
			}
		}
	}
}

func (c *Checker) checkTopLevel(st ast.Statement) {
	c.checkStmt(st, c.Table.Root)
}
