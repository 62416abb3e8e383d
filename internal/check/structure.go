package check

import (
	"fmt"

	"prog8core/internal/ast"
	"prog8core/internal/diag"
)

var onceModuleDirectives = map[string]bool{
	"output": true, "launcher": true, "zeropage": true, "address": true,
}

// checkModuleStructure enforces §4.G "Module structure": exactly one main
// block with a parameterless, no-return start subroutine, at most one of
// each module-level directive, and a content restriction on main's body.
func (c *Checker) checkModuleStructure() {
	mainBlocks := 0
	directiveSeen := make(map[string]bool)

	for _, st := range c.mod.Stmts {
		switch n := st.(type) {
		case *ast.Block:
			if n.Name == "main" {
				mainBlocks++
			}
		case *ast.Directive:
			if onceModuleDirectives[n.Name] {
				if directiveSeen[n.Name] {
					c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrDuplicateDirective,
						fmt.Sprintf("directive %%%s specified more than once", n.Name), n.Pos()).Build())
				}
				directiveSeen[n.Name] = true
			}
		}
	}

	if mainBlocks == 0 {
		c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrModuleStructure,
			"module must contain exactly one 'main' block", c.mod.Pos()).Build())
	} else if mainBlocks > 1 {
		c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrModuleStructure,
			"module must contain exactly one 'main' block", c.mod.Pos()).Build())
	}

	if c.mainBlock != nil {
		c.checkMainStart(c.mainBlock)
		c.checkMainContent(c.mainBlock)
	}
}

func (c *Checker) checkMainStart(main *ast.Block) {
	var start *ast.Subroutine
	for _, st := range main.Stmts {
		if sub, ok := st.(*ast.Subroutine); ok && sub.Name == "start" {
			start = sub
			break
		}
	}
	if start == nil {
		c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrModuleStructure,
			"'main' block must contain a 'start' subroutine", main.Pos()).Build())
		return
	}
	if len(start.Params) != 0 || len(start.ReturnTypes) != 0 {
		c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrModuleStructure,
			"'start' must be parameterless and return nothing", start.Pos()).Build())
	}
}

// checkMainContent enforces "main block may contain only scopes,
// directives, labels, declarations, inline-asm, and initialization
// assignments" — subroutines are allowed too (start/irq and any helper
// subs), but bare control flow at main's top level is not.
func (c *Checker) checkMainContent(main *ast.Block) {
	for _, st := range main.Stmts {
		switch st.(type) {
		case *ast.Block, *ast.Directive, *ast.Label, *ast.VarDecl,
			*ast.InlineAssembly, *ast.Assignment, *ast.Subroutine, *ast.AnonymousScope:
			continue
		default:
			c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrModuleStructure,
				fmt.Sprintf("%s is not allowed directly inside the 'main' block", st), st.Pos()).Build())
		}
	}
}

// checkIrqEntrypoint enforces §4.G "irq entrypoint": if a subroutine named
// "irq" exists, it must be parameterless and no-return.
func (c *Checker) checkIrqEntrypoint(sub *ast.Subroutine) {
	if sub.Name != "irq" {
		return
	}
	if len(sub.Params) != 0 || len(sub.ReturnTypes) != 0 {
		c.Reporter.Add(diag.NewError(diag.KindSyntax, diag.ErrModuleStructure,
			"'irq' must be parameterless and return nothing", sub.Pos()).Build())
	}
}
