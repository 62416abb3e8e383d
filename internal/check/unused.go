package check

import (
	"fmt"

	"prog8core/internal/ast"
	"prog8core/internal/ast/grammar"
	"prog8core/internal/diag"
)

// checkUnused walks the whole module once collecting every name reference —
// reads, writes, calls, address-of, and inline-assembly text scanned via
// grammar.ReferencedNames — then flags var/const declarations and non-asm
// subroutines nothing ever references (§4.G Supplemented: unused-variable /
// unused-subroutine diagnostics). A for-loop's own loop variable and asm
// subroutines (fixed-address ABI entry points, callable from outside the
// module) are exempt, as is "start" (the block's conventional entry point).
func (c *Checker) checkUnused() {
	used := collectNameUses(c.mod)
	reportUnused(c, c.mod, used)
}

func collectNameUses(n ast.Node) map[string]bool {
	used := make(map[string]bool)
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		switch x := n.(type) {
		case *ast.IdentifierExpr:
			used[x.Name] = true
		case *ast.AddressOfExpr:
			used[x.Identifier] = true
		case *ast.ArrayIndexedExpr:
			used[x.Identifier] = true
		case *ast.FunctionCallExpr:
			used[x.Target] = true
		case *ast.IdentifierTarget:
			used[x.Name] = true
		case *ast.IndexedTarget:
			used[x.Name] = true
		case *ast.InlineAssembly:
			for _, name := range grammar.ReferencedNames(x.RawText) {
				used[name] = true
			}
		}
		for _, ch := range n.Children() {
			walk(ch)
		}
	}
	walk(n)
	return used
}

func reportUnused(c *Checker, n ast.Node, used map[string]bool) {
	switch x := n.(type) {
	case *ast.VarDecl:
		if x.DeclKind != ast.DeclMemory && !used[x.Name] {
			c.Reporter.Add(diag.NewWarning(diag.WarnUnusedVariable,
				fmt.Sprintf("%q is declared but never used", x.Name), x.Pos()).Build())
		}
	case *ast.Subroutine:
		if !x.IsAsmSubroutine && x.Name != "start" && !used[x.Name] {
			c.Reporter.Add(diag.NewWarning(diag.WarnUnusedSubroutine,
				fmt.Sprintf("subroutine %q is never called", x.Name), x.Pos()).Build())
		}
	}
	for _, ch := range n.Children() {
		reportUnused(c, ch, used)
	}
}
