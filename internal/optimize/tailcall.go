package optimize

import (
	"prog8core/internal/ast"
	"prog8core/internal/scope"
)

// shortcutTarget implements "tail-call to single-jump subroutine" (§4.F):
// when name resolves, from sc, to a subroutine whose first non-declaration
// statement is `jump L`, the call/jump is redirected straight to L.
// Subroutines in turn pointing at another single-jump subroutine resolve
// across repeated passes, since each redirect increments the mutation
// counter.
func shortcutTarget(table *scope.Table, sc *scope.Scope, name string) (string, bool) {
	if table == nil || sc == nil {
		return "", false
	}
	sym := sc.Lookup(name)
	if sym == nil || sym.Kind != scope.SymSubroutine {
		return "", false
	}
	sub, ok := sym.Node.(*ast.Subroutine)
	if !ok {
		return "", false
	}
	for _, st := range sub.Stmts {
		switch n := st.(type) {
		case *ast.Directive, *ast.VarDecl:
			continue
		case *ast.Jump:
			return n.Target, true
		default:
			return "", false
		}
	}
	return "", false
}
