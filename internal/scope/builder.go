package scope

import "prog8core/internal/ast"

// Table is the namespace built once from the post-parse AST: a scope tree
// plus a lookup from any node to the scope it was declared/used in. It is
// queried read-only by the folder and checker.
type Table struct {
	Root       *Scope
	nodeScopes map[ast.Node]*Scope
}

// Build walks mod and constructs its full scope tree, registering blocks,
// subroutines, parameters, variable declarations, and labels as it goes
// (§2 component C, §4.G "Scope" rules).
func Build(mod *ast.Module) *Table {
	t := &Table{Root: NewScope("", nil), nodeScopes: make(map[ast.Node]*Scope)}
	t.walkStatements(mod.Stmts, t.Root)
	return t
}

// ScopeOf returns the scope n was declared/used in. Only statements are
// registered directly by Build; for any other node (expressions, targets)
// this walks n's parent chain — set by a prior ast.Relink — up to the
// nearest registered statement. Returns nil if n was never reached by Build
// (e.g. synthesized afterward by the optimizer without a following relink).
func (t *Table) ScopeOf(n ast.Node) *Scope {
	for cur := n; cur != nil; cur = cur.Parent() {
		if sc, ok := t.nodeScopes[cur]; ok {
			return sc
		}
	}
	return nil
}

// Register adds a newly synthesized node's binding into scope, for use by
// optimizer rewrites that introduce new names (§5: "optimizer rewrites that
// introduce new names re-register them immediately").
func (t *Table) Register(scope *Scope, name string, kind SymbolKind, node ast.Node) {
	scope.Define(name, kind, node)
	t.nodeScopes[node] = scope
}

func (t *Table) walkStatements(stmts []ast.Statement, sc *Scope) {
	for _, st := range stmts {
		t.walkStatement(st, sc)
	}
}

func (t *Table) walkStatement(st ast.Statement, sc *Scope) {
	t.nodeScopes[st] = sc
	switch n := st.(type) {
	case *ast.Block:
		inner := NewScope(n.Name, sc)
		sc.Define(n.Name, SymBlock, n)
		t.walkStatements(n.Stmts, inner)

	case *ast.Subroutine:
		inner := NewScope(n.Name, sc)
		sc.Define(n.Name, SymSubroutine, n)
		for i := range n.Params {
			inner.Define(n.Params[i].Name, SymParam, n)
		}
		t.walkStatements(n.Stmts, inner)

	case *ast.VarDecl:
		sc.Define(n.Name, SymVarDecl, n)

	case *ast.Label:
		sc.Define(n.Name, SymLabel, n)

	case *ast.IfStatement:
		trueScope := NewScope("", sc)
		t.walkStatements(n.TrueBranch, trueScope)
		falseScope := NewScope("", sc)
		t.walkStatements(n.FalseBranch, falseScope)

	case *ast.ForLoop:
		inner := NewScope("", sc)
		if n.LoopVar != "" {
			inner.Define(n.LoopVar, SymVarDecl, n)
		}
		t.walkStatements(n.Body, inner)

	case *ast.WhileLoop:
		inner := NewScope("", sc)
		t.walkStatements(n.Body, inner)

	case *ast.RepeatLoop:
		inner := NewScope("", sc)
		t.walkStatements(n.Body, inner)

	case *ast.AnonymousScope:
		inner := NewScope("", sc)
		t.walkStatements(n.Stmts, inner)
	}
}
