package lsp

import (
	"prog8core/internal/ast"
	"prog8core/internal/value"
)

// SemanticToken is a single LSP semantic token entry (0-based line/column,
// pre-delta-encoding). Grounded on the teacher's SemanticToken
// (internal/lsp/semantic.go), generalized from a participle lexer.Position
// walk over kanso's grammar tree to this core's Children()-based ast.Node
// walk (the same walk idiom internal/check/unused.go uses to reach every
// name reference).
type SemanticToken struct {
	Line           uint32
	StartChar      uint32
	Length         uint32
	TokenType      int
	TokenModifiers int
}

// collectSemanticTokens walks mod classifying module/block names as
// namespaces, subroutine names as functions, and var/const declarations and
// their references as variables — a coarse approximation since this core's
// AST nodes carry a single declaration position rather than per-identifier
// spans the way kanso's participle grammar does.
func collectSemanticTokens(mod *ast.Module) []SemanticToken {
	var tokens []SemanticToken
	tokens = append(tokens, makeToken(mod.Pos(), mod.Name, "namespace", modifierBit("declaration")))

	var walk func(ast.Node)
	walk = func(n ast.Node) {
		switch x := n.(type) {
		case *ast.Block:
			tokens = append(tokens, makeToken(x.Pos(), x.Name, "namespace", modifierBit("declaration")))
		case *ast.Subroutine:
			tokens = append(tokens, makeToken(x.Pos(), x.Name, "function", modifierBit("declaration")))
		case *ast.VarDecl:
			modifiers := modifierBit("declaration")
			if x.DeclKind == ast.DeclConst {
				modifiers |= modifierBit("readonly")
			}
			tokens = append(tokens, makeToken(x.Pos(), x.Name, "variable", modifiers))
		case *ast.IdentifierExpr:
			tokens = append(tokens, makeToken(x.Pos(), x.Name, "variable", 0))
		case *ast.IdentifierTarget:
			tokens = append(tokens, makeToken(x.Pos(), x.Name, "variable", 0))
		case *ast.FunctionCallExpr:
			tokens = append(tokens, makeToken(x.Pos(), x.Target, "function", 0))
		}
		for _, ch := range n.Children() {
			walk(ch)
		}
	}
	walk(mod)

	return tokens
}

func makeToken(pos value.Position, name, tokenType string, modifiers int) SemanticToken {
	line := uint32(0)
	if pos.Line > 0 {
		line = uint32(pos.Line - 1)
	}
	col := uint32(0)
	if pos.Column > 0 {
		col = uint32(pos.Column - 1)
	}
	return SemanticToken{
		Line:           line,
		StartChar:      col,
		Length:         uint32(len(name)),
		TokenType:      indexOf(tokenType, SemanticTokenTypes),
		TokenModifiers: modifiers,
	}
}

func indexOf(target string, list []string) int {
	for i, v := range list {
		if v == target {
			return i
		}
	}
	return -1
}

func modifierBit(name string) int {
	i := indexOf(name, SemanticTokenModifiers)
	if i < 0 {
		return 0
	}
	return 1 << i
}
