package lsp_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"prog8core/internal/ast"
	"prog8core/internal/config"
	"prog8core/internal/lsp"
	"prog8core/internal/value"
)

func writeModuleFixture(t *testing.T) string {
	t.Helper()

	heap := value.NewHeap()
	p := value.Position{File: "t.p8", Line: 1, Column: 1}
	mod := &ast.Module{
		PosVal: p,
		Name:   "prog",
		Stmts: []ast.Statement{
			&ast.Block{
				PosVal: p,
				Name:   "main",
				Stmts: []ast.Statement{
					&ast.VarDecl{PosVal: p, DeclKind: ast.DeclVar, DataType: value.UBYTE, Name: "unused_var",
						Value: &ast.LiteralExpr{Value: value.NewInteger(value.UBYTE, 0, p)}},
					&ast.Subroutine{PosVal: p, Name: "start", Stmts: []ast.Statement{
						&ast.Assignment{
							PosVal:  p,
							Targets: []ast.AssignTarget{&ast.IdentifierTarget{PosVal: p, Name: "missing_name"}},
							Value:   &ast.LiteralExpr{Value: value.NewInteger(value.UBYTE, 1, p)},
						},
						&ast.Return{PosVal: p},
					}},
				},
			},
		},
	}

	data, err := ast.EncodeModule(mod, heap)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "fixture.p8json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func fileURI(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return "file://" + filepath.ToSlash(absPath), nil
}

func TestTextDocumentDidOpenPublishesUndefinedNameDiagnostic(t *testing.T) {
	path := writeModuleFixture(t)
	uri, err := fileURI(path)
	require.NoError(t, err)

	handler := lsp.NewHandler(config.Default())
	var published []protocol.Diagnostic
	ctx := &glsp.Context{
		Notify: func(method string, params any) {
			p, ok := params.(*protocol.PublishDiagnosticsParams)
			require.True(t, ok)
			published = p.Diagnostics
		},
	}

	err = handler.TextDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri},
	})
	require.NoError(t, err)
	require.NotEmpty(t, published)

	found := false
	for _, d := range published {
		if strings.Contains(d.Message, "missing_name") {
			found = true
		}
	}
	require.True(t, found, "expected a diagnostic mentioning the undefined name, got: %v", published)
}

func TestTextDocumentSemanticTokensFull(t *testing.T) {
	path := writeModuleFixture(t)
	uri, err := fileURI(path)
	require.NoError(t, err)

	handler := lsp.NewHandler(config.Default())
	ctx := &glsp.Context{Notify: func(string, any) {}}

	tokens, err := handler.TextDocumentSemanticTokensFull(ctx, &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)
	require.NotNil(t, tokens)
	require.NotEmpty(t, tokens.Data)
	require.Zero(t, len(tokens.Data)%5, "token data must be a multiple of 5")
}

func TestTextDocumentDidCloseDropsCachedModule(t *testing.T) {
	path := writeModuleFixture(t)
	uri, err := fileURI(path)
	require.NoError(t, err)

	handler := lsp.NewHandler(config.Default())
	ctx := &glsp.Context{Notify: func(string, any) {}}
	require.NoError(t, handler.TextDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri},
	}))

	require.NoError(t, handler.TextDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}))

	os.Remove(path)
	tokens, err := handler.TextDocumentSemanticTokensFull(ctx, &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.Error(t, err)
	require.Nil(t, tokens)
}
