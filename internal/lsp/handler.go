package lsp

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"prog8core/internal/ast"
	"prog8core/internal/config"
	"prog8core/internal/value"
)

// SemanticTokenTypes is the legend this server advertises (§ SemanticTokensProvider).
var SemanticTokenTypes = []string{
	"namespace",
	"function",
	"variable",
	"parameter",
}

// SemanticTokenModifiers is the legend's modifier side.
var SemanticTokenModifiers = []string{
	"declaration",
	"readonly",
}

// Handler implements the LSP server handlers for this core: it holds each
// open document's decoded module/heap and re-runs the pipeline on every
// open/change notification, publishing the resulting diagnostics.
//
// Grounded on the teacher's KansoHandler (internal/lsp/handler.go), with
// the AST+content cache generalized from kanso's grammar.Contract to this
// core's ast.Module/value.Heap pair, and parser.ParseSource replaced by
// ast.DecodeModule + internal/optimize + internal/check (runPipeline).
type Handler struct {
	Options config.Options

	mu      sync.RWMutex
	content map[string]string
	modules map[string]*ast.Module
	heaps   map[string]*value.Heap
}

// NewHandler constructs a Handler that runs opts on every document it loads.
func NewHandler(opts config.Options) *Handler {
	return &Handler{
		Options: opts,
		content: make(map[string]string),
		modules: make(map[string]*ast.Module),
		heaps:   make(map[string]*value.Heap),
	}
}

// Initialize responds to the client's initialize request and advertises
// this server's capabilities.
func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Println("prog8core LSP Initialize called")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
			SemanticTokensProvider: &protocol.SemanticTokensOptions{
				Legend: protocol.SemanticTokensLegend{
					TokenTypes:     SemanticTokenTypes,
					TokenModifiers: SemanticTokenModifiers,
				},
				Full: ptrBool(true),
			},
		},
	}, nil
}

// Initialized is called after the client receives this server's capabilities.
func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Println("prog8core LSP Initialized")
	return nil
}

// Shutdown handles the client's shutdown request.
func (h *Handler) Shutdown(ctx *glsp.Context) error {
	log.Println("prog8core LSP Shutdown")
	return nil
}

// TextDocumentDidOpen handles file-open notifications.
func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	diagnostics, err := h.updateModule(params.TextDocument.URI)
	if err != nil {
		return fmt.Errorf("updating module for %s: %w", params.TextDocument.URI, err)
	}
	sendDiagnosticNotification(ctx, params.TextDocument.URI, diagnostics)
	return nil
}

// TextDocumentDidClose handles file-close notifications, dropping the
// document's cached module.
func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return fmt.Errorf("converting URI %s: %w", params.TextDocument.URI, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.content, path)
	delete(h.modules, path)
	delete(h.heaps, path)
	return nil
}

// TextDocumentDidChange handles file-change notifications, re-running the
// pipeline against the document's on-disk content.
func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	diagnostics, err := h.updateModule(params.TextDocument.URI)
	if err != nil {
		return fmt.Errorf("updating module for %s: %w", params.TextDocument.URI, err)
	}
	sendDiagnosticNotification(ctx, params.TextDocument.URI, diagnostics)
	return nil
}

// TextDocumentCompletion returns an empty completion list: this core does
// not maintain a symbol database for completion, only diagnostics and
// semantic tokens.
func (h *Handler) TextDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	return &protocol.CompletionList{IsIncomplete: false, Items: []protocol.CompletionItem{}}, nil
}

// TextDocumentSemanticTokensFull handles whole-document semantic token
// requests, encoding the result with the LSP delta-line/delta-start scheme.
func (h *Handler) TextDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, fmt.Errorf("converting URI %s: %w", params.TextDocument.URI, err)
	}

	mod, err := h.getOrLoadModule(ctx, path, params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	if mod == nil {
		return &protocol.SemanticTokens{}, nil
	}

	tokens := collectSemanticTokens(mod)

	var data []uint32
	var prevLine, prevStart uint32
	for _, tok := range tokens {
		deltaLine := tok.Line - prevLine
		deltaStart := tok.StartChar
		if deltaLine == 0 {
			deltaStart = tok.StartChar - prevStart
		}
		data = append(data, deltaLine, deltaStart, tok.Length, uint32(tok.TokenType), uint32(tok.TokenModifiers))
		prevLine, prevStart = tok.Line, tok.StartChar
	}

	return &protocol.SemanticTokens{Data: data}, nil
}

func (h *Handler) getOrLoadModule(ctx *glsp.Context, path string, rawURI protocol.DocumentUri) (*ast.Module, error) {
	h.mu.RLock()
	mod, ok := h.modules[path]
	h.mu.RUnlock()
	if ok {
		return mod, nil
	}

	diagnostics, err := h.updateModule(rawURI)
	if err != nil {
		return nil, err
	}
	sendDiagnosticNotification(ctx, rawURI, diagnostics)

	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.modules[path], nil
}

// updateModule reads and decodes the document at rawURI, runs it through
// the pipeline, caches the result, and returns the diagnostics to publish.
// A decode failure (the file is not valid module JSON) is reported as a
// single diagnostic rather than returned as an error, so the client still
// gets feedback instead of a silently-dropped notification.
func (h *Handler) updateModule(rawURI protocol.DocumentUri) ([]protocol.Diagnostic, error) {
	path, err := uriToPath(rawURI)
	if err != nil {
		return nil, fmt.Errorf("converting URI %s: %w", rawURI, err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	mod, heap, err := ast.DecodeModule(content)
	if err != nil {
		return []protocol.Diagnostic{{
			Range:    protocol.Range{Start: protocol.Position{}, End: protocol.Position{Character: 1}},
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Source:   ptrString("prog8core"),
			Message:  fmt.Sprintf("failed to decode module: %v", err),
		}}, nil
	}

	reporter := runPipeline(mod, heap, h.Options)

	h.mu.Lock()
	h.content[path] = string(content)
	h.modules[path] = mod
	h.heaps[path] = heap
	h.mu.Unlock()

	return ConvertDiagnostics(reporter.Diagnostics()), nil
}

func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path), nil
}

func sendDiagnosticNotification(ctx *glsp.Context, uri protocol.URI, diagnostics []protocol.Diagnostic) {
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}
