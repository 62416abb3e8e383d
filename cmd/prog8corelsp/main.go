// Command prog8corelsp runs this core's checker as a language server:
// an editor opens a module.json document, this server decodes and runs it
// through internal/optimize + internal/check on every open/change, and
// publishes the result as LSP diagnostics and semantic tokens.
//
// Grounded on the teacher's cmd/kanso-lsp/main.go: same commonlog +
// glsp/server wiring, with KansoHandler replaced by internal/lsp.Handler.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"prog8core/internal/config"
	"prog8core/internal/lsp"
)

const lsName = "prog8core"

func main() {
	configPath := flag.String("config", "", "compiler options JSON file (see internal/config.Options)")
	flag.Parse()

	commonlog.Configure(1, nil)

	opts := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Println("failed to load config, using defaults:", err)
		} else {
			opts = loaded
		}
	}

	h := lsp.NewHandler(opts)
	handler := protocol.Handler{
		Initialize:                     h.Initialize,
		Initialized:                    h.Initialized,
		Shutdown:                       h.Shutdown,
		TextDocumentDidOpen:            h.TextDocumentDidOpen,
		TextDocumentDidClose:           h.TextDocumentDidClose,
		TextDocumentDidChange:          h.TextDocumentDidChange,
		TextDocumentCompletion:         h.TextDocumentCompletion,
		TextDocumentSemanticTokensFull: h.TextDocumentSemanticTokensFull,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Println("Starting prog8core LSP server...")
	if err := s.RunStdio(); err != nil {
		log.Println("Error starting prog8core LSP server:", err)
		os.Exit(1)
	}
}
