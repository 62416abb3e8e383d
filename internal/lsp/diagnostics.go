// Package lsp publishes this core's diagnostics over the Language Server
// Protocol, so an editor can drive the checker interactively instead of
// through the batch cmd/prog8corec CLI. Grounded on the teacher's
// internal/lsp (diagnostics.go/handler.go/semantic.go), narrowed from a
// parse-error/semantic-token server for a full front end down to a
// "publish internal/diag.Diagnostic over protocol.Diagnostic" server, since
// parsing itself is out of scope for this core (cmd/prog8corec's own
// doc comment makes the same call).
package lsp

import (
	"fmt"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"prog8core/internal/diag"
)

// ConvertDiagnostics transforms a reporter's accumulated findings into LSP
// diagnostics for IDE display. Positions are 1-based in value.Position and
// 0-based on the wire (§ "Convert to 0-based indexing", carried over from
// the teacher's own ConvertParseErrors/ConvertScanErrors).
func ConvertDiagnostics(diags []diag.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		line := uint32(0)
		if d.Pos.Line > 0 {
			line = uint32(d.Pos.Line - 1)
		}
		col := uint32(0)
		if d.Pos.Column > 0 {
			col = uint32(d.Pos.Column - 1)
		}

		message := fmt.Sprintf("[%s] %s", d.Code, d.Message)
		if d.Help != "" {
			message = message + " (" + d.Help + ")"
		}

		out = append(out, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: line, Character: col},
				End:   protocol.Position{Line: line, Character: col + 1},
			},
			Severity: ptrSeverity(severityOf(d.Severity)),
			Source:   ptrString("prog8core"),
			Message:  message,
		})
	}
	return out
}

func severityOf(s diag.Severity) protocol.DiagnosticSeverity {
	if s == diag.SeverityWarning {
		return protocol.DiagnosticSeverityWarning
	}
	return protocol.DiagnosticSeverityError
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity { return &s }

func ptrString(s string) *string { return &s }

func ptrBool(b bool) *bool { return &b }

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind { return &k }
