// Package diag implements the checker's diagnostic model (§4.G, §7):
// accumulated, duplicate-suppressed SyntaxError/ExpressionError/NameError
// entries, reported with positions and optional suggestions.
package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"prog8core/internal/value"
)

// Severity distinguishes a hard error (aborts compilation after reporting)
// from a warning (reported but non-fatal).
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Kind is the checker's error category, per §7: "SyntaxError | ExpressionError
// | NameError".
type Kind string

const (
	KindSyntax     Kind = "syntax"
	KindExpression Kind = "expression"
	KindName       Kind = "name"
)

// Diagnostic is a single structured checker finding.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Code     string
	Message  string
	Pos      value.Position
	Notes    []string
	Help     string
}

// Builder provides the same fluent construction the teacher's
// SemanticErrorBuilder does (WithNote/WithHelp/Build), adapted from an
// error-only builder to one shared by errors and warnings via Severity.
type Builder struct {
	d Diagnostic
}

// NewError starts a fatal diagnostic of the given kind.
func NewError(kind Kind, code, message string, pos value.Position) *Builder {
	return &Builder{d: Diagnostic{Severity: SeverityError, Kind: kind, Code: code, Message: message, Pos: pos}}
}

// NewWarning starts a non-fatal diagnostic.
func NewWarning(code, message string, pos value.Position) *Builder {
	return &Builder{d: Diagnostic{Severity: SeverityWarning, Kind: KindSyntax, Code: code, Message: message, Pos: pos}}
}

func (b *Builder) WithNote(note string) *Builder {
	b.d.Notes = append(b.d.Notes, note)
	return b
}

func (b *Builder) WithHelp(help string) *Builder {
	b.d.Help = help
	return b
}

func (b *Builder) Build() Diagnostic { return b.d }

// Reporter accumulates diagnostics across a checker run, suppressing
// duplicates (§4.G: "duplicates are suppressed").
type Reporter struct {
	ModuleName string
	diags      []Diagnostic
	seen       map[string]bool
}

// NewReporter constructs an empty reporter for the named module.
func NewReporter(moduleName string) *Reporter {
	return &Reporter{ModuleName: moduleName, seen: make(map[string]bool)}
}

// Add records d unless an identical (code, message, position) diagnostic was
// already recorded.
func (r *Reporter) Add(d Diagnostic) {
	key := fmt.Sprintf("%s|%s|%s", d.Code, d.Message, d.Pos)
	if r.seen[key] {
		return
	}
	r.seen[key] = true
	r.diags = append(r.diags, d)
}

// Diagnostics returns every recorded diagnostic in insertion order.
func (r *Reporter) Diagnostics() []Diagnostic { return r.diags }

// HasErrors reports whether any recorded diagnostic is fatal (§4.G:
// "a non-empty result terminates compilation").
func (r *Reporter) HasErrors() bool {
	for _, d := range r.diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns only the fatal diagnostics.
func (r *Reporter) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.diags {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

// Format renders every diagnostic, colorized, followed by the summary line
// (§4.G "There are N errors in module 'M'.").
func (r *Reporter) Format() string {
	var sb strings.Builder
	for _, d := range r.diags {
		sb.WriteString(formatOne(d))
		sb.WriteString("\n")
	}
	if n := len(r.Errors()); n > 0 {
		sb.WriteString(fmt.Sprintf("There are %d errors in module '%s'.\n", n, r.ModuleName))
	}
	return sb.String()
}

func formatOne(d Diagnostic) string {
	bold := color.New(color.Bold).SprintFunc()
	levelColor := color.New(color.FgRed).SprintFunc()
	if d.Severity == SeverityWarning {
		levelColor = color.New(color.FgYellow).SprintFunc()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s[%s]: %s\n", levelColor(string(d.Severity)), d.Code, bold(d.Message)))
	sb.WriteString(fmt.Sprintf("  --> %s\n", d.Pos))
	for _, note := range d.Notes {
		sb.WriteString(fmt.Sprintf("  note: %s\n", note))
	}
	if d.Help != "" {
		sb.WriteString(fmt.Sprintf("  help: %s\n", d.Help))
	}
	return sb.String()
}
