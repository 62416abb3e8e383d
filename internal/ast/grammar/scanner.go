package grammar

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Token is this package's minimal, stable view of a scanned fragment token,
// independent of participle/lexer's own Token/TokenType representation.
type Token struct {
	Kind string
	Text string
}

var tokenNames = invertSymbols(AsmLexer.Symbols())

func invertSymbols(syms map[string]lexer.TokenType) map[lexer.TokenType]string {
	out := make(map[lexer.TokenType]string, len(syms))
	for name, t := range syms {
		out[t] = name
	}
	return out
}

// Scan tokenizes an inline-assembly fragment's raw text, dropping
// whitespace/newlines/comments — the checker's consumers only care about
// mnemonics, labels, identifiers, and numeric literals.
func Scan(src string) ([]Token, error) {
	lex, err := AsmLexer.Lex("", strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	var out []Token
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF() {
			break
		}
		kind := tokenNames[tok.Type]
		switch kind {
		case "Whitespace", "Newline", "Comment":
			continue
		}
		out = append(out, Token{Kind: kind, Text: tok.Value})
	}
	return out, nil
}

// ReferencedNames scans src and returns the set of identifiers it mentions
// that are neither 6502 mnemonics nor register names — candidate references
// to source-level variables, constants, or subroutines. Malformed assembly
// text yields a nil slice rather than an error: the checker already has a
// separate, file-existence-only view of %asminclude/%asmbinary, and a
// scan failure here should not cascade into the wrong diagnostic.
func ReferencedNames(src string) []string {
	toks, err := Scan(src)
	if err != nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, t := range toks {
		if t.Kind != "Ident" {
			continue
		}
		name := strings.ToLower(t.Text)
		if mnemonics[name] || registers[name] {
			continue
		}
		if !seen[t.Text] {
			seen[t.Text] = true
			out = append(out, t.Text)
		}
	}
	return out
}
