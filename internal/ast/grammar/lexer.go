// Package grammar is the one piece of lexing this core owns directly: a
// participle-based tokenizer over the raw text of an InlineAssembly
// fragment (a %asm {{ ... }} block's body). It is not a front end — the
// source-level lexer/parser that produces the AST lives outside this core
// — but scanning an already-embedded assembly blob to find which
// identifiers it references is a checker concern, mirrored here on the
// teacher's own stateful-lexer shape (grammar/lexer.go's KansoLexer).
package grammar

import "github.com/alecthomas/participle/v2/lexer"

// AsmLexer tokenizes 6502 assembly text: labels, mnemonics/identifiers,
// numeric literals in hex ($), binary (%), and decimal form, punctuation
// used in addressing modes, and comments.
var AsmLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `;[^\n]*`, nil},
		{"Label", `[a-zA-Z_.][a-zA-Z0-9_.]*:`, nil},
		{"Hex", `\$[0-9a-fA-F]+`, nil},
		{"Binary", `%[01]+`, nil},
		{"Decimal", `[0-9]+`, nil},
		{"Ident", `[a-zA-Z_.][a-zA-Z0-9_.]*`, nil},
		{"Punct", `[#(),+\-*/]`, nil},
		{"Newline", `[\r\n]+`, nil},
		{"Whitespace", `[ \t]+`, nil},
	},
})
