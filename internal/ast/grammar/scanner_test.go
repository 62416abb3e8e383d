package grammar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"prog8core/internal/ast/grammar"
)

func TestScanGivesMnemonicsAndIdentifiersTheIdentKind(t *testing.T) {
	toks, err := grammar.Scan("  lda counter\n  sta $d020\n  rts  ; done\n")
	assert := assert.New(t)
	if !assert.NoError(err) {
		return
	}
	var kinds []string
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal([]string{"Ident", "Ident", "Ident", "Hex", "Ident"}, kinds)
}

func TestReferencedNamesExcludesMnemonicsAndRegisters(t *testing.T) {
	names := grammar.ReferencedNames(`
		lda counter
		clc
		adc #1
		sta counter
		ldx #0
		jsr update_score
	`)
	assert.ElementsMatch(t, []string{"counter", "update_score"}, names)
}

func TestReferencedNamesIsCaseInsensitiveAgainstMnemonics(t *testing.T) {
	names := grammar.ReferencedNames("LDA score\nSTA score\n")
	assert.Equal(t, []string{"score"}, names)
}
