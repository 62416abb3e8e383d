// Command prog8corec wires the semantic-analysis and optimization core into
// a batch CLI: parsing itself stays out of scope for this module (spec.md
// §1), so every subcommand here reads an already-parsed program off disk as
// JSON (internal/ast.DecodeModule + the accompanying heap) and drives it
// through constant folding, optimization, checking, IR lowering, peephole
// optimization, and (optionally) textual IR rendering.
//
// Grounded on ajroetker-goat's main.go: a single cobra.Command root carrying
// persistent flags, set up in an init()-less constructor here (split across
// files instead of one global var block, since this driver has three
// subcommands where goat has one bare command).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
