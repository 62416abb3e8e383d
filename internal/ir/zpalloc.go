package ir

import (
	"fmt"

	"prog8core/internal/diag"
	"prog8core/internal/value"
	"prog8core/internal/zp"
)

// AllocateZeropage is the final pass named in §4.H: it walks every block
// and, for each Variable flagged ZeroPage, asks alloc for an address of the
// variable's type. A success populates the variable's Address and the
// block's AllocatedZeropageVariables; a failure (zp.ErrDepleted) records a
// WarnZeropageDepleted diagnostic on reporter and leaves the variable to be
// placed in ordinary memory by the external layout pass, per spec.md's
// "failures warn and leave the variable in normal memory".
//
// This runs as a separate pass rather than inside Builder.Build because it
// needs every block's variable set before choosing addresses (first-fit
// allocation order is block order, then variable-name order within a block) —
// the same "whole-program pass after per-block lowering" shape
// internal/optimize.Pipeline uses for its own fixed-point passes.
func AllocateZeropage(prog *Program, alloc zp.Allocator, reporter *diag.Reporter) {
	for _, blk := range prog.Blocks {
		for _, name := range sortedVarNames(blk) {
			v := blk.Variables[name]
			if !v.ZeroPage {
				continue
			}
			addr, err := alloc.Allocate(v.Name, v.Type, nil)
			if err != nil {
				reporter.Add(diag.NewWarning(diag.WarnZeropageDepleted, fmt.Sprintf(
					"cannot place %q on zero page: %s", v.Name, err), value.Position{}).
					WithNote(fmt.Sprintf("block %q", blk.Name)).Build())
				continue
			}
			a := addr
			v.Address = &a
			blk.AllocatedZeropageVariables[v.Name] = addr
		}
	}
}

// sortedVarNames gives a deterministic allocation order (declaration order
// is not recoverable from a map, so this falls back to a stable lexical
// order — acceptable since allocation order only affects which variables
// win a scarce resource on depletion, not program semantics).
func sortedVarNames(blk *ProgramBlock) []string {
	names := make([]string, 0, len(blk.Variables))
	for n := range blk.Variables {
		names = append(names, n)
	}
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
	return names
}
