package ir

import (
	"fmt"

	"prog8core/internal/value"
)

// PeepholeError marks the one fatal condition the peephole pass can
// detect itself: a DISCARD immediately following a PUSH whose widths
// disagree, which can only mean an earlier lowering stage emitted
// inconsistent types (§4.H rule 6: "mismatched discard/cast types are a
// fatal compiler error").
type PeepholeError struct {
	Block   string
	Message string
}

func (e *PeepholeError) Error() string {
	return fmt.Sprintf("block %q: internal error: %s", e.Block, e.Message)
}

// PeepholePass applies the six rules of §4.H to a fixed point, one block at
// a time. Grounded on kanso's OptimizationPass/OptimizationPipeline
// Name/Apply/run-until-stable shape (internal/ir/optimizations.go),
// generalized here from a sequence of named whole-program SSA passes to a
// single rule set re-scanned over one block's flat instruction list until no
// rule fires — the same "idempotent, fixed-point" framing §4.H uses. A
// MaxIterations safety net mirrors internal/optimize.Pipeline's
// maxIterations guard against a rule that (incorrectly) never stabilizes.
type PeepholePass struct {
	MaxIterations int
}

// NewPeepholePass constructs a pass with the default iteration cap.
func NewPeepholePass() *PeepholePass {
	return &PeepholePass{MaxIterations: 1000}
}

// Run optimizes every block of prog in place.
func (p *PeepholePass) Run(prog *Program) error {
	limit := p.MaxIterations
	if limit <= 0 {
		limit = 1000
	}
	for _, blk := range prog.Blocks {
		for i := 0; i < limit; i++ {
			changed, err := peepholeOnce(blk)
			if err != nil {
				return err
			}
			if !changed {
				break
			}
		}
		rebuildLabels(blk)
	}
	return nil
}

func rebuildLabels(blk *ProgramBlock) {
	labels := make(map[string]int, len(blk.Labels))
	for i, instr := range blk.Instructions {
		if instr.IsLabel() {
			labels[instr.labelName()] = i
		}
	}
	blk.Labels = labels
}

// peepholeOnce runs rules 1-6 once over blk.Instructions, left to right.
// When a rule fires the scan continues after the consumed instructions; the
// rewritten output is not re-examined in the same call, so the outer loop in
// Run picks up rewrites whose effects only become visible a pass later
// (e.g. a NOP left by a folded branch, or a CALL;RETURN fold exposing a
// fresh redundant push/pop pair).
func peepholeOnce(blk *ProgramBlock) (bool, error) {
	out := make([]*Instruction, 0, len(blk.Instructions))
	changed := false
	in := blk.Instructions

	for i := 0; i < len(in); i++ {
		instr := in[i]

		// Rule 1: drop bare NOPs (no payload, not a label/asm carrier).
		if instr.Opcode == OpNop && instr.Arg == nil {
			changed = true
			continue
		}

		// Rule 2: fold consecutive LINE markers into the last one.
		if instr.Opcode == OpLine && len(out) > 0 && out[len(out)-1].Opcode == OpLine {
			out[len(out)-1] = instr
			changed = true
			continue
		}

		// Rule 3: CALL X; RETURN -> JUMP X.
		if instr.Opcode == OpCall && i+1 < len(in) && in[i+1].Opcode == OpReturn {
			out = append(out, &Instruction{Opcode: OpJump, CallLabel: instr.CallLabel, CallLabel2: instr.CallLabel2})
			i++ // consume the RETURN too
			changed = true
			continue
		}

		// Rule 4a: PUSH const; conditional branch -> fold to JUMP/NOP.
		if isConstPush(instr) && i+1 < len(in) && isConditionalBranch(in[i+1].Opcode) {
			branch := in[i+1]
			// JZ/JZW take the branch on a falsy (zero) value; JNZ/JNZW take
			// it on a truthy one.
			taken := !pushIsTruthy(instr)
			if branch.Opcode == OpJnz || branch.Opcode == OpJnzw {
				taken = !taken
			}
			if taken {
				out = append(out, &Instruction{Opcode: OpJump, CallLabel: branch.CallLabel})
			} else {
				out = append(out, &Instruction{Opcode: OpNop})
			}
			i++
			changed = true
			continue
		}

		// Rule 4b: NOT; conditional branch -> invert branch, drop the NOT.
		if instr.Opcode == OpLogicNot && i+1 < len(in) && isConditionalBranch(in[i+1].Opcode) {
			out = append(out, &Instruction{Opcode: invertBranch(in[i+1].Opcode), CallLabel: in[i+1].CallLabel})
			i++
			changed = true
			continue
		}

		// Rule 5: redundant push/pop of the same variable or register.
		if i+1 < len(in) && isRedundantPushPop(instr, in[i+1]) {
			i++
			changed = true
			continue
		}

		// Rule 6a: literal push followed by a cast rewrites the push's type
		// and drops the cast.
		if isConstPush(instr) && i+1 < len(in) && in[i+1].Opcode == OpCast {
			rewritten, err := castConstPush(instr, in[i+1].Arg.Type)
			if err != nil {
				return false, &PeepholeError{Block: blk.Name, Message: err.Error()}
			}
			out = append(out, rewritten)
			i++
			changed = true
			continue
		}

		// Rule 6b: push immediately discarded elides both, provided the
		// widths agree; a width mismatch is the one fatal case this pass
		// detects on its own.
		if isAnyPush(instr) && i+1 < len(in) && in[i+1].Opcode == OpDiscard {
			discard := in[i+1]
			if !widthsAgree(pushWidth(instr), discard.Arg.Type) {
				return false, &PeepholeError{Block: blk.Name, Message: fmt.Sprintf(
					"DISCARD width %s does not match preceding push width %s", discard.Arg.Type, pushWidth(instr))}
			}
			i++
			changed = true
			continue
		}

		out = append(out, instr)
	}

	blk.Instructions = out
	return changed, nil
}

func isConstPush(i *Instruction) bool {
	switch i.Opcode {
	case OpPushByte, OpPushWord, OpPushFloat:
		return true
	default:
		return false
	}
}

func isAnyPush(i *Instruction) bool {
	switch i.Opcode {
	case OpPushByte, OpPushWord, OpPushFloat, OpPushVar, OpPushMem, OpPushReg, OpPushHeap, OpPushAddr:
		return true
	default:
		return false
	}
}

func isConditionalBranch(op Opcode) bool {
	switch op {
	case OpJz, OpJnz, OpJzw, OpJnzw:
		return true
	default:
		return false
	}
}

func invertBranch(op Opcode) Opcode {
	switch op {
	case OpJz:
		return OpJnz
	case OpJnz:
		return OpJz
	case OpJzw:
		return OpJnzw
	case OpJnzw:
		return OpJzw
	default:
		return op
	}
}

func pushIsTruthy(i *Instruction) bool {
	switch i.Opcode {
	case OpPushFloat:
		return i.Arg.Float != 0
	default:
		return i.Arg.Int != 0
	}
}

// isRedundantPushPop reports whether a and b together have no effect:
// pushing a variable/register immediately followed by popping the same
// one (§4.H rule 5).
func isRedundantPushPop(a, b *Instruction) bool {
	switch {
	case a.Opcode == OpPushVar && b.Opcode == OpPopVar:
		return a.Arg.Name == b.Arg.Name
	case a.Opcode == OpPushReg && b.Opcode == OpPopReg:
		return a.Arg.Name == b.Arg.Name
	default:
		return false
	}
}

func pushWidth(i *Instruction) string {
	switch i.Opcode {
	case OpPushByte:
		return "byte"
	case OpPushWord, OpPushAddr:
		return "word"
	case OpPushFloat:
		return "float"
	default:
		if i.Arg == nil {
			return "byte"
		}
		if i.Arg.Type.IsWord() {
			return "word"
		}
		if i.Arg.Type.IsFloat() {
			return "float"
		}
		return "byte"
	}
}

func widthsAgree(pushWidth string, discardType value.DataType) bool {
	// The width check only needs IsWord to separate byte/word-ish families,
	// since float discards are always tagged explicitly by the builder.
	return (pushWidth == "word") == discardType.IsWord()
}

// castConstPush folds a CAST applied to a just-pushed literal back into the
// push itself, masking per §4.H rule 6 ("with masking for UB/MSB").
func castConstPush(push *Instruction, target value.DataType) (*Instruction, error) {
	switch {
	case target.IsFloat():
		v := float64(push.Arg.Int)
		if push.Opcode == OpPushFloat {
			v = push.Arg.Float
		}
		return &Instruction{Opcode: OpPushFloat, Arg: &Operand{Float: v}}, nil
	case target.IsByte():
		n := push.Arg.Int & 0xFF
		if target.IsSigned() && n > 127 {
			n -= 256
		}
		return &Instruction{Opcode: OpPushByte, Arg: &Operand{Int: n}}, nil
	case target.IsWord():
		n := push.Arg.Int & 0xFFFF
		if target.IsSigned() && n > 32767 {
			n -= 65536
		}
		return &Instruction{Opcode: OpPushWord, Arg: &Operand{Int: n}}, nil
	default:
		return nil, fmt.Errorf("cast target is neither byte, word, nor float width")
	}
}
