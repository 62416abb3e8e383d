// Package irtext serializes an *ir.Program into the textual IR format named
// by spec.md §6: `%memory`, `%heap`, and one `%block ... %end_block` per
// program block, each block holding `%variables`, `%memorypointers`, and
// `%instructions` sub-sections. This is the round-trip partner of
// internal/ir — internal/ir builds the in-memory IR, irtext renders it to
// the text a downstream assembler consumes.
package irtext

import (
	"fmt"
	"strconv"
	"strings"

	"prog8core/internal/ir"
	"prog8core/internal/value"
)

// Printer renders one *ir.Program, grounded on kanso's own
// internal/ir/printer.go Printer (indent counter + strings.Builder,
// writeLine/write helpers, one top-level Print(program) entry point),
// adapted from its SSA/EVM-text dialect to this stack-machine one.
type Printer struct {
	indent int
	output strings.Builder
}

// NewPrinter constructs an empty printer.
func NewPrinter() *Printer {
	return &Printer{}
}

// Print renders prog to its textual IR form.
func Print(prog *ir.Program) string {
	p := NewPrinter()
	p.printProgram(prog)
	return p.output.String()
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) printProgram(prog *ir.Program) {
	p.writeLine("%%memory")
	p.writeLine("")

	if prog.Heap != nil && prog.Heap.Len() > 0 {
		p.printHeap(prog.Heap)
		p.writeLine("")
	}

	for _, blk := range prog.Blocks {
		p.printBlock(blk)
		p.writeLine("")
	}
}

// printHeap renders one `id type payload` line per heap entry (§6): a
// quoted escaped string, a comma-separated list of integers, or a
// comma-separated list of floats. An array cell flagged AddressOf prints as
// `&` followed by the cell's integer value; the heap stores no name for it,
// so no `&scopedname` form is produced.
func (p *Printer) printHeap(h *value.Heap) {
	p.writeLine("%%heap")
	p.indent++
	for id := 0; id < h.Len(); id++ {
		hid := value.HeapID(id)
		if s, ok := h.String(hid); ok {
			p.writeLine("%d %s %s", id, s.Type, quoteString(s.Value))
			continue
		}
		if a, ok := h.Array(hid); ok {
			p.writeLine("%d %s %s", id, a.Type, arrayPayload(a))
			continue
		}
		if d, ok := h.DoubleArray(hid); ok {
			p.writeLine("%d %s %s", id, value.ARRAY_F, floatPayload(d.Values))
			continue
		}
	}
	p.indent--
}

func quoteString(s string) string {
	return strconv.Quote(s)
}

func arrayPayload(a value.ArrayEntry) string {
	parts := make([]string, len(a.Values))
	for i, v := range a.Values {
		if i < len(a.AddressOf) && a.AddressOf[i] {
			parts[i] = fmt.Sprintf("&%d", v)
			continue
		}
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ", ")
}

func floatPayload(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ", ")
}

func (p *Printer) printBlock(blk *ir.ProgramBlock) {
	if blk.Address != nil {
		p.writeLine("%%block %s %d", blk.Name, *blk.Address)
	} else {
		p.writeLine("%%block %s", blk.Name)
	}
	p.indent++

	if blk.ForceOutput {
		p.writeLine("%%force_output")
	}

	if len(blk.Variables) > 0 {
		p.writeLine("%%variables")
		p.indent++
		for _, name := range sortedKeys(blk.Variables) {
			p.printVariable(blk.Variables[name])
		}
		p.indent--
	}

	if len(blk.MemoryPointers) > 0 {
		p.writeLine("%%memorypointers")
		p.indent++
		for _, name := range sortedMemPtrKeys(blk.MemoryPointers) {
			mp := blk.MemoryPointers[name]
			p.writeLine("%s %s = %d", mp.Name, mp.Type, mp.Address)
		}
		p.indent--
	}

	p.writeLine("%%instructions")
	p.indent++
	for _, instr := range blk.Instructions {
		p.printInstruction(instr)
	}
	p.indent--

	p.indent--
	p.writeLine("%%end_block")
}

func (p *Printer) printVariable(v *ir.Variable) {
	line := fmt.Sprintf("%s %s", v.Name, v.Type)
	if v.ArraySize > 0 {
		line += fmt.Sprintf("[%d]", v.ArraySize)
	}
	if v.Address != nil {
		line += fmt.Sprintf(" @%#x", *v.Address)
	} else if v.ZeroPage {
		line += " @zp"
	}
	if v.Init != nil {
		line += " = " + literalPayload(*v.Init)
	}
	p.writeLine("%s", line)
}

func literalPayload(l value.Literal) string {
	if iv, ok := l.AsIntegerValue(); ok {
		return strconv.FormatInt(iv, 10)
	}
	if fv, ok := l.AsNumericValue(); ok {
		return strconv.FormatFloat(fv, 'g', -1, 64)
	}
	if id, ok := l.HeapID(); ok {
		return fmt.Sprintf("<heap#%d>", id)
	}
	return "?"
}

// printInstruction renders one instruction line: the opcode mnemonic,
// optional args, and (for a LabelInstr) the label-suffix form (§6:
// "instruction lines are opcode mnemonics with optional args and a label
// suffix").
func (p *Printer) printInstruction(instr *ir.Instruction) {
	if instr.IsLabel() {
		p.writeLine("%s:", instr.Arg.Name)
		return
	}

	var sb strings.Builder
	sb.WriteString(string(instr.Opcode))
	if arg := operandString(instr.Arg); arg != "" {
		sb.WriteString(" ")
		sb.WriteString(arg)
	}
	if arg2 := operandString(instr.Arg2); arg2 != "" {
		sb.WriteString(", ")
		sb.WriteString(arg2)
	}
	if instr.CallLabel != "" {
		sb.WriteString(" ")
		sb.WriteString(instr.CallLabel)
	}
	if instr.CallLabel2 != "" {
		sb.WriteString(", ")
		sb.WriteString(instr.CallLabel2)
	}
	p.writeLine("%s", sb.String())
}

func operandString(op *ir.Operand) string {
	if op == nil {
		return ""
	}
	switch {
	case op.Name != "":
		return op.Name
	case op.Raw != "":
		return op.Raw
	case op.Type.IsString() || op.Type.IsArray():
		return fmt.Sprintf("<heap#%d>", op.Heap)
	case op.Type.IsFloat():
		return strconv.FormatFloat(op.Float, 'g', -1, 64)
	default:
		return strconv.FormatInt(op.Int, 10)
	}
}

func sortedKeys(m map[string]*ir.Variable) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	insertionSort(out)
	return out
}

func sortedMemPtrKeys(m map[string]*ir.MemoryPointer) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	insertionSort(out)
	return out
}

// insertionSort keeps block/heap rendering output deterministic (map
// iteration order is not), without pulling in sort for what is always a
// small handful of names.
func insertionSort(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
