package grammar

// mnemonics lists the 6502 instruction set (lowercased) so ReferencedNames
// can tell an opcode apart from a source-level symbol reference.
var mnemonics = map[string]bool{
	"adc": true, "and": true, "asl": true, "bcc": true, "bcs": true,
	"beq": true, "bit": true, "bmi": true, "bne": true, "bpl": true,
	"brk": true, "bvc": true, "bvs": true, "clc": true, "cld": true,
	"cli": true, "clv": true, "cmp": true, "cpx": true, "cpy": true,
	"dec": true, "dex": true, "dey": true, "eor": true, "inc": true,
	"inx": true, "iny": true, "jmp": true, "jsr": true, "lda": true,
	"ldx": true, "ldy": true, "lsr": true, "nop": true, "ora": true,
	"pha": true, "php": true, "pla": true, "plp": true, "rol": true,
	"ror": true, "rti": true, "rts": true, "sbc": true, "sec": true,
	"sed": true, "sei": true, "sta": true, "stx": true, "sty": true,
	"tax": true, "tay": true, "tsx": true, "txa": true, "txs": true,
	"tya": true,
}

// registers are the CPU registers and status flag names referenced by asm
// calling conventions, never candidate source-symbol references.
var registers = map[string]bool{
	"a": true, "x": true, "y": true, "sp": true, "p": true,
	"pc": true, "pz": true, "pv": true,
}
