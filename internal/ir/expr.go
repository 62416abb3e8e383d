package ir

import (
	"fmt"

	"prog8core/internal/ast"
	"prog8core/internal/scope"
	"prog8core/internal/value"
)

// lowerExpr emits the instruction sequence that leaves exactly one value on
// the stack (§5: "expressions in left-to-right post-order").
func (b *Builder) lowerExpr(pb *ProgramBlock, sc *scope.Scope, e ast.Expr) error {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		return b.lowerLiteral(pb, n.Value)

	case *ast.IdentifierExpr:
		sym := sc.Lookup(n.Name)
		if sym == nil {
			return &BuildError{Pos: n.Pos(), Message: fmt.Sprintf("unresolved identifier %q reached IR emission", n.Name)}
		}
		pb.emit(&Instruction{Opcode: OpPushVar, Arg: &Operand{Name: n.Name, Type: b.symbolType(sc, n.Name)}})
		return nil

	case *ast.RegisterExpr:
		pb.emit(&Instruction{Opcode: OpPushReg, Arg: &Operand{Name: n.Register, Type: value.UBYTE}})
		return nil

	case *ast.AddressOfExpr:
		name := n.ScopedName
		if name == "" {
			name = n.Identifier
		}
		pb.emit(&Instruction{Opcode: OpPushAddr, Arg: &Operand{Name: name, Type: value.UWORD}})
		return nil

	case *ast.DirectMemoryReadExpr:
		if err := b.lowerExpr(pb, sc, n.Address); err != nil {
			return err
		}
		pb.emit(&Instruction{Opcode: OpPushMem, Arg: &Operand{Type: value.UBYTE}})
		return nil

	case *ast.ArrayIndexedExpr:
		pb.emit(&Instruction{Opcode: OpPushAddr, Arg: &Operand{Name: n.Identifier}})
		if err := b.lowerExpr(pb, sc, n.Index); err != nil {
			return err
		}
		pb.emit(&Instruction{Opcode: OpAdd})
		elemType := b.symbolType(sc, n.Identifier).ElementType()
		pb.emit(&Instruction{Opcode: OpPushMem, Arg: &Operand{Type: elemType}})
		return nil

	case *ast.TypecastExpr:
		if err := b.lowerExpr(pb, sc, n.Value); err != nil {
			return err
		}
		pb.emit(&Instruction{Opcode: OpCast, Arg: &Operand{Type: n.Target, Raw: n.Target.String()}})
		return nil

	case *ast.PrefixExpr:
		return b.lowerPrefix(pb, sc, n)

	case *ast.BinaryExpr:
		return b.lowerBinary(pb, sc, n)

	case *ast.RangeExpr:
		// A RangeExpr that survives to IR emission (i.e. wasn't materialized
		// to a heap array/string by the constant-expression evaluator, §4.D)
		// only ever appears as a for-loop's Iterable, which lowerFor handles
		// directly without calling lowerExpr on it.
		return &BuildError{Pos: n.Pos(), Message: "range expression reached general expression lowering"}

	case *ast.FunctionCallExpr:
		types, err := b.lowerCall(pb, sc, n)
		if err != nil {
			return err
		}
		if len(types) != 1 {
			return &BuildError{Pos: n.Pos(), Message: fmt.Sprintf(
				"call to %q used in expression position has %d return values, want 1", n.Target, len(types))}
		}
		return nil

	default:
		return &BuildError{Pos: e.Pos(), Message: fmt.Sprintf("unhandled expression kind %T", e)}
	}
}

func (b *Builder) lowerLiteral(pb *ProgramBlock, lit value.Literal) error {
	switch {
	case lit.Type.IsFloat():
		f, _ := lit.AsNumericValue()
		pb.emit(&Instruction{Opcode: OpPushFloat, Arg: &Operand{Float: f, Type: lit.Type}})
		return nil
	case lit.Type.IsWord():
		iv, _ := lit.AsIntegerValue()
		pb.emit(&Instruction{Opcode: OpPushWord, Arg: &Operand{Int: iv, Type: lit.Type}})
		return nil
	case lit.Type.IsByte():
		iv, _ := lit.AsIntegerValue()
		pb.emit(&Instruction{Opcode: OpPushByte, Arg: &Operand{Int: iv, Type: lit.Type}})
		return nil
	default:
		id, isHeap := lit.HeapID()
		if !isHeap {
			return &BuildError{Pos: lit.Pos, Message: "literal has neither a numeric value nor a heap reference"}
		}
		pb.emit(&Instruction{Opcode: OpPushHeap, Arg: &Operand{Heap: id, Type: lit.Type}})
		return nil
	}
}

func (b *Builder) lowerPrefix(pb *ProgramBlock, sc *scope.Scope, n *ast.PrefixExpr) error {
	if err := b.lowerExpr(pb, sc, n.Inner); err != nil {
		return err
	}
	switch n.Op {
	case "+":
		return nil // unary plus is identity
	case "-":
		pb.emit(&Instruction{Opcode: OpNeg})
		return nil
	case "~":
		pb.emit(&Instruction{Opcode: OpBitNot})
		return nil
	case "not":
		pb.emit(&Instruction{Opcode: OpLogicNot})
		return nil
	default:
		return &BuildError{Pos: n.Pos(), Message: fmt.Sprintf("unhandled prefix operator %q", n.Op)}
	}
}

var binaryOpcodes = map[string]Opcode{
	"+": OpAdd, "-": OpSub, "*": OpMul, "/": OpDiv, "%": OpMod, "**": OpPow,
	"&": OpBitAnd, "|": OpBitOr, "^": OpBitXor, "<<": OpShl, ">>": OpShr,
	"and": OpLogicAnd, "or": OpLogicOr, "xor": OpBitXor,
	"==": OpCmpEq, "!=": OpCmpNe, "<": OpCmpLt, "<=": OpCmpLe, ">": OpCmpGt, ">=": OpCmpGe,
}

func (b *Builder) lowerBinary(pb *ProgramBlock, sc *scope.Scope, n *ast.BinaryExpr) error {
	if err := b.lowerExpr(pb, sc, n.Left); err != nil {
		return err
	}
	if err := b.lowerExpr(pb, sc, n.Right); err != nil {
		return err
	}
	op, ok := binaryOpcodes[n.Op]
	if !ok {
		return &BuildError{Pos: n.Pos(), Message: fmt.Sprintf("unhandled binary operator %q", n.Op)}
	}
	pb.emit(&Instruction{Opcode: op})
	return nil
}
