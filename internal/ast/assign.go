package ast

import (
	"fmt"

	"prog8core/internal/value"
)

// Assignment represents `target[, target...] = value` or an augmented form
// (§3). AugOp is "" for plain assignment; DesugarAugmented rewrites augmented
// assignment in place into `target = target op value` before the optimizer
// and the checker run.
type Assignment struct {
	base
	PosVal  value.Position
	Targets []AssignTarget
	AugOp   string // "", "+", "-", "*", "/", "%", "&", "|", "^", "<<", ">>"
	Value   Expr
}

func (a *Assignment) Pos() value.Position    { return a.PosVal }
func (a *Assignment) EndPos() value.Position { return a.PosVal }
func (a *Assignment) Kind() NodeKind         { return KAssignment }
func (a *Assignment) isStatement()           {}
func (a *Assignment) String() string {
	if a.AugOp != "" {
		return fmt.Sprintf("assign (%s=)", a.AugOp)
	}
	return "assign"
}
func (a *Assignment) Children() []Node {
	out := make([]Node, 0, len(a.Targets)+1)
	for _, t := range a.Targets {
		out = append(out, t)
	}
	if a.Value != nil {
		out = append(out, a.Value)
	}
	return out
}

// RegisterTarget assigns to a hardware register (asm calling convention).
type RegisterTarget struct {
	base
	PosVal   value.Position
	Register string
}

func (t *RegisterTarget) Pos() value.Position    { return t.PosVal }
func (t *RegisterTarget) EndPos() value.Position { return t.PosVal }
func (t *RegisterTarget) Kind() NodeKind         { return KRegisterTarget }
func (t *RegisterTarget) isAssignTarget()        {}
func (t *RegisterTarget) String() string         { return t.Register }
func (t *RegisterTarget) Children() []Node       { return nil }

// IdentifierTarget assigns to a named variable.
type IdentifierTarget struct {
	base
	PosVal value.Position
	Name   string
}

func (t *IdentifierTarget) Pos() value.Position    { return t.PosVal }
func (t *IdentifierTarget) EndPos() value.Position { return t.PosVal }
func (t *IdentifierTarget) Kind() NodeKind         { return KIdentifierTarget }
func (t *IdentifierTarget) isAssignTarget()        {}
func (t *IdentifierTarget) String() string         { return t.Name }
func (t *IdentifierTarget) Children() []Node       { return nil }

// IndexedTarget assigns to a single array element.
type IndexedTarget struct {
	base
	PosVal value.Position
	Name   string
	Index  Expr
}

func (t *IndexedTarget) Pos() value.Position    { return t.PosVal }
func (t *IndexedTarget) EndPos() value.Position { return t.PosVal }
func (t *IndexedTarget) Kind() NodeKind         { return KIndexedTarget }
func (t *IndexedTarget) isAssignTarget()        {}
func (t *IndexedTarget) String() string         { return fmt.Sprintf("%s[...]", t.Name) }
func (t *IndexedTarget) Children() []Node {
	if t.Index != nil {
		return []Node{t.Index}
	}
	return nil
}

// MemoryTarget assigns through a direct memory-address expression.
type MemoryTarget struct {
	base
	PosVal  value.Position
	Address Expr
}

func (t *MemoryTarget) Pos() value.Position    { return t.PosVal }
func (t *MemoryTarget) EndPos() value.Position { return t.PosVal }
func (t *MemoryTarget) Kind() NodeKind         { return KMemoryTarget }
func (t *MemoryTarget) isAssignTarget()        {}
func (t *MemoryTarget) String() string         { return "@(...)" }
func (t *MemoryTarget) Children() []Node {
	if t.Address != nil {
		return []Node{t.Address}
	}
	return nil
}

// StructurallyEqualTarget reports whether two targets refer to the same
// assignable location by structure (register/identifier/memory-address/
// array-index), as required by the redundant-store and self-assignment
// rules (§4.F). Memory-address equality is syntactic, matching the "two
// consecutive assignments whose target matches ... structurally equal"
// wording; it does not attempt alias analysis.
func StructurallyEqualTarget(a, b AssignTarget) bool {
	switch x := a.(type) {
	case *RegisterTarget:
		y, ok := b.(*RegisterTarget)
		return ok && x.Register == y.Register
	case *IdentifierTarget:
		y, ok := b.(*IdentifierTarget)
		return ok && x.Name == y.Name
	case *IndexedTarget:
		y, ok := b.(*IndexedTarget)
		return ok && x.Name == y.Name && StructurallyEqualExpr(x.Index, y.Index)
	case *MemoryTarget:
		y, ok := b.(*MemoryTarget)
		return ok && StructurallyEqualExpr(x.Address, y.Address)
	default:
		return false
	}
}
