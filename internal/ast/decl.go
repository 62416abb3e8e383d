package ast

import (
	"fmt"

	"prog8core/internal/value"
)

// Module owns the top-level statements of a compiled program (§3).
type Module struct {
	base
	PosVal value.Position
	Name   string
	Stmts  []Statement
}

func (m *Module) Pos() value.Position    { return m.PosVal }
func (m *Module) EndPos() value.Position { return m.PosVal }
func (m *Module) Kind() NodeKind         { return KModule }
func (m *Module) String() string         { return fmt.Sprintf("module %q", m.Name) }
func (m *Module) Children() []Node {
	out := make([]Node, 0, len(m.Stmts))
	for _, s := range m.Stmts {
		out = append(out, s)
	}
	return out
}

// Block is both a statement container and a name scope (§3): `~ name { ... }`.
type Block struct {
	base
	PosVal      value.Position
	Name        string
	Address     *int // nil unless given an explicit load address
	Stmts       []Statement
	ForceOutput bool
}

func (b *Block) Pos() value.Position    { return b.PosVal }
func (b *Block) EndPos() value.Position { return b.PosVal }
func (b *Block) Kind() NodeKind         { return KBlock }
func (b *Block) isStatement()           {}
func (b *Block) String() string         { return fmt.Sprintf("block %s", b.Name) }
func (b *Block) Children() []Node {
	out := make([]Node, 0, len(b.Stmts))
	for _, s := range b.Stmts {
		out = append(out, s)
	}
	return out
}

// RegisterSpec names a hardware register or status flag bound to an asm
// subroutine parameter or return value (e.g. "A", "X/Y", "Pc").
type RegisterSpec struct {
	Name string
}

// Subroutine represents both ordinary subs and asm subs bound to a fixed
// address with register-based calling convention (§3).
type Subroutine struct {
	base
	PosVal                value.Position
	Name                  string
	Params                []Param
	ReturnTypes           []value.DataType
	Stmts                 []Statement
	IsAsmSubroutine       bool
	AsmAddress            *int
	AsmParameterRegisters []RegisterSpec // parallel to Params
	AsmReturnRegisters    []RegisterSpec // parallel to ReturnTypes
	AsmClobbers           []string
}

// Param is a single subroutine parameter.
type Param struct {
	Name string
	Type value.DataType
}

func (s *Subroutine) Pos() value.Position    { return s.PosVal }
func (s *Subroutine) EndPos() value.Position { return s.PosVal }
func (s *Subroutine) Kind() NodeKind         { return KSubroutine }
func (s *Subroutine) isStatement()           {}
func (s *Subroutine) String() string         { return fmt.Sprintf("sub %s(...)", s.Name) }
func (s *Subroutine) Children() []Node {
	out := make([]Node, 0, len(s.Stmts))
	for _, st := range s.Stmts {
		out = append(out, st)
	}
	return out
}

// VarDeclKind distinguishes var/const/memory declarations.
type VarDeclKind int

const (
	DeclVar VarDeclKind = iota
	DeclConst
	DeclMemory
)

// VarDecl declares a variable, constant, or memory-mapped symbol (§3).
type VarDecl struct {
	base
	PosVal      value.Position
	DeclKind    VarDeclKind
	DataType    value.DataType
	Name        string
	Value       Expr // initializer; may be nil for VAR (checker injects a default)
	ArraySize   Expr // nil unless an array type; may itself be const-folded later
	ZeroPage    bool
}

func (v *VarDecl) Pos() value.Position    { return v.PosVal }
func (v *VarDecl) EndPos() value.Position { return v.PosVal }
func (v *VarDecl) Kind() NodeKind         { return KVarDecl }
func (v *VarDecl) isStatement()           {}
func (v *VarDecl) String() string         { return fmt.Sprintf("decl %s %s", v.DataType, v.Name) }
func (v *VarDecl) Children() []Node {
	var out []Node
	if v.Value != nil {
		out = append(out, v.Value)
	}
	if v.ArraySize != nil {
		out = append(out, v.ArraySize)
	}
	return out
}
