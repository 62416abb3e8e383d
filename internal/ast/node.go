// Package ast defines the AST node variants produced by the (external)
// parser and consumed by the rest of this core, plus the parent-relink pass
// shared by the optimizer and checker (each pass walks the tree itself).
package ast

import "prog8core/internal/value"

// NodeKind enumerates every concrete node variant, mirroring the teacher's
// NodeType enum (one entry per struct below).
//
//go:generate stringer -type=NodeKind
type NodeKind int

const (
	ILLEGAL NodeKind = iota

	KModule
	KBlock
	KSubroutine
	KVarDecl
	KAssignment

	KRegisterTarget
	KIdentifierTarget
	KIndexedTarget
	KMemoryTarget

	KLiteralExpr
	KIdentifierExpr
	KPrefixExpr
	KBinaryExpr
	KFunctionCallExpr
	KArrayIndexedExpr
	KAddressOfExpr
	KTypecastExpr
	KRangeExpr
	KRegisterExpr
	KDirectMemoryReadExpr

	KJump
	KReturn
	KIfStatement
	KForLoop
	KWhileLoop
	KRepeatLoop
	KLabel
	KPostIncrDecr
	KFunctionCallStatement
	KInlineAssembly
	KDirective
	KAnonymousScope
	KNopStatement
	KBuiltinFunctionStatementPlaceholder
)

// Node is implemented by every AST node. Parent is a weak back-reference
// maintained only by Relink (§3: "back-references ... set by an explicit
// relink pass"); it is never used to own or traverse down into children.
type Node interface {
	Pos() value.Position
	EndPos() value.Position
	Kind() NodeKind
	Parent() Node
	Children() []Node
	String() string

	setParent(Node)
}

// base is embedded by every node and supplies the Parent/setParent plumbing
// so individual node structs don't repeat it.
type base struct {
	parent Node
}

func (b *base) Parent() Node       { return b.parent }
func (b *base) setParent(p Node)   { b.parent = p }

// Statement is implemented by every node that can appear in a statement
// list (block body, subroutine body, loop body, branch body).
type Statement interface {
	Node
	isStatement()
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	isExpr()
}

// AssignTarget is implemented by the four assignable-location variants.
type AssignTarget interface {
	Node
	isAssignTarget()
}
