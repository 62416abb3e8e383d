package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prog8core/internal/ast"
	"prog8core/internal/scope"
	"prog8core/internal/value"
)

func pos() value.Position { return value.Position{File: "test.p8", Line: 1, Column: 1} }

func intLit(t value.DataType, n int64) *ast.LiteralExpr {
	return &ast.LiteralExpr{Value: value.NewInteger(t, n, pos())}
}

func ident(name string) *ast.IdentifierExpr {
	return &ast.IdentifierExpr{PosVal: pos(), Name: name}
}

// buildProgram wires startBody into main.start, runs Relink+scope.Build, and
// lowers the result with a fresh Builder.
func buildProgram(t *testing.T, startBody []ast.Statement) *Program {
	t.Helper()
	start := &ast.Subroutine{PosVal: pos(), Name: "start", Stmts: startBody}
	main := &ast.Block{PosVal: pos(), Name: "main", Stmts: []ast.Statement{start}}
	mod := &ast.Module{PosVal: pos(), Name: "test", Stmts: []ast.Statement{main}}

	ast.Relink(mod)
	table := scope.Build(mod)
	prog, err := NewBuilder(table, value.NewHeap()).Build(mod)
	require.NoError(t, err)
	return prog
}

func opcodes(instrs []*Instruction) []Opcode {
	out := make([]Opcode, len(instrs))
	for i, ins := range instrs {
		out[i] = ins.Opcode
	}
	return out
}

func TestLowerVarDeclWithInitializer(t *testing.T) {
	decl := &ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.UBYTE, Name: "x", Value: intLit(value.UBYTE, 5)}
	prog := buildProgram(t, []ast.Statement{decl})

	main := prog.findBlock("main")
	require.NotNil(t, main)
	v, ok := main.Variables["x"]
	require.True(t, ok)
	assert.Equal(t, value.UBYTE, v.Type)

	assert.Contains(t, opcodes(main.Instructions), OpPushByte)
	assert.Contains(t, opcodes(main.Instructions), OpPopVar)
}

func TestLowerVarDeclWithConstantInitializerNoRuntimeStore(t *testing.T) {
	// A VAR whose initializer is already a folded literal takes the Init
	// shortcut (no PUSH/POP emitted; the value is carried on the Variable
	// itself for the external memory-layout pass to place as initialized data).
	decl := &ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.UBYTE, Name: "x", Value: intLit(value.UBYTE, 5)}
	prog := buildProgram(t, []ast.Statement{decl})
	main := prog.findBlock("main")
	require.NotNil(t, main)
	require.NotNil(t, main.Variables["x"].Init)
	assert.Equal(t, OpReturn, main.Instructions[len(main.Instructions)-1].Opcode)
}

func TestLowerConstDeclEmitsNoStorage(t *testing.T) {
	decl := &ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclConst, DataType: value.UBYTE, Name: "k", Value: intLit(value.UBYTE, 1)}
	prog := buildProgram(t, []ast.Statement{decl})
	main := prog.findBlock("main")
	require.NotNil(t, main)
	_, isVar := main.Variables["k"]
	assert.False(t, isVar, "CONST declarations occupy no runtime Variable slot")
}

func TestLowerMemoryDecl(t *testing.T) {
	decl := &ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclMemory, DataType: value.UBYTE, Name: "screen", Value: intLit(value.UWORD, 1024)}
	prog := buildProgram(t, []ast.Statement{decl})
	main := prog.findBlock("main")
	require.NotNil(t, main)
	mp, ok := main.MemoryPointers["screen"]
	require.True(t, ok)
	assert.Equal(t, 1024, mp.Address)
}

func TestLowerAssignment(t *testing.T) {
	decl := &ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.UBYTE, Name: "x"}
	assign := &ast.Assignment{
		Targets: []ast.AssignTarget{&ast.IdentifierTarget{PosVal: pos(), Name: "x"}},
		Value:   intLit(value.UBYTE, 7),
	}
	prog := buildProgram(t, []ast.Statement{decl, assign})
	main := prog.findBlock("main")
	require.NotNil(t, main)

	ops := opcodes(main.Instructions)
	foundPush, foundPop := -1, -1
	for i, op := range ops {
		if op == OpPushByte {
			foundPush = i
		}
		if op == OpPopVar && foundPush >= 0 && foundPop < 0 {
			foundPop = i
		}
	}
	assert.Greater(t, foundPop, foundPush, "push must precede the store it feeds")
}

func TestLowerIfWithElse(t *testing.T) {
	decl := &ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.UBYTE, Name: "x"}
	ifst := &ast.IfStatement{
		PosVal:    pos(),
		Condition: ident("x"),
		TrueBranch: []ast.Statement{
			&ast.Assignment{Targets: []ast.AssignTarget{&ast.IdentifierTarget{PosVal: pos(), Name: "x"}}, Value: intLit(value.UBYTE, 1)},
		},
		FalseBranch: []ast.Statement{
			&ast.Assignment{Targets: []ast.AssignTarget{&ast.IdentifierTarget{PosVal: pos(), Name: "x"}}, Value: intLit(value.UBYTE, 2)},
		},
	}
	prog := buildProgram(t, []ast.Statement{decl, ifst})
	main := prog.findBlock("main")
	require.NotNil(t, main)

	ops := opcodes(main.Instructions)
	assert.Contains(t, ops, OpJz)
	assert.Contains(t, ops, OpJump)
	assert.Contains(t, ops, OpLabel)
}

func TestLowerWhileLoop(t *testing.T) {
	decl := &ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.UBYTE, Name: "x"}
	loop := &ast.WhileLoop{
		PosVal:    pos(),
		Condition: ident("x"),
		Body: []ast.Statement{
			&ast.PostIncrDecr{PosVal: pos(), Target: &ast.IdentifierTarget{PosVal: pos(), Name: "x"}, Incr: true},
		},
	}
	prog := buildProgram(t, []ast.Statement{decl, loop})
	main := prog.findBlock("main")
	require.NotNil(t, main)

	ops := opcodes(main.Instructions)
	assert.Contains(t, ops, OpJz)
	assert.Contains(t, ops, OpJump)
	assert.Contains(t, ops, OpPeekVar)
}

func TestLowerJump(t *testing.T) {
	prog := buildProgram(t, []ast.Statement{
		&ast.Label{PosVal: pos(), Name: "loop"},
		&ast.Jump{PosVal: pos(), Target: "loop"},
	})
	main := prog.findBlock("main")
	require.NotNil(t, main)
	ops := opcodes(main.Instructions)
	assert.Contains(t, ops, OpLabel)
	assert.Contains(t, ops, OpJump)
}

func TestSubroutineWithoutExplicitReturnGetsOne(t *testing.T) {
	decl := &ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.UBYTE, Name: "x", Value: intLit(value.UBYTE, 1)}
	prog := buildProgram(t, []ast.Statement{decl})
	main := prog.findBlock("main")
	require.NotNil(t, main)
	assert.Equal(t, OpReturn, main.Instructions[len(main.Instructions)-1].Opcode)
}

func TestLowerBinaryExpression(t *testing.T) {
	decl := &ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.UBYTE, Name: "x",
		Value: &ast.BinaryExpr{Left: intLit(value.UBYTE, 1), Op: "+", Right: intLit(value.UBYTE, 2)}}
	prog := buildProgram(t, []ast.Statement{decl})
	main := prog.findBlock("main")
	require.NotNil(t, main)
	ops := opcodes(main.Instructions)
	assert.Contains(t, ops, OpAdd)
}
