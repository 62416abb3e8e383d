package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prog8core/internal/value"
)

func jsonPos() value.Position { return value.Position{File: "t.p8", Line: 1, Column: 1} }

func TestModuleJSONRoundTrip(t *testing.T) {
	heap := value.NewHeap()
	id := heap.AddString("hi", value.STR)

	mod := &Module{
		PosVal: jsonPos(),
		Name:   "main",
		Stmts: []Statement{
			&Block{
				PosVal: jsonPos(),
				Name:   "start",
				Stmts: []Statement{
					&VarDecl{
						PosVal:   jsonPos(),
						DeclKind: DeclVar,
						DataType: value.UBYTE,
						Name:     "x",
						Value:    &LiteralExpr{Value: value.NewInteger(value.UBYTE, 5, jsonPos())},
					},
					&Assignment{
						PosVal:  jsonPos(),
						Targets: []AssignTarget{&IdentifierTarget{PosVal: jsonPos(), Name: "x"}},
						Value: &BinaryExpr{
							Op:    "+",
							Left:  &IdentifierExpr{PosVal: jsonPos(), Name: "x"},
							Right: &LiteralExpr{Value: value.NewInteger(value.UBYTE, 1, jsonPos())},
						},
					},
					&IfStatement{
						PosVal: jsonPos(),
						Condition: &BinaryExpr{
							Op:    ">",
							Left:  &IdentifierExpr{PosVal: jsonPos(), Name: "x"},
							Right: &LiteralExpr{Value: value.NewInteger(value.UBYTE, 0, jsonPos())},
						},
						TrueBranch: []Statement{&NopStatement{PosVal: jsonPos()}},
					},
					&VarDecl{
						PosVal:   jsonPos(),
						DeclKind: DeclConst,
						DataType: value.STR,
						Name:     "greeting",
						Value:    &LiteralExpr{Value: value.NewHeapLiteral(value.STR, id, jsonPos())},
					},
				},
			},
		},
	}

	data, err := EncodeModule(mod, heap)
	require.NoError(t, err)

	got, gotHeap, err := DecodeModule(data)
	require.NoError(t, err)

	require.Equal(t, mod.Name, got.Name)
	require.Len(t, got.Stmts, 1)
	blk, ok := got.Stmts[0].(*Block)
	require.True(t, ok)
	require.Len(t, blk.Stmts, 4)

	decl, ok := blk.Stmts[0].(*VarDecl)
	require.True(t, ok)
	assert.Equal(t, "x", decl.Name)
	assert.Equal(t, value.UBYTE, decl.DataType)
	lit, ok := decl.Value.(*LiteralExpr)
	require.True(t, ok)
	n, ok := lit.Value.AsIntegerValue()
	require.True(t, ok)
	assert.Equal(t, int64(5), n)

	assign, ok := blk.Stmts[1].(*Assignment)
	require.True(t, ok)
	bin, ok := assign.Value.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Op)

	str, ok := gotHeap.String(id)
	require.True(t, ok)
	assert.Equal(t, "hi", str.Value)

	greeting, ok := blk.Stmts[3].(*VarDecl)
	require.True(t, ok)
	glit := greeting.Value.(*LiteralExpr)
	gotID, isHeap := glit.Value.HeapID()
	require.True(t, isHeap)
	gotStr, ok := gotHeap.String(gotID)
	require.True(t, ok)
	assert.Equal(t, "hi", gotStr.Value)
}
