package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prog8core/internal/ast"
	"prog8core/internal/diag"
	"prog8core/internal/scope"
	"prog8core/internal/value"
)

func pos() value.Position { return value.Position{File: "test.p8", Line: 1, Column: 1} }

func intLit(t value.DataType, n int64) *ast.LiteralExpr {
	return &ast.LiteralExpr{Value: value.NewInteger(t, n, pos())}
}

func floatLit(f float64) *ast.LiteralExpr {
	return &ast.LiteralExpr{Value: value.NewFloat(f, pos())}
}

func ident(name string) *ast.IdentifierExpr {
	return &ast.IdentifierExpr{PosVal: pos(), Name: name}
}

// buildModule wires startBody into "main.start" and mainExtra directly into
// the main block (alongside start), runs Relink+scope.Build+Checker, and
// returns the resulting diagnostics.
func buildModule(mainExtra []ast.Statement, startBody []ast.Statement) *diag.Reporter {
	start := &ast.Subroutine{PosVal: pos(), Name: "start", Stmts: startBody}
	mainStmts := append([]ast.Statement{start}, mainExtra...)
	main := &ast.Block{PosVal: pos(), Name: "main", Stmts: mainStmts}
	mod := &ast.Module{PosVal: pos(), Name: "test", Stmts: []ast.Statement{main}}

	ast.Relink(mod)
	table := scope.Build(mod)
	c := New(mod, table, value.NewHeap())
	return c.Run()
}

func codes(r *diag.Reporter) []string {
	out := make([]string, 0, len(r.Diagnostics()))
	for _, d := range r.Diagnostics() {
		out = append(out, d.Code)
	}
	return out
}

func TestMinimalValidModule(t *testing.T) {
	r := buildModule(nil, nil)
	assert.False(t, r.HasErrors(), "a bare main/start module should have no errors, got: %v", codes(r))
}

func TestMissingMainBlock(t *testing.T) {
	mod := &ast.Module{PosVal: pos(), Name: "test", Stmts: nil}
	ast.Relink(mod)
	table := scope.Build(mod)
	r := New(mod, table, value.NewHeap()).Run()

	require.True(t, r.HasErrors())
	assert.Contains(t, codes(r), diag.ErrModuleStructure)
}

func TestMainMissingStart(t *testing.T) {
	main := &ast.Block{PosVal: pos(), Name: "main"}
	mod := &ast.Module{PosVal: pos(), Name: "test", Stmts: []ast.Statement{main}}
	ast.Relink(mod)
	table := scope.Build(mod)
	r := New(mod, table, value.NewHeap()).Run()

	require.True(t, r.HasErrors())
	assert.Contains(t, codes(r), diag.ErrModuleStructure)
}

func TestDuplicateModuleDirective(t *testing.T) {
	mod := &ast.Module{PosVal: pos(), Name: "test", Stmts: []ast.Statement{
		&ast.Directive{PosVal: pos(), Name: "output", Args: []string{"raw"}},
		&ast.Directive{PosVal: pos(), Name: "output", Args: []string{"prg"}},
		&ast.Block{PosVal: pos(), Name: "main", Stmts: []ast.Statement{
			&ast.Subroutine{PosVal: pos(), Name: "start"},
		}},
	}}
	ast.Relink(mod)
	table := scope.Build(mod)
	r := New(mod, table, value.NewHeap()).Run()

	assert.Contains(t, codes(r), diag.ErrDuplicateDirective)
}

func TestDirectiveInvalidArgument(t *testing.T) {
	mod := &ast.Module{PosVal: pos(), Name: "test", Stmts: []ast.Statement{
		&ast.Directive{PosVal: pos(), Name: "output", Args: []string{"bogus"}},
		&ast.Block{PosVal: pos(), Name: "main", Stmts: []ast.Statement{
			&ast.Subroutine{PosVal: pos(), Name: "start"},
		}},
	}}
	ast.Relink(mod)
	table := scope.Build(mod)
	r := New(mod, table, value.NewHeap()).Run()

	assert.Contains(t, codes(r), diag.ErrDirectiveArgument)
}

func TestSelfImportRejected(t *testing.T) {
	mod := &ast.Module{PosVal: pos(), Name: "test", Stmts: []ast.Statement{
		&ast.Directive{PosVal: pos(), Name: "import", Args: []string{"test"}},
		&ast.Block{PosVal: pos(), Name: "main", Stmts: []ast.Statement{
			&ast.Subroutine{PosVal: pos(), Name: "start"},
		}},
	}}
	ast.Relink(mod)
	table := scope.Build(mod)
	r := New(mod, table, value.NewHeap()).Run()

	assert.Contains(t, codes(r), diag.ErrDirectiveArgument)
}

func TestConstMustBeNumeric(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclConst, DataType: value.STR, Name: "c", Value: nil},
	}, nil)

	assert.Contains(t, codes(r), diag.ErrInvalidConstType)
}

func TestFloatRequiresOption(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.FLOAT, Name: "f", Value: floatLit(1.5)},
	}, nil)

	assert.Contains(t, codes(r), diag.ErrFloatsDisabled)
}

func TestFloatAllowedWithOption(t *testing.T) {
	start := &ast.Subroutine{PosVal: pos(), Name: "start"}
	main := &ast.Block{PosVal: pos(), Name: "main", Stmts: []ast.Statement{start}}
	mod := &ast.Module{PosVal: pos(), Name: "test", Stmts: []ast.Statement{
		&ast.Directive{PosVal: pos(), Name: "option", Args: []string{"enable_floats"}},
		main,
		&ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.FLOAT, Name: "f", Value: floatLit(1.5)},
	}}
	ast.Relink(mod)
	table := scope.Build(mod)
	r := New(mod, table, value.NewHeap()).Run()

	assert.NotContains(t, codes(r), diag.ErrFloatsDisabled)
}

func TestRecursiveInitializerRejected(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.UBYTE, Name: "x",
			Value: &ast.BinaryExpr{Op: "+", Left: ident("x"), Right: intLit(value.UBYTE, 1)}},
	}, nil)

	assert.Contains(t, codes(r), diag.ErrRecursiveInitializer)
}

func TestUninitializedVarGetsDefaultInitializer(t *testing.T) {
	decl := &ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.UBYTE, Name: "x"}
	_ = buildModule([]ast.Statement{decl}, nil)

	require.NotNil(t, decl.Value)
	lit, ok := decl.Value.(*ast.LiteralExpr)
	require.True(t, ok)
	n, isInt := lit.Value.AsIntegerValue()
	require.True(t, isInt)
	assert.Equal(t, int64(0), n)
}

func TestArraySizeOutOfBounds(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.ARRAY_UB, Name: "a",
			ArraySize: intLit(value.UWORD, 9999)},
	}, nil)

	assert.Contains(t, codes(r), diag.ErrArraySizeOutOfBounds)
}

func TestAssignToConstRejected(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclConst, DataType: value.UBYTE, Name: "c", Value: intLit(value.UBYTE, 5)},
	}, []ast.Statement{
		&ast.Assignment{PosVal: pos(), Targets: []ast.AssignTarget{&ast.IdentifierTarget{PosVal: pos(), Name: "c"}}, Value: intLit(value.UBYTE, 1)},
	})

	assert.Contains(t, codes(r), diag.ErrAssignToConst)
}

func TestAssignmentTypeIncompatible(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.UBYTE, Name: "b", Value: intLit(value.UBYTE, 0)},
	}, []ast.Statement{
		&ast.Assignment{PosVal: pos(), Targets: []ast.AssignTarget{&ast.IdentifierTarget{PosVal: pos(), Name: "b"}}, Value: intLit(value.UWORD, 300)},
	})

	assert.Contains(t, codes(r), diag.ErrTypeIncompatible)
}

func TestBinaryOperandMustBeNumeric(t *testing.T) {
	strLit := &ast.LiteralExpr{Value: value.NewHeapLiteral(value.STR, 0, pos())}
	r := buildModule([]ast.Statement{
		&ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.UBYTE, Name: "b", Value: intLit(value.UBYTE, 0)},
	}, []ast.Statement{
		&ast.Assignment{PosVal: pos(),
			Targets: []ast.AssignTarget{&ast.IdentifierTarget{PosVal: pos(), Name: "b"}},
			Value:   &ast.BinaryExpr{Op: "-", Left: strLit, Right: intLit(value.UBYTE, 1)},
		},
	})

	assert.Contains(t, codes(r), diag.ErrOperandNotNumeric)
}

func TestCastedValueRejectedAsOperand(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.UBYTE, Name: "b", Value: intLit(value.UBYTE, 0)},
	}, []ast.Statement{
		&ast.Assignment{PosVal: pos(),
			Targets: []ast.AssignTarget{&ast.IdentifierTarget{PosVal: pos(), Name: "b"}},
			Value:   &ast.BinaryExpr{Op: "+", Left: intLit(value.UBYTE, 1), Right: &ast.TypecastExpr{Target: value.ARRAY_UB, Value: intLit(value.UBYTE, 1)}},
		},
	})

	assert.Contains(t, codes(r), diag.ErrTypecastIterable)
}

func TestDivisionByConstantZero(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.UBYTE, Name: "b", Value: intLit(value.UBYTE, 0)},
	}, []ast.Statement{
		&ast.Assignment{PosVal: pos(),
			Targets: []ast.AssignTarget{&ast.IdentifierTarget{PosVal: pos(), Name: "b"}},
			Value:   &ast.BinaryExpr{Op: "/", Left: intLit(value.UBYTE, 10), Right: intLit(value.UBYTE, 0)},
		},
	})

	assert.Contains(t, codes(r), diag.ErrDivisorNotConstant)
}

func TestModuloRequiresUnsigned(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.BYTE, Name: "b", Value: intLit(value.BYTE, 0)},
	}, []ast.Statement{
		&ast.Assignment{PosVal: pos(),
			Targets: []ast.AssignTarget{&ast.IdentifierTarget{PosVal: pos(), Name: "b"}},
			Value:   &ast.BinaryExpr{Op: "%", Left: ident("b"), Right: intLit(value.BYTE, 3)},
		},
	})

	assert.Contains(t, codes(r), diag.ErrModuloSignedOperand)
}

func TestPowRequiresFloatOperand(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.UWORD, Name: "w", Value: intLit(value.UWORD, 0)},
	}, []ast.Statement{
		&ast.Assignment{PosVal: pos(),
			Targets: []ast.AssignTarget{&ast.IdentifierTarget{PosVal: pos(), Name: "w"}},
			Value:   &ast.BinaryExpr{Op: "**", Left: intLit(value.UBYTE, 2), Right: intLit(value.UBYTE, 3)},
		},
	})

	assert.Contains(t, codes(r), diag.ErrPowRequiresFloat)
}

func TestCallArityMismatch(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.Subroutine{PosVal: pos(), Name: "needs_one", Params: []ast.Param{{Name: "a", Type: value.UBYTE}}},
	}, []ast.Statement{
		&ast.FunctionCallStatement{Call: &ast.FunctionCallExpr{PosVal: pos(), Target: "needs_one", Args: nil}},
	})

	assert.Contains(t, codes(r), diag.ErrCallArity)
}

func TestCallArgTypeMismatch(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.Subroutine{PosVal: pos(), Name: "takes_str", Params: []ast.Param{{Name: "s", Type: value.STR}}},
	}, []ast.Statement{
		&ast.FunctionCallStatement{Call: &ast.FunctionCallExpr{PosVal: pos(), Target: "takes_str", Args: []ast.Expr{intLit(value.UBYTE, 1)}}},
	})

	assert.Contains(t, codes(r), diag.ErrCallArgType)
}

func TestSwapRejectsIdenticalArguments(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.UBYTE, Name: "a", Value: intLit(value.UBYTE, 0)},
	}, []ast.Statement{
		&ast.FunctionCallStatement{Call: &ast.FunctionCallExpr{PosVal: pos(), Target: "swap", Args: []ast.Expr{ident("a"), ident("a")}}},
	})

	assert.Contains(t, codes(r), diag.ErrSwapArguments)
}

func TestIndexMustBeByte(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.ARRAY_UB, Name: "arr", ArraySize: intLit(value.UBYTE, 4)},
	}, []ast.Statement{
		&ast.FunctionCallStatement{Call: &ast.FunctionCallExpr{PosVal: pos(), Target: "sizeof", Args: []ast.Expr{
			&ast.ArrayIndexedExpr{PosVal: pos(), Identifier: "arr", Index: intLit(value.UWORD, 1000)},
		}}},
	})

	assert.Contains(t, codes(r), diag.ErrIndexNotByte)
}

func TestIndexOutOfBounds(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.ARRAY_UB, Name: "arr", ArraySize: intLit(value.UBYTE, 4)},
	}, []ast.Statement{
		&ast.FunctionCallStatement{Call: &ast.FunctionCallExpr{PosVal: pos(), Target: "sizeof", Args: []ast.Expr{
			&ast.ArrayIndexedExpr{PosVal: pos(), Identifier: "arr", Index: intLit(value.UBYTE, 10)},
		}}},
	})

	assert.Contains(t, codes(r), diag.ErrIndexOutOfBounds)
}

func TestTypecastToIterableRejected(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.UBYTE, Name: "b", Value: intLit(value.UBYTE, 0)},
	}, []ast.Statement{
		&ast.Assignment{PosVal: pos(),
			Targets: []ast.AssignTarget{&ast.IdentifierTarget{PosVal: pos(), Name: "b"}},
			Value:   &ast.TypecastExpr{Target: value.ARRAY_UB, Value: intLit(value.UBYTE, 1)},
		},
	})

	assert.Contains(t, codes(r), diag.ErrTypecastIterable)
}

func TestReturnArityMismatch(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.Subroutine{PosVal: pos(), Name: "two_vals", ReturnTypes: []value.DataType{value.UBYTE},
			Stmts: []ast.Statement{
				&ast.Return{PosVal: pos(), Values: []ast.Expr{intLit(value.UBYTE, 1), intLit(value.UBYTE, 2)}},
			}},
	}, nil)

	assert.Contains(t, codes(r), diag.ErrReturnArity)
}

func TestReturnTypeMismatch(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.Subroutine{PosVal: pos(), Name: "wrong_type", ReturnTypes: []value.DataType{value.STR},
			Stmts: []ast.Statement{
				&ast.Return{PosVal: pos(), Values: []ast.Expr{intLit(value.UBYTE, 1)}},
			}},
	}, nil)

	assert.Contains(t, codes(r), diag.ErrReturnType)
}

func TestReturnOutsideSubroutineRejected(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.Return{PosVal: pos(), Values: nil},
	}, nil)

	assert.Contains(t, codes(r), diag.ErrSubroutineScope)
}

func TestForLoopOverNonIterable(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.UBYTE, Name: "b", Value: intLit(value.UBYTE, 0)},
	}, []ast.Statement{
		&ast.ForLoop{PosVal: pos(), LoopVar: "i", Iterable: ident("b"), Body: []ast.Statement{
			&ast.NopStatement{PosVal: pos()},
		}},
	})

	assert.Contains(t, codes(r), diag.ErrForIterableType)
}

func TestForLoopRangeRequiresConstantEndpoints(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.UBYTE, Name: "b", Value: intLit(value.UBYTE, 0)},
	}, []ast.Statement{
		&ast.ForLoop{PosVal: pos(), LoopVar: "i",
			Iterable: &ast.RangeExpr{PosVal: pos(), From: ident("b"), To: intLit(value.UBYTE, 10)},
			Body:     []ast.Statement{&ast.NopStatement{PosVal: pos()}},
		},
	})

	assert.Contains(t, codes(r), diag.ErrRangeEndpoint)
}

func TestPostIncrDecrRequiresNumericTarget(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.STR, Name: "s"},
	}, []ast.Statement{
		&ast.PostIncrDecr{PosVal: pos(), Target: &ast.IdentifierTarget{PosVal: pos(), Name: "s"}, Incr: true},
	})

	assert.Contains(t, codes(r), diag.ErrPostIncrDecrTarget)
}

func TestAsmSubroutineRegisterReuseRejected(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.Subroutine{PosVal: pos(), Name: "mysub", IsAsmSubroutine: true,
			Params:                []ast.Param{{Name: "a", Type: value.UBYTE}},
			AsmParameterRegisters: []ast.RegisterSpec{{Name: "A"}},
			ReturnTypes:           []value.DataType{value.UBYTE},
			AsmReturnRegisters:    []ast.RegisterSpec{{Name: "A"}},
		},
	}, nil)

	assert.Contains(t, codes(r), diag.ErrAsmRegisterReuse)
}

func TestIrqEntrypointMustBeParameterless(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.Subroutine{PosVal: pos(), Name: "irq", Params: []ast.Param{{Name: "a", Type: value.UBYTE}}},
	}, nil)

	assert.Contains(t, codes(r), diag.ErrModuleStructure)
}

func TestDuplicateParameterNameRejected(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.Subroutine{PosVal: pos(), Name: "dup", Params: []ast.Param{
			{Name: "a", Type: value.UBYTE},
			{Name: "a", Type: value.UWORD},
		}},
	}, nil)

	assert.Contains(t, codes(r), diag.ErrDuplicateDeclaration)
}

func TestMultiAssignRequiresAsmCall(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.UBYTE, Name: "a", Value: intLit(value.UBYTE, 0)},
		&ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.UBYTE, Name: "b", Value: intLit(value.UBYTE, 0)},
	}, []ast.Statement{
		&ast.Assignment{PosVal: pos(),
			Targets: []ast.AssignTarget{
				&ast.IdentifierTarget{PosVal: pos(), Name: "a"},
				&ast.IdentifierTarget{PosVal: pos(), Name: "b"},
			},
			Value: intLit(value.UBYTE, 1),
		},
	})

	assert.Contains(t, codes(r), diag.ErrMultiAssignArity)
}

func TestUnusedVariableWarns(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.UBYTE, Name: "spare", Value: intLit(value.UBYTE, 0)},
	}, nil)

	assert.Contains(t, codes(r), diag.WarnUnusedVariable)
}

func TestUnusedVariableNotWarnedWhenReferenced(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.UBYTE, Name: "counter", Value: intLit(value.UBYTE, 0)},
	}, []ast.Statement{
		&ast.Assignment{PosVal: pos(),
			Targets: []ast.AssignTarget{&ast.IdentifierTarget{PosVal: pos(), Name: "counter"}},
			Value:   ident("counter"),
		},
	})

	assert.NotContains(t, codes(r), diag.WarnUnusedVariable)
}

func TestUnusedSubroutineWarns(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.Subroutine{PosVal: pos(), Name: "helper", Stmts: []ast.Statement{&ast.Return{PosVal: pos()}}},
	}, nil)

	assert.Contains(t, codes(r), diag.WarnUnusedSubroutine)
}

func TestAsmSubroutineExemptFromUnusedWarning(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.Subroutine{PosVal: pos(), Name: "irq_handler", IsAsmSubroutine: true,
			AsmAddress: func() *int { a := 0xea31; return &a }()},
	}, nil)

	assert.NotContains(t, codes(r), diag.WarnUnusedSubroutine)
}

func TestInlineAssemblyReferenceExemptsVariableFromUnused(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.UBYTE, Name: "counter", Value: intLit(value.UBYTE, 0)},
	}, []ast.Statement{
		&ast.InlineAssembly{PosVal: pos(), RawText: "lda counter\n\tsta counter\n"},
	})

	assert.NotContains(t, codes(r), diag.WarnUnusedVariable)
}

func TestUndefinedNameSuggestsClosestVisibleName(t *testing.T) {
	r := buildModule([]ast.Statement{
		&ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.UBYTE, Name: "counter", Value: intLit(value.UBYTE, 0)},
		&ast.VarDecl{PosVal: pos(), DeclKind: ast.DeclVar, DataType: value.UBYTE, Name: "other", Value: ident("countr")},
	}, nil)

	var found *diag.Diagnostic
	for i, d := range r.Diagnostics() {
		if d.Code == diag.ErrUndefinedName {
			found = &r.Diagnostics()[i]
		}
	}
	require.NotNil(t, found)
	assert.Contains(t, found.Help, "counter")
}
