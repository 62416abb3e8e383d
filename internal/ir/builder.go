package ir

import (
	"fmt"

	"prog8core/internal/ast"
	"prog8core/internal/builtin"
	"prog8core/internal/scope"
	"prog8core/internal/value"
)

// BuildError marks a fatal internal inconsistency detected while lowering
// (§5: "a fatal internal inconsistency ... terminates compilation with a
// descriptive error and a nonzero exit"). By the time the builder runs, the
// checker has already rejected anything a well-formed program couldn't
// contain, so a BuildError here means an optimizer or resolver invariant was
// violated, not a user-facing mistake.
type BuildError struct {
	Pos     value.Position
	Message string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%s: internal error: %s", e.Pos, e.Message)
}

// Builder lowers a checked, stabilized *ast.Module into a *Program. Grounded
// on kanso's internal/ir.BuildProgram/Builder entry point, generalized from
// an SSA contract IR to this spec's flat stack-machine instruction list; the
// builder's per-statement-kind dispatch follows the same type-switch idiom
// kanso's own lowering uses rather than a Visitor interface, consistent with
// the rest of this core (ast.Relink/StructurallyEqual*, the optimizer, and
// the checker all dispatch the same way).
type Builder struct {
	Table *scope.Table
	Heap  *value.Heap

	labelSeq int
	warnings []string
}

// NewBuilder constructs a Builder. table and heap must come from the same
// module that will be passed to Build.
func NewBuilder(table *scope.Table, heap *value.Heap) *Builder {
	return &Builder{Table: table, Heap: heap}
}

// Warnings returns any non-fatal notices accumulated during Build. Build
// currently records none; AllocateZeropage, which is run separately, reports
// its warnings to a diag.Reporter instead.
func (b *Builder) Warnings() []string { return b.warnings }

// Build lowers every top-level block of mod into IR.
func (b *Builder) Build(mod *ast.Module) (*Program, error) {
	prog := &Program{Heap: b.Heap}
	for _, st := range mod.Stmts {
		blk, ok := st.(*ast.Block)
		if !ok {
			continue // directives at module scope carry no IR of their own
		}
		pb, err := b.buildBlock(blk)
		if err != nil {
			return nil, err
		}
		prog.Blocks = append(prog.Blocks, pb)
	}
	return prog, nil
}

func (b *Builder) buildBlock(blk *ast.Block) (*ProgramBlock, error) {
	pb := NewProgramBlock(blk.Name)
	pb.Address = blk.Address
	pb.ForceOutput = blk.ForceOutput

	sc := b.Table.ScopeOf(blk)
	bodyScope := sc
	if len(blk.Stmts) > 0 {
		if inner := b.Table.ScopeOf(blk.Stmts[0]); inner != nil {
			bodyScope = inner
		}
	}

	for _, st := range blk.Stmts {
		if err := b.lowerTopLevelStmt(pb, bodyScope, st); err != nil {
			return nil, err
		}
	}
	return pb, nil
}

// lowerTopLevelStmt handles the statement kinds that can only occur directly
// inside a block (subroutine declarations, %directives) before delegating
// everything else to lowerStmt.
func (b *Builder) lowerTopLevelStmt(pb *ProgramBlock, sc *scope.Scope, st ast.Statement) error {
	switch n := st.(type) {
	case *ast.Directive:
		return nil // no IR of its own; consumed by the checker/config layer
	case *ast.Subroutine:
		return b.lowerSubroutine(pb, sc, n)
	default:
		return b.lowerStmt(pb, sc, st)
	}
}

func (b *Builder) lowerSubroutine(pb *ProgramBlock, outerScope *scope.Scope, sub *ast.Subroutine) error {
	pb.emitLabel(sub.Name)

	if sub.IsAsmSubroutine {
		// A fixed-address asm subroutine has no body of its own to lower;
		// callers CALL the label, which the external emitter binds to
		// sub.AsmAddress.
		return nil
	}

	bodyScope := outerScope
	if len(sub.Stmts) > 0 {
		if inner := b.Table.ScopeOf(sub.Stmts[0]); inner != nil {
			bodyScope = inner
		}
	} else if s := b.Table.ScopeOf(sub); s != nil {
		bodyScope = s
	}

	for _, st := range sub.Stmts {
		if err := b.lowerStmt(pb, bodyScope, st); err != nil {
			return err
		}
	}
	if !endsInReturnOrJump(sub.Stmts) {
		pb.emit(&Instruction{Opcode: OpReturn})
	}
	return nil
}

func endsInReturnOrJump(stmts []ast.Statement) bool {
	if len(stmts) == 0 {
		return false
	}
	switch stmts[len(stmts)-1].(type) {
	case *ast.Return, *ast.Jump:
		return true
	default:
		return false
	}
}

func (b *Builder) newLabel(prefix string) string {
	b.labelSeq++
	return fmt.Sprintf("%s_%d", prefix, b.labelSeq)
}

// lowerStmt lowers one statement (block body, subroutine body, loop body, or
// branch body — scope is whichever inner scope currently applies).
func (b *Builder) lowerStmt(pb *ProgramBlock, sc *scope.Scope, st ast.Statement) error {
	pb.emit(&Instruction{Opcode: OpLine, Arg: &Operand{Int: int64(st.Pos().Line)}})
	switch n := st.(type) {
	case *ast.VarDecl:
		return b.lowerVarDecl(pb, sc, n)
	case *ast.Assignment:
		return b.lowerAssignment(pb, sc, n)
	case *ast.PostIncrDecr:
		return b.lowerPostIncrDecr(pb, sc, n)
	case *ast.IfStatement:
		return b.lowerIf(pb, sc, n)
	case *ast.WhileLoop:
		return b.lowerWhile(pb, sc, n)
	case *ast.RepeatLoop:
		return b.lowerRepeat(pb, sc, n)
	case *ast.ForLoop:
		return b.lowerFor(pb, sc, n)
	case *ast.Jump:
		pb.emit(&Instruction{Opcode: OpJump, CallLabel: n.Target})
		return nil
	case *ast.Return:
		for _, v := range n.Values {
			if err := b.lowerExpr(pb, sc, v); err != nil {
				return err
			}
		}
		pb.emit(&Instruction{Opcode: OpReturn})
		return nil
	case *ast.Label:
		pb.emitLabel(n.Name)
		return nil
	case *ast.FunctionCallStatement:
		return b.lowerCallStatement(pb, sc, n.Call)
	case *ast.InlineAssembly:
		pb.emit(&Instruction{Opcode: OpNop, Arg: &Operand{Raw: n.RawText}})
		return nil
	case *ast.AnonymousScope:
		inner := sc
		if len(n.Stmts) > 0 {
			if s := b.Table.ScopeOf(n.Stmts[0]); s != nil {
				inner = s
			}
		}
		for _, s := range n.Stmts {
			if err := b.lowerStmt(pb, inner, s); err != nil {
				return err
			}
		}
		return nil
	case *ast.NopStatement:
		pb.emit(&Instruction{Opcode: OpNop})
		return nil
	case *ast.Directive:
		return nil
	case *ast.BuiltinFunctionStatementPlaceholder:
		return &BuildError{Pos: n.Pos(), Message: fmt.Sprintf(
			"unexpanded builtin-function placeholder %q reached IR emission", n.Name)}
	default:
		return &BuildError{Pos: st.Pos(), Message: fmt.Sprintf("unhandled statement kind %T", st)}
	}
}

func (b *Builder) lowerVarDecl(pb *ProgramBlock, sc *scope.Scope, n *ast.VarDecl) error {
	switch n.DeclKind {
	case ast.DeclConst:
		// Constants occupy no runtime storage; every use was inlined by the
		// expression optimizer (component E) before this pass runs.
		return nil
	case ast.DeclMemory:
		addr, ok := constIntValue(n.Value)
		if !ok {
			return &BuildError{Pos: n.Pos(), Message: fmt.Sprintf(
				"memory declaration %q has a non-constant address at IR emission", n.Name)}
		}
		pb.MemoryPointers[n.Name] = &MemoryPointer{Name: n.Name, Address: int(addr), Type: n.DataType}
		return nil
	default: // DeclVar
		v := &Variable{Name: n.Name, Type: n.DataType, ZeroPage: n.ZeroPage}
		if n.ArraySize != nil {
			if size, ok := constIntValue(n.ArraySize); ok {
				v.ArraySize = int(size)
			}
		}
		if lit, ok := n.Value.(*ast.LiteralExpr); ok {
			l := lit.Value
			v.Init = &l
			pb.Variables[n.Name] = v
			return nil
		}
		pb.Variables[n.Name] = v
		if n.Value == nil {
			return nil // checker already injected a default; nothing to run
		}
		if err := b.lowerExpr(pb, sc, n.Value); err != nil {
			return err
		}
		pb.emit(&Instruction{Opcode: OpPopVar, Arg: &Operand{Name: n.Name, Type: n.DataType}})
		return nil
	}
}

// constIntValue extracts an integer constant from an already-folded literal
// expression; ok is false for anything else (the checker/optimizer guarantee
// these positions are constant before IR emission is ever reached).
func constIntValue(e ast.Expr) (int64, bool) {
	lit, ok := e.(*ast.LiteralExpr)
	if !ok {
		return 0, false
	}
	return lit.Value.AsIntegerValue()
}

func (b *Builder) lowerAssignment(pb *ProgramBlock, sc *scope.Scope, n *ast.Assignment) error {
	if err := b.lowerExpr(pb, sc, n.Value); err != nil {
		return err
	}
	// A multi-target assignment unpacks the return values of an
	// asm-subroutine call: the checker (ErrMultiAssignArity) guarantees
	// len(Targets) matches the call's declared return count and that the
	// values were pushed in declaration order, so targets pop in reverse.
	for i := len(n.Targets) - 1; i >= 0; i-- {
		if err := b.lowerStore(pb, sc, n.Targets[i]); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) lowerStore(pb *ProgramBlock, sc *scope.Scope, target ast.AssignTarget) error {
	switch t := target.(type) {
	case *ast.RegisterTarget:
		pb.emit(&Instruction{Opcode: OpPopReg, Arg: &Operand{Name: t.Register}})
		return nil
	case *ast.IdentifierTarget:
		pb.emit(&Instruction{Opcode: OpPopVar, Arg: &Operand{Name: t.Name, Type: b.resultType(sc, &ast.IdentifierExpr{PosVal: t.PosVal, Name: t.Name})}})
		return nil
	case *ast.IndexedTarget:
		pb.emit(&Instruction{Opcode: OpPushAddr, Arg: &Operand{Name: t.Name}})
		if err := b.lowerExpr(pb, sc, t.Index); err != nil {
			return err
		}
		pb.emit(&Instruction{Opcode: OpAdd})
		elemType := b.symbolType(sc, t.Name).ElementType()
		pb.emit(&Instruction{Opcode: OpPopMem, Arg: &Operand{Type: elemType}})
		return nil
	case *ast.MemoryTarget:
		if err := b.lowerExpr(pb, sc, t.Address); err != nil {
			return err
		}
		pb.emit(&Instruction{Opcode: OpPopMem, Arg: &Operand{Type: value.UBYTE}})
		return nil
	default:
		return &BuildError{Pos: target.Pos(), Message: fmt.Sprintf("unhandled assign target %T", target)}
	}
}

func (b *Builder) lowerPostIncrDecr(pb *ProgramBlock, sc *scope.Scope, n *ast.PostIncrDecr) error {
	op := OpAdd
	if !n.Incr {
		op = OpSub
	}
	if id, ok := n.Target.(*ast.IdentifierTarget); ok {
		t := b.symbolType(sc, id.Name)
		pb.emit(&Instruction{Opcode: OpPeekVar, Arg: &Operand{Name: id.Name, Type: t}})
		pb.emit(pushOneLiteral(t))
		pb.emit(&Instruction{Opcode: op})
		pb.emit(&Instruction{Opcode: OpPopVar, Arg: &Operand{Name: id.Name, Type: t}})
		return nil
	}
	// Array/memory targets have no peek shortcut: read, modify, store back.
	readExpr, err := targetAsReadExpr(n.Target)
	if err != nil {
		return err
	}
	if err := b.lowerExpr(pb, sc, readExpr); err != nil {
		return err
	}
	t := b.resultType(sc, readExpr)
	pb.emit(pushOneLiteral(t))
	pb.emit(&Instruction{Opcode: op})
	return b.lowerStore(pb, sc, n.Target)
}

func targetAsReadExpr(t ast.AssignTarget) (ast.Expr, error) {
	switch x := t.(type) {
	case *ast.IndexedTarget:
		return &ast.ArrayIndexedExpr{PosVal: x.PosVal, Identifier: x.Name, Index: x.Index}, nil
	case *ast.MemoryTarget:
		return &ast.DirectMemoryReadExpr{Address: x.Address}, nil
	case *ast.RegisterTarget:
		return &ast.RegisterExpr{PosVal: x.PosVal, Register: x.Register}, nil
	default:
		return nil, &BuildError{Pos: t.Pos(), Message: fmt.Sprintf("unhandled ++/-- target %T", t)}
	}
}

func pushOneLiteral(t value.DataType) *Instruction {
	if t.IsWord() {
		return &Instruction{Opcode: OpPushWord, Arg: &Operand{Int: 1, Type: t}}
	}
	return &Instruction{Opcode: OpPushByte, Arg: &Operand{Int: 1, Type: t}}
}

func (b *Builder) lowerIf(pb *ProgramBlock, sc *scope.Scope, n *ast.IfStatement) error {
	elseLabel := b.newLabel("if_else")
	endLabel := b.newLabel("if_end")

	if err := b.lowerExpr(pb, sc, n.Condition); err != nil {
		return err
	}
	jz := OpJz
	if b.resultType(sc, n.Condition).IsWord() {
		jz = OpJzw
	}
	target := elseLabel
	if len(n.FalseBranch) == 0 {
		target = endLabel
	}
	pb.emit(&Instruction{Opcode: jz, CallLabel: target})

	trueScope := sc
	if len(n.TrueBranch) > 0 {
		if s := b.Table.ScopeOf(n.TrueBranch[0]); s != nil {
			trueScope = s
		}
	}
	for _, st := range n.TrueBranch {
		if err := b.lowerStmt(pb, trueScope, st); err != nil {
			return err
		}
	}

	if len(n.FalseBranch) > 0 {
		pb.emit(&Instruction{Opcode: OpJump, CallLabel: endLabel})
		pb.emitLabel(elseLabel)
		falseScope := sc
		if s := b.Table.ScopeOf(n.FalseBranch[0]); s != nil {
			falseScope = s
		}
		for _, st := range n.FalseBranch {
			if err := b.lowerStmt(pb, falseScope, st); err != nil {
				return err
			}
		}
	}
	pb.emitLabel(endLabel)
	return nil
}

func (b *Builder) lowerWhile(pb *ProgramBlock, sc *scope.Scope, n *ast.WhileLoop) error {
	startLabel := b.newLabel("while_start")
	endLabel := b.newLabel("while_end")

	pb.emitLabel(startLabel)
	if err := b.lowerExpr(pb, sc, n.Condition); err != nil {
		return err
	}
	jz := OpJz
	if b.resultType(sc, n.Condition).IsWord() {
		jz = OpJzw
	}
	pb.emit(&Instruction{Opcode: jz, CallLabel: endLabel})

	bodyScope := sc
	if len(n.Body) > 0 {
		if s := b.Table.ScopeOf(n.Body[0]); s != nil {
			bodyScope = s
		}
	}
	for _, st := range n.Body {
		if err := b.lowerStmt(pb, bodyScope, st); err != nil {
			return err
		}
	}
	pb.emit(&Instruction{Opcode: OpJump, CallLabel: startLabel})
	pb.emitLabel(endLabel)
	return nil
}

func (b *Builder) lowerRepeat(pb *ProgramBlock, sc *scope.Scope, n *ast.RepeatLoop) error {
	startLabel := b.newLabel("repeat_start")

	pb.emitLabel(startLabel)
	bodyScope := sc
	if len(n.Body) > 0 {
		if s := b.Table.ScopeOf(n.Body[0]); s != nil {
			bodyScope = s
		}
	}
	for _, st := range n.Body {
		if err := b.lowerStmt(pb, bodyScope, st); err != nil {
			return err
		}
	}
	if n.Condition == nil {
		pb.emit(&Instruction{Opcode: OpJump, CallLabel: startLabel})
		return nil
	}
	if err := b.lowerExpr(pb, sc, n.Condition); err != nil {
		return err
	}
	jz := OpJz
	if b.resultType(sc, n.Condition).IsWord() {
		jz = OpJzw
	}
	pb.emit(&Instruction{Opcode: jz, CallLabel: startLabel}) // loop again while condition is false
	return nil
}

// lowerFor lowers a `for var in iterable { body }` loop. A RangeExpr
// iterates a counted numeric range directly; any other iterable (an
// array/string-typed variable) iterates by index over its declared length.
func (b *Builder) lowerFor(pb *ProgramBlock, sc *scope.Scope, n *ast.ForLoop) error {
	startLabel := b.newLabel("for_start")
	endLabel := b.newLabel("for_end")
	loopVarType := b.symbolType(sc, n.LoopVar)

	rng, isRange := n.Iterable.(*ast.RangeExpr)
	if isRange {
		if err := b.lowerExpr(pb, sc, rng.From); err != nil {
			return err
		}
		pb.emit(&Instruction{Opcode: OpPopVar, Arg: &Operand{Name: n.LoopVar, Type: loopVarType}})

		pb.emitLabel(startLabel)
		pb.emit(&Instruction{Opcode: OpPushVar, Arg: &Operand{Name: n.LoopVar, Type: loopVarType}})
		if err := b.lowerExpr(pb, sc, rng.To); err != nil {
			return err
		}
		pb.emit(&Instruction{Opcode: OpCmpGt})
		// CMP_GT pushes a UBYTE truth value: leave once loopVar > To,
		// otherwise (loopVar <= To) fall through and keep going.
		pb.emit(&Instruction{Opcode: OpJnz, CallLabel: endLabel})

		bodyScope := sc
		if len(n.Body) > 0 {
			if s := b.Table.ScopeOf(n.Body[0]); s != nil {
				bodyScope = s
			}
		}
		for _, st := range n.Body {
			if err := b.lowerStmt(pb, bodyScope, st); err != nil {
				return err
			}
		}

		step := &ast.LiteralExpr{Value: value.NewInteger(loopVarType, 1, n.Pos())}
		var stepExpr ast.Expr = step
		if rng.Step != nil {
			stepExpr = rng.Step
		}
		pb.emit(&Instruction{Opcode: OpPeekVar, Arg: &Operand{Name: n.LoopVar, Type: loopVarType}})
		if err := b.lowerExpr(pb, sc, stepExpr); err != nil {
			return err
		}
		pb.emit(&Instruction{Opcode: OpAdd})
		pb.emit(&Instruction{Opcode: OpPopVar, Arg: &Operand{Name: n.LoopVar, Type: loopVarType}})
		pb.emit(&Instruction{Opcode: OpJump, CallLabel: startLabel})
		pb.emitLabel(endLabel)
		return nil
	}

	// Non-range iterable: index 0..len-1, reading each element into the loop
	// variable via an indexed read.
	idxVar := b.newLabel("for_idx")
	pb.Variables[idxVar] = &Variable{Name: idxVar, Type: value.UBYTE}
	pb.emit(&Instruction{Opcode: OpPushByte, Arg: &Operand{Int: 0, Type: value.UBYTE}})
	pb.emit(&Instruction{Opcode: OpPopVar, Arg: &Operand{Name: idxVar, Type: value.UBYTE}})

	iterType := b.resultType(sc, n.Iterable)
	length := iterLength(n.Iterable, b, sc)

	pb.emitLabel(startLabel)
	pb.emit(&Instruction{Opcode: OpPushVar, Arg: &Operand{Name: idxVar, Type: value.UBYTE}})
	pb.emit(&Instruction{Opcode: OpPushByte, Arg: &Operand{Int: int64(length), Type: value.UBYTE}})
	pb.emit(&Instruction{Opcode: OpCmpGe})
	pb.emit(&Instruction{Opcode: OpJnz, CallLabel: endLabel})

	id, ok := n.Iterable.(*ast.IdentifierExpr)
	if !ok {
		return &BuildError{Pos: n.Pos(), Message: "for-loop iterable is neither a range nor a named array/string"}
	}
	pb.emit(&Instruction{Opcode: OpPushAddr, Arg: &Operand{Name: id.Name}})
	pb.emit(&Instruction{Opcode: OpPushVar, Arg: &Operand{Name: idxVar, Type: value.UBYTE}})
	pb.emit(&Instruction{Opcode: OpAdd})
	elemType := iterType.ElementType()
	if iterType.IsString() {
		elemType = value.UBYTE
	}
	pb.emit(&Instruction{Opcode: OpPushMem, Arg: &Operand{Type: elemType}})
	pb.emit(&Instruction{Opcode: OpPopVar, Arg: &Operand{Name: n.LoopVar, Type: elemType}})

	bodyScope := sc
	if len(n.Body) > 0 {
		if s := b.Table.ScopeOf(n.Body[0]); s != nil {
			bodyScope = s
		}
	}
	for _, st := range n.Body {
		if err := b.lowerStmt(pb, bodyScope, st); err != nil {
			return err
		}
	}

	pb.emit(&Instruction{Opcode: OpPeekVar, Arg: &Operand{Name: idxVar, Type: value.UBYTE}})
	pb.emit(&Instruction{Opcode: OpPushByte, Arg: &Operand{Int: 1, Type: value.UBYTE}})
	pb.emit(&Instruction{Opcode: OpAdd})
	pb.emit(&Instruction{Opcode: OpPopVar, Arg: &Operand{Name: idxVar, Type: value.UBYTE}})
	pb.emit(&Instruction{Opcode: OpJump, CallLabel: startLabel})
	pb.emitLabel(endLabel)
	return nil
}

// iterLength best-effort resolves a named iterable's element count from its
// declaration; 0 if it cannot be determined, in which case the lowered loop
// runs no iterations.
func iterLength(e ast.Expr, b *Builder, sc *scope.Scope) int {
	id, ok := e.(*ast.IdentifierExpr)
	if !ok {
		return 0
	}
	sym := sc.Lookup(id.Name)
	if sym == nil {
		return 0
	}
	if v, ok := sym.Node.(*ast.VarDecl); ok {
		if v.DataType.IsString() {
			if lit, ok := v.Value.(*ast.LiteralExpr); ok {
				if id, isHeap := lit.Value.HeapID(); isHeap && b.Heap != nil {
					if s, ok := b.Heap.String(id); ok {
						return len(s.Value)
					}
				}
			}
		}
		if v.ArraySize != nil {
			if n, ok := constIntValue(v.ArraySize); ok {
				return int(n)
			}
		}
	}
	return 0
}

func (b *Builder) lowerCallStatement(pb *ProgramBlock, sc *scope.Scope, call *ast.FunctionCallExpr) error {
	returnTypes, err := b.lowerCall(pb, sc, call)
	if err != nil {
		return err
	}
	for i := len(returnTypes) - 1; i >= 0; i-- {
		pb.emit(&Instruction{Opcode: OpDiscard, Arg: &Operand{Type: returnTypes[i]}})
	}
	return nil
}

// lowerCall emits the argument pushes and the CALL instruction, returning
// the callee's declared return types (in push order) so the caller can
// either discard them (statement context) or leave exactly one on the stack
// (expression context — the checker guarantees arity 1 there).
func (b *Builder) lowerCall(pb *ProgramBlock, sc *scope.Scope, call *ast.FunctionCallExpr) ([]value.DataType, error) {
	for _, a := range call.Args {
		if err := b.lowerExpr(pb, sc, a); err != nil {
			return nil, err
		}
	}
	pb.emit(&Instruction{Opcode: OpCall, CallLabel: call.Target})

	if f, ok := builtin.Lookup(call.Target); ok {
		return builtinReturnTypes(f, call), nil
	}
	sym := sc.Lookup(call.Target)
	if sym == nil {
		return nil, &BuildError{Pos: call.Pos(), Message: fmt.Sprintf("call to unresolved target %q reached IR emission", call.Target)}
	}
	sub, ok := sym.Node.(*ast.Subroutine)
	if !ok {
		return nil, &BuildError{Pos: call.Pos(), Message: fmt.Sprintf("call target %q does not resolve to a subroutine", call.Target)}
	}
	return sub.ReturnTypes, nil
}

// builtinReturnTypes gives the result type(s) a built-in call leaves on the
// stack: "poke" leaves nothing, everything else leaves exactly one value of
// the same best-effort type the checker's callResultType would report.
func builtinReturnTypes(f builtin.Func, call *ast.FunctionCallExpr) []value.DataType {
	if f.Name == "poke" {
		return nil
	}
	t := value.UBYTE
	switch f.Name {
	case "mkword", "sqrt16":
		t = value.UWORD
	}
	return []value.DataType{t}
}

func (b *Builder) symbolType(sc *scope.Scope, name string) value.DataType {
	sym := sc.Lookup(name)
	if sym == nil {
		return value.UNDEFINED_TYPE
	}
	switch sym.Kind {
	case scope.SymVarDecl:
		if v, ok := sym.Node.(*ast.VarDecl); ok {
			return v.DataType
		}
		if f, ok := sym.Node.(*ast.ForLoop); ok {
			return b.resultType(sc, f.Iterable).ElementType()
		}
	case scope.SymParam:
		if sub, ok := sym.Node.(*ast.Subroutine); ok {
			for _, p := range sub.Params {
				if p.Name == name {
					return p.Type
				}
			}
		}
	}
	return value.UNDEFINED_TYPE
}

// resultType is a minimal, IR-local re-implementation of the checker's
// typeOf (internal/check/types.go); duplicated rather than imported because
// by the time the builder runs, every expression is already known-good and
// this pass only needs the result type to pick a byte/word-width opcode
// family, not to validate anything.
func (b *Builder) resultType(sc *scope.Scope, e ast.Expr) value.DataType {
	switch n := e.(type) {
	case *ast.LiteralExpr:
		return n.Value.Type
	case *ast.IdentifierExpr:
		return b.symbolType(sc, n.Name)
	case *ast.RegisterExpr:
		return value.UBYTE
	case *ast.AddressOfExpr:
		return value.UWORD
	case *ast.DirectMemoryReadExpr:
		return value.UBYTE
	case *ast.ArrayIndexedExpr:
		arr := b.symbolType(sc, n.Identifier)
		if arr.IsArray() {
			return arr.ElementType()
		}
		if arr.IsString() {
			return value.UBYTE
		}
		return value.UNDEFINED_TYPE
	case *ast.TypecastExpr:
		return n.Target
	case *ast.PrefixExpr:
		if n.Op == "not" {
			return value.UBYTE
		}
		return b.resultType(sc, n.Inner)
	case *ast.BinaryExpr:
		l, r := b.resultType(sc, n.Left), b.resultType(sc, n.Right)
		switch n.Op {
		case "==", "!=", "<", "<=", ">", ">=", "and", "or", "xor":
			return value.UBYTE
		case "&", "|", "^", "<<", ">>":
			if l.IsWord() || r.IsWord() {
				return value.UWORD
			}
			return value.UBYTE
		}
		if l == value.FLOAT || r == value.FLOAT {
			return value.FLOAT
		}
		if l.IsWord() || r.IsWord() {
			return value.UWORD
		}
		return l
	case *ast.RangeExpr:
		return b.resultType(sc, n.From)
	case *ast.FunctionCallExpr:
		if f, ok := builtin.Lookup(n.Target); ok {
			types := builtinReturnTypes(f, n)
			if len(types) == 1 {
				return types[0]
			}
			return value.UNDEFINED_TYPE
		}
		sym := sc.Lookup(n.Target)
		if sym == nil {
			return value.UNDEFINED_TYPE
		}
		if sub, ok := sym.Node.(*ast.Subroutine); ok && len(sub.ReturnTypes) == 1 {
			return sub.ReturnTypes[0]
		}
		return value.UNDEFINED_TYPE
	}
	return value.UNDEFINED_TYPE
}
