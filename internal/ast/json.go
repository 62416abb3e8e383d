package ast

import (
	"encoding/json"
	"fmt"

	"prog8core/internal/value"
)

// wireNode is the JSON envelope every polymorphic Node (Expr, Statement,
// AssignTarget) travels in across the process boundary: the external AST
// producer (§1: the lexer/parser is out of scope for this core) emits one of
// these per node, tagged by NodeKind, with the concrete type's own fields
// inlined as Data. EncodeModule/DecodeModule are the two ends of that
// handoff.
type wireNode struct {
	Kind NodeKind        `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// EncodeModule serializes mod and its heap to one JSON document — the
// interchange format the external AST producer and this core's driver agree
// on, since a literal's HeapID is only meaningful alongside the heap it
// indexes into.
func EncodeModule(mod *Module, heap *value.Heap) ([]byte, error) {
	stmts, err := encodeStmts(mod.Stmts)
	if err != nil {
		return nil, err
	}
	dto := moduleDTO{
		Pos:   mod.PosVal,
		Name:  mod.Name,
		Stmts: stmts,
		Heap:  value.EncodeHeap(heap),
	}
	return json.MarshalIndent(dto, "", "  ")
}

// DecodeModule rebuilds a Module and its heap from the JSON form
// EncodeModule produces.
func DecodeModule(data []byte) (*Module, *value.Heap, error) {
	var dto moduleDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, nil, err
	}
	heap, err := value.DecodeHeap(dto.Heap)
	if err != nil {
		return nil, nil, err
	}
	stmts, err := decodeStmts(dto.Stmts)
	if err != nil {
		return nil, nil, err
	}
	return &Module{PosVal: dto.Pos, Name: dto.Name, Stmts: stmts}, heap, nil
}

type moduleDTO struct {
	Pos   value.Position        `json:"pos"`
	Name  string                `json:"name"`
	Stmts []wireNode            `json:"stmts"`
	Heap  []value.HeapEntryWire `json:"heap,omitempty"`
}

func wrap(kind NodeKind, payload interface{}) (wireNode, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return wireNode{}, err
	}
	return wireNode{Kind: kind, Data: data}, nil
}

func encodeStmts(stmts []Statement) ([]wireNode, error) {
	out := make([]wireNode, 0, len(stmts))
	for _, s := range stmts {
		w, err := encodeStmt(s)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func decodeStmts(wire []wireNode) ([]Statement, error) {
	out := make([]Statement, 0, len(wire))
	for _, w := range wire {
		s, err := decodeStmt(w)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func encodeExprs(exprs []Expr) ([]wireNode, error) {
	out := make([]wireNode, 0, len(exprs))
	for _, e := range exprs {
		w, err := encodeExpr(e)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func decodeExprs(wire []wireNode) ([]Expr, error) {
	out := make([]Expr, 0, len(wire))
	for _, w := range wire {
		e, err := decodeExpr(w)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// encodeExprPtr/decodeExprPtr handle the optional-expression fields (e.g.
// VarDecl.Value, RangeExpr.Step) that are nil unless present in source.
func encodeExprPtr(e Expr) (*wireNode, error) {
	if e == nil {
		return nil, nil
	}
	w, err := encodeExpr(e)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func decodeExprPtr(w *wireNode) (Expr, error) {
	if w == nil {
		return nil, nil
	}
	return decodeExpr(*w)
}

// --- Expr ---

func encodeExpr(e Expr) (wireNode, error) {
	switch x := e.(type) {
	case *LiteralExpr:
		return wrap(KLiteralExpr, struct {
			Value value.Literal `json:"value"`
		}{x.Value})
	case *IdentifierExpr:
		return wrap(KIdentifierExpr, struct {
			Pos  value.Position `json:"pos"`
			Name string         `json:"name"`
		}{x.PosVal, x.Name})
	case *PrefixExpr:
		inner, err := encodeExpr(x.Inner)
		if err != nil {
			return wireNode{}, err
		}
		return wrap(KPrefixExpr, struct {
			Pos   value.Position `json:"pos"`
			Op    string         `json:"op"`
			Inner wireNode       `json:"inner"`
		}{x.PosVal, x.Op, inner})
	case *BinaryExpr:
		left, err := encodeExpr(x.Left)
		if err != nil {
			return wireNode{}, err
		}
		right, err := encodeExpr(x.Right)
		if err != nil {
			return wireNode{}, err
		}
		return wrap(KBinaryExpr, struct {
			Op    string   `json:"op"`
			Left  wireNode `json:"left"`
			Right wireNode `json:"right"`
		}{x.Op, left, right})
	case *FunctionCallExpr:
		args, err := encodeExprs(x.Args)
		if err != nil {
			return wireNode{}, err
		}
		return wrap(KFunctionCallExpr, struct {
			Pos    value.Position `json:"pos"`
			Target string         `json:"target"`
			Args   []wireNode     `json:"args"`
		}{x.PosVal, x.Target, args})
	case *ArrayIndexedExpr:
		index, err := encodeExpr(x.Index)
		if err != nil {
			return wireNode{}, err
		}
		return wrap(KArrayIndexedExpr, struct {
			Pos        value.Position `json:"pos"`
			Identifier string         `json:"identifier"`
			Index      wireNode       `json:"index"`
		}{x.PosVal, x.Identifier, index})
	case *AddressOfExpr:
		return wrap(KAddressOfExpr, struct {
			Pos        value.Position `json:"pos"`
			Identifier string         `json:"identifier"`
			ScopedName string         `json:"scoped_name"`
		}{x.PosVal, x.Identifier, x.ScopedName})
	case *TypecastExpr:
		inner, err := encodeExpr(x.Value)
		if err != nil {
			return wireNode{}, err
		}
		return wrap(KTypecastExpr, struct {
			Target value.DataType `json:"target"`
			Value  wireNode       `json:"value"`
		}{x.Target, inner})
	case *RangeExpr:
		from, err := encodeExpr(x.From)
		if err != nil {
			return wireNode{}, err
		}
		to, err := encodeExpr(x.To)
		if err != nil {
			return wireNode{}, err
		}
		step, err := encodeExprPtr(x.Step)
		if err != nil {
			return wireNode{}, err
		}
		return wrap(KRangeExpr, struct {
			Pos  value.Position `json:"pos"`
			From wireNode       `json:"from"`
			To   wireNode       `json:"to"`
			Step *wireNode      `json:"step,omitempty"`
		}{x.PosVal, from, to, step})
	case *RegisterExpr:
		return wrap(KRegisterExpr, struct {
			Pos      value.Position `json:"pos"`
			Register string         `json:"register"`
		}{x.PosVal, x.Register})
	case *DirectMemoryReadExpr:
		addr, err := encodeExpr(x.Address)
		if err != nil {
			return wireNode{}, err
		}
		return wrap(KDirectMemoryReadExpr, struct {
			Address wireNode `json:"address"`
		}{addr})
	default:
		return wireNode{}, fmt.Errorf("ast: cannot encode expression of kind %v", e.Kind())
	}
}

func decodeExpr(w wireNode) (Expr, error) {
	switch w.Kind {
	case KLiteralExpr:
		var d struct {
			Value value.Literal `json:"value"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		return &LiteralExpr{Value: d.Value}, nil
	case KIdentifierExpr:
		var d struct {
			Pos  value.Position `json:"pos"`
			Name string         `json:"name"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		return &IdentifierExpr{PosVal: d.Pos, Name: d.Name}, nil
	case KPrefixExpr:
		var d struct {
			Pos   value.Position `json:"pos"`
			Op    string         `json:"op"`
			Inner wireNode       `json:"inner"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		inner, err := decodeExpr(d.Inner)
		if err != nil {
			return nil, err
		}
		return &PrefixExpr{PosVal: d.Pos, Op: d.Op, Inner: inner}, nil
	case KBinaryExpr:
		var d struct {
			Op    string   `json:"op"`
			Left  wireNode `json:"left"`
			Right wireNode `json:"right"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		left, err := decodeExpr(d.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(d.Right)
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Op: d.Op, Left: left, Right: right}, nil
	case KFunctionCallExpr:
		var d struct {
			Pos    value.Position `json:"pos"`
			Target string         `json:"target"`
			Args   []wireNode     `json:"args"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		args, err := decodeExprs(d.Args)
		if err != nil {
			return nil, err
		}
		return &FunctionCallExpr{PosVal: d.Pos, Target: d.Target, Args: args}, nil
	case KArrayIndexedExpr:
		var d struct {
			Pos        value.Position `json:"pos"`
			Identifier string         `json:"identifier"`
			Index      wireNode       `json:"index"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		index, err := decodeExpr(d.Index)
		if err != nil {
			return nil, err
		}
		return &ArrayIndexedExpr{PosVal: d.Pos, Identifier: d.Identifier, Index: index}, nil
	case KAddressOfExpr:
		var d struct {
			Pos        value.Position `json:"pos"`
			Identifier string         `json:"identifier"`
			ScopedName string         `json:"scoped_name"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		return &AddressOfExpr{PosVal: d.Pos, Identifier: d.Identifier, ScopedName: d.ScopedName}, nil
	case KTypecastExpr:
		var d struct {
			Target value.DataType `json:"target"`
			Value  wireNode       `json:"value"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		inner, err := decodeExpr(d.Value)
		if err != nil {
			return nil, err
		}
		return &TypecastExpr{Target: d.Target, Value: inner}, nil
	case KRangeExpr:
		var d struct {
			Pos  value.Position `json:"pos"`
			From wireNode       `json:"from"`
			To   wireNode       `json:"to"`
			Step *wireNode      `json:"step,omitempty"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		from, err := decodeExpr(d.From)
		if err != nil {
			return nil, err
		}
		to, err := decodeExpr(d.To)
		if err != nil {
			return nil, err
		}
		step, err := decodeExprPtr(d.Step)
		if err != nil {
			return nil, err
		}
		return &RangeExpr{PosVal: d.Pos, From: from, To: to, Step: step}, nil
	case KRegisterExpr:
		var d struct {
			Pos      value.Position `json:"pos"`
			Register string         `json:"register"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		return &RegisterExpr{PosVal: d.Pos, Register: d.Register}, nil
	case KDirectMemoryReadExpr:
		var d struct {
			Address wireNode `json:"address"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		addr, err := decodeExpr(d.Address)
		if err != nil {
			return nil, err
		}
		return &DirectMemoryReadExpr{Address: addr}, nil
	default:
		return nil, fmt.Errorf("ast: unrecognized expression kind %v", w.Kind)
	}
}

// --- AssignTarget ---

func encodeTarget(t AssignTarget) (wireNode, error) {
	switch x := t.(type) {
	case *RegisterTarget:
		return wrap(KRegisterTarget, struct {
			Pos      value.Position `json:"pos"`
			Register string         `json:"register"`
		}{x.PosVal, x.Register})
	case *IdentifierTarget:
		return wrap(KIdentifierTarget, struct {
			Pos  value.Position `json:"pos"`
			Name string         `json:"name"`
		}{x.PosVal, x.Name})
	case *IndexedTarget:
		index, err := encodeExprPtr(x.Index)
		if err != nil {
			return wireNode{}, err
		}
		return wrap(KIndexedTarget, struct {
			Pos   value.Position `json:"pos"`
			Name  string         `json:"name"`
			Index *wireNode      `json:"index,omitempty"`
		}{x.PosVal, x.Name, index})
	case *MemoryTarget:
		addr, err := encodeExprPtr(x.Address)
		if err != nil {
			return wireNode{}, err
		}
		return wrap(KMemoryTarget, struct {
			Pos     value.Position `json:"pos"`
			Address *wireNode      `json:"address,omitempty"`
		}{x.PosVal, addr})
	default:
		return wireNode{}, fmt.Errorf("ast: cannot encode assign target of kind %v", t.Kind())
	}
}

func decodeTarget(w wireNode) (AssignTarget, error) {
	switch w.Kind {
	case KRegisterTarget:
		var d struct {
			Pos      value.Position `json:"pos"`
			Register string         `json:"register"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		return &RegisterTarget{PosVal: d.Pos, Register: d.Register}, nil
	case KIdentifierTarget:
		var d struct {
			Pos  value.Position `json:"pos"`
			Name string         `json:"name"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		return &IdentifierTarget{PosVal: d.Pos, Name: d.Name}, nil
	case KIndexedTarget:
		var d struct {
			Pos   value.Position `json:"pos"`
			Name  string         `json:"name"`
			Index *wireNode      `json:"index,omitempty"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		index, err := decodeExprPtr(d.Index)
		if err != nil {
			return nil, err
		}
		return &IndexedTarget{PosVal: d.Pos, Name: d.Name, Index: index}, nil
	case KMemoryTarget:
		var d struct {
			Pos     value.Position `json:"pos"`
			Address *wireNode      `json:"address,omitempty"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		addr, err := decodeExprPtr(d.Address)
		if err != nil {
			return nil, err
		}
		return &MemoryTarget{PosVal: d.Pos, Address: addr}, nil
	default:
		return nil, fmt.Errorf("ast: unrecognized assign target kind %v", w.Kind)
	}
}

func encodeTargets(targets []AssignTarget) ([]wireNode, error) {
	out := make([]wireNode, 0, len(targets))
	for _, t := range targets {
		w, err := encodeTarget(t)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func decodeTargets(wire []wireNode) ([]AssignTarget, error) {
	out := make([]AssignTarget, 0, len(wire))
	for _, w := range wire {
		t, err := decodeTarget(w)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// --- Statement ---

func encodeStmt(s Statement) (wireNode, error) {
	switch x := s.(type) {
	case *Block:
		stmts, err := encodeStmts(x.Stmts)
		if err != nil {
			return wireNode{}, err
		}
		return wrap(KBlock, struct {
			Pos         value.Position `json:"pos"`
			Name        string         `json:"name"`
			Address     *int           `json:"address,omitempty"`
			Stmts       []wireNode     `json:"stmts"`
			ForceOutput bool           `json:"force_output,omitempty"`
		}{x.PosVal, x.Name, x.Address, stmts, x.ForceOutput})
	case *Subroutine:
		stmts, err := encodeStmts(x.Stmts)
		if err != nil {
			return wireNode{}, err
		}
		return wrap(KSubroutine, struct {
			Pos                   value.Position   `json:"pos"`
			Name                  string           `json:"name"`
			Params                []Param          `json:"params,omitempty"`
			ReturnTypes           []value.DataType `json:"return_types,omitempty"`
			Stmts                 []wireNode       `json:"stmts"`
			IsAsmSubroutine       bool             `json:"is_asm_subroutine,omitempty"`
			AsmAddress            *int             `json:"asm_address,omitempty"`
			AsmParameterRegisters []RegisterSpec   `json:"asm_parameter_registers,omitempty"`
			AsmReturnRegisters    []RegisterSpec   `json:"asm_return_registers,omitempty"`
			AsmClobbers           []string         `json:"asm_clobbers,omitempty"`
		}{x.PosVal, x.Name, x.Params, x.ReturnTypes, stmts, x.IsAsmSubroutine,
			x.AsmAddress, x.AsmParameterRegisters, x.AsmReturnRegisters, x.AsmClobbers})
	case *VarDecl:
		val, err := encodeExprPtr(x.Value)
		if err != nil {
			return wireNode{}, err
		}
		arrSize, err := encodeExprPtr(x.ArraySize)
		if err != nil {
			return wireNode{}, err
		}
		return wrap(KVarDecl, struct {
			Pos       value.Position `json:"pos"`
			DeclKind  VarDeclKind    `json:"decl_kind"`
			DataType  value.DataType `json:"data_type"`
			Name      string         `json:"name"`
			Value     *wireNode      `json:"value,omitempty"`
			ArraySize *wireNode      `json:"array_size,omitempty"`
			ZeroPage  bool           `json:"zero_page,omitempty"`
		}{x.PosVal, x.DeclKind, x.DataType, x.Name, val, arrSize, x.ZeroPage})
	case *Assignment:
		targets, err := encodeTargets(x.Targets)
		if err != nil {
			return wireNode{}, err
		}
		val, err := encodeExpr(x.Value)
		if err != nil {
			return wireNode{}, err
		}
		return wrap(KAssignment, struct {
			Pos     value.Position `json:"pos"`
			Targets []wireNode     `json:"targets"`
			AugOp   string         `json:"aug_op,omitempty"`
			Value   wireNode       `json:"value"`
		}{x.PosVal, targets, x.AugOp, val})
	case *Jump:
		return wrap(KJump, struct {
			Pos    value.Position `json:"pos"`
			Target string         `json:"target"`
		}{x.PosVal, x.Target})
	case *Return:
		values, err := encodeExprs(x.Values)
		if err != nil {
			return wireNode{}, err
		}
		return wrap(KReturn, struct {
			Pos    value.Position `json:"pos"`
			Values []wireNode     `json:"values"`
		}{x.PosVal, values})
	case *IfStatement:
		cond, err := encodeExpr(x.Condition)
		if err != nil {
			return wireNode{}, err
		}
		trueB, err := encodeStmts(x.TrueBranch)
		if err != nil {
			return wireNode{}, err
		}
		falseB, err := encodeStmts(x.FalseBranch)
		if err != nil {
			return wireNode{}, err
		}
		return wrap(KIfStatement, struct {
			Pos         value.Position `json:"pos"`
			Condition   wireNode       `json:"condition"`
			TrueBranch  []wireNode     `json:"true_branch"`
			FalseBranch []wireNode     `json:"false_branch,omitempty"`
		}{x.PosVal, cond, trueB, falseB})
	case *ForLoop:
		iter, err := encodeExpr(x.Iterable)
		if err != nil {
			return wireNode{}, err
		}
		body, err := encodeStmts(x.Body)
		if err != nil {
			return wireNode{}, err
		}
		return wrap(KForLoop, struct {
			Pos          value.Position `json:"pos"`
			LoopVar      string         `json:"loop_var,omitempty"`
			LoopRegister string         `json:"loop_register,omitempty"`
			Iterable     wireNode       `json:"iterable"`
			Body         []wireNode     `json:"body"`
		}{x.PosVal, x.LoopVar, x.LoopRegister, iter, body})
	case *WhileLoop:
		cond, err := encodeExpr(x.Condition)
		if err != nil {
			return wireNode{}, err
		}
		body, err := encodeStmts(x.Body)
		if err != nil {
			return wireNode{}, err
		}
		return wrap(KWhileLoop, struct {
			Pos       value.Position `json:"pos"`
			Condition wireNode       `json:"condition"`
			Body      []wireNode     `json:"body"`
		}{x.PosVal, cond, body})
	case *RepeatLoop:
		body, err := encodeStmts(x.Body)
		if err != nil {
			return wireNode{}, err
		}
		cond, err := encodeExprPtr(x.Condition)
		if err != nil {
			return wireNode{}, err
		}
		return wrap(KRepeatLoop, struct {
			Pos       value.Position `json:"pos"`
			Body      []wireNode     `json:"body"`
			Condition *wireNode      `json:"condition,omitempty"`
		}{x.PosVal, body, cond})
	case *Label:
		return wrap(KLabel, struct {
			Pos  value.Position `json:"pos"`
			Name string         `json:"name"`
		}{x.PosVal, x.Name})
	case *PostIncrDecr:
		target, err := encodeTarget(x.Target)
		if err != nil {
			return wireNode{}, err
		}
		return wrap(KPostIncrDecr, struct {
			Pos    value.Position `json:"pos"`
			Target wireNode       `json:"target"`
			Incr   bool           `json:"incr"`
		}{x.PosVal, target, x.Incr})
	case *FunctionCallStatement:
		call, err := encodeExpr(x.Call)
		if err != nil {
			return wireNode{}, err
		}
		return wrap(KFunctionCallStatement, struct {
			Call wireNode `json:"call"`
		}{call})
	case *InlineAssembly:
		return wrap(KInlineAssembly, struct {
			Pos     value.Position `json:"pos"`
			RawText string         `json:"raw_text"`
		}{x.PosVal, x.RawText})
	case *Directive:
		return wrap(KDirective, struct {
			Pos  value.Position `json:"pos"`
			Name string         `json:"name"`
			Args []string       `json:"args,omitempty"`
		}{x.PosVal, x.Name, x.Args})
	case *AnonymousScope:
		stmts, err := encodeStmts(x.Stmts)
		if err != nil {
			return wireNode{}, err
		}
		return wrap(KAnonymousScope, struct {
			Pos   value.Position `json:"pos"`
			Stmts []wireNode     `json:"stmts"`
		}{x.PosVal, stmts})
	case *NopStatement:
		return wrap(KNopStatement, struct {
			Pos value.Position `json:"pos"`
		}{x.PosVal})
	case *BuiltinFunctionStatementPlaceholder:
		args, err := encodeExprs(x.Args)
		if err != nil {
			return wireNode{}, err
		}
		return wrap(KBuiltinFunctionStatementPlaceholder, struct {
			Pos  value.Position `json:"pos"`
			Name string         `json:"name"`
			Args []wireNode     `json:"args"`
		}{x.PosVal, x.Name, args})
	default:
		return wireNode{}, fmt.Errorf("ast: cannot encode statement of kind %v", s.Kind())
	}
}

func decodeStmt(w wireNode) (Statement, error) {
	switch w.Kind {
	case KBlock:
		var d struct {
			Pos         value.Position `json:"pos"`
			Name        string         `json:"name"`
			Address     *int           `json:"address,omitempty"`
			Stmts       []wireNode     `json:"stmts"`
			ForceOutput bool           `json:"force_output,omitempty"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		stmts, err := decodeStmts(d.Stmts)
		if err != nil {
			return nil, err
		}
		return &Block{PosVal: d.Pos, Name: d.Name, Address: d.Address, Stmts: stmts, ForceOutput: d.ForceOutput}, nil
	case KSubroutine:
		var d struct {
			Pos                   value.Position   `json:"pos"`
			Name                  string           `json:"name"`
			Params                []Param          `json:"params,omitempty"`
			ReturnTypes           []value.DataType `json:"return_types,omitempty"`
			Stmts                 []wireNode       `json:"stmts"`
			IsAsmSubroutine       bool             `json:"is_asm_subroutine,omitempty"`
			AsmAddress            *int             `json:"asm_address,omitempty"`
			AsmParameterRegisters []RegisterSpec   `json:"asm_parameter_registers,omitempty"`
			AsmReturnRegisters    []RegisterSpec   `json:"asm_return_registers,omitempty"`
			AsmClobbers           []string         `json:"asm_clobbers,omitempty"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		stmts, err := decodeStmts(d.Stmts)
		if err != nil {
			return nil, err
		}
		return &Subroutine{
			PosVal: d.Pos, Name: d.Name, Params: d.Params, ReturnTypes: d.ReturnTypes, Stmts: stmts,
			IsAsmSubroutine: d.IsAsmSubroutine, AsmAddress: d.AsmAddress,
			AsmParameterRegisters: d.AsmParameterRegisters, AsmReturnRegisters: d.AsmReturnRegisters,
			AsmClobbers: d.AsmClobbers,
		}, nil
	case KVarDecl:
		var d struct {
			Pos       value.Position `json:"pos"`
			DeclKind  VarDeclKind    `json:"decl_kind"`
			DataType  value.DataType `json:"data_type"`
			Name      string         `json:"name"`
			Value     *wireNode      `json:"value,omitempty"`
			ArraySize *wireNode      `json:"array_size,omitempty"`
			ZeroPage  bool           `json:"zero_page,omitempty"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		val, err := decodeExprPtr(d.Value)
		if err != nil {
			return nil, err
		}
		arrSize, err := decodeExprPtr(d.ArraySize)
		if err != nil {
			return nil, err
		}
		return &VarDecl{
			PosVal: d.Pos, DeclKind: d.DeclKind, DataType: d.DataType, Name: d.Name,
			Value: val, ArraySize: arrSize, ZeroPage: d.ZeroPage,
		}, nil
	case KAssignment:
		var d struct {
			Pos     value.Position `json:"pos"`
			Targets []wireNode     `json:"targets"`
			AugOp   string         `json:"aug_op,omitempty"`
			Value   wireNode       `json:"value"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		targets, err := decodeTargets(d.Targets)
		if err != nil {
			return nil, err
		}
		val, err := decodeExpr(d.Value)
		if err != nil {
			return nil, err
		}
		return &Assignment{PosVal: d.Pos, Targets: targets, AugOp: d.AugOp, Value: val}, nil
	case KJump:
		var d struct {
			Pos    value.Position `json:"pos"`
			Target string         `json:"target"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		return &Jump{PosVal: d.Pos, Target: d.Target}, nil
	case KReturn:
		var d struct {
			Pos    value.Position `json:"pos"`
			Values []wireNode     `json:"values"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		values, err := decodeExprs(d.Values)
		if err != nil {
			return nil, err
		}
		return &Return{PosVal: d.Pos, Values: values}, nil
	case KIfStatement:
		var d struct {
			Pos         value.Position `json:"pos"`
			Condition   wireNode       `json:"condition"`
			TrueBranch  []wireNode     `json:"true_branch"`
			FalseBranch []wireNode     `json:"false_branch,omitempty"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		cond, err := decodeExpr(d.Condition)
		if err != nil {
			return nil, err
		}
		trueB, err := decodeStmts(d.TrueBranch)
		if err != nil {
			return nil, err
		}
		falseB, err := decodeStmts(d.FalseBranch)
		if err != nil {
			return nil, err
		}
		return &IfStatement{PosVal: d.Pos, Condition: cond, TrueBranch: trueB, FalseBranch: falseB}, nil
	case KForLoop:
		var d struct {
			Pos          value.Position `json:"pos"`
			LoopVar      string         `json:"loop_var,omitempty"`
			LoopRegister string         `json:"loop_register,omitempty"`
			Iterable     wireNode       `json:"iterable"`
			Body         []wireNode     `json:"body"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		iter, err := decodeExpr(d.Iterable)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmts(d.Body)
		if err != nil {
			return nil, err
		}
		return &ForLoop{PosVal: d.Pos, LoopVar: d.LoopVar, LoopRegister: d.LoopRegister, Iterable: iter, Body: body}, nil
	case KWhileLoop:
		var d struct {
			Pos       value.Position `json:"pos"`
			Condition wireNode       `json:"condition"`
			Body      []wireNode     `json:"body"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		cond, err := decodeExpr(d.Condition)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmts(d.Body)
		if err != nil {
			return nil, err
		}
		return &WhileLoop{PosVal: d.Pos, Condition: cond, Body: body}, nil
	case KRepeatLoop:
		var d struct {
			Pos       value.Position `json:"pos"`
			Body      []wireNode     `json:"body"`
			Condition *wireNode      `json:"condition,omitempty"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		body, err := decodeStmts(d.Body)
		if err != nil {
			return nil, err
		}
		cond, err := decodeExprPtr(d.Condition)
		if err != nil {
			return nil, err
		}
		return &RepeatLoop{PosVal: d.Pos, Body: body, Condition: cond}, nil
	case KLabel:
		var d struct {
			Pos  value.Position `json:"pos"`
			Name string         `json:"name"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		return &Label{PosVal: d.Pos, Name: d.Name}, nil
	case KPostIncrDecr:
		var d struct {
			Pos    value.Position `json:"pos"`
			Target wireNode       `json:"target"`
			Incr   bool           `json:"incr"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		target, err := decodeTarget(d.Target)
		if err != nil {
			return nil, err
		}
		return &PostIncrDecr{PosVal: d.Pos, Target: target, Incr: d.Incr}, nil
	case KFunctionCallStatement:
		var d struct {
			Call wireNode `json:"call"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		call, err := decodeExpr(d.Call)
		if err != nil {
			return nil, err
		}
		fc, ok := call.(*FunctionCallExpr)
		if !ok {
			return nil, fmt.Errorf("ast: function call statement wraps a non-call expression")
		}
		return &FunctionCallStatement{Call: fc}, nil
	case KInlineAssembly:
		var d struct {
			Pos     value.Position `json:"pos"`
			RawText string         `json:"raw_text"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		return &InlineAssembly{PosVal: d.Pos, RawText: d.RawText}, nil
	case KDirective:
		var d struct {
			Pos  value.Position `json:"pos"`
			Name string         `json:"name"`
			Args []string       `json:"args,omitempty"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		return &Directive{PosVal: d.Pos, Name: d.Name, Args: d.Args}, nil
	case KAnonymousScope:
		var d struct {
			Pos   value.Position `json:"pos"`
			Stmts []wireNode     `json:"stmts"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		stmts, err := decodeStmts(d.Stmts)
		if err != nil {
			return nil, err
		}
		return &AnonymousScope{PosVal: d.Pos, Stmts: stmts}, nil
	case KNopStatement:
		var d struct {
			Pos value.Position `json:"pos"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		return &NopStatement{PosVal: d.Pos}, nil
	case KBuiltinFunctionStatementPlaceholder:
		var d struct {
			Pos  value.Position `json:"pos"`
			Name string         `json:"name"`
			Args []wireNode     `json:"args"`
		}
		if err := json.Unmarshal(w.Data, &d); err != nil {
			return nil, err
		}
		args, err := decodeExprs(d.Args)
		if err != nil {
			return nil, err
		}
		return &BuiltinFunctionStatementPlaceholder{PosVal: d.Pos, Name: d.Name, Args: args}, nil
	default:
		return nil, fmt.Errorf("ast: unrecognized statement kind %v", w.Kind)
	}
}
