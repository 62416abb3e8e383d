package ast

// DesugarAugmented rewrites every `target op= value` assignment reachable
// from n in place to `target = target op value` (§4.G "Assignment"). This
// must run once, before the optimize fixed-point loop ever sees the tree
// (§2's "parser -> fixed-point optimization -> checking" ordering) —
// `internal/optimize`'s strength-reduction rules only ever match the plain
// BinaryExpr form, and the optimizer is never invoked again after checking,
// so an augmented assignment left undesugared at that point could never be
// reached by it.
func DesugarAugmented(n Node) {
	if n == nil {
		return
	}
	if a, ok := n.(*Assignment); ok && a.AugOp != "" && len(a.Targets) == 1 {
		if lhs := targetToExpr(a.Targets[0]); lhs != nil {
			a.Value = &BinaryExpr{Op: a.AugOp, Left: lhs, Right: a.Value}
		}
		a.AugOp = ""
	}
	for _, ch := range n.Children() {
		DesugarAugmented(ch)
	}
}

// targetToExpr reads an assignment target back as the expression it would
// evaluate to, for use as the left operand of a desugared augmented
// assignment. Mirrors internal/optimize's own targetToExpr, which exists
// independently there to avoid an internal/optimize -> internal/ast import
// this package cannot have in reverse.
func targetToExpr(t AssignTarget) Expr {
	switch x := t.(type) {
	case *IdentifierTarget:
		return &IdentifierExpr{PosVal: x.PosVal, Name: x.Name}
	case *RegisterTarget:
		return &RegisterExpr{PosVal: x.PosVal, Register: x.Register}
	case *IndexedTarget:
		return &ArrayIndexedExpr{PosVal: x.PosVal, Identifier: x.Name, Index: x.Index}
	case *MemoryTarget:
		return &DirectMemoryReadExpr{Address: x.Address}
	default:
		return nil
	}
}
