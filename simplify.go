package pathsym

// Fold is the built-in Simplifier: bottom-up constant folding over equality,
// conditionals, and constant indexing into constructors. It is idempotent and
// consumes its argument.
func Fold(expr Expr) Expr {
	for _, op := range exprOperands(expr) {
		*op = Fold(*op)
	}

	switch expr := expr.(type) {
	case *EqExpr:
		if lhs, ok := expr.LHS.(*ConstantExpr); ok {
			if rhs, ok := expr.RHS.(*ConstantExpr); ok {
				return NewBoolConstantExpr(lhs.Value == rhs.Value)
			}
		}
		if CompareExpr(expr.LHS, expr.RHS) == 0 {
			return NewBoolConstantExpr(true)
		}
		return expr

	case *IfExpr:
		if cond, ok := expr.Cond.(*ConstantExpr); ok {
			if cond.IsTrue() {
				return expr.Then
			}
			return expr.Else
		}
		return expr

	case *CondExpr:
		// Drop cases with constant-false guards; a constant-true guard
		// selects its value outright.
		cases := make([]CondCase, 0, len(expr.Cases))
		for _, c := range expr.Cases {
			if guard, ok := c.Guard.(*ConstantExpr); ok {
				if guard.IsTrue() {
					return c.Value
				}
				continue
			}
			cases = append(cases, c)
		}
		expr.Cases = cases
		return expr

	case *IndexExpr:
		index, ok := expr.Index.(*ConstantExpr)
		if !ok {
			return expr
		}
		switch array := expr.Array.(type) {
		case *ArrayExpr:
			if index.Value < uint64(len(array.Operands)) {
				return array.Operands[index.Value]
			}
		case *VectorExpr:
			if index.Value < uint64(len(array.Operands)) {
				return array.Operands[index.Value]
			}
		}
		return expr
	}

	return expr
}
