package pathsym

// ZeroInitializer synthesizes type-appropriate default values: zero literals
// for scalars and element-wise constructors for aggregates. Types without a
// canonical default (functions, unions, unbounded arrays) yield no value.
type ZeroInitializer struct{}

// ZeroValue returns the default value for typ, or false if it has none.
func (z ZeroInitializer) ZeroValue(typ Type) (Expr, bool) {
	switch typ := typ.(type) {
	case *BoolType:
		return NewBoolConstantExpr(false), true

	case *IntType:
		return &ConstantExpr{Value: 0, Type: typ}, true

	case *PointerType:
		// null pointer
		return &ConstantExpr{Value: 0, Type: typ}, true

	case *StructType:
		operands := make([]Expr, len(typ.Components))
		for i, component := range typ.Components {
			zero, ok := z.ZeroValue(component.Type)
			if !ok {
				return nil, false
			}
			operands[i] = zero
		}
		return &StructExpr{Type: typ, Operands: operands}, true

	case *ArrayType:
		if IsUnboundedArray(typ) {
			return nil, false
		}
		operands, ok := z.zeroElements(typ.Elem, typ.Size)
		if !ok {
			return nil, false
		}
		return &ArrayExpr{Type: typ, Operands: operands}, true

	case *VectorType:
		operands, ok := z.zeroElements(typ.Elem, typ.Size)
		if !ok {
			return nil, false
		}
		return &VectorExpr{Type: typ, Operands: operands}, true
	}

	return nil, false
}

func (z ZeroInitializer) zeroElements(elem Type, size Expr) ([]Expr, bool) {
	n, err := constantSize(size)
	if err != nil {
		return nil, false
	}

	operands := make([]Expr, n)
	for i := range operands {
		zero, ok := z.ZeroValue(elem)
		if !ok {
			return nil, false
		}
		operands[i] = zero
	}
	return operands, true
}
