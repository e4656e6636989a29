package pathsym

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

// Read resolves src into a solver-ready expression: pointer dereferences are
// handed to the dereference oracle, every raw variable access is rewritten to
// an SSA incarnation, and the result is simplified. propagate controls
// whether cached values may be substituted for variables.
//
// Read consumes src; callers must not retain references into it.
func (s *State) Read(src Expr, propagate bool) (Expr, error) {
	s.config.Logger.Debug("read", zap.Stringer("src", src), zap.Bool("propagate", propagate))

	// This has three phases:
	// 1. Dereferencing, including propagation of pointers.
	// 2. Rewriting to SSA symbols.
	// 3. Simplifier.

	// Propagation is forced on for dereferencing.
	tmp, err := s.dereferenceRec(src, true)
	if err != nil {
		return nil, err
	}

	tmp, err = s.instantiate(tmp, propagate)
	if err != nil {
		return nil, err
	}

	tmp = s.config.simplify(tmp)

	s.config.Logger.Debug("read done", zap.Stringer("result", tmp))
	return tmp, nil
}

// dereferenceRec rewrites every dereference and address-of in src by
// delegating to the external oracles. Dereferencing requires reading the
// pointer's value first, making this mutually recursive with Read.
func (s *State) dereferenceRec(src Expr, propagate bool) (Expr, error) {
	switch src := src.(type) {
	case *DerefExpr:
		if s.config.Dereferencer == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoDereferencer, src)
		}

		// Read the address to propagate the pointers.
		address, err := s.Read(src.Pointer, propagate)
		if err != nil {
			return nil, err
		}

		// The dereferenced address is a mixture of non-SSA and SSA symbols
		// (e.g. if-guards and array indices); instantiation finishes it.
		return s.config.Dereferencer.Dereference(address, src.Type)

	case *AddressOfExpr:
		if s.config.AddressOf == nil {
			return nil, fmt.Errorf("%w: %s", ErrNoAddressOfEvaluator, src)
		}
		// The evaluator handles the whole operand subtree itself.
		return s.config.AddressOf.AddressOf(src.Object, src.Type)
	}

	for _, op := range exprOperands(src) {
		tmp, err := s.dereferenceRec(*op, propagate)
		if err != nil {
			return nil, err
		}
		*op = tmp
	}
	return src, nil
}

// instantiate rewrites src to SSA form. It traverses with an explicit stack
// of operand slots rather than native recursion so that arbitrarily deep
// expressions cannot exhaust the call stack. When a rewrite rule fires, the
// slot is replaced and the pre-replacement children are not revisited.
func (s *State) instantiate(src Expr, propagate bool) (Expr, error) {
	root := src

	stack := []*Expr{&root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		result, ok, err := s.instantiateNode(*node, propagate)
		if err != nil {
			return nil, err
		} else if ok {
			*node = result
		} else {
			stack = append(stack, exprOperands(*node)...)
		}
	}
	return root, nil
}

// instantiateNode applies the node-local rewrite rules. It returns the
// replacement and true when a rule fires, or false to leave the node
// unchanged and descend into its children.
func (s *State) instantiateNode(src Expr, propagate bool) (Expr, bool, error) {
	// Check whether this is a symbol(.member|[index])* chain.
	if isSymbolMemberIndex(src) {
		result, ok, err := s.readSymbolMemberIndex(src, propagate)
		if err != nil {
			return nil, false, err
		}
		assert(ok, "unresolved symbol/member/index chain: %s", src)
		return result, true, nil
	}

	switch src := src.(type) {
	case *AddressOfExpr:
		// Already flattened out by dereferenceRec.
		return src, true, nil

	case *NondetExpr:
		// A fresh free input. It gets its own location identity and SSA
		// incarnation; its value is never propagated.
		sym := s.newAuxiliarySymbol("nondet", src.Type)
		result, ok, err := s.readSymbolMemberIndex(sym, false)
		if err != nil {
			return nil, false, err
		}
		assert(ok, "nondet symbol did not resolve: %s", sym)
		return result, true, nil

	case *DerefExpr:
		// A residual dereference onto a literal address that survived
		// dereference resolution. Modeled as an unconstrained placeholder.
		return s.newAuxiliarySymbol("deref", src.Type), true, nil

	case *DerefFailureExpr:
		return s.newAuxiliarySymbol("deref", src.Type), true, nil

	case *MemberExpr:
		switch ExprType(src.Base).(type) {
		case *StructType:
			// resolved by further traversal
		case *UnionType:
			// should already have been rewritten to byte-extract
			return nil, false, fmt.Errorf("%w: %s", ErrUnexpectedUnionMember, src)
		default:
			return nil, false, fmt.Errorf("member expects struct or union base: %s", src)
		}

	case *ByteExtractExpr:
		// already lowered

	case *SymbolExpr:
		// must be SSA already, or code, or a function
		if !src.SSA {
			if _, ok := src.Type.(*FuncType); !ok {
				return nil, false, fmt.Errorf("unexpected raw symbol after resolution: %s", src)
			}
		}
	}

	return nil, false, nil // no change
}

// isSymbolMemberIndex reports whether src is a pure member/index access chain
// onto a non-SSA, non-function base symbol.
func isSymbolMemberIndex(src Expr) bool {
	if _, ok := ExprType(src).(*FuncType); ok {
		return false
	}

	// The loop avoids recursion.
	current := src
	for {
		switch cur := current.(type) {
		case *SymbolExpr:
			return !cur.SSA
		case *MemberExpr:
			if _, ok := ExprType(cur.Base).(*StructType); !ok {
				return false // includes unions, deliberately
			}
			current = cur.Base
		case *IndexExpr:
			current = cur.Array
		default:
			return false
		}
	}
}

// readSymbolMemberIndex resolves a variable access chain to its replacement:
// a propagated value, an SSA symbol, an aggregate constructor of resolved
// fields, or a case-split conditional. Returns false if src is not a
// resolvable variable access, in which case the caller leaves it unchanged.
func (s *State) readSymbolMemberIndex(src Expr, propagate bool) (Expr, bool, error) {
	// Don't touch function symbols.
	if _, ok := ExprType(src).(*FuncType); ok {
		return nil, false, nil
	}

	// Unbounded arrays are never flattened; they stay as native indexing for
	// the solver's array theory.
	if index, ok := src.(*IndexExpr); ok && IsUnboundedArray(ExprType(index.Array)) {
		array, ok, err := s.readSymbolMemberIndex(index.Array, propagate)
		if err != nil {
			return nil, false, err
		}
		assert(ok, "unbounded array base did not resolve: %s", index.Array)

		idx, err := s.instantiate(index.Index, propagate)
		if err != nil {
			return nil, false, err
		}
		return &IndexExpr{Array: array, Index: idx, Type: index.Type}, true, nil
	}

	// Is this a struct/array/vector that needs to be expanded?
	final, err := s.expandStructsAndArrays(src)
	if err != nil {
		return nil, false, err
	}

	if operands := constructorOperands(final); operands != nil {
		for _, op := range operands {
			tmp, ok, err := s.readSymbolMemberIndex(*op, propagate)
			if err != nil {
				return nil, false, err
			}
			assert(ok, "aggregate operand did not resolve: %s", *op)
			*op = tmp
		}
		return final, true, nil
	}

	// Now do array theory.
	final, err = s.arrayTheory(final, propagate)
	if err != nil {
		return nil, false, err
	}

	switch final.(type) {
	case *CondExpr, *IfExpr:
		// The branches still contain raw accesses.
		result, err := s.instantiate(final, propagate)
		if err != nil {
			return nil, false, err
		}
		return result, true, nil
	}

	// Walk from src toward its base symbol, peeling member/index layers and
	// accumulating the access-path suffix. The loop avoids recursion.
	var suffix string
	current := src
walk:
	for {
		switch cur := current.(type) {
		case *SymbolExpr:
			break walk

		case *MemberExpr:
			if _, ok := ExprType(cur.Base).(*StructType); !ok {
				return nil, false, nil // includes unions, deliberately
			}
			suffix = "." + cur.Component + suffix
			current = cur.Base

		case *IndexExpr:
			// Read consumes its argument and the index is reused below.
			index, err := s.Read(CloneExpr(cur.Index), propagate)
			if err != nil {
				return nil, false, err
			}
			suffix = s.arrayIndexAsString(index) + suffix
			current = cur.Array

		default:
			return nil, false, nil // not symbol, member, index
		}
	}

	symbol := current.(*SymbolExpr)
	if symbol.SSA {
		return nil, false, nil // SSA already
	}

	info := s.config.VarMap.Lookup(symbol.Identifier, suffix, src)
	s.config.Logger.Debug("resolve variable",
		zap.String("identifier", info.FullIdentifier),
		zap.Uint("generation", info.Generation()))

	state := s.varState(info)

	if propagate && state != nil && state.Value != nil {
		return CloneExpr(state.Value), true, nil // propagate a value
	} else if state != nil && state.SSASymbol != nil {
		// We have got an SSA symbol.
		return state.SSASymbol, true, nil
	}

	// Never read before: mint an incarnation for the current generation.
	ssaSymbol := info.SSASymbol()

	if propagate && s.config.Initializer != nil {
		if zero, ok := s.config.Initializer.ZeroValue(ssaSymbol.Type); ok {
			s.setVarState(info, &VarState{SSASymbol: ssaSymbol, Value: zero})
			return CloneExpr(zero), true, nil
		}
	}

	s.setVarState(info, &VarState{SSASymbol: ssaSymbol})
	return ssaSymbol, true, nil
}

// constructorOperands returns the addressable operand slots if expr is a
// struct/array/vector constructor, or nil otherwise.
func constructorOperands(expr Expr) []*Expr {
	switch expr := expr.(type) {
	case *StructExpr:
		return operandSlots(expr.Operands)
	case *ArrayExpr:
		return operandSlots(expr.Operands)
	case *VectorExpr:
		return operandSlots(expr.Operands)
	default:
		return nil
	}
}

// expandStructsAndArrays recursively expands struct/array/vector-typed
// expressions into explicit per-component constructors. Arrays without a
// constant size are returned unchanged; they are resolved as native indexing,
// never by flattening.
func (s *State) expandStructsAndArrays(src Expr) (Expr, error) {
	switch typ := ExprType(src).(type) {
	case *StructType:
		operands := make([]Expr, len(typ.Components))

		// Split it up into components. A struct constructor already knows
		// its value field-by-field, so reuse its operands directly.
		srcStruct, isConstructor := src.(*StructExpr)
		if isConstructor {
			assert(len(srcStruct.Operands) == len(typ.Components),
				"struct constructor arity mismatch: %d != %d", len(srcStruct.Operands), len(typ.Components))
		}

		for i, component := range typ.Components {
			var newSrc Expr
			if isConstructor {
				newSrc = srcStruct.Operands[i]
			} else {
				newSrc = &MemberExpr{Base: CloneExpr(src), Component: component.Name, Type: component.Type}
			}

			op, err := s.expandStructsAndArrays(newSrc)
			if err != nil {
				return nil, err
			}
			operands[i] = op
		}
		return &StructExpr{Type: typ, Operands: operands}, nil

	case *ArrayType:
		if IsUnboundedArray(typ) {
			// Left for the unbounded-array rule in the path resolver.
			return src, nil
		}

		size, err := constantSize(typ.Size)
		if err != nil {
			return nil, err
		}

		operands := make([]Expr, size)
		_, isConstructor := src.(*ArrayExpr)

		// Split it up into elements.
		for i := 0; i < size; i++ {
			index := &ConstantExpr{Value: uint64(i), Type: ExprType(typ.Size)}
			var newSrc Expr = &IndexExpr{Array: CloneExpr(src), Index: index, Type: typ.Elem}

			// Fold constant indexing into the constructor eagerly.
			if isConstructor {
				newSrc = s.config.simplify(newSrc)
			}

			op, err := s.expandStructsAndArrays(newSrc)
			if err != nil {
				return nil, err
			}
			operands[i] = op
		}
		return &ArrayExpr{Type: typ, Operands: operands}, nil

	case *VectorType:
		if _, ok := typ.Size.(*ConstantExpr); !ok {
			return nil, fmt.Errorf("%w: %s", ErrNonConstantVectorSize, typ)
		}

		size, err := constantSize(typ.Size)
		if err != nil {
			return nil, err
		}

		operands := make([]Expr, size)
		_, isConstructor := src.(*VectorExpr)

		for i := 0; i < size; i++ {
			index := &ConstantExpr{Value: uint64(i), Type: ExprType(typ.Size)}
			var newSrc Expr = &IndexExpr{Array: CloneExpr(src), Index: index, Type: typ.Elem}
			if isConstructor {
				newSrc = s.config.simplify(newSrc)
			}

			op, err := s.expandStructsAndArrays(newSrc)
			if err != nil {
				return nil, err
			}
			operands[i] = op
		}
		return &VectorExpr{Type: typ, Operands: operands}, nil
	}

	return src, nil
}

// arrayTheory rewrites symbolic indexing into a bounded array as a flat
// n-way conditional over all literal indices. Constant indices and unbounded
// arrays pass through unchanged.
func (s *State) arrayTheory(src Expr, propagate bool) (Expr, error) {
	index, ok := src.(*IndexExpr)
	if !ok {
		return src, nil
	}

	arrayType, ok := ExprType(index.Array).(*ArrayType)
	if !ok || IsUnboundedArray(arrayType) {
		return src, nil
	}

	// Read consumes its argument and the index is reused in the guards.
	idx, err := s.Read(CloneExpr(index.Index), propagate)
	if err != nil {
		return nil, err
	}
	if IsConstantExpr(s.config.simplify(idx)) {
		return src, nil
	}

	size, err := constantSize(arrayType.Size)
	if err != nil {
		return nil, err
	}

	indexType := ExprType(index.Index)
	cases := make([]CondCase, 0, size)
	for i := 0; i < size; i++ {
		guard := NewEqExpr(CloneExpr(index.Index), &ConstantExpr{Value: uint64(i), Type: indexType})
		value := &IndexExpr{
			Array: CloneExpr(index.Array),
			Index: &ConstantExpr{Value: uint64(i), Type: indexType},
			Type:  index.Type,
		}
		cases = append(cases, CondCase{Guard: guard, Value: value})
	}
	return &CondExpr{Cases: cases, Type: index.Type}, nil
}

// arrayIndexAsString renders a read index as an access-path token: the
// literal "[k]" when constant, else the sentinel "[*]". Distinct dynamic
// indices into one array deliberately collapse onto the same location.
func (s *State) arrayIndexAsString(index Expr) string {
	tmp := s.config.simplify(index)
	if c, ok := tmp.(*ConstantExpr); ok {
		return "[" + strconv.FormatUint(c.Value, 10) + "]"
	}
	return "[*]"
}
