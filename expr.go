package pathsym

import (
	"bytes"
	"fmt"
	"strings"
)

// Expr represents a node in a program-level or SSA expression tree.
// Every node owns its children exclusively; trees never share subtrees.
type Expr interface {
	expr()
	String() string
}

func (*SymbolExpr) expr()       {}
func (*MemberExpr) expr()       {}
func (*IndexExpr) expr()        {}
func (*DerefExpr) expr()        {}
func (*AddressOfExpr) expr()    {}
func (*NondetExpr) expr()       {}
func (*ByteExtractExpr) expr()  {}
func (*EqExpr) expr()           {}
func (*IfExpr) expr()           {}
func (*CondExpr) expr()         {}
func (*StructExpr) expr()       {}
func (*ArrayExpr) expr()        {}
func (*VectorExpr) expr()       {}
func (*ConstantExpr) expr()     {}
func (*DerefFailureExpr) expr() {}

// SymbolExpr represents a reference to a named program variable or, when SSA
// is set, to one versioned incarnation of a memory location.
type SymbolExpr struct {
	Identifier string
	Type       Type

	// SSA marks the symbol as a side-effect-free incarnation. FullIdentifier
	// carries the originating location identity (base symbol + suffix).
	SSA            bool
	FullIdentifier string
}

// String returns the string representation of the expression.
func (e *SymbolExpr) String() string { return fmt.Sprintf("(symbol %s)", e.Identifier) }

// MemberExpr represents access to a named component of a compound value.
type MemberExpr struct {
	Base      Expr
	Component string
	Type      Type
}

// String returns the string representation of the expression.
func (e *MemberExpr) String() string { return fmt.Sprintf("(member %s %s)", e.Base, e.Component) }

// IndexExpr represents access to one element of an array or vector.
type IndexExpr struct {
	Array Expr
	Index Expr
	Type  Type // element type
}

// String returns the string representation of the expression.
func (e *IndexExpr) String() string { return fmt.Sprintf("(index %s %s)", e.Array, e.Index) }

// DerefExpr represents a pointer dereference.
type DerefExpr struct {
	Pointer Expr
	Type    Type // pointed-to type
}

// String returns the string representation of the expression.
func (e *DerefExpr) String() string { return fmt.Sprintf("(deref %s)", e.Pointer) }

// AddressOfExpr represents taking the address of an lvalue.
type AddressOfExpr struct {
	Object Expr
	Type   Type // pointer type
}

// String returns the string representation of the expression.
func (e *AddressOfExpr) String() string { return fmt.Sprintf("(address-of %s)", e.Object) }

// NondetExpr represents a nondeterministic input value.
type NondetExpr struct {
	Type Type
}

// String returns the string representation of the expression.
func (e *NondetExpr) String() string { return fmt.Sprintf("(nondet %s)", e.Type) }

// ByteExtractExpr represents reading a value of the given type from the raw
// bytes of another expression. Produced by upstream union lowering.
type ByteExtractExpr struct {
	Expr      Expr
	Offset    Expr
	Type      Type
	BigEndian bool
}

// String returns the string representation of the expression.
func (e *ByteExtractExpr) String() string {
	if e.BigEndian {
		return fmt.Sprintf("(byte-extract-be %s %s)", e.Expr, e.Offset)
	}
	return fmt.Sprintf("(byte-extract-le %s %s)", e.Expr, e.Offset)
}

// EqExpr represents equality of two expressions.
type EqExpr struct {
	LHS Expr
	RHS Expr
}

// NewEqExpr returns an expression representing the equality of lhs and rhs.
// Folds to a boolean constant when both sides are constant or identical.
func NewEqExpr(lhs, rhs Expr) Expr {
	if lhs, ok := lhs.(*ConstantExpr); ok {
		if rhs, ok := rhs.(*ConstantExpr); ok {
			return NewBoolConstantExpr(lhs.Value == rhs.Value)
		}
	}
	if CompareExpr(lhs, rhs) == 0 {
		return NewBoolConstantExpr(true)
	}
	return &EqExpr{LHS: lhs, RHS: rhs}
}

// String returns the string representation of the expression.
func (e *EqExpr) String() string { return fmt.Sprintf("(eq %s %s)", e.LHS, e.RHS) }

// IfExpr represents a binary conditional.
type IfExpr struct {
	Cond Expr
	Then Expr
	Else Expr
}

// String returns the string representation of the expression.
func (e *IfExpr) String() string { return fmt.Sprintf("(if %s %s %s)", e.Cond, e.Then, e.Else) }

// CondCase is one guarded case of a CondExpr.
type CondCase struct {
	Guard Expr
	Value Expr
}

// CondExpr represents a flat n-way guarded conditional. A flat structure
// keeps solver-encoding depth independent of the number of cases, versus
// depth n for a nesting of IfExpr.
type CondExpr struct {
	Cases []CondCase
	Type  Type
}

// String returns the string representation of the expression.
func (e *CondExpr) String() string {
	var buf bytes.Buffer
	buf.WriteString("(cond")
	for _, c := range e.Cases {
		fmt.Fprintf(&buf, " (%s %s)", c.Guard, c.Value)
	}
	buf.WriteRune(')')
	return buf.String()
}

// StructExpr represents a struct value built from per-component operands.
type StructExpr struct {
	Type     Type
	Operands []Expr
}

// String returns the string representation of the expression.
func (e *StructExpr) String() string { return operandsString("struct", e.Operands) }

// ArrayExpr represents an array value built from per-element operands.
type ArrayExpr struct {
	Type     Type
	Operands []Expr
}

// String returns the string representation of the expression.
func (e *ArrayExpr) String() string { return operandsString("array", e.Operands) }

// VectorExpr represents a vector value built from per-element operands.
type VectorExpr struct {
	Type     Type
	Operands []Expr
}

// String returns the string representation of the expression.
func (e *VectorExpr) String() string { return operandsString("vector", e.Operands) }

func operandsString(kind string, operands []Expr) string {
	a := make([]string, len(operands))
	for i, op := range operands {
		a[i] = op.String()
	}
	return "(" + kind + " " + strings.Join(a, " ") + ")"
}

// ConstantExpr represents a typed integer literal.
type ConstantExpr struct {
	Value uint64
	Type  Type
}

// NewBoolConstantExpr returns a boolean constant expression.
func NewBoolConstantExpr(value bool) *ConstantExpr {
	if value {
		return &ConstantExpr{Value: 1, Type: &BoolType{}}
	}
	return &ConstantExpr{Value: 0, Type: &BoolType{}}
}

// String returns the string representation of the expression.
func (e *ConstantExpr) String() string { return fmt.Sprintf("(const %d %s)", e.Value, e.Type) }

// IsTrue returns true if this is a boolean true expression.
func (e *ConstantExpr) IsTrue() bool {
	_, ok := e.Type.(*BoolType)
	return ok && e.Value != 0
}

// IsFalse returns true if this is a boolean false expression.
func (e *ConstantExpr) IsFalse() bool {
	_, ok := e.Type.(*BoolType)
	return ok && e.Value == 0
}

// DerefFailureExpr marks a dereference the oracle could not resolve.
type DerefFailureExpr struct {
	Type Type
}

// String returns the string representation of the expression.
func (e *DerefFailureExpr) String() string { return fmt.Sprintf("(deref-failure %s)", e.Type) }

// IsConstantExpr returns true if expr is an instance of ConstantExpr.
func IsConstantExpr(expr Expr) bool {
	_, ok := expr.(*ConstantExpr)
	return ok
}

// ExprType returns the program type of the expression.
func ExprType(expr Expr) Type {
	switch expr := expr.(type) {
	case *SymbolExpr:
		return expr.Type
	case *MemberExpr:
		return expr.Type
	case *IndexExpr:
		return expr.Type
	case *DerefExpr:
		return expr.Type
	case *AddressOfExpr:
		return expr.Type
	case *NondetExpr:
		return expr.Type
	case *ByteExtractExpr:
		return expr.Type
	case *EqExpr:
		return &BoolType{}
	case *IfExpr:
		return ExprType(expr.Then)
	case *CondExpr:
		return expr.Type
	case *StructExpr:
		return expr.Type
	case *ArrayExpr:
		return expr.Type
	case *VectorExpr:
		return expr.Type
	case *ConstantExpr:
		return expr.Type
	case *DerefFailureExpr:
		return expr.Type
	default:
		panic("unreachable")
	}
}

// exprOperands returns addressable slots for the children of expr.
// The slots back the explicit work stack used by instantiation: replacing a
// child writes through the parent's field, never aliasing a subtree.
func exprOperands(expr Expr) []*Expr {
	switch expr := expr.(type) {
	case *SymbolExpr, *NondetExpr, *ConstantExpr, *DerefFailureExpr:
		return nil
	case *MemberExpr:
		return []*Expr{&expr.Base}
	case *IndexExpr:
		return []*Expr{&expr.Array, &expr.Index}
	case *DerefExpr:
		return []*Expr{&expr.Pointer}
	case *AddressOfExpr:
		return []*Expr{&expr.Object}
	case *ByteExtractExpr:
		return []*Expr{&expr.Expr, &expr.Offset}
	case *EqExpr:
		return []*Expr{&expr.LHS, &expr.RHS}
	case *IfExpr:
		return []*Expr{&expr.Cond, &expr.Then, &expr.Else}
	case *CondExpr:
		a := make([]*Expr, 0, len(expr.Cases)*2)
		for i := range expr.Cases {
			a = append(a, &expr.Cases[i].Guard, &expr.Cases[i].Value)
		}
		return a
	case *StructExpr:
		return operandSlots(expr.Operands)
	case *ArrayExpr:
		return operandSlots(expr.Operands)
	case *VectorExpr:
		return operandSlots(expr.Operands)
	default:
		panic("unreachable")
	}
}

func operandSlots(operands []Expr) []*Expr {
	a := make([]*Expr, len(operands))
	for i := range operands {
		a[i] = &operands[i]
	}
	return a
}

// CloneExpr returns a deep copy of expr.
func CloneExpr(expr Expr) Expr {
	switch expr := expr.(type) {
	case *SymbolExpr:
		other := *expr
		return &other
	case *MemberExpr:
		return &MemberExpr{Base: CloneExpr(expr.Base), Component: expr.Component, Type: expr.Type}
	case *IndexExpr:
		return &IndexExpr{Array: CloneExpr(expr.Array), Index: CloneExpr(expr.Index), Type: expr.Type}
	case *DerefExpr:
		return &DerefExpr{Pointer: CloneExpr(expr.Pointer), Type: expr.Type}
	case *AddressOfExpr:
		return &AddressOfExpr{Object: CloneExpr(expr.Object), Type: expr.Type}
	case *NondetExpr:
		return &NondetExpr{Type: expr.Type}
	case *ByteExtractExpr:
		return &ByteExtractExpr{Expr: CloneExpr(expr.Expr), Offset: CloneExpr(expr.Offset), Type: expr.Type, BigEndian: expr.BigEndian}
	case *EqExpr:
		return &EqExpr{LHS: CloneExpr(expr.LHS), RHS: CloneExpr(expr.RHS)}
	case *IfExpr:
		return &IfExpr{Cond: CloneExpr(expr.Cond), Then: CloneExpr(expr.Then), Else: CloneExpr(expr.Else)}
	case *CondExpr:
		cases := make([]CondCase, len(expr.Cases))
		for i, c := range expr.Cases {
			cases[i] = CondCase{Guard: CloneExpr(c.Guard), Value: CloneExpr(c.Value)}
		}
		return &CondExpr{Cases: cases, Type: expr.Type}
	case *StructExpr:
		return &StructExpr{Type: expr.Type, Operands: cloneOperands(expr.Operands)}
	case *ArrayExpr:
		return &ArrayExpr{Type: expr.Type, Operands: cloneOperands(expr.Operands)}
	case *VectorExpr:
		return &VectorExpr{Type: expr.Type, Operands: cloneOperands(expr.Operands)}
	case *ConstantExpr:
		other := *expr
		return &other
	case *DerefFailureExpr:
		return &DerefFailureExpr{Type: expr.Type}
	default:
		panic("unreachable")
	}
}

func cloneOperands(operands []Expr) []Expr {
	a := make([]Expr, len(operands))
	for i, op := range operands {
		a[i] = CloneExpr(op)
	}
	return a
}

// CompareExpr returns an integer comparing two expressions.
// The result will be 0 if a==b, -1 if a < b, and +1 if a > b.
func CompareExpr(a, b Expr) int {
	if a == nil && b != nil {
		return -1
	} else if a != nil && b == nil {
		return 1
	} else if a == nil && b == nil {
		return 0
	}

	if ak, bk := exprKind(a), exprKind(b); ak < bk {
		return -1
	} else if ak > bk {
		return 1
	}

	switch a := a.(type) {
	case *SymbolExpr:
		return compareSymbolExpr(a, b.(*SymbolExpr))
	case *MemberExpr:
		b := b.(*MemberExpr)
		if cmp := strings.Compare(a.Component, b.Component); cmp != 0 {
			return cmp
		}
		return CompareExpr(a.Base, b.Base)
	case *IndexExpr:
		b := b.(*IndexExpr)
		if cmp := CompareExpr(a.Array, b.Array); cmp != 0 {
			return cmp
		}
		return CompareExpr(a.Index, b.Index)
	case *DerefExpr:
		return CompareExpr(a.Pointer, b.(*DerefExpr).Pointer)
	case *AddressOfExpr:
		return CompareExpr(a.Object, b.(*AddressOfExpr).Object)
	case *NondetExpr:
		return strings.Compare(a.Type.String(), b.(*NondetExpr).Type.String())
	case *ByteExtractExpr:
		return compareByteExtractExpr(a, b.(*ByteExtractExpr))
	case *EqExpr:
		b := b.(*EqExpr)
		if cmp := CompareExpr(a.LHS, b.LHS); cmp != 0 {
			return cmp
		}
		return CompareExpr(a.RHS, b.RHS)
	case *IfExpr:
		b := b.(*IfExpr)
		if cmp := CompareExpr(a.Cond, b.Cond); cmp != 0 {
			return cmp
		}
		if cmp := CompareExpr(a.Then, b.Then); cmp != 0 {
			return cmp
		}
		return CompareExpr(a.Else, b.Else)
	case *CondExpr:
		return compareCondExpr(a, b.(*CondExpr))
	case *StructExpr:
		return compareOperands(a.Operands, b.(*StructExpr).Operands)
	case *ArrayExpr:
		return compareOperands(a.Operands, b.(*ArrayExpr).Operands)
	case *VectorExpr:
		return compareOperands(a.Operands, b.(*VectorExpr).Operands)
	case *ConstantExpr:
		return compareConstantExpr(a, b.(*ConstantExpr))
	case *DerefFailureExpr:
		return strings.Compare(a.Type.String(), b.(*DerefFailureExpr).Type.String())
	default:
		panic("unreachable")
	}
}

func compareSymbolExpr(a, b *SymbolExpr) int {
	if cmp := strings.Compare(a.Identifier, b.Identifier); cmp != 0 {
		return cmp
	}
	if !a.SSA && b.SSA {
		return -1
	} else if a.SSA && !b.SSA {
		return 1
	}
	return strings.Compare(a.FullIdentifier, b.FullIdentifier)
}

func compareByteExtractExpr(a, b *ByteExtractExpr) int {
	if !a.BigEndian && b.BigEndian {
		return -1
	} else if a.BigEndian && !b.BigEndian {
		return 1
	}
	if cmp := CompareExpr(a.Expr, b.Expr); cmp != 0 {
		return cmp
	}
	return CompareExpr(a.Offset, b.Offset)
}

func compareCondExpr(a, b *CondExpr) int {
	if len(a.Cases) < len(b.Cases) {
		return -1
	} else if len(a.Cases) > len(b.Cases) {
		return 1
	}
	for i := range a.Cases {
		if cmp := CompareExpr(a.Cases[i].Guard, b.Cases[i].Guard); cmp != 0 {
			return cmp
		}
		if cmp := CompareExpr(a.Cases[i].Value, b.Cases[i].Value); cmp != 0 {
			return cmp
		}
	}
	return 0
}

func compareOperands(a, b []Expr) int {
	if len(a) < len(b) {
		return -1
	} else if len(a) > len(b) {
		return 1
	}
	for i := range a {
		if cmp := CompareExpr(a[i], b[i]); cmp != 0 {
			return cmp
		}
	}
	return 0
}

func compareConstantExpr(a, b *ConstantExpr) int {
	if a.Value < b.Value {
		return -1
	} else if a.Value > b.Value {
		return 1
	}
	return strings.Compare(a.Type.String(), b.Type.String())
}

// exprKind returns a numeric value for the type of expression.
// Only used internally for equality checks and sorting.
func exprKind(expr Expr) int {
	switch expr.(type) {
	case *ConstantExpr:
		return 1
	case *SymbolExpr:
		return 2
	case *MemberExpr:
		return 3
	case *IndexExpr:
		return 4
	case *DerefExpr:
		return 5
	case *AddressOfExpr:
		return 6
	case *NondetExpr:
		return 7
	case *ByteExtractExpr:
		return 8
	case *EqExpr:
		return 9
	case *IfExpr:
		return 10
	case *CondExpr:
		return 11
	case *StructExpr:
		return 12
	case *ArrayExpr:
		return 13
	case *VectorExpr:
		return 14
	case *DerefFailureExpr:
		return 15
	default:
		panic("unreachable")
	}
}
