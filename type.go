package pathsym

import (
	"bytes"
	"fmt"
	"math"
)

// Type represents the program-level type of an expression.
// Named types and typedefs are assumed to be resolved by the surrounding
// system's namespace lookup; all types here are structural.
type Type interface {
	typ()
	String() string
}

func (*BoolType) typ()    {}
func (*IntType) typ()     {}
func (*PointerType) typ() {}
func (*StructType) typ()  {}
func (*ArrayType) typ()   {}
func (*VectorType) typ()  {}
func (*UnionType) typ()   {}
func (*FuncType) typ()    {}

// BoolType represents a single-bit boolean type.
type BoolType struct{}

func (*BoolType) String() string { return "bool" }

// IntType represents a fixed-width integer type.
type IntType struct {
	Width  uint
	Signed bool
}

// String returns the string representation of the type.
func (t *IntType) String() string {
	if t.Signed {
		return fmt.Sprintf("i%d", t.Width)
	}
	return fmt.Sprintf("u%d", t.Width)
}

// PointerType represents a pointer to another type.
type PointerType struct {
	To Type
}

// String returns the string representation of the type.
func (t *PointerType) String() string { return "*" + t.To.String() }

// StructComponent represents one named, typed component of a struct or union.
type StructComponent struct {
	Name string
	Type Type
}

// StructType represents a compound type with ordered, named components.
type StructType struct {
	Components []StructComponent
}

// String returns the string representation of the type.
func (t *StructType) String() string { return componentsString("struct", t.Components) }

// UnionType represents an overlapping compound type. Union accesses must be
// lowered to byte-extract before reaching this package.
type UnionType struct {
	Components []StructComponent
}

// String returns the string representation of the type.
func (t *UnionType) String() string { return componentsString("union", t.Components) }

func componentsString(kind string, components []StructComponent) string {
	var buf bytes.Buffer
	buf.WriteString(kind)
	buf.WriteRune('{')
	for i, c := range components {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s %s", c.Name, c.Type)
	}
	buf.WriteRune('}')
	return buf.String()
}

// ArrayType represents an array type. Size is either a constant expression or
// nil for an unbounded array.
type ArrayType struct {
	Elem Type
	Size Expr
}

// NewArrayType returns a bounded array type of n elements indexed by typ.
func NewArrayType(elem Type, n uint64, indexType Type) *ArrayType {
	return &ArrayType{Elem: elem, Size: &ConstantExpr{Value: n, Type: indexType}}
}

// NewUnboundedArrayType returns an array type without a known size.
func NewUnboundedArrayType(elem Type) *ArrayType {
	return &ArrayType{Elem: elem}
}

// String returns the string representation of the type.
func (t *ArrayType) String() string {
	if size, ok := t.Size.(*ConstantExpr); ok {
		return fmt.Sprintf("%s[%d]", t.Elem, size.Value)
	}
	return t.Elem.String() + "[]"
}

// VectorType represents a fixed-size vector type. Unlike arrays, the size is
// required to be constant.
type VectorType struct {
	Elem Type
	Size Expr
}

// NewVectorType returns a vector type of n elements indexed by typ.
func NewVectorType(elem Type, n uint64, indexType Type) *VectorType {
	return &VectorType{Elem: elem, Size: &ConstantExpr{Value: n, Type: indexType}}
}

// String returns the string representation of the type.
func (t *VectorType) String() string {
	if size, ok := t.Size.(*ConstantExpr); ok {
		return fmt.Sprintf("vector(%s, %d)", t.Elem, size.Value)
	}
	return fmt.Sprintf("vector(%s, ?)", t.Elem)
}

// FuncType represents code or a mathematical function. Expressions of this
// type are never resolved to variables.
type FuncType struct{}

func (*FuncType) String() string { return "code" }

// IsUnboundedArray returns true if typ is an array type without a constant size.
func IsUnboundedArray(typ Type) bool {
	array, ok := typ.(*ArrayType)
	if !ok {
		return false
	}
	_, constant := array.Size.(*ConstantExpr)
	return !constant
}

// constantSize converts a constant size expression to an int.
// Returns ErrSizeConversion if the value does not fit.
func constantSize(size Expr) (int, error) {
	c, ok := size.(*ConstantExpr)
	if !ok || c.Value > uint64(math.MaxInt) {
		return 0, fmt.Errorf("%w: %s", ErrSizeConversion, size)
	}
	return int(c.Value), nil
}
