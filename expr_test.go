package pathsym_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pathsym/pathsym"
)

func TestExprType(t *testing.T) {
	i32 := &pathsym.IntType{Width: 32, Signed: true}

	t.Run("Symbol", func(t *testing.T) {
		typ := pathsym.ExprType(&pathsym.SymbolExpr{Identifier: "x", Type: i32})
		if typ != i32 {
			t.Fatalf("unexpected type: %s", typ)
		}
	})
	t.Run("Member", func(t *testing.T) {
		expr := &pathsym.MemberExpr{
			Base:      &pathsym.SymbolExpr{Identifier: "s", Type: &pathsym.StructType{}},
			Component: "f",
			Type:      i32,
		}
		if typ := pathsym.ExprType(expr); typ != i32 {
			t.Fatalf("unexpected type: %s", typ)
		}
	})
	t.Run("Eq", func(t *testing.T) {
		expr := &pathsym.EqExpr{
			LHS: &pathsym.SymbolExpr{Identifier: "x", Type: i32},
			RHS: &pathsym.ConstantExpr{Value: 1, Type: i32},
		}
		if _, ok := pathsym.ExprType(expr).(*pathsym.BoolType); !ok {
			t.Fatalf("unexpected type: %s", pathsym.ExprType(expr))
		}
	})
	t.Run("If", func(t *testing.T) {
		expr := &pathsym.IfExpr{
			Cond: pathsym.NewBoolConstantExpr(true),
			Then: &pathsym.ConstantExpr{Value: 1, Type: i32},
			Else: &pathsym.ConstantExpr{Value: 2, Type: i32},
		}
		if typ := pathsym.ExprType(expr); typ != i32 {
			t.Fatalf("unexpected type: %s", typ)
		}
	})
}

func TestNewEqExpr(t *testing.T) {
	i32 := &pathsym.IntType{Width: 32, Signed: true}

	t.Run("ConstantFold", func(t *testing.T) {
		expr := pathsym.NewEqExpr(
			&pathsym.ConstantExpr{Value: 1, Type: i32},
			&pathsym.ConstantExpr{Value: 1, Type: i32},
		)
		if c, ok := expr.(*pathsym.ConstantExpr); !ok || !c.IsTrue() {
			t.Fatalf("expected constant true, got %s", expr)
		}
	})
	t.Run("ConstantFoldFalse", func(t *testing.T) {
		expr := pathsym.NewEqExpr(
			&pathsym.ConstantExpr{Value: 1, Type: i32},
			&pathsym.ConstantExpr{Value: 2, Type: i32},
		)
		if c, ok := expr.(*pathsym.ConstantExpr); !ok || !c.IsFalse() {
			t.Fatalf("expected constant false, got %s", expr)
		}
	})
	t.Run("IdenticalOperands", func(t *testing.T) {
		expr := pathsym.NewEqExpr(
			&pathsym.SymbolExpr{Identifier: "x", Type: i32},
			&pathsym.SymbolExpr{Identifier: "x", Type: i32},
		)
		if c, ok := expr.(*pathsym.ConstantExpr); !ok || !c.IsTrue() {
			t.Fatalf("expected constant true, got %s", expr)
		}
	})
	t.Run("Symbolic", func(t *testing.T) {
		expr := pathsym.NewEqExpr(
			&pathsym.SymbolExpr{Identifier: "x", Type: i32},
			&pathsym.ConstantExpr{Value: 1, Type: i32},
		)
		if _, ok := expr.(*pathsym.EqExpr); !ok {
			t.Fatalf("expected eq expression, got %s", expr)
		}
	})
}

func TestCloneExpr(t *testing.T) {
	i32 := &pathsym.IntType{Width: 32, Signed: true}

	original := &pathsym.MemberExpr{
		Base: &pathsym.IndexExpr{
			Array: &pathsym.SymbolExpr{Identifier: "a", Type: pathsym.NewUnboundedArrayType(i32)},
			Index: &pathsym.ConstantExpr{Value: 3, Type: i32},
			Type:  i32,
		},
		Component: "f",
		Type:      i32,
	}

	clone := pathsym.CloneExpr(original)
	if pathsym.CompareExpr(original, clone) != 0 {
		t.Fatalf("clone differs: %s != %s", original, clone)
	}

	// Mutating the clone must not affect the original.
	clone.(*pathsym.MemberExpr).Base.(*pathsym.IndexExpr).Index = &pathsym.ConstantExpr{Value: 4, Type: i32}
	if got, want := original.Base.(*pathsym.IndexExpr).Index.(*pathsym.ConstantExpr).Value, uint64(3); got != want {
		t.Fatalf("original mutated: %d != %d", got, want)
	}
}

func TestCompareExpr(t *testing.T) {
	i32 := &pathsym.IntType{Width: 32, Signed: true}

	t.Run("Nil", func(t *testing.T) {
		if cmp := pathsym.CompareExpr(nil, nil); cmp != 0 {
			t.Fatalf("unexpected compare: %d", cmp)
		}
		if cmp := pathsym.CompareExpr(nil, pathsym.NewBoolConstantExpr(true)); cmp != -1 {
			t.Fatalf("unexpected compare: %d", cmp)
		}
	})
	t.Run("KindOrder", func(t *testing.T) {
		a := &pathsym.ConstantExpr{Value: 0, Type: i32}
		b := &pathsym.SymbolExpr{Identifier: "x", Type: i32}
		if cmp := pathsym.CompareExpr(a, b); cmp != -1 {
			t.Fatalf("unexpected compare: %d", cmp)
		}
	})
	t.Run("SymbolSSA", func(t *testing.T) {
		a := &pathsym.SymbolExpr{Identifier: "x", Type: i32}
		b := &pathsym.SymbolExpr{Identifier: "x", Type: i32, SSA: true}
		if cmp := pathsym.CompareExpr(a, b); cmp != -1 {
			t.Fatalf("unexpected compare: %d", cmp)
		}
	})
	t.Run("Constant", func(t *testing.T) {
		a := &pathsym.ConstantExpr{Value: 1, Type: i32}
		b := &pathsym.ConstantExpr{Value: 2, Type: i32}
		if cmp := pathsym.CompareExpr(a, b); cmp != -1 {
			t.Fatalf("unexpected compare: %d", cmp)
		}
	})
}

func TestExprString(t *testing.T) {
	i32 := &pathsym.IntType{Width: 32, Signed: true}

	expr := &pathsym.IndexExpr{
		Array: &pathsym.SymbolExpr{Identifier: "a", Type: pathsym.NewUnboundedArrayType(i32)},
		Index: &pathsym.ConstantExpr{Value: 0, Type: i32},
		Type:  i32,
	}
	if diff := cmp.Diff(`(index (symbol a) (const 0 i32))`, expr.String()); diff != "" {
		t.Fatal(diff)
	}
}
