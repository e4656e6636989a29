package pathsym_test

import (
	"testing"

	"github.com/pathsym/pathsym"
)

func TestFold(t *testing.T) {
	t.Run("EqConstants", func(t *testing.T) {
		expr := &pathsym.EqExpr{
			LHS: &pathsym.ConstantExpr{Value: 3, Type: i32},
			RHS: &pathsym.ConstantExpr{Value: 3, Type: i32},
		}
		result := pathsym.Fold(expr)
		if c, ok := result.(*pathsym.ConstantExpr); !ok || !c.IsTrue() {
			t.Fatalf("expected true, got %s", result)
		}
	})

	t.Run("EqIdentical", func(t *testing.T) {
		expr := &pathsym.EqExpr{LHS: symbol("x", i32), RHS: symbol("x", i32)}
		result := pathsym.Fold(expr)
		if c, ok := result.(*pathsym.ConstantExpr); !ok || !c.IsTrue() {
			t.Fatalf("expected true, got %s", result)
		}
	})

	t.Run("EqSymbolic", func(t *testing.T) {
		expr := &pathsym.EqExpr{LHS: symbol("x", i32), RHS: symbol("y", i32)}
		if result := pathsym.Fold(expr); result != pathsym.Expr(expr) {
			t.Fatalf("expected unchanged, got %s", result)
		}
	})

	t.Run("IfConstantCond", func(t *testing.T) {
		expr := &pathsym.IfExpr{
			Cond: pathsym.NewBoolConstantExpr(false),
			Then: symbol("a", i32),
			Else: symbol("b", i32),
		}
		result := pathsym.Fold(expr)
		if got, want := result.(*pathsym.SymbolExpr).Identifier, "b"; got != want {
			t.Fatalf("unexpected result: %s", result)
		}
	})

	// The condition folds first, then selects a branch.
	t.Run("IfNestedCond", func(t *testing.T) {
		expr := &pathsym.IfExpr{
			Cond: &pathsym.EqExpr{
				LHS: &pathsym.ConstantExpr{Value: 1, Type: i32},
				RHS: &pathsym.ConstantExpr{Value: 1, Type: i32},
			},
			Then: symbol("a", i32),
			Else: symbol("b", i32),
		}
		result := pathsym.Fold(expr)
		if got, want := result.(*pathsym.SymbolExpr).Identifier, "a"; got != want {
			t.Fatalf("unexpected result: %s", result)
		}
	})

	t.Run("CondDropFalseGuards", func(t *testing.T) {
		expr := &pathsym.CondExpr{
			Cases: []pathsym.CondCase{
				{Guard: pathsym.NewBoolConstantExpr(false), Value: symbol("a", i32)},
				{Guard: symbol("g", &pathsym.BoolType{}), Value: symbol("b", i32)},
			},
			Type: i32,
		}
		result := pathsym.Fold(expr)
		cond, ok := result.(*pathsym.CondExpr)
		if !ok {
			t.Fatalf("expected conditional, got %s", result)
		}
		if got, want := len(cond.Cases), 1; got != want {
			t.Fatalf("unexpected case count: %d", got)
		}
		if got, want := cond.Cases[0].Value.(*pathsym.SymbolExpr).Identifier, "b"; got != want {
			t.Fatalf("unexpected surviving case: %s", got)
		}
	})

	t.Run("CondTrueGuardSelects", func(t *testing.T) {
		expr := &pathsym.CondExpr{
			Cases: []pathsym.CondCase{
				{Guard: pathsym.NewBoolConstantExpr(false), Value: symbol("a", i32)},
				{Guard: pathsym.NewBoolConstantExpr(true), Value: symbol("b", i32)},
				{Guard: symbol("g", &pathsym.BoolType{}), Value: symbol("c", i32)},
			},
			Type: i32,
		}
		result := pathsym.Fold(expr)
		if got, want := result.(*pathsym.SymbolExpr).Identifier, "b"; got != want {
			t.Fatalf("unexpected result: %s", result)
		}
	})

	t.Run("IndexIntoConstructor", func(t *testing.T) {
		arrayType := pathsym.NewArrayType(i32, 2, u64)
		expr := &pathsym.IndexExpr{
			Array: &pathsym.ArrayExpr{
				Type:     arrayType,
				Operands: []pathsym.Expr{symbol("a", i32), symbol("b", i32)},
			},
			Index: &pathsym.ConstantExpr{Value: 1, Type: u64},
			Type:  i32,
		}
		result := pathsym.Fold(expr)
		if got, want := result.(*pathsym.SymbolExpr).Identifier, "b"; got != want {
			t.Fatalf("unexpected result: %s", result)
		}
	})

	t.Run("IndexOutOfRange", func(t *testing.T) {
		arrayType := pathsym.NewArrayType(i32, 1, u64)
		expr := &pathsym.IndexExpr{
			Array: &pathsym.ArrayExpr{
				Type:     arrayType,
				Operands: []pathsym.Expr{symbol("a", i32)},
			},
			Index: &pathsym.ConstantExpr{Value: 5, Type: u64},
			Type:  i32,
		}
		if _, ok := pathsym.Fold(expr).(*pathsym.IndexExpr); !ok {
			t.Fatal("expected out-of-range index to stay unchanged")
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		expr := &pathsym.IfExpr{
			Cond: symbol("g", &pathsym.BoolType{}),
			Then: &pathsym.EqExpr{
				LHS: &pathsym.ConstantExpr{Value: 1, Type: i32},
				RHS: &pathsym.ConstantExpr{Value: 2, Type: i32},
			},
			Else: symbol("b", &pathsym.BoolType{}),
		}
		once := pathsym.Fold(expr)
		twice := pathsym.Fold(pathsym.CloneExpr(once))
		if pathsym.CompareExpr(once, twice) != 0 {
			t.Fatalf("fold not idempotent: %s != %s", once, twice)
		}
	})
}
