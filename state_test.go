package pathsym_test

import (
	"strings"
	"testing"

	"github.com/pathsym/pathsym"
)

func TestState_Fork(t *testing.T) {
	// Variable states are copy-on-write: a write on the child path must not
	// leak into the parent.
	t.Run("Isolation", func(t *testing.T) {
		parent := NewState(t)
		a := MustRead(t, parent, symbol("x", i32), false)

		child := parent.Fork()
		child.RecordWrite(parent.Config().VarMap.Find("x"))

		b := MustRead(t, child, symbol("x", i32), false)
		if got, want := b.(*pathsym.SymbolExpr).Identifier, "x#1"; got != want {
			t.Fatalf("unexpected child identifier: %s", got)
		}

		// The parent still sees its own incarnation.
		c := MustRead(t, parent, symbol("x", i32), false)
		if pathsym.CompareExpr(a, c) != 0 {
			t.Fatalf("parent state changed: %s != %s", a, c)
		}
	})

	// Numbering registries stay shared so incarnations minted on different
	// paths never collide.
	t.Run("SharedNumbering", func(t *testing.T) {
		parent := NewState(t)
		child := parent.Fork()

		a := MustRead(t, parent, &pathsym.NondetExpr{Type: i32}, false)
		b := MustRead(t, child, &pathsym.NondetExpr{Type: i32}, false)

		if got, want := a.(*pathsym.SymbolExpr).Identifier, "nondet::0#0"; got != want {
			t.Fatalf("unexpected identifier: %s", got)
		}
		if got, want := b.(*pathsym.SymbolExpr).Identifier, "nondet::1#0"; got != want {
			t.Fatalf("unexpected identifier: %s", got)
		}
		if got, want := parent.Config().Symbols.Len(), 2; got != want {
			t.Fatalf("unexpected registry size: %d", got)
		}
	})
}

func TestState_RecordWrite(t *testing.T) {
	// A propagated value is dropped along with the incarnation.
	s := NewState(t)
	if result := MustRead(t, s, symbol("x", i32), true); !pathsym.IsConstantExpr(result) {
		t.Fatalf("expected propagated default, got %s", result)
	}

	s.RecordWrite(s.Config().VarMap.Find("x"))

	result := MustRead(t, s, symbol("x", i32), false)
	if got, want := result.(*pathsym.SymbolExpr).Identifier, "x#1"; got != want {
		t.Fatalf("unexpected identifier: %s", got)
	}
}

func TestState_Dump(t *testing.T) {
	s := NewState(t)
	MustRead(t, s, symbol("x", i32), true)
	MustRead(t, s, symbol("y", i32), false)

	dump := s.Dump()
	for _, want := range []string{"x:", "ssa=x#0", "value=(const 0 i32)", "y:", "ssa=y#0"} {
		if !strings.Contains(dump, want) {
			t.Fatalf("dump missing %q:\n%s", want, dump)
		}
	}
}
