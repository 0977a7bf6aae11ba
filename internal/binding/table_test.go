package binding

import (
	"testing"
)

func TestDeclareAndResolve(t *testing.T) {
	tab := NewTable()

	id, err := tab.Declare(tab.Root(), "x", Immutable, nil, 1, 1)
	if err != nil {
		t.Fatalf("declare failed: %v", err)
	}

	got, ok := tab.Resolve(tab.Root(), "x")
	if !ok || got != id {
		t.Errorf("resolve returned (%d, %v), want (%d, true)", got, ok, id)
	}

	d := tab.Decl(id)
	if d.Name != "x" || d.Mutability != Immutable || d.Scope != tab.Root() {
		t.Errorf("wrong declaration record: %+v", d)
	}
}

func TestDuplicateInSameScope(t *testing.T) {
	tab := NewTable()

	if _, err := tab.Declare(tab.Root(), "x", Immutable, nil, 1, 1); err != nil {
		t.Fatalf("first declare failed: %v", err)
	}
	if _, err := tab.Declare(tab.Root(), "x", Mutable, nil, 2, 1); err == nil {
		t.Error("expected error for duplicate declaration")
	}
}

func TestShadowingResolvesInnermost(t *testing.T) {
	tab := NewTable()

	outer, _ := tab.Declare(tab.Root(), "x", Immutable, nil, 1, 1)
	child := tab.EnterScope(tab.Root())
	inner, _ := tab.Declare(child, "x", Mutable, nil, 2, 1)

	got, ok := tab.Resolve(child, "x")
	if !ok || got != inner {
		t.Errorf("inner resolve returned %d, want %d", got, inner)
	}

	got, ok = tab.Resolve(tab.Root(), "x")
	if !ok || got != outer {
		t.Errorf("outer resolve returned %d, want %d", got, outer)
	}
}

func TestResolveWalksToRoot(t *testing.T) {
	tab := NewTable()

	id, _ := tab.Declare(tab.Root(), "global", Immutable, nil, 1, 1)
	mid := tab.EnterScope(tab.Root())
	leaf := tab.EnterScope(mid)

	got, ok := tab.Resolve(leaf, "global")
	if !ok || got != id {
		t.Errorf("resolve from leaf returned (%d, %v), want (%d, true)", got, ok, id)
	}
}

func TestResolveLocalIgnoresParents(t *testing.T) {
	tab := NewTable()

	tab.Declare(tab.Root(), "x", Immutable, nil, 1, 1)
	child := tab.EnterScope(tab.Root())

	if _, ok := tab.ResolveLocal(child, "x"); ok {
		t.Error("ResolveLocal found a name declared in the parent")
	}
}

func TestFunctionScopeParentsToRoot(t *testing.T) {
	tab := NewTable()

	tab.Declare(tab.Root(), "global", Immutable, nil, 1, 1)
	block := tab.EnterScope(tab.Root())
	tab.Declare(block, "local", Immutable, nil, 2, 1)

	fnScope := tab.EnterFunctionScope()

	if _, ok := tab.Resolve(fnScope, "local"); ok {
		t.Error("function scope must not see enclosing block locals")
	}
	if _, ok := tab.Resolve(fnScope, "global"); !ok {
		t.Error("function scope must see root globals")
	}
}

func TestClosedScopeRejectsDeclare(t *testing.T) {
	tab := NewTable()

	child := tab.EnterScope(tab.Root())
	tab.ExitScope(child)

	if _, err := tab.Declare(child, "x", Immutable, nil, 1, 1); err == nil {
		t.Error("expected error declaring into a closed scope")
	}
}

func TestRecordsSurviveScopeExit(t *testing.T) {
	tab := NewTable()

	child := tab.EnterScope(tab.Root())
	id, _ := tab.Declare(child, "x", Immutable, nil, 1, 1)
	tab.ExitScope(child)

	d := tab.Decl(id)
	if d == nil || d.Name != "x" {
		t.Error("declaration record lost after scope exit")
	}
	if decls := tab.DeclsIn(child); len(decls) != 1 || decls[0] != id {
		t.Errorf("wrong decls for closed scope: %v", decls)
	}
}

func TestNestedIn(t *testing.T) {
	tab := NewTable()

	mid := tab.EnterScope(tab.Root())
	leaf := tab.EnterScope(mid)
	sibling := tab.EnterScope(tab.Root())

	if !tab.NestedIn(leaf, tab.Root()) {
		t.Error("leaf should nest in root")
	}
	if !tab.NestedIn(leaf, mid) {
		t.Error("leaf should nest in mid")
	}
	if !tab.NestedIn(mid, mid) {
		t.Error("a scope nests in itself")
	}
	if tab.NestedIn(mid, leaf) {
		t.Error("mid must not nest in leaf")
	}
	if tab.NestedIn(sibling, mid) {
		t.Error("sibling must not nest in mid")
	}
}

func TestDeclsInPreservesOrder(t *testing.T) {
	tab := NewTable()

	a, _ := tab.Declare(tab.Root(), "a", Immutable, nil, 1, 1)
	b, _ := tab.Declare(tab.Root(), "b", Immutable, nil, 2, 1)
	c, _ := tab.Declare(tab.Root(), "c", Immutable, nil, 3, 1)

	decls := tab.DeclsIn(tab.Root())
	want := []DeclID{a, b, c}
	if len(decls) != len(want) {
		t.Fatalf("wrong decl count: %d", len(decls))
	}
	for i := range want {
		if decls[i] != want[i] {
			t.Errorf("decls[%d] = %d, want %d", i, decls[i], want[i])
		}
	}
}

func TestNumDecls(t *testing.T) {
	tab := NewTable()
	if tab.NumDecls() != 0 {
		t.Errorf("fresh table has %d decls", tab.NumDecls())
	}
	tab.Declare(tab.Root(), "x", Immutable, nil, 1, 1)
	tab.Declare(tab.Root(), "y", Immutable, nil, 2, 1)
	if tab.NumDecls() != 2 {
		t.Errorf("expected 2 decls, got %d", tab.NumDecls())
	}
}
