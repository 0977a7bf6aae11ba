// Package binding implements the name-resolution table: an arena of
// declaration records indexed by integer id, with lexical scopes holding
// declaration ids and a parent id used only for lookup.
package binding

import (
	"fmt"

	"github.com/velalang/vela/internal/ast"
)

// DeclID identifies a declaration in the table's arena
type DeclID int32

// ScopeID identifies a lexical scope
type ScopeID int32

// NoDecl indicates no declaration
const NoDecl DeclID = -1

// NoScope indicates no scope (the root scope has no parent)
const NoScope ScopeID = -1

// Mutability is the declared mutability of a binding
type Mutability uint8

const (
	Immutable Mutability = iota
	Mutable
)

// String returns the source-level keyword for the mutability
func (m Mutability) String() string {
	if m == Mutable {
		return "mutable"
	}
	return "immutable"
}

// Decl is a declaration record. It is immutable once created: the named
// value's ownership state lives in the checker, not here.
type Decl struct {
	Name       string
	Mutability Mutability
	Type       *ast.TypeRef // optional annotation, nil if omitted
	Scope      ScopeID
	Line       int
	Column     int
}

// scope holds the declarations of one lexical region. Parent is a weak
// back-reference used only for lookup, never for ownership.
type scope struct {
	parent ScopeID
	decls  []DeclID
	byName map[string]DeclID
	closed bool
}

// Table is the binding table for one checking pass
type Table struct {
	decls  []Decl
	scopes []scope
}

// NewTable creates a table with an open root scope
func NewTable() *Table {
	t := &Table{}
	t.scopes = append(t.scopes, scope{parent: NoScope, byName: make(map[string]DeclID)})
	return t
}

// Root returns the root (global) scope
func (t *Table) Root() ScopeID {
	return 0
}

// EnterScope opens a child scope of parent
func (t *Table) EnterScope(parent ScopeID) ScopeID {
	id := ScopeID(len(t.scopes))
	t.scopes = append(t.scopes, scope{parent: parent, byName: make(map[string]DeclID)})
	return id
}

// EnterFunctionScope opens a function-body scope. Function bodies cannot
// read enclosing local names, so the scope parents to the root only.
func (t *Table) EnterFunctionScope() ScopeID {
	return t.EnterScope(t.Root())
}

// Declare adds a declaration to scope. Redeclaring a name already declared
// in that exact scope is an error; shadowing an outer scope's name is not.
func (t *Table) Declare(sc ScopeID, name string, mut Mutability, typ *ast.TypeRef, line, col int) (DeclID, error) {
	s := &t.scopes[sc]
	if s.closed {
		return NoDecl, fmt.Errorf("scope %d is closed", sc)
	}
	if _, exists := s.byName[name]; exists {
		return NoDecl, fmt.Errorf("'%s' already declared in this scope", name)
	}
	id := DeclID(len(t.decls))
	t.decls = append(t.decls, Decl{
		Name:       name,
		Mutability: mut,
		Type:       typ,
		Scope:      sc,
		Line:       line,
		Column:     col,
	})
	s.decls = append(s.decls, id)
	s.byName[name] = id
	return id, nil
}

// Resolve looks a name up from sc toward the root; first match wins
func (t *Table) Resolve(sc ScopeID, name string) (DeclID, bool) {
	for sc != NoScope {
		s := &t.scopes[sc]
		if id, ok := s.byName[name]; ok {
			return id, true
		}
		sc = s.parent
	}
	return NoDecl, false
}

// ResolveLocal looks a name up in sc only, ignoring ancestors
func (t *Table) ResolveLocal(sc ScopeID, name string) (DeclID, bool) {
	if id, ok := t.scopes[sc].byName[name]; ok {
		return id, true
	}
	return NoDecl, false
}

// ExitScope marks the scope closed. Its declaration records stay in the
// arena so diagnostics emitted later can still name them.
func (t *Table) ExitScope(sc ScopeID) {
	t.scopes[sc].closed = true
}

// Decl returns the declaration record for id
func (t *Table) Decl(id DeclID) *Decl {
	return &t.decls[id]
}

// DeclsIn returns the declaration ids local to sc, in declaration order
func (t *Table) DeclsIn(sc ScopeID) []DeclID {
	return t.scopes[sc].decls
}

// Parent returns the parent of sc, or NoScope for the root
func (t *Table) Parent(sc ScopeID) ScopeID {
	return t.scopes[sc].parent
}

// NestedIn reports whether inner is sc itself or a descendant of sc.
// Used to prove a borrow's scope nests inside its lender's scope.
func (t *Table) NestedIn(inner, outer ScopeID) bool {
	for inner != NoScope {
		if inner == outer {
			return true
		}
		inner = t.scopes[inner].parent
	}
	return false
}

// NumDecls returns the number of declarations in the arena
func (t *Table) NumDecls() int {
	return len(t.decls)
}
