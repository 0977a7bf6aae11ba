package checker

import (
	"fmt"

	"github.com/velalang/vela/internal/binding"
)

// StateKind is the coarse ownership state of a declaration
type StateKind uint8

const (
	StateOwned StateKind = iota
	StateMoved
	StateFreed
	StateBorrowed
)

// State is the per-declaration ownership state. Moved and Freed are
// terminal: no further reads, borrows, or moves are permitted.
type State struct {
	Kind    StateKind
	Mutable bool // valid when Kind == StateBorrowed
	Count   int  // outstanding shared borrows when Kind == StateBorrowed
}

// String returns a human-readable representation of the state
func (s State) String() string {
	switch s.Kind {
	case StateOwned:
		return "owned"
	case StateMoved:
		return "moved"
	case StateFreed:
		return "freed"
	case StateBorrowed:
		if s.Mutable {
			return "borrowed (&mut)"
		}
		return fmt.Sprintf("borrowed (&, %d)", s.Count)
	default:
		return "?"
	}
}

// usable reports whether the value can still be read, borrowed, or moved
func (s State) usable() bool {
	return s.Kind != StateMoved && s.Kind != StateFreed
}

// BorrowKind distinguishes between shared and mutable borrows
type BorrowKind uint8

const (
	// BorrowShared represents an immutable borrow (&T)
	BorrowShared BorrowKind = iota
	// BorrowMut represents a mutable borrow (&mut T)
	BorrowMut
)

func (k BorrowKind) String() string {
	switch k {
	case BorrowShared:
		return "&"
	case BorrowMut:
		return "&mut"
	default:
		return "?"
	}
}

// Borrow records a non-owning reference: Lender is borrowed for the
// lifetime of Scope. The record never extends the lender's lifetime; the
// checker proves Scope nests inside the lender's scope instead.
type Borrow struct {
	Lender binding.DeclID
	Kind   BorrowKind
	Scope  binding.ScopeID
	Line   int
	Column int
}
