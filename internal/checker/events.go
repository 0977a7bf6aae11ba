package checker

import "github.com/velalang/vela/internal/binding"

// EventKind identifies the type of ownership event
type EventKind uint8

const (
	// EvMove indicates ownership transfer out of a declaration
	EvMove EventKind = iota
	// EvBorrowStart indicates the beginning of a borrow
	EvBorrowStart
	// EvBorrowEnd indicates the end of a borrow
	EvBorrowEnd
	EvRead
	EvWrite
	// EvDelete is an explicit heap release
	EvDelete
	// EvImplicitRelease is the synthesized release of an owned value at
	// scope exit. Never reported as a diagnostic.
	EvImplicitRelease
)

func (k EventKind) String() string {
	switch k {
	case EvMove:
		return "move"
	case EvBorrowStart:
		return "borrow_start"
	case EvBorrowEnd:
		return "borrow_end"
	case EvRead:
		return "read"
	case EvWrite:
		return "write"
	case EvDelete:
		return "delete"
	case EvImplicitRelease:
		return "implicit_release"
	default:
		return "unknown"
	}
}

// Event is one entry of the ownership trace. The trace is the
// deterministic record of every state transition the checking pass made,
// in program order.
type Event struct {
	Kind   EventKind
	Decl   binding.DeclID
	Name   string
	Line   int
	Column int
}
