package diagnostic

import (
	"fmt"
	"strings"
)

// Severity represents the severity level of a diagnostic message
type Severity int

const (
	Error Severity = iota
	Warning
	Info
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Kind classifies a diagnostic by the rule it reports
type Kind int

const (
	SyntaxError Kind = iota
	DuplicateDeclarationError
	UnknownNameError
	ImmutableAssignmentError
	UseAfterMoveError
	BorrowedValueMovedError
	UseWhileBorrowedError
	DoubleFreeError
	LoopOwnershipMismatchError
	AmbiguousLifetimeError
	BorrowOutlivesOwnerError
	StyleWarning
)

// String returns the stable name of the diagnostic kind
func (k Kind) String() string {
	switch k {
	case SyntaxError:
		return "syntax-error"
	case DuplicateDeclarationError:
		return "duplicate-declaration"
	case UnknownNameError:
		return "unknown-name"
	case ImmutableAssignmentError:
		return "immutable-assignment"
	case UseAfterMoveError:
		return "use-after-move"
	case BorrowedValueMovedError:
		return "borrowed-value-moved"
	case UseWhileBorrowedError:
		return "use-while-borrowed"
	case DoubleFreeError:
		return "double-free"
	case LoopOwnershipMismatchError:
		return "loop-ownership-mismatch"
	case AmbiguousLifetimeError:
		return "ambiguous-lifetime"
	case BorrowOutlivesOwnerError:
		return "borrow-outlives-owner"
	case StyleWarning:
		return "style"
	default:
		return "unknown"
	}
}

// Span locates a diagnostic in the source text
type Span struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Length int `json:"length"`
}

// Diagnostic represents a single checker error, warning, or info message
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Message  string
	Span     Span
	File     string // optional file path (for multi-unit checking)
	Hint     string // optional suggestion
}

// Diagnostics manages an ordered collection of diagnostic messages.
// Order matches order of detection during the checking pass.
type Diagnostics struct {
	items []Diagnostic
}

// New creates a new empty Diagnostics collection
func New() *Diagnostics {
	return &Diagnostics{
		items: make([]Diagnostic, 0),
	}
}

// Report appends a fully-formed diagnostic. It never fails.
func (d *Diagnostics) Report(diag Diagnostic) {
	d.items = append(d.items, diag)
}

// Errorf adds an error diagnostic with formatted message
func (d *Diagnostics) Errorf(kind Kind, line, col int, format string, args ...interface{}) {
	d.items = append(d.items, Diagnostic{
		Kind:     kind,
		Severity: Error,
		Message:  fmt.Sprintf(format, args...),
		Span:     Span{Line: line, Column: col, Length: 1},
	})
}

// ErrorfSpan adds an error diagnostic covering length source characters
func (d *Diagnostics) ErrorfSpan(kind Kind, line, col, length int, format string, args ...interface{}) {
	d.items = append(d.items, Diagnostic{
		Kind:     kind,
		Severity: Error,
		Message:  fmt.Sprintf(format, args...),
		Span:     Span{Line: line, Column: col, Length: length},
	})
}

// Warningf adds a warning diagnostic with formatted message
func (d *Diagnostics) Warningf(kind Kind, line, col int, format string, args ...interface{}) {
	d.items = append(d.items, Diagnostic{
		Kind:     kind,
		Severity: Warning,
		Message:  fmt.Sprintf(format, args...),
		Span:     Span{Line: line, Column: col, Length: 1},
	})
}

// ErrorWithHint adds an error diagnostic with an optional hint
func (d *Diagnostics) ErrorWithHint(kind Kind, line, col int, msg, hint string) {
	d.items = append(d.items, Diagnostic{
		Kind:     kind,
		Severity: Error,
		Message:  msg,
		Span:     Span{Line: line, Column: col, Length: 1},
		Hint:     hint,
	})
}

// WarningWithHint adds a warning diagnostic with an optional hint
func (d *Diagnostics) WarningWithHint(kind Kind, line, col int, msg, hint string) {
	d.items = append(d.items, Diagnostic{
		Kind:     kind,
		Severity: Warning,
		Message:  msg,
		Span:     Span{Line: line, Column: col, Length: 1},
		Hint:     hint,
	})
}

// HasErrors returns true if there are any error-level diagnostics
func (d *Diagnostics) HasErrors() bool {
	for _, item := range d.items {
		if item.Severity == Error {
			return true
		}
	}
	return false
}

// HasKind returns true if any diagnostic of the given kind was reported
func (d *Diagnostics) HasKind(kind Kind) bool {
	for _, item := range d.items {
		if item.Kind == kind {
			return true
		}
	}
	return false
}

// OfKind returns the diagnostics of the given kind, in detection order
func (d *Diagnostics) OfKind(kind Kind) []Diagnostic {
	var out []Diagnostic
	for _, item := range d.items {
		if item.Kind == kind {
			out = append(out, item)
		}
	}
	return out
}

// Errors returns only the error-level diagnostics
func (d *Diagnostics) Errors() []Diagnostic {
	errors := make([]Diagnostic, 0)
	for _, item := range d.items {
		if item.Severity == Error {
			errors = append(errors, item)
		}
	}
	return errors
}

// All returns all diagnostics regardless of severity
func (d *Diagnostics) All() []Diagnostic {
	return d.items
}

// Count returns the total number of diagnostics
func (d *Diagnostics) Count() int {
	return len(d.items)
}

// ErrorCount returns the number of error-level diagnostics
func (d *Diagnostics) ErrorCount() int {
	count := 0
	for _, item := range d.items {
		if item.Severity == Error {
			count++
		}
	}
	return count
}

// WarningCount returns the number of warning-level diagnostics
func (d *Diagnostics) WarningCount() int {
	count := 0
	for _, item := range d.items {
		if item.Severity == Warning {
			count++
		}
	}
	return count
}

// Merge appends another collection's diagnostics, tagging them with file
func (d *Diagnostics) Merge(other *Diagnostics, file string) {
	for _, item := range other.All() {
		if item.File == "" {
			item.File = file
		}
		d.items = append(d.items, item)
	}
}

// Format returns human-readable diagnostic messages.
// Output format:
//
//	error[filename:3:10]: cannot use 'p1' after move (use-after-move)
//	  hint: value was moved on line 2
func (d *Diagnostics) Format(filename string) string {
	if len(d.items) == 0 {
		return ""
	}

	var builder strings.Builder
	for i, item := range d.items {
		fileToUse := filename
		if item.File != "" {
			fileToUse = item.File
		}

		builder.WriteString(fmt.Sprintf("%s[%s:%d:%d]: %s (%s)",
			item.Severity.String(),
			fileToUse,
			item.Span.Line,
			item.Span.Column,
			item.Message,
			item.Kind.String(),
		))

		if item.Hint != "" {
			builder.WriteString(fmt.Sprintf("\n  hint: %s", item.Hint))
		}

		if i < len(d.items)-1 {
			builder.WriteString("\n")
		}
	}

	return builder.String()
}

// Clear removes all diagnostics from the collection
func (d *Diagnostics) Clear() {
	d.items = make([]Diagnostic, 0)
}
