package diagnostic

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorfAndCounts(t *testing.T) {
	d := New()
	d.Errorf(UseAfterMoveError, 3, 10, "cannot use '%s' after move", "p1")
	d.Warningf(StyleWarning, 1, 1, "'%s' is declared but never used", "x")

	assert.True(t, d.HasErrors())
	assert.Equal(t, 2, d.Count())
	assert.Equal(t, 1, d.ErrorCount())
	assert.Equal(t, 1, d.WarningCount())
	assert.Len(t, d.Errors(), 1)
}

func TestHasKindAndOfKind(t *testing.T) {
	d := New()
	d.Errorf(DoubleFreeError, 5, 1, "double free of 's'")
	d.Errorf(UseAfterMoveError, 6, 1, "cannot use 's'")

	assert.True(t, d.HasKind(DoubleFreeError))
	assert.False(t, d.HasKind(LoopOwnershipMismatchError))
	assert.Len(t, d.OfKind(DoubleFreeError), 1)
}

func TestFormat(t *testing.T) {
	d := New()
	d.Errorf(UseAfterMoveError, 3, 10, "cannot use 'p1' after move")

	got := d.Format("main.vela")
	assert.Equal(t, "error[main.vela:3:10]: cannot use 'p1' after move (use-after-move)", got)
}

func TestFormatWithHint(t *testing.T) {
	d := New()
	d.ErrorWithHint(ImmutableAssignmentError, 2, 1,
		"cannot assign to immutable 'x'", "declare 'x' as mutable")

	got := d.Format("main.vela")
	require.Contains(t, got, "error[main.vela:2:1]: cannot assign to immutable 'x' (immutable-assignment)")
	require.Contains(t, got, "\n  hint: declare 'x' as mutable")
}

func TestFormatEmpty(t *testing.T) {
	assert.Equal(t, "", New().Format("main.vela"))
}

func TestFormatPrefersItemFile(t *testing.T) {
	other := New()
	other.Errorf(UnknownNameError, 1, 1, "unknown name 'y'")

	d := New()
	d.Errorf(SyntaxError, 1, 1, "expected SEMICOLON, got EOF")
	d.Merge(other, "lib.vela")

	got := d.Format("main.vela")
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "main.vela")
	assert.Contains(t, lines[1], "lib.vela")
}

func TestKindNames(t *testing.T) {
	tests := []struct {
		kind Kind
		name string
	}{
		{SyntaxError, "syntax-error"},
		{DuplicateDeclarationError, "duplicate-declaration"},
		{UnknownNameError, "unknown-name"},
		{ImmutableAssignmentError, "immutable-assignment"},
		{UseAfterMoveError, "use-after-move"},
		{BorrowedValueMovedError, "borrowed-value-moved"},
		{UseWhileBorrowedError, "use-while-borrowed"},
		{DoubleFreeError, "double-free"},
		{LoopOwnershipMismatchError, "loop-ownership-mismatch"},
		{AmbiguousLifetimeError, "ambiguous-lifetime"},
		{BorrowOutlivesOwnerError, "borrow-outlives-owner"},
		{StyleWarning, "style"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.name, tt.kind.String())
	}
}

func TestMarshalJSON(t *testing.T) {
	d := New()
	d.ErrorfSpan(UseAfterMoveError, 3, 10, 2, "cannot use 'p1' after move")

	data, err := json.Marshal(d)
	require.NoError(t, err)

	var report struct {
		Ok          bool `json:"ok"`
		Diagnostics []struct {
			Kind     string `json:"kind"`
			Severity string `json:"severity"`
			Span     struct {
				Line   int `json:"line"`
				Column int `json:"column"`
				Length int `json:"length"`
			} `json:"span"`
			Message string `json:"message"`
		} `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal(data, &report))

	assert.False(t, report.Ok)
	require.Len(t, report.Diagnostics, 1)
	diag := report.Diagnostics[0]
	assert.Equal(t, "use-after-move", diag.Kind)
	assert.Equal(t, "error", diag.Severity)
	assert.Equal(t, 3, diag.Span.Line)
	assert.Equal(t, 10, diag.Span.Column)
	assert.Equal(t, 2, diag.Span.Length)
}

func TestMarshalJSONCleanReport(t *testing.T) {
	d := New()
	data, err := json.Marshal(d)
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"ok":true`)
	assert.Contains(t, s, `"diagnostics":[]`)
}

func TestFormatColoredDegradesGracefully(t *testing.T) {
	d := New()
	d.Errorf(DoubleFreeError, 4, 2, "double free of 's'")

	got := d.FormatColored("main.vela")
	// regardless of terminal profile the payload text is present
	assert.Contains(t, got, "double free of 's'")
	assert.Contains(t, got, "main.vela:4:2")
}

func TestClear(t *testing.T) {
	d := New()
	d.Errorf(SyntaxError, 1, 1, "boom")
	d.Clear()
	assert.Equal(t, 0, d.Count())
	assert.False(t, d.HasErrors())
}
