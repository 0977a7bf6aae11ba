package linter

import (
	"strings"
	"testing"

	"github.com/velalang/vela/internal/parser"
)

func lintSource(t *testing.T, source string) []string {
	t.Helper()
	p := parser.New(source)
	prog := p.Parse()
	if p.Diagnostics().HasErrors() {
		t.Fatalf("parser errors: %s", p.Diagnostics().Format("test"))
	}

	diag := Lint(prog)
	var messages []string
	for _, d := range diag.All() {
		messages = append(messages, d.Message)
	}
	return messages
}

func expectWarning(t *testing.T, messages []string, substr string) {
	t.Helper()
	for _, m := range messages {
		if strings.Contains(m, substr) {
			return
		}
	}
	t.Errorf("expected a warning containing %q, got: %v", substr, messages)
}

func expectNoWarnings(t *testing.T, messages []string) {
	t.Helper()
	if len(messages) != 0 {
		t.Errorf("expected no warnings, got: %v", messages)
	}
}

func TestUnusedBinding(t *testing.T) {
	messages := lintSource(t, `
immutable x = 1;
immutable y = 2;
immutable z = y;
delete z;
`)
	expectWarning(t, messages, "'x' is declared but never used")
}

func TestMutableNeverMutated(t *testing.T) {
	messages := lintSource(t, `
mutable x = 1;
immutable y = x;
delete y;
`)
	expectWarning(t, messages, "'x' is mutable but never mutated")
}

func TestMutableBorrowCountsAsMutation(t *testing.T) {
	messages := lintSource(t, `
mutable s = "text";
immutable r = &mut s;
immutable t = r;
delete t;
`)
	expectNoWarnings(t, messages)
}

func TestAssignmentCountsAsMutation(t *testing.T) {
	messages := lintSource(t, `
mutable x = 1;
x = 2;
immutable y = x;
delete y;
`)
	expectNoWarnings(t, messages)
}

func TestUnusedParameter(t *testing.T) {
	messages := lintSource(t, `
function add(a: Int, b: Int) -> Int {
    return a + a;
}
`)
	expectWarning(t, messages, "parameter 'b' in 'add' is never used")
}

func TestEmptyFunctionBody(t *testing.T) {
	messages := lintSource(t, `
function noop() {
}
`)
	expectWarning(t, messages, "function 'noop' has an empty body")
}

func TestStructNaming(t *testing.T) {
	messages := lintSource(t, `
struct lower_case { x: Int }
`)
	expectWarning(t, messages, "struct 'lower_case' should use PascalCase naming")
}

func TestFunctionNaming(t *testing.T) {
	messages := lintSource(t, `
function BadName(a: Int) -> Int {
    return a;
}
`)
	expectWarning(t, messages, "function 'BadName' should use snake_case naming")
}

func TestStructWithNoFields(t *testing.T) {
	messages := lintSource(t, `
struct Empty { }
`)
	expectWarning(t, messages, "struct 'Empty' has no fields")
}

func TestNestedScopeUsage(t *testing.T) {
	messages := lintSource(t, `
immutable s = "outer";
mutable i = 0;
while i < 2 {
    immutable r = &s;
    immutable n = r;
    delete n;
    i = i + 1;
}
`)
	expectNoWarnings(t, messages)
}

func TestCleanFunctionHasNoWarnings(t *testing.T) {
	messages := lintSource(t, `
struct Point { x: Int, y: Int }

function shift(p: &mut Point, dx: Int) {
    p.x = p.x + dx;
}
`)
	expectNoWarnings(t, messages)
}
