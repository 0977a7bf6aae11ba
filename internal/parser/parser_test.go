package parser

import (
	"testing"

	"github.com/velalang/vela/internal/ast"
	"github.com/velalang/vela/internal/lexer"
)

func parseProgram(t *testing.T, source string) *ast.Program {
	t.Helper()
	p := New(source)
	prog := p.Parse()
	if p.Diagnostics().HasErrors() {
		t.Fatalf("unexpected parse errors: %s", p.Diagnostics().Format("test"))
	}
	return prog
}

func parseWithErrors(t *testing.T, source string) *Parser {
	t.Helper()
	p := New(source)
	p.Parse()
	if !p.Diagnostics().HasErrors() {
		t.Fatal("expected parse errors, got none")
	}
	return p
}

func TestParseStructDecl(t *testing.T) {
	prog := parseProgram(t, `struct Point { x: Int, y: Int }`)

	if len(prog.Structs) != 1 {
		t.Fatalf("expected 1 struct, got %d", len(prog.Structs))
	}
	st := prog.Structs[0]
	if st.Name != "Point" {
		t.Errorf("wrong struct name: %q", st.Name)
	}
	if len(st.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(st.Fields))
	}
	if st.Fields[0].Name != "x" || st.Fields[0].Type.Name != "Int" {
		t.Errorf("wrong first field: %s: %s", st.Fields[0].Name, st.Fields[0].Type)
	}
}

func TestParseFunctionDecl(t *testing.T) {
	prog := parseProgram(t, `
function shift(p: &mut Point, dx: Int) -> Int {
    return dx;
}
`)

	if len(prog.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(prog.Functions))
	}
	fn := prog.Functions[0]
	if fn.Name != "shift" {
		t.Errorf("wrong function name: %q", fn.Name)
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
	p0 := fn.Params[0]
	if !p0.Type.Borrowed || !p0.Type.BorrowMutable || p0.Type.Name != "Point" {
		t.Errorf("wrong first param type: %s", p0.Type)
	}
	if fn.ReturnType == nil || fn.ReturnType.Name != "Int" || fn.ReturnType.Borrowed {
		t.Errorf("wrong return type: %s", fn.ReturnType)
	}
	if len(fn.Body.Statements) != 1 {
		t.Errorf("expected 1 body statement, got %d", len(fn.Body.Statements))
	}
}

func TestParseFunctionWithoutReturnType(t *testing.T) {
	prog := parseProgram(t, `function noop() { }`)
	if prog.Functions[0].ReturnType != nil {
		t.Error("expected nil return type")
	}
}

func TestParseBorrowedReturnType(t *testing.T) {
	prog := parseProgram(t, `
function view(p: &Point) -> &Int {
    return p;
}
`)
	ret := prog.Functions[0].ReturnType
	if !ret.Borrowed || ret.BorrowMutable || ret.Name != "Int" {
		t.Errorf("wrong return type: %s", ret)
	}
}

func TestParseBindStmt(t *testing.T) {
	prog := parseProgram(t, `
immutable x = 1;
mutable name: String = "vela";
`)

	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}

	bind := prog.Statements[0].(*ast.BindStmt)
	if bind.Name != "x" || bind.Mutable || bind.Type != nil {
		t.Errorf("wrong first binding: %+v", bind)
	}
	if _, ok := bind.Value.(*ast.IntLit); !ok {
		t.Errorf("expected IntLit value, got %T", bind.Value)
	}

	bind = prog.Statements[1].(*ast.BindStmt)
	if bind.Name != "name" || !bind.Mutable {
		t.Errorf("wrong second binding: %+v", bind)
	}
	if bind.Type == nil || bind.Type.Name != "String" {
		t.Errorf("wrong annotation: %s", bind.Type)
	}
}

func TestParseBorrowExpressions(t *testing.T) {
	prog := parseProgram(t, `
immutable r = &s;
immutable m = &mut p;
`)

	shared := prog.Statements[0].(*ast.BindStmt).Value.(*ast.BorrowExpr)
	if shared.Mutable {
		t.Error("&s parsed as mutable borrow")
	}
	if ident := shared.Operand.(*ast.Identifier); ident.Name != "s" {
		t.Errorf("wrong borrow operand: %q", ident.Name)
	}

	mut := prog.Statements[1].(*ast.BindStmt).Value.(*ast.BorrowExpr)
	if !mut.Mutable {
		t.Error("&mut p parsed as shared borrow")
	}
}

func TestParseNewExpr(t *testing.T) {
	prog := parseProgram(t, `immutable p = new Point{x: 1, y: 2};`)

	n := prog.Statements[0].(*ast.BindStmt).Value.(*ast.NewExpr)
	if n.TypeName != "Point" {
		t.Errorf("wrong type name: %q", n.TypeName)
	}
	if len(n.Fields) != 2 || n.Fields[0].Name != "x" || n.Fields[1].Name != "y" {
		t.Errorf("wrong field inits: %+v", n.Fields)
	}
}

func TestParseDeleteStmt(t *testing.T) {
	prog := parseProgram(t, `delete s;`)
	del := prog.Statements[0].(*ast.DeleteStmt)
	if del.Name != "s" {
		t.Errorf("wrong delete target: %q", del.Name)
	}
}

func TestParseAssignment(t *testing.T) {
	prog := parseProgram(t, `
x = 1;
p.x = 2;
`)

	first := prog.Statements[0].(*ast.AssignStmt)
	if _, ok := first.Target.(*ast.Identifier); !ok {
		t.Errorf("expected identifier target, got %T", first.Target)
	}

	second := prog.Statements[1].(*ast.AssignStmt)
	fa, ok := second.Target.(*ast.FieldAccessExpr)
	if !ok {
		t.Fatalf("expected field access target, got %T", second.Target)
	}
	if fa.Field != "x" {
		t.Errorf("wrong field: %q", fa.Field)
	}
}

func TestParseInvalidAssignmentTarget(t *testing.T) {
	parseWithErrors(t, `1 + 2 = 3;`)
}

func TestParseIfElseChain(t *testing.T) {
	prog := parseProgram(t, `
if a {
    x = 1;
} else if b {
    x = 2;
} else {
    x = 3;
}
`)

	ifStmt := prog.Statements[0].(*ast.IfStmt)
	elseIf, ok := ifStmt.Else.(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected nested if in else, got %T", ifStmt.Else)
	}
	if _, ok := elseIf.Else.(*ast.Block); !ok {
		t.Errorf("expected block in final else, got %T", elseIf.Else)
	}
}

func TestParseWhileStmt(t *testing.T) {
	prog := parseProgram(t, `
while i < 10 {
    i = i + 1;
}
`)
	w := prog.Statements[0].(*ast.WhileStmt)
	cond := w.Condition.(*ast.BinaryExpr)
	if cond.Op != lexer.LT {
		t.Errorf("wrong condition op: %s", cond.Op)
	}
	if len(w.Body.Statements) != 1 {
		t.Errorf("expected 1 body statement, got %d", len(w.Body.Statements))
	}
}

func TestParseForInStmt(t *testing.T) {
	prog := parseProgram(t, `
for item in items {
    total = total + item;
}
`)
	f := prog.Statements[0].(*ast.ForInStmt)
	if f.Variable != "item" {
		t.Errorf("wrong loop variable: %q", f.Variable)
	}
	if _, ok := f.Iterable.(*ast.Identifier); !ok {
		t.Errorf("expected identifier iterable, got %T", f.Iterable)
	}
}

func TestParsePrecedence(t *testing.T) {
	prog := parseProgram(t, `immutable x = 1 + 2 * 3;`)

	add := prog.Statements[0].(*ast.BindStmt).Value.(*ast.BinaryExpr)
	if add.Op != lexer.PLUS {
		t.Fatalf("expected + at root, got %s", add.Op)
	}
	mul, ok := add.Right.(*ast.BinaryExpr)
	if !ok || mul.Op != lexer.STAR {
		t.Errorf("expected * on the right, got %T", add.Right)
	}
}

func TestParseParenthesesOverridePrecedence(t *testing.T) {
	prog := parseProgram(t, `immutable x = (1 + 2) * 3;`)

	mul := prog.Statements[0].(*ast.BindStmt).Value.(*ast.BinaryExpr)
	if mul.Op != lexer.STAR {
		t.Fatalf("expected * at root, got %s", mul.Op)
	}
	if add, ok := mul.Left.(*ast.BinaryExpr); !ok || add.Op != lexer.PLUS {
		t.Errorf("expected + on the left, got %T", mul.Left)
	}
}

func TestParseCallWithArguments(t *testing.T) {
	prog := parseProgram(t, `immutable d = distance(&a, b, 3);`)

	call := prog.Statements[0].(*ast.BindStmt).Value.(*ast.CallExpr)
	if call.Function != "distance" {
		t.Errorf("wrong function name: %q", call.Function)
	}
	if len(call.Args) != 3 {
		t.Fatalf("expected 3 args, got %d", len(call.Args))
	}
	if _, ok := call.Args[0].(*ast.BorrowExpr); !ok {
		t.Errorf("expected borrow first arg, got %T", call.Args[0])
	}
}

func TestParseFieldAccessChain(t *testing.T) {
	prog := parseProgram(t, `immutable v = a.b.c;`)

	outer := prog.Statements[0].(*ast.BindStmt).Value.(*ast.FieldAccessExpr)
	if outer.Field != "c" {
		t.Errorf("wrong outer field: %q", outer.Field)
	}
	inner, ok := outer.Object.(*ast.FieldAccessExpr)
	if !ok || inner.Field != "b" {
		t.Errorf("wrong inner access: %T", outer.Object)
	}
}

func TestParseMissingSemicolon(t *testing.T) {
	p := parseWithErrors(t, `immutable x = 1`)
	if p.Diagnostics().ErrorCount() == 0 {
		t.Error("expected at least one error")
	}
}

func TestParseRecoversAfterError(t *testing.T) {
	p := New(`
immutable = 1;
immutable y = 2;
`)
	prog := p.Parse()

	if !p.Diagnostics().HasErrors() {
		t.Fatal("expected parse errors")
	}
	// the second statement still parses
	found := false
	for _, stmt := range prog.Statements {
		if bind, ok := stmt.(*ast.BindStmt); ok && bind.Name == "y" {
			found = true
		}
	}
	if !found {
		t.Error("parser did not recover to parse the second binding")
	}
}

func TestParseUnexpectedTokenInExpression(t *testing.T) {
	parseWithErrors(t, `immutable x = };`)
}
