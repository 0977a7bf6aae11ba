package ast

import (
	"strings"
	"testing"
)

func TestPrintProgram(t *testing.T) {
	prog := &Program{
		Structs: []*StructDecl{
			{
				Name: "Point",
				Fields: []*FieldDecl{
					{Name: "x", Type: &TypeRef{Name: "Int"}},
				},
			},
		},
		Statements: []Statement{
			&BindStmt{
				Name:    "p",
				Mutable: true,
				Value: &NewExpr{
					TypeName: "Point",
					Fields:   []*FieldInit{{Name: "x", Value: &IntLit{Value: "1"}}},
				},
			},
			&ExprStmt{
				Expr: &BorrowExpr{Mutable: true, Operand: &Identifier{Name: "p"}},
			},
		},
	}

	out := Print(prog)

	for _, want := range []string{
		"Program",
		"Struct: Point",
		"Field: x: Int",
		"Bind (mutable): p",
		"New: Point",
		"Borrow: &mut",
		"Identifier: p",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTypeRefString(t *testing.T) {
	tests := []struct {
		ref  *TypeRef
		want string
	}{
		{&TypeRef{Name: "Int"}, "Int"},
		{&TypeRef{Name: "Point", Borrowed: true}, "&Point"},
		{&TypeRef{Name: "Point", Borrowed: true, BorrowMutable: true}, "&mut Point"},
	}
	for _, tt := range tests {
		if got := tt.ref.String(); got != tt.want {
			t.Errorf("TypeRef.String() = %q, want %q", got, tt.want)
		}
	}
}
