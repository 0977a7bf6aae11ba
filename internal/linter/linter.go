// Package linter performs style checks on an AST program. It reports
// warnings (never errors) using the diagnostic system, and does not need
// the ownership pass to run first.
package linter

import (
	"unicode"

	"github.com/velalang/vela/internal/ast"
	"github.com/velalang/vela/internal/diagnostic"
)

// Linter holds the state of one lint pass
type Linter struct {
	prog *ast.Program
	diag *diagnostic.Diagnostics
}

// Lint runs all lint rules on the given program and returns diagnostics
func Lint(prog *ast.Program) *diagnostic.Diagnostics {
	l := &Linter{
		prog: prog,
		diag: diagnostic.New(),
	}

	l.lintStructs()
	l.lintFunctions()
	l.lintUnit()

	return l.diag
}

// lintStructs checks all struct declarations
func (l *Linter) lintStructs() {
	for _, st := range l.prog.Structs {
		if !isPascalCase(st.Name) {
			l.diag.Warningf(diagnostic.StyleWarning, st.Line, st.Column,
				"struct '%s' should use PascalCase naming", st.Name)
		}
		if len(st.Fields) == 0 {
			l.diag.Warningf(diagnostic.StyleWarning, st.Line, st.Column,
				"struct '%s' has no fields", st.Name)
		}
	}
}

// lintFunctions checks all function declarations
func (l *Linter) lintFunctions() {
	for _, fn := range l.prog.Functions {
		if !isSnakeCase(fn.Name) {
			l.diag.Warningf(diagnostic.StyleWarning, fn.Line, fn.Column,
				"function '%s' should use snake_case naming", fn.Name)
		}
		if fn.Body == nil || len(fn.Body.Statements) == 0 {
			l.diag.Warningf(diagnostic.StyleWarning, fn.Line, fn.Column,
				"function '%s' has an empty body", fn.Name)
			continue
		}

		used := l.collectUsedNames(fn.Body.Statements)
		mutated := l.collectMutatedNames(fn.Body.Statements)

		for _, p := range fn.Params {
			if !used[p.Name] {
				l.diag.Warningf(diagnostic.StyleWarning, p.Line, p.Column,
					"parameter '%s' in '%s' is never used", p.Name, fn.Name)
			}
			if p.Mutable && !mutated[p.Name] {
				l.diag.Warningf(diagnostic.StyleWarning, p.Line, p.Column,
					"parameter '%s' in '%s' is mutable but never mutated", p.Name, fn.Name)
			}
		}
		l.checkBindings(fn.Body.Statements, used, mutated)
	}
}

// lintUnit checks the top-level statements of the unit
func (l *Linter) lintUnit() {
	if len(l.prog.Statements) == 0 {
		return
	}
	used := l.collectUsedNames(l.prog.Statements)
	mutated := l.collectMutatedNames(l.prog.Statements)
	l.checkBindings(l.prog.Statements, used, mutated)
}

// checkBindings warns about bindings that are never read and mutable
// bindings that are never written or mutably borrowed
func (l *Linter) checkBindings(stmts []ast.Statement, used, mutated map[string]bool) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.BindStmt:
			if !used[s.Name] {
				l.diag.WarningWithHint(diagnostic.StyleWarning, s.Line, s.Column,
					"'"+s.Name+"' is declared but never used",
					"remove the binding or use the value")
			}
			if s.Mutable && !mutated[s.Name] {
				l.diag.WarningWithHint(diagnostic.StyleWarning, s.Line, s.Column,
					"'"+s.Name+"' is mutable but never mutated",
					"declare '"+s.Name+"' as immutable")
			}
		case *ast.IfStmt:
			l.checkBindings(s.Then.Statements, used, mutated)
			if s.Else != nil {
				l.checkBindings([]ast.Statement{s.Else}, used, mutated)
			}
		case *ast.WhileStmt:
			l.checkBindings(s.Body.Statements, used, mutated)
		case *ast.ForInStmt:
			l.checkBindings(s.Body.Statements, used, mutated)
		case *ast.Block:
			l.checkBindings(s.Statements, used, mutated)
		}
	}
}

// collectUsedNames gathers every identifier name that is read anywhere in
// the statements, including through borrows and field accesses
func (l *Linter) collectUsedNames(stmts []ast.Statement) map[string]bool {
	used := make(map[string]bool)
	for _, stmt := range stmts {
		l.usedInStmt(stmt, used)
	}
	return used
}

func (l *Linter) usedInStmt(stmt ast.Statement, used map[string]bool) {
	switch s := stmt.(type) {
	case *ast.BindStmt:
		l.usedInExpr(s.Value, used)
	case *ast.AssignStmt:
		// the target name is a write, not a read, but a field target
		// reads its object
		if fa, ok := s.Target.(*ast.FieldAccessExpr); ok {
			l.usedInExpr(fa.Object, used)
		}
		l.usedInExpr(s.Value, used)
	case *ast.DeleteStmt:
		used[s.Name] = true
	case *ast.ReturnStmt:
		if s.Value != nil {
			l.usedInExpr(s.Value, used)
		}
	case *ast.IfStmt:
		l.usedInExpr(s.Condition, used)
		for _, inner := range s.Then.Statements {
			l.usedInStmt(inner, used)
		}
		if s.Else != nil {
			l.usedInStmt(s.Else, used)
		}
	case *ast.WhileStmt:
		l.usedInExpr(s.Condition, used)
		for _, inner := range s.Body.Statements {
			l.usedInStmt(inner, used)
		}
	case *ast.ForInStmt:
		l.usedInExpr(s.Iterable, used)
		for _, inner := range s.Body.Statements {
			l.usedInStmt(inner, used)
		}
	case *ast.ExprStmt:
		l.usedInExpr(s.Expr, used)
	case *ast.Block:
		for _, inner := range s.Statements {
			l.usedInStmt(inner, used)
		}
	}
}

func (l *Linter) usedInExpr(expr ast.Expression, used map[string]bool) {
	switch e := expr.(type) {
	case *ast.Identifier:
		used[e.Name] = true
	case *ast.BinaryExpr:
		l.usedInExpr(e.Left, used)
		l.usedInExpr(e.Right, used)
	case *ast.UnaryExpr:
		l.usedInExpr(e.Operand, used)
	case *ast.BorrowExpr:
		l.usedInExpr(e.Operand, used)
	case *ast.NewExpr:
		for _, f := range e.Fields {
			l.usedInExpr(f.Value, used)
		}
	case *ast.CallExpr:
		for _, arg := range e.Args {
			l.usedInExpr(arg, used)
		}
	case *ast.FieldAccessExpr:
		l.usedInExpr(e.Object, used)
	}
}

// collectMutatedNames gathers every name that is assigned, deleted, or
// mutably borrowed anywhere in the statements
func (l *Linter) collectMutatedNames(stmts []ast.Statement) map[string]bool {
	mutated := make(map[string]bool)
	for _, stmt := range stmts {
		l.mutatedInStmt(stmt, mutated)
	}
	return mutated
}

func (l *Linter) mutatedInStmt(stmt ast.Statement, mutated map[string]bool) {
	switch s := stmt.(type) {
	case *ast.BindStmt:
		l.mutatedInExpr(s.Value, mutated)
	case *ast.AssignStmt:
		switch target := s.Target.(type) {
		case *ast.Identifier:
			mutated[target.Name] = true
		case *ast.FieldAccessExpr:
			if base, ok := target.Object.(*ast.Identifier); ok {
				mutated[base.Name] = true
			}
		}
		l.mutatedInExpr(s.Value, mutated)
	case *ast.DeleteStmt:
		mutated[s.Name] = true
	case *ast.ReturnStmt:
		if s.Value != nil {
			l.mutatedInExpr(s.Value, mutated)
		}
	case *ast.IfStmt:
		l.mutatedInExpr(s.Condition, mutated)
		for _, inner := range s.Then.Statements {
			l.mutatedInStmt(inner, mutated)
		}
		if s.Else != nil {
			l.mutatedInStmt(s.Else, mutated)
		}
	case *ast.WhileStmt:
		l.mutatedInExpr(s.Condition, mutated)
		for _, inner := range s.Body.Statements {
			l.mutatedInStmt(inner, mutated)
		}
	case *ast.ForInStmt:
		l.mutatedInExpr(s.Iterable, mutated)
		for _, inner := range s.Body.Statements {
			l.mutatedInStmt(inner, mutated)
		}
	case *ast.ExprStmt:
		l.mutatedInExpr(s.Expr, mutated)
	case *ast.Block:
		for _, inner := range s.Statements {
			l.mutatedInStmt(inner, mutated)
		}
	}
}

func (l *Linter) mutatedInExpr(expr ast.Expression, mutated map[string]bool) {
	switch e := expr.(type) {
	case *ast.BorrowExpr:
		if e.Mutable {
			if ident, ok := e.Operand.(*ast.Identifier); ok {
				mutated[ident.Name] = true
			}
		}
	case *ast.BinaryExpr:
		l.mutatedInExpr(e.Left, mutated)
		l.mutatedInExpr(e.Right, mutated)
	case *ast.UnaryExpr:
		l.mutatedInExpr(e.Operand, mutated)
	case *ast.NewExpr:
		for _, f := range e.Fields {
			l.mutatedInExpr(f.Value, mutated)
		}
	case *ast.CallExpr:
		for _, arg := range e.Args {
			l.mutatedInExpr(arg, mutated)
		}
	}
}

// isPascalCase reports whether a name starts with an uppercase letter and
// contains no underscores
func isPascalCase(name string) bool {
	if name == "" {
		return false
	}
	if !unicode.IsUpper(rune(name[0])) {
		return false
	}
	for _, r := range name {
		if r == '_' {
			return false
		}
	}
	return true
}

// isSnakeCase reports whether a name contains only lowercase letters,
// digits, and underscores
func isSnakeCase(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
