package ast

import "github.com/velalang/vela/internal/lexer"

// Node is the base interface for all AST nodes
type Node interface {
	Pos() (line, col int)
}

// Statement nodes
type Statement interface {
	Node
	stmtNode()
}

// Expression nodes
type Expression interface {
	Node
	exprNode()
}

// Program represents one unit of Vela source: its top-level declarations
type Program struct {
	Structs   []*StructDecl
	Functions []*FunctionDecl
	// Statements holds top-level statements for script-style units
	Statements []Statement
}

func (p *Program) Pos() (int, int) {
	if len(p.Structs) > 0 {
		return p.Structs[0].Pos()
	}
	if len(p.Functions) > 0 {
		return p.Functions[0].Pos()
	}
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return 0, 0
}

// StructDecl represents a struct declaration
type StructDecl struct {
	Name   string
	Fields []*FieldDecl
	Line   int
	Column int
}

func (s *StructDecl) Pos() (int, int) { return s.Line, s.Column }

// FieldDecl represents a struct field declaration
type FieldDecl struct {
	Name   string
	Type   *TypeRef
	Line   int
	Column int
}

func (f *FieldDecl) Pos() (int, int) { return f.Line, f.Column }

// FunctionDecl represents a function declaration
type FunctionDecl struct {
	Name       string
	Params     []*Param
	ReturnType *TypeRef // nil for no return value
	Body       *Block
	Line       int
	Column     int
}

func (f *FunctionDecl) Pos() (int, int) { return f.Line, f.Column }

// Param represents a function parameter
type Param struct {
	Name    string
	Mutable bool
	Type    *TypeRef
	Line    int
	Column  int
}

func (p *Param) Pos() (int, int) { return p.Line, p.Column }

// TypeRef represents a type reference, possibly a borrowed form (&T, &mut T)
type TypeRef struct {
	Name          string
	Borrowed      bool
	BorrowMutable bool
	Line          int
	Column        int
}

func (t *TypeRef) Pos() (int, int) { return t.Line, t.Column }

// String renders the type the way it is written in source
func (t *TypeRef) String() string {
	switch {
	case t.Borrowed && t.BorrowMutable:
		return "&mut " + t.Name
	case t.Borrowed:
		return "&" + t.Name
	default:
		return t.Name
	}
}

// Block represents a block of statements
type Block struct {
	Statements []Statement
	Line       int
	Column     int
}

func (b *Block) Pos() (int, int) { return b.Line, b.Column }
func (b *Block) stmtNode()       {}

// BindStmt represents a binding statement (immutable/mutable declaration)
type BindStmt struct {
	Name    string
	Mutable bool
	Type    *TypeRef // optional annotation, nil if omitted
	Value   Expression
	Line    int
	Column  int
}

func (b *BindStmt) Pos() (int, int) { return b.Line, b.Column }
func (b *BindStmt) stmtNode()       {}

// AssignStmt represents an assignment statement
type AssignStmt struct {
	Target Expression
	Value  Expression
	Line   int
	Column int
}

func (a *AssignStmt) Pos() (int, int) { return a.Line, a.Column }
func (a *AssignStmt) stmtNode()       {}

// DeleteStmt represents a heap-release statement: delete <name>;
type DeleteStmt struct {
	Name   string
	Line   int
	Column int
}

func (d *DeleteStmt) Pos() (int, int) { return d.Line, d.Column }
func (d *DeleteStmt) stmtNode()       {}

// ReturnStmt represents a return statement
type ReturnStmt struct {
	Value  Expression // nil for bare return
	Line   int
	Column int
}

func (r *ReturnStmt) Pos() (int, int) { return r.Line, r.Column }
func (r *ReturnStmt) stmtNode()       {}

// IfStmt represents an if statement
type IfStmt struct {
	Condition Expression
	Then      *Block
	Else      Statement // *Block, *IfStmt, or nil
	Line      int
	Column    int
}

func (i *IfStmt) Pos() (int, int) { return i.Line, i.Column }
func (i *IfStmt) stmtNode()       {}

// WhileStmt represents a while loop
type WhileStmt struct {
	Condition Expression
	Body      *Block
	Line      int
	Column    int
}

func (w *WhileStmt) Pos() (int, int) { return w.Line, w.Column }
func (w *WhileStmt) stmtNode()       {}

// ForInStmt represents a for-in loop: for <variable> in <iterable> { ... }
type ForInStmt struct {
	Variable string
	Iterable Expression
	Body     *Block
	Line     int
	Column   int
}

func (f *ForInStmt) Pos() (int, int) { return f.Line, f.Column }
func (f *ForInStmt) stmtNode()       {}

// ExprStmt represents an expression statement
type ExprStmt struct {
	Expr   Expression
	Line   int
	Column int
}

func (e *ExprStmt) Pos() (int, int) { return e.Line, e.Column }
func (e *ExprStmt) stmtNode()       {}

// BinaryExpr represents a binary expression
type BinaryExpr struct {
	Left   Expression
	Op     lexer.TokenType
	Right  Expression
	Line   int
	Column int
}

func (b *BinaryExpr) Pos() (int, int) { return b.Line, b.Column }
func (b *BinaryExpr) exprNode()       {}

// UnaryExpr represents a unary expression
type UnaryExpr struct {
	Op      lexer.TokenType
	Operand Expression
	Line    int
	Column  int
}

func (u *UnaryExpr) Pos() (int, int) { return u.Line, u.Column }
func (u *UnaryExpr) exprNode()       {}

// BorrowExpr represents a borrow expression: &x or &mut x
type BorrowExpr struct {
	Mutable bool
	Operand Expression
	Line    int
	Column  int
}

func (b *BorrowExpr) Pos() (int, int) { return b.Line, b.Column }
func (b *BorrowExpr) exprNode()       {}

// NewExpr represents a heap allocation: new Point{x: 1, y: 2}
type NewExpr struct {
	TypeName string
	Fields   []*FieldInit
	Line     int
	Column   int
}

func (n *NewExpr) Pos() (int, int) { return n.Line, n.Column }
func (n *NewExpr) exprNode()       {}

// FieldInit represents a single field initializer in a new expression
type FieldInit struct {
	Name   string
	Value  Expression
	Line   int
	Column int
}

func (f *FieldInit) Pos() (int, int) { return f.Line, f.Column }

// CallExpr represents a function call
type CallExpr struct {
	Function string
	Args     []Expression
	Line     int
	Column   int
}

func (c *CallExpr) Pos() (int, int) { return c.Line, c.Column }
func (c *CallExpr) exprNode()       {}

// FieldAccessExpr represents a field access
type FieldAccessExpr struct {
	Object Expression
	Field  string
	Line   int
	Column int
}

func (f *FieldAccessExpr) Pos() (int, int) { return f.Line, f.Column }
func (f *FieldAccessExpr) exprNode()       {}

// Identifier represents an identifier
type Identifier struct {
	Name   string
	Line   int
	Column int
}

func (i *Identifier) Pos() (int, int) { return i.Line, i.Column }
func (i *Identifier) exprNode()       {}

// IntLit represents an integer literal
type IntLit struct {
	Value  string
	Line   int
	Column int
}

func (i *IntLit) Pos() (int, int) { return i.Line, i.Column }
func (i *IntLit) exprNode()       {}

// FloatLit represents a float literal
type FloatLit struct {
	Value  string
	Line   int
	Column int
}

func (f *FloatLit) Pos() (int, int) { return f.Line, f.Column }
func (f *FloatLit) exprNode()       {}

// StringLit represents a string literal
type StringLit struct {
	Value  string
	Line   int
	Column int
}

func (s *StringLit) Pos() (int, int) { return s.Line, s.Column }
func (s *StringLit) exprNode()       {}

// BoolLit represents a boolean literal
type BoolLit struct {
	Value  bool
	Line   int
	Column int
}

func (b *BoolLit) Pos() (int, int) { return b.Line, b.Column }
func (b *BoolLit) exprNode()       {}
