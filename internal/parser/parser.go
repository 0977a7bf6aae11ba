package parser

import (
	"github.com/velalang/vela/internal/ast"
	"github.com/velalang/vela/internal/diagnostic"
	"github.com/velalang/vela/internal/lexer"
)

// New creates a new parser
func New(source string) *Parser {
	l := lexer.New(source)
	tokens := l.Tokenize()
	return &Parser{
		tokens: tokens,
		pos:    0,
		diags:  diagnostic.New(),
	}
}

// Diagnostics returns the parser's diagnostics
func (p *Parser) Diagnostics() *diagnostic.Diagnostics {
	return p.diags
}

// Parse parses the token stream into a Program AST
func (p *Parser) Parse() *ast.Program {
	prog := &ast.Program{}

	for !p.check(lexer.EOF) {
		switch p.current().Type {
		case lexer.STRUCT:
			prog.Structs = append(prog.Structs, p.parseStructDecl())
		case lexer.FUNCTION:
			prog.Functions = append(prog.Functions, p.parseFunctionDecl())
		default:
			// Top-level statement (script-style unit)
			startPos := p.pos
			stmt := p.parseStatement()
			if stmt != nil {
				prog.Statements = append(prog.Statements, stmt)
			}
			if p.pos == startPos {
				p.advance() // ensure forward progress to avoid infinite loop
			}
		}
	}
	return prog
}

// parseStructDecl parses: struct <name> { <field>: <type>, ... }
func (p *Parser) parseStructDecl() *ast.StructDecl {
	tok := p.expect(lexer.STRUCT)
	name := p.expect(lexer.IDENT)
	p.expect(lexer.LBRACE)

	decl := &ast.StructDecl{
		Name:   name.Literal,
		Line:   tok.Line,
		Column: tok.Column,
	}

	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		fieldTok := p.expect(lexer.IDENT)
		p.expect(lexer.COLON)
		fieldType := p.parseTypeRef()

		decl.Fields = append(decl.Fields, &ast.FieldDecl{
			Name:   fieldTok.Literal,
			Type:   fieldType,
			Line:   fieldTok.Line,
			Column: fieldTok.Column,
		})

		if !p.match(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RBRACE)
	return decl
}

// parseFunctionDecl parses: function <name>(<params>) [-> <type>] { ... }
func (p *Parser) parseFunctionDecl() *ast.FunctionDecl {
	tok := p.expect(lexer.FUNCTION)
	name := p.expect(lexer.IDENT)
	p.expect(lexer.LPAREN)
	params := p.parseParamList()
	p.expect(lexer.RPAREN)

	var retType *ast.TypeRef
	if p.match(lexer.ARROW) {
		retType = p.parseTypeRef()
	}

	body := p.parseBlock()

	return &ast.FunctionDecl{
		Name:       name.Literal,
		Params:     params,
		ReturnType: retType,
		Body:       body,
		Line:       tok.Line,
		Column:     tok.Column,
	}
}

// parseParamList parses a comma-separated parameter list
func (p *Parser) parseParamList() []*ast.Param {
	params := make([]*ast.Param, 0)
	if p.check(lexer.RPAREN) {
		return params
	}
	params = append(params, p.parseParam())
	for p.match(lexer.COMMA) {
		params = append(params, p.parseParam())
	}
	return params
}

// parseParam parses: [mutable] <name>: <type>
func (p *Parser) parseParam() *ast.Param {
	mutable := false
	if p.match(lexer.MUTABLE) {
		mutable = true
	}
	name := p.expect(lexer.IDENT)
	p.expect(lexer.COLON)
	paramType := p.parseTypeRef()

	return &ast.Param{
		Name:    name.Literal,
		Mutable: mutable,
		Type:    paramType,
		Line:    name.Line,
		Column:  name.Column,
	}
}

// parseTypeRef parses: <name> | &<name> | &mut <name>
func (p *Parser) parseTypeRef() *ast.TypeRef {
	tok := p.current()
	ref := &ast.TypeRef{Line: tok.Line, Column: tok.Column}

	if p.match(lexer.AMP) {
		ref.Borrowed = true
		if p.match(lexer.MUT) {
			ref.BorrowMutable = true
		}
	}

	switch p.current().Type {
	case lexer.IDENT, lexer.INT_TYPE, lexer.FLOAT_TYPE, lexer.STRING_TYPE, lexer.BOOL_TYPE:
		ref.Name = p.advance().Literal
	default:
		p.diags.Errorf(diagnostic.SyntaxError, p.current().Line, p.current().Column,
			"expected type name, got %s", p.current().Type)
	}
	return ref
}

// parseBlock parses: { <statements> }
func (p *Parser) parseBlock() *ast.Block {
	tok := p.expect(lexer.LBRACE)
	block := &ast.Block{Line: tok.Line, Column: tok.Column}

	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		startPos := p.pos
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		if p.pos == startPos {
			p.advance() // ensure forward progress
		}
	}
	p.expect(lexer.RBRACE)
	return block
}

// parseStatement parses a single statement
func (p *Parser) parseStatement() ast.Statement {
	switch p.current().Type {
	case lexer.IMMUTABLE, lexer.MUTABLE:
		return p.parseBindStmt()
	case lexer.DELETE:
		return p.parseDeleteStmt()
	case lexer.RETURN:
		return p.parseReturnStmt()
	case lexer.IF:
		return p.parseIfStmt()
	case lexer.WHILE:
		return p.parseWhileStmt()
	case lexer.FOR:
		return p.parseForInStmt()
	case lexer.LBRACE:
		return p.parseBlock()
	default:
		return p.parseExprStmtOrAssign()
	}
}

// parseBindStmt parses: immutable|mutable <name> [: <type>] = <expr>;
func (p *Parser) parseBindStmt() *ast.BindStmt {
	tok := p.advance() // IMMUTABLE or MUTABLE
	mutable := tok.Type == lexer.MUTABLE

	name := p.expect(lexer.IDENT)
	if name.Type != lexer.IDENT {
		p.synchronize()
		return &ast.BindStmt{Name: name.Literal, Mutable: mutable, Line: tok.Line, Column: tok.Column}
	}

	var declType *ast.TypeRef
	if p.match(lexer.COLON) {
		declType = p.parseTypeRef()
	}

	p.expect(lexer.ASSIGN)
	value := p.parseExpression()
	p.expect(lexer.SEMICOLON)

	return &ast.BindStmt{
		Name:    name.Literal,
		Mutable: mutable,
		Type:    declType,
		Value:   value,
		Line:    tok.Line,
		Column:  tok.Column,
	}
}

// parseDeleteStmt parses: delete <name>;
func (p *Parser) parseDeleteStmt() *ast.DeleteStmt {
	tok := p.expect(lexer.DELETE)
	name := p.expect(lexer.IDENT)
	p.expect(lexer.SEMICOLON)

	return &ast.DeleteStmt{
		Name:   name.Literal,
		Line:   tok.Line,
		Column: tok.Column,
	}
}

// parseReturnStmt parses: return [<expr>];
func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	tok := p.expect(lexer.RETURN)

	var value ast.Expression
	if !p.check(lexer.SEMICOLON) {
		value = p.parseExpression()
	}
	p.expect(lexer.SEMICOLON)

	return &ast.ReturnStmt{
		Value:  value,
		Line:   tok.Line,
		Column: tok.Column,
	}
}

// parseIfStmt parses: if <expr> { ... } [else if ... | else { ... }]
func (p *Parser) parseIfStmt() *ast.IfStmt {
	tok := p.expect(lexer.IF)
	cond := p.parseExpression()
	then := p.parseBlock()

	var elseStmt ast.Statement
	if p.match(lexer.ELSE) {
		if p.check(lexer.IF) {
			elseStmt = p.parseIfStmt()
		} else {
			elseStmt = p.parseBlock()
		}
	}

	return &ast.IfStmt{
		Condition: cond,
		Then:      then,
		Else:      elseStmt,
		Line:      tok.Line,
		Column:    tok.Column,
	}
}

// parseWhileStmt parses: while <expr> { ... }
func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	tok := p.expect(lexer.WHILE)
	cond := p.parseExpression()
	body := p.parseBlock()

	return &ast.WhileStmt{
		Condition: cond,
		Body:      body,
		Line:      tok.Line,
		Column:    tok.Column,
	}
}

// parseForInStmt parses: for <variable> in <expr> { ... }
func (p *Parser) parseForInStmt() *ast.ForInStmt {
	tok := p.expect(lexer.FOR)
	name := p.expect(lexer.IDENT)
	p.expect(lexer.IN)
	iterable := p.parseExpression()
	body := p.parseBlock()

	return &ast.ForInStmt{
		Variable: name.Literal,
		Iterable: iterable,
		Body:     body,
		Line:     tok.Line,
		Column:   tok.Column,
	}
}

// parseExprStmtOrAssign parses an expression statement or an assignment
func (p *Parser) parseExprStmtOrAssign() ast.Statement {
	tok := p.current()
	expr := p.parseExpression()

	if p.check(lexer.ASSIGN) {
		assignTok := p.advance()
		value := p.parseExpression()
		p.expect(lexer.SEMICOLON)

		switch expr.(type) {
		case *ast.Identifier, *ast.FieldAccessExpr:
			// valid assignment targets
		default:
			p.diags.Errorf(diagnostic.SyntaxError, assignTok.Line, assignTok.Column,
				"invalid assignment target")
		}

		return &ast.AssignStmt{
			Target: expr,
			Value:  value,
			Line:   tok.Line,
			Column: tok.Column,
		}
	}

	p.expect(lexer.SEMICOLON)
	return &ast.ExprStmt{
		Expr:   expr,
		Line:   tok.Line,
		Column: tok.Column,
	}
}

// Operator precedence levels, lowest to highest
var precedences = map[lexer.TokenType]int{
	lexer.OR:      1,
	lexer.AND:     2,
	lexer.EQ:      3,
	lexer.NEQ:     3,
	lexer.LT:      4,
	lexer.GT:      4,
	lexer.LEQ:     4,
	lexer.GEQ:     4,
	lexer.PLUS:    5,
	lexer.MINUS:   5,
	lexer.STAR:    6,
	lexer.SLASH:   6,
	lexer.PERCENT: 6,
}

// parseExpression parses an expression
func (p *Parser) parseExpression() ast.Expression {
	return p.parsePrecedence(1)
}

// parsePrecedence parses binary expressions at or above minPrec
func (p *Parser) parsePrecedence(minPrec int) ast.Expression {
	left := p.parseUnary()

	for {
		prec, ok := precedences[p.current().Type]
		if !ok || prec < minPrec {
			return left
		}
		opTok := p.advance()
		right := p.parsePrecedence(prec + 1)
		left = &ast.BinaryExpr{
			Left:   left,
			Op:     opTok.Type,
			Right:  right,
			Line:   opTok.Line,
			Column: opTok.Column,
		}
	}
}

// parseUnary parses unary and borrow expressions
func (p *Parser) parseUnary() ast.Expression {
	switch p.current().Type {
	case lexer.MINUS, lexer.NOT:
		opTok := p.advance()
		operand := p.parseUnary()
		return &ast.UnaryExpr{
			Op:      opTok.Type,
			Operand: operand,
			Line:    opTok.Line,
			Column:  opTok.Column,
		}
	case lexer.AMP:
		ampTok := p.advance()
		mutable := p.match(lexer.MUT)
		operand := p.parseUnary()
		return &ast.BorrowExpr{
			Mutable: mutable,
			Operand: operand,
			Line:    ampTok.Line,
			Column:  ampTok.Column,
		}
	default:
		return p.parsePostfix()
	}
}

// parsePostfix parses field accesses after a primary expression
func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parsePrimary()

	for p.check(lexer.DOT) {
		dotTok := p.advance()
		field := p.expect(lexer.IDENT)
		expr = &ast.FieldAccessExpr{
			Object: expr,
			Field:  field.Literal,
			Line:   dotTok.Line,
			Column: dotTok.Column,
		}
	}
	return expr
}

// parsePrimary parses a primary expression
func (p *Parser) parsePrimary() ast.Expression {
	tok := p.current()

	switch tok.Type {
	case lexer.INT_LIT:
		p.advance()
		return &ast.IntLit{Value: tok.Literal, Line: tok.Line, Column: tok.Column}
	case lexer.FLOAT_LIT:
		p.advance()
		return &ast.FloatLit{Value: tok.Literal, Line: tok.Line, Column: tok.Column}
	case lexer.STRING_LIT:
		p.advance()
		return &ast.StringLit{Value: tok.Literal, Line: tok.Line, Column: tok.Column}
	case lexer.TRUE:
		p.advance()
		return &ast.BoolLit{Value: true, Line: tok.Line, Column: tok.Column}
	case lexer.FALSE:
		p.advance()
		return &ast.BoolLit{Value: false, Line: tok.Line, Column: tok.Column}
	case lexer.NEW:
		return p.parseNewExpr()
	case lexer.IDENT:
		p.advance()
		if p.check(lexer.LPAREN) {
			p.advance()
			args := p.parseArgList()
			p.expect(lexer.RPAREN)
			return &ast.CallExpr{
				Function: tok.Literal,
				Args:     args,
				Line:     tok.Line,
				Column:   tok.Column,
			}
		}
		return &ast.Identifier{Name: tok.Literal, Line: tok.Line, Column: tok.Column}
	case lexer.LPAREN:
		p.advance()
		expr := p.parseExpression()
		p.expect(lexer.RPAREN)
		return expr
	default:
		p.diags.Errorf(diagnostic.SyntaxError, tok.Line, tok.Column,
			"unexpected token %s in expression", tok.Type)
		p.advance()
		return &ast.Identifier{Name: "<error>", Line: tok.Line, Column: tok.Column}
	}
}

// parseNewExpr parses: new <TypeName>{<field>: <expr>, ...}
func (p *Parser) parseNewExpr() *ast.NewExpr {
	tok := p.expect(lexer.NEW)
	name := p.expect(lexer.IDENT)
	p.expect(lexer.LBRACE)

	expr := &ast.NewExpr{
		TypeName: name.Literal,
		Line:     tok.Line,
		Column:   tok.Column,
	}

	for !p.check(lexer.RBRACE) && !p.check(lexer.EOF) {
		fieldTok := p.expect(lexer.IDENT)
		p.expect(lexer.COLON)
		value := p.parseExpression()

		expr.Fields = append(expr.Fields, &ast.FieldInit{
			Name:   fieldTok.Literal,
			Value:  value,
			Line:   fieldTok.Line,
			Column: fieldTok.Column,
		})

		if !p.match(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RBRACE)
	return expr
}

// parseArgList parses a comma-separated argument list
func (p *Parser) parseArgList() []ast.Expression {
	args := make([]ast.Expression, 0)
	if p.check(lexer.RPAREN) {
		return args
	}
	args = append(args, p.parseExpression())
	for p.match(lexer.COMMA) {
		args = append(args, p.parseExpression())
	}
	return args
}
