// Package checker implements the ownership and borrow checker: a single
// forward pass over each unit's statements that enforces move, borrow, and
// lifetime rules and records every ownership transition in an event trace.
package checker

import (
	"fmt"
	"sort"

	"github.com/velalang/vela/internal/ast"
	"github.com/velalang/vela/internal/binding"
	"github.com/velalang/vela/internal/diagnostic"
)

// Global is a previously-declared global name, used to pre-populate the
// root scope for multi-unit checking
type Global struct {
	Name    string
	Mutable bool
	Type    *ast.TypeRef
}

// Result holds the outcome of one checking pass
type Result struct {
	Diagnostics *diagnostic.Diagnostics
	Trace       []Event
	Table       *binding.Table
}

// Ok reports whether the pass found no rule violations
func (r *Result) Ok() bool {
	return !r.Diagnostics.HasErrors()
}

// Checker walks the AST using the binding table and emits diagnostics.
// It is a pure function of (AST, initial globals): no state survives a pass.
type Checker struct {
	prog  *ast.Program
	diag  *diagnostic.Diagnostics
	table *binding.Table

	states     map[binding.DeclID]State
	heap       map[binding.DeclID]bool
	held       map[binding.DeclID]*Borrow    // binding currently holding a borrow
	borrows    map[binding.ScopeID][]*Borrow // live borrows keyed by lifetime scope
	paramIndex map[binding.DeclID]int

	structs   map[string]*StructInfo
	functions map[string]*FuncInfo
	redefined map[*ast.FunctionDecl]bool // later definitions of an already-defined name

	currentFn *FuncInfo
	trace     []Event
}

// value describes what an expression evaluated to, as far as ownership
// tracking is concerned
type value struct {
	decl          binding.DeclID // bare identifier's declaration, else NoDecl
	heap          bool           // heap-allocated result, subject to ownership
	structName    string
	borrow        *Borrow        // borrow carried by this value, if any
	callBorrowOf  binding.DeclID // call returned a borrow of this lender
	callBorrowMut bool
}

func noValue() value {
	return value{decl: binding.NoDecl, callBorrowOf: binding.NoDecl}
}

// Check performs the ownership and borrow checking pass on a program
func Check(prog *ast.Program) *Result {
	return CheckWithGlobals(prog, nil)
}

// CheckWithGlobals checks a program against a pre-populated root scope of
// previously-declared global names
func CheckWithGlobals(prog *ast.Program, globals []Global) *Result {
	c := &Checker{
		prog:       prog,
		diag:       diagnostic.New(),
		table:      binding.NewTable(),
		states:     make(map[binding.DeclID]State),
		heap:       make(map[binding.DeclID]bool),
		held:       make(map[binding.DeclID]*Borrow),
		borrows:    make(map[binding.ScopeID][]*Borrow),
		paramIndex: make(map[binding.DeclID]int),
		structs:    make(map[string]*StructInfo),
		functions:  make(map[string]*FuncInfo),
		redefined:  make(map[*ast.FunctionDecl]bool),
	}

	c.registerStructs()
	c.registerFunctions()

	for _, g := range globals {
		mut := binding.Immutable
		if g.Mutable {
			mut = binding.Mutable
		}
		id, err := c.table.Declare(c.table.Root(), g.Name, mut, g.Type, 0, 0)
		if err != nil {
			c.diag.Errorf(diagnostic.DuplicateDeclarationError, 0, 0,
				"global '%s' declared twice", g.Name)
			continue
		}
		if c.isHeapType(g.Type) {
			c.heap[id] = true
			c.states[id] = State{Kind: StateOwned}
		}
	}

	// Top-level statements run in a unit scope below the root so their
	// locals are released when the unit ends, while globals survive.
	if len(prog.Statements) > 0 {
		unit := c.table.EnterScope(c.table.Root())
		for _, stmt := range prog.Statements {
			c.checkStatement(stmt, unit)
		}
		c.closeScope(unit)
	}

	for _, fn := range c.prog.Functions {
		c.checkFunction(fn)
	}

	return &Result{
		Diagnostics: c.diag,
		Trace:       c.trace,
		Table:       c.table,
	}
}

// emit appends an ownership event to the trace
func (c *Checker) emit(kind EventKind, id binding.DeclID, name string, line, col int) {
	c.trace = append(c.trace, Event{Kind: kind, Decl: id, Name: name, Line: line, Column: col})
}

// checkFunction checks a single function body. Function-body scopes parent
// to the root scope only: a function cannot read enclosing local names.
func (c *Checker) checkFunction(fn *ast.FunctionDecl) {
	if c.redefined[fn] {
		return // duplicate definition, already reported; its body is not checked
	}
	info := c.functions[fn.Name]
	c.currentFn = info

	sc := c.table.EnterFunctionScope()
	for i, p := range fn.Params {
		mut := binding.Immutable
		if p.Mutable {
			mut = binding.Mutable
		}
		id, err := c.table.Declare(sc, p.Name, mut, p.Type, p.Line, p.Column)
		if err != nil {
			c.diag.ErrorfSpan(diagnostic.DuplicateDeclarationError, p.Line, p.Column, len(p.Name),
				"parameter '%s' already declared", p.Name)
			continue
		}
		c.paramIndex[id] = i
		if c.isHeapType(p.Type) {
			// by-value heap parameter: the callee takes ownership
			c.heap[id] = true
			c.states[id] = State{Kind: StateOwned}
		}
		if p.Type != nil && p.Type.Borrowed {
			kind := BorrowShared
			if p.Type.BorrowMutable {
				kind = BorrowMut
			}
			// caller-side lender is unknown inside the callee
			c.held[id] = &Borrow{Lender: binding.NoDecl, Kind: kind, Scope: sc, Line: p.Line, Column: p.Column}
		}
	}

	if fn.Body != nil {
		for _, stmt := range fn.Body.Statements {
			c.checkStatement(stmt, sc)
		}
	}
	c.closeScope(sc)
	c.currentFn = nil
}

// closeScope ends the borrows whose lifetime is sc, synthesizes the
// implicit release of owned heap locals, and closes the scope.
func (c *Checker) closeScope(sc binding.ScopeID) {
	for _, b := range c.borrows[sc] {
		c.endBorrow(b)
	}
	delete(c.borrows, sc)

	decls := c.table.DeclsIn(sc)
	for i := len(decls) - 1; i >= 0; i-- {
		id := decls[i]
		if c.heap[id] && c.states[id].Kind == StateOwned {
			d := c.table.Decl(id)
			c.states[id] = State{Kind: StateFreed}
			c.emit(EvImplicitRelease, id, d.Name, d.Line, d.Column)
		}
	}
	c.table.ExitScope(sc)
}

// endBorrow returns the lender to Owned once its last borrow ends
func (c *Checker) endBorrow(b *Borrow) {
	if b.Lender == binding.NoDecl {
		return
	}
	st := c.states[b.Lender]
	if st.Kind != StateBorrowed {
		return // lender already invalidated; the violation was reported there
	}
	d := c.table.Decl(b.Lender)
	c.emit(EvBorrowEnd, b.Lender, d.Name, b.Line, b.Column)
	if b.Kind == BorrowMut {
		c.states[b.Lender] = State{Kind: StateOwned}
		return
	}
	st.Count--
	if st.Count <= 0 {
		c.states[b.Lender] = State{Kind: StateOwned}
	} else {
		c.states[b.Lender] = st
	}
}

// checkStatement checks a statement
func (c *Checker) checkStatement(stmt ast.Statement, sc binding.ScopeID) {
	switch s := stmt.(type) {
	case *ast.BindStmt:
		c.checkBindStmt(s, sc)
	case *ast.AssignStmt:
		c.checkAssignStmt(s, sc)
	case *ast.DeleteStmt:
		c.checkDeleteStmt(s, sc)
	case *ast.ReturnStmt:
		c.checkReturnStmt(s, sc)
	case *ast.IfStmt:
		c.checkIfStmt(s, sc)
	case *ast.WhileStmt:
		c.checkExpression(s.Condition, sc)
		c.checkLoopBody(s.Body, sc, "", s.Line, s.Column)
	case *ast.ForInStmt:
		c.checkExpression(s.Iterable, sc)
		c.checkLoopBody(s.Body, sc, s.Variable, s.Line, s.Column)
	case *ast.ExprStmt:
		c.checkExpression(s.Expr, sc)
	case *ast.Block:
		child := c.table.EnterScope(sc)
		for _, inner := range s.Statements {
			c.checkStatement(inner, child)
		}
		c.closeScope(child)
	}
}

// checkBindStmt checks an immutable/mutable binding statement
func (c *Checker) checkBindStmt(stmt *ast.BindStmt, sc binding.ScopeID) {
	val := noValue()
	var newBorrow *Borrow

	switch v := stmt.Value.(type) {
	case *ast.Identifier:
		val = c.checkMoveSource(v, sc)
	case *ast.BorrowExpr:
		val, newBorrow = c.checkBorrowExpr(v, sc)
	default:
		val = c.checkExpression(stmt.Value, sc)
	}

	mut := binding.Immutable
	if stmt.Mutable {
		mut = binding.Mutable
	}
	id, err := c.table.Declare(sc, stmt.Name, mut, stmt.Type, stmt.Line, stmt.Column)
	if err != nil {
		c.diag.ErrorfSpan(diagnostic.DuplicateDeclarationError, stmt.Line, stmt.Column, len(stmt.Name),
			"'%s' already declared in this scope", stmt.Name)
		return
	}

	if val.heap || c.isHeapType(stmt.Type) {
		c.heap[id] = true
		c.states[id] = State{Kind: StateOwned}
	}

	switch {
	case newBorrow != nil:
		c.held[id] = newBorrow
	case val.callBorrowOf != binding.NoDecl:
		// the elided return borrow becomes a real borrow of the caller-side
		// lender, living as long as this binding's scope
		kind := BorrowShared
		if val.callBorrowMut {
			kind = BorrowMut
		}
		if b := c.createBorrow(val.callBorrowOf, kind, sc, stmt.Line, stmt.Column); b != nil {
			c.held[id] = b
		}
	case val.borrow != nil:
		c.held[id] = val.borrow
	}
}

// checkMoveSource handles a bare identifier used as the right-hand side of
// a binding, an owned argument, or a by-value return: for heap values this
// is a move that leaves the source unusable.
func (c *Checker) checkMoveSource(ident *ast.Identifier, sc binding.ScopeID) value {
	id, ok := c.table.Resolve(sc, ident.Name)
	if !ok {
		c.diag.ErrorfSpan(diagnostic.UnknownNameError, ident.Line, ident.Column, len(ident.Name),
			"unknown name '%s'", ident.Name)
		return noValue()
	}
	if !c.heap[id] {
		// copy semantics; copying a borrow-holding binding shares the borrow
		v := noValue()
		v.decl = id
		v.borrow = c.held[id]
		return v
	}

	d := c.table.Decl(id)
	st := c.states[id]
	switch {
	case !st.usable():
		c.diag.ErrorfSpan(diagnostic.UseAfterMoveError, ident.Line, ident.Column, len(ident.Name),
			"cannot use '%s': value is %s", ident.Name, st)
	case st.Kind == StateBorrowed:
		c.diag.ErrorfSpan(diagnostic.BorrowedValueMovedError, ident.Line, ident.Column, len(ident.Name),
			"cannot move '%s' while it is borrowed", ident.Name)
	default:
		c.states[id] = State{Kind: StateMoved}
		c.emit(EvMove, id, d.Name, ident.Line, ident.Column)
	}

	v := noValue()
	v.decl = id
	v.heap = true
	return v
}

// checkBorrowExpr checks &x / &mut x, registering the borrow against the
// innermost enclosing scope
func (c *Checker) checkBorrowExpr(expr *ast.BorrowExpr, sc binding.ScopeID) (value, *Borrow) {
	return c.checkBorrowExprScoped(expr, sc, sc)
}

// checkBorrowExprScoped checks a borrow expression whose lifetime extent
// is lifetimeScope (the borrowing binding's scope, or a transient call
// scope). The borrow's scope must nest inside the lender's scope.
func (c *Checker) checkBorrowExprScoped(expr *ast.BorrowExpr, sc, lifetimeScope binding.ScopeID) (value, *Borrow) {
	ident, ok := expr.Operand.(*ast.Identifier)
	if !ok {
		c.diag.Errorf(diagnostic.SyntaxError, expr.Line, expr.Column,
			"borrow target must be a named value")
		c.checkExpression(expr.Operand, sc)
		return noValue(), nil
	}

	id, found := c.table.Resolve(sc, ident.Name)
	if !found {
		c.diag.ErrorfSpan(diagnostic.UnknownNameError, ident.Line, ident.Column, len(ident.Name),
			"unknown name '%s'", ident.Name)
		return noValue(), nil
	}

	if !c.heap[id] {
		// re-borrowing a binding that itself holds a borrow shares it
		if held := c.held[id]; held != nil {
			v := noValue()
			v.borrow = held
			return v, nil
		}
		// borrowing a copy value has no ownership effect
		return noValue(), nil
	}

	if !c.table.NestedIn(lifetimeScope, c.table.Decl(id).Scope) {
		c.diag.ErrorWithHint(diagnostic.BorrowOutlivesOwnerError, expr.Line, expr.Column,
			fmt.Sprintf("borrow of '%s' outlives its owner", ident.Name),
			"a borrow is only valid within the scope that owns the value")
		return noValue(), nil
	}

	kind := BorrowShared
	if expr.Mutable {
		kind = BorrowMut
	}
	b := c.createBorrow(id, kind, lifetimeScope, expr.Line, expr.Column)
	v := noValue()
	v.borrow = b
	return v, b
}

// createBorrow validates and records a borrow of lender. A mutable borrow
// requires a mutable lender and no other borrows; shared borrows coexist
// freely but exclude a mutable one.
func (c *Checker) createBorrow(lender binding.DeclID, kind BorrowKind, sc binding.ScopeID, line, col int) *Borrow {
	d := c.table.Decl(lender)
	st := c.states[lender]

	if !st.usable() {
		c.diag.ErrorfSpan(diagnostic.UseAfterMoveError, line, col, len(d.Name),
			"cannot borrow '%s': value is %s", d.Name, st)
		return nil
	}

	if kind == BorrowMut {
		if d.Mutability != binding.Mutable {
			c.diag.ErrorWithHint(diagnostic.ImmutableAssignmentError, line, col,
				fmt.Sprintf("cannot mutably borrow immutable '%s'", d.Name),
				fmt.Sprintf("declare '%s' as mutable", d.Name))
			return nil
		}
		if st.Kind == StateBorrowed {
			c.diag.Errorf(diagnostic.UseWhileBorrowedError, line, col,
				"cannot mutably borrow '%s' while it is borrowed", d.Name)
			return nil
		}
		c.states[lender] = State{Kind: StateBorrowed, Mutable: true}
	} else {
		if st.Kind == StateBorrowed && st.Mutable {
			c.diag.Errorf(diagnostic.UseWhileBorrowedError, line, col,
				"cannot borrow '%s' while it is mutably borrowed", d.Name)
			return nil
		}
		if st.Kind == StateBorrowed {
			st.Count++
			c.states[lender] = st
		} else {
			c.states[lender] = State{Kind: StateBorrowed, Count: 1}
		}
	}

	c.emit(EvBorrowStart, lender, d.Name, line, col)
	b := &Borrow{Lender: lender, Kind: kind, Scope: sc, Line: line, Column: col}
	c.borrows[sc] = append(c.borrows[sc], b)
	return b
}

// checkAssignStmt checks an assignment statement
func (c *Checker) checkAssignStmt(stmt *ast.AssignStmt, sc binding.ScopeID) {
	switch target := stmt.Target.(type) {
	case *ast.Identifier:
		c.checkAssignToName(stmt, target, sc)
	case *ast.FieldAccessExpr:
		c.checkAssignToField(stmt, target, sc)
	default:
		c.checkExpression(stmt.Target, sc)
		c.checkExpression(stmt.Value, sc)
	}
}

func (c *Checker) checkAssignToName(stmt *ast.AssignStmt, target *ast.Identifier, sc binding.ScopeID) {
	id, found := c.table.Resolve(sc, target.Name)
	if !found {
		c.diag.ErrorfSpan(diagnostic.UnknownNameError, target.Line, target.Column, len(target.Name),
			"unknown name '%s'", target.Name)
		c.checkExpression(stmt.Value, sc)
		return
	}
	d := c.table.Decl(id)

	if d.Mutability != binding.Mutable {
		c.diag.ErrorWithHint(diagnostic.ImmutableAssignmentError, stmt.Line, stmt.Column,
			fmt.Sprintf("cannot assign to immutable '%s'", target.Name),
			fmt.Sprintf("declare '%s' as mutable", target.Name))
	}

	// evaluate the right-hand side before the write happens
	val := noValue()
	var newBorrow *Borrow
	switch v := stmt.Value.(type) {
	case *ast.Identifier:
		val = c.checkMoveSource(v, sc)
	case *ast.BorrowExpr:
		// the borrow now lives as long as the target binding's scope
		val, newBorrow = c.checkBorrowExprScoped(v, sc, d.Scope)
	default:
		val = c.checkExpression(stmt.Value, sc)
	}

	if c.heap[id] {
		st := c.states[id]
		if st.Kind == StateBorrowed {
			c.diag.Errorf(diagnostic.UseWhileBorrowedError, stmt.Line, stmt.Column,
				"cannot assign to '%s' while it is borrowed", target.Name)
			return
		}
		// overwriting revives a moved-out or released slot
		if val.heap {
			c.states[id] = State{Kind: StateOwned}
		}
	} else if val.heap {
		c.heap[id] = true
		c.states[id] = State{Kind: StateOwned}
	}

	switch {
	case newBorrow != nil:
		c.held[id] = newBorrow
	case val.callBorrowOf != binding.NoDecl:
		kind := BorrowShared
		if val.callBorrowMut {
			kind = BorrowMut
		}
		if b := c.createBorrow(val.callBorrowOf, kind, d.Scope, stmt.Line, stmt.Column); b != nil {
			c.held[id] = b
		}
	case val.borrow != nil:
		c.held[id] = val.borrow
	default:
		// overwriting with a non-borrow value drops any borrow the
		// binding was holding
		delete(c.held, id)
	}

	c.emit(EvWrite, id, d.Name, stmt.Line, stmt.Column)
}

func (c *Checker) checkAssignToField(stmt *ast.AssignStmt, target *ast.FieldAccessExpr, sc binding.ScopeID) {
	c.checkExpression(stmt.Value, sc)

	base, ok := target.Object.(*ast.Identifier)
	if !ok {
		c.checkExpression(target.Object, sc)
		return
	}
	id, found := c.table.Resolve(sc, base.Name)
	if !found {
		c.diag.ErrorfSpan(diagnostic.UnknownNameError, base.Line, base.Column, len(base.Name),
			"unknown name '%s'", base.Name)
		return
	}
	d := c.table.Decl(id)

	// writing through a borrow requires a mutable borrow
	borrowedType := d.Type != nil && d.Type.Borrowed
	if held := c.held[id]; held != nil || borrowedType {
		mutable := borrowedType && d.Type.BorrowMutable
		if held != nil && held.Kind == BorrowMut {
			mutable = true
		}
		if !mutable {
			c.diag.ErrorWithHint(diagnostic.ImmutableAssignmentError, stmt.Line, stmt.Column,
				fmt.Sprintf("cannot assign through an immutable borrow '%s'", base.Name),
				"take the borrow with &mut to write through it")
			return
		}
		if held != nil && held.Lender != binding.NoDecl {
			lender := c.table.Decl(held.Lender)
			c.emit(EvWrite, held.Lender, lender.Name, stmt.Line, stmt.Column)
		}
		return
	}

	if !c.heap[id] {
		return
	}
	st := c.states[id]
	if !st.usable() {
		c.diag.ErrorfSpan(diagnostic.UseAfterMoveError, stmt.Line, stmt.Column, len(base.Name),
			"cannot assign to field of '%s': value is %s", base.Name, st)
		return
	}
	if st.Kind == StateBorrowed {
		c.diag.Errorf(diagnostic.UseWhileBorrowedError, stmt.Line, stmt.Column,
			"cannot write to '%s' while it is borrowed", base.Name)
		return
	}
	if d.Mutability != binding.Mutable {
		c.diag.ErrorWithHint(diagnostic.ImmutableAssignmentError, stmt.Line, stmt.Column,
			fmt.Sprintf("cannot assign to field of immutable '%s'", base.Name),
			fmt.Sprintf("declare '%s' as mutable", base.Name))
		return
	}
	c.emit(EvWrite, id, d.Name, stmt.Line, stmt.Column)
}

// checkDeleteStmt checks an explicit heap release
func (c *Checker) checkDeleteStmt(stmt *ast.DeleteStmt, sc binding.ScopeID) {
	id, found := c.table.Resolve(sc, stmt.Name)
	if !found {
		c.diag.ErrorfSpan(diagnostic.UnknownNameError, stmt.Line, stmt.Column, len(stmt.Name),
			"unknown name '%s'", stmt.Name)
		return
	}
	if !c.heap[id] {
		return // releasing a copy value is a no-op; the linter flags it
	}
	d := c.table.Decl(id)
	st := c.states[id]
	switch st.Kind {
	case StateMoved, StateFreed:
		c.diag.ErrorWithHint(diagnostic.DoubleFreeError, stmt.Line, stmt.Column,
			fmt.Sprintf("cannot delete '%s': value is already %s", stmt.Name, st),
			"each value is released exactly once")
	case StateBorrowed:
		c.diag.Errorf(diagnostic.UseWhileBorrowedError, stmt.Line, stmt.Column,
			"cannot delete '%s' while it is borrowed", stmt.Name)
	default:
		c.states[id] = State{Kind: StateFreed}
		c.emit(EvDelete, id, d.Name, stmt.Line, stmt.Column)
	}
}

// checkReturnStmt checks a return statement against the current function's
// signature and the lifetime obligations of a returned borrow
func (c *Checker) checkReturnStmt(stmt *ast.ReturnStmt, sc binding.ScopeID) {
	if stmt.Value == nil {
		return
	}
	fn := c.currentFn
	returnsBorrow := fn != nil && fn.ReturnType != nil && fn.ReturnType.Borrowed

	switch v := stmt.Value.(type) {
	case *ast.Identifier:
		id, found := c.table.Resolve(sc, v.Name)
		if !found {
			c.diag.ErrorfSpan(diagnostic.UnknownNameError, v.Line, v.Column, len(v.Name),
				"unknown name '%s'", v.Name)
			return
		}
		if !returnsBorrow {
			// returning by value moves heap values out of the function
			if c.heap[id] {
				c.checkMoveSource(v, sc)
			}
			return
		}
		c.checkReturnedBorrow(id, v.Name, v.Line, v.Column)
	case *ast.BorrowExpr:
		if !returnsBorrow {
			c.checkExpression(stmt.Value, sc)
			return
		}
		ident, isIdent := v.Operand.(*ast.Identifier)
		if !isIdent {
			c.diag.Errorf(diagnostic.SyntaxError, v.Line, v.Column,
				"borrow target must be a named value")
			return
		}
		id, found := c.table.Resolve(sc, ident.Name)
		if !found {
			c.diag.ErrorfSpan(diagnostic.UnknownNameError, ident.Line, ident.Column, len(ident.Name),
				"unknown name '%s'", ident.Name)
			return
		}
		c.checkReturnedBorrow(id, ident.Name, v.Line, v.Column)
	default:
		c.checkExpression(stmt.Value, sc)
	}
}

// checkReturnedBorrow proves a returned borrow comes from the parameter
// the elision rules bound it to; any borrow of a function-local value
// would outlive its lender.
func (c *Checker) checkReturnedBorrow(id binding.DeclID, name string, line, col int) {
	fn := c.currentFn
	held := c.held[id]

	if held == nil || held.Lender != binding.NoDecl {
		c.diag.ErrorWithHint(diagnostic.BorrowOutlivesOwnerError, line, col,
			fmt.Sprintf("cannot return a borrow of '%s': it does not outlive this function", name),
			"only borrows received through parameters can be returned")
		return
	}
	if idx, isParam := c.paramIndex[id]; isParam && fn.ElidedParam >= 0 && idx != fn.ElidedParam {
		c.diag.ErrorWithHint(diagnostic.BorrowOutlivesOwnerError, line, col,
			fmt.Sprintf("returned borrow must come from parameter '%s', not '%s'",
				fn.Params[fn.ElidedParam].Name, name),
			"the return lifetime was bound to a different parameter")
	}
}

// checkIfStmt checks both branches in program order, conservatively
// assuming either may execute
func (c *Checker) checkIfStmt(stmt *ast.IfStmt, sc binding.ScopeID) {
	c.checkExpression(stmt.Condition, sc)

	thenScope := c.table.EnterScope(sc)
	for _, inner := range stmt.Then.Statements {
		c.checkStatement(inner, thenScope)
	}
	c.closeScope(thenScope)

	if stmt.Else != nil {
		c.checkStatement(stmt.Else, sc)
	}
}

// checkLoopBody checks a loop body once. A declaration may not end the
// body in a more restrictive ownership state than it had on entry, or the
// next iteration would use an invalidated value.
func (c *Checker) checkLoopBody(body *ast.Block, sc binding.ScopeID, loopVar string, line, col int) {
	entry := c.snapshotStates()

	bodyScope := c.table.EnterScope(sc)
	if loopVar != "" {
		// the loop variable is a fresh copy binding each iteration
		if _, err := c.table.Declare(bodyScope, loopVar, binding.Immutable, nil, line, col); err != nil {
			c.diag.Errorf(diagnostic.DuplicateDeclarationError, line, col,
				"'%s' already declared in this scope", loopVar)
		}
	}
	for _, stmt := range body.Statements {
		c.checkStatement(stmt, bodyScope)
	}
	c.closeScope(bodyScope)

	// walk the snapshot in declaration order so diagnostics come out in a
	// deterministic order
	ids := make([]binding.DeclID, 0, len(entry))
	for id := range entry {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		before := entry[id]
		after := c.states[id]
		if before.usable() && !after.usable() {
			d := c.table.Decl(id)
			c.diag.ErrorWithHint(diagnostic.LoopOwnershipMismatchError, line, col,
				fmt.Sprintf("'%s' is %s after one loop iteration but was %s on entry", d.Name, after, before),
				"a value moved or released inside a loop body is gone on the next iteration")
		}
	}
}

// snapshotStates copies the ownership states of all known declarations
func (c *Checker) snapshotStates() map[binding.DeclID]State {
	snap := make(map[binding.DeclID]State, len(c.states))
	for id, st := range c.states {
		snap[id] = st
	}
	return snap
}

// checkExpression checks an expression in read context
func (c *Checker) checkExpression(expr ast.Expression, sc binding.ScopeID) value {
	switch e := expr.(type) {
	case *ast.Identifier:
		return c.checkRead(e, sc)
	case *ast.BorrowExpr:
		v, _ := c.checkBorrowExpr(e, sc)
		return v
	case *ast.NewExpr:
		return c.checkNewExpr(e, sc)
	case *ast.CallExpr:
		return c.checkCall(e, sc)
	case *ast.BinaryExpr:
		c.checkExpression(e.Left, sc)
		c.checkExpression(e.Right, sc)
		return noValue()
	case *ast.UnaryExpr:
		c.checkExpression(e.Operand, sc)
		return noValue()
	case *ast.FieldAccessExpr:
		c.checkExpression(e.Object, sc)
		return noValue()
	case *ast.StringLit:
		v := noValue()
		v.heap = true
		v.structName = "String"
		return v
	default:
		// numeric and boolean literals carry no ownership
		return noValue()
	}
}

// checkRead checks a read of a declaration; reads never change state
func (c *Checker) checkRead(ident *ast.Identifier, sc binding.ScopeID) value {
	id, found := c.table.Resolve(sc, ident.Name)
	if !found {
		c.diag.ErrorfSpan(diagnostic.UnknownNameError, ident.Line, ident.Column, len(ident.Name),
			"unknown name '%s'", ident.Name)
		return noValue()
	}
	v := noValue()
	v.decl = id
	v.borrow = c.held[id]
	if !c.heap[id] {
		return v
	}
	st := c.states[id]
	if !st.usable() {
		c.diag.ErrorfSpan(diagnostic.UseAfterMoveError, ident.Line, ident.Column, len(ident.Name),
			"cannot use '%s': value is %s", ident.Name, st)
		return v
	}
	d := c.table.Decl(id)
	c.emit(EvRead, id, d.Name, ident.Line, ident.Column)
	v.heap = true
	return v
}

// checkNewExpr checks a heap allocation expression
func (c *Checker) checkNewExpr(expr *ast.NewExpr, sc binding.ScopeID) value {
	info := c.structs[expr.TypeName]
	if info == nil {
		c.diag.ErrorfSpan(diagnostic.UnknownNameError, expr.Line, expr.Column, len(expr.TypeName),
			"unknown struct '%s'", expr.TypeName)
	}

	seen := make(map[string]bool, len(expr.Fields))
	for _, init := range expr.Fields {
		if seen[init.Name] {
			c.diag.ErrorfSpan(diagnostic.DuplicateDeclarationError, init.Line, init.Column, len(init.Name),
				"field '%s' initialized twice", init.Name)
		}
		seen[init.Name] = true
		if info != nil {
			if _, known := info.Fields[init.Name]; !known {
				c.diag.ErrorfSpan(diagnostic.UnknownNameError, init.Line, init.Column, len(init.Name),
					"struct '%s' has no field '%s'", expr.TypeName, init.Name)
			}
		}
		c.checkExpression(init.Value, sc)
	}

	v := noValue()
	v.heap = true
	v.structName = expr.TypeName
	return v
}

// checkCall checks a function call. Borrowed parameters become borrows
// scoped to the call; by-value heap parameters take ownership of their
// arguments; a borrowed return carries the elided lender back out.
func (c *Checker) checkCall(call *ast.CallExpr, sc binding.ScopeID) value {
	fn := c.functions[call.Function]
	if fn == nil {
		c.diag.ErrorfSpan(diagnostic.UnknownNameError, call.Line, call.Column, len(call.Function),
			"unknown function '%s'", call.Function)
		for _, arg := range call.Args {
			c.checkExpression(arg, sc)
		}
		return noValue()
	}

	if len(call.Args) != len(fn.Params) {
		c.diag.Errorf(diagnostic.SyntaxError, call.Line, call.Column,
			"function '%s' takes %d argument(s), got %d", call.Function, len(fn.Params), len(call.Args))
	}

	// a transient scope spanning only the call bounds argument borrows
	callScope := c.table.EnterScope(sc)
	lenders := make([]binding.DeclID, len(fn.Params))
	for i := range lenders {
		lenders[i] = binding.NoDecl
	}

	for i, arg := range call.Args {
		if i >= len(fn.Params) {
			c.checkExpression(arg, sc)
			continue
		}
		p := fn.Params[i]
		switch {
		case p.Type != nil && p.Type.Borrowed:
			lenders[i] = c.checkBorrowedArg(arg, p, callScope, sc)
		case c.isHeapType(p.Type):
			// passing by value to an owning parameter is a move
			if ident, isIdent := arg.(*ast.Identifier); isIdent {
				c.checkMoveSource(ident, sc)
			} else {
				c.checkExpression(arg, sc)
			}
		default:
			c.checkExpression(arg, sc)
		}
	}

	c.closeScope(callScope)

	if fn.ReturnType != nil && fn.ReturnType.Borrowed {
		if fn.ElidedParam >= 0 && fn.ElidedParam < len(lenders) {
			v := noValue()
			v.callBorrowOf = lenders[fn.ElidedParam]
			v.callBorrowMut = fn.ReturnType.BorrowMutable
			return v
		}
		return noValue()
	}
	if c.isHeapType(fn.ReturnType) {
		v := noValue()
		v.heap = true
		v.structName = fn.ReturnType.Name
		return v
	}
	return noValue()
}

// checkBorrowedArg checks an argument to a borrowed parameter and returns
// the caller-side lender declaration, if one can be named
func (c *Checker) checkBorrowedArg(arg ast.Expression, p ParamInfo, callScope, sc binding.ScopeID) binding.DeclID {
	kind := BorrowShared
	if p.Type.BorrowMutable {
		kind = BorrowMut
	}

	switch a := arg.(type) {
	case *ast.BorrowExpr:
		if p.Type.BorrowMutable && !a.Mutable {
			c.diag.ErrorWithHint(diagnostic.ImmutableAssignmentError, a.Line, a.Column,
				fmt.Sprintf("parameter '%s' needs a mutable borrow", p.Name),
				"pass the argument with &mut")
		}
		ident, isIdent := a.Operand.(*ast.Identifier)
		if !isIdent {
			c.diag.Errorf(diagnostic.SyntaxError, a.Line, a.Column,
				"borrow target must be a named value")
			c.checkExpression(a.Operand, sc)
			return binding.NoDecl
		}
		id, found := c.table.Resolve(sc, ident.Name)
		if !found {
			c.diag.ErrorfSpan(diagnostic.UnknownNameError, ident.Line, ident.Column, len(ident.Name),
				"unknown name '%s'", ident.Name)
			return binding.NoDecl
		}
		if !c.heap[id] {
			if held := c.held[id]; held != nil {
				return held.Lender
			}
			return binding.NoDecl
		}
		c.createBorrow(id, kind, callScope, a.Line, a.Column)
		return id
	case *ast.Identifier:
		id, found := c.table.Resolve(sc, a.Name)
		if !found {
			c.diag.ErrorfSpan(diagnostic.UnknownNameError, a.Line, a.Column, len(a.Name),
				"unknown name '%s'", a.Name)
			return binding.NoDecl
		}
		if held := c.held[id]; held != nil {
			// passing an existing borrow along
			if kind == BorrowMut && held.Kind != BorrowMut {
				c.diag.Errorf(diagnostic.ImmutableAssignmentError, a.Line, a.Column,
					"cannot pass a shared borrow where '%s' needs &mut", p.Name)
			}
			return held.Lender
		}
		if c.heap[id] {
			// auto-borrow of an owned value for the duration of the call
			c.createBorrow(id, kind, callScope, a.Line, a.Column)
			return id
		}
		c.checkExpression(arg, sc)
		return binding.NoDecl
	default:
		c.checkExpression(arg, sc)
		return binding.NoDecl
	}
}
