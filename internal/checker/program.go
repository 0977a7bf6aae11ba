package checker

import (
	"github.com/velalang/vela/internal/ast"
	"github.com/velalang/vela/internal/diagnostic"
)

// StructInfo holds information about a declared struct
type StructInfo struct {
	Name       string
	Fields     map[string]*ast.TypeRef
	FieldOrder []string
}

// ParamInfo holds information about a function parameter
type ParamInfo struct {
	Name    string
	Mutable bool
	Type    *ast.TypeRef
}

// FuncInfo holds information about a function signature.
// ElidedParam is the index of the parameter whose caller-side declaration
// lends the returned borrow, or -1 when the function returns no borrow.
type FuncInfo struct {
	Name        string
	Params      []ParamInfo
	ReturnType  *ast.TypeRef
	ElidedParam int
}

// registerStructs registers all struct declarations
func (c *Checker) registerStructs() {
	for _, st := range c.prog.Structs {
		if _, exists := c.structs[st.Name]; exists {
			c.diag.ErrorfSpan(diagnostic.DuplicateDeclarationError, st.Line, st.Column, len(st.Name),
				"struct '%s' already defined", st.Name)
			continue
		}

		info := &StructInfo{
			Name:       st.Name,
			Fields:     make(map[string]*ast.TypeRef),
			FieldOrder: make([]string, 0, len(st.Fields)),
		}
		for _, field := range st.Fields {
			if _, dup := info.Fields[field.Name]; dup {
				c.diag.ErrorfSpan(diagnostic.DuplicateDeclarationError, field.Line, field.Column, len(field.Name),
					"duplicate field '%s' in struct '%s'", field.Name, st.Name)
				continue
			}
			info.Fields[field.Name] = field.Type
			info.FieldOrder = append(info.FieldOrder, field.Name)
		}
		c.structs[st.Name] = info
	}
}

// registerFunctions registers all function signatures and checks the
// lifetime elision rules once per definition, not per call.
func (c *Checker) registerFunctions() {
	for _, fn := range c.prog.Functions {
		if _, exists := c.functions[fn.Name]; exists {
			c.diag.ErrorfSpan(diagnostic.DuplicateDeclarationError, fn.Line, fn.Column, len(fn.Name),
				"function '%s' already defined", fn.Name)
			c.redefined[fn] = true
			continue
		}

		info := &FuncInfo{
			Name:        fn.Name,
			Params:      make([]ParamInfo, 0, len(fn.Params)),
			ReturnType:  fn.ReturnType,
			ElidedParam: -1,
		}
		for _, p := range fn.Params {
			info.Params = append(info.Params, ParamInfo{
				Name:    p.Name,
				Mutable: p.Mutable,
				Type:    p.Type,
			})
		}

		if fn.ReturnType != nil && fn.ReturnType.Borrowed {
			info.ElidedParam = c.elideReturnLifetime(fn, info)
		}

		c.functions[fn.Name] = info
	}
}

// elideReturnLifetime applies the elision rules, in order:
// a single borrowed parameter binds the returned borrow; otherwise a
// borrowed parameter named 'self' binds it; otherwise the signature is
// rejected as ambiguous.
func (c *Checker) elideReturnLifetime(fn *ast.FunctionDecl, info *FuncInfo) int {
	borrowed := make([]int, 0, len(info.Params))
	for i, p := range info.Params {
		if p.Type != nil && p.Type.Borrowed {
			borrowed = append(borrowed, i)
		}
	}

	if len(borrowed) == 1 {
		return borrowed[0]
	}
	for _, i := range borrowed {
		if info.Params[i].Name == "self" {
			return i
		}
	}

	c.diag.ErrorWithHint(diagnostic.AmbiguousLifetimeError, fn.Line, fn.Column,
		"cannot determine which parameter the returned borrow of '"+fn.Name+"' comes from",
		"a borrowed return needs exactly one borrowed parameter, or a 'self' parameter")
	return -1
}

// isHeapType reports whether a value of the given declared type is
// heap-allocated and therefore subject to ownership tracking
func (c *Checker) isHeapType(t *ast.TypeRef) bool {
	if t == nil || t.Borrowed {
		return false
	}
	if t.Name == "String" {
		return true
	}
	_, isStruct := c.structs[t.Name]
	return isStruct
}
