package ast

import (
	"fmt"
	"strings"
)

// Print returns a tree-like string representation of the AST for debugging
func Print(node Node) string {
	var sb strings.Builder
	printNode(&sb, node, 0)
	return sb.String()
}

func printNode(sb *strings.Builder, node Node, indent int) {
	if node == nil {
		return
	}

	prefix := strings.Repeat("  ", indent)

	switch n := node.(type) {
	case *Program:
		sb.WriteString(prefix + "Program\n")
		for _, st := range n.Structs {
			printNode(sb, st, indent+1)
		}
		for _, fn := range n.Functions {
			printNode(sb, fn, indent+1)
		}
		for _, stmt := range n.Statements {
			printNode(sb, stmt, indent+1)
		}

	case *StructDecl:
		sb.WriteString(fmt.Sprintf("%sStruct: %s\n", prefix, n.Name))
		for _, f := range n.Fields {
			printNode(sb, f, indent+1)
		}

	case *FieldDecl:
		sb.WriteString(fmt.Sprintf("%sField: %s: %s\n", prefix, n.Name, n.Type.String()))

	case *FunctionDecl:
		sb.WriteString(fmt.Sprintf("%sFunction: %s\n", prefix, n.Name))
		if len(n.Params) > 0 {
			sb.WriteString(fmt.Sprintf("%s  Params:\n", prefix))
			for _, p := range n.Params {
				printNode(sb, p, indent+2)
			}
		}
		if n.ReturnType != nil {
			sb.WriteString(fmt.Sprintf("%s  Returns: %s\n", prefix, n.ReturnType.String()))
		}
		if n.Body != nil {
			sb.WriteString(fmt.Sprintf("%s  Body:\n", prefix))
			for _, stmt := range n.Body.Statements {
				printNode(sb, stmt, indent+2)
			}
		}

	case *Param:
		mod := ""
		if n.Mutable {
			mod = "mutable "
		}
		sb.WriteString(fmt.Sprintf("%sParam: %s%s: %s\n", prefix, mod, n.Name, n.Type.String()))

	case *Block:
		sb.WriteString(prefix + "Block\n")
		for _, stmt := range n.Statements {
			printNode(sb, stmt, indent+1)
		}

	case *BindStmt:
		kw := "immutable"
		if n.Mutable {
			kw = "mutable"
		}
		annot := ""
		if n.Type != nil {
			annot = ": " + n.Type.String()
		}
		sb.WriteString(fmt.Sprintf("%sBind (%s): %s%s\n", prefix, kw, n.Name, annot))
		printNode(sb, n.Value, indent+1)

	case *AssignStmt:
		sb.WriteString(prefix + "Assign\n")
		sb.WriteString(prefix + "  Target:\n")
		printNode(sb, n.Target, indent+2)
		sb.WriteString(prefix + "  Value:\n")
		printNode(sb, n.Value, indent+2)

	case *DeleteStmt:
		sb.WriteString(fmt.Sprintf("%sDelete: %s\n", prefix, n.Name))

	case *ReturnStmt:
		sb.WriteString(prefix + "Return\n")
		printNode(sb, n.Value, indent+1)

	case *IfStmt:
		sb.WriteString(prefix + "If\n")
		sb.WriteString(prefix + "  Condition:\n")
		printNode(sb, n.Condition, indent+2)
		sb.WriteString(prefix + "  Then:\n")
		printNode(sb, n.Then, indent+2)
		if n.Else != nil {
			sb.WriteString(prefix + "  Else:\n")
			printNode(sb, n.Else, indent+2)
		}

	case *WhileStmt:
		sb.WriteString(prefix + "While\n")
		sb.WriteString(prefix + "  Condition:\n")
		printNode(sb, n.Condition, indent+2)
		sb.WriteString(prefix + "  Body:\n")
		printNode(sb, n.Body, indent+2)

	case *ForInStmt:
		sb.WriteString(fmt.Sprintf("%sForIn: %s\n", prefix, n.Variable))
		sb.WriteString(prefix + "  Iterable:\n")
		printNode(sb, n.Iterable, indent+2)
		sb.WriteString(prefix + "  Body:\n")
		printNode(sb, n.Body, indent+2)

	case *ExprStmt:
		sb.WriteString(prefix + "ExprStmt\n")
		printNode(sb, n.Expr, indent+1)

	case *BinaryExpr:
		sb.WriteString(fmt.Sprintf("%sBinary: %s\n", prefix, n.Op))
		printNode(sb, n.Left, indent+1)
		printNode(sb, n.Right, indent+1)

	case *UnaryExpr:
		sb.WriteString(fmt.Sprintf("%sUnary: %s\n", prefix, n.Op))
		printNode(sb, n.Operand, indent+1)

	case *BorrowExpr:
		op := "&"
		if n.Mutable {
			op = "&mut"
		}
		sb.WriteString(fmt.Sprintf("%sBorrow: %s\n", prefix, op))
		printNode(sb, n.Operand, indent+1)

	case *NewExpr:
		sb.WriteString(fmt.Sprintf("%sNew: %s\n", prefix, n.TypeName))
		for _, f := range n.Fields {
			sb.WriteString(fmt.Sprintf("%s  %s:\n", prefix, f.Name))
			printNode(sb, f.Value, indent+2)
		}

	case *CallExpr:
		sb.WriteString(fmt.Sprintf("%sCall: %s\n", prefix, n.Function))
		for _, arg := range n.Args {
			printNode(sb, arg, indent+1)
		}

	case *FieldAccessExpr:
		sb.WriteString(fmt.Sprintf("%sFieldAccess: .%s\n", prefix, n.Field))
		printNode(sb, n.Object, indent+1)

	case *Identifier:
		sb.WriteString(fmt.Sprintf("%sIdentifier: %s\n", prefix, n.Name))

	case *IntLit:
		sb.WriteString(fmt.Sprintf("%sInt: %s\n", prefix, n.Value))

	case *FloatLit:
		sb.WriteString(fmt.Sprintf("%sFloat: %s\n", prefix, n.Value))

	case *StringLit:
		sb.WriteString(fmt.Sprintf("%sString: %q\n", prefix, n.Value))

	case *BoolLit:
		sb.WriteString(fmt.Sprintf("%sBool: %t\n", prefix, n.Value))

	default:
		sb.WriteString(fmt.Sprintf("%s<unknown node %T>\n", prefix, node))
	}
}
