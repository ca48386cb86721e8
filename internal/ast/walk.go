package ast

// Walk traverses the tree rooted at node in source order, calling fn for
// each node. Children are skipped when fn returns false. Type annotations
// are not visited.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	switch n := node.(type) {
	case *Program:
		for _, s := range n.Statements {
			Walk(s, fn)
		}
	case *ExpressionStatement:
		walkExpr(n.Expression, fn)
	case *BlockStatement:
		for _, s := range n.Statements {
			Walk(s, fn)
		}
	case *LetStatement:
		walkIdent(n.Name, fn)
		walkExpr(n.Value, fn)
	case *ReturnStatement:
		walkExpr(n.Value, fn)
	case *WhileStatement:
		walkExpr(n.Condition, fn)
		walkBlock(n.Body, fn)
	case *ForStatement:
		walkIdent(n.Variable, fn)
		walkExpr(n.Iterable, fn)
		walkBlock(n.Body, fn)
	case *FunctionStatement:
		walkIdent(n.Name, fn)
		for _, p := range n.Parameters {
			walkIdent(p.Name, fn)
		}
		walkBlock(n.Body, fn)
	case *ImplStatement:
		walkIdent(n.TypeName, fn)
		for _, m := range n.Methods {
			Walk(m, fn)
		}
	case *TypeStatement:
		walkIdent(n.Name, fn)
	case *UnionStatement:
		walkIdent(n.Name, fn)

	case *InterpolatedString:
		for _, p := range n.Parts {
			walkExpr(p, fn)
		}
	case *ArrayLiteral:
		for _, e := range n.Elements {
			walkExpr(e, fn)
		}
	case *PrefixExpression:
		walkExpr(n.Right, fn)
	case *InfixExpression:
		walkExpr(n.Left, fn)
		walkExpr(n.Right, fn)
	case *AssignExpression:
		walkExpr(n.Target, fn)
		walkExpr(n.Value, fn)
	case *CallExpression:
		walkExpr(n.Function, fn)
		for _, a := range n.Arguments {
			walkExpr(a, fn)
		}
	case *MemberExpression:
		walkExpr(n.Left, fn)
		walkIdent(n.Member, fn)
	case *IndexExpression:
		walkExpr(n.Left, fn)
		walkExpr(n.Index, fn)
	case *NewExpression:
		for _, f := range n.Fields {
			walkExpr(f.Value, fn)
		}
	case *TryExpression:
		walkExpr(n.Value, fn)
	case *RangeExpression:
		walkExpr(n.Start, fn)
		walkExpr(n.End, fn)
	case *IfExpression:
		walkExpr(n.Condition, fn)
		walkBlock(n.Consequence, fn)
		walkExpr(n.Alternative, fn)
	case *MatchExpression:
		walkExpr(n.Subject, fn)
		for _, arm := range n.Arms {
			Walk(arm.Pattern, fn)
			walkExpr(arm.Body, fn)
		}

	case *LiteralPattern:
		walkExpr(n.Value, fn)
	case *BindingPattern:
		walkIdent(n.Name, fn)
	case *ConstructorPattern:
		for _, a := range n.Args {
			Walk(a, fn)
		}
	}
}

func walkIdent(id *Identifier, fn func(Node) bool) {
	if id != nil {
		Walk(id, fn)
	}
}

func walkBlock(b *BlockStatement, fn func(Node) bool) {
	if b != nil {
		Walk(b, fn)
	}
}

// walkExpr skips nil expressions, including typed nils such as an absent
// *BlockStatement alternative.
func walkExpr(e Expression, fn func(Node) bool) {
	if e == nil {
		return
	}
	if b, ok := e.(*BlockStatement); ok && b == nil {
		return
	}
	if i, ok := e.(*IfExpression); ok && i == nil {
		return
	}
	Walk(e, fn)
}
