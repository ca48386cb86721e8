package resolver

import (
	"strings"

	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/config"
	"github.com/simon-curtis/jitzu/internal/diagnostics"
	"github.com/simon-curtis/jitzu/internal/symbols"
	"github.com/simon-curtis/jitzu/internal/token"
)

// resolveExpression resolves expr and returns the node that replaces it.
func (r *Resolver) resolveExpression(expr ast.Expression) ast.Expression {
	switch e := expr.(type) {
	case nil:
		return nil

	case *ast.Identifier:
		return r.resolveIdentifier(e)

	case *ast.IntegerLiteral, *ast.FloatLiteral, *ast.StringLiteral,
		*ast.CharLiteral, *ast.BooleanLiteral, *ast.SlotExpression:
		return e

	case *ast.InterpolatedString:
		for i, part := range e.Parts {
			e.Parts[i] = r.resolveExpression(part)
		}

	case *ast.ArrayLiteral:
		for i, el := range e.Elements {
			e.Elements[i] = r.resolveExpression(el)
		}

	case *ast.PrefixExpression:
		e.Right = r.resolveExpression(e.Right)

	case *ast.InfixExpression:
		e.Left = r.resolveExpression(e.Left)
		e.Right = r.resolveExpression(e.Right)

	case *ast.AssignExpression:
		e.Value = r.resolveExpression(e.Value)
		e.Target = r.resolveTarget(e.Target)

	case *ast.CallExpression:
		e.Function = r.resolveExpression(e.Function)
		for i, arg := range e.Arguments {
			e.Arguments[i] = r.resolveExpression(arg)
		}

	case *ast.MemberExpression:
		return r.resolveMember(e)

	case *ast.IndexExpression:
		e.Left = r.resolveExpression(e.Left)
		e.Index = r.resolveExpression(e.Index)

	case *ast.NewExpression:
		for _, f := range e.Fields {
			f.Value = r.resolveExpression(f.Value)
		}

	case *ast.TryExpression:
		e.Value = r.resolveExpression(e.Value)

	case *ast.RangeExpression:
		e.Start = r.resolveExpression(e.Start)
		e.End = r.resolveExpression(e.End)

	case *ast.BlockStatement:
		r.resolveBlock(e)

	case *ast.IfExpression:
		e.Condition = r.resolveExpression(e.Condition)
		r.resolveBlock(e.Consequence)
		e.Alternative = r.resolveExpression(e.Alternative)

	case *ast.MatchExpression:
		r.resolveMatch(e)
	}
	return expr
}

// resolveIdentifier tries bindings nearest first, then type names.
func (r *Resolver) resolveIdentifier(id *ast.Identifier) ast.Expression {
	if b, ok := r.scope.Lookup(id.Value); ok {
		return r.slotFor(b, id.Token)
	}
	def, found, err := r.program.ResolveTypeName(id.Value)
	if err != nil {
		r.errorf(diagnostics.ErrB002, id.Token, "%v", err)
		return id
	}
	if found {
		return r.typeRead(def, id.Token)
	}
	r.errorf(diagnostics.ErrB001, id.Token, "undefined identifier %s", id.Value)
	return id
}

// typeRead reads the synthetic global holding def as a value. Every read
// of the same type shares the binding.
func (r *Resolver) typeRead(def *symbols.TypeDef, tok token.Token) *ast.SlotExpression {
	b := r.program.TypeBinding(def, tok)
	se := r.slotFor(b, tok)
	se.Name = def.FullName
	return se
}

// resolveMember tests a dotted chain rooted at an identifier as a
// qualified type name first, longest prefix winning, before resolving its
// root as a value.
func (r *Resolver) resolveMember(me *ast.MemberExpression) ast.Expression {
	chain, root := memberChain(me)
	if root != nil {
		parts := []string{root.Value}
		for _, m := range chain {
			parts = append(parts, m.Member.Value)
		}
		for k := len(parts); k >= 2; k-- {
			def, ok := r.program.LookupType(strings.Join(parts[:k], "."))
			if !ok {
				continue
			}
			read := r.typeRead(def, root.Token)
			if k == len(parts) {
				return read
			}
			chain[k-1].Left = read
			return me
		}
	}
	me.Left = r.resolveExpression(me.Left)
	return me
}

// memberChain returns the member nodes of a.b.c from the innermost out,
// and the root identifier if the chain has one.
func memberChain(me *ast.MemberExpression) ([]*ast.MemberExpression, *ast.Identifier) {
	var chain []*ast.MemberExpression
	var expr ast.Expression = me
	for {
		m, ok := expr.(*ast.MemberExpression)
		if !ok {
			break
		}
		chain = append([]*ast.MemberExpression{m}, chain...)
		expr = m.Left
	}
	root, _ := expr.(*ast.Identifier)
	return chain, root
}

// resolveTarget resolves the left-hand side of an assignment.
func (r *Resolver) resolveTarget(target ast.Expression) ast.Expression {
	switch t := target.(type) {
	case *ast.Identifier:
		b, ok := r.scope.Lookup(t.Value)
		if !ok {
			r.errorf(diagnostics.ErrB001, t.Token, "undefined identifier %s", t.Value)
			return t
		}
		if b.Callable != nil || b.TypeValue != nil {
			r.errorf(diagnostics.ErrB003, t.Token, "cannot assign to %s", t.Value)
			return t
		}
		return r.slotFor(b, t.Token)
	case *ast.MemberExpression:
		resolved := r.resolveMember(t)
		if _, ok := resolved.(*ast.MemberExpression); !ok {
			r.errorf(diagnostics.ErrB003, t.Token, "cannot assign to a type")
		}
		return resolved
	}
	return r.resolveExpression(target)
}

// resolveMatch stores the subject in a hidden binding evaluated once; each
// arm gets its own scope for the names its pattern binds.
func (r *Resolver) resolveMatch(me *ast.MatchExpression) {
	me.Subject = r.resolveExpression(me.Subject)
	me.SubjectBinding = r.declareHidden(config.MatchSubjectName, me.Token)
	for _, arm := range me.Arms {
		pop := r.pushScope()
		r.resolvePattern(arm.Pattern)
		arm.Body = r.resolveExpression(arm.Body)
		pop()
	}
}

// resolvePattern declares bound names left to right.
func (r *Resolver) resolvePattern(pat ast.Pattern) {
	switch p := pat.(type) {
	case *ast.BindingPattern:
		p.Binding = r.declare(p.Name.Value, p.Name.Token)
	case *ast.LiteralPattern:
		p.Value = r.resolveExpression(p.Value)
	case *ast.ConstructorPattern:
		for _, arg := range p.Args {
			r.resolvePattern(arg)
		}
	}
}
