package analyzer

import (
	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/diagnostics"
	"github.com/simon-curtis/jitzu/internal/symbols"
	"github.com/simon-curtis/jitzu/internal/typesystem"
)

// declareHeader fixes the parameter types and the declared return type of
// a function. Unannotated parameters are Any.
func (w *walker) declareHeader(s *ast.FunctionStatement) {
	u, ok := s.Callable.(*symbols.UserFunction)
	if !ok {
		return
	}
	for i, p := range s.Parameters {
		var t typesystem.Type = typesystem.Any
		if p.Type != nil {
			resolved, err := w.program.ResolveType(p.Type, nil)
			if err != nil {
				w.addError(err)
			} else {
				t = resolved
			}
		}
		u.Params[i] = t
		if p.Binding != nil {
			p.Binding.Type = t
		}
	}
	if s.SelfBinding != nil && u.Owner != nil {
		s.SelfBinding.Type = u.Owner.Type()
	}
	if s.ReturnType != nil {
		rt, err := w.program.ResolveType(s.ReturnType, nil)
		if err != nil {
			w.addError(err)
			rt = typesystem.Any
		}
		u.ReturnType = rt
		u.Declared = true
	}
	publish(s, u)
}

// publish exposes the signature once the return type is known.
func publish(s *ast.FunctionStatement, u *symbols.UserFunction) {
	if u.ReturnType == nil {
		return
	}
	sig := u.Signature()
	u.Fn.Signature = sig
	if s.Binding != nil {
		s.Binding.Type = sig
	}
}

// analyzeFunction analyzes a body once and settles its return type: the
// declared one, checked against every return path, or the single type
// all paths agree on.
func (w *walker) analyzeFunction(s *ast.FunctionStatement) {
	u, ok := s.Callable.(*symbols.UserFunction)
	if !ok || w.analyzed[s] {
		return
	}
	w.analyzed[s] = true
	w.analyzing[u] = true
	saved := w.fn
	w.fn = &funcContext{user: u}
	defer func() {
		w.fn = saved
		delete(w.analyzing, u)
	}()

	w.inferBlock(s.Body)

	sites := w.fn.returns
	if !blockTerminates(s.Body) {
		var node ast.Node = s.Body
		var t typesystem.Type = typesystem.Unit
		if trailing := s.Body.Trailing(); trailing != nil {
			node, t = trailing, trailing.StaticType()
		}
		sites = append(sites, returnSite{node: node, typ: t})
	}

	if u.Declared {
		if typesystem.IsUnit(u.ReturnType) {
			return
		}
		for _, site := range sites {
			if !w.assignable(u.ReturnType, site.typ) {
				w.errorf(site.node, diagnostics.ErrT002, "function %s returns %s, declared %s", u.CallableName(), site.typ, u.ReturnType)
			}
		}
		return
	}

	var result typesystem.Type
	for _, site := range sites {
		if result == nil {
			result = site.typ
			continue
		}
		joined, ok := join(result, site.typ)
		if !ok {
			w.errorf(site.node, diagnostics.ErrT001, "function %s returns both %s and %s", u.CallableName(), result, site.typ)
			result = typesystem.Any
			break
		}
		result = joined
	}
	if result == nil {
		result = typesystem.Unit
	}
	u.ReturnType = result
	publish(s, u)
}

// returnTypeOf returns the return type of u, analyzing its body first when
// the type is not yet known.
func (w *walker) returnTypeOf(u *symbols.UserFunction, at ast.Node) typesystem.Type {
	if u.ReturnType != nil {
		return u.ReturnType
	}
	if w.analyzing[u] {
		w.errorf(at, diagnostics.ErrT001, "recursive function %s needs an explicit return type", u.CallableName())
		return typesystem.Any
	}
	if u.Decl != nil && w.mode == ModeBodies {
		if u.Decl.Depth > 1 {
			w.declareHeader(u.Decl)
		}
		w.analyzeFunction(u.Decl)
	}
	if u.ReturnType == nil {
		return typesystem.Any
	}
	return u.ReturnType
}

// blockTerminates reports whether control never falls off the end of b.
func blockTerminates(b *ast.BlockStatement) bool {
	n := len(b.Statements)
	return n > 0 && terminates(b.Statements[n-1])
}

func terminates(stmt ast.Statement) bool {
	switch s := stmt.(type) {
	case *ast.ReturnStatement:
		return true
	case *ast.BlockStatement:
		return blockTerminates(s)
	case *ast.ExpressionStatement:
		return exprTerminates(s.Expression)
	}
	return false
}

func exprTerminates(expr ast.Expression) bool {
	switch e := expr.(type) {
	case *ast.BlockStatement:
		return blockTerminates(e)
	case *ast.IfExpression:
		return e.Alternative != nil && blockTerminates(e.Consequence) && exprTerminates(e.Alternative)
	}
	return false
}
