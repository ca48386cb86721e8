package analyzer

import (
	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/diagnostics"
	"github.com/simon-curtis/jitzu/internal/symbols"
	"github.com/simon-curtis/jitzu/internal/typesystem"
)

// inferCall resolves the callee of a call and types its result.
func (w *walker) inferCall(e *ast.CallExpression) typesystem.Type {
	if me, ok := e.Function.(*ast.MemberExpression); ok {
		return w.inferMemberCall(e, me)
	}

	e.Function = w.infer(e.Function)
	args := w.inferArgs(e)

	if se, ok := e.Function.(*ast.SlotExpression); ok && se.Binding != nil {
		if c, ok := se.Binding.Callable.(symbols.Callable); ok {
			kind := ast.CallStatic
			if se.Scope != ast.ScopeGlobal {
				// Nested functions are closures built at run time.
				kind = ast.CallDynamic
			}
			return w.callCallable(e, c, args, kind)
		}
	}

	ft := e.Function.StaticType()
	e.Kind = ast.CallDynamic
	switch f := ft.(type) {
	case typesystem.TFunc:
		return w.callValue(e, complete(f), args)
	case typesystem.TCon:
		if typesystem.IsAny(f) {
			return typesystem.Any
		}
	}
	w.errorf(e, diagnostics.ErrT002, "%s is not callable", ft)
	return typesystem.Any
}

func (w *walker) inferArgs(e *ast.CallExpression) []typesystem.Type {
	types := make([]typesystem.Type, len(e.Arguments))
	for i, arg := range e.Arguments {
		e.Arguments[i] = w.infer(arg)
		types[i] = e.Arguments[i].StaticType()
	}
	return types
}

// callValue checks a call through a function-typed value.
func (w *walker) callValue(e *ast.CallExpression, sig typesystem.TFunc, args []typesystem.Type) typesystem.Type {
	var params []string
	for _, v := range sig.FreeTypeVariables() {
		params = append(params, v.Name)
	}
	b, err := typesystem.Bind(sig, params, args, w.program.Bases)
	if err != nil {
		w.errorf(e, diagnostics.ErrT002, "cannot call %s with %s: %v", sig, symbols.TypeList(args), err)
		return closeOver(sig.ReturnType)
	}
	return closeOver(b.ReturnType)
}

func (w *walker) callCallable(e *ast.CallExpression, c symbols.Callable, args []typesystem.Type, kind ast.CallKind) typesystem.Type {
	if ctor, ok := c.(*symbols.Constructor); ok && ctor.Nullary() {
		w.errorf(e, diagnostics.ErrT002, "%s takes no arguments and is not called", ctor.Variant.Tag)
		return closeOver(ctor.Def.Type())
	}
	sig, typeParams := w.signatureOf(c, e)
	b, err := typesystem.Bind(sig, typeParams, args, w.program.Bases)
	if err != nil {
		w.errorf(e, diagnostics.ErrT002, "cannot call %s with %s: %v", c.CallableName(), symbols.TypeList(args), err)
		return closeOver(sig.ReturnType)
	}
	e.Target = c
	e.Kind = kind
	return closeOver(b.ReturnType)
}

// signatureOf returns the signature to bind arguments against, inferring
// a user function's return type first when needed.
func (w *walker) signatureOf(c symbols.Callable, at ast.Node) (typesystem.TFunc, []string) {
	switch f := c.(type) {
	case *symbols.UserFunction:
		w.returnTypeOf(f, at)
		return complete(f.Signature()), nil
	case *symbols.Constructor:
		return f.Signature(), f.TypeParams()
	case *symbols.HostFunction:
		return complete(f.Signature()), f.TypeParams
	}
	return complete(c.Signature()), nil
}

// inferMemberCall resolves recv.name(args). Through a type name it is a
// static call; otherwise the candidate groups are tried in order: adapter
// methods, the type's own methods, host methods of the type and its
// bases, then extension functions taking the receiver first.
func (w *walker) inferMemberCall(e *ast.CallExpression, me *ast.MemberExpression) typesystem.Type {
	me.Left = w.infer(me.Left)
	args := w.inferArgs(e)
	name := me.Member.Value
	recv := me.Left.StaticType()

	if tt, ok := recv.(typesystem.TType); ok {
		return w.staticCall(e, me, tt.Type, args)
	}

	full := append([]typesystem.Type{recv}, args...)
	for _, group := range w.memberCandidates(recv, name) {
		c, b, ambiguous := w.selectOverload(group, full, e)
		if ambiguous != nil {
			w.errorf(e, diagnostics.ErrO001, "ambiguous call %s on %s with %s: %s and %s",
				name, recv, symbols.TypeList(args), c.CallableName(), ambiguous.CallableName())
			return typesystem.Any
		}
		if c != nil {
			e.Target = c
			e.Kind = ast.CallStatic
			e.Receiver = me.Left
			return closeOver(b.ReturnType)
		}
	}

	// A field holding a function value.
	if ft, ok := w.fieldType(recv, name); ok && !typesystem.IsAny(recv) {
		me.SetStaticType(ft)
		e.Kind = ast.CallDynamic
		if sig, ok := ft.(typesystem.TFunc); ok {
			return w.callValue(e, complete(sig), args)
		}
		if typesystem.IsAny(ft) {
			return typesystem.Any
		}
	}

	w.errorf(e, diagnostics.ErrO001, "no method %s on %s matches %s", name, recv, symbols.TypeList(args))
	return typesystem.Any
}

func (w *walker) memberCandidates(recv typesystem.Type, name string) [][]symbols.Callable {
	var groups [][]symbols.Callable
	if a, ok := w.program.Adapter(name); ok {
		groups = append(groups, []symbols.Callable{a})
	}
	if def, ok := w.program.DefOf(recv); ok {
		var methods []symbols.Callable
		for _, m := range def.Methods[name] {
			if m.HasSelf {
				methods = append(methods, m)
			}
		}
		groups = append(groups, methods, w.hostMethods(def, recv, name))
	}
	var ext []symbols.Callable
	for _, x := range w.program.Extensions(name) {
		ext = append(ext, x)
	}
	return append(groups, ext)
}

// hostMethods collects instance host methods of recv and of its bases.
func (w *walker) hostMethods(def *symbols.TypeDef, recv typesystem.Type, name string) []symbols.Callable {
	var out []symbols.Callable
	seen := map[*symbols.TypeDef]bool{}
	defs := []*symbols.TypeDef{def}
	for _, b := range typesystem.AllBases(recv, w.program.Bases) {
		if d, ok := w.program.DefOf(b); ok {
			defs = append(defs, d)
		}
	}
	for _, d := range defs {
		if seen[d] {
			continue
		}
		seen[d] = true
		for _, h := range d.FindHostMethods(name) {
			if h.Receiver != nil {
				out = append(out, h)
			}
		}
	}
	return out
}

// staticCall resolves Type.name(args): a variant constructor, an impl
// function without self, or a static host function. The type itself is
// not passed.
func (w *walker) staticCall(e *ast.CallExpression, me *ast.MemberExpression, t typesystem.Type, args []typesystem.Type) typesystem.Type {
	name := me.Member.Value
	def, ok := w.program.DefOf(t)
	if !ok {
		w.errorf(e, diagnostics.ErrO001, "no function %s on %s", name, t)
		return typesystem.Any
	}
	if v, ok := def.Variant(name); ok && v.Ctor != nil {
		return w.callCallable(e, v.Ctor, args, ast.CallStatic)
	}

	var cands []symbols.Callable
	for _, m := range def.Methods[name] {
		if !m.HasSelf {
			cands = append(cands, m)
		}
	}
	for _, h := range def.FindHostMethods(name) {
		if h.Receiver == nil {
			cands = append(cands, h)
		}
	}
	c, b, ambiguous := w.selectOverload(cands, args, e)
	switch {
	case ambiguous != nil:
		w.errorf(e, diagnostics.ErrO001, "ambiguous call %s.%s with %s: %s and %s",
			def.FullName, name, symbols.TypeList(args), c.CallableName(), ambiguous.CallableName())
		return typesystem.Any
	case c == nil:
		w.errorf(e, diagnostics.ErrO001, "no function %s.%s matches %s", def.FullName, name, symbols.TypeList(args))
		return typesystem.Any
	}
	e.Target = c
	e.Kind = ast.CallStatic
	return closeOver(b.ReturnType)
}

// selectOverload binds args against every candidate and keeps the most
// specific. When the best score is shared, the second candidate is
// returned as ambiguous.
func (w *walker) selectOverload(cands []symbols.Callable, args []typesystem.Type, at ast.Node) (symbols.Callable, *typesystem.Binding, symbols.Callable) {
	var best, tie symbols.Callable
	var bestBinding *typesystem.Binding
	for _, c := range cands {
		sig, typeParams := w.signatureOf(c, at)
		b, err := typesystem.Bind(sig, typeParams, args, w.program.Bases)
		if err != nil {
			continue
		}
		switch {
		case best == nil || b.Specificity > bestBinding.Specificity:
			best, bestBinding, tie = c, b, nil
		case b.Specificity == bestBinding.Specificity:
			tie = c
		}
	}
	return best, bestBinding, tie
}
