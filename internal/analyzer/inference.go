package analyzer

import (
	"strings"

	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/diagnostics"
	"github.com/simon-curtis/jitzu/internal/symbols"
	"github.com/simon-curtis/jitzu/internal/typesystem"
)

// infer types expr and returns the node that replaces it in the tree.
// Every returned expression has a non-nil static type.
func (w *walker) infer(expr ast.Expression) ast.Expression {
	if expr == nil {
		return nil
	}
	out, t := w.inferExpr(expr)
	if t == nil {
		t = typesystem.Any
	}
	out.SetStaticType(t)
	return out
}

func (w *walker) inferExpr(expr ast.Expression) (ast.Expression, typesystem.Type) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return e, typesystem.Int
	case *ast.FloatLiteral:
		return e, typesystem.Double
	case *ast.StringLiteral:
		return e, typesystem.String
	case *ast.CharLiteral:
		return e, typesystem.Char
	case *ast.BooleanLiteral:
		return e, typesystem.Bool

	case *ast.Identifier:
		// Left unresolved by the resolver, which already reported it.
		return e, typesystem.Any

	case *ast.SlotExpression:
		return e, w.inferSlot(e)

	case *ast.InterpolatedString:
		for i, part := range e.Parts {
			e.Parts[i] = w.infer(part)
		}
		return e, typesystem.String

	case *ast.ArrayLiteral:
		return e, w.inferArray(e)

	case *ast.PrefixExpression:
		return e, w.inferPrefix(e)

	case *ast.InfixExpression:
		if e.Operator == "|" {
			if call := w.rewritePipe(e); call != nil {
				out := w.infer(call)
				return out, out.StaticType()
			}
		}
		return e, w.inferInfix(e)

	case *ast.AssignExpression:
		return e, w.inferAssign(e)

	case *ast.CallExpression:
		return e, w.inferCall(e)

	case *ast.MemberExpression:
		return w.inferMember(e)

	case *ast.IndexExpression:
		return e, w.inferIndex(e)

	case *ast.NewExpression:
		return e, w.inferNew(e)

	case *ast.TryExpression:
		return e, w.inferTry(e)

	case *ast.RangeExpression:
		e.Start = w.infer(e.Start)
		e.End = w.infer(e.End)
		w.errorf(e, diagnostics.ErrU001, "a range can only be iterated by a for loop")
		return e, typesystem.Any

	case *ast.BlockStatement:
		return e, w.inferBlock(e)

	case *ast.IfExpression:
		return e, w.inferIf(e)

	case *ast.MatchExpression:
		return e, w.inferMatch(e)
	}
	return expr, typesystem.Any
}

func (w *walker) inferSlot(se *ast.SlotExpression) typesystem.Type {
	b := se.Binding
	if b == nil {
		return typesystem.Any
	}
	switch c := b.Callable.(type) {
	case *symbols.UserFunction:
		w.returnTypeOf(c, se)
		return complete(c.Signature())
	case *symbols.Constructor:
		return closeOver(b.Type)
	}
	if b.Type == nil {
		return typesystem.Any
	}
	return b.Type
}

// complete fills the parts of a signature that are not known yet with Any.
func complete(sig typesystem.TFunc) typesystem.TFunc {
	params := make([]typesystem.Type, len(sig.Params))
	for i, p := range sig.Params {
		if p == nil {
			p = typesystem.Any
		}
		params[i] = p
	}
	ret := sig.ReturnType
	if ret == nil {
		ret = typesystem.Any
	}
	return typesystem.TFunc{Params: params, ReturnType: ret, IsVariadic: sig.IsVariadic}
}

func (w *walker) inferArray(e *ast.ArrayLiteral) typesystem.Type {
	var elem typesystem.Type
	for i, el := range e.Elements {
		e.Elements[i] = w.infer(el)
		t := e.Elements[i].StaticType()
		if elem == nil {
			elem = t
			continue
		}
		joined, ok := join(elem, t)
		if !ok {
			w.errorf(e.Elements[i], diagnostics.ErrT001, "array elements have different types: %s and %s", elem, t)
			continue
		}
		elem = joined
	}
	if elem == nil {
		elem = typesystem.Any
	}
	return typesystem.ArrayOf(elem)
}

func (w *walker) inferPrefix(e *ast.PrefixExpression) typesystem.Type {
	e.Right = w.infer(e.Right)
	t := e.Right.StaticType()
	switch e.Operator {
	case "-":
		if typesystem.IsNumeric(t) || typesystem.IsAny(t) {
			return t
		}
		w.errorf(e, diagnostics.ErrT002, "cannot negate %s", t)
		return typesystem.Any
	case "!":
		if !isType(t, typesystem.Bool) && !typesystem.IsAny(t) {
			w.errorf(e, diagnostics.ErrT002, "operator ! needs Bool, got %s", t)
		}
		return typesystem.Bool
	}
	w.errorf(e, diagnostics.ErrU001, "unsupported prefix operator %s", e.Operator)
	return typesystem.Any
}

// rewritePipe turns a | f(b) into f(a, b), and a | f into f(a) when f
// names a global function. Anything else stays a bitwise or.
func (w *walker) rewritePipe(e *ast.InfixExpression) *ast.CallExpression {
	switch r := e.Right.(type) {
	case *ast.CallExpression:
		r.Arguments = append([]ast.Expression{e.Left}, r.Arguments...)
		return r
	case *ast.SlotExpression:
		if isGlobalFunction(r) {
			return &ast.CallExpression{Token: e.Token, Function: r, Arguments: []ast.Expression{e.Left}}
		}
	}
	return nil
}

func (w *walker) inferInfix(e *ast.InfixExpression) typesystem.Type {
	e.Left = w.infer(e.Left)
	e.Right = w.infer(e.Right)
	l, r := e.Left.StaticType(), e.Right.StaticType()
	dynamic := typesystem.IsAny(l) || typesystem.IsAny(r)

	switch e.Operator {
	case "+":
		if isType(l, typesystem.String) || isType(r, typesystem.String) {
			return typesystem.String
		}
		fallthrough
	case "-", "*", "/", "%", "**":
		if t, ok := arithmetic(l, r); ok {
			return t
		}

	case "==", "!=":
		return typesystem.Bool

	case "<", "<=", ">", ">=":
		if dynamic || ordered(l, r) {
			return typesystem.Bool
		}

	case "&&", "||":
		if (dynamic || isType(l, typesystem.Bool)) && (typesystem.IsAny(r) || isType(r, typesystem.Bool)) {
			return typesystem.Bool
		}

	case "|":
		switch {
		case dynamic:
			return typesystem.Any
		case isType(l, typesystem.Int) && isType(r, typesystem.Int):
			return typesystem.Int
		case isType(l, typesystem.Bool) && isType(r, typesystem.Bool):
			return typesystem.Bool
		}

	case "&", "^", "<<", ">>":
		if isIntLike(l) && isIntLike(r) {
			return typesystem.Int
		}

	default:
		w.errorf(e, diagnostics.ErrU001, "unsupported operator %s", e.Operator)
		return typesystem.Any
	}

	w.errorf(e, diagnostics.ErrT002, "operator %s not defined for %s and %s", e.Operator, l, r)
	return typesystem.Any
}

func arithmetic(l, r typesystem.Type) (typesystem.Type, bool) {
	switch {
	case typesystem.IsAny(l) || typesystem.IsAny(r):
		return typesystem.Any, true
	case isType(l, typesystem.Int) && isType(r, typesystem.Int):
		return typesystem.Int, true
	case typesystem.IsNumeric(l) && typesystem.IsNumeric(r):
		return typesystem.Double, true
	}
	return nil, false
}

// ordered reports whether l and r compare with < and friends.
func ordered(l, r typesystem.Type) bool {
	if typesystem.IsNumeric(l) && typesystem.IsNumeric(r) {
		return true
	}
	return typesystem.Equal(l, r) && (isType(l, typesystem.String) || isType(l, typesystem.Char))
}

func (w *walker) inferAssign(e *ast.AssignExpression) typesystem.Type {
	e.Value = w.infer(e.Value)
	vt := e.Value.StaticType()
	switch t := e.Target.(type) {
	case *ast.SlotExpression:
		target := vt
		if t.Binding != nil && t.Binding.Type != nil {
			target = t.Binding.Type
			if !w.assignable(target, vt) {
				w.errorf(e.Value, diagnostics.ErrT002, "cannot assign %s to %s of type %s", vt, t.Name, target)
			}
		}
		t.SetStaticType(target)

	case *ast.MemberExpression:
		t.Left = w.infer(t.Left)
		lt := t.Left.StaticType()
		ft, ok := w.fieldType(lt, t.Member.Value)
		if !ok {
			w.errorf(t.Member, diagnostics.ErrT002, "type %s has no field %s", lt, t.Member.Value)
			ft = typesystem.Any
		} else if !w.assignable(ft, vt) {
			w.errorf(e.Value, diagnostics.ErrT002, "cannot assign %s to field %s of type %s", vt, t.Member.Value, ft)
		}
		t.SetStaticType(ft)

	default:
		w.errorf(e, diagnostics.ErrU001, "cannot assign to this expression")
	}
	return vt
}

func (w *walker) fieldType(t typesystem.Type, name string) (typesystem.Type, bool) {
	if typesystem.IsAny(t) {
		return typesystem.Any, true
	}
	ft, ok := w.program.FieldType(t, name)
	if !ok {
		return nil, false
	}
	return closeOver(ft), true
}

// inferMember types a field read. A member of a type name is a variant
// of that union and becomes a read of the variant's global binding.
func (w *walker) inferMember(e *ast.MemberExpression) (ast.Expression, typesystem.Type) {
	e.Left = w.infer(e.Left)
	lt := e.Left.StaticType()
	if tt, ok := lt.(typesystem.TType); ok {
		if read := w.variantRead(e, tt.Type); read != nil {
			out := w.infer(read)
			return out, out.StaticType()
		}
		w.errorf(e.Member, diagnostics.ErrT002, "type %s has no member %s", tt.Type, e.Member.Value)
		return e, typesystem.Any
	}
	ft, ok := w.fieldType(lt, e.Member.Value)
	if !ok {
		w.errorf(e.Member, diagnostics.ErrT002, "type %s has no field %s", lt, e.Member.Value)
		return e, typesystem.Any
	}
	return e, ft
}

func (w *walker) variantRead(e *ast.MemberExpression, t typesystem.Type) *ast.SlotExpression {
	def, ok := w.program.DefOf(t)
	if !ok || def.Kind != symbols.UnionType {
		return nil
	}
	v, ok := def.Variant(e.Member.Value)
	if !ok || v.Ctor == nil || v.Ctor.Binding == nil {
		return nil
	}
	b := v.Ctor.Binding
	return &ast.SlotExpression{Token: e.Member.Token, Name: v.Tag, Binding: b, Scope: b.Scope, Index: b.Index}
}

// inferIndex accepts only arrays indexed by an integer literal; the read
// yields None past the end.
func (w *walker) inferIndex(e *ast.IndexExpression) typesystem.Type {
	e.Left = w.infer(e.Left)
	e.Index = w.infer(e.Index)
	lt := e.Left.StaticType()
	elem, isArray := typesystem.ElementType(lt)
	if _, literal := e.Index.(*ast.IntegerLiteral); !isArray || !literal {
		w.errorf(e, diagnostics.ErrU001, "indexing %s with %s is not supported; index an array with an integer literal", lt, e.Index.StaticType())
		return typesystem.Any
	}
	return typesystem.OptionOf(elem)
}

// inferNew checks an instantiation against the record's fields and puts
// the values in declared field order.
func (w *walker) inferNew(e *ast.NewExpression) typesystem.Type {
	for _, f := range e.Fields {
		f.Value = w.infer(f.Value)
	}
	t, err := w.program.ResolveType(e.Name, nil)
	if err != nil {
		w.addError(err)
		return typesystem.Any
	}
	def, ok := w.program.DefOf(t)
	if !ok || def.Kind != symbols.RecordType {
		w.errorf(e, diagnostics.ErrT002, "%s is not a record type", t)
		return typesystem.Any
	}

	given := make(map[string]*ast.FieldInit, len(e.Fields))
	for _, f := range e.Fields {
		if _, dup := given[f.Name]; dup {
			w.errorAt(f.Token, diagnostics.ErrT002, "field %s given twice", f.Name)
			continue
		}
		ft, ok := w.program.FieldType(t, f.Name)
		if !ok {
			w.errorAt(f.Token, diagnostics.ErrT002, "type %s has no field %s", def.FullName, f.Name)
			continue
		}
		given[f.Name] = f
		if vt := f.Value.StaticType(); !w.assignable(ft, vt) {
			w.errorf(f.Value, diagnostics.ErrT002, "cannot use %s as %s for field %s", vt, ft, f.Name)
		}
	}

	e.TypeName = def.FullName
	e.FieldNames = def.FieldNames()
	e.Ordered = make([]ast.Expression, len(e.FieldNames))
	for i, name := range e.FieldNames {
		f, ok := given[name]
		if !ok {
			w.errorf(e, diagnostics.ErrT002, "missing field %s in %s", name, def.FullName)
			continue
		}
		e.Ordered[i] = f.Value
	}
	return t
}

// inferTry unwraps Option<T> or Result<T, E> to T. The failure case leaves
// the enclosing function, so it counts as a return site.
func (w *walker) inferTry(e *ast.TryExpression) typesystem.Type {
	e.Value = w.infer(e.Value)
	t := e.Value.StaticType()
	if typesystem.IsAny(t) {
		return typesystem.Any
	}
	app, ok := t.(typesystem.TApp)
	if !ok || (app.Constructor.Name != typesystem.Option.Name && app.Constructor.Name != typesystem.Result.Name) {
		w.errorf(e, diagnostics.ErrT002, "try needs an Option or Result, got %s", t)
		return typesystem.Any
	}

	failure := typesystem.Type(typesystem.OptionOf(typesystem.Any))
	if app.Constructor.Name == typesystem.Result.Name {
		failure = typesystem.ResultOf(typesystem.Any, app.Args[1])
	}
	if w.fn != nil {
		u := w.fn.user
		if u.Declared {
			con, ok := typesystem.Constructor(u.ReturnType)
			if !typesystem.IsAny(u.ReturnType) && (!ok || con.Name != app.Constructor.Name) {
				w.errorf(e, diagnostics.ErrT002, "try on %s cannot return from %s, which returns %s", t, u.CallableName(), u.ReturnType)
			}
		} else {
			w.fn.returns = append(w.fn.returns, returnSite{node: e, typ: failure})
		}
	}
	return app.Args[0]
}

func (w *walker) inferIf(e *ast.IfExpression) typesystem.Type {
	e.Condition = w.infer(e.Condition)
	w.expectCondition(e.Condition)
	ct := w.inferBlock(e.Consequence)
	if e.Alternative == nil {
		return typesystem.Unit
	}
	e.Alternative = w.infer(e.Alternative)
	at := e.Alternative.StaticType()
	switch {
	case blockTerminates(e.Consequence):
		return at
	case exprTerminates(e.Alternative):
		return ct
	}
	if t, ok := join(ct, at); ok {
		return t
	}
	return typesystem.Unit
}

func (w *walker) inferMatch(e *ast.MatchExpression) typesystem.Type {
	e.Subject = w.infer(e.Subject)
	st := e.Subject.StaticType()
	setType(e.SubjectBinding, st)

	var result typesystem.Type
	for _, arm := range e.Arms {
		w.checkPattern(arm.Pattern, st)
		arm.Body = w.infer(arm.Body)
		if exprTerminates(arm.Body) {
			continue
		}
		t := arm.Body.StaticType()
		if result == nil {
			result = t
			continue
		}
		joined, ok := join(result, t)
		if !ok {
			w.errorf(arm.Body, diagnostics.ErrT001, "match arms have different types: %s and %s", result, t)
			continue
		}
		result = joined
	}
	if result == nil {
		return typesystem.Unit
	}
	return result
}

// checkPattern types the names a pattern binds from the subject type and
// fills in what the emitter needs to test constructor patterns.
func (w *walker) checkPattern(pat ast.Pattern, subject typesystem.Type) {
	switch p := pat.(type) {
	case *ast.BindingPattern:
		setType(p.Binding, subject)

	case *ast.LiteralPattern:
		p.Value = w.infer(p.Value)
		lt := p.Value.StaticType()
		if !w.assignable(subject, lt) {
			w.errorf(p, diagnostics.ErrT002, "cannot match %s against %s", lt, subject)
		}

	case *ast.ConstructorPattern:
		w.checkConstructorPattern(p, subject)
	}
}

func (w *walker) checkConstructorPattern(p *ast.ConstructorPattern, subject typesystem.Type) {
	last := p.Name[len(p.Name)-1]

	if len(p.Name) == 1 {
		if def, ok := w.program.DefOf(subject); ok && def.Kind == symbols.UnionType {
			if v, ok := def.Variant(last); ok {
				w.bindVariantPattern(p, v.Ctor, subject)
				return
			}
		}
	} else {
		owner := strings.Join(p.Name[:len(p.Name)-1], ".")
		if def, found, _ := w.program.ResolveTypeName(owner); found && def != nil && def.Kind == symbols.UnionType {
			if v, ok := def.Variant(last); ok {
				w.bindVariantPattern(p, v.Ctor, subject)
				return
			}
		}
	}

	if len(p.Name) == 1 {
		if b, ok := w.program.Global().Lookup(last); ok {
			if ctor, ok := b.Callable.(*symbols.Constructor); ok {
				w.bindVariantPattern(p, ctor, subject)
				return
			}
		}
	}

	name := strings.Join(p.Name, ".")
	def, found, err := w.program.ResolveTypeName(name)
	if err != nil {
		w.errorf(p, diagnostics.ErrB002, "%v", err)
		return
	}
	if !found || def == nil {
		w.errorf(p, diagnostics.ErrB001, "undefined pattern %s", name)
		return
	}
	p.Tag = def.FullName
	if len(p.Args) == 0 {
		return
	}
	if def.Kind != symbols.RecordType || len(p.Args) != len(def.Fields) {
		w.errorf(p, diagnostics.ErrT002, "pattern %s expects %d fields, got %d", name, len(def.Fields), len(p.Args))
		return
	}
	p.FieldNames = def.FieldNames()
	for i, arg := range p.Args {
		w.checkPattern(arg, closeOver(def.Fields[i].Type))
	}
}

// bindVariantPattern checks a variant pattern against the subject and
// types its positional sub-patterns from the variant's fields.
func (w *walker) bindVariantPattern(p *ast.ConstructorPattern, ctor *symbols.Constructor, subject typesystem.Type) {
	if con, ok := typesystem.Constructor(subject); ok && !typesystem.IsAny(subject) && con.Name != ctor.Def.FullName {
		w.errorf(p, diagnostics.ErrT002, "pattern %s cannot match %s", ctor.Tag(), subject)
		return
	}
	fields := ctor.Variant.Fields
	if len(p.Args) > 0 && len(p.Args) != len(fields) {
		w.errorf(p, diagnostics.ErrT002, "variant %s has %d fields, pattern gives %d", ctor.Tag(), len(fields), len(p.Args))
		return
	}
	p.Tag = ctor.Tag()
	p.FieldNames = ctor.FieldNames()

	of := subject
	if typesystem.IsAny(of) {
		of = ctor.Def.Type()
	}
	for i, arg := range p.Args {
		ft := w.program.Instantiate(ctor.Def, fields[i].Type, of)
		w.checkPattern(arg, closeOver(ft))
	}
}
