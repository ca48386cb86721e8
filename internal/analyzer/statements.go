package analyzer

import (
	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/diagnostics"
	"github.com/simon-curtis/jitzu/internal/typesystem"
)

func (w *walker) analyzeStatement(stmt ast.Statement, topLevel bool) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		s.Expression = w.infer(s.Expression)

	case *ast.LetStatement:
		w.analyzeLet(s)

	case *ast.BlockStatement:
		w.inferBlock(s)

	case *ast.ReturnStatement:
		var t typesystem.Type = typesystem.Unit
		if s.Value != nil {
			s.Value = w.infer(s.Value)
			t = s.Value.StaticType()
		}
		if w.fn != nil {
			w.fn.returns = append(w.fn.returns, returnSite{node: s, typ: t})
		}

	case *ast.WhileStatement:
		s.Condition = w.infer(s.Condition)
		w.expectCondition(s.Condition)
		w.inferBlock(s.Body)

	case *ast.ForStatement:
		w.analyzeFor(s)

	case *ast.FunctionStatement:
		if !topLevel {
			w.declareHeader(s)
		}
		w.analyzeFunction(s)

	case *ast.ImplStatement:
		for _, m := range s.Methods {
			w.analyzeFunction(m)
		}
	}
}

func (w *walker) analyzeLet(s *ast.LetStatement) {
	s.Value = w.infer(s.Value)
	t := s.Value.StaticType()
	if s.TypeAnnotation != nil {
		declared, err := w.program.ResolveType(s.TypeAnnotation, nil)
		if err != nil {
			w.addError(err)
		} else {
			if !w.assignable(declared, t) {
				w.errorf(s.Value, diagnostics.ErrT002, "cannot use %s as %s in declaration of %s", t, declared, s.Name.Value)
			}
			t = declared
		}
	}
	if s.Binding != nil {
		s.Binding.Type = t
	}
}

// analyzeFor types the loop's hidden bindings: ranges count Int from
// start to end, arrays walk their elements.
func (w *walker) analyzeFor(s *ast.ForStatement) {
	var elem typesystem.Type = typesystem.Any
	if rng, ok := s.Iterable.(*ast.RangeExpression); ok {
		rng.Start = w.infer(rng.Start)
		rng.End = w.infer(rng.End)
		for _, bound := range []ast.Expression{rng.Start, rng.End} {
			if t := bound.StaticType(); !isIntLike(t) {
				w.errorf(bound, diagnostics.ErrT002, "range bounds must be Int, got %s", t)
			}
		}
		rng.SetStaticType(typesystem.Int)
		elem = typesystem.Int
		setType(s.EndBinding, typesystem.Int)
	} else {
		s.Iterable = w.infer(s.Iterable)
		t := s.Iterable.StaticType()
		if et, ok := typesystem.ElementType(t); ok {
			elem = et
		} else if !typesystem.IsAny(t) {
			w.errorf(s.Iterable, diagnostics.ErrT002, "cannot iterate over %s", t)
		}
		setType(s.ArrayBinding, t)
	}
	setType(s.IndexBinding, typesystem.Int)
	setType(s.VarBinding, elem)
	w.inferBlock(s.Body)
}

func setType(b *ast.Binding, t typesystem.Type) {
	if b != nil {
		b.Type = t
	}
}

// inferBlock analyzes the statements of b; its value is the trailing
// expression's, or Unit.
func (w *walker) inferBlock(b *ast.BlockStatement) typesystem.Type {
	for _, stmt := range b.Statements {
		w.analyzeStatement(stmt, false)
	}
	var t typesystem.Type = typesystem.Unit
	if trailing := b.Trailing(); trailing != nil {
		t = trailing.StaticType()
	}
	b.SetStaticType(t)
	return t
}

func (w *walker) expectCondition(cond ast.Expression) {
	t := cond.StaticType()
	if !typesystem.Equal(t, typesystem.Bool) && !typesystem.IsAny(t) {
		w.errorf(cond, diagnostics.ErrT002, "condition must be Bool, got %s", t)
	}
}
