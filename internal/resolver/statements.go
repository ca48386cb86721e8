package resolver

import (
	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/config"
	"github.com/simon-curtis/jitzu/internal/diagnostics"
	"github.com/simon-curtis/jitzu/internal/symbols"
)

// resolveStatement resolves one statement. topLevel is set for the
// batch's own statements, whose declarations were hoisted.
func (r *Resolver) resolveStatement(stmt ast.Statement, topLevel bool) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		s.Expression = r.resolveExpression(s.Expression)

	case *ast.LetStatement:
		s.Value = r.resolveExpression(s.Value)
		s.Binding = r.declare(s.Name.Value, s.Name.Token)

	case *ast.BlockStatement:
		r.resolveBlock(s)

	case *ast.ReturnStatement:
		if s.Value != nil {
			s.Value = r.resolveExpression(s.Value)
		}

	case *ast.WhileStatement:
		s.Condition = r.resolveExpression(s.Condition)
		r.resolveBlock(s.Body)

	case *ast.ForStatement:
		r.resolveFor(s)

	case *ast.BreakStatement, *ast.ContinueStatement:

	case *ast.FunctionStatement:
		if !topLevel {
			r.declareNestedFunction(s)
		}
		r.resolveFunction(s)

	case *ast.ImplStatement:
		if !topLevel {
			r.errorf(diagnostics.ErrB003, s.Token, "impl blocks must be declared at the top level")
			return
		}
		for _, m := range s.Methods {
			if m.Callable != nil {
				r.resolveFunction(m)
			}
		}

	case *ast.TypeStatement, *ast.UnionStatement, *ast.UseStatement:
		if !topLevel {
			r.errorf(diagnostics.ErrB003, stmt.GetToken(), "declarations of this kind must be at the top level")
		}
	}
}

func (r *Resolver) resolveBlock(block *ast.BlockStatement) {
	pop := r.pushScope()
	defer pop()
	for _, stmt := range block.Statements {
		r.resolveStatement(stmt, false)
	}
}

// resolveFor declares the loop's hidden bindings and its variable in a
// loop scope; the body gets its own scope inside that.
func (r *Resolver) resolveFor(s *ast.ForStatement) {
	s.Iterable = r.resolveExpression(s.Iterable)

	pop := r.pushScope()
	defer pop()
	if _, isRange := s.Iterable.(*ast.RangeExpression); isRange {
		s.IndexBinding = r.declareHidden(config.LoopIndexName, s.Token)
		s.EndBinding = r.declareHidden(config.LoopEndName, s.Token)
	} else {
		s.ArrayBinding = r.declareHidden(config.LoopArrayName, s.Token)
		s.IndexBinding = r.declareHidden(config.LoopIndexName, s.Token)
	}
	s.VarBinding = r.declare(s.Variable.Value, s.Variable.Token)
	r.resolveBlock(s.Body)
}

// declareNestedFunction binds a function declared inside a block or a
// function body at its point of declaration, before its body is
// resolved, so the body can call itself.
func (r *Resolver) declareNestedFunction(s *ast.FunctionStatement) {
	fn := symbols.NewUserFunction(s)
	s.Callable = fn
	b := r.declare(s.Name.Value, s.Name.Token)
	b.Callable = fn
	s.Binding = b
	if b.Scope == ast.ScopeGlobal {
		r.program.AddInit(b)
	}
}

// resolveFunction opens a fresh slot counter: self first, then the
// parameters, then every binding of the body in declaration order.
func (r *Resolver) resolveFunction(s *ast.FunctionStatement) {
	fs := &funcState{enclosing: r.fn, decl: s, depth: 1, free: make(map[*ast.Binding]int)}
	if r.fn != nil {
		fs.depth = r.fn.depth + 1
	}
	s.Depth = fs.depth
	s.FreeVars = nil

	savedScope, savedFn := r.scope, r.fn
	r.scope = symbols.NewScope(savedScope, symbols.ScopeFunction)
	r.fn = fs
	defer func() { r.scope, r.fn = savedScope, savedFn }()

	if s.HasSelf {
		s.SelfBinding = r.declare(config.SelfName, s.Token)
	}
	for _, p := range s.Parameters {
		p.Binding = r.declare(p.Name.Value, p.Token)
	}
	for _, stmt := range s.Body.Statements {
		r.resolveStatement(stmt, false)
	}
	s.LocalCount = fs.nextSlot
	if u, ok := s.Callable.(*symbols.UserFunction); ok {
		u.Fn.LocalCount = fs.nextSlot
	}
}
