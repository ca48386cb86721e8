// Package resolver assigns every binding a storage slot and rewrites
// identifier reads and writes into slot-tagged nodes.
//
// Top-level bindings, including those declared in top-level blocks, live
// in the program's global slots. Inside a function each binding gets the
// next local slot; slots are never reused after the block that declared
// them closes, so a function's local count is the number of bindings it
// ever declared. A nested function reading an enclosing function's local
// marks it captured and records a free variable on every function in
// between.
package resolver

import (
	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/diagnostics"
	"github.com/simon-curtis/jitzu/internal/symbols"
	"github.com/simon-curtis/jitzu/internal/token"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("jitzu.resolver")

// Resolver walks one batch of top-level statements against a program.
type Resolver struct {
	program *symbols.Program
	scope   *symbols.Scope
	fn      *funcState

	errors []*diagnostics.DiagnosticError
}

// funcState is the slot bookkeeping of the function being resolved.
type funcState struct {
	enclosing *funcState
	decl      *ast.FunctionStatement
	depth     int
	nextSlot  int
	free      map[*ast.Binding]int
}

func New(program *symbols.Program) *Resolver {
	return &Resolver{program: program, scope: program.Global()}
}

// Resolve rewrites the batch in place. Declarations are hoisted first so
// that bodies can refer to functions and types declared later in the
// same batch.
func (r *Resolver) Resolve(program *ast.Program) []*diagnostics.DiagnosticError {
	globalsBefore := r.program.GlobalCount()

	r.hoist(program.Statements)
	if len(r.errors) > 0 {
		return r.errors
	}
	for _, stmt := range program.Statements {
		r.resolveStatement(stmt, true)
	}

	log.Debugf("resolved %d statements: %d new global slots", len(program.Statements), r.program.GlobalCount()-globalsBefore)
	return r.errors
}

func (r *Resolver) errorf(code diagnostics.ErrorCode, tok token.Token, format string, args ...interface{}) {
	r.errors = append(r.errors, diagnostics.Errorf(code, tok, format, args...))
}

func (r *Resolver) addError(err *diagnostics.DiagnosticError) {
	r.errors = append(r.errors, err)
}

// pushScope opens a block scope and returns the function restoring the
// previous one.
func (r *Resolver) pushScope() func() {
	saved := r.scope
	r.scope = symbols.NewScope(saved, symbols.ScopeBlock)
	return func() { r.scope = saved }
}

// declare introduces a new binding of name in the current scope. It always
// takes a fresh slot, even when name is already bound.
func (r *Resolver) declare(name string, tok token.Token) *ast.Binding {
	if r.fn == nil {
		if r.scope == r.program.Global() {
			return r.program.DeclareGlobal(name, tok)
		}
		b := r.program.NewGlobalSlot(name, tok)
		r.scope.Define(name, b)
		return b
	}
	b := r.newLocal(name, tok)
	r.scope.Define(name, b)
	return b
}

// declareHidden allocates a slot that source code cannot name.
func (r *Resolver) declareHidden(name string, tok token.Token) *ast.Binding {
	var b *ast.Binding
	if r.fn == nil {
		b = r.program.NewGlobalSlot(name, tok)
	} else {
		b = r.newLocal(name, tok)
	}
	b.Hidden = true
	return b
}

func (r *Resolver) newLocal(name string, tok token.Token) *ast.Binding {
	b := &ast.Binding{
		Name:      name,
		Index:     r.fn.nextSlot,
		Scope:     ast.ScopeLocal,
		FuncDepth: r.fn.depth,
		Token:     tok,
	}
	r.fn.nextSlot++
	return b
}

// slotFor builds the read of b from the current function.
func (r *Resolver) slotFor(b *ast.Binding, tok token.Token) *ast.SlotExpression {
	se := &ast.SlotExpression{Token: tok, Name: b.Name, Binding: b, Scope: b.Scope, Index: b.Index}
	if b.Scope == ast.ScopeGlobal || r.fn == nil || b.FuncDepth == r.fn.depth {
		return se
	}
	b.Captured = true
	se.Scope = ast.ScopeFree
	se.Index = r.fn.capture(b)
	return se
}

// capture returns the index of b in this function's free variables,
// threading it through every function between here and b's owner.
func (fs *funcState) capture(b *ast.Binding) int {
	if i, ok := fs.free[b]; ok {
		return i
	}
	fv := &ast.FreeVar{Binding: b}
	if fs.enclosing.depth == b.FuncDepth {
		fv.FromLocal = true
		fv.Index = b.Index
	} else {
		fv.Index = fs.enclosing.capture(b)
	}
	fs.decl.FreeVars = append(fs.decl.FreeVars, fv)
	i := len(fs.decl.FreeVars) - 1
	fs.free[b] = i
	return i
}
