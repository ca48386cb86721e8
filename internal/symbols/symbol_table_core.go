package symbols

import (
	"github.com/simon-curtis/jitzu/internal/ast"
)

type ScopeType int

const (
	ScopeGlobal ScopeType = iota // Program top level
	ScopeFunction
	ScopeBlock
)

func (s ScopeType) String() string {
	switch s {
	case ScopeGlobal:
		return "global"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	}
	return "?"
}

// Scope maps names to bindings for one lexical region. Lookups walk outward
// so the nearest declaration wins.
type Scope struct {
	outer     *Scope
	scopeType ScopeType
	names     map[string]*ast.Binding

	// Depth is the function nesting depth of the code the scope belongs
	// to: 0 at top level, 1 inside a top-level function, and so on.
	Depth int
}

// NewScope opens a scope inside outer. Function scopes are one level deeper
// than their parent.
func NewScope(outer *Scope, scopeType ScopeType) *Scope {
	s := &Scope{outer: outer, scopeType: scopeType, names: make(map[string]*ast.Binding)}
	if outer != nil {
		s.Depth = outer.Depth
	}
	if scopeType == ScopeFunction {
		s.Depth++
	}
	return s
}

func (s *Scope) ScopeType() ScopeType { return s.scopeType }

// Define binds name in this scope, replacing any earlier binding of the
// same name here. The previous binding stays valid for nodes that already
// refer to it.
func (s *Scope) Define(name string, b *ast.Binding) {
	s.names[name] = b
}

// Undefine removes name from this scope if it is still bound to b.
func (s *Scope) Undefine(name string, b *ast.Binding) {
	if s.names[name] == b {
		delete(s.names, name)
	}
}

// Lookup finds the nearest binding of name.
func (s *Scope) Lookup(name string) (*ast.Binding, bool) {
	for sc := s; sc != nil; sc = sc.outer {
		if b, ok := sc.names[name]; ok {
			return b, true
		}
	}
	return nil, false
}

// LookupLocal looks in this scope only.
func (s *Scope) LookupLocal(name string) (*ast.Binding, bool) {
	b, ok := s.names[name]
	return b, ok
}

// Len returns the number of names bound directly in this scope.
func (s *Scope) Len() int { return len(s.names) }
