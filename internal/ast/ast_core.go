package ast

import (
	"github.com/simon-curtis/jitzu/internal/token"
	"github.com/simon-curtis/jitzu/internal/typesystem"
)

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	GetToken() token.Token
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that represents an expression. Every expression
// carries the static type the analyzer assigned to it.
type Expression interface {
	Node
	expressionNode()
	StaticType() typesystem.Type
	SetStaticType(typesystem.Type)
}

// Typed is embedded by every expression node.
type Typed struct {
	Type typesystem.Type
}

func (t *Typed) StaticType() typesystem.Type     { return t.Type }
func (t *Typed) SetStaticType(ty typesystem.Type) { t.Type = ty }

// Program is the root node of every AST our parser produces: one batch of
// top-level statements.
type Program struct {
	File       string
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) GetToken() token.Token {
	if len(p.Statements) > 0 {
		return p.Statements[0].GetToken()
	}
	return token.Token{File: p.File}
}

// SlotScope says which storage array a slot index addresses.
type SlotScope int

const (
	ScopeGlobal SlotScope = iota
	ScopeLocal
	// ScopeFree indexes the running closure's captured cells.
	ScopeFree
)

func (s SlotScope) String() string {
	switch s {
	case ScopeGlobal:
		return "global"
	case ScopeLocal:
		return "local"
	case ScopeFree:
		return "free"
	}
	return "?"
}

// Binding is one named storage location. Every node referring to the same
// binding shares the pointer, so flipping Captured after reads were already
// rewritten is seen by all of them.
type Binding struct {
	Name  string
	Index int
	Scope SlotScope // ScopeGlobal or ScopeLocal

	// FuncDepth is the nesting depth of the owning function; 0 is top level.
	FuncDepth int

	// Captured is set when a nested function reads or writes the binding.
	// Captured locals live in cells.
	Captured bool

	Type typesystem.Type

	// Callable is set when the binding names a function or constructor.
	Callable Callable

	// TypeValue is set for the synthetic bindings that hold a type used as
	// a value.
	TypeValue typesystem.Type

	// Hidden bindings are introduced by the passes and never visible to
	// source lookups.
	Hidden bool

	Token token.Token
}

// Callable is a resolved call target. The symbols package implements it
// for user, host and builtin functions and for constructors.
type Callable interface {
	CallableName() string
	Signature() typesystem.TFunc
}

// FreeVar is one captured binding of a nested function, together with
// where the enclosing function finds the cell: its own local slot, or its
// own free-variable list.
type FreeVar struct {
	Binding   *Binding
	FromLocal bool
	Index     int
}
