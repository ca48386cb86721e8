package ast

import (
	"github.com/simon-curtis/jitzu/internal/token"
)

// Pattern is the left-hand side of a match arm.
type Pattern interface {
	Node
	patternNode()
}

// WildcardPattern matches anything: _
type WildcardPattern struct {
	Token token.Token
}

func (wp *WildcardPattern) patternNode()          {}
func (wp *WildcardPattern) TokenLiteral() string  { return wp.Token.Lexeme }
func (wp *WildcardPattern) GetToken() token.Token { return wp.Token }

// LiteralPattern compares against a constant.
type LiteralPattern struct {
	Token token.Token
	Value Expression
}

func (lp *LiteralPattern) patternNode()          {}
func (lp *LiteralPattern) TokenLiteral() string  { return lp.Token.Lexeme }
func (lp *LiteralPattern) GetToken() token.Token { return lp.Token }

// BindingPattern binds the matched value to a new name.
type BindingPattern struct {
	Token   token.Token
	Name    *Identifier
	Binding *Binding
}

func (bp *BindingPattern) patternNode()          {}
func (bp *BindingPattern) TokenLiteral() string  { return bp.Token.Lexeme }
func (bp *BindingPattern) GetToken() token.Token { return bp.Token }

// ConstructorPattern is Variant(p1, p2), a nullary Variant, or a type name.
// The analyzer fills Tag (the runtime tag tested by CHECK_TYPE) and
// FieldNames (the fields read for each positional sub-pattern).
type ConstructorPattern struct {
	Token token.Token
	Name  []string
	Args  []Pattern

	Tag        string
	FieldNames []string
}

func (cp *ConstructorPattern) patternNode()          {}
func (cp *ConstructorPattern) TokenLiteral() string  { return cp.Token.Lexeme }
func (cp *ConstructorPattern) GetToken() token.Token { return cp.Token }
