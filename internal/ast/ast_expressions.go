package ast

import (
	"github.com/simon-curtis/jitzu/internal/token"
)

// Identifier is a bare name as parsed. The resolver replaces every
// identifier read with a SlotExpression.
type Identifier struct {
	Typed
	Token token.Token
	Value string
}

func (i *Identifier) expressionNode()       {}
func (i *Identifier) TokenLiteral() string  { return i.Token.Lexeme }
func (i *Identifier) GetToken() token.Token { return i.Token }

// SlotExpression is a slot-tagged read of a binding. For ScopeFree, Index
// is the position in the running closure's capture list.
type SlotExpression struct {
	Typed
	Token   token.Token
	Name    string
	Binding *Binding
	Scope   SlotScope
	Index   int
}

func (se *SlotExpression) expressionNode()       {}
func (se *SlotExpression) TokenLiteral() string  { return se.Token.Lexeme }
func (se *SlotExpression) GetToken() token.Token { return se.Token }

type IntegerLiteral struct {
	Typed
	Token token.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()       {}
func (il *IntegerLiteral) TokenLiteral() string  { return il.Token.Lexeme }
func (il *IntegerLiteral) GetToken() token.Token { return il.Token }

type FloatLiteral struct {
	Typed
	Token token.Token
	Value float64
}

func (fl *FloatLiteral) expressionNode()       {}
func (fl *FloatLiteral) TokenLiteral() string  { return fl.Token.Lexeme }
func (fl *FloatLiteral) GetToken() token.Token { return fl.Token }

type StringLiteral struct {
	Typed
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()       {}
func (sl *StringLiteral) TokenLiteral() string  { return sl.Token.Lexeme }
func (sl *StringLiteral) GetToken() token.Token { return sl.Token }

type CharLiteral struct {
	Typed
	Token token.Token
	Value rune
}

func (cl *CharLiteral) expressionNode()       {}
func (cl *CharLiteral) TokenLiteral() string  { return cl.Token.Lexeme }
func (cl *CharLiteral) GetToken() token.Token { return cl.Token }

type BooleanLiteral struct {
	Typed
	Token token.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()       {}
func (bl *BooleanLiteral) TokenLiteral() string  { return bl.Token.Lexeme }
func (bl *BooleanLiteral) GetToken() token.Token { return bl.Token }

// InterpolatedString is "text {expr} text". Parts alternate freely between
// *StringLiteral segments and arbitrary expressions.
type InterpolatedString struct {
	Typed
	Token token.Token
	Parts []Expression
}

func (is *InterpolatedString) expressionNode()       {}
func (is *InterpolatedString) TokenLiteral() string  { return is.Token.Lexeme }
func (is *InterpolatedString) GetToken() token.Token { return is.Token }

// ArrayLiteral represents [a, b, c].
type ArrayLiteral struct {
	Typed
	Token    token.Token // The '[' token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()       {}
func (al *ArrayLiteral) TokenLiteral() string  { return al.Token.Lexeme }
func (al *ArrayLiteral) GetToken() token.Token { return al.Token }

// PrefixExpression represents a prefix operation, e.g., -5 or !ok.
type PrefixExpression struct {
	Typed
	Token    token.Token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()       {}
func (pe *PrefixExpression) TokenLiteral() string  { return pe.Token.Lexeme }
func (pe *PrefixExpression) GetToken() token.Token { return pe.Token }

// InfixExpression represents a binary operation, e.g. a + b.
type InfixExpression struct {
	Typed
	Token    token.Token // The operator token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()       {}
func (ie *InfixExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *InfixExpression) GetToken() token.Token { return ie.Token }

// AssignExpression stores Value into Target. The value of the expression is
// the stored value. Target is a SlotExpression (after resolution) or a
// MemberExpression.
type AssignExpression struct {
	Typed
	Token  token.Token // The '=' token
	Target Expression
	Value  Expression
}

func (ae *AssignExpression) expressionNode()       {}
func (ae *AssignExpression) TokenLiteral() string  { return ae.Token.Lexeme }
func (ae *AssignExpression) GetToken() token.Token { return ae.Token }

// CallKind says how the emitter reaches the callee.
type CallKind int

const (
	// CallStatic pushes Target's runtime object as a constant.
	CallStatic CallKind = iota
	// CallDynamic evaluates Function to get the callee (closures, Any).
	CallDynamic
)

// CallExpression represents f(args) and obj.m(args). After analysis,
// Target is the resolved callable and Receiver (if any) is passed as the
// first argument.
type CallExpression struct {
	Typed
	Token     token.Token // The '(' token
	Function  Expression
	Arguments []Expression

	Target   Callable
	Kind     CallKind
	Receiver Expression
}

func (ce *CallExpression) expressionNode()       {}
func (ce *CallExpression) TokenLiteral() string  { return ce.Token.Lexeme }
func (ce *CallExpression) GetToken() token.Token { return ce.Token }

// MemberExpression represents obj.field. Member calls keep the
// MemberExpression as CallExpression.Function until the analyzer
// resolves them.
type MemberExpression struct {
	Typed
	Token  token.Token // The '.' token
	Left   Expression
	Member *Identifier
}

func (me *MemberExpression) expressionNode()       {}
func (me *MemberExpression) TokenLiteral() string  { return me.Token.Lexeme }
func (me *MemberExpression) GetToken() token.Token { return me.Token }

// IndexExpression represents arr[i].
type IndexExpression struct {
	Typed
	Token token.Token // The '[' token
	Left  Expression
	Index Expression
}

func (ie *IndexExpression) expressionNode()       {}
func (ie *IndexExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *IndexExpression) GetToken() token.Token { return ie.Token }

// FieldInit is one `name = value` of an instantiation.
type FieldInit struct {
	Token token.Token
	Name  string
	Value Expression
}

// NewExpression instantiates a record: Point { x = 1, y = 2 }. The analyzer
// fills TypeName, FieldNames and Ordered (values in declared field order).
type NewExpression struct {
	Typed
	Token  token.Token
	Name   *NamedType
	Fields []*FieldInit

	TypeName   string
	FieldNames []string
	Ordered    []Expression
}

func (ne *NewExpression) expressionNode()       {}
func (ne *NewExpression) TokenLiteral() string  { return ne.Token.Lexeme }
func (ne *NewExpression) GetToken() token.Token { return ne.Token }

// TryExpression unwraps an Option or Result, returning the failure case
// from the enclosing function.
type TryExpression struct {
	Typed
	Token token.Token
	Value Expression
}

func (te *TryExpression) expressionNode()       {}
func (te *TryExpression) TokenLiteral() string  { return te.Token.Lexeme }
func (te *TryExpression) GetToken() token.Token { return te.Token }

// RangeExpression is a..b, valid only as the iterable of a for loop.
type RangeExpression struct {
	Typed
	Token token.Token
	Start Expression
	End   Expression
}

func (re *RangeExpression) expressionNode()       {}
func (re *RangeExpression) TokenLiteral() string  { return re.Token.Lexeme }
func (re *RangeExpression) GetToken() token.Token { return re.Token }

// IfExpression represents if/else. Alternative is nil, a *BlockStatement,
// or a nested *IfExpression for `else if`.
type IfExpression struct {
	Typed
	Token       token.Token
	Condition   Expression
	Consequence *BlockStatement
	Alternative Expression
}

func (ie *IfExpression) expressionNode()       {}
func (ie *IfExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *IfExpression) GetToken() token.Token { return ie.Token }

// MatchArm is `pattern => body`.
type MatchArm struct {
	Token   token.Token
	Pattern Pattern
	Body    Expression
}

// MatchExpression evaluates Subject once into SubjectBinding and tests each
// arm against that binding.
type MatchExpression struct {
	Typed
	Token   token.Token
	Subject Expression
	Arms    []*MatchArm

	SubjectBinding *Binding
}

func (me *MatchExpression) expressionNode()       {}
func (me *MatchExpression) TokenLiteral() string  { return me.Token.Lexeme }
func (me *MatchExpression) GetToken() token.Token { return me.Token }
