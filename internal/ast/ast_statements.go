package ast

import (
	"github.com/simon-curtis/jitzu/internal/token"
)

// ExpressionStatement is a statement that consists of a single expression.
type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()        {}
func (es *ExpressionStatement) TokenLiteral() string  { return es.Token.Lexeme }
func (es *ExpressionStatement) GetToken() token.Token { return es.Token }

// BlockStatement represents a list of statements within curly braces. Used
// as an expression, its value is that of a trailing expression statement.
type BlockStatement struct {
	Typed
	Token       token.Token // {
	Statements  []Statement
	RBraceToken token.Token
}

func (bs *BlockStatement) statementNode()        {}
func (bs *BlockStatement) expressionNode()       {}
func (bs *BlockStatement) TokenLiteral() string  { return bs.Token.Lexeme }
func (bs *BlockStatement) GetToken() token.Token { return bs.Token }

// Trailing returns the final expression statement's expression, or nil.
func (bs *BlockStatement) Trailing() Expression {
	if len(bs.Statements) == 0 {
		return nil
	}
	if es, ok := bs.Statements[len(bs.Statements)-1].(*ExpressionStatement); ok {
		return es.Expression
	}
	return nil
}

// LetStatement introduces a new binding: let x: T = value.
type LetStatement struct {
	Token          token.Token
	Name           *Identifier
	TypeAnnotation Type
	Value          Expression
	Binding        *Binding
}

func (ls *LetStatement) statementNode()        {}
func (ls *LetStatement) TokenLiteral() string  { return ls.Token.Lexeme }
func (ls *LetStatement) GetToken() token.Token { return ls.Token }

// ReturnStatement represents return or return <expression>.
type ReturnStatement struct {
	Token token.Token
	Value Expression
}

func (rs *ReturnStatement) statementNode()        {}
func (rs *ReturnStatement) TokenLiteral() string  { return rs.Token.Lexeme }
func (rs *ReturnStatement) GetToken() token.Token { return rs.Token }

type WhileStatement struct {
	Token     token.Token
	Condition Expression
	Body      *BlockStatement
}

func (ws *WhileStatement) statementNode()        {}
func (ws *WhileStatement) TokenLiteral() string  { return ws.Token.Lexeme }
func (ws *WhileStatement) GetToken() token.Token { return ws.Token }

// ForStatement is `for v in a..b` or `for v in array`. The resolver fills
// the loop's hidden bindings: Index counts up to End (ranges) or over the
// elements of Array (arrays).
type ForStatement struct {
	Token    token.Token
	Variable *Identifier
	Iterable Expression
	Body     *BlockStatement

	VarBinding   *Binding
	IndexBinding *Binding
	EndBinding   *Binding
	ArrayBinding *Binding
}

func (fs *ForStatement) statementNode()        {}
func (fs *ForStatement) TokenLiteral() string  { return fs.Token.Lexeme }
func (fs *ForStatement) GetToken() token.Token { return fs.Token }

type BreakStatement struct {
	Token token.Token
}

func (bs *BreakStatement) statementNode()        {}
func (bs *BreakStatement) TokenLiteral() string  { return bs.Token.Lexeme }
func (bs *BreakStatement) GetToken() token.Token { return bs.Token }

type ContinueStatement struct {
	Token token.Token
}

func (cs *ContinueStatement) statementNode()        {}
func (cs *ContinueStatement) TokenLiteral() string  { return cs.Token.Lexeme }
func (cs *ContinueStatement) GetToken() token.Token { return cs.Token }

type Parameter struct {
	Token   token.Token
	Name    *Identifier
	Type    Type
	Binding *Binding
}

// FunctionStatement represents a function definition, top level, nested or
// inside an impl block (HasSelf).
//
// The resolver fills Binding (the name's slot), SelfBinding, LocalCount and
// FreeVars; Callable is the symbols-side function this declaration defines.
type FunctionStatement struct {
	Token      token.Token
	Name       *Identifier
	HasSelf    bool
	Parameters []*Parameter
	ReturnType Type
	Body       *BlockStatement

	Binding     *Binding
	SelfBinding *Binding
	LocalCount  int
	FreeVars    []*FreeVar
	Callable    Callable
	Owner       string // impl type name for methods
	Depth       int    // 1 for top-level functions and methods
}

func (fs *FunctionStatement) statementNode()        {}
func (fs *FunctionStatement) TokenLiteral() string  { return fs.Token.Lexeme }
func (fs *FunctionStatement) GetToken() token.Token { return fs.Token }

// FieldDecl is one field of a record type or union variant. Positional
// variant fields get synthesized names.
type FieldDecl struct {
	Token token.Token
	Name  string
	Type  Type
}

// TypeStatement declares a record type: type Point { x: Int, y: Int }.
type TypeStatement struct {
	Token  token.Token
	Name   *Identifier
	Fields []*FieldDecl
}

func (ts *TypeStatement) statementNode()        {}
func (ts *TypeStatement) TokenLiteral() string  { return ts.Token.Lexeme }
func (ts *TypeStatement) GetToken() token.Token { return ts.Token }

type VariantDecl struct {
	Token  token.Token
	Name   string
	Fields []*FieldDecl

	Binding *Binding
}

// UnionStatement declares a tagged union: union Shape { Circle(r: Double), Empty }.
type UnionStatement struct {
	Token    token.Token
	Name     *Identifier
	Variants []*VariantDecl
}

func (us *UnionStatement) statementNode()        {}
func (us *UnionStatement) TokenLiteral() string  { return us.Token.Lexeme }
func (us *UnionStatement) GetToken() token.Token { return us.Token }

// ImplStatement attaches methods to a user type.
type ImplStatement struct {
	Token    token.Token
	TypeName *Identifier
	Methods  []*FunctionStatement
}

func (is *ImplStatement) statementNode()        {}
func (is *ImplStatement) TokenLiteral() string  { return is.Token.Lexeme }
func (is *ImplStatement) GetToken() token.Token { return is.Token }

// UseStatement loads a host module: use System.Text.
type UseStatement struct {
	Token token.Token
	Path  []string
}

func (us *UseStatement) statementNode()        {}
func (us *UseStatement) TokenLiteral() string  { return us.Token.Lexeme }
func (us *UseStatement) GetToken() token.Token { return us.Token }
