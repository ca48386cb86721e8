package ast

import (
	"strings"

	"github.com/simon-curtis/jitzu/internal/token"
)

// Type represents a type annotation in the AST.
type Type interface {
	Node
	typeNode()
	String() string
}

// NamedType is a possibly qualified, possibly generic type name:
// Int, System.Collections.List<Int>, Option<String>.
type NamedType struct {
	Token token.Token
	Parts []string
	Args  []Type
}

func (nt *NamedType) typeNode()             {}
func (nt *NamedType) TokenLiteral() string  { return nt.Token.Lexeme }
func (nt *NamedType) GetToken() token.Token { return nt.Token }

// Name returns the dotted name without arguments.
func (nt *NamedType) Name() string { return strings.Join(nt.Parts, ".") }

func (nt *NamedType) String() string {
	if len(nt.Args) == 0 {
		return nt.Name()
	}
	args := make([]string, len(nt.Args))
	for i, a := range nt.Args {
		args[i] = a.String()
	}
	return nt.Name() + "<" + strings.Join(args, ", ") + ">"
}

// ArrayType is T[].
type ArrayType struct {
	Token   token.Token
	Element Type
}

func (at *ArrayType) typeNode()             {}
func (at *ArrayType) TokenLiteral() string  { return at.Token.Lexeme }
func (at *ArrayType) GetToken() token.Token { return at.Token }
func (at *ArrayType) String() string        { return at.Element.String() + "[]" }
