package token

import "fmt"

type TokenType string

// Token is a single lexical token.
type Token struct {
	Type    TokenType
	Lexeme  string      // Raw text as it appeared in the source
	Literal interface{} // Decoded value for literals (int64, float64, string, rune)
	Line    int
	Column  int
	File    string
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %d:%d", t.Type, t.Lexeme, t.Line, t.Column)
}

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"
	NEWLINE = "NEWLINE"

	IDENT  = "IDENT"
	INT    = "INT"
	FLOAT  = "FLOAT"
	STRING = "STRING"
	CHAR   = "CHAR"

	// INTERP_STRING is a string literal containing {expr} segments.
	// Literal holds []InterpPart.
	INTERP_STRING = "INTERP_STRING"

	ASSIGN   = "="
	PLUS     = "+"
	MINUS    = "-"
	ASTERISK = "*"
	SLASH    = "/"
	PERCENT  = "%"
	POWER    = "**"
	BANG     = "!"

	EQ     = "=="
	NOT_EQ = "!="
	LT     = "<"
	LTE    = "<="
	GT     = ">"
	GTE    = ">="

	AND    = "&&"
	OR     = "||"
	PIPE   = "|"
	AMP    = "&"
	CARET  = "^"
	LSHIFT = "<<"
	RSHIFT = ">>"

	ARROW     = "->"
	FAT_ARROW = "=>"
	DOT       = "."
	DOT_DOT   = ".."
	QUESTION  = "?"

	COMMA     = ","
	COLON     = ":"
	SEMICOLON = ";"
	LPAREN    = "("
	RPAREN    = ")"
	LBRACE    = "{"
	RBRACE    = "}"
	LBRACKET  = "["
	RBRACKET  = "]"

	// Keywords
	LET      = "LET"
	FUN      = "FUN"
	RETURN   = "RETURN"
	IF       = "IF"
	ELSE     = "ELSE"
	WHILE    = "WHILE"
	FOR      = "FOR"
	IN       = "IN"
	MATCH    = "MATCH"
	TYPE     = "TYPE"
	UNION    = "UNION"
	IMPL     = "IMPL"
	USE      = "USE"
	TRY      = "TRY"
	BREAK    = "BREAK"
	CONTINUE = "CONTINUE"
	TRUE     = "TRUE"
	FALSE    = "FALSE"
	MUT      = "MUT"
	PUB      = "PUB"
)

var keywords = map[string]TokenType{
	"let":      LET,
	"fun":      FUN,
	"return":   RETURN,
	"if":       IF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"in":       IN,
	"match":    MATCH,
	"type":     TYPE,
	"union":    UNION,
	"impl":     IMPL,
	"use":      USE,
	"try":      TRY,
	"break":    BREAK,
	"continue": CONTINUE,
	"true":     TRUE,
	"false":    FALSE,
	"mut":      MUT,
	"pub":      PUB,
}

// LookupIdent returns the keyword token type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// InterpPart is one segment of an interpolated string literal.
// Exactly one of Text and Source is meaningful, selected by IsExpr.
type InterpPart struct {
	IsExpr bool
	Text   string
	Source string
	Line   int
	Column int
}
