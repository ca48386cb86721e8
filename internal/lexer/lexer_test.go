package lexer

import (
	"testing"

	"github.com/simon-curtis/jitzu/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `let x = 10
fun add(a: Int, b: Int): Int { a + b }
x == 1.5 && y != 2 || !z
for i in 0..10 { }
a | f(b) => -> <= >= << >> ** 'c'
// comment
match s { _ => 1 }`

	tests := []struct {
		expectedType   token.TokenType
		expectedLexeme string
	}{
		{token.LET, "let"},
		{token.IDENT, "x"},
		{token.ASSIGN, "="},
		{token.INT, "10"},
		{token.NEWLINE, "\n"},
		{token.FUN, "fun"},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.IDENT, "a"},
		{token.COLON, ":"},
		{token.IDENT, "Int"},
		{token.COMMA, ","},
		{token.IDENT, "b"},
		{token.COLON, ":"},
		{token.IDENT, "Int"},
		{token.RPAREN, ")"},
		{token.COLON, ":"},
		{token.IDENT, "Int"},
		{token.LBRACE, "{"},
		{token.IDENT, "a"},
		{token.PLUS, "+"},
		{token.IDENT, "b"},
		{token.RBRACE, "}"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "x"},
		{token.EQ, "=="},
		{token.FLOAT, "1.5"},
		{token.AND, "&&"},
		{token.IDENT, "y"},
		{token.NOT_EQ, "!="},
		{token.INT, "2"},
		{token.OR, "||"},
		{token.BANG, "!"},
		{token.IDENT, "z"},
		{token.NEWLINE, "\n"},
		{token.FOR, "for"},
		{token.IDENT, "i"},
		{token.IN, "in"},
		{token.INT, "0"},
		{token.DOT_DOT, ".."},
		{token.INT, "10"},
		{token.LBRACE, "{"},
		{token.RBRACE, "}"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "a"},
		{token.PIPE, "|"},
		{token.IDENT, "f"},
		{token.LPAREN, "("},
		{token.IDENT, "b"},
		{token.RPAREN, ")"},
		{token.FAT_ARROW, "=>"},
		{token.ARROW, "->"},
		{token.LTE, "<="},
		{token.GTE, ">="},
		{token.LSHIFT, "<<"},
		{token.RSHIFT, ">>"},
		{token.POWER, "**"},
		{token.CHAR, "'c'"},
		{token.NEWLINE, "\n"},
		{token.NEWLINE, "\n"},
		{token.MATCH, "match"},
		{token.IDENT, "s"},
		{token.LBRACE, "{"},
		{token.IDENT, "_"},
		{token.FAT_ARROW, "=>"},
		{token.INT, "1"},
		{token.RBRACE, "}"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (%q)", i, tt.expectedType, tok.Type, tok.Lexeme)
		}
		if tok.Lexeme != tt.expectedLexeme {
			t.Fatalf("tests[%d] - lexeme wrong. expected=%q, got=%q", i, tt.expectedLexeme, tok.Lexeme)
		}
	}
	if len(l.Errors()) != 0 {
		t.Errorf("unexpected errors: %v", l.Errors())
	}
}

func TestLiteralValues(t *testing.T) {
	toks := New(`42 2.5 1e3 "hi\n" 'x' true`).Tokenize()
	if v := toks[0].Literal.(int64); v != 42 {
		t.Errorf("int literal = %d", v)
	}
	if v := toks[1].Literal.(float64); v != 2.5 {
		t.Errorf("float literal = %v", v)
	}
	if v := toks[2].Literal.(float64); v != 1000 {
		t.Errorf("exponent literal = %v", v)
	}
	if v := toks[3].Literal.(string); v != "hi\n" {
		t.Errorf("string literal = %q", v)
	}
	if v := toks[4].Literal.(rune); v != 'x' {
		t.Errorf("char literal = %q", v)
	}
	if v := toks[5].Literal.(bool); !v {
		t.Error("true literal decoded as false")
	}
}

func TestInterpolatedString(t *testing.T) {
	toks := New(`"a {x + 1} b {f("}")}"`).Tokenize()
	if toks[0].Type != token.INTERP_STRING {
		t.Fatalf("type = %s, want INTERP_STRING", toks[0].Type)
	}
	parts := toks[0].Literal.([]token.InterpPart)
	want := []token.InterpPart{
		{Text: "a "},
		{IsExpr: true, Source: "x + 1"},
		{Text: " b "},
		{IsExpr: true, Source: `f("}")`},
	}
	if len(parts) != len(want) {
		t.Fatalf("parts = %+v", parts)
	}
	for i, w := range want {
		if parts[i].IsExpr != w.IsExpr || parts[i].Text != w.Text || parts[i].Source != w.Source {
			t.Errorf("part %d = %+v, want %+v", i, parts[i], w)
		}
	}
	if parts[1].Line != 1 || parts[1].Column != 5 {
		t.Errorf("expression position = %d:%d, want 1:5", parts[1].Line, parts[1].Column)
	}
}

func TestEscapedBrace(t *testing.T) {
	toks := New(`"\{not code}"`).Tokenize()
	if toks[0].Type != token.STRING || toks[0].Literal.(string) != "{not code}" {
		t.Errorf("got %s %v", toks[0].Type, toks[0].Literal)
	}
}

func TestLexErrors(t *testing.T) {
	tests := []string{"let x = #", `"unterminated`, "'ab'", "'", "'a", `'\`, "let c = '"}
	for _, input := range tests {
		l := New(input)
		l.Tokenize()
		if len(l.Errors()) == 0 {
			t.Errorf("%q: expected a lexical error", input)
			continue
		}
		if code := l.Errors()[0].Code; code != "L001" {
			t.Errorf("%q: code = %s, want L001", input, code)
		}
	}
}

func TestPositions(t *testing.T) {
	toks := New("let x\n  y").Tokenize()
	y := toks[3]
	if y.Lexeme != "y" || y.Line != 2 || y.Column != 3 {
		t.Errorf("y at %d:%d (%q), want 2:3", y.Line, y.Column, y.Lexeme)
	}
}
