package lexer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/simon-curtis/jitzu/internal/diagnostics"
	"github.com/simon-curtis/jitzu/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number
	file         string
	errors       []*diagnostics.DiagnosticError
}

func New(input string) *Lexer {
	return NewAt(input, 1, 0)
}

// NewAt starts lexing as if input began at the given position. Interpolated
// string segments use it so their tokens point into the enclosing source.
func NewAt(input string, line, column int) *Lexer {
	l := &Lexer{input: input, line: line, column: column}
	l.readChar()
	return l
}

// SetFile stamps every produced token with the source file name.
func (l *Lexer) SetFile(file string) { l.file = file }

// Errors returns the lexical errors seen so far.
func (l *Lexer) Errors() []*diagnostics.DiagnosticError { return l.errors }

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		// Stay at the end so lexemes never slice past the input.
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		l.column++
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// Tokenize reads the whole input. The final token is always EOF.
func (l *Lexer) Tokenize() []token.Token {
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}

func (l *Lexer) NextToken() token.Token {
	tok := l.nextToken()
	tok.File = l.file
	return tok
}

func (l *Lexer) nextToken() token.Token {
	l.skipWhitespace()

	line, col := l.line, l.column
	two := func(t token.TokenType) token.Token {
		start := l.ch
		l.readChar()
		lex := string(start) + string(l.ch)
		l.readChar()
		return token.Token{Type: t, Lexeme: lex, Literal: lex, Line: line, Column: col}
	}
	one := func(t token.TokenType) token.Token {
		tok := newToken(t, l.ch, line, col)
		l.readChar()
		return tok
	}

	switch l.ch {
	case 0:
		return token.Token{Type: token.EOF, Line: line, Column: col}
	case '\n':
		return one(token.NEWLINE)
	case '=':
		switch l.peekChar() {
		case '=':
			return two(token.EQ)
		case '>':
			return two(token.FAT_ARROW)
		}
		return one(token.ASSIGN)
	case '+':
		return one(token.PLUS)
	case '-':
		if l.peekChar() == '>' {
			return two(token.ARROW)
		}
		return one(token.MINUS)
	case '*':
		if l.peekChar() == '*' {
			return two(token.POWER)
		}
		return one(token.ASTERISK)
	case '/':
		return one(token.SLASH)
	case '%':
		return one(token.PERCENT)
	case '!':
		if l.peekChar() == '=' {
			return two(token.NOT_EQ)
		}
		return one(token.BANG)
	case '<':
		switch l.peekChar() {
		case '=':
			return two(token.LTE)
		case '<':
			return two(token.LSHIFT)
		}
		return one(token.LT)
	case '>':
		switch l.peekChar() {
		case '=':
			return two(token.GTE)
		case '>':
			return two(token.RSHIFT)
		}
		return one(token.GT)
	case '&':
		if l.peekChar() == '&' {
			return two(token.AND)
		}
		return one(token.AMP)
	case '|':
		if l.peekChar() == '|' {
			return two(token.OR)
		}
		return one(token.PIPE)
	case '^':
		return one(token.CARET)
	case '.':
		if l.peekChar() == '.' {
			return two(token.DOT_DOT)
		}
		return one(token.DOT)
	case '?':
		return one(token.QUESTION)
	case ',':
		return one(token.COMMA)
	case ':':
		return one(token.COLON)
	case ';':
		return one(token.SEMICOLON)
	case '(':
		return one(token.LPAREN)
	case ')':
		return one(token.RPAREN)
	case '{':
		return one(token.LBRACE)
	case '}':
		return one(token.RBRACE)
	case '[':
		return one(token.LBRACKET)
	case ']':
		return one(token.RBRACKET)
	case '"':
		return l.readString(line, col)
	case '\'':
		return l.readCharLiteral(line, col)
	}

	if isLetter(l.ch) {
		ident := l.readIdentifier()
		t := token.LookupIdent(ident)
		var lit interface{} = ident
		switch t {
		case token.TRUE:
			lit = true
		case token.FALSE:
			lit = false
		}
		return token.Token{Type: t, Lexeme: ident, Literal: lit, Line: line, Column: col}
	}
	if isDigit(l.ch) {
		return l.readNumber(line, col)
	}

	tok := one(token.ILLEGAL)
	l.errorf(tok, "illegal character %q", tok.Lexeme)
	return tok
}

func (l *Lexer) errorf(tok token.Token, format string, args ...interface{}) {
	tok.File = l.file
	l.errors = append(l.errors, diagnostics.Errorf(diagnostics.ErrL001, tok, format, args...))
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readNumber(line, col int) token.Token {
	start := l.position
	isFloat := false
	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	// A '.' followed by a digit continues the number; `0..10` is a range.
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || next == '+' || next == '-' {
			isFloat = true
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	lexeme := l.input[start:l.position]
	clean := strings.ReplaceAll(lexeme, "_", "")
	if isFloat {
		v, err := strconv.ParseFloat(clean, 64)
		tok := token.Token{Type: token.FLOAT, Lexeme: lexeme, Literal: v, Line: line, Column: col}
		if err != nil {
			l.errorf(tok, "invalid float literal %s", lexeme)
		}
		return tok
	}
	v, err := strconv.ParseInt(clean, 10, 64)
	tok := token.Token{Type: token.INT, Lexeme: lexeme, Literal: v, Line: line, Column: col}
	if err != nil {
		l.errorf(tok, "invalid integer literal %s", lexeme)
	}
	return tok
}

// readString reads a double-quoted literal. `{expr}` segments make it an
// INTERP_STRING whose literal is []token.InterpPart; `\{` is a literal brace.
func (l *Lexer) readString(line, col int) token.Token {
	start := l.position
	var parts []token.InterpPart
	var text strings.Builder
	interpolated := false

	flush := func() {
		if text.Len() > 0 {
			parts = append(parts, token.InterpPart{Text: text.String()})
			text.Reset()
		}
	}

	l.readChar() // opening quote
	for {
		switch l.ch {
		case 0:
			tok := token.Token{Type: token.ILLEGAL, Lexeme: l.input[start:], Line: line, Column: col}
			l.errorf(tok, "unterminated string literal")
			return tok
		case '"':
			l.readChar()
			lexeme := l.input[start:l.position]
			if !interpolated {
				return token.Token{Type: token.STRING, Lexeme: lexeme, Literal: text.String(), Line: line, Column: col}
			}
			flush()
			return token.Token{Type: token.INTERP_STRING, Lexeme: lexeme, Literal: parts, Line: line, Column: col}
		case '\\':
			l.readChar()
			r, ok := unescape(l.ch)
			if !ok {
				l.errorf(token.Token{Type: token.ILLEGAL, Lexeme: "\\" + string(l.ch), Line: l.line, Column: l.column},
					"unknown escape sequence \\%c", l.ch)
			}
			text.WriteRune(r)
			l.readChar()
		case '{':
			interpolated = true
			flush()
			exprLine, exprCol := l.line, l.column+1
			l.readChar()
			exprStart := l.position
			depth := 0
			for !(l.ch == '}' && depth == 0) {
				if l.ch == 0 {
					tok := token.Token{Type: token.ILLEGAL, Lexeme: l.input[start:], Line: line, Column: col}
					l.errorf(tok, "unterminated interpolation in string literal")
					return tok
				}
				switch l.ch {
				case '{':
					depth++
				case '}':
					depth--
				case '"':
					l.skipNestedString()
				}
				l.readChar()
			}
			parts = append(parts, token.InterpPart{
				IsExpr: true,
				Source: l.input[exprStart:l.position],
				Line:   exprLine,
				Column: exprCol,
			})
			l.readChar() // closing brace
		default:
			text.WriteRune(l.ch)
			l.readChar()
		}
	}
}

// skipNestedString advances over a string literal nested in an
// interpolation, leaving l.ch on its closing quote.
func (l *Lexer) skipNestedString() {
	l.readChar()
	for l.ch != '"' && l.ch != 0 {
		if l.ch == '\\' {
			l.readChar()
		}
		l.readChar()
	}
}

func (l *Lexer) readCharLiteral(line, col int) token.Token {
	start := l.position
	l.readChar()
	r := l.ch
	if r == '\\' {
		l.readChar()
		var ok bool
		if r, ok = unescape(l.ch); !ok {
			l.errorf(token.Token{Type: token.ILLEGAL, Lexeme: "\\" + string(l.ch), Line: l.line, Column: l.column},
				"unknown escape sequence \\%c", l.ch)
		}
	}
	l.readChar()
	if l.ch != '\'' {
		tok := token.Token{Type: token.ILLEGAL, Lexeme: l.input[start:l.position], Line: line, Column: col}
		l.errorf(tok, "unterminated character literal")
		return tok
	}
	l.readChar()
	return token.Token{Type: token.CHAR, Lexeme: l.input[start:l.position], Literal: r, Line: line, Column: col}
}

func unescape(ch rune) (rune, bool) {
	switch ch {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case '0':
		return 0, true
	case '\\', '"', '\'', '{', '}':
		return ch, true
	}
	return ch, false
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func newToken(tokenType token.TokenType, ch rune, line, col int) token.Token {
	return token.Token{Type: tokenType, Lexeme: string(ch), Literal: string(ch), Line: line, Column: col}
}

func (l *Lexer) skipWhitespace() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		default:
			return
		}
	}
}
