package parser

import (
	"fmt"
	"unicode"

	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/diagnostics"
	"github.com/simon-curtis/jitzu/internal/token"
)

// MaxRecursionDepth bounds expression nesting.
const MaxRecursionDepth = 500

const (
	_ int = iota
	LOWEST
	ASSIGN      // =
	PIPE        // |
	LOGIC_OR    // ||
	LOGIC_AND   // &&
	EQUALS      // == !=
	LESSGREATER // < > <= >=
	BITWISE     // & ^
	SHIFT       // << >>
	RANGE       // ..
	SUM         // + -
	PRODUCT     // * / %
	POWER       // **
	PREFIX      // -x !x
	CALL        // f(x) a[i] a.b
)

var precedences = map[token.TokenType]int{
	token.ASSIGN:   ASSIGN,
	token.PIPE:     PIPE,
	token.OR:       LOGIC_OR,
	token.AND:      LOGIC_AND,
	token.EQ:       EQUALS,
	token.NOT_EQ:   EQUALS,
	token.LT:       LESSGREATER,
	token.GT:       LESSGREATER,
	token.LTE:      LESSGREATER,
	token.GTE:      LESSGREATER,
	token.AMP:      BITWISE,
	token.CARET:    BITWISE,
	token.LSHIFT:   SHIFT,
	token.RSHIFT:   SHIFT,
	token.DOT_DOT:  RANGE,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
	token.PERCENT:  PRODUCT,
	token.POWER:    POWER,
	token.LPAREN:   CALL,
	token.LBRACKET: CALL,
	token.DOT:      CALL,
	token.LBRACE:   CALL,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	tokens []token.Token
	pos    int

	curToken  token.Token
	peekToken token.Token

	errors []*diagnostics.DiagnosticError

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn

	// noRecordLiteral is set while parsing a condition head, where `{`
	// opens the body rather than an instantiation.
	noRecordLiteral bool
	depth           int
}

// New creates a parser over a token slice ending in EOF.
func New(tokens []token.Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		tokens = append(tokens, token.Token{Type: token.EOF})
	}
	p := &Parser{tokens: tokens}

	p.prefixParseFns = map[token.TokenType]prefixParseFn{
		token.IDENT:         p.parseIdentifier,
		token.INT:           p.parseIntegerLiteral,
		token.FLOAT:         p.parseFloatLiteral,
		token.STRING:        p.parseStringLiteral,
		token.INTERP_STRING: p.parseInterpolatedString,
		token.CHAR:          p.parseCharLiteral,
		token.TRUE:          p.parseBooleanLiteral,
		token.FALSE:         p.parseBooleanLiteral,
		token.MINUS:         p.parsePrefixExpression,
		token.BANG:          p.parsePrefixExpression,
		token.LPAREN:        p.parseGroupedExpression,
		token.LBRACKET:      p.parseArrayLiteral,
		token.LBRACE:        p.parseBlockExpression,
		token.IF:            p.parseIfExpression,
		token.MATCH:         p.parseMatchExpression,
		token.TRY:           p.parseTryExpression,
	}

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for _, t := range []token.TokenType{
		token.PIPE, token.OR, token.AND, token.EQ, token.NOT_EQ,
		token.LT, token.GT, token.LTE, token.GTE, token.AMP, token.CARET,
		token.LSHIFT, token.RSHIFT, token.PLUS, token.MINUS,
		token.ASTERISK, token.SLASH, token.PERCENT,
	} {
		p.infixParseFns[t] = p.parseInfixExpression
	}
	p.infixParseFns[token.POWER] = p.parseRightAssocInfixExpression
	p.infixParseFns[token.ASSIGN] = p.parseAssignExpression
	p.infixParseFns[token.DOT_DOT] = p.parseRangeExpression
	p.infixParseFns[token.LPAREN] = p.parseCallExpression
	p.infixParseFns[token.LBRACKET] = p.parseIndexExpression
	p.infixParseFns[token.DOT] = p.parseMemberExpression
	p.infixParseFns[token.LBRACE] = p.parseNewExpression

	p.curToken = p.tokens[0]
	p.peekToken = p.at(1)
	return p
}

func (p *Parser) Errors() []*diagnostics.DiagnosticError { return p.errors }

func (p *Parser) at(i int) token.Token {
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) nextToken() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	p.curToken = p.tokens[p.pos]
	p.peekToken = p.at(p.pos + 1)
}

func (p *Parser) curTokenIs(t token.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.TokenType) bool { return p.peekToken.Type == t }

// peekPastNewlines returns the first non-NEWLINE token after the current one.
func (p *Parser) peekPastNewlines() token.Token {
	for i := p.pos + 1; i < len(p.tokens); i++ {
		if p.tokens[i].Type != token.NEWLINE {
			return p.tokens[i]
		}
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) skipNewlines() {
	for p.curTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}

func (p *Parser) skipPeekNewlines() {
	for p.peekTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t token.TokenType) {
	p.errorf(diagnostics.ErrP001, p.peekToken, "expected next token to be %s, got %s instead", t, describe(p.peekToken))
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	p.errorf(diagnostics.ErrP002, tok, "unexpected %s", describe(tok))
}

func (p *Parser) errorf(code diagnostics.ErrorCode, tok token.Token, format string, args ...interface{}) {
	p.errors = append(p.errors, diagnostics.Errorf(code, tok, format, args...))
}

func describe(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.NEWLINE:
		return "newline"
	}
	return fmt.Sprintf("%q", tok.Lexeme)
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

// ParseProgram parses a whole batch of top-level statements.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	program.Statements = p.parseStatementList(token.EOF)
	return program
}

// parseStatementList parses statements until the terminator token (which
// is left as the current token). Statements are separated by newlines or
// semicolons; a statement ending in '}' needs no separator.
func (p *Parser) parseStatementList(end token.TokenType) []ast.Statement {
	var stmts []ast.Statement
	for {
		for p.curTokenIs(token.NEWLINE) || p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
		}
		if p.curTokenIs(end) || p.curTokenIs(token.EOF) {
			return stmts
		}
		startErrors := len(p.errors)
		stmt := p.parseStatement()
		if len(p.errors) > startErrors {
			p.skipToStatementBoundary(end)
			continue
		}
		stmts = append(stmts, stmt)
		// curToken is the last token of the statement.
		endsWithBrace := p.curTokenIs(token.RBRACE)
		p.nextToken()
		if p.curTokenIs(token.NEWLINE) || p.curTokenIs(token.SEMICOLON) ||
			p.curTokenIs(end) || p.curTokenIs(token.EOF) || endsWithBrace {
			continue
		}
		p.errorf(diagnostics.ErrP001, p.curToken, "expected newline or ';' before %s", describe(p.curToken))
		p.skipToStatementBoundary(end)
	}
}

func (p *Parser) skipToStatementBoundary(end token.TokenType) {
	depth := 0
	for !p.curTokenIs(token.EOF) {
		switch p.curToken.Type {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			if depth == 0 && end == token.RBRACE {
				return
			}
			depth--
		case token.NEWLINE, token.SEMICOLON:
			if depth <= 0 {
				return
			}
		}
		p.nextToken()
	}
}

func isUpper(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}
