package parser

import (
	"fmt"

	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/diagnostics"
	"github.com/simon-curtis/jitzu/internal/lexer"
	"github.com/simon-curtis/jitzu/internal/token"
)

// ParseType parses a standalone type expression such as `Option<Int>` or
// `System.Collections.List<T>[]`. Host manifests use it.
func ParseType(src string) (ast.Type, error) {
	l := lexer.New(src)
	toks := l.Tokenize()
	if errs := l.Errors(); len(errs) > 0 {
		return nil, errs[0]
	}
	p := New(toks)
	t := p.parseType()
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	if !p.peekTokenIs(token.EOF) {
		return nil, fmt.Errorf("unexpected %s after type %s", describe(p.peekToken), t)
	}
	return t, nil
}

// parseType parses a type annotation starting at the current token:
// Name, A.B.Name, Name<T, U>, T[]. The current token is left on the last
// token of the type.
func (p *Parser) parseType() ast.Type {
	if !p.curTokenIs(token.IDENT) {
		p.errorf(diagnostics.ErrP004, p.curToken, "expected type, got %s", describe(p.curToken))
		return nil
	}
	named := &ast.NamedType{Token: p.curToken, Parts: []string{p.curToken.Lexeme}}
	for p.peekTokenIs(token.DOT) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		named.Parts = append(named.Parts, p.curToken.Lexeme)
	}
	if p.peekTokenIs(token.LT) {
		p.nextToken()
		for {
			p.nextToken()
			arg := p.parseType()
			if arg == nil {
				return nil
			}
			named.Args = append(named.Args, arg)
			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
				continue
			}
			break
		}
		if p.peekTokenIs(token.RSHIFT) {
			p.splitShift()
		}
		if !p.expectPeek(token.GT) {
			return nil
		}
	}

	var typ ast.Type = named
	for p.peekTokenIs(token.LBRACKET) && p.at(p.pos+2).Type == token.RBRACKET {
		p.nextToken()
		p.nextToken()
		typ = &ast.ArrayType{Token: named.Token, Element: typ}
	}
	return typ
}

// parsePattern parses one match pattern at the current token.
func (p *Parser) parsePattern() ast.Pattern {
	tok := p.curToken
	switch tok.Type {
	case token.INT, token.FLOAT, token.STRING, token.CHAR, token.TRUE, token.FALSE:
		value := p.prefixParseFns[tok.Type]()
		if value == nil {
			return nil
		}
		return &ast.LiteralPattern{Token: tok, Value: value}
	case token.MINUS:
		if !p.peekTokenIs(token.INT) && !p.peekTokenIs(token.FLOAT) {
			p.errorf(diagnostics.ErrP004, tok, "expected number after '-' in pattern")
			return nil
		}
		value := p.parsePrefixExpression()
		if value == nil {
			return nil
		}
		return &ast.LiteralPattern{Token: tok, Value: value}
	case token.IDENT:
		if tok.Lexeme == "_" {
			return &ast.WildcardPattern{Token: tok}
		}
		if !isUpper(tok.Lexeme) {
			return &ast.BindingPattern{Token: tok, Name: &ast.Identifier{Token: tok, Value: tok.Lexeme}}
		}
		return p.parseConstructorPattern()
	}
	p.errorf(diagnostics.ErrP004, tok, "invalid pattern %s", describe(tok))
	return nil
}

// Variant, Type.Variant, Variant(p1, p2)
func (p *Parser) parseConstructorPattern() ast.Pattern {
	pat := &ast.ConstructorPattern{Token: p.curToken, Name: []string{p.curToken.Lexeme}}
	for p.peekTokenIs(token.DOT) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		pat.Name = append(pat.Name, p.curToken.Lexeme)
	}
	if !p.peekTokenIs(token.LPAREN) {
		return pat
	}
	p.nextToken()
	p.nextToken()
	p.skipNewlines()
	for !p.curTokenIs(token.RPAREN) {
		sub := p.parsePattern()
		if sub == nil {
			return nil
		}
		pat.Args = append(pat.Args, sub)
		p.nextToken()
		p.skipNewlines()
		if p.curTokenIs(token.COMMA) {
			p.nextToken()
			p.skipNewlines()
		} else if !p.curTokenIs(token.RPAREN) {
			p.errorf(diagnostics.ErrP004, p.curToken, "expected ',' or ')' in pattern, got %s", describe(p.curToken))
			return nil
		}
	}
	return pat
}

// splitShift rewrites a peeked `>>` into two `>` tokens so nested generic
// argument lists can each consume one.
func (p *Parser) splitShift() {
	i := p.pos + 1
	first := p.tokens[i]
	first.Type, first.Lexeme, first.Literal = token.GT, ">", ">"
	second := first
	second.Column++
	rest := append([]token.Token{first, second}, p.tokens[i+1:]...)
	p.tokens = append(p.tokens[:i], rest...)
	p.peekToken = p.tokens[i]
}
