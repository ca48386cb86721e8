package parser

import (
	"fmt"

	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/config"
	"github.com/simon-curtis/jitzu/internal/diagnostics"
	"github.com/simon-curtis/jitzu/internal/token"
)

func (p *Parser) parseStatement() ast.Statement {
	for p.curTokenIs(token.PUB) {
		p.nextToken()
	}
	switch p.curToken.Type {
	case token.LET:
		return p.parseLetStatement()
	case token.FUN:
		return p.parseFunctionStatement(false)
	case token.TYPE:
		return p.parseTypeStatement()
	case token.UNION:
		return p.parseUnionStatement()
	case token.IMPL:
		return p.parseImplStatement()
	case token.USE:
		return p.parseUseStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.BREAK:
		return &ast.BreakStatement{Token: p.curToken}
	case token.CONTINUE:
		return &ast.ContinueStatement{Token: p.curToken}
	case token.LBRACE:
		return p.parseBlockStatement()
	}
	return p.parseExpressionStatement()
}

// let [mut] name [: Type] = value
func (p *Parser) parseLetStatement() *ast.LetStatement {
	stmt := &ast.LetStatement{Token: p.curToken}
	if p.peekTokenIs(token.MUT) {
		p.nextToken()
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		stmt.TypeAnnotation = p.parseType()
		if stmt.TypeAnnotation == nil {
			return nil
		}
	}
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	p.skipNewlines()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	stmt := &ast.ReturnStatement{Token: p.curToken}
	switch p.peekToken.Type {
	case token.NEWLINE, token.SEMICOLON, token.RBRACE, token.EOF:
		return stmt
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	return stmt
}

func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}
	return stmt
}

// parseBlockStatement parses { statements }. The current token is '{' and
// is left on the closing '}'.
func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	saved := p.noRecordLiteral
	p.noRecordLiteral = false
	defer func() { p.noRecordLiteral = saved }()

	p.nextToken()
	block.Statements = p.parseStatementList(token.RBRACE)
	if !p.curTokenIs(token.RBRACE) {
		p.errorf(diagnostics.ErrP001, p.curToken, "expected '}' to close block opened at %d:%d", block.Token.Line, block.Token.Column)
		return nil
	}
	block.RBraceToken = p.curToken
	return block
}

// parseCondition parses an expression in a condition head, where `Name {`
// does not start an instantiation.
func (p *Parser) parseCondition() ast.Expression {
	saved := p.noRecordLiteral
	p.noRecordLiteral = true
	defer func() { p.noRecordLiteral = saved }()
	return p.parseExpression(LOWEST)
}

func (p *Parser) parseWhileStatement() *ast.WhileStatement {
	stmt := &ast.WhileStatement{Token: p.curToken}
	p.nextToken()
	stmt.Condition = p.parseCondition()
	if stmt.Condition == nil || !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

// for name in iterable { body }
func (p *Parser) parseForStatement() *ast.ForStatement {
	stmt := &ast.ForStatement{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Variable = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	if !p.expectPeek(token.IN) {
		return nil
	}
	p.nextToken()
	stmt.Iterable = p.parseCondition()
	if stmt.Iterable == nil || !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	if stmt.Body == nil {
		return nil
	}
	return stmt
}

// fun name(params) [: ReturnType] { body }
// Inside impl blocks the first parameter may be a bare `self`.
func (p *Parser) parseFunctionStatement(inImpl bool) *ast.FunctionStatement {
	fn := &ast.FunctionStatement{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	fn.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	p.skipNewlines()

	first := true
	for !p.curTokenIs(token.RPAREN) {
		if !first {
			if !p.curTokenIs(token.COMMA) {
				p.errorf(diagnostics.ErrP001, p.curToken, "expected ',' or ')' in parameter list, got %s", describe(p.curToken))
				return nil
			}
			p.nextToken()
			p.skipNewlines()
		}
		if !p.curTokenIs(token.IDENT) {
			p.errorf(diagnostics.ErrP004, p.curToken, "expected parameter name, got %s", describe(p.curToken))
			return nil
		}
		if p.curToken.Lexeme == config.SelfName && first && !p.peekTokenIs(token.COLON) {
			if !inImpl {
				p.errorf(diagnostics.ErrP004, p.curToken, "self parameter outside impl block")
				return nil
			}
			fn.HasSelf = true
		} else {
			param := &ast.Parameter{Token: p.curToken, Name: &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}}
			if p.peekTokenIs(token.COLON) {
				p.nextToken()
				p.nextToken()
				param.Type = p.parseType()
				if param.Type == nil {
					return nil
				}
			}
			fn.Parameters = append(fn.Parameters, param)
		}
		first = false
		p.nextToken()
		p.skipNewlines()
	}

	if p.peekTokenIs(token.COLON) || p.peekTokenIs(token.ARROW) {
		p.nextToken()
		p.nextToken()
		fn.ReturnType = p.parseType()
		if fn.ReturnType == nil {
			return nil
		}
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	fn.Body = p.parseBlockStatement()
	if fn.Body == nil {
		return nil
	}
	return fn
}

// type Name { field: Type, ... }
func (p *Parser) parseTypeStatement() *ast.TypeStatement {
	stmt := &ast.TypeStatement{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	if !isUpper(stmt.Name.Value) {
		p.errorf(diagnostics.ErrP004, p.curToken, "type name %s must start with an upper-case letter", stmt.Name.Value)
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.nextToken()
	fields, ok := p.parseFieldDecls(token.RBRACE, false)
	if !ok {
		return nil
	}
	stmt.Fields = fields
	return stmt
}

// parseFieldDecls parses `name: Type` entries (or bare types when
// positional is set) separated by commas or newlines, up to end.
func (p *Parser) parseFieldDecls(end token.TokenType, positional bool) ([]*ast.FieldDecl, bool) {
	var fields []*ast.FieldDecl
	seen := make(map[string]bool)
	for {
		for p.curTokenIs(token.NEWLINE) || p.curTokenIs(token.COMMA) {
			p.nextToken()
		}
		if p.curTokenIs(end) {
			return fields, true
		}
		field := &ast.FieldDecl{Token: p.curToken}
		if p.curTokenIs(token.IDENT) && p.peekTokenIs(token.COLON) {
			field.Name = p.curToken.Lexeme
			p.nextToken()
			p.nextToken()
		} else if positional {
			field.Name = fmt.Sprintf("item%d", len(fields)+1)
		} else {
			p.errorf(diagnostics.ErrP004, p.curToken, "expected field declaration `name: Type`, got %s", describe(p.curToken))
			return nil, false
		}
		if seen[field.Name] {
			p.errorf(diagnostics.ErrP004, field.Token, "duplicate field %s", field.Name)
			return nil, false
		}
		seen[field.Name] = true
		field.Type = p.parseType()
		if field.Type == nil {
			return nil, false
		}
		fields = append(fields, field)
		p.nextToken()
	}
}

// union Name { Variant(fields), Nullary, ... }
func (p *Parser) parseUnionStatement() *ast.UnionStatement {
	stmt := &ast.UnionStatement{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.nextToken()
	for {
		for p.curTokenIs(token.NEWLINE) || p.curTokenIs(token.COMMA) {
			p.nextToken()
		}
		if p.curTokenIs(token.RBRACE) {
			break
		}
		if !p.curTokenIs(token.IDENT) || !isUpper(p.curToken.Lexeme) {
			p.errorf(diagnostics.ErrP004, p.curToken, "expected variant name, got %s", describe(p.curToken))
			return nil
		}
		variant := &ast.VariantDecl{Token: p.curToken, Name: p.curToken.Lexeme}
		if p.peekTokenIs(token.LPAREN) {
			p.nextToken()
			p.nextToken()
			fields, ok := p.parseFieldDecls(token.RPAREN, true)
			if !ok {
				return nil
			}
			variant.Fields = fields
		}
		stmt.Variants = append(stmt.Variants, variant)
		p.nextToken()
	}
	if len(stmt.Variants) == 0 {
		p.errorf(diagnostics.ErrP004, stmt.Token, "union %s has no variants", stmt.Name.Value)
		return nil
	}
	return stmt
}

// impl Name { fun ... }
func (p *Parser) parseImplStatement() *ast.ImplStatement {
	stmt := &ast.ImplStatement{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.TypeName = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.nextToken()
	for {
		for p.curTokenIs(token.NEWLINE) || p.curTokenIs(token.SEMICOLON) || p.curTokenIs(token.PUB) {
			p.nextToken()
		}
		if p.curTokenIs(token.RBRACE) {
			return stmt
		}
		if !p.curTokenIs(token.FUN) {
			p.errorf(diagnostics.ErrP004, p.curToken, "only functions may appear in impl blocks, got %s", describe(p.curToken))
			return nil
		}
		fn := p.parseFunctionStatement(true)
		if fn == nil {
			return nil
		}
		stmt.Methods = append(stmt.Methods, fn)
		p.nextToken()
	}
}

// use A.B.C
func (p *Parser) parseUseStatement() *ast.UseStatement {
	stmt := &ast.UseStatement{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Path = append(stmt.Path, p.curToken.Lexeme)
	for p.peekTokenIs(token.DOT) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		stmt.Path = append(stmt.Path, p.curToken.Lexeme)
	}
	return stmt
}
