package parser

import (
	"github.com/simon-curtis/jitzu/internal/ast"
	"github.com/simon-curtis/jitzu/internal/diagnostics"
	"github.com/simon-curtis/jitzu/internal/lexer"
	"github.com/simon-curtis/jitzu/internal/token"
)

func (p *Parser) parseExpression(precedence int) ast.Expression {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > MaxRecursionDepth {
		p.errorf(diagnostics.ErrP001, p.curToken, "expression too complex: recursion depth limit exceeded")
		return nil
	}

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		if p.peekTokenIs(token.LBRACE) && !p.startsInstantiation(leftExp) {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}
	return leftExp
}

// startsInstantiation reports whether `{` after left opens `Name { f = v }`.
func (p *Parser) startsInstantiation(left ast.Expression) bool {
	if p.noRecordLiteral {
		return false
	}
	switch l := left.(type) {
	case *ast.Identifier:
		return isUpper(l.Value)
	case *ast.MemberExpression:
		_, ok := qualifiedName(l)
		return ok && isUpper(l.Member.Value)
	}
	return false
}

// qualifiedName flattens a.b.c into its parts when every link is a bare
// identifier.
func qualifiedName(e ast.Expression) ([]string, bool) {
	switch x := e.(type) {
	case *ast.Identifier:
		return []string{x.Value}, true
	case *ast.MemberExpression:
		parts, ok := qualifiedName(x.Left)
		if !ok {
			return nil, false
		}
		return append(parts, x.Member.Value), true
	}
	return nil, false
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	v, ok := p.curToken.Literal.(int64)
	if !ok {
		p.errorf(diagnostics.ErrP003, p.curToken, "could not parse %q as integer", p.curToken.Lexeme)
		return nil
	}
	return &ast.IntegerLiteral{Token: p.curToken, Value: v}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	v, ok := p.curToken.Literal.(float64)
	if !ok {
		p.errorf(diagnostics.ErrP003, p.curToken, "could not parse %q as float", p.curToken.Lexeme)
		return nil
	}
	return &ast.FloatLiteral{Token: p.curToken, Value: v}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	s, _ := p.curToken.Literal.(string)
	return &ast.StringLiteral{Token: p.curToken, Value: s}
}

func (p *Parser) parseCharLiteral() ast.Expression {
	r, ok := p.curToken.Literal.(rune)
	if !ok {
		p.errorf(diagnostics.ErrP003, p.curToken, "invalid character literal %s", p.curToken.Lexeme)
		return nil
	}
	return &ast.CharLiteral{Token: p.curToken, Value: r}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

// parseInterpolatedString parses each {expr} segment with a sub-parser
// positioned at the segment's place in the source.
func (p *Parser) parseInterpolatedString() ast.Expression {
	tok := p.curToken
	parts, _ := tok.Literal.([]token.InterpPart)
	expr := &ast.InterpolatedString{Token: tok}
	for _, part := range parts {
		if !part.IsExpr {
			expr.Parts = append(expr.Parts, &ast.StringLiteral{Token: tok, Value: part.Text})
			continue
		}
		l := lexer.NewAt(part.Source, part.Line, part.Column-1)
		l.SetFile(tok.File)
		toks := l.Tokenize()
		if errs := l.Errors(); len(errs) > 0 {
			p.errors = append(p.errors, errs...)
			return nil
		}
		sub := New(toks)
		e := sub.parseExpression(LOWEST)
		if len(sub.errors) == 0 && !sub.peekTokenIs(token.EOF) {
			sub.errorf(diagnostics.ErrP001, sub.peekToken, "unexpected %s in interpolation", describe(sub.peekToken))
		}
		if len(sub.errors) > 0 {
			p.errors = append(p.errors, sub.errors...)
			return nil
		}
		expr.Parts = append(expr.Parts, e)
	}
	return expr
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Lexeme,
	}
	p.nextToken()
	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Lexeme,
		Left:     left,
	}
	precedence := p.curPrecedence()
	p.nextToken()
	// Allow newline after operator (e.g., x && \n y)
	p.skipNewlines()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}
	return expression
}

// parseRightAssocInfixExpression parses right-associative operators like **
func (p *Parser) parseRightAssocInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Lexeme,
		Left:     left,
	}
	precedence := p.curPrecedence()
	p.nextToken()
	p.skipNewlines()
	expression.Right = p.parseExpression(precedence - 1)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseAssignExpression(left ast.Expression) ast.Expression {
	switch left.(type) {
	case *ast.Identifier, *ast.MemberExpression, *ast.IndexExpression:
	default:
		p.errorf(diagnostics.ErrP001, p.curToken, "invalid assignment target")
		return nil
	}
	expr := &ast.AssignExpression{Token: p.curToken, Target: left}
	p.nextToken()
	p.skipNewlines()
	expr.Value = p.parseExpression(ASSIGN - 1)
	if expr.Value == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseRangeExpression(left ast.Expression) ast.Expression {
	expr := &ast.RangeExpression{Token: p.curToken, Start: left}
	p.nextToken()
	expr.End = p.parseExpression(RANGE)
	if expr.End == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	saved := p.noRecordLiteral
	p.noRecordLiteral = false
	defer func() { p.noRecordLiteral = saved }()

	p.nextToken()
	p.skipNewlines()
	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}
	p.skipPeekNewlines()
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return exp
}

// parseExpressionList parses comma-separated expressions up to end.
func (p *Parser) parseExpressionList(end token.TokenType) []ast.Expression {
	saved := p.noRecordLiteral
	p.noRecordLiteral = false
	defer func() { p.noRecordLiteral = saved }()

	list := []ast.Expression{}
	p.skipPeekNewlines()
	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}
	p.nextToken()
	for {
		p.skipNewlines()
		e := p.parseExpression(LOWEST)
		if e == nil {
			return nil
		}
		list = append(list, e)
		p.skipPeekNewlines()
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		p.skipPeekNewlines()
		if p.peekTokenIs(end) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(end) {
		return nil
	}
	return list
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	arr := &ast.ArrayLiteral{Token: p.curToken}
	arr.Elements = p.parseExpressionList(token.RBRACKET)
	if arr.Elements == nil {
		return nil
	}
	return arr
}

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	call := &ast.CallExpression{Token: p.curToken, Function: function}
	call.Arguments = p.parseExpressionList(token.RPAREN)
	if call.Arguments == nil {
		return nil
	}
	return call
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	exp := &ast.IndexExpression{Token: p.curToken, Left: left}
	saved := p.noRecordLiteral
	p.noRecordLiteral = false
	p.nextToken()
	exp.Index = p.parseExpression(LOWEST)
	p.noRecordLiteral = saved
	if exp.Index == nil || !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return exp
}

func (p *Parser) parseMemberExpression(left ast.Expression) ast.Expression {
	exp := &ast.MemberExpression{Token: p.curToken, Left: left}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	exp.Member = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	return exp
}

// parseNewExpression parses the `{ f = v, ... }` after a type name.
func (p *Parser) parseNewExpression(left ast.Expression) ast.Expression {
	parts, _ := qualifiedName(left)
	expr := &ast.NewExpression{
		Token: left.GetToken(),
		Name:  &ast.NamedType{Token: left.GetToken(), Parts: parts},
	}
	saved := p.noRecordLiteral
	p.noRecordLiteral = false
	defer func() { p.noRecordLiteral = saved }()

	p.nextToken()
	seen := make(map[string]bool)
	for {
		for p.curTokenIs(token.NEWLINE) || p.curTokenIs(token.COMMA) {
			p.nextToken()
		}
		if p.curTokenIs(token.RBRACE) {
			return expr
		}
		if !p.curTokenIs(token.IDENT) {
			p.errorf(diagnostics.ErrP001, p.curToken, "expected field name in %s instantiation, got %s", expr.Name.Name(), describe(p.curToken))
			return nil
		}
		init := &ast.FieldInit{Token: p.curToken, Name: p.curToken.Lexeme}
		if seen[init.Name] {
			p.errorf(diagnostics.ErrP004, p.curToken, "field %s initialized twice", init.Name)
			return nil
		}
		seen[init.Name] = true
		if !p.expectPeek(token.ASSIGN) {
			return nil
		}
		p.nextToken()
		init.Value = p.parseExpression(ASSIGN)
		if init.Value == nil {
			return nil
		}
		expr.Fields = append(expr.Fields, init)
		p.nextToken()
	}
}

func (p *Parser) parseBlockExpression() ast.Expression {
	block := p.parseBlockStatement()
	if block == nil {
		return nil
	}
	return block
}

func (p *Parser) parseTryExpression() ast.Expression {
	expr := &ast.TryExpression{Token: p.curToken}
	p.nextToken()
	expr.Value = p.parseExpression(PREFIX)
	if expr.Value == nil {
		return nil
	}
	return expr
}

// if cond { ... } [else if ... | else { ... }]
func (p *Parser) parseIfExpression() ast.Expression {
	expr := &ast.IfExpression{Token: p.curToken}
	p.nextToken()
	expr.Condition = p.parseCondition()
	if expr.Condition == nil || !p.expectPeek(token.LBRACE) {
		return nil
	}
	expr.Consequence = p.parseBlockStatement()
	if expr.Consequence == nil {
		return nil
	}

	if p.peekPastNewlines().Type != token.ELSE {
		return expr
	}
	p.skipPeekNewlines()
	p.nextToken() // else
	switch {
	case p.peekTokenIs(token.IF):
		p.nextToken()
		alt := p.parseIfExpression()
		if alt == nil {
			return nil
		}
		expr.Alternative = alt
	case p.expectPeek(token.LBRACE):
		alt := p.parseBlockStatement()
		if alt == nil {
			return nil
		}
		expr.Alternative = alt
	default:
		return nil
	}
	return expr
}

// match subject { pattern => body, ... }
func (p *Parser) parseMatchExpression() ast.Expression {
	expr := &ast.MatchExpression{Token: p.curToken}
	p.nextToken()
	expr.Subject = p.parseCondition()
	if expr.Subject == nil || !p.expectPeek(token.LBRACE) {
		return nil
	}
	saved := p.noRecordLiteral
	p.noRecordLiteral = false
	defer func() { p.noRecordLiteral = saved }()

	p.nextToken()
	for {
		for p.curTokenIs(token.NEWLINE) || p.curTokenIs(token.COMMA) {
			p.nextToken()
		}
		if p.curTokenIs(token.RBRACE) {
			break
		}
		arm := &ast.MatchArm{Token: p.curToken}
		arm.Pattern = p.parsePattern()
		if arm.Pattern == nil || !p.expectPeek(token.FAT_ARROW) {
			return nil
		}
		p.nextToken()
		p.skipNewlines()
		arm.Body = p.parseExpression(LOWEST)
		if arm.Body == nil {
			return nil
		}
		expr.Arms = append(expr.Arms, arm)
		p.nextToken()
	}
	if len(expr.Arms) == 0 {
		p.errorf(diagnostics.ErrP004, expr.Token, "match expression has no arms")
		return nil
	}
	return expr
}
