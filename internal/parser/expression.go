package parser

import (
	"shale/internal/ast"
	"shale/internal/diag"
	"shale/internal/source"
	"shale/internal/token"
)

// parseExpr - главная точка входа для парсинга выражений
func (p *Parser) parseExpr() (ast.ExprID, bool) {
	return p.parseBinaryExpr(0)
}

// parseBinaryExpr реализует Pratt parsing для бинарных операторов
// minPrec - минимальный приоритет для текущего уровня
func (p *Parser) parseBinaryExpr(minPrec int) (ast.ExprID, bool) {
	left, ok := p.parseUnaryExpr()
	if !ok {
		return ast.NoExprID, false
	}

	for {
		prec, op := binaryOp(p.lx.Peek().Kind)
		if prec < 0 || prec < minPrec {
			break
		}
		opTok := p.advance()

		right, ok := p.parseBinaryExpr(prec + 1)
		if !ok {
			if !p.IsError() {
				p.errAt(diag.SynExpectExpression, opTok.Span, "expected expression after '"+opTok.Text+"'")
			}
			return ast.NoExprID, false
		}
		left = p.arenas.Exprs.NewBinary(p.exprSpan(left).Cover(p.exprSpan(right)), op, left, right)
	}
	return left, true
}

// parseUnaryExpr обрабатывает унарные операторы (префиксы)
func (p *Parser) parseUnaryExpr() (ast.ExprID, bool) {
	type prefixOp struct {
		op   ast.UnaryOp
		span source.Span
	}
	var prefixes []prefixOp
	for {
		op, ok := unaryOp(p.lx.Peek().Kind)
		if !ok {
			break
		}
		prefixes = append(prefixes, prefixOp{op: op, span: p.advance().Span})
	}

	expr, ok := p.parsePostfixExpr()
	if !ok {
		return ast.NoExprID, false
	}

	// Применяем префиксы справа налево
	for i := len(prefixes) - 1; i >= 0; i-- {
		span := prefixes[i].span.Cover(p.exprSpan(expr))
		expr = p.arenas.Exprs.NewUnary(span, prefixes[i].op, expr)
	}
	return expr, true
}

// parsePostfixExpr обрабатывает постфиксные операторы
func (p *Parser) parsePostfixExpr() (ast.ExprID, bool) {
	expr, ok := p.parsePrimaryExpr()
	if !ok {
		return ast.NoExprID, false
	}
	return p.parsePostfixOps(expr)
}

func (p *Parser) parsePostfixOps(expr ast.ExprID) (ast.ExprID, bool) {
	for {
		var ok bool
		switch p.lx.Peek().Kind {
		case token.LParen:
			expr, ok = p.parseCallExpr(expr)
		case token.LBracket:
			expr, ok = p.parseIndexExpr(expr)
		case token.Dot:
			expr, ok = p.parseMemberExpr(expr)
		default:
			return expr, true
		}
		if !ok {
			return ast.NoExprID, false
		}
	}
}

// parsePrimaryExpr парсит основные (атомарные) выражения
func (p *Parser) parsePrimaryExpr() (ast.ExprID, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.Ident:
		p.advance()
		return p.arenas.Exprs.NewIdent(tok.Span, p.intern(tok.Text)), true
	case token.IntLit:
		return p.parseIntLiteral()
	case token.StringLit, token.RawStringLit:
		p.advance()
		text, ok := p.stringValue(tok)
		if !ok {
			return ast.NoExprID, false
		}
		kind := ast.LitString
		if tok.Kind == token.RawStringLit {
			kind = ast.LitRawString
		}
		return p.arenas.Exprs.NewLit(tok.Span, ast.ExprLitData{Kind: kind, Str: text}), true
	case token.InterpStringLit:
		return p.parseInterpString()
	case token.KwTrue, token.KwFalse:
		p.advance()
		return p.arenas.Exprs.NewLit(tok.Span, ast.ExprLitData{Kind: ast.LitBool, Bool: tok.Kind == token.KwTrue}), true
	case token.KwEnv:
		return p.parseEnvExpr()
	case token.LParen:
		return p.parseGroupExpr()
	case token.LBracket:
		return p.parseListExpr()
	case token.LBrace:
		return p.parseMapExpr()
	case token.KwBackground:
		return p.parseBackgroundExpr()
	case token.KwUnsafe:
		p.advance()
		return p.parseUnsafeCall(tok)
	case token.Invalid:
		p.err(diag.SynUnexpectedToken, "invalid token")
		return ast.NoExprID, false
	}
	if tok.IsKeyword() {
		p.err(diag.SynReservedWord, describe(tok)+" is a reserved word and cannot start an expression")
		return ast.NoExprID, false
	}
	p.err(diag.SynExpectExpression, "expected expression, got "+describe(tok))
	return ast.NoExprID, false
}

func (p *Parser) parseGroupExpr() (ast.ExprID, bool) {
	openTok := p.advance()
	if p.atSep() {
		p.err(diag.SynSeparatorInArgs, "newline or ';' is not allowed inside parentheses")
		return ast.NoExprID, false
	}
	inner, ok := p.parseExpr()
	if !ok {
		return ast.NoExprID, false
	}
	if p.atSep() {
		p.err(diag.SynSeparatorInArgs, "newline or ';' is not allowed inside parentheses")
		return ast.NoExprID, false
	}
	closeTok, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'")
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewGroup(openTok.Span.Cover(closeTok.Span), inner), true
}

// parseEnvExpr parses env.NAME. Keyword-shaped names are fine here.
func (p *Parser) parseEnvExpr() (ast.ExprID, bool) {
	envTok := p.advance()
	if _, ok := p.expect(token.Dot, diag.SynUnexpectedToken, "expected '.' after 'env'"); !ok {
		return ast.NoExprID, false
	}
	name := p.lx.Peek()
	if name.Kind != token.Ident && !name.IsKeyword() {
		p.err(diag.SynExpectIdentifier, "expected an environment variable name, got "+describe(name))
		return ast.NoExprID, false
	}
	p.advance()
	return p.arenas.Exprs.NewEnv(envTok.Span.Cover(name.Span), name.Text, name.Span), true
}

// parseBackgroundExpr parses `background { }` and `background call(...)`.
func (p *Parser) parseBackgroundExpr() (ast.ExprID, bool) {
	bgTok := p.advance()
	if p.at(token.LBrace) {
		block, ok := p.parseBlock()
		if !ok {
			return ast.NoExprID, false
		}
		return p.arenas.Exprs.NewBackground(bgTok.Span.Cover(p.stmtSpan(block)), ast.ExprBackgroundData{Block: block}), true
	}
	call, ok := p.parsePostfixExpr()
	if !ok {
		return ast.NoExprID, false
	}
	if _, isCall := p.arenas.Exprs.Call(call); !isCall {
		p.errAt(diag.SynUnexpectedToken, p.exprSpan(call), "'background' takes a block or a call")
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewBackground(bgTok.Span.Cover(p.exprSpan(call)), ast.ExprBackgroundData{Call: call}), true
}

// parseUnsafeCall parses the `("...")` part of an inline unsafe expression.
func (p *Parser) parseUnsafeCall(kwTok token.Token) (ast.ExprID, bool) {
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' or '{{' after 'unsafe'"); !ok {
		return ast.NoExprID, false
	}
	lit := p.lx.Peek()
	if lit.Kind != token.StringLit && lit.Kind != token.RawStringLit {
		p.err(diag.SynUnexpectedToken, "unsafe() takes a single string literal")
		return ast.NoExprID, false
	}
	p.advance()
	text, ok := p.stringValue(lit)
	if !ok {
		return ast.NoExprID, false
	}
	closeTok, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after the unsafe text")
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewUnsafe(kwTok.Span.Cover(closeTok.Span), ast.ExprUnsafeData{Text: text, TextSpan: lit.Span}), true
}
