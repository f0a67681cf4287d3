package parser

import (
	"shale/internal/ast"
	"shale/internal/diag"
	"shale/internal/lexer"
	"shale/internal/token"
)

func (p *Parser) parseIntLiteral() (ast.ExprID, bool) {
	tok := p.advance()
	v, err := lexer.ParseInt(tok.Text)
	if err != nil {
		p.errAt(diag.LexBadNumber, tok.Span, "integer literal does not fit in 64 bits")
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewLit(tok.Span, ast.ExprLitData{Kind: ast.LitInt, Int: v}), true
}

// parseListExpr parses `[a, b, c]`. Newlines between elements are allowed.
func (p *Parser) parseListExpr() (ast.ExprID, bool) {
	openTok := p.advance()
	var elems []ast.ExprID
	p.skipNewlines()
	for !p.atOr(token.RBracket, token.EOF) {
		elem, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		elems = append(elems, elem)
		p.skipNewlines()
		if !p.eat(token.Comma) {
			break
		}
		p.skipNewlines()
	}
	closeTok, ok := p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']' to close the list")
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewList(openTok.Span.Cover(closeTok.Span), elems), true
}

// parseMapExpr parses `{key: value, ...}`.
func (p *Parser) parseMapExpr() (ast.ExprID, bool) {
	openTok := p.advance()
	var entries []ast.MapEntry
	p.skipNewlines()
	for !p.atOr(token.RBrace, token.EOF) {
		key, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' after the map key"); !ok {
			return ast.NoExprID, false
		}
		value, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		entries = append(entries, ast.MapEntry{Key: key, Value: value})
		p.skipNewlines()
		if !p.eat(token.Comma) {
			break
		}
		p.skipNewlines()
	}
	closeTok, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close the map")
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewMap(openTok.Span.Cover(closeTok.Span), entries), true
}
