package parser

import (
	"shale/internal/ast"
	"shale/internal/diag"
	"shale/internal/token"
)

// parseFnItem parses `fn name(a, b) { ... }`. Parameters are positional only.
func (p *Parser) parseFnItem() (ast.ItemID, bool) {
	fnTok := p.advance()

	name, nameSpan, ok := p.parseIdent()
	if !ok {
		return ast.NoItemID, false
	}
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after function name"); !ok {
		return ast.NoItemID, false
	}

	var params []ast.FnParam
	for !p.at(token.RParen) {
		if p.atSep() {
			p.err(diag.SynSeparatorInArgs, "newline or ';' is not allowed inside a parameter list")
			return ast.NoItemID, false
		}
		pname, pspan, ok := p.parseIdent()
		if !ok {
			return ast.NoItemID, false
		}
		if p.at(token.Assign) {
			p.err(diag.SynUnexpectedToken, "parameters cannot have default values")
			return ast.NoItemID, false
		}
		params = append(params, ast.FnParam{Name: pname, Span: pspan})
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close the parameter list"); !ok {
		return ast.NoItemID, false
	}

	if !p.at(token.LBrace) {
		p.err(diag.SynExpectBlock, "expected '{' to start the function body, got "+describe(p.lx.Peek()))
		return ast.NoItemID, false
	}
	body, ok := p.parseBlock()
	if !ok {
		return ast.NoItemID, false
	}

	span := fnTok.Span.Cover(p.stmtSpan(body))
	return p.arenas.Items.NewFn(span, ast.FnItem{
		Name:     name,
		NameSpan: nameSpan,
		Params:   params,
		Body:     body,
	}), true
}
