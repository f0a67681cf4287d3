package parser

import (
	"shale/internal/ast"
	"shale/internal/diag"
	"shale/internal/source"
	"shale/internal/token"
)

type letBinding struct {
	Name     source.StringID
	NameSpan source.Span
	Value    ast.ExprID
	Span     source.Span
}

// parseLetBinding parses `name = expr` after the 'let' keyword.
func (p *Parser) parseLetBinding(letTok token.Token) (letBinding, bool) {
	name, nameSpan, ok := p.parseIdent()
	if !ok {
		return letBinding{}, false
	}
	if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, "expected '=' after the name in 'let'"); !ok {
		return letBinding{}, false
	}
	value, ok := p.parseExpr()
	if !ok {
		return letBinding{}, false
	}
	return letBinding{
		Name:     name,
		NameSpan: nameSpan,
		Value:    value,
		Span:     letTok.Span.Cover(p.exprSpan(value)),
	}, true
}

// parseLetItem parses a top-level constant. Literal-ness is checked later.
func (p *Parser) parseLetItem() (ast.ItemID, bool) {
	letTok := p.advance()
	b, ok := p.parseLetBinding(letTok)
	if !ok {
		return ast.NoItemID, false
	}
	return p.arenas.Items.NewLet(b.Span, ast.LetItem{Name: b.Name, NameSpan: b.NameSpan, Value: b.Value}), true
}

func (p *Parser) parseLetStmt() (ast.StmtID, bool) {
	letTok := p.advance()
	b, ok := p.parseLetBinding(letTok)
	if !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewLet(b.Span, ast.LetStmt{Name: b.Name, NameSpan: b.NameSpan, Value: b.Value}), true
}

// parseSetStmt parses `set name = expr` and `set env.NAME = expr`.
func (p *Parser) parseSetStmt() (ast.StmtID, bool) {
	setTok := p.advance()
	data := ast.SetStmt{}
	if p.eat(token.KwEnv) {
		if _, ok := p.expect(token.Dot, diag.SynBadAssignTarget, "expected '.' after 'env'"); !ok {
			return ast.NoStmtID, false
		}
		tok := p.lx.Peek()
		if tok.Kind != token.Ident && !tok.IsKeyword() {
			p.err(diag.SynExpectIdentifier, "expected an environment variable name, got "+describe(tok))
			return ast.NoStmtID, false
		}
		p.advance()
		data.Env = true
		data.Name = p.arenas.StringsInterner.Intern(tok.Text)
		data.NameSpan = tok.Span
	} else {
		name, nameSpan, ok := p.parseIdent()
		if !ok {
			return ast.NoStmtID, false
		}
		data.Name, data.NameSpan = name, nameSpan
	}
	if p.atOr(token.LBracket, token.Dot) {
		p.err(diag.SynBadAssignTarget, "only a variable or env.NAME can be assigned")
		return ast.NoStmtID, false
	}
	if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, "expected '=' in 'set'"); !ok {
		return ast.NoStmtID, false
	}
	value, ok := p.parseExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	data.Value = value
	return p.arenas.Stmts.NewSet(setTok.Span.Cover(p.exprSpan(value)), data), true
}
