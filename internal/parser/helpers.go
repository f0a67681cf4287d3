package parser

import (
	"shale/internal/ast"
	"shale/internal/diag"
	"shale/internal/source"
	"shale/internal/token"
)

// advance: съедает следующий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.lx.Next()
	if tok.Kind != token.EOF && tok.Kind != token.Invalid {
		p.lastSpan = tok.Span
	}
	p.lastKind = tok.Kind
	return tok
}

// getDiagnosticSpan points at the next token, or right after the last one
// when the input has ended.
func (p *Parser) getDiagnosticSpan() source.Span {
	peek := p.lx.Peek()
	if peek.Kind == token.EOF || peek.Kind == token.Newline {
		return source.Span{File: p.lastSpan.File, Start: p.lastSpan.End, End: p.lastSpan.End}
	}
	return peek.Span
}

// expect: ожидаем конкретный токен. Если нет: репортим и возвращаем (invalid,false).
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	diagSpan := p.getDiagnosticSpan()
	p.report(code, diag.SevError, diagSpan, msg+", got "+describe(p.lx.Peek()))
	return token.Token{Kind: token.Invalid, Span: diagSpan, Text: p.lx.Peek().Text}, false
}

func (p *Parser) eat(k token.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

// репортует ошибку и передает текущий спан
func (p *Parser) err(code diag.Code, msg string) bool {
	return p.report(code, diag.SevError, p.getDiagnosticSpan(), msg)
}

func (p *Parser) errAt(code diag.Code, sp source.Span, msg string) bool {
	return p.report(code, diag.SevError, sp, msg)
}

// report counts the error. A diagnostic at an invalid token is dropped: the
// lexer has already explained it.
func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) bool {
	if sev == diag.SevError {
		p.opts.CurrentErrors++
	}
	if p.lx.Peek().Kind == token.Invalid && sev == diag.SevError {
		return false
	}
	if p.opts.Reporter == nil {
		return false
	}
	if p.opts.MaxErrors > 0 && p.opts.CurrentErrors > p.opts.MaxErrors {
		return false
	}
	p.opts.Reporter.Report(code, sev, sp, msg, nil, nil)
	return true
}

func (p *Parser) resyncUntil(kinds ...token.Kind) {
	for !p.at(token.EOF) && !p.atOr(kinds...) {
		p.advance()
	}
}

func (p *Parser) atSep() bool {
	return p.atOr(token.Newline, token.Semicolon)
}

func (p *Parser) skipSeps() {
	for p.atSep() {
		p.advance()
	}
}

func (p *Parser) skipNewlines() {
	for p.at(token.Newline) {
		p.advance()
	}
}

// endOfStmt accepts a separator, a closing brace, or a newline already
// consumed while looking for a continuation such as 'else'.
func (p *Parser) endOfStmt(context string) bool {
	switch {
	case p.atSep():
		p.skipSeps()
		return true
	case p.atOr(token.RBrace, token.EOF):
		return true
	case p.lastKind == token.Newline:
		return true
	}
	p.err(diag.SynExpectSeparator, "expected newline or ';' "+context+", got "+describe(p.lx.Peek()))
	return false
}

func (p *Parser) exprSpan(id ast.ExprID) source.Span {
	if e := p.arenas.Exprs.Get(id); e != nil {
		return e.Span
	}
	return p.lastSpan
}

func (p *Parser) stmtSpan(id ast.StmtID) source.Span {
	if s := p.arenas.Stmts.Get(id); s != nil {
		return s.Span
	}
	return p.lastSpan
}
