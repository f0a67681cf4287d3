package parser

import (
	"shale/internal/ast"
	"shale/internal/diag"
	"shale/internal/token"
)

// parseCond parses a header expression that must be followed by a block.
func (p *Parser) parseCond(what string) (ast.ExprID, bool) {
	if p.at(token.LBrace) {
		p.err(diag.SynExpectExpression, "expected a condition after '"+what+"'")
		return ast.NoExprID, false
	}
	cond, ok := p.parseExpr()
	if !ok {
		return ast.NoExprID, false
	}
	if !p.at(token.LBrace) {
		p.err(diag.SynExpectBlock, "expected '{' after the "+what+" condition, got "+describe(p.lx.Peek()))
		return ast.NoExprID, false
	}
	return cond, true
}

func (p *Parser) parseIfStmt() (ast.StmtID, bool) {
	ifTok := p.advance()
	cond, ok := p.parseCond("if")
	if !ok {
		return ast.NoStmtID, false
	}
	then, ok := p.parseBlock()
	if !ok {
		return ast.NoStmtID, false
	}
	data := ast.IfStmt{Cond: cond, Then: then}
	end := p.stmtSpan(then)

	for {
		// elif/else may start on the next line
		if p.at(token.Newline) {
			p.advance()
		}
		switch {
		case p.at(token.KwElif):
			elifTok := p.advance()
			c, ok := p.parseCond("elif")
			if !ok {
				return ast.NoStmtID, false
			}
			body, ok := p.parseBlock()
			if !ok {
				return ast.NoStmtID, false
			}
			end = p.stmtSpan(body)
			data.Elifs = append(data.Elifs, ast.ElifClause{Span: elifTok.Span.Cover(end), Cond: c, Body: body})
			continue
		case p.at(token.KwElse):
			p.advance()
			if p.at(token.KwIf) {
				p.err(diag.SynUnexpectedToken, "use 'elif' instead of 'else if'")
				return ast.NoStmtID, false
			}
			if !p.at(token.LBrace) {
				p.err(diag.SynExpectBlock, "expected '{' after 'else', got "+describe(p.lx.Peek()))
				return ast.NoStmtID, false
			}
			body, ok := p.parseBlock()
			if !ok {
				return ast.NoStmtID, false
			}
			data.Else = body
			end = p.stmtSpan(body)
		}
		break
	}
	return p.arenas.Stmts.NewIf(ifTok.Span.Cover(end), data), true
}

func (p *Parser) parseWhileStmt() (ast.StmtID, bool) {
	whileTok := p.advance()
	cond, ok := p.parseCond("while")
	if !ok {
		return ast.NoStmtID, false
	}
	body, ok := p.parseBlock()
	if !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewWhile(whileTok.Span.Cover(p.stmtSpan(body)), ast.WhileStmt{Cond: cond, Body: body}), true
}

// parseForStmt parses `for x in e { }` and `for k, v in e { }`.
func (p *Parser) parseForStmt() (ast.StmtID, bool) {
	forTok := p.advance()
	var vars []ast.ForVar
	for {
		name, span, ok := p.parseIdent()
		if !ok {
			return ast.NoStmtID, false
		}
		vars = append(vars, ast.ForVar{Name: name, Span: span})
		if len(vars) == 2 || !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.KwIn, diag.SynForMissingIn, "expected 'in' after the loop variables"); !ok {
		return ast.NoStmtID, false
	}
	iter, ok := p.parseCond("for")
	if !ok {
		return ast.NoStmtID, false
	}
	body, ok := p.parseBlock()
	if !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewFor(forTok.Span.Cover(p.stmtSpan(body)), ast.ForStmt{Vars: vars, Iter: iter, Body: body}), true
}

// parseTryStmt parses `try { } catch [name] { }`.
func (p *Parser) parseTryStmt() (ast.StmtID, bool) {
	tryTok := p.advance()
	if !p.at(token.LBrace) {
		p.err(diag.SynExpectBlock, "expected '{' after 'try'")
		return ast.NoStmtID, false
	}
	body, ok := p.parseBlock()
	if !ok {
		return ast.NoStmtID, false
	}
	if p.at(token.Newline) {
		p.advance()
	}
	if !p.at(token.KwCatch) {
		p.errAt(diag.SynCatchMissing, tryTok.Span, "'try' block must be followed by 'catch'")
		return ast.NoStmtID, false
	}
	p.advance()
	data := ast.TryStmt{Body: body}
	if !p.at(token.LBrace) {
		name, span, ok := p.parseIdent()
		if !ok {
			return ast.NoStmtID, false
		}
		data.CatchName, data.CatchSpan = name, span
	}
	if !p.at(token.LBrace) {
		p.err(diag.SynExpectBlock, "expected '{' after 'catch'")
		return ast.NoStmtID, false
	}
	catch, ok := p.parseBlock()
	if !ok {
		return ast.NoStmtID, false
	}
	data.Catch = catch
	return p.arenas.Stmts.NewTry(tryTok.Span.Cover(p.stmtSpan(catch)), data), true
}

// parseWithStmt parses `with mod(args), mod(args) { }`.
func (p *Parser) parseWithStmt() (ast.StmtID, bool) {
	withTok := p.advance()
	var mods []ast.Modifier
	for {
		tok := p.lx.Peek()
		if tok.Kind != token.Ident && tok.Kind != token.KwEnv {
			p.err(diag.SynExpectIdentifier, "expected a modifier such as env(...), cwd(...) or redirect(...), got "+describe(tok))
			return ast.NoStmtID, false
		}
		p.advance()
		if !p.at(token.LParen) {
			p.err(diag.SynUnexpectedToken, "expected '(' after modifier '"+tok.Text+"'")
			return ast.NoStmtID, false
		}
		args, closeSpan, ok := p.parseArgs()
		if !ok {
			return ast.NoStmtID, false
		}
		mods = append(mods, ast.Modifier{
			Name:     p.intern(tok.Text),
			NameSpan: tok.Span,
			Span:     tok.Span.Cover(closeSpan),
			Args:     args,
		})
		if !p.eat(token.Comma) {
			break
		}
	}
	if !p.at(token.LBrace) {
		p.err(diag.SynExpectBlock, "expected '{' after the modifiers, got "+describe(p.lx.Peek()))
		return ast.NoStmtID, false
	}
	body, ok := p.parseBlock()
	if !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewWith(withTok.Span.Cover(p.stmtSpan(body)), ast.WithStmt{Mods: mods, Body: body}), true
}

// parseCaseStmt parses `case e { "a" | glob("*.x") -> stmt  _ -> { } }`.
func (p *Parser) parseCaseStmt() (ast.StmtID, bool) {
	caseTok := p.advance()
	subject, ok := p.parseCond("case")
	if !ok {
		return ast.NoStmtID, false
	}
	p.advance() // {
	data := ast.CaseStmt{Subject: subject}
	p.skipSeps()
	for !p.atOr(token.RBrace, token.EOF) {
		arm, ok := p.parseCaseArm()
		if !ok {
			return ast.NoStmtID, false
		}
		data.Arms = append(data.Arms, arm)
		if !p.endOfStmt("after case arm") {
			return ast.NoStmtID, false
		}
	}
	closeTok, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close 'case'")
	if !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewCase(caseTok.Span.Cover(closeTok.Span), data), true
}

func (p *Parser) parseCaseArm() (ast.CaseArm, bool) {
	var arm ast.CaseArm
	start := p.lx.Peek().Span
	for {
		pat, ok := p.parsePattern()
		if !ok {
			return arm, false
		}
		arm.Patterns = append(arm.Patterns, pat)
		if !p.eat(token.Pipe) {
			break
		}
	}
	if _, ok := p.expect(token.Arrow, diag.SynExpectArrow, "expected '->' after the case pattern"); !ok {
		return arm, false
	}
	var body ast.StmtID
	var ok bool
	if p.at(token.LBrace) {
		body, ok = p.parseBlock()
	} else {
		body, ok = p.parseStmt()
	}
	if !ok {
		return arm, false
	}
	arm.Body = body
	arm.Span = start.Cover(p.stmtSpan(body))
	return arm, true
}

func (p *Parser) parsePattern() (ast.CasePattern, bool) {
	tok := p.lx.Peek()
	switch {
	case tok.Kind == token.Underscore:
		p.advance()
		return ast.CasePattern{Kind: ast.PatternWildcard, Span: tok.Span}, true
	case tok.Kind == token.StringLit || tok.Kind == token.RawStringLit:
		p.advance()
		text, ok := p.stringValue(tok)
		return ast.CasePattern{Kind: ast.PatternLiteral, Text: text, Span: tok.Span}, ok
	case tok.Kind == token.Ident && tok.Text == "glob":
		p.advance()
		if _, ok := p.expect(token.LParen, diag.SynBadPattern, "expected '(' after 'glob'"); !ok {
			return ast.CasePattern{}, false
		}
		lit := p.lx.Peek()
		if lit.Kind != token.StringLit && lit.Kind != token.RawStringLit {
			p.err(diag.SynBadPattern, "glob() takes a single string literal")
			return ast.CasePattern{}, false
		}
		p.advance()
		text, ok := p.stringValue(lit)
		if !ok {
			return ast.CasePattern{}, false
		}
		closeTok, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after the glob pattern")
		if !ok {
			return ast.CasePattern{}, false
		}
		return ast.CasePattern{Kind: ast.PatternGlob, Text: text, Span: tok.Span.Cover(closeTok.Span)}, true
	}
	p.err(diag.SynBadPattern, "expected a string, glob(\"...\") or '_' as case pattern, got "+describe(tok))
	return ast.CasePattern{}, false
}
