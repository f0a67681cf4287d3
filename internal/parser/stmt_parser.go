package parser

import (
	"shale/internal/ast"
	"shale/internal/diag"
	"shale/internal/lexer"
	"shale/internal/token"
)

func (p *Parser) parseBlock() (ast.StmtID, bool) {
	openTok, ok := p.expect(token.LBrace, diag.SynExpectBlock, "expected '{'")
	if !ok {
		return ast.NoStmtID, false
	}
	stmtIDs := p.parseStmtList()
	if p.opts.Enough() {
		return ast.NoStmtID, false
	}
	closeTok, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close the block")
	if !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewBlock(openTok.Span.Cover(closeTok.Span), stmtIDs), true
}

// parseStmtList reads statements up to '}' or EOF. With a single allowed
// error it stops at the first one; otherwise it resyncs at the next separator.
func (p *Parser) parseStmtList() []ast.StmtID {
	var stmtIDs []ast.StmtID
	p.skipSeps()
	for !p.atOr(token.EOF, token.RBrace) {
		stmtID, ok := p.parseStmt()
		if ok {
			stmtIDs = append(stmtIDs, stmtID)
			ok = p.endOfStmt("after statement")
		}
		if !ok {
			if p.opts.Enough() {
				return stmtIDs
			}
			p.resyncUntil(token.Newline, token.Semicolon, token.RBrace)
			p.skipSeps()
		}
	}
	return stmtIDs
}

func (p *Parser) parseStmt() (ast.StmtID, bool) {
	switch p.lx.Peek().Kind {
	case token.KwLet:
		return p.parseLetStmt()
	case token.KwSet:
		return p.parseSetStmt()
	case token.KwIf:
		return p.parseIfStmt()
	case token.KwCase:
		return p.parseCaseStmt()
	case token.KwWhile:
		return p.parseWhileStmt()
	case token.KwFor:
		return p.parseForStmt()
	case token.KwTry:
		return p.parseTryStmt()
	case token.KwWith:
		return p.parseWithStmt()
	case token.KwBreak:
		return p.arenas.Stmts.NewBreak(p.advance().Span), true
	case token.KwContinue:
		return p.arenas.Stmts.NewContinue(p.advance().Span), true
	case token.KwReturn:
		return p.parseReturnStmt()
	case token.KwSubshell:
		return p.parseProcBlock(ast.StmtSubshell)
	case token.KwGroup:
		return p.parseProcBlock(ast.StmtGroup)
	case token.KwUnsafe:
		return p.parseUnsafeStmt()
	case token.LBrace:
		return p.parseBlockOrPipeline()
	case token.KwFn, token.KwImport:
		p.err(diag.SynUnexpectedToken, describe(p.lx.Peek())+" is only allowed at top level")
		return ast.NoStmtID, false
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseReturnStmt() (ast.StmtID, bool) {
	retTok := p.advance()
	if p.atSep() || p.atOr(token.RBrace, token.EOF) {
		return p.arenas.Stmts.NewReturn(retTok.Span, ast.NoExprID), true
	}
	value, ok := p.parseExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewReturn(retTok.Span.Cover(p.exprSpan(value)), value), true
}

// parseExprStmt parses an expression and an optional pipeline tail.
func (p *Parser) parseExprStmt() (ast.StmtID, bool) {
	expr, ok := p.parseExpr()
	if !ok {
		return ast.NoStmtID, false
	}
	if p.at(token.Pipe) {
		if expr, ok = p.parsePipelineTail(expr); !ok {
			return ast.NoStmtID, false
		}
	}
	return p.arenas.Stmts.NewExpr(p.exprSpan(expr), expr), true
}

// parseBlockOrPipeline handles a statement that starts with '{': a plain
// nested block, or the first stage of a pipeline.
func (p *Parser) parseBlockOrPipeline() (ast.StmtID, bool) {
	block, ok := p.parseBlock()
	if !ok {
		return ast.NoStmtID, false
	}
	if !p.at(token.Pipe) {
		return block, true
	}
	first := p.arenas.Exprs.NewBlockStage(p.stmtSpan(block), block)
	pipe, ok := p.parsePipelineTail(first)
	if !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewExpr(p.exprSpan(pipe), pipe), true
}

func (p *Parser) parseProcBlock(kind ast.StmtKind) (ast.StmtID, bool) {
	kwTok := p.advance()
	if !p.at(token.LBrace) {
		p.err(diag.SynExpectBlock, "expected '{' after "+describe(kwTok))
		return ast.NoStmtID, false
	}
	body, ok := p.parseBlock()
	if !ok {
		return ast.NoStmtID, false
	}
	return p.arenas.Stmts.NewProcBlock(kind, kwTok.Span.Cover(p.stmtSpan(body)), body), true
}

// parseUnsafeStmt parses `unsafe {{ ... }}`; `unsafe("...")` falls through
// to an expression statement.
func (p *Parser) parseUnsafeStmt() (ast.StmtID, bool) {
	kwTok := p.lx.Peek()
	p.advance()
	if p.at(token.RawBlock) {
		raw := p.advance()
		return p.arenas.Stmts.NewUnsafeBlock(kwTok.Span.Cover(raw.Span), lexer.RawBlockBody(raw.Text)), true
	}
	expr, ok := p.parseUnsafeCall(kwTok)
	if !ok {
		return ast.NoStmtID, false
	}
	if p.at(token.Pipe) {
		if expr, ok = p.parsePipelineTail(expr); !ok {
			return ast.NoStmtID, false
		}
	}
	return p.arenas.Stmts.NewExpr(p.exprSpan(expr), expr), true
}
