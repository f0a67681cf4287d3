package parser

import (
	"shale/internal/ast"
	"shale/internal/diag"
	"shale/internal/source"
	"shale/internal/token"
)

func (p *Parser) parseCallExpr(callee ast.ExprID) (ast.ExprID, bool) {
	args, closeSpan, ok := p.parseArgs()
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewCall(p.exprSpan(callee).Cover(closeSpan), callee, args), true
}

// parseArgs parses `( arg, name=arg, ... )`. Statement separators are an
// error anywhere inside the parentheses.
func (p *Parser) parseArgs() ([]ast.CallArg, source.Span, bool) {
	p.advance() // (
	var args []ast.CallArg
	named := false
	for !p.atOr(token.RParen, token.EOF) {
		if p.atSep() {
			p.err(diag.SynSeparatorInArgs, "newline or ';' is not allowed inside an argument list")
			return nil, source.Span{}, false
		}
		arg, ok := p.parseArg()
		if !ok {
			return nil, source.Span{}, false
		}
		if arg.Name != source.NoStringID {
			named = true
		} else if named {
			p.errAt(diag.SynNamedArgOrder, p.exprSpan(arg.Value), "positional argument after a named argument")
			return nil, source.Span{}, false
		}
		args = append(args, arg)
		if p.atSep() {
			p.err(diag.SynSeparatorInArgs, "newline or ';' is not allowed inside an argument list")
			return nil, source.Span{}, false
		}
		if !p.eat(token.Comma) {
			break
		}
	}
	closeTok, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close the argument list")
	if !ok {
		return nil, source.Span{}, false
	}
	return args, closeTok.Span, true
}

// parseArg parses `expr`, `name=expr`, or a pipeline (used by capture).
func (p *Parser) parseArg() (ast.CallArg, bool) {
	var value ast.ExprID
	var ok bool
	if p.at(token.LBrace) {
		block, ok := p.parseBlock()
		if !ok {
			return ast.CallArg{}, false
		}
		value = p.arenas.Exprs.NewBlockStage(p.stmtSpan(block), block)
		if !p.at(token.Pipe) {
			p.err(diag.SynBadPipelineStage, "a block argument must start a pipeline: { ... } | cmd(...)")
			return ast.CallArg{}, false
		}
	} else if value, ok = p.parseExpr(); !ok {
		return ast.CallArg{}, false
	}

	if p.at(token.Assign) {
		ident, isIdent := p.arenas.Exprs.Ident(value)
		if !isIdent {
			p.err(diag.SynUnexpectedToken, "only a plain name can be used before '=' in an argument list")
			return ast.CallArg{}, false
		}
		nameSpan := p.exprSpan(value)
		p.advance()
		v, ok := p.parseExpr()
		if !ok {
			return ast.CallArg{}, false
		}
		return ast.CallArg{Name: ident.Name, NameSpan: nameSpan, Value: v}, true
	}
	if p.at(token.Pipe) {
		if value, ok = p.parsePipelineTail(value); !ok {
			return ast.CallArg{}, false
		}
	}
	return ast.CallArg{Value: value}, true
}

func (p *Parser) parseIndexExpr(target ast.ExprID) (ast.ExprID, bool) {
	p.advance() // [
	index, ok := p.parseExpr()
	if !ok {
		return ast.NoExprID, false
	}
	closeTok, ok := p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']' after the index")
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewIndex(p.exprSpan(target).Cover(closeTok.Span), target, index), true
}

func (p *Parser) parseMemberExpr(target ast.ExprID) (ast.ExprID, bool) {
	p.advance() // .
	field, span, ok := p.parseIdent()
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewMember(p.exprSpan(target).Cover(span), ast.ExprMemberData{
		Target:    target,
		Field:     field,
		FieldSpan: span,
	}), true
}

// parsePipelineTail parses `| stage | stage ...` after the first stage.
func (p *Parser) parsePipelineTail(first ast.ExprID) (ast.ExprID, bool) {
	stages := []ast.ExprID{first}
	for p.eat(token.Pipe) {
		p.skipNewlines()
		if p.at(token.LBrace) {
			block, ok := p.parseBlock()
			if !ok {
				return ast.NoExprID, false
			}
			stages = append(stages, p.arenas.Exprs.NewBlockStage(p.stmtSpan(block), block))
			continue
		}
		stage, ok := p.parsePostfixExpr()
		if !ok {
			return ast.NoExprID, false
		}
		if _, isCall := p.arenas.Exprs.Call(stage); !isCall {
			if _, isUnsafe := p.arenas.Exprs.Unsafe(stage); !isUnsafe {
				p.errAt(diag.SynBadPipelineStage, p.exprSpan(stage), "a pipeline stage must be a call or a block")
				return ast.NoExprID, false
			}
		}
		stages = append(stages, stage)
	}
	span := p.exprSpan(first).Cover(p.exprSpan(stages[len(stages)-1]))
	return p.arenas.Exprs.NewPipeline(span, stages), true
}
