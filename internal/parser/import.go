package parser

import (
	"strings"

	"shale/internal/ast"
	"shale/internal/diag"
	"shale/internal/lexer"
	"shale/internal/token"
)

// parseImportItem parses `import "path.shl" [as alias]`.
func (p *Parser) parseImportItem() (ast.ItemID, bool) {
	importTok := p.advance()

	pathTok := p.lx.Peek()
	if pathTok.Kind != token.StringLit && pathTok.Kind != token.RawStringLit {
		p.err(diag.SynBadImport, "expected a string path after 'import', got "+describe(pathTok))
		return ast.NoItemID, false
	}
	p.advance()
	path, ok := p.stringValue(pathTok)
	if !ok {
		return ast.NoItemID, false
	}
	if strings.TrimSpace(path) == "" {
		p.errAt(diag.SynBadImport, pathTok.Span, "import path is empty")
		return ast.NoItemID, false
	}

	item := ast.ImportItem{Path: path, PathSpan: pathTok.Span}
	span := importTok.Span.Cover(pathTok.Span)
	if p.eat(token.KwAs) {
		alias, aliasSpan, ok := p.parseIdent()
		if !ok {
			return ast.NoItemID, false
		}
		item.Alias, item.AliasSpan = alias, aliasSpan
		span = span.Cover(aliasSpan)
	}
	return p.arenas.Items.NewImport(span, item), true
}

// stringValue decodes a strict or raw literal token.
func (p *Parser) stringValue(tok token.Token) (string, bool) {
	switch tok.Kind {
	case token.RawStringLit:
		return tok.Text[2 : len(tok.Text)-1], true
	case token.StringLit:
		s, err := lexer.Unescape(tok.Text[1 : len(tok.Text)-1])
		if err != nil {
			// the lexer has reported the escape already
			p.opts.CurrentErrors++
			return "", false
		}
		return s, true
	}
	p.errAt(diag.SynUnexpectedToken, tok.Span, "expected a string literal, got "+describe(tok))
	return "", false
}
