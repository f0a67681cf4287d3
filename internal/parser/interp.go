package parser

import (
	"strings"

	"fortio.org/safecast"

	"shale/internal/ast"
	"shale/internal/diag"
	"shale/internal/lexer"
	"shale/internal/source"
	"shale/internal/token"
)

// parseInterpString splits $"...{expr}..." into literal text and hole
// expressions. Each hole is parsed by a sub-parser over the hole's own byte
// range, so hole spans are real file spans.
func (p *Parser) parseInterpString() (ast.ExprID, bool) {
	tok := p.advance()
	raw := tok.Text
	if len(raw) < 3 || raw[0] != '$' || raw[1] != '"' || raw[len(raw)-1] != '"' {
		p.errAt(diag.SynBadInterpolation, tok.Span, "invalid interpolated string literal")
		return ast.NoExprID, false
	}
	content := raw[2 : len(raw)-1]
	contentStart := tok.Span.Start + 2

	offset := func(pos int) (uint32, bool) {
		off, err := safecast.Conv[uint32](pos)
		if err != nil {
			p.errAt(diag.SynBadInterpolation, tok.Span, "interpolated string literal too large")
			return 0, false
		}
		return contentStart + off, true
	}
	spanOf := func(from, to int) (source.Span, bool) {
		start, ok1 := offset(from)
		end, ok2 := offset(to)
		return source.Span{File: tok.Span.File, Start: start, End: end}, ok1 && ok2
	}

	var parts []ast.InterpPart
	var seg strings.Builder
	segStart := 0
	flush := func(end int) bool {
		if seg.Len() == 0 {
			segStart = end
			return true
		}
		text, err := lexer.Unescape(seg.String())
		sp, ok := spanOf(segStart, end)
		if !ok {
			return false
		}
		if err != nil {
			p.opts.CurrentErrors++
			return false
		}
		parts = append(parts, ast.InterpPart{Span: sp, Text: text})
		seg.Reset()
		segStart = end
		return true
	}

	for i := 0; i < len(content); {
		ch := content[i]
		switch {
		case ch == '\\':
			n := 2
			if i+1 < len(content) && content[i+1] == 'u' {
				if end := strings.IndexByte(content[i:], '}'); end > 0 {
					n = end + 1
				}
			}
			n = min(n, len(content)-i)
			seg.WriteString(content[i : i+n])
			i += n
		case strings.HasPrefix(content[i:], "{{"):
			seg.WriteByte('{')
			i += 2
		case strings.HasPrefix(content[i:], "}}"):
			seg.WriteByte('}')
			i += 2
		case ch == '{':
			if !flush(i) {
				return ast.NoExprID, false
			}
			end := holeEnd(content, i+1)
			if end < 0 {
				sp, _ := spanOf(i, len(content))
				p.errAt(diag.SynBadInterpolation, sp, "interpolation hole is not closed with '}'")
				return ast.NoExprID, false
			}
			holeSpan, ok := spanOf(i+1, end)
			if !ok {
				return ast.NoExprID, false
			}
			if strings.TrimSpace(content[i+1:end]) == "" {
				p.errAt(diag.SynBadInterpolation, holeSpan, "empty interpolation hole")
				return ast.NoExprID, false
			}
			expr, ok := p.parseHole(holeSpan)
			if !ok {
				return ast.NoExprID, false
			}
			parts = append(parts, ast.InterpPart{Span: holeSpan, Expr: expr})
			i = end + 1
			segStart = i
		case ch == '}':
			sp, _ := spanOf(i, i+1)
			p.errAt(diag.SynBadInterpolation, sp, "unmatched '}' in interpolated string (write '}}' for a literal brace)")
			return ast.NoExprID, false
		default:
			seg.WriteByte(ch)
			i++
		}
	}
	if !flush(len(content)) {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewInterp(tok.Span, parts), true
}

// holeEnd returns the index of the '}' closing a hole that starts at from,
// or -1. Strict strings inside the hole may contain braces.
func holeEnd(content string, from int) int {
	depth := 1
	for i := from; i < len(content); i++ {
		switch content[i] {
		case '"':
			for i++; i < len(content) && content[i] != '"'; i++ {
				if content[i] == '\\' {
					i++
				}
			}
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func (p *Parser) parseHole(sp source.Span) (ast.ExprID, bool) {
	file := p.fs.Get(sp.File)
	if file == nil {
		p.errAt(diag.SynBadInterpolation, sp, "interpolation source is not available")
		return ast.NoExprID, false
	}
	lx := lexer.NewRange(file, sp.Start, sp.End, lexer.Options{Reporter: p.opts.Reporter})
	sub := newParser(p.fs, lx, p.arenas, p.opts)
	expr, ok := sub.parseExpr()
	if ok && !sub.at(token.EOF) {
		sub.err(diag.SynBadInterpolation, "unexpected "+describe(sub.lx.Peek())+" in interpolation hole")
		ok = false
	}
	if lx.Errors() > 0 {
		ok = false
	}
	p.opts.CurrentErrors = sub.opts.CurrentErrors
	if !ok {
		if p.opts.CurrentErrors == 0 {
			p.opts.CurrentErrors++
		}
		return ast.NoExprID, false
	}
	return expr, true
}
