package lexer

import (
	"strings"

	"shale/internal/diag"
	"shale/internal/source"
	"shale/internal/token"
)

// scanString scans a strict literal "...". Escapes are validated here and
// decoded by Unescape; a raw newline ends the literal with an error.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '"'
	for !lx.cursor.EOF() {
		switch lx.cursor.Peek() {
		case '"':
			lx.cursor.Bump()
			return lx.emitFrom(start, token.StringLit)
		case '\\':
			lx.scanEscape()
		case '\n':
			return lx.unterminated(start, "newline in string literal; use \\n or a raw string r\"...\"")
		default:
			lx.cursor.Bump()
		}
	}
	return lx.unterminated(start, "unterminated string literal")
}

// scanRawString scans r"..." verbatim. It may span lines.
func (lx *Lexer) scanRawString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // r
	lx.cursor.Bump() // "
	for !lx.cursor.EOF() {
		if lx.cursor.Bump() == '"' {
			return lx.emitFrom(start, token.RawStringLit)
		}
	}
	return lx.unterminated(start, "unterminated raw string literal")
}

// scanInterpString scans $"...{expr}...". Holes may contain nested strict
// strings and braces; "{{" and "}}" are literal braces.
func (lx *Lexer) scanInterpString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // $
	lx.cursor.Bump() // "
	for !lx.cursor.EOF() {
		switch b := lx.cursor.Peek(); {
		case b == '"':
			lx.cursor.Bump()
			return lx.emitFrom(start, token.InterpStringLit)
		case b == '\\':
			lx.scanEscape()
		case b == '\n':
			return lx.unterminated(start, "newline in interpolated string")
		case lx.try2('{', '{') || lx.try2('}', '}'):
		case b == '{':
			holeStart := lx.cursor.Mark()
			lx.cursor.Bump()
			if !lx.skipHole() {
				sp := lx.cursor.SpanFrom(holeStart)
				lx.errLex(diag.LexUnterminatedInterp, sp, "interpolation hole is not closed with '}'")
				return lx.invalidFrom(start)
			}
		default:
			lx.cursor.Bump()
		}
	}
	return lx.unterminated(start, "unterminated interpolated string")
}

// skipHole moves past an interpolation hole body and its closing '}'.
func (lx *Lexer) skipHole() bool {
	depth := 1
	for !lx.cursor.EOF() {
		switch lx.cursor.Peek() {
		case '\n':
			return false
		case '"':
			inner := lx.scanString()
			if inner.Kind == token.Invalid {
				return false
			}
		case '{':
			depth++
			lx.cursor.Bump()
		case '}':
			lx.cursor.Bump()
			depth--
			if depth == 0 {
				return true
			}
		default:
			lx.cursor.Bump()
		}
	}
	return false
}

// scanRawBlock scans unsafe {{ ... }}. The block ends at the first line whose
// first non-blank characters are "}}".
func (lx *Lexer) scanRawBlock() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	lx.cursor.Bump()
	for !lx.cursor.EOF() {
		if lx.cursor.Peek() == '}' && lx.cursor.AtLineStart() && lx.try2('}', '}') {
			return lx.emitFrom(start, token.RawBlock)
		}
		lx.cursor.Bump()
	}
	sp := source.Span{File: lx.file.ID, Start: uint32(start), End: uint32(start) + 2}
	lx.errLex(diag.LexUnterminatedRawBlock, sp, "raw block is not closed by a line starting with '}}'")
	return lx.invalidFrom(start)
}

func (lx *Lexer) scanEscape() {
	escStart := lx.cursor.Mark()
	rest := string(lx.file.Content[lx.cursor.Off:lx.cursor.Limit])
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	n, err := escapeLen(rest)
	lx.cursor.Off += uint32(n) // #nosec G115 -- n is bounded by the line
	if err != nil {
		lx.errLex(diag.LexInvalidEscape, lx.cursor.SpanFrom(escStart), err.Msg)
	}
}

func (lx *Lexer) unterminated(start Mark, msg string) token.Token {
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexUnterminatedString, sp, msg)
	return lx.invalidFrom(start)
}

func (lx *Lexer) invalidFrom(start Mark) token.Token {
	return lx.emitFrom(start, token.Invalid)
}

// RawBlockBody extracts the shell text of a RawBlock token: the lines between
// "{{" and the closing "}}" line, with their common indentation removed.
func RawBlockBody(text string) string {
	body := strings.TrimPrefix(text, "{{")
	body = strings.TrimSuffix(body, "}}")
	// drop the rest of the opening line when it is blank, and the closing indent
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && strings.TrimSpace(body[:nl]) == "" {
		body = body[nl+1:]
	}
	if nl := strings.LastIndexByte(body, '\n'); nl >= 0 && strings.TrimSpace(body[nl+1:]) == "" {
		body = body[:nl]
	}
	lines := strings.Split(body, "\n")
	indent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	if indent > 0 {
		for i, l := range lines {
			if len(l) >= indent {
				lines[i] = l[indent:]
			} else {
				lines[i] = strings.TrimLeft(l, " \t")
			}
		}
	}
	return strings.Join(lines, "\n")
}
