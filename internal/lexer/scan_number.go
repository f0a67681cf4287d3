package lexer

import (
	"strconv"
	"strings"

	"shale/internal/diag"
	"shale/internal/token"
)

// scanNumber scans a decimal integer with optional '_' separators.
// Anything glued to it ("12ab", "1.5") and values past int64 are errors.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	for b := lx.cursor.Peek(); isDec(b) || b == '_'; b = lx.cursor.Peek() {
		lx.cursor.Bump()
	}

	bad := false
	if b := lx.cursor.Peek(); isIdentStartByte(b) || b >= utf8RuneSelf {
		for b := lx.cursor.Peek(); isIdentContinueByte(b); b = lx.cursor.Peek() {
			lx.cursor.Bump()
		}
		bad = true
	} else if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '.' && isDec(b1) {
		lx.cursor.Bump()
		for isDec(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		bad = true
	}

	tok := lx.emitFrom(start, token.IntLit)
	if bad {
		lx.errLex(diag.LexBadNumber, tok.Span, "invalid number literal "+strconv.Quote(tok.Text)+"; only decimal integers are supported")
		tok.Kind = token.Invalid
		return tok
	}
	if _, err := ParseInt(tok.Text); err != nil {
		lx.errLex(diag.LexBadNumber, tok.Span, "integer literal "+tok.Text+" does not fit in 64 bits")
		tok.Kind = token.Invalid
	}
	return tok
}

// ParseInt converts integer literal text, separators included.
func ParseInt(text string) (int64, error) {
	if strings.HasSuffix(text, "_") {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(strings.ReplaceAll(text, "_", ""), 10, 64)
}
