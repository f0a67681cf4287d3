package lexer

import (
	"shale/internal/diag"
	"shale/internal/token"
)

// scanIdentOrKeyword scans an identifier and checks it against the keyword
// table. Token.Text is the exact source slice; NFC folding happens in the parser.
func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Mark()

	r, sz := lx.peekRune()
	if sz == 0 || !isIdentStartRune(r) {
		lx.bumpRune()
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexUnknownChar, sp, "unexpected character "+quoteText(lx.file.Content[sp.Start:sp.End]))
		return token.Token{Kind: token.Invalid, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
	}
	for {
		r, sz = lx.peekRune()
		if sz == 0 {
			break
		}
		if r < utf8RuneSelf {
			if !isIdentContinueByte(byte(r)) {
				break
			}
		} else if !isIdentContinueRune(r) {
			break
		}
		lx.bumpRune()
	}

	tok := lx.emitFrom(start, token.Ident)
	if k, ok := token.LookupKeyword(tok.Text); ok {
		tok.Kind = k
	}
	return tok
}
