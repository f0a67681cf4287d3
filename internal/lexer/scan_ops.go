package lexer

import (
	"shale/internal/diag"
	"shale/internal/token"
)

// scanOperatorOrPunct is greedy: two-byte operators are tried before single bytes.
func (lx *Lexer) scanOperatorOrPunct() token.Token {
	start := lx.cursor.Mark()
	emit := func(k token.Kind) token.Token { return lx.emitFrom(start, k) }

	switch {
	case lx.try2('.', '.'):
		return emit(token.DotDot)
	case lx.try2('-', '>'):
		return emit(token.Arrow)
	case lx.try2('&', '&'):
		return emit(token.AndAnd)
	case lx.try2('|', '|'):
		return emit(token.OrOr)
	case lx.try2('=', '='):
		return emit(token.EqEq)
	case lx.try2('!', '='):
		return emit(token.BangEq)
	case lx.try2('<', '='):
		return emit(token.LtEq)
	case lx.try2('>', '='):
		return emit(token.GtEq)
	}

	switch lx.cursor.Bump() {
	case '+':
		return emit(token.Plus)
	case '-':
		return emit(token.Minus)
	case '*':
		return emit(token.Star)
	case '/':
		return emit(token.Slash)
	case '%':
		return emit(token.Percent)
	case '=':
		return emit(token.Assign)
	case '!':
		return emit(token.Bang)
	case '<':
		return emit(token.Lt)
	case '>':
		return emit(token.Gt)
	case '|':
		return emit(token.Pipe)
	case ';':
		return emit(token.Semicolon)
	case ',':
		return emit(token.Comma)
	case '.':
		return emit(token.Dot)
	case ':':
		return emit(token.Colon)
	case '(':
		return emit(token.LParen)
	case ')':
		return emit(token.RParen)
	case '{':
		return emit(token.LBrace)
	case '}':
		return emit(token.RBrace)
	case '[':
		return emit(token.LBracket)
	case ']':
		return emit(token.RBracket)
	}

	// unknown byte: widen to the full rune so the message is readable
	lx.cursor.Reset(start)
	lx.bumpRune()
	tok := emit(token.Invalid)
	msg := "unexpected character " + quoteText([]byte(tok.Text))
	switch tok.Text {
	case "$":
		msg += "; interpolation is written $\"...{expr}...\""
	case "&":
		msg += "; use '&&' for logical and, background { } for jobs"
	case "`", "'":
		msg += "; strings use double quotes"
	}
	lx.errLex(diag.LexUnknownChar, tok.Span, msg)
	return tok
}
