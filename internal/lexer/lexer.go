package lexer

import (
	"shale/internal/source"
	"shale/internal/token"
)

type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	look   *token.Token   // one-token lookahead
	hold   []token.Trivia // leading trivia of the next token
	errors int

	// set right after the 'unsafe' keyword so "{{" opens a raw block
	afterUnsafe bool
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
	}
}

// NewRange lexes only file bytes [start, limit). Interpolation holes are
// parsed this way so their tokens carry real file spans.
func NewRange(file *source.File, start, limit uint32, opts Options) *Lexer {
	lx := New(file, opts)
	if limit < lx.cursor.Limit {
		lx.cursor.Limit = limit
	}
	lx.cursor.Off = start
	return lx
}

// Errors reports how many lexical errors were emitted so far.
func (lx *Lexer) Errors() int {
	return lx.errors
}

// Next returns the next significant token with its Leading trivia.
// After EOF it keeps returning EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	lx.collectLeadingTrivia()

	if lx.cursor.EOF() {
		return token.Token{Kind: token.EOF, Span: lx.EmptySpan()}
	}

	ch := lx.cursor.Peek()
	var tok token.Token

	switch {
	case lx.afterUnsafe && ch == '{' && lx.isDoubleBrace():
		tok = lx.scanRawBlock()
	case ch == '\n':
		tok = lx.scanNewlines()
	case ch == 'r' && lx.nextIs('"'):
		tok = lx.scanRawString()
	case ch == '$' && lx.nextIs('"'):
		tok = lx.scanInterpString()
	case ch == '_':
		b0, b1, ok := lx.cursor.Peek2()
		if ok && b0 == '_' && isIdentContinueByte(b1) {
			tok = lx.scanIdentOrKeyword()
		} else {
			start := lx.cursor.Mark()
			lx.cursor.Bump()
			tok = lx.emitFrom(start, token.Underscore)
		}
	case isIdentStartByte(ch) || ch >= utf8RuneSelf:
		tok = lx.scanIdentOrKeyword()
	case isDec(ch):
		tok = lx.scanNumber()
	case ch == '"':
		tok = lx.scanString()
	default:
		tok = lx.scanOperatorOrPunct()
	}

	lx.afterUnsafe = tok.Kind == token.KwUnsafe
	tok.Leading = lx.hold
	lx.hold = nil
	return tok
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

// EmptySpan is a zero-length span at the current offset.
func (lx *Lexer) EmptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}

func (lx *Lexer) emitFrom(m Mark, k token.Kind) token.Token {
	sp := lx.cursor.SpanFrom(m)
	return token.Token{Kind: k, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}

func (lx *Lexer) nextIs(b byte) bool {
	_, b1, ok := lx.cursor.Peek2()
	return ok && b1 == b
}

func (lx *Lexer) isDoubleBrace() bool {
	b0, b1, ok := lx.cursor.Peek2()
	return ok && b0 == '{' && b1 == '{'
}

// scanNewlines folds a run of newlines, with blank or comment-only lines
// between them, into one token. Trivia after the last newline stays for the
// next token.
func (lx *Lexer) scanNewlines() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	end := lx.cursor.Mark()
	for {
		lx.skipBlanksAndComment()
		if lx.cursor.Peek() != '\n' {
			break
		}
		lx.cursor.Bump()
		end = lx.cursor.Mark()
	}
	lx.cursor.Reset(end)
	return lx.emitFrom(start, token.Newline)
}
