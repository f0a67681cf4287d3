package lexer

import (
	"shale/internal/token"
)

// collectLeadingTrivia gathers spaces, tabs and '#' comments before a token.
// Newlines are tokens and stop the scan.
func (lx *Lexer) collectLeadingTrivia() {
	lx.hold = lx.hold[:0]
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		switch lx.cursor.Peek() {
		case ' ', '\t', '\r':
			for b := lx.cursor.Peek(); b == ' ' || b == '\t' || b == '\r'; b = lx.cursor.Peek() {
				lx.cursor.Bump()
			}
			lx.hold = append(lx.hold, lx.triviaFrom(start, token.TriviaSpace))
		case '#':
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
			lx.hold = append(lx.hold, lx.triviaFrom(start, token.TriviaComment))
		default:
			return
		}
	}
}

// skipBlanksAndComment moves past blanks and at most one comment on the current line.
func (lx *Lexer) skipBlanksAndComment() {
	for b := lx.cursor.Peek(); b == ' ' || b == '\t' || b == '\r'; b = lx.cursor.Peek() {
		lx.cursor.Bump()
	}
	if lx.cursor.Peek() == '#' {
		for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
			lx.cursor.Bump()
		}
	}
}

func (lx *Lexer) triviaFrom(m Mark, k token.TriviaKind) token.Trivia {
	sp := lx.cursor.SpanFrom(m)
	return token.Trivia{Kind: k, Span: sp, Text: string(lx.file.Content[sp.Start:sp.End])}
}
