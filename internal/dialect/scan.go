package dialect

import (
	"shale/internal/diag"
	"shale/internal/lexer"
	"shale/internal/source"
	"shale/internal/token"
)

// Collect lexes sf on its own, errors ignored, and gathers evidence.
func Collect(sf *source.File) *Evidence {
	e := NewEvidence()
	lx := lexer.New(sf, lexer.Options{})
	prev := token.Token{Kind: token.Newline}
	for {
		tok := lx.Next()
		if tok.Kind == token.EOF {
			return e
		}
		if tok.Kind == token.Ident {
			RecordIdent(e, tok.Text, tok.Span)
		}
		ObserveTokenPair(e, prev, tok)
		prev = tok
	}
}

// Explain returns a note for the strongest foreign signal in sf, if the
// file as a whole looks like another language.
func Explain(sf *source.File) (diag.Note, bool) {
	e := Collect(sf)
	c := (Classifier{}).Classify(e)
	if !Eligible(c) {
		return diag.Note{}, false
	}
	h, ok := e.Strongest(c.Kind)
	if !ok {
		return diag.Note{}, false
	}
	return diag.Note{Span: h.Span, Msg: "hint: " + Render(h)}, true
}
