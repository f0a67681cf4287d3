package format

import (
	"bytes"
	"strings"

	"shale/internal/lexer"
	"shale/internal/source"
	"shale/internal/token"
)

// Writer accumulates formatted output and copies source fragments into it.
type Writer struct {
	sf  *source.File
	buf []byte
	// verbatim holds tokens whose line ends must survive untouched.
	verbatim []byteRange
}

// NewWriter creates a writer for sf. It lexes the file once to find the
// multi-line raw strings and unsafe blocks.
func NewWriter(sf *source.File) *Writer {
	return &Writer{
		sf:       sf,
		buf:      make([]byte, 0, len(sf.Content)),
		verbatim: verbatimRanges(sf),
	}
}

func verbatimRanges(sf *source.File) []byteRange {
	var out []byteRange
	lx := lexer.New(sf, lexer.Options{})
	for {
		tok := lx.Next()
		if tok.Kind == token.EOF {
			return out
		}
		switch tok.Kind {
		case token.RawStringLit, token.RawBlock:
			if strings.Contains(tok.Text, "\n") {
				out = append(out, rangeOf(tok.Span))
			}
		}
	}
}

func (w *Writer) isVerbatim(off int) bool {
	for _, r := range w.verbatim {
		if r.contains(off) {
			return true
		}
	}
	return false
}

// Bytes returns the accumulated output.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// WriteString appends s as is.
func (w *Writer) WriteString(s string) {
	w.buf = append(w.buf, s...)
}

// Space writes a single space unless the output already ends with one.
func (w *Writer) Space() {
	if len(w.buf) == 0 {
		return
	}
	if last := w.buf[len(w.buf)-1]; isBlank(last) || last == '\n' {
		return
	}
	w.buf = append(w.buf, ' ')
}

// Newline ends the current line, dropping its trailing blanks.
func (w *Writer) Newline() {
	w.trimLineEnd()
	w.buf = append(w.buf, '\n')
}

func (w *Writer) trimLineEnd() {
	w.buf = bytes.TrimRight(w.buf, " \t")
}

// CopySpan copies a span of the source file into the output.
func (w *Writer) CopySpan(sp source.Span) {
	if w.sf == nil || sp.File != w.sf.ID || sp.End < sp.Start {
		return
	}
	w.CopyRange(int(sp.Start), int(sp.End))
}

// CopyRange copies source bytes [start, end), trimming trailing blanks of
// every line that ends outside a verbatim token.
func (w *Writer) CopyRange(start, end int) {
	if w.sf == nil {
		return
	}
	start = clampToContent(start, len(w.sf.Content))
	end = clampToContent(end, len(w.sf.Content))
	for off := start; off < end; off++ {
		b := w.sf.Content[off]
		if b == '\n' && !w.isVerbatim(off) {
			w.Newline()
			continue
		}
		w.buf = append(w.buf, b)
	}
}
