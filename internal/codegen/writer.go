package codegen

import "strings"

// writer accumulates tab-indented shell lines.
type writer struct {
	buf    strings.Builder
	indent int
}

func (w *writer) pad() string { return strings.Repeat("\t", w.indent) }

func (w *writer) line(s string) {
	w.buf.WriteString(w.pad())
	w.buf.WriteString(s)
	w.buf.WriteByte('\n')
}

// raw writes s at column 0. Heredoc bodies and their terminators go
// through here.
func (w *writer) raw(s string) {
	w.buf.WriteString(s)
	w.buf.WriteByte('\n')
}

func (w *writer) blank() { w.buf.WriteByte('\n') }

func (w *writer) push() { w.indent++ }
func (w *writer) pop()  { w.indent-- }

func (w *writer) String() string { return w.buf.String() }

func (w *writer) empty() bool { return w.buf.Len() == 0 }
