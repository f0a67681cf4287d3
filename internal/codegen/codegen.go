// Package codegen turns an IR module into shell text. One emitter walks the
// IR; a dialect (bash or POSIX sh) selects the encodings that differ between
// the two targets.
//
// The IR reaching this package has passed every check sema performs. A
// violated IR invariant is a compiler bug: it panics with a Defect, which the
// driver turns into ErrInternalDefect.
package codegen

import (
	"fmt"
	"strings"

	"shale/internal/ir"
	"shale/internal/source"
	"shale/internal/target"
)

// Options tune one emission.
type Options struct {
	// Diagnostics makes every abort report its source location on stderr.
	Diagnostics bool
	// Version is written into the header comment.
	Version string
	// Position renders "file:line:col" for a span; nil prints "?".
	Position func(source.Span) string
}

// Defect is an IR invariant breach found while emitting.
type Defect struct {
	Msg string
}

func (d Defect) Error() string { return "codegen defect: " + d.Msg }

func defect(format string, args ...any) {
	panic(Defect{Msg: fmt.Sprintf(format, args...)})
}

// Emit renders m for its target. It panics with a Defect on malformed IR.
func Emit(m *ir.Module, opts Options) []byte {
	if m == nil || m.Entry == nil {
		defect("module without an entry function")
	}
	d := dialectFor(m.Target)
	e := &Emitter{mod: m, root: newUnit(d, opts)}
	return []byte(e.emit())
}

// Emitter generates one script.
type Emitter struct {
	mod  *ir.Module
	root *unit
}

func (e *Emitter) emit() string {
	var funcs writer
	for _, f := range e.mod.Funcs {
		emitFunc(e.root, f, &funcs)
	}

	var out strings.Builder
	out.WriteString(e.root.d.shebang + "\n")
	version := e.root.opts.Version
	if version == "" {
		version = "dev"
	}
	fmt.Fprintf(&out, "# generated by shale %s from %s; do not edit\n", version, e.mod.Path)
	out.WriteString("__status=0\n")
	out.WriteString(e.root.preamble())
	for _, g := range e.mod.Globals {
		out.WriteString(globalLine(e.root.d, g) + "\n")
	}
	if len(e.mod.Globals) > 0 {
		out.WriteString("\n")
	}
	out.WriteString(funcs.String())
	out.WriteString(e.mod.Entry.ShellName + ` "$@"` + "\n")
	return out.String()
}

// globalLine assigns a constant. Globals are literals, so their words never
// need preparation.
func globalLine(d *dialect, g *ir.Global) string {
	name := g.Binding.ShellName
	switch g.Value.Type {
	case ir.TypeList:
		d.require(d.arrays, "list constant")
		return name + "=(" + strings.Join(literalWords(g.Value), " ") + ")"
	case ir.TypeMap:
		d.require(d.arrays, "map constant")
		return "declare -A " + name + "=(" + literalEntries(g.Value) + ")"
	}
	text, ok := g.Value.LiteralText()
	if !ok {
		defect("global %s is not a literal", g.Binding.Name)
	}
	return name + "=" + quote(text)
}

func literalWords(e *ir.Expr) []string {
	data, ok := e.Data.(ir.ListData)
	if !ok {
		defect("list literal expected, got %s", e.Kind)
	}
	words := make([]string, len(data.Elems))
	for i, el := range data.Elems {
		text, isLit := el.LiteralText()
		if !isLit {
			defect("constant list element is not a literal")
		}
		words[i] = quote(text)
	}
	return words
}

func literalEntries(e *ir.Expr) string {
	data, ok := e.Data.(ir.MapData)
	if !ok {
		defect("map literal expected, got %s", e.Kind)
	}
	parts := make([]string, len(data.Entries))
	for i, en := range data.Entries {
		k, kok := en.Key.LiteralText()
		v, vok := en.Value.LiteralText()
		if !kok || !vok {
			defect("constant map entry is not a literal")
		}
		parts[i] = "[" + quote(k) + "]=" + quote(v)
	}
	return strings.Join(parts, " ")
}

// Shebang returns the first line of scripts for t.
func Shebang(t target.Target) string {
	return dialectFor(t).shebang
}
