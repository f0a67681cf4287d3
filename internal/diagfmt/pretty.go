package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"shale/internal/diag"
	"shale/internal/source"
)

type palette struct {
	err, warn, info, note, path, gutter, caret, fix *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgBlue, color.Bold),
		path:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
		fix:    color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.path, p.gutter, p.caret, p.fix} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty форматирует диагностики в человекочитаемый вид, в порядке bag.Items()
// (вызывающий делает bag.Sort()):
//
//	<path>:<line>:<col>: <SEV> <CODE>: <Message>
//	   3 | print(x)
//	     |       ^
//
// followed by notes and, with ShowFixes, fix previews.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil || fs == nil {
		return
	}
	p := newPalette(opts.Color)
	var sb strings.Builder
	for _, d := range bag.Items() {
		writeHeader(&sb, p, fs, d, opts)
		writeSnippet(&sb, p, fs, d.Primary, opts.Context)
		if opts.ShowNotes {
			for _, n := range d.Notes {
				fmt.Fprintf(&sb, "  %s %s: %s\n", p.note.Sprint("note:"), p.path.Sprint(location(fs, n.Span, opts.PathMode, opts.BaseDir)), n.Msg)
				writeSnippet(&sb, p, fs, n.Span, 0)
			}
		}
		if opts.ShowFixes {
			for _, f := range d.Fixes {
				fmt.Fprintf(&sb, "  %s %s\n", p.fix.Sprint("fix:"), f.Title)
				for _, e := range f.Edits {
					preview, err := buildFixEditPreview(fs, e)
					if err != nil {
						continue
					}
					for _, l := range preview.before {
						sb.WriteString("    " + p.err.Sprint("- "+l) + "\n")
					}
					for _, l := range preview.after {
						sb.WriteString("    " + p.fix.Sprint("+ "+l) + "\n")
					}
				}
			}
		}
	}
	_, _ = io.WriteString(w, sb.String())
}

func writeHeader(sb *strings.Builder, p palette, fs *source.FileSet, d diag.Diagnostic, opts PrettyOpts) {
	fmt.Fprintf(sb, "%s: %s %s: %s\n",
		p.path.Sprint(location(fs, d.Primary, opts.PathMode, opts.BaseDir)),
		p.severity(d.Severity).Sprint(d.Severity.String()),
		p.severity(d.Severity).Sprint(d.Code.ID()),
		d.Message)
}

// location renders "path:line:col".
func location(fs *source.FileSet, sp source.Span, mode PathMode, baseDir string) string {
	if int(sp.File) >= fs.Len() {
		return "<unknown>"
	}
	start, _ := fs.Resolve(sp)
	return fmt.Sprintf("%s:%d:%d", formatPath(fs.Get(sp.File), mode, baseDir), start.Line, start.Col)
}

func formatPath(f *source.File, mode PathMode, baseDir string) string {
	if mode == PathModeAuto {
		return f.Path
	}
	return f.FormatPath(mode.String(), baseDir)
}

// writeSnippet prints the primary line with `context` lines above it and
// a ^~~~ underline. Multi-line spans are underlined to the end of the
// first line.
func writeSnippet(sb *strings.Builder, p palette, fs *source.FileSet, sp source.Span, context int) {
	if int(sp.File) >= fs.Len() {
		return
	}
	f := fs.Get(sp.File)
	if len(f.Content) == 0 {
		return
	}
	start, end := fs.Resolve(sp)
	first := int(start.Line) - context
	if first < 1 {
		first = 1
	}
	width := len(strconv.Itoa(int(start.Line)))
	for ln := first; ln <= int(start.Line); ln++ {
		text := f.GetLine(uint32(ln)) // #nosec G115 -- line numbers come from Resolve
		fmt.Fprintf(sb, "%s %s\n", p.gutter.Sprintf("%*d |", width, ln), text)
	}

	line := f.GetLine(start.Line)
	col := min(int(start.Col)-1, len(line))
	stop := len(line)
	if end.Line == start.Line {
		stop = min(int(end.Col)-1, len(line))
	}
	pad := caretPadding(line[:col])
	span := max(runewidth.StringWidth(line[col:max(stop, col)]), 1)
	underline := "^" + strings.Repeat("~", span-1)
	fmt.Fprintf(sb, "%s %s%s\n", p.gutter.Sprintf("%*s |", width, ""), pad, p.caret.Sprint(underline))
}

// caretPadding keeps tabs so the caret lines up under tab-indented code.
func caretPadding(prefix string) string {
	var sb strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			sb.WriteByte('\t')
			continue
		}
		sb.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return sb.String()
}
