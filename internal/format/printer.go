package format

import (
	"errors"
	"reflect"
	"strings"

	"shale/internal/ast"
	"shale/internal/diag"
	"shale/internal/diagfmt"
	"shale/internal/lexer"
	"shale/internal/parser"
	"shale/internal/source"
)

type Options struct {
	// MaxBlankLines caps runs of empty lines between items; 0 means 1.
	MaxBlankLines int
}

func (o Options) withDefaults() Options {
	if o.MaxBlankLines <= 0 {
		o.MaxBlankLines = 1
	}
	return o
}

type printer struct {
	builder *ast.Builder
	file    *ast.File
	writer  *Writer
	opt     Options
}

// FormatFile renders a parsed file in canonical layout. The tree must come
// from an error-free parse of sf.
func FormatFile(sf *source.File, b *ast.Builder, fid ast.FileID, opt Options) ([]byte, error) {
	if sf == nil {
		return nil, errors.New("format: nil source file")
	}
	if b == nil {
		return nil, errors.New("format: nil builder")
	}
	file := b.Files.Get(fid)
	if file == nil {
		return nil, errors.New("format: missing ast file")
	}

	pr := printer{
		builder: b,
		file:    file,
		writer:  NewWriter(sf),
		opt:     opt.withDefaults(),
	}
	pr.printFile()
	return pr.writer.Bytes(), nil
}

func (p *printer) printFile() {
	content := p.writer.sf.Content
	prev := 0
	for i, itemID := range p.file.Items {
		item := p.builder.Items.Get(itemID)
		if item == nil {
			continue
		}
		start := clampToContent(int(item.Span.Start), len(content))
		p.writer.WriteString(p.gap(string(content[prev:max(start, prev)]), i == 0, false))
		p.printItem(itemID, item)
		prev = max(clampToContent(int(item.Span.End), len(content)), start)
	}
	p.writer.WriteString(p.gap(string(content[prev:]), len(p.file.Items) == 0, true))
}

func (p *printer) printItem(id ast.ItemID, item *ast.Item) {
	switch item.Kind {
	case ast.ItemFn:
		if fn, ok := p.builder.Items.Fn(id); ok {
			p.printFnItem(fn)
			return
		}
	case ast.ItemLet:
		if let, ok := p.builder.Items.Let(id); ok {
			p.printLetItem(let)
			return
		}
	case ast.ItemImport:
		if imp, ok := p.builder.Items.Import(id); ok {
			p.printImportItem(imp)
			return
		}
	}
	p.writer.CopySpan(item.Span)
}

// gap normalizes the trivia between two items: separators become line
// breaks, comments start at column 0 (or one space after an item on the
// same line) and blank runs are capped. first and last mark the text
// before the first item and after the last one.
func (p *printer) gap(text string, first, last bool) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(strings.TrimLeft(l, " \t;"), " \t")
	}
	var sb strings.Builder
	if !first {
		// rest of the previous item's line
		if lines[0] != "" {
			sb.WriteString(" ")
			sb.WriteString(lines[0])
		}
		sb.WriteByte('\n')
		lines = lines[1:]
	}
	if !last && len(lines) > 0 {
		// indentation before the next item
		lines = lines[:len(lines)-1]
	}
	for _, l := range p.collapseBlank(lines, first, last) {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (p *printer) collapseBlank(lines []string, first, last bool) []string {
	out := make([]string, 0, len(lines))
	run := 0
	for _, l := range lines {
		if l != "" {
			run = 0
			out = append(out, l)
			continue
		}
		if first && len(out) == 0 {
			continue
		}
		run++
		if run <= p.opt.MaxBlankLines {
			out = append(out, l)
		}
	}
	if last {
		for len(out) > 0 && out[len(out)-1] == "" {
			out = out[:len(out)-1]
		}
	}
	return out
}

// CheckRoundTrip formats the file and re-parses the result, ensuring the
// tree is unchanged apart from positions.
func CheckRoundTrip(sf *source.File, opt Options, maxDiag int) (ok bool, msg string) {
	origBag := diag.NewBag(maxDiag)
	origBuilder, origFileID := parseOnce(sf, origBag)
	if origBuilder.Files.Get(origFileID) == nil {
		return false, "fmt-check: initial parse failed"
	}
	if origBag.HasErrors() {
		return false, "fmt-check: initial parse has errors"
	}

	formatted, err := FormatFile(sf, origBuilder, origFileID, opt)
	if err != nil {
		return false, "fmt-check: formatter failed: " + err.Error()
	}

	fs2 := source.NewFileSet()
	rebuilt := fs2.Get(fs2.AddVirtual(sf.Path, formatted))
	newBag := diag.NewBag(maxDiag)
	newBuilder, newFileID := parseOnce(rebuilt, newBag)
	if newBuilder.Files.Get(newFileID) == nil || newBag.HasErrors() {
		return false, "fmt-check: reparse failed"
	}

	if !sameTree(origBuilder, origFileID, newBuilder, newFileID) {
		return false, "fmt-check: syntax tree differs after round-trip"
	}
	return true, "fmt-check: OK"
}

func parseOnce(sf *source.File, bag *diag.Bag) (*ast.Builder, ast.FileID) {
	reporter := diag.BagReporter{Bag: bag}
	lx := lexer.New(sf, lexer.Options{Reporter: reporter})
	builder := ast.NewBuilder(ast.Hints{})
	res := parser.ParseFile(source.NewFileSet(), lx, builder, parser.Options{Reporter: reporter})
	return builder, res.File
}

func sameTree(b1 *ast.Builder, f1 ast.FileID, b2 *ast.Builder, f2 ast.FileID) bool {
	t1, err1 := diagfmt.BuildAST(b1, f1)
	t2, err2 := diagfmt.BuildAST(b2, f2)
	if err1 != nil || err2 != nil {
		return false
	}
	stripSpans(&t1)
	stripSpans(&t2)
	return reflect.DeepEqual(t1, t2)
}

func stripSpans(n *diagfmt.ASTNodeOutput) {
	n.Span = source.Span{}
	for i := range n.Children {
		stripSpans(&n.Children[i])
	}
}
