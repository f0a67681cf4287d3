package format

import (
	"shale/internal/ast"
	"shale/internal/source"
)

// printImportItem keeps the path literal as written, raw or strict.
func (p *printer) printImportItem(imp *ast.ImportItem) {
	p.writer.WriteString("import ")
	p.writer.CopySpan(imp.PathSpan)
	if imp.Alias != source.NoStringID {
		p.writer.WriteString(" as ")
		p.writer.WriteString(p.builder.Name(imp.Alias))
	}
}
