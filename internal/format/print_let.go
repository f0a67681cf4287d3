package format

import "shale/internal/ast"

func (p *printer) printLetItem(let *ast.LetItem) {
	p.writer.WriteString("let ")
	p.writer.WriteString(p.builder.Name(let.Name))
	p.writer.WriteString(" = ")
	if value := p.builder.Exprs.Get(let.Value); value != nil {
		p.writer.CopySpan(value.Span)
	}
}
