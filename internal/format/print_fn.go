package format

import "shale/internal/ast"

func (p *printer) printFnItem(fn *ast.FnItem) {
	p.writer.WriteString("fn ")
	p.writer.WriteString(p.builder.Name(fn.Name))
	p.writer.WriteString("(")
	for i, param := range fn.Params {
		if i > 0 {
			p.writer.WriteString(", ")
		}
		p.writer.WriteString(p.builder.Name(param.Name))
	}
	p.writer.WriteString(")")
	p.writer.Space()
	if body := p.builder.Stmts.Get(fn.Body); body != nil {
		p.writer.CopySpan(body.Span)
		return
	}
	p.writer.WriteString("{}")
}
