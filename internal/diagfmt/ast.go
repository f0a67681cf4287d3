package diagfmt

import (
	"fmt"
	"strconv"

	"shale/internal/ast"
	"shale/internal/source"
)

// ASTNodeOutput is one node of an AST dump. Role names the slot the node
// fills in its parent ("cond", "then", "arg"); Text carries names, literals
// and operators.
type ASTNodeOutput struct {
	Type     string          `json:"type"`
	Role     string          `json:"role,omitempty"`
	Text     string          `json:"text,omitempty"`
	Span     source.Span     `json:"span"`
	Children []ASTNodeOutput `json:"children,omitempty"`
}

// BuildAST converts a parsed file into a plain tree suitable for encoding.
func BuildAST(b *ast.Builder, fileID ast.FileID) (ASTNodeOutput, error) {
	file := b.Files.Get(fileID)
	if file == nil {
		return ASTNodeOutput{}, fmt.Errorf("file %d not found", fileID)
	}
	w := astWalker{b: b}
	root := ASTNodeOutput{Type: "File", Span: file.Span}
	for _, id := range file.Items {
		root.Children = append(root.Children, w.item(id))
	}
	return root, nil
}

type astWalker struct {
	b *ast.Builder
}

func (w astWalker) name(id source.StringID) string {
	if id == source.NoStringID {
		return ""
	}
	return w.b.Name(id)
}

func withRole(n ASTNodeOutput, role string) ASTNodeOutput {
	n.Role = role
	return n
}

func (w astWalker) item(id ast.ItemID) ASTNodeOutput {
	it := w.b.Items.Get(id)
	if it == nil {
		return ASTNodeOutput{Type: "Item?"}
	}
	n := ASTNodeOutput{Type: it.Kind.String(), Span: it.Span}
	switch it.Kind {
	case ast.ItemImport:
		if imp, ok := w.b.Items.Import(id); ok {
			n.Text = strconv.Quote(imp.Path)
			if alias := w.name(imp.Alias); alias != "" {
				n.Text += " as " + alias
			}
		}
	case ast.ItemLet:
		if let, ok := w.b.Items.Let(id); ok {
			n.Text = w.name(let.Name)
			n.Children = append(n.Children, withRole(w.expr(let.Value), "value"))
		}
	case ast.ItemFn:
		if fn, ok := w.b.Items.Fn(id); ok {
			n.Text = w.name(fn.Name)
			for _, p := range fn.Params {
				n.Children = append(n.Children, ASTNodeOutput{Type: "Param", Text: w.name(p.Name), Span: p.Span})
			}
			n.Children = append(n.Children, withRole(w.stmt(fn.Body), "body"))
		}
	}
	return n
}

func (w astWalker) stmt(id ast.StmtID) ASTNodeOutput {
	st := w.b.Stmts.Get(id)
	if st == nil {
		return ASTNodeOutput{Type: "Stmt?"}
	}
	n := ASTNodeOutput{Type: st.Kind.String(), Span: st.Span}
	add := func(role string, c ASTNodeOutput) { n.Children = append(n.Children, withRole(c, role)) }
	s := w.b.Stmts
	switch st.Kind {
	case ast.StmtBlock:
		if blk, ok := s.Block(id); ok {
			for _, c := range blk.Stmts {
				n.Children = append(n.Children, w.stmt(c))
			}
		}
	case ast.StmtLet:
		if let, ok := s.Let(id); ok {
			n.Text = w.name(let.Name)
			add("value", w.expr(let.Value))
		}
	case ast.StmtSet:
		if set, ok := s.Set(id); ok {
			n.Text = w.name(set.Name)
			if set.Env {
				n.Text = "env." + n.Text
			}
			add("value", w.expr(set.Value))
		}
	case ast.StmtExpr:
		if es, ok := s.Expr(id); ok {
			n.Children = append(n.Children, w.expr(es.Expr))
		}
	case ast.StmtIf:
		if ifs, ok := s.If(id); ok {
			add("cond", w.expr(ifs.Cond))
			add("then", w.stmt(ifs.Then))
			for _, el := range ifs.Elifs {
				elif := ASTNodeOutput{Type: "Elif", Span: el.Span}
				elif.Children = []ASTNodeOutput{withRole(w.expr(el.Cond), "cond"), withRole(w.stmt(el.Body), "then")}
				n.Children = append(n.Children, elif)
			}
			if ifs.Else.IsValid() {
				add("else", w.stmt(ifs.Else))
			}
		}
	case ast.StmtCase:
		if cs, ok := s.Case(id); ok {
			add("subject", w.expr(cs.Subject))
			for _, arm := range cs.Arms {
				a := ASTNodeOutput{Type: "Arm", Span: arm.Span}
				for _, p := range arm.Patterns {
					a.Children = append(a.Children, ASTNodeOutput{Type: "Pattern", Text: patternText(p), Span: p.Span})
				}
				a.Children = append(a.Children, withRole(w.stmt(arm.Body), "body"))
				n.Children = append(n.Children, a)
			}
		}
	case ast.StmtWhile:
		if ws, ok := s.While(id); ok {
			add("cond", w.expr(ws.Cond))
			add("body", w.stmt(ws.Body))
		}
	case ast.StmtFor:
		if fs, ok := s.For(id); ok {
			for _, v := range fs.Vars {
				n.Children = append(n.Children, ASTNodeOutput{Type: "Var", Text: w.name(v.Name), Span: v.Span})
			}
			add("iter", w.expr(fs.Iter))
			add("body", w.stmt(fs.Body))
		}
	case ast.StmtReturn:
		if rs, ok := s.Return(id); ok && rs.Value.IsValid() {
			add("value", w.expr(rs.Value))
		}
	case ast.StmtTry:
		if ts, ok := s.Try(id); ok {
			add("body", w.stmt(ts.Body))
			n.Text = w.name(ts.CatchName)
			add("catch", w.stmt(ts.Catch))
		}
	case ast.StmtWith:
		if ws, ok := s.With(id); ok {
			for _, m := range ws.Mods {
				mod := ASTNodeOutput{Type: "Modifier", Text: w.name(m.Name), Span: m.Span}
				mod.Children = w.args(m.Args)
				n.Children = append(n.Children, mod)
			}
			add("body", w.stmt(ws.Body))
		}
	case ast.StmtSubshell, ast.StmtGroup:
		if pb, ok := s.ProcBlock(id); ok {
			add("body", w.stmt(pb.Body))
		}
	case ast.StmtUnsafeBlock:
		if ub, ok := s.UnsafeBlock(id); ok {
			n.Text = strconv.Quote(ub.Text)
		}
	}
	return n
}

func patternText(p ast.CasePattern) string {
	switch p.Kind {
	case ast.PatternGlob:
		return "glob(" + strconv.Quote(p.Text) + ")"
	case ast.PatternWildcard:
		return "_"
	}
	return strconv.Quote(p.Text)
}

func (w astWalker) args(args []ast.CallArg) []ASTNodeOutput {
	out := make([]ASTNodeOutput, 0, len(args))
	for _, a := range args {
		role := "arg"
		if name := w.name(a.Name); name != "" {
			role = name + "="
		}
		out = append(out, withRole(w.expr(a.Value), role))
	}
	return out
}

func (w astWalker) expr(id ast.ExprID) ASTNodeOutput {
	e := w.b.Exprs.Get(id)
	if e == nil {
		return ASTNodeOutput{Type: "Expr?"}
	}
	n := ASTNodeOutput{Type: e.Kind.String(), Span: e.Span}
	add := func(role string, c ASTNodeOutput) { n.Children = append(n.Children, withRole(c, role)) }
	x := w.b.Exprs
	switch e.Kind {
	case ast.ExprIdent:
		if d, ok := x.Ident(id); ok {
			n.Text = w.name(d.Name)
		}
	case ast.ExprLit:
		if d, ok := x.Lit(id); ok {
			switch d.Kind {
			case ast.LitInt:
				n.Text = strconv.FormatInt(d.Int, 10)
			case ast.LitBool:
				n.Text = strconv.FormatBool(d.Bool)
			default:
				n.Text = strconv.Quote(d.Str)
			}
		}
	case ast.ExprInterp:
		if d, ok := x.Interp(id); ok {
			for _, p := range d.Parts {
				if p.Expr.IsValid() {
					add("hole", w.expr(p.Expr))
					continue
				}
				n.Children = append(n.Children, ASTNodeOutput{Type: "Text", Text: strconv.Quote(p.Text), Span: p.Span})
			}
		}
	case ast.ExprEnv:
		if d, ok := x.Env(id); ok {
			n.Text = d.Name
		}
	case ast.ExprMember:
		if d, ok := x.Member(id); ok {
			n.Text = w.name(d.Field)
			add("target", w.expr(d.Target))
		}
	case ast.ExprCall:
		if d, ok := x.Call(id); ok {
			add("callee", w.expr(d.Callee))
			n.Children = append(n.Children, w.args(d.Args)...)
		}
	case ast.ExprIndex:
		if d, ok := x.Index(id); ok {
			add("target", w.expr(d.Target))
			add("index", w.expr(d.Index))
		}
	case ast.ExprList:
		if d, ok := x.List(id); ok {
			for _, el := range d.Elems {
				n.Children = append(n.Children, w.expr(el))
			}
		}
	case ast.ExprMap:
		if d, ok := x.Map(id); ok {
			for _, en := range d.Entries {
				add("key", w.expr(en.Key))
				add("value", w.expr(en.Value))
			}
		}
	case ast.ExprBinary:
		if d, ok := x.Binary(id); ok {
			n.Text = d.Op.String()
			add("left", w.expr(d.Left))
			add("right", w.expr(d.Right))
		}
	case ast.ExprUnary:
		if d, ok := x.Unary(id); ok {
			n.Text = d.Op.String()
			n.Children = append(n.Children, w.expr(d.Operand))
		}
	case ast.ExprGroup:
		if d, ok := x.Group(id); ok {
			n.Children = append(n.Children, w.expr(d.Inner))
		}
	case ast.ExprBackground:
		if d, ok := x.Background(id); ok {
			if d.Block.IsValid() {
				add("body", w.stmt(d.Block))
			} else {
				add("call", w.expr(d.Call))
			}
		}
	case ast.ExprUnsafe:
		if d, ok := x.Unsafe(id); ok {
			n.Text = strconv.Quote(d.Text)
		}
	case ast.ExprPipeline:
		if d, ok := x.Pipeline(id); ok {
			for _, st := range d.Stages {
				add("stage", w.expr(st))
			}
		}
	case ast.ExprBlockStage:
		if d, ok := x.BlockStage(id); ok {
			add("body", w.stmt(d.Block))
		}
	}
	return n
}
