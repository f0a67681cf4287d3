package parser

import (
	"fmt"
	"strings"
	"testing"

	"shale/internal/ast"
	"shale/internal/diag"
	"shale/internal/lexer"
	"shale/internal/source"
)

type parsed struct {
	fs     *source.FileSet
	b      *ast.Builder
	file   ast.FileID
	bag    *diag.Bag
	errors uint
}

func parseSource(t *testing.T, input string, maxErrors uint) parsed {
	t.Helper()
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.shl", []byte(input))
	bag := diag.NewBag(100)
	reporter := diag.BagReporter{Bag: bag}

	lx := lexer.New(fs.Get(fileID), lexer.Options{Reporter: reporter})
	b := ast.NewBuilder(ast.Hints{})
	res := ParseFile(fs, lx, b, Options{MaxErrors: maxErrors, Reporter: reporter})
	return parsed{fs: fs, b: b, file: res.File, bag: bag, errors: res.Errors}
}

// mustParse parses input and fails the test on any diagnostic.
func mustParse(t *testing.T, input string) parsed {
	t.Helper()
	r := parseSource(t, input, 1)
	if r.bag.Len() != 0 || r.errors != 0 {
		t.Fatalf("unexpected diagnostics for %q: %s", input, diagnosticsSummary(r.bag))
	}
	return r
}

// body returns the statements of the first function in the file.
func (r parsed) body(t *testing.T) []ast.StmtID {
	t.Helper()
	items := r.b.Files.Get(r.file).Items
	for _, id := range items {
		if fn, ok := r.b.Items.Fn(id); ok {
			blk, _ := r.b.Stmts.Block(fn.Body)
			return blk.Stmts
		}
	}
	t.Fatalf("no function in file")
	return nil
}

func (r parsed) exprOf(t *testing.T, stmt ast.StmtID) ast.ExprID {
	t.Helper()
	es, ok := r.b.Stmts.Expr(stmt)
	if !ok {
		t.Fatalf("statement %d is %s, not an expression statement", stmt, r.b.Stmts.Get(stmt).Kind)
	}
	return es.Expr
}

func diagnosticsSummary(bag *diag.Bag) string {
	if bag == nil {
		return "<nil bag>"
	}
	diags := bag.Items()
	if len(diags) == 0 {
		return "<none>"
	}
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message)
	}
	return strings.Join(lines, "; ")
}

// render prints an expression as a fully parenthesized string.
func render(b *ast.Builder, id ast.ExprID) string {
	e := b.Exprs.Get(id)
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ast.ExprIdent:
		d, _ := b.Exprs.Ident(id)
		return b.Name(d.Name)
	case ast.ExprLit:
		d, _ := b.Exprs.Lit(id)
		switch d.Kind {
		case ast.LitInt:
			return fmt.Sprint(d.Int)
		case ast.LitBool:
			return fmt.Sprint(d.Bool)
		}
		return fmt.Sprintf("%q", d.Str)
	case ast.ExprInterp:
		d, _ := b.Exprs.Interp(id)
		parts := make([]string, len(d.Parts))
		for i, part := range d.Parts {
			if part.Expr.IsValid() {
				parts[i] = "{" + render(b, part.Expr) + "}"
			} else {
				parts[i] = fmt.Sprintf("%q", part.Text)
			}
		}
		return "$(" + strings.Join(parts, " ") + ")"
	case ast.ExprEnv:
		d, _ := b.Exprs.Env(id)
		return "env." + d.Name
	case ast.ExprMember:
		d, _ := b.Exprs.Member(id)
		return render(b, d.Target) + "." + b.Name(d.Field)
	case ast.ExprCall:
		d, _ := b.Exprs.Call(id)
		args := make([]string, len(d.Args))
		for i, a := range d.Args {
			if a.Name != source.NoStringID {
				args[i] = b.Name(a.Name) + "=" + render(b, a.Value)
			} else {
				args[i] = render(b, a.Value)
			}
		}
		return render(b, d.Callee) + "(" + strings.Join(args, ", ") + ")"
	case ast.ExprIndex:
		d, _ := b.Exprs.Index(id)
		return render(b, d.Target) + "[" + render(b, d.Index) + "]"
	case ast.ExprList:
		d, _ := b.Exprs.List(id)
		elems := make([]string, len(d.Elems))
		for i, el := range d.Elems {
			elems[i] = render(b, el)
		}
		return "[" + strings.Join(elems, ", ") + "]"
	case ast.ExprMap:
		d, _ := b.Exprs.Map(id)
		entries := make([]string, len(d.Entries))
		for i, en := range d.Entries {
			entries[i] = render(b, en.Key) + ": " + render(b, en.Value)
		}
		return "{" + strings.Join(entries, ", ") + "}"
	case ast.ExprBinary:
		d, _ := b.Exprs.Binary(id)
		return "(" + render(b, d.Left) + " " + d.Op.String() + " " + render(b, d.Right) + ")"
	case ast.ExprUnary:
		d, _ := b.Exprs.Unary(id)
		return "(" + d.Op.String() + render(b, d.Operand) + ")"
	case ast.ExprGroup:
		d, _ := b.Exprs.Group(id)
		return render(b, d.Inner)
	case ast.ExprBackground:
		d, _ := b.Exprs.Background(id)
		if d.Call.IsValid() {
			return "background " + render(b, d.Call)
		}
		return "background {...}"
	case ast.ExprUnsafe:
		d, _ := b.Exprs.Unsafe(id)
		return fmt.Sprintf("unsafe(%q)", d.Text)
	case ast.ExprPipeline:
		d, _ := b.Exprs.Pipeline(id)
		stages := make([]string, len(d.Stages))
		for i, s := range d.Stages {
			stages[i] = render(b, s)
		}
		return strings.Join(stages, " | ")
	case ast.ExprBlockStage:
		return "{...}"
	}
	return "?"
}
