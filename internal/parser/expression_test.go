package parser

import (
	"testing"

	"shale/internal/ast"
	"shale/internal/diag"
)

func parseExprString(t *testing.T, src string) (parsed, ast.ExprID) {
	t.Helper()
	r := mustParse(t, "fn main() {\n"+src+"\n}\n")
	stmts := r.body(t)
	if len(stmts) != 1 {
		t.Fatalf("want 1 statement, got %d", len(stmts))
	}
	return r, r.exprOf(t, stmts[0])
}

func TestExpressionPrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`f(1 + 2 * 3)`, `f((1 + (2 * 3)))`},
		{`f(a || b && c)`, `f((a || (b && c)))`},
		{`f(a == b .. c)`, `f((a == (b .. c)))`},
		{`f(a .. b + 1)`, `f((a .. (b + 1)))`},
		{`f(1 - 2 - 3)`, `f(((1 - 2) - 3))`},
		{`f(!a && -b < 3)`, `f(((!a) && ((-b) < 3)))`},
		{`f((1 + 2) * 3)`, `f(((1 + 2) * 3))`},
		{`f(xs[0], m["k"], env.HOME)`, `f(xs[0], m["k"], env.HOME)`},
		{`lib.greet("x")`, `lib.greet("x")`},
		{`run("ls", "-l", allow_fail=true)`, `run("ls", "-l", allow_fail=true)`},
		{`f([1, 2], {"a": "b"})`, `f([1, 2], {"a": "b"})`},
		{`f(r"a\nb", true, false)`, `f("a\\nb", true, false)`},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			r, id := parseExprString(t, tt.src)
			if got := render(r.b, id); got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPipelines(t *testing.T) {
	r, id := parseExprString(t, `run("ls") | run("grep", "x") | { print("y") }`)
	pipe, ok := r.b.Exprs.Pipeline(id)
	if !ok || len(pipe.Stages) != 3 {
		t.Fatalf("want a 3-stage pipeline, got %s", render(r.b, id))
	}
	if r.b.Exprs.Get(pipe.Stages[2]).Kind != ast.ExprBlockStage {
		t.Fatalf("last stage is %s", r.b.Exprs.Get(pipe.Stages[2]).Kind)
	}

	r, id = parseExprString(t, `{ print("a") } | run("cat")`)
	if got := render(r.b, id); got != `{...} | run("cat")` {
		t.Fatalf("block-first pipeline: %s", got)
	}

	r = mustParse(t, "fn main() {\n  let out = capture(run(\"ls\") | run(\"wc\", \"-l\"), stderr=true)\n}\n")
	let, ok := r.b.Stmts.Let(r.body(t)[0])
	if !ok {
		t.Fatal("expected let")
	}
	if got := render(r.b, let.Value); got != `capture(run("ls") | run("wc", "-l"), stderr=true)` {
		t.Fatalf("capture pipeline: %s", got)
	}
}

func TestBackgroundAndUnsafe(t *testing.T) {
	r, id := parseExprString(t, `background run("sleep", "1")`)
	if got := render(r.b, id); got != `background run("sleep", "1")` {
		t.Fatalf("got %s", got)
	}
	r, id = parseExprString(t, `unsafe("echo $HOME")`)
	if got := render(r.b, id); got != `unsafe("echo $HOME")` {
		t.Fatalf("got %s", got)
	}
}

func TestExpressionErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"newline in args", "f(1,\n2)", diag.SynSeparatorInArgs},
		{"semicolon in args", "f(1; 2)", diag.SynSeparatorInArgs},
		{"positional after named", "f(a=1, 2)", diag.SynNamedArgOrder},
		{"unclosed call", "f(1", diag.SynSeparatorInArgs},
		{"missing operand", "f(1 +)", diag.SynExpectExpression},
		{"keyword as value", "f(while)", diag.SynReservedWord},
		{"bad stage", `run("a") | 3`, diag.SynBadPipelineStage},
		{"background literal", `background 3`, diag.SynUnexpectedToken},
		{"unsafe needs literal", `unsafe(x)`, diag.SynUnexpectedToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := parseSource(t, "fn main() {\n"+tt.src+"\n}\n", 1)
			items := r.bag.Items()
			if len(items) != 1 {
				t.Fatalf("want exactly one diagnostic, got %s", diagnosticsSummary(r.bag))
			}
			if items[0].Code != tt.code {
				t.Fatalf("code = %s, want %s (%s)", items[0].Code.ID(), tt.code.ID(), items[0].Message)
			}
		})
	}
}
