package parser

import (
	"testing"

	"shale/internal/diag"
)

func TestInterpolatedStrings(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`print($"hello {name}!")`, `print($("hello " {name} "!"))`},
		{`print($"{a}{b}")`, `print($({a} {b}))`},
		{`print($"n={x + 1} {{literal}}")`, `print($("n=" {(x + 1)} " {literal}"))`},
		{`print($"tab\t{m["k"]}")`, `print($("tab\t" {m["k"]}))`},
		{`print($"\u{41}\{x\}")`, `print($("A{x}"))`},
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

func TestInterpolationHoleSpans(t *testing.T) {
	r, id := parseExprString(t, `print($"x{value}")`)
	call, _ := r.b.Exprs.Call(id)
	interp, ok := r.b.Exprs.Interp(call.Args[0].Value)
	if !ok || len(interp.Parts) != 2 {
		t.Fatalf("unexpected interpolation parts")
	}
	hole := r.b.Exprs.Get(interp.Parts[1].Expr)
	file := r.fs.Get(hole.Span.File)
	if got := file.Text(hole.Span); got != "value" {
		t.Fatalf("hole span covers %q", got)
	}
}

func TestInterpolationErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"empty hole", `print($"a{}b")`, diag.SynBadInterpolation},
		{"stray close", `print($"a}b")`, diag.SynBadInterpolation},
		{"two expressions", `print($"{a b}")`, diag.SynBadInterpolation},
		{"bad expression", `print($"{1 +}")`, diag.SynExpectExpression},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := parseSource(t, "fn main() {\n"+tt.src+"\n}\n", 1)
			items := r.bag.Items()
			if len(items) != 1 || items[0].Code != tt.code {
				t.Fatalf("want one %s, got %s", tt.code.ID(), diagnosticsSummary(r.bag))
			}
		})
	}
}
