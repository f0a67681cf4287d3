package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"shale/internal/ast"
	"shale/internal/diag"
	"shale/internal/source"
)

func stmtKinds(r parsed, ids []ast.StmtID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = r.b.Stmts.Get(id).Kind.String()
	}
	return out
}

func TestStatementKinds(t *testing.T) {
	src := `fn main() {
  let x = 1; set x = 2
  set env.PATH = "/bin"
  if x > 1 { print("a") } elif x == 1 { print("b") }
  else { print("c") }
  while x < 10 { set x = x + 1; continue }
  for f in ["a", "b"] { break }
  for k, v in m { print(k, v) }
  try { run("false") } catch st { print(st) }
  with env(LANG="C"), cwd("/tmp") { run("ls") }
  subshell { run("a") }
  group { run("b") }
  unsafe {{
    echo "$HOME"
  }}
  { print("nested") }
  return 3
}
`
	r := mustParse(t, src)
	got := stmtKinds(r, r.body(t))
	want := []string{
		"Let", "Set", "Set", "If", "While", "For", "For", "Try", "With",
		"Subshell", "Group", "UnsafeBlock", "Block", "Return",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("statement kinds mismatch (-want +got):\n%s", diff)
	}

	body := r.body(t)
	set, _ := r.b.Stmts.Set(body[2])
	if !set.Env || r.b.Name(set.Name) != "PATH" {
		t.Fatalf("set env: %+v", set)
	}
	ifs, _ := r.b.Stmts.If(body[3])
	if len(ifs.Elifs) != 1 || !ifs.Else.IsValid() {
		t.Fatalf("if: %d elifs, else=%v", len(ifs.Elifs), ifs.Else.IsValid())
	}
	kv, _ := r.b.Stmts.For(body[6])
	if len(kv.Vars) != 2 || r.b.Name(kv.Vars[1].Name) != "v" {
		t.Fatalf("for k, v: %+v", kv.Vars)
	}
	try, _ := r.b.Stmts.Try(body[7])
	if r.b.Name(try.CatchName) != "st" {
		t.Fatalf("catch name = %q", r.b.Name(try.CatchName))
	}
	with, _ := r.b.Stmts.With(body[8])
	if len(with.Mods) != 2 || r.b.Name(with.Mods[0].Name) != "env" || r.b.Name(with.Mods[1].Name) != "cwd" {
		t.Fatalf("with modifiers: %+v", with.Mods)
	}
	raw, _ := r.b.Stmts.UnsafeBlock(body[11])
	if raw.Text != `echo "$HOME"` {
		t.Fatalf("raw block text = %q", raw.Text)
	}
}

func TestCaseArms(t *testing.T) {
	src := `fn main() {
  case x {
    "a" | "b" -> print("ab")
    glob("*.txt") -> { print("text") }
    _ -> print("other")
  }
}
`
	r := mustParse(t, src)
	cs, ok := r.b.Stmts.Case(r.body(t)[0])
	if !ok || len(cs.Arms) != 3 {
		t.Fatalf("case arms: %v", cs)
	}
	type pat struct {
		Kind ast.PatternKind
		Text string
	}
	var got [][]pat
	for _, arm := range cs.Arms {
		var ps []pat
		for _, p := range arm.Patterns {
			ps = append(ps, pat{p.Kind, p.Text})
		}
		got = append(got, ps)
	}
	want := [][]pat{
		{{ast.PatternLiteral, "a"}, {ast.PatternLiteral, "b"}},
		{{ast.PatternGlob, "*.txt"}},
		{{ast.PatternWildcard, ""}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("patterns (-want +got):\n%s", diff)
	}
}

func TestItems(t *testing.T) {
	src := `import "lib/util.shl" as u
import "other.shl"
let GREETING = "hi"

fn helper(a, b) { return }
fn main() { u.run_it(GREETING) }
`
	r := mustParse(t, src)
	items := r.b.Files.Get(r.file).Items
	if len(items) != 5 {
		t.Fatalf("want 5 items, got %d", len(items))
	}
	imp, _ := r.b.Items.Import(items[0])
	if imp.Path != "lib/util.shl" || r.b.Name(imp.Alias) != "u" {
		t.Fatalf("import: %+v", imp)
	}
	imp2, _ := r.b.Items.Import(items[1])
	if imp2.Alias != source.NoStringID {
		t.Fatalf("unexpected alias on second import")
	}
	fn, _ := r.b.Items.Fn(items[3])
	if r.b.Name(fn.Name) != "helper" || len(fn.Params) != 2 {
		t.Fatalf("fn helper: %+v", fn)
	}
}

func TestUnicodeIdentifiersAreNFC(t *testing.T) {
	// "é" written precomposed and decomposed must intern to one name
	r := mustParse(t, "fn main() {\n  let caf\u00e9 = 1\n  print(cafe\u0301)\n}\n")
	body := r.body(t)
	let, _ := r.b.Stmts.Let(body[0])
	call, _ := r.b.Exprs.Call(r.exprOf(t, body[1]))
	arg, _ := r.b.Exprs.Ident(call.Args[0].Value)
	if let.Name != arg.Name {
		t.Fatalf("names differ: %q vs %q", r.b.Name(let.Name), r.b.Name(arg.Name))
	}
}

func TestSyntaxErrorsStopAtFirst(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"top level statement", "print(1)\n", diag.SynUnexpectedTopLevel},
		{"missing separator", "fn main() { let a = 1 let b = 2 }\n", diag.SynExpectSeparator},
		{"for without in", "fn main() { for x [1] { } }\n", diag.SynForMissingIn},
		{"try without catch", "fn main() { try { run(\"a\") }\n print(1) }\n", diag.SynCatchMissing},
		{"case without arrow", "fn main() { case x { \"a\" print(1) } }\n", diag.SynExpectArrow},
		{"bad pattern", "fn main() { case x { 3 -> print(1) } }\n", diag.SynBadPattern},
		{"keyword as name", "fn main() { let if = 1 }\n", diag.SynReservedWord},
		{"set index", "fn main() { set xs[0] = 1 }\n", diag.SynBadAssignTarget},
		{"unclosed block", "fn main() { print(1)\n", diag.SynUnclosedBrace},
		{"fn inside fn", "fn main() { fn inner() { } }\n", diag.SynUnexpectedToken},
		{"import needs string", "import util\n", diag.SynBadImport},
		{"else if", "fn main() { if a { } else if b { } }\n", diag.SynUnexpectedToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := parseSource(t, tt.src, 1)
			items := r.bag.Items()
			if len(items) != 1 || items[0].Code != tt.code {
				t.Fatalf("want one %s, got %s", tt.code.ID(), diagnosticsSummary(r.bag))
			}
		})
	}
}

func TestResyncReportsSeveralErrors(t *testing.T) {
	src := "fn main() {\n  let = 1\n  print(1)\n  set = 2\n}\nfn other() { let x 1 }\n"
	r := parseSource(t, src, 10)
	if r.bag.Len() != 3 {
		t.Fatalf("want 3 diagnostics, got %s", diagnosticsSummary(r.bag))
	}
}

func TestLexErrorIsNotReportedTwice(t *testing.T) {
	r := parseSource(t, "fn main() { print(\"abc) }\n", 1)
	items := r.bag.Items()
	if len(items) != 1 || items[0].Code != diag.LexUnterminatedString {
		t.Fatalf("want a single lexer diagnostic, got %s", diagnosticsSummary(r.bag))
	}
}
