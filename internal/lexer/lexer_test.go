package lexer_test

import (
	"strings"
	"testing"

	"shale/internal/diag"
	"shale/internal/lexer"
	"shale/internal/source"
	"shale/internal/token"
)

// testReporter collects every diagnostic the lexer emits.
type testReporter struct {
	diagnostics []diag.Diagnostic
}

func (r *testReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note, fixes []diag.Fix) {
	r.diagnostics = append(r.diagnostics, diag.Diagnostic{
		Severity: sev, Code: code, Message: msg, Primary: primary, Notes: notes, Fixes: fixes,
	})
}

func (r *testReporter) codes() []diag.Code {
	out := make([]diag.Code, 0, len(r.diagnostics))
	for _, d := range r.diagnostics {
		out = append(out, d.Code)
	}
	return out
}

func makeTestLexer(input string) (*lexer.Lexer, *testReporter) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.shl", []byte(input)))
	rep := &testReporter{}
	return lexer.New(file, lexer.Options{Reporter: rep}), rep
}

func collectAllTokens(lx *lexer.Lexer) []token.Token {
	var tokens []token.Token
	for {
		tok := lx.Next()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			return tokens
		}
	}
}

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func assertKinds(t *testing.T, input string, want ...token.Kind) []token.Token {
	t.Helper()
	lx, rep := makeTestLexer(input)
	toks := collectAllTokens(lx)
	if len(rep.diagnostics) != 0 {
		t.Fatalf("%q: unexpected diagnostics %v", input, rep.diagnostics)
	}
	got := kinds(toks)
	want = append(want, token.EOF)
	if len(got) != len(want) {
		t.Fatalf("%q: got kinds %v, want %v", input, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%q: token %d is %v (%q), want %v", input, i, got[i], toks[i].Text, want[i])
		}
	}
	return toks
}

func TestStatementTokens(t *testing.T) {
	toks := assertKinds(t, `let name = run("ls", "-la") # list`,
		token.KwLet, token.Ident, token.Assign, token.Ident, token.LParen,
		token.StringLit, token.Comma, token.StringLit, token.RParen)
	if toks[1].Text != "name" || toks[5].Text != `"ls"` {
		t.Fatalf("unexpected texts %q %q", toks[1].Text, toks[5].Text)
	}
}

func TestNewlinesCollapse(t *testing.T) {
	toks := assertKinds(t, "a\n\n  # note\n\nb; c",
		token.Ident, token.Newline, token.Ident, token.Semicolon, token.Ident)
	if len(toks[2].Leading) != 0 {
		// blank and comment-only lines fold into the newline token
		t.Fatalf("leading trivia of b: %+v", toks[2].Leading)
	}
}

func TestCommentIsTrivia(t *testing.T) {
	toks := assertKinds(t, "# header\nfn main() {}",
		token.Newline, token.KwFn, token.Ident, token.LParen, token.RParen, token.LBrace, token.RBrace)
	if toks[0].Leading[0].Kind != token.TriviaComment || toks[0].Leading[0].Text != "# header" {
		t.Fatalf("comment trivia lost: %+v", toks[0].Leading)
	}
}

func TestOperatorsGreedy(t *testing.T) {
	assertKinds(t, "a .. b == c != d <= e >= f && g || h -> | _ % !",
		token.Ident, token.DotDot, token.Ident, token.EqEq, token.Ident, token.BangEq,
		token.Ident, token.LtEq, token.Ident, token.GtEq, token.Ident, token.AndAnd,
		token.Ident, token.OrOr, token.Ident, token.Arrow, token.Pipe, token.Underscore,
		token.Percent, token.Bang)
}

func TestKeywordsAndIdents(t *testing.T) {
	assertKinds(t, "set env.PATH = _x",
		token.KwSet, token.KwEnv, token.Dot, token.Ident, token.Assign, token.Ident)
	assertKinds(t, "for k, v in m", token.KwFor, token.Ident, token.Comma, token.Ident, token.KwIn, token.Ident)
	toks := assertKinds(t, "имя", token.Ident)
	if toks[0].Text != "имя" {
		t.Fatalf("unicode ident text %q", toks[0].Text)
	}
}

func TestStringForms(t *testing.T) {
	toks := assertKinds(t, `"a\n\"b\"" r"C:\path" $"hi {name} {{x}}"`,
		token.StringLit, token.RawStringLit, token.InterpStringLit)
	if toks[1].Text != `r"C:\path"` {
		t.Fatalf("raw text %q", toks[1].Text)
	}
	if toks[2].Text != `$"hi {name} {{x}}"` {
		t.Fatalf("interp text %q", toks[2].Text)
	}
}

func TestInterpHoleWithNestedString(t *testing.T) {
	toks := assertKinds(t, `$"out: {capture(run("echo", "}"))}!"`, token.InterpStringLit)
	if !strings.HasSuffix(toks[0].Text, `!"`) {
		t.Fatalf("hole swallowed the tail: %q", toks[0].Text)
	}
}

func TestRawStringSpansLines(t *testing.T) {
	assertKinds(t, "r\"line1\nline2\"", token.RawStringLit)
}

func TestNumbers(t *testing.T) {
	toks := assertKinds(t, "0 42 1_000", token.IntLit, token.IntLit, token.IntLit)
	v, err := lexer.ParseInt(toks[2].Text)
	if err != nil || v != 1000 {
		t.Fatalf("ParseInt(%q) = %d, %v", toks[2].Text, v, err)
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  diag.Code
	}{
		{"unterminated", `"abc`, diag.LexUnterminatedString},
		{"newline in string", "\"ab\ncd\"", diag.LexUnterminatedString},
		{"bad escape", `"a\qb"`, diag.LexInvalidEscape},
		{"bad unicode escape", `"\u{zz}"`, diag.LexInvalidEscape},
		{"float", "1.5", diag.LexBadNumber},
		{"glued", "12ab", diag.LexBadNumber},
		{"overflow", "99999999999999999999", diag.LexBadNumber},
		{"dollar", "$x", diag.LexUnknownChar},
		{"backtick", "`ls`", diag.LexUnknownChar},
		{"open hole", `$"a {b`, diag.LexUnterminatedInterp},
		{"raw block", "unsafe {{\n echo hi\n", diag.LexUnterminatedRawBlock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lx, rep := makeTestLexer(tt.input)
			collectAllTokens(lx)
			codes := rep.codes()
			if len(codes) == 0 || codes[0] != tt.code {
				t.Fatalf("got %v, want first code %v", codes, tt.code)
			}
			if lx.Errors() == 0 {
				t.Fatal("Errors() must count reported errors")
			}
		})
	}
}

func TestRawBlock(t *testing.T) {
	input := "unsafe {{\n    echo \"$HOME\" | tr a b\n      indented }\n  }}\nx"
	toks := assertKinds(t, input, token.KwUnsafe, token.RawBlock, token.Newline, token.Ident)
	body := lexer.RawBlockBody(toks[1].Text)
	want := "echo \"$HOME\" | tr a b\n  indented }"
	if body != want {
		t.Fatalf("body = %q, want %q", body, want)
	}
}

func TestDoubleBraceOnlyAfterUnsafe(t *testing.T) {
	assertKinds(t, "{{}}", token.LBrace, token.LBrace, token.RBrace, token.RBrace)
}

func TestPeekDoesNotConsume(t *testing.T) {
	lx, _ := makeTestLexer("a b")
	if lx.Peek().Text != "a" || lx.Next().Text != "a" || lx.Next().Text != "b" {
		t.Fatal("Peek must buffer exactly one token")
	}
	if lx.Next().Kind != token.EOF || lx.Next().Kind != token.EOF {
		t.Fatal("EOF must be sticky")
	}
}

func TestNewRangeLexesSlice(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("t.shl", []byte(`$"x {a + 1} y"`)))
	lx := lexer.NewRange(file, 5, 10, lexer.Options{})
	toks := collectAllTokens(lx)
	if got := kinds(toks); len(got) != 4 || got[0] != token.Ident || got[1] != token.Plus || got[2] != token.IntLit {
		t.Fatalf("range tokens %v", got)
	}
	if toks[0].Span.Start != 5 {
		t.Fatalf("range token must keep file offsets, got %v", toks[0].Span)
	}
}

func TestUnescape(t *testing.T) {
	got, err := lexer.Unescape(`a\tb\\c\"d\$e\u{263A}\{`)
	if err != nil {
		t.Fatal(err)
	}
	if got != "a\tb\\c\"d$e☺{" {
		t.Fatalf("Unescape = %q", got)
	}
	if _, err := lexer.Unescape(`\x41`); err == nil {
		t.Fatal("\\x escapes are not supported")
	}
}
