package driver

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"shale/internal/diag"
	"shale/internal/ir"
	"shale/internal/target"
)

func memFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for name, src := range files {
		if err := afero.WriteFile(fsys, name, []byte(src), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return fsys
}

func testOptions(fsys afero.Fs) Options {
	opts := DefaultOptions()
	opts.FS = fsys
	opts.Version = "test"
	return opts
}

func codes(bag *diag.Bag) []string {
	var out []string
	for _, d := range bag.Items() {
		out = append(out, d.Code.ID())
	}
	return out
}

func TestCompileFollowsImports(t *testing.T) {
	fsys := memFS(t, map[string]string{
		"/proj/main.shl":     "import \"lib/util.shl\" as u\nfn main() { u.greet(\"x\") }\n",
		"/proj/lib/util.shl": "fn greet(who) { print(who) }\n",
	})
	res, err := CompileFile(context.Background(), "/proj/main.shl", testOptions(fsys))
	if err != nil {
		t.Fatalf("CompileFile: %v", err)
	}
	if res.Failed() {
		t.Fatalf("diagnostics: %v", codes(res.Bag))
	}
	out := string(res.Output)
	for _, want := range []string{
		"#!/usr/bin/env bash\n# generated by shale test from /proj/main.shl; do not edit\n",
		"f_util_greet() {",
		"f_util_greet x",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if len(res.Timings.Phases) == 0 {
		t.Fatalf("no phase timings recorded")
	}
}

func TestImportDiagnostics(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  []string
	}{
		{
			name:  "missing",
			files: map[string]string{"/p/main.shl": "import \"gone.shl\"\nfn main() { }\n"},
			want:  []string{"PRJ5001"},
		},
		{
			name: "cycle",
			files: map[string]string{
				"/p/main.shl": "import \"a.shl\"\nfn main() { }\n",
				"/p/a.shl":    "import \"b.shl\"\nfn f() { }\n",
				"/p/b.shl":    "import \"a.shl\"\nfn g() { }\n",
			},
			want: []string{"PRJ5003"},
		},
		{
			name:  "self",
			files: map[string]string{"/p/main.shl": "import \"main.shl\"\nfn main() { }\n"},
			want:  []string{"PRJ5002"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := CompileFile(context.Background(), "/p/main.shl", testOptions(memFS(t, tt.files)))
			if err != nil {
				t.Fatalf("CompileFile: %v", err)
			}
			if diff := cmp.Diff(tt.want, codes(res.Bag)); diff != "" {
				t.Fatalf("codes (-want +got):\n%s", diff)
			}
			if res.Output != nil {
				t.Fatalf("output despite errors")
			}
		})
	}
}

func TestSyntaxErrorsStopAtFirst(t *testing.T) {
	res, err := Compile(context.Background(), "m.shl", []byte("fn main() { let = 1 }\nfn other( {\n"), testOptions(afero.NewMemMapFs()))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if res.Bag.Len() != 1 || !strings.HasPrefix(codes(res.Bag)[0], "SYN") {
		t.Fatalf("want exactly one syntax error, got %v", codes(res.Bag))
	}
}

func TestSyntaxErrorCarriesDialectHint(t *testing.T) {
	src := "fn main() {\n  if $x then\n    echo hi\n  fi\n}\n"
	res, err := Compile(context.Background(), "m.shl", []byte(src), testOptions(afero.NewMemMapFs()))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	items := res.Bag.Items()
	if len(items) != 1 {
		t.Fatalf("want one diagnostic, got %v", codes(res.Bag))
	}
	notes := items[0].Notes
	if len(notes) == 0 || !strings.HasPrefix(notes[len(notes)-1].Msg, "hint: this reads like bash") {
		t.Fatalf("notes = %+v", notes)
	}
}

func TestSemanticErrorsAccumulate(t *testing.T) {
	res, err := Compile(context.Background(), "m.shl", []byte("fn main() {\n\tprint(a)\n\tprint(b)\n}\n"), testOptions(afero.NewMemMapFs()))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if diff := cmp.Diff([]string{"SEM3002", "SEM3002"}, codes(res.Bag)); diff != "" {
		t.Fatalf("codes (-want +got):\n%s", diff)
	}
}

func TestEmitDumps(t *testing.T) {
	src := []byte("fn main() { run(\"ls\") }\n")
	opts := testOptions(afero.NewMemMapFs())

	opts.Emit = EmitIR
	res, err := Compile(context.Background(), "m.shl", src, opts)
	if err != nil || res.Failed() {
		t.Fatalf("ir: %v %v", err, codes(res.Bag))
	}
	if !strings.Contains(string(res.Output), `run("ls")`) {
		t.Fatalf("ir dump:\n%s", res.Output)
	}

	opts.Emit, opts.DumpFormat = EmitAST, ir.FormatJSON
	res, err = Compile(context.Background(), "m.shl", src, opts)
	if err != nil || res.Failed() {
		t.Fatalf("ast: %v %v", err, codes(res.Bag))
	}
	var tree struct {
		Type     string `json:"type"`
		Children []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"children"`
	}
	if err := json.Unmarshal(res.Output, &tree); err != nil {
		t.Fatalf("ast json: %v\n%s", err, res.Output)
	}
	if tree.Type != "File" || len(tree.Children) != 1 || tree.Children[0].Text != "main" {
		t.Fatalf("unexpected tree %+v", tree)
	}
}

func TestPortableTargetRejectsLists(t *testing.T) {
	opts := testOptions(afero.NewMemMapFs())
	opts.Target = target.Portable
	res, err := Compile(context.Background(), "m.shl", []byte("fn main() { let xs = [\"a\"]\n print(xs[0]) }\n"), opts)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !res.Failed() || res.Output != nil {
		t.Fatalf("portable list should fail, got %v", codes(res.Bag))
	}
}

func TestDefectIsInternalError(t *testing.T) {
	c := newCompilation(context.Background(), testOptions(afero.NewMemMapFs()))
	_, err := c.emit(&ir.Module{Target: target.Portable})
	if !errors.Is(err, ErrInternalDefect) {
		t.Fatalf("want ErrInternalDefect, got %v", err)
	}
}

func TestDiskCacheReusesOutput(t *testing.T) {
	fsys := memFS(t, map[string]string{"/p/main.shl": "fn main() { print(\"hi\") }\n"})
	cache, err := NewDiskCache(fsys, "/cache")
	if err != nil {
		t.Fatalf("NewDiskCache: %v", err)
	}
	opts := testOptions(fsys)
	opts.Cache = cache
	first, err := CompileFile(context.Background(), "/p/main.shl", opts)
	if err != nil || first.Cached {
		t.Fatalf("first compile: %v cached=%v", err, first.Cached)
	}
	second, err := CompileFile(context.Background(), "/p/main.shl", opts)
	if err != nil || !second.Cached {
		t.Fatalf("second compile: %v cached=%v", err, second.Cached)
	}
	if diff := cmp.Diff(string(first.Output), string(second.Output)); diff != "" {
		t.Fatalf("cached output differs:\n%s", diff)
	}

	opts.Diagnostics = false
	third, err := CompileFile(context.Background(), "/p/main.shl", opts)
	if err != nil || third.Cached {
		t.Fatalf("changed options must miss the cache")
	}
	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	opts.Diagnostics = true
	fourth, err := CompileFile(context.Background(), "/p/main.shl", opts)
	if err != nil || fourth.Cached {
		t.Fatalf("entry survived DropAll")
	}
}

func TestUniqueModuleNames(t *testing.T) {
	used := map[string]int{}
	got := []string{uniqueName(used, "util"), uniqueName(used, "main"), uniqueName(used, "util"), uniqueName(used, "util")}
	if diff := cmp.Diff([]string{"util", "main", "util_2", "util_3"}, got); diff != "" {
		t.Fatalf("names (-want +got):\n%s", diff)
	}
}

func TestParseEmit(t *testing.T) {
	for in, want := range map[string]EmitKind{"": EmitShell, "shell": EmitShell, "AST": EmitAST, "ir": EmitIR} {
		got, err := ParseEmit(in)
		if err != nil || got != want {
			t.Fatalf("ParseEmit(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseEmit("wasm"); err == nil {
		t.Fatalf("want error for unknown kind")
	}
}

func TestTokenizeAndParseFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.shl")
	if err := os.WriteFile(path, []byte("fn main() { let = }\nfn f( {\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	tok, err := Tokenize(path, 0)
	if err != nil || len(tok.Tokens) == 0 {
		t.Fatalf("Tokenize: %v", err)
	}
	parsed, err := Parse(path, 0)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !parsed.Bag.HasErrors() {
		t.Fatalf("want syntax errors")
	}
}
