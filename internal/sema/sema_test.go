package sema

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"shale/internal/ast"
	"shale/internal/diag"
	"shale/internal/ir"
	"shale/internal/lexer"
	"shale/internal/parser"
	"shale/internal/source"
	"shale/internal/target"
)

type testFile struct {
	name string
	src  string
}

type lowered struct {
	mod *ir.Module
	bag *diag.Bag
}

// lowerFiles parses every file into one builder and lowers them; files[0]
// is the root and imports every other file under its name.
func lowerFiles(t *testing.T, tgt target.Target, files ...testFile) lowered {
	t.Helper()
	fs := source.NewFileSet()
	bag := diag.NewBag(100)
	reporter := diag.BagReporter{Bag: bag}
	b := ast.NewBuilder(ast.Hints{})
	in := Input{Builder: b}
	for i, f := range files {
		fileID := fs.AddVirtual(f.name+".shl", []byte(f.src))
		lx := lexer.New(fs.Get(fileID), lexer.Options{Reporter: reporter})
		res := parser.ParseFile(fs, lx, b, parser.Options{MaxErrors: 1, Reporter: reporter})
		if res.Errors != 0 {
			t.Fatalf("parse %s: %s", f.name, summary(bag))
		}
		u := Unit{Name: f.name, Path: f.name + ".shl", File: res.File}
		if i == 0 {
			for j := 1; j < len(files); j++ {
				u.Imports = append(u.Imports, Import{Alias: files[j].name, Unit: j})
			}
		}
		in.Units = append(in.Units, u)
	}
	res := Lower(in, Options{Target: tgt, Reporter: reporter})
	if res.Errors == 0 && res.Module == nil {
		t.Fatalf("no module and no errors")
	}
	return lowered{mod: res.Module, bag: bag}
}

func lowerSource(t *testing.T, tgt target.Target, src string) lowered {
	t.Helper()
	return lowerFiles(t, tgt, testFile{name: "main", src: src})
}

func mustLower(t *testing.T, tgt target.Target, src string) *ir.Module {
	t.Helper()
	r := lowerSource(t, tgt, src)
	if r.bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", summary(r.bag))
	}
	return r.mod
}

func summary(bag *diag.Bag) string {
	items := bag.Items()
	if len(items) == 0 {
		return "<none>"
	}
	lines := make([]string, len(items))
	for i, d := range items {
		lines[i] = fmt.Sprintf("[%s] %s", d.Code.ID(), d.Message)
	}
	return strings.Join(lines, "; ")
}

func codes(bag *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

// expectCode fails unless code was reported, and returns the first message
// carrying it.
func expectCode(t *testing.T, r lowered, code diag.Code) string {
	t.Helper()
	for _, d := range r.bag.Items() {
		if d.Code == code {
			return d.Message
		}
	}
	t.Fatalf("expected %s, got %s", code.ID(), summary(r.bag))
	return ""
}

func fn(m *ir.Module, name string) *ir.Func {
	for _, f := range m.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func mainBody(t *testing.T, m *ir.Module) []*ir.Stmt {
	t.Helper()
	f := fn(m, "main")
	if f == nil {
		t.Fatalf("no main function")
	}
	return f.Body.Stmts
}

func TestLowerPrintLiteral(t *testing.T) {
	m := mustLower(t, target.Rich, `fn main() { print("$FOO", stderr=true, newline=false) }`)
	body := mainBody(t, m)
	if len(body) != 1 || body[0].Kind != ir.StmtPrint {
		t.Fatalf("expected one Print, got %v", body)
	}
	data := body[0].Data.(ir.PrintData)
	if got := ir.ExprString(data.Values[0]); got != `"$FOO"` {
		t.Fatalf("printed value = %s", got)
	}
	if diff := cmp.Diff(ir.PrintOptions{Stderr: true, NoNewline: true}, data.Opts); diff != "" {
		t.Fatalf("print options (-want +got):\n%s", diff)
	}
}

func TestConstantFolding(t *testing.T) {
	m := mustLower(t, target.Portable, `fn main() {
	let n = 2 * 3 + 1
	let s = $"n={2 + 1}" .. "!"
	let ok = !(2 < 1) && true
	let k = int("42")
	let w = len("héllo")
}
`)
	want := []string{"7", `"n=3!"`, "true", "42", "5"}
	body := mainBody(t, m)
	if len(body) != len(want) {
		t.Fatalf("expected %d statements, got %d", len(want), len(body))
	}
	for i, st := range body {
		v := st.Data.(ir.AssignData).Value
		if !v.IsLiteral() {
			t.Fatalf("statement %d: %s is not folded", i, ir.ExprString(v))
		}
		if got := ir.ExprString(v); got != want[i] {
			t.Fatalf("statement %d = %s, want %s", i, got, want[i])
		}
	}
}

func TestDynamicArithmeticGuardsDivisor(t *testing.T) {
	m := mustLower(t, target.Rich, `fn main() {
	let d = int(capture(run("echo", "2")))
	let q = 10 / d
}`)
	body := mainBody(t, m)
	q := body[1].Data.(ir.AssignData).Value
	if got := ir.ExprString(q); got != "(10 /! v1_d)" {
		t.Fatalf("q = %s", got)
	}
}

func TestDivisionByLiteralZero(t *testing.T) {
	r := lowerSource(t, target.Rich, `fn main() { let x = 1 % 0 }`)
	expectCode(t, r, diag.SemaDivisionByZero)
}

func TestConstantOverflowIsRejected(t *testing.T) {
	for _, expr := range []string{
		"9223372036854775807 + 1",
		"0 - 9223372036854775807 - 2",
		"4611686018427387904 * 2",
		"(0 - 9223372036854775807 - 1) * -1",
		"(0 - 9223372036854775807 - 1) / -1",
		"-(0 - 9223372036854775807 - 1)",
	} {
		r := lowerSource(t, target.Rich, "fn main() { let x = "+expr+" }")
		expectCode(t, r, diag.SemaIntegerOverflow)
	}
}

func TestConstantFoldingAtTheLimits(t *testing.T) {
	m := mustLower(t, target.Rich, `fn main() {
	let a = 9223372036854775807 - 1 + 1
	let b = 0 - 9223372036854775807 - 1
	let c = -4611686018427387904 * 2
}
`)
	want := []string{"9223372036854775807", "-9223372036854775808", "-9223372036854775808"}
	for i, st := range mainBody(t, m) {
		if got := ir.ExprString(st.Data.(ir.AssignData).Value); got != want[i] {
			t.Fatalf("statement %d = %s, want %s", i, got, want[i])
		}
	}
}

func TestUnknownIdentifierSuggests(t *testing.T) {
	r := lowerSource(t, target.Rich, `fn main() { let name = "x"; print(nme) }`)
	msg := expectCode(t, r, diag.SemaUnknownIdentifier)
	if !strings.Contains(msg, "did you mean 'name'") {
		t.Fatalf("message lacks suggestion: %q", msg)
	}
	for _, d := range r.bag.Items() {
		if d.Code != diag.SemaUnknownIdentifier {
			continue
		}
		if len(d.Fixes) != 1 || len(d.Fixes[0].Edits) != 1 || d.Fixes[0].Edits[0].NewText != "name" {
			t.Fatalf("want one replace fix, got %+v", d.Fixes)
		}
		if d.Fixes[0].Edits[0].Span != d.Primary {
			t.Fatalf("fix should replace the identifier itself")
		}
	}
}

func TestOptionTableChecks(t *testing.T) {
	tests := []struct {
		name string
		body string
		code diag.Code
	}{
		{"unknown option", `run("ls", allow_fial=true)`, diag.SemaUnknownOption},
		{"duplicate option", `run("ls", allow_fail=true, allow_fail=false)`, diag.SemaDuplicateOption},
		{"allow_fail outside statement", `let x = capture(run("ls", allow_fail=true))`, diag.SemaContextViolation},
		{"non-literal option", `let u = "root"; sudo("ls", user=u)`, diag.SemaInvalidLiteralType},
		{"wrong literal kind", `sudo("ls", non_interactive="yes")`, diag.SemaInvalidLiteralType},
		{"named arg on user function", `helper(x="1")`, diag.SemaNamedArgOnUserFunction},
		{"arity of user function", `helper()`, diag.SemaArityMismatch},
		{"arity of builtin", `run()`, diag.SemaArityMismatch},
		{"for-header builtin as value", `let r = range(0, 3)`, diag.SemaContextViolation},
		{"print as value", `let p = print("x")`, diag.SemaContextViolation},
		{"bool command word", `run("echo", true)`, diag.SemaTypeMismatch},
		{"reserved env name", `set env.__status = "1"`, diag.SemaReservedEnvName},
		{"bad preserve_env name", `sudo("ls", preserve_env=["A-B"])`, diag.SemaError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "fn helper(x) { print(x) }\nfn main() {\n" + tt.body + "\n}\n"
			r := lowerSource(t, target.Rich, src)
			expectCode(t, r, tt.code)
		})
	}
}

func TestLiteralOptionsFoldConstants(t *testing.T) {
	m := mustLower(t, target.Rich, `
let ADMIN = "root"
fn main() {
	sudo("-rf", user=ADMIN, non_interactive=true, preserve_env=["PATH", "HOME"], allow_fail=true)
}`)
	body := mainBody(t, m)
	cmd := body[0].Data.(ir.CommandData)
	if !cmd.AllowFail {
		t.Fatalf("allow_fail not carried to the statement")
	}
	want := ir.SudoOptions{User: "root", NonInteractive: true, PreserveEnv: []string{"PATH", "HOME"}, AllowFail: true}
	if diff := cmp.Diff(want, cmd.Cmd.Data.(ir.SudoData).Opts); diff != "" {
		t.Fatalf("sudo options (-want +got):\n%s", diff)
	}
}

func TestTargetGating(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"list literal", `let xs = ["a", "b"]`},
		{"map literal", `let m = {"a": "b"}`},
		{"wait_any", `wait_any()`},
		{"log", `with log("/tmp/x.log") { print("x") }`},
		{"multi-sink redirect", `with redirect(stdout=["/tmp/a", "/tmp/b"]) { print("x") }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "fn main() {\n" + tt.body + "\n}\n"
			r := lowerSource(t, target.Portable, src)
			expectCode(t, r, diag.SemaTargetUnsupported)
			if rich := lowerSource(t, target.Rich, src); rich.bag.HasErrors() {
				t.Fatalf("rich target rejected it: %s", summary(rich.bag))
			}
		})
	}
}

func TestForLiteralListIsPortable(t *testing.T) {
	m := mustLower(t, target.Portable, `fn main() { for x in ["a b", "c"] { print(x) } }`)
	body := mainBody(t, m)
	if body[0].Kind != ir.StmtForEach {
		t.Fatalf("got %s, want ForEach", body[0].Kind)
	}
	if n := len(body[0].Data.(ir.ForEachData).Items); n != 2 {
		t.Fatalf("expected 2 items, got %d", n)
	}
}

func TestRecursion(t *testing.T) {
	src := `
fn ping(n) { pong(n) }
fn pong(n) { ping(n) }
fn main() { ping("1") }
`
	r := lowerSource(t, target.Portable, src)
	msg := expectCode(t, r, diag.SemaRecursionUnsupported)
	if !strings.Contains(msg, "ping -> pong -> ping") {
		t.Fatalf("cycle not named: %q", msg)
	}

	m := mustLower(t, target.Rich, src)
	if !fn(m, "ping").Recursive || !fn(m, "pong").Recursive || fn(m, "main").Recursive {
		t.Fatalf("recursive flags wrong")
	}
	call := fn(m, "ping").Body.Stmts[0].Data.(ir.CommandData).Cmd.Data.(ir.CallData)
	if !call.Recursive {
		t.Fatalf("call inside the cycle is not marked recursive")
	}
}

func TestContextRules(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"args outside entry", `fn f() { print(args[0]) }
fn main() { f() }`, diag.SemaContextViolation},
		{"return in subshell", `fn main() { subshell { return 1 } }`, diag.SemaContextViolation},
		{"set across process", `fn main() { let x = "a"; background { set x = "b" } }`, diag.SemaContextViolation},
		{"set of a global", `let G = "a"
fn main() { set G = "b" }`, diag.SemaAssignToConstant},
		{"break outside loop", `fn main() { break }`, diag.SemaContextViolation},
		{"break across process", `fn main() { while true { subshell { break } } }`, diag.SemaContextViolation},
		{"non-literal global", `let G = env.HOME
fn main() { }`, diag.SemaContextViolation},
		{"entry with params", `fn main(a) { }`, diag.SemaArityMismatch},
		{"missing entry", `fn start() { }`, diag.SemaMissingEntry},
		{"builtin redefined", `fn main() { let run = "x" }`, diag.SemaBuiltinRedefined},
		{"call inside sudo block", `fn f() { }
fn main() { with sudo() { f() } }`, diag.SemaContextViolation},
		{"type mismatch on set", `fn main() { let n = 1; set n = "x" }`, diag.SemaTypeMismatch},
		{"unused value", `fn main() { 1 + 2 }`, diag.SemaTypeMismatch},
		{"not callable", `fn main() { let x = "a"; x() }`, diag.SemaNotCallable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectCode(t, lowerSource(t, target.Rich, tt.src), tt.code)
		})
	}
}

func TestAccumulatesIndependentErrors(t *testing.T) {
	r := lowerSource(t, target.Portable, `fn main() {
	print(missing)
	run("ls", allow_fial=true)
	let xs = ["a"]
}`)
	want := []diag.Code{diag.SemaUnknownIdentifier, diag.SemaUnknownOption, diag.SemaTargetUnsupported}
	if diff := cmp.Diff(want, codes(r.bag)); diff != "" {
		t.Fatalf("codes (-want +got):\n%s", diff)
	}
	if r.mod != nil {
		t.Fatalf("module produced despite errors")
	}
}

func TestUnreachableCodeWarnsOnce(t *testing.T) {
	r := lowerSource(t, target.Rich, `fn main() {
	return 0
	print("a")
	print("b")
}`)
	if r.bag.HasErrors() {
		t.Fatalf("unexpected errors: %s", summary(r.bag))
	}
	if diff := cmp.Diff([]diag.Code{diag.SemaUnreachableCode}, codes(r.bag)); diff != "" {
		t.Fatalf("codes (-want +got):\n%s", diff)
	}
}

func TestPrivilegedBlockCapturesOuterBindings(t *testing.T) {
	m := mustLower(t, target.Rich, `
let ROOT = "/srv"
fn main() {
	let dir = "/tmp"
	let unused = "x"
	with sudo(user="root") {
		let inner = "y"
		run("ls", dir, inner, ROOT)
	}
}`)
	body := mainBody(t, m)
	cmd := body[2].Data.(ir.CommandData).Cmd
	if cmd.Kind != ir.CmdPrivileged {
		t.Fatalf("got %s, want Privileged", cmd.Kind)
	}
	if got := ir.CommandString(cmd); got != `privileged[user="root"] [v1_dir] {...}` {
		t.Fatalf("command = %s", got)
	}
	run := cmd.Data.(ir.PrivilegedData).Body.Stmts[1].Data.(ir.CommandData).Cmd
	if got := ir.CommandString(run); got != `run("ls", v1_dir, v1_inner, "/srv")` {
		t.Fatalf("inner run = %s", got)
	}
}

func TestPrivilegedBlockRejectsLists(t *testing.T) {
	r := lowerSource(t, target.Rich, `fn main() {
	let xs = ["a"]
	with sudo() { run("ls", xs) }
}`)
	expectCode(t, r, diag.SemaTargetUnsupported)
}

func TestWithModifiersNestOutermostFirst(t *testing.T) {
	m := mustLower(t, target.Portable, `fn main() {
	with env(MODE="fast"), cwd("/tmp"), redirect(stdout="/tmp/out", append=true) {
		run("make")
	}
}`)
	st := mainBody(t, m)[0]
	var kinds []ir.StmtKind
	for st != nil {
		kinds = append(kinds, st.Kind)
		var inner *ir.Block
		switch d := st.Data.(type) {
		case ir.EnvScopeData:
			inner = d.Body
		case ir.CwdScopeData:
			inner = d.Body
		case ir.RedirectScopeData:
			inner = d.Body
		}
		st = nil
		if inner != nil && len(inner.Stmts) == 1 {
			st = inner.Stmts[0]
		}
	}
	want := []ir.StmtKind{ir.StmtEnvScope, ir.StmtCwdScope, ir.StmtRedirectScope, ir.StmtCommand}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("nesting (-want +got):\n%s", diff)
	}
}

func TestImportedModuleCall(t *testing.T) {
	r := lowerFiles(t, target.Portable,
		testFile{name: "main", src: `fn main() { lib.greet(lib.WHO) }`},
		testFile{name: "lib", src: `let WHO = "world"
fn greet(who) { print(who) }`},
	)
	if r.bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", summary(r.bag))
	}
	body := mainBody(t, r.mod)
	if got := ir.CommandString(body[0].Data.(ir.CommandData).Cmd); got != "call f_lib_greet(g_lib_WHO)" {
		t.Fatalf("call = %s", got)
	}
	if fn(r.mod, "lib.greet") == nil {
		t.Fatalf("imported function not in module")
	}
}

func TestConditionsRecordStatus(t *testing.T) {
	m := mustLower(t, target.Portable, `fn main() {
	if exists("/etc/passwd") && !run("false") {
		print("ok")
	}
}`)
	cond := mainBody(t, m)[0].Data.(ir.IfData).Branches[0].Cond
	want := `(ok(exists("/etc/passwd")) && not(ok(run("false"))))`
	if got := ir.ExprString(cond); got != want {
		t.Fatalf("cond = %s\nwant %s", got, want)
	}
}

func TestBindingShellNames(t *testing.T) {
	m := mustLower(t, target.Rich, `fn main() {
	let x = "a"
	if true { let x = "b"; print(x) }
	for i in range(0, 3) { print(i) }
}`)
	var names []string
	for _, b := range fn(m, "main").Locals {
		names = append(names, b.ShellName)
	}
	if diff := cmp.Diff([]string{"v1_x", "v1_x_2", "v1_i"}, names); diff != "" {
		t.Fatalf("locals (-want +got):\n%s", diff)
	}
}
