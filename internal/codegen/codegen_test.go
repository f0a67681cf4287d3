package codegen

import (
	"errors"
	"strings"
	"testing"

	shlex "github.com/anmitsu/go-shlex"
	"github.com/google/go-cmp/cmp"

	"shale/internal/ast"
	"shale/internal/diag"
	"shale/internal/ir"
	"shale/internal/lexer"
	"shale/internal/parser"
	"shale/internal/sema"
	"shale/internal/source"
	"shale/internal/target"
)

// compile runs the whole front end on one file and emits it with
// diagnostics on.
func compile(t *testing.T, tgt target.Target, src string) string {
	t.Helper()
	return compileWith(t, tgt, src, true)
}

func compileWith(t *testing.T, tgt target.Target, src string, diagnostics bool) string {
	t.Helper()
	fs := source.NewFileSet()
	bag := diag.NewBag(50)
	reporter := diag.BagReporter{Bag: bag}
	b := ast.NewBuilder(ast.Hints{})
	fileID := fs.AddVirtual("main.shl", []byte(src))
	lx := lexer.New(fs.Get(fileID), lexer.Options{Reporter: reporter})
	res := parser.ParseFile(fs, lx, b, parser.Options{MaxErrors: 1, Reporter: reporter})
	if res.Errors != 0 {
		t.Fatalf("parse: %v", bag.Items())
	}
	lowered := sema.Lower(sema.Input{
		Builder: b,
		Units:   []sema.Unit{{Name: "main", Path: "main.shl", File: res.File}},
	}, sema.Options{Target: tgt, Reporter: reporter})
	if bag.HasErrors() || lowered.Module == nil {
		var msgs []string
		for _, d := range bag.Items() {
			msgs = append(msgs, d.Message)
		}
		t.Fatalf("sema: %s", strings.Join(msgs, "; "))
	}
	return string(Emit(lowered.Module, Options{
		Diagnostics: diagnostics,
		Version:     "test",
		Position:    fs.Position,
	}))
}

func lines(out string) []string {
	return strings.Split(strings.TrimSuffix(out, "\n"), "\n")
}

func indexOf(ls []string, pred func(string) bool) int {
	for i, l := range ls {
		if pred(l) {
			return i
		}
	}
	return -1
}

func containsLine(ls []string, want string) int {
	return indexOf(ls, func(l string) bool { return strings.TrimSpace(l) == want })
}

func TestSmallProgramLayout(t *testing.T) {
	out := compileWith(t, target.Rich, `fn main() {
	let who = "world"
	run("echo", $"hello {who}")
}
`, false)
	want := `#!/usr/bin/env bash
# generated by shale test from main.shl; do not edit
__status=0
f_main() {
	local v1_who
	v1_who=world
	echo 'hello '"${v1_who}"
	__status=$?
	[ "$__status" -eq 0 ] || { return "$__status"; }
	return 0
}

f_main "$@"
`
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("output (-want +got):\n%s", diff)
	}
}

func TestStringLiteralsNeverExpand(t *testing.T) {
	out := compile(t, target.Rich, `fn main() { print("$FOO", "a'b", "*") }`)
	if containsLine(lines(out), `printf '%s %s %s\n' '$FOO' 'a'\''b' '*'`) < 0 {
		t.Fatalf("print not strictly quoted:\n%s", out)
	}
}

func TestSudoSeparatorBeforeCommandWords(t *testing.T) {
	out := compile(t, target.Rich, `fn main() {
	let dir = "/tmp/x"
	sudo("rm", "-rf", dir, user="root")
	sudo("rm", "-rf", dir) | run("cat")
	let gone = capture(sudo("rm", "-rf", dir, non_interactive=true))
	print(gone)
}
`)
	seen := 0
	for _, l := range lines(out) {
		if !strings.Contains(l, "sudo") {
			continue
		}
		words, err := shlex.Split(strings.TrimSpace(l), true)
		if err != nil {
			t.Fatalf("split %q: %v", l, err)
		}
		at := indexOf(words, func(w string) bool { return strings.HasSuffix(w, "sudo") })
		sep := indexOf(words, func(w string) bool { return w == "--" })
		if at < 0 || sep < at || sep+2 >= len(words) {
			t.Fatalf("malformed sudo line %q", l)
		}
		if words[sep+1] != "rm" || words[sep+2] != "-rf" {
			t.Fatalf("-- must come right before the command words: %q", words)
		}
		seen++
	}
	if seen != 3 {
		t.Fatalf("want 3 sudo invocations, got %d:\n%s", seen, out)
	}
	if !strings.Contains(out, "sudo -u root -- rm -rf") || !strings.Contains(out, "sudo -n -- rm -rf") {
		t.Fatalf("sudo flags out of order:\n%s", out)
	}
}

func TestFailFastStopsBeforeNextStatement(t *testing.T) {
	out := compile(t, target.Portable, `fn main() {
	run("false")
	print("after")
}
`)
	ls := lines(out)
	cmd := containsLine(ls, "false")
	check := indexOf(ls, func(l string) bool {
		return strings.Contains(l, `[ "$__status" -eq 0 ] || {`) && strings.Contains(l, `return "$__status";`)
	})
	after := indexOf(ls, func(l string) bool { return strings.Contains(l, "after") })
	if cmd < 0 || check != cmd+2 || after != check+1 {
		t.Fatalf("false@%d check@%d after@%d:\n%s", cmd, check, after, out)
	}
	if !strings.Contains(ls[check], "__shale_trap main.shl:2:") {
		t.Fatalf("abort does not report its location: %q", ls[check])
	}
	if !strings.Contains(out, "__shale_trap() {") {
		t.Fatalf("trap helper missing:\n%s", out)
	}
}

func TestAllowFailOmitsCheck(t *testing.T) {
	out := compile(t, target.Portable, `fn main() {
	run("false", allow_fail=true)
	print(status())
}
`)
	ls := lines(out)
	cmd := containsLine(ls, "false")
	if cmd < 0 || strings.TrimSpace(ls[cmd+1]) != "__status=$?" {
		t.Fatalf("status not recorded:\n%s", out)
	}
	if got := strings.TrimSpace(ls[cmd+2]); got != `printf '%s\n' "${__status}"` {
		t.Fatalf("line after allow_fail = %q", got)
	}
	if strings.Contains(out, "__shale_trap") {
		t.Fatalf("no abort path expected:\n%s", out)
	}
}

func TestInterpolationIsOneWord(t *testing.T) {
	out := compile(t, target.Portable, `fn main() {
	let name = "a b*"
	run("touch", $"/tmp/{name} {1 + 2}.log")
}
`)
	ls := lines(out)
	i := indexOf(ls, func(l string) bool { return strings.HasPrefix(strings.TrimSpace(l), "touch ") })
	if i < 0 {
		t.Fatalf("no touch line:\n%s", out)
	}
	words, err := shlex.Split(strings.TrimSpace(ls[i]), true)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("want 2 words, got %q", words)
	}
}

func TestPortableOutputAvoidsBashisms(t *testing.T) {
	out := compile(t, target.Portable, `fn helper(x) {
	return int(x) + 1
}
fn main() {
	let n = 0
	while n < 3 { set n = n + 1 }
	for w in ["a", "b c"] { print(w) }
	for i in range(0, n) { print(i) }
	case "x" {
		"a" | "b" -> print("ab")
		glob("*.txt") -> print("text")
		_ -> print("other")
	}
	try { run("false") } catch st { print(st) }
	with env(MODE="fast"), cwd("/tmp") { run("make") }
	helper("41")
}
`)
	if !strings.HasPrefix(out, "#!/bin/sh\n") {
		t.Fatalf("shebang: %q", lines(out)[0])
	}
	for _, bad := range []string{"local ", "declare ", "[[", "${@:", "wait -n", ">(", "function "} {
		if strings.Contains(out, bad) {
			t.Fatalf("portable output contains %q:\n%s", bad, out)
		}
	}
	for _, want := range []string{
		`for v2_w in a 'b c'; do`,
		`a | b)`,
		`*.txt)`,
		`*)`,
		`__shale_int "${v1_x}"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q:\n%s", want, out)
		}
	}
}

func TestRichDeclaresLocals(t *testing.T) {
	out := compile(t, target.Rich, `fn main() {
	let xs = ["a", "b"]
	let m = {"k": "v"}
	for k, v in m { print(k, v, xs[0]) }
	print(m["k"], len(xs))
}
`)
	ls := lines(out)
	for _, want := range []string{"local -a v1_xs", "local -A v1_m"} {
		if containsLine(ls, want) < 0 {
			t.Fatalf("missing %q:\n%s", want, out)
		}
	}
	for _, want := range []string{
		`v1_xs=(a b)`,
		`v1_m=([k]=v)`,
		`for v1_k in "${!v1_m[@]}"; do`,
		`"${v1_xs[0]}"`,
		`"${v1_m[k]}"`,
		`"$((${#v1_xs[@]}))"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q:\n%s", want, out)
		}
	}
}

func TestDynamicDivisorIsGuarded(t *testing.T) {
	out := compile(t, target.Portable, `fn main() {
	let n = len(args)
	print(10 / n)
}
`)
	ls := lines(out)
	guard := indexOf(ls, func(l string) bool { return strings.Contains(l, `[ "${v1_n}" -ne 0 ] || { __status=1;`) })
	div := indexOf(ls, func(l string) bool { return strings.Contains(l, `"$((10 / ${v1_n}))"`) })
	if guard < 0 || div != guard+1 {
		t.Fatalf("guard@%d division@%d:\n%s", guard, div, out)
	}
}

func TestArithmeticKeepsInnerGrouping(t *testing.T) {
	out := compile(t, target.Portable, `fn main() {
	let n = len(args)
	print((1 + n) * 2)
	print(n - 1)
}
`)
	for _, want := range []string{
		`"$(((1 + ${v1_n}) * 2))"`,
		`"$((${v1_n} - 1))"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q:\n%s", want, out)
		}
	}
}

func TestTryTurnsAbortIntoBreak(t *testing.T) {
	out := compile(t, target.Portable, `fn main() {
	for x in ["a"] {
		try { run("false") } catch st { print(st) }
	}
}
`)
	for _, want := range []string{
		`__t1_1=0`,
		`[ "$__status" -eq 0 ] || { __t1_1=$__status; break 1; }`,
		`if [ "${__t1_1}" -ne 0 ]; then`,
		`v1_st=${__t1_1}`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q:\n%s", want, out)
		}
	}
}

func TestBreakInsideTryCountsWrapper(t *testing.T) {
	out := compile(t, target.Portable, `fn main() {
	while true {
		try { break } catch { print("x") }
	}
}
`)
	if containsLine(lines(out), "break 2") < 0 {
		t.Fatalf("break must leave the try wrapper too:\n%s", out)
	}
}

func TestScopesRestoreOnEveryExit(t *testing.T) {
	out := compile(t, target.Portable, `fn main() {
	for x in ["a"] {
		with env(MODE="x") {
			run("false")
			continue
		}
	}
	return 0
}
`)
	restore := `if [ -n "${__s1_1}" ]; then export MODE="${__s1_2}"; else unset MODE; fi`
	ls := lines(out)
	check := indexOf(ls, func(l string) bool { return strings.Contains(l, `[ "$__status" -eq 0 ]`) })
	if check < 0 || !strings.Contains(ls[check], restore+`; return "$__status"; }`) {
		t.Fatalf("abort does not restore MODE:\n%s", out)
	}
	if containsLine(ls, restore+"; continue") < 0 {
		t.Fatalf("continue does not restore MODE:\n%s", out)
	}
	if containsLine(ls, restore) < 0 {
		t.Fatalf("normal exit does not restore MODE:\n%s", out)
	}
	for _, want := range []string{`__s1_1=${MODE+x}`, `__s1_2=${MODE-}`, `export MODE=x`} {
		if containsLine(ls, want) < 0 {
			t.Fatalf("missing %q:\n%s", want, out)
		}
	}
}

func TestCwdScopeUsesHelper(t *testing.T) {
	out := compile(t, target.Portable, `fn main() {
	with cwd("-") { run("ls") }
}
`)
	for _, want := range []string{"__shale_cd() {", `__s1_1=${PWD}`, `__shale_cd -`, `__shale_cd "${__s1_1}"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q:\n%s", want, out)
		}
	}
}

func TestRedirectAndLogGroups(t *testing.T) {
	out := compile(t, target.Rich, `fn main() {
	with redirect(stdout="/tmp/out", stderr="/tmp/err", append=true) { print("x") }
	with redirect(stdout=["/tmp/a", "/tmp/b"]) { print("y") }
	with log("/tmp/run.log") { print("z") }
}
`)
	for _, want := range []string{
		`} >>/tmp/out 2>>/tmp/err || { __status=$?;`,
		`} > >(tee -- /tmp/a /tmp/b >/dev/null) || {`,
		`} > >(tee -- /tmp/run.log) || {`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q:\n%s", want, out)
		}
	}
}

func TestConditionsKeepShortCircuit(t *testing.T) {
	out := compile(t, target.Portable, `fn main() {
	if exists("/etc/app") && capture(run("cat", "/etc/app")) == "on" {
		print("on")
	}
}
`)
	ls := lines(out)
	test := indexOf(ls, func(l string) bool { return strings.Contains(l, "if { [ -e /etc/app ]; __shale_st; }; then") })
	capt := indexOf(ls, func(l string) bool { return strings.Contains(l, "=$(cat /etc/app)") })
	if test < 0 || capt < test {
		t.Fatalf("capture runs before the existence test:\n%s", out)
	}
	if !strings.Contains(out, "__shale_st() {") {
		t.Fatalf("status helper missing:\n%s", out)
	}
}

func TestElifWithPreludeNestsInElse(t *testing.T) {
	out := compile(t, target.Portable, `fn main() {
	let x = "a"
	if x == "a" {
		print("a")
	} elif capture(run("hostname")) == "b" {
		print("b")
	} else {
		print("c")
	}
}
`)
	if strings.Contains(out, "elif") {
		t.Fatalf("elif with a capture must nest:\n%s", out)
	}
	if !strings.Contains(out, "=$(hostname)") {
		t.Fatalf("capture missing:\n%s", out)
	}
}

func TestForLinesUsesHeredoc(t *testing.T) {
	out := compile(t, target.Portable, `fn main() {
	let text = "a\nb"
	for line in lines(text) { print(line) }
}
`)
	for _, want := range []string{
		"\t__t1_1=${__t1_1%\"\n\"}\n",
		"while IFS= read -r v1_line <&3; do",
		"done 3<<__SHALE_LINES\n${__t1_1}\n__SHALE_LINES\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q:\n%s", want, out)
		}
	}
}

func TestPrivilegedBlockIsFixedText(t *testing.T) {
	out := compile(t, target.Rich, `fn main() {
	let dir = "/srv/it's"
	with sudo(user="root") {
		run("ls", dir)
	}
}
`)
	for _, want := range []string{
		"sudo -u root -- /bin/sh -c '__status=0\n",
		"v1_dir=$1\n",
		`ls "${v1_dir}"`,
		`exit "$__status";`,
		`exit 0' shale "${v1_dir}"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q:\n%s", want, out)
		}
	}
	if strings.Count(out, "/srv/it") != 1 {
		t.Fatalf("value leaked into the privileged body:\n%s", out)
	}
}

func TestBackgroundJobs(t *testing.T) {
	out := compile(t, target.Portable, `fn main() {
	let j = background run("sleep", "1")
	background { print("bg") }
	wait(j)
	wait_all()
}
`)
	for _, want := range []string{
		"__shale_jobs=\n",
		"sleep 1 &",
		"v1_j=$!",
		`__shale_jobs="${__shale_jobs} $!"`,
		`__shale_wait "${v1_j}"`,
		"__shale_wait_all",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q:\n%s", want, out)
		}
	}
}

func TestUnsafeTextIsVerbatim(t *testing.T) {
	out := compile(t, target.Portable, `fn main() {
	unsafe("echo $HOME | tr a-z A-Z")
}
`)
	ls := lines(out)
	i := containsLine(ls, "echo $HOME | tr a-z A-Z")
	if i < 0 || strings.TrimSpace(ls[i+1]) != "__status=$?" {
		t.Fatalf("raw text not emitted verbatim:\n%s", out)
	}
}

func TestHelpersOnlyWhenUsed(t *testing.T) {
	out := compile(t, target.Portable, `fn main() { print("hi") }`)
	if strings.Contains(out, "__shale_") {
		t.Fatalf("unused helpers emitted:\n%s", out)
	}
}

func TestMalformedIRPanicsWithDefect(t *testing.T) {
	var sp source.Span
	xs := &ir.Binding{Name: "xs", ShellName: "v1_xs", Type: ir.TypeList}
	list := ir.New(ir.ExprList, sp, ir.TypeList, ir.ListData{Elems: []*ir.Expr{ir.Str(sp, "a")}})
	main := &ir.Func{
		Index: 1, Name: "main", ShellName: "f_main", Entry: true,
		Locals: []*ir.Binding{xs},
		Body: &ir.Block{Stmts: []*ir.Stmt{
			ir.NewStmt(ir.StmtAssign, sp, ir.AssignData{Target: xs, Value: list, Declare: true}),
		}},
	}
	m := &ir.Module{Name: "main", Path: "main.shl", Target: target.Portable, Entry: main, Funcs: []*ir.Func{main}}

	defer func() {
		r := recover()
		err, ok := r.(error)
		var d Defect
		if !ok || !errors.As(err, &d) {
			t.Fatalf("want a Defect panic, got %v", r)
		}
	}()
	Emit(m, Options{})
	t.Fatalf("Emit returned on malformed IR")
}
