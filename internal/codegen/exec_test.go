package codegen

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"shale/internal/target"
)

type scriptRun struct {
	stdout string
	stderr string
	code   int
}

// shellsFor lists the interpreters a target's output must run under.
func shellsFor(tgt target.Target) []string {
	if tgt == target.Portable {
		return []string{"sh", "bash"}
	}
	return []string{"bash"}
}

func runScript(t *testing.T, shell, script, dir string, env []string) scriptRun {
	t.Helper()
	bin, err := exec.LookPath(shell)
	if err != nil {
		t.Skipf("%s not available: %v", shell, err)
	}
	path := filepath.Join(t.TempDir(), "main.sh")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	cmd := exec.Command(bin, path)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	res := scriptRun{}
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			t.Fatalf("run %s: %v", shell, err)
		}
		res.code = exitErr.ExitCode()
	}
	res.stdout = stdout.String()
	res.stderr = stderr.String()
	return res
}

// sudoStub puts a fake sudo on PATH that prints its arguments instead of
// running anything.
func sudoStub(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	stub := "#!/bin/sh\nprintf '%s|' \"$@\"\necho\n"
	if err := os.WriteFile(filepath.Join(dir, "sudo"), []byte(stub), 0o755); err != nil {
		t.Fatalf("write sudo stub: %v", err)
	}
	return "PATH=" + dir + string(os.PathListSeparator) + os.Getenv("PATH")
}

func realPath(t *testing.T, dir string) string {
	t.Helper()
	p, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("eval symlinks: %v", err)
	}
	return p
}

func TestGeneratedScriptsRun(t *testing.T) {
	tests := []struct {
		name   string
		tgt    target.Target
		src    string
		env    []string
		stub   bool
		stdout string
		want   []string
		stderr string
		code   int
	}{
		{
			name:   "literals never expand",
			tgt:    target.Portable,
			src:    `fn main() { print("$FOO", "*", "~", "a'b") }`,
			env:    []string{"FOO=BAR"},
			stdout: "$FOO * ~ a'b\n",
		},
		{
			name: "one value is one argument",
			tgt:  target.Portable,
			src: `fn main() {
	let name = "my file.txt"
	run("sh", "-c", "echo $#", "x", name, $"{name}.bak")
}`,
			stdout: "2\n",
		},
		{
			name: "failure stops the script",
			tgt:  target.Portable,
			src: `fn main() {
	run("false")
	print("after")
}`,
			stdout: "",
			stderr: "command failed with status 1",
			code:   1,
		},
		{
			name: "allow_fail keeps going",
			tgt:  target.Portable,
			src: `fn main() {
	run("false", allow_fail=true)
	print(status())
}`,
			stdout: "1\n",
		},
		{
			name:   "exit code",
			tgt:    target.Portable,
			src:    `fn main() { exit(3) }`,
			stdout: "",
			code:   3,
		},
		{
			name: "pipeline status is the last stage",
			tgt:  target.Portable,
			src: `fn main() {
	run("false") | run("true")
	print("after")
}`,
			stdout: "after\n",
		},
		{
			name: "failing last stage aborts",
			tgt:  target.Portable,
			src: `fn main() {
	run("true") | run("false")
	print("after")
}`,
			stdout: "",
			code:   1,
		},
		{
			name: "case bracket class",
			tgt:  target.Portable,
			src: `fn main() {
	case "b" {
		glob("[ab]") -> print("class")
		_ -> print("other")
	}
	case "b c" {
		glob("b[ ]*") -> print("space")
		_ -> print("other")
	}
}`,
			stdout: "class\nspace\n",
		},
		{
			name: "sudo separator in every position",
			tgt:  target.Portable,
			stub: true,
			src: `fn main() {
	let dir = "/tmp/x"
	sudo("rm", "-rf", dir, user="root")
	sudo("rm", "-rf", dir) | run("cat")
	print(capture(sudo("rm", "-rf", dir, non_interactive=true)))
}`,
			want: []string{
				"-u|root|--|rm|-rf|/tmp/x|\n",
				"\n--|rm|-rf|/tmp/x|\n",
				"-n|--|rm|-rf|/tmp/x|\n",
			},
		},
		{
			name: "sudo block passes values as arguments",
			tgt:  target.Rich,
			stub: true,
			src: `fn main() {
	let dir = "/tmp/x; echo pwned"
	with sudo(user="root") { run("rm", "-rf", dir) }
}`,
			want: []string{"-u|root|--|/bin/sh|-c|", "|shale|/tmp/x; echo pwned|\n"},
		},
	}
	for _, tt := range tests {
		script := compile(t, tt.tgt, tt.src)
		for _, shell := range shellsFor(tt.tgt) {
			t.Run(tt.name+"/"+shell, func(t *testing.T) {
				env := tt.env
				if tt.stub {
					env = append(env, sudoStub(t))
				}
				got := runScript(t, shell, script, t.TempDir(), env)
				if got.code != tt.code {
					t.Fatalf("exit code = %d, want %d\nstderr: %s\n%s", got.code, tt.code, got.stderr, script)
				}
				if tt.want == nil && got.stdout != tt.stdout {
					t.Fatalf("stdout = %q, want %q\n%s", got.stdout, tt.stdout, script)
				}
				for _, w := range tt.want {
					if !strings.Contains(got.stdout, w) {
						t.Fatalf("stdout %q lacks %q\n%s", got.stdout, w, script)
					}
				}
				if tt.stderr != "" && !strings.Contains(got.stderr, tt.stderr) {
					t.Fatalf("stderr = %q, want %q", got.stderr, tt.stderr)
				}
			})
		}
	}
}

func TestGeneratedScopesRestoreWhenRun(t *testing.T) {
	src := `fn main() {
	with cwd("/"), env(MODE="inner") {
		run("false", allow_fail=true)
		run("pwd", "-P")
		print(env.MODE)
	}
	run("pwd", "-P")
	print(env.MODE)
	for x in ["a", "b"] {
		with cwd("/") {
			if x == "a" { continue }
			print(x)
		}
	}
	run("pwd", "-P")
}`
	for _, tgt := range []target.Target{target.Portable, target.Rich} {
		script := compile(t, tgt, src)
		for _, shell := range shellsFor(tgt) {
			t.Run(tgt.String()+"/"+shell, func(t *testing.T) {
				dir := realPath(t, t.TempDir())
				got := runScript(t, shell, script, dir, []string{"MODE=outer"})
				if got.code != 0 {
					t.Fatalf("exit code = %d\nstderr: %s\n%s", got.code, got.stderr, script)
				}
				want := "/\ninner\n" + dir + "\nouter\nb\n" + dir + "\n"
				if got.stdout != want {
					t.Fatalf("stdout = %q, want %q\n%s", got.stdout, want, script)
				}
			})
		}
	}
}

func TestGeneratedFunctionAbortRestoresCwd(t *testing.T) {
	src := `fn step() {
	with cwd("/") { run("false") }
}
fn main() {
	try { step() } catch st { print(st) }
	run("pwd", "-P")
}`
	script := compile(t, target.Portable, src)
	for _, shell := range shellsFor(target.Portable) {
		t.Run(shell, func(t *testing.T) {
			dir := realPath(t, t.TempDir())
			got := runScript(t, shell, script, dir, nil)
			if got.code != 0 {
				t.Fatalf("exit code = %d\nstderr: %s\n%s", got.code, got.stderr, script)
			}
			if want := "1\n" + dir + "\n"; got.stdout != want {
				t.Fatalf("stdout = %q, want %q\n%s", got.stdout, want, script)
			}
		})
	}
}
