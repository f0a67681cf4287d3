package fuzztests

import "testing"

// maxFuzzInput caps inputs at 64 KiB.
const maxFuzzInput = 1 << 16

var seedPrograms = []string{
	"",
	"fn main() { }\n",
	"fn main() { print(\"$FOO\", \"a'b\", \"*\") }\n",
	"import \"lib.shl\" as lib\nfn main() { lib.greet(\"x\") }\n",
	"let WHO = \"world\"\nfn main() { print(\"hello {WHO}\") }\n",
	"fn helper(x) {\n\treturn int(x) + 1\n}\nfn main() {\n\tlet n = 0\n\twhile n < 3 { set n = n + 1 }\n\tfor i in range(0, n) { print(i) }\n\thelper(\"41\")\n}\n",
	"fn main() {\n\tcase \"x\" {\n\t\t\"a\" | \"b\" -> print(\"ab\")\n\t\tglob(\"*.txt\") -> print(\"text\")\n\t\t_ -> print(\"other\")\n\t}\n}\n",
	"fn main() {\n\ttry { run(\"false\") } catch st { print(st) }\n}\n",
	"fn main() {\n\twith env(MODE=\"fast\"), cwd(\"/tmp\") { run(\"make\") }\n}\n",
	"fn main() {\n\twith redirect(stdout=\"/tmp/out\", append=true) { print(\"x\") }\n\twith log(\"/tmp/run.log\") { print(\"z\") }\n}\n",
	"fn main() {\n\tlet dir = \"/tmp/x\"\n\tsudo(\"rm\", \"-rf\", dir, user=\"root\")\n\tlet out = capture(run(\"ls\") | run(\"wc\", \"-l\"))\n\tprint(out)\n}\n",
	"fn main() {\n\tlet xs = [\"a\", \"b\"]\n\tlet m = {\"k\": \"v\"}\n\tfor k, v in m { print(k, v, xs[0]) }\n}\n",
	"fn main() {\n\tlet j = background run(\"sleep\", \"1\")\n\twait(j)\n\tunsafe(\"echo raw\")\n}\n",
	"fn main() { if exists(\"/etc/app\") && env.HOME != \"\" { exit(3) } }\n",
	// recovery edge cases
	"fn main() { let = 1 }\nfn other( {\n",
	"fn f() { { { { } } } }",
	"fn main() { print(\"unterminated {\") }",
	"fn main() { case x { } }",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range seedPrograms {
		f.Add([]byte(s))
	}
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return append([]byte(nil), input...)
}
