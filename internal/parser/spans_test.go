package parser

import (
	"testing"

	"shale/internal/testkit"
)

func TestSpansNest(t *testing.T) {
	srcs := []string{
		"import \"lib.shl\" as lib\nlet WHO = \"x\"\nfn main() { lib.greet(WHO) }\n",
		"fn main() {\n\tfor x in [\"a\"] { try { run(\"false\") } catch st { print(st) } }\n}\n",
		"fn f(a, b) {\n\tcase a {\n\t\t\"x\" | \"y\" -> print(b)\n\t\t_ -> return 1\n\t}\n}\n",
	}
	for _, src := range srcs {
		r := mustParse(t, src)
		if err := testkit.CheckSpanInvariants(r.b, r.file, r.fs.Get(0)); err != nil {
			t.Fatalf("%q: %v", src, err)
		}
	}
}
