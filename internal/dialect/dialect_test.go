package dialect

import (
	"strings"
	"testing"

	"shale/internal/source"
)

func fileOf(src string) *source.File {
	fs := source.NewFileSet()
	return fs.Get(fs.AddVirtual("t.shl", []byte(src)))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Kind
		ok   bool
	}{
		{"bash", "fn main() {\n  if $x then\n    echo hi\n  fi\n}\n", Bash, true},
		{"go", "func main() { x := 1 }\n", Go, true},
		{"python", "def main():\n  pass\n", Python, true},
		{"shale", "fn main() { print(\"done\") }\n", Unknown, false},
		{"weak", "fn main() { let echo = 1 }\n", Bash, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := (Classifier{}).Classify(Collect(fileOf(tt.src)))
			if c.Kind != tt.want || Eligible(c) != tt.ok {
				t.Fatalf("got %v eligible=%v (score %d, conf %.2f)", c.Kind, Eligible(c), c.Score, c.Confidence)
			}
		})
	}
}

func TestExplainPointsAtStrongestSignal(t *testing.T) {
	sf := fileOf("fn main() {\n  if $x then\n    echo hi\n  fi\n}\n")
	note, ok := Explain(sf)
	if !ok {
		t.Fatalf("no hint")
	}
	if sf.Text(note.Span) != "$x" {
		t.Fatalf("note span covers %q", sf.Text(note.Span))
	}
	if !strings.HasPrefix(note.Msg, "hint: this reads like bash (shell expansion `$x`).") || !strings.Contains(note.Msg, "env.NAME") {
		t.Fatalf("message = %q", note.Msg)
	}
}

func TestRecordIdentLowercases(t *testing.T) {
	e := NewEvidence()
	RecordIdent(e, "Fi", source.Span{})
	RecordIdent(e, "None", source.Span{})
	hints := e.Hints()
	if len(hints) != 2 || hints[0].Reason != "bash `fi`" || hints[1].Reason != "python `None`" {
		t.Fatalf("hints = %+v", hints)
	}
}
