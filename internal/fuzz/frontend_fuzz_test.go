package fuzztests

import (
	"context"
	"testing"
	"time"

	"shale/internal/ast"
	"shale/internal/diag"
	"shale/internal/lexer"
	"shale/internal/parser"
	"shale/internal/source"
	"shale/internal/testkit"
	"shale/internal/token"
)

// parseTimeout flags an input the parser does not finish in time as a hang.
const parseTimeout = 5 * time.Second

func FuzzLexerTokens(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.shl", clampInput(input)))
		lx := lexer.New(file, lexer.Options{Reporter: diag.BagReporter{Bag: diag.NewBag(64)}})
		// every token consumes at least one byte, plus EOF
		for i := 0; i <= len(file.Content)+1; i++ {
			if lx.Next().Kind == token.EOF {
				return
			}
		}
		t.Fatalf("lexer did not reach EOF on %d bytes", len(file.Content))
	})
}

func FuzzParserNoHang(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		ctx, cancel := context.WithTimeout(context.Background(), parseTimeout)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			fs := source.NewFileSet()
			fileID := fs.AddVirtual("fuzz.shl", input)
			bag := diag.NewBag(128)
			reporter := diag.BagReporter{Bag: bag}
			lx := lexer.New(fs.Get(fileID), lexer.Options{Reporter: reporter})
			b := ast.NewBuilder(ast.Hints{})
			res := parser.ParseFile(fs, lx, b, parser.Options{Reporter: reporter, MaxErrors: 128})
			if bag.HasErrors() {
				done <- nil
				return
			}
			done <- testkit.CheckSpanInvariants(b, res.File, fs.Get(fileID))
		}()

		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("span invariant broken: %v\ninput: %q", err, truncateForLog(input, 200))
			}
		case <-ctx.Done():
			t.Fatalf("parser hang: no result after %v\ninput (%d bytes): %q",
				parseTimeout, len(input), truncateForLog(input, 200))
		}
	})
}

func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(input[:maxLen:maxLen], "..."...)
}
