package dialect

import (
	"strings"

	"shale/internal/source"
)

type keywordSignal struct {
	Dialect Kind
	Score   int
	Reason  string
	Advice  string
}

const fnAdvice = "declare functions with `fn name(a, b) { ... }`"

// Only identifiers reach this table, so words that are shale keywords
// (elif, in, return) cannot be signals.
var keywordSignals = map[string][]keywordSignal{
	// bash
	"then":     {{Dialect: Bash, Score: 5, Reason: "bash `then`", Advice: "`if` takes a `{ ... }` block, no `then`"}},
	"fi":       {{Dialect: Bash, Score: 6, Reason: "bash `fi`", Advice: "close `if` blocks with `}`"}},
	"do":       {{Dialect: Bash, Score: 3, Reason: "bash `do`", Advice: "loops take a `{ ... }` block, no `do`"}},
	"done":     {{Dialect: Bash, Score: 6, Reason: "bash `done`", Advice: "close loops with `}`"}},
	"esac":     {{Dialect: Bash, Score: 6, Reason: "bash `esac`", Advice: "write `case x { pattern -> ... }`"}},
	"echo":     {{Dialect: Bash, Score: 3, Reason: "bash `echo`", Advice: "use `print(...)`"}},
	"export":   {{Dialect: Bash, Score: 4, Reason: "bash `export`", Advice: "use `set env.NAME = value`"}},
	"local":    {{Dialect: Bash, Score: 4, Reason: "bash `local`", Advice: "use `let name = value`"}},
	"declare":  {{Dialect: Bash, Score: 4, Reason: "bash `declare`", Advice: "use `let name = value`"}},
	"function": {{Dialect: Bash, Score: 4, Reason: "bash `function`", Advice: fnAdvice}},

	// python
	"def":   {{Dialect: Python, Score: 5, Reason: "python `def`", Advice: fnAdvice}},
	"None":  {{Dialect: Python, Score: 4, Reason: "python `None`", Advice: "shale has no null value; use an empty string or list"}},
	"True":  {{Dialect: Python, Score: 3, Reason: "python `True`", Advice: "booleans are `true` and `false`"}},
	"False": {{Dialect: Python, Score: 3, Reason: "python `False`", Advice: "booleans are `true` and `false`"}},
	"pass":  {{Dialect: Python, Score: 3, Reason: "python `pass`", Advice: "an empty block is just `{}`"}},

	// go
	"func":    {{Dialect: Go, Score: 5, Reason: "go `func`", Advice: fnAdvice}},
	"var":     {{Dialect: Go, Score: 3, Reason: "go `var`", Advice: "use `let name = value`"}},
	"defer":   {{Dialect: Go, Score: 5, Reason: "go `defer`", Advice: "use `try { ... } catch st { ... }` for cleanup"}},
	"package": {{Dialect: Go, Score: 4, Reason: "go `package`", Advice: "shale files need no package clause; use `import \"file.shl\"`"}},
}

// RecordIdent collects keyword evidence for an identifier token. A
// capitalized spelling such as "Fi" also counts for its lowercase form.
func RecordIdent(e *Evidence, ident string, span source.Span) {
	if e == nil || ident == "" {
		return
	}
	recordIdentKey(e, ident, span)
	if lower := strings.ToLower(ident); lower != ident && keywordSignals[ident] == nil {
		recordIdentKey(e, lower, span)
	}
}

func recordIdentKey(e *Evidence, ident string, span source.Span) {
	for _, sig := range keywordSignals[ident] {
		e.Add(Hint{
			Dialect: sig.Dialect,
			Score:   sig.Score,
			Reason:  sig.Reason,
			Advice:  sig.Advice,
			Span:    span,
		})
	}
}
