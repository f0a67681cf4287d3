package dialect

import "shale/internal/token"

// ObserveTokenPair records token-pattern evidence using a sliding two-token
// window. Tokens must arrive in source order.
func ObserveTokenPair(e *Evidence, prev, tok token.Token) {
	if e == nil {
		return
	}
	adjacent := prev.Span.File == tok.Span.File && prev.Span.End == tok.Span.Start

	// $name and ${name}
	if prev.Kind == token.Invalid && prev.Text == "$" && adjacent {
		switch tok.Kind {
		case token.Ident, token.LBrace, token.IntLit:
			e.Add(Hint{
				Dialect: Bash,
				Score:   6,
				Reason:  "shell expansion `$" + tok.Text + "`",
				Advice:  "refer to variables by name and to the environment as `env.NAME`",
				Span:    prev.Span.Cover(tok.Span),
			})
		}
	}

	// [[ ... ]]
	if prev.Kind == token.LBracket && tok.Kind == token.LBracket && adjacent {
		e.Add(Hint{
			Dialect: Bash,
			Score:   4,
			Reason:  "bash test `[[`",
			Advice:  "conditions are plain expressions, e.g. `if is_file(p) { ... }`",
			Span:    prev.Span.Cover(tok.Span),
		})
	}

	// name := value
	if prev.Kind == token.Colon && tok.Kind == token.Assign && adjacent {
		e.Add(Hint{
			Dialect: Go,
			Score:   5,
			Reason:  "go short variable declaration `:=`",
			Advice:  "declare with `let name = value`",
			Span:    prev.Span.Cover(tok.Span),
		})
	}
}
