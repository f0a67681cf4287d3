package token

import (
	"shale/internal/source"
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

// IsLiteral reports whether the token is an integer, boolean or string literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, StringLit, RawStringLit, InterpStringLit, KwTrue, KwFalse:
		return true
	default:
		return false
	}
}

// IsString reports whether the token is any of the three string forms.
func (t Token) IsString() bool {
	switch t.Kind {
	case StringLit, RawStringLit, InterpStringLit:
		return true
	default:
		return false
	}
}

// IsKeyword reports whether the token is a reserved word.
func (t Token) IsKeyword() bool {
	return t.Kind >= KwFn && t.Kind <= KwUnsafe
}

// IsSeparator reports whether the token ends a statement.
func (t Token) IsSeparator() bool {
	return t.Kind == Newline || t.Kind == Semicolon
}

func (t Token) IsIdent() bool { return t.Kind == Ident }
