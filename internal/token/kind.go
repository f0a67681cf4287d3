package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF
	// Newline separates statements; consecutive blank lines collapse into one.
	Newline

	// Ident represents an identifier token.
	Ident
	KwFn         // fn
	KwLet        // let
	KwSet        // set
	KwIf         // if
	KwElif       // elif
	KwElse       // else
	KwCase       // case
	KwWhile      // while
	KwFor        // for
	KwIn         // in
	KwBreak      // break
	KwContinue   // continue
	KwReturn     // return
	KwTry        // try
	KwCatch      // catch
	KwWith       // with
	KwImport     // import
	KwAs         // as
	KwEnv        // env
	KwTrue       // true
	KwFalse      // false
	KwBackground // background
	KwSubshell   // subshell
	KwGroup      // group
	KwUnsafe     // unsafe

	// IntLit is a decimal integer literal.
	IntLit
	// StringLit is a strict literal "..." (escapes processed, never expanded).
	StringLit
	// RawStringLit is r"..." (no escape processing).
	RawStringLit
	// InterpStringLit is $"..." with {expr} holes.
	InterpStringLit
	// RawBlock is the body of unsafe {{ ... }}; Text covers the whole block.
	RawBlock

	Plus       // +
	Minus      // -
	Star       // *
	Slash      // /
	Percent    // %
	Assign     // =
	EqEq       // ==
	Bang       // !
	BangEq     // !=
	Lt         // <
	LtEq       // <=
	Gt         // >
	GtEq       // >=
	AndAnd     // &&
	OrOr       // ||
	Pipe       // |
	DotDot     // ..
	Arrow      // ->
	Semicolon  // ;
	Comma      // ,
	Dot        // .
	Colon      // :
	LParen     // (
	RParen     // )
	LBrace     // {
	RBrace     // }
	LBracket   // [
	RBracket   // ]
	Underscore // _
)

var kindNames = [...]string{
	Invalid:         "invalid token",
	EOF:             "end of file",
	Newline:         "newline",
	Ident:           "identifier",
	KwFn:            "'fn'",
	KwLet:           "'let'",
	KwSet:           "'set'",
	KwIf:            "'if'",
	KwElif:          "'elif'",
	KwElse:          "'else'",
	KwCase:          "'case'",
	KwWhile:         "'while'",
	KwFor:           "'for'",
	KwIn:            "'in'",
	KwBreak:         "'break'",
	KwContinue:      "'continue'",
	KwReturn:        "'return'",
	KwTry:           "'try'",
	KwCatch:         "'catch'",
	KwWith:          "'with'",
	KwImport:        "'import'",
	KwAs:            "'as'",
	KwEnv:           "'env'",
	KwTrue:          "'true'",
	KwFalse:         "'false'",
	KwBackground:    "'background'",
	KwSubshell:      "'subshell'",
	KwGroup:         "'group'",
	KwUnsafe:        "'unsafe'",
	IntLit:          "integer literal",
	StringLit:       "string literal",
	RawStringLit:    "raw string literal",
	InterpStringLit: "interpolated string",
	RawBlock:        "raw shell block",
	Plus:            "'+'",
	Minus:           "'-'",
	Star:            "'*'",
	Slash:           "'/'",
	Percent:         "'%'",
	Assign:          "'='",
	EqEq:            "'=='",
	Bang:            "'!'",
	BangEq:          "'!='",
	Lt:              "'<'",
	LtEq:            "'<='",
	Gt:              "'>'",
	GtEq:            "'>='",
	AndAnd:          "'&&'",
	OrOr:            "'||'",
	Pipe:            "'|'",
	DotDot:          "'..'",
	Arrow:           "'->'",
	Semicolon:       "';'",
	Comma:           "','",
	Dot:             "'.'",
	Colon:           "':'",
	LParen:          "'('",
	RParen:          "')'",
	LBrace:          "'{'",
	RBrace:          "'}'",
	LBracket:        "'['",
	RBracket:        "']'",
	Underscore:      "'_'",
}

// String returns the human form used in "expected X" messages.
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown token"
}
