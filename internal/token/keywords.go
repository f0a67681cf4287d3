package token

var keywords = map[string]Kind{
	"fn":         KwFn,
	"let":        KwLet,
	"set":        KwSet,
	"if":         KwIf,
	"elif":       KwElif,
	"else":       KwElse,
	"case":       KwCase,
	"while":      KwWhile,
	"for":        KwFor,
	"in":         KwIn,
	"break":      KwBreak,
	"continue":   KwContinue,
	"return":     KwReturn,
	"try":        KwTry,
	"catch":      KwCatch,
	"with":       KwWith,
	"import":     KwImport,
	"as":         KwAs,
	"env":        KwEnv,
	"true":       KwTrue,
	"false":      KwFalse,
	"background": KwBackground,
	"subshell":   KwSubshell,
	"group":      KwGroup,
	"unsafe":     KwUnsafe,
}

// LookupKeyword reports whether ident is reserved. Keywords are lowercase only.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}

// IsReserved reports whether ident cannot be used as a binding name.
func IsReserved(ident string) bool {
	_, ok := keywords[ident]
	return ok
}
