package symbols

import (
	"shale/internal/source"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid  ScopeKind = iota
	ScopeModule             // top-level declarations of one file
	ScopeFunction           // function body scope
	ScopeBlock              // generic block scope
	ScopeLoop               // body of while/for; target of break/continue
	ScopeTry                // body of try
	ScopeProcess            // code that runs in another process: subshell, background, pipeline stage, sudo block
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeModule:
		return "module"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	case ScopeLoop:
		return "loop"
	case ScopeTry:
		return "try"
	case ScopeProcess:
		return "process"
	default:
		return "invalid"
	}
}

// Scope models a lexical scope. Parents and children are arena indices.
type Scope struct {
	Kind      ScopeKind
	Parent    ScopeID
	Span      source.Span
	NameIndex map[source.StringID]SymbolID
	Symbols   []SymbolID
	Children  []ScopeID
}
