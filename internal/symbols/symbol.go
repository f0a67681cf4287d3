package symbols

import (
	"shale/internal/source"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolFunction
	SymbolModule // import alias
	SymbolGlobal // top-level let
	SymbolLocal  // let inside a function
	SymbolParam
	SymbolLoopVar
	SymbolCatchVar
)

// SymbolFlags encode misc attributes for quick checks.
type SymbolFlags uint8

const (
	SymbolFlagMutable SymbolFlags = 1 << iota
	SymbolFlagImported
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolFunction:
		return "function"
	case SymbolModule:
		return "module"
	case SymbolGlobal:
		return "constant"
	case SymbolLocal:
		return "variable"
	case SymbolParam:
		return "parameter"
	case SymbolLoopVar:
		return "loop variable"
	case SymbolCatchVar:
		return "catch variable"
	default:
		return "invalid"
	}
}

// Symbol describes a named entity available in a scope. Ref is an index
// into whatever table the declaring pass keeps for this kind (function
// index, binding index, module index).
type Symbol struct {
	Name  source.StringID
	Kind  SymbolKind
	Scope ScopeID
	Span  source.Span
	Flags SymbolFlags
	Ref   uint32
}
