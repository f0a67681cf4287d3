package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"shale/internal/source"
)

// Hints provide optional capacity suggestions for the symbol table arenas.
type Hints struct{ Scopes, Symbols uint }

// Table aggregates symbol-related arenas and shared resources.
type Table struct {
	Scopes  *Scopes
	Symbols *Symbols
	Strings *source.Interner
	modRoot map[string]ScopeID
}

// NewTable builds a fresh table. If strings is nil, a fresh interner is
// allocated.
func NewTable(h Hints, strings *source.Interner) *Table {
	scopeCap, err := safecast.Conv[uint32](h.Scopes)
	if err != nil {
		panic(fmt.Errorf("scope capacity overflow: %w", err))
	}
	symCap, err := safecast.Conv[uint32](h.Symbols)
	if err != nil {
		panic(fmt.Errorf("symbol capacity overflow: %w", err))
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Table{
		Scopes:  NewScopes(scopeCap),
		Symbols: NewSymbols(symCap),
		Strings: strings,
		modRoot: make(map[string]ScopeID),
	}
}

// ModuleRoot returns (and creates if needed) the scope of module moduleKey.
func (t *Table) ModuleRoot(moduleKey string, span source.Span) ScopeID {
	if scope, ok := t.modRoot[moduleKey]; ok {
		return scope
	}
	scope := t.Scopes.New(ScopeModule, NoScopeID, span)
	t.modRoot[moduleKey] = scope
	return scope
}

// LookupIn finds name declared directly in scope.
func (t *Table) LookupIn(scope ScopeID, name source.StringID) (SymbolID, bool) {
	s := t.Scopes.Get(scope)
	if s == nil {
		return NoSymbolID, false
	}
	id, ok := s.NameIndex[name]
	return id, ok
}
