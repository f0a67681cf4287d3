package symbols

// ScopeID and SymbolID index the arenas of a Table. Zero is the "none"
// sentinel, so a zero-valued struct never points at a real entry.
type (
	ScopeID  uint32
	SymbolID uint32
)

const (
	NoScopeID  ScopeID  = 0
	NoSymbolID SymbolID = 0
)

func (id ScopeID) IsValid() bool  { return id != NoScopeID }
func (id SymbolID) IsValid() bool { return id != NoSymbolID }
