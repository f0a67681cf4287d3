package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"shale/internal/source"
)

// arena is a 1-based slice; slot 0 backs the zero ID.
type arena[T any] struct {
	data []T
}

func newArena[T any](capacity uint32, fallback uint32) arena[T] {
	if capacity == 0 {
		capacity = fallback
	}
	return arena[T]{data: make([]T, 1, capacity+1)}
}

func (a *arena[T]) push(v T) uint32 {
	n, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("symbols: arena overflow: %w", err))
	}
	a.data = append(a.data, v)
	return n
}

func (a *arena[T]) at(i uint32) *T {
	if i == 0 || int(i) >= len(a.data) {
		return nil
	}
	return &a.data[i]
}

// each visits every live slot in allocation order.
func (a *arena[T]) each(fn func(i uint32, v *T)) {
	for i := uint32(1); int(i) < len(a.data); i++ {
		fn(i, &a.data[i])
	}
}

// Scopes holds every scope of a Table.
type Scopes struct{ arena[Scope] }

func NewScopes(capacity uint32) *Scopes {
	return &Scopes{newArena[Scope](capacity, 32)}
}

// New allocates a scope and links it into its parent's children.
func (s *Scopes) New(kind ScopeKind, parent ScopeID, span source.Span) ScopeID {
	id := ScopeID(s.push(Scope{
		Kind:      kind,
		Parent:    parent,
		Span:      span,
		NameIndex: make(map[source.StringID]SymbolID),
	}))
	if p := s.Get(parent); p != nil {
		p.Children = append(p.Children, id)
	}
	return id
}

func (s *Scopes) Get(id ScopeID) *Scope { return s.at(uint32(id)) }
func (s *Scopes) Len() int              { return len(s.data) - 1 }

// Symbols holds every declared binding of a Table.
type Symbols struct{ arena[Symbol] }

func NewSymbols(capacity uint32) *Symbols {
	return &Symbols{newArena[Symbol](capacity, 64)}
}

func (s *Symbols) New(sym Symbol) SymbolID { return SymbolID(s.push(sym)) }
func (s *Symbols) Get(id SymbolID) *Symbol { return s.at(uint32(id)) }
func (s *Symbols) Len() int                { return len(s.data) - 1 }
