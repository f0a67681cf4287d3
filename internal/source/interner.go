package source

import "slices"

// StringID is a handle to an interned string; NoStringID is the empty string.
type StringID uint32

const NoStringID StringID = 0

// Interner deduplicates identifier text for the symbol table.
type Interner struct {
	byID  []string
	index map[string]StringID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": NoStringID},
	}
}

// Intern returns the id of s, adding it on first use.
func (i *Interner) Intern(s string) StringID {
	if id, ok := i.index[s]; ok {
		return id
	}
	id := StringID(len(i.byID)) // #nosec G115 -- bounded by source size
	i.byID = append(i.byID, s)
	i.index[s] = id
	return id
}

// Lookup returns the string for id.
func (i *Interner) Lookup(id StringID) (string, bool) {
	if int(id) >= len(i.byID) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup is Lookup that panics on an unknown id.
func (i *Interner) MustLookup(id StringID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic("invalid string ID")
	}
	return s
}

func (i *Interner) Len() int {
	return len(i.byID)
}

// Snapshot copies all interned strings, index 0 included.
func (i *Interner) Snapshot() []string {
	return slices.Clone(i.byID)
}
