package symbols

import (
	"errors"
	"fmt"
	"slices"
)

// Validate cross-checks the two arenas: parent and child links agree, every
// name index entry points at a symbol of its own scope, and every symbol is
// listed by the scope it claims. All problems are returned joined.
func (t *Table) Validate() error {
	var errs []error
	report := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	t.Scopes.each(func(i uint32, scope *Scope) {
		id := ScopeID(i)
		if scope.Kind == ScopeInvalid {
			report("scope %d has invalid kind", id)
		}
		if scope.Parent.IsValid() {
			parent := t.Scopes.Get(scope.Parent)
			switch {
			case parent == nil || scope.Parent >= id:
				report("scope %d has invalid parent %d", id, scope.Parent)
			case !slices.Contains(parent.Children, id):
				report("scope %d parent %d missing backlink", id, scope.Parent)
			}
		}
		for name, sym := range scope.NameIndex {
			if !slices.Contains(scope.Symbols, sym) {
				report("scope %d name %d references foreign symbol %d", id, name, sym)
			}
		}
		if len(scope.NameIndex) != len(scope.Symbols) {
			report("scope %d: %d names for %d symbols", id, len(scope.NameIndex), len(scope.Symbols))
		}
	})

	t.Symbols.each(func(i uint32, sym *Symbol) {
		id := SymbolID(i)
		owner := t.Scopes.Get(sym.Scope)
		switch {
		case owner == nil:
			report("symbol %d has invalid scope %d", id, sym.Scope)
		case !slices.Contains(owner.Symbols, id):
			report("symbol %d is missing from scope %d list", id, sym.Scope)
		}
	})

	return errors.Join(errs...)
}
