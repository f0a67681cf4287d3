package symbols

import (
	"sort"

	"shale/internal/diag"
	"shale/internal/source"
)

// ResolverOptions configures resolver construction.
type ResolverOptions struct {
	Reporter diag.Reporter
}

// Resolver drives scope management and declaration/lookup routines.
type Resolver struct {
	table    *Table
	reporter diag.Reporter
	stack    []ScopeID
}

// NewResolver starts a scope stack at root (usually a module root).
func NewResolver(table *Table, root ScopeID, opts ResolverOptions) *Resolver {
	r := &Resolver{
		table:    table,
		reporter: opts.Reporter,
		stack:    make([]ScopeID, 0, 8),
	}
	if root.IsValid() {
		r.stack = append(r.stack, root)
	}
	return r
}

func (r *Resolver) Table() *Table { return r.table }

// CurrentScope returns the scope at the top of the stack.
func (r *Resolver) CurrentScope() ScopeID {
	if len(r.stack) == 0 {
		return NoScopeID
	}
	return r.stack[len(r.stack)-1]
}

// Enter creates a child scope, pushes it onto the stack, and returns its ID.
func (r *Resolver) Enter(kind ScopeKind, span source.Span) ScopeID {
	scope := r.table.Scopes.New(kind, r.CurrentScope(), span)
	r.stack = append(r.stack, scope)
	return scope
}

// Leave pops the current scope. Unbalanced Enter/Leave is a programming error.
func (r *Resolver) Leave(expected ScopeID) {
	if len(r.stack) == 0 {
		panic("symbols: Leave on an empty scope stack")
	}
	top := r.stack[len(r.stack)-1]
	if expected.IsValid() && top != expected {
		panic("symbols: unbalanced scope stack")
	}
	r.stack = r.stack[:len(r.stack)-1]
}

// Declare installs a symbol into the current scope. A second declaration of
// the same name in the same scope reports SemaDuplicateSymbol; shadowing an
// outer scope is allowed.
func (r *Resolver) Declare(name source.StringID, span source.Span, kind SymbolKind, flags SymbolFlags, ref uint32) (SymbolID, bool) {
	scopeID := r.CurrentScope()
	scope := r.table.Scopes.Get(scopeID)
	if scope == nil {
		return NoSymbolID, false
	}
	if prev, ok := scope.NameIndex[name]; ok {
		if r.reporter != nil {
			prevSym := r.table.Symbols.Get(prev)
			diag.ReportError(r.reporter, diag.SemaDuplicateSymbol, span,
				"'"+r.table.Strings.MustLookup(name)+"' is already declared in this scope").
				WithNote(prevSym.Span, "previous declaration of this "+prevSym.Kind.String()).
				Emit()
		}
		return NoSymbolID, false
	}
	id := r.table.Symbols.New(Symbol{
		Name:  name,
		Kind:  kind,
		Scope: scopeID,
		Span:  span,
		Flags: flags,
		Ref:   ref,
	})
	scope.Symbols = append(scope.Symbols, id)
	scope.NameIndex[name] = id
	return id, true
}

// Lookup walks the scope chain searching for name.
func (r *Resolver) Lookup(name source.StringID) (SymbolID, bool) {
	for scopeID := r.CurrentScope(); scopeID.IsValid(); {
		scope := r.table.Scopes.Get(scopeID)
		if id, ok := scope.NameIndex[name]; ok {
			return id, true
		}
		scopeID = scope.Parent
	}
	return NoSymbolID, false
}

// VisibleNames lists every name reachable from the current scope, sorted.
func (r *Resolver) VisibleNames() []string {
	seen := make(map[string]struct{})
	for scopeID := r.CurrentScope(); scopeID.IsValid(); {
		scope := r.table.Scopes.Get(scopeID)
		for name := range scope.NameIndex {
			seen[r.table.Strings.MustLookup(name)] = struct{}{}
		}
		scopeID = scope.Parent
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// CrossesProcess reports whether a process boundary lies between the
// current scope and the scope that declares sym.
func (r *Resolver) CrossesProcess(sym SymbolID) bool {
	s := r.table.Symbols.Get(sym)
	if s == nil {
		return false
	}
	for scopeID := r.CurrentScope(); scopeID.IsValid() && scopeID != s.Scope; {
		scope := r.table.Scopes.Get(scopeID)
		if scope.Kind == ScopeProcess {
			return true
		}
		scopeID = scope.Parent
	}
	return false
}

// InProcess reports whether the current scope runs in a child process of
// its function.
func (r *Resolver) InProcess() bool {
	for scopeID := r.CurrentScope(); scopeID.IsValid(); {
		scope := r.table.Scopes.Get(scopeID)
		switch scope.Kind {
		case ScopeProcess:
			return true
		case ScopeFunction:
			return false
		}
		scopeID = scope.Parent
	}
	return false
}

// InLoop reports whether break/continue has a loop to leave without
// crossing a function or process boundary.
func (r *Resolver) InLoop() bool {
	for scopeID := r.CurrentScope(); scopeID.IsValid(); {
		scope := r.table.Scopes.Get(scopeID)
		switch scope.Kind {
		case ScopeLoop:
			return true
		case ScopeFunction, ScopeProcess:
			return false
		}
		scopeID = scope.Parent
	}
	return false
}
