package sema

import (
	"fmt"

	"fortio.org/safecast"

	"shale/internal/ast"
	"shale/internal/builtins"
	"shale/internal/diag"
	"shale/internal/ir"
	"shale/internal/source"
	"shale/internal/symbols"
)

// declareUnits creates one module scope per unit and declares its imports,
// functions and top-level constants. Bodies are lowered afterwards, so
// functions may call each other in any order.
func (l *lowerer) declareUnits() {
	for i, u := range l.in.Units {
		var sp source.Span
		if f := l.b.Files.Get(u.File); f != nil {
			sp = f.Span
		}
		l.units = append(l.units, &unitState{
			index: i,
			unit:  u,
			scope: l.table.ModuleRoot(u.Path, sp),
			root:  i == 0,
		})
	}
	for _, u := range l.units {
		res := symbols.NewResolver(l.table, u.scope, symbols.ResolverOptions{Reporter: l.reporter})
		for _, imp := range u.unit.Imports {
			if imp.Unit < 0 || imp.Unit >= len(l.units) {
				continue
			}
			name := l.b.StringsInterner.Intern(imp.Alias)
			if l.reservedName(imp.Alias, imp.Span) {
				continue
			}
			res.Declare(name, imp.Span, symbols.SymbolModule, 0, toRef(imp.Unit))
		}
		file := l.b.Files.Get(u.unit.File)
		if file == nil {
			continue
		}
		for _, itemID := range file.Items {
			item := l.b.Items.Get(itemID)
			switch item.Kind {
			case ast.ItemFn:
				fn, _ := l.b.Items.Fn(itemID)
				l.declareFunc(res, u, item, fn)
			case ast.ItemLet:
				let, _ := l.b.Items.Let(itemID)
				l.declareGlobal(res, u, item, let)
			}
		}
	}
}

func toRef(i int) uint32 {
	v, err := safecast.Conv[uint32](i)
	if err != nil {
		panic(fmt.Errorf("sema: reference index overflow: %w", err))
	}
	return v
}

// reservedName reports (and diagnoses) a builtin name used as a binding.
func (l *lowerer) reservedName(name string, sp source.Span) bool {
	if !builtins.IsReserved(name) {
		return false
	}
	l.report(diag.SemaBuiltinRedefined, sp, "'%s' is a builtin and cannot be redefined", name)
	return true
}

func (l *lowerer) declareFunc(res *symbols.Resolver, u *unitState, item *ast.Item, fn *ast.FnItem) {
	name := l.name(fn.Name)
	if l.reservedName(name, fn.NameSpan) {
		return
	}
	idx := len(l.funcs)
	if _, ok := res.Declare(fn.Name, fn.NameSpan, symbols.SymbolFunction, 0, toRef(idx)); !ok {
		return
	}
	base := "f_" + sanitize(name)
	if !u.root {
		base = "f_" + sanitize(u.unit.Name) + "_" + sanitize(name)
	}
	l.funcs = append(l.funcs, &funcInfo{
		ir: &ir.Func{
			Index:     idx + 1,
			Name:      qualified(u, name),
			Module:    u.unit.Name,
			ShellName: uniqueName(l.fnNames, base),
			Span:      item.Span,
		},
		item:  fn,
		unit:  u,
		names: make(map[string]int),
	})
}

func qualified(u *unitState, name string) string {
	if u.root {
		return name
	}
	return u.unit.Name + "." + name
}

func (l *lowerer) declareGlobal(res *symbols.Resolver, u *unitState, item *ast.Item, let *ast.LetItem) {
	name := l.name(let.Name)
	if l.reservedName(name, let.NameSpan) {
		return
	}
	idx := len(l.globals)
	if _, ok := res.Declare(let.Name, let.NameSpan, symbols.SymbolGlobal, 0, toRef(idx)); !ok {
		return
	}
	base := "g_" + sanitize(name)
	if !u.root {
		base = "g_" + sanitize(u.unit.Name) + "_" + sanitize(name)
	}
	l.globals = append(l.globals, &globalInfo{
		ir: &ir.Global{Binding: &ir.Binding{
			Name:      qualified(u, name),
			ShellName: uniqueName(l.fnNames, base),
			Kind:      ir.BindGlobal,
			Span:      let.NameSpan,
		}},
		item: let,
		span: item.Span,
		unit: u,
	})
}

// lowerGlobal folds a top-level initializer to a literal. Globals are
// lowered on first use too, so one constant may name another regardless of
// declaration order.
func (l *lowerer) lowerGlobal(g *globalInfo) {
	switch g.state {
	case globalDone:
		return
	case globalLowering:
		l.report(diag.SemaContextViolation, g.ir.Binding.Span, "constant '%s' refers to itself", g.ir.Binding.Name)
		g.state = globalDone
		return
	}
	g.state = globalLowering

	saved := l.saveState()
	l.unit = g.unit
	l.fn = nil
	l.priv = nil
	l.res = symbols.NewResolver(l.table, g.unit.scope, symbols.ResolverOptions{Reporter: l.reporter})
	l.constCtx = true
	value := l.lowerExpr(g.item.Value)
	l.restoreState(saved)

	g.state = globalDone
	if value == nil {
		return
	}
	if !value.IsLiteral() {
		l.report(diag.SemaContextViolation, l.exprSpan(g.item.Value),
			"top-level let '%s' must be initialized with a literal value", g.ir.Binding.Name)
		return
	}
	g.ir.Binding.Type = value.Type
	g.ir.Value = value
}

type lowerState struct {
	unit     *unitState
	fn       *funcInfo
	res      *symbols.Resolver
	priv     []*privLevel
	constCtx bool
}

func (l *lowerer) saveState() lowerState {
	return lowerState{unit: l.unit, fn: l.fn, res: l.res, priv: l.priv, constCtx: l.constCtx}
}

func (l *lowerer) restoreState(s lowerState) {
	l.unit, l.fn, l.res, l.priv, l.constCtx = s.unit, s.fn, s.res, s.priv, s.constCtx
}
