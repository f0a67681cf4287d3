package sema

import (
	"strconv"

	"shale/internal/ast"
	"shale/internal/diag"
	"shale/internal/ir"
	"shale/internal/source"
	"shale/internal/symbols"
)

func (l *lowerer) lowerFunc(f *funcInfo) {
	saved := l.saveState()
	defer l.restoreState(saved)

	l.unit = f.unit
	l.fn = f
	l.priv = nil
	l.constCtx = false
	l.res = symbols.NewResolver(l.table, f.unit.scope, symbols.ResolverOptions{Reporter: l.reporter})

	body := f.item.Body
	scope := l.res.Enter(symbols.ScopeFunction, l.stmtSpan(body))
	for _, p := range f.item.Params {
		if b := l.declare(p.Name, p.Span, symbols.SymbolParam, ir.TypeStr); b != nil {
			f.ir.Params = append(f.ir.Params, b)
		}
	}
	blk, _ := l.b.Stmts.Block(body)
	f.ir.Body = &ir.Block{}
	if blk != nil {
		f.ir.Body.Stmts = l.lowerStmts(blk.Stmts)
	}
	l.res.Leave(scope)
}

// declare binds name in the current scope with a fresh shell name. The
// binding is returned even when the declaration is rejected, so lowering
// can go on without cascading errors.
func (l *lowerer) declare(name source.StringID, sp source.Span, kind symbols.SymbolKind, t ir.Type) *ir.Binding {
	text := l.name(name)
	bk := ir.BindLocal
	if kind == symbols.SymbolParam {
		bk = ir.BindParam
	}
	b := &ir.Binding{
		Name:      text,
		ShellName: uniqueName(l.fn.names, "v"+strconv.Itoa(l.fn.ir.Index)+"_"+sanitize(text)),
		Type:      t,
		Kind:      bk,
		Span:      sp,
	}
	if kind != symbols.SymbolParam {
		l.fn.ir.Locals = append(l.fn.ir.Locals, b)
	}
	if l.reservedName(text, sp) {
		return b
	}
	ref := toRef(len(l.fn.bindings))
	l.fn.bindings = append(l.fn.bindings, b)
	l.res.Declare(name, sp, kind, symbols.SymbolFlagMutable, ref)
	return b
}

// lowerBlock lowers a block statement in a new scope of kind. before runs
// right after the scope is entered (loop and catch variables).
func (l *lowerer) lowerBlock(id ast.StmtID, kind symbols.ScopeKind, before func()) *ir.Block {
	scope := l.res.Enter(kind, l.stmtSpan(id))
	defer l.res.Leave(scope)
	if before != nil {
		before()
	}
	if blk, ok := l.b.Stmts.Block(id); ok {
		return &ir.Block{Stmts: l.lowerStmts(blk.Stmts)}
	}
	// a case arm may be a single statement
	return &ir.Block{Stmts: l.lowerStmts([]ast.StmtID{id})}
}

// lowerStmts lowers a statement list and warns once about statements that
// follow an unconditional jump.
func (l *lowerer) lowerStmts(ids []ast.StmtID) []*ir.Stmt {
	out := make([]*ir.Stmt, 0, len(ids))
	warned := false
	var jump *ir.Stmt
	for _, id := range ids {
		if jump != nil && !warned {
			warned = true
			l.warn(diag.SemaUnreachableCode, l.stmtSpan(id), "unreachable code after %s", jumpWord(jump))
		}
		st := l.lowerStmt(id)
		if st == nil {
			continue
		}
		out = append(out, st)
		if jump == nil && isJump(st) {
			jump = st
		}
	}
	return out
}

func isJump(st *ir.Stmt) bool {
	switch st.Kind {
	case ir.StmtReturn, ir.StmtExit, ir.StmtExec, ir.StmtBreak, ir.StmtContinue:
		return true
	}
	return false
}

func jumpWord(st *ir.Stmt) string {
	switch st.Kind {
	case ir.StmtReturn:
		return "return"
	case ir.StmtExit:
		return "exit()"
	case ir.StmtExec:
		return "exec()"
	case ir.StmtBreak:
		return "break"
	}
	return "continue"
}

// lookupBinding resolves a name to a variable binding of the current
// function. It records captures of privileged blocks.
func (l *lowerer) lookupBinding(sym *symbols.Symbol) *ir.Binding {
	if l.fn == nil || int(sym.Ref) >= len(l.fn.bindings) {
		return nil
	}
	b := l.fn.bindings[sym.Ref]
	for _, lvl := range l.priv {
		if l.scopeWithin(sym.Scope, lvl.scope) || lvl.seen[b] {
			continue
		}
		lvl.seen[b] = true
		lvl.captured = append(lvl.captured, b)
	}
	return b
}

// scopeWithin reports whether scope is ancestor or one of its descendants.
func (l *lowerer) scopeWithin(scope, ancestor symbols.ScopeID) bool {
	for scope.IsValid() {
		if scope == ancestor {
			return true
		}
		s := l.table.Scopes.Get(scope)
		if s == nil {
			return false
		}
		scope = s.Parent
	}
	return false
}

// visibleNames feeds "did you mean" suggestions.
func (l *lowerer) visibleNames() []string {
	if l.res == nil {
		return nil
	}
	return l.res.VisibleNames()
}
