package sema

import (
	"shale/internal/ast"
	"shale/internal/builtins"
	"shale/internal/diag"
	"shale/internal/ir"
	"shale/internal/symbols"
)

func (l *lowerer) lowerStmt(id ast.StmtID) *ir.Stmt {
	st := l.b.Stmts.Get(id)
	if st == nil {
		return nil
	}
	switch st.Kind {
	case ast.StmtBlock:
		return ir.NewStmt(ir.StmtBlock, st.Span, ir.BlockData{Body: l.lowerBlock(id, symbols.ScopeBlock, nil)})
	case ast.StmtLet:
		data, _ := l.b.Stmts.Let(id)
		return l.lowerLet(st, data)
	case ast.StmtSet:
		data, _ := l.b.Stmts.Set(id)
		return l.lowerSet(st, data)
	case ast.StmtExpr:
		data, _ := l.b.Stmts.Expr(id)
		return l.lowerExprStmt(data.Expr)
	case ast.StmtIf:
		data, _ := l.b.Stmts.If(id)
		return l.lowerIf(st, data)
	case ast.StmtCase:
		data, _ := l.b.Stmts.Case(id)
		return l.lowerCase(st, data)
	case ast.StmtWhile:
		data, _ := l.b.Stmts.While(id)
		return l.lowerWhile(st, data)
	case ast.StmtFor:
		data, _ := l.b.Stmts.For(id)
		return l.lowerFor(st, data)
	case ast.StmtBreak, ast.StmtContinue:
		return l.lowerLoopJump(st)
	case ast.StmtReturn:
		data, _ := l.b.Stmts.Return(id)
		return l.lowerReturn(st, data)
	case ast.StmtTry:
		data, _ := l.b.Stmts.Try(id)
		return l.lowerTry(st, data)
	case ast.StmtWith:
		data, _ := l.b.Stmts.With(id)
		return l.lowerWith(st, data.Mods, data.Body)
	case ast.StmtSubshell:
		data, _ := l.b.Stmts.ProcBlock(id)
		cmd := ir.NewCommand(ir.CmdBlock, st.Span, ir.BlockCmdData{Body: l.lowerBlock(data.Body, symbols.ScopeProcess, nil)})
		return ir.NewStmt(ir.StmtCommand, st.Span, ir.CommandData{Cmd: cmd})
	case ast.StmtGroup:
		data, _ := l.b.Stmts.ProcBlock(id)
		return ir.NewStmt(ir.StmtGroup, st.Span, ir.BlockData{Body: l.lowerBlock(data.Body, symbols.ScopeBlock, nil)})
	case ast.StmtUnsafeBlock:
		data, _ := l.b.Stmts.UnsafeBlock(id)
		cmd := ir.NewCommand(ir.CmdRaw, st.Span, ir.RawCmdData{Text: data.Text})
		return ir.NewStmt(ir.StmtCommand, st.Span, ir.CommandData{Cmd: cmd})
	}
	l.report(diag.SemaError, st.Span, "unsupported statement %s", st.Kind)
	return nil
}

func (l *lowerer) lowerLet(st *ast.Stmt, data *ast.LetStmt) *ir.Stmt {
	valueID := l.b.Exprs.Unwrap(data.Value)
	if bg, ok := l.b.Exprs.Background(valueID); ok {
		cmd := l.lowerBackground(l.exprSpan(valueID), bg)
		job := l.declare(data.Name, data.NameSpan, symbols.SymbolLocal, ir.TypeJob)
		if cmd == nil {
			return nil
		}
		return ir.NewStmt(ir.StmtBackground, st.Span, ir.BackgroundData{Job: job, Cmd: cmd})
	}

	// the value is lowered before the name is visible: `let x = x` reads
	// the outer x
	value := l.lowerExpr(data.Value)
	t := ir.TypeStr
	if value != nil {
		t = value.Type
	}
	if value != nil && !l.storable(value, data.Value) {
		value = nil
	}
	b := l.declare(data.Name, data.NameSpan, symbols.SymbolLocal, t)
	if value == nil {
		return nil
	}
	return ir.NewStmt(ir.StmtAssign, st.Span, ir.AssignData{Target: b, Value: value, Declare: true})
}

// storable reports whether v can be kept in a variable.
func (l *lowerer) storable(v *ir.Expr, id ast.ExprID) bool {
	switch v.Type {
	case ir.TypeVoid:
		l.report(diag.SemaTypeMismatch, l.exprSpan(id), "this expression has no value; use capture(...) to keep a command's output")
		return false
	case ir.TypeArgs:
		l.report(diag.SemaTypeMismatch, l.exprSpan(id), "args cannot be stored; index it, iterate it or take len(args)")
		return false
	}
	return true
}

func (l *lowerer) lowerSet(st *ast.Stmt, data *ast.SetStmt) *ir.Stmt {
	name := l.name(data.Name)
	if data.Env {
		value := l.lowerScalar(data.Value, "an environment value")
		if !l.checkEnvName(name, data.NameSpan) || value == nil {
			return nil
		}
		return ir.NewStmt(ir.StmtExport, st.Span, ir.ExportData{Name: name, Value: value})
	}

	if builtins.IsReserved(name) {
		l.report(diag.SemaAssignToConstant, data.NameSpan, "'%s' cannot be assigned", name)
		return nil
	}
	symID, ok := l.res.Lookup(data.Name)
	if !ok {
		l.unknownIdentifier(name, data.NameSpan)
		return nil
	}
	sym := l.table.Symbols.Get(symID)
	switch sym.Kind {
	case symbols.SymbolGlobal:
		diag.ReportError(l.reporter, diag.SemaAssignToConstant, data.NameSpan, "cannot assign to constant '"+name+"'").
			WithNote(sym.Span, "top-level let bindings are constants").
			Emit()
		return nil
	case symbols.SymbolFunction, symbols.SymbolModule:
		l.report(diag.SemaAssignToConstant, data.NameSpan, "cannot assign to %s '%s'", sym.Kind, name)
		return nil
	}
	if l.res.CrossesProcess(symID) {
		diag.ReportError(l.reporter, diag.SemaContextViolation, data.NameSpan,
			"set of '"+name+"' runs in a child process; the change would be lost").
			WithNote(sym.Span, "declared outside the subshell, background, pipeline stage or sudo block").
			Emit()
		return nil
	}
	target := l.lookupBinding(sym)
	if target == nil {
		return nil
	}

	valueID := l.b.Exprs.Unwrap(data.Value)
	if bg, ok := l.b.Exprs.Background(valueID); ok {
		cmd := l.lowerBackground(l.exprSpan(valueID), bg)
		if target.Type != ir.TypeJob {
			l.report(diag.SemaTypeMismatch, l.exprSpan(valueID), "cannot assign a job to '%s' of type %s", name, target.Type)
			return nil
		}
		if cmd == nil {
			return nil
		}
		return ir.NewStmt(ir.StmtBackground, st.Span, ir.BackgroundData{Job: target, Cmd: cmd})
	}

	value := l.lowerExpr(data.Value)
	if value == nil || !l.storable(value, data.Value) {
		return nil
	}
	if value.Type != target.Type {
		diag.ReportError(l.reporter, diag.SemaTypeMismatch, l.exprSpan(data.Value),
			"cannot assign a "+value.Type.String()+" to '"+name+"' of type "+target.Type.String()).
			WithNote(target.Span, "declared here").
			Emit()
		return nil
	}
	return ir.NewStmt(ir.StmtAssign, st.Span, ir.AssignData{Target: target, Value: value})
}

// lowerExprStmt handles an expression in statement position: a command
// that runs with fail-fast, or one of the statement-only builtins.
func (l *lowerer) lowerExprStmt(id ast.ExprID) *ir.Stmt {
	id = l.b.Exprs.Unwrap(id)
	sp := l.exprSpan(id)
	if bg, ok := l.b.Exprs.Background(id); ok {
		cmd := l.lowerBackground(sp, bg)
		if cmd == nil {
			return nil
		}
		return ir.NewStmt(ir.StmtBackground, sp, ir.BackgroundData{Cmd: cmd})
	}
	if call, ok := l.b.Exprs.Call(id); ok {
		if name, isBuiltin := l.builtinCallee(call); isBuiltin {
			switch name {
			case "print":
				return l.lowerPrint(sp, call)
			case "exit":
				return l.lowerExit(sp, call)
			case "exec":
				return l.lowerExec(sp, call)
			}
		}
	}
	if !l.isCommand(id) {
		if e := l.lowerExpr(id); e != nil {
			l.report(diag.SemaTypeMismatch, sp, "the value of this expression is not used")
		}
		return nil
	}
	cmd := l.lowerCommand(id, ctxStmt)
	if cmd == nil {
		return nil
	}
	return ir.NewStmt(ir.StmtCommand, sp, ir.CommandData{Cmd: cmd, AllowFail: cmd.AllowsFailure()})
}
