package sema

import (
	"shale/internal/ast"
	"shale/internal/diag"
	"shale/internal/ir"
	"shale/internal/source"
	"shale/internal/symbols"
)

func (l *lowerer) lowerIf(st *ast.Stmt, data *ast.IfStmt) *ir.Stmt {
	out := ir.IfData{}
	cond := l.lowerCond(data.Cond)
	then := l.lowerBlock(data.Then, symbols.ScopeBlock, nil)
	out.Branches = append(out.Branches, ir.CondBlock{Span: l.exprSpan(data.Cond), Cond: cond, Body: then})
	ok := cond != nil
	for _, elif := range data.Elifs {
		c := l.lowerCond(elif.Cond)
		body := l.lowerBlock(elif.Body, symbols.ScopeBlock, nil)
		out.Branches = append(out.Branches, ir.CondBlock{Span: elif.Span, Cond: c, Body: body})
		ok = ok && c != nil
	}
	if data.Else.IsValid() {
		out.Else = l.lowerBlock(data.Else, symbols.ScopeBlock, nil)
	}
	if !ok {
		return nil
	}
	return ir.NewStmt(ir.StmtIf, st.Span, out)
}

func (l *lowerer) lowerWhile(st *ast.Stmt, data *ast.WhileStmt) *ir.Stmt {
	cond := l.lowerCond(data.Cond)
	body := l.lowerBlock(data.Body, symbols.ScopeLoop, nil)
	if cond == nil {
		return nil
	}
	return ir.NewStmt(ir.StmtWhile, st.Span, ir.WhileData{Cond: cond, Body: body})
}

func (l *lowerer) lowerCase(st *ast.Stmt, data *ast.CaseStmt) *ir.Stmt {
	subject := l.lowerExpr(data.Subject)
	if subject != nil && subject.Type != ir.TypeStr && subject.Type != ir.TypeInt {
		l.report(diag.SemaTypeMismatch, l.exprSpan(data.Subject), "case needs a str or int subject, got %s", subject.Type)
		subject = nil
	}
	out := ir.CaseData{Subject: subject}
	for _, arm := range data.Arms {
		a := ir.CaseArm{}
		for _, p := range arm.Patterns {
			if !l.checkText(p.Text, p.Span) {
				continue
			}
			a.Patterns = append(a.Patterns, ir.Pattern{Kind: p.Kind, Text: p.Text})
		}
		a.Body = l.lowerBlock(arm.Body, symbols.ScopeBlock, nil)
		out.Arms = append(out.Arms, a)
	}
	if subject == nil {
		return nil
	}
	return ir.NewStmt(ir.StmtCase, st.Span, out)
}

// lowerFor picks the loop form from the header: range(a, b), lines(s), a
// list literal, args, a list variable or a map with two variables.
func (l *lowerer) lowerFor(st *ast.Stmt, data *ast.ForStmt) *ir.Stmt {
	iterID := l.b.Exprs.Unwrap(data.Iter)
	iterSpan := l.exprSpan(iterID)

	if len(data.Vars) == 2 {
		m := l.lowerExpr(iterID)
		var key, value *ir.Binding
		body := l.lowerBlock(data.Body, symbols.ScopeLoop, func() {
			key = l.declare(data.Vars[0].Name, data.Vars[0].Span, symbols.SymbolLoopVar, ir.TypeStr)
			value = l.declare(data.Vars[1].Name, data.Vars[1].Span, symbols.SymbolLoopVar, ir.TypeStr)
		})
		if m == nil {
			return nil
		}
		if m.Type != ir.TypeMap {
			l.report(diag.SemaTypeMismatch, iterSpan, "two loop variables need a map, got %s", m.Type)
			return nil
		}
		return ir.NewStmt(ir.StmtForMap, st.Span, ir.ForMapData{Key: key, Value: value, Map: m, Body: body})
	}

	v := data.Vars[0]
	if call, ok := l.b.Exprs.Call(iterID); ok {
		if name, isBuiltin := l.builtinCallee(call); isBuiltin && (name == "range" || name == "lines") {
			return l.lowerForBuiltin(st, data, name, iterSpan, call)
		}
	}

	var items []*ir.Expr
	if list, ok := l.b.Exprs.List(iterID); ok {
		// a literal word list is exact on every target
		for _, elem := range list.Elems {
			if e := l.lowerScalar(elem, "a loop item"); e != nil {
				items = append(items, e)
			}
		}
	} else {
		e := l.lowerExpr(iterID)
		if e == nil {
			l.lowerBlock(data.Body, symbols.ScopeLoop, func() {
				l.declare(v.Name, v.Span, symbols.SymbolLoopVar, ir.TypeStr)
			})
			return nil
		}
		switch e.Type {
		case ir.TypeList, ir.TypeArgs:
			items = []*ir.Expr{e}
		case ir.TypeMap:
			l.report(diag.SemaTypeMismatch, iterSpan, "iterate a map with two variables: for key, value in ...")
			return nil
		case ir.TypeStr:
			l.report(diag.SemaTypeMismatch, iterSpan, "a str is not iterable; use lines(...) to iterate its lines")
			return nil
		default:
			l.report(diag.SemaTypeMismatch, iterSpan, "cannot iterate a %s", e.Type)
			return nil
		}
	}
	var loopVar *ir.Binding
	body := l.lowerBlock(data.Body, symbols.ScopeLoop, func() {
		loopVar = l.declare(v.Name, v.Span, symbols.SymbolLoopVar, ir.TypeStr)
	})
	return ir.NewStmt(ir.StmtForEach, st.Span, ir.ForEachData{Var: loopVar, Items: items, Body: body})
}

func (l *lowerer) lowerForBuiltin(st *ast.Stmt, data *ast.ForStmt, name string, sp source.Span, call *ast.ExprCallData) *ir.Stmt {
	v := data.Vars[0]
	args, ok := l.checkBuiltinArgs(name, sp, call, ctxForHeader)
	var loopVar *ir.Binding
	if name == "range" {
		var from, to *ir.Expr
		if ok {
			from = l.lowerTyped(args.pos[0], ir.TypeInt, "range start")
			to = l.lowerTyped(args.pos[1], ir.TypeInt, "range end")
		}
		body := l.lowerBlock(data.Body, symbols.ScopeLoop, func() {
			loopVar = l.declare(v.Name, v.Span, symbols.SymbolLoopVar, ir.TypeInt)
		})
		if from == nil || to == nil {
			return nil
		}
		return ir.NewStmt(ir.StmtForRange, st.Span, ir.ForRangeData{Var: loopVar, From: from, To: to, Body: body})
	}
	var src *ir.Expr
	if ok {
		src = l.lowerTyped(args.pos[0], ir.TypeStr, "lines(...)")
	}
	body := l.lowerBlock(data.Body, symbols.ScopeLoop, func() {
		loopVar = l.declare(v.Name, v.Span, symbols.SymbolLoopVar, ir.TypeStr)
	})
	if src == nil {
		return nil
	}
	return ir.NewStmt(ir.StmtForLines, st.Span, ir.ForLinesData{Var: loopVar, Source: src, Body: body})
}

func (l *lowerer) lowerLoopJump(st *ast.Stmt) *ir.Stmt {
	kind, word := ir.StmtBreak, "break"
	if st.Kind == ast.StmtContinue {
		kind, word = ir.StmtContinue, "continue"
	}
	if !l.res.InLoop() {
		l.report(diag.SemaContextViolation, st.Span, "%s outside of a loop of the same process", word)
		return nil
	}
	return ir.NewStmt(kind, st.Span, nil)
}

func (l *lowerer) lowerReturn(st *ast.Stmt, data *ast.ReturnStmt) *ir.Stmt {
	if l.res.InProcess() {
		l.report(diag.SemaContextViolation, st.Span,
			"return cannot leave a subshell, background job, pipeline stage or sudo block; use exit(...) to end it")
		return nil
	}
	out := ir.ReturnData{}
	if data.Value.IsValid() {
		out.Value = l.lowerTyped(data.Value, ir.TypeInt, "a return status")
		if out.Value == nil {
			return nil
		}
	}
	return ir.NewStmt(ir.StmtReturn, st.Span, out)
}

func (l *lowerer) lowerTry(st *ast.Stmt, data *ast.TryStmt) *ir.Stmt {
	body := l.lowerBlock(data.Body, symbols.ScopeTry, nil)
	var catchVar *ir.Binding
	catch := l.lowerBlock(data.Catch, symbols.ScopeBlock, func() {
		if data.CatchName != source.NoStringID {
			catchVar = l.declare(data.CatchName, data.CatchSpan, symbols.SymbolCatchVar, ir.TypeInt)
		}
	})
	return ir.NewStmt(ir.StmtTry, st.Span, ir.TryData{Body: body, CatchVar: catchVar, Catch: catch})
}

// lowerBackground lowers `background { }` and `background call(...)`.
func (l *lowerer) lowerBackground(sp source.Span, bg *ast.ExprBackgroundData) *ir.Command {
	if bg.Block.IsValid() {
		body := l.lowerBlock(bg.Block, symbols.ScopeProcess, nil)
		return ir.NewCommand(ir.CmdBlock, sp, ir.BlockCmdData{Body: body})
	}
	scope := l.res.Enter(symbols.ScopeProcess, sp)
	defer l.res.Leave(scope)
	if !l.isCommand(bg.Call) {
		l.report(diag.SemaTypeMismatch, l.exprSpan(bg.Call), "background needs a block or a command call")
		return nil
	}
	return l.lowerCommand(bg.Call, ctxBackground)
}

// lowerTyped lowers id and requires type t.
func (l *lowerer) lowerTyped(id ast.ExprID, t ir.Type, what string) *ir.Expr {
	e := l.lowerExpr(id)
	if e == nil {
		return nil
	}
	if e.Type != t {
		l.report(diag.SemaTypeMismatch, l.exprSpan(id), "%s must be a %s, got %s", what, t, e.Type)
		return nil
	}
	return e
}

// lowerScalar lowers a value that becomes exactly one word.
func (l *lowerer) lowerScalar(id ast.ExprID, what string) *ir.Expr {
	e := l.lowerExpr(id)
	if e == nil {
		return nil
	}
	if !e.Type.Scalar() {
		l.report(diag.SemaTypeMismatch, l.exprSpan(id), "%s must be a single value, got %s", what, e.Type)
		return nil
	}
	return e
}

// checkText rejects text a shell word cannot carry.
func (l *lowerer) checkText(s string, sp source.Span) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			l.report(diag.SemaError, sp, "a NUL byte cannot be represented in a shell word")
			return false
		}
	}
	return true
}

func (l *lowerer) checkEnvName(name string, sp source.Span) bool {
	msg, reserved := envNameProblem(name)
	if msg == "" {
		return true
	}
	code := diag.SemaError
	if reserved {
		code = diag.SemaReservedEnvName
	}
	l.report(code, sp, "%s", msg)
	return false
}
