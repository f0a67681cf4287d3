package codegen

import (
	"strings"

	"shale/internal/ast"
	"shale/internal/ir"
)

func (fe *funcEmitter) block(b *ir.Block) {
	if b == nil || len(b.Stmts) == 0 {
		fe.w.line(":")
		return
	}
	for _, st := range b.Stmts {
		fe.stmt(st)
	}
}

// body emits b one level deeper.
func (fe *funcEmitter) body(b *ir.Block) {
	fe.w.push()
	fe.block(b)
	fe.w.pop()
}

func (fe *funcEmitter) stmt(st *ir.Stmt) {
	switch d := st.Data.(type) {
	case ir.AssignData:
		fe.assign(d.Target, d.Value)
	case ir.ExportData:
		fe.prepare(d.Value)
		fe.w.line("export " + d.Name + "=" + fe.word(d.Value))
	case ir.CommandData:
		fe.commandStmt(st, d)
	case ir.ExecData:
		fe.prepareAll(d.Argv)
		fe.w.line("exec " + fe.argv(d.Argv))
	case ir.PrintData:
		fe.print(d)
	case ir.ExitData:
		if d.Code == nil {
			fe.w.line("exit 0")
			return
		}
		fe.prepare(d.Code)
		fe.w.line("exit " + fe.word(d.Code))
	case ir.IfData:
		fe.ifChain(d.Branches, d.Else)
	case ir.WhileData:
		fe.while(d)
	case ir.ForEachData:
		fe.forEach(d)
	case ir.ForRangeData:
		fe.forRange(d)
	case ir.ForLinesData:
		fe.forLines(d)
	case ir.ForMapData:
		fe.forMap(d)
	case ir.CaseData:
		fe.caseStmt(d)
	case ir.ReturnData:
		fe.ret(d)
	case ir.TryData:
		fe.try(d)
	case ir.EnvScopeData:
		fe.envScope(d)
	case ir.CwdScopeData:
		fe.cwdScope(st, d)
	case ir.RedirectScopeData:
		fe.redirectScope(st, d)
	case ir.LogScopeData:
		fe.logScope(st, d)
	case ir.BlockData:
		if st.Kind == ir.StmtGroup {
			fe.w.line("{")
			fe.body(d.Body)
			fe.w.line("}")
			return
		}
		fe.block(d.Body)
	case ir.BackgroundData:
		fe.background(d)
	default:
		switch st.Kind {
		case ir.StmtBreak:
			fe.w.line(fe.jump("break"))
		case ir.StmtContinue:
			fe.w.line(fe.jump("continue"))
		default:
			defect("statement %s has no emitter", st.Kind)
		}
	}
}

func (fe *funcEmitter) assign(target *ir.Binding, value *ir.Expr) {
	name := target.ShellName
	switch target.Type {
	case ir.TypeList:
		fe.u.d.require(fe.u.d.arrays, "list variable")
		fe.prepare(value)
		fe.w.line(name + "=(" + strings.Join(fe.words(value), " ") + ")")
	case ir.TypeMap:
		fe.u.d.require(fe.u.d.arrays, "map variable")
		fe.prepare(value)
		fe.assignMap(name, value)
	case ir.TypeBool:
		if simpleBool(value) {
			fe.w.line(name + "=" + fe.word(value))
			return
		}
		fe.prepareCond(value)
		if t, ok := fe.hoisted[value]; ok {
			fe.w.line(name + "=${" + t + "}")
			return
		}
		fe.w.line("if " + fe.cond(value) + "; then " + name + "=true; else " + name + "=false; fi")
	default:
		fe.prepare(value)
		fe.w.line(name + "=" + fe.word(value))
	}
}

func (fe *funcEmitter) commandStmt(st *ir.Stmt, d ir.CommandData) {
	fe.prepareCommand(d.Cmd)
	fe.w.line(fe.command(d.Cmd))
	fe.record()
	if !d.AllowFail && !d.Cmd.AllowsFailure() {
		fe.check(st.Span)
	}
}

func (fe *funcEmitter) print(d ir.PrintData) {
	fe.prepareAll(d.Values)
	format := strings.TrimSuffix(strings.Repeat("%s ", len(d.Values)), " ")
	if !d.Opts.NoNewline {
		format += `\n`
	}
	if format == "" {
		fe.w.line(":")
		return
	}
	line := "printf " + quote(format)
	if len(d.Values) > 0 {
		line += " " + fe.argv(d.Values)
	}
	if d.Opts.Stderr {
		line += " >&2"
	}
	fe.w.line(line)
}

// ifChain emits if/elif/else. A branch whose condition needs statements
// cannot be an elif; it nests inside the else instead.
func (fe *funcEmitter) ifChain(branches []ir.CondBlock, els *ir.Block) {
	first := branches[0]
	fe.prepareCond(first.Cond)
	fe.w.line("if " + fe.cond(first.Cond) + "; then")
	fe.body(first.Body)
	rest := branches[1:]
	for len(rest) > 0 && !needsPrelude(rest[0].Cond) {
		fe.w.line("elif " + fe.cond(rest[0].Cond) + "; then")
		fe.body(rest[0].Body)
		rest = rest[1:]
	}
	switch {
	case len(rest) > 0:
		fe.w.line("else")
		fe.w.push()
		fe.ifChain(rest, els)
		fe.w.pop()
	case els != nil:
		fe.w.line("else")
		fe.body(els)
	}
	fe.w.line("fi")
}

func (fe *funcEmitter) loopBody(b *ir.Block) {
	fe.pushFrame(frame{kind: frameLoop})
	fe.body(b)
	fe.popFrame()
}

func (fe *funcEmitter) while(d ir.WhileData) {
	if !needsPrelude(d.Cond) {
		fe.w.line("while " + fe.cond(d.Cond) + "; do")
		fe.loopBody(d.Body)
		fe.w.line("done")
		return
	}
	fe.w.line("while :; do")
	fe.pushFrame(frame{kind: frameLoop})
	fe.w.push()
	fe.prepareCond(d.Cond)
	fe.w.line("if ! " + fe.condOperand(d.Cond) + "; then break; fi")
	fe.block(d.Body)
	fe.w.pop()
	fe.popFrame()
	fe.w.line("done")
}

func (fe *funcEmitter) forEach(d ir.ForEachData) {
	fe.prepareAll(d.Items)
	head := "for " + d.Var.ShellName + " in"
	if len(d.Items) > 0 {
		head += " " + fe.argv(d.Items)
	}
	fe.w.line(head + "; do")
	fe.loopBody(d.Body)
	fe.w.line("done")
}

// forRange counts from From up to, but not including, To. Both bounds are
// evaluated once.
func (fe *funcEmitter) forRange(d ir.ForRangeData) {
	fe.prepare(d.From)
	fe.prepare(d.To)
	counter := fe.temp(localScalar)
	fe.w.line(counter + "=" + fe.word(d.From))
	limit := fe.word(d.To)
	if _, lit := d.To.Lit(); !lit {
		end := fe.temp(localScalar)
		fe.w.line(end + "=" + limit)
		limit = `"${` + end + `}"`
	}
	fe.w.line(`while [ "${` + counter + `}" -lt ` + limit + " ]; do")
	fe.w.push()
	fe.w.line(d.Var.ShellName + "=${" + counter + "}")
	fe.w.line(counter + "=$((" + counter + " + 1))")
	fe.w.pop()
	fe.loopBody(d.Body)
	fe.w.line("done")
}

const linesTerminator = "__SHALE_LINES"

// forLines feeds the value through a heredoc on fd 3 so the loop runs in
// the current shell and keeps the body's stdin.
func (fe *funcEmitter) forLines(d ir.ForLinesData) {
	fe.prepare(d.Source)
	buf := fe.temp(localScalar)
	fe.w.line(buf + "=" + fe.word(d.Source))
	fe.w.line(buf + `=${` + buf + `%"`)
	fe.w.raw(`"}`)
	fe.w.line(`if [ -n "${` + buf + `}" ]; then`)
	fe.w.push()
	v := d.Var.ShellName
	fe.w.line("while IFS= read -r " + v + " <&3; do")
	fe.loopBody(d.Body)
	fe.w.line("done 3<<" + linesTerminator)
	fe.w.raw("${" + buf + "}")
	fe.w.raw(linesTerminator)
	fe.w.pop()
	fe.w.line("fi")
}

func (fe *funcEmitter) forMap(d ir.ForMapData) {
	fe.u.d.require(fe.u.d.arrays, "map iteration")
	fe.prepare(d.Map)
	src := fe.varName(d.Map)
	k := d.Key.ShellName
	fe.w.line("for " + k + ` in "${!` + src + `[@]}"; do`)
	fe.w.push()
	fe.w.line(d.Value.ShellName + "=${" + src + `["${` + k + `}"]}`)
	fe.w.pop()
	fe.loopBody(d.Body)
	fe.w.line("done")
}

func (fe *funcEmitter) caseStmt(d ir.CaseData) {
	fe.prepare(d.Subject)
	fe.w.line("case " + fe.word(d.Subject) + " in")
	for _, arm := range d.Arms {
		pats := make([]string, len(arm.Patterns))
		for i, p := range arm.Patterns {
			switch p.Kind {
			case ast.PatternGlob:
				pats[i] = quoteGlob(p.Text)
			case ast.PatternWildcard:
				pats[i] = "*"
			default:
				pats[i] = quote(p.Text)
			}
		}
		fe.w.line(strings.Join(pats, " | ") + ")")
		fe.w.push()
		fe.block(arm.Body)
		fe.w.line(";;")
		fe.w.pop()
	}
	fe.w.line("esac")
}

func (fe *funcEmitter) ret(d ir.ReturnData) {
	restores := fe.restoresToFunc()
	code := "0"
	if d.Value != nil {
		fe.prepare(d.Value)
		if _, lit := d.Value.Lit(); !lit && len(restores) > 0 {
			fe.materialize(d.Value)
		}
		code = fe.word(d.Value)
	}
	for _, r := range restores {
		fe.w.line(r)
	}
	fe.w.line("return " + code)
}

// try runs the body inside a one-shot loop; an abort stores the status in
// a flag and breaks out of it.
func (fe *funcEmitter) try(d ir.TryData) {
	flag := fe.temp(localScalar)
	fe.w.line(flag + "=0")
	fe.w.line("while :; do")
	fe.pushFrame(frame{kind: frameTry, flag: flag})
	fe.w.push()
	fe.block(d.Body)
	fe.w.line("break")
	fe.w.pop()
	fe.popFrame()
	fe.w.line("done")
	fe.w.line(`if [ "${` + flag + `}" -ne 0 ]; then`)
	fe.w.push()
	if d.CatchVar != nil {
		fe.w.line(d.CatchVar.ShellName + "=${" + flag + "}")
	}
	fe.block(d.Catch)
	fe.w.pop()
	fe.w.line("fi")
}

// scoped runs body with restore registered for every way out.
func (fe *funcEmitter) scoped(restore []string, body *ir.Block) {
	fe.pushFrame(frame{kind: frameScope, restore: restore})
	fe.block(body)
	fe.popFrame()
	for _, r := range restore {
		fe.w.line(r)
	}
}

func (fe *funcEmitter) envScope(d ir.EnvScopeData) {
	for _, v := range d.Vars {
		fe.prepare(v.Value)
	}
	restore := make([]string, len(d.Vars))
	for i, v := range d.Vars {
		set, old := fe.slot(), fe.slot()
		fe.w.line(set + "=${" + v.Name + "+x}")
		fe.w.line(old + "=${" + v.Name + "-}")
		fe.w.line("export " + v.Name + "=" + fe.word(v.Value))
		restore[len(d.Vars)-1-i] = `if [ -n "${` + set + `}" ]; then export ` + v.Name + `="${` + old + `}"; else unset ` + v.Name + "; fi"
	}
	fe.scoped(restore, d.Body)
}

func (fe *funcEmitter) cwdScope(st *ir.Stmt, d ir.CwdScopeData) {
	fe.prepare(d.Path)
	saved := fe.slot()
	fe.u.use(helperCd)
	fe.w.line(saved + "=${PWD}")
	fe.w.line("__shale_cd " + fe.word(d.Path))
	fe.record()
	fe.check(st.Span)
	fe.scoped([]string{`__shale_cd "${` + saved + `}"`}, d.Body)
}

// group emits `{ body; }` with redirections; a failed redirection aborts
// like a failed command.
func (fe *funcEmitter) group(st *ir.Stmt, body *ir.Block, redirs string) {
	fe.w.line("{")
	fe.w.push()
	fe.block(body)
	fe.w.line(":")
	fe.w.pop()
	fe.w.line("}" + redirs + " || { __status=$?; " + fe.abort(st.Span) + " }")
}

func (fe *funcEmitter) redirectScope(st *ir.Stmt, d ir.RedirectScopeData) {
	o := d.Opts
	fe.prepareAll(o.Stdout)
	fe.prepare(o.Stderr)
	fe.prepare(o.Stdin)
	op := " >"
	if o.Append {
		op = " >>"
	}
	var redirs string
	switch {
	case len(o.Stdout) == 1:
		redirs += op + fe.word(o.Stdout[0])
	case len(o.Stdout) > 1:
		redirs += " > >(" + fe.tee(o.Append, o.Stdout) + " >/dev/null)"
	}
	if o.Stderr != nil {
		redirs += " 2" + strings.TrimPrefix(op, " ") + fe.word(o.Stderr)
	}
	if o.Stdin != nil {
		redirs += " <" + fe.word(o.Stdin)
	}
	if o.StderrToStdout {
		redirs += " 2>&1"
	}
	fe.group(st, d.Body, redirs)
}

// logScope copies the block's output into a file while it still reaches
// the terminal.
func (fe *funcEmitter) logScope(st *ir.Stmt, d ir.LogScopeData) {
	fe.prepare(d.Opts.Path)
	fe.group(st, d.Body, " > >("+fe.tee(d.Opts.Append, []*ir.Expr{d.Opts.Path})+")")
}

func (fe *funcEmitter) tee(appendMode bool, files []*ir.Expr) string {
	fe.u.d.require(fe.u.d.procSubst, "process substitution")
	cmd := "tee"
	if appendMode {
		cmd += " -a"
	}
	return cmd + " -- " + fe.argv(files)
}

func (fe *funcEmitter) background(d ir.BackgroundData) {
	var text string
	if b, ok := d.Cmd.Data.(ir.BlockCmdData); ok {
		text = fe.subshell(b.Body)
	} else {
		fe.prepareCommand(d.Cmd)
		text = fe.command(d.Cmd)
	}
	fe.u.jobs = true
	fe.w.line(text + " &")
	if d.Job != nil {
		fe.w.line(d.Job.ShellName + "=$!")
	}
	fe.w.line(`__shale_jobs="${__shale_jobs} $!"`)
}
