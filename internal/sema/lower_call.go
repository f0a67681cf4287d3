package sema

import (
	"fmt"
	"strconv"

	"shale/internal/ast"
	"shale/internal/builtins"
	"shale/internal/diag"
	"shale/internal/ir"
	"shale/internal/source"
	"shale/internal/symbols"
)

// callCtx is the position a call is written in. Option contexts and
// builtin placement are checked against it.
type callCtx uint8

const (
	ctxValue callCtx = iota
	ctxStmt
	ctxCond
	ctxCapture
	ctxStage
	ctxBackground
	ctxForHeader
	ctxModifier
)

func (c callCtx) placement() builtins.Placement {
	switch c {
	case ctxStmt:
		return builtins.PlaceStatement
	case ctxForHeader:
		return builtins.PlaceForHeader
	}
	return builtins.PlaceAny
}

// callArgs are the checked arguments of one builtin call or modifier.
type callArgs struct {
	pos []ast.ExprID
	// named options in source order
	named []ast.CallArg
	lits  map[string]*ir.Expr
	vals  map[string]*ir.Expr
	lists map[string][]*ir.Expr
}

func (a callArgs) flag(name string) bool {
	lit, ok := a.lits[name].Lit()
	return ok && lit.Bool
}

func (a callArgs) str(name string) (string, bool) {
	lit, ok := a.lits[name].Lit()
	return lit.Str, ok
}

// builtinCallee returns the builtin name a call invokes.
func (l *lowerer) builtinCallee(call *ast.ExprCallData) (string, bool) {
	ident, ok := l.b.Exprs.Ident(l.b.Exprs.Unwrap(call.Callee))
	if !ok {
		return "", false
	}
	name := l.name(ident.Name)
	if _, isBuiltin := builtins.Lookup(name); !isBuiltin {
		return "", false
	}
	return name, true
}

// isCommand reports whether id is a status-producing command: run, sudo, a
// predicate, a wait, a user function call, a pipeline or unsafe text.
func (l *lowerer) isCommand(id ast.ExprID) bool {
	id = l.b.Exprs.Unwrap(id)
	e := l.b.Exprs.Get(id)
	if e == nil {
		return false
	}
	switch e.Kind {
	case ast.ExprPipeline, ast.ExprUnsafe, ast.ExprBlockStage:
		return true
	case ast.ExprCall:
		call, _ := l.b.Exprs.Call(id)
		name, isBuiltin := l.builtinCallee(call)
		if !isBuiltin {
			return true
		}
		switch name {
		case "run", "sudo", "exists", "is_file", "is_dir", "is_exec", "wait", "wait_all", "wait_any":
			return true
		}
	}
	return false
}

func testKind(name string) (ir.TestKind, bool) {
	switch name {
	case "exists":
		return ir.TestExists, true
	case "is_file":
		return ir.TestFile, true
	case "is_dir":
		return ir.TestDir, true
	case "is_exec":
		return ir.TestExec, true
	}
	return 0, false
}

// lowerCommand lowers a command expression written in position ctx.
func (l *lowerer) lowerCommand(id ast.ExprID, ctx callCtx) *ir.Command {
	id = l.b.Exprs.Unwrap(id)
	sp := l.exprSpan(id)
	e := l.b.Exprs.Get(id)
	if e == nil {
		return nil
	}
	switch e.Kind {
	case ast.ExprUnsafe:
		data, _ := l.b.Exprs.Unsafe(id)
		if !l.checkText(data.Text, data.TextSpan) {
			return nil
		}
		return ir.NewCommand(ir.CmdRaw, sp, ir.RawCmdData{Text: data.Text})
	case ast.ExprBlockStage:
		data, _ := l.b.Exprs.BlockStage(id)
		return ir.NewCommand(ir.CmdBlock, sp, ir.BlockCmdData{Body: l.lowerBlock(data.Block, symbols.ScopeProcess, nil)})
	case ast.ExprPipeline:
		data, _ := l.b.Exprs.Pipeline(id)
		return l.lowerPipeline(sp, data)
	case ast.ExprCall:
		call, _ := l.b.Exprs.Call(id)
		if name, isBuiltin := l.builtinCallee(call); isBuiltin {
			return l.lowerBuiltinCommand(name, sp, call, ctx)
		}
		f := l.calleeFunc(call)
		if f == nil {
			return nil
		}
		return l.lowerUserCall(sp, call, f)
	}
	l.report(diag.SemaTypeMismatch, sp, "expected a command")
	return nil
}

func (l *lowerer) lowerPipeline(sp source.Span, data *ast.ExprPipelineData) *ir.Command {
	stages := make([]*ir.Command, 0, len(data.Stages))
	ok := true
	for _, stage := range data.Stages {
		cmd := l.lowerStage(stage)
		if cmd == nil {
			ok = false
			continue
		}
		stages = append(stages, cmd)
	}
	if !ok {
		return nil
	}
	return ir.NewCommand(ir.CmdPipeline, sp, ir.PipelineData{Stages: stages})
}

// lowerStage lowers one pipeline stage; every stage runs in its own process.
func (l *lowerer) lowerStage(id ast.ExprID) *ir.Command {
	id = l.b.Exprs.Unwrap(id)
	if _, isBlock := l.b.Exprs.BlockStage(id); isBlock {
		return l.lowerCommand(id, ctxStage)
	}
	scope := l.res.Enter(symbols.ScopeProcess, l.exprSpan(id))
	defer l.res.Leave(scope)
	if !l.isCommand(id) {
		l.report(diag.SemaTypeMismatch, l.exprSpan(id), "a pipeline stage must be run(...), sudo(...), a function call, unsafe(...) or a block")
		return nil
	}
	return l.lowerCommand(id, ctxStage)
}

func (l *lowerer) lowerBuiltinCommand(name string, sp source.Span, call *ast.ExprCallData, ctx callCtx) *ir.Command {
	args, ok := l.checkBuiltinArgs(name, sp, call, ctx)
	if !ok {
		return nil
	}
	if kind, isTest := testKind(name); isTest {
		path := l.lowerTyped(args.pos[0], ir.TypeStr, name+"(...) path")
		if path == nil {
			return nil
		}
		return ir.NewCommand(ir.CmdTest, sp, ir.TestData{Test: kind, Path: path})
	}
	switch name {
	case "run":
		argv, ok := l.lowerArgv(args.pos)
		if !ok {
			return nil
		}
		return ir.NewCommand(ir.CmdRun, sp, ir.RunData{Argv: argv, Opts: ir.RunOptions{AllowFail: args.flag("allow_fail")}})
	case "sudo":
		argv, ok := l.lowerArgv(args.pos)
		opts, optsOK := l.sudoOptions(args)
		if !ok || !optsOK {
			return nil
		}
		return ir.NewCommand(ir.CmdSudo, sp, ir.SudoData{Argv: argv, Opts: opts})
	case "wait":
		job := l.lowerTyped(args.pos[0], ir.TypeJob, "the argument of wait(...)")
		if job == nil {
			return nil
		}
		return ir.NewCommand(ir.CmdWait, sp, ir.WaitData{Job: job})
	case "wait_all":
		return ir.NewCommand(ir.CmdWaitAll, sp, nil)
	case "wait_any":
		return ir.NewCommand(ir.CmdWaitAny, sp, nil)
	}
	l.report(diag.SemaTypeMismatch, sp, "%s(...) is not a command", name)
	return nil
}

// lowerArgv lowers command words. Lists and args expand to several words.
func (l *lowerer) lowerArgv(ids []ast.ExprID) ([]*ir.Expr, bool) {
	argv := make([]*ir.Expr, 0, len(ids))
	ok := true
	for _, id := range ids {
		e := l.lowerExpr(id)
		if e == nil {
			ok = false
			continue
		}
		switch e.Type {
		case ir.TypeStr, ir.TypeInt, ir.TypeList, ir.TypeArgs:
			argv = append(argv, e)
		case ir.TypeBool:
			l.report(diag.SemaTypeMismatch, e.Span, "a bool is not a command word; use a string such as \"true\"")
			ok = false
		default:
			l.report(diag.SemaTypeMismatch, e.Span, "a %s cannot be passed as a command word", e.Type)
			ok = false
		}
	}
	return argv, ok
}

// calleeFunc resolves the callee of a non-builtin call to a user function.
func (l *lowerer) calleeFunc(call *ast.ExprCallData) *funcInfo {
	calleeID := l.b.Exprs.Unwrap(call.Callee)
	sp := l.exprSpan(calleeID)
	var sym *symbols.Symbol
	if member, ok := l.b.Exprs.Member(calleeID); ok {
		if sym = l.memberSymbol(member); sym == nil {
			return nil
		}
	} else if ident, ok := l.b.Exprs.Ident(calleeID); ok {
		symID, found := l.res.Lookup(ident.Name)
		if !found {
			l.unknownIdentifier(l.name(ident.Name), sp)
			return nil
		}
		sym = l.table.Symbols.Get(symID)
	} else {
		l.report(diag.SemaNotCallable, sp, "only functions can be called")
		return nil
	}
	if sym.Kind != symbols.SymbolFunction {
		diag.ReportError(l.reporter, diag.SemaNotCallable, sp,
			fmt.Sprintf("%s '%s' is not a function", sym.Kind, l.name(sym.Name))).
			WithNote(sym.Span, "declared here").
			Emit()
		return nil
	}
	return l.funcs[sym.Ref]
}

func (l *lowerer) lowerUserCall(sp source.Span, call *ast.ExprCallData, f *funcInfo) *ir.Command {
	if len(l.priv) > 0 {
		l.report(diag.SemaContextViolation, sp, "function '%s' cannot be called inside a sudo block", f.ir.Name)
		return nil
	}
	ok := true
	var pos []ast.ExprID
	for _, a := range call.Args {
		if a.Name != source.NoStringID {
			diag.ReportError(l.reporter, diag.SemaNamedArgOnUserFunction, a.NameSpan,
				fmt.Sprintf("function '%s' takes positional arguments only", f.ir.Name)).
				WithNote(f.item.NameSpan, "declared here").
				Emit()
			ok = false
			continue
		}
		pos = append(pos, a.Value)
	}
	if ok && len(pos) != len(f.item.Params) {
		diag.ReportError(l.reporter, diag.SemaArityMismatch, sp,
			fmt.Sprintf("function '%s' takes %d argument(s), got %d", f.ir.Name, len(f.item.Params), len(pos))).
			WithNote(f.item.NameSpan, "declared here").
			Emit()
		ok = false
	}
	args := make([]*ir.Expr, 0, len(pos))
	for _, id := range pos {
		e := l.lowerScalar(id, "a function argument")
		if e == nil {
			ok = false
			continue
		}
		args = append(args, e)
	}
	if !ok {
		return nil
	}
	cmd := ir.NewCommand(ir.CmdCall, sp, ir.CallData{Func: f.ir.ShellName, Name: f.ir.Name, Args: args})
	if l.fn != nil {
		edge := [2]int{l.fn.ir.Index - 1, f.ir.Index - 1}
		if _, seen := l.edges[edge]; !seen {
			l.edges[edge] = sp
		}
		l.calls = append(l.calls, callRef{caller: edge[0], callee: edge[1], cmd: cmd})
	}
	return cmd
}

// checkBuiltinArgs checks a builtin function call against its option table.
func (l *lowerer) checkBuiltinArgs(name string, sp source.Span, call *ast.ExprCallData, ctx callCtx) (callArgs, bool) {
	b, _ := builtins.Lookup(name)
	return l.checkArgs(b, name+"(...)", sp, call.Args, ctx)
}

// checkArgs validates args against b: capability, placement, known and
// unique options, option contexts, arity and literal option values. All
// problems are reported; ok is false when any was found.
func (l *lowerer) checkArgs(b *builtins.Builtin, what string, sp source.Span, args []ast.CallArg, ctx callCtx) (callArgs, bool) {
	out := callArgs{
		lits:  make(map[string]*ir.Expr),
		vals:  make(map[string]*ir.Expr),
		lists: make(map[string][]*ir.Expr),
	}
	if b.Requires != 0 && !l.requireCap(b.Requires, sp) {
		return out, false
	}
	if b.Place != builtins.PlaceAny && ctx.placement() != b.Place {
		l.report(diag.SemaContextViolation, sp, "%s can only be used %s", what, b.Place)
		return out, false
	}

	ok := true
	seen := make(map[string]source.Span)
	for _, a := range args {
		if a.Name == source.NoStringID {
			out.pos = append(out.pos, a.Value)
			continue
		}
		optName := l.name(a.Name)
		if prev, dup := seen[optName]; dup {
			diag.ReportError(l.reporter, diag.SemaDuplicateOption, a.NameSpan,
				fmt.Sprintf("option '%s' of %s given twice", optName, what)).
				WithNote(prev, "first given here").
				Emit()
			ok = false
			continue
		}
		seen[optName] = a.NameSpan
		if !b.AnyOption {
			opt, known := b.Option(optName)
			if !known {
				l.report(diag.SemaUnknownOption, a.NameSpan, "%s has no option '%s'%s",
					what, optName, builtins.DidYouMean(optName, b.OptionNames()))
				ok = false
				continue
			}
			if opt.Context == builtins.CtxStatement && ctx != ctxStmt {
				l.report(diag.SemaContextViolation, a.NameSpan, "option '%s' of %s is valid %s", optName, what, opt.Context)
				ok = false
				continue
			}
			if !l.lowerOption(&out, what, opt, a) {
				ok = false
				continue
			}
		}
		out.named = append(out.named, a)
	}

	n := len(out.pos)
	switch {
	case n < b.MinArgs && b.MinArgs == b.MaxArgs:
		l.report(diag.SemaArityMismatch, sp, "%s takes %d argument(s), got %d", what, b.MinArgs, n)
		ok = false
	case n < b.MinArgs:
		l.report(diag.SemaArityMismatch, sp, "%s takes at least %d argument(s), got %d", what, b.MinArgs, n)
		ok = false
	case !b.Variadic() && n > b.MaxArgs:
		if b.MinArgs == b.MaxArgs {
			l.report(diag.SemaArityMismatch, sp, "%s takes %d argument(s), got %d", what, b.MaxArgs, n)
		} else {
			l.report(diag.SemaArityMismatch, sp, "%s takes at most %d argument(s), got %d", what, b.MaxArgs, n)
		}
		ok = false
	}
	return out, ok
}

// lowerOption lowers the value of one named option by the kind its table
// entry declares.
func (l *lowerer) lowerOption(out *callArgs, what string, opt builtins.Option, a ast.CallArg) bool {
	valueID := l.b.Exprs.Unwrap(a.Value)
	list, isList := l.b.Exprs.List(valueID)
	switch opt.Kind {
	case builtins.OptLitBool, builtins.OptLitStr:
		want := ir.TypeStr
		if opt.Kind == builtins.OptLitBool {
			want = ir.TypeBool
		}
		e := l.literalOption(a.Value, want, what, opt)
		if e == nil {
			return false
		}
		out.lits[opt.Name] = e
	case builtins.OptLitBoolOrStrList:
		if isList {
			elems := l.literalList(list, what, opt)
			if elems == nil {
				return false
			}
			out.lists[opt.Name] = elems
			return true
		}
		e := l.literalOption(a.Value, ir.TypeBool, what, opt)
		if e == nil {
			return false
		}
		out.lits[opt.Name] = e
	case builtins.OptStrOrLitStrList:
		if isList {
			elems := l.literalList(list, what, opt)
			if elems == nil {
				return false
			}
			out.lists[opt.Name] = elems
			return true
		}
		fallthrough
	case builtins.OptStr:
		e := l.lowerTyped(a.Value, ir.TypeStr, fmt.Sprintf("option '%s' of %s", opt.Name, what))
		if e == nil {
			return false
		}
		out.vals[opt.Name] = e
	}
	return true
}

// literalOption lowers an option value that must be known at compile time.
// Constants are folded into it.
func (l *lowerer) literalOption(id ast.ExprID, want ir.Type, what string, opt builtins.Option) *ir.Expr {
	saved := l.constCtx
	l.constCtx = true
	e := l.lowerExpr(id)
	l.constCtx = saved
	if e == nil {
		return nil
	}
	if !e.IsLiteral() || e.Type != want {
		l.report(diag.SemaInvalidLiteralType, l.exprSpan(id), "option '%s' of %s must be %s", opt.Name, what, opt.Kind)
		return nil
	}
	return e
}

// literalList lowers `[ "a", "b" ]` of an option. The list is spelled out at
// compile time, so it needs no list support from the target.
func (l *lowerer) literalList(list *ast.ExprListData, what string, opt builtins.Option) []*ir.Expr {
	elems := make([]*ir.Expr, 0, len(list.Elems))
	for _, id := range list.Elems {
		e := l.literalOption(id, ir.TypeStr, what, opt)
		if e == nil {
			return nil
		}
		elems = append(elems, e)
	}
	return elems
}

// sudoOptions builds the option record shared by sudo(...) and with sudo(...).
func (l *lowerer) sudoOptions(a callArgs) (ir.SudoOptions, bool) {
	opts := ir.SudoOptions{
		NonInteractive: a.flag("non_interactive"),
		Invalidate:     a.flag("invalidate"),
		AllowFail:      a.flag("allow_fail"),
	}
	ok := true
	if user, has := a.str("user"); has {
		if user == "" {
			l.report(diag.SemaInvalidLiteralType, a.lits["user"].Span, "sudo user cannot be empty")
			ok = false
		}
		opts.User = user
	}
	opts.Prompt, opts.HasPrompt = a.str("prompt")
	if lit, has := a.lits["preserve_env"].Lit(); has {
		opts.PreserveEnvAll = lit.Bool
	}
	for _, e := range a.lists["preserve_env"] {
		name, _ := e.LiteralText()
		if !l.checkEnvName(name, e.Span) {
			ok = false
			continue
		}
		opts.PreserveEnv = append(opts.PreserveEnv, name)
	}
	return opts, ok
}

// lowerCallValue lowers a call in value position.
func (l *lowerer) lowerCallValue(sp source.Span, id ast.ExprID, call *ast.ExprCallData) *ir.Expr {
	name, isBuiltin := l.builtinCallee(call)
	if !isBuiltin {
		if f := l.calleeFunc(call); f != nil {
			l.report(diag.SemaTypeMismatch, sp, "calling '%s' has no value; use capture(%s(...)) for its output", f.ir.Name, f.ir.Name)
		}
		return nil
	}
	if _, isTest := testKind(name); isTest {
		cmd := l.lowerCommand(id, ctxValue)
		if cmd == nil {
			return nil
		}
		return ir.New(ir.ExprSucceeds, sp, ir.TypeBool, ir.SucceedsData{Cmd: cmd})
	}
	switch name {
	case "run", "sudo", "wait", "wait_all", "wait_any":
		l.report(diag.SemaTypeMismatch, sp, "%s(...) has no value; use capture(...) for its output or status() after it", name)
		return nil
	}
	args, ok := l.checkBuiltinArgs(name, sp, call, ctxValue)
	if !ok {
		return nil
	}
	switch name {
	case "capture":
		return l.lowerCapture(sp, args)
	case "status":
		return ir.Status(sp)
	case "int":
		return l.lowerIntConv(sp, args.pos[0])
	case "len":
		return l.lowerLen(sp, args.pos[0])
	}
	l.report(diag.SemaContextViolation, sp, "%s(...) cannot be used as a value", name)
	return nil
}

func (l *lowerer) lowerCapture(sp source.Span, args callArgs) *ir.Expr {
	inner := l.b.Exprs.Unwrap(args.pos[0])
	valid := l.isCommand(inner)
	if call, isCall := l.b.Exprs.Call(inner); isCall && valid {
		if name, isBuiltin := l.builtinCallee(call); isBuiltin && name != "run" && name != "sudo" {
			valid = false
		}
	}
	if !valid {
		l.report(diag.SemaTypeMismatch, l.exprSpan(inner),
			"capture needs run(...), sudo(...), a pipeline, a function call or unsafe(...)")
		return nil
	}
	cmd := l.lowerCommand(inner, ctxCapture)
	if cmd == nil {
		return nil
	}
	return ir.New(ir.ExprCapture, sp, ir.TypeStr, ir.CaptureData{
		Cmd:  cmd,
		Opts: ir.CaptureOptions{AllowFail: args.flag("allow_fail"), Stderr: args.flag("stderr")},
	})
}

func (l *lowerer) lowerIntConv(sp source.Span, id ast.ExprID) *ir.Expr {
	x := l.lowerScalar(id, "the argument of int(...)")
	if x == nil {
		return nil
	}
	switch x.Type {
	case ir.TypeInt:
		return x
	case ir.TypeStr:
	default:
		l.report(diag.SemaTypeMismatch, x.Span, "int(...) converts a str, got %s", x.Type)
		return nil
	}
	if text, isLit := x.LiteralText(); isLit {
		n, err := parseDecimal(text)
		if err != nil {
			l.report(diag.SemaInvalidLiteralType, x.Span, "%q is not a decimal integer", text)
			return nil
		}
		return ir.Int(sp, n)
	}
	return ir.New(ir.ExprIntConv, sp, ir.TypeInt, ir.UnaryData{Operand: x})
}

// parseDecimal accepts what the generated run-time check accepts: an
// optional minus sign followed by decimal digits.
func parseDecimal(s string) (int64, error) {
	digits := s
	if len(digits) > 0 && digits[0] == '-' {
		digits = digits[1:]
	}
	if digits == "" {
		return 0, strconv.ErrSyntax
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.ParseInt(s, 10, 64)
}

func (l *lowerer) lowerLen(sp source.Span, id ast.ExprID) *ir.Expr {
	x := l.lowerExpr(id)
	if x == nil {
		return nil
	}
	switch x.Type {
	case ir.TypeStr:
		if text, isLit := x.LiteralText(); isLit {
			return ir.Int(sp, runeLen(text))
		}
	case ir.TypeList:
		if data, isList := x.Data.(ir.ListData); isList && x.Kind == ir.ExprList {
			return ir.Int(sp, int64(len(data.Elems)))
		}
	case ir.TypeMap:
		if data, isMap := x.Data.(ir.MapData); isMap && x.Kind == ir.ExprMap {
			return ir.Int(sp, int64(len(data.Entries)))
		}
	case ir.TypeArgs:
	default:
		l.report(diag.SemaTypeMismatch, x.Span, "len(...) needs a str, list, map or args, got %s", x.Type)
		return nil
	}
	return ir.New(ir.ExprLen, sp, ir.TypeInt, ir.UnaryData{Operand: x})
}

func (l *lowerer) lowerPrint(sp source.Span, call *ast.ExprCallData) *ir.Stmt {
	args, ok := l.checkBuiltinArgs("print", sp, call, ctxStmt)
	if !ok {
		return nil
	}
	values := make([]*ir.Expr, 0, len(args.pos))
	for _, id := range args.pos {
		e := l.lowerScalar(id, "a printed value")
		if e == nil {
			ok = false
			continue
		}
		values = append(values, e)
	}
	if !ok {
		return nil
	}
	opts := ir.PrintOptions{Stderr: args.flag("stderr")}
	if _, given := args.lits["newline"]; given {
		opts.NoNewline = !args.flag("newline")
	}
	return ir.NewStmt(ir.StmtPrint, sp, ir.PrintData{Values: values, Opts: opts})
}

func (l *lowerer) lowerExit(sp source.Span, call *ast.ExprCallData) *ir.Stmt {
	args, ok := l.checkBuiltinArgs("exit", sp, call, ctxStmt)
	if !ok {
		return nil
	}
	out := ir.ExitData{}
	if len(args.pos) == 1 {
		if out.Code = l.lowerTyped(args.pos[0], ir.TypeInt, "an exit status"); out.Code == nil {
			return nil
		}
		if lit, isLit := out.Code.Lit(); isLit && (lit.Int < 0 || lit.Int > 255) {
			l.report(diag.SemaInvalidLiteralType, out.Code.Span, "exit status %d is out of range 0..255", lit.Int)
			return nil
		}
	}
	return ir.NewStmt(ir.StmtExit, sp, out)
}

func (l *lowerer) lowerExec(sp source.Span, call *ast.ExprCallData) *ir.Stmt {
	args, ok := l.checkBuiltinArgs("exec", sp, call, ctxStmt)
	if !ok {
		return nil
	}
	argv, ok := l.lowerArgv(args.pos)
	if !ok {
		return nil
	}
	return ir.NewStmt(ir.StmtExec, sp, ir.ExecData{Argv: argv})
}
