package sema

import (
	"shale/internal/ast"
	"shale/internal/builtins"
	"shale/internal/diag"
	"shale/internal/ir"
	"shale/internal/symbols"
	"shale/internal/target"
)

// lowerWith lowers `with m1(...), m2(...) { body }`. The first modifier is
// the outermost; arguments of inner modifiers are evaluated inside the outer
// ones.
func (l *lowerer) lowerWith(st *ast.Stmt, mods []ast.Modifier, body ast.StmtID) *ir.Stmt {
	if len(mods) == 0 {
		return ir.NewStmt(ir.StmtBlock, st.Span, ir.BlockData{Body: l.lowerBlock(body, symbols.ScopeBlock, nil)})
	}
	m := mods[0]
	rest := func() *ir.Block {
		if len(mods) == 1 {
			return l.lowerBlock(body, symbols.ScopeBlock, nil)
		}
		inner := l.lowerWith(st, mods[1:], body)
		if inner == nil {
			return &ir.Block{}
		}
		return &ir.Block{Stmts: []*ir.Stmt{inner}}
	}

	name := l.name(m.Name)
	b, known := builtins.LookupModifier(name)
	if !known {
		l.report(diag.SemaUnknownIdentifier, m.NameSpan, "unknown modifier '%s'%s",
			name, builtins.DidYouMean(name, builtins.ModifierNames()))
		rest()
		return nil
	}
	if name == "sudo" {
		return l.lowerPrivileged(st, m, b, rest)
	}

	args, ok := l.checkArgs(b, name+"(...)", m.Span, m.Args, ctxModifier)
	var out *ir.Stmt
	switch name {
	case "env":
		out = l.lowerEnvScope(st, m, args, ok, rest)
	case "cwd":
		var path *ir.Expr
		if ok {
			path = l.lowerTyped(args.pos[0], ir.TypeStr, "the directory of cwd(...)")
		}
		inner := rest()
		if path != nil {
			out = ir.NewStmt(ir.StmtCwdScope, st.Span, ir.CwdScopeData{Path: path, Body: inner})
		}
	case "redirect":
		var opts ir.RedirectOptions
		if ok {
			opts, ok = l.redirectOptions(m, args)
		}
		inner := rest()
		if ok {
			out = ir.NewStmt(ir.StmtRedirectScope, st.Span, ir.RedirectScopeData{Opts: opts, Body: inner})
		}
	case "log":
		var path *ir.Expr
		if ok {
			path = l.lowerTyped(args.pos[0], ir.TypeStr, "the file of log(...)")
		}
		inner := rest()
		if path != nil {
			out = ir.NewStmt(ir.StmtLogScope, st.Span, ir.LogScopeData{
				Opts: ir.LogOptions{Path: path, Append: args.flag("append")},
				Body: inner,
			})
		}
	}
	return out
}

func (l *lowerer) lowerEnvScope(st *ast.Stmt, m ast.Modifier, args callArgs, ok bool, rest func() *ir.Block) *ir.Stmt {
	if ok && len(args.named) == 0 {
		l.report(diag.SemaArityMismatch, m.Span, "env(...) needs at least one NAME=value")
		ok = false
	}
	var vars []ir.EnvAssign
	for _, a := range args.named {
		name := l.name(a.Name)
		value := l.lowerScalar(a.Value, "an environment value")
		if !l.checkEnvName(name, a.NameSpan) || value == nil {
			ok = false
			continue
		}
		vars = append(vars, ir.EnvAssign{Name: name, Value: value})
	}
	inner := rest()
	if !ok {
		return nil
	}
	return ir.NewStmt(ir.StmtEnvScope, st.Span, ir.EnvScopeData{Vars: vars, Body: inner})
}

func (l *lowerer) redirectOptions(m ast.Modifier, args callArgs) (ir.RedirectOptions, bool) {
	opts := ir.RedirectOptions{
		Stderr:         args.vals["stderr"],
		Stdin:          args.vals["stdin"],
		Append:         args.flag("append"),
		StderrToStdout: args.flag("stderr_to_stdout"),
	}
	if sinks, isList := args.lists["stdout"]; isList {
		switch {
		case len(sinks) == 0:
			l.report(diag.SemaArityMismatch, m.Span, "redirect(stdout=[...]) needs at least one file")
			return opts, false
		case len(sinks) > 1 && !l.requireCap(target.CapMultiSinkRedirect, sinks[1].Span):
			return opts, false
		}
		opts.Stdout = sinks
	} else if out := args.vals["stdout"]; out != nil {
		opts.Stdout = []*ir.Expr{out}
	}
	if opts.Stderr != nil && opts.StderrToStdout {
		l.report(diag.SemaContextViolation, m.Span, "redirect(...) cannot take both stderr and stderr_to_stdout")
		return opts, false
	}
	if len(opts.Stdout) == 0 && opts.Stderr == nil && opts.Stdin == nil && !opts.StderrToStdout {
		l.report(diag.SemaError, m.Span, "redirect(...) needs at least one of stdout, stderr, stdin or stderr_to_stdout")
		return opts, false
	}
	return opts, true
}

// lowerPrivileged lowers `with sudo(...) { }`. The body runs in a nested
// /bin/sh as another user; every outer binding it reads is recorded so
// codegen can pass it as a positional parameter.
func (l *lowerer) lowerPrivileged(st *ast.Stmt, m ast.Modifier, b *builtins.Builtin, rest func() *ir.Block) *ir.Stmt {
	args, ok := l.checkArgs(b, "sudo(...)", m.Span, m.Args, ctxModifier)
	var opts ir.SudoOptions
	if ok {
		opts, ok = l.sudoOptions(args)
	}

	scope := l.res.Enter(symbols.ScopeProcess, st.Span)
	lvl := &privLevel{scope: scope, seen: make(map[*ir.Binding]bool)}
	l.priv = append(l.priv, lvl)
	inner := rest()
	l.priv = l.priv[:len(l.priv)-1]
	l.res.Leave(scope)

	if !ok {
		return nil
	}
	cmd := ir.NewCommand(ir.CmdPrivileged, st.Span, ir.PrivilegedData{Opts: opts, Body: inner, Captured: lvl.captured})
	return ir.NewStmt(ir.StmtCommand, st.Span, ir.CommandData{Cmd: cmd})
}
