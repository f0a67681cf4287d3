// Package sema lowers parsed files into the IR. It resolves every name,
// checks builtin calls against their option tables, applies target gating
// and reports everything it finds before giving up on a module.
package sema

import (
	"fmt"
	"slices"
	"strings"

	"shale/internal/ast"
	"shale/internal/diag"
	"shale/internal/ir"
	"shale/internal/project/dag"
	"shale/internal/source"
	"shale/internal/symbols"
	"shale/internal/target"
)

// Options configure one lowering pass.
type Options struct {
	Target   target.Target
	Entry    string // entry function of the root unit; "main" when empty
	Reporter diag.Reporter
}

// Import binds an alias in a unit to another unit of the same Input.
type Import struct {
	Alias string
	Unit  int
	Span  source.Span
}

// Unit is one parsed file.
type Unit struct {
	Name    string // module name used in generated function names
	Path    string
	File    ast.FileID
	Imports []Import
}

// Input is a whole program. Units[0] is the root file; every unit was parsed
// into Builder.
type Input struct {
	Builder *ast.Builder
	Units   []Unit
}

// Result of Lower. Module is nil when Errors > 0.
type Result struct {
	Module *ir.Module
	Errors int
}

// Lower builds the IR for in. Diagnostics go to opts.Reporter; every
// independent problem of the pass is reported.
func Lower(in Input, opts Options) Result {
	if opts.Entry == "" {
		opts.Entry = "main"
	}
	counting := &diag.CountingReporter{Next: opts.Reporter}
	if in.Builder == nil || len(in.Units) == 0 {
		return Result{}
	}
	l := &lowerer{
		b:        in.Builder,
		in:       in,
		opts:     opts,
		reporter: counting,
		table:    symbols.NewTable(symbols.Hints{}, in.Builder.StringsInterner),
		fnNames:  make(map[string]int),
		edges:    make(map[[2]int]source.Span),
	}
	mod := l.run()
	if counting.Errors > 0 {
		return Result{Errors: counting.Errors}
	}
	return Result{Module: mod}
}

type unitState struct {
	index int
	unit  Unit
	scope symbols.ScopeID
	root  bool
}

type globalState int

const (
	globalPending globalState = iota
	globalLowering
	globalDone
)

type globalInfo struct {
	ir    *ir.Global
	item  *ast.LetItem
	span  source.Span
	unit  *unitState
	state globalState
}

type funcInfo struct {
	ir       *ir.Func
	item     *ast.FnItem
	unit     *unitState
	bindings []*ir.Binding
	names    map[string]int
}

// privLevel is one `with sudo(...)` body being lowered. Bindings read from
// outside its scope are handed to the nested shell.
type privLevel struct {
	scope    symbols.ScopeID
	captured []*ir.Binding
	seen     map[*ir.Binding]bool
}

type lowerer struct {
	b        *ast.Builder
	in       Input
	opts     Options
	reporter *diag.CountingReporter
	table    *symbols.Table

	units   []*unitState
	funcs   []*funcInfo
	globals []*globalInfo
	fnNames map[string]int

	// call graph edges caller -> callee with the first call site
	edges map[[2]int]source.Span
	calls []callRef

	// state of the function being lowered
	unit     *unitState
	fn       *funcInfo
	res      *symbols.Resolver
	priv     []*privLevel
	constCtx bool
}

type callRef struct {
	caller, callee int
	cmd            *ir.Command
}

func (l *lowerer) report(code diag.Code, sp source.Span, format string, args ...any) {
	diag.ReportError(l.reporter, code, sp, fmt.Sprintf(format, args...)).Emit()
}

func (l *lowerer) warn(code diag.Code, sp source.Span, format string, args ...any) {
	diag.ReportWarning(l.reporter, code, sp, fmt.Sprintf(format, args...)).Emit()
}

func (l *lowerer) exprSpan(id ast.ExprID) source.Span {
	if e := l.b.Exprs.Get(id); e != nil {
		return e.Span
	}
	return source.Span{}
}

func (l *lowerer) stmtSpan(id ast.StmtID) source.Span {
	if st := l.b.Stmts.Get(id); st != nil {
		return st.Span
	}
	return source.Span{}
}

func (l *lowerer) name(id source.StringID) string {
	return l.b.Name(id)
}

// has reports whether the code being lowered may use c. The body of a
// privileged block always runs under /bin/sh, whatever the target.
func (l *lowerer) has(c target.Capability) bool {
	if len(l.priv) > 0 {
		return false
	}
	return l.opts.Target.Has(c)
}

// targetName names the shell the current code runs in, for messages.
func (l *lowerer) targetName() string {
	if len(l.priv) > 0 {
		return "a sudo block (POSIX sh)"
	}
	return fmt.Sprintf("the %s target (%s)", l.opts.Target, l.opts.Target.Shell())
}

func (l *lowerer) requireCap(c target.Capability, sp source.Span) bool {
	if l.has(c) {
		return true
	}
	l.report(diag.SemaTargetUnsupported, sp, "%s is not supported by %s", c, l.targetName())
	return false
}

func (l *lowerer) run() *ir.Module {
	l.declareUnits()
	root := l.units[0]
	entry := l.findEntry(root)
	for _, g := range l.globals {
		l.lowerGlobal(g)
	}
	for _, f := range l.funcs {
		l.lowerFunc(f)
	}
	l.checkRecursion()

	mod := &ir.Module{
		Name:   root.unit.Name,
		Path:   root.unit.Path,
		Target: l.opts.Target,
		Entry:  entry,
	}
	for _, u := range l.units {
		mod.Files = append(mod.Files, u.unit.Path)
	}
	for _, g := range l.globals {
		if g.state == globalDone && g.ir.Value != nil {
			mod.Globals = append(mod.Globals, g.ir)
		}
	}
	for _, f := range l.funcs {
		mod.Funcs = append(mod.Funcs, f.ir)
	}
	return mod
}

// recursion is found on the call graph: a function is recursive when it
// belongs to a cycle.
func (l *lowerer) checkRecursion() {
	g := dag.NewGraph(len(l.funcs))
	for _, c := range l.calls {
		g.AddEdge(dag.NodeID(c.caller), dag.NodeID(c.callee))
	}
	recursive := make(map[int]bool)
	for _, comp := range dag.StronglyConnected(g) {
		if len(comp) == 1 && !slices.Contains(g.Edges[comp[0]], comp[0]) {
			continue
		}
		for _, n := range comp {
			recursive[int(n)] = true
		}
	}
	for i, f := range l.funcs {
		f.ir.Recursive = recursive[i]
	}
	for _, c := range l.calls {
		if recursive[c.caller] && recursive[c.callee] {
			data := c.cmd.Data.(ir.CallData)
			data.Recursive = true
			c.cmd.Data = data
		}
	}
	if l.opts.Target.Has(target.CapLocalVars) {
		return
	}
	for _, cycle := range dag.Cycles(g) {
		names := make([]string, 0, len(cycle)+1)
		for _, n := range cycle {
			names = append(names, l.funcs[n].ir.Name)
		}
		names = append(names, names[0])
		last := int(cycle[len(cycle)-1])
		sp := l.edges[[2]int{last, int(cycle[0])}]
		b := diag.ReportError(l.reporter, diag.SemaRecursionUnsupported, sp,
			fmt.Sprintf("recursive call cycle %s needs function-local variables, which %s does not have",
				strings.Join(names, " -> "), l.opts.Target.Shell()))
		b.WithNote(l.funcs[cycle[0]].ir.Span, "use --target rich to compile recursive functions").Emit()
	}
}

func (l *lowerer) findEntry(root *unitState) *ir.Func {
	file := l.b.Files.Get(root.unit.File)
	var fileSpan source.Span
	if file != nil {
		fileSpan = file.Span
	}
	id, ok := l.table.LookupIn(root.scope, l.b.StringsInterner.Intern(l.opts.Entry))
	sym := l.table.Symbols.Get(id)
	if !ok || sym == nil || sym.Kind != symbols.SymbolFunction {
		l.report(diag.SemaMissingEntry, fileSpan.AtStart(), "entry function '%s' is not defined in %s", l.opts.Entry, root.unit.Path)
		return nil
	}
	f := l.funcs[sym.Ref]
	f.ir.Entry = true
	if len(f.item.Params) > 0 {
		diag.ReportError(l.reporter, diag.SemaArityMismatch, f.item.NameSpan,
			fmt.Sprintf("entry function '%s' cannot take parameters", l.opts.Entry)).
			WithNote(f.ir.Span, "the script's arguments are available as args").
			Emit()
	}
	return f.ir
}
