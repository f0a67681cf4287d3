package ir

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"shale/internal/ast"
)

// Printer dumps a module as indented text.
type Printer struct {
	w      io.Writer
	indent int
	err    error
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Dump writes m to w in the text form used by `shale build --emit ir`.
func Dump(w io.Writer, m *Module) error {
	p := NewPrinter(w)
	p.PrintModule(m)
	return p.err
}

func (p *Printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) line(format string, args ...any) {
	p.printf("%s", strings.Repeat("  ", p.indent))
	p.printf(format, args...)
	p.printf("\n")
}

func (p *Printer) PrintModule(m *Module) {
	entry := "<none>"
	if m.Entry != nil {
		entry = m.Entry.ShellName
	}
	p.line("module %s (%s) entry %s", m.Name, m.Target, entry)
	for _, g := range m.Globals {
		p.line("global %s: %s = %s", g.Binding.ShellName, g.Binding.Type, ExprString(g.Value))
	}
	for _, f := range m.Funcs {
		p.printf("\n")
		p.printFunc(f)
	}
}

func (p *Printer) printFunc(f *Func) {
	params := make([]string, len(f.Params))
	for i, b := range f.Params {
		params[i] = b.ShellName
	}
	flags := ""
	if f.Entry {
		flags += " [entry]"
	}
	if f.Recursive {
		flags += " [recursive]"
	}
	p.line("fn %s.%s(%s) -> %s%s", f.Module, f.Name, strings.Join(params, ", "), f.ShellName, flags)
	if len(f.Locals) > 0 {
		locals := make([]string, len(f.Locals))
		for i, b := range f.Locals {
			locals[i] = b.ShellName + ":" + b.Type.String()
		}
		p.indent++
		p.line("locals %s", strings.Join(locals, " "))
		p.indent--
	}
	p.printBlock(f.Body)
}

func (p *Printer) printBlock(b *Block) {
	p.indent++
	if b != nil {
		for _, st := range b.Stmts {
			p.printStmt(st)
		}
	}
	p.indent--
}

func (p *Printer) printStmt(st *Stmt) {
	switch d := st.Data.(type) {
	case AssignData:
		kw := "set"
		if d.Declare {
			kw = "let"
		}
		p.line("%s %s = %s", kw, d.Target.ShellName, ExprString(d.Value))
	case ExportData:
		p.line("export %s = %s", d.Name, ExprString(d.Value))
	case CommandData:
		suffix := ""
		if d.AllowFail {
			suffix = " allow_fail"
		}
		p.line("command %s%s", CommandString(d.Cmd), suffix)
		p.printCommandBodies(d.Cmd)
	case ExecData:
		p.line("exec %s", exprList(d.Argv))
	case PrintData:
		p.line("print %s%s", exprList(d.Values), printFlags(d.Opts))
	case ExitData:
		p.line("exit %s", optExpr(d.Code))
	case IfData:
		for i, br := range d.Branches {
			kw := "if"
			if i > 0 {
				kw = "elif"
			}
			p.line("%s %s", kw, ExprString(br.Cond))
			p.printBlock(br.Body)
		}
		if d.Else != nil {
			p.line("else")
			p.printBlock(d.Else)
		}
	case WhileData:
		p.line("while %s", ExprString(d.Cond))
		p.printBlock(d.Body)
	case ForEachData:
		p.line("for %s in %s", d.Var.ShellName, exprList(d.Items))
		p.printBlock(d.Body)
	case ForRangeData:
		p.line("for %s in range(%s, %s)", d.Var.ShellName, ExprString(d.From), ExprString(d.To))
		p.printBlock(d.Body)
	case ForLinesData:
		p.line("for %s in lines(%s)", d.Var.ShellName, ExprString(d.Source))
		p.printBlock(d.Body)
	case ForMapData:
		p.line("for %s, %s in %s", d.Key.ShellName, d.Value.ShellName, ExprString(d.Map))
		p.printBlock(d.Body)
	case CaseData:
		p.line("case %s", ExprString(d.Subject))
		p.indent++
		for _, arm := range d.Arms {
			pats := make([]string, len(arm.Patterns))
			for i, pat := range arm.Patterns {
				pats[i] = patternString(pat)
			}
			p.line("%s ->", strings.Join(pats, " | "))
			p.printBlock(arm.Body)
		}
		p.indent--
	case ReturnData:
		p.line("return %s", optExpr(d.Value))
	case TryData:
		p.line("try")
		p.printBlock(d.Body)
		if d.CatchVar != nil {
			p.line("catch %s", d.CatchVar.ShellName)
		} else {
			p.line("catch")
		}
		p.printBlock(d.Catch)
	case EnvScopeData:
		vars := make([]string, len(d.Vars))
		for i, v := range d.Vars {
			vars[i] = v.Name + "=" + ExprString(v.Value)
		}
		p.line("with env(%s)", strings.Join(vars, ", "))
		p.printBlock(d.Body)
	case CwdScopeData:
		p.line("with cwd(%s)", ExprString(d.Path))
		p.printBlock(d.Body)
	case RedirectScopeData:
		p.line("with redirect(%s)", redirectString(d.Opts))
		p.printBlock(d.Body)
	case LogScopeData:
		p.line("with log(%s, append=%t)", ExprString(d.Opts.Path), d.Opts.Append)
		p.printBlock(d.Body)
	case BlockData:
		p.line("%s", strings.ToLower(st.Kind.String()))
		p.printBlock(d.Body)
	case BackgroundData:
		job := "_"
		if d.Job != nil {
			job = d.Job.ShellName
		}
		p.line("background %s = %s", job, CommandString(d.Cmd))
		p.printCommandBodies(d.Cmd)
	default:
		p.line("%s", strings.ToLower(st.Kind.String()))
	}
}

// printCommandBodies prints the blocks nested in a command.
func (p *Printer) printCommandBodies(c *Command) {
	switch d := c.Data.(type) {
	case BlockCmdData:
		p.printBlock(d.Body)
	case PrivilegedData:
		p.printBlock(d.Body)
	case PipelineData:
		for _, s := range d.Stages {
			p.printCommandBodies(s)
		}
	}
}

// ExprString renders e on one line.
func ExprString(e *Expr) string {
	if e == nil {
		return "<nil>"
	}
	switch d := e.Data.(type) {
	case LitData:
		if e.Type == TypeStr {
			return strconv.Quote(d.Str)
		}
		s, _ := e.LiteralText()
		return s
	case VarData:
		return d.Binding.ShellName
	case EnvData:
		return "env." + d.Name
	case ConcatData:
		return "concat(" + exprList(d.Parts) + ")"
	case ArithData:
		guard := ""
		if d.GuardZero {
			guard = "!"
		}
		return "(" + ExprString(d.Left) + " " + d.Op.String() + guard + " " + ExprString(d.Right) + ")"
	case CompareData:
		kind := "str"
		if d.Numeric {
			kind = "int"
		}
		return "(" + ExprString(d.Left) + " " + d.Op.String() + "." + kind + " " + ExprString(d.Right) + ")"
	case LogicData:
		return "(" + ExprString(d.Left) + " " + d.Op.String() + " " + ExprString(d.Right) + ")"
	case UnaryData:
		return strings.ToLower(e.Kind.String()) + "(" + ExprString(d.Operand) + ")"
	case CaptureData:
		flags := ""
		if d.Opts.AllowFail {
			flags += ", allow_fail"
		}
		if d.Opts.Stderr {
			flags += ", stderr"
		}
		return "capture(" + CommandString(d.Cmd) + flags + ")"
	case SucceedsData:
		return "ok(" + CommandString(d.Cmd) + ")"
	case IndexData:
		return ExprString(d.Target) + "[" + ExprString(d.Index) + "]"
	case ListData:
		return "[" + exprList(d.Elems) + "]"
	case MapData:
		parts := make([]string, len(d.Entries))
		for i, en := range d.Entries {
			parts[i] = ExprString(en.Key) + ": " + ExprString(en.Value)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return strings.ToLower(e.Kind.String())
}

// CommandString renders c on one line; nested blocks show as "{...}".
func CommandString(c *Command) string {
	if c == nil {
		return "<nil>"
	}
	switch d := c.Data.(type) {
	case RunData:
		return "run(" + exprList(d.Argv) + ")"
	case SudoData:
		return "sudo" + sudoFlags(d.Opts) + "(" + exprList(d.Argv) + ")"
	case CallData:
		return "call " + d.Func + "(" + exprList(d.Args) + ")"
	case PipelineData:
		stages := make([]string, len(d.Stages))
		for i, s := range d.Stages {
			stages[i] = CommandString(s)
		}
		return strings.Join(stages, " | ")
	case BlockCmdData:
		return "{...}"
	case PrivilegedData:
		names := make([]string, len(d.Captured))
		for i, b := range d.Captured {
			names[i] = b.ShellName
		}
		return "privileged" + sudoFlags(d.Opts) + " [" + strings.Join(names, " ") + "] {...}"
	case TestData:
		return d.Test.String() + "(" + ExprString(d.Path) + ")"
	case WaitData:
		return "wait(" + ExprString(d.Job) + ")"
	case RawCmdData:
		return "raw " + strconv.Quote(d.Text)
	}
	return strings.ToLower(c.Kind.String())
}

func exprList(es []*Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = ExprString(e)
	}
	return strings.Join(parts, ", ")
}

func optExpr(e *Expr) string {
	if e == nil {
		return "0"
	}
	return ExprString(e)
}

func printFlags(o PrintOptions) string {
	s := ""
	if o.Stderr {
		s += " stderr"
	}
	if o.NoNewline {
		s += " no_newline"
	}
	return s
}

func sudoFlags(o SudoOptions) string {
	var parts []string
	if o.User != "" {
		parts = append(parts, "user="+strconv.Quote(o.User))
	}
	if o.NonInteractive {
		parts = append(parts, "non_interactive")
	}
	if o.Invalidate {
		parts = append(parts, "invalidate")
	}
	if o.HasPrompt {
		parts = append(parts, "prompt="+strconv.Quote(o.Prompt))
	}
	if o.PreserveEnvAll {
		parts = append(parts, "preserve_env")
	}
	if len(o.PreserveEnv) > 0 {
		parts = append(parts, "preserve_env="+strings.Join(o.PreserveEnv, ","))
	}
	if o.AllowFail {
		parts = append(parts, "allow_fail")
	}
	if len(parts) == 0 {
		return ""
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func redirectString(o RedirectOptions) string {
	var parts []string
	if len(o.Stdout) > 0 {
		parts = append(parts, "stdout="+exprList(o.Stdout))
	}
	if o.Stderr != nil {
		parts = append(parts, "stderr="+ExprString(o.Stderr))
	}
	if o.Stdin != nil {
		parts = append(parts, "stdin="+ExprString(o.Stdin))
	}
	if o.Append {
		parts = append(parts, "append")
	}
	if o.StderrToStdout {
		parts = append(parts, "stderr_to_stdout")
	}
	return strings.Join(parts, ", ")
}

func patternString(p Pattern) string {
	switch p.Kind {
	case ast.PatternGlob:
		return "glob(" + strconv.Quote(p.Text) + ")"
	case ast.PatternWildcard:
		return "_"
	}
	return strconv.Quote(p.Text)
}
