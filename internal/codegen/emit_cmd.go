package codegen

import (
	"strings"

	"shale/internal/ir"
)

// prepareCommand emits the preludes of every word c passes. Block stages
// prepare their own words inside the child.
func (fe *funcEmitter) prepareCommand(c *ir.Command) {
	switch d := c.Data.(type) {
	case ir.RunData:
		fe.prepareAll(d.Argv)
	case ir.SudoData:
		fe.prepareAll(d.Argv)
	case ir.CallData:
		fe.prepareAll(d.Args)
	case ir.PipelineData:
		for _, s := range d.Stages {
			fe.prepareCommand(s)
		}
	case ir.TestData:
		fe.prepare(d.Path)
	case ir.WaitData:
		fe.prepare(d.Job)
	}
}

// command renders c as shell text. Multi-line results keep the current
// indentation on their continuation lines.
func (fe *funcEmitter) command(c *ir.Command) string {
	switch d := c.Data.(type) {
	case ir.RunData:
		return fe.argv(d.Argv)
	case ir.SudoData:
		return sudoPrefix(d.Opts) + " -- " + fe.argv(d.Argv)
	case ir.CallData:
		if len(d.Args) == 0 {
			return d.Func
		}
		return d.Func + " " + fe.argv(d.Args)
	case ir.PipelineData:
		stages := make([]string, len(d.Stages))
		for i, s := range d.Stages {
			stages[i] = fe.command(s)
		}
		return strings.Join(stages, " | ")
	case ir.BlockCmdData:
		return fe.subshell(d.Body)
	case ir.PrivilegedData:
		return fe.privileged(d)
	case ir.TestData:
		return "[ " + d.Test.Flag() + " " + fe.word(d.Path) + " ]"
	case ir.WaitData:
		fe.u.use(helperWait)
		return "__shale_wait " + fe.word(d.Job)
	case ir.RawCmdData:
		return d.Text
	}
	switch c.Kind {
	case ir.CmdWaitAll:
		fe.u.use(helperWaitAll)
		return "__shale_wait_all"
	case ir.CmdWaitAny:
		fe.u.d.require(fe.u.d.waitAny, "wait_any")
		return "wait -n"
	}
	defect("command %s has no emitter", c.Kind)
	return ""
}

// sudoPrefix renders sudo and its flags in a fixed order. The caller adds
// `--` right before the command words.
func sudoPrefix(o ir.SudoOptions) string {
	parts := []string{"sudo"}
	if o.User != "" {
		parts = append(parts, "-u", quote(o.User))
	}
	if o.NonInteractive {
		parts = append(parts, "-n")
	}
	if o.Invalidate {
		parts = append(parts, "-k")
	}
	if o.HasPrompt {
		parts = append(parts, "-p", quote(o.Prompt))
	}
	switch {
	case o.PreserveEnvAll:
		parts = append(parts, "-E")
	case len(o.PreserveEnv) > 0:
		parts = append(parts, quote("--preserve-env="+strings.Join(o.PreserveEnv, ",")))
	}
	return strings.Join(parts, " ")
}

// privileged runs a block as another user. The body is a fixed POSIX sh
// program; every outer value it reads arrives as a positional parameter,
// so nothing from the caller is ever parsed by the inner shell.
func (fe *funcEmitter) privileged(d ir.PrivilegedData) string {
	u := newUnit(posixDialect, fe.u.opts)
	inner := newFuncEmitter(u, fe.fn, fe.seq, 0)
	inner.pushFrame(frame{kind: frameChild})
	for i, b := range d.Captured {
		inner.w.line(b.ShellName + "=" + positional(i+1))
	}
	inner.block(d.Body)
	inner.w.line("exit 0")

	script := "__status=0\n" + u.preamble() + inner.w.String()
	words := []string{sudoPrefix(d.Opts), "--", "/bin/sh", "-c", quote(strings.TrimSuffix(script, "\n")), "shale"}
	for _, b := range d.Captured {
		words = append(words, `"${`+b.ShellName+`}"`)
	}
	return strings.Join(words, " ")
}
