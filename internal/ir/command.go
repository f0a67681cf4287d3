package ir

import (
	"strconv"

	"shale/internal/source"
)

type CommandKind uint8

const (
	// CmdRun executes Argv[0] with the rest as arguments.
	CmdRun CommandKind = iota
	CmdSudo
	// CmdCall calls a user function.
	CmdCall
	CmdPipeline
	// CmdBlock is a block run in a child process: a subshell, a pipeline
	// stage or a background body.
	CmdBlock
	// CmdPrivileged runs a block as another user in a nested /bin/sh.
	CmdPrivileged
	CmdTest
	CmdWait
	CmdWaitAll
	CmdWaitAny
	// CmdRaw is unsafe("...") or an unsafe {{ }} block: opaque shell text.
	CmdRaw
)

var commandKindNames = [...]string{
	CmdRun:        "Run",
	CmdSudo:       "Sudo",
	CmdCall:       "Call",
	CmdPipeline:   "Pipeline",
	CmdBlock:      "Block",
	CmdPrivileged: "Privileged",
	CmdTest:       "Test",
	CmdWait:       "Wait",
	CmdWaitAll:    "WaitAll",
	CmdWaitAny:    "WaitAny",
	CmdRaw:        "Raw",
}

func (k CommandKind) String() string {
	if int(k) < len(commandKindNames) {
		return commandKindNames[k]
	}
	return "Command?"
}

type Command struct {
	Kind CommandKind
	Span source.Span
	Data CommandPayload
}

// CommandPayload is the kind-specific payload of a Command.
type CommandPayload interface {
	commandData()
}

type RunData struct {
	Argv []*Expr
	Opts RunOptions
}

func (RunData) commandData() {}

type SudoData struct {
	Argv []*Expr
	Opts SudoOptions
}

func (SudoData) commandData() {}

type CallData struct {
	Func      string // callee ShellName
	Name      string // source name, for dumps
	Args      []*Expr
	Recursive bool
}

func (CallData) commandData() {}

type PipelineData struct {
	Stages []*Command
}

func (PipelineData) commandData() {}

type BlockCmdData struct {
	Body *Block
}

func (BlockCmdData) commandData() {}

// PrivilegedData: Captured are the outer bindings the body reads; they are
// handed to the nested shell as positional parameters in this order.
type PrivilegedData struct {
	Opts     SudoOptions
	Body     *Block
	Captured []*Binding
}

func (PrivilegedData) commandData() {}

type TestKind uint8

const (
	TestExists TestKind = iota
	TestFile
	TestDir
	TestExec
)

func (k TestKind) String() string {
	switch k {
	case TestFile:
		return "is_file"
	case TestDir:
		return "is_dir"
	case TestExec:
		return "is_exec"
	}
	return "exists"
}

// Flag is the test(1) operator.
func (k TestKind) Flag() string {
	switch k {
	case TestFile:
		return "-f"
	case TestDir:
		return "-d"
	case TestExec:
		return "-x"
	}
	return "-e"
}

type TestData struct {
	Test TestKind
	Path *Expr
}

func (TestData) commandData() {}

type WaitData struct {
	Job *Expr
}

func (WaitData) commandData() {}

type RawCmdData struct {
	Text string
}

func (RawCmdData) commandData() {}

type noCmdData struct{}

func (noCmdData) commandData() {}

func NewCommand(kind CommandKind, sp source.Span, data CommandPayload) *Command {
	if data == nil {
		data = noCmdData{}
	}
	return &Command{Kind: kind, Span: sp, Data: data}
}

// AllowsFailure reports whether the command carries allow_fail=true.
func (c *Command) AllowsFailure() bool {
	switch d := c.Data.(type) {
	case RunData:
		return d.Opts.AllowFail
	case SudoData:
		return d.Opts.AllowFail
	case PrivilegedData:
		return d.Opts.AllowFail
	}
	return false
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
