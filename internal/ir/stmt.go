package ir

import (
	"shale/internal/ast"
	"shale/internal/source"
)

type StmtKind uint8

const (
	// StmtAssign is let and set of a variable.
	StmtAssign StmtKind = iota
	// StmtExport is set env.NAME.
	StmtExport
	// StmtCommand runs a status-producing command with fail-fast.
	StmtCommand
	StmtExec
	StmtPrint
	StmtExit
	StmtIf
	StmtWhile
	StmtForEach
	StmtForRange
	StmtForLines
	StmtForMap
	StmtCase
	StmtBreak
	StmtContinue
	StmtReturn
	StmtTry
	StmtEnvScope
	StmtCwdScope
	StmtRedirectScope
	StmtLogScope
	StmtGroup
	StmtBlock
	StmtBackground
)

var stmtKindNames = [...]string{
	StmtAssign:        "Assign",
	StmtExport:        "Export",
	StmtCommand:       "Command",
	StmtExec:          "Exec",
	StmtPrint:         "Print",
	StmtExit:          "Exit",
	StmtIf:            "If",
	StmtWhile:         "While",
	StmtForEach:       "ForEach",
	StmtForRange:      "ForRange",
	StmtForLines:      "ForLines",
	StmtForMap:        "ForMap",
	StmtCase:          "Case",
	StmtBreak:         "Break",
	StmtContinue:      "Continue",
	StmtReturn:        "Return",
	StmtTry:           "Try",
	StmtEnvScope:      "EnvScope",
	StmtCwdScope:      "CwdScope",
	StmtRedirectScope: "RedirectScope",
	StmtLogScope:      "LogScope",
	StmtGroup:         "Group",
	StmtBlock:         "Block",
	StmtBackground:    "Background",
}

func (k StmtKind) String() string {
	if int(k) < len(stmtKindNames) {
		return stmtKindNames[k]
	}
	return "Stmt?"
}

type Stmt struct {
	Kind StmtKind
	Span source.Span
	Data StmtData
}

// StmtData is the kind-specific payload of a Stmt.
type StmtData interface {
	stmtData()
}

// AssignData: Declare marks the first assignment of a let.
type AssignData struct {
	Target  *Binding
	Value   *Expr
	Declare bool
}

func (AssignData) stmtData() {}

type ExportData struct {
	Name  string
	Value *Expr
}

func (ExportData) stmtData() {}

type CommandData struct {
	Cmd       *Command
	AllowFail bool
}

func (CommandData) stmtData() {}

type ExecData struct {
	Argv []*Expr
}

func (ExecData) stmtData() {}

type PrintData struct {
	Values []*Expr
	Opts   PrintOptions
}

func (PrintData) stmtData() {}

// ExitData: Code is nil for a bare exit(), which exits 0.
type ExitData struct {
	Code *Expr
}

func (ExitData) stmtData() {}

type CondBlock struct {
	Span source.Span
	Cond *Expr
	Body *Block
}

type IfData struct {
	Branches []CondBlock // if, then every elif
	Else     *Block      // nil when absent
}

func (IfData) stmtData() {}

type WhileData struct {
	Cond *Expr
	Body *Block
}

func (WhileData) stmtData() {}

// ForEachData iterates the words of Items: scalars are one word, list and
// args values expand to their elements.
type ForEachData struct {
	Var   *Binding
	Items []*Expr
	Body  *Block
}

func (ForEachData) stmtData() {}

// ForRangeData iterates From up to but excluding To.
type ForRangeData struct {
	Var  *Binding
	From *Expr
	To   *Expr
	Body *Block
}

func (ForRangeData) stmtData() {}

type ForLinesData struct {
	Var    *Binding
	Source *Expr
	Body   *Block
}

func (ForLinesData) stmtData() {}

type ForMapData struct {
	Key   *Binding
	Value *Binding
	Map   *Expr
	Body  *Block
}

func (ForMapData) stmtData() {}

type Pattern struct {
	Kind ast.PatternKind
	Text string
}

type CaseArm struct {
	Patterns []Pattern
	Body     *Block
}

type CaseData struct {
	Subject *Expr
	Arms    []CaseArm
}

func (CaseData) stmtData() {}

// ReturnData: Value is nil for a bare return, which returns 0.
type ReturnData struct {
	Value *Expr
}

func (ReturnData) stmtData() {}

// TryData: CatchVar receives the failing status and may be nil.
type TryData struct {
	Body     *Block
	CatchVar *Binding
	Catch    *Block
}

func (TryData) stmtData() {}

type EnvAssign struct {
	Name  string
	Value *Expr
}

type EnvScopeData struct {
	Vars []EnvAssign
	Body *Block
}

func (EnvScopeData) stmtData() {}

type CwdScopeData struct {
	Path *Expr
	Body *Block
}

func (CwdScopeData) stmtData() {}

type RedirectScopeData struct {
	Opts RedirectOptions
	Body *Block
}

func (RedirectScopeData) stmtData() {}

type LogScopeData struct {
	Opts LogOptions
	Body *Block
}

func (LogScopeData) stmtData() {}

// BlockData is the body of a nested block or a group.
type BlockData struct {
	Body *Block
}

func (BlockData) stmtData() {}

// BackgroundData launches Cmd in the background; Job receives the handle
// and may be nil.
type BackgroundData struct {
	Job *Binding
	Cmd *Command
}

func (BackgroundData) stmtData() {}

type emptyData struct{}

func (emptyData) stmtData() {}

// NewStmt builds a statement; data may be nil for break and continue.
func NewStmt(kind StmtKind, sp source.Span, data StmtData) *Stmt {
	if data == nil {
		data = emptyData{}
	}
	return &Stmt{Kind: kind, Span: sp, Data: data}
}
