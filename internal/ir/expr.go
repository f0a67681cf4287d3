package ir

import (
	"shale/internal/ast"
	"shale/internal/source"
)

type ExprKind uint8

const (
	// ExprLit is a constant str, int or bool.
	ExprLit ExprKind = iota
	// ExprVar reads a binding.
	ExprVar
	// ExprEnv reads an environment variable.
	ExprEnv
	// ExprArgs is the positional parameters of the entry function.
	ExprArgs
	// ExprConcat glues parts into one word.
	ExprConcat
	// ExprArith is integer arithmetic.
	ExprArith
	ExprNeg
	// ExprCompare compares two ints or two strs.
	ExprCompare
	// ExprLogic is && or ||.
	ExprLogic
	ExprNot
	// ExprCapture is the stdout of a command.
	ExprCapture
	// ExprStatus is the last recorded status.
	ExprStatus
	// ExprIntConv validates a str as an int at run time.
	ExprIntConv
	// ExprSucceeds is true when a command exits with 0. It records the
	// status and never aborts.
	ExprSucceeds
	ExprLen
	ExprIndex
	ExprList
	ExprMap
)

var exprKindNames = [...]string{
	ExprLit:      "Lit",
	ExprVar:      "Var",
	ExprEnv:      "Env",
	ExprArgs:     "Args",
	ExprConcat:   "Concat",
	ExprArith:    "Arith",
	ExprNeg:      "Neg",
	ExprCompare:  "Compare",
	ExprLogic:    "Logic",
	ExprNot:      "Not",
	ExprCapture:  "Capture",
	ExprStatus:   "Status",
	ExprIntConv:  "IntConv",
	ExprSucceeds: "Succeeds",
	ExprLen:      "Len",
	ExprIndex:    "Index",
	ExprList:     "List",
	ExprMap:      "Map",
}

func (k ExprKind) String() string {
	if int(k) < len(exprKindNames) {
		return exprKindNames[k]
	}
	return "Expr?"
}

type Expr struct {
	Kind ExprKind
	Span source.Span
	Type Type
	Mode Mode
	Data ExprData
}

// ExprData is the kind-specific payload of an Expr.
type ExprData interface {
	exprData()
}

// IsLiteral reports whether e is known at compile time.
func (e *Expr) IsLiteral() bool { return e != nil && e.Mode == ModeLiteral }

type LitData struct {
	Str  string
	Int  int64
	Bool bool
}

func (LitData) exprData() {}

type VarData struct {
	Binding *Binding
}

func (VarData) exprData() {}

type EnvData struct {
	Name string
}

func (EnvData) exprData() {}

type ConcatData struct {
	Parts []*Expr
}

func (ConcatData) exprData() {}

// ArithData is + - * / %. GuardZero asks for a run-time divisor check.
type ArithData struct {
	Op        ast.BinaryOp
	Left      *Expr
	Right     *Expr
	GuardZero bool
}

func (ArithData) exprData() {}

// CompareData is == != < <= > >=. Numeric selects integer comparison.
type CompareData struct {
	Op      ast.BinaryOp
	Left    *Expr
	Right   *Expr
	Numeric bool
}

func (CompareData) exprData() {}

type LogicData struct {
	Op    ast.BinaryOp // BinAnd or BinOr
	Left  *Expr
	Right *Expr
}

func (LogicData) exprData() {}

// UnaryData is the operand of Neg, Not, Len and IntConv.
type UnaryData struct {
	Operand *Expr
}

func (UnaryData) exprData() {}

type CaptureData struct {
	Cmd  *Command
	Opts CaptureOptions
}

func (CaptureData) exprData() {}

type SucceedsData struct {
	Cmd *Command
}

func (SucceedsData) exprData() {}

type IndexData struct {
	Target *Expr
	Index  *Expr
}

func (IndexData) exprData() {}

type ListData struct {
	Elems []*Expr
}

func (ListData) exprData() {}

type MapEntry struct {
	Key   *Expr
	Value *Expr
}

type MapData struct {
	Entries []MapEntry
}

func (MapData) exprData() {}

type noData struct{}

func (noData) exprData() {}

// Constructors. Codegen relies on Data matching Kind; sema only builds
// expressions through these.

func Str(sp source.Span, s string) *Expr {
	return &Expr{Kind: ExprLit, Span: sp, Type: TypeStr, Mode: ModeLiteral, Data: LitData{Str: s}}
}

func Int(sp source.Span, n int64) *Expr {
	return &Expr{Kind: ExprLit, Span: sp, Type: TypeInt, Mode: ModeLiteral, Data: LitData{Int: n}}
}

func Bool(sp source.Span, b bool) *Expr {
	return &Expr{Kind: ExprLit, Span: sp, Type: TypeBool, Mode: ModeLiteral, Data: LitData{Bool: b}}
}

func Var(sp source.Span, b *Binding) *Expr {
	return &Expr{Kind: ExprVar, Span: sp, Type: b.Type, Data: VarData{Binding: b}}
}

func Env(sp source.Span, name string) *Expr {
	return &Expr{Kind: ExprEnv, Span: sp, Type: TypeStr, Data: EnvData{Name: name}}
}

func Args(sp source.Span) *Expr {
	return &Expr{Kind: ExprArgs, Span: sp, Type: TypeArgs, Data: noData{}}
}

func Status(sp source.Span) *Expr {
	return &Expr{Kind: ExprStatus, Span: sp, Type: TypeInt, Data: noData{}}
}

func New(kind ExprKind, sp source.Span, t Type, data ExprData) *Expr {
	return &Expr{Kind: kind, Span: sp, Type: t, Data: data}
}

// Lit returns the literal payload of e.
func (e *Expr) Lit() (LitData, bool) {
	if e == nil || e.Kind != ExprLit {
		return LitData{}, false
	}
	d, ok := e.Data.(LitData)
	return d, ok
}

// LiteralText renders a literal as the text it stands for in a shell word.
func (e *Expr) LiteralText() (string, bool) {
	d, ok := e.Lit()
	if !ok {
		return "", false
	}
	switch e.Type {
	case TypeInt:
		return formatInt(d.Int), true
	case TypeBool:
		if d.Bool {
			return "true", true
		}
		return "false", true
	}
	return d.Str, true
}
