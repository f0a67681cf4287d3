package ir

import (
	"shale/internal/source"
	"shale/internal/target"
)

// BindingKind says where a variable lives.
type BindingKind uint8

const (
	BindLocal BindingKind = iota
	BindParam
	BindGlobal
)

func (k BindingKind) String() string {
	switch k {
	case BindParam:
		return "param"
	case BindGlobal:
		return "global"
	}
	return "local"
}

// Binding is one resolved variable. ShellName is unique within its function
// (or within the script for globals).
type Binding struct {
	Name      string
	ShellName string
	Type      Type
	Kind      BindingKind
	Span      source.Span
}

// Global is a top-level constant; Value is always a literal.
type Global struct {
	Binding *Binding
	Value   *Expr
}

type Func struct {
	// Index numbers functions from 1 in emission order; generated names of
	// locals and temporaries carry it.
	Index     int
	Name      string
	Module    string
	ShellName string
	Span      source.Span
	Params    []*Binding
	// Locals are every non-parameter binding of the body, in declaration order.
	Locals    []*Binding
	Body      *Block
	Entry     bool
	Recursive bool
}

// Module is a whole program: the root file plus everything it imports.
type Module struct {
	Name    string
	Path    string
	Target  target.Target
	Entry   *Func
	Globals []*Global
	Funcs   []*Func
	Files   []string
}

// Block is a statement list.
type Block struct {
	Stmts []*Stmt
}
