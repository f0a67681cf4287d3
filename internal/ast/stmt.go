package ast

import (
	"shale/internal/source"
)

type StmtKind uint8

const (
	StmtBlock StmtKind = iota
	StmtLet
	StmtSet
	StmtExpr
	StmtIf
	StmtCase
	StmtWhile
	StmtFor
	StmtBreak
	StmtContinue
	StmtReturn
	StmtTry
	StmtWith
	StmtSubshell
	StmtGroup
	StmtUnsafeBlock
)

var stmtKindNames = [...]string{
	StmtBlock:       "Block",
	StmtLet:         "Let",
	StmtSet:         "Set",
	StmtExpr:        "Expr",
	StmtIf:          "If",
	StmtCase:        "Case",
	StmtWhile:       "While",
	StmtFor:         "For",
	StmtBreak:       "Break",
	StmtContinue:    "Continue",
	StmtReturn:      "Return",
	StmtTry:         "Try",
	StmtWith:        "With",
	StmtSubshell:    "Subshell",
	StmtGroup:       "Group",
	StmtUnsafeBlock: "UnsafeBlock",
}

func (k StmtKind) String() string {
	if int(k) < len(stmtKindNames) {
		return stmtKindNames[k]
	}
	return "Stmt?"
}

type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload PayloadID // NoPayloadID for break/continue
}

type BlockStmt struct {
	Stmts []StmtID
}

type LetStmt struct {
	Name     source.StringID
	NameSpan source.Span
	Value    ExprID
}

// SetStmt assigns a variable, or an environment slot when Env is set.
type SetStmt struct {
	Env      bool
	Name     source.StringID
	NameSpan source.Span
	Value    ExprID
}

type ExprStmt struct {
	Expr ExprID
}

type ElifClause struct {
	Span source.Span
	Cond ExprID
	Body StmtID
}

type IfStmt struct {
	Cond  ExprID
	Then  StmtID
	Elifs []ElifClause
	Else  StmtID // NoStmtID when absent
}

type PatternKind uint8

const (
	PatternLiteral PatternKind = iota
	PatternGlob
	PatternWildcard
)

// CasePattern is a string literal, glob("...") or "_". Text is decoded.
type CasePattern struct {
	Kind PatternKind
	Text string
	Span source.Span
}

type CaseArm struct {
	Span     source.Span
	Patterns []CasePattern
	Body     StmtID
}

type CaseStmt struct {
	Subject ExprID
	Arms    []CaseArm
}

type WhileStmt struct {
	Cond ExprID
	Body StmtID
}

type ForVar struct {
	Name source.StringID
	Span source.Span
}

// ForStmt is `for x in e` or, with two vars, `for k, v in e`.
type ForStmt struct {
	Vars []ForVar
	Iter ExprID
	Body StmtID
}

type ReturnStmt struct {
	Value ExprID // NoExprID for a bare return
}

type TryStmt struct {
	Body      StmtID
	CatchName source.StringID // NoStringID when the status is not bound
	CatchSpan source.Span
	Catch     StmtID
}

// Modifier is one `name(args)` entry of a with-statement.
type Modifier struct {
	Name     source.StringID
	NameSpan source.Span
	Span     source.Span
	Args     []CallArg
}

type WithStmt struct {
	Mods []Modifier
	Body StmtID
}

// ProcBlockStmt is the body of subshell { } and group { }.
type ProcBlockStmt struct {
	Body StmtID
}

type UnsafeBlockStmt struct {
	Text string // dedented shell text
}

type Stmts struct {
	Arena      *Arena[Stmt]
	Blocks     *Arena[BlockStmt]
	Lets       *Arena[LetStmt]
	Sets       *Arena[SetStmt]
	Exprs      *Arena[ExprStmt]
	Ifs        *Arena[IfStmt]
	Cases      *Arena[CaseStmt]
	Whiles     *Arena[WhileStmt]
	Fors       *Arena[ForStmt]
	Returns    *Arena[ReturnStmt]
	Tries      *Arena[TryStmt]
	Withs      *Arena[WithStmt]
	ProcBlocks *Arena[ProcBlockStmt]
	Unsafes    *Arena[UnsafeBlockStmt]
}

func NewStmts(capHint uint) *Stmts {
	return &Stmts{
		Arena:      NewArena[Stmt](capHint),
		Blocks:     NewArena[BlockStmt](capHint),
		Lets:       NewArena[LetStmt](capHint),
		Sets:       NewArena[SetStmt](capHint),
		Exprs:      NewArena[ExprStmt](capHint),
		Ifs:        NewArena[IfStmt](capHint / 4),
		Cases:      NewArena[CaseStmt](capHint / 8),
		Whiles:     NewArena[WhileStmt](capHint / 8),
		Fors:       NewArena[ForStmt](capHint / 8),
		Returns:    NewArena[ReturnStmt](capHint / 8),
		Tries:      NewArena[TryStmt](capHint / 8),
		Withs:      NewArena[WithStmt](capHint / 8),
		ProcBlocks: NewArena[ProcBlockStmt](capHint / 8),
		Unsafes:    NewArena[UnsafeBlockStmt](capHint / 8),
	}
}

func (s *Stmts) new(kind StmtKind, sp source.Span, payload uint32) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{Kind: kind, Span: sp, Payload: PayloadID(payload)}))
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

func (s *Stmts) NewBlock(sp source.Span, stmts []StmtID) StmtID {
	return s.new(StmtBlock, sp, s.Blocks.Allocate(BlockStmt{Stmts: stmts}))
}

func (s *Stmts) NewLet(sp source.Span, data LetStmt) StmtID {
	return s.new(StmtLet, sp, s.Lets.Allocate(data))
}

func (s *Stmts) NewSet(sp source.Span, data SetStmt) StmtID {
	return s.new(StmtSet, sp, s.Sets.Allocate(data))
}

func (s *Stmts) NewExpr(sp source.Span, expr ExprID) StmtID {
	return s.new(StmtExpr, sp, s.Exprs.Allocate(ExprStmt{Expr: expr}))
}

func (s *Stmts) NewIf(sp source.Span, data IfStmt) StmtID {
	return s.new(StmtIf, sp, s.Ifs.Allocate(data))
}

func (s *Stmts) NewCase(sp source.Span, data CaseStmt) StmtID {
	return s.new(StmtCase, sp, s.Cases.Allocate(data))
}

func (s *Stmts) NewWhile(sp source.Span, data WhileStmt) StmtID {
	return s.new(StmtWhile, sp, s.Whiles.Allocate(data))
}

func (s *Stmts) NewFor(sp source.Span, data ForStmt) StmtID {
	return s.new(StmtFor, sp, s.Fors.Allocate(data))
}

func (s *Stmts) NewBreak(sp source.Span) StmtID {
	return s.new(StmtBreak, sp, 0)
}

func (s *Stmts) NewContinue(sp source.Span) StmtID {
	return s.new(StmtContinue, sp, 0)
}

func (s *Stmts) NewReturn(sp source.Span, value ExprID) StmtID {
	return s.new(StmtReturn, sp, s.Returns.Allocate(ReturnStmt{Value: value}))
}

func (s *Stmts) NewTry(sp source.Span, data TryStmt) StmtID {
	return s.new(StmtTry, sp, s.Tries.Allocate(data))
}

func (s *Stmts) NewWith(sp source.Span, data WithStmt) StmtID {
	return s.new(StmtWith, sp, s.Withs.Allocate(data))
}

// NewProcBlock creates a StmtSubshell or StmtGroup.
func (s *Stmts) NewProcBlock(kind StmtKind, sp source.Span, body StmtID) StmtID {
	return s.new(kind, sp, s.ProcBlocks.Allocate(ProcBlockStmt{Body: body}))
}

func (s *Stmts) NewUnsafeBlock(sp source.Span, text string) StmtID {
	return s.new(StmtUnsafeBlock, sp, s.Unsafes.Allocate(UnsafeBlockStmt{Text: text}))
}

func payloadOf[T any](s *Stmts, id StmtID, kind StmtKind, arena *Arena[T]) (*T, bool) {
	st := s.Get(id)
	if st == nil || st.Kind != kind {
		return nil, false
	}
	return arena.Get(uint32(st.Payload)), true
}

func (s *Stmts) Block(id StmtID) (*BlockStmt, bool) { return payloadOf(s, id, StmtBlock, s.Blocks) }
func (s *Stmts) Let(id StmtID) (*LetStmt, bool)     { return payloadOf(s, id, StmtLet, s.Lets) }
func (s *Stmts) Set(id StmtID) (*SetStmt, bool)     { return payloadOf(s, id, StmtSet, s.Sets) }
func (s *Stmts) Expr(id StmtID) (*ExprStmt, bool)   { return payloadOf(s, id, StmtExpr, s.Exprs) }
func (s *Stmts) If(id StmtID) (*IfStmt, bool)       { return payloadOf(s, id, StmtIf, s.Ifs) }
func (s *Stmts) Case(id StmtID) (*CaseStmt, bool)   { return payloadOf(s, id, StmtCase, s.Cases) }
func (s *Stmts) While(id StmtID) (*WhileStmt, bool) { return payloadOf(s, id, StmtWhile, s.Whiles) }
func (s *Stmts) For(id StmtID) (*ForStmt, bool)     { return payloadOf(s, id, StmtFor, s.Fors) }
func (s *Stmts) Return(id StmtID) (*ReturnStmt, bool) {
	return payloadOf(s, id, StmtReturn, s.Returns)
}
func (s *Stmts) Try(id StmtID) (*TryStmt, bool)   { return payloadOf(s, id, StmtTry, s.Tries) }
func (s *Stmts) With(id StmtID) (*WithStmt, bool) { return payloadOf(s, id, StmtWith, s.Withs) }
func (s *Stmts) UnsafeBlock(id StmtID) (*UnsafeBlockStmt, bool) {
	return payloadOf(s, id, StmtUnsafeBlock, s.Unsafes)
}

// ProcBlock returns the payload of a subshell or group statement.
func (s *Stmts) ProcBlock(id StmtID) (*ProcBlockStmt, bool) {
	st := s.Get(id)
	if st == nil || (st.Kind != StmtSubshell && st.Kind != StmtGroup) {
		return nil, false
	}
	return s.ProcBlocks.Get(uint32(st.Payload)), true
}
