package ast

import (
	"shale/internal/source"
)

type ExprKind uint8

const (
	ExprIdent ExprKind = iota
	ExprLit
	ExprInterp
	ExprEnv
	ExprMember
	ExprCall
	ExprIndex
	ExprList
	ExprMap
	ExprBinary
	ExprUnary
	ExprGroup
	ExprBackground
	ExprUnsafe
	ExprPipeline
	ExprBlockStage
)

var exprKindNames = [...]string{
	ExprIdent:      "Ident",
	ExprLit:        "Lit",
	ExprInterp:     "Interp",
	ExprEnv:        "Env",
	ExprMember:     "Member",
	ExprCall:       "Call",
	ExprIndex:      "Index",
	ExprList:       "List",
	ExprMap:        "Map",
	ExprBinary:     "Binary",
	ExprUnary:      "Unary",
	ExprGroup:      "Group",
	ExprBackground: "Background",
	ExprUnsafe:     "Unsafe",
	ExprPipeline:   "Pipeline",
	ExprBlockStage: "BlockStage",
}

func (k ExprKind) String() string {
	if int(k) < len(exprKindNames) {
		return exprKindNames[k]
	}
	return "Expr?"
}

type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

type LitKind uint8

const (
	LitInt LitKind = iota
	LitString
	LitRawString
	LitBool
)

func (k LitKind) String() string {
	switch k {
	case LitInt:
		return "int"
	case LitString:
		return "string"
	case LitRawString:
		return "raw string"
	}
	return "bool"
}

// ExprLitData holds a decoded literal.
type ExprLitData struct {
	Kind LitKind
	Int  int64
	Str  string
	Bool bool
}

type ExprIdentData struct {
	Name source.StringID
}

// InterpPart is literal text (Expr invalid) or a hole expression.
type InterpPart struct {
	Span source.Span
	Text string
	Expr ExprID
}

type ExprInterpData struct {
	Parts []InterpPart
}

type ExprEnvData struct {
	Name     string
	NameSpan source.Span
}

type ExprMemberData struct {
	Target    ExprID
	Field     source.StringID
	FieldSpan source.Span
}

// CallArg is positional when Name is NoStringID.
type CallArg struct {
	Name     source.StringID
	NameSpan source.Span
	Value    ExprID
}

type ExprCallData struct {
	Callee ExprID
	Args   []CallArg
}

type ExprIndexData struct {
	Target ExprID
	Index  ExprID
}

type ExprListData struct {
	Elems []ExprID
}

type MapEntry struct {
	Key   ExprID
	Value ExprID
}

type ExprMapData struct {
	Entries []MapEntry
}

type ExprBinaryData struct {
	Op    BinaryOp
	Left  ExprID
	Right ExprID
}

type ExprUnaryData struct {
	Op      UnaryOp
	Operand ExprID
}

type ExprGroupData struct {
	Inner ExprID
}

// ExprBackgroundData launches either a block or a single call.
type ExprBackgroundData struct {
	Block StmtID
	Call  ExprID
}

// ExprUnsafeData is unsafe("..."): Text is the literal shell text.
type ExprUnsafeData struct {
	Text     string
	TextSpan source.Span
}

type ExprPipelineData struct {
	Stages []ExprID
}

type ExprBlockStageData struct {
	Block StmtID
}

// Exprs manages allocation of expressions and their per-kind payloads.
type Exprs struct {
	Arena       *Arena[Expr]
	Idents      *Arena[ExprIdentData]
	Lits        *Arena[ExprLitData]
	Interps     *Arena[ExprInterpData]
	Envs        *Arena[ExprEnvData]
	Members     *Arena[ExprMemberData]
	Calls       *Arena[ExprCallData]
	Indices     *Arena[ExprIndexData]
	Lists       *Arena[ExprListData]
	Maps        *Arena[ExprMapData]
	Binaries    *Arena[ExprBinaryData]
	Unaries     *Arena[ExprUnaryData]
	Groups      *Arena[ExprGroupData]
	Backgrounds *Arena[ExprBackgroundData]
	Unsafes     *Arena[ExprUnsafeData]
	Pipelines   *Arena[ExprPipelineData]
	BlockStages *Arena[ExprBlockStageData]
}

func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	small := capHint / 8
	return &Exprs{
		Arena:       NewArena[Expr](capHint),
		Idents:      NewArena[ExprIdentData](capHint),
		Lits:        NewArena[ExprLitData](capHint),
		Interps:     NewArena[ExprInterpData](small),
		Envs:        NewArena[ExprEnvData](small),
		Members:     NewArena[ExprMemberData](small),
		Calls:       NewArena[ExprCallData](capHint / 2),
		Indices:     NewArena[ExprIndexData](small),
		Lists:       NewArena[ExprListData](small),
		Maps:        NewArena[ExprMapData](small),
		Binaries:    NewArena[ExprBinaryData](small),
		Unaries:     NewArena[ExprUnaryData](small),
		Groups:      NewArena[ExprGroupData](small),
		Backgrounds: NewArena[ExprBackgroundData](small),
		Unsafes:     NewArena[ExprUnsafeData](small),
		Pipelines:   NewArena[ExprPipelineData](small),
		BlockStages: NewArena[ExprBlockStageData](small),
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload uint32) ExprID {
	return ExprID(e.Arena.Allocate(Expr{Kind: kind, Span: span, Payload: PayloadID(payload)}))
}

func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

func (e *Exprs) NewIdent(sp source.Span, name source.StringID) ExprID {
	return e.new(ExprIdent, sp, e.Idents.Allocate(ExprIdentData{Name: name}))
}

func (e *Exprs) NewLit(sp source.Span, data ExprLitData) ExprID {
	return e.new(ExprLit, sp, e.Lits.Allocate(data))
}

func (e *Exprs) NewInterp(sp source.Span, parts []InterpPart) ExprID {
	return e.new(ExprInterp, sp, e.Interps.Allocate(ExprInterpData{Parts: parts}))
}

func (e *Exprs) NewEnv(sp source.Span, name string, nameSpan source.Span) ExprID {
	return e.new(ExprEnv, sp, e.Envs.Allocate(ExprEnvData{Name: name, NameSpan: nameSpan}))
}

func (e *Exprs) NewMember(sp source.Span, data ExprMemberData) ExprID {
	return e.new(ExprMember, sp, e.Members.Allocate(data))
}

func (e *Exprs) NewCall(sp source.Span, callee ExprID, args []CallArg) ExprID {
	return e.new(ExprCall, sp, e.Calls.Allocate(ExprCallData{Callee: callee, Args: args}))
}

func (e *Exprs) NewIndex(sp source.Span, target, index ExprID) ExprID {
	return e.new(ExprIndex, sp, e.Indices.Allocate(ExprIndexData{Target: target, Index: index}))
}

func (e *Exprs) NewList(sp source.Span, elems []ExprID) ExprID {
	return e.new(ExprList, sp, e.Lists.Allocate(ExprListData{Elems: elems}))
}

func (e *Exprs) NewMap(sp source.Span, entries []MapEntry) ExprID {
	return e.new(ExprMap, sp, e.Maps.Allocate(ExprMapData{Entries: entries}))
}

func (e *Exprs) NewBinary(sp source.Span, op BinaryOp, left, right ExprID) ExprID {
	return e.new(ExprBinary, sp, e.Binaries.Allocate(ExprBinaryData{Op: op, Left: left, Right: right}))
}

func (e *Exprs) NewUnary(sp source.Span, op UnaryOp, operand ExprID) ExprID {
	return e.new(ExprUnary, sp, e.Unaries.Allocate(ExprUnaryData{Op: op, Operand: operand}))
}

func (e *Exprs) NewGroup(sp source.Span, inner ExprID) ExprID {
	return e.new(ExprGroup, sp, e.Groups.Allocate(ExprGroupData{Inner: inner}))
}

func (e *Exprs) NewBackground(sp source.Span, data ExprBackgroundData) ExprID {
	return e.new(ExprBackground, sp, e.Backgrounds.Allocate(data))
}

func (e *Exprs) NewUnsafe(sp source.Span, data ExprUnsafeData) ExprID {
	return e.new(ExprUnsafe, sp, e.Unsafes.Allocate(data))
}

func (e *Exprs) NewPipeline(sp source.Span, stages []ExprID) ExprID {
	return e.new(ExprPipeline, sp, e.Pipelines.Allocate(ExprPipelineData{Stages: stages}))
}

func (e *Exprs) NewBlockStage(sp source.Span, block StmtID) ExprID {
	return e.new(ExprBlockStage, sp, e.BlockStages.Allocate(ExprBlockStageData{Block: block}))
}

func exprPayload[T any](e *Exprs, id ExprID, kind ExprKind, arena *Arena[T]) (*T, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != kind {
		return nil, false
	}
	return arena.Get(uint32(expr.Payload)), true
}

func (e *Exprs) Ident(id ExprID) (*ExprIdentData, bool) {
	return exprPayload(e, id, ExprIdent, e.Idents)
}
func (e *Exprs) Lit(id ExprID) (*ExprLitData, bool) { return exprPayload(e, id, ExprLit, e.Lits) }
func (e *Exprs) Interp(id ExprID) (*ExprInterpData, bool) {
	return exprPayload(e, id, ExprInterp, e.Interps)
}
func (e *Exprs) Env(id ExprID) (*ExprEnvData, bool) { return exprPayload(e, id, ExprEnv, e.Envs) }
func (e *Exprs) Member(id ExprID) (*ExprMemberData, bool) {
	return exprPayload(e, id, ExprMember, e.Members)
}
func (e *Exprs) Call(id ExprID) (*ExprCallData, bool) { return exprPayload(e, id, ExprCall, e.Calls) }
func (e *Exprs) Index(id ExprID) (*ExprIndexData, bool) {
	return exprPayload(e, id, ExprIndex, e.Indices)
}
func (e *Exprs) List(id ExprID) (*ExprListData, bool) { return exprPayload(e, id, ExprList, e.Lists) }
func (e *Exprs) Map(id ExprID) (*ExprMapData, bool)   { return exprPayload(e, id, ExprMap, e.Maps) }
func (e *Exprs) Binary(id ExprID) (*ExprBinaryData, bool) {
	return exprPayload(e, id, ExprBinary, e.Binaries)
}
func (e *Exprs) Unary(id ExprID) (*ExprUnaryData, bool) {
	return exprPayload(e, id, ExprUnary, e.Unaries)
}
func (e *Exprs) Group(id ExprID) (*ExprGroupData, bool) {
	return exprPayload(e, id, ExprGroup, e.Groups)
}
func (e *Exprs) Background(id ExprID) (*ExprBackgroundData, bool) {
	return exprPayload(e, id, ExprBackground, e.Backgrounds)
}
func (e *Exprs) Unsafe(id ExprID) (*ExprUnsafeData, bool) {
	return exprPayload(e, id, ExprUnsafe, e.Unsafes)
}
func (e *Exprs) Pipeline(id ExprID) (*ExprPipelineData, bool) {
	return exprPayload(e, id, ExprPipeline, e.Pipelines)
}
func (e *Exprs) BlockStage(id ExprID) (*ExprBlockStageData, bool) {
	return exprPayload(e, id, ExprBlockStage, e.BlockStages)
}

// Unwrap strips parenthesized groups.
func (e *Exprs) Unwrap(id ExprID) ExprID {
	for {
		g, ok := e.Group(id)
		if !ok {
			return id
		}
		id = g.Inner
	}
}
