package ast

import (
	"testing"

	"shale/internal/source"
)

func TestArenaOneBased(t *testing.T) {
	a := NewArena[int](0)
	if a.Get(0) != nil {
		t.Fatal("index 0 must be the none sentinel")
	}
	i := a.Allocate(7)
	j := a.Allocate(9)
	if i != 1 || j != 2 || *a.Get(j) != 9 || a.Len() != 2 {
		t.Fatalf("unexpected arena state i=%d j=%d len=%d", i, j, a.Len())
	}
	if a.Get(3) != nil {
		t.Fatal("out of range index must be nil")
	}
}

func TestTypedAccessorsCheckKind(t *testing.T) {
	b := NewBuilder(Hints{})
	name := b.StringsInterner.Intern("x")
	id := b.Exprs.NewIdent(source.Span{}, name)
	lit := b.Exprs.NewLit(source.Span{}, ExprLitData{Kind: LitInt, Int: 3})

	if data, ok := b.Exprs.Ident(id); !ok || b.Name(data.Name) != "x" {
		t.Fatal("ident payload lost")
	}
	if _, ok := b.Exprs.Call(id); ok {
		t.Fatal("Call accessor must reject an ident")
	}
	grouped := b.Exprs.NewGroup(source.Span{}, b.Exprs.NewGroup(source.Span{}, lit))
	if b.Exprs.Unwrap(grouped) != lit {
		t.Fatal("Unwrap must strip nested groups")
	}

	blk := b.Stmts.NewBlock(source.Span{}, nil)
	sub := b.Stmts.NewProcBlock(StmtSubshell, source.Span{}, blk)
	if pb, ok := b.Stmts.ProcBlock(sub); !ok || pb.Body != blk {
		t.Fatal("proc block payload lost")
	}
	if _, ok := b.Stmts.Let(sub); ok {
		t.Fatal("Let accessor must reject a subshell")
	}
}

func TestBinaryOpClasses(t *testing.T) {
	if !BinLe.IsComparison() || BinConcat.IsComparison() || !BinMod.IsArithmetic() || !BinOr.IsLogical() {
		t.Fatal("operator classes are wrong")
	}
	if BinConcat.String() != ".." || UnNot.String() != "!" {
		t.Fatal("operator text is wrong")
	}
}
