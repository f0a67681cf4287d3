package ast

import (
	"shale/internal/source"
)

type ItemKind uint8

const (
	ItemFn ItemKind = iota
	ItemLet
	ItemImport
)

func (k ItemKind) String() string {
	switch k {
	case ItemFn:
		return "Fn"
	case ItemLet:
		return "Let"
	case ItemImport:
		return "Import"
	}
	return "Item?"
}

type Item struct {
	Kind    ItemKind
	Span    source.Span
	Payload PayloadID
}

// ImportItem is `import "path.shl" [as alias]`.
type ImportItem struct {
	Path      string
	PathSpan  source.Span
	Alias     source.StringID // NoStringID when absent
	AliasSpan source.Span
}

type FnParam struct {
	Name source.StringID
	Span source.Span
}

type FnItem struct {
	Name     source.StringID
	NameSpan source.Span
	Params   []FnParam
	Body     StmtID // StmtBlock
}

// LetItem is a top-level constant.
type LetItem struct {
	Name     source.StringID
	NameSpan source.Span
	Value    ExprID
}

type Items struct {
	Arena   *Arena[Item]
	Imports *Arena[ImportItem]
	Fns     *Arena[FnItem]
	Lets    *Arena[LetItem]
}

func NewItems(capHint uint) *Items {
	return &Items{
		Arena:   NewArena[Item](capHint),
		Imports: NewArena[ImportItem](capHint),
		Fns:     NewArena[FnItem](capHint),
		Lets:    NewArena[LetItem](capHint),
	}
}

func (i *Items) new(kind ItemKind, sp source.Span, payload uint32) ItemID {
	return ItemID(i.Arena.Allocate(Item{Kind: kind, Span: sp, Payload: PayloadID(payload)}))
}

func (i *Items) Get(id ItemID) *Item {
	return i.Arena.Get(uint32(id))
}

func (i *Items) NewImport(sp source.Span, data ImportItem) ItemID {
	return i.new(ItemImport, sp, i.Imports.Allocate(data))
}

func (i *Items) NewFn(sp source.Span, data FnItem) ItemID {
	return i.new(ItemFn, sp, i.Fns.Allocate(data))
}

func (i *Items) NewLet(sp source.Span, data LetItem) ItemID {
	return i.new(ItemLet, sp, i.Lets.Allocate(data))
}

func (i *Items) Import(id ItemID) (*ImportItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemImport {
		return nil, false
	}
	return i.Imports.Get(uint32(item.Payload)), true
}

func (i *Items) Fn(id ItemID) (*FnItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemFn {
		return nil, false
	}
	return i.Fns.Get(uint32(item.Payload)), true
}

func (i *Items) Let(id ItemID) (*LetItem, bool) {
	item := i.Get(id)
	if item == nil || item.Kind != ItemLet {
		return nil, false
	}
	return i.Lets.Get(uint32(item.Payload)), true
}
