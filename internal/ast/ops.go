package ast

type BinaryOp uint8

const (
	BinOr BinaryOp = iota
	BinAnd
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
	BinConcat
	BinAdd
	BinSub
	BinMul
	BinDiv
	BinMod
)

var binaryOpText = [...]string{
	BinOr: "||", BinAnd: "&&", BinEq: "==", BinNe: "!=",
	BinLt: "<", BinLe: "<=", BinGt: ">", BinGe: ">=",
	BinConcat: "..", BinAdd: "+", BinSub: "-", BinMul: "*", BinDiv: "/", BinMod: "%",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpText) {
		return binaryOpText[op]
	}
	return "?"
}

// IsComparison reports ==, !=, <, <=, >, >=.
func (op BinaryOp) IsComparison() bool { return op >= BinEq && op <= BinGe }

// IsArithmetic reports + - * / %.
func (op BinaryOp) IsArithmetic() bool { return op >= BinAdd && op <= BinMod }

// IsLogical reports && and ||.
func (op BinaryOp) IsLogical() bool { return op == BinOr || op == BinAnd }

type UnaryOp uint8

const (
	UnNot UnaryOp = iota
	UnNeg
)

func (op UnaryOp) String() string {
	if op == UnNot {
		return "!"
	}
	return "-"
}
