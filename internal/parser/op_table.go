package parser

import (
	"shale/internal/ast"
	"shale/internal/token"
)

// Таблица приоритетов для бинарных операторов
// Чем больше число, тем выше приоритет
const (
	precLogicalOr      = 1 // ||
	precLogicalAnd     = 2 // &&
	precComparison     = 3 // == != < <= > >=
	precConcat         = 4 // ..
	precAdditive       = 5 // + -
	precMultiplicative = 6 // * / %
)

// binaryOp returns the precedence and operator of a binary token, or -1.
// All binary operators are left-associative.
func binaryOp(kind token.Kind) (int, ast.BinaryOp) {
	switch kind {
	case token.OrOr:
		return precLogicalOr, ast.BinOr
	case token.AndAnd:
		return precLogicalAnd, ast.BinAnd
	case token.EqEq:
		return precComparison, ast.BinEq
	case token.BangEq:
		return precComparison, ast.BinNe
	case token.Lt:
		return precComparison, ast.BinLt
	case token.LtEq:
		return precComparison, ast.BinLe
	case token.Gt:
		return precComparison, ast.BinGt
	case token.GtEq:
		return precComparison, ast.BinGe
	case token.DotDot:
		return precConcat, ast.BinConcat
	case token.Plus:
		return precAdditive, ast.BinAdd
	case token.Minus:
		return precAdditive, ast.BinSub
	case token.Star:
		return precMultiplicative, ast.BinMul
	case token.Slash:
		return precMultiplicative, ast.BinDiv
	case token.Percent:
		return precMultiplicative, ast.BinMod
	default:
		return -1, 0
	}
}

func unaryOp(kind token.Kind) (ast.UnaryOp, bool) {
	switch kind {
	case token.Bang:
		return ast.UnNot, true
	case token.Minus:
		return ast.UnNeg, true
	default:
		return 0, false
	}
}
