// Package ir is the target-agnostic program the code generator walks. It is
// built once by sema, every binding and builtin option already resolved, and
// is never modified afterwards.
package ir

// Type is the value type of an expression or binding.
type Type uint8

const (
	TypeVoid Type = iota
	TypeStr
	TypeInt
	TypeBool
	TypeList
	TypeMap
	TypeJob
	// TypeArgs is the script's positional parameters.
	TypeArgs
)

func (t Type) String() string {
	switch t {
	case TypeVoid:
		return "void"
	case TypeStr:
		return "str"
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	case TypeList:
		return "list"
	case TypeMap:
		return "map"
	case TypeJob:
		return "job"
	case TypeArgs:
		return "args"
	}
	return "?"
}

// Scalar reports whether a value of t is exactly one shell word.
func (t Type) Scalar() bool {
	return t == TypeStr || t == TypeInt || t == TypeBool || t == TypeJob
}

// Words reports whether a value of t expands to zero or more words.
func (t Type) Words() bool {
	return t == TypeList || t == TypeArgs
}

// Mode tells whether an expression is known at compile time.
type Mode uint8

const (
	ModeDynamic Mode = iota
	ModeLiteral
)

func (m Mode) String() string {
	if m == ModeLiteral {
		return "literal"
	}
	return "dynamic"
}
