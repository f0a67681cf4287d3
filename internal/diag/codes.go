package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Lexical
	LexInfo                 Code = 1000
	LexUnknownChar          Code = 1001
	LexUnterminatedString   Code = 1002
	LexInvalidEscape        Code = 1003
	LexBadNumber            Code = 1004
	LexUnterminatedRawBlock Code = 1005
	LexUnterminatedInterp   Code = 1006

	// Syntax
	SynInfo               Code = 2000
	SynUnexpectedToken    Code = 2001
	SynUnclosedParen      Code = 2002
	SynUnclosedBrace      Code = 2003
	SynUnclosedBracket    Code = 2004
	SynExpectExpression   Code = 2005
	SynExpectIdentifier   Code = 2006
	SynExpectBlock        Code = 2007
	SynExpectSeparator    Code = 2008
	SynSeparatorInArgs    Code = 2009
	SynUnexpectedTopLevel Code = 2010
	SynForMissingIn       Code = 2011
	SynExpectArrow        Code = 2012
	SynBadPattern         Code = 2013
	SynCatchMissing       Code = 2014
	SynBadImport          Code = 2015
	SynBadAssignTarget    Code = 2016
	SynReservedWord       Code = 2017
	SynBadInterpolation   Code = 2018
	SynBadPipelineStage   Code = 2019
	SynNamedArgOrder      Code = 2020

	// Semantic
	SemaInfo                   Code = 3000
	SemaError                  Code = 3001
	SemaUnknownIdentifier      Code = 3002
	SemaDuplicateSymbol        Code = 3003
	SemaUnknownOption          Code = 3004
	SemaDuplicateOption        Code = 3005
	SemaInvalidLiteralType     Code = 3006
	SemaContextViolation       Code = 3007
	SemaTargetUnsupported      Code = 3008
	SemaNamedArgOnUserFunction Code = 3009
	SemaArityMismatch          Code = 3010
	SemaTypeMismatch           Code = 3011
	SemaAssignToConstant       Code = 3012
	SemaBuiltinRedefined       Code = 3013
	SemaMissingEntry           Code = 3014
	SemaRecursionUnsupported   Code = 3015
	SemaDivisionByZero         Code = 3016
	SemaReservedEnvName        Code = 3017
	SemaNotCallable            Code = 3018
	SemaUnreachableCode        Code = 3019
	SemaIntegerOverflow        Code = 3020

	// I/O
	IOLoadFileError Code = 4001

	// Project, manifest and imports
	ProjInfo            Code = 5000
	ProjImportNotFound  Code = 5001
	ProjSelfImport      Code = 5002
	ProjImportCycle     Code = 5003
	ProjDuplicateImport Code = 5004
	ProjInvalidManifest Code = 5005
)

var codeDescription = map[Code]string{
	UnknownCode:                "Unknown error",
	LexInfo:                    "Lexical information",
	LexUnknownChar:             "Unknown character",
	LexUnterminatedString:      "Unterminated string literal",
	LexInvalidEscape:           "Invalid escape sequence",
	LexBadNumber:               "Bad number literal",
	LexUnterminatedRawBlock:    "Unterminated raw shell block",
	LexUnterminatedInterp:      "Unterminated interpolation hole",
	SynInfo:                    "Syntax information",
	SynUnexpectedToken:         "Unexpected token",
	SynUnclosedParen:           "Unclosed parenthesis",
	SynUnclosedBrace:           "Unclosed brace",
	SynUnclosedBracket:         "Unclosed bracket",
	SynExpectExpression:        "Expected expression",
	SynExpectIdentifier:        "Expected identifier",
	SynExpectBlock:             "Expected block",
	SynExpectSeparator:         "Expected newline or ';'",
	SynSeparatorInArgs:         "Statement separator inside argument list",
	SynUnexpectedTopLevel:      "Unexpected top-level item",
	SynForMissingIn:            "Missing 'in' in for loop",
	SynExpectArrow:             "Expected '->' in case arm",
	SynBadPattern:              "Invalid case pattern",
	SynCatchMissing:            "try without catch",
	SynBadImport:               "Malformed import",
	SynBadAssignTarget:         "Invalid assignment target",
	SynReservedWord:            "Reserved word used as identifier",
	SynBadInterpolation:        "Malformed interpolation",
	SynBadPipelineStage:        "Invalid pipeline stage",
	SynNamedArgOrder:           "Positional argument after named argument",
	SemaInfo:                   "Semantic information",
	SemaError:                  "Semantic error",
	SemaUnknownIdentifier:      "Unknown identifier",
	SemaDuplicateSymbol:        "Duplicate binding",
	SemaUnknownOption:          "Unknown named argument",
	SemaDuplicateOption:        "Duplicate named argument",
	SemaInvalidLiteralType:     "Named argument requires a literal of another kind",
	SemaContextViolation:       "Construct not allowed in this context",
	SemaTargetUnsupported:      "Feature not supported by the selected target",
	SemaNamedArgOnUserFunction: "Named argument passed to a user function",
	SemaArityMismatch:          "Wrong number of arguments",
	SemaTypeMismatch:           "Type mismatch",
	SemaAssignToConstant:       "Assignment to a constant",
	SemaBuiltinRedefined:       "Builtin name cannot be redefined",
	SemaMissingEntry:           "Entry function not found",
	SemaRecursionUnsupported:   "Recursion not supported by the selected target",
	SemaDivisionByZero:         "Division by literal zero",
	SemaReservedEnvName:        "Environment name is reserved",
	SemaNotCallable:            "Value is not callable",
	SemaUnreachableCode:        "Unreachable code",
	SemaIntegerOverflow:        "Constant integer overflow",
	IOLoadFileError:            "I/O load file error",
	ProjInfo:                   "Project information",
	ProjImportNotFound:         "Imported file not found",
	ProjSelfImport:             "Module imports itself",
	ProjImportCycle:            "Import cycle detected",
	ProjDuplicateImport:        "Duplicate import",
	ProjInvalidManifest:        "Invalid project manifest",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
