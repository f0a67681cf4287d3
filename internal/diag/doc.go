// Package diag defines the diagnostic model shared by every compiler phase.
//
// # Purpose
//
//   - Give the lexer, parser, lowering and import resolution one deterministic
//     record type for findings.
//   - Decouple producers from storage: phases receive a Reporter and never know
//     whether diagnostics end up in a Bag, get deduplicated, or are dropped.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity: Info, Warning or Error.
//   - Code: compact numeric identifier with a stable string form (LEX1002,
//     SEM3004, ...). Ranges: 1xxx lexical, 2xxx syntax, 3xxx semantic,
//     4xxx I/O, 5xxx project and imports.
//   - Message: short, actionable text.
//   - Primary: the source.Span the diagnostic points at.
//   - Notes: secondary spans ("declared here").
//   - Fixes: optional suggested edits, e.g. the closest option name for a
//     misspelled builtin argument.
//
// # Policy
//
// Lexical and syntax errors stop the compilation at the phase boundary.
// Lowering keeps going after an error and reports every independent problem
// it finds; the driver never runs codegen when the Bag has errors.
//
// Rendering lives in internal/diagfmt.
package diag
