// Package token defines lexical token kinds and trivia for the shale compiler.
// Invariants:
//   - Token.Text is a slice of the original source (no copies).
//   - Token.Span matches Text exactly.
//   - Newline is a real token because it separates statements; comments and
//     horizontal space are Leading trivia and never appear in the stream.
//   - Builtin names (run, sudo, capture, ...) are identifiers. They are
//     recognized by lowering, not the lexer.
package token
