// Package format rewrites shale source into its canonical layout.
//
// Item headers (import, let, fn) are re-emitted from the AST; function
// bodies and constant values are copied from the source with trailing
// blanks stripped. Multi-line raw strings and unsafe blocks are copied
// byte for byte because their whitespace is significant.
//
// Не делает: переразбивку выражений по строкам и переотступы тел функций.
package format
