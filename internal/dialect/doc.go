// Package dialect spots syntax borrowed from other languages (bash, Python,
// Go) in a shale file so the first syntax error can carry a hint.
//
// Evidence collection never changes lexing or parsing; hints are notes on
// an existing diagnostic, never diagnostics of their own.
package dialect
