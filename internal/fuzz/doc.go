// Package fuzztests holds fuzz harnesses for the compiler front end and the
// whole pipeline. They guard against panics, hangs and generator defects on
// arbitrary input.
//
// Назначение: прогонять произвольные байты через lexer, parser и driver.
package fuzztests
