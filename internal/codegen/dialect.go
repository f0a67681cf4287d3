package codegen

import "shale/internal/target"

// dialect holds the encodings that differ between bash and POSIX sh.
type dialect struct {
	name    string
	shebang string
	// locals declares function variables with `local`.
	locals bool
	// arrays allows indexed and associative arrays.
	arrays bool
	// procSubst allows `> >(tee ...)`.
	procSubst bool
	// waitAny allows `wait -n`.
	waitAny bool
	// argSlice allows "${@:i:1}" with a dynamic i.
	argSlice bool
}

var (
	bashDialect = &dialect{
		name:      "bash",
		shebang:   "#!/usr/bin/env bash",
		locals:    true,
		arrays:    true,
		procSubst: true,
		waitAny:   true,
		argSlice:  true,
	}
	posixDialect = &dialect{
		name:    "sh",
		shebang: "#!/bin/sh",
	}
)

func dialectFor(t target.Target) *dialect {
	if t == target.Rich {
		return bashDialect
	}
	return posixDialect
}

// require panics when IR asks for a feature the dialect lacks; sema gates
// every such construct by target.
func (d *dialect) require(has bool, what string) {
	if !has {
		defect("%s reached the %s dialect", what, d.name)
	}
}
