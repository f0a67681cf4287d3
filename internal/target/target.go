// Package target describes the two shell dialects the compiler emits and
// the capabilities each one provides.
package target

import (
	"fmt"
	"strings"
)

// Target is an output shell dialect.
type Target uint8

const (
	// Rich is bash.
	Rich Target = iota
	// Portable is POSIX sh.
	Portable

	targetCount
)

func (t Target) String() string {
	switch t {
	case Rich:
		return "rich"
	case Portable:
		return "portable"
	default:
		return "unknown"
	}
}

func (t Target) GoString() string {
	return fmt.Sprintf("Target(%s)", t.String())
}

// Shell names the interpreter, as used in messages.
func (t Target) Shell() string {
	if t == Rich {
		return "bash"
	}
	return "POSIX sh"
}

func (t Target) Shebang() string {
	if t == Rich {
		return "#!/usr/bin/env bash"
	}
	return "#!/bin/sh"
}

// Parse accepts the target names and their shell aliases.
func Parse(s string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rich", "bash":
		return Rich, nil
	case "portable", "posix", "sh":
		return Portable, nil
	}
	return Rich, fmt.Errorf("unknown target %q (want rich or portable)", s)
}

// Names lists the canonical target names.
func Names() []string {
	names := make([]string, 0, targetCount)
	for t := Target(0); t < targetCount; t++ {
		names = append(names, t.String())
	}
	return names
}
