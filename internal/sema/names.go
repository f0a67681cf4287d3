package sema

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	envNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	// names the generated script uses for itself
	reservedEnvRe = regexp.MustCompile(`^(__|v[0-9]+_|g_)`)
)

// sanitize maps a source identifier onto [A-Za-z0-9_].
func sanitize(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "_"
	}
	return sb.String()
}

// uniqueName returns base, or base_N when base was already handed out.
func uniqueName(used map[string]int, base string) string {
	n := used[base]
	used[base] = n + 1
	if n == 0 {
		return base
	}
	name := base + "_" + strconv.Itoa(n+1)
	for used[name] > 0 {
		n++
		name = base + "_" + strconv.Itoa(n+1)
	}
	used[name] = 1
	return name
}

// envNameProblem validates NAME of env.NAME, env(NAME=...) and preserve_env.
// The message is empty when the name is fine.
func envNameProblem(name string) (msg string, reserved bool) {
	if !envNameRe.MatchString(name) {
		return "'" + name + "' is not a valid environment variable name", false
	}
	if reservedEnvRe.MatchString(name) {
		return "environment name '" + name + "' collides with names used by the generated script (__*, v<N>_*, g_*)", true
	}
	return "", false
}
