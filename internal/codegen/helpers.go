package codegen

import (
	"strings"

	"shale/internal/source"
)

// helper is a shell function emitted on demand.
type helper uint8

const (
	helperTrap helper = iota
	helperSt
	helperInt
	helperCd
	helperWait
	helperWaitAll
	helperCount
)

var helperText = [helperCount]string{
	helperTrap: `__shale_trap() {
	printf 'shale: %s: command failed with status %s\n' "$1" "$2" >&2
}`,
	helperSt: `__shale_st() {
	__status=$?
	return "$__status"
}`,
	// Leading zeros are stripped so arithmetic never reads octal.
	helperInt: `__shale_int() {
	__shale_r=$1
	__shale_n=
	case $__shale_r in
	-*) __shale_n=-; __shale_r=${__shale_r#-} ;;
	esac
	case $__shale_r in
	'' | *[!0-9]*)
		printf 'shale: not an integer: %s\n' "$1" >&2
		return 1
		;;
	esac
	while case $__shale_r in 0?*) true ;; *) false ;; esac; do
		__shale_r=${__shale_r#0}
	done
	__shale_r=$__shale_n$__shale_r
}`,
	helperCd: `__shale_cd() {
	case $1 in
	-) set -- ./- ;;
	esac
	CDPATH= cd -- "$1"
}`,
	helperWait: `__shale_wait() {
	wait "$1"
	__shale_w=$?
	__shale_k=
	for __shale_j in $__shale_jobs; do
		[ "$__shale_j" = "$1" ] || __shale_k="$__shale_k $__shale_j"
	done
	__shale_jobs=$__shale_k
	return "$__shale_w"
}`,
	helperWaitAll: `__shale_wait_all() {
	__shale_rc=0
	for __shale_j in $__shale_jobs; do
		wait "$__shale_j"
		__shale_w=$?
		if [ "$__shale_rc" -eq 0 ]; then
			__shale_rc=$__shale_w
		fi
	done
	__shale_jobs=
	return "$__shale_rc"
}`,
}

// unit is one shell program being generated: the script, or the body handed
// to /bin/sh by a privileged block.
type unit struct {
	d    *dialect
	opts Options
	used [helperCount]bool
	jobs bool
}

func newUnit(d *dialect, opts Options) *unit {
	return &unit{d: d, opts: opts}
}

func (u *unit) use(h helper) {
	u.used[h] = true
	if h == helperWait || h == helperWaitAll {
		u.jobs = true
	}
}

// preamble is the job list and the helpers in a fixed order.
func (u *unit) preamble() string {
	var b strings.Builder
	if u.jobs {
		b.WriteString("__shale_jobs=\n")
	}
	for h := helper(0); h < helperCount; h++ {
		if u.used[h] {
			b.WriteString(helperText[h])
			b.WriteString("\n")
		}
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	return b.String()
}

func (u *unit) location(sp source.Span) string {
	if u.opts.Position == nil {
		return "?"
	}
	return u.opts.Position(sp)
}
