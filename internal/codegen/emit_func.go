package codegen

import (
	"strconv"
	"strings"

	"shale/internal/ir"
	"shale/internal/source"
)

type frameKind uint8

const (
	// frameLoop is a user loop; it counts for break/continue.
	frameLoop frameKind = iota
	// frameTry is the one-shot loop wrapping a try body.
	frameTry
	// frameScope holds restore code of an env or cwd scope.
	frameScope
	// frameChild is a subshell, stage, background job or privileged body.
	frameChild
)

type frame struct {
	kind    frameKind
	restore []string
	flag    string
}

type localKind uint8

const (
	localScalar localKind = iota
	localList
	localMap
)

type local struct {
	name string
	kind localKind
}

// counters are shared between a function and the privileged bodies nested
// in it so temporaries never collide.
type counters struct {
	temp int
	slot int
}

type funcEmitter struct {
	u       *unit
	fn      *ir.Func
	w       *writer
	frames  []frame
	seq     *counters
	extra   []local
	hoisted map[*ir.Expr]string
}

func newFuncEmitter(u *unit, fn *ir.Func, seq *counters, indent int) *funcEmitter {
	return &funcEmitter{
		u:       u,
		fn:      fn,
		w:       &writer{indent: indent},
		seq:     seq,
		hoisted: make(map[*ir.Expr]string),
	}
}

// emitFunc writes one shell function into out. The body goes to its own
// buffer first because bash needs every local declared up front.
func emitFunc(u *unit, f *ir.Func, out *writer) {
	fe := newFuncEmitter(u, f, &counters{}, 1)
	for i, p := range f.Params {
		fe.w.line(p.ShellName + "=" + positional(i+1))
	}
	fe.block(f.Body)
	fe.w.line("return 0")

	out.line(f.ShellName + "() {")
	if u.d.locals {
		for _, decl := range fe.localDecls() {
			out.line("\t" + decl)
		}
	}
	out.buf.WriteString(fe.w.String())
	out.line("}")
	out.blank()
}

func positional(n int) string {
	if n < 10 {
		return "$" + strconv.Itoa(n)
	}
	return "${" + strconv.Itoa(n) + "}"
}

// localDecls groups the function's variables into `local` lines.
func (fe *funcEmitter) localDecls() []string {
	var scalars, lists, maps []string
	add := func(name string, kind localKind) {
		switch kind {
		case localList:
			lists = append(lists, name)
		case localMap:
			maps = append(maps, name)
		default:
			scalars = append(scalars, name)
		}
	}
	for _, b := range fe.fn.Params {
		add(b.ShellName, localScalar)
	}
	for _, b := range fe.fn.Locals {
		add(b.ShellName, kindOf(b.Type))
	}
	for _, l := range fe.extra {
		add(l.name, l.kind)
	}
	var decls []string
	if len(scalars) > 0 {
		decls = append(decls, "local "+strings.Join(scalars, " "))
	}
	if len(lists) > 0 {
		decls = append(decls, "local -a "+strings.Join(lists, " "))
	}
	if len(maps) > 0 {
		decls = append(decls, "local -A "+strings.Join(maps, " "))
	}
	return decls
}

func kindOf(t ir.Type) localKind {
	switch t {
	case ir.TypeList:
		return localList
	case ir.TypeMap:
		return localMap
	}
	return localScalar
}

func (fe *funcEmitter) fnIndex() int {
	if fe.fn == nil {
		return 0
	}
	return fe.fn.Index
}

func (fe *funcEmitter) temp(kind localKind) string {
	fe.seq.temp++
	name := "__t" + strconv.Itoa(fe.fnIndex()) + "_" + strconv.Itoa(fe.seq.temp)
	fe.extra = append(fe.extra, local{name: name, kind: kind})
	return name
}

func (fe *funcEmitter) slot() string {
	fe.seq.slot++
	name := "__s" + strconv.Itoa(fe.fnIndex()) + "_" + strconv.Itoa(fe.seq.slot)
	fe.extra = append(fe.extra, local{name: name})
	return name
}

func (fe *funcEmitter) pushFrame(f frame) { fe.frames = append(fe.frames, f) }
func (fe *funcEmitter) popFrame()         { fe.frames = fe.frames[:len(fe.frames)-1] }

// abort is the code run when __status holds a failure: report, undo the
// enclosing scopes and leave the function, process or try body.
func (fe *funcEmitter) abort(sp source.Span) string {
	var restores []string
	loops := 0
	for i := len(fe.frames) - 1; i >= 0; i-- {
		f := fe.frames[i]
		switch f.kind {
		case frameScope:
			restores = append(restores, f.restore...)
		case frameLoop:
			loops++
		case frameTry:
			loops++
			parts := append(restores, f.flag+"=$__status", "break "+strconv.Itoa(loops))
			return joinStmts(parts)
		case frameChild:
			return joinStmts(append(fe.trap(sp), `exit "$__status"`))
		}
	}
	parts := append(fe.trap(sp), restores...)
	return joinStmts(append(parts, `return "$__status"`))
}

func (fe *funcEmitter) trap(sp source.Span) []string {
	if !fe.u.opts.Diagnostics {
		return nil
	}
	fe.u.use(helperTrap)
	return []string{"__shale_trap " + quote(fe.u.location(sp)) + ` "$__status"`}
}

func joinStmts(parts []string) string {
	return strings.Join(parts, "; ") + ";"
}

// check aborts unless the last recorded status is zero.
func (fe *funcEmitter) check(sp source.Span) {
	fe.w.line(`[ "$__status" -eq 0 ] || { ` + fe.abort(sp) + " }")
}

func (fe *funcEmitter) record() { fe.w.line("__status=$?") }

// jump renders break or continue for the innermost user loop, running the
// restore code of scopes it leaves.
func (fe *funcEmitter) jump(word string) string {
	var restores []string
	n := 0
	for i := len(fe.frames) - 1; i >= 0; i-- {
		f := fe.frames[i]
		switch f.kind {
		case frameScope:
			restores = append(restores, f.restore...)
		case frameTry:
			n++
		case frameLoop:
			n++
			if n > 1 {
				word += " " + strconv.Itoa(n)
			}
			return strings.Join(append(restores, word), "; ")
		case frameChild:
			defect("%s crosses a process boundary", word)
		}
	}
	defect("%s outside a loop", word)
	return ""
}

// restoresToFunc is every restore between here and the function boundary.
func (fe *funcEmitter) restoresToFunc() []string {
	var restores []string
	for i := len(fe.frames) - 1; i >= 0; i-- {
		f := fe.frames[i]
		if f.kind == frameChild {
			defect("return inside a child process")
		}
		if f.kind == frameScope {
			restores = append(restores, f.restore...)
		}
	}
	return restores
}

// nested renders body one level deeper into a separate buffer, as a child
// process. The returned text has no trailing newline.
func (fe *funcEmitter) nested(body func()) string {
	saved := fe.w
	fe.w = &writer{indent: saved.indent + 1}
	fe.pushFrame(frame{kind: frameChild})
	body()
	fe.popFrame()
	text := fe.w.String()
	fe.w = saved
	return strings.TrimSuffix(text, "\n")
}

// subshell renders a block as `( ... )` that ends with status 0 unless it
// aborted.
func (fe *funcEmitter) subshell(b *ir.Block) string {
	inner := fe.nested(func() {
		fe.block(b)
		fe.w.line("exit 0")
	})
	return "(\n" + inner + "\n" + fe.w.pad() + ")"
}
