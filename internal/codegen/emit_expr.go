package codegen

import (
	"strconv"
	"strings"

	"shale/internal/ast"
	"shale/internal/ir"
)

// Expressions render in two steps. prepare emits the statements a value
// needs first (captures, int conversions, divisor guards, materialized
// booleans) and remembers the temporaries they fill; word, words, arith and
// cond then render text that refers to those temporaries.

// needsPrelude reports whether e cannot be rendered without statements.
func needsPrelude(e *ir.Expr) bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case ir.ExprIntConv:
		return true
	case ir.ExprLen:
		operand := e.Data.(ir.UnaryData).Operand
		return !nameable(operand) || needsPrelude(operand)
	}
	switch d := e.Data.(type) {
	case ir.CaptureData:
		return true
	case ir.ArithData:
		return d.GuardZero || needsPrelude(d.Left) || needsPrelude(d.Right)
	case ir.ConcatData:
		for _, p := range d.Parts {
			if needsPrelude(p) {
				return true
			}
		}
	case ir.CompareData:
		return hoistedOperand(d.Left) || hoistedOperand(d.Right)
	case ir.LogicData:
		return needsPrelude(d.Left) || needsPrelude(d.Right)
	case ir.UnaryData:
		return needsPrelude(d.Operand)
	case ir.SucceedsData:
		return commandNeedsPrelude(d.Cmd)
	case ir.IndexData:
		if needsPrelude(d.Index) || d.Target.Type != ir.TypeArgs && !nameable(d.Target) {
			return true
		}
		return d.Target.Type == ir.TypeMap && !mapKeyInline(d.Index)
	case ir.ListData:
		for _, el := range d.Elems {
			if needsPrelude(el) {
				return true
			}
		}
	case ir.MapData:
		for _, en := range d.Entries {
			if needsPrelude(en.Key) || needsPrelude(en.Value) {
				return true
			}
		}
	}
	return false
}

func anyNeedsPrelude(es []*ir.Expr) bool {
	for _, e := range es {
		if needsPrelude(e) {
			return true
		}
	}
	return false
}

func commandNeedsPrelude(c *ir.Command) bool {
	switch d := c.Data.(type) {
	case ir.RunData:
		return anyNeedsPrelude(d.Argv)
	case ir.SudoData:
		return anyNeedsPrelude(d.Argv)
	case ir.CallData:
		return anyNeedsPrelude(d.Args)
	case ir.PipelineData:
		for _, s := range d.Stages {
			if commandNeedsPrelude(s) {
				return true
			}
		}
	case ir.TestData:
		return needsPrelude(d.Path)
	case ir.WaitData:
		return needsPrelude(d.Job)
	}
	return false
}

// hoistedOperand reports comparison operands that need statements; a
// compound boolean compared by value has to be stored first.
func hoistedOperand(e *ir.Expr) bool {
	return needsPrelude(e) || e.Type == ir.TypeBool && !simpleBool(e)
}

// simpleBool reports booleans that are already a word.
func simpleBool(e *ir.Expr) bool {
	return e.Kind == ir.ExprLit || e.Kind == ir.ExprVar
}

// prepare emits whatever e needs before it can be used as a value.
func (fe *funcEmitter) prepare(e *ir.Expr) {
	if e == nil {
		return
	}
	if _, done := fe.hoisted[e]; done {
		return
	}
	if e.Type == ir.TypeBool && !simpleBool(e) {
		fe.hoistBool(e)
		return
	}
	switch d := e.Data.(type) {
	case ir.ConcatData:
		for _, p := range d.Parts {
			fe.prepare(p)
		}
	case ir.ArithData:
		fe.prepare(d.Left)
		fe.prepare(d.Right)
		if d.GuardZero {
			fe.w.line("[ " + fe.word(d.Right) + " -ne 0 ] || { __status=1; " + fe.abort(e.Span) + " }")
		}
	case ir.UnaryData:
		fe.prepare(d.Operand)
		if e.Kind == ir.ExprLen && !nameable(d.Operand) {
			fe.materialize(d.Operand)
		}
	case ir.CaptureData:
		fe.capture(e, d)
	case ir.IndexData:
		fe.prepareIndex(e, d)
	case ir.ListData:
		for _, el := range d.Elems {
			fe.prepare(el)
		}
	case ir.MapData:
		for _, en := range d.Entries {
			fe.prepare(en.Key)
			fe.prepare(en.Value)
		}
	}
	if e.Kind == ir.ExprIntConv {
		fe.intConv(e)
	}
}

func (fe *funcEmitter) prepareAll(es []*ir.Expr) {
	for _, e := range es {
		fe.prepare(e)
	}
}

// nameable reports values that already live in a shell variable.
func nameable(e *ir.Expr) bool {
	return e.Kind == ir.ExprVar || e.Kind == ir.ExprArgs
}

// varName is the shell variable holding e, materializing it if needed.
func (fe *funcEmitter) varName(e *ir.Expr) string {
	if name, ok := fe.hoisted[e]; ok {
		return name
	}
	if d, ok := e.Data.(ir.VarData); ok {
		return d.Binding.ShellName
	}
	return fe.materialize(e)
}

// materialize stores e in a fresh temporary of the matching kind.
func (fe *funcEmitter) materialize(e *ir.Expr) string {
	if name, ok := fe.hoisted[e]; ok {
		return name
	}
	var name string
	switch e.Type {
	case ir.TypeList:
		fe.u.d.require(fe.u.d.arrays, "list value")
		name = fe.temp(localList)
		fe.w.line(name + "=(" + strings.Join(fe.words(e), " ") + ")")
	case ir.TypeMap:
		fe.u.d.require(fe.u.d.arrays, "map value")
		name = fe.temp(localMap)
		fe.assignMap(name, e)
	default:
		name = fe.temp(localScalar)
		fe.w.line(name + "=" + fe.word(e))
	}
	fe.hoisted[e] = name
	return name
}

func (fe *funcEmitter) capture(e *ir.Expr, d ir.CaptureData) {
	fe.prepareCommand(d.Cmd)
	name := fe.temp(localScalar)
	text := fe.command(d.Cmd)
	if d.Opts.Stderr {
		text += " 2>&1"
	}
	fe.w.line(name + "=$(" + text + ")")
	fe.record()
	if !d.Opts.AllowFail {
		fe.check(e.Span)
	}
	fe.hoisted[e] = name
}

func (fe *funcEmitter) intConv(e *ir.Expr) {
	operand := e.Data.(ir.UnaryData).Operand
	fe.u.use(helperInt)
	fe.w.line("__shale_int " + fe.word(operand))
	fe.record()
	fe.check(e.Span)
	name := fe.temp(localScalar)
	fe.w.line(name + "=$__shale_r")
	fe.hoisted[e] = name
}

func (fe *funcEmitter) prepareIndex(e *ir.Expr, d ir.IndexData) {
	fe.prepare(d.Index)
	switch d.Target.Type {
	case ir.TypeArgs:
		if _, lit := d.Index.Lit(); !lit {
			fe.u.d.require(fe.u.d.argSlice, "dynamic args index")
		}
	case ir.TypeList:
		fe.prepare(d.Target)
		fe.varName(d.Target)
	case ir.TypeMap:
		fe.prepare(d.Target)
		fe.varName(d.Target)
		if !mapKeyInline(d.Index) {
			fe.materialize(d.Index)
		}
	default:
		defect("index into %s", d.Target.Type)
	}
}

// mapKeyInline reports keys that can sit unquoted inside ${m[...]}.
func mapKeyInline(k *ir.Expr) bool {
	if k.Kind == ir.ExprVar {
		return true
	}
	text, ok := k.LiteralText()
	return ok && bare(text) && !strings.ContainsAny(text, "]")
}

func (fe *funcEmitter) mapKey(k *ir.Expr) string {
	if name, ok := fe.hoisted[k]; ok {
		return "${" + name + "}"
	}
	if d, ok := k.Data.(ir.VarData); ok {
		return "${" + d.Binding.ShellName + "}"
	}
	text, ok := k.LiteralText()
	if !ok {
		defect("map key was not prepared")
	}
	return text
}

// word renders a scalar as exactly one shell word.
func (fe *funcEmitter) word(e *ir.Expr) string {
	if name, ok := fe.hoisted[e]; ok {
		return `"${` + name + `}"`
	}
	switch d := e.Data.(type) {
	case ir.LitData:
		text, _ := e.LiteralText()
		return quote(text)
	case ir.VarData:
		if !d.Binding.Type.Scalar() {
			defect("%s %s used as a word", d.Binding.Type, d.Binding.ShellName)
		}
		return `"${` + d.Binding.ShellName + `}"`
	case ir.EnvData:
		return `"${` + d.Name + `}"`
	case ir.ConcatData:
		var b strings.Builder
		for _, p := range d.Parts {
			b.WriteString(fe.word(p))
		}
		if b.Len() == 0 {
			return "''"
		}
		return b.String()
	case ir.IndexData:
		return fe.indexWord(d)
	}
	switch e.Kind {
	case ir.ExprArith, ir.ExprNeg, ir.ExprLen:
		return `"$((` + fe.arithTop(e) + `))"`
	case ir.ExprStatus:
		return `"${__status}"`
	}
	defect("%s (%s) has no word form", e.Kind, e.Type)
	return ""
}

func (fe *funcEmitter) indexWord(d ir.IndexData) string {
	switch d.Target.Type {
	case ir.TypeArgs:
		if lit, ok := d.Index.Lit(); ok {
			return `"` + positional(int(lit.Int)+1) + `"`
		}
		return `"${@:$((` + fe.arith(d.Index) + ` + 1)):1}"`
	case ir.TypeList:
		return `"${` + fe.varName(d.Target) + `[` + fe.arith(d.Index) + `]}"`
	case ir.TypeMap:
		return `"${` + fe.varName(d.Target) + `[` + fe.mapKey(d.Index) + `]}"`
	}
	defect("index into %s", d.Target.Type)
	return ""
}

// words renders a value that may spread into several arguments.
func (fe *funcEmitter) words(e *ir.Expr) []string {
	switch e.Type {
	case ir.TypeArgs:
		return []string{`"$@"`}
	case ir.TypeList:
		if d, ok := e.Data.(ir.ListData); ok {
			var out []string
			for _, el := range d.Elems {
				out = append(out, fe.words(el)...)
			}
			return out
		}
		fe.u.d.require(fe.u.d.arrays, "list value")
		return []string{`"${` + fe.varName(e) + `[@]}"`}
	}
	return []string{fe.word(e)}
}

func (fe *funcEmitter) argv(es []*ir.Expr) string {
	var out []string
	for _, e := range es {
		out = append(out, fe.words(e)...)
	}
	return strings.Join(out, " ")
}

var arithOps = map[ast.BinaryOp]string{
	ast.BinAdd: "+", ast.BinSub: "-", ast.BinMul: "*", ast.BinDiv: "/", ast.BinMod: "%",
}

// arith renders an int expression for use inside $(( )).
func (fe *funcEmitter) arith(e *ir.Expr) string {
	if name, ok := fe.hoisted[e]; ok {
		return "${" + name + "}"
	}
	switch d := e.Data.(type) {
	case ir.LitData:
		if d.Int < 0 {
			return "(" + strconv.FormatInt(d.Int, 10) + ")"
		}
		return strconv.FormatInt(d.Int, 10)
	case ir.VarData:
		return "${" + d.Binding.ShellName + "}"
	case ir.ArithData:
		return "(" + fe.arith(d.Left) + " " + arithOps[d.Op] + " " + fe.arith(d.Right) + ")"
	case ir.UnaryData:
		if e.Kind == ir.ExprNeg {
			return "(-" + fe.arith(d.Operand) + ")"
		}
		if e.Kind == ir.ExprLen {
			return fe.lenArith(d.Operand)
		}
	}
	if e.Kind == ir.ExprStatus {
		return "${__status}"
	}
	defect("%s is not arithmetic", e.Kind)
	return ""
}

// arithTop is arith without the grouping parentheses of the outermost
// operator; $(( )) already groups it.
func (fe *funcEmitter) arithTop(e *ir.Expr) string {
	if d, ok := e.Data.(ir.ArithData); ok {
		if _, hoisted := fe.hoisted[e]; !hoisted {
			return fe.arith(d.Left) + " " + arithOps[d.Op] + " " + fe.arith(d.Right)
		}
	}
	return fe.arith(e)
}

func (fe *funcEmitter) lenArith(e *ir.Expr) string {
	if e.Kind == ir.ExprArgs {
		return "$#"
	}
	name := fe.varName(e)
	switch e.Type {
	case ir.TypeList, ir.TypeMap:
		return "${#" + name + "[@]}"
	}
	return "${#" + name + "}"
}

var compareOps = map[ast.BinaryOp][2]string{
	ast.BinEq: {"-eq", "="},
	ast.BinNe: {"-ne", "!="},
	ast.BinLt: {"-lt", ""},
	ast.BinLe: {"-le", ""},
	ast.BinGt: {"-gt", ""},
	ast.BinGe: {"-ge", ""},
}

// prepareCond emits what cond(e) needs while keeping && and || lazy: a
// right operand with a prelude turns the whole operator into a hoisted
// boolean.
func (fe *funcEmitter) prepareCond(e *ir.Expr) {
	if _, done := fe.hoisted[e]; done {
		return
	}
	switch d := e.Data.(type) {
	case ir.LogicData:
		if needsPrelude(d.Right) {
			fe.hoistBool(e)
			return
		}
		fe.prepareCond(d.Left)
	case ir.UnaryData:
		fe.prepareCond(d.Operand)
	case ir.CompareData:
		fe.prepare(d.Left)
		fe.prepare(d.Right)
	case ir.SucceedsData:
		fe.prepareCommand(d.Cmd)
	}
}

// cond renders a bool expression as a shell condition list.
func (fe *funcEmitter) cond(e *ir.Expr) string {
	if name, ok := fe.hoisted[e]; ok {
		return `[ "${` + name + `}" = true ]`
	}
	switch d := e.Data.(type) {
	case ir.LitData:
		if d.Bool {
			return ":"
		}
		return "false"
	case ir.VarData:
		return `[ "${` + d.Binding.ShellName + `}" = true ]`
	case ir.CompareData:
		ops := compareOps[d.Op]
		op := ops[1]
		if d.Numeric {
			op = ops[0]
		}
		if op == "" {
			defect("ordered comparison of strings")
		}
		return "[ " + fe.word(d.Left) + " " + op + " " + fe.word(d.Right) + " ]"
	case ir.LogicData:
		op := " && "
		if d.Op == ast.BinOr {
			op = " || "
		}
		return fe.condOperand(d.Left) + op + fe.condOperand(d.Right)
	case ir.UnaryData:
		if e.Kind == ir.ExprNot {
			return "! " + fe.condOperand(d.Operand)
		}
	case ir.SucceedsData:
		fe.u.use(helperSt)
		return "{ " + fe.command(d.Cmd) + "; __shale_st; }"
	}
	defect("%s is not a condition", e.Kind)
	return ""
}

func (fe *funcEmitter) condOperand(e *ir.Expr) string {
	if _, ok := fe.hoisted[e]; !ok && (e.Kind == ir.ExprLogic || e.Kind == ir.ExprNot) {
		return "{ " + fe.cond(e) + "; }"
	}
	return fe.cond(e)
}

// hoistBool evaluates e into a temporary holding true or false.
func (fe *funcEmitter) hoistBool(e *ir.Expr) string {
	name := fe.temp(localScalar)
	if d, ok := e.Data.(ir.LogicData); ok && needsPrelude(d.Right) {
		fe.prepareCond(d.Left)
		right := func() {
			fe.w.push()
			fe.prepareCond(d.Right)
			fe.w.line("if " + fe.cond(d.Right) + "; then " + name + "=true; else " + name + "=false; fi")
			fe.w.pop()
		}
		short := "false"
		if d.Op == ast.BinOr {
			short = "true"
		}
		fe.w.line("if " + fe.cond(d.Left) + "; then")
		if d.Op == ast.BinAnd {
			right()
		} else {
			fe.w.line("\t" + name + "=" + short)
		}
		fe.w.line("else")
		if d.Op == ast.BinOr {
			right()
		} else {
			fe.w.line("\t" + name + "=" + short)
		}
		fe.w.line("fi")
	} else {
		fe.prepareCond(e)
		fe.w.line("if " + fe.cond(e) + "; then " + name + "=true; else " + name + "=false; fi")
	}
	fe.hoisted[e] = name
	return name
}

// assignMap fills the associative array name from a map value.
func (fe *funcEmitter) assignMap(name string, e *ir.Expr) {
	if d, ok := e.Data.(ir.MapData); ok {
		parts := make([]string, len(d.Entries))
		for i, en := range d.Entries {
			parts[i] = "[" + fe.word(en.Key) + "]=" + fe.word(en.Value)
		}
		fe.w.line(name + "=(" + strings.Join(parts, " ") + ")")
		return
	}
	src := fe.varName(e)
	key := fe.temp(localScalar)
	fe.w.line(name + "=()")
	fe.w.line(`for ` + key + ` in "${!` + src + `[@]}"; do ` + name + `["${` + key + `}"]=${` + src + `["${` + key + `}"]}; done`)
}
