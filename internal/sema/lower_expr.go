package sema

import (
	"fmt"
	"math"
	"unicode/utf8"

	"shale/internal/ast"
	"shale/internal/builtins"
	"shale/internal/diag"
	"shale/internal/ir"
	"shale/internal/source"
	"shale/internal/symbols"
	"shale/internal/target"
)

// lowerExpr lowers an expression in value position. It returns nil after
// reporting when the expression is invalid.
func (l *lowerer) lowerExpr(id ast.ExprID) *ir.Expr {
	e := l.b.Exprs.Get(id)
	if e == nil {
		return nil
	}
	sp := e.Span
	switch e.Kind {
	case ast.ExprLit:
		lit, _ := l.b.Exprs.Lit(id)
		switch lit.Kind {
		case ast.LitInt:
			return ir.Int(sp, lit.Int)
		case ast.LitBool:
			return ir.Bool(sp, lit.Bool)
		}
		if !l.checkText(lit.Str, sp) {
			return nil
		}
		return ir.Str(sp, lit.Str)
	case ast.ExprInterp:
		data, _ := l.b.Exprs.Interp(id)
		return l.lowerInterp(sp, data)
	case ast.ExprEnv:
		data, _ := l.b.Exprs.Env(id)
		if !l.checkEnvName(data.Name, data.NameSpan) {
			return nil
		}
		return ir.Env(sp, data.Name)
	case ast.ExprIdent:
		data, _ := l.b.Exprs.Ident(id)
		return l.lowerIdent(sp, data.Name)
	case ast.ExprMember:
		data, _ := l.b.Exprs.Member(id)
		return l.lowerMember(sp, data)
	case ast.ExprCall:
		data, _ := l.b.Exprs.Call(id)
		return l.lowerCallValue(sp, id, data)
	case ast.ExprIndex:
		data, _ := l.b.Exprs.Index(id)
		return l.lowerIndex(sp, data)
	case ast.ExprList:
		data, _ := l.b.Exprs.List(id)
		return l.lowerList(sp, data)
	case ast.ExprMap:
		data, _ := l.b.Exprs.Map(id)
		return l.lowerMap(sp, data)
	case ast.ExprBinary:
		data, _ := l.b.Exprs.Binary(id)
		return l.lowerBinary(sp, data)
	case ast.ExprUnary:
		data, _ := l.b.Exprs.Unary(id)
		return l.lowerUnary(sp, data)
	case ast.ExprGroup:
		data, _ := l.b.Exprs.Group(id)
		return l.lowerExpr(data.Inner)
	case ast.ExprBackground:
		l.report(diag.SemaContextViolation, sp, "background can only start a statement or initialize a let")
		return nil
	case ast.ExprUnsafe, ast.ExprPipeline, ast.ExprBlockStage:
		l.report(diag.SemaTypeMismatch, sp, "a command has no value here; use capture(...) for its output")
		return nil
	}
	l.report(diag.SemaError, sp, "unsupported expression %s", e.Kind)
	return nil
}

func (l *lowerer) lowerInterp(sp source.Span, data *ast.ExprInterpData) *ir.Expr {
	parts := make([]*ir.Expr, 0, len(data.Parts))
	ok := true
	for _, p := range data.Parts {
		if !p.Expr.IsValid() {
			if p.Text == "" {
				continue
			}
			if !l.checkText(p.Text, p.Span) {
				ok = false
				continue
			}
			parts = append(parts, ir.Str(p.Span, p.Text))
			continue
		}
		e := l.lowerScalar(p.Expr, "an interpolated value")
		if e == nil {
			ok = false
			continue
		}
		parts = append(parts, e)
	}
	if !ok {
		return nil
	}
	return concat(sp, parts)
}

// concat glues parts into one str, folding literal neighbours.
func concat(sp source.Span, parts []*ir.Expr) *ir.Expr {
	var flat []*ir.Expr
	for _, p := range parts {
		if p.Kind == ir.ExprConcat {
			flat = append(flat, p.Data.(ir.ConcatData).Parts...)
			continue
		}
		if text, isLit := p.LiteralText(); isLit {
			if n := len(flat); n > 0 {
				if prev, prevLit := flat[n-1].LiteralText(); prevLit {
					flat[n-1] = ir.Str(flat[n-1].Span.Cover(p.Span), prev+text)
					continue
				}
			}
			flat = append(flat, ir.Str(p.Span, text))
			continue
		}
		flat = append(flat, p)
	}
	switch len(flat) {
	case 0:
		return ir.Str(sp, "")
	case 1:
		if flat[0].Type == ir.TypeStr {
			out := *flat[0]
			out.Span = sp
			return &out
		}
	}
	return ir.New(ir.ExprConcat, sp, ir.TypeStr, ir.ConcatData{Parts: flat})
}

func (l *lowerer) lowerIdent(sp source.Span, nameID source.StringID) *ir.Expr {
	name := l.name(nameID)
	if name == "args" {
		return l.lowerArgs(sp)
	}
	if _, isBuiltin := builtins.Lookup(name); isBuiltin {
		l.report(diag.SemaTypeMismatch, sp, "'%s' is a builtin function, not a value; call it", name)
		return nil
	}
	symID, ok := l.res.Lookup(nameID)
	if !ok {
		l.unknownIdentifier(name, sp)
		return nil
	}
	return l.symbolValue(sp, l.table.Symbols.Get(symID))
}

func (l *lowerer) symbolValue(sp source.Span, sym *symbols.Symbol) *ir.Expr {
	name := l.name(sym.Name)
	switch sym.Kind {
	case symbols.SymbolFunction:
		l.report(diag.SemaTypeMismatch, sp, "function '%s' is not a value; call it, or capture(...) its output", name)
		return nil
	case symbols.SymbolModule:
		l.report(diag.SemaTypeMismatch, sp, "module '%s' is not a value", name)
		return nil
	case symbols.SymbolGlobal:
		g := l.globals[sym.Ref]
		l.lowerGlobal(g)
		if g.ir.Value == nil {
			return nil
		}
		// constants are inlined where no shell variable exists
		if l.constCtx || len(l.priv) > 0 {
			v := *g.ir.Value
			v.Span = sp
			return &v
		}
		return ir.Var(sp, g.ir.Binding)
	}
	b := l.lookupBinding(sym)
	if b == nil {
		return nil
	}
	if len(l.priv) > 0 && (b.Type == ir.TypeList || b.Type == ir.TypeMap) {
		l.report(diag.SemaTargetUnsupported, sp, "%s value '%s' cannot be passed into a sudo block", b.Type, name)
		return nil
	}
	return ir.Var(sp, b)
}

func (l *lowerer) lowerArgs(sp source.Span) *ir.Expr {
	switch {
	case l.fn == nil:
		l.report(diag.SemaContextViolation, sp, "args is not available in a top-level let")
		return nil
	case !l.fn.ir.Entry:
		diag.ReportError(l.reporter, diag.SemaContextViolation, sp, "args is only available in the entry function '"+l.opts.Entry+"'").
			WithNote(l.fn.ir.Span, "pass the values this function needs as parameters").
			Emit()
		return nil
	case len(l.priv) > 0:
		l.report(diag.SemaContextViolation, sp, "args cannot be used inside a sudo block")
		return nil
	}
	return ir.Args(sp)
}

func (l *lowerer) unknownIdentifier(name string, sp source.Span) {
	candidates := append(l.visibleNames(), builtins.Names()...)
	rb := diag.ReportError(l.reporter, diag.SemaUnknownIdentifier, sp,
		fmt.Sprintf("unknown identifier '%s'%s", name, builtins.DidYouMean(name, candidates)))
	if s, ok := builtins.Suggest(name, candidates); ok {
		rb.WithFix("replace with '"+s+"'", diag.FixEdit{Span: sp, NewText: s})
	}
	rb.Emit()
}

// lowerMember resolves alias.name to a constant of an imported module.
func (l *lowerer) lowerMember(sp source.Span, data *ast.ExprMemberData) *ir.Expr {
	sym := l.memberSymbol(data)
	if sym == nil {
		return nil
	}
	return l.symbolValue(sp, sym)
}

// memberSymbol looks up alias.name. It reports and returns nil when alias
// is not an imported module or the module has no such name.
func (l *lowerer) memberSymbol(data *ast.ExprMemberData) *symbols.Symbol {
	targetID := l.b.Exprs.Unwrap(data.Target)
	ident, ok := l.b.Exprs.Ident(targetID)
	if !ok {
		l.report(diag.SemaTypeMismatch, l.exprSpan(data.Target), "only imported modules have members")
		return nil
	}
	modName := l.name(ident.Name)
	symID, found := l.res.Lookup(ident.Name)
	if !found {
		l.unknownIdentifier(modName, l.exprSpan(targetID))
		return nil
	}
	modSym := l.table.Symbols.Get(symID)
	if modSym.Kind != symbols.SymbolModule {
		l.report(diag.SemaTypeMismatch, l.exprSpan(targetID), "%s '%s' has no members", modSym.Kind, modName)
		return nil
	}
	unit := l.units[modSym.Ref]
	field := l.name(data.Field)
	memberID, found := l.table.LookupIn(unit.scope, data.Field)
	member := l.table.Symbols.Get(memberID)
	if !found || member == nil || member.Kind == symbols.SymbolModule {
		l.report(diag.SemaUnknownIdentifier, data.FieldSpan, "module '%s' has no '%s'%s",
			modName, field, builtins.DidYouMean(field, l.memberNames(unit)))
		return nil
	}
	return member
}

func (l *lowerer) memberNames(u *unitState) []string {
	scope := l.table.Scopes.Get(u.scope)
	if scope == nil {
		return nil
	}
	var names []string
	for _, id := range scope.Symbols {
		sym := l.table.Symbols.Get(id)
		if sym.Kind == symbols.SymbolFunction || sym.Kind == symbols.SymbolGlobal {
			names = append(names, l.name(sym.Name))
		}
	}
	return names
}

func (l *lowerer) lowerIndex(sp source.Span, data *ast.ExprIndexData) *ir.Expr {
	t := l.lowerExpr(data.Target)
	if t == nil {
		return nil
	}
	var idx *ir.Expr
	switch t.Type {
	case ir.TypeList:
		idx = l.lowerTyped(data.Index, ir.TypeInt, "a list index")
	case ir.TypeArgs:
		idx = l.lowerTyped(data.Index, ir.TypeInt, "an args index")
		if idx != nil && !idx.IsLiteral() && !l.has(target.CapLists) {
			l.report(diag.SemaTargetUnsupported, l.exprSpan(data.Index),
				"args[i] with a computed index is not supported by %s; use a literal index", l.targetName())
			return nil
		}
		if n, isLit := idx.Lit(); idx != nil && isLit && n.Int < 0 {
			l.report(diag.SemaTypeMismatch, l.exprSpan(data.Index), "args index cannot be negative")
			return nil
		}
	case ir.TypeMap:
		idx = l.lowerTyped(data.Index, ir.TypeStr, "a map key")
	default:
		l.report(diag.SemaTypeMismatch, l.exprSpan(data.Target), "a %s cannot be indexed", t.Type)
		return nil
	}
	if idx == nil {
		return nil
	}
	return ir.New(ir.ExprIndex, sp, ir.TypeStr, ir.IndexData{Target: t, Index: idx})
}

func (l *lowerer) lowerList(sp source.Span, data *ast.ExprListData) *ir.Expr {
	if !l.requireCap(target.CapLists, sp) {
		return nil
	}
	elems := make([]*ir.Expr, 0, len(data.Elems))
	literal := true
	for _, id := range data.Elems {
		e := l.lowerScalar(id, "a list element")
		if e == nil {
			return nil
		}
		literal = literal && e.IsLiteral()
		elems = append(elems, e)
	}
	out := ir.New(ir.ExprList, sp, ir.TypeList, ir.ListData{Elems: elems})
	if literal {
		out.Mode = ir.ModeLiteral
	}
	return out
}

func (l *lowerer) lowerMap(sp source.Span, data *ast.ExprMapData) *ir.Expr {
	if !l.requireCap(target.CapMaps, sp) {
		return nil
	}
	entries := make([]ir.MapEntry, 0, len(data.Entries))
	literal := true
	seen := make(map[string]source.Span)
	for _, ent := range data.Entries {
		k := l.lowerTyped(ent.Key, ir.TypeStr, "a map key")
		v := l.lowerScalar(ent.Value, "a map value")
		if k == nil || v == nil {
			return nil
		}
		if text, isLit := k.LiteralText(); isLit {
			if prev, dup := seen[text]; dup {
				diag.ReportError(l.reporter, diag.SemaDuplicateSymbol, k.Span, "duplicate map key '"+text+"'").
					WithNote(prev, "first given here").
					Emit()
				return nil
			}
			seen[text] = k.Span
		}
		literal = literal && k.IsLiteral() && v.IsLiteral()
		entries = append(entries, ir.MapEntry{Key: k, Value: v})
	}
	out := ir.New(ir.ExprMap, sp, ir.TypeMap, ir.MapData{Entries: entries})
	if literal {
		out.Mode = ir.ModeLiteral
	}
	return out
}

func (l *lowerer) lowerUnary(sp source.Span, data *ast.ExprUnaryData) *ir.Expr {
	if data.Op == ast.UnNot {
		x := l.lowerTyped(data.Operand, ir.TypeBool, "the operand of !")
		if x == nil {
			return nil
		}
		return not(sp, x)
	}
	x := l.lowerTyped(data.Operand, ir.TypeInt, "the operand of unary -")
	if x == nil {
		return nil
	}
	if lit, ok := x.Lit(); ok {
		if lit.Int == math.MinInt64 {
			l.report(diag.SemaIntegerOverflow, sp, "integer overflow in unary -")
			return nil
		}
		return ir.Int(sp, -lit.Int)
	}
	return ir.New(ir.ExprNeg, sp, ir.TypeInt, ir.UnaryData{Operand: x})
}

func not(sp source.Span, x *ir.Expr) *ir.Expr {
	if lit, ok := x.Lit(); ok {
		return ir.Bool(sp, !lit.Bool)
	}
	return ir.New(ir.ExprNot, sp, ir.TypeBool, ir.UnaryData{Operand: x})
}

func (l *lowerer) lowerBinary(sp source.Span, data *ast.ExprBinaryData) *ir.Expr {
	switch {
	case data.Op.IsLogical():
		left := l.lowerTyped(data.Left, ir.TypeBool, "the operand of "+data.Op.String())
		right := l.lowerTyped(data.Right, ir.TypeBool, "the operand of "+data.Op.String())
		if left == nil || right == nil {
			return nil
		}
		return logic(sp, data.Op, left, right)
	case data.Op == ast.BinConcat:
		left := l.lowerScalar(data.Left, "the operand of ..")
		right := l.lowerScalar(data.Right, "the operand of ..")
		if left == nil || right == nil {
			return nil
		}
		return concat(sp, []*ir.Expr{left, right})
	case data.Op.IsComparison():
		return l.lowerCompare(sp, data)
	}
	return l.lowerArith(sp, data)
}

func logic(sp source.Span, op ast.BinaryOp, left, right *ir.Expr) *ir.Expr {
	if l, ok := left.Lit(); ok {
		if r, ok := right.Lit(); ok {
			if op == ast.BinAnd {
				return ir.Bool(sp, l.Bool && r.Bool)
			}
			return ir.Bool(sp, l.Bool || r.Bool)
		}
	}
	return ir.New(ir.ExprLogic, sp, ir.TypeBool, ir.LogicData{Op: op, Left: left, Right: right})
}

func (l *lowerer) lowerCompare(sp source.Span, data *ast.ExprBinaryData) *ir.Expr {
	left := l.lowerScalar(data.Left, "a compared value")
	right := l.lowerScalar(data.Right, "a compared value")
	if left == nil || right == nil {
		return nil
	}
	ordered := data.Op != ast.BinEq && data.Op != ast.BinNe
	if ordered && (left.Type != ir.TypeInt || right.Type != ir.TypeInt) {
		l.report(diag.SemaTypeMismatch, sp, "%s compares ints, got %s and %s", data.Op, left.Type, right.Type)
		return nil
	}
	if left.Type != right.Type {
		l.report(diag.SemaTypeMismatch, sp, "cannot compare %s with %s", left.Type, right.Type)
		return nil
	}
	numeric := left.Type == ir.TypeInt
	if lv, ok := left.Lit(); ok {
		if rv, ok := right.Lit(); ok {
			return ir.Bool(sp, foldCompare(data.Op, left.Type, lv, rv))
		}
	}
	return ir.New(ir.ExprCompare, sp, ir.TypeBool, ir.CompareData{Op: data.Op, Left: left, Right: right, Numeric: numeric})
}

func foldCompare(op ast.BinaryOp, t ir.Type, l, r ir.LitData) bool {
	var c int
	switch t {
	case ir.TypeInt:
		switch {
		case l.Int < r.Int:
			c = -1
		case l.Int > r.Int:
			c = 1
		}
	case ir.TypeBool:
		if l.Bool != r.Bool {
			c = 1
		}
	default:
		switch {
		case l.Str < r.Str:
			c = -1
		case l.Str > r.Str:
			c = 1
		}
	}
	switch op {
	case ast.BinEq:
		return c == 0
	case ast.BinNe:
		return c != 0
	case ast.BinLt:
		return c < 0
	case ast.BinLe:
		return c <= 0
	case ast.BinGt:
		return c > 0
	}
	return c >= 0
}

func (l *lowerer) lowerArith(sp source.Span, data *ast.ExprBinaryData) *ir.Expr {
	what := "the operand of " + data.Op.String()
	left := l.lowerTyped(data.Left, ir.TypeInt, what)
	right := l.lowerTyped(data.Right, ir.TypeInt, what)
	if left == nil || right == nil {
		return nil
	}
	divides := data.Op == ast.BinDiv || data.Op == ast.BinMod
	rv, rightLit := right.Lit()
	if divides && rightLit && rv.Int == 0 {
		l.report(diag.SemaDivisionByZero, right.Span, "division by zero")
		return nil
	}
	if lv, ok := left.Lit(); ok && rightLit {
		v, ok := foldArith(data.Op, lv.Int, rv.Int)
		if !ok {
			l.report(diag.SemaIntegerOverflow, sp, "integer overflow in %d %s %d", lv.Int, data.Op, rv.Int)
			return nil
		}
		return ir.Int(sp, v)
	}
	return ir.New(ir.ExprArith, sp, ir.TypeInt, ir.ArithData{
		Op:        data.Op,
		Left:      left,
		Right:     right,
		GuardZero: divides && !rightLit,
	})
}

// foldArith evaluates a constant operation. It reports false when the
// result does not fit in 64 bits; the shells would wrap silently.
func foldArith(op ast.BinaryOp, a, b int64) (int64, bool) {
	switch op {
	case ast.BinAdd:
		r := a + b
		return r, (r > a) == (b > 0)
	case ast.BinSub:
		r := a - b
		return r, (r < a) == (b > 0)
	case ast.BinMul:
		if a == 0 || b == 0 {
			return 0, true
		}
		r := a * b
		if r/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
			return 0, false
		}
		return r, true
	}
	if a == math.MinInt64 && b == -1 {
		return 0, false
	}
	if op == ast.BinDiv {
		return a / b, true
	}
	return a % b, true
}

// lowerCond lowers a condition. Commands and predicates become Succeeds
// tests: they record their status and never abort.
func (l *lowerer) lowerCond(id ast.ExprID) *ir.Expr {
	id = l.b.Exprs.Unwrap(id)
	sp := l.exprSpan(id)
	if bin, ok := l.b.Exprs.Binary(id); ok && bin.Op.IsLogical() {
		left := l.lowerCond(bin.Left)
		right := l.lowerCond(bin.Right)
		if left == nil || right == nil {
			return nil
		}
		return logic(sp, bin.Op, left, right)
	}
	if un, ok := l.b.Exprs.Unary(id); ok && un.Op == ast.UnNot {
		x := l.lowerCond(un.Operand)
		if x == nil {
			return nil
		}
		return not(sp, x)
	}
	if l.isCommand(id) {
		cmd := l.lowerCommand(id, ctxCond)
		if cmd == nil {
			return nil
		}
		return ir.New(ir.ExprSucceeds, sp, ir.TypeBool, ir.SucceedsData{Cmd: cmd})
	}
	e := l.lowerExpr(id)
	if e == nil {
		return nil
	}
	if e.Type != ir.TypeBool {
		l.report(diag.SemaTypeMismatch, sp, "a condition must be a bool or a command, got %s", e.Type)
		return nil
	}
	return e
}

// runeLen is the length len() folds a literal str to.
func runeLen(s string) int64 {
	return int64(utf8.RuneCountInString(s))
}
