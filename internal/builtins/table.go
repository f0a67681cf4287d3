// Package builtins holds the fixed schema of every builtin call and with-
// modifier: positional arity, recognized named options, the literal kind each
// option requires and the context it is valid in.
package builtins

import (
	"sort"

	"shale/internal/target"
)

// OptionKind is the value a named option accepts.
type OptionKind uint8

const (
	// OptLitBool needs a true/false literal.
	OptLitBool OptionKind = iota
	// OptLitStr needs a string literal.
	OptLitStr
	// OptLitBoolOrStrList needs a bool literal or a list of string literals.
	OptLitBoolOrStrList
	// OptStr accepts any str expression.
	OptStr
	// OptStrOrLitStrList accepts a str expression or a list of string literals.
	OptStrOrLitStrList
)

func (k OptionKind) String() string {
	switch k {
	case OptLitBool:
		return "a literal true or false"
	case OptLitStr:
		return "a string literal"
	case OptLitBoolOrStrList:
		return "a literal bool or a list of string literals"
	case OptStr:
		return "a string"
	case OptStrOrLitStrList:
		return "a string or a list of string literals"
	}
	return "a value"
}

// Literal reports whether the option demands a compile-time literal.
func (k OptionKind) Literal() bool {
	return k == OptLitBool || k == OptLitStr || k == OptLitBoolOrStrList
}

// OptionContext restricts where a named option may be written.
type OptionContext uint8

const (
	CtxAny OptionContext = iota
	// CtxStatement: only when the call is a statement of its own.
	CtxStatement
	// CtxCapture: only on capture(...) itself.
	CtxCapture
)

func (c OptionContext) String() string {
	switch c {
	case CtxStatement:
		return "only when the call is a statement"
	case CtxCapture:
		return "only on capture(...)"
	}
	return "anywhere"
}

// Placement restricts where the builtin call itself may appear.
type Placement uint8

const (
	PlaceAny Placement = iota
	PlaceStatement
	PlaceForHeader
	PlacePattern
)

func (p Placement) String() string {
	switch p {
	case PlaceStatement:
		return "as a statement"
	case PlaceForHeader:
		return "in a for header"
	case PlacePattern:
		return "as a case pattern"
	}
	return "anywhere"
}

type Option struct {
	Name    string
	Kind    OptionKind
	Context OptionContext
}

// Builtin describes one builtin function or with-modifier.
type Builtin struct {
	Name    string
	MinArgs int
	MaxArgs int // -1: variadic
	Options []Option
	Place   Placement
	// Requires is the capability the target must have; zero when none.
	Requires target.Capability
	// AnyOption accepts every well-formed name (env(NAME=value)).
	AnyOption bool
}

// Option looks up a named option.
func (b *Builtin) Option(name string) (Option, bool) {
	for _, o := range b.Options {
		if o.Name == name {
			return o, true
		}
	}
	return Option{}, false
}

// OptionNames lists the recognized option names in declaration order.
func (b *Builtin) OptionNames() []string {
	names := make([]string, len(b.Options))
	for i, o := range b.Options {
		names[i] = o.Name
	}
	return names
}

// Variadic reports whether the builtin takes any number of positionals.
func (b *Builtin) Variadic() bool { return b.MaxArgs < 0 }

var allowFailStmt = Option{Name: "allow_fail", Kind: OptLitBool, Context: CtxStatement}

var sudoOptions = []Option{
	{Name: "user", Kind: OptLitStr},
	{Name: "non_interactive", Kind: OptLitBool},
	{Name: "invalidate", Kind: OptLitBool},
	{Name: "prompt", Kind: OptLitStr},
	{Name: "preserve_env", Kind: OptLitBoolOrStrList},
}

var functions = map[string]*Builtin{
	"run":  {Name: "run", MinArgs: 1, MaxArgs: -1, Options: []Option{allowFailStmt}},
	"exec": {Name: "exec", MinArgs: 1, MaxArgs: -1, Place: PlaceStatement},
	"sudo": {Name: "sudo", MinArgs: 1, MaxArgs: -1, Options: append(append([]Option(nil), sudoOptions...), allowFailStmt)},
	"capture": {Name: "capture", MinArgs: 1, MaxArgs: 1, Options: []Option{
		{Name: "allow_fail", Kind: OptLitBool, Context: CtxCapture},
		{Name: "stderr", Kind: OptLitBool},
	}},
	"print": {Name: "print", MinArgs: 0, MaxArgs: -1, Place: PlaceStatement, Options: []Option{
		{Name: "stderr", Kind: OptLitBool},
		{Name: "newline", Kind: OptLitBool},
	}},
	"exit":     {Name: "exit", MinArgs: 0, MaxArgs: 1, Place: PlaceStatement},
	"exists":   {Name: "exists", MinArgs: 1, MaxArgs: 1},
	"is_file":  {Name: "is_file", MinArgs: 1, MaxArgs: 1},
	"is_dir":   {Name: "is_dir", MinArgs: 1, MaxArgs: 1},
	"is_exec":  {Name: "is_exec", MinArgs: 1, MaxArgs: 1},
	"status":   {Name: "status", MinArgs: 0, MaxArgs: 0},
	"int":      {Name: "int", MinArgs: 1, MaxArgs: 1},
	"len":      {Name: "len", MinArgs: 1, MaxArgs: 1},
	"lines":    {Name: "lines", MinArgs: 1, MaxArgs: 1, Place: PlaceForHeader},
	"range":    {Name: "range", MinArgs: 2, MaxArgs: 2, Place: PlaceForHeader},
	"glob":     {Name: "glob", MinArgs: 1, MaxArgs: 1, Place: PlacePattern},
	"wait":     {Name: "wait", MinArgs: 1, MaxArgs: 1},
	"wait_all": {Name: "wait_all", MinArgs: 0, MaxArgs: 0},
	"wait_any": {Name: "wait_any", MinArgs: 0, MaxArgs: 0, Requires: target.CapWaitAny},
}

var modifiers = map[string]*Builtin{
	"env": {Name: "env", MinArgs: 0, MaxArgs: 0, AnyOption: true},
	"cwd": {Name: "cwd", MinArgs: 1, MaxArgs: 1},
	"redirect": {Name: "redirect", MinArgs: 0, MaxArgs: 0, Options: []Option{
		{Name: "stdout", Kind: OptStrOrLitStrList},
		{Name: "stderr", Kind: OptStr},
		{Name: "stdin", Kind: OptStr},
		{Name: "append", Kind: OptLitBool},
		{Name: "stderr_to_stdout", Kind: OptLitBool},
	}},
	"log": {Name: "log", MinArgs: 1, MaxArgs: 1, Requires: target.CapLogFanOut, Options: []Option{
		{Name: "append", Kind: OptLitBool},
	}},
	"sudo": {Name: "sudo", MinArgs: 0, MaxArgs: 0, Options: sudoOptions},
}

// Lookup finds a builtin function by name.
func Lookup(name string) (*Builtin, bool) {
	b, ok := functions[name]
	return b, ok
}

// LookupModifier finds a with-modifier by name.
func LookupModifier(name string) (*Builtin, bool) {
	b, ok := modifiers[name]
	return b, ok
}

// IsReserved reports whether name cannot be bound by user code: builtin
// functions and the args value.
func IsReserved(name string) bool {
	if name == "args" {
		return true
	}
	_, ok := functions[name]
	return ok
}

// Names lists every builtin function name, sorted.
func Names() []string {
	return sortedKeys(functions)
}

// ModifierNames lists every with-modifier name, sorted.
func ModifierNames() []string {
	return sortedKeys(modifiers)
}

func sortedKeys(m map[string]*Builtin) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
