// Package driver runs the compiler pipeline: load, lex, parse, resolve
// imports, lower and emit. It owns the FileSet and the diagnostics bag of
// each compilation and never writes anything but the requested artifact.
package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"shale/internal/ast"
	"shale/internal/codegen"
	"shale/internal/diag"
	"shale/internal/diagfmt"
	"shale/internal/ir"
	"shale/internal/observ"
	"shale/internal/sema"
	"shale/internal/source"
	"shale/internal/target"
	"shale/internal/trace"
)

// ErrInternalDefect reports a compiler bug: the generator met IR it cannot
// render. It is never a user diagnostic.
var ErrInternalDefect = errors.New("internal compiler defect")

// EmitKind selects the artifact of a compilation.
type EmitKind uint8

const (
	EmitShell EmitKind = iota
	EmitAST
	EmitIR
)

func (k EmitKind) String() string {
	switch k {
	case EmitAST:
		return "ast"
	case EmitIR:
		return "ir"
	}
	return "shell"
}

func ParseEmit(s string) (EmitKind, error) {
	switch strings.ToLower(s) {
	case "", "shell", "sh":
		return EmitShell, nil
	case "ast":
		return EmitAST, nil
	case "ir":
		return EmitIR, nil
	}
	return EmitShell, fmt.Errorf("unknown emit kind %q (want shell, ast or ir)", s)
}

// Options of one compilation. The zero value compiles for the rich target
// without the runtime error trap; DefaultOptions turns the trap on.
type Options struct {
	Target         target.Target
	Diagnostics    bool // runtime error trap with source locations
	Emit           EmitKind
	DumpFormat     ir.Format // for EmitAST and EmitIR
	Executable     bool      // caller intent, reported back in Result
	MaxDiagnostics int       // 0 = unbounded
	Entry          string    // "main" when empty
	FS             afero.Fs  // imports are read from here; OS when nil
	Version        string
	Cache          *DiskCache // optional, shell output only
}

func DefaultOptions() Options {
	return Options{Target: target.Rich, Diagnostics: true, Entry: "main"}
}

func (o Options) normalized() Options {
	if o.FS == nil {
		o.FS = afero.NewOsFs()
	}
	if o.Entry == "" {
		o.Entry = "main"
	}
	if o.Version == "" {
		o.Version = "dev"
	}
	return o
}

// Result of a compilation. Output is nil whenever Bag holds an error.
type Result struct {
	Output     []byte
	Executable bool
	Bag        *diag.Bag
	FileSet    *source.FileSet
	Timings    observ.Report
	Cached     bool
}

// Failed reports whether the compilation produced error diagnostics.
func (r *Result) Failed() bool {
	return r == nil || r.Bag.HasErrors()
}

// CompileFile reads path from opts.FS and compiles it.
func CompileFile(ctx context.Context, path string, opts Options) (*Result, error) {
	opts = opts.normalized()
	src, err := afero.ReadFile(opts.FS, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Compile(ctx, path, src, opts)
}

// Compile compiles src as the root file path. Imports are resolved relative
// to path and read from opts.FS. A returned error is an I/O failure, a
// cancelled context or ErrInternalDefect; user errors live in Result.Bag.
func Compile(ctx context.Context, path string, src []byte, opts Options) (res *Result, err error) {
	opts = opts.normalized()
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "compile", trace.ParentSpan(ctx)).WithExtra("path", path)
	defer func() {
		detail := "ok"
		switch {
		case err != nil:
			detail = err.Error()
		case res.Failed():
			detail = fmt.Sprintf("%d diagnostics", res.Bag.Len())
		}
		span.End(detail)
	}()

	c := newCompilation(trace.WithParent(ctx, span), opts)
	res = &Result{Executable: opts.Executable, Bag: c.bag, FileSet: c.fs}
	defer func() {
		c.bag.Sort()
		res.Timings = c.timer.Report()
	}()

	rootID := c.fs.AddNormalized(path, src)
	prog, err := c.load(rootID)
	if err != nil || prog == nil {
		return res, err
	}
	if opts.Emit == EmitAST {
		res.Output, err = c.dumpAST(prog.units[0].File)
		return res, err
	}

	key := c.cacheKey(prog)
	if opts.Emit == EmitShell && opts.Cache != nil {
		if out, ok := opts.Cache.Get(key); ok {
			res.Output, res.Cached = out, true
			return res, nil
		}
	}

	mod := c.lower(prog)
	if mod == nil {
		return res, ctx.Err()
	}
	if opts.Emit == EmitIR {
		var buf bytes.Buffer
		if err := ir.Write(&buf, mod, opts.DumpFormat); err != nil {
			return res, fmt.Errorf("ir dump: %w", err)
		}
		res.Output = buf.Bytes()
		return res, nil
	}

	out, err := c.emit(mod)
	if err != nil {
		return res, err
	}
	res.Output = out
	if opts.Cache != nil {
		// a broken cache never fails a build
		_ = opts.Cache.Put(key, out)
	}
	return res, nil
}

// compilation is the state of one Compile call.
type compilation struct {
	ctx      context.Context
	opts     Options
	fs       *source.FileSet
	bag      *diag.Bag
	reporter diag.Reporter
	builder  *ast.Builder
	timer    *observ.Timer
}

func newCompilation(ctx context.Context, opts Options) *compilation {
	bag := diag.NewBag(opts.MaxDiagnostics)
	return &compilation{
		ctx:      ctx,
		opts:     opts,
		fs:       source.NewFileSetFS(opts.FS),
		bag:      bag,
		reporter: diag.BagReporter{Bag: bag},
		builder:  ast.NewBuilder(ast.Hints{}),
		timer:    observ.NewTimer(),
	}
}

// phase times fn and wraps it in a pass span.
func (c *compilation) phase(name string, fn func() string) {
	idx := c.timer.Begin(name)
	span := trace.Begin(trace.FromContext(c.ctx), trace.ScopePass, name, trace.ParentSpan(c.ctx))
	note := fn()
	span.End(note)
	c.timer.End(idx, note)
}

func (c *compilation) lower(prog *program) *ir.Module {
	var lowered sema.Result
	c.phase("sema", func() string {
		lowered = sema.Lower(sema.Input{Builder: c.builder, Units: prog.units}, sema.Options{
			Target:   c.opts.Target,
			Entry:    c.opts.Entry,
			Reporter: c.reporter,
		})
		return fmt.Sprintf("errors=%d", lowered.Errors)
	})
	if lowered.Errors > 0 || c.bag.HasErrors() {
		return nil
	}
	return lowered.Module
}

// emit runs the generator and turns its defect panics into ErrInternalDefect.
func (c *compilation) emit(mod *ir.Module) (out []byte, err error) {
	c.phase("codegen", func() string {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			var d codegen.Defect
			if e, ok := r.(error); ok && errors.As(e, &d) {
				err = fmt.Errorf("%w: %s", ErrInternalDefect, d.Msg)
				trace.Point(trace.FromContext(c.ctx), trace.ScopePass, "defect", d.Msg, trace.ParentSpan(c.ctx))
				return
			}
			panic(r)
		}()
		out = codegen.Emit(mod, codegen.Options{
			Diagnostics: c.opts.Diagnostics,
			Version:     c.opts.Version,
			Position:    c.fs.Position,
		})
		return fmt.Sprintf("bytes=%d", len(out))
	})
	return out, err
}

func (c *compilation) dumpAST(file ast.FileID) ([]byte, error) {
	var buf bytes.Buffer
	if c.opts.DumpFormat == ir.FormatText {
		if err := diagfmt.FormatASTPretty(&buf, c.builder, file, c.fs); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	tree, err := diagfmt.BuildAST(c.builder, file)
	if err != nil {
		return nil, err
	}
	if err := ir.Encode(&buf, tree, c.opts.DumpFormat); err != nil {
		return nil, fmt.Errorf("ast dump: %w", err)
	}
	return buf.Bytes(), nil
}
