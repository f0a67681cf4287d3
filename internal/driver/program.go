package driver

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/spf13/afero"

	"shale/internal/ast"
	"shale/internal/diag"
	"shale/internal/dialect"
	"shale/internal/lexer"
	"shale/internal/parser"
	"shale/internal/project"
	"shale/internal/project/dag"
	"shale/internal/sema"
	"shale/internal/source"
)

// program is the root file plus the transitive closure of its imports,
// parsed into one builder. units[0] is the root.
type program struct {
	units  []sema.Unit
	metas  []project.ModuleMeta
	hashes map[string]project.Digest // module path -> ModuleHash
}

// firstError keeps only the first error of the front end: lexing and
// parsing stop at the first problem anywhere in the program. The file being
// parsed is checked for foreign syntax when that error arrives.
type firstError struct {
	next diag.Reporter
	seen bool
	file *source.File
}

func (r *firstError) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note, fixes []diag.Fix) {
	if sev.Blocks() {
		if r.seen {
			return
		}
		r.seen = true
		if r.file != nil {
			if note, ok := dialect.Explain(r.file); ok {
				notes = append(notes, note)
			}
		}
	}
	r.next.Report(code, sev, primary, msg, notes, fixes)
}

// load parses the root file and every file it imports, breadth first, then
// checks the import graph. It returns nil when diagnostics stop the build.
func (c *compilation) load(rootID source.FileID) (*program, error) {
	front := &firstError{next: c.reporter}
	prog := &program{}
	byPath := make(map[string]int)
	names := make(map[string]int)

	var loadErr error
	c.phase("parse", func() string {
		queue := []source.FileID{rootID}
		for len(queue) > 0 && !front.seen {
			if err := c.ctx.Err(); err != nil {
				loadErr = err
				return "cancelled"
			}
			id := queue[0]
			queue = queue[1:]
			file := c.fs.Get(id)

			astFile, ok := c.parseFile(file, front)
			if !ok {
				break
			}
			unit := sema.Unit{
				Name: uniqueName(names, project.ModuleName(file.Path)),
				Path: file.Path,
				File: astFile,
			}
			meta := project.ModuleMeta{
				Name:        unit.Name,
				Path:        file.Path,
				Span:        source.Span{File: id, End: uint32(len(file.Content))}, // #nosec G115 -- bounded by FileSet.Add
				ContentHash: project.Digest(file.Hash),
			}
			byPath[file.Path] = len(prog.units)
			prog.units = append(prog.units, unit)
			prog.metas = append(prog.metas, meta)

			for _, imp := range c.imports(astFile) {
				resolved, err := project.ResolveImportPath(file.Path, imp.Path)
				if err != nil {
					front.Report(diag.SynBadImport, diag.SevError, imp.PathSpan, fmt.Sprintf("bad import %q: %v", imp.Path, err), nil, nil)
					break
				}
				im := project.ImportMeta{Path: resolved, Alias: c.builder.Name(imp.Alias), Span: imp.PathSpan}
				idx := len(prog.metas) - 1
				prog.metas[idx].Imports = append(prog.metas[idx].Imports, im)
				if _, seen := byPath[resolved]; seen || queued(c.fs, queue, resolved) {
					continue
				}
				depID, err := c.readImport(resolved)
				switch {
				case errors.Is(err, fs.ErrNotExist):
					// reported by the graph as a missing module
				case err != nil:
					front.Report(diag.IOLoadFileError, diag.SevError, imp.PathSpan, fmt.Sprintf("failed to load %q: %v", resolved, err), nil, nil)
				default:
					queue = append(queue, depID)
				}
			}
		}
		return fmt.Sprintf("files=%d", len(prog.units))
	})
	if loadErr != nil {
		return nil, loadErr
	}
	if c.bag.HasErrors() {
		return nil, nil
	}

	c.phase("imports", func() string {
		prog.link(c.reporter, byPath)
		return fmt.Sprintf("modules=%d", len(prog.metas))
	})
	if c.bag.HasErrors() {
		return nil, nil
	}
	return prog, nil
}

func (c *compilation) parseFile(file *source.File, r *firstError) (ast.FileID, bool) {
	r.file = file
	defer func() { r.file = nil }()
	lx := lexer.New(file, lexer.Options{Reporter: r})
	res := parser.ParseFile(c.fs, lx, c.builder, parser.Options{MaxErrors: 1, Reporter: r})
	return res.File, !r.seen && res.Errors == 0 && lx.Errors() == 0
}

func (c *compilation) imports(file ast.FileID) []*ast.ImportItem {
	var out []*ast.ImportItem
	for _, id := range c.builder.Files.Get(file).Items {
		if imp, ok := c.builder.Items.Import(id); ok {
			out = append(out, imp)
		}
	}
	return out
}

func (c *compilation) readImport(path string) (source.FileID, error) {
	data, err := afero.ReadFile(c.opts.FS, path)
	if err != nil {
		return 0, err
	}
	return c.fs.AddNormalized(path, data), nil
}

func queued(fset *source.FileSet, queue []source.FileID, path string) bool {
	for _, id := range queue {
		if fset.Get(id).Path == path {
			return true
		}
	}
	return false
}

// uniqueName keeps generated function names of different modules apart:
// lib/util.shl and net/util.shl become util and util_2.
func uniqueName(used map[string]int, name string) string {
	used[name]++
	if n := used[name]; n > 1 {
		name += "_" + strconv.Itoa(n)
		used[name]++
	}
	return name
}

// link validates the import graph and fills in the unit imports. Missing
// files, self imports, duplicates and cycles are reported here.
func (p *program) link(r diag.Reporter, byPath map[string]int) {
	idx := dag.BuildIndex(p.metas)
	nodes := make([]dag.ModuleNode, len(p.metas))
	for i, m := range p.metas {
		nodes[i] = dag.ModuleNode{Meta: m, Reporter: r}
	}
	g, slots := dag.BuildGraph(idx, nodes)
	topo := dag.ToposortKahn(g)
	if topo.Cyclic {
		dag.ReportCycles(idx, g, slots)
		return
	}
	p.hashes = ComputeModuleHashes(idx, g, slots, topo)

	for i, m := range p.metas {
		seen := make(map[string]bool)
		for _, imp := range m.Imports {
			to, ok := byPath[imp.Path]
			if !ok || to == i || seen[imp.Path] {
				continue
			}
			seen[imp.Path] = true
			alias := imp.Alias
			if alias == "" {
				alias = project.ModuleName(imp.Path)
			}
			p.units[i].Imports = append(p.units[i].Imports, sema.Import{Alias: alias, Unit: to, Span: imp.Span})
		}
	}
}
