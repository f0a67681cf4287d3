package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"shale/internal/project"
	"shale/internal/trace"
)

// ScriptExt is the extension of generated scripts.
const ScriptExt = ".sh"

// BuildRequest describes one `shale build` run.
type BuildRequest struct {
	Paths   []string // files or directories; directories contribute every .shl below them
	Options Options
	Jobs    int    // parallel compilations; GOMAXPROCS when <= 0
	Output  string // explicit output path, single file only
	OutDir  string // "" writes next to each source
	Write   bool   // write artifacts; otherwise only compile
	// Observer, if set, is called from worker goroutines.
	Observer BuildObserver
}

// FileOutcome is the result of one source file. Err holds I/O failures and
// internal defects; diagnostics stay in Result.Bag.
type FileOutcome struct {
	Path    string
	OutPath string
	Result  *Result
	Err     error
}

func (o FileOutcome) Failed() bool { return o.Err != nil || o.Result.Failed() }

type BuildStatus uint8

const (
	BuildQueued BuildStatus = iota
	BuildStarted
	BuildDone
)

// BuildEvent reports progress of one file.
type BuildEvent struct {
	Path    string
	Status  BuildStatus
	Failed  bool
	Elapsed time.Duration
}

type BuildObserver func(BuildEvent)

type buildSource struct {
	path string
	root string // directory the file was found under, "" for explicit files
}

// BuildAll compiles every requested file concurrently. Outcomes keep the
// order of the sorted file list. The error is non-nil only when the inputs
// cannot be listed or the context ends.
func BuildAll(ctx context.Context, req BuildRequest) ([]FileOutcome, error) {
	opts := req.Options.normalized()
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "build", trace.ParentSpan(ctx))
	ctx = trace.WithParent(ctx, span)

	sources, err := listSources(opts.FS, req.Paths)
	if err != nil {
		span.End(err.Error())
		return nil, err
	}
	if req.Output != "" && len(sources) != 1 {
		span.End("bad request")
		return nil, fmt.Errorf("-o needs exactly one input file, got %d", len(sources))
	}
	notify := func(ev BuildEvent) {
		if req.Observer != nil {
			req.Observer(ev)
		}
	}
	for _, s := range sources {
		notify(BuildEvent{Path: s.path, Status: BuildQueued})
	}

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	outcomes := make([]FileOutcome, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(min(jobs, len(sources)), 1))
	for i, s := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			notify(BuildEvent{Path: s.path, Status: BuildStarted})
			start := time.Now()
			out := FileOutcome{Path: s.path}
			out.Result, out.Err = CompileFile(gctx, s.path, opts)
			if out.Err == nil && !out.Result.Failed() && req.Write {
				out.OutPath = outputPath(req, s)
				out.Err = writeArtifact(opts.FS, out.OutPath, out.Result)
			}
			outcomes[i] = out
			notify(BuildEvent{Path: s.path, Status: BuildDone, Failed: out.Failed(), Elapsed: time.Since(start)})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.End(err.Error())
		return outcomes, err
	}
	span.End(fmt.Sprintf("files=%d", len(sources)))
	return outcomes, nil
}

// listSources expands directories into their .shl files, sorted for a
// deterministic order; duplicates are dropped.
func listSources(fsys afero.Fs, paths []string) ([]buildSource, error) {
	var out []buildSource
	seen := make(map[string]bool)
	add := func(s buildSource) {
		if !seen[s.path] {
			seen[s.path] = true
			out = append(out, s)
		}
	}
	for _, p := range paths {
		info, err := fsys.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(buildSource{path: p})
			continue
		}
		var found []string
		err = afero.Walk(fsys, p, func(path string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !fi.IsDir() && strings.HasSuffix(path, project.SourceExt) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		for _, f := range found {
			add(buildSource{path: f, root: p})
		}
	}
	return out, nil
}

// outputPath: -o wins; otherwise <stem>.sh next to the source or under
// OutDir, keeping the layout below a directory argument.
func outputPath(req BuildRequest, s buildSource) string {
	if req.Output != "" {
		return req.Output
	}
	name := strings.TrimSuffix(filepath.Base(s.path), project.SourceExt) + ScriptExt
	if req.OutDir == "" {
		return filepath.Join(filepath.Dir(s.path), name)
	}
	rel := "."
	if s.root != "" {
		if r, err := filepath.Rel(s.root, filepath.Dir(s.path)); err == nil {
			rel = r
		}
	}
	return filepath.Join(req.OutDir, rel, name)
}

func writeArtifact(fsys afero.Fs, path string, res *Result) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	mode := os.FileMode(0o644)
	if res.Executable {
		mode = 0o755
	}
	if err := afero.WriteFile(fsys, path, res.Output, mode); err != nil {
		return err
	}
	// WriteFile keeps the mode of an existing file
	return fsys.Chmod(path, mode)
}
