package driver

import (
	"bytes"
	"context"
	"errors"
	"os"

	"fortio.org/safecast"
	"github.com/spf13/afero"

	"shale/internal/ast"
	"shale/internal/diag"
	"shale/internal/format"
	"shale/internal/lexer"
	"shale/internal/parser"
	"shale/internal/source"
)

// ErrUnparsable marks a file the formatter skipped because it does not parse.
var ErrUnparsable = errors.New("format: parse errors present")

// FormatOptions configures code formatting.
type FormatOptions struct {
	Check          bool
	MaxDiagnostics int
	Options        format.Options
	Stdout         bool
	FS             afero.Fs // OS when nil
}

// FormatResult captures the result of formatting a single file. Bag and
// FileSet are set when the file was parsed.
type FormatResult struct {
	Path      string
	Changed   bool
	Err       error
	Formatted []byte
	Bag       *diag.Bag
	FileSet   *source.FileSet
}

// FormatPaths formats files or directories (every .shl below them).
// With Check nothing is written and Changed tells whether formatting would
// rewrite the file; with Stdout the formatted bytes are returned instead.
func FormatPaths(ctx context.Context, paths []string, opts FormatOptions) ([]FormatResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fsys := opts.FS
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	sources, err := listSources(fsys, paths)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, errors.New("format: no source files found")
	}

	results := make([]FormatResult, 0, len(sources))
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result := formatSingleFile(fsys, src.path, opts)
		if result.Err != nil || !result.Changed || opts.Check || opts.Stdout {
			results = append(results, result)
			continue
		}
		mode := os.FileMode(0o644)
		if info, statErr := fsys.Stat(src.path); statErr == nil {
			mode = info.Mode()
		}
		if err := afero.WriteFile(fsys, src.path, result.Formatted, mode.Perm()); err != nil {
			result.Err = err
			result.Changed = false
		}
		results = append(results, result)
	}
	return results, nil
}

func formatSingleFile(fsys afero.Fs, path string, opts FormatOptions) FormatResult {
	result := FormatResult{Path: path}
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		result.Err = err
		return result
	}

	fileSet := source.NewFileSetFS(fsys)
	sf := fileSet.Get(fileSet.AddNormalized(path, data))

	maxDiag := opts.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = 256
	}
	bag := diag.NewBag(maxDiag)
	reporter := diag.BagReporter{Bag: bag}
	lx := lexer.New(sf, lexer.Options{Reporter: reporter})
	builder := ast.NewBuilder(ast.Hints{})

	maxErrors, convErr := safecast.Conv[uint](maxDiag)
	if convErr != nil {
		maxErrors = 0
	}
	parseRes := parser.ParseFile(fileSet, lx, builder, parser.Options{Reporter: reporter, MaxErrors: maxErrors})
	bag.Sort()
	result.Bag, result.FileSet = bag, fileSet
	if bag.HasErrors() {
		result.Err = ErrUnparsable
		return result
	}

	formatted, err := format.FormatFile(sf, builder, parseRes.File, opts.Options)
	if err != nil {
		result.Err = err
		return result
	}
	result.Formatted = formatted
	// compare with the raw bytes so a BOM or CRLF counts as a change
	result.Changed = !bytes.Equal(data, formatted)
	return result
}
