package driver

import (
	"fortio.org/safecast"

	"shale/internal/ast"
	"shale/internal/diag"
	"shale/internal/lexer"
	"shale/internal/parser"
	"shale/internal/source"
)

type ParseResult struct {
	FileSet *source.FileSet
	File    *source.File
	Builder *ast.Builder
	FileID  ast.FileID
	Bag     *diag.Bag
}

// Parse parses one file without following imports. The parser resyncs after
// errors until maxDiagnostics have been reported; 0 keeps going to the end.
func Parse(filePath string, maxDiagnostics int) (*ParseResult, error) {
	fs := source.NewFileSet()
	fileID, err := fs.Load(filePath)
	if err != nil {
		return nil, err
	}
	file := fs.Get(fileID)

	maxErrors, err := safecast.Conv[uint](max(maxDiagnostics, 0))
	if err != nil {
		return nil, err
	}
	bag := diag.NewBag(maxDiagnostics)
	reporter := diag.BagReporter{Bag: bag}
	builder := ast.NewBuilder(ast.Hints{})
	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	result := parser.ParseFile(fs, lx, builder, parser.Options{Reporter: reporter, MaxErrors: maxErrors})
	bag.Sort()

	return &ParseResult{
		FileSet: fs,
		File:    file,
		Builder: builder,
		FileID:  result.File,
		Bag:     bag,
	}, nil
}
