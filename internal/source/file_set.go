package source

import (
	"crypto/sha256"
	"fmt"
	"path"
	"strings"

	"fortio.org/safecast"
	"github.com/spf13/afero"
)

// FileSet owns every file read during one compilation and resolves spans
// back to human positions.
type FileSet struct {
	files []File
	index map[string]FileID // path -> latest id
	fs    afero.Fs
}

// NewFileSet creates a FileSet reading from the real filesystem.
func NewFileSet() *FileSet {
	return NewFileSetFS(afero.NewOsFs())
}

// NewFileSetFS creates a FileSet over an arbitrary filesystem (MemMapFs in tests).
func NewFileSetFS(fsys afero.Fs) *FileSet {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &FileSet{
		files: make([]File, 0, 4),
		index: make(map[string]FileID),
		fs:    fsys,
	}
}

// FS returns the filesystem files are loaded from.
func (fileSet *FileSet) FS() afero.Fs {
	return fileSet.fs
}

// Add stores already-normalized bytes and returns a fresh FileID, even when
// the path was added before.
func (fileSet *FileSet) Add(p string, content []byte, flags FileFlags) FileID {
	if _, err := safecast.Conv[uint32](len(content)); err != nil {
		panic(fmt.Errorf("file %s too large: %w", p, err))
	}
	n, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(n)
	normalized := normalizePath(p)
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    normalized,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fileSet.index[normalized] = id
	return id
}

// Load reads p from the FileSet filesystem, strips a BOM and normalizes CRLF.
func (fileSet *FileSet) Load(p string) (FileID, error) {
	content, err := afero.ReadFile(fileSet.fs, p)
	if err != nil {
		return 0, err
	}
	return fileSet.AddNormalized(p, content), nil
}

// AddNormalized applies the same normalization as Load to in-memory bytes.
func (fileSet *FileSet) AddNormalized(p string, content []byte) FileID {
	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)
	var flags FileFlags
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return fileSet.Add(p, content, flags)
}

// AddVirtual adds an in-memory file flagged FileVirtual.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// Get returns the file for id. It panics on an id this set never issued.
func (fileSet *FileSet) Get(id FileID) *File {
	return &fileSet.files[id]
}

// Len reports how many files were added.
func (fileSet *FileSet) Len() int {
	return len(fileSet.files)
}

// GetLatest returns the most recent id added under path.
func (fileSet *FileSet) GetLatest(p string) (FileID, bool) {
	id, ok := fileSet.index[normalizePath(p)]
	return id, ok
}

// Resolve converts a span into start and end positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := &fileSet.files[span.File]
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// Position renders "path:line:col" for the start of span.
func (fileSet *FileSet) Position(span Span) string {
	start, _ := fileSet.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", fileSet.files[span.File].Path, start.Line, start.Col)
}

// GetLine returns the 1-based line n without its newline, or "" past the end.
func (f *File) GetLine(n uint32) string {
	if n == 0 || int(n) > len(f.LineIdx)+1 {
		return ""
	}
	var start uint32
	if n > 1 {
		start = f.LineIdx[n-2] + 1
	}
	end := uint32(len(f.Content)) // #nosec G115 -- bounded in Add
	if int(n) <= len(f.LineIdx) {
		end = f.LineIdx[n-1]
	}
	if start > end {
		return ""
	}
	return string(f.Content[start:end])
}

// Text returns the bytes covered by span as a string.
func (f *File) Text(span Span) string {
	if span.End > uint32(len(f.Content)) || span.Start > span.End { // #nosec G115
		return ""
	}
	return string(f.Content[span.Start:span.End])
}

// Dir returns the slash-separated directory of the file path.
func (f *File) Dir() string {
	return path.Dir(f.Path)
}

// Stem returns the base name without extension ("lib/net.shl" -> "net").
func (f *File) Stem() string {
	base := path.Base(f.Path)
	return strings.TrimSuffix(base, path.Ext(base))
}

// FormatPath renders the file path for diagnostics: "absolute", "relative"
// (to baseDir), "basename" or anything else for the path as stored.
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := AbsolutePath(f.Path); err == nil {
			return abs
		}
	case "relative":
		if rel, err := RelativePath(f.Path, baseDir); err == nil {
			return rel
		}
	case "basename":
		return path.Base(f.Path)
	}
	return f.Path
}
