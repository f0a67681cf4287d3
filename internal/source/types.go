package source

type (
	// FileID identifies a source file within a FileSet.
	FileID uint32
	// FileFlags records how a file's bytes were obtained and normalized.
	FileFlags uint8
)

const (
	// FileVirtual marks a file added from memory (tests, stdin, generated).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File holds the normalized content of one compilation input.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of every '\n'
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a 1-based human position.
type LineCol struct {
	Line uint32
	Col  uint32
}
