package project

import (
	"errors"
	"path"
	"strings"
	"unicode"

	"shale/internal/source"
)

// SourceExt is the extension of shale source files.
const SourceExt = ".shl"

type ImportMeta struct {
	Path  string // resolved file path of the imported module
	Alias string // "" when the import has no `as`
	Span  source.Span
}

type ModuleMeta struct {
	Name        string      // shell-safe module name, unique in a program
	Path        string      // нормализованный путь к файлу модуля
	Span        source.Span // span всего файла
	Imports     []ImportMeta
	ContentHash Digest
}

func IsValidModuleIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r > unicode.MaxASCII {
			return false
		}
		if i == 0 && r != '_' && !unicode.IsLetter(r) {
			return false
		}
		if i > 0 && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ModuleName derives a module name from a file path: the stem, with every
// byte outside [A-Za-z0-9_] replaced by '_'.
func ModuleName(p string) string {
	stem := strings.TrimSuffix(path.Base(filepathToSlash(p)), SourceExt)
	var b strings.Builder
	for i, r := range stem {
		switch {
		case r == '_' || (r < unicode.MaxASCII && (unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)))):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// ResolveImportPath resolves an import string relative to the directory of
// the importing file. A missing extension defaults to .shl.
func ResolveImportPath(importer, spec string) (string, error) {
	spec = strings.TrimSpace(filepathToSlash(spec))
	if spec == "" {
		return "", errors.New("empty import path")
	}
	if strings.HasSuffix(spec, "/") {
		return "", errors.New("import path names a directory")
	}
	if path.Ext(spec) == "" {
		spec += SourceExt
	}
	if path.IsAbs(spec) {
		return path.Clean(spec), nil
	}
	dir := path.Dir(filepathToSlash(importer))
	return path.Clean(path.Join(dir, spec)), nil
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
