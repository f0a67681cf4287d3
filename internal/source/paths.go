package source

import (
	"os"
	"path/filepath"
	"strings"
)

// AbsolutePath returns a slash-normalized absolute form of p.
func AbsolutePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return normalizePath(abs), nil
}

// RelativePath returns p relative to baseDir (the working directory when
// empty). Paths that would escape baseDir are returned absolute.
func RelativePath(p, baseDir string) (string, error) {
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		baseDir = wd
	}
	absPath, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return normalizePath(absPath), nil
	}
	return normalizePath(rel), nil
}
