package project

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// ManifestName is the project manifest file name.
const ManifestName = "shale.toml"

// FindManifest walks up from startDir to locate shale.toml.
func FindManifest(fsys afero.Fs, startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		exists, err := afero.Exists(fsys, candidate)
		if err != nil {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		if exists {
			return candidate, true, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// FindProjectRoot returns the directory containing shale.toml, if any.
func FindProjectRoot(fsys afero.Fs, startDir string) (root string, ok bool, err error) {
	manifestPath, ok, err := FindManifest(fsys, startDir)
	if err != nil || !ok {
		return "", ok, err
	}
	return filepath.Dir(manifestPath), true, nil
}
