package project

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
)

// Manifest is the content of shale.toml. Zero values mean "not set"; CLI
// flags override whatever is set here.
type Manifest struct {
	Build       BuildSection       `toml:"build"`
	Diagnostics DiagnosticsSection `toml:"diagnostics"`

	// Dir is the directory holding the manifest; not read from the file.
	Dir string `toml:"-"`
}

type BuildSection struct {
	Target      string `toml:"target" validate:"omitempty,oneof=rich portable bash posix sh"`
	Diagnostics *bool  `toml:"diagnostics"`
	Entry       string `toml:"entry"`
	OutDir      string `toml:"out_dir"`
	Executable  *bool  `toml:"executable"`
}

type DiagnosticsSection struct {
	Max   int    `toml:"max" validate:"gte=0"`
	Color string `toml:"color" validate:"omitempty,oneof=auto on off"`
}

// LoadManifest decodes and validates a manifest file.
func LoadManifest(fsys afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	var m Manifest
	meta, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Dir = dirOf(path)
	return &m, nil
}

// Validate checks field values; error messages use the TOML key names.
func (m *Manifest) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
	})
	return validate.Struct(m)
}

// Discover finds and loads the manifest above startDir. It returns nil
// without error when there is none.
func Discover(fsys afero.Fs, startDir string) (*Manifest, error) {
	path, ok, err := FindManifest(fsys, startDir)
	if err != nil || !ok {
		return nil, err
	}
	return LoadManifest(fsys, path)
}

func dirOf(p string) string {
	p = filepathToSlash(p)
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		if i == 0 {
			return "/"
		}
		return p[:i]
	}
	return "."
}
