package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"shale/internal/driver"
	"shale/internal/ir"
	"shale/internal/project"
	"shale/internal/target"
	"shale/internal/version"
)

// settings are the manifest values with command-line flags applied on top.
type settings struct {
	opts     driver.Options
	outDir   string
	color    switchMode
	quiet    bool
	timings  bool
	manifest *project.Manifest
}

// loadSettings reads shale.toml above the working directory, if any, and
// overrides it with every flag the user set explicitly.
func loadSettings(cmd *cobra.Command, fsys afero.Fs) (*settings, error) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	manifest, err := project.Discover(fsys, cwd)
	if err != nil {
		return nil, err
	}
	return resolveSettings(cmd, fsys, manifest)
}

func resolveSettings(cmd *cobra.Command, fsys afero.Fs, manifest *project.Manifest) (*settings, error) {
	s := &settings{opts: driver.DefaultOptions(), manifest: manifest, color: modeAuto}
	s.opts.FS = fsys
	s.opts.Version = version.Version
	s.opts.MaxDiagnostics = 100
	s.opts.Executable = true

	if manifest != nil {
		b := manifest.Build
		if b.Target != "" {
			t, err := target.Parse(b.Target)
			if err != nil {
				return nil, err
			}
			s.opts.Target = t
		}
		if b.Diagnostics != nil {
			s.opts.Diagnostics = *b.Diagnostics
		}
		if b.Entry != "" {
			s.opts.Entry = b.Entry
		}
		if b.Executable != nil {
			s.opts.Executable = *b.Executable
		}
		if b.OutDir != "" {
			s.outDir = b.OutDir
			if manifest.Dir != "" && !filepath.IsAbs(b.OutDir) {
				s.outDir = filepath.Join(manifest.Dir, b.OutDir)
			}
		}
		if manifest.Diagnostics.Max > 0 {
			s.opts.MaxDiagnostics = manifest.Diagnostics.Max
		}
		if manifest.Diagnostics.Color != "" {
			s.color = switchMode(manifest.Diagnostics.Color)
		}
	}

	root := cmd.Root().PersistentFlags()
	if root.Changed("color") {
		v, _ := root.GetString("color")
		mode, err := readSwitch("color", v)
		if err != nil {
			return nil, err
		}
		s.color = mode
	}
	if root.Changed("max-diagnostics") {
		s.opts.MaxDiagnostics, _ = root.GetInt("max-diagnostics")
	}
	s.quiet, _ = root.GetBool("quiet")
	s.timings, _ = root.GetBool("timings")

	flags := cmd.Flags()
	if f := flags.Lookup("target"); f != nil && f.Changed {
		t, err := target.Parse(f.Value.String())
		if err != nil {
			return nil, err
		}
		s.opts.Target = t
	}
	if f := flags.Lookup("no-trap"); f != nil && f.Changed {
		noTrap, _ := flags.GetBool("no-trap")
		s.opts.Diagnostics = !noTrap
	}
	if f := flags.Lookup("executable"); f != nil && f.Changed {
		s.opts.Executable, _ = flags.GetBool("executable")
	}
	if f := flags.Lookup("entry"); f != nil && f.Changed {
		s.opts.Entry = f.Value.String()
	}
	if f := flags.Lookup("out-dir"); f != nil && f.Changed {
		s.outDir = f.Value.String()
	}
	if f := flags.Lookup("emit"); f != nil {
		kind, err := driver.ParseEmit(f.Value.String())
		if err != nil {
			return nil, err
		}
		s.opts.Emit = kind
	}
	if f := flags.Lookup("dump-format"); f != nil {
		format, err := ir.ParseFormat(f.Value.String())
		if err != nil {
			return nil, err
		}
		s.opts.DumpFormat = format
	}
	if s.opts.MaxDiagnostics < 0 {
		return nil, fmt.Errorf("--max-diagnostics must not be negative")
	}
	return s, nil
}
