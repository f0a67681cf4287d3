package main

import (
	"io"
	"os"

	"shale/internal/diag"
	"shale/internal/diagfmt"
	"shale/internal/source"
)

// printDiagnostics renders bag to stderr in the pretty format.
func (s *settings) printDiagnostics(bag *diag.Bag, fs *source.FileSet) {
	if bag == nil || bag.Len() == 0 {
		return
	}
	s.printDiagnosticsTo(os.Stderr, bag, fs)
}

func (s *settings) printDiagnosticsTo(w io.Writer, bag *diag.Bag, fs *source.FileSet) {
	opts := diagfmt.PrettyOpts{
		Color:     s.color.enabledFor(os.Stderr),
		Context:   2,
		ShowNotes: true,
		ShowFixes: true,
	}
	if s.manifest != nil {
		opts.PathMode = diagfmt.PathModeRelative
		opts.BaseDir = s.manifest.Dir
	}
	diagfmt.Pretty(w, bag, fs, opts)
}
