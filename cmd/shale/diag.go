package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"shale/internal/diag"
	"shale/internal/diagfmt"
	"shale/internal/driver"
	"shale/internal/fix"
	"shale/internal/ir"
)

var diagCmd = &cobra.Command{
	Use:   "diag [flags] file.shl",
	Short: "Check a program without writing a script",
	Long:  `Diag runs the compiler up to semantic analysis and prints its diagnostics`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDiagnose,
}

func init() {
	f := diagCmd.Flags()
	f.String("format", "pretty", "output format (pretty|json|short)")
	f.String("target", "rich", "dialect to check against (rich|portable)")
	f.String("entry", "main", "name of the entry function")
	f.Bool("with-notes", false, "include diagnostic notes in output")
	f.Bool("suggest", false, "include fix suggestions in output")
	f.Bool("fullpath", false, "emit absolute file paths in output")
	f.Bool("fix", false, "apply every non-overlapping fix to the source files")
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	format, _ := flags.GetString("format")
	withNotes, _ := flags.GetBool("with-notes")
	suggest, _ := flags.GetBool("suggest")
	fullPath, _ := flags.GetBool("fullpath")
	applyFixes, _ := flags.GetBool("fix")

	s, err := loadSettings(cmd, afero.NewOsFs())
	if err != nil {
		return err
	}
	// the IR dump stops before codegen and never touches the cache
	s.opts.Emit = driver.EmitIR
	s.opts.DumpFormat = ir.FormatText

	result, err := driver.CompileFile(cmd.Context(), args[0], s.opts)
	if err != nil {
		return fmt.Errorf("diagnosis failed: %w", err)
	}

	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	if err := writeDiagnostics(os.Stdout, s, result, format, pathMode, withNotes, suggest); err != nil {
		return err
	}
	if applyFixes {
		if err := runFixes(s, result); err != nil {
			return err
		}
	}
	if s.timings {
		if err := result.Timings.WriteSummary(os.Stderr); err != nil {
			return err
		}
	}
	if result.Failed() {
		return errFailed
	}
	return nil
}

func writeDiagnostics(w io.Writer, s *settings, result *driver.Result, format string, pathMode diagfmt.PathMode, withNotes, suggest bool) error {
	switch format {
	case "pretty":
		diagfmt.Pretty(w, result.Bag, result.FileSet, diagfmt.PrettyOpts{
			Color:     s.color.enabledFor(os.Stdout),
			Context:   2,
			PathMode:  pathMode,
			ShowNotes: withNotes,
			ShowFixes: suggest,
		})
	case "short":
		if out := diag.FormatShort(result.Bag.Items(), result.FileSet, withNotes); out != "" {
			if _, err := fmt.Fprintln(w, out); err != nil {
				return err
			}
		}
	case "json":
		return diagfmt.JSON(w, result.Bag, result.FileSet, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
			IncludeFixes:     suggest,
		})
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	return nil
}

func runFixes(s *settings, result *driver.Result) error {
	res, err := fix.Apply(s.opts.FS, result.FileSet, result.Bag.Items(), fix.ApplyOptions{Mode: fix.ApplyModeAll})
	if errors.Is(err, fix.ErrNoFixes) {
		fmt.Fprintln(os.Stderr, "no fixes to apply")
		return nil
	}
	if err != nil {
		return err
	}
	for _, a := range res.Applied {
		fmt.Fprintf(os.Stderr, "fixed %s: %s\n", a.Path, a.Title)
	}
	for _, sk := range res.Skipped {
		fmt.Fprintf(os.Stderr, "skipped %s: %s\n", sk.Title, sk.Reason)
	}
	return nil
}
