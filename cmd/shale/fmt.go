package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"shale/internal/driver"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] [path...]",
	Short: "Format shale source files",
	Long:  "Format .shl files in place. Without paths the project directory holding shale.toml is formatted.",
	RunE:  runFmt,
}

func init() {
	fmtCmd.Flags().Bool("check", false, "list files that need formatting and fail if any")
	fmtCmd.Flags().String("format", "text", "output format (text|json)")
	fmtCmd.Flags().Bool("stdout", false, "print formatted code to stdout instead of rewriting files")
}

func runFmt(cmd *cobra.Command, args []string) error {
	check, err := cmd.Flags().GetBool("check")
	if err != nil {
		return err
	}
	outputFormat, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	writeToStdout, err := cmd.Flags().GetBool("stdout")
	if err != nil {
		return err
	}
	if writeToStdout && check {
		return errors.New("fmt: --stdout cannot be used with --check")
	}
	if writeToStdout && outputFormat != "text" {
		return errors.New("fmt: --stdout is only supported with text output")
	}

	fsys := afero.NewOsFs()
	s, err := loadSettings(cmd, fsys)
	if err != nil {
		return err
	}
	paths := args
	if len(paths) == 0 {
		if s.manifest == nil {
			return errors.New("fmt: no paths given and no shale.toml found")
		}
		paths = []string{s.manifest.Dir}
	}

	results, err := driver.FormatPaths(cmd.Context(), paths, driver.FormatOptions{
		Check:          check,
		MaxDiagnostics: s.opts.MaxDiagnostics,
		Stdout:         writeToStdout,
		FS:             fsys,
	})
	if err != nil {
		return err
	}

	var hasErrors, hasChanges bool
	switch outputFormat {
	case "text":
		hasErrors, hasChanges = s.renderFmtText(os.Stdout, results, check, writeToStdout)
	case "json":
		hasErrors, hasChanges = fmtOutcome(results)
		if err := renderFmtJSON(os.Stdout, results, check); err != nil {
			return err
		}
	default:
		return fmt.Errorf("fmt: unsupported output format %q", outputFormat)
	}

	if hasErrors {
		return errFailed
	}
	if check && hasChanges {
		return errors.New("fmt: formatting changes required")
	}
	return nil
}

func fmtOutcome(results []driver.FormatResult) (hasErrors, hasChanges bool) {
	for _, res := range results {
		hasErrors = hasErrors || res.Err != nil
		hasChanges = hasChanges || res.Changed
	}
	return hasErrors, hasChanges
}

func (s *settings) renderFmtText(w io.Writer, results []driver.FormatResult, check, toStdout bool) (hasErrors, hasChanges bool) {
	for _, res := range results {
		if res.Err != nil {
			hasErrors = true
			if errors.Is(res.Err, driver.ErrUnparsable) {
				s.printDiagnostics(res.Bag, res.FileSet)
				continue
			}
			fmt.Fprintf(os.Stderr, "fmt: %s: %v\n", res.Path, res.Err)
			continue
		}
		switch {
		case toStdout:
			_, _ = w.Write(res.Formatted)
		case check && res.Changed:
			hasChanges = true
			if !s.quiet {
				fmt.Fprintln(w, res.Path)
			}
		case res.Changed && !s.quiet:
			fmt.Fprintf(w, "reformatted %s\n", res.Path)
		}
	}
	return hasErrors, hasChanges
}

func renderFmtJSON(w io.Writer, results []driver.FormatResult, check bool) error {
	type jsonResult struct {
		Path     string `json:"path"`
		Changed  bool   `json:"changed"`
		Error    string `json:"error,omitempty"`
		CheckRun bool   `json:"check"`
	}
	payload := make([]jsonResult, 0, len(results))
	for _, res := range results {
		jr := jsonResult{Path: res.Path, Changed: res.Changed, CheckRun: check}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		}
		payload = append(payload, jr)
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
