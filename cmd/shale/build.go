package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"shale/internal/driver"
	"shale/internal/observ"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [path...]",
	Short: "Compile .shl files into shell scripts",
	Long: `Build compiles each file, or every .shl file below each directory, into a script.
Without arguments it builds the project holding shale.toml.`,
	RunE: runBuild,
}

func init() {
	addBuildFlags(buildCmd.Flags())
}

func addBuildFlags(f *pflag.FlagSet) {
	f.String("target", "rich", "output dialect (rich|portable)")
	f.String("emit", "shell", "what to produce (shell|ast|ir)")
	f.String("dump-format", "text", "format of ast/ir dumps (text|json|yaml|msgpack)")
	f.Bool("no-trap", false, "omit failure location messages from the script")
	f.Bool("executable", true, "mark written scripts executable")
	f.String("entry", "main", "name of the entry function")
	f.StringP("output", "o", "", "output path for a single input (- for stdout)")
	f.String("out-dir", "", "write scripts under this directory")
	f.Int("jobs", 0, "parallel compilations (0 = GOMAXPROCS)")
	f.String("ui", "auto", "progress display (auto|on|off)")
	f.Bool("watch", false, "rebuild when sources change")
	f.Bool("no-cache", false, "bypass the on-disk script cache")
}

type buildRun struct {
	s      *settings
	req    driver.BuildRequest
	stdout bool
	useTUI bool
}

func runBuild(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd, afero.NewOsFs())
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	output, _ := flags.GetString("output")
	jobs, _ := flags.GetInt("jobs")
	watch, _ := flags.GetBool("watch")
	noCache, _ := flags.GetBool("no-cache")
	uiValue, _ := flags.GetString("ui")
	uiMode, err := readSwitch("ui", uiValue)
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		if s.manifest == nil {
			return errors.New("nothing to build: pass a .shl file or directory, or run inside a project with shale.toml")
		}
		paths = []string{s.manifest.Dir}
	}

	if s.opts.Emit == driver.EmitShell && !noCache {
		if cache, err := driver.OpenDiskCache("shale"); err == nil {
			s.opts.Cache = cache
		}
	}
	run := &buildRun{s: s}
	switch {
	case output == "-":
		run.stdout = true
	case s.opts.Emit != driver.EmitShell && output == "":
		// dumps go to stdout unless -o names a file
		run.stdout = true
	}
	if s.opts.Emit != driver.EmitShell {
		s.opts.Executable = false
	}
	if run.stdout {
		output = ""
	}
	run.req = driver.BuildRequest{
		Paths:   paths,
		Options: s.opts,
		Jobs:    jobs,
		Output:  output,
		OutDir:  s.outDir,
		Write:   !run.stdout,
	}
	run.useTUI = !watch && !run.stdout && !s.quiet && uiMode.enabledFor(os.Stdout)

	if watch {
		return watchAndRebuild(cmd.Context(), paths, run.once)
	}
	return run.once(cmd.Context())
}

// once runs one build and prints its results.
func (r *buildRun) once(ctx context.Context) error {
	var (
		outcomes []driver.FileOutcome
		err      error
	)
	if r.useTUI {
		outcomes, err = runBuildWithUI(ctx, "shale build", r.req)
	} else {
		outcomes, err = driver.BuildAll(ctx, r.req)
	}
	if err != nil {
		return err
	}
	if r.stdout && len(outcomes) != 1 {
		return fmt.Errorf("stdout output needs exactly one input file, got %d", len(outcomes))
	}
	return r.report(outcomes)
}

func (r *buildRun) report(outcomes []driver.FileOutcome) error {
	failed := false
	var timings observ.Report
	for _, o := range outcomes {
		if o.Result != nil {
			r.s.printDiagnostics(o.Result.Bag, o.Result.FileSet)
			timings = timings.Merge(o.Result.Timings)
		}
		if o.Err != nil {
			fmt.Fprintf(os.Stderr, "shale: %s: %v\n", o.Path, o.Err)
		}
		if o.Failed() {
			failed = true
			continue
		}
		switch {
		case r.stdout:
			if _, err := os.Stdout.Write(o.Result.Output); err != nil {
				return err
			}
		case !r.s.quiet:
			note := ""
			if o.Result.Cached {
				note = " (cached)"
			}
			fmt.Fprintf(os.Stdout, "built %s%s\n", o.OutPath, note)
		}
	}
	if r.s.timings {
		if err := timings.WriteSummary(os.Stderr); err != nil {
			return err
		}
	}
	if failed {
		return errFailed
	}
	return nil
}
