// Command shale compiles .shl scripts to bash or POSIX sh.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"shale/internal/version"
)

// errFailed ends a command whose diagnostics were already printed.
var errFailed = errors.New("compilation failed")

var rootCmd = &cobra.Command{
	Use:               "shale",
	Short:             "shale compiler",
	Long:              `shale compiles .shl programs into self-contained bash or POSIX sh scripts`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupSession,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(diagCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(versionCmd)

	addPersistentFlags(rootCmd.PersistentFlags())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	runCleanups()
	if err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "shale: %v\n", err)
		}
		os.Exit(1)
	}
}

// addPersistentFlags registers the flags every subcommand shares.
func addPersistentFlags(pf *pflag.FlagSet) {
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to keep (0 = unlimited)")
	pf.String("trace", "", "write a compiler trace to a file (- for stderr)")
	pf.String("trace-level", "phase", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	pf.String("cpu-profile", "", "write a CPU profile to this file")
	pf.String("mem-profile", "", "write a heap profile to this file")
	pf.String("runtime-trace", "", "write a Go runtime trace to this file")
}
