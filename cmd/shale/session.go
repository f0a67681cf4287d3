package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shale/internal/prof"
	"shale/internal/trace"
)

var cleanups []func()

func runCleanups() {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
}

// setupSession starts tracing and profiling for every subcommand.
func setupSession(cmd *cobra.Command, _ []string) error {
	if err := setupTracing(cmd); err != nil {
		return err
	}
	return setupProfiling(cmd)
}

// setupTracing attaches a tracer built from the --trace* flags to the
// command context.
func setupTracing(cmd *cobra.Command) error {
	pf := cmd.Root().PersistentFlags()
	output, err := pf.GetString("trace")
	if err != nil {
		return fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := pf.GetString("trace-level")
	if err != nil {
		return fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	formatStr, err := pf.GetString("trace-format")
	if err != nil {
		return fmt.Errorf("failed to get trace-format flag: %w", err)
	}
	if output == "" {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return nil
	}
	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return fmt.Errorf("invalid trace level: %w", err)
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return fmt.Errorf("invalid trace format: %w", err)
	}
	cfg := trace.Config{Level: level, Format: format}
	if output == "-" {
		cfg.Output = os.Stderr
	} else {
		cfg.OutputPath = output
	}
	tracer, err := trace.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))
	cleanups = append(cleanups, func() {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "trace: close error: %v\n", err)
		}
	})
	return nil
}

func setupProfiling(cmd *cobra.Command) error {
	pf := cmd.Root().PersistentFlags()
	var opts prof.Options
	var err error
	if opts.CPU, err = pf.GetString("cpu-profile"); err != nil {
		return err
	}
	if opts.Mem, err = pf.GetString("mem-profile"); err != nil {
		return err
	}
	if opts.Trace, err = pf.GetString("runtime-trace"); err != nil {
		return err
	}
	if !opts.Enabled() {
		return nil
	}
	session, err := prof.Start(opts)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "profile: %v\n", err)
		}
	})
	return nil
}
