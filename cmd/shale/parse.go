package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"shale/internal/diagfmt"
	"shale/internal/driver"
	"shale/internal/ir"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] file.shl",
	Short: "Parse a source file and print its syntax tree",
	Long:  `Parse reports every syntax error it can recover from, then prints the tree`,
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().String("format", "pretty", "output format (pretty|json|yaml|msgpack)")
}

func runParse(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	s, err := loadSettings(cmd, afero.NewOsFs())
	if err != nil {
		return err
	}

	result, err := driver.Parse(args[0], s.opts.MaxDiagnostics)
	if err != nil {
		return fmt.Errorf("parsing failed: %w", err)
	}
	s.printDiagnostics(result.Bag, result.FileSet)

	if format == "pretty" {
		err = diagfmt.FormatASTPretty(os.Stdout, result.Builder, result.FileID, result.FileSet)
	} else {
		var dump ir.Format
		if dump, err = ir.ParseFormat(format); err != nil || dump == ir.FormatText {
			return fmt.Errorf("unknown format: %s", format)
		}
		var tree diagfmt.ASTNodeOutput
		if tree, err = diagfmt.BuildAST(result.Builder, result.FileID); err == nil {
			err = ir.Encode(os.Stdout, tree, dump)
		}
	}
	if err != nil {
		return err
	}
	if result.Bag.HasErrors() {
		return errFailed
	}
	return nil
}
