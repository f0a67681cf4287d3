package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"shale/internal/target"
	"shale/internal/version"
)

type versionPayload struct {
	Tool      string   `json:"tool"`
	Version   string   `json:"version"`
	Targets   []string `json:"targets"`
	GitCommit string   `json:"git_commit,omitempty"`
	BuildDate string   `json:"build_date,omitempty"`
}

var versionFormat string

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show shale build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		switch strings.ToLower(versionFormat) {
		case "json":
			return renderVersionJSON(cmd.OutOrStdout())
		case "pretty":
			colorFlag, _ := cmd.Root().PersistentFlags().GetString("color")
			mode, err := readSwitch("color", colorFlag)
			if err != nil {
				return err
			}
			renderVersionPretty(cmd.OutOrStdout(), mode.enabledFor(os.Stdout))
			return nil
		}
		return fmt.Errorf("unsupported format %q (must be pretty or json)", versionFormat)
	},
}

func renderVersionPretty(out io.Writer, colored bool) {
	fmt.Fprintln(out, version.String(colored))
	fmt.Fprintf(out, "targets: %s\n", strings.Join(target.Names(), ", "))
}

func renderVersionJSON(out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(versionPayload{
		Tool:      "shale",
		Version:   version.Version,
		Targets:   target.Names(),
		GitCommit: version.GitCommit,
		BuildDate: version.BuildDate,
	})
}
