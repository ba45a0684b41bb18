package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/kws/cmd/kws/internal/build"
	"github.com/haivivi/kws/pkg/cli"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if formatOutput != string(cli.FormatText) {
			return cli.Output(build.Get(), outputOptions(cmd))
		}
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, build.String())
		if IsVerbose() {
			info := build.Get()
			fmt.Fprintf(w, "  go:     %s\n", info.Go)
			if p, err := cli.NewPaths(); err == nil {
				fmt.Fprintf(w, "  config: %s\n", p.ConfigFile())
				fmt.Fprintf(w, "  store:  %s\n", p.ResultsDir())
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
