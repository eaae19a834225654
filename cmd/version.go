package cmd

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and, with --check, whether the service answers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "simtai", version)
		if info, ok := debug.ReadBuildInfo(); ok {
			fmt.Fprintln(out, "go", info.GoVersion)
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					fmt.Fprintln(out, "revision", s.Value)
				}
			}
		}

		if check, _ := cmd.Flags().GetBool("check"); check {
			c := newClient(cmd)
			ctx, cancel := context.WithTimeout(cmd.Context(), pingTimeout)
			defer cancel()
			if err := c.Ping(ctx); err != nil {
				return fmt.Errorf("service at %s: %w", c.BaseURL(), err)
			}
			fmt.Fprintln(out, "service", c.BaseURL(), "ok")
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("check", false, "Also ping the generation service")
}
