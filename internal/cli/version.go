package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X gitignoregen/internal/cli.version=...".
var (
	version = "dev"
	commit  = ""
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if outputJSON {
				return writeJSON(cmd, "version", map[string]string{
					"version": version,
					"commit":  commit,
					"go":      runtime.Version(),
				})
			}
			line := "gitignore-gen " + version
			if commit != "" {
				line += " (" + commit + ")"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s/%s\n", line, runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
}
