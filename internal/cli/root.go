package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gitignoregen/internal/errs"
)

var (
	configPath string
	cacheDir   string
	outputJSON bool
	verbose    bool
)

// Execute runs the root cobra command. SIGINT and SIGTERM cancel the command
// context so in-flight downloads are abandoned without partial writes.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(reportError(os.Stderr, err, outputJSON))
	}
}

// reportError prints err and returns the exit code: 2 when the catalog or a
// template could not be reached and a later run may succeed, 1 otherwise.
func reportError(w io.Writer, err error, asJSON bool) int {
	kind := errs.KindOf(err)
	if asJSON {
		payload := struct {
			Error     string `json:"error"`
			Kind      string `json:"kind,omitempty"`
			Retryable bool   `json:"retryable"`
		}{Error: err.Error(), Retryable: kind.Retryable()}
		if kind != errs.KindUnknown {
			payload.Kind = kind.String()
		}
		data, _ := json.MarshalIndent(payload, "", "  ")
		fmt.Fprintln(w, string(data))
	} else {
		fmt.Fprintf(w, "error: %v\n", err)
	}
	if kind.Retryable() {
		return 2
	}
	return 1
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gitignore-gen",
		Short:         "Generate .gitignore files from the github/gitignore catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: user config dir)")
	cmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "Override the cache directory")
	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug detail to the run log")

	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newRefreshCmd())
	cmd.AddCommand(newCacheCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}
