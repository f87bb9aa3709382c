package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"gitignoregen/internal/cache"
	"gitignoregen/internal/resolve"
	"gitignoregen/internal/tui"
)

var showCopy bool

// clipboardWrite is replaced in tests.
var clipboardWrite = clipboard.WriteAll

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Print a single template body",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
	cmd.Flags().BoolVar(&showCopy, "copy", false, "Also copy the template to the clipboard")
	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	env, err := newAppEnv("show")
	if err != nil {
		return err
	}
	defer env.Close()

	var status *tui.StatusWriter
	if tui.DetectMode(cmd.ErrOrStderr(), false, outputJSON) == tui.ModeTUI {
		status = tui.NewStatusWriter(cmd.ErrOrStderr(), "Loading catalog...")
		defer status.Stop()
	}
	m, err := env.loadManifest(cmd, false)
	if err != nil {
		return err
	}

	token := args[0]
	res := resolve.Resolve(token, m, env.aliases)
	switch res.Kind {
	case resolve.Ambiguous:
		return fmt.Errorf("%q is ambiguous: %s", token, strings.Join(res.Candidates, ", "))
	case resolve.NotFound:
		msg := fmt.Sprintf("no template matches %q", token)
		if s := resolve.Suggest(token, m, resolve.DefaultSuggestions); len(s) > 0 {
			msg += "; did you mean " + strings.Join(s, ", ") + "?"
		}
		return errors.New(msg)
	}

	if status != nil {
		status.Update("Fetching " + res.Path + "...")
	}
	body, bodyStatus, err := env.bodies.Get(commandContext(cmd), res.Path)
	if status != nil {
		status.Stop()
	}
	if err != nil {
		return err
	}
	if bodyStatus == cache.BodyStatusStale && !outputJSON {
		warnf(cmd, "could not refresh %s, showing cached copy", res.Path)
	}

	if showCopy {
		if err := clipboardWrite(string(body)); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
	}

	if outputJSON {
		return writeJSON(cmd, "show", struct {
			Path   string `json:"path"`
			Status string `json:"status"`
			Copied bool   `json:"copied"`
			Body   string `json:"body"`
		}{res.Path, string(bodyStatus), showCopy, string(body)})
	}

	fmt.Fprint(cmd.OutOrStdout(), string(body))
	if len(body) > 0 && body[len(body)-1] != '\n' {
		fmt.Fprintln(cmd.OutOrStdout())
	}
	if showCopy {
		infof(cmd, "Copied %s to the clipboard.", res.Path)
	}
	return nil
}
