package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gitignoregen/internal/catalog"
	"gitignoregen/internal/tui"
)

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refetch the catalog listing now",
		Args:  cobra.NoArgs,
		RunE:  runRefresh,
	}
}

func runRefresh(cmd *cobra.Command, _ []string) error {
	env, err := newAppEnv("refresh")
	if err != nil {
		return err
	}
	defer env.Close()

	var status *tui.StatusWriter
	if tui.DetectMode(cmd.ErrOrStderr(), false, outputJSON) == tui.ModeTUI {
		status = tui.NewStatusWriter(cmd.ErrOrStderr(), "Refreshing catalog...")
	}
	m, err := env.loadManifest(cmd, true)
	if err != nil {
		if status != nil {
			status.Stop()
		}
		return err
	}

	if outputJSON {
		return writeJSON(cmd, "refresh", struct {
			Origin    string `json:"origin"`
			Entries   int    `json:"entries"`
			Root      int    `json:"root"`
			Global    int    `json:"global"`
			Community int    `json:"community"`
		}{
			string(m.Origin), m.Len(),
			len(m.ByCategory(catalog.CategoryRoot)),
			len(m.ByCategory(catalog.CategoryGlobal)),
			len(m.ByCategory(catalog.CategoryCommunity)),
		})
	}

	if m.Origin != catalog.OriginRemote {
		if status != nil {
			status.Stop()
		}
		return nil
	}
	format := "Catalog refreshed: %d templates (%d root, %d global, %d community)."
	args := []any{
		m.Len(),
		len(m.ByCategory(catalog.CategoryRoot)),
		len(m.ByCategory(catalog.CategoryGlobal)),
		len(m.ByCategory(catalog.CategoryCommunity)),
	}
	if status != nil {
		status.Finish(format, args...)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), tui.SuccessStyle.Render(fmt.Sprintf(format, args...)))
	return nil
}
