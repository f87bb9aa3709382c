package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gitignoregen/internal/catalog"
	"gitignoregen/internal/tui"
)

var listCategory string

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog templates by category",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
	cmd.Flags().StringVar(&listCategory, "category", "", "Only list one category: root, global or community")
	return cmd
}

type listEntry struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

func runList(cmd *cobra.Command, _ []string) error {
	categories := []catalog.Category{catalog.CategoryRoot, catalog.CategoryGlobal, catalog.CategoryCommunity}
	if strings.TrimSpace(listCategory) != "" {
		c, ok := catalog.ParseCategory(listCategory)
		if !ok {
			return fmt.Errorf("unknown category %q (want root, global or community)", listCategory)
		}
		categories = []catalog.Category{c}
	}

	env, err := newAppEnv("list")
	if err != nil {
		return err
	}
	defer env.Close()

	m, err := env.loadManifest(cmd, false)
	if err != nil {
		return err
	}

	if outputJSON {
		entries := make([]listEntry, 0, m.Len())
		for _, c := range categories {
			for _, e := range m.ByCategory(c) {
				entries = append(entries, listEntry{Path: e.Path, Name: e.Name, Category: string(e.Category)})
			}
		}
		return writeJSON(cmd, "list", entries)
	}

	w := cmd.OutOrStdout()
	for i, c := range categories {
		entries := m.ByCategory(c)
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, tui.HeaderStyle.Render(fmt.Sprintf("%s (%d)", c, len(entries))))
		for _, e := range entries {
			fmt.Fprintf(w, "  %s\n", e.Path)
		}
	}
	return nil
}
