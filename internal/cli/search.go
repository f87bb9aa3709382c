package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gitignoregen/internal/resolve"
)

var searchLimit int

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <name>",
		Short: "Show how a name resolves against the catalog",
		Args:  cobra.ExactArgs(1),
		RunE:  runSearch,
	}
	cmd.Flags().IntVar(&searchLimit, "limit", resolve.DefaultSuggestions, "Maximum number of fuzzy suggestions")
	return cmd
}

type searchResult struct {
	Query       string   `json:"query"`
	Kind        string   `json:"kind"`
	Tier        string   `json:"tier"`
	Path        string   `json:"path,omitempty"`
	Candidates  []string `json:"candidates,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	env, err := newAppEnv("search")
	if err != nil {
		return err
	}
	defer env.Close()

	m, err := env.loadManifest(cmd, false)
	if err != nil {
		return err
	}

	query := args[0]
	res := resolve.Resolve(query, m, env.aliases)
	out := searchResult{
		Query:      query,
		Kind:       res.Kind.String(),
		Tier:       res.Tier.String(),
		Path:       res.Path,
		Candidates: res.Candidates,
	}
	if res.Kind != resolve.Unique {
		out.Suggestions = resolve.Suggest(query, m, searchLimit)
	}

	if outputJSON {
		return writeJSON(cmd, "search", out)
	}

	w := cmd.OutOrStdout()
	switch res.Kind {
	case resolve.Unique:
		fmt.Fprintf(w, "%s -> %s (%s match)\n", query, res.Path, res.Tier)
	case resolve.Ambiguous:
		fmt.Fprintf(w, "%s is ambiguous (%s match):\n", query, res.Tier)
		for i, c := range res.Candidates {
			fmt.Fprintf(w, "  %2d. %s\n", i+1, c)
		}
	default:
		fmt.Fprintf(w, "%s: no template found\n", query)
	}
	if len(out.Suggestions) > 0 {
		fmt.Fprintf(w, "Similar: %s\n", strings.Join(out.Suggestions, ", "))
	}
	return nil
}
