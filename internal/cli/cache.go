package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gitignoregen/internal/tui"
)

var cleanAll bool

// nowFunc is replaced in tests.
var nowFunc = time.Now

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the local template cache",
	}

	cmd.AddCommand(newCacheStatusCmd())
	cmd.AddCommand(newCacheCleanCmd())
	return cmd
}

func newCacheStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show cache location, catalog age and stored templates",
		Args:  cobra.NoArgs,
		RunE:  runCacheStatus,
	}
}

func newCacheCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove cached template bodies",
		Args:  cobra.NoArgs,
		RunE:  runCacheClean,
	}
	cmd.Flags().BoolVar(&cleanAll, "all", false, "Also remove the cached catalog listing")
	return cmd
}

type cacheStatus struct {
	Root          string     `json:"root"`
	ManifestFile  string     `json:"manifest_file"`
	Entries       int        `json:"entries"`
	FetchedAt     *time.Time `json:"fetched_at,omitempty"`
	Fresh         bool       `json:"fresh"`
	Templates     int        `json:"templates"`
	TemplateBytes int64      `json:"template_bytes"`
}

func runCacheStatus(cmd *cobra.Command, _ []string) error {
	env, err := newAppEnv("cache-status")
	if err != nil {
		return err
	}
	defer env.Close()

	st := cacheStatus{Root: env.paths.Root, ManifestFile: env.paths.ManifestFile}
	m, err := env.store.Cached()
	if err != nil {
		warnf(cmd, "cached catalog unreadable: %v", err)
	}
	if m != nil {
		fetched := m.FetchedAt
		st.Entries = m.Len()
		st.FetchedAt = &fetched
		st.Fresh = m.IsFresh(nowFunc(), env.cfg.TTL())
	}

	st.Templates, st.TemplateBytes, err = dirUsage(env.paths.TemplatesDir)
	if err != nil {
		return err
	}

	if outputJSON {
		return writeJSON(cmd, "cache status", st)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-10s %s\n", "Cache:", st.Root)
	switch {
	case st.FetchedAt == nil:
		fmt.Fprintf(w, "%-10s %s\n", "Catalog:", "not cached")
	default:
		age := "stale"
		if st.Fresh {
			age = "fresh"
		}
		fmt.Fprintf(w, "%-10s %d templates, fetched %s (%s)\n", "Catalog:", st.Entries, st.FetchedAt.Local().Format("2006-01-02 15:04"), age)
	}
	fmt.Fprintf(w, "%-10s %d file(s), %s\n", "Bodies:", st.Templates, tui.FormatSize(int(st.TemplateBytes)))
	return nil
}

func runCacheClean(cmd *cobra.Command, _ []string) error {
	env, err := newAppEnv("cache-clean")
	if err != nil {
		return err
	}
	defer env.Close()

	removed, err := env.bodies.Clean()
	if err != nil {
		return err
	}
	manifestRemoved := false
	if cleanAll {
		if err := os.Remove(env.paths.ManifestFile); err == nil {
			manifestRemoved = true
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove manifest: %w", err)
		}
	}
	env.log.Info("cache cleaned", zap.Int("templates", removed), zap.Bool("manifest", manifestRemoved))

	if outputJSON {
		return writeJSON(cmd, "cache clean", struct {
			Templates int  `json:"templates_removed"`
			Manifest  bool `json:"manifest_removed"`
		}{removed, manifestRemoved})
	}
	msg := fmt.Sprintf("Removed %d cached template(s)", removed)
	if manifestRemoved {
		msg += " and the catalog listing"
	}
	fmt.Fprintln(cmd.OutOrStdout(), tui.SuccessStyle.Render(msg+"."))
	return nil
}

func dirUsage(dir string) (int, int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("read %s: %w", dir, err)
	}
	var (
		count int
		total int64
	)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := os.Stat(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		count++
		total += info.Size()
	}
	return count, total, nil
}
