package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"gitignoregen/internal/catalog"
	"gitignoregen/internal/config"
	"gitignoregen/internal/paths"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, cache and catalog health",
		Args:  cobra.NoArgs,
		RunE:  runDoctor,
	}
}

type healthCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Summary string `json:"summary"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	var checks []healthCheck

	cfg, file, cfgErr := loadConfig()
	checks = append(checks, checkConfig(file, cfg, cfgErr))
	if cfgErr != nil {
		return writeDoctorResult(cmd, checks)
	}

	pp, err := paths.ResolveCache(cacheDir, cfg.Cache.Dir)
	if err != nil {
		checks = append(checks, healthCheck{Name: "Cache", Status: "error", Summary: err.Error()})
		return writeDoctorResult(cmd, checks)
	}
	checks = append(checks, checkCacheWritable(pp))

	env, err := newAppEnv("doctor")
	if err != nil {
		checks = append(checks, healthCheck{Name: "Catalog", Status: "error", Summary: err.Error()})
		return writeDoctorResult(cmd, checks)
	}
	defer env.Close()

	m, err := env.store.Load(commandContext(cmd), false)
	checks = append(checks, checkCatalog(m, err))

	return writeDoctorResult(cmd, checks)
}

func checkConfig(file string, cfg config.Config, cfgErr error) healthCheck {
	if cfgErr != nil {
		return healthCheck{Name: "Config", Status: "error", Summary: cfgErr.Error()}
	}
	source := file
	if exists, _ := paths.FileExists(file); !exists {
		source = "defaults (no file at " + file + ")"
	}

	var warnings, errors int
	for _, v := range cfg.Validate() {
		switch v.Level {
		case "warning":
			warnings++
		case "error":
			errors++
		}
	}
	switch {
	case errors > 0:
		return healthCheck{Name: "Config", Status: "error", Summary: fmt.Sprintf("%s; %d errors", source, errors)}
	case warnings > 0:
		return healthCheck{Name: "Config", Status: "warning", Summary: fmt.Sprintf("%s; %d warnings", source, warnings)}
	}
	return healthCheck{Name: "Config", Status: "ok", Summary: source}
}

func checkCacheWritable(pp paths.CachePaths) healthCheck {
	if err := pp.EnsureDirs(); err != nil {
		return healthCheck{Name: "Cache", Status: "error", Summary: err.Error()}
	}
	probe, err := os.CreateTemp(pp.Root, ".doctor-*")
	if err != nil {
		return healthCheck{Name: "Cache", Status: "error", Summary: fmt.Sprintf("%s is not writable: %v", pp.Root, err)}
	}
	name := probe.Name()
	probe.Close()
	_ = os.Remove(name)
	return healthCheck{Name: "Cache", Status: "ok", Summary: filepath.Clean(pp.Root)}
}

func checkCatalog(m *catalog.Manifest, err error) healthCheck {
	if err != nil {
		return healthCheck{Name: "Catalog", Status: "error", Summary: err.Error()}
	}
	summary := fmt.Sprintf("%d templates from %s", m.Len(), m.Origin)
	if m.Origin == catalog.OriginStaleCache {
		return healthCheck{Name: "Catalog", Status: "warning", Summary: summary + "; upstream unreachable"}
	}
	return healthCheck{Name: "Catalog", Status: "ok", Summary: summary}
}

func writeDoctorResult(cmd *cobra.Command, checks []healthCheck) error {
	if outputJSON {
		return writeJSON(cmd, "doctor", checks)
	}

	bold := lipgloss.NewStyle().Bold(true).Inline(true)
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Inline(true)
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Inline(true)
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Inline(true)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, bold.Render("HEALTH:"))
	failed := 0
	for _, c := range checks {
		var statusStr string
		switch c.Status {
		case "ok":
			statusStr = green.Render("OK")
		case "warning":
			statusStr = yellow.Render("WARN")
		case "error":
			statusStr = red.Render("ERROR")
			failed++
		}
		fmt.Fprintf(out, "  %-9s %s    %s\n", c.Name+":", statusStr, c.Summary)
	}
	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}
