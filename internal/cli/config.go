package cli

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"gitignoregen/internal/cache"
	"gitignoregen/internal/config"
	"gitignoregen/internal/tui"
)

var configInitForce bool

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or edit the user configuration",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigEditCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration in YAML",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}
}

func newConfigInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}
	cmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing file")
	return cmd
}

func newConfigEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open the configuration in $EDITOR",
		Args:  cobra.NoArgs,
		RunE:  runConfigEdit,
	}
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, file, err := loadConfig()
	if err != nil {
		return err
	}
	findings := cfg.Validate()

	if outputJSON {
		return writeJSON(cmd, "config", struct {
			File     string                    `json:"file"`
			Config   config.Config             `json:"config"`
			Findings []config.ValidationResult `json:"findings,omitempty"`
		}{file, cfg, findings})
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", file)
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	if len(data) == 0 || data[len(data)-1] != '\n' {
		fmt.Fprintln(cmd.OutOrStdout())
	}
	for _, f := range findings {
		if f.Level == "error" {
			fmt.Fprintln(cmd.ErrOrStderr(), tui.ErrorStyle.Render("error: "+f.Message))
		} else {
			warnf(cmd, "%s", f.Message)
		}
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	file := resolveConfigFile()
	if file == "" {
		return errors.New("cannot determine a config location; pass --config")
	}
	if !configInitForce {
		if _, err := os.Stat(file); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", file)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat config: %w", err)
		}
	}
	if err := writeDefaultConfig(file); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), tui.SuccessStyle.Render("Wrote "+file))
	return nil
}

func writeDefaultConfig(file string) error {
	data, err := config.Default().Marshal()
	if err != nil {
		return err
	}
	if err := cache.WriteFileAtomic(file, data, 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	file := resolveConfigFile()
	if file == "" {
		return errors.New("cannot determine a config location; pass --config")
	}
	if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
		if err := writeDefaultConfig(file); err != nil {
			return err
		}
	} else if err != nil {
		return fmt.Errorf("stat config: %w", err)
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	parts = append(parts, file)

	execCmd := exec.CommandContext(commandContext(cmd), parts[0], parts[1:]...)
	execCmd.Stdout = cmd.OutOrStdout()
	execCmd.Stderr = cmd.ErrOrStderr()
	execCmd.Stdin = cmd.InOrStdin()
	execCmd.Dir = filepath.Dir(file)

	if err := execCmd.Run(); err != nil {
		return fmt.Errorf("editor exited with error: %w", err)
	}

	cfg, err := config.Load(file)
	if err != nil {
		return err
	}
	return cfg.Err()
}
