package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gitignoregen/internal/cache"
	"gitignoregen/internal/catalog"
	"gitignoregen/internal/errs"
	"gitignoregen/internal/paths"
	"gitignoregen/internal/resolve"
	"gitignoregen/internal/tui"
	"gitignoregen/pkg/ignorefile"
)

var (
	genOS         []string
	genOutput     string
	genStrategy   string
	genRefresh    bool
	genDryRun     bool
	genYes        bool
	genNoProgress bool
)

// currentGOOS feeds OS auto-detection. Tests replace it.
var currentGOOS = runtime.GOOS

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [template...]",
		Short: "Resolve templates and write a merged .gitignore",
		Long: "Resolve each name against the catalog, download the matching templates and\n" +
			"merge them into one .gitignore with duplicate rules removed.",
		Example: "  gitignore-gen generate python node --os macos\n" +
			"  gitignore-gen generate go --strategy append --output sub/.gitignore",
		RunE: runGenerate,
	}

	cmd.Flags().StringSliceVar(&genOS, "os", nil, "Operating system template to include (repeatable)")
	cmd.Flags().StringVarP(&genOutput, "output", "o", "", "Output file (default from config, usually .gitignore)")
	cmd.Flags().StringVar(&genStrategy, "strategy", "ask", "What to do with an existing file: ask, overwrite, append or cancel")
	cmd.Flags().BoolVar(&genRefresh, "refresh", false, "Refetch the catalog and templates even if cached")
	cmd.Flags().BoolVar(&genDryRun, "dry-run", false, "Print the result instead of writing it")
	cmd.Flags().BoolVarP(&genYes, "yes", "y", false, "Never prompt; skip ambiguous names and append to existing files")
	cmd.Flags().BoolVar(&genNoProgress, "no-progress", false, "Disable interactive progress output")

	return cmd
}

// tokenOutcome records how one requested name was handled.
type tokenOutcome struct {
	Token       string   `json:"token"`
	Kind        string   `json:"kind"`
	Tier        string   `json:"tier,omitempty"`
	Path        string   `json:"path,omitempty"`
	Candidates  []string `json:"candidates,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Skipped     bool     `json:"skipped,omitempty"`
}

type templateOutcome struct {
	Path   string `json:"path"`
	Status string `json:"status"`
	Source string `json:"source"`
	Bytes  int    `json:"bytes"`
	Error  string `json:"error,omitempty"`
}

type generateReport struct {
	Output            string            `json:"output"`
	Strategy          string            `json:"strategy"`
	DryRun            bool              `json:"dry_run"`
	Written           bool              `json:"written"`
	Tokens            []tokenOutcome    `json:"tokens"`
	Templates         []templateOutcome `json:"templates"`
	Sections          []string          `json:"sections"`
	AddedRules        int               `json:"added_rules"`
	SkippedDuplicates int               `json:"skipped_duplicates"`
	Content           string            `json:"content,omitempty"`
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	env, err := newAppEnv("generate")
	if err != nil {
		return err
	}
	defer env.Close()

	tokens := requestedTokens(args, genOS, env.cfg.DetectOSEnabled())
	if len(tokens) == 0 {
		return errors.New("no templates requested; pass names such as `python` or `--os macos`")
	}
	env.log.Info("generate", zap.Strings("tokens", tokens), zap.Bool("refresh", genRefresh))

	mode := tui.DetectMode(cmd.OutOrStdout(), genNoProgress, outputJSON)
	interactive := !genYes && mode != tui.ModeJSON && isInteractive(cmd)

	var status *tui.StatusWriter
	if mode == tui.ModeTUI {
		status = tui.NewStatusWriter(cmd.ErrOrStderr(), "Loading catalog...")
	}
	manifest, err := env.loadManifest(cmd, genRefresh)
	if status != nil {
		status.Stop()
	}
	if err != nil {
		return err
	}

	var chooser resolve.Chooser
	if interactive {
		chooser = tui.PromptChooser{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
	}
	selected, outcomes, err := resolveTokens(cmd, tokens, manifest, env.aliases, chooser)
	if err != nil {
		return err
	}
	report := generateReport{DryRun: genDryRun, Tokens: outcomes}
	if len(selected) == 0 {
		if outputJSON {
			_ = writeJSON(cmd, "generate", report)
		}
		return errs.EmptyTemplateSet()
	}

	env.bodies.Refresh = genRefresh
	results, err := fetchTemplates(ctx, cmd, env, selected, mode)
	if err != nil {
		return err
	}

	var templates []ignorefile.Template
	var firstErr error
	for _, res := range results {
		fields := tui.FetchedFields(res)
		outcome := templateOutcome{
			Path:   res.Path,
			Status: fields[tui.ColStatus],
			Source: fields[tui.ColSource],
			Bytes:  len(res.Body),
		}
		if res.Err != nil {
			outcome.Error = res.Err.Error()
			if firstErr == nil {
				firstErr = res.Err
			}
			env.log.Warn("template unavailable", zap.String("path", res.Path), zap.Error(res.Err))
			if !outputJSON {
				warnf(cmd, "skipping %s: %v", res.Path, res.Err)
			}
		} else {
			templates = append(templates, ignorefile.Template{Label: labelFor(res.Path), Path: res.Path, Body: res.Body})
		}
		report.Templates = append(report.Templates, outcome)
	}
	if mode == tui.ModePlain {
		writeFetchTable(cmd, report.Templates)
	}
	if len(templates) == 0 {
		return firstErr
	}

	output := genOutput
	if strings.TrimSpace(output) == "" {
		output = env.cfg.Output.Path
	}
	outPath, err := paths.ResolveOutput(output)
	if err != nil {
		return err
	}
	report.Output = outPath

	existing, exists, err := readExisting(outPath)
	if err != nil {
		return err
	}

	strategy, err := chooseStrategy(cmd, genStrategy, outPath, exists, interactive)
	if err != nil {
		return err
	}
	report.Strategy = strategy.String()

	result, err := ignorefile.Merge(templates, existing, strategy)
	if err != nil {
		if errors.Is(err, errs.ErrMergeCancelled) {
			env.log.Info("merge cancelled", zap.String("output", outPath))
			if outputJSON {
				return writeJSON(cmd, "generate", report)
			}
			infof(cmd, "Cancelled; %s left unchanged.", outPath)
			return nil
		}
		return err
	}
	report.Sections = result.Sections
	report.AddedRules = result.AddedRules
	report.SkippedDuplicates = result.SkippedDuplicates
	env.log.Info("merged",
		zap.Strings("sections", result.Sections),
		zap.Int("added_rules", result.AddedRules),
		zap.Int("skipped_duplicates", result.SkippedDuplicates),
	)

	if genDryRun {
		report.Content = string(result.Content)
		if outputJSON {
			return writeJSON(cmd, "generate", report)
		}
		writePreview(cmd, existing, templates, strategy)
		fmt.Fprint(cmd.OutOrStdout(), string(result.Content))
		return nil
	}

	if exists && !result.Changed() && strategy == ignorefile.Append {
		if outputJSON {
			return writeJSON(cmd, "generate", report)
		}
		infof(cmd, "%s already contains every requested rule (%d duplicate(s) skipped).", outPath, result.SkippedDuplicates)
		return nil
	}

	if err := cache.WriteFileAtomic(outPath, result.Content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	report.Written = true
	env.log.Info("output written", zap.String("output", outPath), zap.Int("bytes", len(result.Content)))

	if outputJSON {
		return writeJSON(cmd, "generate", report)
	}
	verb := "Wrote"
	if exists && strategy == ignorefile.Append {
		verb = "Updated"
	}
	fmt.Fprintln(cmd.OutOrStdout(), tui.SuccessStyle.Render(fmt.Sprintf(
		"%s %s: %d section(s), %d rule(s), %d duplicate(s) skipped",
		verb, outPath, len(result.Sections), result.AddedRules, result.SkippedDuplicates,
	)))
	return nil
}

// requestedTokens merges positional names with --os values, adding the
// running OS when no OS was named and detection is enabled.
func requestedTokens(args, osFlags []string, detect bool) []string {
	var tokens []string
	seen := make(map[string]struct{})
	add := func(t string) {
		t = strings.TrimSpace(t)
		key := strings.ToLower(t)
		if t == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		tokens = append(tokens, t)
	}
	for _, a := range args {
		add(a)
	}
	for _, o := range osFlags {
		add(o)
	}
	if len(osFlags) == 0 && detect {
		add(detectOSToken(currentGOOS))
	}
	return tokens
}

// detectOSToken maps a GOOS value onto an alias table key.
func detectOSToken(goos string) string {
	switch goos {
	case "darwin":
		return "macos"
	case "windows":
		return "windows"
	case "linux":
		return "linux"
	default:
		return ""
	}
}

func resolveTokens(cmd *cobra.Command, tokens []string, m *catalog.Manifest, aliases resolve.AliasTable, chooser resolve.Chooser) ([]string, []tokenOutcome, error) {
	var selected []string
	seen := make(map[string]struct{})
	outcomes := make([]tokenOutcome, 0, len(tokens))

	pick := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		selected = append(selected, path)
	}

	for _, token := range tokens {
		res := resolve.Resolve(token, m, aliases)
		out := tokenOutcome{Token: token, Kind: res.Kind.String(), Tier: res.Tier.String()}

		switch res.Kind {
		case resolve.Unique:
			out.Path = res.Path
			pick(res.Path)

		case resolve.Ambiguous:
			out.Candidates = res.Candidates
			if chooser == nil {
				out.Skipped = true
				if !outputJSON {
					warnf(cmd, "%q is ambiguous, skipped: %s", token, strings.Join(res.Candidates, ", "))
				}
				break
			}
			path, ok, err := chooser.Choose(token, res.Candidates)
			if err != nil {
				return nil, nil, fmt.Errorf("choose template for %q: %w", token, err)
			}
			if !ok {
				out.Skipped = true
				break
			}
			out.Path = path
			pick(path)

		default:
			out.Skipped = true
			out.Suggestions = resolve.Suggest(token, m, resolve.DefaultSuggestions)
			if !outputJSON {
				msg := fmt.Sprintf("no template matches %q", token)
				if len(out.Suggestions) > 0 {
					msg += "; did you mean " + strings.Join(out.Suggestions, ", ") + "?"
				}
				warnf(cmd, "%s", msg)
			}
		}
		outcomes = append(outcomes, out)
	}
	return selected, outcomes, nil
}

func fetchTemplates(ctx context.Context, cmd *cobra.Command, env *appEnv, selected []string, mode tui.OutputMode) ([]cache.Fetched, error) {
	workers := env.cfg.Workers()
	if mode != tui.ModeTUI {
		results := cache.FetchAll(ctx, env.bodies, selected, workers, nil)
		return results, ctx.Err()
	}

	var results []cache.Fetched
	model := tui.NewFetchModel(selected)
	err := tui.RunWithWork(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), model, func(ctx context.Context, send func(tea.Msg)) {
		results = cache.FetchAll(ctx, env.bodies, selected, workers, tui.NewFetchReporter(send))
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func labelFor(path string) string {
	return catalog.NewEntry(path).Name
}

func readExisting(path string) ([]byte, bool, error) {
	exists, err := paths.FileExists(path)
	if err != nil {
		return nil, false, fmt.Errorf("stat %s: %w", path, err)
	}
	if !exists {
		return nil, false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	return data, true, nil
}

// chooseStrategy settles the merge strategy. A missing file is always
// written fresh; "ask" prompts when interactive and appends otherwise.
func chooseStrategy(cmd *cobra.Command, flag, outPath string, exists, interactive bool) (ignorefile.Strategy, error) {
	flag = strings.ToLower(strings.TrimSpace(flag))
	if flag == "" {
		flag = "ask"
	}
	var strategy ignorefile.Strategy
	if flag != "ask" {
		s, err := ignorefile.ParseStrategy(flag)
		if err != nil {
			return 0, err
		}
		strategy = s
	}
	if !exists {
		return ignorefile.Overwrite, nil
	}
	if flag != "ask" {
		return strategy, nil
	}
	if interactive {
		return tui.ChooseStrategy(cmd.InOrStdin(), cmd.OutOrStdout(), outPath)
	}
	return ignorefile.Append, nil
}

func writeFetchTable(cmd *cobra.Command, rows []templateOutcome) {
	if outputJSON || len(rows) == 0 {
		return
	}
	w := tabwriter.NewWriter(cmd.ErrOrStderr(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "TEMPLATE\tSTATUS\tSOURCE\tSIZE")
	for _, r := range rows {
		size := "-"
		if r.Error == "" {
			size = tui.FormatSize(r.Bytes)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Path, r.Status, nonEmptyOrDash(r.Source), size)
	}
	w.Flush()
}

func writePreview(cmd *cobra.Command, existing []byte, templates []ignorefile.Template, strategy ignorefile.Strategy) {
	if strategy != ignorefile.Append {
		infof(cmd, "Dry run: existing content would be replaced.")
		return
	}
	summary := ignorefile.Preview(existing, templates)
	infof(cmd, "Dry run: %d new rule(s), %d duplicate(s) skipped.", len(summary.Additions), len(summary.Duplicates))
	if len(summary.Additions) > 0 && !ignorefile.HasTrailer(existing) {
		infof(cmd, "  + %s trailer", ignorefile.TrailerLine)
	}
	for i, d := range summary.Duplicates {
		if i == 5 {
			infof(cmd, "  ... and %d more", len(summary.Duplicates)-5)
			break
		}
		infof(cmd, "  = %s", d)
	}
}
